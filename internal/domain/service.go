package domain

import "time"

// Service услуга мойки из каталога
type Service struct {
	ID              int64
	Name            string
	Description     *string
	Price           int64
	DurationMinutes int
	Active          bool
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ServiceUpdate частичное обновление услуги
type ServiceUpdate struct {
	Name            *string
	Description     *string
	Price           *int64
	DurationMinutes *int
	Active          *bool
	SortOrder       *int
}
