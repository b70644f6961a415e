package domain

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusInProgress BookingStatus = "IN_PROGRESS"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
)

// IsValid true для известных статусов
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking бронирование мойки на конкретный слот (дата + время)
type Booking struct {
	ID            int64
	ReferenceCode string
	BookingDate   time.Time // только дата, время суток не используется
	StartTime     types.TimeString
	Status        BookingStatus
	PaymentMethod string
	TotalPrice    int64 // снимок цены услуги на момент бронирования
	Notes         *string

	CustomerID int64
	VehicleID  int64
	ServiceID  int64

	// Заполняются при чтении с join'ами
	Customer *Customer
	Vehicle  *Vehicle
	Service  *Service

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive true, если бронирование занимает место в слоте
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// BookingsFilter фильтр списка бронирований для администратора
type BookingsFilter struct {
	Status *BookingStatus
	Date   *time.Time
	Limit  int
	Offset int
}

// BookingUpdate частичное обновление бронирования
type BookingUpdate struct {
	Status *BookingStatus
	Notes  *string
}

// IsEmpty true, если обновлять нечего
func (u BookingUpdate) IsEmpty() bool {
	return u.Status == nil && u.Notes == nil
}
