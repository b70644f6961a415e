package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// CreateServiceRequest создание услуги
type CreateServiceRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	Price           int64   `json:"price"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"` // по умолчанию длительность слота
	Active          *bool   `json:"active,omitempty"`          // по умолчанию true
}

// ToDomain конвертирует request в domain модель
func (r *CreateServiceRequest) ToDomain() *domain.Service {
	service := &domain.Service{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		DurationMinutes: domain.DefaultSlotDurationMinutes,
		Active:          true,
	}
	if r.DurationMinutes != nil {
		service.DurationMinutes = *r.DurationMinutes
	}
	if r.Active != nil {
		service.Active = *r.Active
	}
	return service
}

// UpdateServiceRequest частичное обновление услуги
type UpdateServiceRequest struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Price           *int64  `json:"price,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	Active          *bool   `json:"active,omitempty"`
	SortOrder       *int    `json:"sortOrder,omitempty"`
}

// ToDomain конвертирует request в domain обновление
func (r *UpdateServiceRequest) ToDomain() domain.ServiceUpdate {
	return domain.ServiceUpdate{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
		Active:          r.Active,
		SortOrder:       r.SortOrder,
	}
}

// ServiceResponse услуга
type ServiceResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Price           int64     `json:"price"`
	DurationMinutes int       `json:"durationMinutes"`
	Active          bool      `json:"active"`
	SortOrder       int       `json:"sortOrder"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		SortOrder:       s.SortOrder,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует список услуг
func FromDomainServiceList(services []*domain.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, *FromDomainService(s))
	}
	return out
}
