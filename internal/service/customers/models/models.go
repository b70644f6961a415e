package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// ListCustomersRequest фильтр списка клиентов
type ListCustomersRequest struct {
	Search    string
	Completed bool
}

// VehicleResponse автомобиль клиента
type VehicleResponse struct {
	ID    int64   `json:"id"`
	Plate string  `json:"plate"`
	Model *string `json:"model,omitempty"`
}

// CustomerResponse клиент со статистикой
type CustomerResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Vehicles       []VehicleResponse `json:"vehicles"`
	BookingsCount  int               `json:"bookingsCount"`
	CompletedCount int               `json:"completedCount"`
	TotalSpent     int64             `json:"totalSpent"`
	LastVisit      *string           `json:"lastVisit,omitempty"` // YYYY-MM-DD
	CreatedAt      time.Time         `json:"createdAt"`
}

// CustomerListResponse список клиентов
type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Total     int                `json:"total"`
}

// FromDomainSummaries конвертирует клиентов в DTO
func FromDomainSummaries(summaries []*domain.CustomerSummary) *CustomerListResponse {
	resp := &CustomerListResponse{
		Customers: make([]CustomerResponse, 0, len(summaries)),
		Total:     len(summaries),
	}

	for _, s := range summaries {
		c := CustomerResponse{
			ID:             s.ID,
			Name:           s.Name,
			Phone:          s.Phone,
			Vehicles:       make([]VehicleResponse, 0, len(s.Vehicles)),
			BookingsCount:  s.BookingsCount,
			CompletedCount: s.CompletedCount,
			TotalSpent:     s.TotalSpent,
			CreatedAt:      s.CreatedAt,
		}
		for _, v := range s.Vehicles {
			c.Vehicles = append(c.Vehicles, VehicleResponse{ID: v.ID, Plate: v.Plate, Model: v.Model})
		}
		if s.LastVisit != nil {
			lastVisit := s.LastVisit.Format(domain.DateFormat)
			c.LastVisit = &lastVisit
		}
		resp.Customers = append(resp.Customers, c)
	}

	return resp
}
