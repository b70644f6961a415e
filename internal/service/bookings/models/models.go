package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListBookingsRequest фильтр списка бронирований
type ListBookingsRequest struct {
	Status *string
	Date   *string // YYYY-MM-DD
	Limit  int
	Offset int
}

// ToDomainFilter конвертирует request в domain фильтр, подставляя лимиты по умолчанию
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		Limit:  r.Limit,
		Offset: r.Offset,
	}

	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultBookingsLimit
	}
	if filter.Limit > domain.MaxBookingsLimit {
		filter.Limit = domain.MaxBookingsLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.Date != nil {
		date, err := time.Parse(domain.DateFormat, *r.Date)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q: %w", *r.Date, err)
		}
		filter.Date = &date
	}

	return filter, nil
}

// UpdateBookingRequest частичное обновление бронирования
type UpdateBookingRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// ToDomainUpdate конвертирует request в domain обновление
func (r *UpdateBookingRequest) ToDomainUpdate() (domain.BookingUpdate, error) {
	update := domain.BookingUpdate{Notes: r.Notes}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}

	return update, nil
}

// Response модели

// CustomerInfo клиент в составе бронирования
type CustomerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// VehicleInfo автомобиль в составе бронирования
type VehicleInfo struct {
	ID    int64   `json:"id"`
	Plate string  `json:"plate"`
	Model *string `json:"model,omitempty"`
}

// ServiceInfo услуга в составе бронирования
type ServiceInfo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	DurationMinutes int    `json:"durationMinutes"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64   `json:"id"`
	ReferenceCode string  `json:"referenceCode"`
	Date          string  `json:"date"` // "2025-10-15"
	Time          string  `json:"time"` // "10:00"
	Status        string  `json:"status"`
	PaymentMethod string  `json:"paymentMethod"`
	TotalPrice    int64   `json:"totalPrice"`
	Notes         *string `json:"notes,omitempty"`

	Customer *CustomerInfo `json:"customer,omitempty"`
	Vehicle  *VehicleInfo  `json:"vehicle,omitempty"`
	Service  *ServiceInfo  `json:"service,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:            b.ID,
		ReferenceCode: b.ReferenceCode,
		Date:          b.BookingDate.Format(domain.DateFormat),
		Time:          b.StartTime.String(),
		Status:        string(b.Status),
		PaymentMethod: b.PaymentMethod,
		TotalPrice:    b.TotalPrice,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}

	if b.Customer != nil {
		resp.Customer = &CustomerInfo{ID: b.Customer.ID, Name: b.Customer.Name, Phone: b.Customer.Phone}
	}
	if b.Vehicle != nil {
		resp.Vehicle = &VehicleInfo{ID: b.Vehicle.ID, Plate: b.Vehicle.Plate, Model: b.Vehicle.Model}
	}
	if b.Service != nil {
		resp.Service = &ServiceInfo{
			ID:              b.Service.ID,
			Name:            b.Service.Name,
			Price:           b.Service.Price,
			DurationMinutes: b.Service.DurationMinutes,
		}
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, total int) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Total:    total,
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в статус (регистр не важен)
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status := domain.BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
	return status, nil
}
