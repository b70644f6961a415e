package create_booking

import (
	"github.com/m04kA/SMC-CarWashBooking/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-CarWashBooking/internal/usecase/create_booking"
)

// CustomerRequest данные клиента из формы бронирования
type CustomerRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Plate string  `json:"plate"`
	Model *string `json:"model,omitempty"`
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Date          string          `json:"date"` // YYYY-MM-DD
	Time          string          `json:"time"` // HH:MM
	ServiceID     int64           `json:"serviceId"`
	PaymentMethod string          `json:"paymentMethod"`
	Customer      CustomerRequest `json:"customer"`
	Notes         *string         `json:"notes,omitempty"`
	ReferenceCode *string         `json:"referenceCode,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Формат даты и времени проверяет use case
func (r *CreateBookingRequest) ToUseCaseRequest() *createBooking.Request {
	return &createBooking.Request{
		Date:          r.Date,
		StartTime:     r.Time,
		ServiceID:     r.ServiceID,
		PaymentMethod: r.PaymentMethod,
		Customer: createBooking.CustomerInput{
			Name:  r.Customer.Name,
			Phone: r.Customer.Phone,
			Plate: r.Customer.Plate,
			Model: r.Customer.Model,
		},
		Notes:         r.Notes,
		ReferenceCode: r.ReferenceCode,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *models.BookingResponse {
	return models.FromDomainBooking(resp.Booking)
}
