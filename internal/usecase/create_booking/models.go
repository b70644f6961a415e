package create_booking

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	Date          string // YYYY-MM-DD
	StartTime     string // HH:MM
	ServiceID     int64
	PaymentMethod string
	Customer      CustomerInput
	Notes         *string
	ReferenceCode *string // опционально, иначе генерируется
}

// CustomerInput данные клиента и автомобиля из формы
type CustomerInput struct {
	Name  string
	Phone string
	Plate string
	Model *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}

// command проверенный запрос
type command struct {
	date          time.Time
	startTime     types.TimeString
	serviceID     int64
	paymentMethod string
	name          string
	phone         string
	plate         string
	model         *string
	notes         *string
	referenceCode string
	codeSupplied  bool
}
