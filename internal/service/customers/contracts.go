package customers

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	List(ctx context.Context, filter domain.CustomersFilter) ([]*domain.CustomerSummary, error)
}

// VehicleRepository интерфейс репозитория автомобилей
type VehicleRepository interface {
	ListByCustomerIDs(ctx context.Context, customerIDs []int64) ([]*domain.Vehicle, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
