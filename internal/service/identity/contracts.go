package identity

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	Upsert(ctx context.Context, phone, name string) (*domain.Customer, error)
}

// VehicleRepository интерфейс репозитория автомобилей
type VehicleRepository interface {
	GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	Upsert(ctx context.Context, plate string, model *string, customerID int64) (*domain.Vehicle, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
