package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	vehicleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/vehicle"
)

// Resolver находит или создаёт клиента и автомобиль для бронирования.
// Вызывается внутри транзакции аллокатора: репозитории берут её из контекста
type Resolver struct {
	customers CustomerRepository
	vehicles  VehicleRepository
	region    string
	logger    Logger
}

// NewResolver создаёт резолвер. region используется для телефонов без кода страны
func NewResolver(customers CustomerRepository, vehicles VehicleRepository, region string, logger Logger) *Resolver {
	return &Resolver{
		customers: customers,
		vehicles:  vehicles,
		region:    region,
		logger:    logger,
	}
}

// Region регион по умолчанию для телефонов
func (r *Resolver) Region() string {
	return r.region
}

// ResolveCustomer находит клиента по телефону и обновляет имя, либо создаёт нового.
// Повторный вызов с теми же данными не создаёт записей
func (r *Resolver) ResolveCustomer(ctx context.Context, phone, name string) (*domain.Customer, error) {
	normalized, err := NormalizePhone(phone, r.region)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidName)
	}

	customer, err := r.customers.Upsert(ctx, normalized, name)
	if err != nil {
		return nil, fmt.Errorf("%w: ResolveCustomer - upsert phone=%s: %w", ErrInternal, normalized, err)
	}

	return customer, nil
}

// ResolveVehicle находит автомобиль по номеру, обновляет модель и владельца, либо создаёт новый
func (r *Resolver) ResolveVehicle(ctx context.Context, plate string, model *string, customerID int64) (*domain.Vehicle, error) {
	normalized, err := NormalizePlate(plate)
	if err != nil {
		return nil, err
	}

	owner := customerID
	existing, err := r.vehicles.GetByPlate(ctx, normalized)
	switch {
	case err == nil:
		owner = vehicleOwnerOnRebook(existing, customerID)
		if owner != existing.CustomerID {
			r.logger.Warn("ResolveVehicle: plate=%s reassigned from customer=%d to customer=%d",
				normalized, existing.CustomerID, owner)
		}
	case errors.Is(err, vehicleRepo.ErrVehicleNotFound):
	default:
		return nil, fmt.Errorf("%w: ResolveVehicle - get plate=%s: %w", ErrInternal, normalized, err)
	}

	vehicle, err := r.vehicles.Upsert(ctx, normalized, NormalizeModel(model), owner)
	if err != nil {
		return nil, fmt.Errorf("%w: ResolveVehicle - upsert plate=%s: %w", ErrInternal, normalized, err)
	}

	return vehicle, nil
}

// vehicleOwnerOnRebook решает, кому принадлежит уже известный автомобиль,
// когда его бронирует клиент bookingCustomerID. Действует правило "последнее бронирование":
// автомобиль переходит к тому, кто бронирует сейчас
func vehicleOwnerOnRebook(existing *domain.Vehicle, bookingCustomerID int64) int64 {
	return bookingCustomerID
}
