package vehicle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/psqlbuilder"
)

var columns = []string{"id", "plate", "model", "customer_id", "created_at", "updated_at"}

// Repository репозиторий автомобилей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория автомобилей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByPlate получает автомобиль по нормализованному номеру
func (r *Repository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("vehicles").
		Where(squirrel.Eq{"plate": plate}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByPlate - build select query: %w", ErrBuildQuery, err)
	}

	vehicle, err := scanVehicle(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPlate - scan vehicle: %w", ErrScanRow, err)
	}

	return vehicle, nil
}

// Upsert создаёт автомобиль по номеру или обновляет владельца и модель.
// Пустая модель не затирает сохранённую
func (r *Repository) Upsert(ctx context.Context, plate string, model *string, customerID int64) (*domain.Vehicle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("vehicles").
		Columns("plate", "model", "customer_id").
		Values(plate, model, customerID).
		Suffix("ON CONFLICT (plate) DO UPDATE SET " +
			"model = COALESCE(EXCLUDED.model, vehicles.model), " +
			"customer_id = EXCLUDED.customer_id, " +
			"updated_at = NOW()").
		Suffix("RETURNING id, plate, model, customer_id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	vehicle, err := scanVehicle(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	return vehicle, nil
}

// ListByCustomerIDs получает автомобили указанных клиентов
func (r *Repository) ListByCustomerIDs(ctx context.Context, customerIDs []int64) ([]*domain.Vehicle, error) {
	if len(customerIDs) == 0 {
		return []*domain.Vehicle{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("vehicles").
		Where(squirrel.Eq{"customer_id": customerIDs}).
		OrderBy("customer_id ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomerIDs - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomerIDs - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByCustomerIDs - scan row: %w", ErrScanRow, err)
		}
		vehicles = append(vehicles, vehicle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByCustomerIDs - rows error: %w", ErrScanRow, err)
	}

	return vehicles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := row.Scan(
		&vehicle.ID,
		&vehicle.Plate,
		&vehicle.Model,
		&vehicle.CustomerID,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
