package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/pgerr"
	"github.com/m04kA/SMC-CarWashBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

const referenceCodeConstraint = "bookings_reference_code_key"

// Колонки бронирования с данными клиента, авто и услуги (см. joinedSelect)
var joinedColumns = []string{
	"b.id",
	"b.reference_code",
	"b.booking_date",
	"b.start_time",
	"b.status",
	"b.payment_method",
	"b.total_price",
	"b.notes",
	"b.customer_id",
	"b.vehicle_id",
	"b.service_id",
	"b.created_at",
	"b.updated_at",
	"c.name",
	"c.phone",
	"v.plate",
	"v.model",
	"v.customer_id",
	"s.name",
	"s.price",
	"s.duration_minutes",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте есть транзакция, запрос выполняется в ней
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference_code",
			"booking_date",
			"start_time",
			"status",
			"payment_method",
			"total_price",
			"notes",
			"customer_id",
			"vehicle_id",
			"service_id",
		).
		Values(
			booking.ReferenceCode,
			booking.BookingDate.Format(domain.DateFormat),
			booking.StartTime,
			booking.Status,
			booking.PaymentMethod,
			booking.TotalPrice,
			booking.Notes,
			booking.CustomerID,
			booking.VehicleID,
			booking.ServiceID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if pgerr.IsUniqueViolation(err, referenceCodeConstraint) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateReferenceCode, booking.ReferenceCode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// CountActiveBySlot возвращает количество не отменённых бронирований на (дату, время).
// В SERIALIZABLE транзакции это чтение конфликтует с параллельной вставкой в тот же слот
func (r *Repository) CountActiveBySlot(ctx context.Context, date time.Time, startTime types.TimeString) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{
			"booking_date": date.Format(domain.DateFormat),
			"start_time":   startTime,
		}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlot - build select query: %w", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlot - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// CountActiveByDate возвращает занятость всех слотов дня (время -> количество)
func (r *Repository) CountActiveByDate(ctx context.Context, date time.Time) (map[types.TimeString]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("start_time", "COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"booking_date": date.Format(domain.DateFormat)}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		GroupBy("start_time").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDate - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	occupancy := make(map[types.TimeString]int)
	for rows.Next() {
		var (
			startTime types.TimeString
			count     int
		)
		if err := rows.Scan(&startTime, &count); err != nil {
			return nil, fmt.Errorf("%w: CountActiveByDate - scan row: %w", ErrScanRow, err)
		}
		occupancy[startTime] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDate - rows error: %w", ErrScanRow, err)
	}

	return occupancy, nil
}

// GetByID получает бронирование по ID вместе с клиентом, авто и услугой
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := joinedSelect().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования по фильтру: сначала новые даты, внутри дня по времени
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := applyFilter(joinedSelect(), filter).
		OrderBy("b.booking_date DESC", "b.start_time ASC", "b.id ASC")

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// Count количество бронирований по фильтру (без учёта limit/offset)
func (r *Repository) Count(ctx context.Context, filter domain.BookingsFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyFilter(psqlbuilder.Select("COUNT(*)").From("bookings b"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build select query: %w", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: Count - scan count: %w", ErrScanRow, err)
	}

	return total, nil
}

// Update частично обновляет статус и/или заметки
func (r *Repository) Update(ctx context.Context, id int64, update domain.BookingUpdate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if update.Status != nil {
		updateBuilder = updateBuilder.Set("status", *update.Status)
	}
	if update.Notes != nil {
		updateBuilder = updateBuilder.Set("notes", *update.Notes)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Delete физически удаляет бронирование.
// Для освобождения слота достаточно статуса CANCELLED, удаление только по явному запросу администратора
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func joinedSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(joinedColumns...).
		From("bookings b").
		Join("customers c ON c.id = b.customer_id").
		Join("vehicles v ON v.id = b.vehicle_id").
		Join("services s ON s.id = b.service_id")
}

func applyFilter(builder squirrel.SelectBuilder, filter domain.BookingsFilter) squirrel.SelectBuilder {
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"b.status": *filter.Status})
	}
	if filter.Date != nil {
		builder = builder.Where(squirrel.Eq{"b.booking_date": filter.Date.Format(domain.DateFormat)})
	}
	return builder
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		customer             domain.Customer
		vehicle              domain.Vehicle
		service              domain.Service
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.ReferenceCode,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.Status,
		&booking.PaymentMethod,
		&booking.TotalPrice,
		&booking.Notes,
		&booking.CustomerID,
		&booking.VehicleID,
		&booking.ServiceID,
		&createdAt,
		&updatedAt,
		&customer.Name,
		&customer.Phone,
		&vehicle.Plate,
		&vehicle.Model,
		&vehicle.CustomerID,
		&service.Name,
		&service.Price,
		&service.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}

	customer.ID = booking.CustomerID
	vehicle.ID = booking.VehicleID
	service.ID = booking.ServiceID

	booking.Customer = &customer
	booking.Vehicle = &vehicle
	booking.Service = &service
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}
