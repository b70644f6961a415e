package customer

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

// Repository репозиторий клиентов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создаёт клиента по телефону или обновляет имя существующего.
// Один запрос, поэтому параллельные первые бронирования с одним телефоном не создают дублей
func (r *Repository) Upsert(ctx context.Context, phone, name string) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("customers").
		Columns("name", "phone").
		Values(name, phone).
		Suffix("ON CONFLICT (phone) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()").
		Suffix("RETURNING id, name, phone, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	var customer domain.Customer
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	return &customer, nil
}

// GetByPhone получает клиента по нормализованному телефону
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "phone", "created_at", "updated_at").
		From("customers").
		Where(squirrel.Eq{"phone": phone}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByPhone - build select query: %w", ErrBuildQuery, err)
	}

	var customer domain.Customer
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPhone - scan customer: %w", ErrScanRow, err)
	}

	return &customer, nil
}

// List получает клиентов со статистикой бронирований.
// Поиск регистронезависимый по имени, телефону и номерам авто клиента
func (r *Repository) List(ctx context.Context, filter domain.CustomersFilter) ([]*domain.CustomerSummary, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	completed := string(domain.StatusCompleted)

	selectBuilder := psqlbuilder.Select(
		"c.id",
		"c.name",
		"c.phone",
		"c.created_at",
		"c.updated_at",
		"COUNT(b.id)",
		"COUNT(b.id) FILTER (WHERE b.status = '"+completed+"')",
		"COALESCE(SUM(b.total_price) FILTER (WHERE b.status = '"+completed+"'), 0)",
		"MAX(b.booking_date) FILTER (WHERE b.status = '"+completed+"')",
	).
		From("customers c").
		LeftJoin("bookings b ON b.customer_id = c.id").
		GroupBy("c.id").
		OrderBy("c.name ASC", "c.id ASC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"c.phone": pattern},
			squirrel.Expr("EXISTS (SELECT 1 FROM vehicles v WHERE v.customer_id = c.id AND v.plate ILIKE ?)", pattern),
		})
	}

	if filter.CompletedOnly {
		selectBuilder = selectBuilder.Having("COUNT(b.id) FILTER (WHERE b.status = ?) > 0", completed)
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

	customers := make([]*domain.CustomerSummary, 0)
	for rows.Next() {
		var (
			summary   domain.CustomerSummary
			lastVisit sql.NullTime
		)
		err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Phone,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.BookingsCount,
			&summary.CompletedCount,
			&summary.TotalSpent,
			&lastVisit,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		if lastVisit.Valid {
			summary.LastVisit = &lastVisit.Time
		}
		customers = append(customers, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return customers, nil
}
