package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"business_name",
	"whatsapp_number",
	"address",
	"welcome_message",
	"currency",
	"open_time",
	"close_time",
	"slot_duration",
	"max_slots_per_time",
	"working_days",
	"booking_buffer_minutes",
	"timezone",
	"updated_at",
}

// Repository репозиторий настроек мойки
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает настройки. Если записи нет, возвращает ErrSettingsNotFound
func (r *Repository) Get(ctx context.Context) (*domain.Settings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("settings").
		Where(squirrel.Eq{"id": domain.SettingsID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %w", ErrBuildQuery, err)
	}

	settings, err := scanSettings(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %w", ErrScanRow, err)
	}

	return settings, nil
}

// Upsert сохраняет настройки целиком
func (r *Repository) Upsert(ctx context.Context, s *domain.Settings) (*domain.Settings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("settings").
		Columns(columns[:len(columns)-1]...).
		Values(
			domain.SettingsID,
			s.BusinessName,
			s.WhatsappNumber,
			s.Address,
			s.WelcomeMessage,
			s.Currency,
			s.OpenTime,
			s.CloseTime,
			s.SlotDurationMinutes,
			s.MaxSlotsPerTime,
			FormatWorkingDays(s.WorkingDays),
			s.BookingBufferMinutes,
			s.Timezone,
		).
		Suffix("ON CONFLICT (id) DO UPDATE SET " +
			"business_name = EXCLUDED.business_name, " +
			"whatsapp_number = EXCLUDED.whatsapp_number, " +
			"address = EXCLUDED.address, " +
			"welcome_message = EXCLUDED.welcome_message, " +
			"currency = EXCLUDED.currency, " +
			"open_time = EXCLUDED.open_time, " +
			"close_time = EXCLUDED.close_time, " +
			"slot_duration = EXCLUDED.slot_duration, " +
			"max_slots_per_time = EXCLUDED.max_slots_per_time, " +
			"working_days = EXCLUDED.working_days, " +
			"booking_buffer_minutes = EXCLUDED.booking_buffer_minutes, " +
			"timezone = EXCLUDED.timezone, " +
			"updated_at = NOW()").
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	saved, err := scanSettings(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (*domain.Settings, error) {
	var (
		s           domain.Settings
		workingDays string
	)

	err := row.Scan(
		&s.ID,
		&s.BusinessName,
		&s.WhatsappNumber,
		&s.Address,
		&s.WelcomeMessage,
		&s.Currency,
		&s.OpenTime,
		&s.CloseTime,
		&s.SlotDurationMinutes,
		&s.MaxSlotsPerTime,
		&workingDays,
		&s.BookingBufferMinutes,
		&s.Timezone,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.WorkingDays = ParseWorkingDays(workingDays)
	return &s, nil
}

// ParseWorkingDays разбирает строку вида "1,2,3" (допускаются скобки и пробелы).
// Нечисловые и выходящие за 0..6 значения пропускаются; пустая строка даёт пн-сб
func ParseWorkingDays(raw string) []time.Weekday {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return domain.DefaultWorkingDays()
	}

	seen := make(map[time.Weekday]bool)
	days := make([]time.Weekday, 0, 7)
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		day := time.Weekday(n)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// FormatWorkingDays сериализует дни недели в "1,2,3"
func FormatWorkingDays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}
