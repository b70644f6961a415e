package get_availability

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain/schedule"
)

// UseCase use case для получения слотов на день
type UseCase struct {
	bookingRepo  BookingRepository
	settings     SettingsProvider
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, settings SettingsProvider, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute строит сетку слотов на дату и классифицирует каждый слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	raw := strings.TrimSpace(req.Date)
	if raw == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date, err := schedule.ParseDate(raw)
	if err != nil {
		uc.logger.Warn("GetAvailability: invalid date %q", raw)
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	dateStr := date.Format(domain.DateFormat)

	settings, err := uc.settings.CurrentCached(ctx)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: failed to load settings: %w", ErrInternal, err)
	}

	resp := &Response{
		Date:            dateStr,
		MaxSlotsPerTime: settings.MaxSlotsPerTime,
		WorkingDay:      settings.IsWorkingDay(date.Weekday()),
		Slots:           []domain.Slot{},
	}
	if !resp.WorkingDay {
		uc.logger.Info("GetAvailability: %s is not a working day", dateStr)
		return resp, nil
	}

	occupancy, err := uc.bookingRepo.CountActiveByDate(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to count bookings for %s: %v", dateStr, err)
		return nil, fmt.Errorf("%w: failed to count bookings: %w", ErrInternal, err)
	}

	now := schedule.ResolveBusinessNow(uc.timeProvider.Now(), settings.Timezone)
	resp.Slots = schedule.BuildDay(settings, occupancy, now.IsToday(dateStr), now.MinuteOfDay)

	uc.logger.Info("GetAvailability: generated %d slots for %s", len(resp.Slots), dateStr)
	return resp, nil
}
