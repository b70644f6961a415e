package settings

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// validateSettings проверяет настройки перед сохранением
func validateSettings(s *domain.Settings) error {
	if err := s.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: openTime: %w", ErrInvalidInput, err)
	}
	if err := s.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: closeTime: %w", ErrInvalidInput, err)
	}
	if !s.OpenTime.IsBefore(s.CloseTime) {
		return fmt.Errorf("%w: openTime %s must be before closeTime %s", ErrInvalidInput, s.OpenTime, s.CloseTime)
	}

	if s.SlotDurationMinutes < domain.MinSlotDurationMinutes || s.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slotDuration must be between %d and %d",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}
	if s.MaxSlotsPerTime < domain.MinSlotsPerTime || s.MaxSlotsPerTime > domain.MaxSlotsPerTime {
		return fmt.Errorf("%w: maxSlotsPerTime must be between %d and %d",
			ErrInvalidInput, domain.MinSlotsPerTime, domain.MaxSlotsPerTime)
	}
	if s.BookingBufferMinutes < 0 || s.BookingBufferMinutes > domain.MaxBookingBufferMinutes {
		return fmt.Errorf("%w: bookingBufferMinutes must be between 0 and %d",
			ErrInvalidInput, domain.MaxBookingBufferMinutes)
	}

	for _, d := range s.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: working day %d out of range 0..6", ErrInvalidInput, d)
		}
	}

	if s.Timezone == "" {
		return fmt.Errorf("%w: timezone is required", ErrInvalidInput)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, s.Timezone)
	}

	return nil
}
