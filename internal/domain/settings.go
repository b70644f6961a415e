package domain

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// Settings настройки мойки. В системе одна запись с ID = SettingsID
type Settings struct {
	ID                   string
	BusinessName         string
	WhatsappNumber       string
	Address              string
	WelcomeMessage       string
	Currency             string
	OpenTime             types.TimeString
	CloseTime            types.TimeString
	SlotDurationMinutes  int
	MaxSlotsPerTime      int
	WorkingDays          []time.Weekday
	BookingBufferMinutes int
	Timezone             string
	UpdatedAt            time.Time
}

// DefaultSettings настройки, которые действуют, пока администратор их не сохранил
func DefaultSettings() *Settings {
	return &Settings{
		ID:                   SettingsID,
		BusinessName:         DefaultBusinessName,
		Currency:             DefaultCurrency,
		OpenTime:             DefaultOpenTime,
		CloseTime:            DefaultCloseTime,
		SlotDurationMinutes:  DefaultSlotDurationMinutes,
		MaxSlotsPerTime:      DefaultMaxSlotsPerTime,
		WorkingDays:          DefaultWorkingDays(),
		BookingBufferMinutes: DefaultBookingBufferMinutes,
		Timezone:             DefaultTimezone,
	}
}

// DefaultWorkingDays понедельник-суббота
func DefaultWorkingDays() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

// IsWorkingDay true, если мойка работает в этот день недели
func (s *Settings) IsWorkingDay(day time.Weekday) bool {
	for _, d := range s.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}
