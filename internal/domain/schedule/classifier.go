package schedule

import (
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// ClassifyInput данные для определения статуса одного слота
type ClassifyInput struct {
	Slot          types.TimeString
	Occupancy     int // активные (не CANCELLED) бронирования ровно на этот слот
	Capacity      int
	IsToday       bool
	NowMinute     int // минута суток в часовом поясе мойки
	BufferMinutes int
}

// Classify определяет статус слота. Правила проверяются по порядку:
// прошедшее время, закрытие по буферу, заполненность
func Classify(in ClassifyInput) domain.SlotStatus {
	slotMinute := in.Slot.Minutes()

	if in.IsToday {
		if slotMinute < in.NowMinute {
			return domain.SlotPast
		}
		if slotMinute-in.NowMinute <= in.BufferMinutes {
			return domain.SlotExpired
		}
	}

	if in.Occupancy >= in.Capacity {
		return domain.SlotFull
	}
	return domain.SlotAvailable
}

// BuildDay собирает слоты дня с занятостью и статусами
func BuildDay(settings *domain.Settings, occupancy map[types.TimeString]int, isToday bool, nowMinute int) []domain.Slot {
	grid := GenerateSlots(settings.OpenTime, settings.CloseTime, settings.SlotDurationMinutes)

	slots := make([]domain.Slot, 0, len(grid))
	for _, t := range grid {
		count := occupancy[t]
		slots = append(slots, domain.Slot{
			Time: t,
			Status: Classify(ClassifyInput{
				Slot:          t,
				Occupancy:     count,
				Capacity:      settings.MaxSlotsPerTime,
				IsToday:       isToday,
				NowMinute:     nowMinute,
				BufferMinutes: settings.BookingBufferMinutes,
			}),
			Count:    count,
			Capacity: settings.MaxSlotsPerTime,
		})
	}
	return slots
}
