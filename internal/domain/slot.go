package domain

import "github.com/m04kA/SMC-CarWashBooking/pkg/types"

// SlotStatus состояние слота для клиента
type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotFull      SlotStatus = "FULL"
	SlotExpired   SlotStatus = "EXPIRED" // сегодня, но до начала меньше буфера
	SlotPast      SlotStatus = "PAST"    // сегодня, время уже прошло
)

// SlotReason код причины недоступности слота
type SlotReason string

const (
	ReasonNone     SlotReason = ""
	ReasonFinished SlotReason = "FINISHED"
	ReasonClosed   SlotReason = "CLOSED"
	ReasonFull     SlotReason = "FULL"
)

// Reason возвращает код причины для статуса
func (s SlotStatus) Reason() SlotReason {
	switch s {
	case SlotPast:
		return ReasonFinished
	case SlotExpired:
		return ReasonClosed
	case SlotFull:
		return ReasonFull
	default:
		return ReasonNone
	}
}

// Slot слот с занятостью
type Slot struct {
	Time     types.TimeString
	Status   SlotStatus
	Count    int // активные бронирования на этот слот
	Capacity int
}

// Available true, если слот можно забронировать
func (s Slot) Available() bool {
	return s.Status == SlotAvailable
}

// Remaining свободные места
func (s Slot) Remaining() int {
	if s.Count >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Count
}
