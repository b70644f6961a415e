package schedule

import "github.com/m04kA/SMC-CarWashBooking/pkg/types"

// GenerateSlots строит сетку начала слотов: open, open+d, ... пока начало < close.
// Слот, начинающийся в close или позже, не включается
func GenerateSlots(open, close types.TimeString, durationMinutes int) []types.TimeString {
	if durationMinutes <= 0 {
		return nil
	}

	start, end := open.Minutes(), close.Minutes()
	if start < 0 || end < 0 || start >= end {
		return nil
	}

	slots := make([]types.TimeString, 0, (end-start+durationMinutes-1)/durationMinutes)
	for m := start; m < end; m += durationMinutes {
		slot, err := types.NewTimeStringFromMinutes(m)
		if err != nil {
			break
		}
		slots = append(slots, slot)
	}
	return slots
}
