package get_availability

import (
	getAvailability "github.com/m04kA/SMC-CarWashBooking/internal/usecase/get_availability"
)

// SlotResponse HTTP response model слота
type SlotResponse struct {
	Time      string `json:"time"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Count     int    `json:"count"`
	Available bool   `json:"available"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date            string         `json:"date"`
	MaxSlotsPerTime int            `json:"maxSlotsPerTime"`
	WorkingDay      bool           `json:"workingDay"`
	Slots           []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			Time:      s.Time.String(),
			Status:    string(s.Status),
			Reason:    string(s.Status.Reason()),
			Count:     s.Count,
			Available: s.Available(),
		})
	}

	return &AvailabilityResponse{
		Date:            resp.Date,
		MaxSlotsPerTime: resp.MaxSlotsPerTime,
		WorkingDay:      resp.WorkingDay,
		Slots:           slots,
	}
}
