package get_availability

import "github.com/m04kA/SMC-CarWashBooking/internal/domain"

// Request модель запроса доступности на день
type Request struct {
	Date string // YYYY-MM-DD, локальная дата мойки
}

// Response модель ответа со слотами дня
type Response struct {
	Date            string
	MaxSlotsPerTime int
	WorkingDay      bool
	Slots           []domain.Slot
}
