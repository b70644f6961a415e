package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-CarWashBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "проверьте дату, время, услугу, способ оплаты и данные клиента"
	msgDayClosed          = "в выбранный день мойка не работает"
	msgSlotFull           = "выбранное время уже занято, выберите другой слот"
	msgServiceNotFound    = "услуга не найдена"
	msgReferenceTaken     = "код бронирования уже используется"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Validation failed: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrDayClosed):
			h.logger.Warn("POST /bookings - Day closed: date=%s", req.Date)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeDayClosed, msgDayClosed)

		case errors.Is(err, createBooking.ErrSlotFull):
			h.logger.Warn("POST /bookings - Slot full: date=%s, time=%s", req.Date, req.Time)
			handlers.RespondConflict(w, handlers.CodeSlotFull, msgSlotFull)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, handlers.CodeServiceNotFound, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrReferenceCodeTaken):
			h.logger.Warn("POST /bookings - Reference code taken: %v", err)
			handlers.RespondConflict(w, handlers.CodeReferenceTaken, msgReferenceTaken)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: date=%s, time=%s, error=%v", req.Date, req.Time, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, code=%s",
		result.Booking.ID, result.Booking.ReferenceCode)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
