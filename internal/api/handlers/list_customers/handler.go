package list_customers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/customers/models"
)

const msgInvalidParams = "некорректные параметры запроса"

type Handler struct {
	service CustomerService
	logger  Logger
}

func NewHandler(service CustomerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/customers
// Query params: search (имя, телефон или номер авто), completed=true (только с завершёнными визитами)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &models.ListCustomersRequest{Search: strings.TrimSpace(q.Get("search"))}

	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /admin/customers - Invalid completed flag: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		req.Completed = completed
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /admin/customers - Failed to list customers: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
