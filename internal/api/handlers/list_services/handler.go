package list_services

import (
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

type Handler struct {
	service    CatalogService
	activeOnly bool
	logger     Logger
}

// NewHandler activeOnly=true для публичного каталога, false для админки
func NewHandler(service CatalogService, activeOnly bool, logger Logger) *Handler {
	return &Handler{
		service:    service,
		activeOnly: activeOnly,
		logger:     logger,
	}
}

// Handle GET /api/v1/services и GET /api/v1/admin/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.List(r.Context(), h.activeOnly)
	if err != nil {
		h.logger.Error("GET %s - Failed to list services: %v", r.URL.Path, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, services)
}
