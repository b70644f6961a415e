package list_services

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/catalog/models"
)

type CatalogService interface {
	List(ctx context.Context, activeOnly bool) ([]models.ServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
