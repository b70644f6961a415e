package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/customers/models"
)

// Service сервис клиентов для админки
type Service struct {
	customerRepo CustomerRepository
	vehicleRepo  VehicleRepository
	logger       Logger
}

// NewService создает сервис клиентов
func NewService(customerRepo CustomerRepository, vehicleRepo VehicleRepository, logger Logger) *Service {
	return &Service{
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		logger:       logger,
	}
}

// List возвращает клиентов с автомобилями и статистикой посещений
func (s *Service) List(ctx context.Context, req *models.ListCustomersRequest) (*models.CustomerListResponse, error) {
	filter := domain.CustomersFilter{
		Search:        strings.TrimSpace(req.Search),
		CompletedOnly: req.Completed,
	}

	summaries, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: customer repository error: %v", err)
		return nil, fmt.Errorf("%w: List - customers: %w", ErrInternal, err)
	}

	ids := make([]int64, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, c.ID)
	}

	vehicles, err := s.vehicleRepo.ListByCustomerIDs(ctx, ids)
	if err != nil {
		s.logger.Error("List: vehicle repository error: %v", err)
		return nil, fmt.Errorf("%w: List - vehicles: %w", ErrInternal, err)
	}

	byCustomer := make(map[int64][]*domain.Vehicle, len(summaries))
	for _, v := range vehicles {
		byCustomer[v.CustomerID] = append(byCustomer[v.CustomerID], v)
	}
	for _, c := range summaries {
		c.Vehicles = byCustomer[c.ID]
	}

	s.logger.Info("List: fetched %d customers (search=%q, completed=%t)", len(summaries), filter.Search, filter.CompletedOnly)
	return models.FromDomainSummaries(summaries), nil
}
