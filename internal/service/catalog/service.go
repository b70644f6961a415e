package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	serviceRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/catalog/models"
)

// Service каталог услуг мойки
type Service struct {
	repo   ServiceRepository
	logger Logger
}

// NewService создает сервис каталога
func NewService(repo ServiceRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List возвращает услуги в порядке sortOrder. activeOnly для публичного каталога
func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.ServiceResponse, error) {
	services, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}
	return models.FromDomainServiceList(services), nil
}

// Create добавляет услугу в конец каталога
func (s *Service) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	service := req.ToDomain()
	service.Name = strings.TrimSpace(service.Name)

	if err := validateService(service.Name, service.Price, service.DurationMinutes); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.repo.Create(ctx, service)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: service id=%d %q created, sortOrder=%d", created.ID, created.Name, created.SortOrder)
	return models.FromDomainService(created), nil
}

// Update частично обновляет услугу
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	update := req.ToDomain()

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		update.Name = &name
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	if update.DurationMinutes != nil && *update.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("Update: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Update: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Update: service id=%d updated", id)
	return models.FromDomainService(updated), nil
}

// Delete удаляет услугу. Услугу с бронированиями удалить нельзя, её можно отключить
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("Delete: service id=%d deleted", id)
		return nil
	case errors.Is(err, serviceRepo.ErrServiceNotFound):
		s.logger.Warn("Delete: service id=%d not found", id)
		return ErrServiceNotFound
	case errors.Is(err, serviceRepo.ErrServiceInUse):
		s.logger.Warn("Delete: service id=%d is referenced by bookings", id)
		return ErrServiceInUse
	default:
		s.logger.Error("Delete: repository error for service id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
	}
}

func validateService(name string, price int64, duration int) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}
	return nil
}
