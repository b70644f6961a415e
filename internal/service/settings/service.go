package settings

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	cacheSettings "github.com/m04kA/SMC-CarWashBooking/internal/infra/cache/settings"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/settings/models"
)

// Service сервис настроек мойки
type Service struct {
	repo      SettingsRepository
	cache     SettingsCache
	txManager TransactionManager
	logger    Logger

	// generation растёт после каждого сохранения настроек
	generation atomic.Uint64
}

// NewService создает сервис настроек. cache может быть nil
func NewService(repo SettingsRepository, cache SettingsCache, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		txManager: txManager,
		logger:    logger,
	}
}

// Current читает настройки из БД. Если запись не создана, возвращает значения по умолчанию
func (s *Service) Current(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
		s.logger.Info("Current: settings not found, using defaults")
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Current - repository error: %w", ErrInternal, err)
	}
	return settings, nil
}

// CurrentCached как Current, но сначала смотрит в кэш.
// Ошибки Redis не ломают запрос: логируются, и настройки читаются из БД
func (s *Service) CurrentCached(ctx context.Context) (*domain.Settings, error) {
	if s.cache == nil {
		return s.Current(ctx)
	}

	cached, err := s.cache.Get(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cacheSettings.ErrCacheMiss) {
		s.logger.Warn("CurrentCached: cache read failed: %v", err)
	}

	gen := s.generation.Load()

	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, settings); err != nil {
		s.logger.Warn("CurrentCached: cache write failed: %v", err)
		return settings, nil
	}

	// Пока читали БД, Update мог сохранить новые настройки и уже сбросить кэш.
	// Тогда записанное значение устарело и удаляется
	if s.generation.Load() != gen {
		s.logger.Info("CurrentCached: settings changed during cache fill, dropping cached value")
		s.invalidate(ctx, "CurrentCached")
	}
	return settings, nil
}

// Get возвращает настройки для API
func (s *Service) Get(ctx context.Context) (*models.SettingsResponse, error) {
	settings, err := s.CurrentCached(ctx)
	if err != nil {
		s.logger.Error("Get: %v", err)
		return nil, err
	}
	return models.FromDomainSettings(settings), nil
}

// Update накладывает изменения на текущие настройки, валидирует и сохраняет их.
// После сохранения кэш сбрасывается
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	var saved *domain.Settings

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.Current(txCtx)
		if err != nil {
			return err
		}

		next := req.ApplyTo(current)
		if err := validateSettings(next); err != nil {
			return err
		}

		saved, err = s.repo.Upsert(txCtx, next)
		if err != nil {
			return fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.logger.Warn("Update: validation failed: %v", err)
		} else {
			s.logger.Error("Update: %v", err)
		}
		return nil, err
	}

	s.generation.Add(1)
	s.invalidate(ctx, "Update")

	s.logger.Info("Update: settings saved (open=%s, close=%s, slot=%dm, capacity=%d)",
		saved.OpenTime, saved.CloseTime, saved.SlotDurationMinutes, saved.MaxSlotsPerTime)
	return models.FromDomainSettings(saved), nil
}

func (s *Service) invalidate(ctx context.Context, op string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("%s: cache invalidation failed: %v", op, err)
	}
}
