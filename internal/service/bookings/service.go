package bookings

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/booking"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/bookings/models"
)

// Service сервис администрирования бронирований
type Service struct {
	bookingRepo  BookingRepository
	settingsRepo SettingsRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, settingsRepo SettingsRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		settingsRepo: settingsRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает страницу бронирований и общее количество по фильтру.
// Оба запроса читаются из одного снимка
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var (
		bookings []*domain.Booking
		total    int
	)

	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if bookings, err = s.bookingRepo.List(txCtx, filter); err != nil {
			return err
		}
		total, err = s.bookingRepo.Count(txCtx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d of %d bookings (limit=%d, offset=%d)", len(bookings), total, filter.Limit, filter.Offset)
	return models.FromDomainBookingList(bookings, total), nil
}

// Update меняет статус и/или заметки бронирования и возвращает его новое состояние.
// Перевод в CANCELLED освобождает место в слоте. Возврат из CANCELLED снова занимает место,
// поэтому вместимость слота перепроверяется в той же сериализуемой транзакции
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	update, err := req.ToDomainUpdate()
	if err != nil {
		s.logger.Warn("Update: booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if update.Notes != nil && utf8.RuneCountInString(*update.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes longer than %d", ErrInvalidInput, domain.MaxNotesLength)
	}

	var updated *domain.Booking
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if reactivates(current, update) {
			if err := s.ensureCapacity(txCtx, current); err != nil {
				return err
			}
		}

		if err := s.bookingRepo.Update(txCtx, id, update); err != nil {
			return err
		}
		updated, err = s.bookingRepo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("Update: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		case errors.Is(err, ErrSlotFull):
			s.logger.Warn("Update: booking id=%d cannot be restored: %v", id, err)
			return nil, err
		}
		s.logger.Error("Update: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Update: booking id=%d updated, status=%s", id, updated.Status)
	return models.FromDomainBooking(updated), nil
}

// reactivates true, если отменённое бронирование переводится в активный статус
func reactivates(current *domain.Booking, update domain.BookingUpdate) bool {
	return !current.IsActive() && update.Status != nil && *update.Status != domain.StatusCancelled
}

// ensureCapacity проверяет, что в слоте бронирования осталось место
func (s *Service) ensureCapacity(ctx context.Context, booking *domain.Booking) error {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
		settings = domain.DefaultSettings()
	} else if err != nil {
		return fmt.Errorf("ensureCapacity - get settings: %w", err)
	}

	occupied, err := s.bookingRepo.CountActiveBySlot(ctx, booking.BookingDate, booking.StartTime)
	if err != nil {
		return fmt.Errorf("ensureCapacity - count slot: %w", err)
	}
	if occupied >= settings.MaxSlotsPerTime {
		return fmt.Errorf("%w: %s %s %d/%d taken", ErrSlotFull,
			booking.BookingDate.Format(domain.DateFormat), booking.StartTime, occupied, settings.MaxSlotsPerTime)
	}
	return nil
}

// Delete физически удаляет бронирование
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Delete: booking id=%d not found", id)
			return ErrBookingNotFound
		}
		s.logger.Error("Delete: repository error for booking id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Delete: booking id=%d deleted", id)
	return nil
}
