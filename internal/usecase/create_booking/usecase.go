package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/service"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/identity"
)

// Исходы бронирования для метрик
const (
	resultCreated         = "created"
	resultInvalid         = "invalid"
	resultDayClosed       = "day_closed"
	resultSlotFull        = "slot_full"
	resultServiceNotFound = "service_not_found"
	resultCodeTaken       = "code_taken"
	resultError           = "error"
)

// maxCodeAttempts сгенерированный код перегенерируется не более одного раза
const maxCodeAttempts = 2

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	settingsRepo SettingsRepository
	serviceRepo  ServiceRepository
	identity     IdentityResolver
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger

	newReferenceCode func(now time.Time) string
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	settingsRepo SettingsRepository,
	serviceRepo ServiceRepository,
	identity IdentityResolver,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		settingsRepo:     settingsRepo,
		serviceRepo:      serviceRepo,
		identity:         identity,
		txManager:        txManager,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		newReferenceCode: generateReferenceCode,
	}
}

// Execute выполняет use case создания бронирования.
// Подсчёт занятости и вставка выполняются в одной сериализуемой транзакции,
// поэтому вместимость слота не превышается при параллельных запросах
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	cmd, err := validateRequest(req, uc.identity.Region())
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.record(resultInvalid)
		return nil, err
	}

	uc.logger.Info("CreateBooking: date=%s, time=%s, service=%d, plate=%s",
		cmd.date.Format(domain.DateFormat), cmd.startTime, cmd.serviceID, cmd.plate)

	var result *domain.Booking
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		if !cmd.codeSupplied {
			cmd.referenceCode = uc.newReferenceCode(uc.timeProvider.Now())
		}

		result, err = uc.allocate(ctx, cmd)
		if err == nil || !errors.Is(err, bookingRepo.ErrDuplicateReferenceCode) {
			break
		}

		if cmd.codeSupplied {
			uc.logger.Warn("CreateBooking: reference code %s already taken", cmd.referenceCode)
			uc.record(resultCodeTaken)
			return nil, fmt.Errorf("%w: %s", ErrReferenceCodeTaken, cmd.referenceCode)
		}
		uc.logger.Warn("CreateBooking: generated reference code %s collided, attempt %d", cmd.referenceCode, attempt)
	}

	if err != nil {
		return nil, uc.fail(err)
	}

	uc.record(resultCreated)
	uc.logger.Info("CreateBooking: successfully created booking id=%d, code=%s", result.ID, result.ReferenceCode)

	return &Response{Booking: result}, nil
}

// allocate одна единица работы: проверка вместимости, клиент, автомобиль, вставка
func (uc *UseCase) allocate(ctx context.Context, cmd *command) (*domain.Booking, error) {
	var result *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Настройки перечитываются на каждой попытке
		settings, err := uc.settingsRepo.Get(txCtx)
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			settings = domain.DefaultSettings()
		} else if err != nil {
			return fmt.Errorf("%w: Execute - get settings: %w", ErrInternal, err)
		}

		if !settings.IsWorkingDay(cmd.date.Weekday()) {
			return fmt.Errorf("%w: %s", ErrDayClosed, cmd.date.Format(domain.DateFormat))
		}

		occupied, err := uc.bookingRepo.CountActiveBySlot(txCtx, cmd.date, cmd.startTime)
		if err != nil {
			return fmt.Errorf("%w: Execute - count slot: %w", ErrInternal, err)
		}
		if occupied >= settings.MaxSlotsPerTime {
			return fmt.Errorf("%w: %d/%d taken", ErrSlotFull, occupied, settings.MaxSlotsPerTime)
		}

		service, err := uc.serviceRepo.GetByID(txCtx, cmd.serviceID)
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return fmt.Errorf("%w: id=%d", ErrServiceNotFound, cmd.serviceID)
		}
		if err != nil {
			return fmt.Errorf("%w: Execute - get service: %w", ErrInternal, err)
		}

		customer, err := uc.identity.ResolveCustomer(txCtx, cmd.phone, cmd.name)
		if err != nil {
			return identityError("resolve customer", err)
		}

		vehicle, err := uc.identity.ResolveVehicle(txCtx, cmd.plate, cmd.model, customer.ID)
		if err != nil {
			return identityError("resolve vehicle", err)
		}

		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			ReferenceCode: cmd.referenceCode,
			BookingDate:   cmd.date,
			StartTime:     cmd.startTime,
			Status:        domain.StatusPending,
			PaymentMethod: cmd.paymentMethod,
			TotalPrice:    service.Price,
			Notes:         cmd.notes,
			CustomerID:    customer.ID,
			VehicleID:     vehicle.ID,
			ServiceID:     service.ID,
		})
		if err != nil {
			return fmt.Errorf("%w: Execute - create booking: %w", ErrInternal, err)
		}

		created.Customer = customer
		created.Vehicle = vehicle
		created.Service = service
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// fail логирует отказ и приводит ошибку к одному из sentinel'ов пакета
func (uc *UseCase) fail(err error) error {
	switch {
	case errors.Is(err, ErrDayClosed):
		uc.logger.Warn("CreateBooking: %v", err)
		uc.record(resultDayClosed)
		return err
	case errors.Is(err, ErrSlotFull):
		uc.logger.Warn("CreateBooking: %v", err)
		uc.record(resultSlotFull)
		return err
	case errors.Is(err, ErrServiceNotFound):
		uc.logger.Warn("CreateBooking: %v", err)
		uc.record(resultServiceNotFound)
		return err
	case errors.Is(err, ErrInvalidInput):
		uc.logger.Warn("CreateBooking: %v", err)
		uc.record(resultInvalid)
		return err
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: %v", err)
		uc.record(resultError)
		return err
	default:
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		uc.record(resultError)
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

func (uc *UseCase) record(result string) {
	if uc.metrics != nil {
		uc.metrics.RecordBooking(result)
	}
}

// identityError ошибки валидации телефона/номера становятся ErrInvalidInput
func identityError(op string, err error) error {
	if errors.Is(err, identity.ErrInvalidPhone) ||
		errors.Is(err, identity.ErrInvalidPlate) ||
		errors.Is(err, identity.ErrInvalidName) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: Execute - %s: %w", ErrInternal, op, err)
}
