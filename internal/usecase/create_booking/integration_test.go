//go:build integration

package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/service"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	"github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/storagetest"
	vehicleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/vehicle"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/identity"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
	"github.com/m04kA/SMC-CarWashBooking/pkg/txmanager"
)

type retryCounter struct {
	mu    sync.Mutex
	count int
}

func (r *retryCounter) IncTxRetry(string) {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

type pgFixture struct {
	db       *dbmetrics.DB
	bookings *bookingRepo.Repository
	retries  *retryCounter
	uc       *UseCase
}

// newPGFixture база с настройками (вместимость capacity) и одной услугой с id=1
func newPGFixture(t *testing.T, capacity int) *pgFixture {
	t.Helper()
	ctx := context.Background()

	db := storagetest.NewDB(t)
	bookings := bookingRepo.NewRepository(db)
	customers := customerRepo.NewRepository(db)
	vehicles := vehicleRepo.NewRepository(db)
	services := serviceRepo.NewRepository(db)
	settings := settingsRepo.NewRepository(db)

	cfg := domain.DefaultSettings()
	cfg.MaxSlotsPerTime = capacity
	_, err := settings.Upsert(ctx, cfg)
	require.NoError(t, err)

	service, err := services.Create(ctx, &domain.Service{
		Name:            "Lavado completo",
		Price:           50000,
		DurationMinutes: 30,
		Active:          true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), service.ID)

	retries := &retryCounter{}
	txMgr := txmanager.NewTransactionManager(db,
		txmanager.WithMaxRetries(10),
		txmanager.WithBaseDelay(5*time.Millisecond),
		txmanager.WithRetryObserver(retries),
	)
	log := logger.NewDiscard()
	resolver := identity.NewResolver(customers, vehicles, "PY", log)

	return &pgFixture{
		db:       db,
		bookings: bookings,
		retries:  retries,
		uc:       NewUseCase(bookings, settings, services, resolver, txMgr, nil, log),
	}
}

func (f *pgFixture) count(t *testing.T, query string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRowContext(context.Background(), query).Scan(&n))
	return n
}

// concurrently запускает n запросов одновременно и возвращает их ошибки
func (f *pgFixture) concurrently(n int, build func(i int) *Request) []error {
	errs := make([]error, n)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Execute(context.Background(), build(i))
		}(i)
	}
	close(start)
	wg.Wait()

	return errs
}

func TestPostgres_ConcurrentBookingsRespectCapacity(t *testing.T) {
	const (
		capacity = 3
		attempts = 10
	)
	f := newPGFixture(t, capacity)

	errs := f.concurrently(attempts, func(i int) *Request {
		req := validRequest()
		req.Customer.Name = fmt.Sprintf("Cliente %d", i)
		req.Customer.Phone = fmt.Sprintf("0981 %06d", 200000+i)
		req.Customer.Plate = fmt.Sprintf("AAA%03d", i)
		return req
	})

	created, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, capacity, created)
	assert.Equal(t, attempts-capacity, full)

	date, err := time.Parse(domain.DateFormat, monday)
	require.NoError(t, err)
	occupied, err := f.bookings.CountActiveBySlot(context.Background(), date, "10:00")
	require.NoError(t, err)
	assert.Equal(t, capacity, occupied)
	assert.Equal(t, capacity, f.count(t, "SELECT COUNT(*) FROM bookings"))
	t.Logf("serialization retries: %d", f.retries.count)
}

func TestPostgres_SameCustomerConcurrentFirstBookings(t *testing.T) {
	const attempts = 6
	f := newPGFixture(t, attempts)

	// Один и тот же клиент в разных форматах телефона и номера
	phones := []string{"0981 123 456", "+595 981 123-456", "+595981123456"}
	plates := []string{"abc 123", "ABC123", " abc123 "}

	errs := f.concurrently(attempts, func(i int) *Request {
		req := validRequest()
		req.Customer.Phone = phones[i%len(phones)]
		req.Customer.Plate = plates[i%len(plates)]
		return req
	})

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, attempts, f.count(t, "SELECT COUNT(*) FROM bookings"))
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM customers"))
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM vehicles"))
}

func TestPostgres_CancelledBookingFreesPlace(t *testing.T) {
	f := newPGFixture(t, 1)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.Customer.Phone = "0982 555 444"
	second.Customer.Plate = "XYZ789"
	_, err = f.uc.Execute(ctx, second)
	require.ErrorIs(t, err, ErrSlotFull)

	require.NoError(t, f.bookings.Update(ctx, first.Booking.ID, domain.BookingUpdate{
		Status: ptr.Ptr(domain.StatusCancelled),
	}))

	resp, err := f.uc.Execute(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.Booking.Status)
	assert.Equal(t, int64(50000), resp.Booking.TotalPrice)
}

func TestPostgres_SuppliedReferenceCodeTaken(t *testing.T) {
	f := newPGFixture(t, 5)
	ctx := context.Background()

	req := validRequest()
	req.ReferenceCode = ptr.Ptr("lav-fixed-1")
	resp, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "LAV-FIXED-1", resp.Booking.ReferenceCode)

	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrReferenceCodeTaken)
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM bookings"))
}

func TestPostgres_ClosedDayPersistsNothing(t *testing.T) {
	f := newPGFixture(t, 5)

	req := validRequest()
	req.Date = sunday
	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrDayClosed)
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM bookings"))
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM customers"))
}
