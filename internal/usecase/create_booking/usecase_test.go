package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/service"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	vehicleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/vehicle"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/identity"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// 2025-01-13 понедельник, 2025-01-12 воскресенье
const (
	monday = "2025-01-13"
	sunday = "2025-01-12"
)

// store общее in-memory состояние. Все репозитории работают под mu,
// который держит fakeTxManager на время единицы работы
type store struct {
	mu sync.Mutex

	settings  *domain.Settings
	services  map[int64]*domain.Service
	bookings  []*domain.Booking
	customers map[string]*domain.Customer
	vehicles  map[string]*domain.Vehicle
	nextID    int64

	countErr error
}

type snapshot struct {
	bookings  []*domain.Booking
	customers map[string]*domain.Customer
	vehicles  map[string]*domain.Vehicle
	nextID    int64
}

func newStore(capacity int) *store {
	settings := domain.DefaultSettings()
	settings.MaxSlotsPerTime = capacity

	return &store{
		settings: settings,
		services: map[int64]*domain.Service{
			1: {ID: 1, Name: "Lavado completo", Price: 50000, DurationMinutes: 30, Active: true},
		},
		customers: make(map[string]*domain.Customer),
		vehicles:  make(map[string]*domain.Vehicle),
		nextID:    100,
	}
}

func (s *store) snapshot() snapshot {
	snap := snapshot{
		bookings:  make([]*domain.Booking, 0, len(s.bookings)),
		customers: make(map[string]*domain.Customer, len(s.customers)),
		vehicles:  make(map[string]*domain.Vehicle, len(s.vehicles)),
		nextID:    s.nextID,
	}
	for _, b := range s.bookings {
		cp := *b
		snap.bookings = append(snap.bookings, &cp)
	}
	for k, c := range s.customers {
		cp := *c
		snap.customers[k] = &cp
	}
	for k, v := range s.vehicles {
		cp := *v
		snap.vehicles[k] = &cp
	}
	return snap
}

func (s *store) restore(snap snapshot) {
	s.bookings = snap.bookings
	s.customers = snap.customers
	s.vehicles = snap.vehicles
	s.nextID = snap.nextID
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) activeAt(date string, at types.TimeString) int {
	count := 0
	for _, b := range s.bookings {
		if b.BookingDate.Format(domain.DateFormat) == date && b.StartTime == at && b.IsActive() {
			count++
		}
	}
	return count
}

// fakeTxManager сериализует единицы работы и откатывает состояние при ошибке
type fakeTxManager struct {
	store *store
	calls int
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	m.calls++
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeBookings struct{ s *store }

func (r fakeBookings) CountActiveBySlot(_ context.Context, date time.Time, startTime types.TimeString) (int, error) {
	if r.s.countErr != nil {
		return 0, r.s.countErr
	}
	return r.s.activeAt(date.Format(domain.DateFormat), startTime), nil
}

func (r fakeBookings) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	for _, b := range r.s.bookings {
		if b.ReferenceCode == booking.ReferenceCode {
			return nil, fmt.Errorf("%w: Create - code=%s", bookingRepo.ErrDuplicateReferenceCode, booking.ReferenceCode)
		}
	}
	cp := *booking
	cp.ID = r.s.id()
	r.s.bookings = append(r.s.bookings, &cp)

	out := cp
	return &out, nil
}

type fakeSettings struct{ s *store }

func (r fakeSettings) Get(_ context.Context) (*domain.Settings, error) {
	if r.s.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	cp := *r.s.settings
	return &cp, nil
}

type fakeServices struct{ s *store }

func (r fakeServices) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	svc, ok := r.s.services[id]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	cp := *svc
	return &cp, nil
}

type fakeCustomers struct{ s *store }

func (r fakeCustomers) Upsert(_ context.Context, phone, name string) (*domain.Customer, error) {
	c, ok := r.s.customers[phone]
	if !ok {
		c = &domain.Customer{ID: r.s.id(), Phone: phone}
		r.s.customers[phone] = c
	}
	c.Name = name
	cp := *c
	return &cp, nil
}

type fakeVehicles struct{ s *store }

func (r fakeVehicles) GetByPlate(_ context.Context, plate string) (*domain.Vehicle, error) {
	v, ok := r.s.vehicles[plate]
	if !ok {
		return nil, vehicleRepo.ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}

func (r fakeVehicles) Upsert(_ context.Context, plate string, model *string, customerID int64) (*domain.Vehicle, error) {
	v, ok := r.s.vehicles[plate]
	if !ok {
		v = &domain.Vehicle{ID: r.s.id(), Plate: plate}
		r.s.vehicles[plate] = v
	}
	if model != nil {
		v.Model = model
	}
	v.CustomerID = customerID
	cp := *v
	return &cp, nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *fakeMetrics) RecordBooking(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	m.results[result]++
}

func (m *fakeMetrics) get(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[result]
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fixture struct {
	uc      *UseCase
	store   *store
	tx      *fakeTxManager
	metrics *fakeMetrics
}

func newFixture(capacity int) *fixture {
	s := newStore(capacity)
	tx := &fakeTxManager{store: s}
	m := &fakeMetrics{}
	log := logger.NewDiscard()

	resolver := identity.NewResolver(fakeCustomers{s}, fakeVehicles{s}, "PY", log)
	uc := NewUseCase(fakeBookings{s}, fakeSettings{s}, fakeServices{s}, resolver, tx, m, log)
	uc.timeProvider = fixedTime{now: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}

	return &fixture{uc: uc, store: s, tx: tx, metrics: m}
}

func validRequest() *Request {
	return &Request{
		Date:          monday,
		StartTime:     "10:00",
		ServiceID:     1,
		PaymentMethod: "cash",
		Customer: CustomerInput{
			Name:  "Ana",
			Phone: "0981 123 456",
			Plate: "abc 123",
			Model: ptr.Ptr("Corolla"),
		},
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(2)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	b := resp.Booking
	assert.NotZero(t, b.ID)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, monday, b.BookingDate.Format(domain.DateFormat))
	assert.Equal(t, types.TimeString("10:00"), b.StartTime)
	assert.Equal(t, int64(50000), b.TotalPrice)
	assert.Equal(t, "cash", b.PaymentMethod)
	assert.True(t, strings.HasPrefix(b.ReferenceCode, "LAV-"))

	require.NotNil(t, b.Customer)
	require.NotNil(t, b.Vehicle)
	require.NotNil(t, b.Service)
	assert.Equal(t, "+595981123456", b.Customer.Phone)
	assert.Equal(t, "ABC123", b.Vehicle.Plate)
	assert.Equal(t, b.Customer.ID, b.Vehicle.CustomerID)
	assert.Equal(t, "Lavado completo", b.Service.Name)

	assert.Equal(t, 1, f.metrics.get(resultCreated))
}

func TestExecute_PriceIsSnapshot(t *testing.T) {
	f := newFixture(2)

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	f.store.services[1].Price = 70000

	require.Len(t, f.store.bookings, 1)
	assert.Equal(t, int64(50000), f.store.bookings[0].TotalPrice)
}

func TestExecute_ConcurrentRequestsNeverExceedCapacity(t *testing.T) {
	const (
		capacity = 3
		attempts = 20
	)
	f := newFixture(capacity)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		full    int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := validRequest()
			req.Customer.Phone = fmt.Sprintf("0981 %06d", 100000+i)
			req.Customer.Plate = fmt.Sprintf("AAA%03d", i)

			_, err := f.uc.Execute(context.Background(), req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrSlotFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, success)
	assert.Equal(t, attempts-capacity, full)
	assert.Equal(t, capacity, f.store.activeAt(monday, "10:00"))
	assert.Len(t, f.store.customers, capacity)
}

func TestExecute_LastRemainingPlace(t *testing.T) {
	f := newFixture(2)
	date, _ := time.Parse(domain.DateFormat, monday)
	f.store.bookings = []*domain.Booking{
		{ID: 1, ReferenceCode: "LAV-A", BookingDate: date, StartTime: "10:00", Status: domain.StatusConfirmed},
		{ID: 2, ReferenceCode: "LAV-B", BookingDate: date, StartTime: "10:00", Status: domain.StatusCancelled},
	}

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.activeAt(monday, "10:00"))

	other := validRequest()
	other.Customer.Phone = "0982 555 444"
	other.Customer.Plate = "XYZ999"

	_, err = f.uc.Execute(context.Background(), other)
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, 2, f.store.activeAt(monday, "10:00"))
	assert.Equal(t, 1, f.metrics.get(resultSlotFull))
}

func TestExecute_SlotFullPersistsNothing(t *testing.T) {
	f := newFixture(1)
	date, _ := time.Parse(domain.DateFormat, monday)
	f.store.bookings = []*domain.Booking{
		{ID: 1, ReferenceCode: "LAV-A", BookingDate: date, StartTime: "10:00", Status: domain.StatusPending},
	}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Empty(t, f.store.customers)
	assert.Empty(t, f.store.vehicles)
	assert.Len(t, f.store.bookings, 1)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	f := newFixture(2)
	req := validRequest()
	req.ServiceID = 42

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Empty(t, f.store.customers)
	assert.Empty(t, f.store.vehicles)
	assert.Empty(t, f.store.bookings)
	assert.Equal(t, 1, f.metrics.get(resultServiceNotFound))
}

func TestExecute_DayClosed(t *testing.T) {
	f := newFixture(2)
	req := validRequest()
	req.Date = sunday

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDayClosed)
	assert.Empty(t, f.store.bookings)
}

func TestExecute_DefaultSettingsWhenMissing(t *testing.T) {
	f := newFixture(5)
	f.store.settings = nil

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	other := validRequest()
	other.Customer.Phone = "0982 555 444"
	other.Customer.Plate = "XYZ999"

	// по умолчанию одно место в слоте
	_, err = f.uc.Execute(context.Background(), other)
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{name: "missing date", modify: func(r *Request) { r.Date = "" }},
		{name: "malformed date", modify: func(r *Request) { r.Date = "13/01/2025" }},
		{name: "missing time", modify: func(r *Request) { r.StartTime = "" }},
		{name: "malformed time", modify: func(r *Request) { r.StartTime = "9:00" }},
		{name: "out of range time", modify: func(r *Request) { r.StartTime = "25:00" }},
		{name: "zero service", modify: func(r *Request) { r.ServiceID = 0 }},
		{name: "missing payment method", modify: func(r *Request) { r.PaymentMethod = "  " }},
		{name: "long payment method", modify: func(r *Request) {
			r.PaymentMethod = strings.Repeat("p", domain.MaxPaymentMethodLength+1)
		}},
		{name: "missing name", modify: func(r *Request) { r.Customer.Name = "" }},
		{name: "missing phone", modify: func(r *Request) { r.Customer.Phone = "" }},
		{name: "garbage phone", modify: func(r *Request) { r.Customer.Phone = "abc" }},
		{name: "long phone", modify: func(r *Request) { r.Customer.Phone = strings.Repeat("9", domain.MaxPhoneLength+8) }},
		{name: "missing plate", modify: func(r *Request) { r.Customer.Plate = " " }},
		{name: "long model", modify: func(r *Request) {
			r.Customer.Model = ptr.Ptr(strings.Repeat("m", domain.MaxModelLength+1))
		}},
		{name: "long notes", modify: func(r *Request) { r.Notes = ptr.Ptr(strings.Repeat("x", domain.MaxNotesLength+1)) }},
		{name: "empty reference code", modify: func(r *Request) { r.ReferenceCode = ptr.Ptr(" ") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(2)
			req := validRequest()
			tt.modify(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, f.tx.calls)
			assert.Empty(t, f.store.bookings)
		})
	}
}

func TestExecute_LengthLimitsCountRunes(t *testing.T) {
	f := newFixture(2)
	req := validRequest()
	req.PaymentMethod = strings.Repeat("é", domain.MaxPaymentMethodLength)
	req.Customer.Model = ptr.Ptr(strings.Repeat("ñ", domain.MaxModelLength))

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.PaymentMethod, resp.Booking.PaymentMethod)
	assert.Equal(t, *req.Customer.Model, *resp.Booking.Vehicle.Model)
}

func TestExecute_GeneratedCodeCollisionRegenerates(t *testing.T) {
	f := newFixture(2)
	date, _ := time.Parse(domain.DateFormat, monday)
	f.store.bookings = []*domain.Booking{
		{ID: 1, ReferenceCode: "LAV-DUP", BookingDate: date, StartTime: "08:00", Status: domain.StatusPending},
	}

	codes := []string{"LAV-DUP", "LAV-FRESH"}
	f.uc.newReferenceCode = func(time.Time) string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "LAV-FRESH", resp.Booking.ReferenceCode)
	assert.Equal(t, 2, f.tx.calls)
	assert.Len(t, f.store.customers, 1)
	assert.Len(t, f.store.bookings, 2)
}

func TestExecute_GeneratedCodeCollidesTwice(t *testing.T) {
	f := newFixture(2)
	date, _ := time.Parse(domain.DateFormat, monday)
	f.store.bookings = []*domain.Booking{
		{ID: 1, ReferenceCode: "LAV-DUP", BookingDate: date, StartTime: "08:00", Status: domain.StatusPending},
	}
	f.uc.newReferenceCode = func(time.Time) string { return "LAV-DUP" }

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, maxCodeAttempts, f.tx.calls)
	assert.Len(t, f.store.bookings, 1)
}

func TestExecute_SuppliedCodeTaken(t *testing.T) {
	f := newFixture(2)
	date, _ := time.Parse(domain.DateFormat, monday)
	f.store.bookings = []*domain.Booking{
		{ID: 1, ReferenceCode: "LAV-MINE", BookingDate: date, StartTime: "08:00", Status: domain.StatusPending},
	}

	req := validRequest()
	req.ReferenceCode = ptr.Ptr("lav-mine")

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrReferenceCodeTaken)
	assert.Equal(t, 1, f.tx.calls)
	assert.Empty(t, f.store.customers)
	assert.Len(t, f.store.bookings, 1)
}

func TestExecute_SuppliedCodeUsed(t *testing.T) {
	f := newFixture(2)
	req := validRequest()
	req.ReferenceCode = ptr.Ptr(" lav-custom-1 ")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "LAV-CUSTOM-1", resp.Booking.ReferenceCode)
}

func TestExecute_ReturningCustomerIsReused(t *testing.T) {
	f := newFixture(5)

	first, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	again := validRequest()
	again.StartTime = "11:00"
	again.Customer.Phone = "+595 981 123-456"
	again.Customer.Plate = "ABC123"
	again.Customer.Model = nil

	second, err := f.uc.Execute(context.Background(), again)
	require.NoError(t, err)

	assert.Equal(t, first.Booking.CustomerID, second.Booking.CustomerID)
	assert.Equal(t, first.Booking.VehicleID, second.Booking.VehicleID)
	assert.Len(t, f.store.customers, 1)
	assert.Len(t, f.store.vehicles, 1)
	require.NotNil(t, second.Booking.Vehicle.Model)
	assert.Equal(t, "Corolla", *second.Booking.Vehicle.Model)
}

func TestExecute_RepositoryError(t *testing.T) {
	f := newFixture(2)
	f.store.countErr = errors.New("connection reset")

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 1, f.metrics.get(resultError))
}

func TestGenerateReferenceCode(t *testing.T) {
	now := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)

	code := generateReferenceCode(now)
	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, domain.ReferenceCodePrefix, parts[0])
	millis, err := strconv.ParseInt(parts[1], 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), millis)
	assert.Len(t, parts[2], referenceSuffixLength)
	assert.LessOrEqual(t, len(code), domain.MaxReferenceCodeLength)
}
