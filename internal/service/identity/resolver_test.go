package identity

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	vehicleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/vehicle"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
)

// memoryStore повторяет семантику ON CONFLICT для клиентов и автомобилей
type memoryStore struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
	vehicles  map[string]*domain.Vehicle
	nextID    int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		customers: make(map[string]*domain.Customer),
		vehicles:  make(map[string]*domain.Vehicle),
	}
}

func (s *memoryStore) Upsert(_ context.Context, phone, name string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[phone]
	if !ok {
		s.nextID++
		c = &domain.Customer{ID: s.nextID, Phone: phone}
		s.customers[phone] = c
	}
	c.Name = name
	cp := *c
	return &cp, nil
}

type vehicleStore struct{ *memoryStore }

func (s vehicleStore) GetByPlate(_ context.Context, plate string) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[plate]
	if !ok {
		return nil, vehicleRepo.ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}

func (s vehicleStore) Upsert(_ context.Context, plate string, model *string, customerID int64) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[plate]
	if !ok {
		s.nextID++
		v = &domain.Vehicle{ID: s.nextID, Plate: plate}
		s.vehicles[plate] = v
	}
	if model != nil {
		v.Model = model
	}
	v.CustomerID = customerID
	cp := *v
	return &cp, nil
}

func newTestResolver() (*Resolver, *memoryStore) {
	store := newMemoryStore()
	return NewResolver(store, vehicleStore{store}, "PY", logger.NewDiscard()), store
}

func TestResolveCustomer_Idempotent(t *testing.T) {
	r, store := newTestResolver()
	ctx := context.Background()

	first, err := r.ResolveCustomer(ctx, "0981 123 456", "Ana")
	require.NoError(t, err)
	second, err := r.ResolveCustomer(ctx, "0981 123 456", "Ana")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.customers, 1)
	assert.True(t, strings.HasPrefix(first.Phone, "+595"))
}

func TestResolveCustomer_SamePhoneDifferentFormatUpdatesName(t *testing.T) {
	r, store := newTestResolver()
	ctx := context.Background()

	first, err := r.ResolveCustomer(ctx, "0981 123 456", "Ana")
	require.NoError(t, err)
	second, err := r.ResolveCustomer(ctx, "+595 981 123456", "Ana María")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ana María", second.Name)
	assert.Len(t, store.customers, 1)
}

func TestResolveCustomer_Invalid(t *testing.T) {
	r, store := newTestResolver()
	ctx := context.Background()

	_, err := r.ResolveCustomer(ctx, "   ", "Ana")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = r.ResolveCustomer(ctx, "0981123456", "  ")
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.Empty(t, store.customers)
}

func TestResolveVehicle_Idempotent(t *testing.T) {
	r, store := newTestResolver()
	ctx := context.Background()

	first, err := r.ResolveVehicle(ctx, "abc 123", ptr.Ptr("Corolla"), 1)
	require.NoError(t, err)
	second, err := r.ResolveVehicle(ctx, "ABC123", ptr.Ptr("Corolla"), 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ABC123", second.Plate)
	assert.Len(t, store.vehicles, 1)
}

func TestResolveVehicle_ReassignsOwner(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	_, err := r.ResolveVehicle(ctx, "ABC123", ptr.Ptr("Corolla"), 1)
	require.NoError(t, err)

	got, err := r.ResolveVehicle(ctx, "ABC123", ptr.Ptr("Corolla 2010"), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), got.CustomerID)
	assert.Equal(t, "Corolla 2010", *got.Model)
}

func TestResolveVehicle_EmptyModelKeepsExisting(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	_, err := r.ResolveVehicle(ctx, "ABC123", ptr.Ptr("Hilux"), 1)
	require.NoError(t, err)

	got, err := r.ResolveVehicle(ctx, "ABC123", ptr.Ptr("  "), 1)
	require.NoError(t, err)
	require.NotNil(t, got.Model)
	assert.Equal(t, "Hilux", *got.Model)
}

func TestVehicleOwnerOnRebook(t *testing.T) {
	existing := &domain.Vehicle{ID: 5, Plate: "ABC123", CustomerID: 1}

	assert.Equal(t, int64(1), vehicleOwnerOnRebook(existing, 1))
	assert.Equal(t, int64(7), vehicleOwnerOnRebook(existing, 7))
}
