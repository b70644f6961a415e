package settings

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	cacheSettings "github.com/m04kA/SMC-CarWashBooking/internal/infra/cache/settings"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/settings/models"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
)

type fakeRepo struct {
	stored  *domain.Settings
	gets    int
	upserts int

	// afterRead срабатывает один раз, когда снимок уже прочитан
	afterRead func()
}

func (r *fakeRepo) Get(context.Context) (*domain.Settings, error) {
	r.gets++
	if r.stored == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	cp := *r.stored
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return &cp, nil
}

func (r *fakeRepo) Upsert(_ context.Context, s *domain.Settings) (*domain.Settings, error) {
	r.upserts++
	cp := *s
	cp.UpdatedAt = time.Now()
	r.stored = &cp
	return &cp, nil
}

type fakeCache struct {
	value       *domain.Settings
	getErr      error
	invalidated int
}

func (c *fakeCache) Get(context.Context) (*domain.Settings, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.value == nil {
		return nil, cacheSettings.ErrCacheMiss
	}
	return c.value, nil
}

func (c *fakeCache) Set(_ context.Context, s *domain.Settings) error {
	c.value = s
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.value = nil
	return nil
}

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestService_Current_DefaultsWhenMissing(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, passthroughTx{}, logger.NewDiscard())

	got, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultOpenTime, got.OpenTime)
	assert.Equal(t, domain.DefaultCloseTime, got.CloseTime)
	assert.Equal(t, 30, got.SlotDurationMinutes)
	assert.Equal(t, 1, got.MaxSlotsPerTime)
	assert.Equal(t, 10, got.BookingBufferMinutes)
	assert.Equal(t, "America/Asuncion", got.Timezone)
	assert.Zero(t, repo.upserts, "defaults must not be written")
}

func TestService_CurrentCached(t *testing.T) {
	stored := domain.DefaultSettings()
	stored.MaxSlotsPerTime = 4
	repo := &fakeRepo{stored: stored}
	cache := &fakeCache{}
	svc := NewService(repo, cache, passthroughTx{}, logger.NewDiscard())

	first, err := svc.CurrentCached(context.Background())
	require.NoError(t, err)
	second, err := svc.CurrentCached(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, first.MaxSlotsPerTime)
	assert.Equal(t, 4, second.MaxSlotsPerTime)
	assert.Equal(t, 1, repo.gets, "second read served from cache")
}

func TestService_CurrentCached_RedisDown(t *testing.T) {
	repo := &fakeRepo{stored: domain.DefaultSettings()}
	cache := &fakeCache{getErr: errors.New("dial tcp: connection refused")}
	svc := NewService(repo, cache, passthroughTx{}, logger.NewDiscard())

	got, err := svc.CurrentCached(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 1, repo.gets)
}

func TestService_Update(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{value: domain.DefaultSettings()}
	svc := NewService(repo, cache, passthroughTx{}, logger.NewDiscard())

	got, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
		OpenTime:        ptr.Ptr("07:00"),
		MaxSlotsPerTime: ptr.Ptr(3),
		WorkingDays:     []int{0, 6},
	})
	require.NoError(t, err)

	assert.Equal(t, "07:00", got.OpenTime)
	assert.Equal(t, "18:00", got.CloseTime)
	assert.Equal(t, 3, got.MaxSlotsPerTime)
	assert.Equal(t, []int{0, 6}, got.WorkingDays)
	assert.Equal(t, 1, repo.upserts)
	assert.Equal(t, 1, cache.invalidated)
	assert.Nil(t, cache.value)
}

func TestService_CurrentCached_UpdateDuringFill(t *testing.T) {
	stored := domain.DefaultSettings()
	stored.MaxSlotsPerTime = 2
	repo := &fakeRepo{stored: stored}
	cache := &fakeCache{}
	svc := NewService(repo, cache, passthroughTx{}, logger.NewDiscard())

	// Читатель получил старый снимок, затем администратор сохранил новые настройки
	repo.afterRead = func() {
		_, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{MaxSlotsPerTime: ptr.Ptr(5)})
		require.NoError(t, err)
	}

	stale, err := svc.CurrentCached(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stale.MaxSlotsPerTime)
	assert.Nil(t, cache.value, "stale snapshot must not stay in cache")

	fresh, err := svc.CurrentCached(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.MaxSlotsPerTime)
	require.NotNil(t, cache.value)
	assert.Equal(t, 5, cache.value.MaxSlotsPerTime)
}

func TestService_Update_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.UpdateSettingsRequest
	}{
		{"open after close", models.UpdateSettingsRequest{OpenTime: ptr.Ptr("19:00")}},
		{"open equals close", models.UpdateSettingsRequest{OpenTime: ptr.Ptr("18:00")}},
		{"bad time format", models.UpdateSettingsRequest{CloseTime: ptr.Ptr("6pm")}},
		{"zero duration", models.UpdateSettingsRequest{SlotDuration: ptr.Ptr(0)}},
		{"zero capacity", models.UpdateSettingsRequest{MaxSlotsPerTime: ptr.Ptr(0)}},
		{"negative buffer", models.UpdateSettingsRequest{BookingBufferMinutes: ptr.Ptr(-5)}},
		{"weekday out of range", models.UpdateSettingsRequest{WorkingDays: []int{1, 7}}},
		{"unknown timezone", models.UpdateSettingsRequest{Timezone: ptr.Ptr("Mars/Olympus")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			cache := &fakeCache{}
			svc := NewService(repo, cache, passthroughTx{}, logger.NewDiscard())

			_, err := svc.Update(context.Background(), &tt.req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, repo.upserts)
			assert.Zero(t, cache.invalidated)
		})
	}
}
