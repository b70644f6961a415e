package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

const cacheKey = "carwash:settings:" + domain.SettingsID

// Cache кэш настроек в Redis. Используется только для запросов доступности:
// аллокатор всегда читает настройки из БД внутри своей транзакции
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCache создаёт кэш настроек
func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type cachedSettings struct {
	BusinessName         string `json:"businessName"`
	WhatsappNumber       string `json:"whatsappNumber"`
	Address              string `json:"address"`
	WelcomeMessage       string `json:"welcomeMessage"`
	Currency             string `json:"currency"`
	OpenTime             string `json:"openTime"`
	CloseTime            string `json:"closeTime"`
	SlotDurationMinutes  int    `json:"slotDuration"`
	MaxSlotsPerTime      int    `json:"maxSlotsPerTime"`
	WorkingDays          []int  `json:"workingDays"`
	BookingBufferMinutes int    `json:"bookingBufferMinutes"`
	Timezone             string `json:"timezone"`
	UpdatedAt            int64  `json:"updatedAt"`
}

// Get читает настройки из кэша. При отсутствии ключа возвращает ErrCacheMiss
func (c *Cache) Get(ctx context.Context) (*domain.Settings, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get: %w", ErrCache, err)
	}

	settings, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: Get - decode: %w", ErrCache, err)
	}
	return settings, nil
}

// Set кладёт настройки в кэш на ttl
func (c *Cache) Set(ctx context.Context, settings *domain.Settings) error {
	raw, err := encode(settings)
	if err != nil {
		return fmt.Errorf("%w: Set - encode: %w", ErrCache, err)
	}
	if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %w", ErrCache, err)
	}
	return nil
}

// Invalidate удаляет настройки из кэша
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %w", ErrCache, err)
	}
	return nil
}

func encode(s *domain.Settings) ([]byte, error) {
	days := make([]int, 0, len(s.WorkingDays))
	for _, d := range s.WorkingDays {
		days = append(days, int(d))
	}

	return json.Marshal(cachedSettings{
		BusinessName:         s.BusinessName,
		WhatsappNumber:       s.WhatsappNumber,
		Address:              s.Address,
		WelcomeMessage:       s.WelcomeMessage,
		Currency:             s.Currency,
		OpenTime:             s.OpenTime.String(),
		CloseTime:            s.CloseTime.String(),
		SlotDurationMinutes:  s.SlotDurationMinutes,
		MaxSlotsPerTime:      s.MaxSlotsPerTime,
		WorkingDays:          days,
		BookingBufferMinutes: s.BookingBufferMinutes,
		Timezone:             s.Timezone,
		UpdatedAt:            s.UpdatedAt.UnixMilli(),
	})
}

func decode(raw []byte) (*domain.Settings, error) {
	var c cachedSettings
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}

	days := make([]time.Weekday, 0, len(c.WorkingDays))
	for _, d := range c.WorkingDays {
		days = append(days, time.Weekday(d))
	}

	return &domain.Settings{
		ID:                   domain.SettingsID,
		BusinessName:         c.BusinessName,
		WhatsappNumber:       c.WhatsappNumber,
		Address:              c.Address,
		WelcomeMessage:       c.WelcomeMessage,
		Currency:             c.Currency,
		OpenTime:             types.TimeString(c.OpenTime),
		CloseTime:            types.TimeString(c.CloseTime),
		SlotDurationMinutes:  c.SlotDurationMinutes,
		MaxSlotsPerTime:      c.MaxSlotsPerTime,
		WorkingDays:          days,
		BookingBufferMinutes: c.BookingBufferMinutes,
		Timezone:             c.Timezone,
		UpdatedAt:            time.UnixMilli(c.UpdatedAt),
	}, nil
}
