package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// CountActiveByDate занятость слотов за день: время -> число не отменённых бронирований
	CountActiveByDate(ctx context.Context, date time.Time) (map[types.TimeString]int, error)
}

// SettingsProvider источник настроек мойки (с кэшем)
type SettingsProvider interface {
	CurrentCached(ctx context.Context) (*domain.Settings, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
