package settings

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// SettingsRepository интерфейс репозитория настроек
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}

// SettingsCache кэш настроек (Redis). Может отсутствовать
type SettingsCache interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Set(ctx context.Context, settings *domain.Settings) error
	Invalidate(ctx context.Context) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
