package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 20 * time.Millisecond

	isolationSerializable = "serializable"
	isolationDefault      = "read_committed"
	isolationReadOnly     = "read_only"
)

// PostgreSQL коды ошибок, после которых транзакцию безопасно повторить целиком
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var (
	// ErrBeginTx возвращается, когда не удалось начать транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается, когда не удалось зафиксировать транзакцию
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrMaxRetriesExceeded возвращается, когда транзакция не прошла после всех повторов
	ErrMaxRetriesExceeded = errors.New("txmanager: transaction failed after max retries")
)

// Beginner умеет начинать транзакции (реализуется *dbmetrics.DB)
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryObserver получает уведомления о повторах транзакций
type RetryObserver interface {
	IncTxRetry(isolation string)
}

// TransactionManager выполняет функцию в транзакции, кладя её в контекст.
// Репозитории достают транзакцию через dbmetrics.GetExecutor
type TransactionManager struct {
	db         Beginner
	maxRetries int
	baseDelay  time.Duration
	observer   RetryObserver
}

// Option настройка менеджера транзакций
type Option func(*TransactionManager)

// WithMaxRetries задаёт количество повторов после serialization failure
func WithMaxRetries(n int) Option {
	return func(m *TransactionManager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithBaseDelay задаёт базовую паузу между повторами
func WithBaseDelay(d time.Duration) Option {
	return func(m *TransactionManager) {
		m.baseDelay = d
	}
}

// WithRetryObserver подключает учёт повторов (метрики)
func WithRetryObserver(o RetryObserver) Option {
	return func(m *TransactionManager) {
		m.observer = o
	}
}

// NewTransactionManager создаёт менеджер транзакций
func NewTransactionManager(db Beginner, opts ...Option) *TransactionManager {
	m := &TransactionManager{
		db:         db,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED без повторов
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, isolationDefault, 0, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции.
// При serialization failure или deadlock вся функция выполняется заново,
// поэтому fn не должна иметь побочных эффектов вне БД
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, isolationSerializable, m.maxRetries, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, isolationReadOnly, 0, fn)
}

func (m *TransactionManager) run(
	ctx context.Context,
	opts *sql.TxOptions,
	isolation string,
	maxRetries int,
	fn func(ctx context.Context) error,
) error {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if m.observer != nil {
				m.observer.IncTxRetry(isolation)
			}
			if err := m.sleep(ctx, attempt); err != nil {
				return err
			}
		}

		lastErr = m.runOnce(ctx, opts, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}

	if maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("%w: %d attempts: %w", ErrMaxRetriesExceeded, maxRetries+1, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

// sleep экспоненциальная пауза с джиттером, прерывается отменой контекста
func (m *TransactionManager) sleep(ctx context.Context, attempt int) error {
	delay := m.baseDelay * time.Duration(1<<(attempt-1))
	if delay > 0 {
		delay += time.Duration(rand.Int64N(int64(delay)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable true для serialization failure и deadlock.
// Ошибка должна сохранять цепочку (%w), иначе *pq.Error не будет найден
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	default:
		return false
	}
}
