package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HeaderRequestID заголовок с идентификатором запроса
const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RequestID берёт X-Request-Id из запроса или генерирует новый, кладёт в контекст и в ответ
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, rid)))
	})
}

// GetRequestID возвращает идентификатор запроса из контекста
func GetRequestID(ctx context.Context) (string, bool) {
	rid, ok := ctx.Value(requestIDKey{}).(string)
	return rid, ok && rid != ""
}

// AccessLog пишет строку на каждый запрос: метод, путь, статус, длительность
func AccessLog(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newStatusRecorder(w)

			next.ServeHTTP(rw, r)

			rid, _ := GetRequestID(r.Context())
			duration := time.Since(start)

			switch {
			case rw.status >= http.StatusInternalServerError:
				logger.Error("%s %s - status=%d duration=%s request_id=%s", r.Method, r.URL.Path, rw.status, duration, rid)
			case rw.status >= http.StatusBadRequest:
				logger.Warn("%s %s - status=%d duration=%s request_id=%s", r.Method, r.URL.Path, rw.status, duration, rid)
			default:
				logger.Info("%s %s - status=%d duration=%s request_id=%s", r.Method, r.URL.Path, rw.status, duration, rid)
			}
		})
	}
}
