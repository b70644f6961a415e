package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

// HeaderAdminKey заголовок со статическим ключом администратора
const HeaderAdminKey = "X-Admin-Key"

const msgUnauthorized = "требуется ключ администратора"

// AdminAuth пропускает запрос, только если X-Admin-Key совпадает с apiKey.
// Пустой apiKey закрывает админские маршруты полностью
func AdminAuth(apiKey string) func(http.Handler) http.Handler {
	expected := []byte(apiKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(HeaderAdminKey))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
