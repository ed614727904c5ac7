package middleware

import (
	"net/http"
	"strings"

	"github.com/mkrylova/go-profile-service/internal/auth"
	apierrors "github.com/mkrylova/go-profile-service/internal/errors"
	"github.com/mkrylova/go-profile-service/internal/pkg/authctx"
)

// AuthBearer извлекает Bearer-токен из Authorization, проверяет его и кладёт
// аутентифицированный user_id в контекст (authctx).
//
// Запрос без валидного токена проходит дальше без идентичности: операции,
// требующие сессию (Commit/Remove/драфты), сами вернут unauthenticated.
// Явно битый или истёкший токен отклоняется сразу — 401.
func AuthBearer(secret, issuer string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) || len(header) == len(prefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(header[len(prefix):])
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid, err := auth.ParseAccessToken(token, secret, issuer)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			r = r.WithContext(authctx.Into(r.Context(), uid))
			next.ServeHTTP(w, r)
		})
	}
}
