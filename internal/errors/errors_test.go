package errors

// Тесты маппинга доменных ошибок в HTTP (internal/errors/errors.go).
//
// Подготовка окружения:
//   go test ./internal/errors -v -race -count=1

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkrylova/go-profile-service/internal/auth"
	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/service"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

func TestToHTTP_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"nil is a programming error", nil, http.StatusInternalServerError, "internal"},
		{"invalid argument", service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "unauthenticated"},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized, "unauthenticated"},
		{"not found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"no session", draft.ErrNoSession, http.StatusNotFound, "not_found"},
		{"already exists", service.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{"superseded", draft.ErrSuperseded, http.StatusConflict, "superseded"},
		{"not ready", storage.ErrNotReady, http.StatusServiceUnavailable, "not_ready"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, "internal"},
		{"wrapped", fmt.Errorf("op: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := ToHTTP(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

// Текст ошибки валидации отдаётся на фронт без op-префиксов цепочки;
// прочие детали не утекают.
func TestToHTTP_MessagePolicy(t *testing.T) {
	_, resp := ToHTTP(fmt.Errorf("%w: username must be at least 3 characters long", service.ErrInvalidArgument))
	require.Equal(t, "username must be at least 3 characters long", resp.Error.Message)

	// Многоуровневое оборачивание (транспорт -> драфт -> сервис): клиент видит
	// только текст для поля формы.
	wrapped := fmt.Errorf("draft/Commit: %w",
		fmt.Errorf("service/profiles/CommitProfile: %w",
			fmt.Errorf("%w: website must be an absolute http(s) url", service.ErrInvalidArgument)))
	_, resp = ToHTTP(wrapped)
	require.Equal(t, "website must be an absolute http(s) url", resp.Error.Message)

	// Голый сентинел без пояснения.
	_, resp = ToHTTP(fmt.Errorf("service/profiles/ProfileByID: %w", service.ErrInvalidArgument))
	require.Equal(t, "invalid argument", resp.Error.Message)

	_, resp = ToHTTP(stderrors.New("pq: connection refused"))
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_RequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-123")

	rec := httptest.NewRecorder()
	WriteError(rec, req, service.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"request_id":"rid-123"`)
}
