// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает доменную ошибку (сентинелы service/draft/storage/auth),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/mkrylova/go-profile-service/internal/auth"
	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/service"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - неизвестная ошибка — 500/internal (без утечки деталей).
//
// Маппинг:
//   - ErrInvalidArgument -> 400; ErrUnauthenticated / битый токен -> 401;
//   - ErrNotFound / ErrNoSession -> 404; ErrAlreadyExists -> 409;
//   - ErrSuperseded -> 409 (вытеснено более новой операцией);
//   - ErrNotReady -> 503; DeadlineExceeded -> 504.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, respond("internal", "internal error")
	}

	switch {
	case stderrors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, respondMsg("invalid_argument", err)
	case stderrors.Is(err, service.ErrUnauthenticated),
		stderrors.Is(err, auth.ErrInvalidToken),
		stderrors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, respond("unauthenticated", "unauthenticated")
	case stderrors.Is(err, service.ErrNotFound), stderrors.Is(err, draft.ErrNoSession):
		return http.StatusNotFound, respond("not_found", "not found")
	case stderrors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, respond("already_exists", "already exists")
	case stderrors.Is(err, draft.ErrSuperseded):
		return http.StatusConflict, respond("superseded", "superseded by a newer operation")
	case stderrors.Is(err, storage.ErrNotReady):
		return http.StatusServiceUnavailable, respond("not_ready", "storage is not ready")
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, respond("deadline_exceeded", "deadline exceeded")
	default:
		return http.StatusInternalServerError, respond("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func respond(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// respondMsg — для ошибок валидации отдаём текст ошибки: он формируется
// нашим же кодом и предназначен для показа возле поля формы. Служебные
// op-префиксы цепочки (service/...: draft/...:) наружу не уходят —
// клиенту отдаётся только часть после сентинела.
func respondMsg(code string, err error) ErrorResponse {
	msg := err.Error()

	marker := service.ErrInvalidArgument.Error()
	if i := strings.LastIndex(msg, marker); i >= 0 {
		tail := strings.TrimPrefix(msg[i+len(marker):], ": ")
		if tail != "" {
			msg = tail
		} else {
			msg = marker
		}
	}

	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}
