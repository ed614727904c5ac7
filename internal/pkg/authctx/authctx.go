// authctx — прокидывание аутентифицированного user_id через context.
// Идентичность кладёт транспортный middleware (после проверки JWT);
// бизнес-логика читает её при авторизации Commit/Remove.
package authctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Into кладёт идентификатор аутентифицированного пользователя в контекст.
func Into(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// From достаёт идентификатор из контекста.
// ok == false означает отсутствие аутентифицированной сессии.
func From(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}

	return id, true
}
