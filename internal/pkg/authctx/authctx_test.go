package authctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIntoFrom(t *testing.T) {
	uid := uuid.New()
	ctx := Into(context.Background(), uid)

	got, ok := From(ctx)
	require.True(t, ok)
	require.Equal(t, uid, got)
}

func TestFrom_EmptyContext(t *testing.T) {
	_, ok := From(context.Background())
	require.False(t, ok)
}

// uuid.Nil в контексте трактуется как отсутствие идентичности.
func TestFrom_NilUUID(t *testing.T) {
	ctx := Into(context.Background(), uuid.Nil)

	_, ok := From(ctx)
	require.False(t, ok)
}
