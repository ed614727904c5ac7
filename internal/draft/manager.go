package draft

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager — реестр активных драфт-сессий.
//
// Сессия принадлежит открывшему её пользователю; обращение с чужим user_id
// неотличимо от отсутствующей сессии (ErrNoSession). Несколько сессий одного
// пользователя независимы: никакой блокировки между ними нет, последний
// Commit выигрывает.
type Manager struct {
	svc   ProfileService
	blobs Gateway
	opts  Options

	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewManager создаёт пустой реестр сессий.
func NewManager(svc ProfileService, blobs Gateway, opts Options) *Manager {
	return &Manager{
		svc:      svc,
		blobs:    blobs,
		opts:     opts,
		sessions: make(map[string]*Controller),
	}
}

// Open создаёт драфт-сессию для пользователя и загружает в неё профиль.
func (m *Manager) Open(ctx context.Context, userID uuid.UUID) (string, *Controller, error) {
	const op = "draft/manager/Open"

	ctrl := NewController(m.svc, m.blobs, m.opts, userID)
	if err := ctrl.Load(ctx); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	sid := uuid.NewString()

	m.mu.Lock()
	m.sessions[sid] = ctrl
	m.mu.Unlock()

	return sid, ctrl, nil
}

// Get возвращает сессию по идентификатору с проверкой владельца.
func (m *Manager) Get(sid string, userID uuid.UUID) (*Controller, error) {
	const op = "draft/manager/Get"

	m.mu.Lock()
	ctrl, ok := m.sessions[sid]
	m.mu.Unlock()

	if !ok || ctrl.UserID() != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	return ctrl, nil
}

// Close завершает сессию: отменяет незафиксированные правки (что освобождает
// превью и вытесняет in-flight операции) и удаляет её из реестра.
func (m *Manager) Close(ctx context.Context, sid string, userID uuid.UUID) error {
	const op = "draft/manager/Close"

	ctrl, err := m.Get(sid, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	ctrl.Cancel(ctx)

	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()

	return nil
}
