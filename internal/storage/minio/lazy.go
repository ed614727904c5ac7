package minio

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkrylova/go-profile-service/internal/config"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// Lazy — процесс-wide владелец единственного клиента MinIO с ленивой инициализацией.
//
// Пока инициализация не удалась, каждый вызов Get возвращает storage.ErrNotReady:
// потребители (резолвер аватаров) обязаны показывать явное «not ready»,
// а не трактовать отсутствие клиента как «аватара нет».
// Безопасен для конкурентных вызовов из нескольких сессий; неудачная попытка
// не кэшируется — следующий вызов пробует инициализацию заново.
type Lazy struct {
	mu  sync.Mutex
	cfg *config.Config
	st  *AvatarsStorage
}

// NewLazy создаёт аксессор без попытки подключения.
func NewLazy(cfg *config.Config) *Lazy {
	return &Lazy{cfg: cfg}
}

// Get возвращает инициализированный гейтвей, при необходимости создавая его.
// Ошибки подключения маппятся в storage.ErrNotReady (исходная причина — в цепочке).
func (l *Lazy) Get(ctx context.Context) (storage.Avatars, error) {
	const op = "storage/minio/lazy/Get"

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.st != nil {
		return l.st, nil
	}

	st, err := New(ctx, l.cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrNotReady, err)
	}

	l.st = st
	return l.st, nil
}

// Ready сообщает, инициализирован ли клиент (без попытки инициализации).
func (l *Lazy) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st != nil
}
