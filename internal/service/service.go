// service содержит бизнес-логику profile-сервиса:
// - чтение профиля (сквозь Redis-кэш) и неявное создание при первом обращении;
// - Commit: валидация, авторизация, upsert, отложенная очистка старого аватара
//   и инвалидация кэша.
package service

import (
	"errors"

	"github.com/mkrylova/go-profile-service/internal/cache"
	"github.com/mkrylova/go-profile-service/internal/config"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

var (
	// ErrInvalidArgument — некорректные входные данные (валидация полей и т.п.).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (занятый username).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthenticated — отсутствует или не совпадает аутентифицированная сессия.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInternal — внутренняя ошибка сервиса.
	ErrInternal = errors.New("internal")
)

// Cleanup — контракт очереди фоновых удалений (fire-and-forget).
type Cleanup interface {
	Enqueue(keys ...string)
}

// Service — описывает бизнес-логику profile-сервиса.
type Service struct {
	cfg             *config.Config
	profilesStorage storage.ProfilesStorage
	profileCache    cache.ProfileCache
	cleanup         Cleanup
}

// New создает новый экземпляр Service.
func New(profilesStorage storage.ProfilesStorage, profileCache cache.ProfileCache, cleanup Cleanup, cfg *config.Config) *Service {
	return &Service{
		profilesStorage: profilesStorage,
		profileCache:    profileCache,
		cleanup:         cleanup,
		cfg:             cfg,
	}
}
