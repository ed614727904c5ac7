// storage содержит контракты слоя хранилищ profile-сервиса.
//
// profiles.go — работа с профилями в БД (чтение/неявное создание/upsert).
// avatars.go — контракт Blob Store Gateway: загрузка, публичный URL и
// best-effort удаление объектов-аватаров в S3/MinIO.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mkrylova/go-profile-service/internal/models"
)

var (
	// ErrNotFoundProfile — профиль не найден.
	ErrNotFoundProfile = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (например, занятый username).
	ErrAlreadyExists = errors.New("already exists")
)

// ProfileUpsert — полный набор полей для фиксации профиля.
// AvatarPointer передаётся уже разрешённым (кандидат/очищенный/прежний):
// пустая строка означает NULL в колонке avatar_pointer.
type ProfileUpsert struct {
	FullName      string
	Username      string
	Website       string
	AvatarPointer string
}

// Profiles — контракт репозитория профилей.
type Profiles interface {
	// ProfileByID возвращает профиль по user_id.
	ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// EnsureProfile возвращает профиль, создавая пустую запись при первом обращении.
	// Повторные вызовы идемпотентны.
	EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// UpsertProfile атомарно фиксирует все поля драфта (INSERT .. ON CONFLICT DO UPDATE).
	// Реализация должна обновить updated_at.
	UpsertProfile(ctx context.Context, userID uuid.UUID, up ProfileUpsert) (*models.Profile, error)
}

// ProfilesStorage — верхнеуровневый интерфейс хранилища профилей.
type ProfilesStorage interface {
	Profiles
	Close()
}
