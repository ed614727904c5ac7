package storage

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/google/uuid"
)

var (
	// ErrNotFoundAvatar — объект (ключ) отсутствует в бакете.
	ErrNotFoundAvatar = errors.New("not found")
	// ErrInvalidArgument — нарушены ограничения запроса (тип/размер/чужой ключ).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrObjectExists — объект с таким ключом уже существует (перезапись запрещена).
	ErrObjectExists = errors.New("object already exists")
	// ErrNotReady — Blob Store Gateway ещё не инициализирован.
	// Отличает «аватара нет» от «не можем отрезолвить прямо сейчас».
	ErrNotReady = errors.New("blob storage is not ready")
)

// Avatars — контракт Blob Store Gateway.
type Avatars interface {
	// Upload загружает объект под ключом key, отказываясь перезаписывать существующий.
	// Внутри — валидация contentType и size согласно конфигу.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PublicURL возвращает отображаемый URL для ключа:
	// склейку с PublicBaseURL, если тот сконфигурирован, иначе presigned GET.
	PublicURL(ctx context.Context, key string) (string, error)
	// Remove удаляет объекты по ключам. Идемпотентна: отсутствующий ключ — не ошибка.
	// Вызывается из этого ядра только в best-effort-режиме (фоновая очистка).
	Remove(ctx context.Context, keys []string) error
}

// AvatarsStorage — алиас-обёртка для внедрения зависимости.
type AvatarsStorage interface {
	Avatars
}

// NewAvatarKey генерирует свежий ключ вида "avatars/<userID>/<uuid><ext>".
// Случайный компонент исключает коллизии между сессиями и не требует
// координации при выдаче ключей.
func NewAvatarKey(userID uuid.UUID, contentType string) string {
	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	default:
		ext = ""
	}

	return path.Join("avatars", userID.String(), uuid.NewString()+ext)
}
