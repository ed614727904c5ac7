// models содержит доменные сущности profile-сервиса.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile — внутренняя доменная модель профиля.
//
// Website и AvatarPointer хранятся как строки; пустая строка означает NULL в БД
// (нормализация выполняется на уровне storage через NULLIF/COALESCE).
//
// AvatarPointer — «указатель» на аватар, одно из:
//   - "" — аватара нет;
//   - абсолютный URL (https://...) — отдаётся как есть, без резолва;
//   - ключ объекта в S3/MinIO (avatars/<user_id>/<uuid>.<ext>) — резолвится
//     в публичный URL через Blob Store Gateway.
type Profile struct {
	UserID        uuid.UUID
	FullName      string
	Username      string
	Website       string
	AvatarPointer string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PreviewScheme — схема эфемерных локальных превью-хендлов.
// Такие значения никогда не попадают в БД: они живут только внутри
// редактируемого драфта и резолвятся без обращения к хранилищу.
const PreviewScheme = "mem://"

var absoluteURLRe = regexp.MustCompile(`(?i)^https?://`)

// IsAbsoluteURL сообщает, является ли указатель абсолютным URL.
func IsAbsoluteURL(pointer string) bool {
	return absoluteURLRe.MatchString(pointer)
}

// IsPreviewHandle сообщает, является ли указатель локальным превью-хендлом.
func IsPreviewHandle(pointer string) bool {
	return strings.HasPrefix(pointer, PreviewScheme)
}

// IsStorageKey сообщает, что указатель — относительный ключ объекта в бакете.
// Только такие указатели подлежат резолву в публичный URL и фоновой очистке.
func IsStorageKey(pointer string) bool {
	return pointer != "" && !IsAbsoluteURL(pointer) && !IsPreviewHandle(pointer)
}
