package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// Upload загружает объект под ключом key, отказываясь перезаписывать существующий.
// Валидирует contentType и size согласно конфигу.
// Ошибки: storage.ErrInvalidArgument (тип/размер), storage.ErrObjectExists (ключ занят).
func (s *AvatarsStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	const op = "storage/minio/avatars/Upload"

	if size <= 0 || size > s.cfg.Avatar.MaxSizeBytes {
		return storage.ErrInvalidArgument
	}

	if !isAllowedContentType(s.cfg.Avatar.AllowedContentTypes, contentType) {
		return storage.ErrInvalidArgument
	}

	// Запрет перезаписи: ключи генерируются случайно, существующий объект
	// под тем же ключом — признак чужой/повторной загрузки.
	_, err := s.client.StatObject(ctx, s.cfg.S3.Bucket, key, mclient.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%s: %w", op, storage.ErrObjectExists)
	}

	errResp := mclient.ToErrorResponse(err)
	if errResp.Code != "NoSuchKey" && errResp.StatusCode != 404 {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.client.PutObject(ctx, s.cfg.S3.Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PublicURL возвращает отображаемый URL для ключа:
// склейку с PublicBaseURL, если тот задан, иначе presigned GET c TTL из конфига.
func (s *AvatarsStorage) PublicURL(ctx context.Context, key string) (string, error) {
	const op = "storage/minio/avatars/PublicURL"

	if strings.TrimSpace(key) == "" {
		return "", storage.ErrInvalidArgument
	}

	if base := strings.TrimRight(s.cfg.S3.PublicBaseURL, "/"); base != "" {
		return base + "/" + key, nil
	}

	u, err := s.client.PresignedGetObject(ctx, s.cfg.S3.Bucket, key, s.cfg.S3.PresignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return u.String(), nil
}

// Remove удаляет объекты по ключам. Идемпотентна: отсутствующий объект — не ошибка.
// Возвращает первую встреченную ошибку, остальные ключи всё равно обрабатываются.
func (s *AvatarsStorage) Remove(ctx context.Context, keys []string) error {
	const op = "storage/minio/avatars/Remove"

	var firstErr error
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}

		err := s.client.RemoveObject(ctx, s.cfg.S3.Bucket, key, mclient.RemoveObjectOptions{})
		if err != nil {
			errResp := mclient.ToErrorResponse(err)
			if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	return firstErr
}

// isAllowedContentType проверяет, что тип содержимого входит в allow-list.
func isAllowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}

	return false
}
