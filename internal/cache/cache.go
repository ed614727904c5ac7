// cache — Redis-кэш закоммиченных профилей.
//
// Запись профиля — источник истины в Postgres; кэш лишь снимает читающую
// нагрузку (шапка с аватаром и прочие наблюдатели). Инвалидация по user_id
// выполняется после каждого успешного Commit и носит fire-and-forget характер.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mkrylova/go-profile-service/internal/models"
)

// ProfileCache — минимальный контракт кэша профилей.
type ProfileCache interface {
	// Get возвращает профиль и признак его наличия в кэше.
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error)
	// Set сохраняет профиль с TTL из конфигурации кэша.
	Set(ctx context.Context, profile *models.Profile) error
	// Invalidate удаляет запись по user_id. Отсутствующий ключ — не ошибка.
	Invalidate(ctx context.Context, userID uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "profiles:".
func NewRedisCache(redisURL, prefix string, ttl time.Duration) (ProfileCache, error) {
	if prefix == "" {
		prefix = "profiles:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *redisCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		// Битую запись выбрасываем: дешевле перечитать из БД.
		_ = c.rdb.Del(ctx, c.key(userID)).Err()
		return nil, false, nil
	}

	return &profile, true, nil
}

func (c *redisCache) Set(ctx context.Context, profile *models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(profile.UserID), raw, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
