package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkrylova/go-profile-service/internal/models"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// profileColumns — единый список колонок таблицы profiles,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
// website/avatar_pointer nullable: наружу отдаём пустую строку вместо NULL.
const profileColumns = `
user_id, full_name, username, COALESCE(website, ''), COALESCE(avatar_pointer, ''), created_at, updated_at
`

// scanProfile сканирует одну строку профиля из результата запроса в доменную модель.
func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile

	if err := row.Scan(
		&profile.UserID,
		&profile.FullName,
		&profile.Username,
		&profile.Website,
		&profile.AvatarPointer,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &profile, nil
}

// ProfileByID возвращает профиль по user_id.
// Ошибки: storage.ErrNotFoundProfile, либо ошибка выполнения запроса.
func (s *ProfilesStorage) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByID"

	q := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	row := s.db.QueryRow(ctx, q, userID)

	result, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFoundProfile)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// EnsureProfile возвращает профиль, создавая пустую запись при первом обращении.
// Запись создаётся с дефолтными значениями колонок; существующая строка не трогается.
func (s *ProfilesStorage) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "storage/postgres/profiles/EnsureProfile"

	q := `
	INSERT INTO profiles (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := s.db.Exec(ctx, q, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.ProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpsertProfile атомарно фиксирует все поля драфта и сдвигает updated_at = now().
// Пустые website/avatar_pointer пишутся как NULL (NULLIF).
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности username.
func (s *ProfilesStorage) UpsertProfile(ctx context.Context, userID uuid.UUID, up storage.ProfileUpsert) (*models.Profile, error) {
	const op = "storage/postgres/profiles/UpsertProfile"

	q := `
	INSERT INTO profiles (user_id, full_name, username, website, avatar_pointer)
	VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	ON CONFLICT (user_id) DO UPDATE
	SET full_name = EXCLUDED.full_name,
	    username = EXCLUDED.username,
	    website = EXCLUDED.website,
	    avatar_pointer = EXCLUDED.avatar_pointer,
	    updated_at = now()
	RETURNING
	` + profileColumns

	row := s.db.QueryRow(ctx, q,
		userID,
		up.FullName,
		up.Username,
		up.Website,
		up.AvatarPointer,
	)

	result, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
