package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrylova/go-profile-service/internal/models"
	"github.com/mkrylova/go-profile-service/internal/pkg/authctx"
	"github.com/mkrylova/go-profile-service/internal/pkg/log"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// CommitInput — полный драфт для фиксации.
// AvatarPointer уже разрешён вызывающей стороной (Draft Controller):
// путь кандидата, прежний указатель либо пустая строка при явном удалении.
type CommitInput struct {
	UserID        uuid.UUID
	FullName      string
	Username      string
	Website       string
	AvatarPointer string
}

// ProfileByID возвращает профиль по идентификатору пользователя.
//
// Валидация:
//   - userID не должен быть нулевым (uuid.Nil) — иначе ErrInvalidArgument.
//
// Поведение:
//   - сначала читается Redis-кэш; ошибка кэша логируется и не фатальна;
//   - при отсутствии записи возвращает ErrNotFound;
//   - ошибки стораджа/БД/контекста маппятся в ErrInternal.
func (s *Service) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "service/profiles/ProfileByID"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if userID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if s.profileCache != nil {
		cached, ok, err := s.profileCache.Get(ctx, userID)
		if err != nil {
			lg.Warn("cache read failed", "err", err)
		} else if ok {
			return cached, nil
		}
	}

	result, err := s.profilesStorage.ProfileByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFoundProfile):
			lg.Warn("profile not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on ProfileByID", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	s.cacheSet(ctx, result)

	return result, nil
}

// EnsureProfile возвращает профиль пользователя, неявно создавая пустую запись
// при первом обращении (жизненный цикл «создан при первом успешном fetch»).
// Используется при открытии драфт-сессии аутентифицированным пользователем.
func (s *Service) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "service/profiles/EnsureProfile"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if userID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.profilesStorage.EnsureProfile(ctx, userID)
	if err != nil {
		lg.Error("storage error on EnsureProfile", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.cacheSet(ctx, result)

	return result, nil
}

// CommitProfile атомарно (с точки зрения вызывающего) фиксирует все поля драфта.
//
// Порядок:
//  1. валидация текстовых полей — до любых сетевых вызовов;
//  2. авторизация: идентичность из контекста должна совпадать с userID драфта,
//     отсутствие сессии — терминальная ошибка, без повторов;
//  3. чтение прежнего указателя и upsert записи профиля;
//  4. пост-коммит (best-effort, никогда не роняет Commit): если указатель
//     сменился и прежний был ключом в бакете — ключ ставится в очередь очистки;
//     кэш профиля инвалидируется.
//
// Ошибки:
//   - ErrInvalidArgument / ErrUnauthenticated / ErrAlreadyExists / ErrInternal.
func (s *Service) CommitProfile(ctx context.Context, input CommitInput) (*models.Profile, error) {
	const op = "service/profiles/CommitProfile"

	lg := log.From(ctx).With("op", op, "user_id", input.UserID.String())

	if input.UserID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	fields, err := ValidateProfileFields(ProfileFields{
		FullName: input.FullName,
		Username: input.Username,
		Website:  input.Website,
	})
	if err != nil {
		lg.Warn("validation failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if models.IsPreviewHandle(input.AvatarPointer) {
		// Превью-хендл не долговечен и в запись профиля не попадает.
		lg.Warn("invalid argument: preview handle as avatar pointer")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	acting, ok := authctx.From(ctx)
	if !ok {
		lg.Warn("no authenticated session")

		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if acting != input.UserID {
		lg.Warn("acting identity mismatch", "acting", acting.String())

		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	// Прежний указатель нужен для отложенной очистки; отсутствие записи
	// допустимо — upsert создаст её (неявное создание при первом апдейте).
	var previous string
	prev, err := s.profilesStorage.ProfileByID(ctx, input.UserID)
	switch {
	case err == nil:
		previous = prev.AvatarPointer
	case errors.Is(err, storage.ErrNotFoundProfile):
	default:
		lg.Error("storage error on previous pointer read", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	result, err := s.profilesStorage.UpsertProfile(ctx, input.UserID, storage.ProfileUpsert{
		FullName:      fields.FullName,
		Username:      fields.Username,
		Website:       fields.Website,
		AvatarPointer: input.AvatarPointer,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			lg.Warn("username already taken")

			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		default:
			lg.Error("storage error on UpsertProfile", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	// Пост-коммит: запись профиля уже зафиксирована, дальше только best-effort.
	if previous != "" && previous != result.AvatarPointer && models.IsStorageKey(previous) {
		if s.cleanup != nil {
			s.cleanup.Enqueue(previous)
		}
	}

	if s.profileCache != nil {
		if err := s.profileCache.Invalidate(ctx, input.UserID); err != nil {
			lg.Warn("cache invalidation failed", "err", err)
		}
	}

	return result, nil
}

// cacheSet — best-effort запись профиля в кэш; ошибки только логируются.
func (s *Service) cacheSet(ctx context.Context, profile *models.Profile) {
	if s.profileCache == nil || profile == nil {
		return
	}

	if err := s.profileCache.Set(ctx, profile); err != nil {
		log.From(ctx).Warn("cache write failed", "err", err, "user_id", profile.UserID.String())
	}
}
