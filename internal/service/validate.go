package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Правила текстовых полей профиля.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
	maxFullNameLen = 128
	maxWebsiteLen  = 2048
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ProfileFields — текстовые поля драфта до нормализации.
type ProfileFields struct {
	FullName string
	Username string
	Website  string
}

// ValidateProfileFields нормализует и проверяет текстовые поля:
//   - full_name: TrimSpace, непустое;
//   - username: TrimSpace, длина >= 3, только [A-Za-z0-9_];
//   - website: пустая строка нормализуется в отсутствие значения (NULL в БД),
//     непустая должна быть абсолютным http(s)-URL.
//
// Возвращает нормализованные поля; при нарушении — ErrInvalidArgument
// с пояснением в цепочке.
func ValidateProfileFields(in ProfileFields) (ProfileFields, error) {
	out := ProfileFields{
		FullName: strings.TrimSpace(in.FullName),
		Username: strings.TrimSpace(in.Username),
		Website:  strings.TrimSpace(in.Website),
	}

	if out.FullName == "" {
		return out, fmt.Errorf("%w: full_name is required", ErrInvalidArgument)
	}
	if len(out.FullName) > maxFullNameLen {
		return out, fmt.Errorf("%w: full_name is too long", ErrInvalidArgument)
	}

	if len(out.Username) < minUsernameLen {
		return out, fmt.Errorf("%w: username must be at least %d characters long", ErrInvalidArgument, minUsernameLen)
	}
	if len(out.Username) > maxUsernameLen {
		return out, fmt.Errorf("%w: username is too long", ErrInvalidArgument)
	}
	if !usernameRe.MatchString(out.Username) {
		return out, fmt.Errorf("%w: username can only contain letters, numbers, and underscores", ErrInvalidArgument)
	}

	if out.Website != "" {
		if len(out.Website) > maxWebsiteLen {
			return out, fmt.Errorf("%w: website is too long", ErrInvalidArgument)
		}

		u, err := url.Parse(out.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return out, fmt.Errorf("%w: website must be an absolute http(s) url", ErrInvalidArgument)
		}
	}

	return out, nil
}
