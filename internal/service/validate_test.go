package service

// Тесты валидации текстовых полей профиля (internal/service/validate.go).
//
// Подготовка окружения:
//   go test ./internal/service -v -race -count=1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateProfileFields_OK(t *testing.T) {
	got, err := ValidateProfileFields(ProfileFields{
		FullName: "  Alice Liddell  ",
		Username: " alice_01 ",
		Website:  " https://example.com/about ",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Liddell", got.FullName)
	require.Equal(t, "alice_01", got.Username)
	require.Equal(t, "https://example.com/about", got.Website)
}

// Пустой website нормализуется в отсутствие значения, а не в ошибку.
func TestValidateProfileFields_EmptyWebsite(t *testing.T) {
	got, err := ValidateProfileFields(ProfileFields{
		FullName: "Alice",
		Username: "alice",
		Website:  "   ",
	})
	require.NoError(t, err)
	require.Empty(t, got.Website)
}

func TestValidateProfileFields_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   ProfileFields
	}{
		{"empty full_name", ProfileFields{FullName: "", Username: "alice"}},
		{"full_name too long", ProfileFields{FullName: strings.Repeat("a", 129), Username: "alice"}},
		{"username too short", ProfileFields{FullName: "Alice", Username: "al"}},
		{"username too long", ProfileFields{FullName: "Alice", Username: strings.Repeat("a", 65)}},
		{"username bad chars", ProfileFields{FullName: "Alice", Username: "ali ce"}},
		{"username dash", ProfileFields{FullName: "Alice", Username: "ali-ce"}},
		{"website relative", ProfileFields{FullName: "Alice", Username: "alice", Website: "/about"}},
		{"website no scheme", ProfileFields{FullName: "Alice", Username: "alice", Website: "example.com"}},
		{"website wrong scheme", ProfileFields{FullName: "Alice", Username: "alice", Website: "ftp://example.com"}},
		{"website too long", ProfileFields{FullName: "Alice", Username: "alice", Website: "https://example.com/" + strings.Repeat("a", 2048)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateProfileFields(tc.in)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
