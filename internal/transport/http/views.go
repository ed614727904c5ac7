package http

import (
	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/models"
)

// ProfileView — представление профиля для фронта.
// Website/AvatarPointer отдаются как nullable: пустая строка — это null.
type ProfileView struct {
	UserID        string  `json:"user_id"`
	FullName      string  `json:"full_name"`
	Username      string  `json:"username"`
	Website       *string `json:"website"`
	AvatarPointer *string `json:"avatar_pointer"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
}

func profileView(p *models.Profile) ProfileView {
	return ProfileView{
		UserID:        p.UserID.String(),
		FullName:      p.FullName,
		Username:      p.Username,
		Website:       nullable(p.Website),
		AvatarPointer: nullable(p.AvatarPointer),
		CreatedAt:     p.CreatedAt.Unix(),
		UpdatedAt:     p.UpdatedAt.Unix(),
	}
}

// AvatarView — реактивное состояние резолвера {url, loading, error}.
type AvatarView struct {
	URL     *string `json:"url"`
	Loading bool    `json:"loading"`
	Error   string  `json:"error,omitempty"`
}

// CandidateView — ожидающее изменение аватара.
type CandidateView struct {
	Kind string  `json:"kind"` // "none" | "set" | "cleared"
	Path *string `json:"path,omitempty"`
}

// DraftView — снимок драфт-сессии.
type DraftView struct {
	SessionID string        `json:"session_id"`
	Phase     string        `json:"phase"`
	FullName  string        `json:"full_name"`
	Username  string        `json:"username"`
	Website   *string       `json:"website"`
	Committed *string       `json:"committed_pointer"`
	Candidate CandidateView `json:"candidate"`
	Preview   *string       `json:"preview_handle"`
	Avatar    AvatarView    `json:"avatar"`
	LastError string        `json:"last_error,omitempty"`
}

func draftView(sid string, v draft.View) DraftView {
	out := DraftView{
		SessionID: sid,
		Phase:     v.Phase.String(),
		FullName:  v.Fields.FullName,
		Username:  v.Fields.Username,
		Website:   nullable(v.Fields.Website),
		Committed: nullable(v.Committed),
		Candidate: CandidateView{Kind: "none"},
		Preview:   nullable(v.PreviewHandle),
		Avatar: AvatarView{
			URL:     nullable(v.Avatar.URL),
			Loading: v.Avatar.Kind == draft.ResolveLoading,
		},
	}

	switch v.Candidate.Kind {
	case draft.CandidateSet:
		out.Candidate = CandidateView{Kind: "set", Path: nullable(v.Candidate.Path)}
	case draft.CandidateCleared:
		out.Candidate = CandidateView{Kind: "cleared"}
	}

	if v.Avatar.Kind == draft.ResolveError && v.Avatar.Err != nil {
		out.Avatar.Error = v.Avatar.Err.Error()
	}

	if v.LastErr != nil {
		out.LastError = v.LastErr.Error()
	}

	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
