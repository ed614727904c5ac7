package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/mkrylova/go-profile-service/internal/errors"
	"github.com/mkrylova/go-profile-service/internal/service"
)

// GetProfile возвращает профиль по идентификатору пользователя.
// Чтение проходит сквозь Redis-кэш; это путь, которым наблюдатели
// (например, шапка с аватаром) перечитывают профиль после инвалидации.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	profile, err := h.svc.ProfileByID(r.Context(), userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileView(profile))
}
