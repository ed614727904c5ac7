package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrylova/go-profile-service/internal/draft"
	apierrors "github.com/mkrylova/go-profile-service/internal/errors"
	"github.com/mkrylova/go-profile-service/internal/pkg/authctx"
	"github.com/mkrylova/go-profile-service/internal/service"
)

// maxMultipartMemory — порог буферизации multipart-формы в памяти.
const maxMultipartMemory = 1 << 20 // 1 MiB; остальное уходит во временные файлы

// session достаёт драфт-сессию текущего пользователя из пути запроса.
func (h *Handlers) session(r *http.Request) (*draft.Controller, string, error) {
	acting, ok := authctx.From(r.Context())
	if !ok {
		return nil, "", service.ErrUnauthenticated
	}

	sid := chi.URLParam(r, "sid")
	ctrl, err := h.drafts.Get(sid, acting)
	if err != nil {
		return nil, "", err
	}

	return ctrl, sid, nil
}

// OpenDraft открывает драфт-сессию для аутентифицированного пользователя,
// неявно создавая запись профиля при первом обращении.
func (h *Handlers) OpenDraft(w http.ResponseWriter, r *http.Request) {
	acting, ok := authctx.From(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	sid, ctrl, err := h.drafts.Open(r.Context(), acting)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, draftView(sid, ctrl.View()))
}

// GetDraft возвращает снимок драфта, включая реактивное состояние резолвера.
func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctrl, sid, err := h.session(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, draftView(sid, ctrl.View()))
}

// GetPreview отдаёт байты текущего локального превью.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	ctrl, _, err := h.session(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	data, contentType, ok := ctrl.PreviewBytes()
	if !ok {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UploadAvatar принимает multipart-файл "file" и запускает Upload драфта.
// Ответ — снимок драфта с кандидат-указателем (при успехе).
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctrl, sid, err := h.session(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}
	defer file.Close()

	if _, err := ctrl.Upload(r.Context(), header.Header.Get("Content-Type"), file); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, draftView(sid, ctrl.View()))
}

// RemoveAvatar помечает аватар на удаление (маркер «очищено», без новой загрузки).
func (h *Handlers) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	ctrl, sid, err := h.session(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := ctrl.Remove(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, draftView(sid, ctrl.View()))
}

// commitRequest — текстовые поля драфта; website nullable.
type commitRequest struct {
	FullName string  `json:"full_name"`
	Username string  `json:"username"`
	Website  *string `json:"website"`
}

// CommitDraft фиксирует все поля драфта, включая ожидающий кандидат-указатель.
func (h *Handlers) CommitDraft(w http.ResponseWriter, r *http.Request) {
	ctrl, sid, err := h.session(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in commitRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	fields := draft.Fields{
		FullName: in.FullName,
		Username: in.Username,
	}
	if in.Website != nil {
		fields.Website = *in.Website
	}

	if err := ctrl.Commit(r.Context(), fields); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, draftView(sid, ctrl.View()))
}

// CancelDraft отбрасывает незафиксированные правки.
func (h *Handlers) CancelDraft(w http.ResponseWriter, r *http.Request) {
	ctrl, sid, err := h.session(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	ctrl.Cancel(r.Context())

	writeJSON(w, http.StatusOK, draftView(sid, ctrl.View()))
}

// CloseDraft завершает сессию (teardown освобождает превью).
func (h *Handlers) CloseDraft(w http.ResponseWriter, r *http.Request) {
	acting, ok := authctx.From(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.drafts.Close(r.Context(), chi.URLParam(r, "sid"), acting); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
