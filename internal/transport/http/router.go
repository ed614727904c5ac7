package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/service"
	"github.com/mkrylova/go-profile-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger    *slog.Logger
	Timeout   time.Duration
	BasePath  string // например, "/v1"; если пустой — роуты регистрируются на корне.
	JWTSecret string
	JWTIssuer string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, drafts *draft.Manager, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),   // безопасно ловим паники
		middleware.RequestID(), // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),
		middleware.AuthBearer(opts.JWTSecret, opts.JWTIssuer),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := New(svc, drafts)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *Handlers) {
	// публичное чтение профиля (сквозь кэш)
	r.Get("/profiles/{id}", h.GetProfile)

	// драфт-сессии редактирования собственного профиля
	r.Route("/account/draft", func(r chi.Router) {
		r.Post("/", h.OpenDraft)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.GetDraft)
			r.Delete("/", h.CloseDraft)
			r.Get("/preview", h.GetPreview)
			r.Post("/avatar", h.UploadAvatar)
			r.Delete("/avatar", h.RemoveAvatar)
			r.Post("/commit", h.CommitDraft)
			r.Post("/cancel", h.CancelDraft)
		})
	})
}
