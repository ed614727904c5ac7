package draft

import (
	"context"
	"sync"

	"github.com/mkrylova/go-profile-service/internal/models"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// Gateway — аксессор Blob Store Gateway; может вернуть storage.ErrNotReady,
// пока процесс-wide клиент ещё не инициализирован.
type Gateway func(ctx context.Context) (storage.Avatars, error)

// ResolveKind — состояние резолва указателя.
type ResolveKind int

const (
	// ResolveIdle — указателя нет: «аватар отсутствует», URL не нужен.
	ResolveIdle ResolveKind = iota
	// ResolveLoading — резолв относительного ключа в полёте.
	ResolveLoading
	// ResolveResolved — URL получен.
	ResolveResolved
	// ResolveError — резолв не удался (в т.ч. storage.ErrNotReady).
	ResolveError
)

func (k ResolveKind) String() string {
	switch k {
	case ResolveLoading:
		return "loading"
	case ResolveResolved:
		return "resolved"
	case ResolveError:
		return "error"
	default:
		return "idle"
	}
}

// AvatarState — tagged-снимок состояния резолвера.
type AvatarState struct {
	Kind ResolveKind
	URL  string
	Err  error
}

// Resolver превращает возможно-пустой / абсолютный / относительный указатель
// в отображаемый URL, не блокируя вызывающего.
//
// Каждый Resolve получает новое поколение; завершение, чьё поколение уже
// вытеснено, отбрасывается — «выигрывает последний запрос», а не последний
// успевший завершиться. Повторный Resolve того же указателя идемпотентен.
type Resolver struct {
	mu    sync.Mutex
	gen   uint64
	state AvatarState
	blobs Gateway
}

// NewResolver создаёт резолвер в состоянии Idle.
func NewResolver(blobs Gateway) *Resolver {
	return &Resolver{blobs: blobs}
}

// Resolve пересчитывает состояние для нового указателя.
//
//   - "" — Idle (нет аватара);
//   - абсолютный URL или превью-хендл — Resolved сразу, без похода в хранилище;
//   - иначе указатель считается ключом бакета и резолвится через гейтвей
//     асинхронно; недоступный гейтвей — явная ошибка storage.ErrNotReady,
//     а не молчаливое «аватара нет».
//
// Ошибки резолва не пробрасываются — они видны через State().
func (r *Resolver) Resolve(ctx context.Context, pointer string) {
	r.mu.Lock()
	r.gen++
	gen := r.gen

	if pointer == "" {
		r.state = AvatarState{Kind: ResolveIdle}
		r.mu.Unlock()
		return
	}

	if models.IsAbsoluteURL(pointer) || models.IsPreviewHandle(pointer) {
		r.state = AvatarState{Kind: ResolveResolved, URL: pointer}
		r.mu.Unlock()
		return
	}

	r.state = AvatarState{Kind: ResolveLoading}
	r.mu.Unlock()

	// Резолв переживает завершение HTTP-запроса, инициировавшего его.
	bg := context.WithoutCancel(ctx)

	go func() {
		var (
			url string
			err error
		)

		gw, err := r.blobs(bg)
		if err == nil {
			url, err = gw.PublicURL(bg, pointer)
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		// Устаревший результат не должен перетирать состояние актуального указателя.
		if gen != r.gen {
			return
		}

		if err != nil {
			r.state = AvatarState{Kind: ResolveError, Err: err}
			return
		}

		r.state = AvatarState{Kind: ResolveResolved, URL: url}
	}()
}

// State возвращает текущий снимок состояния.
func (r *Resolver) State() AvatarState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
