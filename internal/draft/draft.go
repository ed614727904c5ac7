package draft

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mkrylova/go-profile-service/internal/images"
	"github.com/mkrylova/go-profile-service/internal/models"
	"github.com/mkrylova/go-profile-service/internal/service"
	"github.com/mkrylova/go-profile-service/internal/storage"
)

// ProfileService — контракт серверной стороны, нужный контроллеру драфта.
// Реализуется *service.Service.
type ProfileService interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CommitProfile(ctx context.Context, input service.CommitInput) (*models.Profile, error)
}

// Options — ограничения и настройки обработки загрузок.
type Options struct {
	MaxUploadBytes int64
	Compress       bool
	MaxDimension   int
}

// Controller — драфт одной сессии редактирования профиля.
//
// Владение эксклюзивное: вторая вкладка того же пользователя получает
// собственный Controller со своим committed-снимком; согласование между
// сессиями происходит только через запись профиля (last-writer-wins).
//
// Все сетевые вызовы выполняются вне мьютекса; каждая асинхронная операция
// помечена поколением и применяется, только если не была вытеснена более
// новым Upload/Remove/Cancel.
type Controller struct {
	userID uuid.UUID
	svc    ProfileService
	blobs  Gateway
	opts   Options

	resolver *Resolver

	mu        sync.Mutex
	committed Snapshot
	fields    Fields
	candidate Candidate
	preview   *Preview
	uploadGen uint64
	phase     Phase
	lastErr   error
}

// NewController создаёт контроллер без загрузки данных; см. Load.
func NewController(svc ProfileService, blobs Gateway, opts Options, userID uuid.UUID) *Controller {
	return &Controller{
		userID:   userID,
		svc:      svc,
		blobs:    blobs,
		opts:     opts,
		resolver: NewResolver(blobs),
	}
}

// UserID возвращает владельца драфта.
func (c *Controller) UserID() uuid.UUID { return c.userID }

// Resolver возвращает резолвер аватара этой сессии.
func (c *Controller) Resolver() *Resolver { return c.resolver }

// Load заполняет драфт из записи профиля, неявно создавая её при первом
// обращении, и фиксирует last-known-good снимок для Cancel/отката.
func (c *Controller) Load(ctx context.Context) error {
	const op = "draft/Load"

	profile, err := c.svc.EnsureProfile(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.committed = snapshotOf(profile)
	c.fields = c.committed.Fields
	c.candidate = Candidate{}
	c.phase = PhaseIdle
	c.lastErr = nil
	c.resolver.Resolve(ctx, profile.AvatarPointer)
	c.mu.Unlock()

	return nil
}

// Upload принимает новое изображение: валидирует, опционально даунскейлит,
// немедленно показывает локальное превью и загружает байты в Blob Store под
// свежим ключом (без перезаписи). Запись профиля не трогается.
//
// Предусловия (нарушение — быстрый отказ без побочных эффектов):
// image/* content type, непустое тело, размер в пределах лимита.
//
// Неудача загрузки: превью освобождается, дисплей возвращается к прежнему
// зафиксированному указателю, кандидат остаётся пустым — неудачная загрузка
// не должна выглядеть как ожидающее изменение.
//
// Успех: кандидат = новый ключ, превью освобождается (дисплей отслеживает
// долговечный ключ через резолвер). Прежний блоб не удаляется — удаление
// отложено до Commit, пользователь ещё может нажать Cancel.
func (c *Controller) Upload(ctx context.Context, contentType string, r io.Reader) (string, error) {
	const op = "draft/Upload"

	if c.userID == uuid.Nil {
		return "", fmt.Errorf("%s: %w: missing user id", op, service.ErrInvalidArgument)
	}

	contentType = strings.TrimSpace(contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s: %w: not an image", op, service.ErrInvalidArgument)
	}

	data, err := io.ReadAll(io.LimitReader(r, c.opts.MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w: empty file", op, service.ErrInvalidArgument)
	}
	if int64(len(data)) > c.opts.MaxUploadBytes {
		return "", fmt.Errorf("%s: %w: file exceeds %d bytes", op, service.ErrInvalidArgument, c.opts.MaxUploadBytes)
	}

	if c.opts.Compress {
		data, contentType, err = images.Downscale(data, contentType, c.opts.MaxDimension)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	c.mu.Lock()
	if c.preview != nil {
		c.preview.Release()
	}
	pv := newPreview(data, contentType)
	c.preview = pv

	c.uploadGen++
	gen := c.uploadGen
	key := storage.NewAvatarKey(c.userID, contentType)
	committedPtr := c.committed.AvatarPointer
	c.phase = PhaseUploading
	c.lastErr = nil
	// Превью публикуется под мьютексом: Cancel/Remove, успевшие в зазор между
	// Unlock и Resolve, иначе были бы перетёрты хендлом уже освобождённого превью.
	c.resolver.Resolve(ctx, pv.Handle())
	c.mu.Unlock()

	gw, err := c.blobs(ctx)
	if err == nil {
		err = gw.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.uploadGen {
		// Вытеснены более новым Upload/Remove/Cancel: наше превью уже
		// освобождено вытеснившей операцией, состояние не трогаем.
		// Успевший загрузиться блоб остаётся осиротевшим.
		return "", fmt.Errorf("%s: %w", op, ErrSuperseded)
	}

	if err != nil {
		pv.Release()
		c.preview = nil
		c.phase = PhaseFailed
		c.lastErr = err
		c.resolver.Resolve(ctx, committedPtr)

		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.candidate = Candidate{Kind: CandidateSet, Path: key}
	pv.Release()
	c.preview = nil
	c.phase = PhaseIdle
	c.resolver.Resolve(ctx, key)

	return key, nil
}

// Commit фиксирует все поля драфта, включая ожидающий кандидат-указатель.
// Валидация и авторизация — на серверной стороне (service.CommitProfile),
// до любых обращений к хранилищам.
//
// Успех: committed-снимок продвигается, кандидат очищается; старый блоб и
// инвалидация кэша — забота серверной стороны.
// Неудача: видимые поля откатываются к last-known-good, кандидат и уже
// загруженный блоб остаются — Commit можно повторить без новой загрузки
// (намеренная асимметрия с неудачей Upload).
func (c *Controller) Commit(ctx context.Context, fields Fields) error {
	const op = "draft/Commit"

	c.mu.Lock()
	c.fields = fields

	pointer := c.committed.AvatarPointer
	switch c.candidate.Kind {
	case CandidateSet:
		pointer = c.candidate.Path
	case CandidateCleared:
		pointer = ""
	}

	input := service.CommitInput{
		UserID:        c.userID,
		FullName:      fields.FullName,
		Username:      fields.Username,
		Website:       fields.Website,
		AvatarPointer: pointer,
	}
	c.mu.Unlock()

	profile, err := c.svc.CommitProfile(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.fields = c.committed.Fields
		c.phase = PhaseFailed
		c.lastErr = err
		c.resolver.Resolve(ctx, c.committed.AvatarPointer)

		return fmt.Errorf("%s: %w", op, err)
	}

	c.committed = snapshotOf(profile)
	c.fields = c.committed.Fields
	c.candidate = Candidate{}
	c.phase = PhaseCommitted
	c.lastErr = nil
	c.resolver.Resolve(ctx, c.committed.AvatarPointer)

	return nil
}

// Remove помечает аватар на удаление без новой загрузки.
// Если аватара нет ни в зафиксированном состоянии, ни в кандидате — no-op.
// Кандидат становится явным маркером «очищено»; Commit, увидев его,
// запишет NULL и отложенно удалит ранее зафиксированный блоб.
// Немедленное удаление из хранилища здесь не выполняется: вместе с
// последующим Cancel оно оставило бы зафиксированный указатель на уже
// удалённый объект.
func (c *Controller) Remove(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.committed.AvatarPointer == "" && c.candidate.Kind == CandidateNone && c.preview == nil {
		return nil
	}

	if c.preview != nil {
		c.preview.Release()
		c.preview = nil
	}

	c.uploadGen++ // инвалидирует in-flight загрузку
	c.candidate = Candidate{Kind: CandidateCleared}
	c.phase = PhaseIdle
	c.lastErr = nil
	c.resolver.Resolve(ctx, "")

	return nil
}

// Cancel отбрасывает все незафиксированные правки: поля возвращаются к
// last-known-good, превью освобождается, in-flight операции вытесняются.
// Сетевых вызовов нет; уже загруженный кандидат-блоб намеренно остаётся
// осиротевшим — удалять его без знания о конкурентных операциях небезопасно.
func (c *Controller) Cancel(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields = c.committed.Fields
	c.candidate = Candidate{}

	if c.preview != nil {
		c.preview.Release()
		c.preview = nil
	}

	c.uploadGen++
	c.phase = PhaseIdle
	c.lastErr = nil
	c.resolver.Resolve(ctx, c.committed.AvatarPointer)
}

// View возвращает снимок драфта для транспортного слоя.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Phase:     c.phase,
		Fields:    c.fields,
		Candidate: c.candidate,
		Committed: c.committed.AvatarPointer,
		Avatar:    c.resolver.State(),
		LastErr:   c.lastErr,
	}

	if c.preview != nil {
		v.PreviewHandle = c.preview.Handle()
	}

	return v
}

// PreviewBytes возвращает байты текущего превью (для отдачи транспортом).
// ok == false, когда превью нет или оно уже освобождено.
func (c *Controller) PreviewBytes() (data []byte, contentType string, ok bool) {
	c.mu.Lock()
	pv := c.preview
	c.mu.Unlock()

	if pv == nil {
		return nil, "", false
	}

	return pv.Bytes()
}

func snapshotOf(p *models.Profile) Snapshot {
	return Snapshot{
		Fields: Fields{
			FullName: p.FullName,
			Username: p.Username,
			Website:  p.Website,
		},
		AvatarPointer: p.AvatarPointer,
	}
}
