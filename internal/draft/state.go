// draft — ядро согласования драфта профиля с Blob Store и записью профиля.
//
// Controller владеет in-memory драфтом одной сессии редактирования и
// опосредует Upload / Commit / Cancel / Remove. Resolver превращает
// указатель аватара в отображаемый URL. Оба — явные tagged-state машины:
// нелегальные комбинации флагов (одновременно loading и error) непредставимы.
package draft

import "errors"

var (
	// ErrSuperseded — результат асинхронной операции устарел: его поколение
	// вытеснено более новым Upload/Cancel. Состояние драфта не изменено.
	ErrSuperseded = errors.New("operation superseded")
	// ErrNoSession — драфт-сессия не найдена или принадлежит другому пользователю.
	ErrNoSession = errors.New("draft session not found")
)

// Phase — фаза жизненного цикла драфта.
type Phase int

const (
	// PhaseIdle — нет незавершённых операций с аватаром.
	PhaseIdle Phase = iota
	// PhasePreviewing — показывается локальное превью, загрузка ещё не стартовала.
	PhasePreviewing
	// PhaseUploading — загрузка в Blob Store в полёте.
	PhaseUploading
	// PhaseCommitted — последняя операция — успешный Commit.
	PhaseCommitted
	// PhaseFailed — последняя операция завершилась ошибкой (детали в LastErr).
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePreviewing:
		return "previewing"
	case PhaseUploading:
		return "uploading"
	case PhaseCommitted:
		return "committed"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// CandidateKind — вид ожидающего изменения аватара.
type CandidateKind int

const (
	// CandidateNone — ожидающих изменений нет (указатель не меняется).
	CandidateNone CandidateKind = iota
	// CandidateSet — успешный Upload дал долговечный ключ, ждущий Commit.
	CandidateSet
	// CandidateCleared — явный маркер «очистить аватар» (отличен от «не менять»).
	CandidateCleared
)

// Candidate — кандидат-указатель драфта.
type Candidate struct {
	Kind CandidateKind
	Path string
}

// Fields — текстовые поля драфта.
type Fields struct {
	FullName string
	Username string
	Website  string
}

// Snapshot — last-known-good состояние: зафиксированные поля и указатель.
type Snapshot struct {
	Fields        Fields
	AvatarPointer string
}

// View — снимок драфта для транспортного слоя.
type View struct {
	Phase         Phase
	Fields        Fields
	Candidate     Candidate
	Committed     string // зафиксированный указатель аватара
	PreviewHandle string // "" когда превью нет
	Avatar        AvatarState
	LastErr       error
}
