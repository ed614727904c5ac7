package draft

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mkrylova/go-profile-service/internal/models"
)

// Preview — эфемерный локальный хендл на байты изображения, ещё не
// зафиксированные в Blob Store. Используется только для мгновенного
// отображения, пока загрузка в полёте, и освобождается ровно один раз
// на каждом пути выхода (успех, ошибка, вытеснение новым превью, teardown).
type Preview struct {
	id          string
	contentType string

	once sync.Once
	data atomic.Pointer[[]byte]
}

func newPreview(data []byte, contentType string) *Preview {
	p := &Preview{
		id:          uuid.NewString(),
		contentType: contentType,
	}
	p.data.Store(&data)
	return p
}

// Handle возвращает локальный указатель вида "mem://<id>".
// Резолвер отдаёт такие указатели как есть, без обращения к хранилищу.
func (p *Preview) Handle() string {
	return models.PreviewScheme + p.id
}

// Bytes возвращает байты превью и content type.
// ok == false после Release.
func (p *Preview) Bytes() (data []byte, contentType string, ok bool) {
	ptr := p.data.Load()
	if ptr == nil {
		return nil, "", false
	}

	return *ptr, p.contentType, true
}

// Release освобождает ресурс превью. Идемпотентен: повторные вызовы — no-op.
func (p *Preview) Release() {
	p.once.Do(func() {
		p.data.Store(nil)
	})
}
