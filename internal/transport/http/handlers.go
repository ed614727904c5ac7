// http содержит REST-эндпоинты profile-сервиса.
//
// Принципы:
//   - Контекст запроса прокидывается в сервис без потерь;
//   - Входные данные валидируются на уровне транспорта (UUID, multipart);
//   - Доменные ошибки маппятся в HTTP-статусы пакетом internal/errors.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/mkrylova/go-profile-service/internal/draft"
	"github.com/mkrylova/go-profile-service/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc    *service.Service
	drafts *draft.Manager
}

// New создаёт набор хендлеров.
func New(svc *service.Service, drafts *draft.Manager) *Handlers {
	return &Handlers{svc: svc, drafts: drafts}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
