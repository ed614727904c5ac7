// cleanup — фоновая best-effort очистка устаревших аватаров в Blob Store.
//
// Удаление вытеснено из цикла запрос/ответ: Commit лишь ставит ключ в очередь,
// а воркер удаляет его с ограниченным числом повторов. Неудача удаления никогда
// не влияет на уже успешный Commit — объект остаётся осиротевшим в бакете.
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mkrylova/go-profile-service/internal/storage"
)

var (
	metricEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatar_cleanup_enqueued_total",
		Help: "Keys accepted into the cleanup queue.",
	})
	metricDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatar_cleanup_deleted_total",
		Help: "Keys successfully deleted from blob storage.",
	})
	metricFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatar_cleanup_failed_total",
		Help: "Keys given up after exhausting delete attempts.",
	})
	metricDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatar_cleanup_dropped_total",
		Help: "Keys dropped because the cleanup queue was full.",
	})
	metricDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "avatar_cleanup_queue_depth",
		Help: "Current number of keys waiting in the cleanup queue.",
	})
)

// Gateway — аксессор Blob Store Gateway; может вернуть storage.ErrNotReady.
type Gateway func(ctx context.Context) (storage.Avatars, error)

// Options — параметры очереди.
type Options struct {
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
}

// Queue — очередь фоновых удалений.
type Queue struct {
	blobs Gateway
	tasks chan string
	opts  Options
	log   *slog.Logger

	wg sync.WaitGroup
}

// New создаёт очередь. Run должен быть запущен отдельно.
func New(blobs Gateway, opts Options, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}

	return &Queue{
		blobs: blobs,
		tasks: make(chan string, opts.QueueSize),
		opts:  opts,
		log:   log,
	}
}

// Enqueue ставит ключи в очередь, не блокируя вызывающего.
// При переполнении ключ отбрасывается с логом: осиротевший объект —
// принятый компромисс, а не ошибка вызвавшей операции.
func (q *Queue) Enqueue(keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}

		select {
		case q.tasks <- key:
			metricEnqueued.Inc()
			metricDepth.Set(float64(len(q.tasks)))
		default:
			metricDropped.Inc()
			q.log.Warn("cleanup_queue_full", slog.String("key", key))
		}
	}
}

// Run запускает воркер и блокируется до отмены контекста.
// После отмены дорабатывается текущий ключ, остальные остаются осиротевшими.
func (q *Queue) Run(ctx context.Context) {
	q.wg.Add(1)
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case key := <-q.tasks:
			metricDepth.Set(float64(len(q.tasks)))
			q.deleteWithRetry(ctx, key)
		}
	}
}

// Wait дожидается завершения воркера (для graceful shutdown).
func (q *Queue) Wait() {
	q.wg.Wait()
}

// deleteWithRetry удаляет один ключ с повторами и бэкоффом.
// Удаление идемпотентно: отсутствие объекта трактуется гейтвеем как успех.
func (q *Queue) deleteWithRetry(ctx context.Context, key string) {
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		gw, err := q.blobs(ctx)
		if err == nil {
			err = gw.Remove(ctx, []string{key})
		}

		if err == nil {
			metricDeleted.Inc()
			return
		}

		q.log.Warn("cleanup_delete_failed",
			slog.String("key", key),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)

		if attempt == q.opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(q.opts.Backoff * time.Duration(attempt)):
		}
	}

	metricFailed.Inc()
}
