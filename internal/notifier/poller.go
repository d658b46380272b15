// Package notifier — фоновый опрос уведомлений с ограниченным ретраем
// и тихой деградацией.
//
// Маленькая машина состояний: Idle -> Active (Run с живым контекстом) ->
// Idle (контекст отменён: логаут или демонтаж вьюхи). Внутри Active —
// вложенный счётчик ретраев: сбрасывается на каждом удачном чтении,
// растёт только на серверных (5xx) ошибках и насыщается на пороге.
// Ошибки опроса никогда не всплывают к пользователю: показывается
// последний удачный снимок.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"github.com/pribylovaa/go-recipe-client/internal/client"
	"github.com/pribylovaa/go-recipe-client/internal/config"
	"github.com/pribylovaa/go-recipe-client/internal/models"
	"github.com/pribylovaa/go-recipe-client/internal/pkg/log"
)

var (
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_client_notification_fetches_total",
			Help: "Total notification fetch attempts by result",
		},
		[]string{"result"},
	)
	discardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_client_notifications_discarded_total",
			Help: "Notifications dropped by the validity filter",
		},
	)
)

// API — подмножество HTTP-клиента для уведомлений.
type API interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Snapshot — последний удачный снимок: валидные уведомления и число
// непрочитанных (никогда не отрицательное).
type Snapshot struct {
	Notifications []models.Notification
	Unread        int
}

// Poller — цикл опроса уведомлений одного зрителя.
type Poller struct {
	api API
	cfg config.NotificationsConfig

	// onUpdate вызывается после каждого удачного чтения. Может быть nil.
	onUpdate func(Snapshot)

	mu            sync.Mutex
	notifications []models.Notification
	unread        int
	retries       int
}

// Option — необязательные параметры поллера.
type Option func(*Poller)

// WithUpdateHook — подписка на новые снимки.
func WithUpdateHook(fn func(Snapshot)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// New создаёт поллер. Нулевые значения конфига заменяются дефолтами,
// чтобы тикер не паниковал на нулевом интервале.
func New(api API, cfg config.NotificationsConfig, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	p := &Poller{api: api, cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run — Active-состояние поллера: немедленное первое чтение, дальше —
// каждый интервал, пока жив контекст. Возвращает nil при отмене;
// после возврата ни одно запланированное чтение не сработает.
func (p *Poller) Run(ctx context.Context) error {
	const op = "notifier/Run"

	lg := log.From(ctx)
	lg.Info("poll_start",
		slog.String("op", op),
		slog.Duration("interval", p.cfg.Interval),
		slog.Int("max_retries", p.cfg.MaxRetries),
	)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.fetchWithRetry(ctx)

	for {
		select {
		case <-ctx.Done():
			lg.Info("poll_stop", slog.String("op", op))
			return nil
		case <-ticker.C:
			p.fetchWithRetry(ctx)
		}
	}
}

// Snapshot — последний удачный снимок.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Notification, len(p.notifications))
	copy(out, p.notifications)
	return Snapshot{Notifications: out, Unread: p.unread}
}

// Unread — число непрочитанных из последнего снимка.
func (p *Poller) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// MarkRead — оптимистично помечает уведомление прочитанным и
// подтверждает на сервере; при ошибке помечание откатывается.
func (p *Poller) MarkRead(ctx context.Context, id string) error {
	const op = "notifier/MarkRead"

	p.mu.Lock()
	idx := -1
	for i := range p.notifications {
		if p.notifications[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || p.notifications[idx].Read {
		p.mu.Unlock()
		return nil
	}

	p.notifications[idx].Read = true
	p.recountLocked()
	p.mu.Unlock()

	if err := p.api.MarkNotificationRead(ctx, id); err != nil {
		p.mu.Lock()
		if idx < len(p.notifications) && p.notifications[idx].ID == id {
			p.notifications[idx].Read = false
			p.recountLocked()
		}
		p.mu.Unlock()

		log.From(ctx).Warn("mark_read_failed", "op", op, "err", err.Error())
		return err
	}

	return nil
}

// MarkAllRead — оптимистично помечает все прочитанными; при ошибке
// восстанавливает прежние флаги.
func (p *Poller) MarkAllRead(ctx context.Context) error {
	const op = "notifier/MarkAllRead"

	p.mu.Lock()
	prior := make([]bool, len(p.notifications))
	for i := range p.notifications {
		prior[i] = p.notifications[i].Read
		p.notifications[i].Read = true
	}
	p.recountLocked()
	p.mu.Unlock()

	if err := p.api.MarkAllNotificationsRead(ctx); err != nil {
		p.mu.Lock()
		for i := range p.notifications {
			if i < len(prior) {
				p.notifications[i].Read = prior[i]
			}
		}
		p.recountLocked()
		p.mu.Unlock()

		log.From(ctx).Warn("mark_all_read_failed", "op", op, "err", err.Error())
		return err
	}

	return nil
}

// fetchWithRetry — одно запланированное чтение с ограниченным ретраем.
// Ретраится только серверный класс ошибок; по исчерпанию попыток чтение
// тихо сдаётся до следующего тика, счётчик сбрасывается.
func (p *Poller) fetchWithRetry(ctx context.Context) {
	const op = "notifier/fetchWithRetry"

	lg := log.From(ctx).With("op", op)

	for {
		err := p.fetchOnce(ctx)
		if err == nil {
			p.mu.Lock()
			p.retries = 0
			p.mu.Unlock()
			return
		}

		if ctx.Err() != nil {
			return
		}

		if !client.IsRetryable(err) {
			lg.Warn("fetch_failed", slog.String("err", err.Error()))
			fetchesTotal.WithLabelValues("error").Inc()
			return
		}

		p.mu.Lock()
		if p.retries >= p.cfg.MaxRetries {
			// Насыщение: сдаёмся до следующего тика.
			p.retries = 0
			p.mu.Unlock()

			lg.Warn("fetch_gave_up", slog.Int("retries", p.cfg.MaxRetries))
			fetchesTotal.WithLabelValues("gave_up").Inc()
			return
		}
		p.retries++
		attempt := p.retries
		p.mu.Unlock()

		lg.Warn("fetch_retry",
			slog.Int("attempt", attempt),
			slog.Int("max", p.cfg.MaxRetries),
			slog.Duration("delay", p.cfg.RetryDelay),
		)
		fetchesTotal.WithLabelValues("retry").Inc()

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.RetryDelay):
		}
	}
}

// fetchOnce — одно чтение: фильтр валидности, пересчёт непрочитанных,
// публикация снимка.
func (p *Poller) fetchOnce(ctx context.Context) error {
	raw, err := p.api.Notifications(ctx)
	if err != nil {
		return err
	}

	valid := lo.Filter(raw, func(n models.Notification, _ int) bool {
		return n.Valid()
	})
	if dropped := len(raw) - len(valid); dropped > 0 {
		discardedTotal.Add(float64(dropped))
		log.From(ctx).Warn("notifications_discarded", slog.Int("count", dropped))
	}

	p.mu.Lock()
	p.notifications = valid
	p.recountLocked()
	snap := Snapshot{
		Notifications: append([]models.Notification(nil), valid...),
		Unread:        p.unread,
	}
	p.mu.Unlock()

	fetchesTotal.WithLabelValues("ok").Inc()

	if p.onUpdate != nil {
		p.onUpdate(snap)
	}

	return nil
}

// recountLocked — пересчёт непрочитанных. Под mu.
func (p *Poller) recountLocked() {
	p.unread = lo.CountBy(p.notifications, func(n models.Notification) bool {
		return !n.Read
	})
}
