// Package client — HTTP-клиент REST-бэкенда приложения рецептов.
//
// Вся бизнес-логика (персистентность, аутентификация, ранжирование ленты,
// граф подписок, рассылка уведомлений) живёт за REST API; этот пакет только
// ходит по нему. Транспорт — resty; цепочка middleware: идентификация
// (Bearer + cookies) -> логирование -> метрики.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"

	"github.com/pribylovaa/go-recipe-client/internal/config"
	"github.com/pribylovaa/go-recipe-client/internal/pkg/log"
)

var (
	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_client_request_latency_seconds",
			Help:    "Histogram of recipe API request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path", "status_code"},
	)
)

// Client — клиент REST API рецептов.
// Идентичность зрителя (viewer) устанавливается после логина через
// SetViewer и снимается при логауте; пока она пуста, авторизованные
// запросы будут получать 401.
type Client struct {
	rc  *resty.Client
	log *slog.Logger

	mu       sync.RWMutex
	viewerID string

	// onAuthExpired вызывается при 401: внешний auth-коллаборатор
	// пытается обновить сессию. Может быть nil.
	onAuthExpired func()
}

// Option — необязательные параметры клиента.
type Option func(*Client)

// WithAuthExpiredHook — колбэк на 401 (единственный кросс-катящий
// сайд-эффект таксономии ошибок).
func WithAuthExpiredHook(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// New создаёт клиент по конфигурации.
// Cookie jar включён всегда: бэкенд выдаёт сессионные cookies.
func New(cfg config.APIConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	const op = "client/New"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: cookiejar: %w", op, err)
	}

	c := &Client{log: logger}
	for _, opt := range opts {
		opt(c)
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	rc.AddRequestMiddleware(c.identityMiddleware)
	rc.AddResponseMiddleware(c.observeMiddleware)

	c.rc = rc

	return c, nil
}

// Close освобождает ресурсы транспорта.
func (c *Client) Close() error {
	return c.rc.Close()
}

// SetViewer устанавливает идентичность текущего зрителя.
func (c *Client) SetViewer(id string) {
	c.mu.Lock()
	c.viewerID = id
	c.mu.Unlock()
}

// ClearViewer снимает идентичность (логаут).
func (c *Client) ClearViewer() {
	c.SetViewer("")
}

// Viewer возвращает идентичность текущего зрителя ("" — аноним).
func (c *Client) Viewer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewerID
}

// r — базовый запрос с контекстом.
func (c *Client) r(ctx context.Context) *resty.Request {
	return c.rc.R().WithContext(ctx)
}

// identityMiddleware добавляет к каждому запросу X-Request-Id и,
// если зритель известен, Authorization: Bearer <viewer>.
// Payload и чувствительные заголовки не логируются.
func (c *Client) identityMiddleware(_ *resty.Client, r *resty.Request) error {
	r.SetHeader("X-Request-Id", uuid.NewString())

	if id := c.Viewer(); id != "" {
		r.SetHeader("Authorization", "Bearer "+id)
	}

	return nil
}

// observeMiddleware — одна финальная запись Info на вызов плюс
// наблюдение латентности в Prometheus.
func (c *Client) observeMiddleware(_ *resty.Client, res *resty.Response) error {
	reqURL, err := url.Parse(res.Request.URL)
	if err != nil {
		return err
	}

	statusCode := res.StatusCode()
	apiLatency.WithLabelValues(
		res.Request.Method,
		reqURL.Path,
		fmt.Sprintf("%d", statusCode),
	).Observe(res.Duration().Seconds())

	c.log.Info("http",
		slog.String("method", res.Request.Method),
		slog.String("path", reqURL.Path),
		slog.Int("status", statusCode),
		slog.Duration("dur", res.Duration()),
	)

	return nil
}

// check сводит результат вызова к таксономии ошибок пакета.
// Транспортная ошибка -> ErrNetwork; не-2xx -> fromStatus.
// На 401 дёргается хук повторной аутентификации.
func (c *Client) check(ctx context.Context, res *resty.Response, err error, op string) error {
	lg := log.From(ctx).With("op", op)

	if err != nil {
		lg.Warn("request_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, ErrNetwork)
	}

	if serr := fromStatus(res.StatusCode()); serr != nil {
		if res.StatusCode() == http.StatusUnauthorized && c.onAuthExpired != nil {
			c.onAuthExpired()
		}

		lg.Warn("request_rejected", slog.Int("status", res.StatusCode()))
		return fmt.Errorf("%s: %w", op, serr)
	}

	return nil
}
