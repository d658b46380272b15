package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-recipe-client/internal/client"
	"github.com/pribylovaa/go-recipe-client/internal/config"
	"github.com/pribylovaa/go-recipe-client/internal/notifier"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath, viewerID string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&viewerID, "viewer", os.Getenv("VIEWER_ID"), "authenticated viewer id")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting recipe-client", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	api, err := client.New(cfg.API, log, client.WithAuthExpiredHook(func() {
		log.Warn("auth_expired")
	}))
	if err != nil {
		log.Error("client_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := api.Close(); cerr != nil {
			log.Warn("client_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	log.Info("client_initialized", slog.String("base_url", cfg.API.BaseURL))

	// Поллер уведомлений — единственная долгоживущая фоновая активность.
	// Без идентичности зрителя остаётся в Idle.
	pollErrCh := make(chan error, 1)
	if viewerID != "" {
		api.SetViewer(viewerID)
		poller := notifier.New(api, cfg.Notifications, notifier.WithUpdateHook(func(s notifier.Snapshot) {
			log.Info("notifications_updated",
				slog.Int("total", len(s.Notifications)),
				slog.Int("unread", s.Unread),
			)
		}))

		go func() {
			pollErrCh <- poller.Run(rootCtx)
		}()

		log.Info("poller_started", slog.String("viewer", viewerID))
	} else {
		log.Warn("no_viewer_identity", slog.String("hint", "pass --viewer or VIEWER_ID"))
		close(pollErrCh)
	}

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	metricsAddr := cfg.Metrics.Addr()
	httpSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", metricsAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", metricsAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("recipe_client_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)
	rootCancel()

	// Поллер обязан остановиться синхронно: ни одно запланированное
	// чтение не должно сработать после выхода.
	if err, ok := <-pollErrCh; ok && err != nil {
		log.Warn("poller_stopped_with_error", slog.String("err", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
