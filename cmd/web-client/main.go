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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/config"
	gwhttp "github.com/pribylovaa/ticket-booking-client/internal/http"
	"github.com/pribylovaa/ticket-booking-client/internal/http/handlers"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/pkg/interceptors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting web-client", slog.String("env", cfg.Env), slog.String("backend", cfg.API.BaseURL))

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	provider, closeProvider, err := sessionTokens(rootCtx, cfg.Tokens, log)
	if err != nil {
		log.Error("token_store_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := closeProvider(); cerr != nil {
			log.Warn("token_store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	metrics := client.NewMetrics(prometheus.DefaultRegisterer)
	backend := interceptors.Chain(&http.Client{},
		interceptors.Recover(),
		interceptors.WithTimeout(cfg.Timeouts.Request),
	)

	h := handlers.New(provider, func(store tokens.Store) *client.API {
		return client.NewAPI(client.NewExecutor(cfg.API.BaseURL, store,
			client.WithDoer(backend),
			client.WithMetrics(metrics),
			client.WithUserAgent(cfg.API.UserAgent),
		))
	})

	apiHandler := gwhttp.NewRouter(h, gwhttp.Options{
		Logger:     log,
		Timeout:    cfg.Timeouts.Request,
		SessionTTL: cfg.Tokens.TTL,
	})

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

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 2)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}()

	go func() {
		log.Info("metrics_listen_start", slog.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("web_client_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		log.Error("http_serve_failed", slog.String("err", err.Error()))
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics_shutdown_incomplete", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
}

// sessionTokens выбирает хранилище токенов браузерных сессий.
// Файловое хранилище одно на origin и сессий не различает, поэтому
// для шлюза оно заменяется памятью.
func sessionTokens(ctx context.Context, cfg config.TokensConfig, log *slog.Logger) (tokens.Provider, func() error, error) {
	switch cfg.Backend {
	case config.TokensRedis:
		p, err := tokens.NewRedisProvider(ctx, cfg.RedisURL, cfg.Prefix, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("token_store_redis", slog.String("prefix", cfg.Prefix))
		return p, p.Close, nil

	case config.TokensFile:
		log.Warn("token_store_file_unsupported_for_sessions", slog.String("fallback", config.TokensMemory))
	}

	return tokens.NewMemoryProvider(cfg.TTL), func() error { return nil }, nil
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
