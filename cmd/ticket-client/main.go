package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pribylovaa/ticket-booking-client/internal/cli"
	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/config"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/pkg/interceptors"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

const (
	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&verbose, "v", false, "debug logging to stderr")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitErr
	}

	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = log.Into(ctx, logger)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token store: %v\n", err)
		return exitErr
	}
	defer func() { _ = closeStore() }()

	app := &cli.App{
		API: client.NewAPI(client.NewExecutor(cfg.API.BaseURL, store,
			client.WithDoer(interceptors.Chain(&http.Client{},
				interceptors.Recover(),
				interceptors.WithTimeout(cfg.Timeouts.Request),
			)),
			client.WithUserAgent(cfg.API.UserAgent),
		)),
		Store: store,
		View:  cli.NewTextView(os.Stdout),
		Out:   os.Stderr,
	}

	switch err := app.Run(ctx, flag.Args()); {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrUsage):
		return exitUsage
	default:
		logger.Debug("command_failed", slog.String("err", err.Error()))
		return exitErr
	}
}

// openStore — хранилище токенов CLI. Для redis сессией служит origin бэкенда.
func openStore(ctx context.Context, cfg *config.Config) (tokens.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Tokens.Backend {
	case config.TokensMemory:
		return tokens.NewMemory(), noop, nil

	case config.TokensRedis:
		p, err := tokens.NewRedisProvider(ctx, cfg.Tokens.RedisURL, cfg.Tokens.Prefix, cfg.Tokens.TTL)
		if err != nil {
			return nil, nil, err
		}
		return p.ForSession("cli:" + cfg.API.BaseURL), p.Close, nil

	default:
		dir, err := cfg.Tokens.Directory()
		if err != nil {
			return nil, nil, err
		}

		f, err := tokens.FileForOrigin(dir, cfg.API.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil
	}
}

// setupLogger — служебный лог в stderr, чтобы не мешать выводу команд.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
