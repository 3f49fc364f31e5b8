package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-social/pkg/config"
	"github.com/goliatone/go-social/pkg/interfaces/logger"
	"github.com/goliatone/go-social/pkg/retry"
	"github.com/goliatone/go-social/pkg/social"
	"github.com/goliatone/go-social/pkg/storage"
	"github.com/uptrace/bun"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	input, err := readConfig(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(input, config.WithEnv(os.LookupEnv))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lgr := logger.New(logger.Options{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, db, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	module, err := social.NewModule(social.ModuleOptions{
		Config:  cfg,
		Storage: providers,
		Logger:  lgr,
	})
	if err != nil {
		return fmt.Errorf("assemble module: %w", err)
	}

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     module.Handler(),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		lgr.Info("listening", logger.F("addr", cfg.Server.Addr), logger.F("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	lgr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by http.Server.
	if err := module.Close(shutdownCtx); err != nil {
		lgr.Warn("close module", logger.Err(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func readConfig(path string) (map[string]any, error) {
	input := map[string]any{}
	if path == "" {
		return input, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return input, nil
}

func openStorage(ctx context.Context, cfg config.Config, lgr logger.Logger) (storage.Providers, *bun.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return storage.NewMemoryProviders(), nil, nil
	}

	var db *bun.DB
	err := retry.Do(ctx, cfg.Database.ConnectRetry+1, retry.DefaultBackoff(), func(ctx context.Context, attempt int) error {
		var err error
		db, err = storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			lgr.Warn("database not ready", logger.F("attempt", attempt), logger.Err(err))
		}
		return err
	})
	if err != nil {
		return storage.Providers{}, nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.CreateSchema {
		if err := storage.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return storage.Providers{}, nil, err
		}
	}
	return storage.NewBunProviders(db), db, nil
}
