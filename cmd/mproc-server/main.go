package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scailfin/benchmark-multiproc-backend/internal/config"
	"github.com/scailfin/benchmark-multiproc-backend/internal/engine"
	"github.com/scailfin/benchmark-multiproc-backend/internal/logging"
	"github.com/scailfin/benchmark-multiproc-backend/internal/repo"
	"github.com/scailfin/benchmark-multiproc-backend/internal/server"
	"github.com/scailfin/benchmark-multiproc-backend/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Base directory for templates and runs")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (\":memory:\" for testing)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	templates, err := repo.New(cfg.TemplateDir(), st, logger)
	if err != nil {
		return err
	}

	metrics := engine.NewMetrics(prometheus.DefaultRegisterer)
	eng, err := engine.New(cfg.RunDir(), logger,
		engine.WithStore(st),
		engine.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	srv := server.New(cfg, templates, eng, logger)
	return srv.ListenAndServe(ctx)
}
