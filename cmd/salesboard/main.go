package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	corecfg "github.com/salesboard-lab/salesboard/internal/core/config"
	"github.com/salesboard-lab/salesboard/internal/core/dataset"
	"github.com/salesboard-lab/salesboard/internal/core/errs"
	"github.com/salesboard-lab/salesboard/internal/core/schema"
	"github.com/salesboard-lab/salesboard/internal/dashboard"
	"github.com/salesboard-lab/salesboard/internal/ingestion"
	"github.com/salesboard-lab/salesboard/internal/server"
)

func main() {
	configPath := flag.String("config", "salesboard.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "dataset", cfg.Dataset.Path, "format", cfg.Dataset.Format)

	// 2. Ingest the raw table
	tbl, err := ingestion.Load(cfg.Dataset.Path, cfg.Dataset.Format)
	if err != nil {
		slog.Error("Failed to load dataset", "path", cfg.Dataset.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded raw table", "columns", len(tbl.Columns), "rows", len(tbl.Rows))

	// 3. Resolve column roles
	var mapping schema.Mapping
	if overrides := cfg.Mapping.Overrides(); overrides != nil {
		mapping, err = schema.ResolveExplicit(tbl.Columns, overrides)
	} else {
		mapping, err = schema.Resolve(tbl.Columns)
	}
	if err != nil {
		resp := errs.ResponseFor(err)
		slog.Error("Failed to resolve column roles", "error", err, "error_type", resp.ErrorType, "details", resp.Details)
		os.Exit(1)
	}

	// 4. Normalize into the typed dataset, optionally under a parse budget
	ctx := context.Background()
	if cfg.Dataset.MaxParseSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Dataset.MaxParseSeconds)*time.Second)
		defer cancel()
	}

	ds, report, err := dataset.Normalize(ctx, tbl, mapping)
	if err != nil {
		resp := errs.ResponseFor(err)
		slog.Error("Failed to normalize dataset", "error", err, "error_type", resp.ErrorType, "details", resp.Details)
		os.Exit(1)
	}
	slog.Info("Dataset normalized",
		"rows_in", report.RowsIn,
		"rows_dropped", report.RowsDropped,
		"retained", report.Retained,
		"countries", len(ds.Countries()),
	)

	// 5. Initialize the query service
	svc := dashboard.NewService(ds, report)
	svc.DefaultCountryLimit = cfg.Filter.DefaultCountryLimit

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), svc, cfg.Server.Mode)
	svc.RegisterRoutes(srv.Engine)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until runCtx is cancelled.
	if err := srv.Run(runCtx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
