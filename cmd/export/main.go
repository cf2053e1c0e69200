// Command export pulls the tenant's bookings from the upstream API and
// writes one xlsx workbook, for cron jobs and ad hoc backups.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fieldesk/internal/config"
	"fieldesk/internal/export"
	"fieldesk/internal/logging"
	"fieldesk/internal/normalize"
	"fieldesk/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default: CONFIG_PATH or configs/config.yaml)")
	outDir := flag.String("out", "", "output directory (default: exports path from config)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	client := upstream.NewClient(upstream.Options{
		BaseURL:      cfg.Upstream.BaseURL,
		TenantID:     cfg.App.Tenant,
		APIKey:       cfg.Upstream.APIKey,
		TenantHeader: cfg.Upstream.TenantHeader,
		APIKeyHeader: cfg.Upstream.APIKeyHeader,
		Timeout:      time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	records, err := client.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("fetch bookings: %w", err)
	}
	bookings := normalize.Records(records)

	dir := *outDir
	if dir == "" {
		dir = cfg.Exports.Path
	}

	file, err := export.BookingsWorkbook(bookings, dir, cfg.DisplayLocation())
	if err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	logger.Info().Str("file", file).Int("bookings", len(bookings)).Msg("export finished")
	fmt.Println(file)
	return nil
}
