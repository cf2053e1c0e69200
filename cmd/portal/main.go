package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"fieldesk/internal/alerts"
	"fieldesk/internal/api"
	"fieldesk/internal/audit"
	"fieldesk/internal/config"
	"fieldesk/internal/domain"
	"fieldesk/internal/events"
	"fieldesk/internal/logging"
	"fieldesk/internal/metrics"
	"fieldesk/internal/models"
	"fieldesk/internal/repository"
	"fieldesk/internal/service"
	"fieldesk/internal/upstream"
	"fieldesk/internal/view"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	metrics.Register()

	auditLog, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer auditLog.Close()

	states := initStateStore(cfg, logger)

	client := upstream.NewClient(upstream.Options{
		BaseURL:      cfg.Upstream.BaseURL,
		TenantID:     cfg.App.Tenant,
		APIKey:       cfg.Upstream.APIKey,
		TenantHeader: cfg.Upstream.TenantHeader,
		APIKeyHeader: cfg.Upstream.APIKeyHeader,
		Timeout:      time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
	}, logger)

	bus := events.NewEventBus()
	notifier := alerts.NewCenter()
	subscribeAudit(bus, auditLog, cfg.App.Tenant, logger)

	zone := cfg.DisplayLocation()
	bookings := view.NewBookingModel(client, notifier, bus, zone, logger,
		view.WithSlot(time.Duration(cfg.Portal.SlotMinutes)*time.Minute))

	deps := api.Deps{
		Bookings: bookings,
		Leads:    service.NewLeadService(client, bus, logger),
		Finance:  service.NewFinanceService(client, logger),
		Tenant:   service.NewTenantService(client, logger),
		States:   states,
		Audit:    auditLog,
		Alerts:   notifier,
		Exports:  cfg.Exports,
		Zone:     zone,
		TenantID: cfg.App.Tenant,
	}
	httpServer := api.NewHTTPServer(cfg.HTTP, deps, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Start() }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

// initStateStore builds the session store: Redis with in-memory failover
// when Redis is configured, plain memory otherwise.
func initStateStore(cfg *config.Config, logger *zerolog.Logger) domain.ViewStateRepository {
	ttl := time.Duration(cfg.Portal.SessionTTL) * time.Second
	memory := repository.NewMemoryStateRepository(ttl)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, session state is in-memory only")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup, will retry through failover")
	}

	primary := repository.NewRedisStateRepository(client, ttl)
	return repository.NewFailoverStateRepository(primary, memory, logger)
}

// subscribeAudit mirrors booking events into the local audit log so the
// trail survives even when the HTTP layer did not write one.
func subscribeAudit(bus *events.EventBus, auditLog *audit.Log, tenant string, logger *zerolog.Logger) {
	handler := func(event *events.Event) error {
		entry := models.AuditEntry{
			TenantID: tenant,
			Op:       "event." + event.Type,
			Detail:   string(event.Payload),
			OK:       true,
		}
		if err := auditLog.Record(context.Background(), entry); err != nil {
			logger.Warn().Err(err).Str("event_type", event.Type).Msg("audit event")
		}
		return nil
	}
	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingCompleted, handler)
	bus.Subscribe(events.EventBookingDeleted, handler)
	bus.Subscribe(events.EventLeadCreated, handler)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Monitoring.PrometheusPort).Msg("metrics server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
