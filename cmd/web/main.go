package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"salespage/internal/config"
	"salespage/internal/handlers"
	"salespage/internal/landing"
	"salespage/internal/leads"
	"salespage/internal/telemetry"
	"salespage/pkg/realtime"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.OtelEndpoint, cfg.OtelEnabled)
	if err != nil {
		logger.Warnf("tracing disabled: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	metrics := telemetry.NewMetrics()

	content, err := landing.LoadContent(cfg.ContentPath, time.Now())
	if err != nil {
		return err
	}
	if target, ok := cfg.Target(); ok {
		content.OverrideTarget(target)
	}
	store := landing.NewStore(content, realtime.SystemClock, logger)
	store.Start()
	defer store.Stop()

	service, closeLeads, err := buildLeadService(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer closeLeads()

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	landingHandler := handlers.NewLandingHandler(store, cfg.BaseURL)
	countdownHandler := handlers.NewCountdownHandler(store, metrics)
	statsHandler := handlers.NewStatsHandler(store, realtime.FramesPerSecond(cfg.StreamFPS), metrics, logger)
	consultationHandler := handlers.NewConsultationHandler(store, service, cfg.SubmitMinDuration, metrics, logger)
	apiHandler := handlers.NewAPIHandler(service, cfg.SubmitDelay, logger)

	// SSE routes stay open for as long as the client does.
	countdownHandler.RegisterStreamRoutes(r)
	statsHandler.RegisterStreamRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15*time.Second + cfg.SubmitDelay))
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
		r.Handle("/metrics", metrics.Handler())

		landingHandler.RegisterRoutes(r)
		countdownHandler.RegisterRoutes(r)
		statsHandler.RegisterRoutes(r)
		consultationHandler.RegisterRoutes(r)
		apiHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Request contexts end on shutdown so open streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://localhost%s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildLeadService picks the sink and deduper from the configuration.
func buildLeadService(ctx context.Context, cfg *config.Config, logger *logrus.Logger, metrics *telemetry.Metrics) (*leads.Service, func(), error) {
	var sink leads.Sink = leads.LogSink{Log: logger}
	if cfg.WebhookURL != "" {
		sink = leads.NewWebhookSink(cfg.WebhookURL, cfg.WebhookTimeout, cfg.WebhookMaxRetries, logger, metrics)
		logger.Info("forwarding leads to webhook")
	} else {
		logger.Warn("SHEETS_WEBHOOK_URL not set, leads are only logged")
	}

	closer := func() {}
	var deduper leads.Deduper = leads.NewMemoryDeduper()
	if cfg.RedisAddr != "" {
		client, err := leads.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			return nil, nil, err
		}
		deduper = leads.NewRedisDeduper(client)
		closer = func() { _ = client.Close() }
	}

	service := leads.NewService(sink,
		leads.WithDeduper(deduper, cfg.DedupeWindow),
		leads.WithLogger(logger),
		leads.WithMetrics(metrics),
	)
	return service, closer, nil
}

//go:embed static/*
var embeddedStatic embed.FS
