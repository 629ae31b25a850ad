package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mstgnz/payroute/gateway"
	"github.com/mstgnz/payroute/handler"
	"github.com/mstgnz/payroute/infra/config"
	"github.com/mstgnz/payroute/infra/logger"
	"github.com/mstgnz/payroute/infra/metrics"
	"github.com/mstgnz/payroute/infra/middle"
	"github.com/mstgnz/payroute/infra/opensearch"
	"github.com/mstgnz/payroute/infra/response"
	"github.com/mstgnz/payroute/infra/tracing"
	"github.com/mstgnz/payroute/router"
)

func main() {
	// Load Env
	envErr := godotenv.Load(".env")
	cfg := config.ReloadAppConfig()

	var (
		osClient         *opensearch.Client
		openSearchLogger *opensearch.Logger
		osErr            error
	)
	if cfg.EnableLogging {
		osClient, osErr = opensearch.NewClient(cfg)
		if osErr == nil {
			openSearchLogger = opensearch.NewLogger(osClient)
		}
	}

	log := logger.InitGlobalLogger(openSearchLogger)
	if envErr != nil {
		log.Debug("No .env file loaded, using process environment")
	}
	switch {
	case osErr != nil:
		log.Warn("Continuing without OpenSearch logging", logger.LogContext{Fields: map[string]any{"error": osErr.Error()}})
	case openSearchLogger != nil:
		log.Info("OpenSearch logging initialized")
	default:
		log.Info("OpenSearch logging is disabled")
	}

	shutdownTracing, err := tracing.Init("payroute", cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("Tracing disabled", logger.LogContext{Fields: map[string]any{"error": err.Error()}})
	}

	providerConfig := config.NewProviderConfig()
	providerConfig.LoadFromEnv(cfg.IsProduction())
	if cfg.ProviderConfigDB != "" {
		storage, err := config.NewSQLiteStorage(cfg.ProviderConfigDB)
		if err != nil {
			log.Fatal("Failed to open provider config store", err)
		}
		defer storage.Close()
		if err := providerConfig.AttachStorage(storage); err != nil {
			log.Fatal("Failed to load provider configs", err)
		}
	}

	opts := gateway.Options{Log: log}
	if openSearchLogger != nil {
		opts.Events = gateway.NewOpenSearchRecorder(openSearchLogger, log)
	}
	gw := gateway.New(providerConfig, opts)

	rateLimiter := middle.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middle.PanicRecoveryMiddleware(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middle.RequestLoggingMiddleware(log))
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(tracing.Middleware)
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware)
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Length", "X-Reference-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Preflight cache time (second)
	}))

	var search handler.SearchPinger
	if osClient != nil {
		search = osClient
	}

	router.Routes(r, router.Options{
		Service:        gw,
		Search:         search,
		Log:            log,
		Environment:    cfg.Environment,
		APIKey:         cfg.APIKey,
		RateLimiter:    rateLimiter,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Code: http.StatusNotFound, Message: "Not Found"})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server stopped", err)
		}
	}()

	log.Info("API is running", logger.LogContext{Fields: map[string]any{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}})

	// Block until a signal is received
	<-ctx.Done()

	log.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("Tracer shutdown failed", err)
		}
	}
}
