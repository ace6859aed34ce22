package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/weddingcard/internal/auth"
	"github.com/mmynk/weddingcard/internal/config"
	"github.com/mmynk/weddingcard/internal/metrics"
	"github.com/mmynk/weddingcard/internal/middleware"
	"github.com/mmynk/weddingcard/internal/sanitize"
	"github.com/mmynk/weddingcard/internal/service"
	"github.com/mmynk/weddingcard/internal/storage/sqlite"
	"github.com/mmynk/weddingcard/internal/validation"
	"github.com/mmynk/weddingcard/internal/web"
	"github.com/mmynk/weddingcard/pkg/api"
	"github.com/mmynk/weddingcard/pkg/logging"
)

// tokenTTL only matters for locally generated development tokens; the
// backend sets the expiry of the tokens it issues.
const tokenTTL = 24 * time.Hour

func main() {
	vars, err := config.Environ(config.DotEnvFile, os.Environ())
	if err != nil {
		exitf("Failed to read environment: %v", err)
	}
	var cfg config.Server
	if err := config.Parse(&cfg, vars); err != nil {
		exitf("Invalid configuration: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		exitf("Failed to initialize storage: %v", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenTTL)
	validator := validation.New()
	sanitizer := sanitize.New(cfg.EmbedHosts)

	// Logging wraps metrics wraps auth, so rejected calls are still counted and logged.
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(logger),
		m.Interceptor(),
		middleware.AuthInterceptor(jwtManager, service.ProtectedProcedures...),
	)

	// Register Connect services
	invitationPath, invitationHandler := api.NewInvitationServiceHandler(
		service.NewInvitationService(store, validator, sanitizer, m), interceptors)
	guestbookPath, guestbookHandler := api.NewGuestbookServiceHandler(
		service.NewGuestbookService(store, validator, sanitizer, m), interceptors)

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		exitf("Failed to resolve static path: %v", err)
	}
	slog.Info("Serving static files", "path", staticDir)

	router := web.NewRouter(store, staticDir,
		web.Mount{Prefix: invitationPath, Handler: invitationHandler},
		web.Mount{Prefix: guestbookPath, Handler: guestbookHandler},
		web.Mount{Prefix: "/metrics", Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})},
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization",
			"Content-Type",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	}).Handler(router)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(corsHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// exitf writes a formatted error message to stderr and exits with code 1.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
