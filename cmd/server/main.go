package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/advayc/visits/api"
	"github.com/advayc/visits/internal/config"
	"github.com/advayc/visits/internal/logging"
	"github.com/advayc/visits/internal/metrics"
)

// Standalone server, also usable as an Azure Functions custom handler: the
// host sets FUNCTIONS_CUSTOMHANDLER_PORT and forwards /api/visitor and
// /api/health.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	logging.SetGlobal(logger)

	m := metrics.New()
	srv, err := api.FromConfig(context.Background(), cfg, logger, m)
	if err != nil {
		logger.Error("Failed to create server", zap.Error(err))
		os.Exit(1)
	}
	defer srv.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/", srv)

	// Handlers set route-scoped CORS headers themselves; this layer adds
	// Vary handling and passes preflights through to them.
	c := cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:             86400,
		OptionsPassthrough: true,
	})

	baseHandler := c.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Security headers (lightweight)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		mux.ServeHTTP(w, r)
	}))

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           baseHandler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("visitor counter listening",
			zap.String("addr", httpSrv.Addr),
			zap.String("backend", cfg.Backend),
		)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logging.Warn("graceful shutdown failed", zap.Error(err))
	}
}
