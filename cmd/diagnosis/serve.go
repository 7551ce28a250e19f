package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/healthsim/diagnosis/internal/prediction"
	"github.com/healthsim/diagnosis/internal/shared/config"
	"github.com/healthsim/diagnosis/internal/shared/logging"
	"github.com/healthsim/diagnosis/internal/shared/metrics"
	secmiddleware "github.com/healthsim/diagnosis/internal/shared/middleware"
	"github.com/spf13/cobra"
)

const maxRequestBody = 64 * 1024

func newServeCmd() *cobra.Command {
	var (
		port   int
		driver string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the prediction HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("store") {
				cfg.Store.Driver = driver
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&driver, "store", "", "Store driver: memory, file, postgres, mssql, kurrentdb (overrides STORE_DRIVER)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	store, err := prediction.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer store.Close()

	svc := prediction.NewService(store, prediction.ServiceConfig{
		Driver:      cfg.Store.Driver,
		RecentLimit: cfg.Store.RecentLimit,
		Capacity:    cfg.Store.Capacity,
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, svc, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			"addr", srv.Addr,
			"env", cfg.Server.Env,
			"store", cfg.Store.Driver,
			"auth", cfg.Auth.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newRouter(cfg *config.Config, svc *prediction.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	corsCfg := secmiddleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.Server.AllowedOrigins

	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(secmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(metrics.Middleware)
	r.Use(secmiddleware.CORS(corsCfg))
	r.Use(secmiddleware.MaxBodySize(maxRequestBody))

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(svc))
	r.Handle("/metrics", metrics.Handler())

	limiter := secmiddleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	h := prediction.NewHandler(svc, cfg.Auth, limiter)
	r.Mount("/", h.Routes())

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

func readyHandler(svc *prediction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
			"store":  "ready",
		}
		status := http.StatusOK
		if err := svc.Ready(r.Context()); err != nil {
			checks["store"] = "not ready: " + err.Error()
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[status == http.StatusOK],
			"checks": checks,
		})
	}
}
