package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"foodexpress/config"
	"foodexpress/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Wrap applies the standard middleware chain around a service router.
func Wrap(r *mux.Router, cfg config.ServerConfig) http.Handler {
	r.Use(RequestID, Recover, AccessLog)
	if cfg.RateLimit.Enabled {
		r.Use(NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst).Middleware)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, name string, cfg config.ServerConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(name+" starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info(name + " shutting down")
	return srv.Shutdown(shutdownCtx)
}
