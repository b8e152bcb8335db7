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

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/feed"
	"github.com/velibmap/velib-go/internal/geocode"
	"github.com/velibmap/velib-go/internal/handler"
	"github.com/velibmap/velib-go/internal/station"
)

const shutdownTimeout = 10 * time.Second

func newRouter(service *handler.NearbyService) *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	handler.NewWebHandler(service).Register(r)
	return r
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func run(ctx context.Context, cfg *config.Config) error {
	geocoder, err := geocode.NewFromConfig(cfg, config.GetCacheConfig())
	if err != nil {
		return fmt.Errorf("initializing geocoder: %w", err)
	}
	service := handler.NewNearbyService(geocoder, feed.NewFromConfig(cfg), station.NewFinder(cfg.MaxDistance))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(service),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
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

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
