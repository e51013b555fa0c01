package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	httphandler "showcatalog/internal/adapter/http"
	"showcatalog/internal/config"
	"showcatalog/internal/domain/cache"
	"showcatalog/internal/domain/genre"
	"showcatalog/internal/domain/provider"
	"showcatalog/internal/service"
)

const sweepInterval = time.Hour

// Application is the wired server.
type Application struct {
	cache   *cache.MemoryCache
	service *service.Service
	server  *http.Server
}

// NewApplication builds the provider, cache, pipeline and router from cfg.
func NewApplication(cfg *config.AppConfig) (*Application, error) {
	c := cfg.Config
	timeout, browseTTL, searchTTL := cfg.Durations()

	upstream, err := provider.New(c.Provider, provider.Options{BaseURL: c.UpstreamBaseURL, Timeout: timeout})
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithGenreRegistry(genre.Default()),
		service.WithTTLs(browseTTL, searchTTL),
		service.WithDefaultLimit(c.DefaultLimit),
		service.WithSummarySanitizer(service.SanitizerFor(c.SummaryMode)),
	}

	routerOpts := httphandler.RouterOptions{AllowedOrigins: c.CORSAllowedOrigins}
	if c.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, service.WithMetrics(service.NewMetrics(reg)))
		routerOpts.Metrics = reg
	}

	store := cache.NewMemoryCache(cache.WithMaxSize(c.CacheMaxEntries))
	svc := service.NewService(store, upstream, opts...)
	handler := httphandler.NewHandler(svc, genre.Default())

	return &Application{
		cache:   store,
		service: svc,
		server: &http.Server{
			Addr:              net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Handler:           httphandler.NewRouter(handler, routerOpts),
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      timeout + 15*time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	errorChannel := make(chan error, 1)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go app.cache.Sweep(sweepCtx, sweepInterval)

	go func() {
		log.Info().
			Str("addr", app.server.Addr).
			Str("provider", app.service.Provider().ID()).
			Str("version", Version).
			Msg("Starting server")
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChannel <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("got signal %v, shutting down server", sig.String())
	case err := <-errorChannel:
		return errors.Wrap(err, "server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}
