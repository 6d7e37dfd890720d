// Package app wires configuration into the scheduling and travel services.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"field-scheduler/internal/cache"
	"field-scheduler/internal/config"
	"field-scheduler/internal/distance"
	"field-scheduler/internal/geocoding"
	"field-scheduler/internal/handlers"
	"field-scheduler/internal/logger"
	"field-scheduler/internal/metrics"
	"field-scheduler/internal/models"
	"field-scheduler/internal/scheduling"
	"field-scheduler/internal/server"
	"field-scheduler/internal/sqlite"
	"field-scheduler/internal/travel"
)

// App holds the long-lived services built from one configuration
type App struct {
	cfg       *config.Config
	log       logger.Logger
	logOut    io.Writer
	registry  *prometheus.Registry
	metrics   metrics.Recorder
	optimizer *scheduling.Optimizer
	evaluator *travel.Evaluator
	store     *sqlite.Store
}

// Option customises New
type Option func(*App)

// WithLogOutput sends logs to w instead of stderr
func WithLogOutput(w io.Writer) Option {
	return func(a *App) { a.logOut = w }
}

// New builds the optimizer and travel evaluator. The SQLite store is
// opened lazily by Store.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logOut: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.Logger("app")

	a.metrics = metrics.Nop{}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		rec, err := metrics.NewPromRecorder(a.registry)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.metrics = rec
	}

	a.optimizer = scheduling.NewOptimizer(a.Logger("optimizer"), a.metrics)
	a.evaluator = NewEvaluator(cfg.Travel, a.Logger("travel"), a.metrics)
	return a, nil
}

// Logger returns a component logger using the configured level and format
func (a *App) Logger(component string) logger.Logger {
	opts := a.cfg.Logging.Options()
	opts.Out = a.logOut
	return logger.NewWithOptions(component, opts)
}

// NewEvaluator builds the providers named by cfg. A configuration without
// usable credentials yields a disabled evaluator, not an error.
func NewEvaluator(cfg config.TravelConfig, log logger.Logger, rec metrics.Recorder) *travel.Evaluator {
	log = logger.OrNop(log)
	if !cfg.Enabled() {
		log.Infof("travel evaluation disabled: provider=%s", cfg.Provider)
		return travel.NewEvaluator(nil, nil, cfg.EvaluatorConfig(), log, rec)
	}

	var geocoder geocoding.Geocoder
	var provider distance.Provider
	switch cfg.Provider {
	case config.ProviderGoogle:
		geocoder = geocoding.NewGoogleGeocoder(cfg.GeocodeBaseURL, cfg.GoogleAPIKey, cfg.HTTPTimeout, log)
		provider = distance.NewGoogleMatrix(cfg.DistanceBaseURL, cfg.GoogleAPIKey, cfg.HTTPTimeout, log)
	case config.ProviderOSM:
		geocoder = geocoding.NewNominatimGeocoder(cfg.GeocodeBaseURL, cfg.HTTPTimeout, log)
		provider = distance.NewOSRM(cfg.DistanceBaseURL, cfg.HTTPTimeout, log)
	}

	resolver := geocoding.NewResolver(geocoder,
		cache.NewTTL[*models.GeoPoint](geocoding.CacheName, cfg.GeocodeTTL), log, rec)
	estimator := distance.NewEstimator(provider,
		cache.NewTTL[models.TravelEstimate](distance.CacheName, cfg.DriveTimeTTL), log, rec)

	log.Infof("travel evaluation enabled: provider=%s geocoder=%s distance=%s", cfg.Provider, geocoder.Name(), provider.Name())
	return travel.NewEvaluator(resolver, estimator, cfg.EvaluatorConfig(), log, rec)
}

func (a *App) Config() *config.Config           { return a.cfg }
func (a *App) Optimizer() *scheduling.Optimizer { return a.optimizer }
func (a *App) Evaluator() *travel.Evaluator     { return a.evaluator }
func (a *App) Registry() *prometheus.Registry   { return a.registry }

// Roster returns the configured crew layout for the HTTP handlers
func (a *App) Roster() handlers.Roster {
	return handlers.Roster{
		Preset:              a.cfg.Scheduling.Preset,
		CrewsByLocation:     a.cfg.Scheduling.CrewsByLocation(),
		DirectorsByLocation: a.cfg.Scheduling.DirectorsByLocation(),
		TimezonesByLocation: a.cfg.Scheduling.TimezonesByLocation(),
	}
}

// Store opens the configured SQLite store on first use
func (a *App) Store() (*sqlite.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := sqlite.New(a.cfg.Store.Path, a.Logger("store"))
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// Handler builds the HTTP handler set, backed by the store
func (a *App) Handler() (*handlers.Handler, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return &handlers.Handler{
		DB:        store,
		Projects:  store.Projects(),
		Bookings:  store.Bookings(),
		Optimizer: a.optimizer,
		Evaluator: a.evaluator,
		Roster:    a.Roster(),
		Log:       a.Logger("http"),
	}, nil
}

// Run serves the HTTP API until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	h, err := a.Handler()
	if err != nil {
		return err
	}

	cfg := server.Config{Addr: a.cfg.Server.Addr}
	if a.registry != nil {
		cfg.Gatherer = a.registry
	}
	srv := server.New(cfg, h, a.Logger("server"))

	addr, err := srv.Start()
	if err != nil {
		return err
	}
	a.log.Infof("field scheduler listening on %s", addr)

	<-ctx.Done()
	a.log.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}
	return nil
}

// Close releases the store
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
