package api

import (
	"fmt"
	"time"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/charts"
	"infinite-experiment/skyboard/internal/common"
	"infinite-experiment/skyboard/internal/config"
	"infinite-experiment/skyboard/internal/metrics"
)

type Services struct {
	Cache  common.CacheInterface
	Flash  *common.FlashService
	API    *apiclient.Client
	Charts *charts.Registry
}

type Dependencies struct {
	Config   *config.Config
	Location *time.Location
	Metrics  *metrics.MetricsRegistry
	Services *Services
}

func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cache, err := common.NewCache(cfg.CacheBackend, common.RedisOptions{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s cache: %w", cfg.CacheBackend, err)
	}

	services := &Services{
		Cache:  cache,
		Flash:  common.NewFlashService(cache, cfg.FlashTTL),
		API:    apiclient.NewClient(cfg.APIBaseURL, metricsReg),
		Charts: charts.NewRegistry(metricsReg),
	}

	return &Dependencies{
		Config:   cfg,
		Location: loc,
		Metrics:  metricsReg,
		Services: services,
	}, nil
}

// Close releases the cache connection
func (d *Dependencies) Close() error {
	return d.Services.Cache.Close()
}
