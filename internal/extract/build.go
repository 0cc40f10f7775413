package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"reelmux/internal/config"
	"reelmux/internal/logging"
	"reelmux/internal/services"
)

// Build wires providers, routes, and the optional cache from configuration.
// The returned close function releases the redis client, if any. client is
// shared by every provider; nil uses a default *http.Client per provider.
func Build(ctx context.Context, cfg *config.Config, client HTTPDoer, logger *slog.Logger) (*Router, func() error, error) {
	log := logging.NewComponentLogger(logger, "extract")
	registry := Registry{}

	if cfg.Extract.Cobalt.Enabled {
		for _, instance := range cfg.Extract.Cobalt.Instances {
			registry[config.ProviderCobalt] = append(registry[config.ProviderCobalt],
				NewCobaltProvider(instance, cfg.Extract.Cobalt.VQuality, client))
		}
	}
	if cfg.Extract.RapidAPI.Enabled {
		rapid, err := NewRapidAPIProvider(cfg.Extract.RapidAPI.URL, cfg.Extract.RapidAPI.Host, cfg.Extract.RapidAPI.APIKey, client)
		if err != nil {
			log.Warn("rapidapi provider disabled", logging.Error(err))
		} else {
			registry[config.ProviderRapidAPI] = []Provider{rapid}
		}
	}
	if cfg.Extract.OpenGraph.Enabled {
		registry[config.ProviderOpenGraph] = []Provider{NewOpenGraphProvider(cfg.Extract.OpenGraph.UserAgent, client)}
	}

	if len(registry) == 0 {
		return nil, nil, services.Wrap(services.ErrConfiguration, "extract", "build", "no extraction providers enabled", nil)
	}

	routes := make([]Route, 0, len(cfg.Extract.Routes))
	for _, r := range cfg.Extract.Routes {
		routes = append(routes, Route{Name: r.Name, Hosts: r.Hosts, Providers: r.Chain})
	}

	closeFn := func() error { return nil }
	var cache Cache
	if cfg.Extract.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Extract.Cache.RedisAddr,
			Password: cfg.Extract.Cache.RedisPassword,
			DB:       cfg.Extract.Cache.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unavailable, extraction cache disabled",
				logging.String("addr", cfg.Extract.Cache.RedisAddr),
				logging.Error(err),
			)
			_ = rdb.Close()
		} else {
			cache = NewRedisCache(rdb, time.Duration(cfg.Extract.Cache.TTLSeconds)*time.Second, cfg.Extract.Cache.KeyPrefix)
			closeFn = rdb.Close
		}
	}

	return NewRouter(RouterOptions{
		Routes:       routes,
		DefaultChain: cfg.Extract.DefaultChain,
		Registry:     registry,
		Timeout:      cfg.ExtractTimeout(),
		Cache:        cache,
		Logger:       logger,
	}), closeFn, nil
}
