package config

import (
	"context"
	"time"

	"github.com/matzehuels/equipneeds/pkg/cache"
	"github.com/matzehuels/equipneeds/pkg/catalog"
)

// Open connects the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoOptions{
			URI:      c.MongoURI,
			Database: c.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// BuilderOptions maps the catalog section onto catalog builder options.
func (c CatalogConfig) BuilderOptions() catalog.Options {
	return catalog.Options{
		BatchSize:   c.BatchSize,
		FetchBudget: c.FetchBudget,
		MaxRounds:   c.MaxRounds,
	}
}

// RetryPolicy maps the api section onto the client retry policy. The first
// retry waits a second and each later one twice as long.
func (c APIConfig) RetryPolicy() cache.RetryPolicy {
	return cache.RetryPolicy{Attempts: c.Attempts, Delay: time.Second}
}
