package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/raine/product-attributes/internal/config"
	"github.com/raine/product-attributes/internal/llm"
	"github.com/raine/product-attributes/internal/pipeline"
	"github.com/raine/product-attributes/internal/storage"
	"github.com/raine/product-attributes/internal/vision"
)

type signalCache interface {
	vision.SignalStore
	Close() error
}

// buildPipeline constructs the pipeline from configuration. Missing
// provider credentials are not an error here: the vision stage reports them
// per request and the generative stage is simply disabled.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}

	downloader := vision.NewDownloader(cfg.Download.Timeout, cfg.Download.MaxSize)

	var extractor pipeline.SignalExtractor
	client, err := vision.NewClient(vision.ClientOpts{
		APIKey:            cfg.Vision.APIKey,
		BaseURL:           cfg.Vision.BaseURL,
		MaxResults:        cfg.Vision.MaxResults,
		RequestsPerSecond: cfg.Vision.RequestsPerSecond,
		Downloader:        downloader,
	})
	switch {
	case errors.Is(err, vision.ErrNotConfigured):
		log.Warn().Err(err).Msg("vision provider not configured")
	case err != nil:
		return nil, cleanup, fmt.Errorf("failed to create vision client: %w", err)
	default:
		extractor = client
		cache, err := openCache(ctx, cfg.Cache)
		if err != nil {
			return nil, cleanup, err
		}
		if cache != nil {
			extractor = vision.NewCachedExtractor(client, cache)
			cleanup = func() { cache.Close() }
		}
	}

	var generator pipeline.Generator
	gemini, err := llm.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Info().Msg("generative stage disabled, GEMINI_API_KEY not set")
	case err != nil:
		log.Warn().Err(err).Msg("failed to create gemini client, generative stage disabled")
	default:
		generator = gemini
	}

	p := pipeline.New(pipeline.Options{
		Extractor: extractor,
		Generator: generator,
		Fetcher:   downloader,
	})
	return p, cleanup, nil
}

// openCache opens the configured signal cache. It returns nil when caching
// is off or the redis server is unreachable.
func openCache(ctx context.Context, cfg config.CacheConfig) (signalCache, error) {
	switch cfg.Type {
	case config.CacheSQLite:
		store, err := storage.NewSQLiteStore(cfg.SQLitePath, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		if removed, err := store.Purge(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to purge expired cache entries")
		} else if removed > 0 {
			log.Debug().Int64("removed", removed).Msg("purged expired cache entries")
		}
		log.Debug().Str("path", cfg.SQLitePath).Msg("sqlite cache initialized")
		return store, nil
	case config.CacheRedis:
		store := storage.NewRedisStore(storage.RedisOpts{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis cache unavailable, continuing without cache")
			store.Close()
			return nil, nil
		}
		log.Debug().Str("addr", cfg.RedisAddr).Msg("redis cache initialized")
		return store, nil
	default:
		return nil, nil
	}
}
