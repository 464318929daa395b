package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/product-attributes/internal/catalog"
	"github.com/raine/product-attributes/internal/config"
	"github.com/raine/product-attributes/internal/pipeline"
	"github.com/raine/product-attributes/internal/vision"
)

func testConfig() *config.Config {
	return &config.Config{
		Vision:   config.VisionConfig{BaseURL: "http://127.0.0.1:1", MaxResults: 10},
		Download: config.DownloadConfig{Timeout: time.Second, MaxSize: 1 << 20},
		Cache:    config.CacheConfig{Type: config.CacheNone},
		Log:      config.LogConfig{Level: "info"},
	}
}

func TestBuildPipeline_WithoutKeysReportsNotConfigured(t *testing.T) {
	ctx := context.Background()
	p, cleanup, err := buildPipeline(ctx, testConfig())
	require.NoError(t, err)
	defer cleanup()

	img := vision.Image{Content: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}
	_, err = p.Analyze(ctx, img, catalog.DefaultCategories())
	assert.ErrorIs(t, err, pipeline.ErrVisionNotConfigured)
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	cache, err := openCache(ctx, config.CacheConfig{Type: config.CacheNone})
	require.NoError(t, err)
	assert.Nil(t, cache)

	cache, err = openCache(ctx, config.CacheConfig{
		Type:       config.CacheSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "cache.db"),
		TTL:        time.Hour,
	})
	require.NoError(t, err)
	require.NotNil(t, cache)
	assert.NoError(t, cache.Close())

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cache, err = openCache(pingCtx, config.CacheConfig{Type: config.CacheRedis, RedisAddr: "127.0.0.1:1"})
	require.NoError(t, err, "an unreachable redis disables the cache")
	assert.Nil(t, cache)
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	orig := log.Logger
	defer func() { log.Logger = orig }()

	closeLog, err := setupLogging(config.LogConfig{Level: "WARN"})
	require.NoError(t, err)
	closeLog()
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	_, err = setupLogging(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	closeLog, err = setupLogging(config.LogConfig{Level: "info", File: filepath.Join(t.TempDir(), "run.log")})
	require.NoError(t, err)
	closeLog()
}
