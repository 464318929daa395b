package vision

import (
	"context"

	"github.com/rs/zerolog/log"
)

// SignalStore persists normalized provider output keyed on Image.CacheKey.
// A nil entry with a nil error is a cache miss.
type SignalStore interface {
	GetSignals(ctx context.Context, key string) (*Signals, error)
	SetSignals(ctx context.Context, key string, signals *Signals) error
}

// CachedExtractor wraps an Extractor with a SignalStore. Store failures are
// logged and never fail the request.
type CachedExtractor struct {
	inner Extractor
	store SignalStore
}

var _ Extractor = (*CachedExtractor)(nil)

// NewCachedExtractor creates a cached extractor.
func NewCachedExtractor(inner Extractor, store SignalStore) *CachedExtractor {
	return &CachedExtractor{inner: inner, store: store}
}

// Extract implements Extractor with caching.
func (c *CachedExtractor) Extract(ctx context.Context, img Image) (*Signals, error) {
	key := img.CacheKey()

	if c.store != nil {
		cached, err := c.store.GetSignals(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != nil {
			log.Debug().Str("hash", key[:16]).Msg("vision cache hit")
			return cached, nil
		}
	}

	signals, err := c.inner.Extract(ctx, img)
	if err != nil {
		return nil, err
	}

	if c.store != nil && !signals.Empty() {
		if err := c.store.SetSignals(ctx, key, signals); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision signals")
		} else {
			log.Debug().Str("hash", key[:16]).Msg("cached vision signals")
		}
	}

	return signals, nil
}

