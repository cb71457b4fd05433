package slicer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/shouni/go-poster-kit/pkg/domain"

	"github.com/patrickmn/go-cache"
)

const (
	defaultCleanupInterval = 30 * time.Minute
)

// CachedSlicer は同一の合成画像に対する分割結果をメモ化します。
// キーは合成画像バイト列の SHA-256 です。
type CachedSlicer struct {
	next  Slicer
	cache *cache.Cache
}

// NewCachedSlicer は next を包む CachedSlicer を返します。ttl が 0 以下なら期限なしです。
func NewCachedSlicer(next Slicer, ttl time.Duration) *CachedSlicer {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	return &CachedSlicer{
		next:  next,
		cache: cache.New(expiration, defaultCleanupInterval),
	}
}

func (c *CachedSlicer) Slice(ctx context.Context, composite domain.CompositeResult) ([]domain.PosterPanel, error) {
	key := cacheKey(composite.Data)
	if v, ok := c.cache.Get(key); ok {
		if panels, ok := v.([]domain.PosterPanel); ok {
			slog.DebugContext(ctx, "分割結果をキャッシュから返します", "key", key[:12])
			return clonePanels(panels), nil
		}
	}

	panels, err := c.next.Slice(ctx, composite)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, clonePanels(panels), cache.DefaultExpiration)
	return panels, nil
}

func cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func clonePanels(panels []domain.PosterPanel) []domain.PosterPanel {
	out := make([]domain.PosterPanel, len(panels))
	for i, p := range panels {
		p.Data = bytes.Clone(p.Data)
		out[i] = p
	}
	return out
}
