package middleware

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
)

func TestCacheKeyMatchesInvalidationPattern(t *testing.T) {
	// Every query variant of a path must share the prefix that
	// InvalidateCache scans for, and different queries must not collide.
	plain := cacheKeyFor("cache", "/v1/materials", "")
	paged := cacheKeyFor("cache", "/v1/materials", "page=2")

	assert.True(t, strings.HasPrefix(plain, "cache:/v1/materials:"))
	assert.True(t, strings.HasPrefix(paged, "cache:/v1/materials:"))
	assert.NotEqual(t, plain, paged)
}

func TestInvalidateCacheWithoutClient(t *testing.T) {
	// Disabled cache or missing client is a no-op, not a panic.
	InvalidateCache(context.Background(), config.CacheConfig{Enabled: true, Prefix: "cache"}, nil, "/v1/materials")
	InvalidateCache(context.Background(), config.CacheConfig{}, nil, "/v1/materials")
}
