package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
)

// bodyCapture duplicates the response body into a buffer while still
// streaming it to the client, so a successful response can be stored
// in Redis after the handler returns.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// RedisCache returns a middleware that serves GET responses from Redis
// when a fresh entry exists and fills the cache with 200 responses
// otherwise.  It is applied to the material catalog listing, which is
// read-heavy and changes only when an admin registers a material.  A
// nil client or disabled config yields a pass-through middleware.
func RedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKeyFor(cfg.Prefix, c.Path(), c.Request().URL.RawQuery)

			if cached, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				return c.JSONBlob(http.StatusOK, cached)
			}

			w := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				return err
			}
			if w.status == http.StatusOK && w.buf.Len() > 0 {
				// Best effort: a failed SET only means the next request hits the DB.
				_ = rdb.Set(c.Request().Context(), key, w.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}

// cacheKeyFor keeps the route path in the key in clear text so that
// InvalidateCache can match every query-string variant of one path;
// only the query part is hashed.
func cacheKeyFor(prefix, path, rawQuery string) string {
	sum := sha1.Sum([]byte(rawQuery))
	return fmt.Sprintf("%s:%s:%x", prefix, path, sum[:])
}

// InvalidateCache drops every cached response for a path, regardless of
// query string.  Write handlers call it after a mutation that would
// otherwise leave stale listings in the cache until the TTL runs out.
// Best effort: failures only mean the next reads hit the database.
func InvalidateCache(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client, path string) {
	if !cfg.Enabled || rdb == nil {
		return
	}
	iter := rdb.Scan(ctx, 0, cfg.Prefix+":"+path+":*", 0).Iterator()
	for iter.Next(ctx) {
		_ = rdb.Del(ctx, iter.Val()).Err()
	}
}
