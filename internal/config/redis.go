package config

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client backing the material-catalog response
// cache.  REDIS_ADDR gives host:port directly; REDIS_HOST/REDIS_PORT
// override it when set.  REDIS_PASSWORD, REDIS_DB and REDIS_TLS are
// optional.  A client that cannot be pinged within two seconds is closed
// and nil is returned, which callers treat as "run without cache".
func NewRedisClient() *redis.Client {
	addr := getenv("REDIS_ADDR", "localhost:6379")
	if host := os.Getenv("REDIS_HOST"); host != "" {
		addr = host + ":" + getenv("REDIS_PORT", "6379")
	}

	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intOr("REDIS_DB", 0),
	}
	if v := os.Getenv("REDIS_TLS"); v == "1" || strings.EqualFold(v, "true") {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
