package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisClientUnreachableReturnsNil(t *testing.T) {
	// Port 1 refuses immediately; the failed ping must yield nil (the
	// caller's signal to serve uncached) after closing the client.
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, NewRedisClient())
}

func TestIntOr(t *testing.T) {
	t.Setenv("REDIS_DB", "")
	assert.Equal(t, 3, intOr("REDIS_DB", 3))

	t.Setenv("REDIS_DB", "7")
	assert.Equal(t, 7, intOr("REDIS_DB", 3))

	t.Setenv("REDIS_DB", "not-a-number")
	assert.Equal(t, 3, intOr("REDIS_DB", 3))
}
