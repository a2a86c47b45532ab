package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshare/backend/config"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without url", func(t *testing.T) {
		client, err := NewClient(ctx, &config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("connects and selects db", func(t *testing.T) {
		srv, err := miniredis.Run()
		require.NoError(t, err)
		client, err := NewClient(ctx, &config.RedisConfig{URL: "redis://" + srv.Addr() + "/0", DB: 2})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.Equal(t, 2, client.Options().DB)
		require.NoError(t, HealthCheck(client)(ctx))

		srv.Close()
		assert.Error(t, HealthCheck(client)(ctx))
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewClient(ctx, &config.RedisConfig{URL: "mysql://nope"})
		assert.ErrorContains(t, err, "invalid redis url")
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewClient(ctx, &config.RedisConfig{URL: "redis://127.0.0.1:1/0"})
		assert.ErrorContains(t, err, "failed to ping redis")
	})
}
