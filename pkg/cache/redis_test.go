package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-attendance-api/pkg/config"
)

func TestNewRedisDisabled(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisUnreachable(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Nil(t, client)
}
