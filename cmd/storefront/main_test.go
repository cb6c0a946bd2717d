package main

import (
	"testing"

	"github.com/nikolayk812/rocketshoes-cart/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{URL: "redis://:secret@cache:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.RedisConfig{Address: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = redisOptions(config.RedisConfig{URL: "http://nope"})
	require.Error(t, err)
}

func TestOpenStore_Memory(t *testing.T) {
	store, closer, err := openStore(t.Context(), &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	require.NoError(t, store.Save(t.Context(), "k", []byte(`[]`)))
}

func TestOpenStore_DefaultSurvivesRestart(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DIR", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	store, closer, err := openStore(t.Context(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Save(t.Context(), cfg.Store.Key, []byte(`[{"id":1,"amount":1}]`)))
	require.NoError(t, closer.Close())

	restarted, closer, err := openStore(t.Context(), cfg)
	require.NoError(t, err)
	defer closer.Close()

	payload, err := restarted.Load(t.Context(), cfg.Store.Key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"amount":1}]`, string(payload))
}
