package repository_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nikolayk812/rocketshoes-cart/internal/port"
	"github.com/nikolayk812/rocketshoes-cart/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (port.CartStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return repository.NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := setupRedisStore(t)

	testCartStore(t, store)
}

func TestRedisStore_NamespacedKeyWithoutTTL(t *testing.T) {
	store, mr := setupRedisStore(t)

	require.NoError(t, store.Save(t.Context(), "@RocketShoes:cart", []byte(`[]`)))

	assert.True(t, mr.Exists("storefront:@RocketShoes:cart"))
	assert.Zero(t, mr.TTL("storefront:@RocketShoes:cart"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	_, err := store.Load(t.Context(), "@RocketShoes:cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrCartNotFound)
	assert.ErrorContains(t, err, "client.Get")
}
