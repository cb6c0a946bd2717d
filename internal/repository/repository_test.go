package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_cart_slots.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

// testCartStore runs the behaviour every port.CartStore must share.
func testCartStore(t *testing.T, store port.CartStore) {
	t.Run("load missing slot: not found", func(t *testing.T) {
		_, err := store.Load(t.Context(), gofakeit.UUID())
		require.ErrorIs(t, err, port.ErrCartNotFound)
	})

	t.Run("save then load: round trip", func(t *testing.T) {
		key := gofakeit.UUID()
		cart := randomCart(3)

		payload, err := cart.MarshalJSON()
		require.NoError(t, err)
		require.NoError(t, store.Save(t.Context(), key, payload))

		loaded, err := store.Load(t.Context(), key)
		require.NoError(t, err)

		var got domain.Cart
		require.NoError(t, got.UnmarshalJSON(loaded))
		assertCart(t, cart, got)
	})

	t.Run("save twice: last write wins", func(t *testing.T) {
		key := gofakeit.UUID()

		require.NoError(t, store.Save(t.Context(), key, []byte(`[{"id":1,"amount":1}]`)))
		require.NoError(t, store.Save(t.Context(), key, []byte(`[]`)))

		loaded, err := store.Load(t.Context(), key)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(loaded))
	})

	t.Run("empty key: error", func(t *testing.T) {
		_, err := store.Load(t.Context(), "")
		require.EqualError(t, err, "key is empty")

		err = store.Save(t.Context(), "", []byte(`[]`))
		require.EqualError(t, err, "key is empty")
	})
}

func randomCart(n int) domain.Cart {
	var cart domain.Cart
	for i := range n {
		cart = cart.Append(domain.CartItem{
			ID:     int64(i + 1),
			Title:  gofakeit.ProductName(),
			Price:  decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
			Image:  gofakeit.URL(),
			Amount: gofakeit.IntRange(1, 10),
		})
	}
	return cart
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	require.Len(t, actual.Items, len(expected.Items))
	for i := range expected.Items {
		want, got := expected.Items[i], actual.Items[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Title, got.Title)
		assert.Equal(t, want.Image, got.Image)
		assert.Equal(t, want.Amount, got.Amount)
		assert.True(t, want.Price.Equal(got.Price), "price %s != %s", want.Price, got.Price)
	}
}
