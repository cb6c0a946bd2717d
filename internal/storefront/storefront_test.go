package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/engine"
	"github.com/nikolayk812/rocketshoes-cart/internal/notify"
	"github.com/nikolayk812/rocketshoes-cart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServices struct {
	stock   map[int64]int
	listErr error
}

func (s *stubServices) GetStock(_ context.Context, productID int64) (domain.StockInfo, error) {
	return domain.StockInfo{ProductID: productID, Amount: s.stock[productID]}, nil
}

func (s *stubServices) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	for _, p := range products() {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, errors.New("not found")
}

func (s *stubServices) ListProducts(context.Context) ([]domain.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return products(), nil
}

func products() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: decimal.RequireFromString("179.9"), Image: "https://example.com/1.jpg"},
		{ID: 2, Title: "Tênis VR Caminhada Confortável", Price: decimal.RequireFromString("139.9"), Image: "https://example.com/2.jpg"},
	}
}

func newTestEngine(t *testing.T, services *stubServices) *engine.Engine {
	t.Helper()

	e, err := engine.New(t.Context(), engine.Params{
		Store:   repository.NewMemoryStore(),
		Stock:   services,
		Catalog: services,
	})
	require.NoError(t, err)
	return e
}

func TestCatalog_Products(t *testing.T) {
	services := &stubServices{stock: map[int64]int{1: 5, 2: 5}}
	eng := newTestEngine(t, services)

	catalog, err := NewCatalog(services, eng, nil)
	require.NoError(t, err)

	_, err = catalog.AddToCart(t.Context(), 2)
	require.NoError(t, err)
	_, err = catalog.AddToCart(t.Context(), 2)
	require.NoError(t, err)

	cards, err := catalog.Products(t.Context())
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, "R$\u00a0179,90", cards[0].PriceFormatted)
	assert.Zero(t, cards[0].InCart)
	assert.Equal(t, 2, cards[1].InCart)
}

func TestCatalog_ProductsFailure(t *testing.T) {
	services := &stubServices{listErr: errors.New("timeout")}
	rec := notify.NewRecorder()

	catalog, err := NewCatalog(services, newTestEngine(t, services), rec)
	require.NoError(t, err)

	_, err = catalog.Products(t.Context())
	require.ErrorIs(t, err, domain.ErrCatalogLoadFailed)
	assert.Equal(t, []notify.Notification{{Level: notify.LevelError, Message: notify.MsgProductsFailed}}, rec.Drain())
}

func TestCartPage(t *testing.T) {
	services := &stubServices{stock: map[int64]int{1: 2, 2: 5}}
	eng := newTestEngine(t, services)
	page, err := NewCartPage(eng)
	require.NoError(t, err)

	_, err = eng.AddProduct(t.Context(), 1)
	require.NoError(t, err)
	_, err = eng.AddProduct(t.Context(), 2)
	require.NoError(t, err)

	// decrement at one is ignored
	_, err = page.Decrement(t.Context(), 1)
	require.NoError(t, err)

	_, err = page.Increment(t.Context(), 1)
	require.NoError(t, err)

	_, err = page.Increment(t.Context(), 1)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	rendered := page.Page()
	require.Len(t, rendered.Lines, 2)
	assert.Equal(t, 2, rendered.Lines[0].Amount)
	assert.True(t, rendered.Lines[0].CanDecrement)
	assert.Equal(t, "R$\u00a0359,80", rendered.Lines[0].SubtotalFormatted)
	assert.False(t, rendered.Lines[1].CanDecrement)
	assert.Equal(t, "R$\u00a0499,70", rendered.Total)

	_, err = page.Remove(t.Context(), 1)
	require.NoError(t, err)
	assert.Len(t, page.Page().Lines, 1)
}

func TestNewValidation(t *testing.T) {
	_, err := NewCatalog(nil, nil, nil)
	require.EqualError(t, err, "catalog service required")

	_, err = NewCartPage(nil)
	require.EqualError(t, err, "cart engine required")
}
