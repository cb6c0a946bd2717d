package port

import (
	"context"
	"errors"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartStore is the single durable slot the cart is kept in. Load returns
// ErrCartNotFound when nothing was ever saved under key.
type CartStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

type StockService interface {
	GetStock(ctx context.Context, productID int64) (domain.StockInfo, error)
}

type CatalogService interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
