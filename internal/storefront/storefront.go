// Package storefront holds the two pages that consume the cart: the product
// listing and the cart itself.
package storefront

import (
	"context"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/engine"
)

// CartEngine is the part of *engine.Engine the pages use.
type CartEngine interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) (domain.Cart, error)
	RemoveProduct(ctx context.Context, productID int64) (domain.Cart, error)
	UpdateProductAmount(ctx context.Context, u engine.UpdateAmount) (domain.Cart, error)
}
