package storefront

import (
	"context"
	"fmt"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/notify"
	"github.com/nikolayk812/rocketshoes-cart/internal/port"
	"github.com/nikolayk812/rocketshoes-cart/internal/view"
)

type ProductCard struct {
	domain.Product
	PriceFormatted string `json:"priceFormatted"`
	InCart         int    `json:"inCart"`
}

type Catalog struct {
	catalog  port.CatalogService
	cart     CartEngine
	notifier notify.Notifier
}

func NewCatalog(catalog port.CatalogService, cart CartEngine, notifier notify.Notifier) (*Catalog, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart engine required")
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Catalog{catalog: catalog, cart: cart, notifier: notifier}, nil
}

// Products lists the catalog with each product's amount already in the cart.
func (c *Catalog) Products(ctx context.Context) ([]ProductCard, error) {
	products, err := c.catalog.ListProducts(ctx)
	if err != nil {
		opErr := &domain.OpError{Op: domain.OpListProducts, Kind: domain.ErrCatalogLoadFailed, Err: err}
		c.notifier.Notify(ctx, notify.ForError(opErr))
		return nil, opErr
	}

	inCart := view.AmountsByProduct(c.cart.Cart())

	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, ProductCard{
			Product:        p,
			PriceFormatted: view.FormatPrice(p.Price),
			InCart:         inCart[p.ID],
		})
	}
	return cards, nil
}

func (c *Catalog) AddToCart(ctx context.Context, productID int64) (domain.Cart, error) {
	return c.cart.AddProduct(ctx, productID)
}
