package storefront

import (
	"context"
	"fmt"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/engine"
	"github.com/nikolayk812/rocketshoes-cart/internal/view"
)

type PageLine struct {
	view.Line
	// CanDecrement is false at amount 1; removing goes through Remove.
	CanDecrement bool `json:"canDecrement"`
}

type Page struct {
	Lines []PageLine `json:"lines"`
	Total string     `json:"total"`
}

type CartPage struct {
	cart CartEngine
}

func NewCartPage(cart CartEngine) (*CartPage, error) {
	if cart == nil {
		return nil, fmt.Errorf("cart engine required")
	}
	return &CartPage{cart: cart}, nil
}

func (p *CartPage) Page() Page {
	return Render(p.cart.Cart())
}

func Render(cart domain.Cart) Page {
	lines := view.Lines(cart)

	page := Page{
		Lines: make([]PageLine, 0, len(lines)),
		Total: view.TotalFormatted(cart),
	}
	for _, line := range lines {
		page.Lines = append(page.Lines, PageLine{Line: line, CanDecrement: line.Amount > 1})
	}
	return page
}

func (p *CartPage) Increment(ctx context.Context, productID int64) (domain.Cart, error) {
	return p.step(ctx, productID, +1)
}

// Decrement asks for one unit less. At amount 1 the engine ignores it.
func (p *CartPage) Decrement(ctx context.Context, productID int64) (domain.Cart, error) {
	return p.step(ctx, productID, -1)
}

func (p *CartPage) SetAmount(ctx context.Context, productID int64, amount int) (domain.Cart, error) {
	return p.cart.UpdateProductAmount(ctx, engine.UpdateAmount{ProductID: productID, Amount: amount})
}

func (p *CartPage) Remove(ctx context.Context, productID int64) (domain.Cart, error) {
	return p.cart.RemoveProduct(ctx, productID)
}

func (p *CartPage) step(ctx context.Context, productID int64, delta int) (domain.Cart, error) {
	current, _ := p.cart.Cart().Find(productID)
	return p.SetAmount(ctx, productID, current.Amount+delta)
}
