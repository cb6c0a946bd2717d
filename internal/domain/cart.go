package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type StockInfo struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

type CartItem struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

func NewCartItem(p Product) CartItem {
	return CartItem{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Image:  p.Image,
		Amount: 1,
	}
}

// Cart is ordered by insertion and holds at most one item per product id.
type Cart struct {
	Items []CartItem
}

func (c Cart) Find(productID int64) (CartItem, bool) {
	i := c.index(productID)
	if i < 0 {
		return CartItem{}, false
	}
	return c.Items[i], true
}

func (c Cart) Clone() Cart {
	return Cart{Items: slices.Clone(c.Items)}
}

func (c Cart) Len() int {
	return len(c.Items)
}

// WithAmount returns a copy of c with the item's amount replaced. ok is false
// when the product is not in the cart.
func (c Cart) WithAmount(productID int64, amount int) (_ Cart, ok bool) {
	i := c.index(productID)
	if i < 0 {
		return c, false
	}
	out := c.Clone()
	out.Items[i].Amount = amount
	return out, true
}

func (c Cart) Append(item CartItem) Cart {
	out := c.Clone()
	out.Items = append(out.Items, item)
	return out
}

func (c Cart) Without(productID int64) (_ Cart, ok bool) {
	i := c.index(productID)
	if i < 0 {
		return c, false
	}
	out := Cart{Items: make([]CartItem, 0, len(c.Items)-1)}
	out.Items = append(out.Items, c.Items[:i]...)
	out.Items = append(out.Items, c.Items[i+1:]...)
	return out, true
}

func (c Cart) index(productID int64) int {
	return slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.ID == productID
	})
}

// MarshalJSON encodes the cart as a bare array of items, the shape kept in
// the durable slot.
func (c Cart) MarshalJSON() ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []CartItem{}
	}
	return json.Marshal(items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.Items = items
	return nil
}

// Validate reports the first broken cart invariant: a non-positive amount or a
// repeated product id.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.Amount < 1 {
			return fmt.Errorf("item[%d] has amount %d", item.ID, item.Amount)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("item[%d] is duplicated", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
