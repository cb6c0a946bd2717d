// Package engine owns the shopper's cart: the in-memory snapshot every view
// reads, the three operations that change it, and the durable copy kept in a
// port.CartStore.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/notify"
	"github.com/nikolayk812/rocketshoes-cart/internal/port"
	"github.com/nikolayk812/rocketshoes-cart/pkg/logger"
)

const DefaultKey = "@RocketShoes:cart"

// persistTimeout bounds a store write once it no longer follows the caller's
// context.
const persistTimeout = 5 * time.Second

type Params struct {
	Store   port.CartStore
	Stock   port.StockService
	Catalog port.CatalogService

	// Optional.
	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *Metrics
	Key      string
}

type UpdateAmount struct {
	ProductID int64
	Amount    int
}

type Engine struct {
	store    port.CartStore
	stock    port.StockService
	catalog  port.CatalogService
	notifier notify.Notifier
	log      *logger.Logger
	metrics  *Metrics
	key      string

	locks *productLocks

	// persistMu serializes store writes so an older snapshot never lands
	// after a newer one.
	persistMu sync.Mutex

	mu      sync.RWMutex
	cart    domain.Cart
	dirty   bool
	version uint64
}

// New reads the last saved cart from the store. A missing or corrupt record
// starts an empty cart; a store that cannot be read is an error.
func New(ctx context.Context, p Params) (*Engine, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}

	e := &Engine{
		store:    p.Store,
		stock:    p.Stock,
		catalog:  p.Catalog,
		notifier: p.Notifier,
		log:      p.Logger,
		metrics:  p.Metrics,
		key:      p.Key,
		locks:    newProductLocks(),
	}
	if e.notifier == nil {
		e.notifier = notify.Nop()
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.key == "" {
		e.key = DefaultKey
	}

	cart, err := e.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	e.cart = cart

	return e, nil
}

func (e *Engine) bootstrap(ctx context.Context) (domain.Cart, error) {
	ctx = e.log.WithField(ctx, "key", e.key)

	payload, err := e.store.Load(ctx, e.key)
	if errors.Is(err, port.ErrCartNotFound) {
		e.log.Info(ctx, "no saved cart, starting empty")
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Load: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		e.log.Warn(ctx, "saved cart is unreadable, starting empty", err)
		return domain.Cart{}, nil
	}
	if err := cart.Validate(); err != nil {
		e.log.Warn(ctx, "saved cart is invalid, starting empty", err)
		return domain.Cart{}, nil
	}

	e.log.Info(e.log.WithField(ctx, "items", cart.Len()), "cart restored")
	return cart, nil
}

// Cart returns a copy of the latest committed cart.
func (e *Engine) Cart() domain.Cart {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.cart.Clone()
}

// Dirty reports whether the latest committed cart is not yet in the store.
func (e *Engine) Dirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.dirty
}

// AddProduct puts one more unit of the product in the cart. Stock is only
// compared against existing items; a first unit is added whatever the stock
// says.
func (e *Engine) AddProduct(ctx context.Context, productID int64) (domain.Cart, error) {
	unlock := e.locks.lock(productID)
	defer unlock()

	ctx = e.log.WithProductID(ctx, productID)

	stock, err := e.stock.GetStock(ctx, productID)
	if err != nil {
		return e.fail(ctx, domain.OpAdd, productID, domain.ErrStockQueryFailed, err)
	}

	existing, exists := e.Cart().Find(productID)

	required := 0
	if exists {
		required = existing.Amount + 1
	}
	if stock.Amount < required {
		return e.fail(ctx, domain.OpAdd, productID, domain.ErrInsufficientStock, nil)
	}

	if exists {
		return e.commit(ctx, domain.OpAdd, productID, func(cart domain.Cart) (domain.Cart, error) {
			current, ok := cart.Find(productID)
			if !ok {
				return cart, domain.ErrProductNotInCart
			}
			next, _ := cart.WithAmount(productID, current.Amount+1)
			return next, nil
		})
	}

	product, err := e.catalog.GetProduct(ctx, productID)
	if err != nil {
		return e.fail(ctx, domain.OpAdd, productID, domain.ErrCatalogQueryFailed, err)
	}

	return e.commit(ctx, domain.OpAdd, productID, func(cart domain.Cart) (domain.Cart, error) {
		return cart.Append(domain.NewCartItem(product)), nil
	})
}

// RemoveProduct drops the product's line. Removing a product that is not in
// the cart is an error.
func (e *Engine) RemoveProduct(ctx context.Context, productID int64) (domain.Cart, error) {
	unlock := e.locks.lock(productID)
	defer unlock()

	ctx = e.log.WithProductID(ctx, productID)

	return e.commit(ctx, domain.OpRemove, productID, func(cart domain.Cart) (domain.Cart, error) {
		next, ok := cart.Without(productID)
		if !ok {
			return cart, domain.ErrProductNotInCart
		}
		return next, nil
	})
}

// UpdateProductAmount sets the amount of a product already in the cart.
// Amounts below one are ignored without error.
func (e *Engine) UpdateProductAmount(ctx context.Context, u UpdateAmount) (domain.Cart, error) {
	if u.Amount < 1 {
		e.metrics.observeOp(domain.OpUpdateAmount, outcomeNoop)
		return e.Cart(), nil
	}

	unlock := e.locks.lock(u.ProductID)
	defer unlock()

	ctx = e.log.WithProductID(ctx, u.ProductID)

	stock, err := e.stock.GetStock(ctx, u.ProductID)
	if err != nil {
		return e.fail(ctx, domain.OpUpdateAmount, u.ProductID, domain.ErrStockQueryFailed, err)
	}
	if stock.Amount < u.Amount {
		return e.fail(ctx, domain.OpUpdateAmount, u.ProductID, domain.ErrInsufficientStock, nil)
	}

	return e.commit(ctx, domain.OpUpdateAmount, u.ProductID, func(cart domain.Cart) (domain.Cart, error) {
		next, ok := cart.WithAmount(u.ProductID, u.Amount)
		if !ok {
			return cart, domain.ErrProductNotInCart
		}
		return next, nil
	})
}

// Flush writes the cart to the store if an earlier write failed.
func (e *Engine) Flush(ctx context.Context) error {
	return e.persist(ctx)
}

// commit applies fn to the latest cart and makes the result visible. fn
// returns a sentinel kind to reject the operation.
func (e *Engine) commit(ctx context.Context, op domain.Op, productID int64, fn func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	e.mu.Lock()
	next, kind := fn(e.cart)
	if kind != nil {
		e.mu.Unlock()
		return e.fail(ctx, op, productID, kind, nil)
	}
	e.cart = next
	e.dirty = true
	e.version++
	e.mu.Unlock()

	e.metrics.observeOp(op, outcomeOK)
	e.log.Info(e.log.WithField(ctx, "op", op), "cart updated")

	// The change is already visible, so the write must not be abandoned
	// when the caller goes away.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := e.persist(persistCtx); err != nil {
		e.log.Error(ctx, "failed to persist cart, will retry on next change", err)
	}

	return next.Clone(), nil
}

func (e *Engine) persist(ctx context.Context) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.RLock()
	if !e.dirty {
		e.mu.RUnlock()
		return nil
	}
	snapshot, version := e.cart.Clone(), e.version
	e.mu.RUnlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	err = e.store.Save(ctx, e.key, payload)
	e.metrics.observeWrite(err)
	if err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}

	e.mu.Lock()
	if e.version == version {
		e.dirty = false
	}
	e.mu.Unlock()

	return nil
}

func (e *Engine) fail(ctx context.Context, op domain.Op, productID int64, kind, cause error) (domain.Cart, error) {
	err := &domain.OpError{Op: op, ProductID: productID, Kind: kind, Err: cause}

	e.metrics.observeOp(op, outcomeOf(err))
	e.log.Warn(e.log.WithField(ctx, "op", op), "cart operation rejected", err)
	e.notifier.Notify(ctx, notify.ForError(err))

	return e.Cart(), err
}
