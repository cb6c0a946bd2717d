package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/repository"
	"github.com/shopspring/decimal"
)

var errUpstream = errors.New("upstream unavailable")

type fakeStock struct {
	mu     sync.Mutex
	amount map[int64]int
	err    error
	calls  atomic.Int32
	// gate, when set, is received from before answering.
	gate chan struct{}
	// answered, when set, runs after a successful answer.
	answered func()
}

func newFakeStock(amount map[int64]int) *fakeStock {
	return &fakeStock{amount: amount}
}

func (f *fakeStock) GetStock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.StockInfo{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return domain.StockInfo{}, f.err
	}
	amount, ok := f.amount[productID]
	if !ok {
		return domain.StockInfo{}, fmt.Errorf("stock[%d]: not found", productID)
	}
	if f.answered != nil {
		f.answered()
	}
	return domain.StockInfo{ProductID: productID, Amount: amount}, nil
}

func (f *fakeStock) set(productID int64, amount int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.amount[productID] = amount
}

type fakeCatalog struct {
	err   error
	calls atomic.Int32
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	f.calls.Add(1)
	if f.err != nil {
		return domain.Product{}, f.err
	}
	return testProduct(productID), nil
}

func (f *fakeCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Product{testProduct(1), testProduct(2), testProduct(3)}, nil
}

func testProduct(id int64) domain.Product {
	return domain.Product{
		ID:    id,
		Title: fmt.Sprintf("Tênis %d", id),
		Price: decimal.NewFromInt(100 + id).Add(decimal.RequireFromString("0.9")),
		Image: fmt.Sprintf("https://example.com/%d.jpg", id),
	}
}

func testItem(id int64, amount int) domain.CartItem {
	item := domain.NewCartItem(testProduct(id))
	item.Amount = amount
	return item
}

// flakyStore fails every Save while failing is set, and any Save on a done
// context.
type flakyStore struct {
	*repository.MemoryStore
	failing atomic.Bool
	saves   atomic.Int32
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: repository.NewMemoryStore()}
}

func (s *flakyStore) Save(ctx context.Context, key string, payload []byte) error {
	s.saves.Add(1)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store write: %w", err)
	}
	if s.failing.Load() {
		return errUpstream
	}
	return s.MemoryStore.Save(ctx, key, payload)
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([]byte, error) {
	return nil, errUpstream
}

func (brokenStore) Save(context.Context, string, []byte) error {
	return errUpstream
}
