package engine

import "sync"

// productLocks hands out one mutex per product id and forgets it once nobody
// holds or waits for it.
type productLocks struct {
	mu    sync.Mutex
	locks map[int64]*productLock
}

type productLock struct {
	sync.Mutex
	refs int
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[int64]*productLock)}
}

func (p *productLocks) lock(productID int64) (unlock func()) {
	p.mu.Lock()
	l, ok := p.locks[productID]
	if !ok {
		l = &productLock{}
		p.locks[productID] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, productID)
		}
		p.mu.Unlock()
	}
}

func (p *productLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.locks)
}
