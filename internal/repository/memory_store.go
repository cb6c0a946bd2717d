package repository

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/rocketshoes-cart/internal/port"
)

// MemoryStore keeps slots in process memory. It does not survive restarts and
// is meant for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.slots[key]
	if !ok {
		return nil, port.ErrCartNotFound
	}
	return bytes.Clone(payload), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = bytes.Clone(payload)
	return nil
}
