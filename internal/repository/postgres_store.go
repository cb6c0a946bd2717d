package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rocketshoes-cart/internal/port"
)

const (
	loadSlotQuery = `SELECT payload FROM cart_slots WHERE slot_key = $1`

	upsertSlotQuery = `INSERT INTO cart_slots (slot_key, payload)
VALUES ($1, $2)
ON CONFLICT (slot_key) DO UPDATE
SET payload = EXCLUDED.payload, version = cart_slots.version + 1, updated_at = NOW()`
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore keeps cart slots in the cart_slots table.
func NewPostgresStore(pool *pgxpool.Pool) port.CartStore {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	var payload []byte
	err := s.pool.QueryRow(ctx, loadSlotQuery, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return payload, nil
}

// Save overwrites the slot, creating it on first write.
func (s *postgresStore) Save(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	_, err := withTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		if _, err := tx.Exec(ctx, upsertSlotQuery, key, payload); err != nil {
			return struct{}{}, fmt.Errorf("tx.Exec: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}
