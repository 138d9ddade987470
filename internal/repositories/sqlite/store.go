// Package sqlite provides the SQLite-backed persistence layer for the
// commerce engine: cart and checkout snapshots plus the append-only order log.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shopmart/commerce/internal/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_state (
	key           TEXT PRIMARY KEY,
	document      TEXT NOT NULL,
	updated_at_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_log (
	order_id      TEXT PRIMARY KEY,
	document      TEXT NOT NULL,
	created_at_ms INTEGER NOT NULL
);
`

// Store owns the SQLite handle shared by the typed repositories.
type Store struct {
	sqlDB *sql.DB

	carts    *cartRepository
	checkout *checkoutRepository
	orders   *orderRepository
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Store)(nil)

// Open opens the SQLite store at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	store.carts = &cartRepository{db: sqlDB}
	store.checkout = &checkoutRepository{db: sqlDB}
	store.orders = &orderRepository{db: sqlDB}

	health, err := repositories.NewProbeHealthRepository(sqlDB.PingContext, 0)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build health repository: %w", err)
	}
	store.health = health

	return store, nil
}

// Close closes the SQLite handle.
func (s *Store) Close(context.Context) error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Carts returns the cart snapshot repository.
func (s *Store) Carts() repositories.CartRepository { return s.carts }

// Checkout returns the checkout snapshot repository.
func (s *Store) Checkout() repositories.CheckoutRepository { return s.checkout }

// Orders returns the order log repository.
func (s *Store) Orders() repositories.OrderRepository { return s.orders }

// Health returns the readiness probe for the store.
func (s *Store) Health() repositories.HealthRepository { return s.health }

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}
