package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/repositories"
)

const cartStateKey = "cart-state"

type cartRepository struct {
	db *sql.DB
}

var _ repositories.CartRepository = (*cartRepository)(nil)

func (r *cartRepository) Save(ctx context.Context, snapshot domain.CartSnapshot) error {
	const op = "cart_repository.save"
	if r == nil || r.db == nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	document, err := json.Marshal(snapshot)
	if err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnknown, "encode cart snapshot", err)
	}
	if err := upsertState(ctx, r.db, cartStateKey, document, time.Now()); err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "write cart snapshot", err)
	}
	return nil
}

func (r *cartRepository) Load(ctx context.Context) (domain.CartSnapshot, error) {
	const op = "cart_repository.load"
	if r == nil || r.db == nil {
		return domain.CartSnapshot{}, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	document, _, err := loadState(ctx, r.db, cartStateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CartSnapshot{}, repositories.NewStorageError(op, repositories.StorageErrorNotFound, "no saved cart", err)
	}
	if err != nil {
		return domain.CartSnapshot{}, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "read cart snapshot", err)
	}
	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(document, &snapshot); err != nil {
		return domain.CartSnapshot{}, repositories.NewStorageError(op, repositories.StorageErrorUnknown, "decode cart snapshot", err)
	}
	return snapshot, nil
}

func (r *cartRepository) Clear(ctx context.Context) error {
	const op = "cart_repository.clear"
	if r == nil || r.db == nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	if err := deleteState(ctx, r.db, cartStateKey); err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "clear cart snapshot", err)
	}
	return nil
}

func upsertState(ctx context.Context, db *sql.DB, key string, document []byte, now time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO kv_state (key, document, updated_at_ms) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET document = excluded.document, updated_at_ms = excluded.updated_at_ms`,
		key, string(document), toMillis(now))
	return err
}

func loadState(ctx context.Context, db *sql.DB, key string) ([]byte, time.Time, error) {
	var (
		document    string
		updatedAtMs int64
	)
	row := db.QueryRowContext(ctx, `SELECT document, updated_at_ms FROM kv_state WHERE key = ?`, key)
	if err := row.Scan(&document, &updatedAtMs); err != nil {
		return nil, time.Time{}, err
	}
	return []byte(document), time.UnixMilli(updatedAtMs).UTC(), nil
}

func deleteState(ctx context.Context, db *sql.DB, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM kv_state WHERE key = ?`, key)
	return err
}
