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

const checkoutStateKey = "checkout-state"

type checkoutRepository struct {
	db *sql.DB
}

var _ repositories.CheckoutRepository = (*checkoutRepository)(nil)

func (r *checkoutRepository) Save(ctx context.Context, state domain.CheckoutState) error {
	const op = "checkout_repository.save"
	if r == nil || r.db == nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	document, err := json.Marshal(state)
	if err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnknown, "encode checkout state", err)
	}
	if err := upsertState(ctx, r.db, checkoutStateKey, document, state.UpdatedAt); err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "write checkout state", err)
	}
	return nil
}

func (r *checkoutRepository) Load(ctx context.Context) (domain.CheckoutState, error) {
	const op = "checkout_repository.load"
	if r == nil || r.db == nil {
		return domain.CheckoutState{}, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	document, _, err := loadState(ctx, r.db, checkoutStateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CheckoutState{}, repositories.NewStorageError(op, repositories.StorageErrorNotFound, "no saved checkout session", err)
	}
	if err != nil {
		return domain.CheckoutState{}, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "read checkout state", err)
	}
	var state domain.CheckoutState
	if err := json.Unmarshal(document, &state); err != nil {
		return domain.CheckoutState{}, repositories.NewStorageError(op, repositories.StorageErrorUnknown, "decode checkout state", err)
	}
	return state, nil
}

func (r *checkoutRepository) Clear(ctx context.Context) error {
	const op = "checkout_repository.clear"
	if r == nil || r.db == nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	if err := deleteState(ctx, r.db, checkoutStateKey); err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "clear checkout state", err)
	}
	return nil
}

// stateUpdatedAt exposes the persisted timestamp for freshness checks in tests.
func (r *checkoutRepository) stateUpdatedAt(ctx context.Context) (time.Time, error) {
	_, updatedAt, err := loadState(ctx, r.db, checkoutStateKey)
	return updatedAt, err
}
