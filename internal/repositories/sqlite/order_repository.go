package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopmart/commerce/internal/domain"
	"github.com/shopmart/commerce/internal/repositories"
)

type orderRepository struct {
	db *sql.DB
}

var _ repositories.OrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Append(ctx context.Context, order domain.Order) error {
	const op = "order_repository.append"
	if r == nil || r.db == nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	if strings.TrimSpace(order.ID) == "" {
		return repositories.NewStorageError(op, repositories.StorageErrorUnknown, "order id is required", nil)
	}
	document, err := json.Marshal(order)
	if err != nil {
		return repositories.NewStorageError(op, repositories.StorageErrorUnknown, "encode order", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO order_log (order_id, document, created_at_ms) VALUES (?, ?, ?)`,
		order.ID, string(document), toMillis(order.OrderDate))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repositories.NewStorageError(op, repositories.StorageErrorConflict, "order already recorded", err)
		}
		return repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "append order", err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	const op = "order_repository.find"
	if r == nil || r.db == nil {
		return domain.Order{}, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	var document string
	row := r.db.QueryRowContext(ctx, `SELECT document FROM order_log WHERE order_id = ?`, strings.TrimSpace(orderID))
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, repositories.NewStorageError(op, repositories.StorageErrorNotFound, "order not found", err)
		}
		return domain.Order{}, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "read order", err)
	}
	var order domain.Order
	if err := json.Unmarshal([]byte(document), &order); err != nil {
		return domain.Order{}, repositories.NewStorageError(op, repositories.StorageErrorUnknown, "decode order", err)
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	const op = "order_repository.list"
	if r == nil || r.db == nil {
		return nil, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "store is not configured", nil)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT document FROM order_log ORDER BY created_at_ms ASC, order_id ASC`)
	if err != nil {
		return nil, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "list orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "scan order", err)
		}
		var order domain.Order
		if err := json.Unmarshal([]byte(document), &order); err != nil {
			return nil, repositories.NewStorageError(op, repositories.StorageErrorUnknown, "decode order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewStorageError(op, repositories.StorageErrorUnavailable, "iterate orders", err)
	}
	return orders, nil
}
