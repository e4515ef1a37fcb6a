package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/storage"
)

type orderRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderStorage {
	return &orderRepo{db: db, log: log}
}

// List returns orders without line items; those are loaded per order in
// GetByID. hours <= 0 means no lookback bound.
func (r *orderRepo) List(ctx context.Context, status string, hours int) ([]*models.Order, error) {
	query := `
		SELECT id, room_id, table_id, status, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 <= 0 OR created_at >= now() - make_interval(hours => $2))
		ORDER BY created_at DESC, id DESC
	`
	if status == "all" {
		status = ""
	}
	rows, err := r.db.Query(ctx, query, status, hours)
	if err != nil {
		r.log.Error("failed to list orders", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.RoomID, &o.TableID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, `
		SELECT id, room_id, table_id, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.RoomID, &o.TableID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to get order", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, name, qty, price, notes
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		r.log.Error("failed to get order items", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Qty, &item.Price, &item.Notes); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return &o, rows.Err()
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (room_id, table_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, o.RoomID, o.TableID, o.Status).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create order", logger.Error(err))
		return nil, err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, name, qty, price, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.OrderID, item.Name, item.Qty, item.Price, item.Notes).Scan(&item.ID)
		if err != nil {
			r.log.Error("failed to create order item", logger.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, room_id, table_id, status, created_at, updated_at
	`, status, id).Scan(&o.ID, &o.RoomID, &o.TableID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to update order status", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return &o, nil
}
