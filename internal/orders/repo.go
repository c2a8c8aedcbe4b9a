package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, items, total, address, phone, payment_method, status, created_at`

// Repo is the PostgreSQL Store. A Repo without a pool fails every call with
// ErrNotInitialized instead of blocking.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) pool() (*pgxpool.Pool, error) {
	if r == nil || r.DB == nil {
		return nil, ErrNotInitialized
	}
	return r.DB, nil
}

func (r *Repo) Create(ctx context.Context, o NewOrder) (int64, error) {
	db, err := r.pool()
	if err != nil {
		return 0, err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return 0, fmt.Errorf("encode items: %w", err)
	}
	var id int64
	err = db.QueryRow(ctx, `
		INSERT INTO orders (user_id, items, total, address, phone, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		o.UserID, items, o.Total, o.Address, o.Phone, o.PaymentMethod,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (Order, error) {
	db, err := r.pool()
	if err != nil {
		return Order{}, err
	}
	o, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID int64, limit int) ([]Order, error) {
	db, err := r.pool()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `SELECT `+orderColumns+` FROM orders
	                            WHERE user_id=$1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders of user %d: %w", userID, err)
	}
	return collect(rows)
}

func (r *Repo) ListAll(ctx context.Context, limit int) ([]Order, error) {
	db, err := r.pool()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return collect(rows)
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, from, to Status) (int64, error) {
	db, err := r.pool()
	if err != nil {
		return 0, err
	}
	var userID int64
	err = db.QueryRow(ctx, `UPDATE orders SET status=$1 WHERE id=$2 AND status=$3 RETURNING user_id`,
		string(to), id, string(from)).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("update status of order %d: %w", id, err)
	}

	// nothing matched: either the order is gone or its status moved on
	var current string
	err = db.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read status of order %d: %w", id, err)
	}
	return 0, fmt.Errorf("%w: order %d is %s", ErrStatusConflict, id, current)
}

func (r *Repo) DeleteAged(ctx context.Context, statuses []Status, olderThan time.Time) (int64, error) {
	db, err := r.pool()
	if err != nil {
		return 0, err
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	ct, err := db.Exec(ctx, `DELETE FROM orders WHERE status = ANY($1) AND created_at < $2`,
		names, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete aged orders: %w", err)
	}
	return ct.RowsAffected(), nil
}

func collect(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		items  []byte
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &o.Address, &o.Phone,
		&o.PaymentMethod, &status, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.CreatedAt = o.CreatedAt.UTC()
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return Order{}, fmt.Errorf("decode items of order %d: %w", o.ID, err)
		}
	}
	return o, nil
}
