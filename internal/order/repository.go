package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an order does not exist for the company.
var ErrNotFound = errors.New("order: not found")

// Repo persists orders in Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create writes the order header and all its items in one transaction so a
// reader never observes a header without its lines.
func (r *Repo) Create(ctx context.Context, o Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, company_id, created_by, status, subtotal, discount_total, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.CompanyID, o.CreatedBy, string(o.Status), o.Subtotal, o.DiscountTotal, o.Total, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, sku, name, qty, unit_price, line_total, supplier_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, o.ID, item.ProductID, item.SKU, item.Name, item.Qty,
			item.UnitPrice, item.LineTotal, item.SupplierID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// List returns one page of the company's orders, newest first, plus the total count.
func (r *Repo) List(ctx context.Context, companyID string, limit, offset int) ([]Order, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, created_by, status, subtotal, discount_total, total, created_at
		FROM orders
		WHERE company_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// Get fetches one company-scoped order with its items.
func (r *Repo) Get(ctx context.Context, companyID string, id uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, company_id, created_by, status, subtotal, discount_total, total, created_at
		FROM orders
		WHERE company_id = $1 AND id = $2`, companyID, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, sku, name, qty, unit_price, line_total, COALESCE(supplier_id, '')
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, id)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.SKU, &item.Name,
			&item.Qty, &item.UnitPrice, &item.LineTotal, &item.SupplierID); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.CompanyID, &o.CreatedBy, &status, &o.Subtotal,
		&o.DiscountTotal, &o.Total, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}
