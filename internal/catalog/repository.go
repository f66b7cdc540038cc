package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-grosir/internal/money"
)

// ErrNotFound is returned when a catalog row does not exist.
var ErrNotFound = errors.New("catalog: not found")

// ErrDuplicateSKU is returned when a product insert collides on the sku
// unique constraint.
var ErrDuplicateSKU = errors.New("catalog: duplicate sku")

const productColumns = `p.id, p.sku, p.name, p.price, p.category_id, p.category, p.brand,
	p.supplier_id, p.supplier_name, p.parent_id, p.created_at`

// Repo provides catalog reads and price-override writes backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// CreateProduct inserts a new catalog entry. A sku collision maps to
// ErrDuplicateSKU so the service can surface a 409.
func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, sku, name, price, category_id, category, brand,
			supplier_id, supplier_name, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		p.ID, p.SKU, p.Name, p.Price, p.CategoryID, p.Category, p.Brand,
		p.SupplierID, p.SupplierName, p.ParentID).Scan(&p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, ErrDuplicateSKU
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// ListProducts returns one page of the catalog ordered by name.
func (r *Repo) ListProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM products p
		ORDER BY p.name, p.id
		LIMIT $1 OFFSET $2`, productColumns), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// CountProducts returns the catalog size.
func (r *Repo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// GetProduct fetches one product by id.
func (r *Repo) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM products p WHERE p.id = $1`, productColumns), id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetProducts fetches a batch of products keyed by id. Missing ids are simply
// absent from the result map.
func (r *Repo) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]Product{}, nil
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM products p WHERE p.id = ANY($1)`, productColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	list, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// GetOverride fetches the company-specific price for a product if one exists.
func (r *Repo) GetOverride(ctx context.Context, companyID string, productID uuid.UUID) (PriceOverride, error) {
	var o PriceOverride
	err := r.pool.QueryRow(ctx, `
		SELECT company_id, product_id, price, updated_at
		FROM price_overrides
		WHERE company_id = $1 AND product_id = $2`, companyID, productID).
		Scan(&o.CompanyID, &o.ProductID, &o.Price, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PriceOverride{}, ErrNotFound
		}
		return PriceOverride{}, fmt.Errorf("get override: %w", err)
	}
	return o, nil
}

// ListOverrides fetches all company overrides for a batch of products.
func (r *Repo) ListOverrides(ctx context.Context, companyID string, productIDs []uuid.UUID) (map[uuid.UUID]money.Money, error) {
	if companyID == "" || len(productIDs) == 0 {
		return map[uuid.UUID]money.Money{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, price
		FROM price_overrides
		WHERE company_id = $1 AND product_id = ANY($2)`, companyID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()
	out := make(map[uuid.UUID]money.Money)
	for rows.Next() {
		var id uuid.UUID
		var price money.Money
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out[id] = price
	}
	return out, rows.Err()
}

// UpsertOverride creates or replaces the override for a company/product pair.
func (r *Repo) UpsertOverride(ctx context.Context, o PriceOverride) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO price_overrides (company_id, product_id, price, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (company_id, product_id)
		DO UPDATE SET price = EXCLUDED.price, updated_at = now()`,
		o.CompanyID, o.ProductID, o.Price)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

// DeleteOverride removes a company/product override. Deleting a missing
// override is not an error.
func (r *Repo) DeleteOverride(ctx context.Context, companyID string, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM price_overrides WHERE company_id = $1 AND product_id = $2`,
		companyID, productID)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.CategoryID, &p.Category,
		&p.Brand, &p.SupplierID, &p.SupplierName, &p.ParentID, &p.CreatedAt)
	return p, err
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
