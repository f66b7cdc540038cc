package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a promotion does not exist.
var ErrNotFound = errors.New("promo: not found")

const promoColumns = `id, name, kind, active, scope, COALESCE(target, ''), type, value,
	starts_at, ends_at, days, COALESCE(time_from, ''), COALESCE(time_to, ''),
	min_spend, min_qty, max_discount, stackable, priority, include_skus, exclude_skus`

// Repo persists promotions in Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// List returns every promotion, newest first. Admin surface only.
func (r *Repo) List(ctx context.Context) ([]Promotion, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM promotions ORDER BY created_at DESC, id`, promoColumns))
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()
	return scanPromotions(rows)
}

// ListActive returns promotions flagged active. Window evaluation happens in
// memory at pricing time so a cached snapshot stays valid across the day.
func (r *Repo) ListActive(ctx context.Context) ([]Promotion, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM promotions WHERE active ORDER BY id`, promoColumns))
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	defer rows.Close()
	return scanPromotions(rows)
}

// Get fetches one promotion by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Promotion, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM promotions WHERE id = $1`, promoColumns), id)
	p, err := scanPromotion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Promotion{}, ErrNotFound
		}
		return Promotion{}, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

// Create inserts a promotion.
func (r *Repo) Create(ctx context.Context, p Promotion) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO promotions (id, name, kind, active, scope, target, type, value,
			starts_at, ends_at, days, time_from, time_to,
			min_spend, min_qty, max_discount, stackable, priority,
			include_skus, exclude_skus, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, now(), now())`,
		p.ID, p.Name, string(p.Kind), p.Active, string(p.Scope), p.Target,
		string(p.Type), p.Value, p.StartsAt, p.EndsAt, weekdaysToInts(p.Days),
		nullableText(p.TimeFrom), nullableText(p.TimeTo),
		p.MinSpend, p.MinQty, p.MaxDiscount, p.Stackable, p.Priority,
		p.IncludeSKUs, p.ExcludeSKUs)
	if err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

// Update replaces a promotion row.
func (r *Repo) Update(ctx context.Context, p Promotion) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE promotions SET name = $2, kind = $3, active = $4, scope = $5,
			target = $6, type = $7, value = $8, starts_at = $9, ends_at = $10,
			days = $11, time_from = $12, time_to = $13, min_spend = $14,
			min_qty = $15, max_discount = $16, stackable = $17, priority = $18,
			include_skus = $19, exclude_skus = $20, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, string(p.Kind), p.Active, string(p.Scope), p.Target,
		string(p.Type), p.Value, p.StartsAt, p.EndsAt, weekdaysToInts(p.Days),
		nullableText(p.TimeFrom), nullableText(p.TimeTo),
		p.MinSpend, p.MinQty, p.MaxDiscount, p.Stackable, p.Priority,
		p.IncludeSKUs, p.ExcludeSKUs)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPromotion(row pgx.Row) (Promotion, error) {
	var (
		p    Promotion
		kind string
		scp  string
		typ  string
		days []int32
	)
	err := row.Scan(&p.ID, &p.Name, &kind, &p.Active, &scp, &p.Target, &typ, &p.Value,
		&p.StartsAt, &p.EndsAt, &days, &p.TimeFrom, &p.TimeTo,
		&p.MinSpend, &p.MinQty, &p.MaxDiscount, &p.Stackable, &p.Priority,
		&p.IncludeSKUs, &p.ExcludeSKUs)
	if err != nil {
		return Promotion{}, err
	}
	p.Kind = Kind(kind)
	p.Scope = Scope(scp)
	p.Type = DiscountType(typ)
	p.Days = intsToWeekdays(days)
	return p, nil
}

func scanPromotions(rows pgx.Rows) ([]Promotion, error) {
	var out []Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func weekdaysToInts(days []time.Weekday) []int32 {
	if len(days) == 0 {
		return nil
	}
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}

func intsToWeekdays(days []int32) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]time.Weekday, len(days))
	for i, d := range days {
		out[i] = time.Weekday(d)
	}
	return out
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
