package promo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/money"
	"github.com/noah-isme/backend-grosir/internal/obs"
)

const snapshotKey = "promo:active"

// Store is the persistence surface the promotion service depends on.
type Store interface {
	List(ctx context.Context) ([]Promotion, error)
	ListActive(ctx context.Context) ([]Promotion, error)
	Get(ctx context.Context, id uuid.UUID) (Promotion, error)
	Create(ctx context.Context, p Promotion) error
	Update(ctx context.Context, p Promotion) error
}

// Service owns the promotion admin surface and the active-set snapshot the
// pricer reads. The snapshot is cached in Redis; every pricing request sees
// one immutable set for its whole computation.
type Service struct {
	store Store
	redis *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store Store
	Redis *redis.Client
	TTL   time.Duration
	Now   func() time.Time
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("promo: store is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, redis: cfg.Redis, ttl: ttl, now: now}, nil
}

// Snapshot returns the active promotion set, served from Redis when fresh.
// Cache failures fall back to the database; pricing never depends on Redis.
func (s *Service) Snapshot(ctx context.Context) ([]Promotion, error) {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, snapshotKey).Bytes()
		if err == nil {
			var cached []Promotion
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}
	return s.Warm(ctx)
}

// Warm reloads the active set from the database and refreshes the Redis
// snapshot. The cache-warmer worker calls this on a schedule.
func (s *Service) Warm(ctx context.Context) ([]Promotion, error) {
	promos, err := s.store.ListActive(ctx)
	if err != nil {
		refreshOutcome("error")
		return nil, fmt.Errorf("load active promotions: %w", err)
	}
	if s.redis != nil {
		if data, jsonErr := json.Marshal(promos); jsonErr == nil {
			_ = s.redis.Set(ctx, snapshotKey, data, s.ttl).Err()
		}
	}
	refreshOutcome("ok")
	return promos, nil
}

// Invalidate drops the cached snapshot after an admin write.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, snapshotKey).Err()
	}
}

// List returns every promotion for the admin surface.
func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	return s.store.List(ctx)
}

// Get returns one promotion or a NOT_FOUND taxonomy error.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Promotion, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Promotion{}, common.NotFoundError("Promotion not found")
		}
		return Promotion{}, err
	}
	return p, nil
}

// Create validates and stores a new promotion, assigning its id.
func (s *Service) Create(ctx context.Context, p Promotion) (Promotion, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := validatePromotion(p); err != nil {
		return Promotion{}, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Promotion{}, err
	}
	s.Invalidate(ctx)
	return p, nil
}

// Update validates and replaces an existing promotion.
func (s *Service) Update(ctx context.Context, p Promotion) (Promotion, error) {
	if err := validatePromotion(p); err != nil {
		return Promotion{}, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Promotion{}, common.NotFoundError("Promotion not found")
		}
		return Promotion{}, err
	}
	s.Invalidate(ctx)
	return p, nil
}

// Preview resolves the given priced lines against the current active set
// without touching any order state. Admins use it to sanity-check rules.
func (s *Service) Preview(ctx context.Context, lines []Line, at *time.Time) (Breakdown, error) {
	promos, err := s.Snapshot(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	when := s.now()
	if at != nil {
		when = *at
	}
	subtotal := sumLineTotals(lines)
	return Resolve(Input{Lines: lines, Subtotal: subtotal, Promotions: promos, Now: when}), nil
}

func validatePromotion(p Promotion) error {
	if strings.TrimSpace(p.Name) == "" {
		return common.ValidationError("name is required", nil)
	}
	if p.Kind != KindFlat && p.Kind != KindRule {
		return common.ValidationError("kind must be flat or rule", map[string]any{"kind": string(p.Kind)})
	}
	if !scopeKnown(p.Scope) {
		return common.ValidationError("unknown scope", map[string]any{"scope": string(p.Scope)})
	}
	if p.Scope != ScopeOrder && strings.TrimSpace(p.Target) == "" {
		return common.ValidationError("target is required for scoped promotions", map[string]any{"scope": string(p.Scope)})
	}
	switch p.Type {
	case TypePercent:
		if !p.Value.IsPositive() || p.Value.GreaterThan(money.FromInt(100)) {
			return common.ValidationError("percent value must be in (0, 100]", map[string]any{"value": p.Value.String()})
		}
	case TypeFixed:
		if !p.Value.IsPositive() {
			return common.ValidationError("fixed value must be positive", map[string]any{"value": p.Value.String()})
		}
	default:
		return common.ValidationError("type must be PERCENT or FIXED", map[string]any{"type": string(p.Type)})
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return common.ValidationError("endsAt must not precede startsAt", nil)
	}
	for _, clock := range []string{p.TimeFrom, p.TimeTo} {
		if clock == "" {
			continue
		}
		if _, err := time.Parse("15:04", clock); err != nil {
			return common.ValidationError("time bounds must be HH:MM", map[string]any{"value": clock})
		}
	}
	if p.MinSpend != nil && p.MinSpend.IsNegative() {
		return common.ValidationError("minSpend must not be negative", nil)
	}
	if p.MinQty != nil && *p.MinQty < 1 {
		return common.ValidationError("minQty must be at least 1", nil)
	}
	if p.MaxDiscount != nil && !p.MaxDiscount.IsPositive() {
		return common.ValidationError("maxDiscount must be positive", nil)
	}
	return nil
}

func scopeKnown(s Scope) bool {
	for _, known := range KnownScopes() {
		if s == known {
			return true
		}
	}
	return false
}

func refreshOutcome(result string) {
	if obs.PromoSnapshotRefreshTotal != nil {
		obs.PromoSnapshotRefreshTotal.WithLabelValues(result).Inc()
	}
}
