package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/money"
	"github.com/noah-isme/backend-grosir/internal/obs"
)

// Store is the persistence surface the catalog service depends on.
type Store interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]Product, error)
	CountProducts(ctx context.Context) (int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	GetOverride(ctx context.Context, companyID string, productID uuid.UUID) (PriceOverride, error)
	ListOverrides(ctx context.Context, companyID string, productIDs []uuid.UUID) (map[uuid.UUID]money.Money, error)
	UpsertOverride(ctx context.Context, o PriceOverride) error
	DeleteOverride(ctx context.Context, companyID string, productID uuid.UUID) error
}

// Service orchestrates catalog queries, effective pricing, and caching.
type Service struct {
	store        Store
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []Product
	Total int64
	Page  int
	Limit int
}

// EffectivePrice is the buyer-facing price resolution for one product.
type EffectivePrice struct {
	ProductID     uuid.UUID    `json:"productId"`
	SKU           string       `json:"sku"`
	ListPrice     money.Money  `json:"listPrice"`
	OverridePrice *money.Money `json:"overridePrice,omitempty"`
	UnitPrice     money.Money  `json:"unitPrice"`
	Source        string       `json:"source"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// DefaultLimit exposes the configured default page size.
func (s *Service) DefaultLimit() int { return s.defaultLimit }

// MaxLimit exposes the configured page size ceiling.
func (s *Service) MaxLimit() int { return s.maxLimit }

type cachedList struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
}

// Create validates and stores a new product. SKU collisions surface as a
// CONFLICT taxonomy error.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if p.SKU == "" {
		return Product{}, common.ValidationError("sku is required", nil)
	}
	if p.Name == "" {
		return Product{}, common.ValidationError("name is required", nil)
	}
	if !p.Price.IsPositive() {
		return Product{}, common.ValidationError("price must be positive", map[string]any{"price": p.Price.String()})
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		if errors.Is(err, ErrDuplicateSKU) {
			return Product{}, common.ConflictError("a product with this sku already exists", map[string]any{"sku": p.SKU})
		}
		return Product{}, err
	}
	return created, nil
}

// List returns one catalog page, served from cache when possible.
func (s *Service) List(ctx context.Context, page, limit int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	key := fmt.Sprintf("catalog:list:%d:%d", page, limit)
	var cached cachedList
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		cacheLookup("hit")
		return ListResult{Items: cached.Items, Total: cached.Total, Page: page, Limit: limit}, nil
	}
	cacheLookup("miss")

	total, err := s.store.CountProducts(ctx)
	if err != nil {
		return ListResult{}, err
	}
	items, err := s.store.ListProducts(ctx, limit, (page-1)*limit)
	if err != nil {
		return ListResult{}, err
	}
	_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	return ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Get returns one product or a NOT_FOUND taxonomy error.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	key := "catalog:product:" + id.String()
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		cacheLookup("hit")
		return cached, nil
	}
	cacheLookup("miss")

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, common.NotFoundError("Product not found")
		}
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, p)
	return p, nil
}

// EffectivePriceFor resolves the unit price a company pays for a product:
// the company override when present, otherwise the catalog price.
func (s *Service) EffectivePriceFor(ctx context.Context, companyID string, productID uuid.UUID) (EffectivePrice, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return EffectivePrice{}, err
	}
	out := EffectivePrice{
		ProductID: p.ID,
		SKU:       p.SKU,
		ListPrice: p.Price,
		UnitPrice: p.Price,
		Source:    "catalog",
	}
	if companyID == "" {
		return out, nil
	}
	o, err := s.store.GetOverride(ctx, companyID, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return out, nil
		}
		return EffectivePrice{}, err
	}
	price := o.Price
	out.OverridePrice = &price
	out.UnitPrice = price
	out.Source = "override"
	return out, nil
}

// UpsertOverride validates and stores a company price override.
func (s *Service) UpsertOverride(ctx context.Context, o PriceOverride) error {
	if o.CompanyID == "" {
		return common.ValidationError("companyId is required", nil)
	}
	if !o.Price.IsPositive() {
		return common.ValidationError("override price must be positive", map[string]any{"price": o.Price.String()})
	}
	if _, err := s.Get(ctx, o.ProductID); err != nil {
		return err
	}
	return s.store.UpsertOverride(ctx, o)
}

// DeleteOverride removes a company price override.
func (s *Service) DeleteOverride(ctx context.Context, companyID string, productID uuid.UUID) error {
	if companyID == "" {
		return common.ValidationError("companyId is required", nil)
	}
	return s.store.DeleteOverride(ctx, companyID, productID)
}

func cacheLookup(result string) {
	if obs.CatalogCacheTotal != nil {
		obs.CatalogCacheTotal.WithLabelValues(result).Inc()
	}
}
