package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-grosir/internal/catalog"
	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/events"
	"github.com/noah-isme/backend-grosir/internal/money"
	"github.com/noah-isme/backend-grosir/internal/obs"
	"github.com/noah-isme/backend-grosir/internal/promo"
)

// ProductSource supplies the catalog snapshot the pricer reads once per request.
type ProductSource interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error)
	ListOverrides(ctx context.Context, companyID string, productIDs []uuid.UUID) (map[uuid.UUID]money.Money, error)
}

// PromoSource supplies the active promotion set.
type PromoSource interface {
	Snapshot(ctx context.Context) ([]promo.Promotion, error)
}

// Store persists and reads orders.
type Store interface {
	Create(ctx context.Context, o Order) error
	List(ctx context.Context, companyID string, limit, offset int) ([]Order, int64, error)
	Get(ctx context.Context, companyID string, id uuid.UUID) (Order, error)
}

// ItemRequest is one requested line before pricing.
type ItemRequest struct {
	ProductID uuid.UUID
	Qty       int64
}

// Service assembles orders: it prices the requested lines against the
// caller's company, resolves promotions, and persists the result atomically.
type Service struct {
	products ProductSource
	promos   PromoSource
	store    Store
	bus      *events.Bus
	logger   zerolog.Logger
	now      func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Products ProductSource
	Promos   PromoSource
	Store    Store
	Bus      *events.Bus
	Logger   zerolog.Logger
	Now      func() time.Time
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Products == nil || cfg.Promos == nil || cfg.Store == nil {
		return nil, errors.New("order: products, promos, and store are required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		products: cfg.Products,
		promos:   cfg.Promos,
		store:    cfg.Store,
		bus:      cfg.Bus,
		logger:   cfg.Logger,
		now:      now,
	}, nil
}

// Create prices and persists a new order for the calling company.
//
// All inputs are fetched once up front and treated as an immutable snapshot:
// the same products, overrides, and promotion set price every line, so a
// concurrent admin edit cannot produce a half-updated total.
func (s *Service) Create(ctx context.Context, items []ItemRequest) (Order, error) {
	companyID, ok := common.CompanyID(ctx)
	if !ok {
		orderOutcome("forbidden")
		return Order{}, common.ForbiddenError("caller has no associated company")
	}
	createdBy, _ := common.UserID(ctx)

	if err := validateItems(items); err != nil {
		orderOutcome("validation")
		return Order{}, err
	}

	ids := distinctProductIDs(items)
	products, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		orderOutcome("error")
		return Order{}, err
	}
	for _, id := range ids {
		if _, found := products[id]; !found {
			orderOutcome("not_found")
			return Order{}, common.NotFoundError("Product not found")
		}
	}
	overrides, err := s.products.ListOverrides(ctx, companyID, ids)
	if err != nil {
		orderOutcome("error")
		return Order{}, err
	}
	promotions, err := s.promos.Snapshot(ctx)
	if err != nil {
		orderOutcome("error")
		return Order{}, err
	}

	now := s.now()
	o := Order{
		ID:        uuid.New(),
		CompanyID: companyID,
		CreatedBy: createdBy,
		Status:    StatusSubmitted,
		CreatedAt: now.UTC(),
	}
	lines := make([]promo.Line, 0, len(items))
	subtotal := money.Zero()
	for _, item := range items {
		p := products[item.ProductID]
		unitPrice := p.Price
		if override, found := overrides[item.ProductID]; found {
			unitPrice = override
		}
		lineTotal := unitPrice.MulInt(item.Qty)
		subtotal = subtotal.Add(lineTotal)
		o.Items = append(o.Items, Item{
			ID:         uuid.New(),
			OrderID:    o.ID,
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			Qty:        item.Qty,
			UnitPrice:  unitPrice,
			LineTotal:  lineTotal,
			SupplierID: p.SupplierID,
		})
		lines = append(lines, promo.Line{
			ProductID:    p.ID,
			SKU:          p.SKU,
			CategoryID:   p.CategoryID,
			Category:     p.Category,
			Brand:        p.Brand,
			SupplierID:   p.SupplierID,
			SupplierName: p.SupplierName,
			ParentID:     p.ParentID,
			Qty:          item.Qty,
			LineTotal:    lineTotal,
		})
	}

	breakdown := promo.Resolve(promo.Input{
		Lines:      lines,
		Subtotal:   subtotal,
		Promotions: promotions,
		Now:        now,
	})
	o.Subtotal = subtotal
	o.DiscountTotal = breakdown.DiscountTotal
	o.Total = breakdown.Total

	if err := s.store.Create(ctx, o); err != nil {
		orderOutcome("error")
		return Order{}, err
	}
	orderOutcome("ok")
	observeOrder(o, breakdown)
	s.emitCreated(ctx, o)
	return o, nil
}

// List returns one page of the calling company's orders.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Order, int64, error) {
	companyID, ok := common.CompanyID(ctx)
	if !ok {
		return nil, 0, common.ForbiddenError("caller has no associated company")
	}
	return s.store.List(ctx, companyID, limit, offset)
}

// Get returns one of the calling company's orders with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	companyID, ok := common.CompanyID(ctx)
	if !ok {
		return Order{}, common.ForbiddenError("caller has no associated company")
	}
	o, err := s.store.Get(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, common.NotFoundError("Order not found")
		}
		return Order{}, err
	}
	return o, nil
}

func (s *Service) emitCreated(ctx context.Context, o Order) {
	if s.bus == nil {
		return
	}
	payload := map[string]any{
		"orderId":       o.ID,
		"companyId":     o.CompanyID,
		"total":         o.Total,
		"discountTotal": o.DiscountTotal,
		"itemCount":     len(o.Items),
	}
	if _, err := s.bus.Emit(ctx, events.TopicOrderCreated, o.ID, payload); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID.String()).Msg("emit order.created")
	}
}

func validateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return common.ValidationError("items must not be empty", nil)
	}
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return common.ValidationError("productId is required", map[string]any{"index": i})
		}
		if item.Qty < 1 {
			return common.ValidationError("qty must be a positive integer", map[string]any{"index": i, "qty": item.Qty})
		}
	}
	return nil
}

func distinctProductIDs(items []ItemRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func orderOutcome(result string) {
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.WithLabelValues(result).Inc()
	}
}

func observeOrder(o Order, breakdown promo.Breakdown) {
	if obs.OrderDiscountAmount != nil {
		v, _ := o.DiscountTotal.Decimal().Float64()
		obs.OrderDiscountAmount.Observe(v)
	}
	if obs.OrderLineCount != nil {
		obs.OrderLineCount.Observe(float64(len(o.Items)))
	}
	if obs.PromotionsAppliedTotal != nil {
		if breakdown.FlatID != nil {
			obs.PromotionsAppliedTotal.WithLabelValues("flat").Inc()
		}
		ruleCount := len(breakdown.StackableIDs)
		if breakdown.ExclusiveID != nil {
			ruleCount++
		}
		for i := 0; i < ruleCount; i++ {
			obs.PromotionsAppliedTotal.WithLabelValues("rule").Inc()
		}
	}
}
