package promo

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/money"
)

// Handler exposes the promotion admin surface.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type promotionRequest struct {
	Name        string     `json:"name" validate:"required"`
	Kind        string     `json:"kind" validate:"required,oneof=flat rule"`
	Active      bool       `json:"active"`
	Scope       string     `json:"scope" validate:"required"`
	Target      string     `json:"target"`
	Type        string     `json:"type" validate:"required,oneof=PERCENT FIXED"`
	Value       string     `json:"value" validate:"required"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Days        []int      `json:"days" validate:"omitempty,dive,min=0,max=6"`
	TimeFrom    string     `json:"timeFrom"`
	TimeTo      string     `json:"timeTo"`
	MinSpend    *string    `json:"minSpend"`
	MinQty      *int64     `json:"minQty"`
	MaxDiscount *string    `json:"maxDiscount"`
	Stackable   bool       `json:"stackable"`
	Priority    int        `json:"priority"`
	IncludeSKUs []string   `json:"includeSkus"`
	ExcludeSKUs []string   `json:"excludeSkus"`
}

func (req promotionRequest) toPromotion(id uuid.UUID) (Promotion, error) {
	value, err := money.Parse(req.Value)
	if err != nil {
		return Promotion{}, common.ValidationError("value must be a decimal amount", map[string]any{"value": req.Value})
	}
	p := Promotion{
		ID:          id,
		Name:        req.Name,
		Kind:        Kind(req.Kind),
		Active:      req.Active,
		Scope:       Scope(req.Scope),
		Target:      req.Target,
		Type:        DiscountType(req.Type),
		Value:       value,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		TimeFrom:    req.TimeFrom,
		TimeTo:      req.TimeTo,
		MinQty:      req.MinQty,
		Stackable:   req.Stackable,
		Priority:    req.Priority,
		IncludeSKUs: req.IncludeSKUs,
		ExcludeSKUs: req.ExcludeSKUs,
	}
	for _, d := range req.Days {
		p.Days = append(p.Days, time.Weekday(d))
	}
	if req.MinSpend != nil {
		m, err := money.Parse(*req.MinSpend)
		if err != nil {
			return Promotion{}, common.ValidationError("minSpend must be a decimal amount", map[string]any{"minSpend": *req.MinSpend})
		}
		p.MinSpend = &m
	}
	if req.MaxDiscount != nil {
		m, err := money.Parse(*req.MaxDiscount)
		if err != nil {
			return Promotion{}, common.ValidationError("maxDiscount must be a decimal amount", map[string]any{"maxDiscount": *req.MaxDiscount})
		}
		p.MaxDiscount = &m
	}
	return p, nil
}

// List handles GET /api/v1/admin/promotions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.List(r.Context())
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": promos})
}

// Get handles GET /api/v1/admin/promotions/{promoID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Create handles POST /api/v1/admin/promotions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	p, err := req.toPromotion(uuid.Nil)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), p)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update handles PUT /api/v1/admin/promotions/{promoID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	p, err := req.toPromotion(id)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), p)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

type previewLine struct {
	ProductID    string `json:"productId"`
	SKU          string `json:"sku"`
	CategoryID   string `json:"categoryId"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName"`
	ParentID     string `json:"parentId"`
	Qty          int64  `json:"qty" validate:"required,min=1"`
	LineTotal    string `json:"lineTotal" validate:"required"`
}

type previewRequest struct {
	At    *time.Time    `json:"at"`
	Lines []previewLine `json:"lines" validate:"required,min=1,dive"`
}

type previewResponse struct {
	FlatID          *uuid.UUID  `json:"flatId,omitempty"`
	FlatAmount      money.Money `json:"flatAmount"`
	StackableIDs    []uuid.UUID `json:"stackableIds,omitempty"`
	StackableSum    money.Money `json:"stackableSum"`
	ExclusiveID     *uuid.UUID  `json:"exclusiveId,omitempty"`
	ExclusiveAmount money.Money `json:"exclusiveAmount"`
	DiscountTotal   money.Money `json:"discountTotal"`
	Total           money.Money `json:"total"`
}

// Preview handles POST /api/v1/admin/promotions/preview: a dry run of the
// resolver over caller-supplied priced lines.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid request body", nil))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid preview request", map[string]any{"error": err.Error()}))
		return
	}
	lines := make([]Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		total, err := money.Parse(l.LineTotal)
		if err != nil {
			common.WriteAppError(w, common.ValidationError("lineTotal must be a decimal amount", map[string]any{"lineTotal": l.LineTotal}))
			return
		}
		id, _ := uuid.Parse(l.ProductID)
		lines = append(lines, Line{
			ProductID:    id,
			SKU:          l.SKU,
			CategoryID:   l.CategoryID,
			Category:     l.Category,
			Brand:        l.Brand,
			SupplierID:   l.SupplierID,
			SupplierName: l.SupplierName,
			ParentID:     l.ParentID,
			Qty:          l.Qty,
			LineTotal:    total,
		})
	}
	breakdown, err := h.service.Preview(r.Context(), lines, req.At)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": previewResponse{
		FlatID:          breakdown.FlatID,
		FlatAmount:      breakdown.FlatAmount,
		StackableIDs:    breakdown.StackableIDs,
		StackableSum:    breakdown.StackableSum,
		ExclusiveID:     breakdown.ExclusiveID,
		ExclusiveAmount: breakdown.ExclusiveAmount,
		DiscountTotal:   breakdown.DiscountTotal,
		Total:           breakdown.Total,
	}})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (promotionRequest, bool) {
	var req promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid request body", nil))
		return promotionRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid promotion request", map[string]any{"error": err.Error()}))
		return promotionRequest{}, false
	}
	return req, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "promoID")
	id, err := uuid.Parse(raw)
	if err != nil {
		common.WriteAppError(w, common.ValidationError("promoID must be a valid uuid", map[string]any{"promoID": raw}))
		return uuid.Nil, false
	}
	return id, true
}
