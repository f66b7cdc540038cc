package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/money"
)

// Handler exposes catalog endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Products handles GET /api/v1/products with pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.service.DefaultLimit(), h.service.MaxLimit())
	result, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       result.Items,
		"pagination": common.Pagination{Page: result.Page, PerPage: result.Limit, TotalItems: int(result.Total)},
	})
}

// ProductDetail handles GET /api/v1/products/{productID}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
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

// Price handles GET /api/v1/products/{productID}/price. It resolves the
// caller's effective unit price honouring any company override.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}
	companyID, _ := common.CompanyID(r.Context())
	price, err := h.service.EffectivePriceFor(r.Context(), companyID, id)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": price})
}

type productRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	CategoryID   string `json:"categoryId"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName"`
	ParentID     string `json:"parentId"`
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid request body", nil))
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		common.WriteAppError(w, common.ValidationError("price must be a decimal amount", map[string]any{"price": req.Price}))
		return
	}
	p, err := h.service.Create(r.Context(), Product{
		SKU:          strings.TrimSpace(req.SKU),
		Name:         strings.TrimSpace(req.Name),
		Price:        price,
		CategoryID:   req.CategoryID,
		Category:     req.Category,
		Brand:        req.Brand,
		SupplierID:   req.SupplierID,
		SupplierName: req.SupplierName,
		ParentID:     req.ParentID,
	})
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": p})
}

type overrideRequest struct {
	Price string `json:"price"`
}

// UpsertOverride handles PUT /api/v1/admin/companies/{companyID}/overrides/{productID}.
func (h *Handler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	companyID := strings.TrimSpace(chi.URLParam(r, "companyID"))
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid request body", nil))
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		common.WriteAppError(w, common.ValidationError("price must be a decimal amount", map[string]any{"price": req.Price}))
		return
	}
	override := PriceOverride{CompanyID: companyID, ProductID: id, Price: price}
	if err := h.service.UpsertOverride(r.Context(), override); err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": override})
}

// DeleteOverride handles DELETE /api/v1/admin/companies/{companyID}/overrides/{productID}.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	companyID := strings.TrimSpace(chi.URLParam(r, "companyID"))
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteOverride(r.Context(), companyID, id); err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseProductID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "productID")
	id, err := uuid.Parse(raw)
	if err != nil {
		common.WriteAppError(w, common.ValidationError("productID must be a valid uuid", map[string]any{"productID": raw}))
		return uuid.Nil, false
	}
	return id, true
}
