package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/common"
)

// Handler exposes the order endpoints.
type Handler struct {
	service        *Service
	validate       *validator.Validate
	defaultPerPage int
	maxPerPage     int
}

// HandlerConfig groups Handler dependencies.
type HandlerConfig struct {
	Service        *Service
	DefaultPerPage int
	MaxPerPage     int
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	defaultPerPage := cfg.DefaultPerPage
	if defaultPerPage < 1 {
		defaultPerPage = 20
	}
	maxPerPage := cfg.MaxPerPage
	if maxPerPage < 1 {
		maxPerPage = 100
	}
	return &Handler{
		service:        cfg.Service,
		validate:       validator.New(),
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

type itemPayload struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int64  `json:"qty" validate:"required,min=1"`
}

type createRequest struct {
	Items []itemPayload `json:"items" validate:"required,min=1,dive"`
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid request body", nil))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.WriteAppError(w, common.ValidationError("invalid order request", map[string]any{"error": err.Error()}))
		return
	}
	items := make([]ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			common.WriteAppError(w, common.ValidationError("productId must be a valid uuid", map[string]any{"productId": item.ProductID}))
			return
		}
		items = append(items, ItemRequest{ProductID: id, Qty: item.Qty})
	}
	created, err := h.service.Create(r.Context(), items)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.defaultPerPage, h.maxPerPage)
	orders, total, err := h.service.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       orders,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/orders/{orderID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "orderID")
	id, err := uuid.Parse(raw)
	if err != nil {
		common.WriteAppError(w, common.ValidationError("orderID must be a valid uuid", map[string]any{"orderID": raw}))
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}
