package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-grosir/internal/catalog"
	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/money"
)

type fakeStore struct {
	products  map[uuid.UUID]catalog.Product
	overrides map[string]money.Money
	upserts   []catalog.PriceOverride
}

func overrideKey(companyID string, productID uuid.UUID) string {
	return companyID + "/" + productID.String()
}

func (f *fakeStore) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	for _, existing := range f.products {
		if existing.SKU == p.SKU {
			return catalog.Product{}, catalog.ErrDuplicateSKU
		}
	}
	p.CreatedAt = time.Now()
	if f.products == nil {
		f.products = make(map[uuid.UUID]catalog.Product)
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeStore) ListProducts(_ context.Context, limit, offset int) ([]catalog.Product, error) {
	var all []catalog.Product
	for _, p := range f.products {
		all = append(all, p)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeStore) CountProducts(_ context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeStore) GetProduct(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	out := make(map[uuid.UUID]catalog.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeStore) GetOverride(_ context.Context, companyID string, productID uuid.UUID) (catalog.PriceOverride, error) {
	price, ok := f.overrides[overrideKey(companyID, productID)]
	if !ok {
		return catalog.PriceOverride{}, catalog.ErrNotFound
	}
	return catalog.PriceOverride{CompanyID: companyID, ProductID: productID, Price: price}, nil
}

func (f *fakeStore) ListOverrides(_ context.Context, companyID string, productIDs []uuid.UUID) (map[uuid.UUID]money.Money, error) {
	out := make(map[uuid.UUID]money.Money)
	for _, id := range productIDs {
		if price, ok := f.overrides[overrideKey(companyID, id)]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertOverride(_ context.Context, o catalog.PriceOverride) error {
	if f.overrides == nil {
		f.overrides = make(map[string]money.Money)
	}
	f.overrides[overrideKey(o.CompanyID, o.ProductID)] = o.Price
	f.upserts = append(f.upserts, o)
	return nil
}

func (f *fakeStore) DeleteOverride(_ context.Context, companyID string, productID uuid.UUID) error {
	delete(f.overrides, overrideKey(companyID, productID))
	return nil
}

func newTestRouter(t *testing.T, store *fakeStore) chi.Router {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store, DefaultLimit: 20, MaxLimit: 100})
	require.NoError(t, err)
	h := catalog.NewHandler(svc)

	r := chi.NewRouter()
	r.Get("/api/v1/products", h.Products)
	r.Get("/api/v1/products/{productID}", h.ProductDetail)
	r.Get("/api/v1/products/{productID}/price", h.Price)
	r.Post("/api/v1/admin/products", h.CreateProduct)
	r.Put("/api/v1/admin/companies/{companyID}/overrides/{productID}", h.UpsertOverride)
	r.Delete("/api/v1/admin/companies/{companyID}/overrides/{productID}", h.DeleteOverride)
	return r
}

func TestCatalogHandlers(t *testing.T) {
	productID := uuid.MustParse("7d0f51c5-9f9b-4d2e-9d63-4f8f55b4b001")
	store := &fakeStore{
		products: map[uuid.UUID]catalog.Product{
			productID: {
				ID:        productID,
				SKU:       "SKU-001",
				Name:      "Forklift Pallet",
				Price:     money.MustParse("19.99"),
				Category:  "warehouse",
				Brand:     "Acme",
				CreatedAt: time.Now(),
			},
		},
		overrides: map[string]money.Money{},
	}
	router := newTestRouter(t, store)

	t.Run("list products", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "1", rec.Header().Get("X-Total-Count"))

		var resp struct {
			Data       []catalog.Product `json:"data"`
			Pagination common.Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "SKU-001", resp.Data[0].SKU)
		require.Equal(t, 1, resp.Pagination.TotalItems)
	})

	t.Run("detail found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("detail missing product returns 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "Product not found")
	})

	t.Run("invalid product id returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "VALIDATION")
	})

	t.Run("price without company uses catalog price", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/price", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data catalog.EffectivePrice `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "catalog", resp.Data.Source)
		require.True(t, resp.Data.UnitPrice.Equal(money.MustParse("19.99")))
	})

	t.Run("price honours company override", func(t *testing.T) {
		store.overrides[overrideKey("company-7", productID)] = money.MustParse("17.50")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/price", nil)
		req = req.WithContext(common.WithIdentity(req.Context(), common.Identity{CompanyID: "company-7"}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data catalog.EffectivePrice `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "override", resp.Data.Source)
		require.True(t, resp.Data.UnitPrice.Equal(money.MustParse("17.50")))
	})

	t.Run("upsert override", func(t *testing.T) {
		body := strings.NewReader(`{"price":"15.00"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/companies/company-9/overrides/"+productID.String(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, store.overrides[overrideKey("company-9", productID)].Equal(money.MustParse("15.00")))
	})

	t.Run("upsert override rejects non positive price", func(t *testing.T) {
		body := strings.NewReader(`{"price":"0"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/companies/company-9/overrides/"+productID.String(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create product", func(t *testing.T) {
		body := strings.NewReader(`{"sku":"SKU-002","name":"Hand Truck","price":"42.00","category":"warehouse","brand":"Acme"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data catalog.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "SKU-002", resp.Data.SKU)
		require.NotEqual(t, uuid.Nil, resp.Data.ID)
	})

	t.Run("create product with duplicate sku returns 409", func(t *testing.T) {
		body := strings.NewReader(`{"sku":"SKU-001","name":"Clone","price":"1.00"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "CONFLICT")
	})

	t.Run("create product rejects missing sku", func(t *testing.T) {
		body := strings.NewReader(`{"name":"No SKU","price":"1.00"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete override", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/companies/company-9/overrides/"+productID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		_, ok := store.overrides[overrideKey("company-9", productID)]
		require.False(t, ok)
	})
}
