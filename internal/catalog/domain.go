package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/money"
)

// Product is a sellable catalog entry together with the taxonomy fields
// promotions target (category, brand, supplier, parent grouping).
type Product struct {
	ID           uuid.UUID   `json:"id"`
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	Price        money.Money `json:"price"`
	CategoryID   string      `json:"categoryId,omitempty"`
	Category     string      `json:"category,omitempty"`
	Brand        string      `json:"brand,omitempty"`
	SupplierID   string      `json:"supplierId,omitempty"`
	SupplierName string      `json:"supplierName,omitempty"`
	ParentID     string      `json:"parentId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// PriceOverride is a company-specific price that supersedes the catalog
// price. At most one override exists per company/product pair.
type PriceOverride struct {
	CompanyID string      `json:"companyId"`
	ProductID uuid.UUID   `json:"productId"`
	Price     money.Money `json:"price"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
