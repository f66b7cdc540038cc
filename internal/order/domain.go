package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/money"
)

// Status is the order lifecycle state. This service only ever writes
// SUBMITTED; fulfilment moves orders forward elsewhere.
type Status string

const StatusSubmitted Status = "SUBMITTED"

// Order is the persisted order header with its lines.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	CompanyID     string      `json:"companyId"`
	CreatedBy     string      `json:"createdById"`
	Status        Status      `json:"status"`
	Subtotal      money.Money `json:"subtotal"`
	DiscountTotal money.Money `json:"discountTotal"`
	Total         money.Money `json:"total"`
	Items         []Item      `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Item is one priced order line. It snapshots the product name, SKU, and
// supplier at submission time so later catalog edits never rewrite history.
type Item struct {
	ID         uuid.UUID   `json:"-"`
	OrderID    uuid.UUID   `json:"-"`
	ProductID  uuid.UUID   `json:"productId"`
	SKU        string      `json:"sku"`
	Name       string      `json:"name"`
	Qty        int64       `json:"qty"`
	UnitPrice  money.Money `json:"unitPrice"`
	LineTotal  money.Money `json:"lineTotal"`
	SupplierID string      `json:"supplierId,omitempty"`
}
