package promo

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/money"
)

// Kind discriminates the two promotion variants.
type Kind string

const (
	// KindFlat is a whole-order discount; at most one applies per order.
	KindFlat Kind = "flat"
	// KindRule is a threshold/cap rule that competes or stacks with other rules.
	KindRule Kind = "rule"
)

// DiscountType selects how Value is interpreted.
type DiscountType string

const (
	TypePercent DiscountType = "PERCENT"
	TypeFixed   DiscountType = "FIXED"
)

// Scope is the dimension a promotion targets.
type Scope string

const (
	ScopeOrder    Scope = "ORDER"
	ScopeProduct  Scope = "PRODUCT"
	ScopeCategory Scope = "CATEGORY"
	ScopeBrand    Scope = "BRAND"
	ScopeSupplier Scope = "SUPPLIER"
	ScopeParent   Scope = "PARENT"
)

// KnownScopes lists every valid scope, used by admin validation.
func KnownScopes() []Scope {
	return []Scope{ScopeOrder, ScopeProduct, ScopeCategory, ScopeBrand, ScopeSupplier, ScopeParent}
}

// Promotion is the closed union of flat discounts and discount rules. Kind
// tells the resolver which fields are meaningful: MinSpend applies to both,
// MinQty/MaxDiscount/Stackable/Priority/IncludeSKUs/ExcludeSKUs only to rules.
type Promotion struct {
	ID     uuid.UUID
	Name   string
	Kind   Kind
	Active bool

	Scope  Scope
	Target string

	Type  DiscountType
	Value money.Money

	StartsAt *time.Time
	EndsAt   *time.Time
	Days     []time.Weekday
	TimeFrom string // "HH:MM", inclusive lower bound when set
	TimeTo   string // "HH:MM", inclusive upper bound when set

	MinSpend    *money.Money
	MinQty      *int64
	MaxDiscount *money.Money
	Stackable   bool
	Priority    int
	IncludeSKUs []string
	ExcludeSKUs []string
}

// Line is the priced order line the resolver works over. It carries the
// product attributes every scope kind can match against.
type Line struct {
	ProductID    uuid.UUID
	SKU          string
	CategoryID   string
	Category     string
	Brand        string
	SupplierID   string
	SupplierName string
	ParentID     string
	Qty          int64
	LineTotal    money.Money
}
