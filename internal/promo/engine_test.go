package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/money"
)

var engineNow = time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)

func promoID(n byte) uuid.UUID {
	var b [16]byte
	for i := range b {
		b[i] = n
	}
	return uuid.UUID(b)
}

func orderLines(totals ...string) []Line {
	lines := make([]Line, 0, len(totals))
	for i, t := range totals {
		lines = append(lines, Line{
			SKU:       "SKU-" + string(rune('A'+i)),
			Qty:       1,
			LineTotal: money.MustParse(t),
		})
	}
	return lines
}

func mp(s string) *money.Money {
	m := money.MustParse(s)
	return &m
}

func TestResolveFlatPlusStackableRule(t *testing.T) {
	// Subtotal 100: 10% flat (10) + fixed 5 rule with minSpend 50 => 15, total 85.
	lines := orderLines("60", "40")
	in := Input{
		Lines:    lines,
		Subtotal: money.MustParse("100"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindFlat, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("10")},
			{ID: promoID(2), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("5"), MinSpend: mp("50"), Stackable: true},
		},
	}
	got := Resolve(in)
	if !got.DiscountTotal.Equal(money.MustParse("15")) {
		t.Fatalf("expected discount 15, got %s", got.DiscountTotal)
	}
	if !got.Total.Equal(money.MustParse("85")) {
		t.Fatalf("expected total 85, got %s", got.Total)
	}
}

func TestResolveStackingVersusExclusivity(t *testing.T) {
	// Two stackable rules of 5 each plus the higher-priority exclusive rule
	// of 20 beat the lower-priority 15: rules total 5+5+20 = 30.
	in := Input{
		Lines:    orderLines("200"),
		Subtotal: money.MustParse("200"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("5"), Stackable: true},
			{ID: promoID(2), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("5"), Stackable: true},
			{ID: promoID(3), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("20"), Priority: 10},
			{ID: promoID(4), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("15"), Priority: 5},
		},
	}
	got := Resolve(in)
	if !got.StackableSum.Equal(money.MustParse("10")) {
		t.Fatalf("expected stackable sum 10, got %s", got.StackableSum)
	}
	if got.ExclusiveID == nil || *got.ExclusiveID != promoID(3) {
		t.Fatalf("expected exclusive winner %s, got %v", promoID(3), got.ExclusiveID)
	}
	if !got.DiscountTotal.Equal(money.MustParse("30")) {
		t.Fatalf("expected rules total 30, got %s", got.DiscountTotal)
	}
}

func TestResolveUncappedRuleClampedBySubtotal(t *testing.T) {
	// Subtotal 20, one exclusive 90% rule: raw 18, discount 18, total 2.
	in := Input{
		Lines:    orderLines("20"),
		Subtotal: money.MustParse("20"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("90")},
		},
	}
	got := Resolve(in)
	if !got.DiscountTotal.Equal(money.MustParse("18")) {
		t.Fatalf("expected discount 18, got %s", got.DiscountTotal)
	}
	if !got.Total.Equal(money.MustParse("2")) {
		t.Fatalf("expected total 2, got %s", got.Total)
	}
}

func TestResolveDiscountNeverExceedsSubtotal(t *testing.T) {
	in := Input{
		Lines:    orderLines("30"),
		Subtotal: money.MustParse("30"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindFlat, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("25")},
			{ID: promoID(2), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("25")},
		},
	}
	got := Resolve(in)
	if !got.DiscountTotal.Equal(money.MustParse("30")) {
		t.Fatalf("discount must cap at subtotal, got %s", got.DiscountTotal)
	}
	if !got.Total.IsZero() {
		t.Fatalf("expected total 0, got %s", got.Total)
	}
}

func TestResolveBestFlatPicksNumericMaximum(t *testing.T) {
	in := Input{
		Lines:    orderLines("100"),
		Subtotal: money.MustParse("100"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindFlat, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("8")},
			{ID: promoID(2), Kind: KindFlat, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("10")},
			{ID: promoID(3), Kind: KindFlat, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("9"), MinSpend: mp("500")},
		},
	}
	got := Resolve(in)
	if got.FlatID == nil || *got.FlatID != promoID(2) {
		t.Fatalf("expected flat winner %s, got %v", promoID(2), got.FlatID)
	}
	if !got.FlatAmount.Equal(money.MustParse("10")) {
		t.Fatalf("expected flat amount 10, got %s", got.FlatAmount)
	}
}

func TestResolveRuleCap(t *testing.T) {
	in := Input{
		Lines:    orderLines("100"),
		Subtotal: money.MustParse("100"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("50"), MaxDiscount: mp("12.50")},
		},
	}
	got := Resolve(in)
	if !got.DiscountTotal.Equal(money.MustParse("12.50")) {
		t.Fatalf("expected capped discount 12.50, got %s", got.DiscountTotal)
	}
}

func TestResolveScopedRuleUsesMatchedSubtotal(t *testing.T) {
	lines := []Line{
		{SKU: "A-1", Brand: "AcmeCo", Qty: 2, LineTotal: money.MustParse("40")},
		{SKU: "B-1", Brand: "Globex", Qty: 1, LineTotal: money.MustParse("60")},
	}
	in := Input{
		Lines:    lines,
		Subtotal: money.MustParse("100"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindRule, Active: true, Scope: ScopeBrand, Target: "AcmeCo", Type: TypePercent, Value: money.MustParse("10")},
		},
	}
	got := Resolve(in)
	// 10% of the Acme lines only (40), not of the whole order.
	if !got.DiscountTotal.Equal(money.MustParse("4")) {
		t.Fatalf("expected discount 4, got %s", got.DiscountTotal)
	}
}

func TestResolveIncludeExcludeSKUFilters(t *testing.T) {
	lines := []Line{
		{SKU: "KEEP-1", Qty: 1, LineTotal: money.MustParse("50")},
		{SKU: "DROP-1", Qty: 1, LineTotal: money.MustParse("50")},
	}
	in := Input{
		Lines:    lines,
		Subtotal: money.MustParse("100"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("10"), IncludeSKUs: []string{"keep-1"}},
			{ID: promoID(2), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("10"), ExcludeSKUs: []string{"KEEP-1", "DROP-1"}},
		},
	}
	got := Resolve(in)
	// Rule 1 sees only KEEP-1 (5); rule 2 filtered down to nothing.
	if !got.ExclusiveAmount.Equal(money.MustParse("5")) {
		t.Fatalf("expected exclusive amount 5, got %s", got.ExclusiveAmount)
	}
}

func TestResolveMinQtyThreshold(t *testing.T) {
	minQty := int64(10)
	in := Input{
		Lines:    []Line{{SKU: "A", Qty: 3, LineTotal: money.MustParse("30")}},
		Subtotal: money.MustParse("30"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("5"), MinQty: &minQty},
		},
	}
	if got := Resolve(in); !got.DiscountTotal.IsZero() {
		t.Fatalf("rule below minQty must not apply, got %s", got.DiscountTotal)
	}
}

func TestResolveExclusiveTieBreaksOnSmallestID(t *testing.T) {
	a := Promotion{ID: promoID(9), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("10"), Priority: 1}
	b := Promotion{ID: promoID(2), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("10"), Priority: 1}
	for _, promos := range [][]Promotion{{a, b}, {b, a}} {
		in := Input{Lines: orderLines("100"), Subtotal: money.MustParse("100"), Now: engineNow, Promotions: promos}
		got := Resolve(in)
		if got.ExclusiveID == nil || *got.ExclusiveID != promoID(2) {
			t.Fatalf("tie must break on smallest id regardless of input order, got %v", got.ExclusiveID)
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	in := Input{
		Lines:    orderLines("33.30", "66.70"),
		Subtotal: money.MustParse("100"),
		Now:      engineNow,
		Promotions: []Promotion{
			{ID: promoID(1), Kind: KindFlat, Active: true, Scope: ScopeOrder, Type: TypePercent, Value: money.MustParse("7.5")},
			{ID: promoID(2), Kind: KindRule, Active: true, Scope: ScopeOrder, Type: TypeFixed, Value: money.MustParse("2"), Stackable: true},
		},
	}
	first := Resolve(in)
	second := Resolve(in)
	if !first.DiscountTotal.Equal(second.DiscountTotal) || !first.Total.Equal(second.Total) {
		t.Fatalf("same snapshot must price identically: %s vs %s", first.DiscountTotal, second.DiscountTotal)
	}
}

func TestResolveNoPromotions(t *testing.T) {
	in := Input{Lines: orderLines("10"), Subtotal: money.MustParse("10"), Now: engineNow}
	got := Resolve(in)
	if !got.DiscountTotal.IsZero() || !got.Total.Equal(money.MustParse("10")) {
		t.Fatalf("no promotions means zero discount, got %s / %s", got.DiscountTotal, got.Total)
	}
}
