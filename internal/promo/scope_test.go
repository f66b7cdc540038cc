package promo

import (
	"testing"

	"github.com/google/uuid"
)

func testLine() Line {
	return Line{
		ProductID:    uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		SKU:          "DRY-FOOD-01",
		CategoryID:   "cat-pet-food",
		Category:     "Pet Food",
		Brand:        "AcmeCo",
		SupplierID:   "sup-42",
		SupplierName: "Acme Distribution",
		ParentID:     "parent-9",
	}
}

func TestMatchesLineOrderScope(t *testing.T) {
	p := Promotion{Scope: ScopeOrder}
	if !p.MatchesLine(testLine()) {
		t.Fatalf("ORDER scope matches every line")
	}
	// ORDER is the only scope allowed to carry an empty target.
	p.Target = ""
	if !p.MatchesLine(Line{}) {
		t.Fatalf("ORDER scope with empty target still matches")
	}
}

func TestMatchesLineProduct(t *testing.T) {
	line := testLine()
	bySKU := Promotion{Scope: ScopeProduct, Target: "dry-food-01"}
	if !bySKU.MatchesLine(line) {
		t.Fatalf("PRODUCT scope should match SKU case-insensitively")
	}
	byID := Promotion{Scope: ScopeProduct, Target: line.ProductID.String()}
	if !byID.MatchesLine(line) {
		t.Fatalf("PRODUCT scope should match product id")
	}
	other := Promotion{Scope: ScopeProduct, Target: "OTHER-SKU"}
	if other.MatchesLine(line) {
		t.Fatalf("PRODUCT scope must not match a different SKU")
	}
}

func TestMatchesLineCategoryBrandSupplierParent(t *testing.T) {
	line := testLine()
	cases := []struct {
		name  string
		promo Promotion
		want  bool
	}{
		{"category id", Promotion{Scope: ScopeCategory, Target: "CAT-PET-FOOD"}, true},
		{"category name", Promotion{Scope: ScopeCategory, Target: "pet food"}, true},
		{"brand", Promotion{Scope: ScopeBrand, Target: "acmeco"}, true},
		{"brand mismatch", Promotion{Scope: ScopeBrand, Target: "OtherBrand"}, false},
		{"supplier id", Promotion{Scope: ScopeSupplier, Target: "SUP-42"}, true},
		{"supplier name", Promotion{Scope: ScopeSupplier, Target: "acme distribution"}, true},
		{"parent", Promotion{Scope: ScopeParent, Target: "PARENT-9"}, true},
		{"parent mismatch", Promotion{Scope: ScopeParent, Target: "parent-8"}, false},
	}
	for _, tc := range cases {
		if got := tc.promo.MatchesLine(line); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestMatchesLineEmptyTargetIsDefensive(t *testing.T) {
	line := testLine()
	for _, scope := range []Scope{ScopeProduct, ScopeCategory, ScopeBrand, ScopeSupplier, ScopeParent} {
		p := Promotion{Scope: scope, Target: "   "}
		if p.MatchesLine(line) {
			t.Fatalf("empty target on scope %s must match nothing", scope)
		}
	}
}

func TestMatchesLineEmptyProductFields(t *testing.T) {
	// A line with no parent must not match a PARENT promotion even when the
	// stored parent id is blank on both sides.
	p := Promotion{Scope: ScopeParent, Target: "parent-9"}
	if p.MatchesLine(Line{}) {
		t.Fatalf("line without parent must not match PARENT scope")
	}
}
