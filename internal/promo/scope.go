package promo

import "strings"

// MatchesLine reports whether the promotion's scope/target selects the line.
// ORDER matches every line. Any other scope with an empty target matches
// nothing: a misconfigured promotion must never silently apply everywhere.
func (p Promotion) MatchesLine(l Line) bool {
	if p.Scope == ScopeOrder {
		return true
	}
	target := strings.TrimSpace(p.Target)
	if target == "" {
		return false
	}
	switch p.Scope {
	case ScopeProduct:
		return strings.EqualFold(target, l.SKU) || strings.EqualFold(target, l.ProductID.String())
	case ScopeCategory:
		return equalNonEmptyFold(target, l.CategoryID) || equalNonEmptyFold(target, l.Category)
	case ScopeBrand:
		return equalNonEmptyFold(target, l.Brand)
	case ScopeSupplier:
		return equalNonEmptyFold(target, l.SupplierID) || equalNonEmptyFold(target, l.SupplierName)
	case ScopeParent:
		return equalNonEmptyFold(target, l.ParentID)
	default:
		return false
	}
}

func equalNonEmptyFold(target, value string) bool {
	return value != "" && strings.EqualFold(target, value)
}
