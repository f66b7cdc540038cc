package promo

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-grosir/internal/money"
)

// Input is the immutable snapshot the resolver prices against.
type Input struct {
	Lines      []Line
	Subtotal   money.Money
	Promotions []Promotion
	Now        time.Time
}

// Breakdown is the resolved discount with enough detail for auditing.
type Breakdown struct {
	FlatID          *uuid.UUID
	FlatAmount      money.Money
	StackableIDs    []uuid.UUID
	StackableSum    money.Money
	ExclusiveID     *uuid.UUID
	ExclusiveAmount money.Money
	DiscountTotal   money.Money
	Total           money.Money
}

type candidate struct {
	promo  Promotion
	amount money.Money
}

// Resolve evaluates every live promotion against the priced lines and
// combines the best flat discount with the rule total, capped at the
// subtotal. Promotions are sorted by id up front so full ties between
// exclusive rules break deterministically on the smallest id.
func Resolve(in Input) Breakdown {
	promos := make([]Promotion, len(in.Promotions))
	copy(promos, in.Promotions)
	sort.Slice(promos, func(i, j int) bool {
		return promos[i].ID.String() < promos[j].ID.String()
	})

	var out Breakdown
	var bestFlat, bestExclusive *candidate

	for _, p := range promos {
		if !p.ActiveAt(in.Now) {
			continue
		}
		switch p.Kind {
		case KindFlat:
			c, ok := flatCandidate(p, in.Lines)
			if ok && betterFlat(c, bestFlat) {
				bestFlat = &c
			}
		case KindRule:
			c, ok := ruleCandidate(p, in.Lines)
			if !ok {
				continue
			}
			if p.Stackable {
				out.StackableIDs = append(out.StackableIDs, p.ID)
				out.StackableSum = out.StackableSum.Add(c.amount)
			} else if betterExclusive(c, bestExclusive) {
				bestExclusive = &c
			}
		}
	}

	if bestFlat != nil {
		id := bestFlat.promo.ID
		out.FlatID = &id
		out.FlatAmount = bestFlat.amount
	}
	if bestExclusive != nil {
		id := bestExclusive.promo.ID
		out.ExclusiveID = &id
		out.ExclusiveAmount = bestExclusive.amount
	}

	out.DiscountTotal = out.FlatAmount.Add(out.StackableSum).Add(out.ExclusiveAmount).Min(in.Subtotal)
	if out.DiscountTotal.IsNegative() {
		out.DiscountTotal = money.Zero()
	}
	out.Total = in.Subtotal.Sub(out.DiscountTotal)
	return out
}

// flatCandidate computes the discount a flat promotion would grant, or
// reports it does not qualify.
func flatCandidate(p Promotion, lines []Line) (candidate, bool) {
	matched := matchedLines(p, lines)
	if len(matched) == 0 {
		return candidate{}, false
	}
	matchedSubtotal := sumLineTotals(matched)
	if p.MinSpend != nil && matchedSubtotal.LessThan(*p.MinSpend) {
		return candidate{}, false
	}
	amount := discountAmount(p, matchedSubtotal)
	if !amount.IsPositive() {
		return candidate{}, false
	}
	return candidate{promo: p, amount: amount}, true
}

// ruleCandidate computes the capped discount a rule would grant, or reports
// it does not qualify.
func ruleCandidate(p Promotion, lines []Line) (candidate, bool) {
	matched := matchedLines(p, lines)
	matched = filterSKUs(matched, p.IncludeSKUs, p.ExcludeSKUs)
	if len(matched) == 0 {
		return candidate{}, false
	}
	if p.MinQty != nil && sumQty(matched) < *p.MinQty {
		return candidate{}, false
	}
	matchedSubtotal := sumLineTotals(matched)
	if p.MinSpend != nil && matchedSubtotal.LessThan(*p.MinSpend) {
		return candidate{}, false
	}
	amount := discountAmount(p, matchedSubtotal)
	if p.MaxDiscount != nil {
		amount = amount.Min(*p.MaxDiscount)
	}
	if !amount.IsPositive() {
		return candidate{}, false
	}
	return candidate{promo: p, amount: amount}, true
}

// betterFlat keeps the single largest amount; the previous winner survives a
// tie so the smallest id (input is id-sorted) wins.
func betterFlat(next candidate, current *candidate) bool {
	if current == nil {
		return true
	}
	return next.amount.GreaterThan(current.amount)
}

// betterExclusive prefers strictly higher priority, then strictly higher
// capped amount; the previous winner survives a full tie.
func betterExclusive(next candidate, current *candidate) bool {
	if current == nil {
		return true
	}
	if next.promo.Priority != current.promo.Priority {
		return next.promo.Priority > current.promo.Priority
	}
	return next.amount.GreaterThan(current.amount)
}

func discountAmount(p Promotion, matchedSubtotal money.Money) money.Money {
	if p.Type == TypePercent {
		return matchedSubtotal.Percent(p.Value).Round2()
	}
	return p.Value
}

func matchedLines(p Promotion, lines []Line) []Line {
	if p.Scope == ScopeOrder {
		return lines
	}
	var matched []Line
	for _, l := range lines {
		if p.MatchesLine(l) {
			matched = append(matched, l)
		}
	}
	return matched
}

func filterSKUs(lines []Line, include, exclude []string) []Line {
	if len(include) == 0 && len(exclude) == 0 {
		return lines
	}
	var kept []Line
	for _, l := range lines {
		if len(include) > 0 && !skuIn(include, l.SKU) {
			continue
		}
		if skuIn(exclude, l.SKU) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

func skuIn(skus []string, sku string) bool {
	for _, s := range skus {
		if strings.EqualFold(s, sku) {
			return true
		}
	}
	return false
}

func sumLineTotals(lines []Line) money.Money {
	total := money.Zero()
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

func sumQty(lines []Line) int64 {
	var qty int64
	for _, l := range lines {
		qty += l.Qty
	}
	return qty
}
