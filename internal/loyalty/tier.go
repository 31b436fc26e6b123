package loyalty

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier is one membership level.
type Tier struct {
	Name            string          `json:"name"`
	MinSpend        decimal.Decimal `json:"minSpend"`
	PointMultiplier decimal.Decimal `json:"pointMultiplier"`
	DiscountPct     decimal.Decimal `json:"discountPct"`
}

// Table is an immutable tier table sorted by MinSpend ascending. The lowest
// tier starts at zero so every spend value maps to exactly one tier.
type Table struct {
	tiers []Tier
}

// NewTable validates and sorts tiers. The input slice is not retained.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, errors.New("tier table is empty")
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinSpend.LessThan(sorted[j].MinSpend)
	})

	seen := make(map[string]struct{}, len(sorted))
	for i, t := range sorted {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("tier %d: name required", i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("tier %q: duplicate name", name)
		}
		seen[key] = struct{}{}
		if t.PointMultiplier.IsNegative() {
			return nil, fmt.Errorf("tier %q: point multiplier must not be negative", name)
		}
		if t.DiscountPct.IsNegative() || t.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("tier %q: discount must be within 0-100", name)
		}
		if i > 0 && t.MinSpend.Equal(sorted[i-1].MinSpend) {
			return nil, fmt.Errorf("tier %q: minimum spend %s already used by %q", name, t.MinSpend, sorted[i-1].Name)
		}
		sorted[i].Name = name
	}
	if !sorted[0].MinSpend.IsZero() {
		return nil, fmt.Errorf("lowest tier %q must start at 0, got %s", sorted[0].Name, sorted[0].MinSpend)
	}
	return &Table{tiers: sorted}, nil
}

// DefaultTable is the built-in membership table.
func DefaultTable() *Table {
	t, err := NewTable([]Tier{
		{Name: "regular", MinSpend: decimal.Zero, PointMultiplier: decimal.NewFromInt(1), DiscountPct: decimal.Zero},
		{Name: "silver", MinSpend: decimal.NewFromInt(1_000_000), PointMultiplier: decimal.RequireFromString("1.2"), DiscountPct: decimal.NewFromInt(5)},
		{Name: "gold", MinSpend: decimal.NewFromInt(5_000_000), PointMultiplier: decimal.RequireFromString("1.5"), DiscountPct: decimal.NewFromInt(10)},
		{Name: "platinum", MinSpend: decimal.NewFromInt(10_000_000), PointMultiplier: decimal.NewFromInt(2), DiscountPct: decimal.NewFromInt(15)},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// TierFor returns the tier with the highest threshold not exceeding
// totalSpent, scanning from the top. Negative spend maps to the floor tier.
func (t *Table) TierFor(totalSpent decimal.Decimal) Tier {
	for i := len(t.tiers) - 1; i >= 0; i-- {
		if t.tiers[i].MinSpend.LessThanOrEqual(totalSpent) {
			return t.tiers[i]
		}
	}
	return t.tiers[0]
}

// Tiers returns a copy of the table in ascending order.
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// DiscountFor returns the tier's discount percentage. It is exposed for a
// pricing layer; commits do not apply it.
func DiscountFor(tier Tier) decimal.Decimal {
	return tier.DiscountPct
}
