package loyalty

import (
	"github.com/shopspring/decimal"
)

// PointsPolicy computes the points earned for a sale total under a tier
// multiplier.
type PointsPolicy func(saleTotal, multiplier decimal.Decimal) int64

// DefaultPointUnit is the spend that earns one base point.
var DefaultPointUnit = decimal.NewFromInt(1000)

// ProportionalPolicy awards floor(saleTotal / unit × multiplier) points.
// Non-positive totals or units earn nothing.
func ProportionalPolicy(unit decimal.Decimal) PointsPolicy {
	return func(saleTotal, multiplier decimal.Decimal) int64 {
		if !unit.IsPositive() || !saleTotal.IsPositive() || !multiplier.IsPositive() {
			return 0
		}
		return saleTotal.Mul(multiplier).Div(unit).Floor().IntPart()
	}
}

// Engine combines a tier table with a points policy. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	table  *Table
	policy PointsPolicy
}

// NewEngine builds an Engine. Nil arguments fall back to the default table and
// the proportional policy with DefaultPointUnit.
func NewEngine(table *Table, policy PointsPolicy) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	if policy == nil {
		policy = ProportionalPolicy(DefaultPointUnit)
	}
	return &Engine{table: table, policy: policy}
}

// TierFor resolves the tier for a cumulative spend.
func (e *Engine) TierFor(totalSpent decimal.Decimal) Tier {
	return e.table.TierFor(totalSpent)
}

// PointsEarned applies the policy to a sale total for the given tier.
func (e *Engine) PointsEarned(saleTotal decimal.Decimal, tier Tier) int64 {
	return e.policy(saleTotal, tier.PointMultiplier)
}

// Table returns the engine's tier table.
func (e *Engine) Table() *Table {
	return e.table
}
