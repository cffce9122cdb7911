package engine

import (
	"mtengine/internal/position"

	"github.com/shopspring/decimal"
)

// TotalInvest is the position's own funds at risk: the initial invest
// plus whatever has been topped up since.
func TotalInvest(p *position.Active) decimal.Decimal {
	total := p.Base.InvestAmount
	if p.State.ToppingUp != nil {
		total = total.Add(*p.State.ToppingUp)
	}
	return total
}

// marginPercent is the share of the position's own funds eaten by losses,
// in percent. Positive profit keeps it at or below zero.
func marginPercent(p *position.Active) decimal.Decimal {
	total := TotalInvest(p)
	if total.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return hundred.Sub(total.Add(p.State.Profit).Div(total).Mul(hundred))
}

// MarginCallHit reports whether the position is currently past its
// margin-call threshold. Positions without a configured threshold never
// hit it.
func MarginCallHit(p *position.Active) bool {
	if p.Base.MarginCallPercent == nil {
		return false
	}
	return marginPercent(p).GreaterThanOrEqual(*p.Base.MarginCallPercent)
}

// UpdateMarginCallHit stores the current margin-call condition on the
// position and reports whether the flag changed. The edge-triggered
// return lets the caller notify once per crossing, in either direction,
// instead of on every tick past the threshold.
func UpdateMarginCallHit(p *position.Active) bool {
	hit := MarginCallHit(p)
	changed := hit != p.State.MarginCallHit
	p.State.MarginCallHit = hit
	return changed
}
