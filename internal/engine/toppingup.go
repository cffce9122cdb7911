package engine

import (
	"fmt"

	"mtengine/internal/position"

	"github.com/shopspring/decimal"
)

// minReturnableBalance guards against churning dust back and forth when a
// topping-up balance has been almost fully returned.
var minReturnableBalance = decimal.RequireFromString("0.01")

// ToppingUpAmount is the configured per-call topping-up transfer for the
// position: the topping-up percent applied to the initial invest. Returns
// false when topping-up is not configured.
func ToppingUpAmount(p *position.Active) (decimal.Decimal, bool) {
	if p.Base.ToppingUpPercent == nil {
		return decimal.Decimal{}, false
	}
	amt := p.Base.ToppingUpPercent.Mul(p.Base.InvestAmount).Div(decimal.NewFromInt(100))
	return amt, true
}

// ApplyToppingUp adds funds to the position's topping-up balance and
// refreshes the margin-call flag, which the extra funds may have cleared.
func ApplyToppingUp(p *position.Active, amount decimal.Decimal) {
	balance := amount
	if p.State.ToppingUp != nil {
		balance = p.State.ToppingUp.Add(amount)
	}
	p.State.ToppingUp = &balance
	UpdateMarginCallHit(p)
}

// ReturnToppingUp takes funds back out of the topping-up balance. Callers
// must have checked CanReturnToppingUpFunds first; draining a missing or
// insufficient balance is a bookkeeping bug, not a market condition, so
// it panics.
func ReturnToppingUp(p *position.Active, amount decimal.Decimal) {
	if p.State.ToppingUp == nil {
		panic(fmt.Sprintf("position %s: returning topping-up funds with no balance", p.Base.ID))
	}
	if p.State.ToppingUp.LessThan(amount) {
		panic(fmt.Sprintf("position %s: returning %s from topping-up balance %s",
			p.Base.ID, amount, p.State.ToppingUp))
	}
	balance := p.State.ToppingUp.Sub(amount)
	p.State.ToppingUp = &balance
	UpdateMarginCallHit(p)
}

// CanReturnToppingUpFunds reports whether one topping-up transfer can be
// given back without re-arming the margin call. It simulates the balance
// after the return and checks the resulting margin percent against the
// margin-call threshold.
func CanReturnToppingUpFunds(p *position.Active) bool {
	if p.Base.MarginCallPercent == nil {
		return false
	}
	if p.State.ToppingUp == nil || p.State.ToppingUp.LessThan(minReturnableBalance) {
		return false
	}
	amount, ok := ToppingUpAmount(p)
	if !ok {
		return false
	}

	total := TotalInvest(p)
	after := total.Sub(amount)
	if !after.IsPositive() {
		return false
	}
	hundred := decimal.NewFromInt(100)
	percentAfter := hundred.Sub(total.Add(p.State.Profit).Sub(amount).Div(after).Mul(hundred))
	return percentAfter.LessThanOrEqual(*p.Base.MarginCallPercent)
}
