package engine

import (
	"mtengine/internal/position"
)

// CloseReasonFor inspects an active position at its current prices and
// returns the reason it must be closed, if any. Stop-out dominates the
// client-set limits, and stop-loss dominates take-profit when both would
// fire on the same tick.
func CloseReasonFor(p *position.Active) (position.CloseReason, bool) {
	if marginPercent(p).GreaterThanOrEqual(p.Base.StopOutPercent) {
		return position.CloseStopOut, true
	}
	if stopLossHit(p) {
		return position.CloseStopLoss, true
	}
	if takeProfitHit(p) {
		return position.CloseTakeProfit, true
	}
	return 0, false
}

// stopLossHit checks both flavors of stop-loss: a profit floor (stored
// non-positive by SanitizeLimits) and a price level, which a Buy breaches
// from above and a Sell from below.
func stopLossHit(p *position.Active) bool {
	if limit := p.Base.StopLossProfit; limit != nil {
		if p.State.Profit.LessThanOrEqual(*limit) {
			return true
		}
	}
	if price := p.Base.StopLossPrice; price != nil {
		if p.Base.Side == position.Buy {
			return p.State.AssetPrice.LessThanOrEqual(*price)
		}
		return p.State.AssetPrice.GreaterThanOrEqual(*price)
	}
	return false
}

// takeProfitHit mirrors stopLossHit for the profit ceiling and the
// favorable price level.
func takeProfitHit(p *position.Active) bool {
	if limit := p.Base.TakeProfitProfit; limit != nil {
		if p.State.Profit.GreaterThanOrEqual(*limit) {
			return true
		}
	}
	if price := p.Base.TakeProfitPrice; price != nil {
		if p.Base.Side == position.Buy {
			return p.State.AssetPrice.GreaterThanOrEqual(*price)
		}
		return p.State.AssetPrice.LessThanOrEqual(*price)
	}
	return false
}
