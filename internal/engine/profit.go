package engine

import (
	"mtengine/internal/position"
)

// UpdateProfit recomputes the running profit of an active position from
// the prices currently stored on it.
//
// The notional volume is invest × leverage, expressed in the base
// currency. It is first converted into collateral through the
// base↔collateral leg captured at open, then the price move on the asset
// leg is applied, and the result is converted from the quote currency
// into collateral through the live quote↔collateral leg. The orientation
// of each conversion quote decides whether the rate multiplies or
// divides. Accrued swaps are added on top, and the sign of the side makes
// a Sell profit from a falling price.
func UpdateProfit(p *position.Active) {
	volume := p.Base.InvestAmount.Mul(p.Base.Leverage)

	collateralAmount := volume
	if oq := p.State.Open.BaseCollateralOpenQuote; oq != nil {
		if p.Base.Collateral != oq.Quote {
			collateralAmount = volume.Mul(p.State.Open.BaseCollateralOpenPrice)
		} else {
			collateralAmount = volume.Div(p.State.Open.BaseCollateralOpenPrice)
		}
	}

	priceChange := p.State.AssetPrice.Sub(p.State.Open.AssetOpenPrice)
	pl := collateralAmount.Mul(priceChange)

	if qq := p.State.QuoteCollateralQuote; qq != nil {
		if p.Base.Quote != qq.Quote {
			pl = pl.Mul(p.State.QuoteCollateralPrice)
		} else {
			pl = pl.Div(p.State.QuoteCollateralPrice)
		}
	}

	p.State.Profit = pl.Mul(p.Base.Side.Sign()).Add(p.State.Swaps.Total)
}
