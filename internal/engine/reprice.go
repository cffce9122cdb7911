package engine

import (
	"mtengine/internal/position"
	"mtengine/internal/quote"
)

// UpdateAssetPrice reprices the asset leg of an active position from a
// fresh quote for its instrument. The caller matches ticks to positions;
// a quote for a different pair is ignored.
func UpdateAssetPrice(p *position.Active, b quote.BidAsk) {
	if b.AssetPair != p.Base.AssetPair {
		return
	}
	p.State.AssetPrice = ClosePrice(&b, p.Base.Side)
	p.State.AssetQuote = b
}

// UpdateRate refreshes the quote↔collateral conversion leg from a tick.
// The tick counts only when it actually relates the position's quote and
// collateral currencies. Held in the direct orientation it replaces the
// leg as is; held inverted it is flipped with Reverse first, so the
// multiply-or-divide decision in the profit formula keeps reading the
// orientation off the stored snapshot. Unrelated ticks leave the leg
// untouched.
func UpdateRate(p *position.Active, b quote.BidAsk) {
	if p.State.QuoteCollateralQuote == nil {
		return
	}
	cur := p.State.QuoteCollateralQuote
	switch {
	case b.Base == cur.Base && b.Quote == cur.Quote:
		p.State.QuoteCollateralPrice = ClosePrice(&b, p.Base.Side)
		p.State.QuoteCollateralQuote = &b
	case b.Base == cur.Quote && b.Quote == cur.Base:
		rev := b.Reverse()
		p.State.QuoteCollateralPrice = ClosePrice(rev, p.Base.Side)
		p.State.QuoteCollateralQuote = rev
	}
}
