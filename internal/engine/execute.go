package engine

import (
	"mtengine/internal/position"
	"mtengine/internal/quote"
)

// ExecutePendingPosition turns a triggered pending order into an active
// position at the current market. All three pricing legs are resolved
// fresh at execution time; a missing conversion quote fails the execution
// with ErrNoLiquidity and the order stays pending. The originating
// pending parameters are retained on the open snapshot.
func ExecutePendingPosition(p *position.Pending, quotes *quote.Cache, processID string, clk Clock) (*position.Active, error) {
	assetQuote, ok := quotes.GetByID(p.Base.AssetPair)
	if !ok {
		return nil, ErrNoLiquidity
	}

	baseCollPrice, baseCollQuote, err := baseCollateralOpenPrice(quotes, p.Base.Base, p.Base.Collateral, p.Base.Side)
	if err != nil {
		return nil, err
	}
	quoteCollPrice, quoteCollQuote, err := quoteCollateralClosePrice(quotes, p.Base.Quote, p.Base.Collateral, p.Base.Side)
	if err != nil {
		return nil, err
	}

	now := clk.Now()
	base := p.Base
	base.LastUpdateProcessID = processID
	base.LastUpdateDate = now

	pending := p.State
	active := &position.Active{
		Base: base,
		State: position.ActiveState{
			Open: position.OpenData{
				AssetOpenPrice:          OpenPrice(assetQuote, base.Side),
				AssetOpenQuote:          *assetQuote,
				BaseCollateralOpenPrice: baseCollPrice,
				BaseCollateralOpenQuote: baseCollQuote,
				OpenProcessID:           processID,
				OpenDate:                now,
				Pending:                 &pending,
			},
			AssetPrice:           ClosePrice(assetQuote, base.Side),
			AssetQuote:           *assetQuote,
			QuoteCollateralPrice: quoteCollPrice,
			QuoteCollateralQuote: quoteCollQuote,
		},
	}
	UpdateProfit(active)
	return active, nil
}
