package engine

import (
	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
)

// OpenPrice is the side of the book a position trades through when it
// opens: a Buy lifts the ask, a Sell hits the bid.
func OpenPrice(b *quote.BidAsk, side position.Side) decimal.Decimal {
	if side == position.Buy {
		return b.Ask
	}
	return b.Bid
}

// ClosePrice is the opposite side, used for marking an open position to
// market and for closing it.
func ClosePrice(b *quote.BidAsk, side position.Side) decimal.Decimal {
	if side == position.Buy {
		return b.Bid
	}
	return b.Ask
}

// anyQuote resolves a quote relating two currencies in whichever
// orientation the cache holds it, without inverting. The conversion code
// downstream reads the orientation off the returned quote.
func anyQuote(quotes *quote.Cache, a, b string) (*quote.BidAsk, bool) {
	if direct, ok := quotes.GetBaseQuote(a, b); ok {
		return direct, true
	}
	if inverse, ok := quotes.GetQuoteBase(a, b); ok {
		return inverse, true
	}
	return nil, false
}

// baseCollateralOpenPrice captures the base↔collateral conversion leg at
// the order's opening side. With collateral equal to the base currency
// there is nothing to convert: rate 1.0, no snapshot.
func baseCollateralOpenPrice(quotes *quote.Cache, base, collateral string, side position.Side) (decimal.Decimal, *quote.BidAsk, error) {
	if collateral == base {
		return decimal.NewFromInt(1), nil, nil
	}
	src, ok := anyQuote(quotes, collateral, base)
	if !ok {
		return decimal.Decimal{}, nil, ErrNoLiquidity
	}
	return OpenPrice(src, side), src, nil
}

// quoteCollateralClosePrice captures the quote↔collateral conversion leg
// at the closing side, the side profit is realized through.
func quoteCollateralClosePrice(quotes *quote.Cache, quoteCur, collateral string, side position.Side) (decimal.Decimal, *quote.BidAsk, error) {
	if collateral == quoteCur {
		return decimal.NewFromInt(1), nil, nil
	}
	src, ok := anyQuote(quotes, collateral, quoteCur)
	if !ok {
		return decimal.Decimal{}, nil, ErrNoLiquidity
	}
	return ClosePrice(src, side), src, nil
}
