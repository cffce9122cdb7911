package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidAsk is a single market quote for an instrument pair. Values are
// immutable once published to the Cache: updates replace the whole quote,
// so a *BidAsk handed out by the cache can be shared freely between
// readers.
type BidAsk struct {
	AssetPair string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Base      string
	Quote     string
	Date      time.Time
}

// Reverse returns the quote seen from the opposite orientation: base and
// quote swapped, bid'=1/bid and ask'=1/ask. The prices are deliberately
// not re-sorted, so the reversed "bid" can exceed the reversed "ask".
// Downstream conversion code relies on this exact transform.
func (b *BidAsk) Reverse() *BidAsk {
	return &BidAsk{
		AssetPair: b.AssetPair,
		Bid:       decimal.New(1, 0).Div(b.Bid),
		Ask:       decimal.New(1, 0).Div(b.Ask),
		Base:      b.Quote,
		Quote:     b.Base,
		Date:      b.Date,
	}
}
