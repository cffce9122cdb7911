package engine

import (
	"time"

	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

var testClock = fixedClock{at: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func tick(pair, base, quoteCur, bid, ask string) quote.BidAsk {
	return quote.BidAsk{
		AssetPair: pair,
		Base:      base,
		Quote:     quoteCur,
		Bid:       d(bid),
		Ask:       d(ask),
		Date:      testClock.at,
	}
}

// eurUSDCache holds a single direct instrument with USD collateral on
// both legs.
func eurUSDCache() *quote.Cache {
	c := quote.NewCache()
	c.Upsert(tick("EURUSD", "EUR", "USD", "1.0686", "1.0688"))
	return c
}

// gbpCADCache holds the cross-instrument setup: the asset pair plus the
// two USD conversion legs.
func gbpCADCache() *quote.Cache {
	c := quote.NewCache()
	c.Upsert(tick("GBPCAD", "GBP", "CAD", "1.64432", "1.64447"))
	c.Upsert(tick("GBPUSD", "GBP", "USD", "1.24800", "1.24820"))
	c.Upsert(tick("USDCAD", "USD", "CAD", "1.34398", "1.34420"))
	return c
}

func eurUSDCommand(side position.Side) OpenCommand {
	return OpenCommand{
		ID:             "pos-1",
		TraderID:       "trader-1",
		AccountID:      "acc-1",
		AssetPair:      "EURUSD",
		Base:           "EUR",
		Quote:          "USD",
		Collateral:     "USD",
		Side:           side,
		InvestAmount:   d("1000"),
		Leverage:       d("20"),
		StopOutPercent: d("80"),
		ProcessID:      "proc-1",
	}
}

func gbpCADCommand(side position.Side) OpenCommand {
	cmd := eurUSDCommand(side)
	cmd.AssetPair = "GBPCAD"
	cmd.Base = "GBP"
	cmd.Quote = "CAD"
	return cmd
}

// activeAt builds an already-open position with the given invest and
// profit, bypassing the pricing legs. Used by the margin tests, which
// only read invest, topping-up and profit.
func activeAt(invest, profit string) *position.Active {
	return &position.Active{
		Base: position.BaseData{
			ID:           "pos-1",
			TraderID:     "trader-1",
			AccountID:    "acc-1",
			InvestAmount: d(invest),
			Leverage:     d("20"),
		},
		State: position.ActiveState{
			Profit: d(profit),
		},
	}
}
