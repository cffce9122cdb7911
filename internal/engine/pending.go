package engine

import (
	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
)

// PendingCommand creates a pending order: a position that opens only when
// the market reaches the desired price.
type PendingCommand struct {
	ID        string
	TraderID  string
	AccountID string

	AssetPair  string
	Base       string
	Quote      string
	Collateral string
	Side       position.Side

	InvestAmount   decimal.Decimal
	Leverage       decimal.Decimal
	StopOutPercent decimal.Decimal

	MarginCallPercent *decimal.Decimal
	ToppingUpPercent  *decimal.Decimal

	TakeProfitProfit *decimal.Decimal
	TakeProfitPrice  *decimal.Decimal
	StopLossProfit   *decimal.Decimal
	StopLossPrice    *decimal.Decimal

	DesiredPrice decimal.Decimal
	ProcessID    string
	Metadata     map[string]string
}

// classifyOrderType derives the order type from where the desired price
// sits relative to the market at creation time. A Buy above the market is
// a stop, below (or at) it a limit; Sell mirrors that.
func classifyOrderType(current, desired decimal.Decimal, side position.Side) position.OrderType {
	if side == position.Buy {
		if desired.GreaterThan(current) {
			return position.BuyStop
		}
		return position.BuyLimit
	}
	if desired.GreaterThan(current) {
		return position.SellLimit
	}
	return position.SellStop
}

// CreatePendingPosition registers a pending order against the current
// market. The instrument must already be quoted, otherwise the order type
// cannot be classified and the command fails with ErrNoLiquidity.
func CreatePendingPosition(cmd PendingCommand, quotes *quote.Cache, clk Clock) (*position.Pending, error) {
	assetQuote, ok := quotes.GetByID(cmd.AssetPair)
	if !ok {
		return nil, ErrNoLiquidity
	}
	current := OpenPrice(assetQuote, cmd.Side)

	now := clk.Now()
	base := position.BaseData{
		ID:                  cmd.ID,
		TraderID:            cmd.TraderID,
		AccountID:           cmd.AccountID,
		AssetPair:           cmd.AssetPair,
		Base:                cmd.Base,
		Quote:               cmd.Quote,
		Collateral:          cmd.Collateral,
		Side:                cmd.Side,
		InvestAmount:        cmd.InvestAmount,
		Leverage:            cmd.Leverage,
		StopOutPercent:      cmd.StopOutPercent,
		MarginCallPercent:   cmd.MarginCallPercent,
		ToppingUpPercent:    cmd.ToppingUpPercent,
		TakeProfitProfit:    cmd.TakeProfitProfit,
		TakeProfitPrice:     cmd.TakeProfitPrice,
		StopLossProfit:      cmd.StopLossProfit,
		StopLossPrice:       cmd.StopLossPrice,
		CreateProcessID:     cmd.ProcessID,
		CreateDate:          now,
		LastUpdateProcessID: cmd.ProcessID,
		LastUpdateDate:      now,
		Metadata:            cmd.Metadata,
	}
	base.SanitizeLimits()

	return &position.Pending{
		Base: base,
		State: position.PendingState{
			DesiredPrice: cmd.DesiredPrice,
			OrderType:    classifyOrderType(current, cmd.DesiredPrice, cmd.Side),
		},
	}, nil
}

// ReadyToExecute reports whether a tick for the order's instrument brings
// the market to its desired price. Stops trigger when the opening side
// reaches the level from below for a Buy and from above for a Sell;
// limits trigger from the opposite direction. Touching the level exactly
// counts.
func ReadyToExecute(p *position.Pending, b *quote.BidAsk) bool {
	desired := p.State.DesiredPrice
	switch p.State.OrderType {
	case position.BuyStop:
		return OpenPrice(b, position.Buy).GreaterThanOrEqual(desired)
	case position.BuyLimit:
		return OpenPrice(b, position.Buy).LessThanOrEqual(desired)
	case position.SellStop:
		return OpenPrice(b, position.Sell).LessThanOrEqual(desired)
	case position.SellLimit:
		return OpenPrice(b, position.Sell).GreaterThanOrEqual(desired)
	}
	return false
}
