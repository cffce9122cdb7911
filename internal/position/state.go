package position

import (
	"time"

	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
)

// OrderType classifies a pending order relative to the market price at
// creation time.
type OrderType int

const (
	BuyStop OrderType = iota
	BuyLimit
	SellStop
	SellLimit
)

func (t OrderType) String() string {
	switch t {
	case BuyStop:
		return "BuyStop"
	case BuyLimit:
		return "BuyLimit"
	case SellStop:
		return "SellStop"
	case SellLimit:
		return "SellLimit"
	}
	return "Unknown"
}

// PendingState is a position waiting for the market to reach its desired
// open price.
type PendingState struct {
	DesiredPrice decimal.Decimal
	OrderType    OrderType
}

func (PendingState) indexesCollateral() bool { return false }

// OpenData is the snapshot captured when a position becomes active. It is
// immutable for the lifetime of the position.
type OpenData struct {
	AssetOpenPrice decimal.Decimal
	AssetOpenQuote quote.BidAsk

	// Base↔collateral conversion captured at open. The quote is nil when
	// collateral equals the base currency (rate 1.0, nothing to convert).
	BaseCollateralOpenPrice decimal.Decimal
	BaseCollateralOpenQuote *quote.BidAsk

	OpenProcessID string
	OpenDate      time.Time

	// Pending retains the originating pending parameters for audit when
	// the position went through a pending stage.
	Pending *PendingState
}

// ActiveState is a live position: the open snapshot plus the mutable
// repricing legs, running profit and margin bookkeeping.
type ActiveState struct {
	Open OpenData

	AssetPrice decimal.Decimal
	AssetQuote quote.BidAsk

	// Quote↔collateral conversion, refreshed on every relevant tick. The
	// quote is nil when collateral equals the quote currency.
	QuoteCollateralPrice decimal.Decimal
	QuoteCollateralQuote *quote.BidAsk

	Profit decimal.Decimal
	Swaps  Swaps

	ToppingUp     *decimal.Decimal
	MarginCallHit bool
}

func (ActiveState) indexesCollateral() bool { return true }

// CloseReason records why an active position was closed.
type CloseReason int

const (
	CloseClientCommand CloseReason = iota
	CloseStopOut
	CloseTakeProfit
	CloseStopLoss
	CloseForce
)

func (r CloseReason) String() string {
	switch r {
	case CloseClientCommand:
		return "ClientCommand"
	case CloseStopOut:
		return "StopOut"
	case CloseTakeProfit:
		return "TakeProfit"
	case CloseStopLoss:
		return "StopLoss"
	case CloseForce:
		return "ForceClose"
	}
	return "Unknown"
}

// ClosedState is terminal: the final active snapshot plus the closing
// price, time and reason. Closed positions are never mutated.
type ClosedState struct {
	Active ActiveState

	AssetClosePrice decimal.Decimal
	AssetCloseQuote quote.BidAsk
	CloseDate       time.Time
	CloseProcessID  string
	Reason          CloseReason
}

func (ClosedState) indexesCollateral() bool { return true }
