// Package position defines the margin position data model: shared base
// data plus exactly one of three state variants (pending, active, closed).
// State transitions are one-way, Pending→Active→Closed, and are performed
// by the engine package as whole-value transformations.
package position

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	}
	return "Unknown"
}

// Sign is +1 for Buy and -1 for Sell, the direction applied to raw price
// change when computing profit.
func (s Side) Sign() decimal.Decimal {
	if s == Sell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// BaseData carries the state-independent attributes of a position. It is
// owned together with the state by the Position value.
type BaseData struct {
	ID        string
	TraderID  string
	AccountID string

	AssetPair  string
	Base       string
	Quote      string
	Collateral string
	Side       Side

	InvestAmount   decimal.Decimal
	Leverage       decimal.Decimal
	StopOutPercent decimal.Decimal

	MarginCallPercent *decimal.Decimal
	ToppingUpPercent  *decimal.Decimal

	// Take-profit / stop-loss thresholds, each either in absolute profit
	// or in asset price. Profit thresholds are normalized at creation:
	// stop-loss negative, take-profit positive.
	TakeProfitProfit *decimal.Decimal
	TakeProfitPrice  *decimal.Decimal
	StopLossProfit   *decimal.Decimal
	StopLossPrice    *decimal.Decimal

	CreateProcessID     string
	CreateDate          time.Time
	LastUpdateProcessID string
	LastUpdateDate      time.Time

	Metadata map[string]string
}

// SanitizeLimits normalizes the signs of the profit thresholds regardless
// of how the caller supplied them.
func (b *BaseData) SanitizeLimits() {
	if b.StopLossProfit != nil && b.StopLossProfit.IsPositive() {
		neg := b.StopLossProfit.Neg()
		b.StopLossProfit = &neg
	}
	if b.TakeProfitProfit != nil && b.TakeProfitProfit.IsNegative() {
		pos := b.TakeProfitProfit.Neg()
		b.TakeProfitProfit = &pos
	}
}

// State is one of PendingState, ActiveState or ClosedState.
type State interface {
	indexesCollateral() bool
}

// Position binds base data to exactly one state variant.
type Position[S State] struct {
	Base  BaseData
	State S
}

type (
	Pending = Position[PendingState]
	Active  = Position[ActiveState]
	Closed  = Position[ClosedState]
)

// index.Indexable implementation. Pending positions are not indexed by
// collateral: the collateral leg only becomes meaningful at execution.

func (p *Position[S]) ID() string { return p.Base.ID }

func (p *Position[S]) BaseKey() (string, bool) { return p.Base.Base, true }

func (p *Position[S]) QuoteKey() (string, bool) { return p.Base.Quote, true }

func (p *Position[S]) CollateralKey() (string, bool) {
	if !p.State.indexesCollateral() {
		return "", false
	}
	return p.Base.Collateral, true
}

func (p *Position[S]) ClientKey() (string, bool) { return p.Base.TraderID, true }

func (p *Position[S]) AccountKey() (string, bool) { return p.Base.AccountID, true }
