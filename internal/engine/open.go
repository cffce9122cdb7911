package engine

import (
	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
)

// OpenCommand carries everything needed to open a position directly into
// the active state. Pending is set when the open is the execution of a
// pending order, so the originating parameters stay with the position for
// audit.
type OpenCommand struct {
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

	ProcessID string
	Pending   *position.PendingState
	Metadata  map[string]string
}

// OpenPosition builds an active position from the command and the current
// quotes. It needs a direct quote for the instrument and, when collateral
// differs from base or quote, a quote relating the respective currencies
// in either orientation; otherwise it fails with ErrNoLiquidity. The
// returned position is fully priced: profit is recomputed before it is
// handed back.
func OpenPosition(cmd OpenCommand, quotes *quote.Cache, clk Clock) (*position.Active, error) {
	assetQuote, ok := quotes.GetByID(cmd.AssetPair)
	if !ok {
		return nil, ErrNoLiquidity
	}

	baseCollPrice, baseCollQuote, err := baseCollateralOpenPrice(quotes, cmd.Base, cmd.Collateral, cmd.Side)
	if err != nil {
		return nil, err
	}
	quoteCollPrice, quoteCollQuote, err := quoteCollateralClosePrice(quotes, cmd.Quote, cmd.Collateral, cmd.Side)
	if err != nil {
		return nil, err
	}

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

	state := position.ActiveState{
		Open: position.OpenData{
			AssetOpenPrice:          OpenPrice(assetQuote, cmd.Side),
			AssetOpenQuote:          *assetQuote,
			BaseCollateralOpenPrice: baseCollPrice,
			BaseCollateralOpenQuote: baseCollQuote,
			OpenProcessID:           cmd.ProcessID,
			OpenDate:                now,
			Pending:                 cmd.Pending,
		},
		AssetPrice:           ClosePrice(assetQuote, cmd.Side),
		AssetQuote:           *assetQuote,
		QuoteCollateralPrice: quoteCollPrice,
		QuoteCollateralQuote: quoteCollQuote,
		Profit:               decimal.Zero,
	}

	p := &position.Active{Base: base, State: state}
	UpdateProfit(p)
	return p, nil
}
