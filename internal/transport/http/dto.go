package httpapi

import (
	"fmt"
	"strings"
	"time"

	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
)

type tickRequest struct {
	AssetPair string          `json:"asset_pair" binding:"required"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Base      string          `json:"base" binding:"required"`
	Quote     string          `json:"quote" binding:"required"`
	Date      *time.Time      `json:"date"`
}

func (r tickRequest) toBidAsk() quote.BidAsk {
	b := quote.BidAsk{
		AssetPair: r.AssetPair,
		Bid:       r.Bid,
		Ask:       r.Ask,
		Base:      r.Base,
		Quote:     r.Quote,
	}
	if r.Date != nil {
		b.Date = *r.Date
	}
	return b
}

type openRequest struct {
	ID        string `json:"id"`
	TraderID  string `json:"trader_id" binding:"required"`
	AccountID string `json:"account_id" binding:"required"`

	AssetPair  string `json:"asset_pair" binding:"required"`
	Base       string `json:"base" binding:"required"`
	Quote      string `json:"quote" binding:"required"`
	Collateral string `json:"collateral" binding:"required"`
	Side       string `json:"side" binding:"required"`

	InvestAmount decimal.Decimal `json:"invest_amount"`
	Leverage     decimal.Decimal `json:"leverage"`

	StopOutPercent    *decimal.Decimal `json:"stop_out_percent"`
	MarginCallPercent *decimal.Decimal `json:"margin_call_percent"`
	ToppingUpPercent  *decimal.Decimal `json:"topping_up_percent"`

	TakeProfitProfit *decimal.Decimal `json:"take_profit_profit"`
	TakeProfitPrice  *decimal.Decimal `json:"take_profit_price"`
	StopLossProfit   *decimal.Decimal `json:"stop_loss_profit"`
	StopLossPrice    *decimal.Decimal `json:"stop_loss_price"`

	DesiredPrice *decimal.Decimal  `json:"desired_price"`
	Metadata     map[string]string `json:"metadata"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func parseSide(s string) (position.Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return position.Buy, nil
	case "sell":
		return position.Sell, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

type quoteView struct {
	AssetPair string          `json:"asset_pair"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	Date      time.Time       `json:"date"`
}

func newQuoteView(b quote.BidAsk) quoteView {
	return quoteView{
		AssetPair: b.AssetPair,
		Bid:       b.Bid,
		Ask:       b.Ask,
		Base:      b.Base,
		Quote:     b.Quote,
		Date:      b.Date,
	}
}

type positionView struct {
	ID        string `json:"id"`
	TraderID  string `json:"trader_id"`
	AccountID string `json:"account_id"`

	AssetPair  string `json:"asset_pair"`
	Base       string `json:"base"`
	Quote      string `json:"quote"`
	Collateral string `json:"collateral"`
	Side       string `json:"side"`

	InvestAmount   decimal.Decimal `json:"invest_amount"`
	Leverage       decimal.Decimal `json:"leverage"`
	StopOutPercent decimal.Decimal `json:"stop_out_percent"`

	MarginCallPercent *decimal.Decimal `json:"margin_call_percent,omitempty"`
	ToppingUpPercent  *decimal.Decimal `json:"topping_up_percent,omitempty"`

	TakeProfitProfit *decimal.Decimal `json:"take_profit_profit,omitempty"`
	TakeProfitPrice  *decimal.Decimal `json:"take_profit_price,omitempty"`
	StopLossProfit   *decimal.Decimal `json:"stop_loss_profit,omitempty"`
	StopLossPrice    *decimal.Decimal `json:"stop_loss_price,omitempty"`

	CreateDate     time.Time `json:"create_date"`
	LastUpdateDate time.Time `json:"last_update_date"`

	Metadata map[string]string `json:"metadata,omitempty"`

	// Pending fields.
	DesiredPrice *decimal.Decimal `json:"desired_price,omitempty"`
	OrderType    string           `json:"order_type,omitempty"`

	// Active and closed fields.
	OpenPrice     *decimal.Decimal `json:"open_price,omitempty"`
	OpenDate      *time.Time       `json:"open_date,omitempty"`
	AssetPrice    *decimal.Decimal `json:"asset_price,omitempty"`
	Profit        *decimal.Decimal `json:"profit,omitempty"`
	SwapsTotal    *decimal.Decimal `json:"swaps_total,omitempty"`
	ToppingUp     *decimal.Decimal `json:"topping_up,omitempty"`
	MarginCallHit *bool            `json:"margin_call_hit,omitempty"`

	// Closed fields.
	ClosePrice  *decimal.Decimal `json:"close_price,omitempty"`
	CloseDate   *time.Time       `json:"close_date,omitempty"`
	CloseReason string           `json:"close_reason,omitempty"`
}

func baseView(b position.BaseData) positionView {
	return positionView{
		ID:                b.ID,
		TraderID:          b.TraderID,
		AccountID:         b.AccountID,
		AssetPair:         b.AssetPair,
		Base:              b.Base,
		Quote:             b.Quote,
		Collateral:        b.Collateral,
		Side:              strings.ToLower(b.Side.String()),
		InvestAmount:      b.InvestAmount,
		Leverage:          b.Leverage,
		StopOutPercent:    b.StopOutPercent,
		MarginCallPercent: b.MarginCallPercent,
		ToppingUpPercent:  b.ToppingUpPercent,
		TakeProfitProfit:  b.TakeProfitProfit,
		TakeProfitPrice:   b.TakeProfitPrice,
		StopLossProfit:    b.StopLossProfit,
		StopLossPrice:     b.StopLossPrice,
		CreateDate:        b.CreateDate,
		LastUpdateDate:    b.LastUpdateDate,
		Metadata:          b.Metadata,
	}
}

func newPendingView(p *position.Pending) positionView {
	v := baseView(p.Base)
	desired := p.State.DesiredPrice
	v.DesiredPrice = &desired
	v.OrderType = p.State.OrderType.String()
	return v
}

func fillActiveView(v *positionView, st position.ActiveState) {
	openPrice := st.Open.AssetOpenPrice
	openDate := st.Open.OpenDate
	assetPrice := st.AssetPrice
	profit := st.Profit
	swaps := st.Swaps.Total
	hit := st.MarginCallHit
	v.OpenPrice = &openPrice
	v.OpenDate = &openDate
	v.AssetPrice = &assetPrice
	v.Profit = &profit
	v.SwapsTotal = &swaps
	v.ToppingUp = st.ToppingUp
	v.MarginCallHit = &hit
	if st.Open.Pending != nil {
		desired := st.Open.Pending.DesiredPrice
		v.DesiredPrice = &desired
		v.OrderType = st.Open.Pending.OrderType.String()
	}
}

func newActiveView(p *position.Active) positionView {
	v := baseView(p.Base)
	fillActiveView(&v, p.State)
	return v
}

func newClosedView(p *position.Closed) positionView {
	v := baseView(p.Base)
	fillActiveView(&v, p.State.Active)
	closePrice := p.State.AssetClosePrice
	closeDate := p.State.CloseDate
	v.ClosePrice = &closePrice
	v.CloseDate = &closeDate
	v.CloseReason = p.State.Reason.String()
	return v
}

func newPendingViews(ps []*position.Pending) []positionView {
	out := make([]positionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPendingView(p))
	}
	return out
}

func newActiveViews(ps []*position.Active) []positionView {
	out := make([]positionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newActiveView(p))
	}
	return out
}

func newClosedViews(ps []*position.Closed) []positionView {
	out := make([]positionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newClosedView(p))
	}
	return out
}
