package app

import (
	"context"
	"path/filepath"
	"testing"

	"mtengine/internal/archive"
	"mtengine/internal/config"
	"mtengine/internal/engine"
	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.EngineConfig) *Service {
	t.Helper()

	arch, err := archive.New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = arch.Close() })

	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}
	svc := NewService(cfg, arch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = svc.Run(ctx) }()
	t.Cleanup(cancel)
	return svc
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func eurUSDTick(bid, ask string) quote.BidAsk {
	return quote.BidAsk{
		AssetPair: "EURUSD",
		Bid:       d(bid),
		Ask:       d(ask),
		Base:      "EUR",
		Quote:     "USD",
	}
}

func eurUSDOpen(id string) engine.OpenCommand {
	return engine.OpenCommand{
		ID:           id,
		TraderID:     "trader-1",
		AccountID:    "acc-1",
		AssetPair:    "EURUSD",
		Base:         "EUR",
		Quote:        "USD",
		Collateral:   "USD",
		Side:         position.Buy,
		InvestAmount: d("1000"),
		Leverage:     d("20"),
	}
}

func TestOpenCloseRoundTrip(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	opened, err := svc.Open(ctx, eurUSDOpen("pos-1"))
	require.NoError(t, err)
	assert.Equal(t, "1.0688", opened.State.Open.AssetOpenPrice.String())
	assert.Equal(t, "80", opened.Base.StopOutPercent.String())

	got, err := svc.GetActive(ctx, "pos-1")
	require.NoError(t, err)
	assert.Equal(t, "pos-1", got.Base.ID)

	closed, err := svc.Close(ctx, "pos-1")
	require.NoError(t, err)
	assert.Equal(t, position.CloseClientCommand, closed.State.Reason)
	assert.Equal(t, "1.0686", closed.State.AssetClosePrice.String())

	_, err = svc.GetActive(ctx, "pos-1")
	assert.ErrorIs(t, err, engine.ErrPositionNotFound)

	archived, err := svc.GetClosed(ctx, "pos-1")
	require.NoError(t, err)
	assert.Equal(t, position.CloseClientCommand, archived.State.Reason)
}

func TestOpenAppliesConfigDefaults(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{
		StopOutPercent:    80,
		MarginCallPercent: 50,
		ToppingUpPercent:  25,
	})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	cmd := eurUSDOpen("")
	cmd.ID = ""
	opened, err := svc.Open(ctx, cmd)
	require.NoError(t, err)
	assert.NotEmpty(t, opened.Base.ID)
	assert.Equal(t, "80", opened.Base.StopOutPercent.String())
	require.NotNil(t, opened.Base.MarginCallPercent)
	assert.Equal(t, "50", opened.Base.MarginCallPercent.String())
	require.NotNil(t, opened.Base.ToppingUpPercent)
	assert.Equal(t, "25", opened.Base.ToppingUpPercent.String())
}

func TestOpenKeepsExplicitRiskParameters(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{
		StopOutPercent:    80,
		MarginCallPercent: 50,
	})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	cmd := eurUSDOpen("pos-1")
	cmd.StopOutPercent = d("60")
	cmd.MarginCallPercent = dp("30")
	opened, err := svc.Open(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "60", opened.Base.StopOutPercent.String())
	assert.Equal(t, "30", opened.Base.MarginCallPercent.String())
}

func TestOpenWithoutQuote(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	_, err := svc.Open(context.Background(), eurUSDOpen("pos-1"))
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
}

func TestPendingOrderExecutesOnTick(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	created, err := svc.CreatePending(ctx, engine.PendingCommand{
		ID:           "ord-1",
		TraderID:     "trader-1",
		AccountID:    "acc-1",
		AssetPair:    "EURUSD",
		Base:         "EUR",
		Quote:        "USD",
		Collateral:   "USD",
		Side:         position.Buy,
		InvestAmount: d("1000"),
		Leverage:     d("20"),
		DesiredPrice: d("1.08"),
	})
	require.NoError(t, err)
	assert.Equal(t, position.BuyStop, created.State.OrderType)

	// Below the desired price nothing happens.
	out, err := svc.PushTick(ctx, eurUSDTick("1.0697", "1.0699"))
	require.NoError(t, err)
	assert.Empty(t, out.Executed)

	out, err = svc.PushTick(ctx, eurUSDTick("1.0799", "1.0801"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1"}, out.Executed)

	_, err = svc.GetPending(ctx, "ord-1")
	assert.ErrorIs(t, err, engine.ErrPositionNotFound)

	active, err := svc.GetActive(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "1.0801", active.State.Open.AssetOpenPrice.String())
	require.NotNil(t, active.State.Open.Pending)
	assert.Equal(t, "1.08", active.State.Open.Pending.DesiredPrice.String())
}

func TestCancelPending(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	_, err = svc.CreatePending(ctx, engine.PendingCommand{
		ID:           "ord-1",
		TraderID:     "trader-1",
		AccountID:    "acc-1",
		AssetPair:    "EURUSD",
		Base:         "EUR",
		Quote:        "USD",
		Collateral:   "USD",
		Side:         position.Sell,
		InvestAmount: d("1000"),
		Leverage:     d("20"),
		DesiredPrice: d("1.10"),
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelPending(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", cancelled.Base.ID)

	_, err = svc.CancelPending(ctx, "ord-1")
	assert.ErrorIs(t, err, engine.ErrPositionNotFound)
}

func TestTickStopOutClosesAndArchives(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	cmd := eurUSDOpen("pos-1")
	cmd.InvestAmount = d("100")
	cmd.Leverage = d("100")
	_, err = svc.Open(ctx, cmd)
	require.NoError(t, err)

	// A 100 pip drop wipes out more than 80% of the invested amount.
	out, err := svc.PushTick(ctx, eurUSDTick("1.0588", "1.0590"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pos-1"}, out.Closed)

	_, err = svc.GetActive(ctx, "pos-1")
	assert.ErrorIs(t, err, engine.ErrPositionNotFound)

	archived, err := svc.GetClosed(ctx, "pos-1")
	require.NoError(t, err)
	assert.Equal(t, position.CloseStopOut, archived.State.Reason)
	assert.Equal(t, "1.0588", archived.State.AssetClosePrice.String())
}

func TestTickMarginCallWithAutoToppingUp(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{
		StopOutPercent:    80,
		MarginCallPercent: 50,
		ToppingUpPercent:  50,
		AutoToppingUp:     true,
	})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	_, err = svc.Open(ctx, eurUSDOpen("pos-1"))
	require.NoError(t, err)

	// Deep enough for a margin call but not a stop-out. The automatic
	// topping-up adds 50% of the invest and clears the hit flag.
	out, err := svc.PushTick(ctx, eurUSDTick("1.0420", "1.0422"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pos-1"}, out.MarginCalls)

	p, err := svc.GetActive(ctx, "pos-1")
	require.NoError(t, err)
	require.NotNil(t, p.State.ToppingUp)
	assert.Equal(t, "500", p.State.ToppingUp.String())
	assert.False(t, p.State.MarginCallHit)

	// Market recovers: the topped-up funds flow back automatically.
	out, err = svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)
	assert.Empty(t, out.MarginCalls)

	p, err = svc.GetActive(ctx, "pos-1")
	require.NoError(t, err)
	require.NotNil(t, p.State.ToppingUp)
	assert.True(t, p.State.ToppingUp.IsZero())
}

func TestTickMarginCallClearsAndRearms(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{
		StopOutPercent:    80,
		MarginCallPercent: 50,
	})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	_, err = svc.Open(ctx, eurUSDOpen("pos-1"))
	require.NoError(t, err)

	out, err := svc.PushTick(ctx, eurUSDTick("1.0420", "1.0422"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pos-1"}, out.MarginCalls)

	// Recovery clears the flag without reporting another call.
	out, err = svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)
	assert.Empty(t, out.MarginCalls)

	p, err := svc.GetActive(ctx, "pos-1")
	require.NoError(t, err)
	assert.False(t, p.State.MarginCallHit)

	// The next crossing is a fresh transition and reports again.
	out, err = svc.PushTick(ctx, eurUSDTick("1.0420", "1.0422"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pos-1"}, out.MarginCalls)
}

func TestManualToppingUpAndReturn(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	cmd := eurUSDOpen("pos-1")
	cmd.MarginCallPercent = dp("40")
	cmd.ToppingUpPercent = dp("25")
	_, err = svc.Open(ctx, cmd)
	require.NoError(t, err)

	p, err := svc.ToppingUp(ctx, "pos-1", d("250"))
	require.NoError(t, err)
	require.NotNil(t, p.State.ToppingUp)
	assert.Equal(t, "250", p.State.ToppingUp.String())

	returned, err := svc.ReturnToppingUp(ctx, "pos-1")
	require.NoError(t, err)
	assert.Equal(t, "250", returned.String())

	p, err = svc.GetActive(ctx, "pos-1")
	require.NoError(t, err)
	assert.True(t, p.State.ToppingUp.IsZero())
}

func TestReturnToppingUpWithoutBalance(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	cmd := eurUSDOpen("pos-1")
	cmd.MarginCallPercent = dp("40")
	cmd.ToppingUpPercent = dp("25")
	_, err = svc.Open(ctx, cmd)
	require.NoError(t, err)

	returned, err := svc.ReturnToppingUp(ctx, "pos-1")
	require.NoError(t, err)
	assert.True(t, returned.IsZero())
}

func TestAddSwapFoldsIntoProfit(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	_, err = svc.Open(ctx, eurUSDOpen("pos-1"))
	require.NoError(t, err)

	before, err := svc.GetActive(ctx, "pos-1")
	require.NoError(t, err)

	p, err := svc.AddSwap(ctx, "pos-1", d("-1.5"))
	require.NoError(t, err)
	assert.Equal(t, "-1.5", p.State.Swaps.Total.String())
	assert.Equal(t, "-1.5", p.State.Profit.Sub(before.State.Profit).String())
}

func TestListActiveFilters(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	first := eurUSDOpen("pos-1")
	_, err = svc.Open(ctx, first)
	require.NoError(t, err)

	second := eurUSDOpen("pos-2")
	second.TraderID = "trader-2"
	_, err = svc.Open(ctx, second)
	require.NoError(t, err)

	all, err := svc.ListActive(ctx, engine.Filter{Base: "EUR", Quote: "USD"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListActive(ctx, engine.Filter{TraderID: "trader-2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "pos-2", mine[0].Base.ID)

	none, err := svc.ListActive(ctx, engine.Filter{TraderID: "trader-3"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetQuote(t *testing.T) {
	svc := newTestService(t, config.EngineConfig{StopOutPercent: 80})
	ctx := context.Background()

	_, err := svc.PushTick(ctx, eurUSDTick("1.0686", "1.0688"))
	require.NoError(t, err)

	b, err := svc.GetQuote(ctx, "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, "1.0686", b.Bid.String())
	assert.False(t, b.Date.IsZero())

	_, err = svc.GetQuote(ctx, "GBPUSD")
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
}
