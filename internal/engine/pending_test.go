package engine

import (
	"testing"

	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingCommand(side position.Side, desired string) PendingCommand {
	return PendingCommand{
		ID:             "ord-1",
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
		DesiredPrice:   d(desired),
		ProcessID:      "proc-1",
	}
}

func TestPendingOrderClassification(t *testing.T) {
	// Market: bid 1.0686, ask 1.0688.
	quotes := eurUSDCache()

	cases := []struct {
		side    position.Side
		desired string
		want    position.OrderType
	}{
		{position.Buy, "1.0800", position.BuyStop},
		{position.Buy, "1.0600", position.BuyLimit},
		{position.Buy, "1.0688", position.BuyLimit},
		{position.Sell, "1.0800", position.SellLimit},
		{position.Sell, "1.0600", position.SellStop},
		{position.Sell, "1.0686", position.SellStop},
	}
	for _, tc := range cases {
		p, err := CreatePendingPosition(pendingCommand(tc.side, tc.desired), quotes, testClock)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.State.OrderType,
			"%s at %s", tc.side, tc.desired)
	}
}

func TestPendingOrderNoLiquidity(t *testing.T) {
	_, err := CreatePendingPosition(pendingCommand(position.Buy, "1.08"), quote.NewCache(), testClock)
	assert.ErrorIs(t, err, ErrNoLiquidity)
}

func TestReadyToExecute(t *testing.T) {
	quotes := eurUSDCache()

	cases := []struct {
		side     position.Side
		desired  string
		bid, ask string
		want     bool
	}{
		// BuyStop at 1.0800 watches the ask rising.
		{position.Buy, "1.0800", "1.0797", "1.0799", false},
		{position.Buy, "1.0800", "1.0798", "1.0800", true},
		{position.Buy, "1.0800", "1.0848", "1.0850", true},
		// BuyLimit at 1.0600 watches the ask falling.
		{position.Buy, "1.0600", "1.0599", "1.0601", false},
		{position.Buy, "1.0600", "1.0598", "1.0600", true},
		// SellLimit at 1.0800 watches the bid rising.
		{position.Sell, "1.0800", "1.0799", "1.0801", false},
		{position.Sell, "1.0800", "1.0800", "1.0802", true},
		// SellStop at 1.0600 watches the bid falling.
		{position.Sell, "1.0600", "1.0601", "1.0603", false},
		{position.Sell, "1.0600", "1.0600", "1.0602", true},
	}
	for _, tc := range cases {
		p, err := CreatePendingPosition(pendingCommand(tc.side, tc.desired), quotes, testClock)
		require.NoError(t, err)
		b := tick("EURUSD", "EUR", "USD", tc.bid, tc.ask)
		assert.Equal(t, tc.want, ReadyToExecute(p, &b),
			"%s %s at %s/%s", p.State.OrderType, tc.desired, tc.bid, tc.ask)
	}
}

func TestExecutePendingPosition(t *testing.T) {
	quotes := eurUSDCache()
	p, err := CreatePendingPosition(pendingCommand(position.Buy, "1.0800"), quotes, testClock)
	require.NoError(t, err)

	trigger := tick("EURUSD", "EUR", "USD", "1.0799", "1.0801")
	quotes.Upsert(trigger)
	require.True(t, ReadyToExecute(p, &trigger))

	active, err := ExecutePendingPosition(p, quotes, "proc-2", testClock)
	require.NoError(t, err)

	assert.Equal(t, "1.0801", active.State.Open.AssetOpenPrice.String())
	assert.Equal(t, "1.0799", active.State.AssetPrice.String())
	assert.Equal(t, "proc-2", active.State.Open.OpenProcessID)
	assert.Equal(t, "proc-2", active.Base.LastUpdateProcessID)
	// Creation bookkeeping stays from the pending stage.
	assert.Equal(t, "proc-1", active.Base.CreateProcessID)

	require.NotNil(t, active.State.Open.Pending)
	assert.Equal(t, position.BuyStop, active.State.Open.Pending.OrderType)
	assert.Equal(t, "1.08", active.State.Open.Pending.DesiredPrice.String())
}

func TestExecutePendingPositionMissingLeg(t *testing.T) {
	quotes := gbpCADCache()
	cmd := pendingCommand(position.Buy, "1.7000")
	cmd.AssetPair = "GBPCAD"
	cmd.Base = "GBP"
	cmd.Quote = "CAD"

	p, err := CreatePendingPosition(cmd, quotes, testClock)
	require.NoError(t, err)

	// Execution re-resolves all legs against a cache that lost the
	// GBP↔USD quote in the meantime.
	bare := quote.NewCache()
	bare.Upsert(tick("GBPCAD", "GBP", "CAD", "1.70432", "1.70447"))
	bare.Upsert(tick("USDCAD", "USD", "CAD", "1.34398", "1.34420"))

	_, err = ExecutePendingPosition(p, bare, "proc-2", testClock)
	assert.ErrorIs(t, err, ErrNoLiquidity)
}
