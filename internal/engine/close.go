package engine

import (
	"mtengine/internal/position"
)

// ClosePosition seals an active position into a closed one. The close
// price is the asset price the position was last marked at, so the
// caller reprices on the closing tick before calling this. The transform
// is pure: the active state is snapshotted, never mutated.
func ClosePosition(p *position.Active, reason position.CloseReason, processID string, clk Clock) *position.Closed {
	now := clk.Now()
	base := p.Base
	base.LastUpdateProcessID = processID
	base.LastUpdateDate = now

	return &position.Closed{
		Base: base,
		State: position.ClosedState{
			Active:          p.State,
			AssetClosePrice: p.State.AssetPrice,
			AssetCloseQuote: p.State.AssetQuote,
			CloseDate:       now,
			CloseProcessID:  processID,
			Reason:          reason,
		},
	}
}
