package app

import (
	"context"

	"mtengine/internal/engine"
	"mtengine/internal/index"
	"mtengine/internal/logger"
	"mtengine/internal/position"
	"mtengine/internal/quote"
)

// PushTick publishes a quote and runs the whole per-tick pipeline:
// pending-order triggers, repricing, profit, margin calls, automatic
// topping-up and forced closes.
func (s *Service) PushTick(ctx context.Context, b quote.BidAsk) (engine.TickOutcome, error) {
	var out engine.TickOutcome
	err := s.do(ctx, func() {
		out = s.applyTick(b)
	})
	return out, err
}

func (s *Service) applyTick(b quote.BidAsk) engine.TickOutcome {
	if b.Date.IsZero() {
		b.Date = s.clock.Now()
	}
	s.quotes.Upsert(b)

	processID := s.newProcessID()
	out := engine.TickOutcome{}
	s.executePendingOrders(b, processID, &out)
	s.repriceActivePositions(b, processID, &out)
	return out
}

// executePendingOrders promotes every pending order on this instrument
// whose desired price the tick reached.
func (s *Service) executePendingOrders(b quote.BidAsk, processID string, out *engine.TickOutcome) {
	for _, p := range s.pending.Query(index.NewQuery().WithBase(b.Base).WithQuote(b.Quote)) {
		if p.Base.AssetPair != b.AssetPair || !engine.ReadyToExecute(p, &b) {
			continue
		}
		active, err := engine.ExecutePendingPosition(p, s.quotes, processID, s.clock)
		if err != nil {
			// Typically a missing conversion leg. The order stays pending
			// and retries on the next relevant tick.
			logger.Warnf("pending order %s not executed: %v", p.Base.ID, err)
			continue
		}
		s.pending.Remove(p.Base.ID)
		s.active.Add(active)
		out.Executed = append(out.Executed, active.Base.ID)
		logger.Infof("pending order %s executed at %s", active.Base.ID, active.State.Open.AssetOpenPrice)
	}
}

// repriceActivePositions applies the tick to every active position it can
// touch: the ones trading this instrument and the ones whose
// quote↔collateral leg this currency pair reprices.
func (s *Service) repriceActivePositions(b quote.BidAsk, processID string, out *engine.TickOutcome) {
	touched := make(map[string]*position.Active)
	collect := func(q index.Query) {
		for _, p := range s.active.Query(q) {
			touched[p.Base.ID] = p
		}
	}
	collect(index.NewQuery().WithBase(b.Base).WithQuote(b.Quote))
	collect(index.NewQuery().WithQuote(b.Quote).WithCollateral(b.Base))
	collect(index.NewQuery().WithQuote(b.Base).WithCollateral(b.Quote))

	for _, p := range touched {
		engine.UpdateAssetPrice(p, b)
		engine.UpdateRate(p, b)
		engine.UpdateProfit(p)
		p.Base.LastUpdateProcessID = processID
		p.Base.LastUpdateDate = b.Date

		if reason, ok := engine.CloseReasonFor(p); ok {
			closed := s.closeAndArchive(p, reason, processID)
			out.Closed = append(out.Closed, closed.Base.ID)
			continue
		}

		if changed := engine.UpdateMarginCallHit(p); changed && p.State.MarginCallHit {
			out.MarginCalls = append(out.MarginCalls, p.Base.ID)
			logger.Warnf("position %s margin call at profit %s", p.Base.ID, p.State.Profit)
			if s.engineCfg.AutoToppingUp {
				if amount, ok := engine.ToppingUpAmount(p); ok {
					engine.ApplyToppingUp(p, amount)
					logger.Infof("position %s auto topped up by %s", p.Base.ID, amount)
				}
			}
		} else {
			if changed {
				logger.Infof("position %s margin call cleared at profit %s", p.Base.ID, p.State.Profit)
			}
			if s.engineCfg.AutoToppingUp {
				s.returnToppingUpFunds(p)
			}
		}
	}
}
