package app

import (
	"context"

	"mtengine/internal/engine"
	"mtengine/internal/logger"
	"mtengine/internal/position"

	"github.com/shopspring/decimal"
)

// applyOpenDefaults fills the risk parameters an order left unset from
// the engine configuration.
func (s *Service) applyOpenDefaults(cmd *engine.OpenCommand) {
	if cmd.ID == "" {
		cmd.ID = s.newProcessID()
	}
	if cmd.ProcessID == "" {
		cmd.ProcessID = s.newProcessID()
	}
	if cmd.StopOutPercent.IsZero() {
		cmd.StopOutPercent = s.engineCfg.StopOut()
	}
	if cmd.MarginCallPercent == nil {
		cmd.MarginCallPercent = s.engineCfg.MarginCall()
	}
	if cmd.ToppingUpPercent == nil {
		cmd.ToppingUpPercent = s.engineCfg.ToppingUp()
	}
}

func (s *Service) applyPendingDefaults(cmd *engine.PendingCommand) {
	if cmd.ID == "" {
		cmd.ID = s.newProcessID()
	}
	if cmd.ProcessID == "" {
		cmd.ProcessID = s.newProcessID()
	}
	if cmd.StopOutPercent.IsZero() {
		cmd.StopOutPercent = s.engineCfg.StopOut()
	}
	if cmd.MarginCallPercent == nil {
		cmd.MarginCallPercent = s.engineCfg.MarginCall()
	}
	if cmd.ToppingUpPercent == nil {
		cmd.ToppingUpPercent = s.engineCfg.ToppingUp()
	}
}

// Open opens a position directly into the active state.
func (s *Service) Open(ctx context.Context, cmd engine.OpenCommand) (*position.Active, error) {
	var (
		opened *position.Active
		opErr  error
	)
	err := s.do(ctx, func() {
		s.applyOpenDefaults(&cmd)
		p, err := engine.OpenPosition(cmd, s.quotes, s.clock)
		if err != nil {
			opErr = err
			return
		}
		s.active.Add(p)
		cp := *p
		opened = &cp
		logger.Infof("position %s opened: %s %s invest=%s leverage=%s",
			p.Base.ID, p.Base.Side, p.Base.AssetPair, p.Base.InvestAmount, p.Base.Leverage)
	})
	if err != nil {
		return nil, err
	}
	return opened, opErr
}

// CreatePending registers a pending order.
func (s *Service) CreatePending(ctx context.Context, cmd engine.PendingCommand) (*position.Pending, error) {
	var (
		created *position.Pending
		opErr   error
	)
	err := s.do(ctx, func() {
		s.applyPendingDefaults(&cmd)
		p, err := engine.CreatePendingPosition(cmd, s.quotes, s.clock)
		if err != nil {
			opErr = err
			return
		}
		s.pending.Add(p)
		cp := *p
		created = &cp
		logger.Infof("pending order %s created: %s %s at %s",
			p.Base.ID, p.State.OrderType, p.Base.AssetPair, p.State.DesiredPrice)
	})
	if err != nil {
		return nil, err
	}
	return created, opErr
}

// CancelPending removes a pending order before it executes.
func (s *Service) CancelPending(ctx context.Context, id string) (*position.Pending, error) {
	var cancelled *position.Pending
	err := s.do(ctx, func() {
		if p, ok := s.pending.Remove(id); ok {
			cancelled = p
			logger.Infof("pending order %s cancelled", id)
		}
	})
	if err != nil {
		return nil, err
	}
	if cancelled == nil {
		return nil, engine.ErrPositionNotFound
	}
	return cancelled, nil
}

// Close closes an active position on a client's request and archives it.
func (s *Service) Close(ctx context.Context, id string) (*position.Closed, error) {
	var (
		closed *position.Closed
		opErr  error
	)
	err := s.do(ctx, func() {
		p, ok := s.active.Get(id)
		if !ok {
			opErr = engine.ErrPositionNotFound
			return
		}
		closed = s.closeAndArchive(p, position.CloseClientCommand, s.newProcessID())
	})
	if err != nil {
		return nil, err
	}
	return closed, opErr
}

// closeAndArchive performs the close transform, drops the position from
// the active cache and persists it. Loop goroutine only.
func (s *Service) closeAndArchive(p *position.Active, reason position.CloseReason, processID string) *position.Closed {
	closed := engine.ClosePosition(p, reason, processID, s.clock)
	s.active.Remove(p.Base.ID)
	if s.arch != nil {
		if err := s.arch.Insert(context.Background(), closed); err != nil {
			logger.Errorf("archiving position %s failed: %v", closed.Base.ID, err)
		}
	}
	logger.Infof("position %s closed: reason=%s profit=%s",
		closed.Base.ID, closed.State.Reason, closed.State.Active.Profit)
	return closed
}

// ToppingUp adds funds to a position's topping-up balance.
func (s *Service) ToppingUp(ctx context.Context, id string, amount decimal.Decimal) (*position.Active, error) {
	var (
		updated *position.Active
		opErr   error
	)
	err := s.do(ctx, func() {
		p, ok := s.active.Get(id)
		if !ok {
			opErr = engine.ErrPositionNotFound
			return
		}
		engine.ApplyToppingUp(p, amount)
		cp := *p
		updated = &cp
		logger.Infof("position %s topped up by %s, balance=%s", id, amount, p.State.ToppingUp)
	})
	if err != nil {
		return nil, err
	}
	return updated, opErr
}

// ReturnToppingUp gives one configured topping-up transfer back, when
// the position's margin allows it. The returned amount is zero when
// nothing could be given back.
func (s *Service) ReturnToppingUp(ctx context.Context, id string) (decimal.Decimal, error) {
	var (
		returned decimal.Decimal
		opErr    error
	)
	err := s.do(ctx, func() {
		p, ok := s.active.Get(id)
		if !ok {
			opErr = engine.ErrPositionNotFound
			return
		}
		returned = s.returnToppingUpFunds(p)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return returned, opErr
}

// returnToppingUpFunds releases one transfer if the margin check passes
// and the balance covers it. Loop goroutine only.
func (s *Service) returnToppingUpFunds(p *position.Active) decimal.Decimal {
	if !engine.CanReturnToppingUpFunds(p) {
		return decimal.Zero
	}
	amount, ok := engine.ToppingUpAmount(p)
	if !ok || p.State.ToppingUp == nil || p.State.ToppingUp.LessThan(amount) {
		return decimal.Zero
	}
	engine.ReturnToppingUp(p, amount)
	logger.Infof("position %s returned topping-up funds %s, balance=%s",
		p.Base.ID, amount, p.State.ToppingUp)
	return amount
}

// AddSwap posts an overnight financing charge or credit to an active
// position and refolds it into the profit.
func (s *Service) AddSwap(ctx context.Context, id string, amount decimal.Decimal) (*position.Active, error) {
	var (
		updated *position.Active
		opErr   error
	)
	err := s.do(ctx, func() {
		p, ok := s.active.Get(id)
		if !ok {
			opErr = engine.ErrPositionNotFound
			return
		}
		p.State.Swaps.Add(amount, s.clock.Now())
		engine.UpdateProfit(p)
		cp := *p
		updated = &cp
	})
	if err != nil {
		return nil, err
	}
	return updated, opErr
}
