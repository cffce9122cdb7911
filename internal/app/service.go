// Package app wires the engine, quote cache, archive and HTTP transport
// into a running process.
package app

import (
	"context"
	"fmt"
	"sync"

	"mtengine/internal/archive"
	"mtengine/internal/config"
	"mtengine/internal/engine"
	"mtengine/internal/logger"
	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/google/uuid"
)

// Service is the single-writer core of the engine. All state mutations
// and reads funnel through one loop goroutine, so the quote cache and the
// position stores never need internal locking.
type Service struct {
	engineCfg config.EngineConfig

	quotes  *quote.Cache
	active  *engine.ActivePositions
	pending *engine.PendingPositions
	arch    *archive.Store
	clock   engine.Clock

	msgCh  chan func()
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewService(cfg config.EngineConfig, arch *archive.Store, clock engine.Clock) *Service {
	if clock == nil {
		clock = engine.SystemClock
	}
	return &Service{
		engineCfg: cfg,
		quotes:    quote.NewCache(),
		active:    engine.NewActivePositions(),
		pending:   engine.NewPendingPositions(),
		arch:      arch,
		clock:     clock,
		msgCh:     make(chan func(), cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}
}

// Run processes commands until ctx is cancelled. It must be called
// exactly once.
func (s *Service) Run(ctx context.Context) error {
	s.wg.Add(1)
	defer s.wg.Done()
	defer close(s.stopCh)

	logger.Infof("engine loop started (queue=%d)", cap(s.msgCh))
	for {
		select {
		case fn := <-s.msgCh:
			fn()
		case <-ctx.Done():
			logger.Infof("engine loop stopped")
			return nil
		}
	}
}

// do runs fn on the loop goroutine and waits for it to finish.
func (s *Service) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case s.msgCh <- wrapped:
	case <-s.stopCh:
		return fmt.Errorf("engine stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-s.stopCh:
		return fmt.Errorf("engine stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) newProcessID() string { return uuid.NewString() }

// GetQuote returns the latest quote for an instrument.
func (s *Service) GetQuote(ctx context.Context, assetPair string) (quote.BidAsk, error) {
	var (
		b  *quote.BidAsk
		ok bool
	)
	if err := s.do(ctx, func() {
		b, ok = s.quotes.GetByID(assetPair)
	}); err != nil {
		return quote.BidAsk{}, err
	}
	if !ok {
		return quote.BidAsk{}, engine.ErrNoLiquidity
	}
	return *b, nil
}

// GetActive returns a copy of an active position.
func (s *Service) GetActive(ctx context.Context, id string) (*position.Active, error) {
	var found *position.Active
	if err := s.do(ctx, func() {
		if p, ok := s.active.Get(id); ok {
			cp := *p
			found = &cp
		}
	}); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, engine.ErrPositionNotFound
	}
	return found, nil
}

// GetPending returns a copy of a pending order.
func (s *Service) GetPending(ctx context.Context, id string) (*position.Pending, error) {
	var found *position.Pending
	if err := s.do(ctx, func() {
		if p, ok := s.pending.Get(id); ok {
			cp := *p
			found = &cp
		}
	}); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, engine.ErrPositionNotFound
	}
	return found, nil
}

// ListActive returns copies of the active positions matching the filter.
func (s *Service) ListActive(ctx context.Context, f engine.Filter) ([]*position.Active, error) {
	var out []*position.Active
	err := s.do(ctx, func() {
		for _, p := range s.active.Query(f.Query()) {
			cp := *p
			out = append(out, &cp)
		}
	})
	return out, err
}

// ListPending returns copies of the pending orders matching the filter.
func (s *Service) ListPending(ctx context.Context, f engine.Filter) ([]*position.Pending, error) {
	var out []*position.Pending
	err := s.do(ctx, func() {
		for _, p := range s.pending.Query(f.Query()) {
			cp := *p
			out = append(out, &cp)
		}
	})
	return out, err
}

// ListClosed reads archived positions. The archive has its own store and
// does not need the loop.
func (s *Service) ListClosed(ctx context.Context, q archive.Query) ([]*position.Closed, error) {
	if s.arch == nil {
		return nil, nil
	}
	return s.arch.List(ctx, q)
}

// GetClosed reads one archived position.
func (s *Service) GetClosed(ctx context.Context, id string) (*position.Closed, error) {
	if s.arch == nil {
		return nil, engine.ErrPositionNotFound
	}
	p, err := s.arch.Get(ctx, id)
	if err == archive.ErrNotFound {
		return nil, engine.ErrPositionNotFound
	}
	return p, err
}
