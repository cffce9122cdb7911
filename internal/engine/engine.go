// Package engine implements the position lifecycle and valuation rules:
// opening and executing positions against the quote cache, repricing them
// on incoming ticks, computing profit across collateral conversions, and
// deciding margin-call, stop-out, stop-loss, take-profit and pending-order
// triggers.
//
// Every function here is synchronous and free of hidden I/O. The engine
// assumes the single-writer model: one loop applies ticks and commands in
// order, so read-modify-write of profit and margin flags never races.
package engine

import (
	"errors"
	"time"
)

var (
	// ErrNoLiquidity means a required direct or cross-rate quote is not in
	// the cache yet. Recoverable: retry once a quote arrives, or reject
	// the originating command.
	ErrNoLiquidity = errors.New("no liquidity for requested instrument")

	// ErrPositionNotFound is returned by flows that resolve a position by
	// id on top of the store.
	ErrPositionNotFound = errors.New("position not found")
)

// Clock abstracts the wall-clock source used for audit timestamps, so the
// lifecycle transitions stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}
