package engine

import (
	"mtengine/internal/index"
	"mtengine/internal/position"
	"mtengine/internal/store"
)

// The engine works against two indexed caches: triggered pending orders
// move from one to the other.
type (
	ActivePositions  = store.Store[*position.Active]
	PendingPositions = store.Store[*position.Pending]
)

func NewActivePositions() *ActivePositions   { return store.New[*position.Active]() }
func NewPendingPositions() *PendingPositions { return store.New[*position.Pending]() }

// Filter narrows position listings. Empty fields do not constrain; a
// filter with no fields set matches nothing.
type Filter struct {
	Base       string
	Quote      string
	Collateral string
	TraderID   string
	AccountID  string
}

func (f Filter) Query() index.Query {
	q := index.NewQuery()
	if f.Base != "" {
		q = q.WithBase(f.Base)
	}
	if f.Quote != "" {
		q = q.WithQuote(f.Quote)
	}
	if f.Collateral != "" {
		q = q.WithCollateral(f.Collateral)
	}
	if f.TraderID != "" {
		q = q.WithClient(f.TraderID)
	}
	if f.AccountID != "" {
		q = q.WithAccount(f.AccountID)
	}
	return q
}

// TickOutcome reports what a single tick did to the book.
type TickOutcome struct {
	Executed    []string
	MarginCalls []string
	Closed      []string
}
