package position

import (
	"time"

	"github.com/shopspring/decimal"
)

// Swap is a single overnight financing charge or credit applied to an
// active position.
type Swap struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Swaps accumulates the swap history with a running total. The total is
// folded into the position's profit on every recomputation.
type Swaps struct {
	Entries []Swap
	Total   decimal.Decimal
}

func (s *Swaps) Add(amount decimal.Decimal, at time.Time) {
	s.Entries = append(s.Entries, Swap{Date: at, Amount: amount})
	s.Total = s.Total.Add(amount)
}
