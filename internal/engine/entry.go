package engine

import (
	"fmt"
	"time"

	"fenrir/internal/common"
)

// State is the lifecycle of a booked OrderEntry.
type State int

const (
	StateNew State = iota
	StatePartiallyFilled
	StateFullyFilled
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StatePartiallyFilled:
		return "PARTIALLY_FILLED"
	case StateFullyFilled:
		return "FULLY_FILLED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// OrderEntry is the mutable book record derived from an immutable Order:
// a snapshot of the order's fields plus the remaining quantity and
// lifecycle state. OrderEntry is owned by exactly one TimeOrderQueue at a
// time; Product holds a separate, non-owning index of entries by id.
type OrderEntry struct {
	order common.Order

	side     common.Side
	symbol   string
	quantity int64
	price    *float64
	time     float64
	orderID  string

	remaining int64
	state     State
}

// NewOrderEntry derives a fresh OrderEntry from order. If order.Time is
// nil, the entry is stamped with the current wall-clock time (seconds,
// microsecond precision), matching OrderEntry.default_time in the
// marketsim source this engine was distilled from.
func NewOrderEntry(order common.Order) *OrderEntry {
	t := defaultTime()
	if order.Time != nil {
		t = *order.Time
	}
	return &OrderEntry{
		order:     order,
		side:      order.Side,
		symbol:    order.Symbol,
		quantity:  order.Quantity,
		price:     order.Price,
		time:      t,
		orderID:   order.ID,
		remaining: order.Quantity,
		state:     StateNew,
	}
}

func defaultTime() float64 {
	now := time.Now()
	return float64(now.Unix()) + float64(now.Nanosecond()/1000)/1e6
}

func (e *OrderEntry) Order() common.Order    { return e.order }
func (e *OrderEntry) Side() common.Side      { return e.side }
func (e *OrderEntry) Symbol() string         { return e.symbol }
func (e *OrderEntry) Quantity() int64        { return e.quantity }
func (e *OrderEntry) Price() *float64        { return e.price }
func (e *OrderEntry) Time() float64          { return e.time }
func (e *OrderEntry) OrderID() string        { return e.orderID }
func (e *OrderEntry) Remaining() int64       { return e.remaining }
func (e *OrderEntry) State() State           { return e.state }
func (e *OrderEntry) IsMarket() bool         { return e.price == nil }
func (e *OrderEntry) FilledQuantity() int64  { return e.quantity - e.remaining }

// Cancel zeroes the remaining quantity and marks the entry cancelled.
// This is not idempotent: callers must not cancel an entry already in a
// terminal state (Product.Cancel enforces this; OrderEntry itself does
// not, matching the source).
func (e *OrderEntry) Cancel() {
	e.remaining = 0
	e.state = StateCancelled
}

// Execute matches the receiver (the bid side) against counter (the ask
// side) for quantity units, or min(remaining, counter.remaining) if
// quantity is nil. Both entries' remaining is decremented and their
// state transitioned; the returned Execution carries provisional
// per-side fill prices taken from each entry's own price, to be
// rewritten later by OrderQueue.Execute's uniform-price pass.
//
// Callers must pass the bid entry as the receiver and the ask entry as
// counter.
func (bid *OrderEntry) Execute(ask *OrderEntry, quantity *int64) *Execution {
	q := quantity
	if q == nil {
		m := min(bid.remaining, ask.remaining)
		q = &m
	}

	bid.remaining -= *q
	ask.remaining -= *q

	bid.state = settledState(bid.remaining)
	ask.state = settledState(ask.remaining)

	return newExecution(bid, ask, *q, nil)
}

func settledState(remaining int64) State {
	if remaining == 0 {
		return StateFullyFilled
	}
	return StatePartiallyFilled
}
