package engine

import (
	"fmt"

	"fenrir/internal/common"
)

// Fill is an immutable record of one side of an Execution. Price is
// provisional (taken from the entry's own price, possibly nil for a
// market order) until OrderQueue.Execute rewrites every Fill in a match
// round to the round's uniform clearing price.
type Fill struct {
	Order              common.Order
	Quantity           int64
	Price              *float64
	Side               common.Side
	Symbol             string
	OrderQuantity      int64
	OrderPrice         *float64
	OrderTime          float64
	OrderID            string
	CumulativeQuantity int64
}

func newFill(entry *OrderEntry, quantity int64, price *float64) *Fill {
	p := price
	if p == nil {
		p = entry.price
	}
	return &Fill{
		Order:              entry.order,
		Quantity:           quantity,
		Price:              p,
		Side:               entry.side,
		Symbol:             entry.symbol,
		OrderQuantity:      entry.quantity,
		OrderPrice:         entry.price,
		OrderTime:          entry.time,
		OrderID:            entry.orderID,
		CumulativeQuantity: entry.FilledQuantity(),
	}
}

func (f *Fill) String() string {
	return fmt.Sprintf("Fill(side=%s, symbol=%s, quantity=%d, price=%v, cumulative_quantity=%d)",
		f.Side, f.Symbol, f.Quantity, f.Price, f.CumulativeQuantity)
}

// Execution is an immutable record produced by matching: two Fills, bid
// and ask, that always refer to the same traded quantity.
type Execution struct {
	Quantity int64
	Price    *float64
	BidFill  *Fill
	AskFill  *Fill
}

func newExecution(bid, ask *OrderEntry, quantity int64, price *float64) *Execution {
	return &Execution{
		Quantity: quantity,
		Price:    price,
		BidFill:  newFill(bid, quantity, price),
		AskFill:  newFill(ask, quantity, price),
	}
}

// rewritePrice overwrites the Execution's price and both its Fills'
// prices with the round's uniform clearing price.
func (e *Execution) rewritePrice(price float64) {
	e.Price = &price
	e.BidFill.Price = &price
	e.AskFill.Price = &price
}

func (e *Execution) String() string {
	return fmt.Sprintf("Execution(bid_fill=%s, ask_fill=%s, quantity=%d, price=%v)", e.BidFill, e.AskFill, e.Quantity, e.Price)
}
