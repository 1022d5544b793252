package engine

import (
	"testing"

	"fenrir/internal/common"

	"github.com/stretchr/testify/assert"
)

func newBuyEntry(price float64, quantity int64) *OrderEntry {
	p := price
	t := 0.0
	return NewOrderEntry(common.Order{Side: common.Buy, Symbol: "abc", Quantity: quantity, Price: &p, Time: &t})
}

func allocQuantities(allocations []*Allocation) []int64 {
	out := make([]int64, len(allocations))
	for i, a := range allocations {
		out[i] = a.Quantity
	}
	return out
}

func TestAllocate_Basic(t *testing.T) {
	bidQueue := newTimeOrderQueue(0)
	bidQueue.Push(newBuyEntry(120, 10))
	bidQueue.Push(newBuyEntry(120, 20))
	bidQueue.Push(newBuyEntry(120, 30))

	got := allocate(bidQueue.Entries(), bidQueue.Volume(), 18)
	assert.Equal(t, []int64{3, 6, 9}, allocQuantities(got))

	// Fully consume with an opposing market sell of equal size, then
	// re-derive the pro-rata split of the remaining quantity.
	askQueue := newTimeOrderQueue(0)
	askQueue.Push(NewOrderEntry(common.Order{Side: common.Sell, Symbol: "abc", Quantity: 18}))
	bidQueue.Execute(askQueue)

	got = allocate(bidQueue.Entries(), bidQueue.Volume(), 35)
	assert.Equal(t, []int64{6, 12, 17}, allocQuantities(got))
}

func TestAllocate_RoundingTieBreak(t *testing.T) {
	bidQueue := newTimeOrderQueue(0)
	for _, qty := range []int64{11, 13, 17, 19, 23} {
		bidQueue.Push(newBuyEntry(120, qty))
	}

	got := allocate(bidQueue.Entries(), bidQueue.Volume(), 41)
	assert.Equal(t, []int64{6, 7, 8, 9, 11}, allocQuantities(got))

	bidQueue2 := newTimeOrderQueue(0)
	for _, qty := range []int64{11, 13, 17, 19, 23} {
		bidQueue2.Push(newBuyEntry(120, qty))
	}
	got = allocate(bidQueue2.Entries(), bidQueue2.Volume(), 42)
	assert.Equal(t, []int64{6, 7, 9, 9, 11}, allocQuantities(got))
}
