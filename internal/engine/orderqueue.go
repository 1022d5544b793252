package engine

import (
	"math"

	"fenrir/internal/common"
)

// OrderQueue is one side's book: a heap of PriceOrderQueues ordered by
// marketability, plus the aggregate statistics (count/volume, split into
// market- and limit-order subtotals) that drive the auction-feasibility
// predicate and the next-price computation.
type OrderQueue struct {
	heap *KeyedHeap[float64, *PriceOrderQueue]

	count  int
	volume int64

	marketOrderCount  int
	marketOrderVolume int64
	limitOrderCount   int
	limitOrderVolume  int64

	nextPrice *float64
}

// NewOrderQueue returns an empty side book.
func NewOrderQueue() *OrderQueue {
	return &OrderQueue{
		heap: NewKeyedHeap[float64, *PriceOrderQueue](func(a, b float64) bool { return a < b }),
	}
}

func (q *OrderQueue) Count() int              { return q.count }
func (q *OrderQueue) Volume() int64           { return q.volume }
func (q *OrderQueue) MarketOrderCount() int   { return q.marketOrderCount }
func (q *OrderQueue) MarketOrderVolume() int64 { return q.marketOrderVolume }
func (q *OrderQueue) LimitOrderCount() int    { return q.limitOrderCount }
func (q *OrderQueue) LimitOrderVolume() int64 { return q.limitOrderVolume }
func (q *OrderQueue) NextPrice() *float64     { return q.nextPrice }

func (q *OrderQueue) updateStats(deltaCount int, deltaVolume int64, isMarketOrder bool) {
	q.count += deltaCount
	q.volume += deltaVolume
	if isMarketOrder {
		q.marketOrderCount += deltaCount
		q.marketOrderVolume += deltaVolume
	} else {
		q.limitOrderCount += deltaCount
		q.limitOrderVolume += deltaVolume
	}
}

// updateNextPrice recomputes the top-of-book limit price. If the top
// level is a market-order level, it is popped, the next level (if any)
// inspected, then pushed back, leaving the heap structurally unchanged.
func (q *OrderQueue) updateNextPrice() {
	if q.heap.Empty() {
		q.nextPrice = nil
		return
	}
	_, top, _ := q.heap.Peek()
	if top.Price() != nil {
		q.nextPrice = top.Price()
		return
	}

	key, child, _ := q.heap.Pop()
	if q.heap.Empty() {
		q.nextPrice = nil
	} else {
		_, next, _ := q.heap.Peek()
		q.nextPrice = next.Price()
	}
	_ = q.heap.Push(key, child)
}

// getPriceKey maps an entry to its marketability ordinal: market orders
// always top the heap; among limit orders, higher buy prices and lower
// sell prices sort first.
func getPriceKey(entry *OrderEntry) float64 {
	if entry.IsMarket() {
		return math.Inf(-1)
	}
	if entry.Side() == common.Buy {
		return -*entry.Price()
	}
	return *entry.Price()
}

// Push inserts entry into its price level (creating the level if
// necessary) and refreshes aggregate stats and next-price.
func (q *OrderQueue) Push(entry *OrderEntry) {
	priceKey := getPriceKey(entry)

	child, ok := q.heap.Get(priceKey)
	if !ok {
		child = newPriceOrderQueue(entry.Price())
		_ = q.heap.Push(priceKey, child)
	}

	child.Push(entry)
	q.updateStats(1, entry.Remaining(), entry.IsMarket())
	q.updateNextPrice()
}

// Cancel locates entry's price level and delegates, updating stats
// before the entry's remaining quantity is zeroed.
func (q *OrderQueue) Cancel(entry *OrderEntry) {
	priceKey := getPriceKey(entry)
	child, ok := q.heap.Get(priceKey)
	if !ok {
		panic("orderqueue: order entry does not exist for price key")
	}

	q.updateStats(-1, -entry.Remaining(), entry.IsMarket())
	q.updateNextPrice()
	child.Cancel(entry)
}

func (q *OrderQueue) popEmptyValues() {
	for !q.heap.Empty() {
		_, top, _ := q.heap.Peek()
		if top.Empty() || top.Volume() == 0 {
			_, _, _ = q.heap.Pop()
		} else {
			break
		}
	}
}

// canExecute is the auction-feasibility predicate: without at least one
// side's limit anchor once the smaller side's market-order volume is
// exhausted, no execution price can be determined.
func (bid *OrderQueue) canExecute(ask *OrderQueue) bool {
	switch {
	case bid.marketOrderVolume == ask.marketOrderVolume:
		if bid.limitOrderVolume == 0 || ask.limitOrderVolume == 0 {
			return false
		}
		if *bid.nextPrice < *ask.nextPrice {
			return false
		}
	case bid.marketOrderVolume < ask.marketOrderVolume:
		if bid.limitOrderVolume == 0 {
			return false
		}
	default:
		if ask.limitOrderVolume == 0 {
			return false
		}
	}
	return true
}

// Execute runs one matching round (continuous or call-auction) between
// the receiver (bid side) and ask. It returns nil if canExecute rejects
// the round; otherwise it matches price-level by price-level until the
// tops stop crossing or one side empties, then rewrites every Execution
// produced to the round's single uniform clearing price. A round that
// canExecute accepts but that produces no Execution panics.
func (bid *OrderQueue) Execute(ask *OrderQueue) []*Execution {
	if !bid.canExecute(ask) {
		return nil
	}

	var executions []*Execution

	for !bid.heap.Empty() && !ask.heap.Empty() {
		_, bidChild, _ := bid.heap.Peek()
		_, askChild, _ := ask.heap.Peek()

		if bidChild.Price() != nil && askChild.Price() != nil {
			if *bidChild.Price() < *askChild.Price() {
				break
			}
		}

		childExecutions := bidChild.Execute(askChild)

		bid.popEmptyValues()
		ask.popEmptyValues()

		executions = append(executions, childExecutions...)
	}

	if len(executions) == 0 {
		panic("orderqueue: no executions produced though canExecute returned true")
	}

	last := executions[len(executions)-1]
	bp, ap := last.BidFill.Price, last.AskFill.Price

	var price float64
	switch {
	case bp == nil:
		price = *ap
	case ap == nil:
		price = *bp
	default:
		price = (*bp + *ap) / 2
	}

	for _, execution := range executions {
		bidDelta, askDelta := 0, 0
		if execution.BidFill.CumulativeQuantity == execution.BidFill.OrderQuantity {
			bidDelta = -1
		}
		if execution.AskFill.CumulativeQuantity == execution.AskFill.OrderQuantity {
			askDelta = -1
		}
		bid.updateStats(bidDelta, -execution.Quantity, execution.BidFill.Price == nil)
		ask.updateStats(askDelta, -execution.Quantity, execution.AskFill.Price == nil)
		execution.rewritePrice(price)
	}

	bid.updateNextPrice()
	ask.updateNextPrice()

	return executions
}

// GetOrderBook returns the side's depth-of-book snapshot in marketability
// order, filtering out levels that have drained to zero volume.
func (q *OrderQueue) GetOrderBook() []OrderStat {
	var book []OrderStat
	for child := range q.heap.Values() {
		if child.Volume() > 0 {
			book = append(book, OrderStat{Price: child.Price(), Volume: child.Volume(), Count: child.Count()})
		}
	}
	return book
}
