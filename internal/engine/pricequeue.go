package engine

// PriceOrderQueue groups the time buckets sitting at one price into a
// KeyedHeap ordered by arrival time. Count and volume are kept in step
// with the child bucket on every push/cancel.
type PriceOrderQueue struct {
	price  *float64
	heap   *KeyedHeap[float64, *TimeOrderQueue]
	count  int
	volume int64
}

func newPriceOrderQueue(price *float64) *PriceOrderQueue {
	return &PriceOrderQueue{
		price: price,
		heap:  NewKeyedHeap[float64, *TimeOrderQueue](func(a, b float64) bool { return a < b }),
	}
}

func (q *PriceOrderQueue) Price() *float64 { return q.price }
func (q *PriceOrderQueue) Count() int      { return q.count }
func (q *PriceOrderQueue) Volume() int64   { return q.volume }
func (q *PriceOrderQueue) Empty() bool     { return q.heap.Empty() }

// Push routes entry to (or creates) the time bucket for its timestamp.
func (q *PriceOrderQueue) Push(entry *OrderEntry) {
	t := entry.Time()
	child, ok := q.heap.Get(t)
	if !ok {
		child = newTimeOrderQueue(t)
		_ = q.heap.Push(t, child)
	}
	child.Push(entry)
	q.count++
	q.volume += entry.Remaining()
}

// Cancel locates entry's time bucket and delegates. Stats are updated
// before delegating to the bucket's Cancel, which zeroes the entry's
// remaining quantity.
func (q *PriceOrderQueue) Cancel(entry *OrderEntry) {
	t := entry.Time()
	child, ok := q.heap.Get(t)
	if !ok {
		panic("pricequeue: order entry does not exist for time key")
	}

	q.count--
	q.volume -= entry.Remaining()
	child.Cancel(entry)
}

// popEmptyValues drops time buckets off the top of the heap while they
// are empty or have drained to zero volume.
func (q *PriceOrderQueue) popEmptyValues() {
	for !q.heap.Empty() {
		_, top, _ := q.heap.Peek()
		if top.Empty() || top.Volume() == 0 {
			_, _, _ = q.heap.Pop()
		} else {
			break
		}
	}
}

// Execute matches the receiver (bid side) against ask, bucket by bucket,
// oldest timestamp first on each side.
func (bid *PriceOrderQueue) Execute(ask *PriceOrderQueue) []*Execution {
	var executions []*Execution

	for !bid.heap.Empty() && !ask.heap.Empty() {
		_, bidChild, _ := bid.heap.Peek()
		_, askChild, _ := ask.heap.Peek()

		bidOrigCount := bidChild.Count()
		askOrigCount := askChild.Count()

		childExecutions := bidChild.Execute(askChild)

		bid.count -= bidOrigCount - bidChild.Count()
		ask.count -= askOrigCount - askChild.Count()

		bid.popEmptyValues()
		ask.popEmptyValues()

		for _, execution := range childExecutions {
			bid.volume -= execution.Quantity
			ask.volume -= execution.Quantity
		}

		executions = append(executions, childExecutions...)
	}

	return executions
}
