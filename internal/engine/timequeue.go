package engine

// TimeOrderQueue holds the entries that arrived at the same timestamp, in
// arrival (FIFO) order. volume is always kept equal to the sum of the
// remaining entries' Remaining(); Push and Cancel both maintain it.
type TimeOrderQueue struct {
	time    float64
	entries []*OrderEntry
	volume  int64
}

func newTimeOrderQueue(t float64) *TimeOrderQueue {
	return &TimeOrderQueue{time: t}
}

func (q *TimeOrderQueue) Time() float64          { return q.time }
func (q *TimeOrderQueue) Volume() int64          { return q.volume }
func (q *TimeOrderQueue) Entries() []*OrderEntry { return q.entries }
func (q *TimeOrderQueue) Empty() bool            { return len(q.entries) == 0 }

// Count returns the number of live entries (remaining > 0) in the bucket.
func (q *TimeOrderQueue) Count() int {
	n := 0
	for _, e := range q.entries {
		if e.Remaining() > 0 {
			n++
		}
	}
	return n
}

// Push appends entry to the bucket's arrival order.
func (q *TimeOrderQueue) Push(entry *OrderEntry) {
	q.volume += entry.Remaining()
	q.entries = append(q.entries, entry)
}

// Cancel removes entry's remaining quantity from the bucket's volume and
// cancels it in place. Entries are never spliced out of the arrival
// order; once a bucket's volume drops to zero, PriceOrderQueue drops the
// whole bucket.
func (q *TimeOrderQueue) Cancel(entry *OrderEntry) {
	q.volume -= entry.Remaining()
	entry.Cancel()
}

// Execute matches the receiver (bid bucket) against ask, the peer bucket
// at the top of the opposing side's top price level. It pro-rata
// allocates min(bid.volume, ask.volume) across each side's live entries,
// then walks both allocation vectors in lockstep, producing one
// Execution per crossing pair.
func (bid *TimeOrderQueue) Execute(ask *TimeOrderQueue) []*Execution {
	target := min(bid.volume, ask.volume)
	if target == 0 {
		return nil
	}

	bidAllocs := allocate(bid.entries, bid.volume, target)
	askAllocs := allocate(ask.entries, ask.volume, target)

	var executions []*Execution
	b, a := 0, 0
	bidEntry, bidQty := bidAllocs[b].Entry, bidAllocs[b].Quantity
	askEntry, askQty := askAllocs[a].Entry, askAllocs[a].Quantity

	for b < len(bidAllocs) && a < len(askAllocs) {
		quantity := min(bidQty, askQty)
		execution := bidEntry.Execute(askEntry, &quantity)
		executions = append(executions, execution)

		bid.volume -= execution.Quantity
		ask.volume -= execution.Quantity
		bidQty -= execution.Quantity
		askQty -= execution.Quantity

		if bidQty == 0 {
			b++
			if b < len(bidAllocs) {
				bidEntry, bidQty = bidAllocs[b].Entry, bidAllocs[b].Quantity
			}
		}
		if askQty == 0 {
			a++
			if a < len(askAllocs) {
				askEntry, askQty = askAllocs[a].Entry, askAllocs[a].Quantity
			}
		}
	}

	return executions
}
