package engine

// OrderStat summarizes one price level of an OrderQueue for depth-of-book
// snapshots: the price, its aggregate remaining volume, and the number of
// live entries resting there.
type OrderStat struct {
	Price  *float64
	Volume int64
	Count  int
}
