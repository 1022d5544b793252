package engine

import (
	"fmt"
	"math"
)

// Allocation is one live entry's share of a pro-rata batch fill.
type Allocation struct {
	Entry    *OrderEntry
	Quantity int64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("Allocation(entry=%v, quantity=%d)", a.Entry, a.Quantity)
}

// allocate splits target units across the live entries (remaining > 0)
// of entries, proportionally to each entry's remaining quantity. volume
// is the sum of remaining across entries (the owning bucket's tracked
// volume); unit = target/volume.
//
// Each tentative share is round-half-to-even (math.RoundToEven matches
// Python's round() exactly for this purpose). If the tentative shares
// don't sum to target, the remainder is walked off one unit at a time:
// added from the front if short, subtracted from the back if over,
// exactly as the reference allocator's rounding tie-break does. This is
// the only place order-of-arrival breaks a tie within a pro-rata split.
func allocate(entries []*OrderEntry, volume int64, target int64) []*Allocation {
	live := make([]*OrderEntry, 0, len(entries))
	for _, e := range entries {
		if e.Remaining() > 0 {
			live = append(live, e)
		}
	}

	unit := float64(target) / float64(volume)
	allocations := make([]*Allocation, len(live))
	sum := int64(0)
	for i, e := range live {
		q := int64(math.RoundToEven(float64(e.Remaining()) * unit))
		allocations[i] = &Allocation{Entry: e, Quantity: q}
		sum += q
	}

	for sum != target {
		if sum < target {
			for i := 0; i < len(allocations) && sum < target; i++ {
				allocations[i].Quantity++
				sum++
			}
		} else {
			for i := len(allocations) - 1; i >= 0 && sum > target; i-- {
				allocations[i].Quantity--
				sum--
			}
		}
	}

	return allocations
}
