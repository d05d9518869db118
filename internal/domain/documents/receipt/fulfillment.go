package receipt

import "coldledger/internal/domain/stock"

// VarietyFulfilled reports whether every line of the given variety has
// zero current quantity. Varieties with no lines at all count as
// fulfilled vacuously; callers that care should check presence first.
func VarietyFulfilled(lines []stock.Line, variety stock.Variety) bool {
	for _, l := range lines {
		if l.Variety == variety && l.Current > 0 {
			return false
		}
	}
	return true
}

// FullyDrawnDown reports whether every stock line of the receipt has
// zero current quantity. This is the predicate behind the stored
// Fulfilled flag; it is evaluated on write paths only.
func (r *Receipt) FullyDrawnDown() bool {
	for _, l := range r.Lines {
		if l.Current > 0 {
			return false
		}
	}
	return len(r.Lines) > 0
}
