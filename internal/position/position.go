// Package position computes fractional sort keys for ordered siblings.
//
// Siblings are ordered by an ascending float64 position. Inserting between
// two siblings takes their midpoint, so a reorder touches only the moved
// entity. Repeated halving eventually runs out of float precision; Collapsed
// detects that and Renormalize produces fresh, evenly spaced keys.
package position

// Compute returns the position for an entity inserted at index among
// siblings, which must be in ascending order and must not contain the
// entity being placed.
//
//   - no siblings: 1
//   - index 0: half of the first position
//   - index len(siblings): one past the last position
//   - otherwise: midpoint of the neighbors at index-1 and index
//
// An index outside [0, len(siblings)] yields len(siblings)+1; it never panics.
func Compute(siblings []float64, index int) float64 {
	n := len(siblings)
	switch {
	case n == 0:
		return 1.0
	case index < 0 || index > n:
		return float64(n) + 1.0
	case index == 0:
		return siblings[0] / 2
	case index == n:
		return siblings[n-1] + 1
	default:
		return (siblings[index-1] + siblings[index]) / 2
	}
}

// Append returns max(siblings)+1, or 1 when there are none. This is the rule
// the persistence layer uses for newly created entities.
func Append(siblings []float64) float64 {
	if len(siblings) == 0 {
		return 1.0
	}
	maxPos := siblings[0]
	for _, p := range siblings[1:] {
		if p > maxPos {
			maxPos = p
		}
	}
	return maxPos + 1
}

// Collapsed reports whether the value Compute produced for index failed to
// land strictly between its neighbors (or strictly outside the boundary
// sibling), which happens once float precision is exhausted.
func Collapsed(siblings []float64, index int, p float64) bool {
	n := len(siblings)
	if n == 0 || index < 0 || index > n {
		return false
	}
	if index > 0 && !(p > siblings[index-1]) {
		return true
	}
	if index < n && !(p < siblings[index]) {
		return true
	}
	// halving toward zero eventually underflows to zero or a subnormal
	return index == 0 && p <= 0
}

// Renormalize returns n evenly spaced positions 1..n.
func Renormalize(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}
