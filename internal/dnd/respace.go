package dnd

import "github.com/thenoetrevino/groupboard/internal/position"

// Respace assigns evenly spaced positions to a container as it will look
// once moved is placed at index among the others. ids and positions describe
// the container's current order; moved may or may not be among them.
// Entries whose position does not change are left out, except moved, which
// is always present.
func Respace[ID comparable](ids []ID, positions []float64, moved ID, index int) map[ID]float64 {
	current := make(map[ID]float64, len(ids))
	order := make([]ID, 0, len(ids)+1)
	for i, id := range ids {
		if id == moved {
			continue
		}
		current[id] = positions[i]
		order = append(order, id)
	}
	index = clamp(index, len(order))
	order = append(order[:index], append([]ID{moved}, order[index:]...)...)

	out := make(map[ID]float64, len(order))
	for i, p := range position.Renormalize(len(order)) {
		id := order[i]
		if id == moved || current[id] != p {
			out[id] = p
		}
	}
	return out
}
