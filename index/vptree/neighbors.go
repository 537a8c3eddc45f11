package vptree

// neighbor is a search candidate with its angular distance to the query.
type neighbor struct {
	ref  int
	dist float64
}

// neighbors is a max-heap keyed by distance; the root is the current worst
// candidate, which bounds the search radius.
type neighbors []neighbor

func (h neighbors) Len() int           { return len(h) }
func (h neighbors) Less(i, j int) bool { return h[i].dist > h[j].dist }
func (h neighbors) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighbors) Push(x any) {
	*h = append(*h, x.(neighbor))
}

func (h *neighbors) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
