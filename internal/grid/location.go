// Package grid implements the settlement's square cell grid: location
// arithmetic, the walkable character alphabet, structure placement,
// tree groves, and construction promotion.
package grid

import "math"

// Location is an integer grid coordinate. Two locations are adjacent
// ("one away") under Chebyshev distance, matching the 8-direction
// movement the mover and pathfinder both assume.
type Location struct {
	X, Y int
}

// neighborDeltas lists the eight offsets in a fixed order (N, NE, E,
// SE, S, SW, W, NW) so any caller that needs a deterministic
// iteration order — tree growth's shuffle, the pathfinder's tie
// break — draws from the same canonical ordering.
var neighborDeltas = [8]Location{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Neighbors returns the eight locations adjacent to l, in fixed order.
func (l Location) Neighbors() [8]Location {
	var out [8]Location
	for i, d := range neighborDeltas {
		out[i] = Location{l.X + d.X, l.Y + d.Y}
	}
	return out
}

// IsAdjacent reports whether l and other are within Chebyshev distance
// 1 of each other (including the degenerate case l == other).
func (l Location) IsAdjacent(other Location) bool {
	return l.ChebyshevDistance(other) <= 1
}

// ChebyshevDistance is the minimum number of 8-direction steps between
// l and other.
func (l Location) ChebyshevDistance(other Location) int {
	dx := abs(l.X - other.X)
	dy := abs(l.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// EuclideanDistance is used for tie-breaking and candidate ranking
// where the spec calls for "closest" rather than step count.
func (l Location) EuclideanDistance(other Location) float64 {
	dx := float64(l.X - other.X)
	dy := float64(l.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
