// Package vision implements a person's field of view: what's visible
// from a location out to a radius, respecting line-of-sight occlusion
// from buildings and trees.
package vision

import (
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
)

// Opaque reports whether a cell blocks sight beyond it: anything that
// isn't the empty-char walkable ground blocks its own ray (buildings,
// construction sites, and trees are all solid from a distance).
func opaque(g *grid.Grid, l grid.Location) bool {
	return !g.IsEmpty(l)
}

// LookAround scans the eight compass rays from origin out to radius
// (Chebyshev distance) and returns everything seen as a fresh memory
// set stamped at tick. Each ray is independent: an opaque cell stops
// its own ray but never blocks a different ray, so the diagonal rays
// never cast a shadow across the axis-aligned ones.
func LookAround(g *grid.Grid, origin grid.Location, radius int, tick int) *memory.Set {
	seen := memory.New()
	seen.Add(cellLabel(g, origin), origin, tick)

	for _, dir := range directions {
		cur := origin
		for step := 1; step <= radius; step++ {
			cur = grid.Location{X: cur.X + dir.X, Y: cur.Y + dir.Y}
			if !g.InBounds(cur) {
				break
			}
			seen.Add(cellLabel(g, cur), cur, tick)
			if opaque(g, cur) {
				break
			}
		}
	}
	return seen
}

var directions = [8]grid.Location{
	{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1},
}

// cellLabel converts a cell's rune into the single-character memory
// label Memories stores (the same character vocabulary as the grid).
func cellLabel(g *grid.Grid, l grid.Location) string {
	ch, ok := g.CellAt(l)
	if !ok {
		return ""
	}
	return string(ch)
}
