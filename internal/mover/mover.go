// Package mover implements stepwise movement toward a target: vision
// refresh, re-planning, and the single-step-per-tick walk the
// scheduler's tasks drive every agent through.
package mover

import (
	"math/rand"

	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
	"github.com/talgya/settlementsim/internal/pathfind"
	"github.com/talgya/settlementsim/internal/simerrors"
	"github.com/talgya/settlementsim/internal/vision"
)

// Agent is the minimal surface Mover needs from whatever it's moving —
// satisfied by *person.Person without mover importing package person
// (which itself needs to import mover), avoiding a cycle.
type Agent interface {
	Location() grid.Location
	SetLocation(grid.Location)
	Memories() *memory.Set
}

// Mover binds movement operations to one grid and one shared RNG, so
// every step an agent takes is reproducible given the simulation seed.
type Mover struct {
	g            *grid.Grid
	rng          *rand.Rand
	visionRadius int
}

// New returns a Mover bound to g, drawing randomness from rng.
func New(g *grid.Grid, rng *rand.Rand, visionRadius int) *Mover {
	return &Mover{g: g, rng: rng, visionRadius: visionRadius}
}

// Towards advances a up to speed steps toward target, merging newly
// seen terrain into its memories before each step and re-planning the
// path every step (the target may have become unreachable, or a
// structure may have finished construction along the way).
func (m *Mover) Towards(a Agent, target grid.Location, speed int, tick int) error {
	if !m.g.InBounds(target) {
		return nil
	}
	if !m.g.IsWalkable(target) {
		replacement, ok := m.firstWalkableNeighbor(a.Location(), target)
		if !ok {
			return simerrors.ErrNoCandidate
		}
		target = replacement
	}

	for step := 0; step < speed; step++ {
		cur := a.Location()
		if cur == target {
			return nil
		}
		seen := vision.LookAround(m.g, cur, m.visionRadius, tick)
		a.Memories().Combine(seen)

		path, ok := pathfind.Find(m.g, cur, target)
		if !ok {
			return simerrors.ErrNoPath
		}
		if len(path) < 2 {
			return nil
		}
		next := path[1]
		if !cur.IsAdjacent(next) || !m.g.IsWalkable(next) {
			return simerrors.ErrIllegalStep
		}
		a.SetLocation(next)
	}
	return nil
}

// firstWalkableNeighbor returns the first walkable 8-neighbor of l,
// in the grid's fixed compass order, that is reachable from from; used
// when a target cell turns out to be inside a building's footprint.
func (m *Mover) firstWalkableNeighbor(from, l grid.Location) (grid.Location, bool) {
	for _, n := range l.Neighbors() {
		if m.g.InBounds(n) && m.g.IsWalkable(n) && m.CanGetTo(from, n) {
			return n, true
		}
	}
	return grid.Location{}, false
}

// Explore picks a uniformly random in-bounds, reachable, walkable cell
// and walks a toward it one step.
func (m *Mover) Explore(a Agent, tick int) error {
	target, ok := m.randomReachableWalkable(a.Location())
	if !ok {
		return simerrors.ErrNoCandidate
	}
	return m.Towards(a, target, 1, tick)
}

func (m *Mover) randomReachableWalkable(from grid.Location) (grid.Location, bool) {
	const maxAttempts = 25
	w, h := m.g.Width(), m.g.Height()
	if w == 0 || h == 0 {
		return grid.Location{}, false
	}
	for i := 0; i < maxAttempts; i++ {
		candidate := grid.Location{X: m.rng.Intn(w), Y: m.rng.Intn(h)}
		if !m.g.IsWalkable(candidate) {
			continue
		}
		if m.CanGetTo(from, candidate) {
			return candidate, true
		}
	}
	return grid.Location{}, false
}

// CanGetTo reports whether a path exists from->to, used by Explore's
// target draw, building-target replacement, and IsStuck.
func (m *Mover) CanGetTo(from, to grid.Location) bool {
	_, ok := pathfind.Find(m.g, from, to)
	return ok
}

// IsStuck reports whether a has no reachable open spot next to any
// existing structure — the condition under which the simulation driver
// culls an agent that can no longer make progress.
func (m *Mover) IsStuck(a Agent) bool {
	for top, s := range m.g.AllStructures() {
		w, h := s.Footprint()
		for dy := -1; dy <= h; dy++ {
			for dx := -1; dx <= w; dx++ {
				cell := grid.Location{X: top.X + dx, Y: top.Y + dy}
				if m.g.InBounds(cell) && m.g.IsEmpty(cell) && m.CanGetTo(a.Location(), cell) {
					return false
				}
			}
		}
	}
	return true
}
