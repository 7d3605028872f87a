// Package navigator implements per-structure-type ε-greedy candidate
// selection: which known Farm/Mine/Tree/Barn/Home to walk toward next,
// learning from the reward each visit produced.
package navigator

import (
	"math"
	"math/rand"

	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
	"github.com/talgya/settlementsim/internal/mover"
	"github.com/talgya/settlementsim/internal/simerrors"
	"github.com/talgya/settlementsim/internal/structure"
)

// EscalationThreshold is the fraction of known candidates that must
// have been visited-and-rejected before a person gives up searching
// and starts a new construction site instead.
const EscalationThreshold = 0.37

// bandit tracks one structure type's per-location reward/visit state.
type bandit struct {
	reward      map[grid.Location]float64
	actionCount map[grid.Location]int
	epsilon     float64
	resetAfter  int
	lastAction  int // tick of the most recent selection
}

func newBandit(resetAfter int) *bandit {
	return &bandit{
		reward:      make(map[grid.Location]float64),
		actionCount: make(map[grid.Location]int),
		epsilon:     1.0,
		resetAfter:  resetAfter,
	}
}

func (b *bandit) ensure(loc grid.Location) {
	if _, ok := b.reward[loc]; !ok {
		b.reward[loc] = 0
		b.actionCount[loc] = 0
	}
}

// epsilonFor computes the decayed exploration rate: the floor-0.1
// logarithmic decay in total action count, unless the idle-reset timer
// has elapsed, in which case exploration resets to fully random.
func (b *bandit) epsilonFor() float64 {
	total := 0
	for _, c := range b.actionCount {
		total += c
	}
	eps := 1.0 / (1.0 + 0.5*math.Log(float64(total)+1))
	if eps < 0.1 {
		eps = 0.1
	}
	return eps
}

// select runs one ε-greedy draw over candidates, updating action
// counts and the idle-reset timer.
func (b *bandit) selectGreedy(candidates []grid.Location, rng *rand.Rand, tick int) grid.Location {
	for _, c := range candidates {
		b.ensure(c)
	}
	if tick-b.lastAction > b.resetAfter {
		b.reward = make(map[grid.Location]float64)
		b.actionCount = make(map[grid.Location]int)
		for _, c := range candidates {
			b.ensure(c)
		}
	}

	eps := b.epsilonFor()
	var chosen grid.Location
	if rng.Float64() < eps {
		chosen = candidates[rng.Intn(len(candidates))]
	} else {
		chosen = argmax(candidates, b.reward)
	}
	b.actionCount[chosen]++
	b.lastAction = tick
	return chosen
}

func argmax(candidates []grid.Location, reward map[grid.Location]float64) grid.Location {
	best := candidates[0]
	bestVal := reward[best]
	for _, c := range candidates[1:] {
		if reward[c] > bestVal {
			best = c
			bestVal = reward[c]
		}
	}
	return best
}

// Navigator is bound to one person and learns, per structure kind,
// which known locations of that kind are worth revisiting.
type Navigator struct {
	g     *grid.Grid
	mv    *mover.Mover
	rng   *rand.Rand
	bandits map[structure.Kind]*bandit

	currentKind   structure.Kind
	currentTarget grid.Location
	lastTarget    grid.Location
	hasTarget     bool
	turnCount     int
	rejected      map[grid.Location]bool
}

// LastTarget returns the most recent structure location MoveToWorkableStructure
// reported as reached, used by the caller to drive the subsequent
// reward update.
func (n *Navigator) LastTarget() grid.Location { return n.lastTarget }

// New returns a Navigator for one person, with each tracked structure
// kind's idle-reset threshold drawn once from U[resetMin, resetMax]
// (resetMin itself when resetMax is not above it).
func New(g *grid.Grid, mv *mover.Mover, rng *rand.Rand, resetMin, resetMax int) *Navigator {
	kinds := []structure.Kind{structure.KindFarm, structure.KindMine, structure.KindTree, structure.KindBarn, structure.KindHome}
	n := &Navigator{g: g, mv: mv, rng: rng, bandits: make(map[structure.Kind]*bandit), rejected: make(map[grid.Location]bool)}
	for _, k := range kinds {
		span := resetMax - resetMin
		reset := resetMin
		if span > 0 {
			reset += rng.Intn(span + 1)
		}
		n.bandits[k] = newBandit(reset)
	}
	return n
}

// candidatesFor pulls known locations of kind from memory, using the
// memory label convention (single grid characters).
func candidatesFor(kind structure.Kind, mem *memory.Set, g *grid.Grid) []grid.Location {
	switch kind {
	case structure.KindFarm:
		return mem.LocationsOf("F")
	case structure.KindMine:
		return mem.LocationsOf("M")
	case structure.KindTree:
		return mem.LocationsOf("*")
	case structure.KindBarn:
		return mem.LocationsOf("B")
	case structure.KindHome:
		return mem.LocationsOf("H")
	case structure.KindFarmConstruction:
		return mem.LocationsOf("f")
	case structure.KindMineConstruction:
		return mem.LocationsOf("m")
	case structure.KindBarnConstruction:
		return mem.LocationsOf("b")
	case structure.KindHomeConstruction:
		return mem.LocationsOf("h")
	}
	return nil
}

// MoveToWorkableStructure drives one step of "go find and reach a
// workable/usable structure of kind". It returns (reached, escalate,
// err): reached is true once the agent is adjacent to a structure with
// spare capacity/resource; escalate is true when the candidate pool
// has been exhausted past EscalationThreshold and the caller should
// start a new construction site instead of continuing to search.
func (n *Navigator) MoveToWorkableStructure(kind structure.Kind, mem *memory.Set, loc grid.Location, speed int, tick int, mvAgent mover.Agent, hasCapacity func(grid.Location) bool) (reached bool, escalate bool, err error) {
	if kind != n.currentKind {
		n.currentKind = kind
		n.hasTarget = false
		n.turnCount = 0
		n.rejected = make(map[grid.Location]bool)
	}
	n.turnCount++

	candidates := candidatesFor(kind, mem, n.g)
	if len(candidates) == 0 {
		return false, false, simerrors.ErrNoCandidate
	}

	if !n.hasTarget {
		if b, ok := n.bandits[kind]; ok && (kind == structure.KindFarm || kind == structure.KindMine || kind == structure.KindTree) {
			n.currentTarget = b.selectGreedy(candidates, n.rng, tick)
		} else {
			var unvisited []grid.Location
			for _, c := range candidates {
				if !n.rejected[c] {
					unvisited = append(unvisited, c)
				}
			}
			if len(unvisited) == 0 {
				return false, false, simerrors.ErrNoCandidate
			}
			n.currentTarget = closest(loc, unvisited)
		}
		n.hasTarget = true
	}

	if loc.IsAdjacent(n.currentTarget) {
		if kind == structure.KindTree || hasCapacity(n.currentTarget) {
			reached = true
			n.lastTarget = n.currentTarget
			n.hasTarget = false
			return reached, false, nil
		}
		n.rejected[n.currentTarget] = true
		n.hasTarget = false
		if (kind == structure.KindFarm || kind == structure.KindMine) &&
			float64(len(n.rejected))/float64(len(candidates)) >= EscalationThreshold {
			return false, true, nil
		}
		return n.MoveToWorkableStructure(kind, mem, loc, speed, tick, mvAgent, hasCapacity)
	}

	if err := n.mv.Towards(mvAgent, n.currentTarget, speed, tick); err != nil {
		return false, false, err
	}
	return false, false, nil
}

// UpdateReward applies the bandit update for the structure kind/target
// most recently reached: reward += (y - 2*turnCount) / actionCount.
func (n *Navigator) UpdateReward(kind structure.Kind, target grid.Location, y float64) {
	b, ok := n.bandits[kind]
	if !ok {
		return
	}
	b.ensure(target)
	count := b.actionCount[target]
	if count == 0 {
		count = 1
	}
	b.reward[target] += (y - 2*float64(n.turnCount)) / float64(count)
	n.turnCount = 0
}

func closest(from grid.Location, candidates []grid.Location) grid.Location {
	best := candidates[0]
	bestDist := from.EuclideanDistance(best)
	for _, c := range candidates[1:] {
		if d := from.EuclideanDistance(c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
