package simulation

import (
	"fmt"

	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/structure"
)

// RunYear advances the simulation one full simulated year: days_per_year
// days, each of actions_per_day actions per living person, followed by
// the once-a-year aging/births/tree-growth/disaster hooks.
func (s *Simulation) RunYear() {
	daysPerYear := s.cfg.Int("days_per_year", 20)
	for d := 0; d < daysPerYear; d++ {
		s.RunDay()
	}
	s.endOfYear()
	s.year++
}

// RunDay advances one simulated day: actions_per_day ticks, each
// driving every living person once, followed by the end-of-day hooks
// (construction promotion, spouse memory exchange, stuck-agent cull).
func (s *Simulation) RunDay() {
	actionsPerDay := s.cfg.Int("actions_per_day", 20)
	for a := 0; a < actionsPerDay; a++ {
		s.RunTick()
	}
	s.endOfDay()
	s.day++
}

// RunTick drives one action for every living person, then merges
// memories pairwise among workers present at the same Work structure.
func (s *Simulation) RunTick() {
	ctx := s.thinkerContext()
	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if p.Dead() {
			continue
		}
		p.Act(ctx)
	}
	s.exchangeWorkplaceMemories()
	s.tick++
}

// exchangeWorkplaceMemories merges memories pairwise among every pair
// of living people standing at the same Work structure this tick. This
// is the intended reading of the source system's
// work_structures_exchange_memories, whose Work-vs-not-Work filter was
// inverted from what spec.md and the method's own name describe (see
// DESIGN.md Open Question 2).
func (s *Simulation) exchangeWorkplaceMemories() {
	byLocation := make(map[grid.Location][]int)
	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if p.Dead() {
			continue
		}
		if kind, ok := s.structureKindAt(p.Location()); ok && kind.IsWork() {
			top, _ := s.grid.TopLeftOf(p.Location())
			byLocation[top] = append(byLocation[top], pk)
		}
	}
	for _, pks := range byLocation {
		for i := 0; i < len(pks); i++ {
			for j := i + 1; j < len(pks); j++ {
				a := s.people[pks[i]]
				b := s.people[pks[j]]
				a.Memories().Combine(b.Memories())
				b.Memories().Combine(a.Memories())
			}
		}
	}
}

// endOfDay promotes finished constructions, exchanges memories between
// spouses, and culls agents that can no longer reach anywhere useful.
func (s *Simulation) endOfDay() {
	promoted := s.grid.TurnCompletedConstructionsToBuildings()
	for _, loc := range promoted {
		s.emit("construction", fmt.Sprintf("a building was completed at (%d,%d)", loc.X, loc.Y))
	}

	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if p.Dead() {
			s.emit("death", fmt.Sprintf("%s has died", p.Name()))
		}
	}

	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if p.Dead() {
			continue
		}
		if spouseID, ok := p.Spouse(); ok {
			if spousePK, ok := pkFromID(spouseID); ok {
				if spouse, ok := s.people[spousePK]; ok && !spouse.Dead() {
					p.Memories().Combine(spouse.Memories())
					spouse.Memories().Combine(p.Memories())
				}
			}
		}
	}

	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if p.Dead() {
			continue
		}
		if p.IsStuck() {
			p.MarkDead()
			s.emit("death", fmt.Sprintf("%s could not reach anywhere and was lost", p.Name()))
		}
	}
	s.reapDead()
}

// endOfYear runs the once-per-year hooks: aging, new births, tree
// growth, and a small chance of a disaster destroying a structure.
func (s *Simulation) endOfYear() {
	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if !p.Dead() {
			p.Birthday()
		}
	}
	s.reapDead()

	s.marriagesProduceBabies()

	p := s.cfg.Float("tree_grow_probability", 0.02)
	planted := s.grid.GrowTrees(s.rng, p)
	if len(planted) > 0 {
		s.emit("growth", fmt.Sprintf("%d new trees grew", len(planted)))
	}

	s.maybeDisaster()

	for _, person := range s.people {
		person.Scheduler().Flush()
	}
}

// marriagesProduceBabies gives every married couple within the
// marriageable age band a 1-in-N chance of a new child, spawned at the
// spouse's home.
func (s *Simulation) marriagesProduceBabies() {
	minAge := s.cfg.Int("marriage_age_min", 20)
	maxAge := s.cfg.Int("marriage_age_max", 50)
	seen := make(map[int]bool)
	for _, pk := range s.sortedPKs() {
		p := s.people[pk]
		if p.Dead() || seen[pk] {
			continue
		}
		spouseID, married := p.Spouse()
		if !married {
			continue
		}
		spousePK, ok := pkFromID(spouseID)
		if !ok {
			continue
		}
		seen[pk] = true
		seen[spousePK] = true
		if p.Age() < minAge || p.Age() > maxAge {
			continue
		}
		home, hasHome := p.Home()
		if !hasHome {
			continue
		}
		if s.rng.Float64() < 0.2 {
			child := s.SpawnPerson(home, 0)
			s.emit("birth", fmt.Sprintf("%s was born", child.Name()))
		}
	}
}

func (s *Simulation) maybeDisaster() {
	const disasterChance = 0.05
	if s.rng.Float64() >= disasterChance {
		return
	}
	structs := s.grid.AllStructures()
	if len(structs) == 0 {
		return
	}
	locs := make([]grid.Location, 0, len(structs))
	for l := range structs {
		locs = append(locs, l)
	}
	target := locs[s.rng.Intn(len(locs))]
	if st, ok := structs[target]; ok {
		if _, isWork := st.(*structure.Work); isWork {
			return // trees/farms/mines regrow; disasters hit buildings
		}
	}
	_ = s.grid.Destroy(target)
	s.emit("disaster", fmt.Sprintf("a disaster destroyed the structure at (%d,%d)", target.X, target.Y))
}

func (s *Simulation) reapDead() {
	for pk, p := range s.people {
		if p.Dead() {
			delete(s.people, pk)
		}
	}
}

func pkFromID(id string) (int, bool) {
	if len(id) < 3 || id[:2] != "p-" {
		return 0, false
	}
	n := 0
	for _, c := range id[2:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
