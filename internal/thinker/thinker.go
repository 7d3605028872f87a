// Package thinker implements a person's per-tick decision making: what
// tasks to queue this tick, and how to re-weigh every task's priority
// based on current needs, memories, and known resource levels.
package thinker

import (
	"math/rand"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/scheduler"
	"github.com/talgya/settlementsim/internal/structure"
)

// Context carries the read-only world state a Thinker needs to weigh
// priorities: grid size (for the Explore scaling) and the grid itself
// (for looking up barn resource levels from remembered locations).
type Context struct {
	Grid     *grid.Grid
	Config   *config.Settings
	Tick     int
	Rng      *rand.Rand
	Registry scheduler.Registry
}

// defaultPriorities mirrors the source system's starting table: every
// task begins at a fixed priority before adjustPriorities reshapes it
// per tick. Priority convention: higher number means sooner (Open
// Question decision, see DESIGN.md).
func defaultPriorities() map[scheduler.TaskKind]int {
	return map[scheduler.TaskKind]int{
		scheduler.KindEat:                     10,
		scheduler.KindFindHome:                6,
		scheduler.KindExplore:                 1,
		scheduler.KindFindSpouse:              1,
		scheduler.KindTransport:               5,
		scheduler.KindChopTree:                2,
		scheduler.KindWorkFarm:                4,
		scheduler.KindWorkMine:                2,
		scheduler.KindBuildBarn:               3,
		scheduler.KindBuildHome:               3,
		scheduler.KindBuildFarm:               3,
		scheduler.KindBuildMine:               3,
		scheduler.KindStartFarmConstruction:   1,
		scheduler.KindStartBarnConstruction:   1,
		scheduler.KindStartMineConstruction:   1,
		scheduler.KindStartHomeConstruction:   1,
	}
}

// Thinker owns one person's preferences and work-task bandit, and
// rewrites their scheduler's priorities every tick.
type Thinker struct {
	hungerPreference int
	workRewards      map[scheduler.TaskKind]float64
	priorities       map[scheduler.TaskKind]int
	rng              *rand.Rand
}

// New draws a hunger preference from [min,max) and seeds a flat
// work-task reward table, ready to start learning from outcomes.
func New(rng *rand.Rand, cfg *config.Settings) *Thinker {
	min := cfg.Int("hunger_pref_min", 50)
	max := cfg.Int("hunger_pref_max", 100)
	pref := min
	if max > min {
		pref += rng.Intn(max - min)
	}
	return &Thinker{
		hungerPreference: pref,
		workRewards: map[scheduler.TaskKind]float64{
			scheduler.KindWorkFarm: 0,
			scheduler.KindWorkMine: 0,
			scheduler.KindChopTree: 0,
		},
		priorities: defaultPriorities(),
		rng:        rng,
	}
}

// UpdateWorkReward accumulates a reward for one of the three gathering
// task kinds, used to bias future addWorkTask draws.
func (t *Thinker) UpdateWorkReward(kind scheduler.TaskKind, reward float64) {
	t.workRewards[kind] += reward
}

// Priority returns the current priority for kind.
func (t *Thinker) Priority(kind scheduler.TaskKind) int { return t.priorities[kind] }

// TakeAction runs one tick of decision making for a: hunger/health
// upkeep, task population, scheduler execution, and priority
// adjustment — mirroring the take_action/_add_tasks/_adjust_priorities
// split in the source system.
func (t *Thinker) TakeAction(a scheduler.Agent, sched *scheduler.Scheduler, ctx Context) {
	a.SetHunger(-1)
	switch {
	case a.Hunger() < ctx.Config.Int("hunger_damage_threshold", 20):
		a.SetHealth(-1)
	case a.Hunger() > ctx.Config.Int("hunger_regen_threshold", 50):
		a.SetHealth(1)
	}

	t.addTasks(a, sched)
	sched.Execute(a, scheduler.Context{Grid: ctx.Grid, Config: ctx.Config, Tick: ctx.Tick, Rng: ctx.Rng, Registry: ctx.Registry})
	t.adjustPriorities(a, ctx)
}

func (t *Thinker) addTasks(a scheduler.Agent, sched *scheduler.Scheduler) {
	sched.Add(scheduler.NewExplore(), t.priorities[scheduler.KindExplore])

	if _, married := a.Spouse(); !married {
		sched.Add(scheduler.NewFindSpouse(), t.priorities[scheduler.KindFindSpouse])
	}
	if _, home := a.Home(); !home {
		sched.Add(scheduler.NewFindHome(), t.priorities[scheduler.KindFindHome])
	}
	if a.BackpackHasItems() {
		sched.Add(scheduler.NewTransport(), t.priorities[scheduler.KindTransport])
	}
	if a.BackpackHasCapacity() {
		t.addWorkTask(sched)
	}
	if a.Hunger() < t.hungerPreference {
		sched.Add(scheduler.NewEat(), t.priorities[scheduler.KindEat])
	}
}

// addWorkTask runs the person-level epsilon-greedy choice among the
// three gathering tasks. Unlike the source system's
// np.random.randint(0, len(keys)-1) — which silently excludes the last
// key from the random branch — this selects uniformly across all
// three, since nothing in the specification calls out that narrowing
// as intended (see DESIGN.md Open Question 3).
func (t *Thinker) addWorkTask(sched *scheduler.Scheduler) {
	kinds := []scheduler.TaskKind{scheduler.KindWorkFarm, scheduler.KindWorkMine, scheduler.KindChopTree}
	epsilon := 0.05
	allZero := true
	for _, k := range kinds {
		if t.workRewards[k] != 0 {
			allZero = false
			break
		}
	}

	var chosen scheduler.TaskKind
	if t.rng.Float64() < epsilon || allZero {
		chosen = kinds[t.rng.Intn(len(kinds))]
	} else {
		chosen = kinds[0]
		best := t.workRewards[chosen]
		for _, k := range kinds[1:] {
			if t.workRewards[k] > best {
				chosen, best = k, t.workRewards[k]
			}
		}
	}

	switch chosen {
	case scheduler.KindWorkFarm:
		sched.Add(scheduler.NewWorkFarm(), t.priorities[scheduler.KindWorkFarm])
	case scheduler.KindWorkMine:
		sched.Add(scheduler.NewWorkMine(), t.priorities[scheduler.KindWorkMine])
	case scheduler.KindChopTree:
		sched.Add(scheduler.NewChopTree(), t.priorities[scheduler.KindChopTree])
	}
}

func (t *Thinker) adjustPriorities(a scheduler.Agent, ctx Context) {
	t.setExplorePriority(a, ctx)
	t.setStartConstructionPriorities()
	t.setTransportPriority(a)
	t.setResourceGatheringPriorities(a, ctx)
	t.setConstructionPriorities(a)
}

func (t *Thinker) setExplorePriority(a scheduler.Agent, ctx Context) {
	maxMemories := (ctx.Grid.Width() * ctx.Grid.Height()) / 4
	if maxMemories == 0 {
		maxMemories = 1
	}
	count := a.Memories().Len()
	priority := 1 + int(9*(float64(count)/float64(maxMemories)))
	t.priorities[scheduler.KindExplore] = clamp(priority, 1, 10)
}

func (t *Thinker) setStartConstructionPriorities() {
	explore := t.priorities[scheduler.KindExplore]
	construction := 1
	if explore < 5 {
		construction = clamp(explore+1, 1, 10)
	}
	for _, k := range []scheduler.TaskKind{
		scheduler.KindStartFarmConstruction, scheduler.KindStartBarnConstruction,
		scheduler.KindStartMineConstruction, scheduler.KindStartHomeConstruction,
	} {
		t.priorities[k] = construction
	}
}

func (t *Thinker) setTransportPriority(a scheduler.Agent) {
	fullness := a.BackpackFullness()
	// Higher number means sooner: a full backpack should schedule
	// Transport first, so priority scales directly with fullness
	// rather than inversely (Open Question 4, see DESIGN.md).
	priority := int(10 * fullness)
	t.priorities[scheduler.KindTransport] = clamp(priority, 1, 10)
}

func (t *Thinker) setResourceGatheringPriorities(a scheduler.Agent, ctx Context) {
	var totalFood, totalWood, totalStone, totalCapacity int
	for _, loc := range a.Memories().LocationsOf("B") {
		s, ok := ctx.Grid.GetStructure(loc)
		if !ok {
			continue
		}
		barn, ok := s.(*structure.Barn)
		if !ok {
			continue
		}
		totalFood += barn.Resource("food")
		totalWood += barn.Resource("wood")
		totalStone += barn.Resource("stone")
		totalCapacity += barn.Capacity()
	}

	foodPct, woodPct, stonePct := 0.0, 0.0, 0.0
	if totalCapacity > 0 {
		foodPct = float64(totalFood) / float64(totalCapacity)
		woodPct = float64(totalWood) / float64(totalCapacity)
		stonePct = float64(totalStone) / float64(totalCapacity)
	}
	t.priorities[scheduler.KindWorkFarm] = clamp(int(10*foodPct), 1, 10)
	t.priorities[scheduler.KindChopTree] = clamp(int(10*woodPct), 1, 10)
	t.priorities[scheduler.KindWorkMine] = clamp(int(10*stonePct), 1, 10)
}

func (t *Thinker) setConstructionPriorities(a scheduler.Agent) {
	set := func(kind scheduler.TaskKind, char string) {
		count := len(a.Memories().LocationsOf(char))
		if count == 0 {
			t.priorities[kind] = 10
			return
		}
		t.priorities[kind] = clamp(3-count, 1, 10)
	}
	set(scheduler.KindBuildBarn, "b")
	set(scheduler.KindBuildFarm, "f")
	set(scheduler.KindBuildHome, "h")
	set(scheduler.KindBuildMine, "m")
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
