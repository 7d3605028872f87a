// Package person implements the settlement's inhabitants: the struct
// tying together location, needs, memories, and the navigator/mover/
// thinker/scheduler machinery each person drives every tick.
package person

import (
	"math/rand"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
	"github.com/talgya/settlementsim/internal/mover"
	"github.com/talgya/settlementsim/internal/navigator"
	"github.com/talgya/settlementsim/internal/scheduler"
	"github.com/talgya/settlementsim/internal/structure"
	"github.com/talgya/settlementsim/internal/thinker"
)

// Person is one inhabitant of the settlement.
type Person struct {
	pk       int
	name     string
	age      int
	ageMax   int
	location grid.Location

	health int
	hunger int

	spouseID string
	hasSpouse bool
	home      grid.Location
	hasHome   bool

	backpack  Backpack
	memories  *memory.Set
	navigator *navigator.Navigator
	mover     *mover.Mover
	thinker   *thinker.Thinker
	scheduler *scheduler.Scheduler

	dead bool
}

// New constructs a person at loc with fresh memories, scheduler,
// navigator, and thinker, drawing randomness from rng (expected to be
// the simulation's single seeded source).
func New(pk int, name string, age int, loc grid.Location, cfg *config.Settings, g *grid.Grid, mv *mover.Mover, rng *rand.Rand) *Person {
	return &Person{
		pk:       pk,
		name:     name,
		age:      age,
		ageMax:   cfg.Int("age_max", 80),
		location: loc,
		health:   100,
		hunger:   100,
		backpack: NewBackpack(
			cfg.Int("backpack_food_cap", 100),
			cfg.Int("backpack_stone_cap", 50),
			cfg.Int("backpack_wood_cap", 50),
		),
		memories:  memory.New(),
		navigator: navigator.New(g, mv, rng, cfg.Int("epsilon_reset_min", 50), cfg.Int("actions_per_day", 20)*cfg.Int("days_per_year", 20)),
		mover:     mv,
		thinker:   thinker.New(rng, cfg),
		scheduler: scheduler.New(),
	}
}

func (p *Person) PK() int            { return p.pk }
func (p *Person) ID() string         { return idOf(p.pk) }
func (p *Person) Name() string       { return p.name }
func (p *Person) Age() int           { return p.age }
func (p *Person) Location() grid.Location { return p.location }
func (p *Person) SetLocation(l grid.Location) { p.location = l }
func (p *Person) Memories() *memory.Set { return p.memories }
func (p *Person) Scheduler() *scheduler.Scheduler { return p.scheduler }
func (p *Person) Thinker() *thinker.Thinker { return p.thinker }

func idOf(pk int) string {
	// Stable, human-legible ID: "p-<pk>". pk is unique and monotonic
	// (max+1 on birth), so this never collides.
	return "p-" + itoa(pk)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Health and Hunger are 0..100 need gauges.
func (p *Person) Health() int { return p.health }
func (p *Person) Hunger() int { return p.hunger }

// SetHealth/SetHunger apply a signed delta, clamped to [0,100].
func (p *Person) SetHealth(delta int) { p.health = clamp(p.health+delta, 0, 100) }
func (p *Person) SetHunger(delta int) { p.hunger = clamp(p.hunger+delta, 0, 100) }

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (p *Person) Home() (grid.Location, bool) { return p.home, p.hasHome }
func (p *Person) SetHome(l grid.Location)     { p.home = l; p.hasHome = true }

func (p *Person) Spouse() (string, bool) { return p.spouseID, p.hasSpouse }
func (p *Person) SetSpouse(id string)    { p.spouseID = id; p.hasSpouse = true }

func (p *Person) BackpackAmount(resource string) int        { return p.backpack.Amount(resource) }
func (p *Person) BackpackAdd(resource string, amount int) int { return p.backpack.Add(resource, amount) }
func (p *Person) BackpackTake(resource string, amount int) int { return p.backpack.Take(resource, amount) }
func (p *Person) BackpackHasItems() bool    { return p.backpack.HasItems() }
func (p *Person) BackpackHasCapacity() bool { return p.backpack.HasCapacity() }
func (p *Person) BackpackFullness() float64 { return p.backpack.Fullness() }

// Dead reports whether health or age has crossed a lethal threshold.
// The simulation driver is responsible for actually reaping dead
// people at end of tick; Dead is a pure query.
func (p *Person) Dead() bool { return p.dead || p.health <= 0 || p.age >= p.ageMax }

// MarkDead flags the person for removal (used for the stuck-agent
// cull, which isn't a health/age death).
func (p *Person) MarkDead() { p.dead = true }

// Birthday increments age by one, called once per simulated year.
func (p *Person) Birthday() { p.age++ }

// NavigateToWorkable delegates to the person's Navigator.
func (p *Person) NavigateToWorkable(kind structure.Kind, speed int, tick int, hasCapacity func(grid.Location) bool) (bool, bool, grid.Location, error) {
	reached, escalate, err := p.navigator.MoveToWorkableStructure(kind, p.memories, p.location, speed, tick, p, hasCapacity)
	return reached, escalate, p.navigatorTarget(), err
}

func (p *Person) navigatorTarget() grid.Location {
	// The navigator tracks its own current target internally; persons
	// only need it back to pass to reward updates and resource lookups
	// immediately after a reached==true result, so exposing the last
	// target via a getter keeps Navigator the single owner of that
	// state.
	return p.navigator.LastTarget()
}

func (p *Person) RewardNavigator(kind structure.Kind, target grid.Location, reward float64) {
	p.navigator.UpdateReward(kind, target, reward)
	p.thinker.UpdateWorkReward(taskKindFor(kind), reward)
}

func taskKindFor(kind structure.Kind) scheduler.TaskKind {
	switch kind {
	case structure.KindFarm:
		return scheduler.KindWorkFarm
	case structure.KindMine:
		return scheduler.KindWorkMine
	default:
		return scheduler.KindChopTree
	}
}

func (p *Person) MoveTo(target grid.Location, speed int, tick int) error {
	return p.mover.Towards(p, target, speed, tick)
}

func (p *Person) Explore(tick int) error { return p.mover.Explore(p, tick) }
func (p *Person) IsStuck() bool          { return p.mover.IsStuck(p) }

// Act runs one tick of this person's thinking/scheduling.
func (p *Person) Act(ctx thinker.Context) {
	p.thinker.TakeAction(p, p.scheduler, ctx)
}
