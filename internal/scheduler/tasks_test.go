package scheduler

import (
	"math/rand"
	"testing"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
	"github.com/talgya/settlementsim/internal/structure"
)

// fakeAgent is a hand-rolled stand-in for the real person.Person,
// since package person already imports package scheduler and cannot
// be imported back here without a cycle.
type fakeAgent struct {
	loc        grid.Location
	mem        *memory.Set
	hunger     int
	health     int
	home       grid.Location
	hasHome    bool
	spouse     string
	married    bool
	backpack   map[string]int
	navReached bool
	navTarget  grid.Location
	navErr     error
}

func newFakeAgent(loc grid.Location) *fakeAgent {
	return &fakeAgent{loc: loc, mem: memory.New(), backpack: make(map[string]int), health: 100}
}

func (a *fakeAgent) ID() string                   { return "fake" }
func (a *fakeAgent) Location() grid.Location      { return a.loc }
func (a *fakeAgent) SetLocation(l grid.Location)  { a.loc = l }
func (a *fakeAgent) Memories() *memory.Set        { return a.mem }
func (a *fakeAgent) Hunger() int                  { return a.hunger }
func (a *fakeAgent) SetHunger(delta int)          { a.hunger += delta }
func (a *fakeAgent) Health() int                  { return a.health }
func (a *fakeAgent) SetHealth(delta int)          { a.health += delta }
func (a *fakeAgent) Home() (grid.Location, bool)  { return a.home, a.hasHome }
func (a *fakeAgent) SetHome(l grid.Location)      { a.home, a.hasHome = l, true }
func (a *fakeAgent) Spouse() (string, bool)       { return a.spouse, a.married }
func (a *fakeAgent) SetSpouse(id string)          { a.spouse, a.married = id, true }
func (a *fakeAgent) BackpackAmount(r string) int  { return a.backpack[r] }
func (a *fakeAgent) BackpackAdd(r string, n int) int {
	a.backpack[r] += n
	return n
}
func (a *fakeAgent) BackpackTake(r string, n int) int {
	if n > a.backpack[r] {
		n = a.backpack[r]
	}
	a.backpack[r] -= n
	return n
}
func (a *fakeAgent) BackpackHasItems() bool    { return len(a.backpack) > 0 }
func (a *fakeAgent) BackpackHasCapacity() bool { return true }
func (a *fakeAgent) BackpackFullness() float64 { return 0 }
func (a *fakeAgent) Dead() bool                { return false }

func (a *fakeAgent) NavigateToWorkable(kind structure.Kind, speed, tick int, hasCapacity func(grid.Location) bool) (bool, bool, grid.Location, error) {
	return a.navReached, false, a.navTarget, a.navErr
}
func (a *fakeAgent) RewardNavigator(kind structure.Kind, target grid.Location, reward float64) {}
func (a *fakeAgent) MoveTo(target grid.Location, speed, tick int) error {
	a.loc = target
	return nil
}
func (a *fakeAgent) Explore(tick int) error { return nil }
func (a *fakeAgent) IsStuck() bool          { return false }

// TestStartConstructionPlacesSiteNearAgent confirms a start-construction
// task drops a new, not-yet-promotable Construction at an empty spot
// near the agent and remembers its location.
func TestStartConstructionPlacesSiteNearAgent(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 7, 7)
	rng := rand.New(rand.NewSource(5))
	a := newFakeAgent(grid.Location{X: 3, Y: 3})

	task := NewStartFarmConstruction()
	ctx := Context{Grid: g, Rng: rng, Tick: 0, Config: cfg}
	if !task.Execute(a, ctx) {
		t.Fatal("expected start-construction to finish in one tick")
	}

	locs := a.mem.LocationsOf(string(startInfos[structure.KindFarmConstruction].constructChar))
	if len(locs) != 1 {
		t.Fatalf("expected exactly one remembered construction site, got %d", len(locs))
	}
	s, ok := g.GetStructure(locs[0])
	if !ok {
		t.Fatal("expected a structure at the remembered location")
	}
	c, ok := s.(*structure.Construction)
	if !ok {
		t.Fatalf("expected a *structure.Construction, got %T", s)
	}
	if c.ReadyToPromote() {
		t.Fatal("a freshly placed construction site should not be ready to promote")
	}
}

// TestBuildDepositsCarriedMaterials confirms a worker who has reached
// a construction site deposits their backpack's wood and stone and
// registers one tick of labor.
func TestBuildDepositsCarriedMaterials(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	site := grid.Location{X: 2, Y: 2}
	c := structure.NewConstruction(structure.KindBarnConstruction, site, 'b', 10, 10, 1, structure.KindBarn, 'B', 500, grid.Yield{})
	if err := g.PlaceStructure(c); err != nil {
		t.Fatalf("place construction: %v", err)
	}

	a := newFakeAgent(grid.Location{X: 2, Y: 1})
	a.backpack["wood"] = 6
	a.backpack["stone"] = 4
	a.navReached = true
	a.navTarget = site

	task := NewBuildBarn()
	ctx := Context{Grid: g, Rng: rand.New(rand.NewSource(1)), Tick: 0, Config: cfg}
	if !task.Execute(a, ctx) {
		t.Fatal("expected build task to finish the tick once reached")
	}

	if c.RemainingWood() != 4 {
		t.Fatalf("expected 4 wood still remaining, got %d", c.RemainingWood())
	}
	if c.RemainingStone() != 6 {
		t.Fatalf("expected 6 stone still remaining, got %d", c.RemainingStone())
	}
	if a.BackpackAmount("wood") != 0 || a.BackpackAmount("stone") != 0 {
		t.Fatal("expected backpack to be emptied into the construction site")
	}
}
