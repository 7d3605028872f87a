package person

import (
	"math/rand"
	"testing"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/mover"
	"github.com/talgya/settlementsim/internal/scheduler"
	"github.com/talgya/settlementsim/internal/structure"
	"github.com/talgya/settlementsim/internal/thinker"
)

type emptyRegistry struct{}

func (emptyRegistry) Agents() []scheduler.Agent { return nil }

// TestEatAtHome exercises the eat-from-home-store scenario: a person
// away from a home stocked with a little food travels to it, and only
// once adjacent consumes a flat meal, restoring hunger by 10 and
// draining the home's store.
func TestEatAtHome(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	rng := rand.New(rand.NewSource(1))
	mv := mover.New(g, rng, 5)

	home := structure.NewHome(grid.Location{X: 0, Y: 2}, cfg.Char("home_char", grid.DefaultHome), 4)
	home.DepositFood(3)
	if err := g.PlaceStructure(home); err != nil {
		t.Fatalf("place home: %v", err)
	}

	p := New(1, "Test", 30, grid.Location{X: 3, Y: 1}, cfg, g, mv, rng)
	p.SetHome(grid.Location{X: 0, Y: 2})
	p.SetHunger(-60) // 100 -> 40

	p.Scheduler().Add(scheduler.NewEat(), 10)
	ctx := scheduler.Context{Grid: g, Registry: emptyRegistry{}, Rng: rng, Tick: 0, Config: cfg}

	p.Scheduler().Execute(p, ctx)
	if p.Hunger() != 40 {
		t.Fatalf("expected hunger unchanged while still traveling, got %d", p.Hunger())
	}

	for i := 0; i < 10 && p.Scheduler().Pending(scheduler.KindEat); i++ {
		p.Scheduler().Execute(p, ctx)
	}

	if p.Hunger() != 50 {
		t.Fatalf("expected hunger 50 after eating at home, got %d", p.Hunger())
	}
	if home.Food() != 0 {
		t.Fatalf("expected home food depleted to 0, got %d", home.Food())
	}
}

// TestHungerDecayAndHealthDamage exercises the literal hunger/health
// tick sequence: hunger decays by 1 every tick regardless of what
// happens elsewhere, and health only starts dropping once hunger falls
// below the damage threshold.
func TestHungerDecayAndHealthDamage(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	rng := rand.New(rand.NewSource(2))
	mv := mover.New(g, rng, 5)
	p := New(1, "Test", 30, grid.Location{X: 2, Y: 2}, cfg, g, mv, rng)
	p.SetHunger(-79) // 100 -> 21

	ctx := thinker.Context{Grid: g, Config: cfg, Tick: 0, Rng: rng, Registry: emptyRegistry{}}

	p.Act(ctx)
	if p.Hunger() != 20 || p.Health() != 100 {
		t.Fatalf("tick1: expected hunger=20 health=100, got hunger=%d health=%d", p.Hunger(), p.Health())
	}

	p.Act(ctx)
	if p.Hunger() != 19 || p.Health() != 99 {
		t.Fatalf("tick2: expected hunger=19 health=99, got hunger=%d health=%d", p.Hunger(), p.Health())
	}
}
