package navigator

import (
	"math/rand"
	"testing"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
	"github.com/talgya/settlementsim/internal/mover"
	"github.com/talgya/settlementsim/internal/structure"
)

type fakeAgent struct {
	loc grid.Location
	mem *memory.Set
}

func (a *fakeAgent) Location() grid.Location    { return a.loc }
func (a *fakeAgent) SetLocation(l grid.Location) { a.loc = l }
func (a *fakeAgent) Memories() *memory.Set       { return a.mem }

// TestEscalatesAfterRejectingOverThreshold exercises the literal
// escalation scenario: three known farms, all at capacity. Once the
// fraction rejected crosses EscalationThreshold (ceil(3*0.37) == 2
// distinct farms visited and turned away), the navigator must report
// escalate so the caller starts a new construction site instead of
// continuing to search.
func TestEscalatesAfterRejectingOverThreshold(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	rng := rand.New(rand.NewSource(7))
	mv := mover.New(g, rng, 5)
	nav := New(g, mv, rng, 50, 50)

	mem := memory.New()
	mem.Add("F", grid.Location{X: 0, Y: 0}, 0)
	mem.Add("F", grid.Location{X: 2, Y: 0}, 0)
	mem.Add("F", grid.Location{X: 0, Y: 2}, 0)

	agent := &fakeAgent{loc: grid.Location{X: 1, Y: 1}, mem: mem}
	alwaysFull := func(grid.Location) bool { return false }

	escalated := false
	for i := 0; i < 20 && !escalated; i++ {
		_, escalate, err := nav.MoveToWorkableStructure(structure.KindFarm, mem, agent.Location(), 1, i, agent, alwaysFull)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		escalated = escalate
	}
	if !escalated {
		t.Fatal("expected escalation after rejecting enough full farms")
	}
}

// TestReachesCapacitySpot confirms a single known farm with room is
// reported reached once the agent is adjacent to it.
func TestReachesCapacitySpot(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	rng := rand.New(rand.NewSource(3))
	mv := mover.New(g, rng, 5)
	nav := New(g, mv, rng, 50, 50)

	mem := memory.New()
	mem.Add("F", grid.Location{X: 2, Y: 2}, 0)

	agent := &fakeAgent{loc: grid.Location{X: 1, Y: 1}, mem: mem}
	hasRoom := func(grid.Location) bool { return true }

	reached, escalate, err := nav.MoveToWorkableStructure(structure.KindFarm, mem, agent.Location(), 1, 0, agent, hasRoom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if escalate {
		t.Fatal("should not escalate when a candidate has capacity")
	}
	if !reached {
		t.Fatal("expected to reach the adjacent farm")
	}
	if nav.LastTarget() != (grid.Location{X: 2, Y: 2}) {
		t.Fatalf("expected LastTarget to be the reached farm, got %v", nav.LastTarget())
	}
}

func TestNoCandidateError(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	rng := rand.New(rand.NewSource(1))
	mv := mover.New(g, rng, 5)
	nav := New(g, mv, rng, 50, 50)

	mem := memory.New()
	agent := &fakeAgent{loc: grid.Location{X: 0, Y: 0}, mem: mem}

	_, _, err := nav.MoveToWorkableStructure(structure.KindFarm, mem, agent.Location(), 1, 0, agent, func(grid.Location) bool { return true })
	if err == nil {
		t.Fatal("expected an error when no candidates are known")
	}
}
