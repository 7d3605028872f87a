package pathfind

import (
	"math/rand"
	"testing"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/structure"
)

// TestFindRoutesAroundTree exercises the literal tree-avoidance
// scenario: a tree's high path cost makes the direct diagonal-through
// route more expensive than going around it, so the cheapest path
// must avoid the tree cell entirely.
func TestFindRoutesAroundTree(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 3, 3)
	rng := rand.New(rand.NewSource(1))
	if _, err := g.PlantTree(grid.Location{X: 1, Y: 1}, rng); err != nil {
		t.Fatalf("plant tree: %v", err)
	}

	path, ok := Find(g, grid.Location{X: 0, Y: 0}, grid.Location{X: 2, Y: 2})
	if !ok {
		t.Fatal("expected a path to be found")
	}
	if len(path)-1 != 3 {
		t.Fatalf("expected a 3-step path, got %d steps: %v", len(path)-1, path)
	}
	for _, step := range path {
		if step == (grid.Location{X: 1, Y: 1}) {
			t.Fatalf("path must avoid the tree cell, got %v", path)
		}
	}
	if path[0] != (grid.Location{X: 0, Y: 0}) || path[len(path)-1] != (grid.Location{X: 2, Y: 2}) {
		t.Fatalf("path must start and end at the requested endpoints, got %v", path)
	}
}

func TestFindReturnsFalseForUnreachableGoal(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 3, 3)

	// Out-of-bounds goal.
	if _, ok := Find(g, grid.Location{X: 0, Y: 0}, grid.Location{X: 5, Y: 5}); ok {
		t.Fatal("expected no path for an out-of-bounds goal")
	}

	// A home has zero path cost, so it is impassable to the pathfinder
	// even though it occupies a walkable-looking cell on the grid.
	home := structure.NewHome(grid.Location{X: 2, Y: 2}, cfg.Char("home_char", grid.DefaultHome), 2)
	if err := g.PlaceStructure(home); err != nil {
		t.Fatalf("place home: %v", err)
	}
	if _, ok := Find(g, grid.Location{X: 0, Y: 0}, grid.Location{X: 2, Y: 2}); ok {
		t.Fatal("expected no path into an occupied home cell")
	}
}

func TestFindTrivialSameCell(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 3, 3)
	path, ok := Find(g, grid.Location{X: 1, Y: 1}, grid.Location{X: 1, Y: 1})
	if !ok || len(path) != 1 {
		t.Fatalf("expected a single-cell path for start==goal, got %v ok=%v", path, ok)
	}
}
