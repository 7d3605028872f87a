package vision

import (
	"math/rand"
	"testing"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
)

func seenAt(seen *memory.Set, l grid.Location) bool {
	for _, e := range seen.Entries() {
		if e.Where == l {
			return true
		}
	}
	return false
}

func TestLookAroundIncludesOrigin(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	seen := LookAround(g, grid.Location{X: 2, Y: 2}, 2, 0)
	if !seenAt(seen, grid.Location{X: 2, Y: 2}) {
		t.Fatal("expected the origin cell itself to be recorded")
	}
}

// TestLookAroundStopsRayAtTree confirms a tree blocks its own ray
// beyond its cell, without affecting the other seven rays.
func TestLookAroundStopsRayAtTree(t *testing.T) {
	cfg := config.Defaults()
	g := grid.New(cfg, 5, 5)
	rng := rand.New(rand.NewSource(1))
	if _, err := g.PlantTree(grid.Location{X: 2, Y: 1}, rng); err != nil {
		t.Fatalf("plant tree: %v", err)
	}

	seen := LookAround(g, grid.Location{X: 2, Y: 2}, 2, 0)

	if seenAt(seen, grid.Location{X: 2, Y: 0}) {
		t.Fatal("expected the cell beyond the tree to be unseen")
	}
	if !seenAt(seen, grid.Location{X: 2, Y: 1}) {
		t.Fatal("expected the tree's own cell to be seen")
	}
	if !seenAt(seen, grid.Location{X: 2, Y: 4}) {
		t.Fatal("expected the opposite ray to be unaffected by the tree")
	}
}
