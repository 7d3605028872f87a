package grid

import (
	"math/rand"
	"testing"

	"github.com/talgya/settlementsim/internal/config"
)

// TestGroveSharesYieldAcrossBlock exercises the literal grove-yield
// scenario: a solid 3x3 block of trees forms a single 8-adjacency
// grove, so chopping any of the nine trees draws from the same (mu,
// sigma) pair rather than nine independent distributions.
func TestGroveSharesYieldAcrossBlock(t *testing.T) {
	cfg := config.Defaults()
	g := New(cfg, 3, 3)
	rng := rand.New(rand.NewSource(4))

	first, err := g.PlantTree(Location{X: 0, Y: 0}, rng)
	if err != nil {
		t.Fatalf("plant (0,0): %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			l := Location{X: x, Y: y}
			if l == (Location{X: 0, Y: 0}) {
				continue
			}
			if _, err := g.PlantTree(l, rng); err != nil {
				t.Fatalf("plant %v: %v", l, err)
			}
		}
	}

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			l := Location{X: x, Y: y}
			got, ok := g.GroveYield(l)
			if !ok {
				t.Fatalf("expected %v to report a grove yield", l)
			}
			if got.Mu != first.Mu || got.Sigma != first.Sigma {
				t.Fatalf("expected %v to share the grove's yield %+v, got %+v", l, first, got)
			}
		}
	}
}

// TestYieldSampleDeterministicAtZeroSigma confirms a zero-variance
// yield always samples its mean, regardless of the draw.
func TestYieldSampleDeterministicAtZeroSigma(t *testing.T) {
	y := Yield{Mu: 20, Sigma: 0}
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 5; i++ {
		if v := y.Sample(rng); v != 20 {
			t.Fatalf("expected deterministic sample 20, got %v", v)
		}
	}
}

// TestYieldSampleFloorsAtZero confirms a sample can never return a
// negative wood/food/stone amount.
func TestYieldSampleFloorsAtZero(t *testing.T) {
	y := Yield{Mu: -100, Sigma: 0}
	rng := rand.New(rand.NewSource(1))
	if v := y.Sample(rng); v != 0 {
		t.Fatalf("expected floor at 0, got %v", v)
	}
}
