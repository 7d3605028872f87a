package structure

import (
	"testing"

	"github.com/talgya/settlementsim/internal/grid"
)

func TestHomeFoodStoreClampsToCapacity(t *testing.T) {
	h := NewHome(grid.Location{X: 0, Y: 0}, 'H', 4)
	if got := h.DepositFood(50); got != homeFoodCapacity {
		t.Fatalf("expected deposit clamped to %d, got %d", homeFoodCapacity, got)
	}
	if h.Food() != homeFoodCapacity {
		t.Fatalf("expected food at capacity, got %d", h.Food())
	}
	if got := h.WithdrawFood(100); got != homeFoodCapacity {
		t.Fatalf("expected withdraw clamped to stored amount, got %d", got)
	}
	if h.Food() != 0 {
		t.Fatalf("expected store emptied, got %d", h.Food())
	}
}

func TestBarnDepositRespectsCapacity(t *testing.T) {
	b := NewBarn(grid.Location{X: 0, Y: 0}, 'B', 10)
	if got := b.Deposit("food", 6); got != 6 {
		t.Fatalf("expected full deposit of 6, got %d", got)
	}
	if got := b.Deposit("wood", 6); got != 4 {
		t.Fatalf("expected deposit clamped to remaining room (4), got %d", got)
	}
	if b.TotalStored() != 10 {
		t.Fatalf("expected total stored at capacity 10, got %d", b.TotalStored())
	}
	if b.HasResourceCapacity() {
		t.Fatal("expected barn to report no remaining capacity")
	}
}

func TestConstructionPromotesOnceRequirementsMet(t *testing.T) {
	c := NewConstruction(KindFarmConstruction, grid.Location{X: 1, Y: 1}, 'f', 5, 5, 2, KindFarm, 'F', 1, grid.Yield{Mu: 20, Sigma: 0})

	if c.ReadyToPromote() {
		t.Fatal("should not be ready before any deposits or work")
	}
	c.DepositWood(5)
	c.DepositStone(5)
	c.Work()
	if c.ReadyToPromote() {
		t.Fatal("should not be ready until required ticks are met")
	}
	c.Work()
	if !c.ReadyToPromote() {
		t.Fatal("expected ready once wood, stone, and ticks are all satisfied")
	}

	promoted := c.Promote()
	farm, ok := promoted.(*Work)
	if !ok {
		t.Fatalf("expected promotion to *Work, got %T", promoted)
	}
	if farm.Kind() != KindFarm {
		t.Fatalf("expected promoted kind KindFarm, got %v", farm.Kind())
	}
}

func TestOccupancyCapacity(t *testing.T) {
	h := NewHome(grid.Location{X: 0, Y: 0}, 'H', 2)
	if !h.AddOccupant("a") || !h.AddOccupant("b") {
		t.Fatal("expected both occupants to be accepted within capacity")
	}
	if h.AddOccupant("c") {
		t.Fatal("expected third occupant to be rejected at capacity")
	}
	h.RemoveOccupant("a")
	if !h.AddOccupant("c") {
		t.Fatal("expected room to free up after removing an occupant")
	}
}
