package memory

import (
	"testing"

	"github.com/talgya/settlementsim/internal/grid"
)

// TestCombineKeepsNewerEntry exercises the literal merge scenario: two
// sets sharing a location disagree on when it was last observed, and
// the merge must keep whichever observation happened later, plus
// anything the other set saw that this one never did.
func TestCombineKeepsNewerEntry(t *testing.T) {
	a := New()
	a.Add("F", grid.Location{X: 1, Y: 1}, 10)

	b := New()
	b.Add("F", grid.Location{X: 1, Y: 1}, 12)
	b.Add("M", grid.Location{X: 2, Y: 2}, 5)

	a.Combine(b)

	if a.Len() != 2 {
		t.Fatalf("expected 2 entries after combine, got %d", a.Len())
	}

	entries := make(map[grid.Location]Entry)
	for _, e := range a.Entries() {
		entries[e.Where] = e
	}

	f, ok := entries[grid.Location{X: 1, Y: 1}]
	if !ok || f.When != 12 || f.What != "F" {
		t.Fatalf("expected (F,(1,1),12) after combine, got %+v ok=%v", f, ok)
	}

	m, ok := entries[grid.Location{X: 2, Y: 2}]
	if !ok || m.When != 5 || m.What != "M" {
		t.Fatalf("expected (M,(2,2),5) after combine, got %+v ok=%v", m, ok)
	}
}

// TestCombineDoesNotOverwriteNewerLocal guards the other direction: a
// set with a fresher observation must not be clobbered by an older one
// coming in from the other side.
func TestCombineDoesNotOverwriteNewerLocal(t *testing.T) {
	a := New()
	a.Add("F", grid.Location{X: 1, Y: 1}, 20)

	b := New()
	b.Add("F", grid.Location{X: 1, Y: 1}, 5)

	a.Combine(b)

	got := a.Entries()
	if len(got) != 1 || got[0].When != 20 {
		t.Fatalf("expected the newer local entry to survive, got %+v", got)
	}
}

func TestExpireDropsOldEntries(t *testing.T) {
	s := New()
	s.Add("F", grid.Location{X: 0, Y: 0}, 0)
	s.Add("M", grid.Location{X: 1, Y: 0}, 40)

	removed := s.Expire(50, 10)
	if removed != 1 {
		t.Fatalf("expected 1 entry expired, got %d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry remaining, got %d", s.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.Add("F", grid.Location{X: 0, Y: 0}, 1)
	clone := s.Clone()
	clone.Add("M", grid.Location{X: 1, Y: 1}, 2)

	if s.Len() != 1 {
		t.Fatalf("mutating a clone must not affect the original, original has %d entries", s.Len())
	}
}

func TestLocationsOfFiltersByWhat(t *testing.T) {
	s := New()
	s.Add("F", grid.Location{X: 0, Y: 0}, 1)
	s.Add("F", grid.Location{X: 2, Y: 2}, 2)
	s.Add("M", grid.Location{X: 1, Y: 1}, 3)

	farms := s.LocationsOf("F")
	if len(farms) != 2 {
		t.Fatalf("expected 2 farm locations, got %d", len(farms))
	}
}
