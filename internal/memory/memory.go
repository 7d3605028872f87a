// Package memory implements a person's per-location memory set: what
// was observed where and when, with expiry and a merge operation used
// when spouses or co-workers pool what they've each seen.
package memory

import "github.com/talgya/settlementsim/internal/grid"

// Entry records a single observation. Entries are deduplicated by
// Where alone — a location holds at most one remembered fact, the
// most recent one observed for it.
type Entry struct {
	What string
	Where grid.Location
	When  int
}

// Set is the location-keyed memory store: one Entry per Location.
type Set struct {
	byLocation map[grid.Location]Entry
}

// New returns an empty memory set.
func New() *Set {
	return &Set{byLocation: make(map[grid.Location]Entry)}
}

// Add records an observation at where, overwriting anything already
// remembered for that location. when is the simulation tick the
// observation happened at, supplied by the caller rather than read
// from a shared clock, so Memories never depends on a global.
func (s *Set) Add(what string, where grid.Location, when int) {
	s.byLocation[where] = Entry{What: what, Where: where, When: when}
}

// Remove discards any memory at where.
func (s *Set) Remove(where grid.Location) {
	delete(s.byLocation, where)
}

// Expire drops every entry older than maxAge relative to now. Returns
// the number of entries removed.
func (s *Set) Expire(now int, maxAge int) int {
	removed := 0
	for loc, e := range s.byLocation {
		if now-e.When > maxAge {
			delete(s.byLocation, loc)
			removed++
		}
	}
	return removed
}

// Entries returns every remembered fact.
func (s *Set) Entries() []Entry {
	out := make([]Entry, 0, len(s.byLocation))
	for _, e := range s.byLocation {
		out = append(out, e)
	}
	return out
}

// Len reports the number of distinct remembered locations.
func (s *Set) Len() int { return len(s.byLocation) }

// LocationsOf returns every location whose remembered character is ch.
func (s *Set) LocationsOf(ch string) []grid.Location {
	var out []grid.Location
	for loc, e := range s.byLocation {
		if e.What == ch {
			out = append(out, loc)
		}
	}
	return out
}

// Combine merges other into s, keeping for every location the entry
// with the larger When — the literal, bug-free reading of the merge
// invariant (the combined timestamp is always max(when_a, when_b), it
// is never re-stamped to the current tick regardless of which side
// was newer).
func (s *Set) Combine(other *Set) {
	for loc, incoming := range other.byLocation {
		existing, ok := s.byLocation[loc]
		if !ok || incoming.When > existing.When {
			s.byLocation[loc] = incoming
		}
	}
}

// Clone returns a deep copy, used when handing a snapshot of memories
// to a spouse or co-worker without letting them mutate the original.
func (s *Set) Clone() *Set {
	c := New()
	for loc, e := range s.byLocation {
		c.byLocation[loc] = e
	}
	return c
}
