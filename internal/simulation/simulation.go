// Package simulation drives the settlement simulation's per-tick,
// per-day, and per-year cadence, owning the grid and the population.
package simulation

import (
	"log/slog"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/mover"
	"github.com/talgya/settlementsim/internal/person"
	"github.com/talgya/settlementsim/internal/scheduler"
	"github.com/talgya/settlementsim/internal/structure"
	"github.com/talgya/settlementsim/internal/thinker"
)

// Event is a notable occurrence — a birth, death, promoted
// construction, or disaster — kept in memory for RecentEvents and
// broadcast to every channel handed out by Subscribe.
type Event struct {
	ID          string `json:"id" db:"id"`
	Tick        int    `json:"tick" db:"tick"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
}

// Simulation owns the grid, the living population, and the tick/day/
// year cadence that drives them. It is single-threaded: every mutation
// happens on the caller's goroutine, and the one *rand.Rand field is
// the simulation's sole source of randomness (threaded explicitly into
// every component that needs it, never a package-level global).
type Simulation struct {
	cfg  *config.Settings
	grid *grid.Grid
	rng  *rand.Rand
	mv   *mover.Mover

	people   map[int]*person.Person
	nextPK   int

	tick int
	day  int
	year int

	eventsMu sync.RWMutex
	events   []Event
	subs     map[int]chan Event
	nextSub  int

	log *slog.Logger
}

// New builds a simulation over g, seeded from seed.
func New(cfg *config.Settings, g *grid.Grid, seed int64, log *slog.Logger) *Simulation {
	rng := rand.New(rand.NewSource(seed))
	mv := mover.New(g, rng, 5)
	return &Simulation{
		cfg:    cfg,
		grid:   g,
		rng:    rng,
		mv:     mv,
		people: make(map[int]*person.Person),
		nextPK: 1,
		subs:   make(map[int]chan Event),
		log:    log,
	}
}

func (s *Simulation) Grid() *grid.Grid { return s.grid }
func (s *Simulation) Tick() int        { return s.tick }
func (s *Simulation) Day() int         { return s.day }
func (s *Simulation) Year() int        { return s.year }

// Population returns the number of living people.
func (s *Simulation) Population() int {
	n := 0
	for _, p := range s.people {
		if !p.Dead() {
			n++
		}
	}
	return n
}

// SpawnPerson adds a new, randomly named person at loc.
func (s *Simulation) SpawnPerson(loc grid.Location, age int) *person.Person {
	pk := s.nextPK
	s.nextPK++
	p := person.New(pk, randomName(s.rng), age, loc, s.cfg, s.grid, s.mv, s.rng)
	s.people[pk] = p
	return p
}

// Agents implements scheduler.Registry, exposing every living person
// as a scheduler.Agent for tasks like FindSpouse that need to look at
// other people.
func (s *Simulation) Agents() []scheduler.Agent {
	out := make([]scheduler.Agent, 0, len(s.people))
	for _, pk := range s.sortedPKs() {
		out = append(out, s.people[pk])
	}
	return out
}

func (s *Simulation) sortedPKs() []int {
	pks := make([]int, 0, len(s.people))
	for pk := range s.people {
		pks = append(pks, pk)
	}
	sort.Ints(pks)
	return pks
}

// Subscribe returns a subscriber ID and a buffered channel of events,
// mirroring the teacher's pub/sub convention: slow consumers drop
// events rather than block the simulation.
func (s *Simulation) Subscribe() (int, chan Event) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 64)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber's channel.
func (s *Simulation) Unsubscribe(id int) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Simulation) emit(category, description string) {
	e := Event{ID: uuid.NewString(), Tick: s.tick, Category: category, Description: description}
	s.eventsMu.Lock()
	s.events = append(s.events, e)
	s.eventsMu.Unlock()
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// RecentEvents returns up to limit of the most recently emitted events.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, limit)
	copy(out, s.events[len(s.events)-limit:])
	return out
}

func (s *Simulation) thinkerContext() thinker.Context {
	return thinker.Context{Grid: s.grid, Config: s.cfg, Tick: s.tick, Rng: s.rng, Registry: s}
}

// structureKindAt is a small convenience used by the driver when it needs
// to type-switch on what's occupying a location.
func (s *Simulation) structureKindAt(l grid.Location) (structure.Kind, bool) {
	st, ok := s.grid.GetStructure(l)
	if !ok {
		return 0, false
	}
	switch v := st.(type) {
	case *structure.Home:
		return structure.KindHome, true
	case *structure.Barn:
		return structure.KindBarn, true
	case *structure.Work:
		return v.Kind(), true
	case *structure.Construction:
		return v.Kind(), true
	}
	return 0, false
}
