// Package scheduler implements the per-person task queue: a priority
// multiset of Task values, where each tick the highest-priority task
// executes once and is dropped once finished or orphaned.
package scheduler

import (
	"math/rand"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/memory"
	"github.com/talgya/settlementsim/internal/structure"
)

// Agent is a task's view of the person that owns it. Defined here
// rather than imported from package person, since person holds a
// *Scheduler and person->scheduler->person would otherwise cycle.
type Agent interface {
	ID() string
	Location() grid.Location
	SetLocation(grid.Location)
	Memories() *memory.Set
	Hunger() int
	SetHunger(int)
	Health() int
	SetHealth(int)
	Home() (grid.Location, bool)
	SetHome(grid.Location)
	Spouse() (string, bool)
	SetSpouse(string)
	BackpackAmount(resource string) int
	BackpackAdd(resource string, amount int) int
	BackpackTake(resource string, amount int) int
	BackpackHasItems() bool
	BackpackHasCapacity() bool
	BackpackFullness() float64
	Dead() bool

	// NavigateToWorkable advances one step toward a known or
	// newly-discovered structure of kind, returning reached once
	// adjacent to a usable one and escalate once the known candidates
	// have been exhausted past the navigator's threshold.
	NavigateToWorkable(kind structure.Kind, speed int, tick int, hasCapacity func(grid.Location) bool) (reached bool, escalate bool, target grid.Location, err error)
	RewardNavigator(kind structure.Kind, target grid.Location, reward float64)
	MoveTo(target grid.Location, speed int, tick int) error
	Explore(tick int) error
	IsStuck() bool
}

// Registry lets tasks look up other agents (FindSpouse scans for an
// eligible partner) without the scheduler package depending on
// whatever container type the simulation driver keeps them in.
type Registry interface {
	Agents() []Agent
}

// Context bundles everything a Task.Execute call needs beyond the
// owning Agent.
type Context struct {
	Grid     *grid.Grid
	Registry Registry
	Rng      *rand.Rand
	Tick     int
	Config   *config.Settings
}

// TaskKind tags a Task's role without a type switch over concrete
// implementations — the priority table and the "has this kind already
// been queued" check both key off it.
type TaskKind int

const (
	KindEat TaskKind = iota
	KindFindHome
	KindFindSpouse
	KindTransport
	KindWorkFarm
	KindWorkMine
	KindChopTree
	KindStartHomeConstruction
	KindStartBarnConstruction
	KindStartFarmConstruction
	KindStartMineConstruction
	KindBuildHome
	KindBuildBarn
	KindBuildFarm
	KindBuildMine
	KindExplore
)

// Task is the capability set every scheduler entry implements, per the
// tagged-sum/capability-set design rather than a deep class hierarchy:
// a Task is whatever satisfies this interface, not whatever inherits
// from a base class.
type Task interface {
	Kind() TaskKind
	Execute(a Agent, ctx Context) (done bool)
	RemainingTime() int
	Cleanup(a Agent)
	WorkStructure() (grid.Location, bool)
}

type entry struct {
	task     Task
	priority int
	seq      int
}

// Scheduler holds one person's pending tasks, ordered by priority with
// ties broken by insertion order (earlier-added wins).
type Scheduler struct {
	entries []entry
	nextSeq int
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add enqueues task at priority, unless a task of the same Kind is
// already pending (re-adding EXPLORE every tick shouldn't duplicate
// it).
func (s *Scheduler) Add(task Task, priority int) {
	for _, e := range s.entries {
		if e.task.Kind() == task.Kind() {
			return
		}
	}
	s.entries = append(s.entries, entry{task: task, priority: priority, seq: s.nextSeq})
	s.nextSeq++
}

// SetPriority updates the priority of any pending task of kind.
func (s *Scheduler) SetPriority(kind TaskKind, priority int) {
	for i := range s.entries {
		if s.entries[i].task.Kind() == kind {
			s.entries[i].priority = priority
		}
	}
}

// Len reports how many tasks are pending.
func (s *Scheduler) Len() int { return len(s.entries) }

// Execute runs the single highest-priority task once. A task is
// dropped (with Cleanup called) if it reports done, if its owning
// agent has died, or if its WorkStructure location no longer holds a
// structure.
func (s *Scheduler) Execute(a Agent, ctx Context) {
	if len(s.entries) == 0 || a.Dead() {
		return
	}
	best := 0
	for i := 1; i < len(s.entries); i++ {
		if s.entries[i].priority > s.entries[best].priority ||
			(s.entries[i].priority == s.entries[best].priority && s.entries[i].seq < s.entries[best].seq) {
			best = i
		}
	}
	e := s.entries[best]

	if loc, has := e.task.WorkStructure(); has {
		if _, ok := ctx.Grid.GetStructure(loc); !ok {
			e.task.Cleanup(a)
			s.remove(best)
			return
		}
	}

	done := e.task.Execute(a, ctx)
	if done || a.Dead() {
		e.task.Cleanup(a)
		s.remove(best)
	}
}

func (s *Scheduler) remove(i int) {
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
}

// Pending reports whether a task of kind is currently queued.
func (s *Scheduler) Pending(kind TaskKind) bool {
	for _, e := range s.entries {
		if e.task.Kind() == kind {
			return true
		}
	}
	return false
}

// Flush drops every pending task without calling Cleanup, discarding a
// year's worth of half-finished work so the next year starts from a
// clean queue that addTasks repopulates from scratch.
func (s *Scheduler) Flush() {
	s.entries = nil
}
