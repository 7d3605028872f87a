// Package structure implements the settlement's buildings: finished
// Home/Barn/Farm/Mine/Tree structures and their under-construction
// counterparts. Every type here satisfies grid.Structure so it can be
// placed, promoted, and queried through the grid's registry.
package structure

import "github.com/talgya/settlementsim/internal/grid"

// Kind tags a structure's role without requiring a type switch over
// concrete Go types — callers that only need "is this a farm" can
// compare Kind rather than reaching for a reflection-based dispatch.
type Kind int

const (
	KindHome Kind = iota
	KindBarn
	KindFarm
	KindMine
	KindTree
	KindHomeConstruction
	KindBarnConstruction
	KindFarmConstruction
	KindMineConstruction
)

func (k Kind) IsConstruction() bool {
	switch k {
	case KindHomeConstruction, KindBarnConstruction, KindFarmConstruction, KindMineConstruction:
		return true
	}
	return false
}

func (k Kind) IsWork() bool {
	switch k {
	case KindFarm, KindMine, KindTree:
		return true
	}
	return false
}

// base carries the fields every structure shares: placement, the
// character it paints onto the grid, and a worker occupancy set used
// by the navigator's capacity check.
type base struct {
	kind      Kind
	topLeft   grid.Location
	width     int
	height    int
	char      rune
	capacity  int
	occupants map[string]bool
}

func newBase(kind Kind, at grid.Location, w, h int, ch rune, capacity int) base {
	return base{kind: kind, topLeft: at, width: w, height: h, char: ch, capacity: capacity, occupants: make(map[string]bool)}
}

func (b *base) Kind() Kind                       { return b.kind }
func (b *base) TopLeft() grid.Location           { return b.topLeft }
func (b *base) Footprint() (int, int)            { return b.width, b.height }
func (b *base) Char() rune                       { return b.char }
func (b *base) IsConstruction() bool             { return b.kind.IsConstruction() }
func (b *base) IsWork() bool                     { return b.kind.IsWork() }
func (b *base) Capacity() int                    { return b.capacity }
func (b *base) Occupancy() int                    { return len(b.occupants) }
func (b *base) HasCapacity() bool                { return b.capacity == 0 || len(b.occupants) < b.capacity }

// AddOccupant registers personID as present/working at the structure.
// Reports false if already at capacity.
func (b *base) AddOccupant(personID string) bool {
	if !b.HasCapacity() {
		return false
	}
	b.occupants[personID] = true
	return true
}

// RemoveOccupant clears personID's presence.
func (b *base) RemoveOccupant(personID string) {
	delete(b.occupants, personID)
}

// Occupants returns the current worker/resident IDs.
func (b *base) Occupants() []string {
	out := make([]string, 0, len(b.occupants))
	for id := range b.occupants {
		out = append(out, id)
	}
	return out
}

// homeFoodCapacity caps a home's own food store, separate from the
// shared barn: a household keeps a small private stock so a meal
// doesn't always require a trip to the barn.
const homeFoodCapacity = 30

// Home is a finished single-cell dwelling.
type Home struct {
	base
	food int
}

func NewHome(at grid.Location, ch rune, capacity int) *Home {
	return &Home{base: newBase(KindHome, at, 1, 1, ch, capacity)}
}

func (h *Home) ReadyToPromote() bool      { return false }
func (h *Home) Promote() grid.Structure   { return h }

// Food reports the home's private food store.
func (h *Home) Food() int { return h.food }

// FoodCapacity is the most a home's own store ever holds.
func (h *Home) FoodCapacity() int { return homeFoodCapacity }

// DepositFood adds up to the home's remaining food capacity, returning
// the amount actually stored.
func (h *Home) DepositFood(amount int) int {
	room := homeFoodCapacity - h.food
	if amount > room {
		amount = room
	}
	if amount < 0 {
		amount = 0
	}
	h.food += amount
	return amount
}

// WithdrawFood removes up to amount from the home's store, returning
// what was actually available.
func (h *Home) WithdrawFood(amount int) int {
	if amount > h.food {
		amount = h.food
	}
	h.food -= amount
	return amount
}

// Barn stores the settlement's shared food/wood/stone stockpile.
type Barn struct {
	base
	resources map[string]int
}

func NewBarn(at grid.Location, ch rune, capacity int) *Barn {
	return &Barn{base: newBase(KindBarn, at, 1, 1, ch, capacity), resources: make(map[string]int)}
}

func (b *Barn) ReadyToPromote() bool    { return false }
func (b *Barn) Promote() grid.Structure { return b }

// Resource returns the stored amount of name ("food", "wood", "stone").
func (b *Barn) Resource(name string) int { return b.resources[name] }

// TotalStored sums every tracked resource.
func (b *Barn) TotalStored() int {
	total := 0
	for _, v := range b.resources {
		total += v
	}
	return total
}

// HasResourceCapacity reports whether the barn's total stock is below
// its capacity, mirroring Backpack.HasCapacity for a shared stockpile.
func (b *Barn) HasResourceCapacity() bool { return b.TotalStored() < b.capacity }

// Deposit adds amount of a resource, clamped to the barn's remaining
// capacity; returns the amount actually deposited.
func (b *Barn) Deposit(name string, amount int) int {
	room := b.capacity - b.TotalStored()
	if room <= 0 {
		return 0
	}
	if amount > room {
		amount = room
	}
	b.resources[name] += amount
	return amount
}

// Withdraw removes up to amount of a resource, returning what was
// actually taken.
func (b *Barn) Withdraw(name string, amount int) int {
	have := b.resources[name]
	if amount > have {
		amount = have
	}
	b.resources[name] -= amount
	return amount
}

// Work is the shared shape of Farm, Mine, and Tree: a workable
// structure with a stochastic yield function and a worker cap.
type Work struct {
	base
	yield grid.Yield
}

func NewFarm(at grid.Location, ch rune, capacity int, yield grid.Yield) *Work {
	return &Work{base: newBase(KindFarm, at, 1, 1, ch, capacity), yield: yield}
}

func NewMine(at grid.Location, ch rune, capacity int, yield grid.Yield) *Work {
	return &Work{base: newBase(KindMine, at, 1, 1, ch, capacity), yield: yield}
}

// NewTree wraps a grove-grown tree cell in a Work structure so the
// scheduler's ChopTree task can address it through the same interface
// as Farm/Mine, even though a lone tree is never separately registered
// in the grid's structure map (see grid.GroveYield for the source of
// truth while the tree stands).
func NewTree(at grid.Location, ch rune, yield grid.Yield) *Work {
	return &Work{base: newBase(KindTree, at, 1, 1, ch, 1), yield: yield}
}

func (w *Work) ReadyToPromote() bool    { return false }
func (w *Work) Promote() grid.Structure { return w }
func (w *Work) Yield() grid.Yield       { return w.yield }

// Construction is an in-progress building. Workers deposit wood and
// stone; once both meet their requirement and enough work ticks have
// accumulated, ReadyToPromote reports true and Promote hands back the
// finished structure. A finished farm or mine takes the finishYield
// given to NewConstruction; it does not inherit a grove's yield.
type Construction struct {
	base
	requiredWood  int
	requiredStone int
	requiredTicks int
	woodDeposited  int
	stoneDeposited int
	ticksWorked    int
	finishChar     rune
	finishKind     Kind
	finishCapacity int
	finishYield    grid.Yield
}

func NewConstruction(kind Kind, at grid.Location, ch rune, requiredWood, requiredStone, requiredTicks int, finishKind Kind, finishChar rune, finishCapacity int, finishYield grid.Yield) *Construction {
	return &Construction{
		base:           newBase(kind, at, 1, 1, ch, 0),
		requiredWood:   requiredWood,
		requiredStone:  requiredStone,
		requiredTicks:  requiredTicks,
		finishChar:     finishChar,
		finishKind:     finishKind,
		finishCapacity: finishCapacity,
		finishYield:    finishYield,
	}
}

// DepositWood and DepositStone feed the construction site; both return
// the amount actually accepted (capped at the requirement).
func (c *Construction) DepositWood(amount int) int {
	room := c.requiredWood - c.woodDeposited
	if amount > room {
		amount = room
	}
	if amount < 0 {
		amount = 0
	}
	c.woodDeposited += amount
	return amount
}

func (c *Construction) DepositStone(amount int) int {
	room := c.requiredStone - c.stoneDeposited
	if amount > room {
		amount = room
	}
	if amount < 0 {
		amount = 0
	}
	c.stoneDeposited += amount
	return amount
}

// Work registers one tick of construction labor.
func (c *Construction) Work() { c.ticksWorked++ }

// RemainingWood/RemainingStone report how much of each requirement is
// still undelivered.
func (c *Construction) RemainingWood() int  { return c.requiredWood - c.woodDeposited }
func (c *Construction) RemainingStone() int { return c.requiredStone - c.stoneDeposited }

func (c *Construction) ReadyToPromote() bool {
	return c.woodDeposited >= c.requiredWood &&
		c.stoneDeposited >= c.requiredStone &&
		c.ticksWorked >= c.requiredTicks
}

func (c *Construction) Promote() grid.Structure {
	switch c.finishKind {
	case KindHome:
		return NewHome(c.topLeft, c.finishChar, c.finishCapacity)
	case KindBarn:
		return NewBarn(c.topLeft, c.finishChar, c.finishCapacity)
	case KindFarm:
		return NewFarm(c.topLeft, c.finishChar, c.finishCapacity, c.finishYield)
	case KindMine:
		return NewMine(c.topLeft, c.finishChar, c.finishCapacity, c.finishYield)
	default:
		return c
	}
}
