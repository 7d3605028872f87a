package scheduler

import (
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/structure"
)

// noWorkStructure is embedded by tasks with no fixed structure target,
// so WorkStructure() trivially reports "none".
type noWorkStructure struct{}

func (noWorkStructure) WorkStructure() (grid.Location, bool) { return grid.Location{}, false }

// --- Eat -------------------------------------------------------------

// EatTask restores hunger by one flat meal (10), sourced in priority
// order: a home with its own food store, a home that needs restocking
// from the nearest barn first, or — with no home at all — a barn
// visited directly.
type EatTask struct {
	noWorkStructure
	done bool
}

func NewEat() *EatTask { return &EatTask{} }

func (t *EatTask) Kind() TaskKind     { return KindEat }
func (t *EatTask) RemainingTime() int { return 1 }
func (t *EatTask) Cleanup(a Agent)    {}

const mealSize = 10

func (t *EatTask) Execute(a Agent, ctx Context) bool {
	home, hasHome := a.Home()
	homeStruct := homeAt(ctx.Grid, home, hasHome)

	if homeStruct != nil && homeStruct.Food() > 0 {
		if !a.Location().IsAdjacent(home) {
			_ = a.MoveTo(home, 1, ctx.Tick)
			return false
		}
		homeStruct.WithdrawFood(mealSize)
		a.SetHunger(mealSize)
		return true
	}

	if homeStruct != nil {
		return t.restockHome(a, ctx, home, homeStruct)
	}

	return t.eatFromBarn(a, ctx)
}

// restockHome carries food from the nearest stocked barn back to a
// home whose own store has run dry.
func (t *EatTask) restockHome(a Agent, ctx Context, home grid.Location, homeStruct *structure.Home) bool {
	if a.BackpackAmount("food") > 0 {
		if !a.Location().IsAdjacent(home) {
			_ = a.MoveTo(home, 1, ctx.Tick)
			return false
		}
		homeStruct.DepositFood(a.BackpackTake("food", a.BackpackAmount("food")))
		return false
	}

	reached, _, target, err := a.NavigateToWorkable(structure.KindBarn, 1, ctx.Tick, barnHasFood(ctx.Grid))
	if err != nil {
		return false
	}
	if !reached {
		return false
	}
	barn := barnAt(ctx.Grid, target)
	if barn == nil {
		return false
	}
	a.BackpackAdd("food", barn.Withdraw("food", homeStruct.FoodCapacity()))
	return false
}

// eatFromBarn handles the no-home case: travel to a barn and eat on
// the spot, with no carrying involved.
func (t *EatTask) eatFromBarn(a Agent, ctx Context) bool {
	if a.BackpackAmount("food") > 0 {
		taken := a.BackpackTake("food", mealSize)
		if taken > 0 {
			a.SetHunger(mealSize)
		}
		return true
	}

	reached, _, target, err := a.NavigateToWorkable(structure.KindBarn, 1, ctx.Tick, barnHasFood(ctx.Grid))
	if err != nil {
		return false
	}
	if !reached {
		return false
	}
	barn := barnAt(ctx.Grid, target)
	if barn == nil {
		return true
	}
	if barn.Withdraw("food", mealSize) > 0 {
		a.SetHunger(mealSize)
	}
	return true
}

func homeAt(g *grid.Grid, loc grid.Location, has bool) *structure.Home {
	if !has {
		return nil
	}
	s, ok := g.GetStructure(loc)
	if !ok {
		return nil
	}
	h, _ := s.(*structure.Home)
	return h
}

func barnAt(g *grid.Grid, loc grid.Location) *structure.Barn {
	s, ok := g.GetStructure(loc)
	if !ok {
		return nil
	}
	b, _ := s.(*structure.Barn)
	return b
}

func barnHasFood(g *grid.Grid) func(grid.Location) bool {
	return func(loc grid.Location) bool {
		b := barnAt(g, loc)
		return b != nil && b.Resource("food") > 0
	}
}

// --- FindHome ----------------------------------------------------------

// FindHomeTask walks toward a known home with spare capacity and
// claims it.
type FindHomeTask struct{ noWorkStructure }

func NewFindHome() *FindHomeTask { return &FindHomeTask{} }

func (t *FindHomeTask) Kind() TaskKind     { return KindFindHome }
func (t *FindHomeTask) RemainingTime() int { return 1 }
func (t *FindHomeTask) Cleanup(a Agent)    {}

func (t *FindHomeTask) Execute(a Agent, ctx Context) bool {
	reached, _, target, err := a.NavigateToWorkable(structure.KindHome, 1, ctx.Tick, func(loc grid.Location) bool {
		s, ok := ctx.Grid.GetStructure(loc)
		if !ok {
			return false
		}
		h, ok := s.(*structure.Home)
		return ok && h.HasCapacity()
	})
	if err != nil {
		return false
	}
	if reached {
		a.SetHome(target)
		return true
	}
	return false
}

// --- FindSpouse ----------------------------------------------------------

// FindSpouseTask scans the registry for an unmarried adjacent agent
// and, if found, marries them symmetrically.
type FindSpouseTask struct{ noWorkStructure }

func NewFindSpouse() *FindSpouseTask { return &FindSpouseTask{} }

func (t *FindSpouseTask) Kind() TaskKind     { return KindFindSpouse }
func (t *FindSpouseTask) RemainingTime() int { return 1 }
func (t *FindSpouseTask) Cleanup(a Agent)    {}

func (t *FindSpouseTask) Execute(a Agent, ctx Context) bool {
	if _, married := a.Spouse(); married {
		return true
	}
	for _, other := range ctx.Registry.Agents() {
		if other.ID() == a.ID() || other.Dead() {
			continue
		}
		if _, otherMarried := other.Spouse(); otherMarried {
			continue
		}
		if !a.Location().IsAdjacent(other.Location()) {
			continue
		}
		a.SetSpouse(other.ID())
		other.SetSpouse(a.ID())
		return true
	}
	_ = a.Explore(ctx.Tick)
	return false
}

// --- Transport ----------------------------------------------------------

// TransportTask carries backpack contents to the nearest known barn
// with spare room and deposits them; barns are its only destination.
type TransportTask struct{ noWorkStructure }

func NewTransport() *TransportTask { return &TransportTask{} }

func (t *TransportTask) Kind() TaskKind     { return KindTransport }
func (t *TransportTask) RemainingTime() int { return 1 }
func (t *TransportTask) Cleanup(a Agent)    {}

func (t *TransportTask) Execute(a Agent, ctx Context) bool {
	reached, _, target, err := a.NavigateToWorkable(structure.KindBarn, 1, ctx.Tick, func(loc grid.Location) bool {
		s, ok := ctx.Grid.GetStructure(loc)
		if !ok {
			return false
		}
		b, ok := s.(*structure.Barn)
		return ok && b.HasResourceCapacity()
	})
	if err != nil {
		return !a.BackpackHasItems()
	}
	if !reached {
		return false
	}
	s, ok := ctx.Grid.GetStructure(target)
	if !ok {
		return false
	}
	barn, ok := s.(*structure.Barn)
	if !ok {
		return false
	}
	for _, resource := range []string{"food", "wood", "stone"} {
		amount := a.BackpackAmount(resource)
		if amount == 0 {
			continue
		}
		deposited := barn.Deposit(resource, amount)
		a.BackpackTake(resource, deposited)
	}
	return true
}

// --- Work (Farm / Mine / Tree) ------------------------------------------

// WorkTask gathers a resource by chopping a tree or working a farm or
// mine, sharing one implementation across the three work kinds since
// they differ only in target structure kind, resource name, and
// whether the navigator's escalation signal applies. When a farm or
// mine task receives that signal it simply finishes; it does not queue
// a construction task.
type WorkTask struct {
	kind          structure.Kind
	resource      string
	canEscalate   bool
}

func NewWorkFarm() *WorkTask { return &WorkTask{kind: structure.KindFarm, resource: "food", canEscalate: true} }
func NewWorkMine() *WorkTask { return &WorkTask{kind: structure.KindMine, resource: "stone", canEscalate: true} }
func NewChopTree() *WorkTask { return &WorkTask{kind: structure.KindTree, resource: "wood"} }

func (t *WorkTask) Kind() TaskKind {
	switch t.kind {
	case structure.KindFarm:
		return KindWorkFarm
	case structure.KindMine:
		return KindWorkMine
	default:
		return KindChopTree
	}
}

func (t *WorkTask) RemainingTime() int { return 1 }
func (t *WorkTask) Cleanup(a Agent)    {}

func (t *WorkTask) WorkStructure() (grid.Location, bool) { return grid.Location{}, false }

func (t *WorkTask) Execute(a Agent, ctx Context) bool {
	reached, escalate, target, err := a.NavigateToWorkable(t.kind, 1, ctx.Tick, func(loc grid.Location) bool {
		s, ok := ctx.Grid.GetStructure(loc)
		if !ok {
			return t.kind == structure.KindTree
		}
		w, ok := s.(*structure.Work)
		return ok && w.HasCapacity()
	})
	if escalate && t.canEscalate {
		return true
	}
	if err != nil {
		return false
	}
	if !reached {
		return false
	}
	if t.kind == structure.KindTree {
		yield, ok := ctx.Grid.GroveYield(target)
		if !ok {
			return true
		}
		amount := yield.Sample(ctx.Rng)
		a.BackpackAdd(t.resource, int(amount))
		_ = ctx.Grid.RemoveTree(target)
		a.RewardNavigator(t.kind, target, amount)
		return true
	}
	s, ok := ctx.Grid.GetStructure(target)
	if !ok {
		return true
	}
	w, ok := s.(*structure.Work)
	if !ok {
		return true
	}
	amount := w.Yield().Sample(ctx.Rng)
	a.BackpackAdd(t.resource, int(amount))
	a.RewardNavigator(t.kind, target, amount)
	return true
}

// --- Explore -------------------------------------------------------------

// ExploreTask walks one step toward a random reachable cell,
// discovering new terrain along the way.
type ExploreTask struct{ noWorkStructure }

func NewExplore() *ExploreTask { return &ExploreTask{} }

func (t *ExploreTask) Kind() TaskKind     { return KindExplore }
func (t *ExploreTask) RemainingTime() int { return 1 }
func (t *ExploreTask) Cleanup(a Agent)    {}

func (t *ExploreTask) Execute(a Agent, ctx Context) bool {
	_ = a.Explore(ctx.Tick)
	return true
}
