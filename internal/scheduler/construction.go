package scheduler

import (
	"github.com/talgya/settlementsim/internal/grid"
	"github.com/talgya/settlementsim/internal/structure"
)

// startKindInfo pins down everything that differs between the four
// StartXConstruction tasks: the finished/under-construction characters
// and the TaskKind tags on both ends.
type startKindInfo struct {
	taskKind      TaskKind
	buildKind     TaskKind
	constructKind structure.Kind
	finishKind    structure.Kind
	constructChar rune
	finishChar    rune
	finishCapacity int
}

var startInfos = map[structure.Kind]startKindInfo{
	structure.KindHomeConstruction: {KindStartHomeConstruction, KindBuildHome, structure.KindHomeConstruction, structure.KindHome, 'h', 'H', 4},
	structure.KindBarnConstruction: {KindStartBarnConstruction, KindBuildBarn, structure.KindBarnConstruction, structure.KindBarn, 'b', 'B', 500},
	structure.KindFarmConstruction: {KindStartFarmConstruction, KindBuildFarm, structure.KindFarmConstruction, structure.KindFarm, 'f', 'F', 3},
	structure.KindMineConstruction: {KindStartMineConstruction, KindBuildMine, structure.KindMineConstruction, structure.KindMine, 'm', 'M', 3},
}

// StartConstructionTask places a new construction site near the
// person's current location, in an empty spot not adjacent to a tree.
type StartConstructionTask struct {
	noWorkStructure
	info startKindInfo
}

func newStartConstruction(kind structure.Kind) *StartConstructionTask {
	return &StartConstructionTask{info: startInfos[kind]}
}

func NewStartHomeConstruction() *StartConstructionTask { return newStartConstruction(structure.KindHomeConstruction) }
func NewStartBarnConstruction() *StartConstructionTask { return newStartConstruction(structure.KindBarnConstruction) }
func NewStartFarmConstruction() *StartConstructionTask { return newStartConstruction(structure.KindFarmConstruction) }
func NewStartMineConstruction() *StartConstructionTask { return newStartConstruction(structure.KindMineConstruction) }

func (t *StartConstructionTask) Kind() TaskKind     { return t.info.taskKind }
func (t *StartConstructionTask) RemainingTime() int { return 1 }
func (t *StartConstructionTask) Cleanup(a Agent)    {}

func (t *StartConstructionTask) Execute(a Agent, ctx Context) bool {
	spots := ctx.Grid.EmptySpotsNear(a.Location(), 8)
	if len(spots) == 0 {
		return true
	}
	site := spots[ctx.Rng.Intn(len(spots))]
	yield := grid.Yield{}
	if t.info.finishKind == structure.KindFarm || t.info.finishKind == structure.KindMine {
		yield = grid.Yield{Mu: 10 + ctx.Rng.Float64()*40, Sigma: ctx.Rng.Float64() * 20}
	}
	c := structure.NewConstruction(
		t.info.constructKind, site, t.info.constructChar,
		ctx.Config.Int("construction_required_wood", 20),
		ctx.Config.Int("construction_required_stone", 20),
		ctx.Config.Int("finished_completion_level", 5),
		t.info.finishKind, t.info.finishChar, t.info.finishCapacity,
		yield,
	)
	_ = ctx.Grid.PlaceStructure(c)
	a.Memories().Add(string(t.info.constructChar), site, ctx.Tick)
	return true
}

// BuildTask walks a worker to a known construction site and deposits
// one tick of labor plus whatever wood/stone the worker is carrying.
type BuildTask struct {
	info startKindInfo
}

func newBuild(kind structure.Kind) *BuildTask { return &BuildTask{info: startInfos[kind]} }

func NewBuildHome() *BuildTask { return newBuild(structure.KindHomeConstruction) }
func NewBuildBarn() *BuildTask { return newBuild(structure.KindBarnConstruction) }
func NewBuildFarm() *BuildTask { return newBuild(structure.KindFarmConstruction) }
func NewBuildMine() *BuildTask { return newBuild(structure.KindMineConstruction) }

func (t *BuildTask) Kind() TaskKind     { return t.info.buildKind }
func (t *BuildTask) RemainingTime() int { return 1 }
func (t *BuildTask) Cleanup(a Agent)    {}
func (t *BuildTask) WorkStructure() (grid.Location, bool) { return grid.Location{}, false }

func (t *BuildTask) Execute(a Agent, ctx Context) bool {
	reached, _, target, err := a.NavigateToWorkable(t.info.constructKind, 1, ctx.Tick, func(loc grid.Location) bool {
		s, ok := ctx.Grid.GetStructure(loc)
		if !ok {
			return false
		}
		c, ok := s.(*structure.Construction)
		return ok && !c.ReadyToPromote()
	})
	if err != nil {
		return true
	}
	if !reached {
		return false
	}
	s, ok := ctx.Grid.GetStructure(target)
	if !ok {
		return true
	}
	c, ok := s.(*structure.Construction)
	if !ok {
		return true
	}
	if wood := a.BackpackAmount("wood"); wood > 0 {
		a.BackpackTake("wood", c.DepositWood(wood))
	}
	if stone := a.BackpackAmount("stone"); stone > 0 {
		a.BackpackTake("stone", c.DepositStone(stone))
	}
	c.Work()
	return true
}
