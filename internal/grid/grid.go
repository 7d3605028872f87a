package grid

import (
	"bufio"
	"io"
	"math/rand"

	"github.com/talgya/settlementsim/internal/config"
	"github.com/talgya/settlementsim/internal/simerrors"
)

// Default cell alphabet, overridable through config.Settings.
const (
	DefaultEmpty            = ' '
	DefaultTree              = '*'
	DefaultHome              = 'H'
	DefaultHomeConstruction  = 'h'
	DefaultBarn              = 'B'
	DefaultBarnConstruction  = 'b'
	DefaultFarm              = 'F'
	DefaultFarmConstruction  = 'f'
	DefaultMine              = 'M'
	DefaultMineConstruction  = 'm'
)

// Structure is the grid's view of whatever occupies a placed footprint.
// The concrete implementations live in package structure; grid only
// needs enough surface to place, promote, and query occupancy — it
// never imports package structure, avoiding an import cycle since
// structure depends on grid.Location.
type Structure interface {
	TopLeft() Location
	Footprint() (width, height int)
	Char() rune
	IsConstruction() bool
	IsWork() bool
	ReadyToPromote() bool
	Promote() Structure
	Capacity() int
	Occupancy() int
}

// Grid is the mutable world state: a rectangular character grid plus
// the structure registry and owner-cell index that back TopLeftOf.
type Grid struct {
	cfg    *config.Settings
	width  int
	height int
	cells  [][]rune
	owner  [][]Location // owner[y][x] == zero Location when cell is not structure-owned or is owned by a structure at (0,0)
	structs map[Location]Structure

	groves *groveSet

	pathCost map[rune]int
}

// New builds an empty grid of the given size, all cells empty.
func New(cfg *config.Settings, width, height int) *Grid {
	g := &Grid{
		cfg:     cfg,
		width:   width,
		height:  height,
		structs: make(map[Location]Structure),
	}
	g.cells = make([][]rune, height)
	g.owner = make([][]Location, height)
	empty := cfg.Char("empty_char", DefaultEmpty)
	for y := 0; y < height; y++ {
		g.cells[y] = make([]rune, width)
		g.owner[y] = make([]Location, width)
		for x := 0; x < width; x++ {
			g.cells[y][x] = empty
		}
	}
	g.groves = newGroveSet()
	g.buildPathCost()
	return g
}

// Load reads a grid from a plain-text character matrix, one row per
// line. The generator that produces this file is out of scope; Load
// only consumes its output. rng seeds the grove-yield draw for any
// trees already present in the file.
func Load(cfg *config.Settings, r io.Reader, rng *rand.Rand) (*Grid, error) {
	sc := bufio.NewScanner(r)
	var rows [][]rune
	width := -1
	for sc.Scan() {
		row := []rune(sc.Text())
		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return nil, simerrors.ErrInvalidCell
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if width < 0 {
		width = 0
	}
	g := New(cfg, width, len(rows))
	for y, row := range rows {
		for _, ch := range row {
			if _, ok := g.pathCost[ch]; !ok {
				return nil, simerrors.ErrInvalidCell
			}
		}
		copy(g.cells[y], row)
	}
	g.rebuildGrovesFromCells(rng)
	return g, nil
}

func (g *Grid) buildPathCost() {
	g.pathCost = map[rune]int{
		g.cfg.Char("empty_char", DefaultEmpty):           1,
		g.cfg.Char("tree_char", DefaultTree):              10,
		g.cfg.Char("home_char", DefaultHome):               0,
		g.cfg.Char("home_construction_char", DefaultHomeConstruction): 10,
		g.cfg.Char("barn_char", DefaultBarn):               0,
		g.cfg.Char("barn_construction_char", DefaultBarnConstruction): 10,
		g.cfg.Char("farm_char", DefaultFarm):               5,
		g.cfg.Char("farm_construction_char", DefaultFarmConstruction): 3,
		g.cfg.Char("mine_char", DefaultMine):               0,
		g.cfg.Char("mine_construction_char", DefaultMineConstruction): 10,
	}
}

// Width and Height report grid dimensions.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether l falls within the grid.
func (g *Grid) InBounds(l Location) bool {
	return l.X >= 0 && l.Y >= 0 && l.X < g.width && l.Y < g.height
}

// CellAt returns the character occupying l, or (0, false) if out of bounds.
func (g *Grid) CellAt(l Location) (rune, bool) {
	if !g.InBounds(l) {
		return 0, false
	}
	return g.cells[l.Y][l.X], true
}

// PathCost returns the movement cost of entering l: 0 means
// impassable. Out-of-bounds locations are reported as impassable.
func (g *Grid) PathCost(l Location) int {
	ch, ok := g.CellAt(l)
	if !ok {
		return 0
	}
	if cost, ok := g.pathCost[ch]; ok {
		return cost
	}
	return 1
}

// IsWalkable reports whether a person may stand on l.
func (g *Grid) IsWalkable(l Location) bool {
	return g.PathCost(l) > 0
}

func (g *Grid) isChar(l Location, key string, def rune) bool {
	ch, ok := g.CellAt(l)
	return ok && ch == g.cfg.Char(key, def)
}

func (g *Grid) IsEmpty(l Location) bool { return g.isChar(l, "empty_char", DefaultEmpty) }
func (g *Grid) IsTree(l Location) bool  { return g.isChar(l, "tree_char", DefaultTree) }

// setCell writes a single character, validating bounds.
func (g *Grid) setCell(l Location, ch rune) error {
	if !g.InBounds(l) {
		return simerrors.ErrOutOfBounds
	}
	g.cells[l.Y][l.X] = ch
	return nil
}

// GetStructure returns the structure occupying l's owning footprint,
// if any.
func (g *Grid) GetStructure(l Location) (Structure, bool) {
	top, ok := g.TopLeftOf(l)
	if !ok {
		return nil, false
	}
	s, ok := g.structs[top]
	return s, ok
}

// TopLeftOf resolves any cell within a structure's footprint to that
// structure's registered top-left corner. This is the method the
// original system calls `find_top_left_corner` but never defines; it
// is implemented here as an O(1) lookup against an owner index
// populated at placement time.
func (g *Grid) TopLeftOf(l Location) (Location, bool) {
	if !g.InBounds(l) {
		return Location{}, false
	}
	top := g.owner[l.Y][l.X]
	if top == (Location{}) {
		if _, isStruct := g.structs[l]; isStruct {
			return l, true
		}
		// A structure anchored at (0,0) also leaves zero in its owner cells.
		if s, isStruct := g.structs[Location{}]; isStruct {
			if w, h := s.Footprint(); l.X < w && l.Y < h {
				return Location{}, true
			}
		}
		return Location{}, false
	}
	return top, true
}

// PlaceStructure registers s at its own TopLeft, marking every cell of
// its footprint with s.Char() and indexing them to the top-left in the
// owner grid.
func (g *Grid) PlaceStructure(s Structure) error {
	top := s.TopLeft()
	w, h := s.Footprint()
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			cell := Location{top.X + dx, top.Y + dy}
			if !g.InBounds(cell) {
				return simerrors.ErrOutOfBounds
			}
			if existingCh, _ := g.CellAt(cell); existingCh != g.cfg.Char("empty_char", DefaultEmpty) {
				return simerrors.ErrCellOccupied
			}
			if err := g.setCell(cell, s.Char()); err != nil {
				return err
			}
			g.owner[cell.Y][cell.X] = top
		}
	}
	g.structs[top] = s
	return nil
}

// Destroy removes the structure occupying l entirely, clearing its
// footprint back to empty.
func (g *Grid) Destroy(l Location) error {
	top, ok := g.TopLeftOf(l)
	if !ok {
		return simerrors.ErrStructureMissing
	}
	s := g.structs[top]
	w, h := s.Footprint()
	empty := g.cfg.Char("empty_char", DefaultEmpty)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			cell := Location{top.X + dx, top.Y + dy}
			_ = g.setCell(cell, empty)
			g.owner[cell.Y][cell.X] = Location{}
		}
	}
	delete(g.structs, top)
	return nil
}

// Deconstruct is an alias for Destroy used when an under-construction
// site is abandoned rather than a finished building demolished; the
// grid-level effect is identical.
func (g *Grid) Deconstruct(l Location) error { return g.Destroy(l) }

// RemoveTree clears a single tree cell (not a registered Structure —
// trees are tracked through the grove set, see groves.go).
func (g *Grid) RemoveTree(l Location) error {
	if !g.IsTree(l) {
		return simerrors.ErrInvalidCell
	}
	empty := g.cfg.Char("empty_char", DefaultEmpty)
	if err := g.setCell(l, empty); err != nil {
		return err
	}
	g.groves.remove(l)
	return nil
}

// TurnCompletedConstructionsToBuildings scans the registry and
// promotes every construction site whose ReadyToPromote() is true,
// replacing it in place with the finished Structure it returns.
func (g *Grid) TurnCompletedConstructionsToBuildings() []Location {
	var promoted []Location
	for top, s := range g.structs {
		if !s.IsConstruction() || !s.ReadyToPromote() {
			continue
		}
		finished := s.Promote()
		g.structs[top] = finished
		w, h := finished.Footprint()
		for dy := 0; dy < h; dy++ {
			for dx := 0; dx < w; dx++ {
				cell := Location{top.X + dx, top.Y + dy}
				_ = g.setCell(cell, finished.Char())
			}
		}
		promoted = append(promoted, top)
	}
	return promoted
}

// EmptySpotsNear returns every empty, non-tree-adjacent location
// within radius of origin — the set legal for new construction sites
// per the original source's get_empty_spots_near_town rule (the site
// must not be placed directly beside a tree, since growth could
// immediately block its door).
func (g *Grid) EmptySpotsNear(origin Location, radius int) []Location {
	var out []Location
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			cell := Location{origin.X + dx, origin.Y + dy}
			if !g.InBounds(cell) || !g.IsEmpty(cell) {
				continue
			}
			if g.anyNeighborIsTree(cell) {
				continue
			}
			out = append(out, cell)
		}
	}
	return out
}

func (g *Grid) anyNeighborIsTree(l Location) bool {
	for _, n := range l.Neighbors() {
		if g.IsTree(n) {
			return true
		}
	}
	return false
}

// OpenSpotNextToTown returns a random (rng-drawn) empty walkable spot
// adjacent to any existing structure, used to place the starting
// population on a freshly generated grid.
func (g *Grid) OpenSpotNextToTown(rng *rand.Rand) (Location, bool) {
	var candidates []Location
	seen := make(map[Location]bool)
	for top := range g.structs {
		w, h := g.structs[top].Footprint()
		for dy := -1; dy <= h; dy++ {
			for dx := -1; dx <= w; dx++ {
				cell := Location{top.X + dx, top.Y + dy}
				if seen[cell] || !g.InBounds(cell) || !g.IsEmpty(cell) {
					continue
				}
				seen[cell] = true
				candidates = append(candidates, cell)
			}
		}
	}
	if len(candidates) == 0 {
		return Location{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// AllStructures returns every registered structure's top-left, stable
// iteration not guaranteed (callers that need determinism should sort).
func (g *Grid) AllStructures() map[Location]Structure {
	return g.structs
}
