package grid

import "math/rand"

// Yield describes a grove's stochastic chop-tree payout: every tree in
// a grove (an 8-adjacency equivalence class) shares one (mu, sigma)
// pair, drawn once when the grove's first tree is planted.
type Yield struct {
	Mu    float64
	Sigma float64
}

// Sample draws one yield amount from the grove's distribution, floored
// at zero since a chop can never return negative wood.
func (y Yield) Sample(rng *rand.Rand) float64 {
	v := rng.NormFloat64()*y.Sigma + y.Mu
	if v < 0 {
		return 0
	}
	return v
}

// groveSet is a disjoint-set over tree locations: Find returns the
// canonical root of a tree's grove, and every root carries the
// grove's shared Yield.
type groveSet struct {
	parent map[Location]Location
	yield  map[Location]Yield
}

func newGroveSet() *groveSet {
	return &groveSet{
		parent: make(map[Location]Location),
		yield:  make(map[Location]Yield),
	}
}

func (g *groveSet) find(l Location) Location {
	p, ok := g.parent[l]
	if !ok {
		return l
	}
	if p == l {
		return l
	}
	root := g.find(p)
	g.parent[l] = root
	return root
}

func (g *groveSet) union(a, b Location) {
	ra, rb := g.find(a), g.find(b)
	if ra == rb {
		return
	}
	g.parent[rb] = ra
	if y, ok := g.yield[rb]; ok {
		if _, has := g.yield[ra]; !has {
			g.yield[ra] = y
		}
		delete(g.yield, rb)
	}
}

// add registers a freshly planted tree at l. If it touches an existing
// grove it joins it (inheriting that grove's Yield); otherwise it
// starts a brand new grove with a fresh Yield drawn from rng.
func (g *groveSet) add(l Location, neighborsInGrove []Location, rng *rand.Rand) Yield {
	g.parent[l] = l
	if len(neighborsInGrove) == 0 {
		y := randomYield(rng)
		g.yield[l] = y
		return y
	}
	root := g.find(neighborsInGrove[0])
	g.union(root, l)
	for _, n := range neighborsInGrove[1:] {
		g.union(g.find(l), n)
	}
	return g.yield[g.find(l)]
}

func (g *groveSet) remove(l Location) {
	delete(g.parent, l)
}

func (g *groveSet) yieldOf(l Location) (Yield, bool) {
	root := g.find(l)
	y, ok := g.yield[root]
	return y, ok
}

// randomYield matches the source distribution: mu ~ U(10,50), sigma ~
// U(0, (max-min)/2) = U(0, 20).
func randomYield(rng *rand.Rand) Yield {
	mu := 10 + rng.Float64()*40
	sigma := rng.Float64() * 20
	return Yield{Mu: mu, Sigma: sigma}
}

// GroveYield returns the shared yield distribution for the tree grove
// containing l, if l is a tree.
func (g *Grid) GroveYield(l Location) (Yield, bool) {
	if !g.IsTree(l) {
		return Yield{}, false
	}
	return g.groves.yieldOf(l)
}

// PlantTree places a new tree at l, joining any adjacent grove(s) or
// starting a new one, and returns its (possibly newly-generated) yield.
func (g *Grid) PlantTree(l Location, rng *rand.Rand) (Yield, error) {
	if err := g.setCell(l, g.cfg.Char("tree_char", DefaultTree)); err != nil {
		return Yield{}, err
	}
	var joined []Location
	for _, n := range l.Neighbors() {
		if g.IsTree(n) {
			joined = append(joined, n)
		}
	}
	return g.groves.add(l, joined, rng), nil
}

// GrowTrees implements the per-year tree spread: for every existing
// tree, for each empty 8-neighbor visited in random order, a new tree
// is planted with probability p, and growth stops after the first
// successful plant for that parent tree (at most one child per parent
// per call).
func (g *Grid) GrowTrees(rng *rand.Rand, p float64) []Location {
	var parents []Location
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			l := Location{x, y}
			if g.IsTree(l) {
				parents = append(parents, l)
			}
		}
	}
	var planted []Location
	for _, parent := range parents {
		neighbors := parent.Neighbors()
		order := rng.Perm(len(neighbors))
		for _, idx := range order {
			candidate := neighbors[idx]
			if !g.InBounds(candidate) || !g.IsEmpty(candidate) {
				continue
			}
			if rng.Float64() < p {
				if _, err := g.PlantTree(candidate, rng); err == nil {
					planted = append(planted, candidate)
				}
				break
			}
		}
	}
	return planted
}

// rebuildGrovesFromCells reconstructs the grove union-find from an
// already-populated cell grid (used after Load, where trees exist
// before any PlantTree call has run). Every connected cluster of tree
// cells gets one freshly drawn Yield, sourced from rng so a Load+seed
// pair remains fully reproducible.
func (g *Grid) rebuildGrovesFromCells(rng *rand.Rand) {
	visited := make(map[Location]bool)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			l := Location{x, y}
			if !g.IsTree(l) || visited[l] {
				continue
			}
			// BFS the cluster, registering every cell into the same grove.
			queue := []Location{l}
			visited[l] = true
			var cluster []Location
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				cluster = append(cluster, cur)
				for _, n := range cur.Neighbors() {
					if g.IsTree(n) && !visited[n] {
						visited[n] = true
						queue = append(queue, n)
					}
				}
			}
			yieldVal := randomYield(rng)
			for i, c := range cluster {
				g.groves.parent[c] = cluster[0]
				if i == 0 {
					g.groves.yield[c] = yieldVal
				}
			}
			g.groves.parent[cluster[0]] = cluster[0]
		}
	}
}
