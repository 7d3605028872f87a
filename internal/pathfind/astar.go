// Package pathfind implements single-threaded A* search over the
// grid's 8-connected, variable-cost cell graph. The open-set machinery
// is grounded on the pack's container/heap-based priority queue idiom,
// with the concurrent worker-pool expansion stripped out: the
// simulation is single-threaded and fully deterministic given a seed,
// so neighbor expansion happens inline on the caller's goroutine.
package pathfind

import (
	"container/heap"

	"github.com/talgya/settlementsim/internal/grid"
)

// item is one entry in the open set's priority queue.
type item struct {
	loc      grid.Location
	g        float64
	f        float64
	index    int
}

type openQueue []*item

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	// Deterministic tie break: smallest (y, x) wins, independent of
	// insertion order, so a fixed seed always reproduces one path.
	if q[i].loc.Y != q[j].loc.Y {
		return q[i].loc.Y < q[j].loc.Y
	}
	return q[i].loc.X < q[j].loc.X
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *openQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}

// octile is an admissible, consistent heuristic for uniform-diagonal
// 8-direction movement: it never overestimates the true cost under the
// grid's path-cost matrix because that matrix's cheapest walkable cell
// costs 1.
func octile(a, b grid.Location) float64 {
	dx := absInt(a.X - b.X)
	dy := absInt(a.Y - b.Y)
	if dy > dx {
		return float64(dy)
	}
	return float64(dx) // == max(dx,dy): diagonal and straight steps cost the same
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Find runs A* from start to goal over g, returning the path including
// both endpoints. ok is false if start/goal are invalid or no path
// exists.
func Find(g *grid.Grid, start, goal grid.Location) (path []grid.Location, ok bool) {
	if !g.InBounds(start) || !g.InBounds(goal) {
		return nil, false
	}
	if !g.IsWalkable(goal) {
		return nil, false
	}

	open := make(openQueue, 0, 64)
	heap.Init(&open)
	openIndex := map[grid.Location]*item{}
	cameFrom := map[grid.Location]grid.Location{}
	gScore := map[grid.Location]float64{start: 0}
	closed := map[grid.Location]bool{}

	startItem := &item{loc: start, g: 0, f: octile(start, goal)}
	heap.Push(&open, startItem)
	openIndex[start] = startItem

	for open.Len() > 0 {
		cur := heap.Pop(&open).(*item)
		delete(openIndex, cur.loc)
		if closed[cur.loc] {
			continue
		}
		closed[cur.loc] = true

		if cur.loc == goal {
			return reconstruct(cameFrom, start, goal), true
		}

		for _, n := range cur.loc.Neighbors() {
			if !g.InBounds(n) || closed[n] {
				continue
			}
			cost := g.PathCost(n)
			if cost <= 0 {
				continue
			}
			tentative := gScore[cur.loc] + float64(cost)
			if existing, ok := gScore[n]; ok && tentative >= existing {
				continue
			}
			gScore[n] = tentative
			cameFrom[n] = cur.loc
			f := tentative + octile(n, goal)
			if it, ok := openIndex[n]; ok {
				it.g, it.f = tentative, f
				heap.Fix(&open, it.index)
			} else {
				it := &item{loc: n, g: tentative, f: f}
				heap.Push(&open, it)
				openIndex[n] = it
			}
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[grid.Location]grid.Location, start, goal grid.Location) []grid.Location {
	path := []grid.Location{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
