package path

import (
	"sort"

	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

/*
Dijkstra flood over the graph of a NodeEvaluator:

	dist[start] ← 0
	while Q is not empty:
	    u ← Q.extract_min()
	    for each neighbor v of u:
	        alt ← dist[u] + step(u, v) + malus(v)
	        if alt <= maxCost and alt < dist[v]:
	            dist[v] ← alt
	            prev[v] ← u
	            Q.decrease_priority(v, alt)
*/

// Reachable is the set of cells a mob can get to within a cost budget, with
// the cheapest predecessor of each cell.
type Reachable struct {
	Start voxel.Int3
	Cost  map[voxel.Int3]float32
	Prev  map[voxel.Int3]voxel.Int3
}

func (r *Reachable) Contains(pos voxel.Int3) bool {
	_, ok := r.Cost[pos]
	return ok
}

// PathTo returns the cells from the start to pos, or nil if pos is not
// reachable.
func (r *Reachable) PathTo(pos voxel.Int3) []voxel.Int3 {
	if !r.Contains(pos) {
		return nil
	}
	var reversed []voxel.Int3
	for cur := pos; ; cur = r.Prev[cur] {
		reversed = append(reversed, cur)
		if cur == r.Start {
			break
		}
	}
	result := make([]voxel.Int3, len(reversed))
	for i, p := range reversed {
		result[len(reversed)-1-i] = p
	}
	return result
}

// Positions lists every reachable cell ordered by cost, then by coordinate.
func (r *Reachable) Positions() []voxel.Int3 {
	result := make([]voxel.Int3, 0, len(r.Cost))
	for pos := range r.Cost {
		result = append(result, pos)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if r.Cost[a] != r.Cost[b] {
			return r.Cost[a] < r.Cost[b]
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return result
}

// FindReachable floods the evaluator's graph from the mob's start node. Cells
// whose accumulated cost exceeds maxCost are not entered; at most maxVisited
// nodes are expanded. It returns nil when the mob has no start node.
func FindReachable(evaluator NodeEvaluator, env *Environment, mob Mob, maxCost float32, maxVisited int) *Reachable {
	evaluator.Prepare(env, mob)
	defer evaluator.Done()

	start := evaluator.Start()
	if start == nil {
		return nil
	}
	result := &Reachable{
		Start: start.Pos(),
		Cost:  map[voxel.Int3]float32{start.Pos(): 0},
		Prev:  make(map[voxel.Int3]voxel.Int3),
	}
	open := NewBinaryHeap()
	start.g = 0
	start.f = 0
	open.Insert(start)

	var neighbors [MaxNeighbors]*Node
	visited := 0
	for !open.IsEmpty() && visited < maxVisited {
		current := open.Pop()
		current.closed = true
		visited++
		count := evaluator.Neighbors(neighbors[:], current)
		for _, neighbor := range neighbors[:count] {
			if neighbor.closed || neighbor.CostMalus < 0 {
				continue
			}
			alt := current.g + current.DistanceTo(neighbor) + neighbor.CostMalus
			if alt > maxCost {
				continue
			}
			pos := neighbor.Pos()
			if old, seen := result.Cost[pos]; seen && alt >= old {
				continue
			}
			result.Cost[pos] = alt
			result.Prev[pos] = current.Pos()
			neighbor.g = alt
			if neighbor.InOpenSet() {
				open.ChangeCost(neighbor, alt)
			} else {
				neighbor.f = alt
				open.Insert(neighbor)
			}
		}
	}
	open.Clear()
	util.LogPathDebug("reachable flood finished", "mode", evaluator.Mode().String(), "cells", len(result.Cost), "visited", visited)
	return result
}
