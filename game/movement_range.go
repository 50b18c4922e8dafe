package game

import (
	"slices"

	"github.com/memmaker/voxelnav/engine/path"
	"github.com/memmaker/voxelnav/engine/voxel"
)

// MovementRange is the set of cells a mob can move to with a limited move
// budget, as shown to the player when selecting a move target.
type MovementRange struct {
	mob          *Mob
	budget       float32
	reachable    *path.Reachable
	validTargets []voxel.Int3
}

// NewMovementRange floods the map around mob. It returns an empty range when
// the mob has no start node.
func NewMovementRange(env *path.Environment, mob *Mob, budget float32, maxVisited int) (*MovementRange, error) {
	evaluator, err := NewEvaluator(mob.Profile())
	if err != nil {
		return nil, err
	}
	r := &MovementRange{mob: mob, budget: budget}
	r.reachable = path.FindReachable(evaluator, env, mob, budget, maxVisited)
	r.updateTargetData()
	return r, nil
}

func (r *MovementRange) updateTargetData() {
	if r.reachable == nil {
		return
	}
	for _, pos := range r.reachable.Positions() {
		if pos == r.reachable.Start {
			continue
		}
		r.validTargets = append(r.validTargets, pos)
	}
}

func (r *MovementRange) Budget() float32 {
	return r.budget
}

func (r *MovementRange) IsValidTarget(target voxel.Int3) bool {
	if r.reachable == nil || target == r.reachable.Start {
		return false
	}
	cost, ok := r.reachable.Cost[target]
	return ok && cost <= r.budget
}

// ValidTargets are ordered by cost, cheapest first.
func (r *MovementRange) ValidTargets() []voxel.Int3 {
	return r.validTargets
}

// PathTo returns the cells to walk through to reach target, excluding the
// mob's own cell.
func (r *MovementRange) PathTo(target voxel.Int3) []voxel.Int3 {
	if r.reachable == nil {
		return nil
	}
	cells := r.reachable.PathTo(target)
	if len(cells) == 0 {
		return nil
	}
	return slices.Clone(cells[1:])
}

func (r *MovementRange) Cost(target voxel.Int3) float32 {
	if r.reachable == nil {
		return 0
	}
	return r.reachable.Cost[target]
}
