package path

import (
	"math/bits"
	"strings"

	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/pkg/errors"
)

// PathType classifies a cell by how a mob may traverse it. Mobs map every
// type to a cost malus; a negative malus makes the type impassable.
type PathType uint8

const (
	Blocked PathType = iota
	Open
	Walkable
	WalkableDoor
	Trapdoor
	PowderSnow
	DangerPowderSnow
	Fence
	Lava
	Water
	WaterBorder
	Rail
	UnpassableRail
	DangerFire
	DamageFire
	DangerOther
	DamageOther
	DoorOpen
	DoorWoodClosed
	DoorIronClosed
	Breach
	Leaves
	StickyHoney
	Cocoa
	DamageCautious
	DangerTrapdoor
	pathTypeCount
)

var pathTypeInfo = [pathTypeCount]struct {
	name  string
	malus float32
}{
	Blocked:          {"BLOCKED", -1},
	Open:             {"OPEN", 0},
	Walkable:         {"WALKABLE", 0},
	WalkableDoor:     {"WALKABLE_DOOR", 0},
	Trapdoor:         {"TRAPDOOR", 0},
	PowderSnow:       {"POWDER_SNOW", -1},
	DangerPowderSnow: {"DANGER_POWDER_SNOW", 0},
	Fence:            {"FENCE", -1},
	Lava:             {"LAVA", -1},
	Water:            {"WATER", 8},
	WaterBorder:      {"WATER_BORDER", 8},
	Rail:             {"RAIL", 0},
	UnpassableRail:   {"UNPASSABLE_RAIL", -1},
	DangerFire:       {"DANGER_FIRE", 8},
	DamageFire:       {"DAMAGE_FIRE", 16},
	DangerOther:      {"DANGER_OTHER", 8},
	DamageOther:      {"DAMAGE_OTHER", -1},
	DoorOpen:         {"DOOR_OPEN", 0},
	DoorWoodClosed:   {"DOOR_WOOD_CLOSED", -1},
	DoorIronClosed:   {"DOOR_IRON_CLOSED", -1},
	Breach:           {"BREACH", 4},
	Leaves:           {"LEAVES", -1},
	StickyHoney:      {"STICKY_HONEY", 8},
	Cocoa:            {"COCOA", 0},
	DamageCautious:   {"DAMAGE_CAUTIOUS", 0},
	DangerTrapdoor:   {"DANGER_TRAPDOOR", 0},
}

func (t PathType) String() string {
	if t < pathTypeCount {
		return pathTypeInfo[t].name
	}
	return "UNKNOWN"
}

// DefaultMalus is the malus a mob uses unless it overrides the type.
func (t PathType) DefaultMalus() float32 {
	if t < pathTypeCount {
		return pathTypeInfo[t].malus
	}
	return -1
}

func (t PathType) Valid() bool {
	return t < pathTypeCount
}

// PathTypes lists every type in declaration order.
func PathTypes() []PathType {
	result := make([]PathType, pathTypeCount)
	for i := range result {
		result[i] = PathType(i)
	}
	return result
}

// ParsePathType accepts the upper case name as printed by String, case
// insensitive.
func ParsePathType(name string) (PathType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, info := range pathTypeInfo {
		if info.name == upper {
			return PathType(i), nil
		}
	}
	return Blocked, errors.Errorf("unknown path type %q", name)
}

// PathTypeSet is a set of path types, iterated in declaration order.
type PathTypeSet uint32

func (s PathTypeSet) With(t PathType) PathTypeSet {
	return s | 1<<t
}

func (s PathTypeSet) Has(t PathType) bool {
	return s&(1<<t) != 0
}

func (s PathTypeSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s PathTypeSet) Types() []PathType {
	result := make([]PathType, 0, s.Len())
	for rest := uint32(s); rest != 0; rest &= rest - 1 {
		result = append(result, PathType(bits.TrailingZeros32(rest)))
	}
	return result
}

// RawPathType classifies a single block state without looking at its
// surroundings.
func RawPathType(b voxel.Block) PathType {
	switch b.Kind {
	case voxel.KindAir:
		return Open
	case voxel.KindTrapdoor, voxel.KindLilyPad:
		return Trapdoor
	case voxel.KindPowderSnow:
		return PowderSnow
	case voxel.KindCactus, voxel.KindBerryBush:
		return DamageOther
	case voxel.KindHoney:
		return StickyHoney
	case voxel.KindCocoa:
		return Cocoa
	case voxel.KindWitherRose, voxel.KindDripstone:
		return DamageCautious
	}
	fluid := b.Fluid()
	switch {
	case fluid == voxel.FluidLava:
		return Lava
	case b.IsBurning():
		return DamageFire
	case b.Kind == voxel.KindWoodDoor:
		if b.Open {
			return DoorOpen
		}
		return DoorWoodClosed
	case b.Kind == voxel.KindIronDoor:
		if b.Open {
			return DoorOpen
		}
		return DoorIronClosed
	case b.Kind == voxel.KindRail:
		return Rail
	case b.Kind == voxel.KindLeaves:
		return Leaves
	case b.IsFenceLike():
		return Fence
	case !b.Pathfindable(voxel.TraversalLand):
		return Blocked
	case fluid == voxel.FluidWater:
		return Water
	}
	return Open
}

// StaticPathType classifies a cell for a ground mob: open cells above a
// supporting block become walkable, or inherit the danger of what they stand
// on or next to.
func StaticPathType(ctx *Context, x, y, z int32) PathType {
	t := ctx.RawType(x, y, z)
	if t != Open || y < ctx.MinY()+1 {
		return t
	}
	switch ctx.RawType(x, y-1, z) {
	case Open, Water, Lava, Walkable:
		return Open
	case DamageFire:
		return DamageFire
	case DamageOther:
		return DamageOther
	case StickyHoney:
		return StickyHoney
	case PowderSnow:
		return DangerPowderSnow
	case DamageCautious:
		return DamageCautious
	case Trapdoor:
		return DangerTrapdoor
	}
	return checkNeighbourBlocks(ctx, x, y, z, Walkable)
}

// checkNeighbourBlocks returns a danger type if any cell of the surrounding
// 3x3x3 ring (excluding the own column) hurts or is water.
func checkNeighbourBlocks(ctx *Context, x, y, z int32, fallback PathType) PathType {
	for i := int32(-1); i <= 1; i++ {
		for j := int32(-1); j <= 1; j++ {
			for k := int32(-1); k <= 1; k++ {
				if i == 0 && k == 0 {
					continue
				}
				switch ctx.RawType(x+i, y+j, z+k) {
				case DamageOther:
					return DangerOther
				case DamageFire, Lava:
					return DangerFire
				case Water:
					return WaterBorder
				case DamageCautious:
					return DamageCautious
				}
			}
		}
	}
	return fallback
}
