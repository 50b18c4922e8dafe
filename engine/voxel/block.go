package voxel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/util"
)

type BlockKind byte

const (
	KindAir BlockKind = iota
	KindSolid
	KindSlab
	KindWater
	KindLava
	KindFence
	KindWall
	KindFenceGate
	KindWoodDoor
	KindIronDoor
	KindTrapdoor
	KindRail
	KindLeaves
	KindCactus
	KindBerryBush
	KindFire
	KindMagma
	KindHoney
	KindCocoa
	KindPowderSnow
	KindWitherRose
	KindDripstone
	KindLilyPad
	KindPlant
	kindCount
)

var kindNames = [kindCount]string{
	KindAir:        "air",
	KindSolid:      "solid",
	KindSlab:       "slab",
	KindWater:      "water",
	KindLava:       "lava",
	KindFence:      "fence",
	KindWall:       "wall",
	KindFenceGate:  "fence_gate",
	KindWoodDoor:   "wood_door",
	KindIronDoor:   "iron_door",
	KindTrapdoor:   "trapdoor",
	KindRail:       "rail",
	KindLeaves:     "leaves",
	KindCactus:     "cactus",
	KindBerryBush:  "sweet_berry_bush",
	KindFire:       "fire",
	KindMagma:      "magma_block",
	KindHoney:      "honey_block",
	KindCocoa:      "cocoa",
	KindPowderSnow: "powder_snow",
	KindWitherRose: "wither_rose",
	KindDripstone:  "pointed_dripstone",
	KindLilyPad:    "lily_pad",
	KindPlant:      "plant",
}

func (k BlockKind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

func ParseBlockKind(name string) (BlockKind, bool) {
	for i, n := range kindNames {
		if n == name {
			return BlockKind(i), true
		}
	}
	return KindAir, false
}

type Fluid byte

const (
	FluidNone Fluid = iota
	FluidWater
	FluidLava
)

func (f Fluid) String() string {
	switch f {
	case FluidWater:
		return "water"
	case FluidLava:
		return "lava"
	}
	return "none"
}

// Traversal names the medium a block is tested against when asking whether a
// mob could move through it.
type Traversal byte

const (
	TraversalLand Traversal = iota
	TraversalWater
	TraversalAir
)

// Block is a block state. It is a small value type; the map stores it inline.
type Block struct {
	Kind        BlockKind
	Open        bool
	Waterlogged bool
}

var (
	Air   = Block{Kind: KindAir}
	Stone = Block{Kind: KindSolid}
	Water = Block{Kind: KindWater}
)

func NewBlock(kind BlockKind) Block {
	return Block{Kind: kind}
}

func (b Block) IsAir() bool {
	return b.Kind == KindAir
}

func (b Block) WithOpen(open bool) Block {
	b.Open = open
	return b
}

func (b Block) WithWaterlogged(waterlogged bool) Block {
	b.Waterlogged = waterlogged
	return b
}

func (b Block) Fluid() Fluid {
	switch {
	case b.Kind == KindWater || b.Waterlogged:
		return FluidWater
	case b.Kind == KindLava:
		return FluidLava
	}
	return FluidNone
}

func (b Block) IsBurning() bool {
	return b.Kind == KindFire || b.Kind == KindLava || b.Kind == KindMagma
}

func (b Block) IsDoor() bool {
	return b.Kind == KindWoodDoor || b.Kind == KindIronDoor
}

func (b Block) IsFenceLike() bool {
	return b.Kind == KindFence || b.Kind == KindWall || (b.Kind == KindFenceGate && !b.Open)
}

// FullCube reports whether the collision shape fills the whole cell.
func (b Block) FullCube() bool {
	switch b.Kind {
	case KindSolid, KindMagma, KindLeaves:
		return true
	}
	return false
}

func px(v float64) float64 {
	return v / 16.0
}

func box(minX, minY, minZ, maxX, maxY, maxZ float64) util.AABB {
	return util.NewAABBFromBounds(mgl64.Vec3{minX, minY, minZ}, mgl64.Vec3{maxX, maxY, maxZ})
}

var (
	fullShape       = []util.AABB{box(0, 0, 0, 1, 1, 1)}
	slabShape       = []util.AABB{box(0, 0, 0, 1, 0.5, 1)}
	fencePostShape  = []util.AABB{box(px(6), 0, px(6), px(10), 1.5, px(10))}
	wallPostShape   = []util.AABB{box(px(4), 0, px(4), px(12), 1.5, px(12))}
	gateShape       = []util.AABB{box(0, 0, px(6), 1, 1.5, px(10))}
	doorClosedShape = []util.AABB{box(0, 0, 0, 1, 1, px(3))}
	doorOpenShape   = []util.AABB{box(0, 0, 0, px(3), 1, 1)}
	trapClosedShape = []util.AABB{box(0, 0, 0, 1, px(3), 1)}
	trapOpenShape   = []util.AABB{box(0, 0, px(13), 1, 1, 1)}
	insetShape      = []util.AABB{box(px(1), 0, px(1), px(15), px(15), px(15))}
	cocoaShape      = []util.AABB{box(px(4), px(3), px(4), px(12), px(12), px(12))}
	dripstoneShape  = []util.AABB{box(px(5), 0, px(5), px(11), 1, px(11))}
	lilyPadShape    = []util.AABB{box(px(1), 0, px(1), px(15), px(1.5), px(15))}
)

// CollisionBoxes returns the collision shape in cell local coordinates. The
// returned slice is shared and must not be modified.
func (b Block) CollisionBoxes() []util.AABB {
	switch b.Kind {
	case KindSolid, KindMagma, KindLeaves:
		return fullShape
	case KindSlab:
		return slabShape
	case KindFence:
		return fencePostShape
	case KindWall:
		return wallPostShape
	case KindFenceGate:
		if b.Open {
			return nil
		}
		return gateShape
	case KindWoodDoor, KindIronDoor:
		if b.Open {
			return doorOpenShape
		}
		return doorClosedShape
	case KindTrapdoor:
		if b.Open {
			return trapOpenShape
		}
		return trapClosedShape
	case KindCactus, KindHoney:
		return insetShape
	case KindCocoa:
		return cocoaShape
	case KindDripstone:
		return dripstoneShape
	case KindLilyPad:
		return lilyPadShape
	}
	return nil
}

// CollisionHeight is the top of the collision shape relative to the cell
// floor, zero for blocks without collision.
func (b Block) CollisionHeight() float64 {
	top := 0.0
	for _, shape := range b.CollisionBoxes() {
		if shape.Max().Y() > top {
			top = shape.Max().Y()
		}
	}
	return top
}

// Pathfindable reports whether a mob moving through the given medium could
// pass the block.
func (b Block) Pathfindable(t Traversal) bool {
	switch b.Kind {
	case KindWoodDoor, KindIronDoor, KindFenceGate:
		if t == TraversalWater {
			return false
		}
		return b.Open
	case KindTrapdoor:
		if t == TraversalWater {
			return b.Waterlogged
		}
		return b.Open
	case KindSlab:
		return t == TraversalWater && b.Waterlogged
	}
	if t == TraversalWater {
		return b.Fluid() == FluidWater
	}
	return !b.FullCube()
}

func (b Block) String() string {
	s := b.Kind.String()
	if b.Open {
		s += "[open]"
	}
	if b.Waterlogged {
		s += "[waterlogged]"
	}
	return s
}
