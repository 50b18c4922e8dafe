package voxel

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Int3 struct {
	X, Y, Z int32
}

const (
	packedXZBits = 26
	packedYBits  = 12
	packedXZMask = 1<<packedXZBits - 1
	packedYMask  = 1<<packedYBits - 1
	packedXShift = packedYBits + packedXZBits
	packedZShift = packedYBits
)

// Key packs the coordinate into a single int64. X and Z keep 26 bits, Y keeps
// 12 bits, which covers every coordinate a map can address.
func (i Int3) Key() int64 {
	return PackKey(i.X, i.Y, i.Z)
}

func PackKey(x, y, z int32) int64 {
	var packed int64
	packed |= (int64(x) & packedXZMask) << packedXShift
	packed |= int64(y) & packedYMask
	packed |= (int64(z) & packedXZMask) << packedZShift
	return packed
}

func Int3FromKey(key int64) Int3 {
	return Int3{
		X: int32(key << (64 - packedXShift - packedXZBits) >> (64 - packedXZBits)),
		Y: int32(key << (64 - packedYBits) >> (64 - packedYBits)),
		Z: int32(key << (64 - packedZShift - packedXZBits) >> (64 - packedXZBits)),
	}
}

func (i Int3) Add(other Int3) Int3 {
	return Int3{i.X + other.X, i.Y + other.Y, i.Z + other.Z}
}

func (i Int3) Sub(tr Int3) Int3 {
	return Int3{i.X - tr.X, i.Y - tr.Y, i.Z - tr.Z}
}

func (i Int3) Mul(factor int32) Int3 {
	return Int3{i.X * factor, i.Y * factor, i.Z * factor}
}

func (i Int3) Above() Int3 {
	return Int3{i.X, i.Y + 1, i.Z}
}

func (i Int3) ToVec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(i.X), float64(i.Y), float64(i.Z)}
}

// ToBlockCenterVec3 returns the center of the bottom face of the cell.
func (i Int3) ToBlockCenterVec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(i.X) + 0.5, float64(i.Y), float64(i.Z) + 0.5}
}

func (i Int3) String() string {
	return fmt.Sprintf("%d,%d,%d", i.X, i.Y, i.Z)
}

func ToGridInt3(pos mgl64.Vec3) Int3 {
	return Int3{int32(math.Floor(pos.X())), int32(math.Floor(pos.Y())), int32(math.Floor(pos.Z()))}
}
