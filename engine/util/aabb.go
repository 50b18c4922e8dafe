package util

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis aligned box in world space. Boxes are values; every
// operation returns a new box.
type AABB struct {
	min mgl64.Vec3
	max mgl64.Vec3
}

// NewAABBFromBounds builds a box from two corners, normalising them so that
// min <= max on every axis.
func NewAABBFromBounds(a, b mgl64.Vec3) AABB {
	return AABB{
		min: mgl64.Vec3{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())},
		max: mgl64.Vec3{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())},
	}
}

// NewFootAABB returns the box of an upright body of the given width and height
// standing with its feet centered on pos.
func NewFootAABB(pos mgl64.Vec3, width, height float64) AABB {
	half := width / 2
	return AABB{
		min: mgl64.Vec3{pos.X() - half, pos.Y(), pos.Z() - half},
		max: mgl64.Vec3{pos.X() + half, pos.Y() + height, pos.Z() + half},
	}
}

func (a AABB) Min() mgl64.Vec3 {
	return a.min
}

func (a AABB) Max() mgl64.Vec3 {
	return a.max
}

func (a AABB) XSize() float64 { return a.max.X() - a.min.X() }
func (a AABB) YSize() float64 { return a.max.Y() - a.min.Y() }
func (a AABB) ZSize() float64 { return a.max.Z() - a.min.Z() }

// Size is the average edge length.
func (a AABB) Size() float64 {
	return (a.XSize() + a.YSize() + a.ZSize()) / 3.0
}

func (a AABB) Move(offset mgl64.Vec3) AABB {
	return AABB{min: a.min.Add(offset), max: a.max.Add(offset)}
}

// Inflate grows the box by the given amount on both sides of each axis.
func (a AABB) Inflate(x, y, z float64) AABB {
	grow := mgl64.Vec3{x, y, z}
	return AABB{min: a.min.Sub(grow), max: a.max.Add(grow)}
}

// Intersects reports whether the interiors of both boxes overlap. Boxes that
// only share a face do not intersect.
func (a AABB) Intersects(other AABB) bool {
	return a.min.X() < other.max.X() && a.max.X() > other.min.X() &&
		a.min.Y() < other.max.Y() && a.max.Y() > other.min.Y() &&
		a.min.Z() < other.max.Z() && a.max.Z() > other.min.Z()
}

func (a AABB) String() string {
	return fmt.Sprintf("AABB[%.3f, %.3f, %.3f -> %.3f, %.3f, %.3f]", a.min.X(), a.min.Y(), a.min.Z(), a.max.X(), a.max.Y(), a.max.Z())
}
