package util

import "math"

// FloorInt rounds toward negative infinity and returns the result as a grid
// coordinate.
func FloorInt(x float64) int32 {
	return int32(math.Floor(x))
}

func Max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

