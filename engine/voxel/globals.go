package voxel

const (
	CHUNK_SHIFT        int32 = 4
	CHUNK_SIZE         int32 = 1 << CHUNK_SHIFT
	CHUNK_MASK         int32 = CHUNK_SIZE - 1
	CHUNK_SIZE_SQUARED int32 = CHUNK_SIZE * CHUNK_SIZE
	CHUNK_SIZE_CUBED   int32 = CHUNK_SIZE * CHUNK_SIZE * CHUNK_SIZE
)

const (
	DefaultMinY int32 = -64
	DefaultMaxY int32 = 320
)

func ManhattanDistance3(a, b Int3) int32 {
	return Abs(a.X-b.X) + Abs(a.Y-b.Y) + Abs(a.Z-b.Z)
}

func Abs(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}
