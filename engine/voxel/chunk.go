package voxel

// Chunk is a cube of CHUNK_SIZE³ blocks. Chunks are allocated on first write;
// cells of missing chunks read as air.
type Chunk struct {
	data        [CHUNK_SIZE_CUBED]Block
	chunkPos    Int3
	nonAirCount int32
}

func NewChunk(x, y, z int32) *Chunk {
	return &Chunk{chunkPos: Int3{x, y, z}}
}

func blockIndex(i, j, k int32) int32 {
	return i + j*CHUNK_SIZE + k*CHUNK_SIZE_SQUARED
}

func (c *Chunk) Position() Int3 {
	return c.chunkPos
}

func (c *Chunk) Contains(x, y, z int32) bool {
	return x >= 0 && x < CHUNK_SIZE && y >= 0 && y < CHUNK_SIZE && z >= 0 && z < CHUNK_SIZE
}

func (c *Chunk) GetLocalBlock(i, j, k int32) Block {
	if !c.Contains(i, j, k) {
		return Air
	}
	return c.data[blockIndex(i, j, k)]
}

// SetBlock stores the block and reports whether the cell changed.
func (c *Chunk) SetBlock(i, j, k int32, block Block) bool {
	idx := blockIndex(i, j, k)
	old := c.data[idx]
	if old == block {
		return false
	}
	if old.IsAir() {
		c.nonAirCount++
	} else if block.IsAir() {
		c.nonAirCount--
	}
	c.data[idx] = block
	return true
}

func (c *Chunk) IsEmpty() bool {
	return c.nonAirCount == 0
}

func chunkCoord(v int32) int32 {
	return v >> CHUNK_SHIFT
}

func localCoord(v int32) int32 {
	return v & CHUNK_MASK
}
