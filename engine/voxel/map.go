package voxel

import (
	"math"
	"sort"
	"strings"

	"github.com/memmaker/voxelnav/engine/util"
)

type ChangeListener func(pos Int3, old, new Block)

// Map is a sparse, chunked block store. It answers block and collision
// queries for the pathfinder and notifies listeners about block changes.
// A Map is not safe for concurrent mutation.
type Map struct {
	chunks    map[Int3]*Chunk
	minY      int32
	maxY      int32
	listeners []ChangeListener
}

func NewMap(minY, maxY int32) *Map {
	if maxY <= minY {
		minY, maxY = DefaultMinY, DefaultMaxY
	}
	return &Map{
		chunks: make(map[Int3]*Chunk),
		minY:   minY,
		maxY:   maxY,
	}
}

func (m *Map) MinY() int32 {
	return m.minY
}

func (m *Map) MaxY() int32 {
	return m.maxY
}

func (m *Map) ContainsY(y int32) bool {
	return y >= m.minY && y < m.maxY
}

func (m *Map) AddChangeListener(listener ChangeListener) {
	m.listeners = append(m.listeners, listener)
}

func (m *Map) ChunkCount() int {
	return len(m.chunks)
}

// Chunks returns all allocated chunks ordered by position.
func (m *Map) Chunks() []*Chunk {
	result := make([]*Chunk, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		result = append(result, chunk)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].chunkPos, result[j].chunkPos
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

func (m *Map) Block(x, y, z int32) Block {
	if !m.ContainsY(y) {
		return Air
	}
	chunk := m.chunks[Int3{chunkCoord(x), chunkCoord(y), chunkCoord(z)}]
	if chunk == nil {
		return Air
	}
	return chunk.GetLocalBlock(localCoord(x), localCoord(y), localCoord(z))
}

func (m *Map) GetBlockFromVec(pos Int3) Block {
	return m.Block(pos.X, pos.Y, pos.Z)
}

func (m *Map) SetBlock(x, y, z int32, block Block) {
	if !m.ContainsY(y) {
		util.LogVoxelDebug("ignoring block outside of height range", "pos", Int3{x, y, z}.String())
		return
	}
	key := Int3{chunkCoord(x), chunkCoord(y), chunkCoord(z)}
	chunk := m.chunks[key]
	if chunk == nil {
		if block.IsAir() {
			return
		}
		chunk = NewChunk(key.X, key.Y, key.Z)
		m.chunks[key] = chunk
	}
	lx, ly, lz := localCoord(x), localCoord(y), localCoord(z)
	old := chunk.GetLocalBlock(lx, ly, lz)
	if !chunk.SetBlock(lx, ly, lz, block) {
		return
	}
	if chunk.IsEmpty() {
		delete(m.chunks, key)
	}
	pos := Int3{x, y, z}
	for _, listener := range m.listeners {
		listener(pos, old, block)
	}
}

func (m *Map) Set(pos Int3, block Block) {
	m.SetBlock(pos.X, pos.Y, pos.Z, block)
}

// Fill sets every cell of the inclusive box spanned by a and b.
func (m *Map) Fill(a, b Int3, block Block) {
	minX, maxX := min32(a.X, b.X), max32(a.X, b.X)
	minY, maxY := min32(a.Y, b.Y), max32(a.Y, b.Y)
	minZ, maxZ := min32(a.Z, b.Z), max32(a.Z, b.Z)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				m.SetBlock(x, y, z, block)
			}
		}
	}
}

// Collides reports whether the box overlaps the collision shape of any block.
// Touching faces do not count.
func (m *Map) Collides(box util.AABB) bool {
	const eps = 1e-7
	minX := int32(math.Floor(box.Min().X() - eps))
	minY := int32(math.Floor(box.Min().Y()-eps)) - 1
	minZ := int32(math.Floor(box.Min().Z() - eps))
	maxX := int32(math.Floor(box.Max().X() + eps))
	maxY := int32(math.Floor(box.Max().Y() + eps))
	maxZ := int32(math.Floor(box.Max().Z() + eps))
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			for y := minY; y <= maxY; y++ {
				shapes := m.Block(x, y, z).CollisionBoxes()
				if len(shapes) == 0 {
					continue
				}
				origin := Int3{x, y, z}.ToVec3()
				for _, shape := range shapes {
					if shape.Move(origin).Intersects(box) {
						return true
					}
				}
			}
		}
	}
	return false
}

// GetGroundPosition walks down from startBlock and returns the first cell that
// rests on a block with collision.
func (m *Map) GetGroundPosition(startBlock Int3) Int3 {
	for y := startBlock.Y; y > m.minY; y-- {
		if m.Block(startBlock.X, y-1, startBlock.Z).CollisionHeight() > 0 {
			return Int3{startBlock.X, y, startBlock.Z}
		}
	}
	return startBlock
}

// Render2D draws one horizontal layer as ASCII, rows are z and columns are x.
func (m *Map) Render2D(y, minX, maxX, minZ, maxZ int32, overlay map[Int3]rune) string {
	var sb strings.Builder
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			if r, ok := overlay[Int3{x, y, z}]; ok {
				sb.WriteRune(r)
				continue
			}
			sb.WriteRune(blockGlyph(m.Block(x, y, z), m.Block(x, y-1, z)))
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

func blockGlyph(b, below Block) rune {
	switch {
	case b.Fluid() == FluidWater:
		return '~'
	case b.Fluid() == FluidLava:
		return '!'
	case b.FullCube():
		return '#'
	case b.IsFenceLike():
		return '|'
	case b.IsDoor():
		return 'D'
	case !b.IsAir():
		return '+'
	case below.IsAir():
		return ' '
	}
	return '.'
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
