package path

import (
	"github.com/memmaker/voxelnav/engine/voxel"
)

const DefaultCacheSize = 4096

const pathTypeUnset PathType = 0xFF

// PathTypeCache is a direct mapped cache from packed coordinates to raw path
// types. A slot holds its owning key, so colliding coordinates evict each
// other but never return a wrong type. The cache is not safe for concurrent
// use; give each worker its own cache or guard it with a lock.
type PathTypeCache struct {
	positions []int64
	types     []PathType
	mask      uint64
	hits      uint64
	misses    uint64
}

// NewPathTypeCache creates a cache with capacity rounded up to a power of two.
func NewPathTypeCache(capacity int) *PathTypeCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	c := &PathTypeCache{
		positions: make([]int64, size),
		types:     make([]PathType, size),
		mask:      uint64(size - 1),
	}
	c.Clear()
	return c
}

func (c *PathTypeCache) Capacity() int {
	return len(c.positions)
}

// GetOrCompute returns the raw path type at x, y, z, classifying the block
// from terrain on a miss.
func (c *PathTypeCache) GetOrCompute(terrain Terrain, x, y, z int32) PathType {
	key := voxel.PackKey(x, y, z)
	idx := c.index(key)
	if c.positions[idx] == key && c.types[idx] != pathTypeUnset {
		c.hits++
		return c.types[idx]
	}
	c.misses++
	t := RawPathType(terrain.Block(x, y, z))
	c.positions[idx] = key
	c.types[idx] = t
	return t
}

// Invalidate drops the entry for pos if it is cached.
func (c *PathTypeCache) Invalidate(pos voxel.Int3) {
	key := pos.Key()
	idx := c.index(key)
	if c.positions[idx] == key {
		c.types[idx] = pathTypeUnset
	}
}

func (c *PathTypeCache) Clear() {
	for i := range c.types {
		c.positions[i] = 0
		c.types[i] = pathTypeUnset
	}
}

// Stats returns the lifetime hit and miss counters.
func (c *PathTypeCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

func (c *PathTypeCache) index(key int64) uint64 {
	return mix(uint64(key)) & c.mask
}

// mix is the 64 bit golden ratio finalizer used by fastutil's HashCommon.
func mix(x uint64) uint64 {
	h := x * 0x9E3779B97F4A7C15
	h ^= h >> 32
	return h ^ (h >> 16)
}
