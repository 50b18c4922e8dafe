package voxel

import (
	"compress/gzip"
	"io"
	"os"

	"github.com/Tnze/go-mc/nbt"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/pkg/errors"
)

const mapFormatVersion int32 = 1

const (
	flagOpen byte = 1 << iota
	flagWaterlogged
)

type mapNBT struct {
	Version int32      `nbt:"version"`
	MinY    int32      `nbt:"min_y"`
	MaxY    int32      `nbt:"max_y"`
	Chunks  []chunkNBT `nbt:"chunks"`
}

type chunkNBT struct {
	X     int32  `nbt:"x"`
	Y     int32  `nbt:"y"`
	Z     int32  `nbt:"z"`
	Kinds []byte `nbt:"kinds"`
	Flags []byte `nbt:"flags"`
}

// Save writes the map as gzip compressed NBT.
func (m *Map) Save(w io.Writer) error {
	doc := mapNBT{
		Version: mapFormatVersion,
		MinY:    m.minY,
		MaxY:    m.maxY,
	}
	for _, chunk := range m.Chunks() {
		c := chunkNBT{
			X:     chunk.chunkPos.X,
			Y:     chunk.chunkPos.Y,
			Z:     chunk.chunkPos.Z,
			Kinds: make([]byte, CHUNK_SIZE_CUBED),
			Flags: make([]byte, CHUNK_SIZE_CUBED),
		}
		for i, block := range chunk.data {
			c.Kinds[i] = byte(block.Kind)
			if block.Open {
				c.Flags[i] |= flagOpen
			}
			if block.Waterlogged {
				c.Flags[i] |= flagWaterlogged
			}
		}
		doc.Chunks = append(doc.Chunks, c)
	}
	data, err := nbt.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode map")
	}
	gzipWriter := gzip.NewWriter(w)
	if _, err = gzipWriter.Write(data); err != nil {
		return errors.Wrap(err, "write map")
	}
	if err = gzipWriter.Close(); err != nil {
		return errors.Wrap(err, "flush map")
	}
	util.LogIOInfo("saved map", "chunks", len(doc.Chunks), "min_y", m.minY, "max_y", m.maxY)
	return nil
}

func (m *Map) SaveToFile(filename string) error {
	outfile, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	if err = m.Save(outfile); err != nil {
		outfile.Close()
		return errors.Wrapf(err, "save %s", filename)
	}
	return errors.Wrapf(outfile.Close(), "close %s", filename)
}

// LoadMap reads a map written by Save.
func LoadMap(r io.Reader) (*Map, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open map stream")
	}
	defer gzipReader.Close()
	data, err := io.ReadAll(gzipReader)
	if err != nil {
		return nil, errors.Wrap(err, "read map")
	}
	var doc mapNBT
	if err = nbt.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode map")
	}
	if doc.Version != mapFormatVersion {
		return nil, errors.Errorf("unsupported map version %d", doc.Version)
	}
	m := NewMap(doc.MinY, doc.MaxY)
	for _, c := range doc.Chunks {
		if len(c.Kinds) != int(CHUNK_SIZE_CUBED) || len(c.Flags) != int(CHUNK_SIZE_CUBED) {
			return nil, errors.Errorf("chunk %d,%d,%d has %d blocks, want %d", c.X, c.Y, c.Z, len(c.Kinds), CHUNK_SIZE_CUBED)
		}
		chunk := NewChunk(c.X, c.Y, c.Z)
		for i := range chunk.data {
			kind := BlockKind(c.Kinds[i])
			if kind >= kindCount {
				return nil, errors.Errorf("chunk %d,%d,%d: unknown block kind %d", c.X, c.Y, c.Z, c.Kinds[i])
			}
			block := Block{
				Kind:        kind,
				Open:        c.Flags[i]&flagOpen != 0,
				Waterlogged: c.Flags[i]&flagWaterlogged != 0,
			}
			if !block.IsAir() {
				chunk.nonAirCount++
			}
			chunk.data[i] = block
		}
		if !chunk.IsEmpty() {
			m.chunks[chunk.chunkPos] = chunk
		}
	}
	util.LogIOInfo("loaded map", "chunks", len(m.chunks), "min_y", m.minY, "max_y", m.maxY)
	return m, nil
}

func LoadMapFromFile(filename string) (*Map, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()
	m, err := LoadMap(file)
	return m, errors.Wrapf(err, "load %s", filename)
}
