package voxel

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"

	"github.com/Tnze/go-mc/nbt"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/pkg/errors"
)

// Amulet .construction files: an 8 byte magic, gzip compressed NBT sections,
// a gzip compressed NBT metadata block, a big endian int32 offset of that
// metadata block and the magic again.
const constructionMagic = "constrct"

const (
	sectionIndexEntrySize = 23
	blocksArrayTypeByte   = 7
	blocksArrayTypeInt    = 11
)

type sectionBlockInfo struct {
	BlocksArrayType byte `nbt:"blocks_array_type"`
}

type byteSection struct {
	BlockEntities []BlockEntity `nbt:"block_entities"`
	Blocks        []byte        `nbt:"blocks"`
}

type intSection struct {
	BlockEntities []BlockEntity `nbt:"block_entities"`
	Blocks        []int32       `nbt:"blocks"`
}

type BlockEntity struct {
	Namespace string `nbt:"namespace"`
	Name      string `nbt:"base_name"`
	X         int32  `nbt:"x"`
	Y         int32  `nbt:"y"`
	Z         int32  `nbt:"z"`
}

type amuletMetadata struct {
	SelectionBoxes    []int32 `nbt:"selection_boxes"`
	SectionIndexTable []byte  `nbt:"section_index_table"`
	SectionVersion    byte    `nbt:"section_version"`
	ExportVersion     struct {
		Edition string  `nbt:"edition"`
		Version []int32 `nbt:"version"`
	} `nbt:"export_version"`
	BlockPalette []*BlockDefinition `nbt:"block_palette"`
	CreatedWith  string             `nbt:"created_with"`
}

type BlockDefinition struct {
	Name       string         `nbt:"blockname"`
	NameSpace  string         `nbt:"namespace"`
	Properties map[string]any `nbt:"properties"`
}

func (d *BlockDefinition) property(name string) string {
	if d == nil || d.Properties == nil {
		return ""
	}
	switch v := d.Properties[name].(type) {
	case string:
		return v
	case byte:
		if v != 0 {
			return "true"
		}
		return "false"
	}
	return ""
}

type Construction struct {
	Sections []*ConstructionSection
}

type ConstructionSection struct {
	Blocks        []*BlockDefinition
	ShapeX        uint8
	ShapeY        uint8
	ShapeZ        uint8
	MinBlockX     int32
	MinBlockY     int32
	MinBlockZ     int32
	BlockEntities []BlockEntity
}

type sectionIndex struct {
	MinBlockX int32
	MinBlockY int32
	MinBlockZ int32
	ShapeX    uint8
	ShapeY    uint8
	ShapeZ    uint8
	Offset    uint32
	Size      uint32
}

func LoadConstruction(filename string) (*Construction, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	construction, err := ParseConstruction(data)
	return construction, errors.Wrapf(err, "parse %s", filename)
}

func ParseConstruction(data []byte) (*Construction, error) {
	magicLen := len(constructionMagic)
	if len(data) < 2*magicLen+4 {
		return nil, errors.Errorf("construction too short: %d bytes", len(data))
	}
	if string(data[:magicLen]) != constructionMagic || string(data[len(data)-magicLen:]) != constructionMagic {
		return nil, errors.New("invalid magic number")
	}
	metaDataOffset := int(int32(binary.BigEndian.Uint32(data[len(data)-magicLen-4 : len(data)-magicLen])))
	if metaDataOffset < magicLen || metaDataOffset >= len(data) {
		return nil, errors.Errorf("metadata offset %d out of range", metaDataOffset)
	}
	var meta amuletMetadata
	if err := decodeGzipNBT(data[metaDataOffset:], &meta); err != nil {
		return nil, errors.Wrap(err, "metadata")
	}
	sectionTable, err := decodeSectionTable(meta.SectionIndexTable)
	if err != nil {
		return nil, err
	}
	sections := make([]*ConstructionSection, len(sectionTable))
	for sIndex, section := range sectionTable {
		start, end := int(section.Offset), int(section.Offset)+int(section.Size)
		if start < 0 || end > len(data) || start > end {
			return nil, errors.Errorf("section %d spans %d..%d outside of file", sIndex, start, end)
		}
		raw := data[start:end]
		var info sectionBlockInfo
		if err = decodeGzipNBT(raw, &info); err != nil {
			return nil, errors.Wrapf(err, "section %d", sIndex)
		}
		var (
			blocks        []*BlockDefinition
			blockEntities []BlockEntity
		)
		switch info.BlocksArrayType {
		case blocksArrayTypeByte:
			var decoded byteSection
			if err = decodeGzipNBT(raw, &decoded); err != nil {
				return nil, errors.Wrapf(err, "section %d", sIndex)
			}
			blockEntities = decoded.BlockEntities
			blocks, err = decodeBlocks(decoded.Blocks, meta.BlockPalette)
		case blocksArrayTypeInt:
			var decoded intSection
			if err = decodeGzipNBT(raw, &decoded); err != nil {
				return nil, errors.Wrapf(err, "section %d", sIndex)
			}
			blockEntities = decoded.BlockEntities
			blocks, err = decodeBlocks(decoded.Blocks, meta.BlockPalette)
		default:
			return nil, errors.Errorf("section %d: unsupported blocks array type %d", sIndex, info.BlocksArrayType)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "section %d", sIndex)
		}
		sections[sIndex] = &ConstructionSection{
			Blocks:        blocks,
			BlockEntities: blockEntities,
			ShapeX:        section.ShapeX,
			ShapeY:        section.ShapeY,
			ShapeZ:        section.ShapeZ,
			MinBlockX:     section.MinBlockX,
			MinBlockY:     section.MinBlockY,
			MinBlockZ:     section.MinBlockZ,
		}
	}
	return &Construction{Sections: sections}, nil
}

func decodeGzipNBT(raw []byte, v any) error {
	gzipReader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "gzip")
	}
	defer gzipReader.Close()
	payload, err := io.ReadAll(gzipReader)
	if err != nil {
		return errors.Wrap(err, "gzip")
	}
	return errors.Wrap(nbt.Unmarshal(payload, v), "nbt")
}

func decodeBlocks[T int32 | byte](blocks []T, palette []*BlockDefinition) ([]*BlockDefinition, error) {
	result := make([]*BlockDefinition, len(blocks))
	for i, block := range blocks {
		if int(block) < 0 || int(block) >= len(palette) {
			return nil, errors.Errorf("palette index %d out of range (%d entries)", block, len(palette))
		}
		result[i] = palette[block]
	}
	return result, nil
}

// The section_index_table holds 23 bytes per section: three little endian
// uint32 block coordinates of the minimum corner, three uint8 shape values and
// two uint32 for offset and length of the section data.
func decodeSectionTable(table []byte) ([]sectionIndex, error) {
	if len(table)%sectionIndexEntrySize != 0 {
		return nil, errors.Errorf("section index table has %d bytes, not a multiple of %d", len(table), sectionIndexEntrySize)
	}
	sectionCount := len(table) / sectionIndexEntrySize
	sections := make([]sectionIndex, sectionCount)
	for i := 0; i < sectionCount; i++ {
		entry := table[i*sectionIndexEntrySize : (i+1)*sectionIndexEntrySize]
		sections[i].MinBlockX = int32(binary.LittleEndian.Uint32(entry[0:4]))
		sections[i].MinBlockY = int32(binary.LittleEndian.Uint32(entry[4:8]))
		sections[i].MinBlockZ = int32(binary.LittleEndian.Uint32(entry[8:12]))
		sections[i].ShapeX = entry[12]
		sections[i].ShapeY = entry[13]
		sections[i].ShapeZ = entry[14]
		sections[i].Offset = binary.LittleEndian.Uint32(entry[15:19])
		sections[i].Size = binary.LittleEndian.Uint32(entry[19:23])
	}
	return sections, nil
}

// BlockFromDefinition maps a Minecraft block name and its properties to a
// block state. Unknown names with a solid look become KindSolid.
func BlockFromDefinition(def *BlockDefinition) (Block, bool) {
	if def == nil {
		return Air, true
	}
	name := def.Name
	var block Block
	known := true
	switch {
	case name == "air" || name == "cave_air" || name == "void_air":
		block = Air
	case name == "water" || name == "bubble_column" || name == "kelp" || name == "seagrass" || name == "tall_seagrass":
		block = Water
	case name == "lava":
		block = NewBlock(KindLava)
	case name == "iron_door":
		block = NewBlock(KindIronDoor)
	case strings.HasSuffix(name, "_door"):
		block = NewBlock(KindWoodDoor)
	case strings.HasSuffix(name, "_fence_gate"):
		block = NewBlock(KindFenceGate)
	case strings.HasSuffix(name, "_fence"):
		block = NewBlock(KindFence)
	case strings.HasSuffix(name, "_wall"):
		block = NewBlock(KindWall)
	case strings.HasSuffix(name, "_trapdoor"):
		block = NewBlock(KindTrapdoor)
	case name == "rail" || strings.HasSuffix(name, "_rail"):
		block = NewBlock(KindRail)
	case strings.HasSuffix(name, "_leaves"):
		block = NewBlock(KindLeaves)
	case strings.HasSuffix(name, "_slab"):
		block = NewBlock(KindSlab)
	case name == "cactus":
		block = NewBlock(KindCactus)
	case name == "sweet_berry_bush":
		block = NewBlock(KindBerryBush)
	case name == "fire" || name == "soul_fire":
		block = NewBlock(KindFire)
	case name == "campfire" || name == "soul_campfire":
		if def.property("lit") == "false" {
			block = NewBlock(KindSlab)
		} else {
			block = NewBlock(KindFire)
		}
	case name == "magma_block":
		block = NewBlock(KindMagma)
	case name == "honey_block":
		block = NewBlock(KindHoney)
	case name == "cocoa":
		block = NewBlock(KindCocoa)
	case name == "powder_snow":
		block = NewBlock(KindPowderSnow)
	case name == "wither_rose":
		block = NewBlock(KindWitherRose)
	case name == "pointed_dripstone":
		block = NewBlock(KindDripstone)
	case name == "lily_pad" || name == "big_dripleaf":
		block = NewBlock(KindLilyPad)
	case name == "grass" || name == "short_grass" || name == "tall_grass" || name == "fern" ||
		strings.HasSuffix(name, "_flower") || strings.HasSuffix(name, "_sapling") || name == "snow" ||
		name == "torch" || strings.HasSuffix(name, "_carpet") || strings.HasSuffix(name, "_button"):
		block = NewBlock(KindPlant)
	default:
		block = Stone
		known = false
	}
	if def.property("open") == "true" {
		block.Open = true
	}
	if def.property("waterlogged") == "true" && block.Kind != KindWater {
		block.Waterlogged = true
	}
	return block, known
}

// NewMapFromConstruction converts the construction into a Map, shifting it so
// that its minimum corner lands on origin.
func NewMapFromConstruction(construction *Construction, origin Int3) *Map {
	minX, minY, minZ := int32(math.MaxInt32), int32(math.MaxInt32), int32(math.MaxInt32)
	maxY := int32(math.MinInt32)
	for _, section := range construction.Sections {
		minX = min32(minX, section.MinBlockX)
		minY = min32(minY, section.MinBlockY)
		minZ = min32(minZ, section.MinBlockZ)
		maxY = max32(maxY, section.MinBlockY+int32(section.ShapeY))
	}
	if len(construction.Sections) == 0 {
		return NewMap(DefaultMinY, DefaultMaxY)
	}
	offset := origin.Sub(Int3{minX, minY, minZ})
	voxelMap := NewMap(min32(DefaultMinY, origin.Y), max32(DefaultMaxY, maxY+offset.Y+1))
	unknown := make(map[string]bool)
	blockCounter := 0
	for _, section := range construction.Sections {
		blockIndex := 0
		for x := section.MinBlockX; x < section.MinBlockX+int32(section.ShapeX); x++ {
			for y := section.MinBlockY; y < section.MinBlockY+int32(section.ShapeY); y++ {
				for z := section.MinBlockZ; z < section.MinBlockZ+int32(section.ShapeZ); z++ {
					if blockIndex >= len(section.Blocks) {
						break
					}
					block, known := BlockFromDefinition(section.Blocks[blockIndex])
					blockIndex++
					if !known {
						unknown[section.Blocks[blockIndex-1].Name] = true
					}
					if block.IsAir() {
						continue
					}
					voxelMap.SetBlock(x+offset.X, y+offset.Y, z+offset.Z, block)
					blockCounter++
				}
			}
		}
		for _, blockEntityDef := range section.BlockEntities {
			block, _ := BlockFromDefinition(&BlockDefinition{Name: blockEntityDef.Name, NameSpace: blockEntityDef.Namespace})
			voxelMap.SetBlock(blockEntityDef.X+offset.X, blockEntityDef.Y+offset.Y, blockEntityDef.Z+offset.Z, block)
		}
	}
	for name := range unknown {
		util.LogVoxelDebug("unknown block treated as solid", "name", name)
	}
	util.LogVoxelInfo("loaded construction", "blocks", blockCounter, "chunks", voxelMap.ChunkCount())
	return voxelMap
}
