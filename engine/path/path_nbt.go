package path

import (
	"github.com/Tnze/go-mc/nbt"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/pkg/errors"
)

const pathFormatVersion int32 = 1

type pathNBT struct {
	Version  int32     `nbt:"version"`
	X        []int32   `nbt:"x"`
	Y        []int32   `nbt:"y"`
	Z        []int32   `nbt:"z"`
	Types    []byte    `nbt:"types"`
	Malus    []float32 `nbt:"malus"`
	Next     int32     `nbt:"next"`
	Target   []int32   `nbt:"target"`
	Reached  int8      `nbt:"reached"`
	Distance float32   `nbt:"distance"`
}

// MarshalNBT encodes the nodes, cursor and target of p as an uncompressed NBT
// compound.
func (p *Path) MarshalNBT() ([]byte, error) {
	doc := pathNBT{
		Version:  pathFormatVersion,
		X:        make([]int32, len(p.nodes)),
		Y:        make([]int32, len(p.nodes)),
		Z:        make([]int32, len(p.nodes)),
		Types:    make([]byte, len(p.nodes)),
		Malus:    make([]float32, len(p.nodes)),
		Next:     int32(p.nextNodeIndex),
		Target:   []int32{p.target.X, p.target.Y, p.target.Z},
		Distance: p.distToTarget,
	}
	if p.reached {
		doc.Reached = 1
	}
	for i, n := range p.nodes {
		doc.X[i], doc.Y[i], doc.Z[i] = n.X, n.Y, n.Z
		doc.Types[i] = byte(n.Type)
		doc.Malus[i] = n.CostMalus
	}
	data, err := nbt.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode path")
	}
	return data, nil
}

// UnmarshalPath decodes a path written by MarshalNBT.
func UnmarshalPath(data []byte) (*Path, error) {
	var doc pathNBT
	if err := nbt.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode path")
	}
	if doc.Version != pathFormatVersion {
		return nil, errors.Wrapf(ErrInvalidPath, "version %d", doc.Version)
	}
	count := len(doc.X)
	if len(doc.Y) != count || len(doc.Z) != count || len(doc.Types) != count || len(doc.Malus) != count {
		return nil, errors.Wrap(ErrInvalidPath, "node columns differ in length")
	}
	if len(doc.Target) != 3 {
		return nil, errors.Wrapf(ErrInvalidPath, "target has %d coordinates", len(doc.Target))
	}
	if doc.Next < 0 || int(doc.Next) > count {
		return nil, errors.Wrapf(ErrInvalidPath, "cursor %d outside of %d nodes", doc.Next, count)
	}
	nodes := make([]*Node, count)
	for i := range nodes {
		t := PathType(doc.Types[i])
		if !t.Valid() {
			return nil, errors.Wrapf(ErrInvalidPath, "node %d has type %d", i, doc.Types[i])
		}
		n := NewNode(doc.X[i], doc.Y[i], doc.Z[i])
		n.Type = t
		n.CostMalus = doc.Malus[i]
		if i > 0 {
			n.cameFrom = nodes[i-1]
		}
		nodes[i] = n
	}
	target := voxel.Int3{X: doc.Target[0], Y: doc.Target[1], Z: doc.Target[2]}
	p := NewPath(nodes, target, doc.Reached != 0)
	p.distToTarget = doc.Distance
	p.nextNodeIndex = int(doc.Next)
	return p, nil
}
