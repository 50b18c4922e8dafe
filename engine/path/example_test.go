package path

import (
	"fmt"

	"github.com/memmaker/voxelnav/engine/voxel"
)

func ExamplePathFinder_FindPath() {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -10, Y: -1, Z: -10}, voxel.Int3{X: 10, Y: -1, Z: 10}, voxel.Stone)
	env := NewEnvironment(m)
	finder := NewPathFinder(NewWalkNodeEvaluator(), 256)

	p := finder.FindPath(env, newWalker(0, 0, 0), []voxel.Int3{{X: 5}}, 16, 0, 1)

	fmt.Printf("%s reached=%v end=%s\n", p, p.CanReach(), p.EndNodePos())
	// Output: Path(length=6) reached=true end=5,0,0
}
