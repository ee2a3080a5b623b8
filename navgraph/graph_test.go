package navgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navgraph/testmesh"
)

func TestAddMeshLinksNeighbours(t *testing.T) {
	g := navgraph.NewGraph(64, 256)
	mesh := testmesh.NewGrid(3, 1)

	added, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Succeeded(st))
	assert.Equal(t, 9, added)

	stats := g.Stats()
	assert.Equal(t, 9, stats.NodeCount)
	// Grid interior links: 12 undirected edges * 2 directed links each.
	assert.Equal(t, 24, stats.LinkCount)

	centerID, ok := g.LookupByLoc(mesh.PolyLoc(4)) // center of the 3x3 grid
	assert.True(t, ok)
	center := g.Node(centerID)
	assert.NotNil(t, center)

	var neighbours int
	for cur := center.OutLink; cur != 0; {
		l := g.Link(cur)
		assert.NotNil(t, l)
		neighbours++
		cur = l.Next
	}
	assert.Equal(t, 4, neighbours)
}

func TestRemoveMeshFreesSlots(t *testing.T) {
	g := navgraph.NewGraph(16, 64)
	mesh := testmesh.NewGrid(2, 1)

	_, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Succeeded(st))
	assert.Equal(t, 4, g.Stats().NodeCount)

	g.RemoveMesh(mesh)
	assert.Equal(t, 0, g.Stats().NodeCount)
	assert.Equal(t, 0, g.Stats().LinkCount)

	_, ok := g.LookupByLoc(mesh.PolyLoc(0))
	assert.False(t, ok)

	// Slots must be reusable after removal.
	_, st = g.AddMesh(testmesh.NewGrid(2, 2))
	assert.True(t, navgraph.Succeeded(st))
	assert.Equal(t, 4, g.Stats().NodeCount)
}

func TestAddMeshRollsBackOnNodeExhaustion(t *testing.T) {
	g := navgraph.NewGraph(5, 64) // grid needs 9 nodes, only 5 available.
	mesh := testmesh.NewGrid(3, 1)

	_, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Failed(st))
	assert.True(t, navgraph.HasDetail(st, navgraph.OutOfMemory))
	assert.Equal(t, 0, g.Stats().NodeCount)
	assert.Equal(t, 0, g.Stats().LinkCount)

	_, ok := g.LookupByLoc(mesh.PolyLoc(0))
	assert.False(t, ok)
}

func TestAddExNodesFromPolyShadowsBase(t *testing.T) {
	g := navgraph.NewGraph(16, 64)
	base := testmesh.NewGrid(2, 1)
	_, st := g.AddMesh(base)
	assert.True(t, navgraph.Succeeded(st))

	sub := &testmesh.SubMesh{
		Base:      base,
		MeshIndex: 1,
		Subs: []testmesh.SubPoly{
			{BasePolys: []int{0}},
		},
	}

	ids, st := g.AddExNodesFromPoly(sub)
	assert.True(t, navgraph.Succeeded(st))
	assert.Len(t, ids, 1)

	baseID, ok := g.LookupByLoc(base.PolyLoc(0))
	assert.True(t, ok)
	baseNode := g.Node(baseID)

	var sawSub bool
	for cur := baseNode.OutLink; cur != 0; {
		l := g.Link(cur)
		if l.Dest == ids[0] {
			sawSub = true
			assert.Equal(t, navgraph.LinkIncoming, l.Kind)
		}
		cur = l.Next
	}
	assert.True(t, sawSub, "base node should link to the shadowing sub-polygon")

	g.RemovePolyEx(ids)
	_, ok = g.LookupByLoc(sub.SubPolyLoc(0))
	assert.False(t, ok)
}

func TestValidateDetectsCleanGraph(t *testing.T) {
	g := navgraph.NewGraph(16, 64)
	mesh := testmesh.NewGrid(2, 1)
	_, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Succeeded(st))
	assert.NoError(t, g.Validate())

	g.RemoveMesh(mesh)
	assert.NoError(t, g.Validate())
}
