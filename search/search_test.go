package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navgraph/testmesh"
	"github.com/ironspire/navcore/search"
)

func straightLineCost(g search.GraphView, from, to search.NodeKey, link *navgraph.Link, fromCost float32) (float32, bool) {
	fn, tn := g.Node(from.Node), g.Node(to.Node)
	if fn == nil || tn == nil {
		return 0, true
	}
	fv, tv := fn.Pos.Vec3(), tn.Pos.Vec3()
	dx, dz := fv[0]-tv[0], fv[2]-tv[2]
	return dx*dx + dz*dz, false // squared distance, monotone enough for test purposes
}

func zeroHeuristic(g search.GraphView, from navgraph.NodeID, goals []navgraph.NodeID) float32 {
	return 0
}

func alwaysExpand(search.GraphView, search.NodeKey, *navgraph.Node) bool { return true }

func buildGrid(t *testing.T, n int) (*navgraph.Graph, *testmesh.Mesh) {
	g := navgraph.NewGraph(n*n+8, (n*n+8)*4)
	mesh := testmesh.NewGrid(n, 1)
	_, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Succeeded(st))
	return g, mesh
}

func TestAStarFindsGoalOnConnectedGrid(t *testing.T) {
	g, mesh := buildGrid(t, 3)
	startID, ok := g.LookupByLoc(mesh.PolyLoc(0))
	assert.True(t, ok)
	goalID, ok := g.LookupByLoc(mesh.PolyLoc(8))
	assert.True(t, ok)

	cfg := search.Config{
		HeuristicScale: 1,
		MaxVisited:     64,
		Strategy:       func() search.OpenListStrategy { return search.NewBruteForce() },
	}

	res := search.AStar(
		g,
		[]search.Start{{Key: search.NodeKey{Node: startID}}},
		[]navgraph.NodeID{goalID},
		alwaysExpand,
		nil,
		straightLineCost,
		zeroHeuristic,
		cfg,
	)

	assert.True(t, res.ReachedAny)
	assert.Equal(t, []bool{true}, res.ReachedMask)
	assert.False(t, res.Overflowed)

	rec := res.Visited.Find(search.NodeKey{Node: goalID})
	assert.NotNil(t, rec)
	assert.True(t, rec.HasParent)
}

func TestAStarReportsOutOfNodesOnSmallVisitedTable(t *testing.T) {
	g, mesh := buildGrid(t, 3)
	startID, _ := g.LookupByLoc(mesh.PolyLoc(0))
	goalID, _ := g.LookupByLoc(mesh.PolyLoc(8))

	cfg := search.Config{
		HeuristicScale: 1,
		MaxVisited:     2, // far too small for a 3x3 grid.
		Strategy:       func() search.OpenListStrategy { return search.NewRobinHood() },
	}

	res := search.AStar(
		g,
		[]search.Start{{Key: search.NodeKey{Node: startID}}},
		[]navgraph.NodeID{goalID},
		alwaysExpand,
		nil,
		straightLineCost,
		zeroHeuristic,
		cfg,
	)

	assert.True(t, res.Overflowed)
	assert.True(t, navgraph.HasDetail(res.Status, navgraph.OutOfNodes))
}

func rejectAllCost(search.GraphView, search.NodeKey, search.NodeKey, *navgraph.Link, float32) (float32, bool) {
	return 0, true
}

func TestAStarMarksExpandedDeadEndNodeAsFringe(t *testing.T) {
	g, mesh := buildGrid(t, 3)
	startID, ok := g.LookupByLoc(mesh.PolyLoc(0))
	assert.True(t, ok)
	goalID, ok := g.LookupByLoc(mesh.PolyLoc(8))
	assert.True(t, ok)

	cfg := search.Config{
		HeuristicScale: 1,
		MaxVisited:     64,
		Strategy:       func() search.OpenListStrategy { return search.NewBruteForce() },
	}

	res := search.AStar(
		g,
		[]search.Start{{Key: search.NodeKey{Node: startID}}},
		[]navgraph.NodeID{goalID},
		alwaysExpand,
		nil,
		rejectAllCost,
		zeroHeuristic,
		cfg,
	)

	assert.False(t, res.ReachedAny)
	rec := res.Visited.Find(search.NodeKey{Node: startID})
	assert.NotNil(t, rec)
	assert.True(t, rec.IsFringe(), "start node was expanded but every child was cost-rejected")
}

func TestUndirectedReachesEveryConnectedNode(t *testing.T) {
	g, mesh := buildGrid(t, 2)
	startID, ok := g.LookupByLoc(mesh.PolyLoc(0))
	assert.True(t, ok)

	res := search.Undirected(
		g,
		[]search.Start{{Key: search.NodeKey{Node: startID}}},
		alwaysExpand,
		straightLineCost,
		16,
		func() search.OpenListStrategy { return search.NewBruteForce() },
	)

	assert.False(t, res.Overflowed)
	for i := 0; i < mesh.PolyCount(); i++ {
		id, ok := g.LookupByLoc(mesh.PolyLoc(i))
		assert.True(t, ok)
		assert.True(t, res.Visited.Reached(id), "poly %d should be reachable", i)
	}
}

func TestAgnosticOpenListSwitchesStrategy(t *testing.T) {
	ol := search.NewAgnostic(3)
	n1 := &search.NodeData{Total: 5}
	n2 := &search.NodeData{Total: 1}
	n3 := &search.NodeData{Total: 3}
	n4 := &search.NodeData{Total: 2}

	ol.Push(n1)
	ol.Push(n2)
	ol.Push(n3) // reaches the threshold of 3, migrating to the heap-backed strategy.
	ol.Push(n4)

	var order []float32
	for !ol.Empty() {
		order = append(order, ol.Pop().Total)
	}
	assert.Equal(t, []float32{1, 2, 3, 5}, order)
}
