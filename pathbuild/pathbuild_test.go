package pathbuild_test

import (
	"testing"
	"time"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navgraph/testmesh"
	"github.com/ironspire/navcore/pathbuild"
	"github.com/ironspire/navcore/search"
)

func straightLineCost(g search.GraphView, from, to search.NodeKey, link *navgraph.Link, fromCost float32) (float32, bool) {
	fn, tn := g.Node(from.Node), g.Node(to.Node)
	if fn == nil || tn == nil {
		return 0, true
	}
	fv, tv := fn.Pos.Vec3(), tn.Pos.Vec3()
	dx, dz := fv[0]-tv[0], fv[2]-tv[2]
	return dx*dx + dz*dz, false
}

func zeroHeuristic(search.GraphView, navgraph.NodeID, []navgraph.NodeID) float32 { return 0 }
func alwaysExpand(search.GraphView, search.NodeKey, *navgraph.Node) bool         { return true }

func buildGridSearch(t *testing.T, n int) (*navgraph.Graph, *testmesh.Mesh, *search.Result, navgraph.NodeID, navgraph.NodeID) {
	g := navgraph.NewGraph(n*n+8, (n*n+8)*4)
	mesh := testmesh.NewGrid(n, 1)
	_, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Succeeded(st))

	startID, ok := g.LookupByLoc(mesh.PolyLoc(0))
	assert.True(t, ok)
	goalID, ok := g.LookupByLoc(mesh.PolyLoc(n*n - 1))
	assert.True(t, ok)

	cfg := search.Config{
		HeuristicScale: 1,
		MaxVisited:     n*n + 8,
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
	return g, mesh, res, startID, goalID
}

func TestGatherRetracesParentChainFromGoalToStart(t *testing.T) {
	g, _, res, startID, goalID := buildGridSearch(t, 3)

	nodes := pathbuild.Gather(res.Visited, search.NodeKey{Node: goalID})
	assert.NotEmpty(t, nodes)
	assert.Equal(t, startID, nodes[0])
	assert.Equal(t, goalID, nodes[len(nodes)-1])
	assert.True(t, pathbuild.Validate(g, nodes))
}

func TestBuildProducesSmoothedWaypointsToGoal(t *testing.T) {
	g, mesh, res, startID, goalID := buildGridSearch(t, 3)

	startPos := g.Node(startID).Pos.Vec3()
	goalPos := g.Node(goalID).Pos.Vec3()
	_ = mesh

	params := pathbuild.BuildParams{
		AgentRadius:          0.5,
		Smoothing:            pathbuild.SmoothFull,
		PortalShrink:         0.1,
		FinalizeProbeMinDist: 0,
		FinalizeProbeMaxDist: 1000,
	}

	out, status := pathbuild.Build(g, res, search.NodeKey{Node: goalID}, startPos, goalPos, params, nil, nil)
	assert.True(t, navgraph.Succeeded(status))
	assert.NotEmpty(t, out.Points)
	last := out.Points[len(out.Points)-1]
	assert.InDelta(t, goalPos[0], last.Pos[0], 1e-3)
	assert.InDelta(t, goalPos[2], last.Pos[2], 1e-3)
	assert.Greater(t, out.Length, float32(0))
}

func TestBuildNoneModeEmitsOnePointPerPortal(t *testing.T) {
	g, _, res, startID, goalID := buildGridSearch(t, 2)
	startPos := g.Node(startID).Pos.Vec3()
	goalPos := g.Node(goalID).Pos.Vec3()

	params := pathbuild.BuildParams{AgentRadius: 0.5, Smoothing: pathbuild.SmoothNone, PortalShrink: 0.1}
	out, status := pathbuild.Build(g, res, search.NodeKey{Node: goalID}, startPos, goalPos, params, nil, nil)
	assert.True(t, navgraph.Succeeded(status))
	assert.NotEmpty(t, out.Points)
	// One point per portal plus the end point: as many points as path nodes.
	nodes := pathbuild.Gather(res.Visited, search.NodeKey{Node: goalID})
	assert.Len(t, out.Points, len(nodes))
}

// fakeProber always reports a clip back to the leg's starting point, so a
// probed leg is distinguishable from an unprobed one in the output.
type fakeProber struct {
	calls int
}

func (f *fakeProber) ProbeLS(start, move d3.Vec3, obeyed uint32, radius float32) (bool, d3.Vec3) {
	f.calls++
	return false, start
}

func TestBuildFinalizeProbesStopsClampingOnceDurationBudgetIsSpent(t *testing.T) {
	g, _, res, startID, goalID := buildGridSearch(t, 3)
	startPos := g.Node(startID).Pos.Vec3()
	goalPos := g.Node(goalID).Pos.Vec3()

	base := time.Unix(1000, 0)
	clockCalls := 0
	clock := func() time.Time {
		clockCalls++
		// First call computes the deadline, second is the first leg's
		// own check; both land before the deadline. Every call after
		// that reports time has moved well past it.
		if clockCalls <= 2 {
			return base
		}
		return base.Add(time.Hour)
	}

	prober := &fakeProber{}
	params := pathbuild.BuildParams{
		AgentRadius:              0.5,
		Smoothing:                pathbuild.SmoothNone,
		PortalShrink:             0.1,
		FinalizeProbeMinDist:     0,
		FinalizeProbeMaxDist:     1000,
		FinalizeProbeMaxDuration: time.Nanosecond,
		Clock:                    clock,
	}

	out, status := pathbuild.Build(g, res, search.NodeKey{Node: goalID}, startPos, goalPos, params, nil, prober)
	assert.True(t, navgraph.Succeeded(status))
	assert.NotEmpty(t, out.Points)
	assert.Equal(t, 1, prober.calls)

	// The first leg was probed, so its waypoint is clamped to the leg's
	// start rather than the original corner.
	assert.InDelta(t, startPos[0], out.Points[0].Pos[0], 1e-3)
	assert.InDelta(t, startPos[2], out.Points[0].Pos[2], 1e-3)

	// Remaining legs pass through unprobed once the deadline is spent, so
	// the path still reaches the goal instead of being clamped short.
	last := out.Points[len(out.Points)-1]
	assert.InDelta(t, goalPos[0], last.Pos[0], 1e-3)
	assert.InDelta(t, goalPos[2], last.Pos[2], 1e-3)
}

func TestBuildFailsForGoalMissingFromVisitedTable(t *testing.T) {
	g, _, res, _, goalID := buildGridSearch(t, 2)

	// Ask for a node the search never visited: Gather finds no record,
	// so Build has no node sequence to work from and fails.
	unvisited := navgraph.NodeID(9999)
	_, status := pathbuild.Build(g, res, search.NodeKey{Node: unvisited}, d3.Vec3{0, 0, 0}, d3.Vec3{0, 0, 0}, pathbuild.BuildParams{}, nil, nil)
	assert.True(t, navgraph.Failed(status))
	_ = goalID
}
