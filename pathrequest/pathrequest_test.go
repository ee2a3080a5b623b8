package pathrequest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navgraph/testmesh"
	"github.com/ironspire/navcore/pathbuild"
	"github.com/ironspire/navcore/pathrequest"
	"github.com/ironspire/navcore/search"
)

func buildGridGraph(t *testing.T, n int) (*navgraph.Graph, *testmesh.Mesh, navgraph.NodeID, navgraph.NodeID) {
	g := navgraph.NewGraph(n*n+8, (n*n+8)*4)
	mesh := testmesh.NewGrid(n, 1)
	_, st := g.AddMesh(mesh)
	require.True(t, navgraph.Succeeded(st))

	startID, ok := g.LookupByLoc(mesh.PolyLoc(0))
	require.True(t, ok)
	goalID, ok := g.LookupByLoc(mesh.PolyLoc(n*n - 1))
	require.True(t, ok)
	return g, mesh, startID, goalID
}

func TestAddStaticRequestIsServicedAndResultsBecomeVisibleAfterFlip(t *testing.T) {
	g, _, startID, goalID := buildGridGraph(t, 3)
	m := pathrequest.NewManager(g)

	h := m.AddStaticRequest("to-goal", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, true)
	require.False(t, h.IsZero())

	now := time.Now()
	m.Update(now, 8)

	// Before FlipBuffers, the active slot is still the unserviced one.
	directed, _, status := m.GetResults(h)
	assert.True(t, navgraph.Succeeded(status))
	assert.Nil(t, directed)

	m.FlipBuffers()
	directed, _, status = m.GetResults(h)
	assert.True(t, navgraph.Succeeded(status))
	require.NotNil(t, directed)
	assert.True(t, directed.Result.ReachedAny)
	assert.Equal(t, goalID, directed.Goal.Node)
}

func TestOneShotRequestIsNotRescoredAfterItsFirstService(t *testing.T) {
	g, _, startID, goalID := buildGridGraph(t, 2)
	m := pathrequest.NewManager(g)

	h := m.AddStaticRequest("one-shot", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, true)

	now := time.Now()
	m.Update(now, 8)
	m.FlipBuffers()
	first, _, _ := m.GetResults(h)
	require.NotNil(t, first)

	// A second Update at the same instant must not reschedule a
	// non-ongoing request that already produced a result.
	m.Update(now, 8)
	m.FlipBuffers()
	second, _, _ := m.GetResults(h)
	assert.True(t, first == second)
}

func TestUndirectedRequestFillsVisitedTableReachableFromCanPathTo(t *testing.T) {
	g, _, startID, goalID := buildGridGraph(t, 3)
	m := pathrequest.NewManager(g)

	h := m.AddUndirectedRequest("patrol-range", 1, pathrequest.UndirectedParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
	}, true, true, false)

	now := time.Now()
	m.Update(now, 8)
	m.FlipBuffers()

	ok, status := m.CanPathTo(h, goalID)
	assert.True(t, navgraph.Succeeded(status))
	assert.True(t, ok)

	dist, status := m.GetApproxPathDistance(h, goalID)
	assert.True(t, navgraph.Succeeded(status))
	assert.Greater(t, dist, float32(0))
}

func TestCacheRequestSnapshotsSourceWithoutReRunningSearch(t *testing.T) {
	g, _, startID, _ := buildGridGraph(t, 2)
	m := pathrequest.NewManager(g)

	src := m.AddUndirectedRequest("source", 1, pathrequest.UndirectedParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
	}, true, false, true)
	cache := m.CacheRequest("cached-view", src)

	now := time.Now()
	m.Update(now, 8)
	m.FlipBuffers()
	// The cache snapshots its source's active slot, which only holds the
	// first result once that tick's flip has happened; a second tick at
	// the same instant copies it without re-running the source's search.
	m.Update(now, 8)
	m.FlipBuffers()

	_, srcOut, status := m.GetResults(src)
	assert.True(t, navgraph.Succeeded(status))
	require.NotNil(t, srcOut)

	_, cacheOut, status := m.GetResults(cache)
	assert.True(t, navgraph.Succeeded(status))
	require.NotNil(t, cacheOut)
	assert.True(t, srcOut.Result == cacheOut.Result)
}

func TestRemoveRequestDefersReclaimUntilNextUpdate(t *testing.T) {
	g, _, startID, goalID := buildGridGraph(t, 2)
	m := pathrequest.NewManager(g)

	h := m.AddStaticRequest("transient", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, false)

	m.RemoveRequest(h)
	// Reported stale at once, even before the next Update reclaims the slot.
	_, _, status := m.GetResults(h)
	assert.True(t, navgraph.Failed(status))
	assert.True(t, navgraph.HasDetail(status, navgraph.HandleStale))

	m.Update(time.Now(), 8)
	_, _, status = m.GetResults(h)
	assert.True(t, navgraph.Failed(status))
}

func TestGetResultsOnStaleHandleReportsHandleStale(t *testing.T) {
	g, _, startID, goalID := buildGridGraph(t, 2)
	m := pathrequest.NewManager(g)

	h := m.AddStaticRequest("req", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, false)
	m.RemoveRequest(h)
	m.Update(time.Now(), 8)

	reused := m.AddStaticRequest("req2", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, false)
	assert.Equal(t, h.Index, reused.Index)
	assert.NotEqual(t, h.Generation, reused.Generation)

	_, _, status := m.GetResults(h)
	assert.True(t, navgraph.Failed(status))
	assert.True(t, navgraph.HasDetail(status, navgraph.HandleStale))
}

func TestBuildPathDelegatesIntoPathBuilderOverTheStoredSearchResult(t *testing.T) {
	g, _, startID, goalID := buildGridGraph(t, 3)
	m := pathrequest.NewManager(g)

	h := m.AddStaticRequest("to-goal", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, true)

	m.Update(time.Now(), 8)
	m.FlipBuffers()

	goalPos := g.Node(goalID).Pos.Vec3()
	params := pathbuild.BuildParams{
		AgentRadius:          0.5,
		Smoothing:            pathbuild.SmoothFull,
		PortalShrink:         0.1,
		FinalizeProbeMaxDist: 1000,
	}
	out, status := m.BuildPath(h, params, goalPos, nil, nil)
	require.True(t, navgraph.Succeeded(status))
	require.NotNil(t, out)
	assert.NotEmpty(t, out.Points)
	last := out.Points[len(out.Points)-1]
	assert.InDelta(t, goalPos[0], last.Pos[0], 1e-3)
}
