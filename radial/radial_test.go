package radial_test

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
	"github.com/stretchr/testify/assert"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/radial"
)

// distToSegment2D is the clamped point-to-segment distance in the
// xz-plane, independent of the package's own unexported geometry so the
// test verifies against the edge's real (unprojected) endpoints.
func distToSegment2D(p, a, z d3.Vec3) float32 {
	abx, abz := z[0]-a[0], z[2]-a[2]
	apx, apz := p[0]-a[0], p[2]-a[2]
	denom := abx*abx + abz*abz
	var t float32
	if denom > 0 {
		t = (apx*abx + apz*abz) / denom
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	cx, cz := a[0]+abx*t, a[2]+abz*t
	dx, dz := p[0]-cx, p[2]-cz
	return math32.Sqrt(dx*dx + dz*dz)
}

type fakeSource struct {
	edges map[navgraph.NavManagerId][]radial.RawEdge
}

func (f fakeSource) BlockingEdges(loc navgraph.NavManagerId) []radial.RawEdge {
	return f.edges[loc]
}

func TestCollectEdgesPopulatesPerPolygonIndex(t *testing.T) {
	loc := navgraph.NavManagerId{MeshIndex: 1, PolyIndex: 0}
	src := fakeSource{edges: map[navgraph.NavManagerId][]radial.RawEdge{
		loc: {
			{Loc: loc, A: d3.Vec3{0, 0, -1}, Z: d3.Vec3{0, 0, 1}, OutwardNormal: d3.Vec3{-1, 0, 0}},
		},
	}}

	e := radial.NewEngine(0.5)
	e.CollectEdges([]navgraph.NavManagerId{loc}, src)

	assert.Equal(t, 1, e.EdgeCount())
	assert.Len(t, e.EdgesNear(loc), 1)
}

func TestLinkEdgesClassifiesSharedCorner(t *testing.T) {
	loc := navgraph.NavManagerId{MeshIndex: 1, PolyIndex: 0}
	// Two edges sharing vertex (0,0,0): one along -x, one along +z,
	// outward normals pointing away from the enclosed quadrant - a
	// convex (exterior) corner from the agent's perspective.
	src := fakeSource{edges: map[navgraph.NavManagerId][]radial.RawEdge{
		loc: {
			{Loc: loc, A: d3.Vec3{-2, 0, 0}, Z: d3.Vec3{0, 0, 0}, OutwardNormal: d3.Vec3{0, 0, -1}},
			{Loc: loc, A: d3.Vec3{0, 0, 0}, Z: d3.Vec3{0, 0, 2}, OutwardNormal: d3.Vec3{-1, 0, 0}},
		},
	}}

	e := radial.NewEngine(0.5)
	e.CollectEdges([]navgraph.NavManagerId{loc}, src)
	e.LinkEdges()

	found := false
	for i := 0; i < e.EdgeCount(); i++ {
		ed := e.Edge(radial.EdgeID(i))
		if ed.Link0.Resolved() || ed.Link1.Resolved() {
			found = true
		}
	}
	assert.True(t, found, "at least one edge should have a resolved link after LinkEdges")
}

func TestPushPathDetoursAroundCrossingEdge(t *testing.T) {
	loc := navgraph.NavManagerId{MeshIndex: 1, PolyIndex: 0}
	// A short obstacle edge on x=0, z in [-0.5, 0.5], outward normal
	// pointing toward -x, radius 0.3, in the spirit of spec scenario
	// S2 (forced portal around a short edge at radius 0.3). The path
	// runs from below the edge's span to past its far end, so it must
	// be pushed clear rather than crossing it head-on.
	edgeA := d3.Vec3{0, 0, -0.5}
	edgeZ := d3.Vec3{0, 0, 0.5}
	src := fakeSource{edges: map[navgraph.NavManagerId][]radial.RawEdge{
		loc: {
			{Loc: loc, A: edgeA, Z: edgeZ, OutwardNormal: d3.Vec3{-1, 0, 0}},
		},
	}}

	const radius = 0.3
	e := radial.NewEngine(radius)
	e.CollectEdges([]navgraph.NavManagerId{loc}, src)
	e.LinkEdges()
	e.ShadowEdges()

	path := []d3.Vec3{{-1, 0, -0.3}, {2, 0, 1.0}}
	pushed := e.PushPath(path)

	assert.GreaterOrEqual(t, len(pushed), len(path))
	assert.Equal(t, path[0], pushed[0])

	// Testable property #8, checked at the waypoints: every output
	// waypoint stays at least path_radius - 0.0175 from the blocking edge.
	const minClearance = radius - 0.0175
	foundOffsetWaypoint := false
	for _, p := range pushed {
		d := distToSegment2D(p, edgeA, edgeZ)
		assert.GreaterOrEqual(t, d, float32(minClearance), "waypoint %v closer than minimum clearance to edge", p)
		if d >= radius {
			foundOffsetWaypoint = true
		}
	}
	// Scenario S2: the output must include a waypoint offset >= 0.3
	// (the configured radius) from the edge, not just barely clipping
	// the minimum-clearance tolerance.
	assert.True(t, foundOffsetWaypoint, "expected at least one waypoint offset by the full radius from the edge")
}

func TestElimiateNarrowWedgesMergesTightCorner(t *testing.T) {
	loc := navgraph.NavManagerId{MeshIndex: 1, PolyIndex: 0}
	// Two very short edges meeting at a sharp inward angle, each far
	// shorter than the agent's diameter: should merge into one.
	src := fakeSource{edges: map[navgraph.NavManagerId][]radial.RawEdge{
		loc: {
			{Loc: loc, A: d3.Vec3{-0.05, 0, 0}, Z: d3.Vec3{0, 0, 0}, OutwardNormal: d3.Vec3{0, 0, -1}},
			{Loc: loc, A: d3.Vec3{0, 0, 0}, Z: d3.Vec3{0.05, 0, 0.01}, OutwardNormal: d3.Vec3{0, 0, -1}},
		},
	}}

	e := radial.NewEngine(1.0)
	e.CollectEdges([]navgraph.NavManagerId{loc}, src)
	before := e.EdgeCount()
	e.ElimiateNarrowWedges()

	live := 0
	for i := 0; i < e.EdgeCount(); i++ {
		if !e.Edge(radial.EdgeID(i)).Shadowed {
			live++
		}
	}
	assert.Equal(t, before-1, live)
}
