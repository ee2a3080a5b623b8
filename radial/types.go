// Package radial implements C5, the radial path engine: given a
// smoothed path skeleton and an agent radius, it collects the nearby
// obstacle edges, links them into chains, splits and shadows
// overlapping edges, and pushes the path outward so it never passes
// closer than the radius to a blocking edge.
//
// Grounded on crowd/local_boundary.go's LocalBoundary (distance-sorted
// edge collection around a point) and crowd/obstacle_avoidance.go's
// sampling-free analytic approach to avoiding nearby segments, adapted
// from "avoid while moving" to "precompute a push-out path once".
package radial

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
)

// LinkDist is the tolerance used to decide whether two edges share an
// endpoint (§4.5 "Numerical hygiene": kLinkDist = 1e-4).
const LinkDist = 1e-4

// LinkKind distinguishes the two corner shapes edge-linking can produce.
type LinkKind uint8

const (
	// LinkExterior is a convex-obstacle corner: the agent passes around
	// the outside of it, and the link is two endpoints offset by
	// tan(angle/2)*r from the shared vertex.
	LinkExterior LinkKind = iota
	// LinkInterior is a concave-notch corner: the agent passes through a
	// single point where the two outward-offset edges meet, at
	// r/cos(angle/2) from the shared vertex.
	LinkInterior
)

// EdgeID indexes an Engine's edge slice.
type EdgeID int32

const noEdge = EdgeID(-1)

// RawEdge is one candidate blocking edge as reported by the navmesh
// library's boundary query, in mesh-local space (§4.5 Edge collection).
type RawEdge struct {
	Loc           navgraph.NavManagerId
	A, Z          d3.Vec3
	OutwardNormal d3.Vec3
}

// EdgeSource is the out-of-scope navmesh library's "is this a blocking
// edge, including dynamic blockers" query surface, injected the same
// way navgraph.MeshSource and actionpack.Locator keep geometry
// out-of-scope dependencies out of this module (§1).
type EdgeSource interface {
	BlockingEdges(loc navgraph.NavManagerId) []RawEdge
}

// edgeLink is one side (left or right, relative to the owning edge's
// outward normal) of an edge's corner connection to a neighbour.
type edgeLink struct {
	kind     LinkKind
	partner  EdgeID
	p0, p1   d3.Vec3 // one point for LinkInterior (p0==p1).
	resolved bool    // true once linking or split-intersection assigned it.
}

// Resolved reports whether this link slot has been assigned an actual
// corner (as opposed to being the zero-value "no neighbour" slot).
func (l edgeLink) Resolved() bool { return l.resolved }

// Kind reports the link's corner classification; only meaningful when
// Resolved is true.
func (l edgeLink) Kind() LinkKind { return l.kind }

// Edge is one registered candidate obstacle boundary segment, with its
// radius-projected counterpart and link bookkeeping (§4.5 Edge
// collection / Edge linking).
type Edge struct {
	Loc           navgraph.NavManagerId
	A, Z          d3.Vec3 // mesh-local endpoints.
	OutwardNormal d3.Vec3

	ProjA, ProjZ d3.Vec3 // A/Z offset by OutwardNormal*radius, parent space.

	Link0, Link1 edgeLink // left/right, per the owning edge's outward normal.

	Shadowed bool
}

// Engine is one radial-push computation over a single path request's
// candidate edge set (§4.5).
type Engine struct {
	radius float32
	edges  []Edge
	byPoly map[navgraph.NavManagerId][]EdgeID
}

// NewEngine creates an engine that will push paths clear of obstacles
// by at least radius.
func NewEngine(radius float32) *Engine {
	return &Engine{radius: radius, byPoly: make(map[navgraph.NavManagerId][]EdgeID)}
}

// EdgeCount reports how many edges are currently registered.
func (e *Engine) EdgeCount() int { return len(e.edges) }

// Edge returns the edge at id, for tests and diagnostics.
func (e *Engine) Edge(id EdgeID) *Edge { return &e.edges[id] }
