package navgraph

import "github.com/arl/gogeo/f32/d3"

// Adjacency describes one shared-edge neighbour of a polygon, as reported
// by the navmesh library's adjacency query (SPEC_FULL.md §6). EdgeA/EdgeZ
// are the two portal vertices of the shared edge, in the parent space of
// the mesh being added.
type Adjacency struct {
	Neighbor     int // index of the neighbouring polygon within the same MeshSource.
	EdgeA, EdgeZ d3.Vec3
}

// MeshSource is the subset of the navmesh library's query surface that
// the path-node graph needs in order to mirror a mesh's polygons as
// nodes: polygon count, each polygon's owning NavManagerId and a
// representative parent-space position, and each polygon's adjacency
// list. This is deliberately the minimal surface — point-in-poly,
// locator math and link-polygon resolution all stay inside the navmesh
// library per §1/§6; the graph only consumes what it needs to mirror
// topology.
type MeshSource interface {
	PolyCount() int
	PolyLoc(poly int) NavManagerId
	PolyPos(poly int) d3.Vec3
	Adjacency(poly int) []Adjacency
}

// BaseAdjacency describes a sub-polygon's shared edge with a polygon of
// the base mesh it patches over, named directly by the base polygon's
// NavManagerId (unlike Adjacency, whose Neighbor is only meaningful
// within the reporting MeshSource/SubPolySource's own index space).
type BaseAdjacency struct {
	BaseLoc      NavManagerId
	EdgeA, EdgeZ d3.Vec3
}

// SubPolySource is the equivalent surface for a dynamically patched
// sub-polygon list attached to a base polygon (PolyEx, §4.1
// add_ex_nodes_from_poly).
type SubPolySource interface {
	SubPolyCount() int
	SubPolyLoc(sub int) NavManagerId
	SubPolyPos(sub int) d3.Vec3
	// SubPolyAdjacency reports this sub-polygon's neighbours, which may be
	// other sub-polygons of the same base polygon (Neighbor is a sub-poly
	// index) or polygons of the base mesh (handled via BaseNeighbors).
	SubPolyAdjacency(sub int) []Adjacency
	// BaseNeighbors reports the base-polygon adjacencies a sub-polygon
	// shadows: which base polygon(s) it is carved from/borders, so the
	// graph can dynamically override that static routing.
	BaseNeighbors(sub int) []BaseAdjacency
}
