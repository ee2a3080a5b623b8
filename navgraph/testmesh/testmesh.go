// Package testmesh provides a minimal in-memory navgraph.MeshSource and
// navgraph.SubPolySource, used across this module's test suites so each
// package doesn't have to hand-roll mesh fixtures. Grounded on the
// teacher's hand-built tiny meshes in detour/query_test.go (a handful of
// polygons wired by explicit index, rather than loaded from a .obj).
package testmesh

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
)

// Poly is one polygon of a Mesh fixture.
type Poly struct {
	Center    d3.Vec3
	Neighbors []Edge
}

// Edge names one adjacency of a Poly: the neighbouring polygon's index
// within the same Mesh, and the portal vertices shared with it.
type Edge struct {
	Neighbor     int
	EdgeA, EdgeZ d3.Vec3
}

// Mesh is a fixed, hand-built fixture implementing navgraph.MeshSource.
type Mesh struct {
	MeshIndex  uint16
	Generation uint16
	Polys      []Poly
}

// NewGrid builds an n x n grid of unit-spaced square polygons, each
// linked to its orthogonal neighbours, with polygon 0 centered at the
// origin and centers running to (n-1, 0, n-1) along +X/+Z. It is the
// default fixture most package tests reach for when they just need "a
// connected mesh of a given size".
func NewGrid(n int, meshIndex uint16) *Mesh {
	m := &Mesh{MeshIndex: meshIndex, Polys: make([]Poly, n*n)}
	idx := func(x, z int) int { return z*n + x }

	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			p := Poly{Center: d3.NewVec3XYZ(float32(x), 0, float32(z))}
			if x+1 < n {
				p.Neighbors = append(p.Neighbors, Edge{
					Neighbor: idx(x+1, z),
					EdgeA:    d3.NewVec3XYZ(float32(x)+0.5, 0, float32(z)-0.5),
					EdgeZ:    d3.NewVec3XYZ(float32(x)+0.5, 0, float32(z)+0.5),
				})
			}
			if x > 0 {
				p.Neighbors = append(p.Neighbors, Edge{
					Neighbor: idx(x-1, z),
					EdgeA:    d3.NewVec3XYZ(float32(x)-0.5, 0, float32(z)-0.5),
					EdgeZ:    d3.NewVec3XYZ(float32(x)-0.5, 0, float32(z)+0.5),
				})
			}
			if z+1 < n {
				p.Neighbors = append(p.Neighbors, Edge{
					Neighbor: idx(x, z+1),
					EdgeA:    d3.NewVec3XYZ(float32(x)-0.5, 0, float32(z)+0.5),
					EdgeZ:    d3.NewVec3XYZ(float32(x)+0.5, 0, float32(z)+0.5),
				})
			}
			if z > 0 {
				p.Neighbors = append(p.Neighbors, Edge{
					Neighbor: idx(x, z-1),
					EdgeA:    d3.NewVec3XYZ(float32(x)-0.5, 0, float32(z)-0.5),
					EdgeZ:    d3.NewVec3XYZ(float32(x)+0.5, 0, float32(z)-0.5),
				})
			}
			m.Polys[idx(x, z)] = p
		}
	}
	return m
}

func (m *Mesh) PolyCount() int { return len(m.Polys) }

func (m *Mesh) PolyLoc(poly int) navgraph.NavManagerId {
	return navgraph.NavManagerId{MeshIndex: m.MeshIndex, Generation: m.Generation, PolyIndex: uint32(poly)}
}

func (m *Mesh) PolyPos(poly int) d3.Vec3 { return m.Polys[poly].Center }

func (m *Mesh) Adjacency(poly int) []navgraph.Adjacency {
	edges := m.Polys[poly].Neighbors
	out := make([]navgraph.Adjacency, len(edges))
	for i, e := range edges {
		out[i] = navgraph.Adjacency{Neighbor: e.Neighbor, EdgeA: e.EdgeA, EdgeZ: e.EdgeZ}
	}
	return out
}

// Logout bumps the mesh's generation, invalidating every NavManagerId
// minted against the previous one, matching the "bump Generation on
// logout" rule of navgraph.NavManagerId.
func (m *Mesh) Logout() { m.Generation++ }

// SubMesh is a tiny fixture implementing navgraph.SubPolySource: a list
// of dynamically patched sub-polygons, each shadowing one polygon of a
// base Mesh.
type SubMesh struct {
	Base       *Mesh
	MeshIndex  uint16
	Generation uint16
	Subs       []SubPoly
}

// SubPoly is one dynamic sub-polygon of a SubMesh fixture.
type SubPoly struct {
	Center    d3.Vec3
	Neighbors []Edge // sub-poly-to-sub-poly, Neighbor indexes Subs.
	BasePolys []int  // indices into Base.Polys this sub-poly shadows.
}

func (s *SubMesh) SubPolyCount() int { return len(s.Subs) }

func (s *SubMesh) SubPolyLoc(sub int) navgraph.NavManagerId {
	return navgraph.NavManagerId{MeshIndex: s.MeshIndex, Generation: s.Generation, SubPolyIndex: uint32(sub) + 1}
}

func (s *SubMesh) SubPolyPos(sub int) d3.Vec3 { return s.Subs[sub].Center }

func (s *SubMesh) SubPolyAdjacency(sub int) []navgraph.Adjacency {
	edges := s.Subs[sub].Neighbors
	out := make([]navgraph.Adjacency, len(edges))
	for i, e := range edges {
		out[i] = navgraph.Adjacency{Neighbor: e.Neighbor, EdgeA: e.EdgeA, EdgeZ: e.EdgeZ}
	}
	return out
}

func (s *SubMesh) BaseNeighbors(sub int) []navgraph.BaseAdjacency {
	out := make([]navgraph.BaseAdjacency, 0, len(s.Subs[sub].BasePolys))
	for _, bp := range s.Subs[sub].BasePolys {
		out = append(out, navgraph.BaseAdjacency{
			BaseLoc: s.Base.PolyLoc(bp),
			EdgeA:   s.Subs[sub].Center,
			EdgeZ:   s.Base.Polys[bp].Center,
		})
	}
	return out
}
