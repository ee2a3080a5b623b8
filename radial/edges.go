package radial

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"

	"github.com/ironspire/navcore/navgraph"
)

// CollectEdges enumerates every blocking edge reported by source for
// each polygon in polys, registering it in the polygon→edges index and
// caching its radius-projected counterpart (§4.5 Edge collection).
func (e *Engine) CollectEdges(polys []navgraph.NavManagerId, source EdgeSource) {
	for _, loc := range polys {
		if _, ok := e.byPoly[loc]; ok {
			continue // already collected for this request.
		}
		raw := source.BlockingEdges(loc)
		ids := make([]EdgeID, 0, len(raw))
		for _, r := range raw {
			ids = append(ids, e.addEdge(r))
		}
		e.byPoly[loc] = ids
	}
}

func (e *Engine) addEdge(r RawEdge) EdgeID {
	id := EdgeID(len(e.edges))
	push := scale(r.OutwardNormal, e.radius)
	e.edges = append(e.edges, Edge{
		Loc:           r.Loc,
		A:             r.A,
		Z:             r.Z,
		OutwardNormal: r.OutwardNormal,
		ProjA:         add(r.A, push),
		ProjZ:         add(r.Z, push),
		Link0:         edgeLink{partner: noEdge},
		Link1:         edgeLink{partner: noEdge},
	})
	return id
}

// EdgesNear returns the ids of every registered edge belonging to loc.
func (e *Engine) EdgesNear(loc navgraph.NavManagerId) []EdgeID {
	return e.byPoly[loc]
}

// ElimiateNarrowWedges implements the legacy narrow-wedge merge pass
// (§4.5 "Narrow-wedge elimination (legacy mode)"): repeatedly merges
// edge pairs whose shared vertex forms an inward wedge tighter than 2r,
// dropping the shorter of the pair and extending the other to close the
// gap, so downstream linking never has to represent a wedge no probe of
// radius r could ever fit through.
func (e *Engine) ElimiateNarrowWedges() {
	const maxPasses = 4
	for pass := 0; pass < maxPasses; pass++ {
		merged := false
		for i := range e.edges {
			if e.edges[i].Shadowed {
				continue
			}
			for j := range e.edges {
				if i == j || e.edges[j].Shadowed {
					continue
				}
				shared, onI, onJ, ok := sharedVertex(&e.edges[i], &e.edges[j])
				if !ok {
					continue
				}
				otherI := e.edges[i].Z
				if onI {
					otherI = e.edges[i].A
				}
				otherJ := e.edges[j].Z
				if onJ {
					otherJ = e.edges[j].A
				}
				if !isNarrowInwardWedge(shared, otherI, otherJ, e.radius) {
					continue
				}
				e.mergeWedge(i, j, onI, onJ)
				merged = true
			}
		}
		if !merged {
			break
		}
	}
}

func sharedVertex(a, b *Edge) (shared d3.Vec3, onAIsZ, onBIsZ bool, ok bool) {
	switch {
	case approxEqual(a.A, b.A):
		return a.A, false, false, true
	case approxEqual(a.A, b.Z):
		return a.A, false, true, true
	case approxEqual(a.Z, b.A):
		return a.Z, true, false, true
	case approxEqual(a.Z, b.Z):
		return a.Z, true, true, true
	}
	return d3.Vec3{0, 0, 0}, false, false, false
}

// isNarrowInwardWedge tests whether the corner at shared, between rays
// toward otherI and otherJ, is both inward-facing (concave from the
// agent's perspective) and narrower than the agent's diameter.
func isNarrowInwardWedge(shared, otherI, otherJ d3.Vec3, radius float32) bool {
	ix, iz := sub2D(otherI, shared)
	jx, jz := sub2D(otherJ, shared)
	li := math32.Sqrt(ix*ix + iz*iz)
	lj := math32.Sqrt(jx*jx + jz*jz)
	if li < 1e-6 || lj < 1e-6 {
		return false
	}
	cos := (ix*jx + iz*jz) / (li * lj)
	if cos < -1 {
		cos = -1
	}
	if cos > 1 {
		cos = 1
	}
	angle := float32(math.Acos(float64(cos)))
	// A wedge narrower than 2r cannot admit a radius-r probe.
	chord := 2 * radius
	approxChord := angle * (li + lj) / 2
	return approxChord < chord && triArea2D(shared, otherI, otherJ) > 0
}

// mergeWedge drops the shorter of the two edges and extends the longer
// one to the far endpoint of the dropped edge, preserving the outward
// normal of the kept edge (§4.5: "extend link-carrying partner edges to
// preserve topology, and drop the shorter edge").
func (e *Engine) mergeWedge(i, j int, onIisZ, onJisZ bool) {
	li := dist2D(e.edges[i].A, e.edges[i].Z)
	lj := dist2D(e.edges[j].A, e.edges[j].Z)

	keep, drop := i, j
	keepIsZ, dropIsZ := onIisZ, onJisZ
	if lj > li {
		keep, drop = j, i
		keepIsZ, dropIsZ = onJisZ, onIisZ
	}

	far := e.edges[drop].Z
	if dropIsZ {
		far = e.edges[drop].A
	}
	if keepIsZ {
		e.edges[keep].Z = far
		e.edges[keep].ProjZ = add(far, scale(e.edges[keep].OutwardNormal, e.radius))
	} else {
		e.edges[keep].A = far
		e.edges[keep].ProjA = add(far, scale(e.edges[keep].OutwardNormal, e.radius))
	}
	e.edges[drop].Shadowed = true
}
