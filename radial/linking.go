package radial

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
)

// LinkEdges scans every pair of registered edges for a shared endpoint
// within LinkDist and, when found, classifies the corner as exterior or
// interior and computes its link-segment endpoints (§4.5 Edge linking).
//
// Convention: a corner found at an edge's A endpoint is recorded in
// that edge's Link0 (left) slot; one found at Z is recorded in Link1
// (right) — this fixes the "link0 = left, link1 = right, relative to
// the edge's own outward normal" contract the spec calls out as load-
// bearing for the push-path walk below.
func (e *Engine) LinkEdges() {
	for i := range e.edges {
		if e.edges[i].Shadowed {
			continue
		}
		for j := range e.edges {
			if i == j || e.edges[j].Shadowed {
				continue
			}
			e.linkPair(i, j)
		}
	}
}

func (e *Engine) linkPair(i, j int) {
	a, b := &e.edges[i], &e.edges[j]

	tryCorner := func(shared d3.Vec3, aIsZ, bIsZ bool) {
		otherA := a.Z
		if aIsZ {
			otherA = a.A
		}
		otherB := b.Z
		if bIsZ {
			otherB = b.A
		}

		dirA := normalize2D(sub3(otherA, shared))
		dirB := normalize2D(sub3(otherB, shared))
		if isZero2D(dirA) || isZero2D(dirB) {
			return
		}

		cross := dirA[0]*dirB[2] - dirA[2]*dirB[0]
		cos := dirA[0]*dirB[0] + dirA[2]*dirB[2]
		if cos < -1 {
			cos = -1
		}
		if cos > 1 {
			cos = 1
		}
		angle := float32(math.Acos(float64(cos)))
		half := angle / 2

		var link edgeLink
		if cross > 0 {
			// Interior (concave) corner: a single point where the two
			// outward-projected edges meet.
			dist := e.radius
			if c := float32(math.Cos(float64(half))); c < -1e-4 || c > 1e-4 {
				dist = e.radius / c
			}
			mid := normalize2D(add(dirA, dirB))
			p := add(shared, scale(mid, dist))
			link = edgeLink{kind: LinkInterior, partner: EdgeID(j), p0: p, p1: p, resolved: true}
		} else {
			// Exterior (convex) corner: two points pulled back along
			// each edge by tan(angle/2)*r.
			t := float32(math.Tan(float64(half))) * e.radius
			p0 := add(shared, scale(dirA, t))
			p1 := add(shared, scale(dirB, t))
			link = edgeLink{kind: LinkExterior, partner: EdgeID(j), p0: p0, p1: p1, resolved: true}
		}

		if aIsZ {
			a.Link1 = link
		} else {
			a.Link0 = link
		}
	}

	switch {
	case approxEqual(a.A, b.A):
		tryCorner(a.A, false, false)
	case approxEqual(a.A, b.Z):
		tryCorner(a.A, false, true)
	case approxEqual(a.Z, b.A):
		tryCorner(a.Z, true, false)
	case approxEqual(a.Z, b.Z):
		tryCorner(a.Z, true, true)
	}
}

func sub3(a, b d3.Vec3) d3.Vec3 { return d3.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

// SplitCrossingEdges finds pairs of edges whose projected segments
// cross away from an already-linked endpoint, and splits one of them in
// two at the crossing point, inserting synthetic interior links on both
// sides (§4.5 Edge splitting — the "Swiss-cheese" step).
func (e *Engine) SplitCrossingEdges() {
	for i := 0; i < len(e.edges); i++ {
		if e.edges[i].Shadowed {
			continue
		}
		for j := i + 1; j < len(e.edges); j++ {
			if e.edges[j].Shadowed {
				continue
			}
			hit, s, t := intersectSegSeg2D(e.edges[i].ProjA, e.edges[i].ProjZ, e.edges[j].ProjA, e.edges[j].ProjZ)
			if !hit || s <= 0.01 || s >= 0.99 || t <= 0.01 || t >= 0.99 {
				continue
			}
			crossing := segPoint(e.edges[i].ProjA, e.edges[i].ProjZ, s)
			e.splitAt(i, s, crossing)
		}
	}
}

// splitAt divides edge idx into two edges at parameter s along its
// projected segment, each inheriting one original endpoint and a fresh
// synthetic interior link at the crossing.
func (e *Engine) splitAt(idx int, s float32, crossing d3.Vec3) {
	orig := e.edges[idx]
	meshSplit := segPoint(orig.A, orig.Z, s)

	left := orig
	left.Z = meshSplit
	left.ProjZ = crossing
	left.Link1 = edgeLink{kind: LinkInterior, partner: noEdge, p0: crossing, p1: crossing, resolved: true}

	right := orig
	right.A = meshSplit
	right.ProjA = crossing
	right.Link0 = edgeLink{kind: LinkInterior, partner: noEdge, p0: crossing, p1: crossing, resolved: true}

	e.edges[idx] = left
	e.edges = append(e.edges, right)
	e.byPoly[orig.Loc] = append(e.byPoly[orig.Loc], EdgeID(len(e.edges)-1))
}

// ShadowEdges marks every edge whose projected segment lies entirely
// within radius of another edge's projected segment as shadowed, since
// no legal agent motion can ever touch it (§4.5 Shadowing).
func (e *Engine) ShadowEdges() {
	for i := range e.edges {
		if e.edges[i].Shadowed {
			continue
		}
		for j := range e.edges {
			if i == j || e.edges[j].Shadowed {
				continue
			}
			if segmentWithin(e.edges[i].ProjA, e.edges[i].ProjZ, e.edges[j].ProjA, e.edges[j].ProjZ, e.radius) {
				e.edges[i].Shadowed = true
				break
			}
		}
	}
}

func segmentWithin(aA, aZ, bA, bZ d3.Vec3, radius float32) bool {
	return distPtSeg2D(aA, bA, bZ) < radius && distPtSeg2D(aZ, bA, bZ) < radius
}

func distPtSeg2D(p, a, b d3.Vec3) float32 {
	abx, abz := sub2D(b, a)
	apx, apz := sub2D(p, a)
	d := abx*abx + abz*abz
	if d < 1e-8 {
		return dist2D(p, a)
	}
	t := (apx*abx + apz*abz) / d
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	closest := segPoint(a, b, t)
	return dist2D(p, closest)
}
