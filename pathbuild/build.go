package pathbuild

import (
	"time"

	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/search"
)

// RadialPush is the hook into C5 (§4.4 step 8: "run the radial path
// engine over the straightened corners to push them clear of nearby
// dynamic obstacles"). Nil means skip the step entirely (§4.4: radial
// push is optional per request).
type RadialPush func(corners []d3.Vec3) []d3.Vec3

// Build runs the full path-builder pipeline (§4.4) over a completed
// AStar search.Result: gather the winning node sequence, prune
// duplicates, validate link continuity, run the DepenetrateAP pass over
// action-pack nodes (which moves no node), build portals, smooth,
// optionally reverse and
// radial-push, finalize with motion probes, truncate at the configured
// action-pack-use limit, and compute path metrics.
func Build(
	gv GraphView,
	res *search.Result,
	goal search.NodeKey,
	startPos, goalPos d3.Vec3,
	params BuildParams,
	radial RadialPush,
	prober Prober,
) (*PathWaypoints, navgraph.Status) {
	nodes := Gather(res.Visited, goal)
	if len(nodes) == 0 {
		return nil, navgraph.Failure | navgraph.InvalidParam
	}
	nodes = Prune(nodes)
	if !Validate(gv, nodes) {
		return nil, navgraph.Failure | navgraph.ValidationFail
	}
	DepenetrateAP(gv, nodes, params.AgentRadius*0.25)

	portals := BuildPortals(gv, nodes, params.PortalShrink)
	corners := Smooth(params.Smoothing, startPos, goalPos, portals)

	if params.Reverse {
		reverseInPlace(corners)
	}
	if radial != nil {
		corners = radial(corners)
	}
	if prober != nil {
		corners = finalizeProbes(prober, startPos, corners, params)
	}

	tapCount := 0
	truncated := false
	var requiredFacing d3.Vec3
	if params.TruncateAfterTapCount > 0 {
		corners, nodes, truncated, requiredFacing = truncateAtTap(gv, nodes, corners, params.TruncateAfterTapCount)
	}

	out := &PathWaypoints{
		Points:                waypointsFromNodes(gv, nodes, corners),
		TruncatedAtTap:        truncated,
		RequiredFacingAtTrunc: requiredFacing,
	}
	computeMetrics(gv, out, nodes, corners, startPos, params.Combat)
	tapCount = countTaps(gv, nodes)
	out.TapUsed = tapCount > 0

	status := navgraph.Success
	if res.Overflowed {
		status |= navgraph.PartialResult
	}
	return out, status
}

func reverseInPlace(pts []d3.Vec3) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// waypointsFromNodes zips the smoothed corner positions back onto their
// originating node, best-effort (corners and nodes may differ in count
// once smoothing collapses portals), so downstream consumers can still
// resolve a waypoint's graph context (§3 PathWaypoints.Node).
func waypointsFromNodes(gv GraphView, nodes []navgraph.NodeID, corners []d3.Vec3) []Waypoint {
	out := make([]Waypoint, 0, len(corners))
	for i, c := range corners {
		nodeIdx := i
		if nodeIdx >= len(nodes) {
			nodeIdx = len(nodes) - 1
		}
		id := nodes[nodeIdx]
		leg := LegGround
		if n := gv.Node(id); n != nil && (n.Kind == navgraph.NodeActionPackEnter || n.Kind == navgraph.NodeActionPackExit) {
			leg = LegActionPack
		}
		out = append(out, Waypoint{Pos: c, Node: id, Leg: leg})
	}
	if len(out) > MaxWaypoints {
		out = out[:MaxWaypoints]
	}
	return out
}

func countTaps(gv GraphView, nodes []navgraph.NodeID) int {
	count := 0
	for _, id := range nodes {
		if n := gv.Node(id); n != nil && n.Kind == navgraph.NodeActionPackEnter {
			count++
		}
	}
	return count
}

// finalizeProbes walks each leg with the injected Prober, clamping any
// leg whose straight-line motion would clip geometry to the reachable
// point the probe actually reports, bounded by both the configured
// distance range and a max wall-clock duration (§4.4 step 9). Once the
// duration budget is spent, the remaining legs pass through unprobed
// rather than clamped.
func finalizeProbes(p Prober, start d3.Vec3, corners []d3.Vec3, params BuildParams) []d3.Vec3 {
	out := make([]d3.Vec3, len(corners))
	from := start

	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	var deadline time.Time
	if params.FinalizeProbeMaxDuration > 0 {
		deadline = clock().Add(params.FinalizeProbeMaxDuration)
	}

	for i, c := range corners {
		if !deadline.IsZero() && !clock().Before(deadline) {
			copy(out[i:], corners[i:])
			break
		}
		move := d3.Vec3{c[0] - from[0], c[1] - from[1], c[2] - from[2]}
		d := dist2D(from, c)
		if d < params.FinalizeProbeMinDist || d > params.FinalizeProbeMaxDist {
			out[i] = c
			from = c
			continue
		}
		reached, result := p.ProbeLS(from, move, 0, params.AgentRadius)
		if reached {
			out[i] = c
		} else {
			out[i] = result
		}
		from = out[i]
	}
	return out
}

// truncateAtTap cuts the path short at the last action-pack node within
// the allowed-use budget (§4.4 step 10: "movers that may only use N
// action packs per path get the remainder dropped, with the required
// facing direction at the cut reported back").
func truncateAtTap(gv GraphView, nodes []navgraph.NodeID, corners []d3.Vec3, maxTaps int) ([]d3.Vec3, []navgraph.NodeID, bool, d3.Vec3) {
	taps := 0
	cutNode := -1
	for i, id := range nodes {
		if n := gv.Node(id); n != nil && n.Kind == navgraph.NodeActionPackEnter {
			taps++
			if taps > maxTaps {
				cutNode = i
				break
			}
		}
	}
	if cutNode < 0 {
		return corners, nodes, false, d3.Vec3{0, 0, 0}
	}

	cutCorner := cutNode
	if cutCorner >= len(corners) {
		cutCorner = len(corners) - 1
	}
	var facing d3.Vec3
	if cutCorner+1 < len(corners) {
		a, b := corners[cutCorner], corners[cutCorner+1]
		facing = d3.Vec3{b[0] - a[0], 0, b[2] - a[2]}
	}
	return corners[:cutCorner+1], nodes[:cutNode+1], true, facing
}
