package pathbuild

import "github.com/arl/gogeo/f32/d3"

// Smooth reduces a start position, a sequence of portals, and an end
// position down to a list of corner points, per the strategy named by
// mode (§4.4 step 6).
func Smooth(mode SmoothMode, start, end d3.Vec3, portals []NavPortal) []d3.Vec3 {
	switch mode {
	case SmoothNone:
		return smoothNone(start, end, portals)
	case SmoothApprox:
		return smoothApprox(start, end, portals)
	default:
		return smoothFull(start, end, portals)
	}
}

// smoothNone emits one point per portal's midpoint plus the final
// position, performing no straightening at all (§4.4 step 6: "None —
// one point per node crossing, no straightening").
func smoothNone(start, end d3.Vec3, portals []NavPortal) []d3.Vec3 {
	out := make([]d3.Vec3, 0, len(portals)+1)
	for _, p := range portals {
		out = append(out, midpoint(p.Left, p.Right))
	}
	out = append(out, end)
	return out
}

// smoothApprox collapses consecutive portals that are already roughly
// colinear with the running direction of travel, keeping a corner only
// where the turn exceeds a small deviation threshold (§4.4 step 6:
// "Approximate — cheap collinearity collapse, no frustum tracking").
func smoothApprox(start, end d3.Vec3, portals []NavPortal) []d3.Vec3 {
	pts := smoothNone(start, end, portals)
	if len(pts) <= 1 {
		return pts
	}

	const collinearEps = 1e-2
	out := make([]d3.Vec3, 0, len(pts))
	prev := start
	for i, pt := range pts {
		if i == len(pts)-1 {
			out = append(out, pt)
			break
		}
		next := pts[i+1]
		// Drop pt if prev->next passes within collinearEps of it.
		area := triArea2D(prev, next, pt)
		d := dist2D(prev, next)
		if area*area < collinearEps*collinearEps*d*d {
			continue
		}
		out = append(out, pt)
		prev = pt
	}
	return out
}

// smoothFull is the portal-funnel string-pulling algorithm: it tracks a
// left/right frustum from a moving apex, narrowing it as each new
// portal agrees with the current frustum, and committing a corner
// whenever a portal would require crossing to the other side, then
// rewinds the scan back to the committed apex's portal index and
// replays forward so portals between the old and new apex are
// re-tested against the narrower frustum.
//
// Grounded directly on detour.NavMeshQuery.FindStraightPath
// (detour/query.go): portalApex/portalLeft/portalRight and
// apexIndex/leftIndex/rightIndex play the same role, the two
// TriArea2D sign tests below are the same turn tests FindStraightPath
// performs against the right and left portal vertices in turn, and the
// `i = apexIndex; continue` rewind on commit is the same one
// FindStraightPath does (detour/query.go ~line 562/~592) rather than
// simply moving on to the next portal.
func smoothFull(start, end d3.Vec3, portals []NavPortal) []d3.Vec3 {
	if len(portals) == 0 {
		return []d3.Vec3{end}
	}

	// Append a final degenerate portal at end so the loop below handles
	// the last corner with the same logic as every other portal.
	all := make([]NavPortal, len(portals)+1)
	copy(all, portals)
	all[len(portals)] = NavPortal{Kind: PortalSingular, Left: end, Right: end}

	var out []d3.Vec3

	apex := start
	left := start
	right := start
	apexIndex, leftIndex, rightIndex := 0, 0, 0

	for i := 0; i < len(all); i++ {
		pl, pr := all[i].Left, all[i].Right

		// Right vertex.
		if triArea2D(apex, right, pr) <= 0 {
			if approxEqual(apex, right) || triArea2D(apex, left, pr) > 0 {
				right = pr
				rightIndex = i
			} else {
				out = append(out, left)
				apex, left, right = left, left, left
				apexIndex = leftIndex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex
				continue
			}
		}

		// Left vertex.
		if triArea2D(apex, left, pl) >= 0 {
			if approxEqual(apex, left) || triArea2D(apex, right, pl) < 0 {
				left = pl
				leftIndex = i
			} else {
				out = append(out, right)
				apex, left, right = right, right, right
				apexIndex = rightIndex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex
				continue
			}
		}
	}

	if len(out) == 0 || !approxEqual(out[len(out)-1], end) {
		out = append(out, end)
	}
	return out
}
