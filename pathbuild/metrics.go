package pathbuild

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
)

// computeMetrics fills in a PathWaypoints' summary fields from its final
// corner sequence (§4.4 step 11): total length, initial/final direction,
// and the combat-vector cost if a weighting was supplied.
func computeMetrics(gv GraphView, out *PathWaypoints, nodes []navgraph.NodeID, corners []d3.Vec3, start d3.Vec3, combat *CombatVectorInfo) {
	if len(corners) == 0 {
		return
	}

	prev := start
	var length float32
	for _, c := range corners {
		length += dist2D(prev, c)
		prev = c
	}
	out.Length = length

	out.InitialDir = direction(start, corners[0])
	prevToLast := start
	if len(corners) >= 2 {
		prevToLast = corners[len(corners)-2]
	}
	out.FinalDir = direction(prevToLast, corners[len(corners)-1])

	if combat != nil && combat.Weight != nil {
		out.CombatVectorCost = combatCost(gv, nodes, combat)
	}
}

func direction(a, b d3.Vec3) d3.Vec3 {
	dx, dz := b[0]-a[0], b[2]-a[2]
	d := dist2D(a, b)
	if d < 1e-6 {
		return d3.Vec3{0, 0, 0}
	}
	return d3.Vec3{dx / d, 0, dz / d}
}

// combatCost sums the caller-supplied direction weighting over every
// traversed link, modelling §4.4's "combat-vector cost" as a per-leg
// penalty for moving against a supplied facing/threat vector rather
// than a geometric distance.
func combatCost(gv GraphView, nodes []navgraph.NodeID, combat *CombatVectorInfo) float32 {
	var total float32
	for i := 0; i+1 < len(nodes); i++ {
		link := findLink(gv, nodes[i], nodes[i+1])
		if link == nil {
			continue
		}
		total += combat.Weight(nodes[i], link)
	}
	return total
}
