package pathbuild

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
)

// BuildPortals constructs the shared-edge crossing between each
// consecutive pair of nodes in a pruned sequence (§4.4 step 5).
//
// A portal's kind follows the destination node's: crossing into an
// action-pack enter/exit node collapses the portal to a single point
// (Singular, since there is no shared edge to funnel through, only an
// anchor to pass through); crossing between two ordinary polygons uses
// the link's recorded EdgeA/EdgeZ, shrunk toward its midpoint by
// shrink so the funnel never touches the unwalkable boundary exactly;
// a link whose edge is no wider than the 0.2 minimum portal width is
// kept at its full, unshrunk width and marked as a WideTAP portal
// instead of being shrunk away to nothing.
//
// Grounded on detour.NavMeshQuery.portalPoints (used by FindStraightPath,
// detour/query.go), which likewise derives each portal from the shared
// edge of two consecutive polygons in the path.
func BuildPortals(gv GraphView, nodes []navgraph.NodeID, shrink float32) []NavPortal {
	if len(nodes) < 2 {
		return nil
	}
	portals := make([]NavPortal, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		link := findLink(gv, nodes[i], nodes[i+1])
		toNode := gv.Node(nodes[i+1])
		if link == nil || toNode == nil {
			continue
		}

		if toNode.Kind == navgraph.NodeActionPackEnter || toNode.Kind == navgraph.NodeActionPackExit {
			p := toNode.Pos.Vec3()
			portals = append(portals, NavPortal{Kind: PortalSingular, Left: p, Right: p})
			continue
		}

		left, right := link.EdgeA.Vec3(), link.EdgeZ.Vec3()
		if approxEqual(left, right) {
			portals = append(portals, NavPortal{Kind: PortalSingular, Left: left, Right: right})
			continue
		}

		const minPortalWidth = 0.2
		width := dist2D(left, right)
		if width <= minPortalWidth {
			portals = append(portals, NavPortal{Kind: PortalWideTAP, Left: left, Right: right})
			continue
		}

		mid := midpoint(left, right)
		shrunkLeft := lerp(left, mid, shrink)
		shrunkRight := lerp(right, mid, shrink)
		portals = append(portals, NavPortal{
			Kind:          PortalRegular,
			Left:          shrunkLeft,
			Right:         shrunkRight,
			OutwardNormal: edgeNormal(shrunkLeft, shrunkRight),
		})
	}
	return portals
}

func findLink(gv GraphView, from, to navgraph.NodeID) *navgraph.Link {
	node := gv.Node(from)
	if node == nil {
		return nil
	}
	for lid := node.OutLink; lid != 0; {
		link := gv.Link(lid)
		if link == nil {
			return nil
		}
		if link.Dest == to && link.Kind != navgraph.LinkIncoming {
			return link
		}
		lid = link.Next
	}
	return nil
}

func edgeNormal(left, right d3.Vec3) d3.Vec3 {
	dx, dz := right[0]-left[0], right[2]-left[2]
	return d3.Vec3{-dz, 0, dx}
}
