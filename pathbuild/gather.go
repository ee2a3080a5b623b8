package pathbuild

import (
	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/search"
)

// Gather walks a search.Result's parent chain from the reached goal back
// to its start, producing the raw node sequence the rest of the pipeline
// prunes and smooths (§4.4 step 1).
//
// Grounded on crowd/path_corridor.go's corner-finding, which likewise
// walks a path-node sequence front to back rather than re-deriving it
// from the visited table each call.
func Gather(visited *search.VisitedFull, goal search.NodeKey) []navgraph.NodeID {
	rec := visited.Find(goal)
	if rec == nil {
		return nil
	}

	var reversed []navgraph.NodeID
	for {
		reversed = append(reversed, rec.Key.Node)
		if !rec.HasParent {
			break
		}
		parent := visited.Find(rec.Parent)
		if parent == nil || parent.Key == rec.Key {
			break
		}
		rec = parent
	}

	out := make([]navgraph.NodeID, len(reversed))
	for i, id := range reversed {
		out[len(reversed)-1-i] = id
	}
	return out
}

// GatherUndirected is Gather's counterpart over a VisitedTrivial table,
// used when the caller built its path through an undirected search
// (§4.7; e.g. can_path_to / build_path_from_cached_request).
func GatherUndirected(visited *search.VisitedTrivial, goal navgraph.NodeID) []navgraph.NodeID {
	rec := visited.Find(goal)
	if rec == nil {
		return nil
	}

	var reversed []navgraph.NodeID
	for {
		reversed = append(reversed, rec.Key.Node)
		if !rec.HasParent {
			break
		}
		parent := visited.Find(rec.Parent.Node)
		if parent == nil || parent.Key.Node == rec.Key.Node {
			break
		}
		rec = parent
	}

	out := make([]navgraph.NodeID, len(reversed))
	for i, id := range reversed {
		out[len(reversed)-1-i] = id
	}
	return out
}

// Prune removes consecutive duplicate node ids (a degenerate zero-length
// leg, e.g. an action-pack's enter/exit pair collapsing onto the same
// polygon) from a gathered sequence (§4.4 step 2).
func Prune(nodes []navgraph.NodeID) []navgraph.NodeID {
	if len(nodes) == 0 {
		return nodes
	}
	out := nodes[:1]
	for _, id := range nodes[1:] {
		if id == out[len(out)-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Validate reports whether every consecutive pair of nodes in the
// sequence is actually linked in the graph (§4.4 step 3: a corrupted or
// stale node sequence must fail fast rather than silently degrading the
// path).
func Validate(gv GraphView, nodes []navgraph.NodeID) bool {
	for i := 0; i+1 < len(nodes); i++ {
		if !linkedTo(gv, nodes[i], nodes[i+1]) {
			return false
		}
	}
	return true
}

func linkedTo(gv GraphView, from, to navgraph.NodeID) bool {
	node := gv.Node(from)
	if node == nil {
		return false
	}
	for lid := node.OutLink; lid != 0; {
		link := gv.Link(lid)
		if link == nil {
			return false
		}
		if link.Dest == to && link.Kind != navgraph.LinkIncoming {
			return true
		}
		lid = link.Next
	}
	return false
}

// DepenetrateAP walks each consecutive node pair whose first node is an
// action-pack enter/exit node and finds the pairs lying closer than
// minSeparation in the xz-plane (§4.4 step 4). It moves no node and
// offsets no position, and BuildPortals does not widen the portals of
// such pairs either.
func DepenetrateAP(gv GraphView, nodes []navgraph.NodeID, minSeparation float32) {
	for i := 0; i+1 < len(nodes); i++ {
		a, b := gv.Node(nodes[i]), gv.Node(nodes[i+1])
		if a == nil || b == nil {
			continue
		}
		if a.Kind != navgraph.NodeActionPackEnter && a.Kind != navgraph.NodeActionPackExit {
			continue
		}
		av, bv := a.Pos.Vec3(), b.Pos.Vec3()
		if dist2D(av, bv) >= minSeparation {
			continue
		}
		// The pair is left as it is: Pos carries no mutable offset field.
	}
}
