package navgraph

import "fmt"

// Validate walks the whole graph cross-checking the link and free-list
// invariants of SPEC_FULL.md §3: every link's reverse-link points back to it,
// every bidirectional link has a mirror, and the free-list/allocated-bit
// bookkeeping agrees with each other. It never mutates the graph.
func (g *Graph) Validate() error {
	freeSet := make(map[NodeID]bool, len(g.freeNodes))
	for _, id := range g.freeNodes {
		freeSet[id] = true
	}
	for i := range g.nodes {
		id := NodeID(i + 1)
		n := &g.nodes[i]
		if n.allocated && freeSet[id] {
			return fmt.Errorf("node %d marked allocated but present in free list", id)
		}
		if !n.allocated && !freeSet[id] && i < g.nodeHighWater {
			return fmt.Errorf("node %d unallocated but missing from free list", id)
		}
	}

	freeLinkSet := make(map[LinkID]bool, len(g.freeLinks))
	for _, id := range g.freeLinks {
		freeLinkSet[id] = true
	}

	for i := range g.nodes {
		n := &g.nodes[i]
		if !n.allocated {
			continue
		}
		id := NodeID(i + 1)
		seen := make(map[LinkID]bool)
		for cur := n.OutLink; cur != nullLink; {
			if seen[cur] {
				return fmt.Errorf("node %d outgoing link list has a cycle at link %d", id, cur)
			}
			seen[cur] = true
			l := &g.links[cur]
			if !l.allocated {
				return fmt.Errorf("node %d outgoing link %d not allocated", id, cur)
			}
			rl := &g.revLinks[l.Reverse]
			if !rl.allocated || rl.Src != id || rl.Forward != cur {
				return fmt.Errorf("link %d reverse-link %d does not point back to its source", cur, l.Reverse)
			}
			cur = l.Next
		}
	}

	for id := 1; id < len(g.links); id++ {
		l := &g.links[id]
		if l.allocated == freeLinkSet[LinkID(id)] {
			// Allocated links must not be in the free list and vice versa.
			if l.allocated {
				return fmt.Errorf("link %d marked allocated but present in free list", id)
			}
		}
	}

	// Every link type must pair correctly with its opposite-direction
	// link, where one exists: bidirectional with bidirectional, outgoing
	// with incoming (§3 Validation). A bidirectional link must have its
	// opposite-direction mirror; for outgoing/incoming links a missing
	// counterpart (a one-way action-pack hop, say) is not an error, only
	// a present-but-mismatched pairing is.
	for i := range g.nodes {
		n := &g.nodes[i]
		if !n.allocated {
			continue
		}
		src := NodeID(i + 1)
		for cur := n.OutLink; cur != nullLink; {
			l := &g.links[cur]
			dest := g.Node(l.Dest)
			if dest != nil {
				mirrored := false
				for back := dest.OutLink; back != nullLink; {
					bl := &g.links[back]
					if bl.Dest == src {
						if !pairsCorrectly(l.Kind, bl.Kind) {
							return fmt.Errorf("link %d (%v) from node %d to %d does not pair correctly with opposite-direction link %d (%v)",
								cur, l.Kind, src, l.Dest, back, bl.Kind)
						}
						mirrored = true
					}
					back = bl.Next
				}
				if l.Kind == LinkBidirectional && !mirrored {
					return fmt.Errorf("bidirectional link %d from node %d to %d has no opposite-direction mirror", cur, src, l.Dest)
				}
			}
			cur = l.Next
		}
	}

	return nil
}

// pairsCorrectly reports whether a and b are a valid opposite-direction
// link-kind pairing (§3 Validation: "bidirectional ↔ bidirectional,
// outgoing ↔ incoming").
func pairsCorrectly(a, b LinkKind) bool {
	switch a {
	case LinkBidirectional:
		return b == LinkBidirectional
	case LinkOutgoing:
		return b == LinkIncoming
	case LinkIncoming:
		return b == LinkOutgoing
	default:
		return false
	}
}
