// Package navgraph implements C1, the uniform path-node graph: a
// slot-allocated graph over base navigation polygons, dynamically patched
// sub-polygons, and action-pack enter/exit nodes, with stable ids and a
// free list. See SPEC_FULL.md §3-4.1.
//
// Grounded on the teacher's detour.NodePool (detour/node.go) for the
// slab/free-list allocation idiom, generalized from "one node per polygon
// ref" to the four-variant PathNode model this spec calls for.
package navgraph

import (
	assert "github.com/arl/assertgo"

	"github.com/ironspire/navcore/navlog"
)

// nullLink is link index 0, reserved as the free-list head (SPEC_FULL.md
// §3: "Link index 0 is reserved as the free-list head").
const nullLink LinkID = 0

// Stats reports allocation-failure counters. The graph never fail-stops
// on slot exhaustion (§4.1 Fail policy); callers read these to decide
// whether connectivity has degraded.
type Stats struct {
	NodeFailures int
	LinkFailures int
	NodeCount    int
	LinkCount    int
}

// Graph is the slot-allocated path-node graph (C1).
type Graph struct {
	nodes         []Node
	freeNodes     []NodeID // LIFO stack of free node slots.
	nodeCount     int
	nodeHighWater int // highest node slot ever handed out.

	links         []Link
	revLinks      []ReverseLink
	freeLinks     []LinkID // LIFO stack of free link slots (both Link and ReverseLink share an index space).
	linkCount     int
	linkHighWater int // highest link slot ever handed out.

	// locIndex maps a registered mesh's polygon (by NavManagerId) to
	// its node, so RemoveMesh/AddExNodesFromPoly can find existing nodes
	// without a linear scan.
	locIndex map[NavManagerId]NodeID

	validateOnUpdate bool
	stats            Stats
	onValidationFail func(*Graph, error)
}

// SetValidationHook registers fn to run when Update's validation check
// fails, after the failure has already been logged and counted. Used to
// wire a richer diagnostic dump (internal/dbg) in without navgraph
// importing it back (internal/dbg imports navgraph, not the reverse).
func (g *Graph) SetValidationHook(fn func(*Graph, error)) { g.onValidationFail = fn }

// NewGraph allocates a graph with the given node/link slab capacities.
func NewGraph(maxNodes, maxLinks int) *Graph {
	g := &Graph{
		nodes:    make([]Node, maxNodes),
		links:    make([]Link, maxLinks+1), // +1: index 0 is the reserved sentinel.
		revLinks: make([]ReverseLink, maxLinks+1),
		locIndex: make(map[NavManagerId]NodeID, maxNodes),
	}
	return g
}

// SetValidateOnUpdate enables the development-build full invariant check
// inside Update (§4.1 Validation).
func (g *Graph) SetValidateOnUpdate(v bool) { g.validateOnUpdate = v }

// Stats returns a snapshot of the graph's allocation counters.
func (g *Graph) Stats() Stats {
	s := g.stats
	s.NodeCount = g.nodeCount
	s.LinkCount = g.linkCount
	return s
}

// EachNode calls fn once per currently allocated node, in ascending id
// order. Used by the development-build validation dump (internal/dbg)
// to walk the whole slab without exposing the slab's internal bookkeeping.
func (g *Graph) EachNode(fn func(id NodeID, n *Node)) {
	for i := range g.nodes {
		if !g.nodes[i].allocated {
			continue
		}
		fn(NodeID(i+1), &g.nodes[i])
	}
}

// Node returns the node at id, or nil if id is invalid or unallocated.
func (g *Graph) Node(id NodeID) *Node {
	if id == 0 || int(id) > len(g.nodes) {
		return nil
	}
	n := &g.nodes[id-1]
	if !n.allocated {
		return nil
	}
	return n
}

// Link returns the link at id, or nil if id is invalid or unallocated.
func (g *Graph) Link(id LinkID) *Link {
	if id == 0 || int(id) >= len(g.links) {
		return nil
	}
	l := &g.links[id]
	if !l.allocated {
		return nil
	}
	return l
}

// allocNode finds the first free node slot in O(1) amortized (a stack of
// freed indices stands in for the bitset find-first-zero scan described
// in SPEC_FULL.md §4.1; Validate() cross-checks that the stack and the
// per-node `allocated` bits always agree).
func (g *Graph) allocNode() (NodeID, bool) {
	if n := len(g.freeNodes); n > 0 {
		id := g.freeNodes[n-1]
		g.freeNodes = g.freeNodes[:n-1]
		g.nodes[id-1] = Node{allocated: true}
		g.nodeCount++
		return id, true
	}
	if g.nodeCount >= len(g.nodes) {
		g.stats.NodeFailures++
		navlog.Warnf("navgraph: node slab exhausted (capacity=%d)", len(g.nodes))
		return 0, false
	}
	id := NodeID(g.nodeHighWater + 1)
	g.nodes[id-1] = Node{allocated: true}
	g.nodeCount++
	g.nodeHighWater++
	return id, true
}

func (g *Graph) freeNode(id NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	*n = Node{}
	g.freeNodes = append(g.freeNodes, id)
	g.nodeCount--
}

func (g *Graph) allocLink() (LinkID, bool) {
	if n := len(g.freeLinks); n > 0 {
		id := g.freeLinks[n-1]
		g.freeLinks = g.freeLinks[:n-1]
		g.links[id] = Link{allocated: true}
		g.revLinks[id] = ReverseLink{allocated: true}
		g.linkCount++
		return id, true
	}
	// links[0]/revLinks[0] is the reserved sentinel; real slots start at 1.
	if g.linkCount >= len(g.links)-1 {
		g.stats.LinkFailures++
		navlog.Warnf("navgraph: link slab exhausted (capacity=%d)", len(g.links)-1)
		return 0, false
	}
	id := LinkID(g.linkHighWater + 1)
	g.links[id] = Link{allocated: true}
	g.revLinks[id] = ReverseLink{allocated: true}
	g.linkCount++
	g.linkHighWater++
	return id, true
}

func (g *Graph) freeLink(id LinkID) {
	if id == nullLink {
		return
	}
	g.links[id] = Link{}
	g.revLinks[id] = ReverseLink{}
	g.freeLinks = append(g.freeLinks, id)
	g.linkCount--
}

// AddLink adds a directed link from→to, allocating the matching
// reverse-link atomically. kind LinkBidirectional requires the caller to
// add the mirror link separately (§3 invariant 2); AddLink itself only
// ever creates one direction.
func (g *Graph) AddLink(from, to NodeID, edgeA, edgeZ Pos, kind LinkKind, staticShadow NodeID) (LinkID, Status) {
	fn, tn := g.Node(from), g.Node(to)
	if fn == nil || tn == nil {
		return 0, Failure | InvalidParam
	}

	id, ok := g.allocLink()
	if !ok {
		return 0, Failure | OutOfMemory
	}

	l := &g.links[id]
	l.Dest = to
	l.EdgeA, l.EdgeZ = edgeA, edgeZ
	l.Kind = kind
	l.StaticShadow = staticShadow
	l.Next = fn.OutLink
	fn.OutLink = id

	rl := &g.revLinks[id]
	rl.Src = from
	rl.Forward = id
	rl.Next = tn.RevLink
	tn.RevLink = id
	l.Reverse = id

	return id, Success
}

// AddBidirectionalLink adds the matched pair of links SPEC_FULL.md §3
// invariant 2 requires for a bidirectional portal.
func (g *Graph) AddBidirectionalLink(a, b NodeID, edgeA, edgeZ Pos) (LinkID, LinkID, Status) {
	id1, st := g.AddLink(a, b, edgeA, edgeZ, LinkBidirectional, 0)
	if Failed(st) {
		return 0, 0, st
	}
	id2, st := g.AddLink(b, a, edgeA, edgeZ, LinkBidirectional, 0)
	if Failed(st) {
		g.removeLinkByID(id1)
		return 0, 0, st
	}
	return id1, id2, Success
}

// RemoveLink removes the (single) link from→to, if present, along with
// its reverse-link.
func (g *Graph) RemoveLink(from, to NodeID) Status {
	fn := g.Node(from)
	if fn == nil {
		return Failure | InvalidParam
	}

	var prev LinkID
	cur := fn.OutLink
	for cur != nullLink {
		l := &g.links[cur]
		if l.Dest == to {
			if prev == nullLink {
				fn.OutLink = l.Next
			} else {
				g.links[prev].Next = l.Next
			}
			g.removeReverseLink(l.Reverse)
			g.freeLink(cur)
			return Success
		}
		prev = cur
		cur = l.Next
	}
	return Failure | InvalidParam
}

func (g *Graph) removeLinkByID(id LinkID) {
	l := g.Link(id)
	if l == nil {
		return
	}
	g.RemoveLink(g.revLinks[id].Src, l.Dest)
}

// removeReverseLink unlinks a reverse-link from its destination node's
// reverse-link list. The Link itself is freed by the caller.
func (g *Graph) removeReverseLink(id LinkID) {
	rl := &g.revLinks[id]
	destNode := g.links[id].Dest
	tn := g.Node(destNode)
	if tn == nil {
		return
	}
	var prev LinkID
	cur := tn.RevLink
	for cur != nullLink {
		if cur == id {
			if prev == nullLink {
				tn.RevLink = rl.Next
			} else {
				g.revLinks[prev].Next = rl.Next
			}
			return
		}
		prev = cur
		cur = g.revLinks[cur].Next
	}
}

// removeAllLinksOf walks both of a node's link lists and frees every
// link/reverse-link touching it, in either direction.
func (g *Graph) removeAllLinksOf(id NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	for cur := n.OutLink; cur != nullLink; {
		next := g.links[cur].Next
		g.removeReverseLink(g.links[cur].Reverse)
		g.freeLink(cur)
		cur = next
	}
	n.OutLink = nullLink

	for cur := n.RevLink; cur != nullLink; {
		rl := g.revLinks[cur]
		next := rl.Next
		// Unlink from the source's outgoing list.
		src := g.Node(rl.Src)
		if src != nil {
			var prev LinkID
			oc := src.OutLink
			for oc != nullLink {
				if oc == rl.Forward {
					if prev == nullLink {
						src.OutLink = g.links[oc].Next
					} else {
						g.links[prev].Next = g.links[oc].Next
					}
					break
				}
				prev = oc
				oc = g.links[oc].Next
			}
		}
		g.freeLink(rl.Forward)
		cur = next
	}
	n.RevLink = nullLink
}

// AddMesh allocates a node for every polygon of m and links adjacent
// polygons bidirectionally through their shared edge. On any allocation
// failure partway through, every node/link this call added is rolled
// back, leaving the graph exactly as it was (§4.1).
func (g *Graph) AddMesh(m MeshSource) (added int, st Status) {
	n := m.PolyCount()
	ids := make([]NodeID, n)

	rollback := func() {
		for _, id := range ids {
			if id == 0 {
				continue
			}
			g.removeAllLinksOf(id)
			delete(g.locIndex, g.nodes[id-1].Loc)
			g.freeNode(id)
		}
	}

	for i := 0; i < n; i++ {
		id, ok := g.allocNode()
		if !ok {
			rollback()
			return 0, Failure | OutOfMemory
		}
		nd := g.Node(id)
		nd.Kind = NodePoly
		nd.Loc = m.PolyLoc(i)
		nd.Pos = NewPos(m.PolyPos(i))
		ids[i] = id
		g.locIndex[nd.Loc] = id
	}

	for i := 0; i < n; i++ {
		for _, adj := range m.Adjacency(i) {
			if adj.Neighbor <= i {
				// Adjacency is reported from both sides; only add the
				// bidirectional pair once, from the lower-indexed side.
				continue
			}
			_, _, st := g.AddBidirectionalLink(ids[i], ids[adj.Neighbor], NewPos(adj.EdgeA), NewPos(adj.EdgeZ))
			if Failed(st) {
				rollback()
				return 0, st
			}
		}
	}

	return n, Success
}

// RemoveMesh drops every node m contributed (and their links), freeing
// the slab slots for reuse.
func (g *Graph) RemoveMesh(m MeshSource) {
	n := m.PolyCount()
	for i := 0; i < n; i++ {
		loc := m.PolyLoc(i)
		id, ok := g.locIndex[loc]
		if !ok {
			continue
		}
		g.removeAllLinksOf(id)
		delete(g.locIndex, loc)
		g.freeNode(id)
	}
}

// AddExNodesFromPoly allocates dynamic sub-polygon nodes for s, linking
// them to each other and, via a StaticShadow-tagged link, to the base
// mesh polygons they patch over (§4.1).
func (g *Graph) AddExNodesFromPoly(s SubPolySource) (ids []NodeID, st Status) {
	n := s.SubPolyCount()
	ids = make([]NodeID, n)

	rollback := func() {
		for _, id := range ids {
			if id == 0 {
				continue
			}
			g.removeAllLinksOf(id)
			delete(g.locIndex, g.nodes[id-1].Loc)
			g.freeNode(id)
		}
	}

	for i := 0; i < n; i++ {
		id, ok := g.allocNode()
		if !ok {
			rollback()
			return nil, Failure | OutOfMemory
		}
		nd := g.Node(id)
		nd.Kind = NodePolyEx
		nd.Loc = s.SubPolyLoc(i)
		nd.Pos = NewPos(s.SubPolyPos(i))
		ids[i] = id
		g.locIndex[nd.Loc] = id
	}

	for i := 0; i < n; i++ {
		for _, adj := range s.SubPolyAdjacency(i) {
			if adj.Neighbor <= i {
				continue
			}
			if _, _, st := g.AddBidirectionalLink(ids[i], ids[adj.Neighbor], NewPos(adj.EdgeA), NewPos(adj.EdgeZ)); Failed(st) {
				rollback()
				return nil, st
			}
		}
		for _, base := range s.BaseNeighbors(i) {
			baseNode, ok := g.locIndex[base.BaseLoc]
			if !ok {
				// The base polygon this sub-polygon shadows isn't
				// registered (mesh not yet added, or already removed);
				// nothing to dynamically override.
				continue
			}
			if _, st := g.AddLink(ids[i], baseNode, NewPos(base.EdgeA), NewPos(base.EdgeZ), LinkOutgoing, baseNode); Failed(st) {
				rollback()
				return nil, st
			}
			if _, st := g.AddLink(baseNode, ids[i], NewPos(base.EdgeA), NewPos(base.EdgeZ), LinkIncoming, baseNode); Failed(st) {
				rollback()
				return nil, st
			}
		}
	}

	return ids, Success
}

// RemovePolyEx frees the given dynamic sub-polygon nodes and their links.
func (g *Graph) RemovePolyEx(ids []NodeID) {
	for _, id := range ids {
		n := g.Node(id)
		if n == nil {
			continue
		}
		g.removeAllLinksOf(id)
		delete(g.locIndex, n.Loc)
		g.freeNode(id)
	}
}

// LookupByLoc finds the node registered for a given NavManagerId, if any.
func (g *Graph) LookupByLoc(loc NavManagerId) (NodeID, bool) {
	id, ok := g.locIndex[loc]
	return id, ok
}

// AllocActionPackNode allocates a bare ActionPackEnter/Exit node (C2 calls
// this during pack registration; it does not belong to any mesh
// polygon, so it is never placed in locIndex).
func (g *Graph) AllocActionPackNode(kind NodeKind, pos Pos, pack ActionPackRef) (NodeID, Status) {
	if kind != NodeActionPackEnter && kind != NodeActionPackExit {
		return 0, Failure | InvalidParam
	}
	id, ok := g.allocNode()
	if !ok {
		return 0, Failure | OutOfMemory
	}
	nd := g.Node(id)
	nd.Kind = kind
	nd.Pos = pos
	nd.Pack = pack
	return id, Success
}

// FreeActionPackNode releases an action-pack node and its links.
func (g *Graph) FreeActionPackNode(id NodeID) {
	g.removeAllLinksOf(id)
	g.freeNode(id)
}

// SetExtraCost republishes a node's signed extra cost — used by the
// action-pack registry when a pack's cost becomes dirty (§4.2 Cost
// contract) so the next search sees the new value.
func (g *Graph) SetExtraCost(id NodeID, cost int8) {
	if n := g.Node(id); n != nil {
		n.ExtraCost = cost
	}
}

// SetStaticBlock sets a node's static-blockage bitmask.
func (g *Graph) SetStaticBlock(id NodeID, mask uint32) {
	if n := g.Node(id); n != nil {
		n.StaticBlock = mask
	}
}

// Update resets per-tick statistics and, if validation is enabled, runs
// the full invariant check (§4.1 Validation). Validation failures are
// logged and counted, never panicked — except through assert.True, which
// is itself a no-op unless compiled with the debug build tag, matching
// the teacher's assertgo idiom.
func (g *Graph) Update() {
	if g.validateOnUpdate {
		if err := g.Validate(); err != nil {
			g.stats.NodeFailures++ // surfaced via the same "didn't fail-stop" counters
			navlog.Errorf("navgraph: validation failed: %v", err)
			if g.onValidationFail != nil {
				g.onValidationFail(g, err)
			}
			assert.True(false, "navgraph validation failed: %v", err)
		}
	}
}
