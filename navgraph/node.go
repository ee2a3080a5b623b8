package navgraph

// NodeKind distinguishes the four path-node variants described in
// SPEC_FULL.md §3.
type NodeKind uint8

const (
	// NodePoly is a base navigation polygon.
	NodePoly NodeKind = iota
	// NodePolyEx is a dynamically patched sub-polygon introduced by a
	// blocker.
	NodePolyEx
	// NodeActionPackEnter is the entry endpoint of a traversal action
	// pack.
	NodeActionPackEnter
	// NodeActionPackExit is the exit endpoint of a traversal action pack.
	NodeActionPackExit
)

// NodeID is a 1-based slab index into a Graph's node slab; zero is the
// invalid id, mirroring the teacher's pidx==0-means-none convention
// (detour/node.go) rather than a pointer.
type NodeID uint32

// LinkID is a 1-based slab index into a Graph's link slab. Index 0 is
// reserved as the free-list head, per SPEC_FULL.md §3.
type LinkID uint32

// LinkKind says how a Link may be traversed.
type LinkKind uint8

const (
	// LinkBidirectional links appear as a matched pair, one in each
	// direction.
	LinkBidirectional LinkKind = iota
	// LinkOutgoing is a singular link usable only when leaving its source.
	LinkOutgoing
	// LinkIncoming is a singular link usable only when arriving at its
	// destination; A* must never expand out of a node along an incoming
	// link (§4.3).
	LinkIncoming
)

// ActionPackRef is an opaque handle into whatever action-pack registry
// owns this node, stored without an import dependency on the actionpack
// package (navgraph must not import actionpack — actionpack imports
// navgraph to mint nodes).
type ActionPackRef uint32

// Node is a vertex in the uniform path-node graph (C1).
type Node struct {
	Kind NodeKind
	Pos  Pos
	Loc  NavManagerId // owning polygon/sub-polygon; zero for AP nodes.

	OutLink LinkID // head of the outgoing-link list.
	RevLink LinkID // head of the reverse-link list.

	StaticBlock uint32 // static-blockage bitmask.
	ExtraCost   int8   // signed extra traversal cost.

	Pack ActionPackRef // set for NodeActionPackEnter/Exit.

	allocated bool
}

// Link is a directed edge of the path-node graph (C1).
type Link struct {
	Dest    NodeID
	Next    LinkID // next link in the source node's outgoing list.
	Reverse LinkID // the matching ReverseLink slot.

	EdgeA, EdgeZ Pos // the two portal-edge vertices, in parent space.

	Kind LinkKind

	// StaticShadow is set on the dynamic links AddExNodesFromPoly adds
	// between a sub-polygon and a base polygon: the node id of the static
	// base polygon it shadows, so a dynamic route can be told apart from
	// the static one it patches over (§4.1). The search does not read it.
	StaticShadow NodeID

	allocated bool
}

// ReverseLink is the lightweight back-pointer companion to a Link: it
// only needs to answer "who points at me", not carry portal geometry.
type ReverseLink struct {
	Src     NodeID
	Forward LinkID // the Link this reverse-link corresponds to.
	Next    LinkID // next reverse-link in Dest's reverse-link list.

	allocated bool
}
