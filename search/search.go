// Package search implements C3, the generic best-first search engine
// over the C1 path-node graph: A* with a pluggable open-list strategy,
// and an undirected Dijkstra-style relaxation used by C6's
// add_undirected_request (SPEC_FULL.md §4.7).
//
// Grounded on the teacher's detour.NodePool/nodeQueue (detour/node.go,
// detour/nodequeue.go) for the node-pool and open-list idioms, and
// detour.NavMeshQuery.FindPath (detour/query.go) for the expansion loop
// shape, generalized from a single PolyRef-keyed node per state to the
// spec's partitioned NavNodeKey.
package search

import (
	"github.com/ironspire/navcore/navgraph"
)

// PartitionKey is the 16-bit partition-id component of NavNodeKey,
// derived from a hash of a nearby gap's id so a re-entry through a
// different narrow passage is treated as a distinct search state (§4.3
// Partitioning). Zero is the default/unpartitioned value.
type PartitionKey uint16

// NodeKey is the compound search key (§3 NavNodeKey): a path-node id
// plus a partition id.
type NodeKey struct {
	Node      navgraph.NodeID
	Partition PartitionKey
}

// flags mirrors detour's NodeFlags (open/closed bits), plus a fringe
// bit this package adds for the glossary's "fringe node".
type flags uint8

const (
	flagOpen flags = 1 << iota
	flagClosed
	// flagFringe marks a node that was expanded but every candidate
	// child was cost-rejected (glossary: "a node expanded by A* but
	// whose children were cost-rejected; useful for approximate
	// reachability queries"). Set once expansion of the node
	// completes with no accepted successor.
	flagFringe
)

// NodeData is one record of a visited-node table (§3: "Full — open-
// addressed hash map NavNodeKey -> NavNodeData (parent, from-cost,
// from-dist, to-cost, path-node proxy, fringe flag)").
type NodeData struct {
	Key       NodeKey
	Parent    NodeKey
	HasParent bool

	FromCost float32 // accumulated cost from the start set.
	FromDist float32 // sum of the per-link costs from the start, without the start's InitialCost.
	ToCost   float32 // heuristic estimate to the nearest goal; 0 for undirected search.
	Total    float32 // FromCost + ToCost, the A* priority.

	flags flags
}

func (n *NodeData) isOpen() bool   { return n.flags&flagOpen != 0 }
func (n *NodeData) isClosed() bool { return n.flags&flagClosed != 0 }

// IsFringe reports whether this node was expanded by the search but
// none of its children were accepted, per the glossary's fringe-node
// definition. Only meaningful once the node has been popped and
// expanded (closed).
func (n *NodeData) IsFringe() bool { return n.flags&flagFringe != 0 }

// Link is the minimal view of a navgraph.Link the search needs: enough
// to expand without importing navgraph's internals beyond what's
// exported. It is navgraph.Link itself, aliased for readability at call
// sites in this package.
type Link = navgraph.Link

// GraphView is the read-only subset of navgraph.Graph the search walks.
// A small consumer-defined interface, rather than navgraph.Graph
// directly, keeps this package testable against fakes and avoids
// widening navgraph's public surface just for search's sake.
type GraphView interface {
	Node(id navgraph.NodeID) *navgraph.Node
	Link(id navgraph.LinkID) *navgraph.Link
}

// CostFunc computes the traversal cost of link, from fromKey to toKey,
// given the accumulated from-cost at fromKey. Returning reject=true
// drops the candidate without further expansion (§4.3 Node cost model).
type CostFunc func(g GraphView, from, to NodeKey, link *navgraph.Link, fromCost float32) (cost float32, reject bool)

// ShouldExpand reports whether a node should be expanded from at all
// (player-blockage, faction/skill/tension checks on action-pack nodes,
// dynamic-search/blocker masks on sub-poly nodes — §4.3 Expansion rules).
// AStar and Undirected call it on each popped node before its links are
// walked, and on each candidate destination before it is scored.
type ShouldExpand func(g GraphView, key NodeKey, n *navgraph.Node) bool

// Partitioner derives a partition id for a candidate node, given the
// link being crossed (§4.3 Partitioning). The zero Partitioner always
// returns partition 0 (no partitioning), correct for undirected search
// and for any A* search that doesn't need gap-based state-splitting.
type Partitioner func(g GraphView, via *navgraph.Link, to navgraph.NodeID) PartitionKey

func noPartition(GraphView, *navgraph.Link, navgraph.NodeID) PartitionKey { return 0 }
