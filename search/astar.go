package search

import "github.com/ironspire/navcore/navgraph"

// MaxStarts and MaxGoals are the spec's hard caps on the A* start/goal
// sets (§4.3 Inputs: "up to 4 start locations ... 0..64 goal locations").
const (
	MaxStarts = 4
	MaxGoals  = 64
)

// Start is one of up to MaxStarts start locations, with its initial
// accumulated cost (§4.3 Inputs).
type Start struct {
	Key         NodeKey
	InitialCost float32
}

// HeuristicFunc estimates straight-line distance from a node to the
// nearest unreached goal; A* multiplies it by a weighting (§4.3 Node
// cost model: "to-cost is the straight-line distance to the nearest
// unreached goal, times a weighting").
type HeuristicFunc func(g GraphView, from navgraph.NodeID, goals []navgraph.NodeID) float32

// Config bundles the A* engine's tunables (§4.8 search.heuristicScale,
// search.maxVisitedFull, open-list strategy selection).
type Config struct {
	HeuristicScale float32
	MaxVisited     int                     // VisitedFull capacity (search.maxVisitedFull).
	Strategy       func() OpenListStrategy // factory, so each search gets a fresh open list.
	Partition      Partitioner             // nil means unpartitioned (noPartition).
}

// PlayerBlockCheck reports whether an action-pack node is impassable due
// to player-blockage (§4.3 Expansion rules: "for player-blockage-
// impassable, the node is recorded in the closed set with sentinel cost
// so parents do not re-enqueue it"). Nil means no player-blockage checks
// apply.
type PlayerBlockCheck func(g GraphView, id navgraph.NodeID) bool

// sentinelCost is the cost recorded for a player-blockage-impassable
// node so that it sorts last and is never preferred, while still being
// present in the closed set to short-circuit re-expansion attempts.
const sentinelCost = float32(1e30)

// Result is what an A* (or undirected) search produces: the visited
// table, which of the goal set was reached, and whether the closed list
// saturated before the search completed naturally.
type Result struct {
	Visited     *VisitedFull
	ReachedAny  bool
	ReachedMask []bool  // parallel to the caller's goals slice.
	Best        NodeKey // closest node to a goal found so far (§4.3 Termination / partial result).
	Overflowed  bool
	Status      navgraph.Status
}

// AStar runs the best-first search described in §4.3: expand bestNode's
// outgoing links (skipping Incoming-kind links, which exist only to be
// arrived at), score each candidate by fromCost+heuristic, and terminate
// when every goal is reached, the open list drains, or the visited
// table saturates.
//
// Grounded on detour.NavMeshQuery.FindPath's expansion loop
// (detour/query.go), generalized from a single PolyRef-keyed NodePool to
// the partitioned NodeKey/VisitedFull table this package uses, and from
// a fixed binary heap to a pluggable OpenListStrategy (§4.3 Open list
// strategies).
func AStar(
	g GraphView,
	starts []Start,
	goals []navgraph.NodeID,
	shouldExpand ShouldExpand,
	playerBlocked PlayerBlockCheck,
	cost CostFunc,
	heuristic HeuristicFunc,
	cfg Config,
) *Result {
	if cfg.Partition == nil {
		cfg.Partition = noPartition
	}
	open := cfg.Strategy()
	visited := NewVisitedFull(cfg.MaxVisited)

	goalKeys := make([]NodeKey, len(goals))
	for i, gid := range goals {
		goalKeys[i] = NodeKey{Node: gid}
	}

	res := &Result{Visited: visited, Status: navgraph.Success}

	var best *NodeData
	for _, s := range starts {
		rec, ok := visited.GetOrCreate(s.Key)
		if !ok {
			res.Overflowed = true
			res.Status = navgraph.Success | navgraph.OutOfNodes
			continue
		}
		rec.FromCost = s.InitialCost
		rec.ToCost = heuristic(g, s.Key.Node, goals) * cfg.HeuristicScale
		rec.Total = rec.FromCost + rec.ToCost
		rec.flags |= flagOpen
		open.Push(rec)
		if best == nil || rec.ToCost < best.ToCost {
			best = rec
		}
	}
	if best != nil {
		res.Best = best.Key
	}

	isGoal := func(k NodeKey) (int, bool) {
		for i, gk := range goalKeys {
			if gk.Node == k.Node {
				return i, true
			}
		}
		return 0, false
	}

	reachedMask := make([]bool, len(goals))
	remaining := len(goals)

	for !open.Empty() {
		cur := open.Pop()
		cur.flags &^= flagOpen
		cur.flags |= flagClosed

		if idx, ok := isGoal(cur.Key); ok && !reachedMask[idx] {
			reachedMask[idx] = true
			remaining--
			res.ReachedAny = true
		}
		if len(goals) > 0 && remaining == 0 {
			break
		}

		node := g.Node(cur.Key.Node)
		if node == nil {
			continue
		}
		if shouldExpand != nil && !shouldExpand(g, cur.Key, node) {
			continue
		}

		hadCandidate := false
		acceptedAny := false

		for lid := node.OutLink; lid != 0; {
			link := g.Link(lid)
			if link == nil {
				break
			}
			lid = link.Next
			if link.Kind == navgraph.LinkIncoming {
				continue
			}

			toNode := g.Node(link.Dest)
			if toNode == nil {
				continue
			}
			if shouldExpand != nil && !shouldExpand(g, NodeKey{Node: link.Dest}, toNode) {
				continue
			}

			part := cfg.Partition(g, link, link.Dest)
			toKey := NodeKey{Node: link.Dest, Partition: part}

			if playerBlocked != nil && toNode.Kind == navgraph.NodeActionPackEnter && playerBlocked(g, link.Dest) {
				rec, ok := visited.GetOrCreate(toKey)
				if ok && !rec.isClosed() {
					rec.FromCost = sentinelCost
					rec.Total = sentinelCost
					rec.flags = flagClosed
				}
				continue
			}

			hadCandidate = true
			c, reject := cost(g, cur.Key, toKey, link, cur.FromCost)
			if reject {
				continue
			}
			fromCost := cur.FromCost + c

			var toCost float32
			if _, ok := isGoal(toKey); ok {
				toCost = 0
			} else {
				toCost = heuristic(g, link.Dest, goals) * cfg.HeuristicScale
			}
			total := fromCost + toCost

			rec, ok := visited.GetOrCreate(toKey)
			if !ok {
				res.Overflowed = true
				res.Status = navgraph.Success | navgraph.OutOfNodes
				continue
			}
			if rec.isOpen() && total >= rec.Total {
				continue
			}
			if rec.isClosed() && total >= rec.Total {
				continue
			}

			wasOpen := rec.isOpen()
			rec.Parent = cur.Key
			rec.HasParent = true
			rec.FromCost = fromCost
			rec.FromDist = cur.FromDist + c
			rec.ToCost = toCost
			rec.Total = total
			rec.flags &^= flagClosed

			if wasOpen {
				rec.flags |= flagOpen
				open.Update(rec)
			} else {
				rec.flags |= flagOpen
				open.Push(rec)
			}
			acceptedAny = true

			if best == nil || rec.ToCost < best.ToCost {
				best = rec
				res.Best = rec.Key
			}
		}

		if hadCandidate && !acceptedAny {
			cur.flags |= flagFringe
		} else {
			cur.flags &^= flagFringe
		}
	}

	res.ReachedMask = reachedMask
	if len(goals) > 0 && !res.ReachedAny {
		res.Status |= navgraph.PartialResult
	}
	if res.Overflowed {
		res.Status |= navgraph.OutOfNodes
	}
	return res
}
