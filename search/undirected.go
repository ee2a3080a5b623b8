package search

import "github.com/ironspire/navcore/navgraph"

// UndirectedResult mirrors Result, but over a VisitedTrivial table
// (§4.7: "fills a dense VisitedTrivial table (one record per path-node
// id, no partitioning)").
type UndirectedResult struct {
	Visited    *VisitedTrivial
	Overflowed bool
	Status     navgraph.Status
}

// Undirected relaxes every node reachable from starts with no goal and
// no heuristic — pure Dijkstra by accumulated from-cost (§4.7). It backs
// add_undirected_request, cache_request, can_path_to and
// get_approx_path_distance in C6.
//
// Grounded on AStar above (§4.3's same expansion rules apply: skip
// Incoming-kind links, run every candidate through shouldExpand), with
// the heuristic term fixed at zero and no goal-based early termination —
// the katalvlaran-lvlath dijkstra package was consulted for the generic
// "relax until the open list drains" shape but contributes no code here,
// since its vertex/edge model doesn't carry this package's NodeKey
// partitioning or OutLink/Link representation.
func Undirected(
	g GraphView,
	starts []Start,
	shouldExpand ShouldExpand,
	cost CostFunc,
	maxVisited int,
	strategy func() OpenListStrategy,
) *UndirectedResult {
	open := strategy()
	visited := NewVisitedTrivial(maxVisited)
	res := &UndirectedResult{Visited: visited, Status: navgraph.Success}

	for _, s := range starts {
		rec, ok := visited.GetOrCreate(s.Key.Node)
		if !ok {
			res.Overflowed = true
			continue
		}
		rec.FromCost = s.InitialCost
		rec.Total = s.InitialCost
		rec.flags |= flagOpen
		open.Push(rec)
	}

	for !open.Empty() {
		cur := open.Pop()
		cur.flags &^= flagOpen
		cur.flags |= flagClosed

		node := g.Node(cur.Key.Node)
		if node == nil {
			continue
		}
		if shouldExpand != nil && !shouldExpand(g, cur.Key, node) {
			continue
		}

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
			toKey := NodeKey{Node: link.Dest}
			if shouldExpand != nil && !shouldExpand(g, toKey, toNode) {
				continue
			}

			c, reject := cost(g, cur.Key, toKey, link, cur.FromCost)
			if reject {
				continue
			}
			fromCost := cur.FromCost + c

			rec, ok := visited.GetOrCreate(link.Dest)
			if !ok {
				res.Overflowed = true
				continue
			}
			if (rec.isOpen() || rec.isClosed()) && fromCost >= rec.Total {
				continue
			}

			wasOpen := rec.isOpen()
			rec.Key = toKey
			rec.Parent = cur.Key
			rec.HasParent = true
			rec.FromCost = fromCost
			rec.FromDist = cur.FromDist + c
			rec.Total = fromCost
			rec.flags &^= flagClosed
			rec.flags |= flagOpen

			if wasOpen {
				open.Update(rec)
			} else {
				open.Push(rec)
			}
		}
	}

	if res.Overflowed {
		res.Status = navgraph.Success | navgraph.OutOfNodes
	}
	return res
}
