package pathrequest

import (
	"time"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/search"
)

// shouldExpandFor builds a ShouldExpand gate from a request's obeyed
// static-blocker mask (§4.3 Expansion rules); ObeyedDynamicBlockers is
// not consulted.
func shouldExpandFor(common CommonParams) search.ShouldExpand {
	return func(g search.GraphView, key search.NodeKey, n *navgraph.Node) bool {
		return n.StaticBlock&common.ObeyedStaticBlockers == 0
	}
}

// runDirected executes a static or distance request's search. Distance
// requests carry no goal set; they run until the open list drains or the
// visited table (maxVisitedFull records) fills, and their outcome's Goal
// is res.Best, which with no goals (zero heuristic) stays the first start
// (§4.6 add_distance_request).
func (m *Manager) runDirected(r *request) *DirectedOutcome {
	r.lock.RLock()
	p := r.single
	kind := r.kind
	r.lock.RUnlock()

	var goals []navgraph.NodeID
	if kind == KindStatic {
		goals = []navgraph.NodeID{p.Goal}
	}

	cfg := search.Config{
		HeuristicScale: m.heuristicScale,
		MaxVisited:     m.maxVisitedFull,
		Strategy:       m.strategy,
	}
	res := search.AStar(
		m.graph,
		p.Starts,
		goals,
		shouldExpandFor(p.Common),
		nil,
		m.costFor(p.Common.CostFuncName),
		straightLineHeuristic,
		cfg,
	)

	goalKey := search.NodeKey{Node: p.Goal}
	if kind == KindDistance {
		goalKey = res.Best
	}
	status := res.Status
	if kind == KindStatic && !res.ReachedAny {
		status |= navgraph.PartialResult
	}
	return &DirectedOutcome{Status: status, Result: res, Goal: goalKey}
}

// runUndirected executes an undirected (Dijkstra) request (§4.7).
func (m *Manager) runUndirected(r *request) *UndirectedOutcome {
	r.lock.RLock()
	p := r.undirected
	r.lock.RUnlock()

	res := search.Undirected(
		m.graph,
		p.Starts,
		shouldExpandFor(p.Common),
		m.costFor(p.Common.CostFuncName),
		m.maxVisitedTriv,
		m.strategy,
	)
	return &UndirectedOutcome{Status: res.Status, Result: res}
}

// score ranks a request for scheduling: higher is more due (§4.6
// Scheduling: "score = frequencyBoost(priority) * time since last
// service"; requests below their priority's minimum interval don't
// compete at all).
func (r *request) score(now time.Time) (float64, bool) {
	if !r.ongoing && r.slotReady[r.currentSlot] {
		// One-shot requests already served once need no further service
		// until explicitly updated.
		return 0, false
	}
	elapsed := now.Sub(r.lastServiced)
	if r.lastServiced.IsZero() {
		elapsed = time.Hour
	}
	if elapsed < minInterval(r.priority) {
		return 0, false
	}
	return frequencyBoost(r.priority) * elapsed.Seconds(), true
}

// Update services up to maxService due requests by descending score,
// then snapshots every cache request from its source, then reclaims any
// slots marked pending-free (§4.6 Update / Scheduling).
func (m *Manager) Update(now time.Time, maxService int) {
	m.mu.RLock()
	candidates := make([]*request, 0, len(m.requests))
	for _, r := range m.requests {
		if r == nil || r.pendingFree || r.kind == KindCache {
			continue
		}
		candidates = append(candidates, r)
	}
	m.mu.RUnlock()

	type scored struct {
		r *request
		s float64
	}
	due := make([]scored, 0, len(candidates))
	for _, r := range candidates {
		r.lock.RLock()
		s, ok := r.score(now)
		r.lock.RUnlock()
		if ok {
			due = append(due, scored{r, s})
		}
	}
	for i := 1; i < len(due); i++ {
		j := i
		for j > 0 && due[j].s > due[j-1].s {
			due[j], due[j-1] = due[j-1], due[j]
			j--
		}
	}
	if maxService > 0 && len(due) > maxService {
		due = due[:maxService]
	}

	for _, d := range due {
		r := d.r
		r.lock.RLock()
		kind := r.kind
		cur := r.currentSlot
		r.lock.RUnlock()
		target := (cur + 1) % 2

		switch kind {
		case KindStatic, KindDistance:
			out := m.runDirected(r)
			r.lock.Lock()
			r.directed[target] = out
			r.slotReady[target] = true
			r.lastServiced = now
			r.lock.Unlock()
		case KindUndirected:
			out := m.runUndirected(r)
			r.lock.Lock()
			r.undirectedR[target] = out
			r.slotReady[target] = true
			r.lastServiced = now
			r.lock.Unlock()
		}
	}

	m.serviceCacheRequests(now)
	m.reclaimPendingFree()
}

// serviceCacheRequests snapshots every cache request's source active
// slot into its own result (§4.6 cache_request: "tracks another
// request's results without re-running the search").
func (m *Manager) serviceCacheRequests(now time.Time) {
	m.mu.RLock()
	caches := make([]*request, 0)
	for _, r := range m.requests {
		if r != nil && !r.pendingFree && r.kind == KindCache {
			caches = append(caches, r)
		}
	}
	m.mu.RUnlock()

	for _, c := range caches {
		m.mu.RLock()
		src := m.lookup(c.cacheSource)
		m.mu.RUnlock()
		if src == nil {
			continue
		}
		src.lock.RLock()
		srcOut := src.undirectedR[src.currentSlot]
		srcReady := src.slotReady[src.currentSlot]
		src.lock.RUnlock()
		if !srcReady {
			continue
		}

		c.lock.Lock()
		target := (c.currentSlot + 1) % 2
		c.undirectedR[target] = srcOut
		c.slotReady[target] = true
		c.lastServiced = now
		c.lock.Unlock()
	}
}

// reclaimPendingFree frees any slot marked for deletion whose slots are
// not mid-read (the per-request lock protects against a torn free: we
// take the write lock briefly only to clear the slot to nil).
func (m *Manager) reclaimPendingFree() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.requests {
		if r == nil || !r.pendingFree {
			continue
		}
		r.lock.Lock()
		m.requests[i] = nil
		r.lock.Unlock()
		m.generation[i]++
		m.free = append(m.free, uint32(i))
	}
}

// FlipBuffers swaps every request's active result slot to the most
// recently written one (§4.6 "double-buffered results so readers never
// observe a torn write").
func (m *Manager) FlipBuffers() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r == nil {
			continue
		}
		r.lock.Lock()
		next := (r.currentSlot + 1) % 2
		if r.slotReady[next] {
			r.currentSlot = next
		}
		r.lock.Unlock()
	}
}
