package pathrequest

import (
	"sync"
	"time"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/pathbuild"
	"github.com/ironspire/navcore/search"
)

// GraphView is the read-only graph surface the manager's searches and
// builds run against; it is satisfied directly by *navgraph.Graph.
type GraphView interface {
	Node(id navgraph.NodeID) *navgraph.Node
	Link(id navgraph.LinkID) *navgraph.Link
}

// Manager is the slab-allocated, priority-scheduled request table
// described by §4.6. A reader/writer lock guards the slab's shape
// (allocate/free a slot); each request additionally carries its own
// reader/writer lock guarding its params and result-slot indices (§5
// Locks).
type Manager struct {
	mu sync.RWMutex

	graph          GraphView
	requests       []*request
	free           []uint32
	generation     []uint16
	maxVisitedFull int
	maxVisitedTriv int
	heuristicScale float32
	strategy       func() search.OpenListStrategy
	costFuncs      map[string]search.CostFunc
	clock          func() time.Time
}

// NewManager creates an empty manager over g, with room preallocated for
// MaxSlots requests.
func NewManager(g GraphView) *Manager {
	m := &Manager{
		graph:          g,
		requests:       make([]*request, 0, MaxSlots),
		maxVisitedFull: 2048,
		maxVisitedTriv: 4096,
		heuristicScale: 1,
		strategy:       func() search.OpenListStrategy { return search.NewRobinHood() },
		costFuncs:      map[string]search.CostFunc{"distance": straightLineCost},
		clock:          time.Now,
	}
	return m
}

// SetCostFunc registers a named cost function a request can select via
// CommonParams.CostFuncName (§6 "cost-function name").
func (m *Manager) SetCostFunc(name string, fn search.CostFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costFuncs[name] = fn
}

// Configure applies the navworld.Config-derived search tunables this
// manager's searches run with (§4.8 search.*): visited-table capacities,
// heuristic scale and open-list strategy.
func (m *Manager) Configure(maxVisitedFull, maxVisitedTrivial int, heuristicScale float32, strategy func() search.OpenListStrategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxVisitedFull = maxVisitedFull
	m.maxVisitedTriv = maxVisitedTrivial
	m.heuristicScale = heuristicScale
	m.strategy = strategy
}

func straightLineCost(g search.GraphView, from, to search.NodeKey, link *navgraph.Link, fromCost float32) (float32, bool) {
	fn, tn := g.Node(from.Node), g.Node(to.Node)
	if fn == nil || tn == nil {
		return 0, true
	}
	fv, tv := fn.Pos.Vec3(), tn.Pos.Vec3()
	dx, dz := fv[0]-tv[0], fv[2]-tv[2]
	return math32.Sqrt(dx*dx + dz*dz), false
}

func straightLineHeuristic(g search.GraphView, from navgraph.NodeID, goals []navgraph.NodeID) float32 {
	fn := g.Node(from)
	if fn == nil || len(goals) == 0 {
		return 0
	}
	fv := fn.Pos.Vec3()
	best := float32(-1)
	for _, gid := range goals {
		gn := g.Node(gid)
		if gn == nil {
			continue
		}
		gv := gn.Pos.Vec3()
		dx, dz := fv[0]-gv[0], fv[2]-gv[2]
		d := math32.Sqrt(dx*dx + dz*dz)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func (m *Manager) costFor(name string) search.CostFunc {
	if fn, ok := m.costFuncs[name]; ok {
		return fn
	}
	return straightLineCost
}

func (m *Manager) alloc() (uint32, uint16) {
	if len(m.free) > 0 {
		idx := m.free[len(m.free)-1]
		m.free = m.free[:len(m.free)-1]
		return idx, m.generation[idx]
	}
	idx := uint32(len(m.requests))
	m.requests = append(m.requests, nil)
	m.generation = append(m.generation, 1)
	return idx, 1
}

func (m *Manager) lookup(h Handle) *request {
	if h.IsZero() || int(h.Index) >= len(m.requests) {
		return nil
	}
	if m.generation[h.Index] != h.Generation {
		return nil
	}
	r := m.requests[h.Index]
	if r == nil || r.pendingFree {
		return nil
	}
	return r
}

// AddStaticRequest registers a goal-directed A* request (§4.6
// add_static_request).
func (m *Manager) AddStaticRequest(name string, owner uint32, params SingleParams, ongoing, highPriority bool) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, gen := m.alloc()
	prio := PriorityNormal
	if highPriority {
		prio = PriorityHigh
	}
	m.requests[idx] = &request{
		kind: KindStatic, name: name, owner: owner, priority: prio,
		ongoing: ongoing, single: params,
	}
	return Handle{Index: idx, Generation: gen}
}

// AddDistanceRequest registers an A* request with no goal node (§4.6
// add_distance_request). Its search runs until the open list drains or
// the visited table fills; DistanceGoal and MaxExpansionRadius are kept
// with the params but not read by the search.
func (m *Manager) AddDistanceRequest(name string, owner uint32, params SingleParams, ongoing bool) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, gen := m.alloc()
	m.requests[idx] = &request{
		kind: KindDistance, name: name, owner: owner, priority: PriorityNormal,
		ongoing: ongoing, single: params,
	}
	return Handle{Index: idx, Generation: gen}
}

// AddUndirectedRequest registers an undirected (Dijkstra) request
// filling a visited-node table with no goal (§4.6 add_undirected_request).
func (m *Manager) AddUndirectedRequest(name string, owner uint32, params UndirectedParams, ongoing, highPri, lowPri bool) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, gen := m.alloc()
	prio := PriorityNormal
	switch {
	case highPri:
		prio = PriorityHigh
	case lowPri:
		prio = PriorityLow
	}
	m.requests[idx] = &request{
		kind: KindUndirected, name: name, owner: owner, priority: prio,
		ongoing: ongoing, highPri: highPri, lowPri: lowPri, undirected: params,
	}
	return Handle{Index: idx, Generation: gen}
}

// CacheRequest registers a handle that snapshots another undirected
// request's latest active-slot results every tick (§4.6 cache_request).
func (m *Manager) CacheRequest(name string, src Handle) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, gen := m.alloc()
	m.requests[idx] = &request{
		kind: KindCache, name: name, priority: PriorityLow, cacheSource: src,
	}
	return Handle{Index: idx, Generation: gen}
}

// UpdateRequest replaces a live single/undirected request's params
// in-place (§4.6 update_request).
func (m *Manager) UpdateRequest(h Handle, single *SingleParams, undirected *UndirectedParams) navgraph.Status {
	m.mu.RLock()
	r := m.lookup(h)
	m.mu.RUnlock()
	if r == nil {
		return navgraph.Failure | navgraph.HandleStale
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if single != nil {
		r.single = *single
	}
	if undirected != nil {
		r.undirected = *undirected
	}
	return navgraph.Success
}

// RemoveRequest marks h pending-deletion; the slot is reclaimed on the
// next Update() tick rather than immediately, so a reader mid-read of
// the per-request lock is never invalidated out from under it (§4.6
// "Requests pending deletion ... never freed while a reader holds the
// per-request lock").
func (m *Manager) RemoveRequest(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.lookup(h)
	if r == nil {
		return
	}
	r.pendingFree = true
}

// GetResults reads the active result slot for h (§4.6 get_results).
func (m *Manager) GetResults(h Handle) (*DirectedOutcome, *UndirectedOutcome, navgraph.Status) {
	m.mu.RLock()
	r := m.lookup(h)
	m.mu.RUnlock()
	if r == nil {
		return nil, nil, navgraph.Failure | navgraph.HandleStale
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	if !r.slotReady[r.currentSlot] {
		return nil, nil, navgraph.Success | navgraph.PartialResult
	}
	return r.directed[r.currentSlot], r.undirectedR[r.currentSlot], navgraph.Success
}

// BuildPath runs the path builder over h's current directed result,
// toward goalLoc (§4.6 build_path).
func (m *Manager) BuildPath(h Handle, params pathbuild.BuildParams, goalPos d3.Vec3, radial pathbuild.RadialPush, prober pathbuild.Prober) (*pathbuild.PathWaypoints, navgraph.Status) {
	m.mu.RLock()
	r := m.lookup(h)
	m.mu.RUnlock()
	if r == nil {
		return nil, navgraph.Failure | navgraph.HandleStale
	}
	r.lock.RLock()
	out := r.directed[r.currentSlot]
	r.lock.RUnlock()
	if out == nil || out.Result == nil {
		return nil, navgraph.Failure | navgraph.InvalidParam
	}

	startPos := d3.Vec3{0, 0, 0}
	if nodes := pathbuild.Gather(out.Result.Visited, out.Goal); len(nodes) > 0 {
		if n := m.graph.Node(nodes[0]); n != nil {
			startPos = n.Pos.Vec3()
		}
	}

	return pathbuild.Build(m.graph, out.Result, out.Goal, startPos, goalPos, params, radial, prober)
}

// CanPathTo reports whether loc was ever reached by h's undirected
// search (§4.6 can_path_to).
func (m *Manager) CanPathTo(h Handle, loc navgraph.NodeID) (bool, navgraph.Status) {
	m.mu.RLock()
	r := m.lookup(h)
	m.mu.RUnlock()
	if r == nil {
		return false, navgraph.Failure | navgraph.HandleStale
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := r.undirectedR[r.currentSlot]
	if out == nil || out.Result == nil {
		return false, navgraph.Success | navgraph.PartialResult
	}
	return out.Result.Visited.Reached(loc), navgraph.Success
}

// GetApproxPathDistance reads the accumulated from-cost to loc out of
// h's undirected visited table (§4.6 get_approx_path_distance).
func (m *Manager) GetApproxPathDistance(h Handle, loc navgraph.NodeID) (float32, navgraph.Status) {
	m.mu.RLock()
	r := m.lookup(h)
	m.mu.RUnlock()
	if r == nil {
		return 0, navgraph.Failure | navgraph.HandleStale
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := r.undirectedR[r.currentSlot]
	if out == nil || out.Result == nil {
		return 0, navgraph.Success | navgraph.PartialResult
	}
	rec := out.Result.Visited.Find(loc)
	if rec == nil {
		return 0, navgraph.Failure | navgraph.InvalidParam
	}
	return rec.FromCost, navgraph.Success
}
