// Package actionpack implements C2, the traversal action-pack registry:
// a slot-allocated table of jumps, ladders, vaults and similar
// non-walking traversals, each of which contributes an enter/exit node
// pair plus links to navgraph, and a mutex arbitration layer so two
// packs that must not be used simultaneously (the two halves of a
// two-way jump) coordinate safely across concurrent callers.
//
// Grounded on the teacher's crowd.PathCorridor for the "slot holds a
// handle, generation bumps on free" idiom and on detour's assertgo-gated
// invariant checks, generalized here to mutex arbitration rather than
// corridor bookkeeping.
package actionpack

import (
	"sync"

	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
)

// SkillMask, FactionMask and TensionMask are bitsets; the registry
// itself never interprets individual bits, it only tests intersection.
type SkillMask uint32
type FactionMask uint32
type TensionMask uint32

// PackKind names the traversal type, used only for find-by-type queries
// and display; the registry's arbitration logic is kind-agnostic.
type PackKind uint8

const (
	PackJump PackKind = iota
	PackLadder
	PackVault
	PackRope
	PackDoor
	PackSqueeze
	PackProne
)

// PackKindMask is a bitset of PackKind values, used by the find-by-type
// queries (§4.2: "find_by_type_in_radius(type_mask, ...)").
type PackKindMask uint32

func (m PackKindMask) Has(k PackKind) bool { return m&(1<<uint(k)) != 0 }

// Region is an axis-aligned box in world space, used by
// find_by_type_in_region.
type Region struct {
	Min, Max d3.Vec3
}

func (r Region) Contains(p d3.Vec3) bool {
	return p[0] >= r.Min[0] && p[0] <= r.Max[0] &&
		p[1] >= r.Min[1] && p[1] <= r.Max[1] &&
		p[2] >= r.Min[2] && p[2] <= r.Max[2]
}

// Handle is an opaque (index, generation) reference to a registered
// pack. A zero Handle is never valid.
type Handle struct {
	Index      uint32
	Generation uint16
}

// IsZero reports whether h is the invalid/unset handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// AnimAdjust describes the lateral animation-adjust range a pack allows
// auxiliary links to other nearby polygons within (§4.2 Registration).
type AnimAdjust struct {
	LateralRange float32
}

// ActionPack is one registered (or logged-in-but-unregistered) traversal.
type ActionPack struct {
	Kind PackKind

	SourceWorld, DestWorld d3.Vec3 // bound frame in world space.
	SourceLoc, DestLoc     navgraph.NavManagerId

	Skills   SkillMask
	Factions FactionMask
	Tensions TensionMask

	StaticBlock uint32 // static-blockage mask this pack honours.
	ExtraCost   int8   // signed extra path cost.

	AnimAdjust AnimAdjust
	EdgeRef    uint32 // optional edge reference; 0 if unused.

	MutexID       uint32 // 0 means "no mutex".
	UsageDelay    float32
	SingleUse     bool
	Dynamic       bool // auto-logs-out when owner process dies.
	OwnerAlive    func() bool
	SpawnerID     uint64
	ReversePack   Handle // the paired reverse-direction pack, if any.
	PlayerBlocked bool

	registered bool
	costDirty  bool

	enterNode, exitNode navgraph.NodeID
	enterLink, exitLink navgraph.LinkID

	reservationHolder uint32 // process id; 0 means none.
	generation        uint16
}

// IsRegistered reports whether the pack currently participates in
// searches (§3 ActionPack lifecycle: "Only registered packs participate
// in searches").
func (p *ActionPack) IsRegistered() bool { return p.registered }

// Observer callbacks, set via SetRegisterObserver etc.
type Observer func(h Handle)

// Registry is the slot-allocated table of action packs plus their mutex
// arbitrators (C2).
type Registry struct {
	mu sync.RWMutex

	graph *navgraph.Graph

	packs      []ActionPack
	generation []uint16
	free       []uint32
	loggedIn   map[uint32]bool

	pendingRegister   []uint32
	pendingUnregister []uint32

	mutexes   map[uint32]*Mutex
	nextMutex uint32

	maxRegistrationsPerTick int
	maxAuxLinksPerSide      int

	onRegister   Observer
	onUnregister Observer
	onLogin      Observer
	onLogout     Observer
}

// NewRegistry allocates a registry with the given pack-slot capacity,
// backed by graph for node/link allocation.
func NewRegistry(graph *navgraph.Graph, capacity, maxRegistrationsPerTick, maxAuxLinksPerSide int) *Registry {
	r := &Registry{
		graph:                   graph,
		packs:                   make([]ActionPack, capacity),
		generation:              make([]uint16, capacity),
		loggedIn:                make(map[uint32]bool, capacity),
		mutexes:                 make(map[uint32]*Mutex),
		maxRegistrationsPerTick: maxRegistrationsPerTick,
		maxAuxLinksPerSide:      maxAuxLinksPerSide,
	}
	for i := range r.generation {
		r.generation[i] = 1
	}
	return r
}

// Login allocates a manager slot and returns its handle. The pack is not
// yet visible to searches until Register succeeds.
func (r *Registry) Login(p ActionPack) (Handle, navgraph.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else if int(len(r.loggedIn)) >= len(r.packs) {
		return Handle{}, navgraph.Failure | navgraph.OutOfMemory
	} else {
		idx = uint32(len(r.loggedIn))
	}

	p.registered = false
	p.costDirty = true
	p.generation = r.generation[idx]
	r.packs[idx] = p
	r.loggedIn[idx] = true

	h := Handle{Index: idx, Generation: r.generation[idx]}
	if r.onLogin != nil {
		r.onLogin(h)
	}
	return h, navgraph.Success
}

// Logout frees a pack's slot, unregistering it first if still
// registered. A stale handle is a silent no-op (§7 Handle-stale).
func (r *Registry) Logout(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logoutLocked(h)
}

func (r *Registry) logoutLocked(h Handle) {
	if !r.validLocked(h) {
		return
	}
	if r.packs[h.Index].registered {
		r.unregisterLocked(h)
	}
	delete(r.loggedIn, h.Index)
	r.generation[h.Index]++
	r.packs[h.Index] = ActionPack{}
	r.free = append(r.free, h.Index)
	if r.onLogout != nil {
		r.onLogout(h)
	}
}

func (r *Registry) validLocked(h Handle) bool {
	if h.IsZero() || int(h.Index) >= len(r.packs) {
		return false
	}
	return r.loggedIn[h.Index] && r.generation[h.Index] == h.Generation
}

// lookup returns the pack for h, or nil if h is stale/invalid. Caller
// must hold r.mu for read or write.
func (r *Registry) lookup(h Handle) *ActionPack {
	if !r.validLocked(h) {
		return nil
	}
	return &r.packs[h.Index]
}

// LookupLoggedIn returns the pack for h regardless of registration
// state, or nil on a stale handle.
func (r *Registry) LookupLoggedIn(h Handle) *ActionPack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(h)
}

// LookupRegistered returns the pack for h only if it is currently
// registered (participating in searches), nil otherwise.
func (r *Registry) LookupRegistered(h Handle) *ActionPack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.lookup(h)
	if p == nil || !p.registered {
		return nil
	}
	return p
}

// RequestRegistration queues h for registration during the next Update.
func (r *Registry) RequestRegistration(h Handle) navgraph.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validLocked(h) {
		return navgraph.Failure | navgraph.HandleStale
	}
	r.pendingRegister = append(r.pendingRegister, h.Index)
	return navgraph.Success
}

// RequestUnregistration queues h for unregistration during the next
// Update.
func (r *Registry) RequestUnregistration(h Handle) navgraph.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validLocked(h) {
		return navgraph.Failure | navgraph.HandleStale
	}
	r.pendingUnregister = append(r.pendingUnregister, h.Index)
	return navgraph.Success
}

// Locator is the minimal query surface Registration needs
// from the navmesh library to project a pack's source/dest world
// position onto a containing polygon (§4.2 Registration). A full
// implementation of point-location lives in the navmesh library, out of
// scope here (§1); this is the seam it is injected through.
type Locator interface {
	FindContainingPoly(pos d3.Vec3) (navgraph.NavManagerId, bool)
	NearbyPolys(pos d3.Vec3, radius float32) []navgraph.NavManagerId
}

func (r *Registry) registerLocked(idx uint32, loc Locator) navgraph.Status {
	p := &r.packs[idx]
	if p.registered {
		return navgraph.Success
	}

	srcLoc, ok := loc.FindContainingPoly(p.SourceWorld)
	if !ok {
		return navgraph.Failure | navgraph.InvalidParam
	}
	dstLoc, ok := loc.FindContainingPoly(p.DestWorld)
	if !ok {
		return navgraph.Failure | navgraph.InvalidParam
	}
	p.SourceLoc, p.DestLoc = srcLoc, dstLoc

	srcNode, ok := r.graph.LookupByLoc(srcLoc)
	if !ok {
		return navgraph.Failure | navgraph.InvalidParam
	}
	dstNode, ok := r.graph.LookupByLoc(dstLoc)
	if !ok {
		return navgraph.Failure | navgraph.InvalidParam
	}

	ref := navgraph.ActionPackRef(idx + 1)
	enterID, st := r.graph.AllocActionPackNode(navgraph.NodeActionPackEnter, navgraph.NewPos(p.SourceWorld), ref)
	if navgraph.Failed(st) {
		return st
	}
	exitID, st := r.graph.AllocActionPackNode(navgraph.NodeActionPackExit, navgraph.NewPos(p.DestWorld), ref)
	if navgraph.Failed(st) {
		r.graph.FreeActionPackNode(enterID)
		return st
	}

	if _, st := r.graph.AddLink(srcNode, enterID, navgraph.NewPos(p.SourceWorld), navgraph.NewPos(p.SourceWorld), navgraph.LinkOutgoing, 0); navgraph.Failed(st) {
		r.graph.FreeActionPackNode(enterID)
		r.graph.FreeActionPackNode(exitID)
		return st
	}
	if _, st := r.graph.AddLink(enterID, exitID, navgraph.NewPos(p.SourceWorld), navgraph.NewPos(p.DestWorld), navgraph.LinkOutgoing, 0); navgraph.Failed(st) {
		r.graph.FreeActionPackNode(enterID)
		r.graph.FreeActionPackNode(exitID)
		return st
	}
	if _, st := r.graph.AddLink(exitID, dstNode, navgraph.NewPos(p.DestWorld), navgraph.NewPos(p.DestWorld), navgraph.LinkOutgoing, 0); navgraph.Failed(st) {
		r.graph.FreeActionPackNode(enterID)
		r.graph.FreeActionPackNode(exitID)
		return st
	}

	if p.AnimAdjust.LateralRange > 0 && r.maxAuxLinksPerSide > 0 {
		aux := loc.NearbyPolys(p.SourceWorld, p.AnimAdjust.LateralRange)
		for i, alt := range aux {
			if i >= r.maxAuxLinksPerSide {
				break
			}
			if altNode, ok := r.graph.LookupByLoc(alt); ok {
				r.graph.AddLink(altNode, enterID, navgraph.NewPos(p.SourceWorld), navgraph.NewPos(p.SourceWorld), navgraph.LinkOutgoing, 0)
			}
		}
	}

	p.enterNode, p.exitNode = enterID, exitID
	r.graph.SetExtraCost(enterID, p.ExtraCost)
	r.graph.SetExtraCost(exitID, p.ExtraCost)
	p.registered = true
	p.costDirty = false
	return navgraph.Success
}

func (r *Registry) unregisterLocked(h Handle) {
	p := r.lookup(h)
	if p == nil || !p.registered {
		return
	}
	r.graph.FreeActionPackNode(p.enterNode)
	r.graph.FreeActionPackNode(p.exitNode)
	p.enterNode, p.exitNode = 0, 0
	p.registered = false
}

// Update runs one tick: detect dead dynamic-pack owners, process up to
// maxRegistrationsPerTick pending registrations, process all pending
// unregistrations, and republish any cost-dirty pack's cost to its
// nodes (§4.2).
func (r *Registry) Update(loc Locator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.loggedIn {
		p := &r.packs[idx]
		if p.Dynamic && p.OwnerAlive != nil && !p.OwnerAlive() {
			r.logoutLocked(Handle{Index: idx, Generation: r.generation[idx]})
		}
	}

	n := r.maxRegistrationsPerTick
	for len(r.pendingRegister) > 0 && n > 0 {
		idx := r.pendingRegister[0]
		r.pendingRegister = r.pendingRegister[1:]
		if r.loggedIn[idx] {
			r.registerLocked(idx, loc)
		}
		n--
	}

	for len(r.pendingUnregister) > 0 {
		idx := r.pendingUnregister[0]
		r.pendingUnregister = r.pendingUnregister[1:]
		if r.loggedIn[idx] {
			r.unregisterLocked(Handle{Index: idx, Generation: r.generation[idx]})
		}
	}

	for idx := range r.loggedIn {
		p := &r.packs[idx]
		if p.costDirty && p.registered {
			r.graph.SetExtraCost(p.enterNode, p.ExtraCost)
			r.graph.SetExtraCost(p.exitNode, p.ExtraCost)
			p.costDirty = false
		}
	}
}

// MarkCostDirty flags h's pack for cost republishing on the next Update
// (§4.2 Cost contract: rigid-body blockage, mutex user count,
// enable/disable, single-use state, usage-delay all trigger this).
func (r *Registry) MarkCostDirty(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.lookup(h); p != nil {
		p.costDirty = true
	}
}

// FindByTypeInRadius returns handles of every registered pack whose kind
// is in mask within radius of center.
func (r *Registry) FindByTypeInRadius(mask PackKindMask, center d3.Vec3, radius float32) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Handle
	r2 := radius * radius
	for idx := range r.loggedIn {
		p := &r.packs[idx]
		if !p.registered || !mask.Has(p.Kind) {
			continue
		}
		dx, dy, dz := p.SourceWorld[0]-center[0], p.SourceWorld[1]-center[1], p.SourceWorld[2]-center[2]
		if dx*dx+dy*dy+dz*dz <= r2 {
			out = append(out, Handle{Index: idx, Generation: r.generation[idx]})
		}
	}
	return out
}

// FindByTypeInRegion returns handles of every registered pack of the
// given kind whose source position falls within region.
func (r *Registry) FindByTypeInRegion(kind PackKind, region Region) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Handle
	for idx := range r.loggedIn {
		p := &r.packs[idx]
		if !p.registered || p.Kind != kind {
			continue
		}
		if region.Contains(p.SourceWorld) {
			out = append(out, Handle{Index: idx, Generation: r.generation[idx]})
		}
	}
	return out
}

// FindBySpawnerID returns the handle of the registered pack with the
// given spawner id, if any.
func (r *Registry) FindBySpawnerID(id uint64) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for idx := range r.loggedIn {
		if r.packs[idx].registered && r.packs[idx].SpawnerID == id {
			return Handle{Index: idx, Generation: r.generation[idx]}, true
		}
	}
	return Handle{}, false
}

// SetRegisterObserver, SetUnregisterObserver, SetLoginObserver and
// SetLogoutObserver install the lifecycle callbacks named in §4.2.
// Login and Logout invoke the login and logout observers; the register
// and unregister observers are stored but not invoked by registration or
// unregistration.
func (r *Registry) SetRegisterObserver(cb Observer)   { r.onRegister = cb }
func (r *Registry) SetUnregisterObserver(cb Observer) { r.onUnregister = cb }
func (r *Registry) SetLoginObserver(cb Observer)      { r.onLogin = cb }
func (r *Registry) SetLogoutObserver(cb Observer)     { r.onLogout = cb }

// NewMutex allocates a fresh mutex id and registry entry.
func (r *Registry) NewMutex(directionalValve bool, maxUserCount int) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextMutex++
	id := r.nextMutex
	r.mutexes[id] = NewMutex(directionalValve, maxUserCount)
	return id
}

// Mutex looks up a mutex by id, or nil if it does not exist.
func (r *Registry) Mutex(id uint32) *Mutex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mutexes[id]
}
