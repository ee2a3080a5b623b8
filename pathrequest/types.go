// Package pathrequest implements C6, the path request manager: a
// slab-allocated set of ongoing/one-shot search requests, serviced a
// few at a time per tick by priority, with double-buffered results so
// readers never observe a torn write.
//
// Grounded on crowd/pathqueue.go's PathQueue: a fixed-size round-robin
// slab of in-flight queries with a ref/generation handle, a keep-alive
// countdown before a finished slot is reclaimed, and an Update(maxIters)
// budgeted service loop — generalized here from "one sliced A* query per
// slot" to "one of four request kinds, serviced synchronously per tick,
// with priority-weighted scheduling" per SPEC_FULL.md §4.6.
package pathrequest

import (
	"sync"
	"time"

	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/pathbuild"
	"github.com/ironspire/navcore/search"
)

// MaxSlots is the initial capacity of the manager's request slab (§5).
// The slab grows past it on demand; allocation never reports it
// exhausted.
const MaxSlots = 256

// Priority names a request's scheduling class and its rate limit (§4.6
// Scheduling: "high: 8 Hz, normal: 4 Hz, low: 1.3 Hz").
type Priority uint8

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

// minInterval is the minimum time between services for a priority
// class; frequencyBoost is the scheduling score multiplier.
func minInterval(p Priority) time.Duration {
	switch p {
	case PriorityHigh:
		return time.Second / 8
	case PriorityLow:
		return time.Second * 10 / 13 // 1.3 Hz
	default:
		return time.Second / 4
	}
}

func frequencyBoost(p Priority) float64 {
	switch p {
	case PriorityHigh:
		return 4
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Kind distinguishes the four request shapes (§4.6 Public surface).
type Kind uint8

const (
	KindStatic Kind = iota
	KindDistance
	KindUndirected
	KindCache
)

// Handle identifies a request; Generation guards against reuse after
// the slot is freed and reallocated (§7 Handle-stale).
type Handle struct {
	Index      uint32
	Generation uint16
}

// IsZero reports whether h is the zero handle (never a valid request).
func (h Handle) IsZero() bool { return h.Index == 0 && h.Generation == 0 }

// CommonParams is shared by every request kind (§6 Request parameter
// schemas, "Common context").
type CommonParams struct {
	ParentLoc             navgraph.NavManagerId
	PathRadius            float32
	DynamicSearch         bool
	ReverseSearch         bool
	ObeyedStaticBlockers  uint32
	ObeyedDynamicBlockers uint32
	ThreatList            []d3.Vec3
	FriendList            []d3.Vec3
	Combat                *pathbuild.CombatVectorInfo
	MeleePenaltySegments  [][2]d3.Vec3
	OwnerReservedPack     uint32
	CostFuncName          string
}

// SingleParams backs static and distance requests (§6 "Single-path").
type SingleParams struct {
	Common               CommonParams
	Starts               []search.Start
	Goal                 navgraph.NodeID // zero for distance requests.
	MaxTravelDistance    float32
	MaxExpansionRadius   float32
	PreferredPolys       []navgraph.NodeID // up to 8.
	DistanceGoal         float32           // target accumulated distance for KindDistance.
	PlayerBlockagePolicy search.PlayerBlockCheck
}

// UndirectedParams backs undirected requests (§6 "Undirected": same as
// single minus goal; fills a visited-node table only).
type UndirectedParams struct {
	Common             CommonParams
	Starts             []search.Start
	MaxTravelDistance  float32
	MaxExpansionRadius float32
}

// DirectedOutcome is the result of a static/distance request's search.
type DirectedOutcome struct {
	Status navgraph.Status
	Result *search.Result
	Goal   search.NodeKey
}

// UndirectedOutcome is the result of an undirected or cache request.
type UndirectedOutcome struct {
	Status navgraph.Status
	Result *search.UndirectedResult
}

// request is one slab-allocated slot. Exactly one of directed/
// undirected result-slot pairs is populated, depending on kind.
type request struct {
	lock sync.RWMutex

	kind     Kind
	name     string
	owner    uint32
	priority Priority
	ongoing  bool
	highPri  bool // for undirected: also service at high-priority cadence.
	lowPri   bool

	single      SingleParams
	undirected  UndirectedParams
	cacheSource Handle

	lastServiced time.Time
	pendingFree  bool

	currentSlot int
	directed    [2]*DirectedOutcome
	undirectedR [2]*UndirectedOutcome
	slotReady   [2]bool
}
