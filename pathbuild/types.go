// Package pathbuild implements C4, the path builder: converts a
// visited-node table produced by search.AStar plus a goal into a
// smoothed PathWaypoints sequence, via the gather/prune/validate/
// portal/smooth/reverse/radial/finalize/truncate/metrics pipeline
// described in SPEC_FULL.md §4.4.
//
// Grounded on detour.NavMeshQuery.FindStraightPath (detour/query.go) for
// the funnel algorithm, and on crowd.PathCorridor.FindCorners
// (crowd/path_corridor.go) for the corridor-level "walk node sequence,
// emit corner waypoints" usage pattern this package's Build mirrors.
package pathbuild

import (
	"time"

	"github.com/arl/gogeo/f32/d3"

	"github.com/ironspire/navcore/navgraph"
)

// SmoothMode selects one of the three smoothing strategies (§4.4 step 6).
type SmoothMode uint8

const (
	SmoothNone SmoothMode = iota
	SmoothApprox
	SmoothFull
)

// PortalKind distinguishes the three portal shapes step 5 builds.
type PortalKind uint8

const (
	PortalRegular PortalKind = iota
	PortalSingular
	PortalWideTAP
)

// NavPortal is the shared-edge (or degenerate, or wide-TAP) crossing
// between two consecutive path nodes (§4.4 step 5).
type NavPortal struct {
	Kind          PortalKind
	Left, Right   d3.Vec3 // left/right endpoints, agent's direction of travel.
	OutwardNormal d3.Vec3
}

// LegKind names the kind of motion a waypoint-to-waypoint leg requires.
type LegKind uint8

const (
	LegGround LegKind = iota
	LegActionPack
	LegLedgeShimmy
	LegLedgeJump
)

// Waypoint is one (position, path-node proxy) pair of a PathWaypoints
// sequence (§3 PathWaypoints).
type Waypoint struct {
	Pos  d3.Vec3
	Node navgraph.NodeID
	Leg  LegKind
}

// MaxWaypoints bounds a PathWaypoints sequence (§3: "up to 32").
const MaxWaypoints = 32

// PathWaypoints is the path builder's output.
type PathWaypoints struct {
	Points []Waypoint

	Length               float32
	CombatVectorCost     float32
	ClosestThreatDist    float32
	ClosestFriendDist    float32
	InitialDir, FinalDir d3.Vec3
	TapUsed              bool
	Backtrack            bool
	Exposure             float32
	CachedPolys          []navgraph.NodeID // first N polygons, cached for quick reuse.

	TruncatedAtTap        bool
	RequiredFacingAtTrunc d3.Vec3
}

// CombatVectorInfo carries the direction-weighted cost model's inputs
// (§4.4 Combat-vector cost).
type CombatVectorInfo struct {
	Vector d3.Vec3
	Weight func(parent navgraph.NodeID, link *navgraph.Link) float32
}

// Prober is the navmesh library's radius-aware motion probe, used by the
// finalization step (§4.4 step 9). It is the
// out-of-scope navmesh library's query surface (§1), injected here as a
// small interface rather than implemented by this package.
type Prober interface {
	// ProbeLS attempts to move from start by the given vector, honoring
	// obeyedBlockers and radius; reports whether the goal was reached or
	// an edge was hit, and the resulting position.
	ProbeLS(start d3.Vec3, move d3.Vec3, obeyedBlockers uint32, radius float32) (reachedGoal bool, result d3.Vec3)
}

// BuildParams bundles the path builder's per-request tunables (§6 Build
// path request schema, §4.8 pathbuild.* config).
type BuildParams struct {
	AgentRadius float32

	Smoothing SmoothMode
	Reverse   bool

	PortalShrink float32

	FinalizeProbeMinDist     float32
	FinalizeProbeMaxDist     float32
	FinalizeProbeMaxDuration time.Duration

	// Clock is the wall-clock source finalizeProbes measures
	// FinalizeProbeMaxDuration against. Nil means time.Now, consistent
	// with pathrequest.Manager's own injectable clock; tests supply a
	// fake to make the deadline deterministic.
	Clock func() time.Time

	APEntryDistance float32

	TruncateAfterTapCount int // 0 means "don't truncate".
	WideTapInstanceSeed   uint32

	Combat *CombatVectorInfo

	LegacyWedgeElimination bool
	LinkDist               float32
}

// GraphView is the read-only graph surface the builder needs: node
// lookup for positions/kind, and link lookup for the outgoing-link walks
// that validation and portal construction make. Gather retraces parents
// through search.Result instead (parents are already recorded there).
type GraphView interface {
	Node(id navgraph.NodeID) *navgraph.Node
	Link(id navgraph.LinkID) *navgraph.Link
}
