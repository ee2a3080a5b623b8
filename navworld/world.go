package navworld

import (
	"os"
	"time"

	"github.com/ironspire/navcore/actionpack"
	"github.com/ironspire/navcore/internal/dbg"
	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/pathrequest"
)

// World is the single owned instance threading C1's graph, C2's
// action-pack registry and C6's request manager together, replacing the
// teacher's g_navPathNodeMgr/g_ndConfig globals (§9 Design notes): a
// caller constructs and owns a navworld.World, and apart from navlog's
// logger no package-level state is used.
type World struct {
	Config  Config
	Graph   *navgraph.Graph
	Packs   *actionpack.Registry
	Manager *pathrequest.Manager
}

// New builds a World from cfg: a graph sized per cfg.Graph, an
// action-pack registry over that graph sized per cfg.ActionPacks, and a
// request manager over the graph. The graph's validation hook is wired
// to internal/dbg's dump so a development-build invariant failure is
// legible in the debug log (§7 "Validation-violated ... dumped to the
// debug log").
func New(cfg Config) *World {
	g := navgraph.NewGraph(cfg.Graph.MaxNodes, cfg.Graph.MaxLinks)
	g.SetValidationHook(func(g *navgraph.Graph, err error) {
		dbg.DumpGraph(os.Stderr, g)
	})

	packs := actionpack.NewRegistry(g, cfg.ActionPacks.MaxPacks,
		cfg.ActionPacks.MaxRegistrationsPerTick, cfg.ActionPacks.MaxAuxLinksPerSide)

	mgr := pathrequest.NewManager(g)
	mgr.Configure(cfg.Search.MaxVisitedFull, cfg.Search.MaxVisitedTrivial,
		cfg.Search.HeuristicScale, cfg.Search.Strategy())

	return &World{Config: cfg, Graph: g, Packs: packs, Manager: mgr}
}

// Tick advances one frame: services due path requests and flips their
// result buffers, then runs the action-pack registry's update against loc
// (the out-of-scope navmesh library's polygon-lookup surface, §1), which
// processes pending registrations and unregistrations, then runs the graph's
// development-build validation pass (§4.1/§4.2, each component's own
// per-tick budget).
func (w *World) Tick(now time.Time, maxServiced int, loc actionpack.Locator) {
	w.Manager.Update(now, maxServiced)
	w.Manager.FlipBuffers()
	w.Packs.Update(loc)
	w.Graph.Update()
}
