package cmd

import (
	"fmt"
	"time"

	"github.com/arl/gogeo/f32/d3"
	"github.com/spf13/cobra"

	"github.com/ironspire/navcore/actionpack"
	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navworld"
	"github.com/ironspire/navcore/pathbuild"
	"github.com/ironspire/navcore/pathrequest"
	"github.com/ironspire/navcore/search"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "run a synthetic path-build demo in memory",
	Long: `Build a small synthetic two-polygon mesh, register one action pack
between its polygons, run an A* query across it and build a smoothed
path, printing the resulting waypoints. The in-memory equivalent of the
teacher's cmd/recast build.`,
	Run: runDemo,
}

func init() {
	RootCmd.AddCommand(demoCmd)
}

// twoPolyMesh is a hand-built navgraph.MeshSource: two unit squares
// sharing one edge, in the spirit of the teacher's hand-wired fixtures
// in detour/query_test.go.
type twoPolyMesh struct{}

func (twoPolyMesh) PolyCount() int { return 2 }

func (twoPolyMesh) PolyLoc(poly int) navgraph.NavManagerId {
	return navgraph.NavManagerId{PolyIndex: uint32(poly)}
}

func (twoPolyMesh) PolyPos(poly int) d3.Vec3 {
	if poly == 0 {
		return d3.NewVec3XYZ(0, 0, 0)
	}
	return d3.NewVec3XYZ(1, 0, 0)
}

func (twoPolyMesh) Adjacency(poly int) []navgraph.Adjacency {
	switch poly {
	case 0:
		return []navgraph.Adjacency{{
			Neighbor: 1,
			EdgeA:    d3.NewVec3XYZ(0.5, 0, -0.5),
			EdgeZ:    d3.NewVec3XYZ(0.5, 0, 0.5),
		}}
	case 1:
		return []navgraph.Adjacency{{
			Neighbor: 0,
			EdgeA:    d3.NewVec3XYZ(0.5, 0, 0.5),
			EdgeZ:    d3.NewVec3XYZ(0.5, 0, -0.5),
		}}
	}
	return nil
}

// demoLocator is the minimal actionpack.Locator a real navmesh library
// would provide; it knows only the two polygons of twoPolyMesh.
type demoLocator struct{}

func (demoLocator) FindContainingPoly(pos d3.Vec3) (navgraph.NavManagerId, bool) {
	if pos[0] < 0.5 {
		return navgraph.NavManagerId{PolyIndex: 0}, true
	}
	return navgraph.NavManagerId{PolyIndex: 1}, true
}

func (demoLocator) NearbyPolys(pos d3.Vec3, radius float32) []navgraph.NavManagerId {
	return []navgraph.NavManagerId{{PolyIndex: 0}, {PolyIndex: 1}}
}

func runDemo(cmd *cobra.Command, args []string) {
	cfg := navworld.DefaultConfig()
	cfg.Graph.MaxNodes = 32
	cfg.Graph.MaxLinks = 128
	cfg.ActionPacks.MaxPacks = 4

	w := navworld.New(cfg)
	mesh := twoPolyMesh{}
	added, st := w.Graph.AddMesh(mesh)
	if navgraph.Failed(st) {
		fmt.Println("error adding mesh:", st)
		return
	}
	fmt.Printf("added %d polygons\n", added)

	loc := demoLocator{}
	packHandle, st := w.Packs.Login(actionpack.ActionPack{
		Kind:        actionpack.PackJump,
		SourceWorld: d3.NewVec3XYZ(0.4, 0, 0),
		DestWorld:   d3.NewVec3XYZ(0.6, 0, 0),
	})
	if navgraph.Failed(st) {
		fmt.Println("error logging in action pack:", st)
		return
	}
	if st := w.Packs.RequestRegistration(packHandle); navgraph.Failed(st) {
		fmt.Println("error requesting action pack registration:", st)
		return
	}
	w.Packs.Update(loc)
	fmt.Println("action pack registered:", w.Packs.LookupRegistered(packHandle) != nil)

	startID, _ := w.Graph.LookupByLoc(mesh.PolyLoc(0))
	goalID, _ := w.Graph.LookupByLoc(mesh.PolyLoc(1))

	h := w.Manager.AddStaticRequest("demo", 0, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, true)

	w.Manager.Update(time.Now(), 8)
	w.Manager.FlipBuffers()

	params := pathbuild.BuildParams{
		AgentRadius:          0.3,
		Smoothing:            pathbuild.SmoothFull,
		PortalShrink:         cfg.PathBuild.PortalShrink,
		FinalizeProbeMinDist: cfg.PathBuild.FinalizeProbeMinDist,
		FinalizeProbeMaxDist: cfg.PathBuild.FinalizeProbeMaxDist,
	}
	goalPos := mesh.PolyPos(1)
	out, st := w.Manager.BuildPath(h, params, goalPos, nil, nil)
	if navgraph.Failed(st) {
		fmt.Println("build_path failed:", st)
		return
	}

	fmt.Printf("path: %d waypoints, length=%.3f\n", len(out.Points), out.Length)
	for i, wp := range out.Points {
		fmt.Printf("  %d: (%.3f, %.3f, %.3f) node=%d\n", i, wp.Pos[0], wp.Pos[1], wp.Pos[2], wp.Node)
	}
}
