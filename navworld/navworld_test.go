package navworld_test

import (
	"testing"
	"time"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironspire/navcore/actionpack"
	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navgraph/testmesh"
	"github.com/ironspire/navcore/navworld"
	"github.com/ironspire/navcore/pathrequest"
	"github.com/ironspire/navcore/search"
)

type fakeLocator struct{ mesh *testmesh.Mesh }

func (l *fakeLocator) FindContainingPoly(pos d3.Vec3) (navgraph.NavManagerId, bool) {
	best := -1
	var bestDist float32
	for i := 0; i < l.mesh.PolyCount(); i++ {
		c := l.mesh.PolyPos(i)
		dx, dz := c[0]-pos[0], c[2]-pos[2]
		d := dx*dx + dz*dz
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return navgraph.NavManagerId{}, false
	}
	return l.mesh.PolyLoc(best), true
}

func (l *fakeLocator) NearbyPolys(pos d3.Vec3, radius float32) []navgraph.NavManagerId { return nil }

func TestNewBuildsAWorldWhoseGraphAndManagerAreUsable(t *testing.T) {
	cfg := navworld.DefaultConfig()
	cfg.Graph.MaxNodes = 64
	cfg.Graph.MaxLinks = 256
	cfg.ActionPacks.MaxPacks = 8

	w := navworld.New(cfg)
	require.NotNil(t, w.Graph)
	require.NotNil(t, w.Packs)
	require.NotNil(t, w.Manager)

	mesh := testmesh.NewGrid(2, 1)
	_, st := w.Graph.AddMesh(mesh)
	require.True(t, navgraph.Succeeded(st))

	startID, ok := w.Graph.LookupByLoc(mesh.PolyLoc(0))
	require.True(t, ok)
	goalID, ok := w.Graph.LookupByLoc(mesh.PolyLoc(3))
	require.True(t, ok)

	h := w.Manager.AddStaticRequest("t", 1, pathrequest.SingleParams{
		Starts: []search.Start{{Key: search.NodeKey{Node: startID}}},
		Goal:   goalID,
	}, false, true)
	require.False(t, h.IsZero())

	w.Tick(time.Now(), 8, &fakeLocator{mesh: mesh})
	directed, _, status := w.Manager.GetResults(h)
	assert.True(t, navgraph.Succeeded(status))
	_ = directed // Tick flips buffers after servicing, so this is already the serviced result
}

func TestTickRunsActionPackLoginRegistration(t *testing.T) {
	cfg := navworld.DefaultConfig()
	cfg.Graph.MaxNodes = 64
	cfg.Graph.MaxLinks = 256
	cfg.ActionPacks.MaxPacks = 8
	cfg.ActionPacks.MaxRegistrationsPerTick = 4

	w := navworld.New(cfg)
	mesh := testmesh.NewGrid(2, 1)
	_, st := w.Graph.AddMesh(mesh)
	require.True(t, navgraph.Succeeded(st))

	h, st := w.Packs.Login(actionpack.ActionPack{
		Kind:        actionpack.PackJump,
		SourceWorld: mesh.PolyPos(0),
		DestWorld:   mesh.PolyPos(3),
	})
	require.True(t, navgraph.Succeeded(st))
	require.True(t, navgraph.Succeeded(w.Packs.RequestRegistration(h)))

	w.Tick(time.Now(), 8, &fakeLocator{mesh: mesh})
	require.NotNil(t, w.Packs.LookupRegistered(h))
}
