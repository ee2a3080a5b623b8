package actionpack_test

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"

	"github.com/ironspire/navcore/actionpack"
	"github.com/ironspire/navcore/navgraph"
	"github.com/ironspire/navcore/navgraph/testmesh"
)

type fakeLocator struct {
	mesh *testmesh.Mesh
}

func (l *fakeLocator) FindContainingPoly(pos d3.Vec3) (navgraph.NavManagerId, bool) {
	// The fixture meshes place polygon i's center at (x, 0, z); snap pos
	// to the nearest polygon for test purposes.
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

func (l *fakeLocator) NearbyPolys(pos d3.Vec3, radius float32) []navgraph.NavManagerId {
	return nil
}

func TestLoginRegisterAddsGraphNodes(t *testing.T) {
	g := navgraph.NewGraph(32, 128)
	mesh := testmesh.NewGrid(2, 1)
	_, st := g.AddMesh(mesh)
	assert.True(t, navgraph.Succeeded(st))

	reg := actionpack.NewRegistry(g, 8, 4, 2)
	loc := &fakeLocator{mesh: mesh}

	h, st := reg.Login(actionpack.ActionPack{
		Kind:        actionpack.PackJump,
		SourceWorld: mesh.PolyPos(0),
		DestWorld:   mesh.PolyPos(3),
		ExtraCost:   2,
	})
	assert.True(t, navgraph.Succeeded(st))
	assert.False(t, h.IsZero())

	p := reg.LookupLoggedIn(h)
	assert.NotNil(t, p)
	assert.False(t, p.IsRegistered())

	assert.True(t, navgraph.Succeeded(reg.RequestRegistration(h)))
	reg.Update(loc)

	p = reg.LookupRegistered(h)
	assert.NotNil(t, p)
	assert.True(t, p.IsRegistered())

	statsBefore := g.Stats().NodeCount
	assert.Equal(t, 6, statsBefore) // 4 mesh polys + 2 AP nodes

	assert.True(t, navgraph.Succeeded(reg.RequestUnregistration(h)))
	reg.Update(loc)
	assert.Nil(t, reg.LookupRegistered(h))
	assert.Equal(t, 4, g.Stats().NodeCount)

	reg.Logout(h)
	assert.Nil(t, reg.LookupLoggedIn(h))
}

func TestLogoutOfStaleHandleIsNoop(t *testing.T) {
	g := navgraph.NewGraph(4, 16)
	reg := actionpack.NewRegistry(g, 4, 4, 2)

	h, st := reg.Login(actionpack.ActionPack{Kind: actionpack.PackVault})
	assert.True(t, navgraph.Succeeded(st))
	reg.Logout(h)

	// h is now stale (generation bumped); operations must no-op, not panic.
	assert.Nil(t, reg.LookupLoggedIn(h))
	st = reg.RequestRegistration(h)
	assert.True(t, navgraph.Failed(st))
	assert.True(t, navgraph.HasDetail(st, navgraph.HandleStale))
}

func TestMutexArbitration(t *testing.T) {
	m := actionpack.NewMutex(false, 1)
	m.AddOwner(1)
	m.AddOwner(2)

	assert.True(t, m.IsAvailable(1, 100))
	assert.True(t, m.TryEnable(1))
	m.AddUser(100)

	assert.False(t, m.IsAvailable(2, 200), "pack 2 must not be available while pack 1 has an active user")

	m.RemoveUser(100)
	assert.True(t, m.IsAvailable(2, 200))
	assert.True(t, m.TryEnable(2))
}

func TestMutexReservationIsDistinctFromUsage(t *testing.T) {
	m := actionpack.NewMutex(false, 1)
	m.AddOwner(1)

	assert.True(t, m.Reserve(1, 100))
	assert.False(t, m.Reserve(1, 200), "a second process must not acquire the reservation")

	m.AddUser(100)
	m.Release(100)
	assert.Equal(t, 1, m.UserCount(), "releasing the reservation must not remove the user")

	m.RemoveUser(100)
	assert.Equal(t, 0, m.UserCount())
}
