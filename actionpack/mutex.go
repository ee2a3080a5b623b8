package actionpack

import "sync"

// Mutex is the shared arbitrator for 2..N packs that must not be used
// simultaneously — e.g. both halves of a two-way jump (§3 ActionPackMutex,
// §4.2 Mutex arbitration). Reservation is distinct from usage: a process
// reserves a mutex before committing to a traversal, then adds itself as
// a user once the traversal actually starts, and is removed as a user
// only when the traversal completes.
type Mutex struct {
	mu sync.Mutex

	owners  []uint32 // pack indices sharing this mutex.
	enabled uint32   // pack index currently enabled; 0 means none (packs are 1-based here).

	users             map[uint32]bool // process ids currently using the enabled pack.
	reservationHolder uint32          // process id; 0 means none.

	directionalValve bool
	maxUserCount     int
}

// NewMutex constructs a mutex. If directionalValve is true, many users of
// the same currently-enabled pack are allowed, up to maxUserCount.
func NewMutex(directionalValve bool, maxUserCount int) *Mutex {
	return &Mutex{
		users:            make(map[uint32]bool),
		directionalValve: directionalValve,
		maxUserCount:     maxUserCount,
	}
}

// AddOwner registers a pack (by its 1-based registry index, so 0 can mean
// "none") as sharing this mutex.
func (m *Mutex) AddOwner(packIndex uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.owners {
		if o == packIndex {
			return
		}
	}
	m.owners = append(m.owners, packIndex)
}

// IsAvailable reports whether packIndex may be enabled on behalf of
// process (§4.2 Mutex arbitration):
//   - if the currently-enabled pack is self, available iff the
//     reservation holder is self or none.
//   - if the currently-enabled pack is another pack with any active
//     user, not available.
//   - otherwise available, and the caller may TryEnable(self).
//   - with the directional valve set, many users of the *same* pack are
//     allowed, up to maxUserCount.
func (m *Mutex) IsAvailable(packIndex, process uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled == packIndex {
		if m.directionalValve && len(m.users) < m.maxUserCount {
			return true
		}
		return m.reservationHolder == 0 || m.reservationHolder == process
	}
	if m.enabled != 0 && len(m.users) > 0 {
		return false
	}
	return true
}

// TryEnable attempts to make packIndex the mutex's enabled pack. It
// fails if another pack is currently enabled with active users.
func (m *Mutex) TryEnable(packIndex uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled == packIndex {
		return true
	}
	if m.enabled != 0 && len(m.users) > 0 {
		return false
	}
	m.enabled = packIndex
	return true
}

// Reserve succeeds if the mutex can be enabled for process and no other
// process currently holds the reservation.
func (m *Mutex) Reserve(packIndex, process uint32) bool {
	if !m.IsAvailable(packIndex, process) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reservationHolder != 0 && m.reservationHolder != process {
		return false
	}
	m.enabled = packIndex
	m.reservationHolder = process
	return true
}

// Release clears process's reservation. The user refcount is untouched;
// it is only decremented via RemoveUser once the traversal completes
// (§4.2: "the mutex user refcount is decremented only when the traversal
// actually completes").
func (m *Mutex) Release(process uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reservationHolder == process {
		m.reservationHolder = 0
	}
}

// AddUser marks process as actively using the currently-enabled pack.
func (m *Mutex) AddUser(process uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[process] = true
}

// RemoveUser marks process as done using the mutex. Once the user list
// drains, any owning pack may re-enable.
func (m *Mutex) RemoveUser(process uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, process)
	if len(m.users) == 0 {
		m.enabled = 0
	}
}

// UserCount reports the number of active users of the enabled pack.
func (m *Mutex) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
