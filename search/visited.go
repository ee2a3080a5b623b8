package search

import "github.com/ironspire/navcore/navgraph"

func hashKey(k NodeKey, mask uint32) uint32 {
	a := uint32(k.Node)<<16 ^ uint32(k.Partition)
	a += ^(a << 15)
	a ^= a >> 10
	a += a << 3
	a ^= a >> 6
	a += ^(a << 11)
	a ^= a >> 16
	return a & mask
}

const nullVisited = ^uint32(0)

// VisitedFull is the hash-bucketed (chained) visited-node table
// used by A* (§3: "Full"). Grounded on detour.NodePool's hash-bucket
// chaining (detour/node.go), generalized from "one node per PolyRef+
// state" to "one record per NodeKey".
type VisitedFull struct {
	records  []NodeData
	next     []uint32
	buckets  []uint32 // hashSize entries, nullVisited when empty.
	count    int
	capacity int
	mask     uint32
}

// NewVisitedFull allocates a table able to hold up to capacity records,
// with a hash-bucket count that is the smallest power of two greater
// than capacity/2 (at least 16), matching detour's "hashSize must be a power of 2"
// invariant (assert.True(math32.NextPow2(hashSize) == hashSize, ...)).
func NewVisitedFull(capacity int) *VisitedFull {
	hashSize := nextPow2(uint32(capacity/2 + 1))
	if hashSize < 16 {
		hashSize = 16
	}
	v := &VisitedFull{
		records:  make([]NodeData, 0, capacity),
		next:     make([]uint32, 0, capacity),
		buckets:  make([]uint32, hashSize),
		capacity: capacity,
		mask:     hashSize - 1,
	}
	for i := range v.buckets {
		v.buckets[i] = nullVisited
	}
	return v
}

func nextPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

// Find returns the record for key, or nil if it was never visited.
func (v *VisitedFull) Find(key NodeKey) *NodeData {
	b := hashKey(key, v.mask)
	for i := v.buckets[b]; i != nullVisited; i = v.next[i] {
		if v.records[i].Key == key {
			return &v.records[i]
		}
	}
	return nil
}

// GetOrCreate returns the existing record for key, or allocates a fresh
// zero-value one if this is the first visit. ok is false if the table's
// capacity is exhausted (§7 Search-truncated / OutOfNodes).
func (v *VisitedFull) GetOrCreate(key NodeKey) (rec *NodeData, ok bool) {
	if rec := v.Find(key); rec != nil {
		return rec, true
	}
	if v.count >= v.capacity {
		return nil, false
	}
	b := hashKey(key, v.mask)
	idx := uint32(v.count)
	v.records = append(v.records, NodeData{Key: key})
	v.next = append(v.next, v.buckets[b])
	v.buckets[b] = idx
	v.count++
	return &v.records[idx], true
}

// Len reports how many records are currently populated.
func (v *VisitedFull) Len() int { return v.count }

// Reached reports whether key has ever been visited.
func (v *VisitedFull) Reached(key NodeKey) bool { return v.Find(key) != nil }

// ReachedGoals returns the subset of goals that have a closed record,
// for A*'s "record a bitset of reached goals" (§4.3 Termination).
func (v *VisitedFull) ReachedGoals(goals []NodeKey) []bool {
	out := make([]bool, len(goals))
	for i, g := range goals {
		if rec := v.Find(g); rec != nil && rec.isClosed() {
			out[i] = true
		}
	}
	return out
}

// VisitedTrivial is the dense-array visited table used by undirected
// Dijkstra, where the partition-id is always 0 (§3: "Trivial — dense
// array indexed by raw path-node id"). Grounded on the same NodePool
// idiom, specialized to a direct array index since no hashing/collision
// handling is needed once partitioning is dropped.
type VisitedTrivial struct {
	records []NodeData
	present []bool
}

// NewVisitedTrivial allocates a table indexed directly by navgraph.NodeID
// (1-based; index 0 unused), sized for maxNodes ids.
func NewVisitedTrivial(maxNodes int) *VisitedTrivial {
	return &VisitedTrivial{
		records: make([]NodeData, maxNodes+1),
		present: make([]bool, maxNodes+1),
	}
}

func (v *VisitedTrivial) Find(id navgraph.NodeID) *NodeData {
	if int(id) >= len(v.present) || !v.present[id] {
		return nil
	}
	return &v.records[id]
}

func (v *VisitedTrivial) GetOrCreate(id navgraph.NodeID) (*NodeData, bool) {
	if int(id) >= len(v.present) {
		return nil, false
	}
	if !v.present[id] {
		v.records[id] = NodeData{Key: NodeKey{Node: id}}
		v.present[id] = true
	}
	return &v.records[id], true
}

func (v *VisitedTrivial) Reached(id navgraph.NodeID) bool {
	return int(id) < len(v.present) && v.present[id]
}
