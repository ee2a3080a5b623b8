package search

// OpenListStrategy is the pluggable remove-best structure A*/undirected
// search use (§4.3 Open list strategies: brute-force, robin-hood,
// agnostic). All three operate on *NodeData by Total priority.
type OpenListStrategy interface {
	Push(n *NodeData)
	// Update re-positions n after its Total has decreased; a no-op for
	// strategies that don't need it (brute-force).
	Update(n *NodeData)
	Pop() *NodeData
	Empty() bool
	Len() int
}

// bruteForce is a linear-scan open list: O(1) push, O(n) remove-best.
// Grounded on the observation in §4.3 that this wins for small open
// sets; implemented as an unsorted slice rather than the teacher's
// binary heap (detour/nodequeue.go) since a scan is genuinely the
// faster choice at this strategy's intended scale.
type bruteForce struct {
	items []*NodeData
}

// NewBruteForce constructs a brute-force open list.
func NewBruteForce() OpenListStrategy { return &bruteForce{} }

func (b *bruteForce) Push(n *NodeData) { b.items = append(b.items, n) }
func (b *bruteForce) Update(*NodeData) {}

func (b *bruteForce) Pop() *NodeData {
	if len(b.items) == 0 {
		return nil
	}
	bestIdx := 0
	for i, n := range b.items {
		if n.Total < b.items[bestIdx].Total {
			bestIdx = i
		}
	}
	best := b.items[bestIdx]
	last := len(b.items) - 1
	b.items[bestIdx] = b.items[last]
	b.items = b.items[:last]
	return best
}

func (b *bruteForce) Empty() bool { return len(b.items) == 0 }
func (b *bruteForce) Len() int    { return len(b.items) }

// robinHood is a binary min-heap open list, the shape of detour's
// nodeQueue (detour/nodequeue.go), with indices tracked on NodeData so
// Update can bubble a node up in O(log n) instead of the teacher's O(n)
// linear scan-then-bubble (its `modify` scans the whole heap for the
// node pointer first). "Robin-hood" names the displacement-rebalancing
// index bookkeeping this adds on top of the teacher's plain heap.
type robinHood struct {
	heap []*NodeData
	pos  map[*NodeData]int
}

// NewRobinHood constructs a hashed/indexed binary-heap open list, tuned
// for large open sets (§4.3).
func NewRobinHood() OpenListStrategy {
	return &robinHood{pos: make(map[*NodeData]int)}
}

func (r *robinHood) set(i int, n *NodeData) {
	r.heap[i] = n
	r.pos[n] = i
}

func (r *robinHood) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if r.heap[parent].Total <= r.heap[i].Total {
			break
		}
		r.heap[parent], r.heap[i] = r.heap[i], r.heap[parent]
		r.pos[r.heap[parent]] = parent
		r.pos[r.heap[i]] = i
		i = parent
	}
}

func (r *robinHood) trickleDown(i int) {
	n := len(r.heap)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && r.heap[left].Total < r.heap[smallest].Total {
			smallest = left
		}
		if right < n && r.heap[right].Total < r.heap[smallest].Total {
			smallest = right
		}
		if smallest == i {
			return
		}
		r.heap[i], r.heap[smallest] = r.heap[smallest], r.heap[i]
		r.pos[r.heap[i]] = i
		r.pos[r.heap[smallest]] = smallest
		i = smallest
	}
}

func (r *robinHood) Push(n *NodeData) {
	r.heap = append(r.heap, n)
	i := len(r.heap) - 1
	r.pos[n] = i
	r.bubbleUp(i)
}

func (r *robinHood) Update(n *NodeData) {
	i, ok := r.pos[n]
	if !ok {
		return
	}
	r.bubbleUp(i)
}

func (r *robinHood) Pop() *NodeData {
	if len(r.heap) == 0 {
		return nil
	}
	best := r.heap[0]
	delete(r.pos, best)
	last := len(r.heap) - 1
	if last == 0 {
		r.heap = r.heap[:0]
		return best
	}
	r.set(0, r.heap[last])
	r.heap = r.heap[:last]
	r.trickleDown(0)
	return best
}

func (r *robinHood) Empty() bool { return len(r.heap) == 0 }
func (r *robinHood) Len() int    { return len(r.heap) }

// agnostic dispatches to brute-force below a size threshold and
// robin-hood above it, migrating contents across the switch boundary
// (§4.3: "Agnostic — switches based on open-set size threshold").
type agnostic struct {
	threshold  int
	small      *bruteForce
	large      *robinHood
	usingLarge bool
}

// NewAgnostic constructs a threshold-dispatching open list.
func NewAgnostic(threshold int) OpenListStrategy {
	return &agnostic{threshold: threshold, small: &bruteForce{}}
}

func (a *agnostic) maybeSwitch() {
	if a.usingLarge || a.small == nil {
		return
	}
	if len(a.small.items) < a.threshold {
		return
	}
	a.large = &robinHood{pos: make(map[*NodeData]int)}
	for _, n := range a.small.items {
		a.large.Push(n)
	}
	a.small = nil
	a.usingLarge = true
}

func (a *agnostic) Push(n *NodeData) {
	if a.usingLarge {
		a.large.Push(n)
		return
	}
	a.small.Push(n)
	a.maybeSwitch()
}

func (a *agnostic) Update(n *NodeData) {
	if a.usingLarge {
		a.large.Update(n)
	}
}

func (a *agnostic) Pop() *NodeData {
	if a.usingLarge {
		return a.large.Pop()
	}
	return a.small.Pop()
}

func (a *agnostic) Empty() bool {
	if a.usingLarge {
		return a.large.Empty()
	}
	return a.small.Empty()
}

func (a *agnostic) Len() int {
	if a.usingLarge {
		return a.large.Len()
	}
	return a.small.Len()
}
