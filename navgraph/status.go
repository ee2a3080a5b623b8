package navgraph

import "fmt"

// Status is the bitmask status code returned by every core operation that
// can fail in a caller-recoverable way. Nothing in this module panics for
// conditions a caller can run into during ordinary use — see §7 of
// SPEC_FULL.md. The encoding mirrors the teacher's detour.Status: a high
// bit for success/failure/in-progress, and a detail mask carrying the
// specific kind.
type Status uint32

// High level status bits.
const (
	Failure    Status = 1 << 31
	Success    Status = 1 << 30
	InProgress Status = 1 << 29

	StatusDetailMask Status = 0x0fffffff

	// Detail bits, shared across navgraph/actionpack/search/pathbuild/
	// radial/pathrequest so a caller can test HasDetail(st, navgraph.
	// OutOfMemory) regardless of which package produced the status.
	InvalidParam   Status = 1 << 0 // an input parameter was invalid
	OutOfMemory    Status = 1 << 1 // a slab/slot allocation failed
	HandleStale    Status = 1 << 2 // a generation-id no longer matches
	BufferTooSmall Status = 1 << 3 // result buffer too small for full result
	OutOfNodes     Status = 1 << 4 // search ran out of visited-table capacity
	PartialResult  Status = 1 << 5 // best-effort result, goal not reached
	ValidationFail Status = 1 << 6 // development-build invariant check failed
)

// Error implements the error interface so a Status can be returned and
// compared as a regular Go error when convenient.
func (s Status) Error() string {
	if s&Failure != 0 {
		switch s & StatusDetailMask {
		case InvalidParam:
			return "invalid parameter"
		case OutOfMemory:
			return "capacity exhausted"
		case HandleStale:
			return "stale handle"
		case OutOfNodes:
			return "out of nodes"
		case ValidationFail:
			return "validation failed"
		default:
			return fmt.Sprintf("navcore: failure 0x%x", uint32(s))
		}
	}
	if s == InProgress {
		return "in progress"
	}
	return "success"
}

// Succeeded reports whether st carries the Success bit.
func Succeeded(st Status) bool { return st&Success != 0 }

// Failed reports whether st carries the Failure bit.
func Failed(st Status) bool { return st&Failure != 0 }

// HasDetail reports whether st carries the given detail bit.
func HasDetail(st Status, detail Status) bool { return st&detail != 0 }
