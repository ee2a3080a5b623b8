package navgraph

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
)

// half16 is a minimal IEEE-754 binary16 encoder/decoder. No library in the
// retrieval pack offers a half-float type (arl/gogeo and arl/math32 only
// operate on float32); this is the one place this module reaches for
// stdlib math instead of an ecosystem package. See DESIGN.md.
type half16 uint16

func float32ToHalf(f float32) half16 {
	bits := math.Float32bits(f)
	sign := uint32(bits>>16) & 0x8000
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff

	switch {
	case (bits>>23)&0xff == 0xff:
		// Inf/NaN.
		if mant != 0 {
			return half16(sign | 0x7e00)
		}
		return half16(sign | 0x7c00)
	case exp >= 0x1f:
		// Overflow to infinity.
		return half16(sign | 0x7c00)
	case exp <= 0:
		// Subnormal or underflow to zero; flush to zero, this module only
		// ever stores world/level-scale Y coordinates where subnormal
		// precision is never meaningful.
		return half16(sign)
	default:
		return half16(sign | uint32(exp)<<10 | mant>>13)
	}
}

func halfToFloat32(h half16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch {
	case exp == 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		return math.Float32frombits(sign) // flushed-to-zero subnormal, see above.
	case exp == 0x1f:
		if mant != 0 {
			return math.Float32frombits(sign | 0x7fc00000)
		}
		return math.Float32frombits(sign | 0x7f800000)
	default:
		return math.Float32frombits(sign | (exp-15+127)<<23 | mant<<13)
	}
}

// Pos is a position expressed in the parent space of the mesh/graph that
// owns it. X and Z are stored at full float32 precision; Y is compressed
// to a 16 bit float, matching the PathNode layout in SPEC_FULL.md §3: most
// navigation decisions are planar, and vertical precision beyond a
// half-float is not load-bearing for the graph (the navmesh library's
// detail mesh is the authority on exact height).
type Pos struct {
	X, Z float32
	y16  half16
}

// NewPos builds a Pos from a parent-space Vec3.
func NewPos(v d3.Vec3) Pos {
	return Pos{X: v[0], Z: v[2], y16: float32ToHalf(v[1])}
}

// Vec3 expands Pos back into a full-precision Vec3.
func (p Pos) Vec3() d3.Vec3 {
	return d3.NewVec3XYZ(p.X, halfToFloat32(p.y16), p.Z)
}

// Y returns the decompressed Y coordinate.
func (p Pos) Y() float32 { return halfToFloat32(p.y16) }

// NavManagerId is a compact opaque key identifying a polygon or
// sub-polygon within a specific generation of a specific mesh: (mesh
// index, generation id, polygon index, sub-polygon index). It stays
// stable for the lifetime of the mesh's registration and is invalidated
// by bumping Generation when the mesh logs out — any NavManagerId minted
// against the old generation compares unequal to the fresh one even if
// the indices are reused.
type NavManagerId struct {
	MeshIndex    uint16
	Generation   uint16
	PolyIndex    uint32
	SubPolyIndex uint32
}

// IsSubPoly reports whether this id names a dynamically patched
// sub-polygon rather than a base polygon.
func (id NavManagerId) IsSubPoly() bool { return id.SubPolyIndex != 0 }

// Zero is the invalid/unset NavManagerId.
var Zero NavManagerId
