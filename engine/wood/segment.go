package wood

import (
	"github.com/spaghettifunk/timber/engine/math"
)

// NoQuad marks an absent cap.
const NoQuad = -1

// Loop is one cross-sectional ring of four vertex indices.
type Loop [4]uint32

func (l Loop) contains(v uint32) bool {
	for _, x := range l {
		if x == v {
			return true
		}
	}
	return false
}

// Centerline runs from the aft loop centroid to the fwd loop centroid.
type Centerline struct {
	Origin    math.Vec3
	Direction math.Vec3
	Length    float32
}

// At returns the point at parameter t in [0, 1] along the centerline.
func (c Centerline) At(t float32) math.Vec3 {
	return c.Origin.Add(c.Direction.MulScalar(c.Length * t))
}

// Measure holds the geometric description of a segment.
type Measure struct {
	Extents    math.Extents3D
	Centerline Centerline
	Frame      math.Frame
	HalfWidth  float32
	HalfDepth  float32
}

// winding stores a quad's corners as positions in the concatenated
// aft+fwd loops: 0..3 index the aft loop, 4..7 the fwd loop.
type winding [4]uint8

func (w winding) resolve(aft, fwd Loop) [4]uint32 {
	var out [4]uint32
	for i, code := range w {
		if code < 4 {
			out[i] = aft[code]
		} else {
			out[i] = fwd[code-4]
		}
	}
	return out
}

// Segment is the stretch of a board between two adjacent loops.
type Segment struct {
	Measure
	AftLoop Loop
	FwdLoop Loop
	// Sides are the four quads joining the loops.
	Sides [4]int
	// BackCap and FrontCap are NoQuad unless this segment ends the board.
	BackCap  int
	FrontCap int

	// sides 0..3, back cap, front cap
	windings [6]winding
}

// HasBackCap reports whether the segment closes the aft end of its board.
func (s *Segment) HasBackCap() bool {
	return s.BackCap != NoQuad
}

// HasFrontCap reports whether the segment closes the fwd end of its board.
func (s *Segment) HasFrontCap() bool {
	return s.FrontCap != NoQuad
}

// IsBoardEnd reports whether the segment owns a cap.
func (s *Segment) IsBoardEnd() bool {
	return s.HasBackCap() || s.HasFrontCap()
}

// ownedQuads returns (slot, quad index) pairs for every quad the segment owns.
func (s *Segment) ownedQuads() [][2]int {
	out := make([][2]int, 0, 6)
	for i, q := range s.Sides {
		out = append(out, [2]int{i, q})
	}
	if s.HasBackCap() {
		out = append(out, [2]int{4, s.BackCap})
	}
	if s.HasFrontCap() {
		out = append(out, [2]int{5, s.FrontCap})
	}
	return out
}

// Quads lists the mesh quad indices owned by the segment, sides first.
func (s *Segment) Quads() []int {
	owned := s.ownedQuads()
	out := make([]int, len(owned))
	for i, o := range owned {
		out[i] = o[1]
	}
	return out
}

// Board is an inferred plank: segments ordered aft to fwd.
type Board struct {
	Group    string
	Segments []*Segment
	Extents  math.Extents3D
}

// Length sums the centerline lengths of the board's segments.
func (b *Board) Length() float32 {
	total := float32(0)
	for _, s := range b.Segments {
		total += s.Centerline.Length
	}
	return total
}

// BoardGroup is a named collection of boards.
type BoardGroup struct {
	Name   string
	Boards []*Board
}

// SegmentRef addresses one segment of a WoodState.
type SegmentRef struct {
	Group   int
	Board   int
	Segment int
}
