package wood

import (
	"github.com/spaghettifunk/timber/engine/math"
)

// MeasureSegment derives the bounding box, centerline, orientation frame and
// cross-section half extents of the segment between aft and fwd.
func MeasureSegment(positions []math.Vec3, quads [][4]uint32, aft, fwd Loop, sides [4]int) Measure {
	var aftPts, fwdPts [4]math.Vec3
	extents := math.NewExtents3DEmpty()
	for i := 0; i < 4; i++ {
		aftPts[i] = positions[aft[i]]
		fwdPts[i] = positions[fwd[i]]
		extents = extents.Expand(aftPts[i]).Expand(fwdPts[i])
	}

	start := math.Centroid(aftPts[:]...)
	end := math.Centroid(fwdPts[:]...)
	axis := end.Sub(start)
	length := axis.Length()
	direction := axis.Normalized()

	// The broadest side face gives the cross-section plane.
	var dominant math.Vec3
	best := float32(-1)
	for _, qi := range sides {
		q := quads[qi]
		n := math.QuadNormal(positions[q[0]], positions[q[1]], positions[q[2]], positions[q[3]])
		if l := n.LengthSquared(); l > best {
			best = l
			dominant = n
		}
	}
	frame := math.NewFrame(direction, dominant)
	if length < math.K_LENGTH_EPSILON {
		direction = frame.Forward
	}

	halfWidth, halfDepth := crossSection(aftPts)

	return Measure{
		Extents: extents,
		Centerline: Centerline{
			Origin:    start,
			Direction: direction,
			Length:    length,
		},
		Frame:     frame,
		HalfWidth: halfWidth,
		HalfDepth: halfDepth,
	}
}

// crossSection measures the two loop edges meeting at the first corner. Its
// diagonal partner is the farthest corner; the remaining two are adjacent.
func crossSection(pts [4]math.Vec3) (halfWidth, halfDepth float32) {
	far := 1
	for i := 2; i < 4; i++ {
		if pts[0].Distance(pts[i]) > pts[0].Distance(pts[far]) {
			far = i
		}
	}
	edges := make([]float32, 0, 2)
	for i := 1; i < 4; i++ {
		if i != far {
			edges = append(edges, pts[0].Distance(pts[i]))
		}
	}
	return max(edges[0], edges[1]) * 0.5, min(edges[0], edges[1]) * 0.5
}
