package wood

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/timber/engine/containers"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

const (
	// Tip offsets as fractions of the segment length.
	splinterHigh   float32 = 0.45
	splinterLow    float32 = 0.2
	splinterMinTip float32 = 0.05
	// Top ring points are pulled towards the centre by up to this fraction.
	splinterMaxShrink float32 = 0.35
	// Turns flatter than this sine count as straight.
	reflexTolerance float32 = 1e-4
)

// slotOwner is the segment end a slot was written for.
type slotOwner struct {
	ref     SegmentRef
	aftward bool
}

/**
 * @brief Hands out fixed-size splinter slots carved from the mesh arrays at
 * construction time. Slot ranges never move; acquiring fails fast when every
 * slot is taken.
 *
 * Slot layout for N jags (local vertex indices):
 *   [0, N)       base ring, snapped onto the anchoring loop
 *   [N, 2N)      jagged tip ring
 *   2N, 2N+1     base apex, tip apex
 *   [2N+2, 5N+2) one provoking copy per face: N wall quads, N tip fans, N base fans
 */
type SplinterAllocator struct {
	mesh   *metadata.Mesh
	free   *containers.RingQueue[SlotID]
	inUse  []bool
	owners []slotOwner
	rng    *math.Random

	numJags       uint32
	reflexRetries uint32

	vertexBase   uint32
	triangleBase uint32
	quadBase     uint32

	VerticesPerSlot  uint32
	TrianglesPerSlot uint32
	QuadsPerSlot     uint32
}

func newSplinterAllocator(mesh *metadata.Mesh, cfg Config) *SplinterAllocator {
	n := cfg.NumJags
	sa := &SplinterAllocator{
		mesh:             mesh,
		free:             containers.NewRingQueue[SlotID](int(cfg.MaxSplinters)),
		inUse:            make([]bool, cfg.MaxSplinters),
		owners:           make([]slotOwner, cfg.MaxSplinters),
		rng:              math.NewRandom(cfg.Seed),
		numJags:          n,
		reflexRetries:    cfg.ReflexRetries,
		VerticesPerSlot:  5*n + 2,
		TrianglesPerSlot: 2 * n,
		QuadsPerSlot:     n,
	}
	sa.vertexBase, sa.triangleBase, sa.quadBase = mesh.Reserve(
		cfg.MaxSplinters*sa.VerticesPerSlot,
		cfg.MaxSplinters*sa.TrianglesPerSlot,
		cfg.MaxSplinters*sa.QuadsPerSlot,
	)
	for i := uint32(0); i < cfg.MaxSplinters; i++ {
		_ = sa.free.Enqueue(SlotID(i))
	}
	return sa
}

// Capacity is the number of reserved slots.
func (sa *SplinterAllocator) Capacity() int {
	return len(sa.inUse)
}

// FreeSlots is the number of slots available to Acquire.
func (sa *SplinterAllocator) FreeSlots() int {
	return sa.free.Len()
}

// InUse reports whether slot currently hosts a splinter.
func (sa *SplinterAllocator) InUse(slot SlotID) bool {
	return slot >= 0 && int(slot) < len(sa.inUse) && sa.inUse[slot]
}

// Owns reports whether slot is in use and hosts the splinter of the given
// segment end.
func (sa *SplinterAllocator) Owns(slot SlotID, ref SegmentRef, aftward bool) bool {
	return sa.InUse(slot) && sa.owners[slot] == slotOwner{ref: ref, aftward: aftward}
}

func (sa *SplinterAllocator) claim(slot SlotID, ref SegmentRef, aftward bool) {
	sa.owners[slot] = slotOwner{ref: ref, aftward: aftward}
}

// Acquire takes the next free slot or fails with core.ErrPoolExhausted.
func (sa *SplinterAllocator) Acquire() (SlotID, error) {
	slot, err := sa.free.Dequeue()
	if err != nil {
		return NoSlot, core.ErrPoolExhausted
	}
	sa.inUse[slot] = true
	return slot, nil
}

// Release collapses every face of slot and returns it to the pool. Releasing
// a free or unknown slot does nothing and returns false.
func (sa *SplinterAllocator) Release(slot SlotID) bool {
	if !sa.InUse(slot) {
		return false
	}
	_, tris, quads := sa.SlotRanges(slot)
	for i := tris.Start; i < tris.Start+tris.Count; i++ {
		sa.mesh.Triangles[i] = [3]uint32{}
	}
	for i := quads.Start; i < quads.Start+quads.Count; i++ {
		sa.mesh.Quads[i] = [4]uint32{}
	}
	sa.mesh.MarkDirty(tris.Kind, tris.Start, tris.Count)
	sa.mesh.MarkDirty(quads.Kind, quads.Start, quads.Count)

	sa.inUse[slot] = false
	if err := sa.free.Enqueue(slot); err != nil {
		core.Assert(false, "splinter slot %d released into a full pool", slot)
	}
	return true
}

// ReleaseAll releases every slot in use, lowest first.
func (sa *SplinterAllocator) ReleaseAll() int {
	released := 0
	for i := range sa.inUse {
		if sa.Release(SlotID(i)) {
			released++
		}
	}
	return released
}

// SlotRanges returns the mesh ranges reserved for slot.
func (sa *SplinterAllocator) SlotRanges(slot SlotID) (vertices, triangles, quads metadata.MeshRange) {
	s := uint32(slot)
	vertices = metadata.MeshRange{Kind: metadata.RangeVertices, Start: sa.vertexBase + s*sa.VerticesPerSlot, Count: sa.VerticesPerSlot}
	triangles = metadata.MeshRange{Kind: metadata.RangeTriangles, Start: sa.triangleBase + s*sa.TrianglesPerSlot, Count: sa.TrianglesPerSlot}
	quads = metadata.MeshRange{Kind: metadata.RangeQuads, Start: sa.quadBase + s*sa.QuadsPerSlot, Count: sa.QuadsPerSlot}
	return vertices, triangles, quads
}

// splinterGeometry is a slot's worth of geometry with slot-local indices.
type splinterGeometry struct {
	positions []math.Vec3
	triangles [][3]uint32
	quads     [][4]uint32
}

// generate builds a jagged stub standing on loop and pointing along dir.
func (sa *SplinterAllocator) generate(loop Loop, dir math.Vec3, upHint math.Vec3, length float32) (*splinterGeometry, error) {
	n := int(sa.numJags)
	positions := sa.mesh.Positions

	var corners [4]math.Vec3
	for i, v := range loop {
		corners[i] = positions[v]
	}
	origin := math.Centroid(corners[:]...)
	frame := math.NewFrame(dir, upHint)

	// Order the corners counter-clockwise around dir.
	order := [4]int{0, 1, 2, 3}
	var flat [4]math.Vec2
	for i, c := range corners {
		l := frame.ToLocal(c.Sub(origin))
		flat[i] = math.NewVec2(l.X, l.Y)
	}
	sort.Slice(order[:], func(a, b int) bool {
		pa, pb := flat[order[a]], flat[order[b]]
		return math.Atan2(pa.Y, pa.X) < math.Atan2(pb.Y, pb.X)
	})

	perEdge := n / 4
	base := make([]math.Vec3, n)
	base2D := make([]math.Vec2, n)
	for k := 0; k < 4; k++ {
		a, b := order[k], order[(k+1)%4]
		for j := 0; j < perEdge; j++ {
			i := k*perEdge + j
			t := float32(j) / float32(perEdge)
			if j == 0 {
				// exact copy so the stub meets the loop without a seam
				base[i] = corners[a]
			} else {
				base[i] = corners[a].Lerp(corners[b], t)
			}
			base2D[i] = flat[a].Lerp(flat[b], t)
		}
	}

	tip2D := make([]math.Vec2, n)
	tipZ := make([]float32, n)
	for i := 0; i < n; i++ {
		tip2D[i] = base2D[i].MulScalar(1 - sa.rng.InRange(0, splinterMaxShrink))
		offset := splinterLow
		if i%2 == 0 {
			offset = splinterHigh
		}
		z := offset * length * (1 + sa.rng.InRange(-0.25, 0.25))
		tipZ[i] = math.Clamp(z, splinterMinTip*length, length)
	}
	if left := sa.removeReflexTurns(tip2D); left > 0 {
		core.LogDebug("splinter ring kept %d reflex turns after %d passes, shrinking uniformly", left, sa.reflexRetries)
		for i := range tip2D {
			tip2D[i] = base2D[i].MulScalar(1 - splinterMaxShrink/2)
		}
	}

	toWorld := math.NewMat4FromFrame(frame, origin)
	tip := make([]math.Vec3, n)
	tipApexZ := float32(0)
	for i := 0; i < n; i++ {
		tip[i] = math.NewVec3(tip2D[i].X, tip2D[i].Y, tipZ[i]).Transform(toWorld)
		tipApexZ += tipZ[i]
	}
	tipApexZ = tipApexZ / float32(n) * sa.rng.InRange(0.6, 1.1)
	baseApex := origin
	tipApex := math.NewVec3(0, 0, tipApexZ).Transform(toWorld)

	geo := &splinterGeometry{
		positions: make([]math.Vec3, sa.VerticesPerSlot),
		triangles: make([][3]uint32, 0, sa.TrianglesPerSlot),
		quads:     make([][4]uint32, 0, sa.QuadsPerSlot),
	}
	u := uint32(n)
	copy(geo.positions[0:], base)
	copy(geo.positions[n:], tip)
	geo.positions[2*u] = baseApex
	geo.positions[2*u+1] = tipApex

	wallCopy := 2*u + 2
	tipCopy := wallCopy + u
	baseCopy := tipCopy + u
	for k := uint32(0); k < u; k++ {
		k1 := (k + 1) % u
		geo.positions[wallCopy+k] = base[k]
		geo.positions[tipCopy+k] = tip[k]
		geo.positions[baseCopy+k] = base[k]

		geo.quads = append(geo.quads, [4]uint32{wallCopy + k, k1, u + k1, u + k})
		geo.triangles = append(geo.triangles, [3]uint32{tipCopy + k, u + k1, 2*u + 1})
		geo.triangles = append(geo.triangles, [3]uint32{baseCopy + k, 2 * u, k1})
	}

	if uint32(len(geo.triangles)) != sa.TrianglesPerSlot || uint32(len(geo.quads)) != sa.QuadsPerSlot {
		return nil, fmt.Errorf("%w: splinter produced %d triangles and %d quads", core.ErrInvariantViolation, len(geo.triangles), len(geo.quads))
	}
	return geo, nil
}

// removeReflexTurns walks the ring and pulls every point that turns clockwise
// onto the midpoint of its neighbours. It gives up after reflexRetries passes
// and returns the number of reflex turns left.
func (sa *SplinterAllocator) removeReflexTurns(ring []math.Vec2) int {
	n := len(ring)
	reflex := 0
	for pass := uint32(0); pass < sa.reflexRetries; pass++ {
		reflex = 0
		for i := 0; i < n; i++ {
			prev, next := ring[(i+n-1)%n], ring[(i+1)%n]
			if isReflex(prev, ring[i], next) {
				ring[i] = prev.Lerp(next, 0.5).MulScalar(1 + 0.02*sa.rng.Float())
				reflex++
			}
		}
		if reflex == 0 {
			return 0
		}
	}
	return countReflex(ring)
}

func countReflex(ring []math.Vec2) int {
	n := len(ring)
	count := 0
	for i := 0; i < n; i++ {
		if isReflex(ring[(i+n-1)%n], ring[i], ring[(i+1)%n]) {
			count++
		}
	}
	return count
}

// isReflex reports a clockwise turn at p. Collinear points are not reflex.
func isReflex(prev, p, next math.Vec2) bool {
	e1, e2 := p.Sub(prev), next.Sub(p)
	return e1.Cross(e2) < -reflexTolerance*e1.Length()*e2.Length()
}

// write copies geo into slot, offsetting its indices by the slot's vertex base.
func (sa *SplinterAllocator) write(slot SlotID, geo *splinterGeometry, colour math.Vec4) {
	verts, tris, quads := sa.SlotRanges(slot)
	for i, p := range geo.positions {
		sa.mesh.Positions[verts.Start+uint32(i)] = p
		sa.mesh.Colours[verts.Start+uint32(i)] = colour
	}
	for i, t := range geo.triangles {
		sa.mesh.Triangles[tris.Start+uint32(i)] = [3]uint32{t[0] + verts.Start, t[1] + verts.Start, t[2] + verts.Start}
	}
	for i, q := range geo.quads {
		sa.mesh.Quads[quads.Start+uint32(i)] = [4]uint32{q[0] + verts.Start, q[1] + verts.Start, q[2] + verts.Start, q[3] + verts.Start}
	}
	sa.mesh.MarkDirty(verts.Kind, verts.Start, verts.Count)
	sa.mesh.MarkDirty(tris.Kind, tris.Start, tris.Count)
	sa.mesh.MarkDirty(quads.Kind, quads.Start, quads.Count)
}
