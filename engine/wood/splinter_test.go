package wood

import (
	"fmt"
	"testing"

	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/testbed"
)

func TestSplinterSlotSizes(t *testing.T) {
	tests := []struct {
		jags     uint32
		wantJags uint32
	}{
		{jags: 0, wantJags: DefaultNumJags},
		{jags: 4, wantJags: 4},
		{jags: 6, wantJags: 8},
		{jags: 13, wantJags: 16},
	}
	for _, tt := range tests {
		cfg := Config{MaxSplinters: 2, NumJags: tt.jags}
		mesh := testbed.NewPlankMesh(2)
		before := mesh.VertexCount()
		ws := BuildWoodState(mesh, cfg)
		a := ws.Splinters
		if ws.Config().NumJags != tt.wantJags {
			t.Errorf("NumJags %d normalized to %d, want %d", tt.jags, ws.Config().NumJags, tt.wantJags)
		}
		n := tt.wantJags
		if a.VerticesPerSlot != 5*n+2 || a.TrianglesPerSlot != 2*n || a.QuadsPerSlot != n {
			t.Errorf("jags %d: slot sizes %d/%d/%d", n, a.VerticesPerSlot, a.TrianglesPerSlot, a.QuadsPerSlot)
		}
		if got := mesh.VertexCount() - before; got != 2*a.VerticesPerSlot {
			t.Errorf("reserved %d vertices, want %d", got, 2*a.VerticesPerSlot)
		}
		v0, _, _ := a.SlotRanges(0)
		v1, _, _ := a.SlotRanges(1)
		if v0.Start != before || v1.Start != v0.Start+v0.Count {
			t.Errorf("slot ranges overlap or move: %+v %+v", v0, v1)
		}
	}
}

func TestSplinterAnchorsOnLoop(t *testing.T) {
	ws, h := plankState(t, 2, 2)
	seg, _ := ws.Segment(ref(1))
	positionsBefore := append(ws.Mesh.Positions[:0:0], ws.Mesh.Positions...)

	slot, ok := ws.BreakSegment(h, ref(1), true)
	if !ok {
		t.Fatal("break failed")
	}
	verts, _, _ := ws.Splinters.SlotRanges(slot)
	n := ws.Config().NumJags

	// Every loop corner reappears exactly on the base ring.
	for _, v := range seg.AftLoop {
		corner := ws.Mesh.Positions[v]
		found := false
		for i := uint32(0); i < n; i++ {
			if ws.Mesh.Positions[verts.Start+i] == corner {
				found = true
			}
		}
		if !found {
			t.Errorf("loop corner %d (%+v) missing from the base ring", v, corner)
		}
	}

	// The tip ring points away from the anchoring loop, along the segment.
	origin := seg.Centerline.Origin
	for i := n; i < 2*n; i++ {
		d := ws.Mesh.Positions[verts.Start+i].Sub(origin).Dot(seg.Frame.Forward)
		if d <= 0 || d > seg.Centerline.Length*1.0001 {
			t.Errorf("tip vertex %d sits %f along the segment", i, d)
		}
	}

	// Board vertices never move.
	for i := uint32(0); i < verts.Start; i++ {
		if ws.Mesh.Positions[i] != positionsBefore[i] {
			t.Errorf("vertex %d moved", i)
		}
	}
}

func TestSplinterIsDeterministic(t *testing.T) {
	build := func() []float32 {
		ws, h := plankState(t, 3, 2)
		slot, _ := ws.BreakSegment(h, ref(1), false)
		verts, _, _ := ws.Splinters.SlotRanges(slot)
		var out []float32
		for _, p := range ws.Mesh.Positions[verts.Start : verts.Start+verts.Count] {
			out = append(out, p.X, p.Y, p.Z)
		}
		return out
	}
	a, b := build(), build()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestAcquireExhaustsPool(t *testing.T) {
	ws := BuildWoodState(testbed.NewPlankMesh(1), Config{MaxSplinters: 2})
	a := ws.Splinters
	for want := SlotID(0); want < 2; want++ {
		slot, err := a.Acquire()
		if err != nil || slot != want {
			t.Fatalf("Acquire() = %d, %v; want %d", slot, err, want)
		}
	}
	if _, err := a.Acquire(); err == nil {
		t.Fatal("Acquire() on an empty pool succeeded")
	}
	if !a.Release(1) || a.Release(1) {
		t.Error("Release should succeed exactly once")
	}
	if slot, err := a.Acquire(); err != nil || slot != 1 {
		t.Errorf("Acquire() after release = %d, %v; want 1", slot, err)
	}
	if n := a.ReleaseAll(); n != 2 {
		t.Errorf("ReleaseAll() = %d, want 2", n)
	}
}

func TestSplinterTipRingIsConvex(t *testing.T) {
	for _, jags := range []uint32{4, 8, 16} {
		for _, seed := range []uint64{1, 7, 42, 1234, DefaultSeed} {
			t.Run(fmt.Sprintf("jags=%d/seed=%d", jags, seed), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.MaxSplinters = 1
				cfg.NumJags = jags
				cfg.Seed = seed
				ws := BuildWoodState(testbed.NewPlankMesh(2), cfg)
				h := NewWoodHealth(ws, DefaultMaxHealth)
				seg, _ := ws.Segment(ref(0))

				slot, ok := ws.BreakSegment(h, ref(0), true)
				if !ok {
					t.Fatal("break failed")
				}
				var corners []math.Vec3
				for _, v := range seg.AftLoop {
					corners = append(corners, ws.Mesh.Positions[v])
				}
				origin := math.Centroid(corners...)
				frame := math.NewFrame(seg.Frame.Forward, seg.Frame.Up)

				verts, _, _ := ws.Splinters.SlotRanges(slot)
				ring := make([]math.Vec2, jags)
				for i := range ring {
					l := frame.ToLocal(ws.Mesh.Positions[verts.Start+jags+uint32(i)].Sub(origin))
					ring[i] = math.NewVec2(l.X, l.Y)
				}
				if n := countReflex(ring); n != 0 {
					t.Errorf("tip ring has %d reflex turns: %v", n, ring)
				}
			})
		}
	}
}

func TestRemoveReflexTurnsIsBounded(t *testing.T) {
	// Regular octagon with one point pulled towards the centre.
	dented := func() []math.Vec2 {
		const d = 0.70710677
		return []math.Vec2{
			{X: 0.3, Y: 0}, {X: d, Y: d}, {X: 0, Y: 1}, {X: -d, Y: d},
			{X: -1, Y: 0}, {X: -d, Y: -d}, {X: 0, Y: -1}, {X: d, Y: -d},
		}
	}

	tests := []struct {
		retries   uint32
		wantLeft  int
		unchanged bool
	}{
		{retries: 0, wantLeft: 1, unchanged: true},
		{retries: 1, wantLeft: 0},
		{retries: 4, wantLeft: 0},
	}
	for _, tt := range tests {
		ring := dented()
		if n := countReflex(ring); n != 1 {
			t.Fatalf("dented ring has %d reflex turns, want 1", n)
		}
		sa := &SplinterAllocator{rng: math.NewRandom(DefaultSeed), reflexRetries: tt.retries}
		if left := sa.removeReflexTurns(ring); left != tt.wantLeft {
			t.Errorf("retries %d: %d reflex turns left, want %d", tt.retries, left, tt.wantLeft)
		}
		if got := ring[0] == dented()[0]; got != tt.unchanged {
			t.Errorf("retries %d: dent untouched = %v, want %v", tt.retries, got, tt.unchanged)
		}
	}
}
