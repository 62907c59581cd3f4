package wood

import (
	"testing"

	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

func TestBreakWithSingleSlot(t *testing.T) {
	ws, h := plankState(t, 2, 1)

	slot, ok := ws.BreakSegment(h, ref(0), true)
	if !ok || slot != 0 {
		t.Fatalf("first break = (%d, %v), want (0, true)", slot, ok)
	}
	slot, ok = ws.BreakSegment(h, ref(1), true)
	if ok || slot != NoSlot {
		t.Fatalf("second break = (%d, %v), want (%d, false)", slot, ok, NoSlot)
	}
	if !h.Broken(ref(1)) {
		t.Error("segment without a splinter should still be broken")
	}
	seg1, _ := ws.Segment(ref(1))
	for _, qi := range seg1.Quads() {
		if !metadata.QuadLive(ws.Mesh.Quads[qi]) {
			t.Errorf("quad %d collapsed although no splinter was produced", qi)
		}
	}
	assertProvoking(t, ws.Mesh)

	ws.RepairSegment(h, ref(0))
	if h.Broken(ref(0)) {
		t.Error("repaired segment still broken")
	}
	if ws.Splinters.FreeSlots() != 1 {
		t.Errorf("FreeSlots() = %d after repair, want 1", ws.Splinters.FreeSlots())
	}
	slot, ok = ws.BreakSegment(h, ref(0), true)
	if !ok || slot != 0 {
		t.Fatalf("break after repair = (%d, %v), want (0, true)", slot, ok)
	}
	assertProvoking(t, ws.Mesh)
}

func TestBreakCollapsesSegment(t *testing.T) {
	ws, h := plankState(t, 3, 4)
	seg, _ := ws.Segment(ref(1))
	ws.Mesh.TakeDirty()

	slot, ok := ws.BreakSegment(h, ref(1), false)
	if !ok {
		t.Fatal("break failed")
	}
	for _, qi := range seg.Quads() {
		if metadata.QuadLive(ws.Mesh.Quads[qi]) {
			t.Errorf("quad %d of broken segment still live", qi)
		}
	}
	sh, _ := h.Segment(ref(1))
	if sh.Health != 0 || !sh.Broken || sh.SplinterFwd != slot || sh.SplinterAft != NoSlot {
		t.Errorf("health record after break = %+v", sh)
	}

	tris, quads := liveFaces(ws.Mesh)
	a := ws.Splinters
	if uint32(tris) != a.TrianglesPerSlot {
		t.Errorf("live triangles = %d, want %d", tris, a.TrianglesPerSlot)
	}
	// 14 plank quads, 4 collapsed, plus the splinter walls.
	if want := 14 - 4 + int(a.QuadsPerSlot); quads != want {
		t.Errorf("live quads = %d, want %d", quads, want)
	}

	kinds := map[metadata.RangeKind]bool{}
	for _, r := range ws.Mesh.TakeDirty() {
		kinds[r.Kind] = true
	}
	for _, k := range []metadata.RangeKind{metadata.RangeVertices, metadata.RangeTriangles, metadata.RangeQuads} {
		if !kinds[k] {
			t.Errorf("no dirty %s range after break", k)
		}
	}

	again, ok := ws.BreakSegment(h, ref(1), false)
	if !ok || again != slot {
		t.Errorf("second break of the same end = (%d, %v), want (%d, true)", again, ok, slot)
	}
	if ws.Splinters.FreeSlots() != 3 {
		t.Errorf("FreeSlots() = %d, want 3", ws.Splinters.FreeSlots())
	}

	other, ok := ws.BreakSegment(h, ref(1), true)
	if !ok || other == slot {
		t.Errorf("break of the other end = (%d, %v)", other, ok)
	}
	assertProvoking(t, ws.Mesh)
}

func TestBreakWithoutPool(t *testing.T) {
	ws, h := plankState(t, 2, 0)
	if slot, ok := ws.BreakSegment(h, ref(0), true); ok || slot != NoSlot {
		t.Errorf("break without pool = (%d, %v)", slot, ok)
	}
	if !h.Broken(ref(0)) {
		t.Error("segment should break even without a pool")
	}
	if len(ws.Mesh.TakeDirty()) != 0 {
		t.Error("break without a pool touched the mesh")
	}
	if ws.RemoveSplinterEnd(0) {
		t.Error("RemoveSplinterEnd without pool returned true")
	}
	ws.Reset()
	if _, quads := liveFaces(ws.Mesh); quads != 10 {
		t.Errorf("live quads after reset = %d, want 10", quads)
	}
}

func TestPoolBound(t *testing.T) {
	ws, h := plankState(t, 6, 3)
	attached := 0
	for s := 0; s < 6; s++ {
		if _, ok := ws.BreakSegment(h, ref(s), s%2 == 0); ok {
			attached++
		}
		in := 0
		for slot := 0; slot < ws.Splinters.Capacity(); slot++ {
			if ws.Splinters.InUse(SlotID(slot)) {
				in++
			}
		}
		if in > ws.Splinters.Capacity() || in+ws.Splinters.FreeSlots() != ws.Splinters.Capacity() {
			t.Fatalf("pool accounting broken: %d in use, %d free", in, ws.Splinters.FreeSlots())
		}
	}
	if attached != 3 {
		t.Errorf("attached %d splinters, want 3", attached)
	}
	assertProvoking(t, ws.Mesh)
}

func TestRemoveSplinterEnd(t *testing.T) {
	ws, h := plankState(t, 2, 2)
	slot, _ := ws.BreakSegment(h, ref(0), true)

	if !ws.RemoveSplinterEnd(slot) {
		t.Fatal("RemoveSplinterEnd of a live slot returned false")
	}
	if ws.RemoveSplinterEnd(slot) {
		t.Error("removing a free slot returned true")
	}
	if ws.RemoveSplinterEnd(SlotID(99)) {
		t.Error("removing an unknown slot returned true")
	}
	if tris, _ := liveFaces(ws.Mesh); tris != 0 {
		t.Errorf("live triangles = %d after removal, want 0", tris)
	}
}

func TestResetRestoresMesh(t *testing.T) {
	ws, h := plankState(t, 4, 8)
	original := ws.Mesh.Clone()

	ws.BreakSegment(h, ref(0), true)
	ws.BreakSegment(h, ref(2), false)
	ws.BreakSegment(h, ref(2), true)
	ws.RepairSegment(h, ref(0))
	ws.BreakSegment(h, ref(3), true)
	ws.Mesh.Quads[1] = [4]uint32{7, 7, 7, 7}

	ws.Reset()
	h.Reset()
	assertEqualFaces(t, original, ws.Mesh)
	if ws.Splinters.FreeSlots() != ws.Splinters.Capacity() {
		t.Errorf("FreeSlots() = %d after reset, want %d", ws.Splinters.FreeSlots(), ws.Splinters.Capacity())
	}
	for s := 0; s < 4; s++ {
		if sh, _ := h.Segment(ref(s)); sh.Broken || sh.Health != h.MaxHealth || sh.SplinterAft != NoSlot || sh.SplinterFwd != NoSlot {
			t.Errorf("segment %d after reset = %+v", s, sh)
		}
	}

	ws.Mesh.TakeDirty()
	generation := ws.Mesh.Generation
	ws.Reset()
	assertEqualFaces(t, original, ws.Mesh)
	if ws.Mesh.Generation != generation || len(ws.Mesh.TakeDirty()) != 0 {
		t.Error("second reset changed the mesh")
	}
}

func assertEqualFaces(t *testing.T, want, got *metadata.Mesh) {
	t.Helper()
	if len(want.Quads) != len(got.Quads) || len(want.Triangles) != len(got.Triangles) {
		t.Fatalf("array sizes changed: %d/%d quads, %d/%d triangles",
			len(got.Quads), len(want.Quads), len(got.Triangles), len(want.Triangles))
	}
	for i := range want.Quads {
		if want.Quads[i] != got.Quads[i] {
			t.Errorf("quad %d = %v, want %v", i, got.Quads[i], want.Quads[i])
		}
	}
	for i := range want.Triangles {
		if want.Triangles[i] != got.Triangles[i] {
			t.Errorf("triangle %d = %v, want %v", i, got.Triangles[i], want.Triangles[i])
		}
	}
}

func TestBreakAfterStateReset(t *testing.T) {
	ws, h := plankState(t, 2, 2)
	if _, ok := ws.BreakSegment(h, ref(0), true); !ok {
		t.Fatal("first break failed")
	}
	ws.Reset()

	slot, ok := ws.BreakSegment(h, ref(0), true)
	if !ok || !ws.Splinters.InUse(slot) {
		t.Fatalf("break after reset = (%d, %v), in use %v", slot, ok, ws.Splinters.InUse(slot))
	}
	if tris, _ := liveFaces(ws.Mesh); tris != int(ws.Splinters.TrianglesPerSlot) {
		t.Errorf("%d live splinter triangles, want %d", tris, ws.Splinters.TrianglesPerSlot)
	}
	seg, _ := ws.Segment(ref(0))
	for _, qi := range seg.Quads() {
		if metadata.QuadLive(ws.Mesh.Quads[qi]) {
			t.Errorf("quad %d still live after the second break", qi)
		}
	}
	if sh, _ := h.Segment(ref(0)); sh.SplinterAft != slot {
		t.Errorf("SplinterAft = %d, want %d", sh.SplinterAft, slot)
	}
	assertProvoking(t, ws.Mesh)
}

func TestRepairIgnoresReassignedSlot(t *testing.T) {
	ws, h := plankState(t, 2, 1)
	if slot, ok := ws.BreakSegment(h, ref(0), true); !ok || slot != 0 {
		t.Fatalf("first break = (%d, %v)", slot, ok)
	}
	ws.Reset()
	slot, ok := ws.BreakSegment(h, ref(1), true)
	if !ok || slot != 0 {
		t.Fatalf("break of second segment = (%d, %v), want (0, true)", slot, ok)
	}

	ws.RepairSegment(h, ref(0))
	if !ws.Splinters.Owns(slot, ref(1), true) {
		t.Fatal("repairing the first segment released the second segment's splinter")
	}
	if tris, _ := liveFaces(ws.Mesh); tris != int(ws.Splinters.TrianglesPerSlot) {
		t.Errorf("%d live splinter triangles, want %d", tris, ws.Splinters.TrianglesPerSlot)
	}
	if sh, _ := h.Segment(ref(0)); sh.Broken || sh.SplinterAft != NoSlot {
		t.Errorf("repaired record = %+v", *sh)
	}
}
