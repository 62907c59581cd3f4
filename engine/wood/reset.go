package wood

import (
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

/**
 * @brief Breaks the referenced segment. The segment is marked broken and, when
 * a splinter slot is free, its own quads collapse and a splinter stub is
 * generated on its aft loop (pointing fwd) or its fwd loop (pointing aft).
 *
 * Breaking an end that already carries a splinter returns that slot and
 * changes nothing. When the pool is exhausted the segment is marked broken,
 * the mesh is left untouched and (NoSlot, false) is returned.
 *
 * @param h The health records of this state.
 * @param ref The segment to break.
 * @param aftward True to splinter the aft end, false for the fwd end.
 * @return The slot hosting the splinter and whether one is attached.
 */
func (ws *WoodState) BreakSegment(h *WoodHealth, ref SegmentRef, aftward bool) (SlotID, bool) {
	seg, ok := ws.Segment(ref)
	sh, hok := h.Segment(ref)
	if !core.Assert(ok && hok, "break of unknown segment %+v", ref) {
		return NoSlot, false
	}

	end := &sh.SplinterFwd
	if aftward {
		end = &sh.SplinterAft
	}
	if *end != NoSlot {
		if ws.Splinters != nil && ws.Splinters.Owns(*end, ref, aftward) {
			return *end, true
		}
		// stale after a state-only reset
		*end = NoSlot
	}

	sh.Broken = true
	sh.Health = 0
	if ws.Splinters == nil {
		return NoSlot, false
	}
	slot, err := ws.Splinters.Acquire()
	if err != nil {
		core.LogDebug("wood %s: segment %+v broken without splinter: %s", core.ShortIdentifier(ws.ID), ref, err.Error())
		return NoSlot, false
	}
	colour := ws.segmentColour(seg)
	ws.collapseSegment(seg)

	loop, dir := seg.AftLoop, seg.Frame.Forward
	if !aftward {
		loop, dir = seg.FwdLoop, seg.Frame.Forward.MulScalar(-1)
	}
	geo, err := ws.Splinters.generate(loop, dir, seg.Frame.Up, seg.Centerline.Length)
	if err != nil {
		core.Assert(false, "splinter generation: %s", err.Error())
		ws.Splinters.Release(slot)
		return NoSlot, false
	}
	ws.Splinters.write(slot, geo, colour)
	ws.Splinters.claim(slot, ref, aftward)
	*end = slot
	return slot, true
}

// RemoveSplinterEnd collapses the faces of slot and frees it. Removing a free
// slot is a no-op.
func (ws *WoodState) RemoveSplinterEnd(slot SlotID) bool {
	if ws.Splinters == nil {
		return false
	}
	return ws.Splinters.Release(slot)
}

// RepairSegment releases the segment's splinters, restores its quads and its
// health. Slots recorded in h but since handed to another segment are left
// alone. Repairing an intact segment changes nothing.
func (ws *WoodState) RepairSegment(h *WoodHealth, ref SegmentRef) {
	seg, ok := ws.Segment(ref)
	sh, hok := h.Segment(ref)
	if !core.Assert(ok && hok, "repair of unknown segment %+v", ref) {
		return
	}
	for i, end := range []*SlotID{&sh.SplinterAft, &sh.SplinterFwd} {
		if *end != NoSlot && ws.Splinters != nil && ws.Splinters.Owns(*end, ref, i == 0) {
			ws.RemoveSplinterEnd(*end)
		}
		*end = NoSlot
	}
	ws.restoreSegment(seg)
	sh.Broken = false
	sh.Health = h.MaxHealth
}

// Reset rewrites every board quad from its stored loop winding and releases
// all splinter slots. Calling it repeatedly leaves the arrays unchanged.
func (ws *WoodState) Reset() {
	ws.EachSegment(func(_ SegmentRef, seg *Segment) {
		ws.restoreSegment(seg)
	})
	if ws.Splinters != nil {
		if n := ws.Splinters.ReleaseAll(); n > 0 {
			core.LogDebug("wood %s: reset released %d splinters", core.ShortIdentifier(ws.ID), n)
		}
	}
}

func (ws *WoodState) restoreSegment(seg *Segment) {
	for _, owned := range seg.ownedQuads() {
		qi := owned[1]
		want := seg.windings[owned[0]].resolve(seg.AftLoop, seg.FwdLoop)
		if ws.Mesh.Quads[qi] != want {
			ws.Mesh.Quads[qi] = want
			ws.Mesh.MarkDirty(metadata.RangeQuads, uint32(qi), 1)
		}
	}
}

// collapseSegment hides the segment by collapsing each of its quads onto its
// provoking vertex.
func (ws *WoodState) collapseSegment(seg *Segment) {
	for _, qi := range seg.Quads() {
		q := ws.Mesh.Quads[qi]
		if !metadata.QuadLive(q) {
			continue
		}
		ws.Mesh.Quads[qi] = [4]uint32{q[0], q[0], q[0], q[0]}
		ws.Mesh.MarkDirty(metadata.RangeQuads, uint32(qi), 1)
	}
}

// segmentColour is the colour of the segment's first side face.
func (ws *WoodState) segmentColour(seg *Segment) math.Vec4 {
	provoking := seg.windings[0].resolve(seg.AftLoop, seg.FwdLoop)[0]
	if int(provoking) < len(ws.Mesh.Colours) {
		return ws.Mesh.Colours[provoking]
	}
	return math.NewVec4One()
}
