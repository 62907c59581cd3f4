package wood

import (
	"testing"

	"github.com/spaghettifunk/timber/engine/renderer/metadata"
	"github.com/spaghettifunk/timber/testbed"
)

func plankState(t *testing.T, segments int, maxSplinters uint32) (*WoodState, *WoodHealth) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxSplinters = maxSplinters
	ws := BuildWoodState(testbed.NewPlankMesh(segments), cfg)
	if got := ws.Stats().Boards; got != 1 {
		t.Fatalf("plank with %d segments: got %d boards, want 1 (rejected: %v)", segments, got, ws.Rejected)
	}
	return ws, NewWoodHealth(ws, DefaultMaxHealth)
}

func ref(segment int) SegmentRef {
	return SegmentRef{Group: 0, Board: 0, Segment: segment}
}

func liveFaces(m *metadata.Mesh) (tris, quads int) {
	for _, t := range m.Triangles {
		if metadata.TriangleLive(t) {
			tris++
		}
	}
	for _, q := range m.Quads {
		if metadata.QuadLive(q) {
			quads++
		}
	}
	return tris, quads
}

func assertProvoking(t *testing.T, m *metadata.Mesh) {
	t.Helper()
	if err := m.CheckProvokingVertices(); err != nil {
		t.Fatalf("provoking vertices: %v", err)
	}
}
