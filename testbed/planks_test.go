package testbed

import (
	"testing"
)

func TestPlankCounts(t *testing.T) {
	tests := []struct {
		segments int
		vertices uint32
		quads    uint32
	}{
		{segments: 1, vertices: 8, quads: 6},
		{segments: 2, vertices: 12, quads: 10},
		{segments: 5, vertices: 24, quads: 22},
	}
	for _, tt := range tests {
		m := NewPlankMesh(tt.segments)
		if m.VertexCount() != tt.vertices || m.QuadCount() != tt.quads {
			t.Errorf("segments=%d: got %d vertices %d quads, want %d/%d",
				tt.segments, m.VertexCount(), m.QuadCount(), tt.vertices, tt.quads)
		}
		if err := m.CheckProvokingVertices(); err != nil {
			t.Errorf("segments=%d: %v", tt.segments, err)
		}
	}
}

func TestHullMeshGroups(t *testing.T) {
	m := NewHullMesh(DefaultHull())
	if err := m.CheckProvokingVertices(); err != nil {
		t.Fatalf("hull provoking vertices: %v", err)
	}
	names := map[string]bool{}
	for _, g := range m.Groups {
		names[g.Name] = true
	}
	for _, want := range []string{"hull", "ribs", "mast"} {
		if !names[want] {
			t.Errorf("missing group %q in %+v", want, m.Groups)
		}
	}
	if got := m.GroupOfQuad(m.QuadCount() - 1); got != "mast" {
		t.Errorf("last quad group = %q, want mast", got)
	}
	if got := m.GroupOfQuad(0); got != "hull" {
		t.Errorf("first quad group = %q, want hull", got)
	}
}
