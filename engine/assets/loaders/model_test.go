package loaders

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

const boxObj = `# a unit box
o crate
v 0 0 0 1 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
g lid
f 5/1/1 6/2/1 7/3/1 8/4/1
g walls
f 1//2 4//2 3//2 2//2
f -8 -7 -3 -4
f 2 3 7 6
f 3 4 8 7
f 4 1 5 8
f 1 2 6
f 1 2 3 4 5
`

func TestParseObj(t *testing.T) {
	m, err := ParseObj(strings.NewReader(boxObj), "crate")
	if err != nil {
		t.Fatalf("ParseObj: %v", err)
	}
	if m.VertexCount() != 8 || m.QuadCount() != 6 || m.TriangleCount() != 1 {
		t.Fatalf("counts = %d/%d/%d, want 8/6/1", m.VertexCount(), m.QuadCount(), m.TriangleCount())
	}
	if m.Colours[0] != math.NewVec4(1, 0, 0, 1) {
		t.Errorf("explicit colour = %+v", m.Colours[0])
	}
	if m.Colours[1] != defaultVertexColour {
		t.Errorf("default colour = %+v", m.Colours[1])
	}
	if m.Quads[0] != [4]uint32{4, 5, 6, 7} {
		t.Errorf("lid = %v", m.Quads[0])
	}
	if m.Quads[2] != [4]uint32{0, 1, 5, 4} {
		t.Errorf("negative indices resolved to %v", m.Quads[2])
	}
	tests := []struct {
		quad uint32
		want string
	}{
		{quad: 0, want: "lid"},
		{quad: 1, want: "walls"},
		{quad: 5, want: "walls"},
	}
	for _, tt := range tests {
		if got := m.GroupOfQuad(tt.quad); got != tt.want {
			t.Errorf("GroupOfQuad(%d) = %q, want %q", tt.quad, got, tt.want)
		}
	}
}

func TestParseObjErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "short vertex", src: "v 1 2\n"},
		{name: "bad number", src: "v 1 two 3\n"},
		{name: "index out of range", src: "v 0 0 0\nf 1 2 3\n"},
		{name: "bad index", src: "v 0 0 0\nf a b c\n"},
	}
	for _, tt := range tests {
		if _, err := ParseObj(strings.NewReader(tt.src), tt.name); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestWriteObjSkipsCollapsedFaces(t *testing.T) {
	m, err := ParseObj(strings.NewReader(boxObj), "crate")
	if err != nil {
		t.Fatal(err)
	}
	m.Quads[3] = [4]uint32{1, 1, 1, 1}

	var buf bytes.Buffer
	if err := WriteObj(&buf, m); err != nil {
		t.Fatalf("WriteObj: %v", err)
	}
	back, err := ParseObj(&buf, "crate")
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if back.QuadCount() != 5 || back.TriangleCount() != 1 {
		t.Errorf("re-parsed counts = %d quads, %d triangles", back.QuadCount(), back.TriangleCount())
	}
	if back.Positions[6] != m.Positions[6] || back.Colours[0] != m.Colours[0] {
		t.Error("vertex data changed across a write")
	}
}

func TestModelLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crate.obj")
	if err := os.WriteFile(path, []byte(boxObj), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := (&ModelLoader{}).Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Name != "crate" || res.Type != metadata.ResourceTypeMesh {
		t.Errorf("resource = %+v", res)
	}
	if _, ok := res.Data.(*metadata.Mesh); !ok {
		t.Errorf("Data is %T, want *metadata.Mesh", res.Data)
	}
	if _, err := (&ModelLoader{}).Load(filepath.Join(t.TempDir(), "missing.obj"), nil); err == nil {
		t.Error("loading a missing file succeeded")
	}
}
