package metadata

import (
	"fmt"

	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
)

/** @brief The name used for quads not covered by any named group. */
const DefaultGroupName string = "default"

type RangeKind uint8

const (
	RangeVertices RangeKind = iota
	RangeTriangles
	RangeQuads
)

func (k RangeKind) String() string {
	switch k {
	case RangeVertices:
		return "vertices"
	case RangeTriangles:
		return "triangles"
	case RangeQuads:
		return "quads"
	}
	return "unknown"
}

/**
 * @brief A contiguous span of one of the mesh arrays that changed since the
 * last upload.
 */
type MeshRange struct {
	Kind  RangeKind
	Start uint32
	Count uint32
}

/**
 * @brief A named run of quads, as produced by the mesh builder (OBJ `g`/`o`
 * statements for loaded meshes).
 */
type QuadGroup struct {
	Name  string
	Start uint32
	Count uint32
}

/**
 * @brief Flat-shaded indexed mesh. The first index of every triangle and quad
 * is its provoking vertex: the face is drawn with that vertex's colour, so no
 * two live faces may share one.
 */
type Mesh struct {
	/** @brief The mesh name. */
	Name string
	/** @brief Vertex positions in object space. */
	Positions []math.Vec3
	/** @brief One colour per vertex; only provoking vertices are visible. */
	Colours   []math.Vec4
	Triangles [][3]uint32
	Quads     [][4]uint32
	Groups    []QuadGroup
	/** @brief Incremented every time the mesh changes. */
	Generation uint32

	dirty []MeshRange
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

func (m *Mesh) VertexCount() uint32 {
	return uint32(len(m.Positions))
}

func (m *Mesh) TriangleCount() uint32 {
	return uint32(len(m.Triangles))
}

func (m *Mesh) QuadCount() uint32 {
	return uint32(len(m.Quads))
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(position math.Vec3, colour math.Vec4) uint32 {
	m.Positions = append(m.Positions, position)
	m.Colours = append(m.Colours, colour)
	return uint32(len(m.Positions) - 1)
}

// AddQuad appends a quad; a is its provoking vertex.
func (m *Mesh) AddQuad(a, b, c, d uint32) uint32 {
	m.Quads = append(m.Quads, [4]uint32{a, b, c, d})
	return uint32(len(m.Quads) - 1)
}

// AddTriangle appends a triangle; a is its provoking vertex.
func (m *Mesh) AddTriangle(a, b, c uint32) uint32 {
	m.Triangles = append(m.Triangles, [3]uint32{a, b, c})
	return uint32(len(m.Triangles) - 1)
}

// BeginGroup starts a named group at the next quad index. The previous group,
// if any, ends there.
func (m *Mesh) BeginGroup(name string) {
	m.closeGroup()
	m.Groups = append(m.Groups, QuadGroup{Name: name, Start: m.QuadCount()})
}

// EndGroups closes the last open group.
func (m *Mesh) EndGroups() {
	m.closeGroup()
}

func (m *Mesh) closeGroup() {
	if n := len(m.Groups); n > 0 && m.Groups[n-1].Count == 0 {
		m.Groups[n-1].Count = m.QuadCount() - m.Groups[n-1].Start
		if m.Groups[n-1].Count == 0 {
			m.Groups = m.Groups[:n-1]
		}
	}
}

// GroupOfQuad returns the name of the group containing quad q.
func (m *Mesh) GroupOfQuad(q uint32) string {
	for _, g := range m.Groups {
		if q >= g.Start && q < g.Start+g.Count {
			return g.Name
		}
	}
	return DefaultGroupName
}

/**
 * @brief Appends blank, collapsed entries to every array in one go and
 * returns the index of the first appended vertex, triangle and quad. The
 * arrays are grown to exact capacity so later in-place writes never move them.
 */
func (m *Mesh) Reserve(vertices, triangles, quads uint32) (vertexBase, triangleBase, quadBase uint32) {
	vertexBase, triangleBase, quadBase = m.VertexCount(), m.TriangleCount(), m.QuadCount()

	positions := make([]math.Vec3, len(m.Positions), len(m.Positions)+int(vertices))
	copy(positions, m.Positions)
	m.Positions = append(positions, make([]math.Vec3, vertices)...)

	colours := make([]math.Vec4, len(m.Colours), len(m.Colours)+int(vertices))
	copy(colours, m.Colours)
	m.Colours = append(colours, make([]math.Vec4, vertices)...)

	tris := make([][3]uint32, len(m.Triangles), len(m.Triangles)+int(triangles))
	copy(tris, m.Triangles)
	m.Triangles = append(tris, make([][3]uint32, triangles)...)

	qs := make([][4]uint32, len(m.Quads), len(m.Quads)+int(quads))
	copy(qs, m.Quads)
	m.Quads = append(qs, make([][4]uint32, quads)...)

	m.MarkDirty(RangeVertices, vertexBase, vertices)
	m.MarkDirty(RangeTriangles, triangleBase, triangles)
	m.MarkDirty(RangeQuads, quadBase, quads)
	return vertexBase, triangleBase, quadBase
}

// MarkDirty records that a span changed and bumps the generation.
func (m *Mesh) MarkDirty(kind RangeKind, start, count uint32) {
	if count == 0 {
		return
	}
	m.Generation++
	if n := len(m.dirty); n > 0 {
		last := &m.dirty[n-1]
		if last.Kind == kind && last.Start+last.Count == start {
			last.Count += count
			return
		}
	}
	m.dirty = append(m.dirty, MeshRange{Kind: kind, Start: start, Count: count})
}

// TakeDirty returns the ranges changed since the previous call and clears them.
func (m *Mesh) TakeDirty() []MeshRange {
	out := m.dirty
	m.dirty = nil
	return out
}

// Clone returns a deep copy without pending dirty ranges.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:       m.Name,
		Positions:  append([]math.Vec3(nil), m.Positions...),
		Colours:    append([]math.Vec4(nil), m.Colours...),
		Triangles:  append([][3]uint32(nil), m.Triangles...),
		Quads:      append([][4]uint32(nil), m.Quads...),
		Groups:     append([]QuadGroup(nil), m.Groups...),
		Generation: m.Generation,
	}
	return out
}

// Extents returns the bounding box of every vertex position.
func (m *Mesh) Extents() math.Extents3D {
	e := math.NewExtents3DEmpty()
	for _, p := range m.Positions {
		e = e.Expand(p)
	}
	return e
}

// QuadLive reports whether q is drawn; collapsed quads repeat a single index.
func QuadLive(q [4]uint32) bool {
	return !(q[0] == q[1] && q[1] == q[2] && q[2] == q[3])
}

// TriangleLive reports whether t is drawn.
func TriangleLive(t [3]uint32) bool {
	return !(t[0] == t[1] && t[1] == t[2])
}

/**
 * @brief Verifies that every live face references valid vertices and that no
 * two live faces share a provoking vertex.
 *
 * @return nil or an error wrapping core.ErrInvariantViolation.
 */
func (m *Mesh) CheckProvokingVertices() error {
	n := m.VertexCount()
	owner := make(map[uint32]string, len(m.Quads)+len(m.Triangles))
	claim := func(v uint32, face string) error {
		if prev, ok := owner[v]; ok {
			return fmt.Errorf("%w: provoking vertex %d shared by %s and %s", core.ErrInvariantViolation, v, prev, face)
		}
		owner[v] = face
		return nil
	}
	inRange := func(face string, idx ...uint32) error {
		for _, v := range idx {
			if v >= n {
				return fmt.Errorf("%w: %s references vertex %d of %d", core.ErrInvariantViolation, face, v, n)
			}
		}
		return nil
	}
	for i, q := range m.Quads {
		if !QuadLive(q) {
			continue
		}
		face := fmt.Sprintf("quad %d", i)
		if err := inRange(face, q[:]...); err != nil {
			return err
		}
		if err := claim(q[0], face); err != nil {
			return err
		}
	}
	for i, t := range m.Triangles {
		if !TriangleLive(t) {
			continue
		}
		face := fmt.Sprintf("triangle %d", i)
		if err := inRange(face, t[:]...); err != nil {
			return err
		}
		if err := claim(t[0], face); err != nil {
			return err
		}
	}
	return nil
}
