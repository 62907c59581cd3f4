package testbed

import (
	m "math"

	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// PlankConfig describes a straight or gently bent rectangular plank.
type PlankConfig struct {
	Segments      int
	SegmentLength float32
	Width         float32
	Depth         float32
	Origin        math.Vec3
	// Frame orients the plank: it runs along Forward, Width spans Right.
	Frame math.Frame
	// Bend displaces the loops along Right by Bend*sin(pi*t).
	Bend   float32
	Colour math.Vec4
}

// DefaultPlank is a two metre, four segment deck board running along +z.
func DefaultPlank() PlankConfig {
	return PlankConfig{
		Segments:      4,
		SegmentLength: 0.5,
		Width:         0.2,
		Depth:         0.05,
		Frame:         math.NewFrame(math.NewVec3(0, 0, 1), math.NewVec3Up()),
		Colour:        math.NewVec4(0.55, 0.36, 0.2, 1),
	}
}

/**
 * @brief Appends a plank to mesh: a back cap, four side quads per segment and
 * a front cap. Every face gets its own provoking vertex; side 0 of each
 * segment borrows its fwd loop corner so the caps still find a free one.
 *
 * @return The index of the plank's back cap quad.
 */
func AddPlank(mesh *metadata.Mesh, cfg PlankConfig) uint32 {
	if cfg.Segments < 1 {
		core.LogWarn("Segments must be a positive number. Defaulting to one.")
		cfg.Segments = 1
	}
	hw, hd := cfg.Width*0.5, cfg.Depth*0.5
	corners := [4]math.Vec2{
		math.NewVec2(-hw, -hd),
		math.NewVec2(hw, -hd),
		math.NewVec2(hw, hd),
		math.NewVec2(-hw, hd),
	}

	loops := make([][4]uint32, cfg.Segments+1)
	for l := range loops {
		t := float32(l) / float32(cfg.Segments)
		bend := cfg.Bend * float32(m.Sin(m.Pi*float64(t)))
		for k, c := range corners {
			local := math.NewVec3(c.X+bend, c.Y, float32(l)*cfg.SegmentLength)
			p := local.Transform(math.NewMat4FromFrame(cfg.Frame, cfg.Origin))
			shade := 1 - 0.04*float32((l+k)%3)
			colour := math.NewVec4(cfg.Colour.X*shade, cfg.Colour.Y*shade, cfg.Colour.Z*shade, cfg.Colour.W)
			loops[l][k] = mesh.AddVertex(p, colour)
		}
	}

	first := loops[0]
	backCap := mesh.AddQuad(first[0], first[3], first[2], first[1])
	for s := 0; s < cfg.Segments; s++ {
		a, b := loops[s], loops[s+1]
		mesh.AddQuad(b[0], a[0], a[1], b[1])
		for k := 1; k < 4; k++ {
			k1 := (k + 1) % 4
			mesh.AddQuad(a[k], a[k1], b[k1], b[k])
		}
	}
	last := loops[cfg.Segments]
	mesh.AddQuad(last[1], last[2], last[3], last[0])
	return backCap
}

// NewPlankMesh builds a mesh holding a single default plank with the given
// number of segments.
func NewPlankMesh(segments int) *metadata.Mesh {
	mesh := metadata.NewMesh("plank")
	cfg := DefaultPlank()
	cfg.Segments = segments
	AddPlank(mesh, cfg)
	return mesh
}

// AddBox appends a closed box, which reads as a single-segment board.
func AddBox(mesh *metadata.Mesh, origin math.Vec3, size math.Vec3, colour math.Vec4) uint32 {
	cfg := PlankConfig{
		Segments:      1,
		SegmentLength: size.Z,
		Width:         size.X,
		Depth:         size.Y,
		Origin:        origin,
		Frame:         math.NewFrame(math.NewVec3(0, 0, 1), math.NewVec3Up()),
		Colour:        colour,
	}
	return AddPlank(mesh, cfg)
}
