package testbed

import (
	m "math"

	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// HullConfig controls the procedural boat used by the demo.
type HullConfig struct {
	Strakes  int
	Segments int
	Length   float32
	Beam     float32
	Ribs     int
}

func DefaultHull() HullConfig {
	return HullConfig{
		Strakes:  5,
		Segments: 8,
		Length:   6,
		Beam:     1.6,
		Ribs:     4,
	}
}

/**
 * @brief Builds a small open boat: bent hull strakes on both sides, a row of
 * rib boxes and a mast, each in its own named group.
 */
func NewHullMesh(cfg HullConfig) *metadata.Mesh {
	mesh := metadata.NewMesh("hull")
	forward := math.NewVec3(0, 0, 1)
	segLen := cfg.Length / float32(cfg.Segments)
	strakeDepth := float32(0.04)
	strakeWidth := float32(0.22)

	mesh.BeginGroup("hull")
	for side := -1; side <= 1; side += 2 {
		for s := 0; s < cfg.Strakes; s++ {
			height := float32(s) * strakeWidth
			flare := 1 + 0.12*float32(s)
			x := float32(side) * cfg.Beam * 0.5 * flare
			tilt := float32(side) * (0.25 + 0.05*float32(s))
			up := math.NewVec3(float32(m.Sin(float64(tilt))), float32(m.Cos(float64(tilt))), 0)
			AddPlank(mesh, PlankConfig{
				Segments:      cfg.Segments,
				SegmentLength: segLen,
				Width:         strakeDepth,
				Depth:         strakeWidth * 0.95,
				Origin:        math.NewVec3(x, height, -cfg.Length*0.5),
				Frame:         math.NewFrame(forward, up),
				Bend:          float32(-side) * cfg.Beam * 0.25 / flare,
				Colour:        math.NewVec4(0.52, 0.33, 0.18, 1),
			})
		}
	}

	mesh.BeginGroup("ribs")
	for r := 0; r < cfg.Ribs; r++ {
		z := -cfg.Length*0.35 + cfg.Length*0.7*float32(r)/float32(max(cfg.Ribs-1, 1))
		AddBox(mesh, math.NewVec3(0, -0.05, z), math.NewVec3(cfg.Beam*0.8, 0.06, 0.08), math.NewVec4(0.4, 0.26, 0.14, 1))
	}

	mesh.BeginGroup("mast")
	AddPlank(mesh, PlankConfig{
		Segments:      6,
		SegmentLength: 0.6,
		Width:         0.12,
		Depth:         0.12,
		Origin:        math.NewVec3(0, 0, cfg.Length*0.1),
		Frame:         math.NewFrame(math.NewVec3Up(), math.NewVec3(0, 0, 1)),
		Colour:        math.NewVec4(0.6, 0.45, 0.28, 1),
	})
	mesh.EndGroups()
	return mesh
}
