package raster

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
	"golang.org/x/image/draw"
)

// Options controls a preview render.
type Options struct {
	Size        int
	Supersample int
	Yaw         float32
	Pitch       float32
	Background  color.NRGBA
}

func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Yaw:         35,
		Pitch:       25,
		Background:  color.NRGBA{R: 24, G: 28, B: 36, A: 255},
	}
}

// Stats reports what a render drew.
type Stats struct {
	Triangles int
	Quads     int
	Pixels    int
}

/**
 * @brief Renders the live faces of mesh with flat shading. Each face takes the
 * colour of its provoking vertex, the same rule the GPU path follows.
 *
 * @return The image at opts.Size and what was drawn.
 */
func Render(mesh *metadata.Mesh, opts Options) (*image.NRGBA, Stats) {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	side := opts.Size * opts.Supersample
	fb := NewFrameBuffer(side, side)
	fb.Clear(opts.Background)

	cam := NewOrbitCamera(liveExtents(mesh), opts.Yaw, opts.Pitch)
	projected := make([]screenVertex, len(mesh.Positions))
	for i, p := range mesh.Positions {
		x, y, z := cam.Project(p, side, side)
		projected[i] = screenVertex{x, y, z}
	}
	light := math.NewVec3(0.4, 0.8, 0.45).Normalized()

	var stats Stats
	face := func(idx ...uint32) {
		p0, p1, p2 := mesh.Positions[idx[0]], mesh.Positions[idx[1]], mesh.Positions[idx[2]]
		var n math.Vec3
		if len(idx) == 4 {
			n = math.QuadNormal(p0, p1, p2, mesh.Positions[idx[3]])
		} else {
			n = math.TriangleNormal(p0, p1, p2)
		}
		shade := 0.35 + 0.65*abs(n.Normalized().Dot(light))
		c := mesh.Colours[idx[0]]
		r := uint8(math.Clamp(c.X*shade, 0, 1) * 255)
		g := uint8(math.Clamp(c.Y*shade, 0, 1) * 255)
		b := uint8(math.Clamp(c.Z*shade, 0, 1) * 255)

		for k := 1; k+1 < len(idx); k++ {
			stats.Pixels += rasterizeTriangle(fb, projected[idx[0]], projected[idx[k]], projected[idx[k+1]], r, g, b)
		}
	}

	n := mesh.VertexCount()
	for _, q := range mesh.Quads {
		if !metadata.QuadLive(q) || q[0] >= n || q[1] >= n || q[2] >= n || q[3] >= n {
			continue
		}
		face(q[:]...)
		stats.Quads++
	}
	for _, t := range mesh.Triangles {
		if !metadata.TriangleLive(t) || t[0] >= n || t[1] >= n || t[2] >= n {
			continue
		}
		face(t[:]...)
		stats.Triangles++
	}
	core.LogDebug("preview of '%s': %d quads, %d triangles, %d pixels", mesh.Name, stats.Quads, stats.Triangles, stats.Pixels)

	return Downsample(fb.Image(), opts.Size), stats
}

// liveExtents bounds the vertices used by live faces, so unused splinter
// slots parked at the origin do not skew the framing.
func liveExtents(mesh *metadata.Mesh) math.Extents3D {
	e := math.NewExtents3DEmpty()
	n := mesh.VertexCount()
	for _, q := range mesh.Quads {
		if !metadata.QuadLive(q) {
			continue
		}
		for _, v := range q {
			if v < n {
				e = e.Expand(mesh.Positions[v])
			}
		}
	}
	if e.Min.X > e.Max.X {
		return mesh.Extents()
	}
	return e
}

// Downsample shrinks img to a size x size square with CatmullRom filtering.
func Downsample(img *image.NRGBA, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
