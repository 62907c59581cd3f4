package raster

import (
	gomath "math"
)

func sin(x float32) float32 { return float32(gomath.Sin(float64(x))) }
func cos(x float32) float32 { return float32(gomath.Cos(float64(x))) }
func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// screenVertex is a projected vertex.
type screenVertex struct {
	x, y, z float32
}

// rasterizeTriangle fills a flat-coloured triangle with depth testing.
func rasterizeTriangle(fb *FrameBuffer, v0, v1, v2 screenVertex, r, g, b uint8) int {
	minX := int(gomath.Floor(float64(min(v0.x, v1.x, v2.x))))
	maxX := int(gomath.Ceil(float64(max(v0.x, v1.x, v2.x))))
	minY := int(gomath.Floor(float64(min(v0.y, v1.y, v2.y))))
	maxY := int(gomath.Ceil(float64(max(v0.y, v1.y, v2.y))))

	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, fb.Width-1), min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return 0
	}

	det := (v1.y-v2.y)*(v0.x-v2.x) + (v2.x-v1.x)*(v0.y-v2.y)
	if det > -1e-8 && det < 1e-8 {
		return 0
	}
	invDet := 1 / det

	dy12 := v1.y - v2.y
	dx21 := v2.x - v1.x
	dy20 := v2.y - v0.y
	dx02 := v0.x - v2.x

	written := 0
	for sy := minY; sy <= maxY; sy++ {
		py := float32(sy) + 0.5 - v2.y
		row := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			px := float32(sx) + 0.5 - v2.x
			w0 := (dy12*px + dx21*py) * invDet
			w1 := (dy20*px + dx02*py) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*v0.z + w1*v1.z + w2*v2.z
			idx := row + sx
			if z <= fb.ZBuf[idx] {
				continue
			}
			fb.ZBuf[idx] = z
			fb.Color[idx*4] = r
			fb.Color[idx*4+1] = g
			fb.Color[idx*4+2] = b
			fb.Color[idx*4+3] = 255
			written++
		}
	}
	return written
}
