package raster

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/timber/engine/math"
)

// Camera is an orthographic orbit camera framing a bounding box.
type Camera struct {
	viewProj mgl32.Mat4
}

/**
 * @brief Frames extents from the direction given by yaw and pitch (degrees),
 * with an orthographic projection wide enough for the whole box.
 */
func NewOrbitCamera(extents math.Extents3D, yaw, pitch float32) *Camera {
	c := extents.Center()
	center := mgl32.Vec3{c.X, c.Y, c.Z}
	radius := extents.Size().Length() * 0.5
	if radius < 1e-3 {
		radius = 1
	}

	y, p := mgl32.DegToRad(yaw), mgl32.DegToRad(pitch)
	dir := mgl32.Vec3{
		cos(p) * sin(y),
		sin(p),
		cos(p) * cos(y),
	}
	eye := center.Add(dir.Mul(radius * 3))
	up := mgl32.Vec3{0, 1, 0}
	if abs(dir.Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}

	view := mgl32.LookAtV(eye, center, up)
	proj := mgl32.Ortho(-radius, radius, -radius, radius, radius, radius*5)
	return &Camera{viewProj: proj.Mul4(view)}
}

// Project maps p to pixel coordinates of a w x h target plus a closeness
// value that grows towards the camera.
func (c *Camera) Project(p math.Vec3, w, h int) (x, y, closeness float32) {
	ndc := mgl32.TransformCoordinate(mgl32.Vec3{p.X, p.Y, p.Z}, c.viewProj)
	x = (ndc.X() + 1) * 0.5 * float32(w)
	y = (1 - ndc.Y()) * 0.5 * float32(h)
	return x, y, -ndc.Z()
}
