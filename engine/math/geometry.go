package math

// QuadNormal returns the cross product of the quad's diagonals. Its length is
// twice the quad area, so callers can compare faces by magnitude before
// normalizing.
func QuadNormal(p0, p1, p2, p3 Vec3) Vec3 {
	d0 := p2.Sub(p0)
	d1 := p3.Sub(p1)
	return d0.Cross(d1)
}

// TriangleNormal returns the unnormalized face normal of a triangle.
func TriangleNormal(p0, p1, p2 Vec3) Vec3 {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)
	return edge1.Cross(edge2)
}

// Centroid returns the average of the given points.
func Centroid(points ...Vec3) Vec3 {
	if len(points) == 0 {
		return NewVec3Zero()
	}
	sum := NewVec3Zero()
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.MulScalar(1.0 / float32(len(points)))
}

// StablePerpendicular returns a unit vector perpendicular to dir, built from
// the world axis least aligned with it so the choice does not flicker.
func StablePerpendicular(dir Vec3) Vec3 {
	axis := NewVec3Right()
	ax, ay, az := kabs(dir.X), kabs(dir.Y), kabs(dir.Z)
	if ay <= ax && ay <= az {
		axis = NewVec3Up()
	} else if az <= ax && az <= ay {
		axis = Vec3{0, 0, 1}
	}
	return dir.Cross(axis).Normalized()
}

// NewFrame builds an orthonormal frame whose Forward is forward and whose Up
// is the component of upHint perpendicular to it. Zero hints and hints
// parallel to forward, judged relative to the hint's own length, fall back to
// StablePerpendicular.
func NewFrame(forward, upHint Vec3) Frame {
	fwd := forward.Normalized()
	if fwd.LengthSquared() == 0 {
		fwd = Vec3{0, 0, 1}
	}
	up := upHint.Sub(fwd.MulScalar(upHint.Dot(fwd)))
	if l := up.Length(); l < K_LENGTH_EPSILON || l <= upHint.Length()*1e-4 {
		up = StablePerpendicular(fwd)
	} else {
		up = up.Normalized()
	}
	return Frame{
		Right:   up.Cross(fwd),
		Up:      up,
		Forward: fwd,
	}
}

// ToLocal expresses the world-space offset d in frame coordinates.
func (f Frame) ToLocal(d Vec3) Vec3 {
	return Vec3{d.Dot(f.Right), d.Dot(f.Up), d.Dot(f.Forward)}
}
