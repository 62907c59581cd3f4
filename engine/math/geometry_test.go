package math

import "testing"

func assertUnit(t *testing.T, name string, v Vec3) {
	t.Helper()
	if l := v.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("%s length = %f, want 1", name, l)
	}
}

func TestNewFrameIsOrthonormal(t *testing.T) {
	tests := []struct {
		name    string
		forward Vec3
		up      Vec3
	}{
		{name: "axis aligned", forward: Vec3{0, 0, 1}, up: Vec3{0, 1, 0}},
		{name: "skewed hint", forward: Vec3{1, 0, 1}, up: Vec3{0.2, 1, 0}},
		{name: "parallel hint", forward: Vec3{0, 1, 0}, up: Vec3{0, 3, 0}},
		{name: "zero hint", forward: Vec3{0, 0, 2}, up: Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(tt.forward, tt.up)
			assertUnit(t, "right", f.Right)
			assertUnit(t, "up", f.Up)
			assertUnit(t, "forward", f.Forward)
			if d := f.Up.Dot(f.Forward); kabs(d) > 1e-4 {
				t.Errorf("up.forward = %f", d)
			}
			if d := f.Right.Dot(f.Forward); kabs(d) > 1e-4 {
				t.Errorf("right.forward = %f", d)
			}
			if d := f.Right.Dot(f.Up); kabs(d) > 1e-4 {
				t.Errorf("right.up = %f", d)
			}
		})
	}
}

func TestNewFrameKeepsSmallHints(t *testing.T) {
	tests := []struct {
		name string
		up   Vec3
	}{
		{name: "unit", up: Vec3{0, 1, 0}},
		{name: "millimetre", up: Vec3{0, 5e-6, 0}},
		{name: "skewed millimetre", up: Vec3{0, 5e-6, 3e-6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(Vec3{0, 0, 1}, tt.up)
			if d := f.Up.Dot(Vec3{0, 1, 0}); d < 0.999 {
				t.Errorf("up = %+v, want the hint direction", f.Up)
			}
		})
	}
}

func TestFrameMatrixRoundTrip(t *testing.T) {
	f := NewFrame(Vec3{0, 0, 1}, Vec3{0, 1, 0})
	origin := Vec3{3, 4, 5}
	mat := NewMat4FromFrame(f, origin)
	local := Vec3{1, 2, 3}
	world := local.Transform(mat)
	back := f.ToLocal(world.Sub(origin))
	if !back.Compare(local, 1e-5) {
		t.Fatalf("round trip = %+v, want %+v", back, local)
	}
}

func TestQuadNormalMagnitude(t *testing.T) {
	n := QuadNormal(Vec3{0, 0, 0}, Vec3{2, 0, 0}, Vec3{2, 3, 0}, Vec3{0, 3, 0})
	if got := n.Length(); kabs(got-12) > 1e-5 {
		t.Errorf("|QuadNormal| = %f, want twice the area (12)", got)
	}
}

func TestExtentsUnion(t *testing.T) {
	e := NewExtents3DEmpty().Expand(Vec3{1, 1, 1}).Expand(Vec3{-1, 2, 0})
	other := NewExtents3DEmpty().Expand(Vec3{5, -3, 0})
	u := e.Union(other)
	if u.Min != (Vec3{-1, -3, 0}) || u.Max != (Vec3{5, 2, 1}) {
		t.Fatalf("Union = %+v", u)
	}
	if !u.Contains(Vec3{0, 0, 0.5}) {
		t.Error("expected union to contain interior point")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1.5, 0.0, 1.0) != 0 || Clamp(2, 1, 3) != 2 {
		t.Error("Clamp returned an out of range value")
	}
}

func TestRandomIsSeeded(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	for i := 0; i < 8; i++ {
		x, y := a.InRange(-1, 1), b.InRange(-1, 1)
		if x != y {
			t.Fatalf("draw %d differs: %f vs %f", i, x, y)
		}
		if x < -1 || x >= 1 {
			t.Fatalf("draw %d out of range: %f", i, x)
		}
	}
}
