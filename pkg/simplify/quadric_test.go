package simplify

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestQuadricFromPlaneEval(t *testing.T) {
	// Plane z = 2, unit normal (0, 0, 1), d = -2.
	q := quadricFromPlane(0, 0, 1, -2)

	tests := []struct {
		x, y, z float64
		want    float64
	}{
		{0, 0, 2, 0},  // on the plane
		{5, -3, 2, 0}, // still on the plane
		{0, 0, 3, 1},  // distance 1
		{1, 1, 0, 4},  // distance 2, squared
		{0, 0, -1, 9}, // below the plane
		{10, 10, 2.5, 0.25},
	}
	for _, tt := range tests {
		got := q.eval(tt.x, tt.y, tt.z)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("eval(%g, %g, %g) = %g, want %g", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}

func TestQuadricAdd(t *testing.T) {
	// Sum of the quadrics of z = 0 and x = 0 measures the squared distance
	// to both planes.
	q := quadricFromPlane(0, 0, 1, 0).add(quadricFromPlane(1, 0, 0, 0))

	got := q.eval(3, 7, 4)
	want := 9.0 + 16.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("eval on summed quadric = %g, want %g", got, want)
	}
}

func TestQuadricTiltedPlane(t *testing.T) {
	// Plane x + y + z = 1 with unit normal.
	s := 1 / math.Sqrt(3)
	q := quadricFromPlane(s, s, s, -s)

	// Point (1, 1, 1) is at distance (3-1)/sqrt(3) from the plane.
	d := 2 / math.Sqrt(3)
	got := q.eval(1, 1, 1)
	if math.Abs(got-d*d) > 1e-12 {
		t.Errorf("eval(1,1,1) = %g, want %g", got, d*d)
	}
}

func TestQuadricDet(t *testing.T) {
	// The upper-left 3x3 block of a single-plane quadric is nn', rank one
	// and singular.
	q := quadricFromPlane(0, 0, 1, -2)
	if det := q.det(0, 1, 2, 1, 4, 5, 2, 5, 7); det != 0 {
		t.Errorf("rank-one quadric determinant = %g, want 0", det)
	}

	// Three orthogonal planes give the identity block.
	q = quadricFromPlane(1, 0, 0, 0).
		add(quadricFromPlane(0, 1, 0, 0)).
		add(quadricFromPlane(0, 0, 1, 0))
	if det := q.det(0, 1, 2, 1, 4, 5, 2, 5, 7); math.Abs(det-1) > 1e-12 {
		t.Errorf("identity block determinant = %g, want 1", det)
	}
}

func TestOptimalPointSolve(t *testing.T) {
	// Three orthogonal planes meeting at (1, 2, 3): the optimal collapse
	// point must be their intersection, with zero error.
	s := &Simplifier{
		verts: []vertexData{
			{q: quadricFromPlane(1, 0, 0, -1).add(quadricFromPlane(0, 1, 0, -2))},
			{q: quadricFromPlane(0, 0, 1, -3)},
		},
	}

	err, p, tgt := s.calculateError(0, 1)
	if tgt != collapseMidpoint {
		t.Errorf("expected direct-solve classification, got %v", tgt)
	}
	want := mgl64.Vec3{1, 2, 3}
	for i := range want {
		if math.Abs(p[i]-want[i]) > 1e-9 {
			t.Errorf("optimal point[%d] = %g, want %g", i, p[i], want[i])
		}
	}
	if math.Abs(err) > 1e-9 {
		t.Errorf("optimal point error = %g, want 0", err)
	}
}

func TestCalculateErrorBorderFallback(t *testing.T) {
	// Both endpoints on a border: the direct solve is skipped and the best
	// of the endpoints and midpoint wins. A flat edge ties all three and
	// must prefer the midpoint.
	q := quadricFromPlane(0, 0, 1, 0)
	s := &Simplifier{
		verts: []vertexData{
			{p: mgl64.Vec3{0, 0, 0}, q: q, border: true},
			{p: mgl64.Vec3{2, 0, 0}, q: q, border: true},
		},
	}

	errVal, p, tgt := s.calculateError(0, 1)
	if tgt != collapseMidpoint {
		t.Errorf("expected midpoint on tie, got %v", tgt)
	}
	if p != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("expected midpoint (1,0,0), got %v", p)
	}
	if errVal != 0 {
		t.Errorf("expected zero error in plane, got %g", errVal)
	}
}

func TestCalculateErrorPrefersBetterEndpoint(t *testing.T) {
	// Summed planes: z=0 once, z=1 five times. Errors are 5 at endpoint 0,
	// 1 at endpoint 1 and 1.5 at the midpoint, so endpoint 1 must win.
	q0 := quadricFromPlane(0, 0, 1, 0)
	q1 := quadric{}
	for i := 0; i < 5; i++ {
		q1 = q1.add(quadricFromPlane(0, 0, 1, -1))
	}
	s := &Simplifier{
		verts: []vertexData{
			{p: mgl64.Vec3{0, 0, 0}, q: q0, border: true},
			{p: mgl64.Vec3{0, 0, 1}, q: q1, border: true},
		},
	}

	errVal, p, tgt := s.calculateError(0, 1)
	if tgt != collapseEndpoint1 {
		t.Errorf("expected endpoint1 classification, got %v", tgt)
	}
	if p != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("expected endpoint1 position, got %v", p)
	}
	if math.Abs(errVal-1) > 1e-12 {
		t.Errorf("expected error 1, got %g", errVal)
	}
}
