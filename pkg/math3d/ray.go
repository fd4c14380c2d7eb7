package math3d

import "math"

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectBox tests the ray against an axis-aligned box using the slab
// method. It returns the entry distance (0 when the origin is inside).
func (r Ray) IntersectBox(b Box3) (float64, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	tmin, tmax := math.Inf(-1), math.Inf(1)

	slab := func(origin, dir, lo, hi float64) bool {
		if dir == 0 {
			return origin >= lo && origin <= hi
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		return true
	}

	if !slab(r.Origin.X, r.Direction.X, b.Min.X, b.Max.X) ||
		!slab(r.Origin.Y, r.Direction.Y, b.Min.Y, b.Max.Y) ||
		!slab(r.Origin.Z, r.Direction.Z, b.Min.Z, b.Max.Z) {
		return 0, false
	}
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

// IntersectTriangle implements the Möller–Trumbore test. Both faces of the
// triangle are hit.
func (r Ray) IntersectTriangle(v0, v1, v2 Vec3) (float64, bool) {
	const epsilon = 1e-9

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
