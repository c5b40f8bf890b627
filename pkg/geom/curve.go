package geom

import "math"

// SegmentDistance returns the distance from p to the segment a-b.
// The projection parameter is clamped to [0,1]; a zero-length segment
// degenerates to the distance from p to a.
func SegmentDistance(p, a, b Vec) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return Dist(p, a)
	}
	t := p.Sub(a).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	closest := a.Add(d.MulScalar(t))
	return Dist(p, closest)
}

// CubicBezier evaluates the cubic Bezier with control points p0..p3 at t.
func CubicBezier(p0, p1, p2, p3 Vec, t float64) Vec {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return p0.MulScalar(b0).
		Add(p1.MulScalar(b1)).
		Add(p2.MulScalar(b2)).
		Add(p3.MulScalar(b3))
}

// Tessellate samples the cubic Bezier into segments+1 points, endpoints
// included. segments is clamped to at least 1.
func Tessellate(p0, p1, p2, p3 Vec, segments int) []Vec {
	if segments < 1 {
		segments = 1
	}
	pts := make([]Vec, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		pts[i] = CubicBezier(p0, p1, p2, p3, t)
	}
	// Pin the ends so floating-point noise never moves them.
	pts[0] = p0
	pts[segments] = p3
	return pts
}

// ConnectionControls returns the four control points of the horizontal
// S-curve drawn between two sockets. The horizontal control offset is
// max(minOffset, |dx|*ratio) on both ends.
func ConnectionControls(start, end Vec, minOffset, ratio float64) [4]Vec {
	dx := end.X - start.X
	off := math.Max(minOffset, math.Abs(dx)*ratio)
	return [4]Vec{
		start,
		{X: start.X + off, Y: start.Y},
		{X: end.X - off, Y: end.Y},
		end,
	}
}

// PolylineDistance returns the smallest distance from p to any segment of
// the polyline. Zero-length segments are skipped; a polyline made only of
// coincident points falls back to point distance. Empty input yields +Inf.
func PolylineDistance(p Vec, pts []Vec) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return Dist(p, pts[0])
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if a == b {
			continue
		}
		if d := SegmentDistance(p, a, b); d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return Dist(p, pts[0])
	}
	return best
}
