// Package geom provides the 2D primitives used by the node-graph engine:
// points, axis-aligned rectangles, segment distance and cubic Bezier
// sampling. Points are sdfx v2 vectors so the engine shares one vector
// type with the sdfx geometry library.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Vec is a 2D point or displacement, in world or screen space.
type Vec = v2.Vec

// MinExtent is the smallest width or height a rectangle may have.
const MinExtent = 1.0

// V is shorthand for constructing a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec) float64 {
	return b.Sub(a).Length()
}

// Rect is an axis-aligned rectangle with ordered corners (Min <= Max).
type Rect struct {
	Min Vec `json:"min" yaml:"min"`
	Max Vec `json:"max" yaml:"max"`
}

// RectFromPosSize builds a rectangle from a top-left position and a size.
// Degenerate sizes are clamped to MinExtent.
func RectFromPosSize(pos, size Vec) Rect {
	w := math.Max(size.X, MinExtent)
	h := math.Max(size.Y, MinExtent)
	return Rect{Min: pos, Max: Vec{X: pos.X + w, Y: pos.Y + h}}
}

// NormalizeRect returns the rectangle spanned by two arbitrary corners.
func NormalizeRect(a, b Vec) Rect {
	return Rect{Min: a.Min(b), Max: a.Max(b)}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Size returns (width, height).
func (r Rect) Size() Vec {
	return r.Max.Sub(r.Min)
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec {
	return r.Min.Add(r.Max).MulScalar(0.5)
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return r.box().Contains(p)
}

// Intersects reports whether r and o overlap. Touching edges count.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return fromBox(r.box().Extend(o.box()))
}

// Expand grows the rectangle by margin on every side. A negative margin
// shrinks it, never past a zero-size rectangle at the center.
func (r Rect) Expand(margin float64) Rect {
	m := Vec{X: margin, Y: margin}
	out := Rect{Min: r.Min.Sub(m), Max: r.Max.Add(m)}
	if out.Min.X > out.Max.X || out.Min.Y > out.Max.Y {
		c := r.Center()
		return Rect{Min: c, Max: c}
	}
	return out
}

// Translate moves the rectangle by d.
func (r Rect) Translate(d Vec) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

func (r Rect) box() sdf.Box2 {
	return sdf.Box2{Min: r.Min, Max: r.Max}
}

func fromBox(b sdf.Box2) Rect {
	return Rect{Min: b.Min, Max: b.Max}
}

// Bounds returns the union of all rects. ok is false for an empty input.
func Bounds(rects []Rect) (bounds Rect, ok bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	bounds = rects[0]
	for _, r := range rects[1:] {
		bounds = bounds.Union(r)
	}
	return bounds, true
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid
// returns v unchanged.
func Snap(v Vec, grid float64) Vec {
	if grid <= 0 {
		return v
	}
	return Vec{
		X: math.Round(v.X/grid) * grid,
		Y: math.Round(v.Y/grid) * grid,
	}
}
