package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned region of space in mm.
type Box struct {
	Min r3.Vec `json:"min"`
	Max r3.Vec `json:"max"`
}

// BoxFromCorners builds a box spanning two opposite corners given in any order.
func BoxFromCorners(a, b r3.Vec) Box {
	return Box{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// BoxFromCenterAndGap builds a cube with edge length gap centered on center.
func BoxFromCenterAndGap(center r3.Vec, gap float64) Box {
	half := r3.Vec{X: gap / 2, Y: gap / 2, Z: gap / 2}
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Size returns the extent along each axis.
func (b Box) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Gap returns the edge length along X. For cubic boxes this is the edge length.
func (b Box) Gap() float64 {
	return b.Max.X - b.Min.X
}

// Contains reports whether p lies inside the box, boundary included.
func (b Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Clamp moves p to the nearest point inside the box.
func (b Box) Clamp(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Min(math.Max(p.X, b.Min.X), b.Max.X),
		Y: math.Min(math.Max(p.Y, b.Min.Y), b.Max.Y),
		Z: math.Min(math.Max(p.Z, b.Min.Z), b.Max.Z),
	}
}

// IsCubic reports whether all three extents agree within a relative tolerance.
func (b Box) IsCubic(tol float64) bool {
	s := b.Size()
	largest := math.Max(s.X, math.Max(s.Y, s.Z))
	smallest := math.Min(s.X, math.Min(s.Y, s.Z))
	return largest-smallest <= tol*largest
}

// Expand grows the box by margin on every side.
func (b Box) Expand(margin float64) Box {
	m := r3.Vec{X: margin, Y: margin, Z: margin}
	return Box{Min: r3.Sub(b.Min, m), Max: r3.Add(b.Max, m)}
}

// Cubify returns the smallest cube sharing this box's center that contains it.
func (b Box) Cubify() Box {
	s := b.Size()
	return BoxFromCenterAndGap(b.Center(), math.Max(s.X, math.Max(s.Y, s.Z)))
}

// BoundsOf returns the tight box around points. It returns false when
// points is empty.
func BoundsOf(points []r3.Vec) (Box, bool) {
	if len(points) == 0 {
		return Box{}, false
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	}
	return b, true
}
