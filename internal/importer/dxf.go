package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImportObstaclesDXF turns DXF geometry into obstacle sample points. LINE,
// ARC, CIRCLE and LWPOLYLINE entities are walked and a point is emitted
// at least every step along them, ready for grid voxelization.
func ImportObstaclesDXF(path string, step float64) ImportResult {
	result := ImportResult{}
	if !(step > 0) {
		result.Errors = append(result.Errors, fmt.Sprintf("Sample step must be positive, got %v", step))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	skipped := 0
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.Line:
			a := r3.Vec{X: e.Start[0], Y: e.Start[1], Z: e.Start[2]}
			b := r3.Vec{X: e.End[0], Y: e.End[1], Z: e.End[2]}
			result.Points = append(result.Points, sampleSegment(a, b, step, true)...)

		case *entity.LwPolyline:
			result.Points = append(result.Points, samplePolyline(e, step)...)

		case *entity.Arc:
			result.Points = append(result.Points, sampleArc(e, step)...)

		case *entity.Circle:
			c := r3.Vec{X: e.Center[0], Y: e.Center[1], Z: e.Center[2]}
			result.Points = append(result.Points, sampleCircle(c, e.Radius, 0, 2*math.Pi, step)...)

		default:
			skipped++
		}
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}
	if len(result.Points) == 0 {
		result.Errors = append(result.Errors, "No obstacle geometry found in DXF file")
	}
	return result
}

// sampleSegment returns points from a towards b no more than step apart.
// The end point is included when withEnd is set.
func sampleSegment(a, b r3.Vec, step float64, withEnd bool) []r3.Vec {
	length := r3.Norm(r3.Sub(b, a))
	n := int(math.Ceil(length / step))
	if n < 1 {
		n = 1
	}
	pts := make([]r3.Vec, 0, n+1)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, r3.Add(a, r3.Scale(t, r3.Sub(b, a))))
	}
	if withEnd {
		pts = append(pts, b)
	}
	return pts
}

// samplePolyline walks the edges of a polyline outline, including the
// closing edge back to the first vertex. Bulges are ignored; curved edges
// are sampled along their chord.
func samplePolyline(lw *entity.LwPolyline, step float64) []r3.Vec {
	n := len(lw.Vertices)
	vertex := func(i int) r3.Vec {
		v := lw.Vertices[i%n]
		return r3.Vec{X: v[0], Y: v[1]}
	}
	switch n {
	case 0:
		return nil
	case 1:
		return []r3.Vec{vertex(0)}
	case 2:
		return sampleSegment(vertex(0), vertex(1), step, true)
	}
	var pts []r3.Vec
	for i := 0; i < n; i++ {
		pts = append(pts, sampleSegment(vertex(i), vertex(i+1), step, false)...)
	}
	return pts
}

// sampleArc samples an ARC entity between its start and end angles (degrees,
// counter-clockwise).
func sampleArc(a *entity.Arc, step float64) []r3.Vec {
	c := r3.Vec{X: a.Circle.Center[0], Y: a.Circle.Center[1], Z: a.Circle.Center[2]}
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}
	return sampleCircle(c, a.Circle.Radius, startRad, endRad, step)
}

// sampleCircle samples the arc of radius r around c in the XY plane from
// angle from to angle to, both ends included.
func sampleCircle(c r3.Vec, r, from, to, step float64) []r3.Vec {
	n := int(math.Ceil(r * (to - from) / step))
	if n < 4 {
		n = 4
	}
	pts := make([]r3.Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		angle := from + (to-from)*float64(i)/float64(n)
		pts = append(pts, r3.Vec{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle), Z: c.Z})
	}
	return pts
}
