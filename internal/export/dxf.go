package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/routing"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"gonum.org/v1/gonum/spatial/r3"
)

// dxfColors cycles across cable layers, matching the order of cableColors
// as closely as the ACI palette allows.
var dxfColors = []color.ColorNumber{
	color.Green,
	color.Blue,
	color.Yellow,
	color.Magenta,
	color.Cyan,
	color.Red,
}

// boundsLayer holds the wireframe of the routing region.
const boundsLayer = "BOUNDS"

// ExportDXF writes every routed cable as 3D LINE entities on its own layer
// named CABLE_<label>. Each terminal is marked with a circle of the cable's
// radius. When bounds is non-nil its wireframe goes on the BOUNDS layer.
func ExportDXF(path string, results []routing.RouteResult, bounds *model.Box) error {
	if len(results) == 0 {
		return ErrNothingToExport
	}

	d := dxf.NewDrawing()

	if bounds != nil {
		if _, err := d.AddLayer(boundsLayer, color.White, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", boundsLayer, err)
		}
		for _, edge := range boxEdges(*bounds) {
			if err := line(d, edge[0], edge[1]); err != nil {
				return err
			}
		}
	}

	used := make(map[string]bool)
	for i, res := range results {
		name := uniqueLayer(layerName(res.Cable.Label), used)
		if _, err := d.AddLayer(name, dxfColors[i%len(dxfColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", name, err)
		}

		for j := 1; j < len(res.Refined); j++ {
			if err := line(d, res.Refined[j-1], res.Refined[j]); err != nil {
				return fmt.Errorf("cable %q: %w", res.Cable.Label, err)
			}
		}
		for _, t := range res.Cable.Terminals {
			p := t.Position
			if _, err := d.Circle(p.X, p.Y, p.Z, res.Cable.Diameter/2); err != nil {
				return fmt.Errorf("cable %q terminal %q: %w", res.Cable.Label, t.Name, err)
			}
		}
	}

	return d.SaveAs(path)
}

func line(d *drawing.Drawing, a, b r3.Vec) error {
	_, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	return err
}

// layerName builds a DXF-safe layer name from a cable label.
func layerName(label string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(label))
	if clean == "" {
		clean = "UNNAMED"
	}
	return "CABLE_" + strings.ToUpper(clean)
}

// uniqueLayer returns base, or base with the first free numeric suffix
// when another cable already claimed it.
func uniqueLayer(base string, used map[string]bool) string {
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	used[name] = true
	return name
}

// boxEdges returns the 12 edges of b.
func boxEdges(b model.Box) [][2]r3.Vec {
	lo, hi := b.Min, b.Max
	corner := func(x, y, z bool) r3.Vec {
		c := lo
		if x {
			c.X = hi.X
		}
		if y {
			c.Y = hi.Y
		}
		if z {
			c.Z = hi.Z
		}
		return c
	}
	var edges [][2]r3.Vec
	for _, a := range []bool{false, true} {
		for _, c := range []bool{false, true} {
			edges = append(edges,
				[2]r3.Vec{corner(false, a, c), corner(true, a, c)},
				[2]r3.Vec{corner(a, false, c), corner(a, true, c)},
				[2]r3.Vec{corner(a, c, false), corner(a, c, true)},
			)
		}
	}
	return edges
}
