// Package export writes routed cables to files: DXF geometry, a PDF
// report, QR-coded cable tags and an Excel workbook.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/routing"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNothingToExport is returned when an export is asked to write no cables.
var ErrNothingToExport = errors.New("no routed cables to export")

// cableColor is an RGB color used for one cable in every export.
type cableColor struct {
	R, G, B int
}

func (c cableColor) rgba() color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// cableColors cycles across cables in input order.
var cableColors = []cableColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(i int) cableColor {
	return cableColors[i%len(cableColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// projection maps a 3D point onto one of the report's view planes.
type projection struct {
	Name   string
	XLabel string
	YLabel string
	Map    func(p r3.Vec) (float64, float64)
}

var projections = []projection{
	{Name: "Top view (XY)", XLabel: "X (mm)", YLabel: "Y (mm)", Map: func(p r3.Vec) (float64, float64) { return p.X, p.Y }},
	{Name: "Front view (XZ)", XLabel: "X (mm)", YLabel: "Z (mm)", Map: func(p r3.Vec) (float64, float64) { return p.X, p.Z }},
}

// ExportPDF writes a routing report: a summary page with one table row per
// cable, then one page per projection showing obstacles and routes.
func ExportPDF(path string, g *grid.VoxelGrid, results []routing.RouteResult) error {
	if len(results) == 0 {
		return ErrNothingToExport
	}
	if g == nil {
		return fmt.Errorf("grid is required for the PDF report")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderSummaryPage(pdf, g, results)

	obstacles := obstacleCenters(g)
	for i, proj := range projections {
		img, err := renderProjection(proj, g, obstacles, results)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", proj.Name, err)
		}
		pdf.AddPage()
		renderProjectionPage(pdf, proj, fmt.Sprintf("projection_%d", i), img)
	}

	return pdf.OutputFileAndClose(path)
}

// renderSummaryPage draws the grid statistics and the per-cable table.
func renderSummaryPage(pdf *fpdf.Fpdf, g *grid.VoxelGrid, results []routing.RouteResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cable Routing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Grid", "", 0, "L", false, 0, "")
	y += 9

	b := g.Bounds()
	gridItems := []struct {
		label string
		value string
	}{
		{"Cells per axis", fmt.Sprintf("%d", g.Size())},
		{"Cell size", fmt.Sprintf("%.2f mm", g.CellSize())},
		{"Obstacle cells", fmt.Sprintf("%d", g.ObstacleCount())},
		{"Bounds", fmt.Sprintf("(%.0f, %.0f, %.0f) - (%.0f, %.0f, %.0f)",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)},
		{"Cables routed", fmt.Sprintf("%d", len(results))},
		{"Total length", fmt.Sprintf("%.1f mm", totalLength(results))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range gridItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cables", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{8, 50, 25, 30, 30, 30, 30, 30}
	headers := []string{"", "Cable", "Diameter", "Algorithm", "Waypoints", "Length", "Cost", "Refined cost"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, res := range results {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		alg := string(res.Algorithm)
		if res.FallbackUsed {
			alg += " (A*)"
		}
		rowData := []string{
			"",
			res.Cable.Label,
			fmt.Sprintf("%.1f mm", res.Cable.Diameter),
			alg,
			fmt.Sprintf("%d", len(res.Refined)),
			fmt.Sprintf("%.1f mm", res.RefinedLength),
			fmt.Sprintf("%.0f", res.Cost),
			fmt.Sprintf("%.0f", res.RefinedCost),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}

		// Color swatch in the first column
		col := colorFor(i)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(marginLeft+2, y+1.5, 4, 3, "F")
		y += 6
	}

	var warnings []string
	for _, res := range results {
		warnings = append(warnings, res.Warnings...)
	}
	if len(warnings) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Collisions", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, w := range warnings {
			if y > pageHeight-marginBottom-5 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(260, 5, "- "+w, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CableRouter - 3D Cable Routing", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderProjectionPage places a rendered projection PNG under a title.
func renderProjectionPage(pdf *fpdf.Fpdf, proj projection, imgName string, img []byte) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, proj.Name, "", 0, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(img))

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom
	// Images are rendered square, so fit the shorter side.
	side := min(drawWidth, drawHeight)
	pdf.ImageOptions(imgName, marginLeft+(drawWidth-side)/2, drawAreaTop, side, side, false, opts, 0, "")
}

// renderProjection plots obstacle cell centers and every routed cable on
// one view plane and returns the PNG bytes.
func renderProjection(proj projection, g *grid.VoxelGrid, obstacles []r3.Vec, results []routing.RouteResult) ([]byte, error) {
	p := plot.New()
	p.Title.Text = proj.Name
	p.X.Label.Text = proj.XLabel
	p.Y.Label.Text = proj.YLabel

	b := g.Bounds()
	p.X.Min, p.Y.Min = proj.Map(b.Min)
	p.X.Max, p.Y.Max = proj.Map(b.Max)
	p.Add(plotter.NewGrid())

	if len(obstacles) > 0 {
		pts := make(plotter.XYs, len(obstacles))
		for i, o := range obstacles {
			pts[i].X, pts[i].Y = proj.Map(o)
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 160, G: 160, B: 160, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		scatter.GlyphStyle.Shape = draw.BoxGlyph{}
		p.Add(scatter)
		p.Legend.Add("obstacles", scatter)
	}

	for i, res := range results {
		if len(res.Refined) < 2 {
			continue
		}
		pts := make(plotter.XYs, len(res.Refined))
		for j, w := range res.Refined {
			pts[j].X, pts[j].Y = proj.Map(w)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = colorFor(i).rgba()
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(res.Cable.Label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func obstacleCenters(g *grid.VoxelGrid) []r3.Vec {
	cells := g.Obstacles()
	centers := make([]r3.Vec, len(cells))
	for i, c := range cells {
		centers[i] = g.Center(c)
	}
	return centers
}

func totalLength(results []routing.RouteResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.RefinedLength
	}
	return total
}
