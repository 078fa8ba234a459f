package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cablerouter/internal/routing"
	qrcode "github.com/skip2/go-qrcode"
)

// TagInfo holds the data encoded into each cable tag's QR code.
type TagInfo struct {
	CableID    string  `json:"id"`
	Label      string  `json:"label"`
	Diameter   float64 `json:"diameter_mm"`
	Length     float64 `json:"length_mm"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Terminals  int     `json:"terminals"`
	Waypoints  int     `json:"waypoints"`
	Collisions int     `json:"collisions"`
}

// Tag layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportTags generates a PDF sheet of QR-coded tags, one per routed cable.
// Each tag shows the cable label, its terminals and cut length, and a QR
// code encoding the TagInfo as JSON.
func ExportTags(path string, results []routing.RouteResult) error {
	tags := CollectTagInfos(results)
	if len(tags) == 0 {
		return ErrNothingToExport
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, tag := range tags {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderTag(pdf, x, y, i, tag); err != nil {
			return fmt.Errorf("failed to render tag for %q: %w", tag.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderTag draws a single tag at the given position.
func renderTag(pdf *fpdf.Fpdf, x, y float64, n int, info TagInfo) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal tag info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", n, info.CableID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Color stripe matching the cable in the PDF report
	c := colorFor(n)
	pdf.SetFillColor(c.R, c.G, c.B)
	pdf.Rect(x, y, 1.2, labelHeight, "F")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Label, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f mm long, d %.1f mm", info.Length, info.Diameter)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	ends := truncate(pdf, fmt.Sprintf("%s > %s", info.From, info.To), textW)
	pdf.CellFormat(textW, 3, ends, "", 1, "L", false, 0, "")

	if info.Collisions > 0 {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("%d collision(s)", info.Collisions), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits width in the current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectTagInfos extracts tag information from routed cables for use in
// testing or alternative export formats.
func CollectTagInfos(results []routing.RouteResult) []TagInfo {
	var tags []TagInfo
	for _, res := range results {
		terms := res.Cable.Terminals
		info := TagInfo{
			CableID:    res.Cable.ID,
			Label:      res.Cable.Label,
			Diameter:   res.Cable.Diameter,
			Length:     res.RefinedLength,
			Terminals:  len(terms),
			Waypoints:  len(res.Refined),
			Collisions: len(res.Collisions),
		}
		if len(terms) > 0 {
			info.From = terms[0].Name
			info.To = terms[len(terms)-1].Name
		}
		tags = append(tags, info)
	}
	return tags
}
