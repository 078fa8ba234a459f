package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/cablerouter/internal/routing"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	summarySheet      = "Summary"
	maxSheetNameLen   = 31
	invalidSheetChars = `[]:*?/\`
)

var summaryHeader = []interface{}{
	"Cable", "Diameter (mm)", "Algorithm", "Fallback", "Terminals", "Waypoints",
	"Length (mm)", "Refined length (mm)", "Cost", "Refined cost", "Evaluations", "Collisions",
}

var waypointHeader = []interface{}{"#", "X (mm)", "Y (mm)", "Z (mm)", "Segment length (mm)"}

// ExportSummaryExcel writes a workbook with a Summary sheet listing every
// cable and one sheet per cable holding its refined waypoint table.
func ExportSummaryExcel(path string, results []routing.RouteResult) error {
	if len(results) == 0 {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "L1", header); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "L", 16); err != nil {
		return err
	}

	for i, res := range results {
		row := []interface{}{
			res.Cable.Label,
			res.Cable.Diameter,
			string(res.Algorithm),
			res.FallbackUsed,
			len(res.Cable.Terminals),
			len(res.Refined),
			res.Length,
			res.RefinedLength,
			res.Cost,
			res.RefinedCost,
			res.Evaluations,
			len(res.Collisions),
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}

		sheet := sheetName(i+1, res.Cable.Label)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet for %q: %w", res.Cable.Label, err)
		}
		if err := writeWaypoints(f, sheet, res); err != nil {
			return fmt.Errorf("cable %q: %w", res.Cable.Label, err)
		}
		if err := f.SetCellStyle(sheet, "A1", "E1", header); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeWaypoints(f *excelize.File, sheet string, res routing.RouteResult) error {
	if err := writeRow(f, sheet, 1, waypointHeader); err != nil {
		return err
	}
	for i, w := range res.Refined {
		step := 0.0
		if i > 0 {
			step = r3.Norm(r3.Sub(w, res.Refined[i-1]))
		}
		if err := writeRow(f, sheet, i+2, []interface{}{i + 1, w.X, w.Y, w.Z, step}); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// sheetName builds a valid worksheet name of the form "NN label". The
// numeric prefix keeps names unique after truncation.
func sheetName(n int, label string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(label))
	name := []rune(fmt.Sprintf("%02d %s", n, clean))
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	return strings.TrimRight(string(name), " '")
}
