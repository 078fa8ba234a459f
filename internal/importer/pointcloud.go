package importer

import (
	"fmt"
	"io"
)

// ImportPointCloudCSV imports obstacle sample points from a CSV file with
// x, y, z columns. A header row is detected by name; without one the first
// three columns are used.
func ImportPointCloudCSV(path string) ImportResult {
	result := ImportResult{}
	records := readCSV(path, &result)
	if records == nil {
		return result
	}
	return importPointRows(records, result)
}

// ImportPointCloudFromReader imports points with a known delimiter.
func ImportPointCloudFromReader(r io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}
	records := readFrom(r, delimiter, &result)
	if records == nil {
		return result
	}
	return importPointRows(records, result)
}

func importPointRows(rows [][]string, result ImportResult) ImportResult {
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader && mapping.X != -1 && mapping.Y != -1 && mapping.Z != -1 {
		startRow = 1
	} else {
		mapping = ColumnMapping{X: 0, Y: 1, Z: 2}
		if _, err := parseFloat(getCell(rows[0], 0)); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		p, errMsg := parsePoint(row, mapping.X, mapping.Y, mapping.Z, fmt.Sprintf("Line %d", i+1))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Points = append(result.Points, p)
	}

	if len(result.Points) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No points found")
	}
	return result
}
