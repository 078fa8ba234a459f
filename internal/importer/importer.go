// Package importer reads routing inputs: cable terminals from Excel
// workbooks or CSV tables, and obstacle point clouds from CSV or DXF. It
// supports automatic delimiter detection, flexible column mapping and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/cablerouter/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImportResult holds the results of an import operation. Errors describe
// rows that were dropped; Warnings describe rows that were accepted with
// assumptions.
type ImportResult struct {
	Cables   []model.Cable
	Points   []r3.Vec
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// Missing columns are -1.
type ColumnMapping struct {
	Cable    int
	Role     int
	X, Y, Z  int
	VX       int
	VY       int
	VZ       int
	Diameter int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"cable":    {"cable", "name", "cable name", "label", "id", "wire"},
	"role":     {"role", "terminal", "type", "kind", "end type"},
	"x":        {"x", "pos x", "px", "x (mm)"},
	"y":        {"y", "pos y", "py", "y (mm)"},
	"z":        {"z", "pos z", "pz", "z (mm)"},
	"vx":       {"vx", "dx", "dir x", "nx"},
	"vy":       {"vy", "dy", "dir y", "ny"},
	"vz":       {"vz", "dz", "dir z", "nz"},
	"diameter": {"diameter", "dia", "size", "diameter (mm)"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readRecords(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}

		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func readRecords(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // Allow variable field counts
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// The boolean reports whether any header name was recognised.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Cable: -1, Role: -1, X: -1, Y: -1, Z: -1, VX: -1, VY: -1, VZ: -1, Diameter: -1}
	slots := map[string]*int{
		"cable": &mapping.Cable, "role": &mapping.Role,
		"x": &mapping.X, "y": &mapping.Y, "z": &mapping.Z,
		"vx": &mapping.VX, "vy": &mapping.VY, "vz": &mapping.VZ,
		"diameter": &mapping.Diameter,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *slots[role] == -1 {
					*slots[role] = i
					isHeader = true
				}
			}
		}
	}
	return mapping, isHeader
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseFloat parses a finite number, accepting a decimal comma.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

// parsePoint reads three required coordinates.
func parsePoint(row []string, x, y, z int, rowLabel string) (r3.Vec, string) {
	var out [3]float64
	for i, col := range [3]int{x, y, z} {
		raw := getCell(row, col)
		name := [3]string{"X", "Y", "Z"}[i]
		if raw == "" {
			return r3.Vec{}, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
		}
		v, err := parseFloat(raw)
		if err != nil {
			return r3.Vec{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, raw)
		}
		out[i] = v
	}
	return r3.Vec{X: out[0], Y: out[1], Z: out[2]}, ""
}

// parseDirection reads an optional exit direction and reduces it to the
// sign of each component. Empty cells count as zero.
func parseDirection(row []string, vx, vy, vz int, rowLabel string) ([3]int, string) {
	var dir [3]int
	for i, col := range [3]int{vx, vy, vz} {
		raw := getCell(row, col)
		if raw == "" {
			continue
		}
		v, err := parseFloat(raw)
		if err != nil {
			return [3]int{}, fmt.Sprintf("%s: Invalid direction component '%s', ignoring direction", rowLabel, raw)
		}
		switch {
		case v > 1e-9:
			dir[i] = 1
		case v < -1e-9:
			dir[i] = -1
		}
	}
	return dir, ""
}

// readCSV loads a CSV file with delimiter detection. Failures are
// recorded on result.
func readCSV(path string, result *ImportResult) [][]string {
	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return nil
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}
	return readFrom(bytes.NewReader(data), delimiter, result)
}

func readFrom(r io.Reader, delimiter rune, result *ImportResult) [][]string {
	records, err := readRecords(r, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return nil
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return nil
	}
	return records
}
