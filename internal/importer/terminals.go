package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names, matched case-insensitively.
const (
	SheetStart  = "START"
	SheetEnd    = "END"
	SheetMiddle = "MIDDLE"
)

// cableDraft collects the terminals of one cable while rows are read.
type cableDraft struct {
	name     string
	start    *model.Terminal
	end      *model.Terminal
	middle   []model.Terminal
	diameter float64
}

// draftSet keeps drafts in first-seen order.
type draftSet struct {
	byName map[string]*cableDraft
	order  []string
}

func newDraftSet() *draftSet {
	return &draftSet{byName: make(map[string]*cableDraft)}
}

func (d *draftSet) get(name string) *cableDraft {
	if c, ok := d.byName[name]; ok {
		return c
	}
	c := &cableDraft{name: name}
	d.byName[name] = c
	d.order = append(d.order, name)
	return c
}

// build turns complete drafts into cables. Drafts without a start or end
// terminal are reported as errors.
func (d *draftSet) build(defaultDiameter float64, result *ImportResult) {
	for _, name := range d.order {
		c := d.byName[name]
		if c.start == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cable %q: Missing start terminal", name))
			continue
		}
		if c.end == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cable %q: Missing end terminal", name))
			continue
		}
		diameter := c.diameter
		if diameter <= 0 {
			diameter = defaultDiameter
		}
		terminals := append([]model.Terminal{*c.start}, c.middle...)
		terminals = append(terminals, *c.end)
		cable := model.NewCable(name, diameter, terminals...)
		if err := cable.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Cables = append(result.Cables, cable)
	}
}

// parseRole converts a role string to a model.Role.
func parseRole(s string) (model.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "s", "begin", "from":
		return model.RoleStart, true
	case "end", "e", "goal", "to":
		return model.RoleEnd, true
	case "middle", "m", "mid", "via", "waypoint":
		return model.RoleMiddle, true
	default:
		return model.RoleMiddle, false
	}
}

// addTerminal records one terminal row on its draft.
func (c *cableDraft) addTerminal(t model.Terminal, rowLabel string, result *ImportResult) {
	switch t.Role {
	case model.RoleStart:
		if c.start != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate start for cable %q, keeping the first", rowLabel, c.name))
			return
		}
		c.start = &t
	case model.RoleEnd:
		if c.end != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate end for cable %q, keeping the first", rowLabel, c.name))
			return
		}
		c.end = &t
	default:
		t.Name = fmt.Sprintf("%s-m%d", c.name, len(c.middle)+1)
		c.middle = append(c.middle, t)
	}
}

// ─── CSV ────────────────────────────────────────────────────

// ImportTerminalsCSV imports cables from a terminal table with one row per
// terminal: cable, role (start/middle/end), x, y, z and optionally the
// exit direction vx, vy, vz and a diameter. Rows of one cable are grouped
// by name; middle terminals keep their row order.
func ImportTerminalsCSV(path string, defaultDiameter float64) ImportResult {
	result := ImportResult{}
	records := readCSV(path, &result)
	if records == nil {
		return result
	}
	return importTerminalRows(records, "Line", defaultDiameter, result)
}

// ImportTerminalsCSVFromReader imports a terminal table with a known delimiter.
func ImportTerminalsCSVFromReader(r io.Reader, delimiter rune, defaultDiameter float64) ImportResult {
	result := ImportResult{}
	records := readFrom(r, delimiter, &result)
	if records == nil {
		return result
	}
	return importTerminalRows(records, "Line", defaultDiameter, result)
}

func importTerminalRows(rows [][]string, rowPrefix string, defaultDiameter float64, result ImportResult) ImportResult {
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		required := []struct {
			name string
			col  int
		}{{"Cable", mapping.Cable}, {"Role", mapping.Role}, {"X", mapping.X}, {"Y", mapping.Y}, {"Z", mapping.Z}}
		missing := []string{}
		for _, r := range required {
			if r.col == -1 {
				missing = append(missing, r.name)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// Positional: cable, role, x, y, z, vx, vy, vz, diameter
		mapping = ColumnMapping{Cable: 0, Role: 1, X: 2, Y: 3, Z: 4, VX: 5, VY: 6, VZ: 7, Diameter: 8}
	}

	drafts := newDraftSet()
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		name := getCell(row, mapping.Cable)
		if name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Missing cable name", rowLabel))
			continue
		}
		roleStr := getCell(row, mapping.Role)
		role, ok := parseRole(roleStr)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Unknown terminal role '%s'", rowLabel, roleStr))
			continue
		}
		pos, errMsg := parsePoint(row, mapping.X, mapping.Y, mapping.Z, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		dir, warning := parseDirection(row, mapping.VX, mapping.VY, mapping.VZ, rowLabel)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		draft := drafts.get(name)
		if raw := getCell(row, mapping.Diameter); raw != "" {
			if d, err := parseFloat(raw); err == nil && d > 0 {
				draft.diameter = d
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Invalid diameter '%s', using default", rowLabel, raw))
			}
		}
		termName := fmt.Sprintf("%s-%s", name, strings.ToLower(role.String()))
		draft.addTerminal(model.NewTerminal(termName, role, pos, dir), rowLabel, &result)
	}

	drafts.build(defaultDiameter, &result)
	return result
}

// ─── Excel ──────────────────────────────────────────────────

// ImportTerminalsExcel imports cables from a workbook with START and END
// sheets (name, x, y, z, vx, vy, vz and an optional diameter per row) and
// an optional MIDDLE sheet (name followed by x, y, z triples). Rows are
// matched across sheets by cable name.
func ImportTerminalsExcel(path string, defaultDiameter float64) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := map[string]string{}
	for _, name := range f.GetSheetList() {
		sheets[strings.ToUpper(strings.TrimSpace(name))] = name
	}
	for _, required := range []string{SheetStart, SheetEnd} {
		if _, ok := sheets[required]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Workbook has no %s sheet", required))
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	drafts := newDraftSet()
	for _, sheet := range []string{SheetStart, SheetEnd} {
		rows, err := f.GetRows(sheets[sheet])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read %s sheet: %v", sheet, err))
			return result
		}
		role := model.RoleStart
		if sheet == SheetEnd {
			role = model.RoleEnd
		}
		readEndpointSheet(rows, sheet, role, drafts, &result)
	}

	if name, ok := sheets[SheetMiddle]; ok {
		rows, err := f.GetRows(name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read %s sheet: %v", SheetMiddle, err))
			return result
		}
		readMiddleSheet(rows, drafts, &result)
	}

	drafts.build(defaultDiameter, &result)
	return result
}

// readEndpointSheet reads a START or END sheet.
func readEndpointSheet(rows [][]string, sheet string, role model.Role, drafts *draftSet, result *ImportResult) {
	if len(rows) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s sheet is empty", sheet))
		return
	}
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		if mapping.Cable == -1 {
			mapping.Cable = 0
		}
	} else {
		mapping = ColumnMapping{Cable: 0, Role: -1, X: 1, Y: 2, Z: 3, VX: 4, VY: 5, VZ: 6, Diameter: 7}
		if _, err := parseFloat(getCell(rows[0], 1)); err != nil {
			// Unrecognised header: skip it but keep positional mapping
			startRow = 1
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s row %d", sheet, i+1)
		name := getCell(row, mapping.Cable)
		if name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Missing cable name", rowLabel))
			continue
		}
		pos, errMsg := parsePoint(row, mapping.X, mapping.Y, mapping.Z, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		dir, warning := parseDirection(row, mapping.VX, mapping.VY, mapping.VZ, rowLabel)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		draft := drafts.get(name)
		if raw := getCell(row, mapping.Diameter); raw != "" {
			if d, err := parseFloat(raw); err == nil && d > 0 {
				draft.diameter = d
			}
		}
		termName := fmt.Sprintf("%s-%s", name, strings.ToLower(role.String()))
		draft.addTerminal(model.NewTerminal(termName, role, pos, dir), rowLabel, result)
	}
}

// readMiddleSheet reads rows of a cable name followed by x, y, z triples.
// A triple with an empty cell ends the row.
func readMiddleSheet(rows [][]string, drafts *draftSet, result *ImportResult) {
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		name := getCell(row, 0)
		if i == 0 {
			if _, err := parseFloat(getCell(row, 1)); err != nil {
				continue // header
			}
		}
		if name == "" {
			continue
		}
		draft, ok := drafts.byName[name]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s row %d: Cable %q has no START row, ignoring", SheetMiddle, i+1, name))
			continue
		}
		rowLabel := fmt.Sprintf("%s row %d", SheetMiddle, i+1)
		for col := 1; col+2 < len(row); col += 3 {
			if getCell(row, col) == "" || getCell(row, col+1) == "" || getCell(row, col+2) == "" {
				break
			}
			pos, errMsg := parsePoint(row, col, col+1, col+2, rowLabel)
			if errMsg != "" {
				result.Errors = append(result.Errors, errMsg)
				break
			}
			draft.addTerminal(model.NewTerminal("", model.RoleMiddle, pos, [3]int{}), rowLabel, result)
		}
	}
}
