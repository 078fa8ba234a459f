package export

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/cablerouter/internal/routing"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r3"
)

func countEntities(t *testing.T, path string) (lines, circles int) {
	t.Helper()
	d, err := dxf.Open(path)
	if err != nil {
		t.Fatalf("cannot reopen DXF: %v", err)
	}
	for _, e := range d.Entities() {
		switch e.(type) {
		case *entity.Line:
			lines++
		case *entity.Circle:
			circles++
		}
	}
	return lines, circles
}

func TestExportDXF_WritesRoutesAndTerminals(t *testing.T) {
	g := buildTestGrid(t)
	results := buildTestResults(t, g)

	wantLines := 0
	for _, r := range results {
		wantLines += len(r.Refined) - 1
	}

	path := filepath.Join(t.TempDir(), "routes.dxf")
	if err := ExportDXF(path, results, nil); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}
	lines, circles := countEntities(t, path)
	if lines != wantLines {
		t.Errorf("lines = %d, want %d", lines, wantLines)
	}
	if circles != 4 {
		t.Errorf("circles = %d, want 4 terminal markers", circles)
	}
}

func TestExportDXF_WithBounds(t *testing.T) {
	g := buildTestGrid(t)
	results := buildTestResults(t, g)
	bounds := g.Bounds()

	plain := filepath.Join(t.TempDir(), "plain.dxf")
	framed := filepath.Join(t.TempDir(), "framed.dxf")
	if err := ExportDXF(plain, results, nil); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}
	if err := ExportDXF(framed, results, &bounds); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}
	plainLines, _ := countEntities(t, plain)
	framedLines, _ := countEntities(t, framed)
	if framedLines-plainLines != 12 {
		t.Errorf("bounds added %d lines, want 12", framedLines-plainLines)
	}
}

func TestExportDXF_EmptyResults(t *testing.T) {
	if err := ExportDXF(filepath.Join(t.TempDir(), "empty.dxf"), []routing.RouteResult{}, nil); err == nil {
		t.Fatal("expected error for empty results, got nil")
	}
}

func TestLayerName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Power A", "CABLE_POWER_A"},
		{"cat6-01", "CABLE_CAT6-01"},
		{"  ", "CABLE_UNNAMED"},
		{"a/b:c", "CABLE_A_B_C"},
	}
	for _, tt := range tests {
		if got := layerName(tt.label); got != tt.want {
			t.Errorf("layerName(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestBoxEdges(t *testing.T) {
	g := buildTestGrid(t)
	edges := boxEdges(g.Bounds())
	if len(edges) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(edges))
	}
	for i, e := range edges {
		d := r3.Sub(e[1], e[0])
		axes := 0
		for _, c := range []float64{d.X, d.Y, d.Z} {
			if c != 0 {
				axes++
			}
		}
		if axes != 1 {
			t.Errorf("edge %d %v is not axis aligned", i, e)
		}
	}
}

func TestExportDXF_LayerPerCable(t *testing.T) {
	g := buildTestGrid(t)
	results := buildTestResults(t, g)
	// A repeated label still gets its own layer.
	results = append(results, results[0])

	path := filepath.Join(t.TempDir(), "layers.dxf")
	bounds := g.Bounds()
	if err := ExportDXF(path, results, &bounds); err != nil {
		t.Fatalf("ExportDXF failed: %v", err)
	}
	d, err := dxf.Open(path)
	if err != nil {
		t.Fatalf("cannot reopen DXF: %v", err)
	}
	for _, name := range []string{"BOUNDS", "CABLE_POWER_A", "CABLE_SIGNAL_B", "CABLE_POWER_A_2"} {
		if _, ok := d.Layers[name]; !ok {
			t.Errorf("missing layer %s", name)
		}
	}
}

func TestUniqueLayer(t *testing.T) {
	used := make(map[string]bool)
	got := []string{
		uniqueLayer("CABLE_A", used),
		uniqueLayer("CABLE_A", used),
		uniqueLayer("CABLE_A_2", used),
		uniqueLayer("CABLE_A", used),
	}
	want := []string{"CABLE_A", "CABLE_A_2", "CABLE_A_2_2", "CABLE_A_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniqueLayer #%d = %q, want %q", i, got[i], want[i])
		}
	}
}
