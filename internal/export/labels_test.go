package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cablerouter/internal/collision"
	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/routing"
	"gonum.org/v1/gonum/spatial/r3"
)

func buildTagResult(label string) routing.RouteResult {
	cable := model.NewCable(label, 6.2,
		model.NewTerminal("X1", model.RoleStart, r3.Vec{}, [3]int{}),
		model.NewTerminal("X1-m1", model.RoleMiddle, r3.Vec{X: 50}, [3]int{}),
		model.NewTerminal("X9", model.RoleEnd, r3.Vec{X: 100}, [3]int{}),
	)
	return routing.RouteResult{
		Cable:         cable,
		Refined:       []r3.Vec{{}, {X: 50}, {X: 100}},
		RefinedLength: 100,
	}
}

func TestExportTags_CreatesFile(t *testing.T) {
	g := buildTestGrid(t)
	results := buildTestResults(t, g)

	path := filepath.Join(t.TempDir(), "tags.pdf")
	if err := ExportTags(path, results); err != nil {
		t.Fatalf("ExportTags returned error: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestExportTags_EmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportTags(path, nil); err == nil {
		t.Fatal("expected error for empty results, got nil")
	}
}

func TestExportTags_ManyCables(t *testing.T) {
	// 35 tags spill onto a second page.
	results := make([]routing.RouteResult, 35)
	for i := range results {
		results[i] = buildTagResult(fmt.Sprintf("Harness branch %02d with a very long descriptive name", i))
	}
	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportTags(path, results); err != nil {
		t.Fatalf("ExportTags returned error: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestCollectTagInfos(t *testing.T) {
	res := buildTagResult("Ethernet 1")
	res.Collisions = []collision.Hit{{Segment: 0}}

	tags := CollectTagInfos([]routing.RouteResult{res})
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	tag := tags[0]
	if tag.Label != "Ethernet 1" {
		t.Errorf("label = %q, want %q", tag.Label, "Ethernet 1")
	}
	if tag.From != "X1" || tag.To != "X9" {
		t.Errorf("ends = %q > %q, want X1 > X9", tag.From, tag.To)
	}
	if tag.Terminals != 3 || tag.Waypoints != 3 {
		t.Errorf("terminals/waypoints = %d/%d, want 3/3", tag.Terminals, tag.Waypoints)
	}
	if tag.Length != 100 || tag.Diameter != 6.2 {
		t.Errorf("length/diameter = %.1f/%.1f, want 100/6.2", tag.Length, tag.Diameter)
	}
	if tag.Collisions != 1 {
		t.Errorf("collisions = %d, want 1", tag.Collisions)
	}
	if tag.CableID != res.Cable.ID {
		t.Errorf("id = %q, want %q", tag.CableID, res.Cable.ID)
	}
}

func TestCollectTagInfos_NoTerminals(t *testing.T) {
	tags := CollectTagInfos([]routing.RouteResult{{Cable: model.Cable{Label: "bare"}}})
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].From != "" || tags[0].To != "" {
		t.Errorf("expected empty ends, got %q > %q", tags[0].From, tags[0].To)
	}
}

func TestTagInfo_JSONFields(t *testing.T) {
	data, err := json.Marshal(TagInfo{Label: "A", Length: 12.5})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"id", "label", "diameter_mm", "length_mm", "from", "to", "waypoints", "collisions"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("QR payload missing %q", key)
		}
	}
}
