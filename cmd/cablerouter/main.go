// CableRouter routes cables through a voxelized 3D assembly.
//
// Obstacles come from a saved grid snapshot, a CSV point cloud or a DXF
// drawing; terminals come from an Excel workbook (START, END and MIDDLE
// sheets) or a CSV table. Routed cables can be written as DXF, a PDF
// report, QR-coded tags and an Excel summary.
//
// The cable catalog, custom optimizer profiles and app config live next to
// the config file and can be shared with -import-catalog, -import-profile,
// -export-profile, -backup and -restore.
//
// Build:
//
//	go build -o cablerouter ./cmd/cablerouter
//
// Example:
//
//	cablerouter -points cloud.csv -terminals cables.xlsx -out-pdf report.pdf
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/project"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the parsed command line.
type Config struct {
	// Obstacle sources, at most one
	GridPath   string
	PointsPath string
	DXFPath    string
	Bounds     string // "x0,y0,z0,x1,y1,z1"; derived from the obstacles when empty
	Margin     float64
	DXFStep    float64
	KeepOut    boxList // extra obstacle boxes, same format as Bounds

	// Cables
	TerminalsPath string
	JobPath       string
	Diameter      float64
	CableType     string // catalog name or ID applied to every cable

	// Settings overrides; zero values keep the configured defaults
	ConfigPath string
	Algorithm  string
	Size       int
	Profile    string
	NoRefine   bool
	Prune      bool
	Seed       int64

	// Data files; empty paths live next to the config file
	CatalogPath   string
	ImportCatalog string
	ImportProfile string
	ExportProfile string // writes the profile named by Profile
	Backup        string
	Restore       string

	// Purchase estimate
	Slack       float64 // percent
	ServiceLoop float64 // mm per cable end
	Reel        float64 // mm; 0 skips the reel count
	ReelPrice   float64

	// Outputs
	OutDXF   string
	OutPDF   string
	OutTags  string
	OutXLSX  string
	SaveGrid string
	SaveJob  string
	Compare  bool
	Verbose  bool
}

func main() {
	cfg := parseFlags(os.Args[1:])

	logger := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error("routing failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func parseFlags(args []string) Config {
	cfg := Config{}
	fs := flag.NewFlagSet("cablerouter", flag.ExitOnError)

	fs.StringVar(&cfg.GridPath, "grid", "", "Grid snapshot to route on")
	fs.StringVar(&cfg.PointsPath, "points", "", "CSV point cloud of obstacles")
	fs.StringVar(&cfg.DXFPath, "dxf", "", "DXF drawing of obstacles")
	fs.StringVar(&cfg.Bounds, "bounds", "", "Routing region as x0,y0,z0,x1,y1,z1 (mm)")
	fs.Float64Var(&cfg.Margin, "margin", 10, "Margin added around derived bounds (mm)")
	fs.Float64Var(&cfg.DXFStep, "dxf-step", 1, "Sample spacing along DXF entities (mm)")
	fs.Var(&cfg.KeepOut, "keepout", "Keep-out box x0,y0,z0,x1,y1,z1 (mm), repeatable")

	fs.StringVar(&cfg.TerminalsPath, "terminals", "", "Cable terminals (.xlsx or .csv)")
	fs.StringVar(&cfg.JobPath, "job", "", "Job file with bounds, cables and settings")
	fs.Float64Var(&cfg.Diameter, "diameter", 0, "Diameter for cables without one (mm)")
	fs.StringVar(&cfg.CableType, "cable-type", "", "Catalog cable type applied to every cable")

	fs.StringVar(&cfg.ConfigPath, "config", project.DefaultConfigPath(), "Application config file")
	fs.StringVar(&cfg.Algorithm, "algorithm", "", "Search algorithm: jps, theta or astar")
	fs.IntVar(&cfg.Size, "size", 0, "Grid cells per axis")
	fs.StringVar(&cfg.Profile, "profile", "", "Optimizer profile for refinement")
	fs.BoolVar(&cfg.NoRefine, "no-refine", false, "Skip ACOR waypoint refinement")
	fs.BoolVar(&cfg.Prune, "prune", false, "Stop diagonal jumps only at forced neighbours")
	fs.Int64Var(&cfg.Seed, "seed", -1, "Refinement random seed")

	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Cable catalog file")
	fs.StringVar(&cfg.ImportCatalog, "import-catalog", "", "Merge cable types from a catalog file")
	fs.StringVar(&cfg.ImportProfile, "import-profile", "", "Add a shared optimizer profile")
	fs.StringVar(&cfg.ExportProfile, "export-profile", "", "Write the -profile optimizer profile for sharing")
	fs.StringVar(&cfg.Backup, "backup", "", "Write config, catalog and profiles to one file")
	fs.StringVar(&cfg.Restore, "restore", "", "Restore config, catalog and profiles from a backup")

	fs.Float64Var(&cfg.Slack, "slack", 10, "Slack added to every cut length (%)")
	fs.Float64Var(&cfg.ServiceLoop, "service-loop", 0, "Extra length at each cable end (mm)")
	fs.Float64Var(&cfg.Reel, "reel", 0, "Reel length for the purchase estimate (mm)")
	fs.Float64Var(&cfg.ReelPrice, "reel-price", 0, "Price of one reel")

	fs.StringVar(&cfg.OutDXF, "out-dxf", "", "Write routed cables as DXF")
	fs.StringVar(&cfg.OutPDF, "out-pdf", "", "Write a PDF routing report")
	fs.StringVar(&cfg.OutTags, "out-tags", "", "Write a PDF sheet of cable tags")
	fs.StringVar(&cfg.OutXLSX, "out-xlsx", "", "Write an Excel waypoint summary")
	fs.StringVar(&cfg.SaveGrid, "save-grid", "", "Save the obstacle grid snapshot")
	fs.StringVar(&cfg.SaveJob, "save-job", "", "Save the job (bounds, cables, settings)")
	fs.BoolVar(&cfg.Compare, "compare", false, "Compare algorithms on each cable's first segment")
	fs.BoolVar(&cfg.Verbose, "v", false, "Enable debug logging")

	_ = fs.Parse(args)
	return cfg
}

// boxList collects repeated box flags.
type boxList []string

func (b *boxList) String() string { return strings.Join(*b, " ") }

func (b *boxList) Set(v string) error {
	if _, err := parseBounds(v); err != nil {
		return err
	}
	*b = append(*b, v)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseBounds reads "x0,y0,z0,x1,y1,z1" into a box.
func parseBounds(s string) (model.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return model.Box{}, fmt.Errorf("bounds need 6 comma separated values, got %d", len(parts))
	}
	var v [6]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.Box{}, fmt.Errorf("invalid bounds value %q: %w", p, err)
		}
		v[i] = f
	}
	return model.BoxFromCorners(r3.Vec{X: v[0], Y: v[1], Z: v[2]}, r3.Vec{X: v[3], Y: v[4], Z: v[5]}), nil
}

// resolveSettings layers the app config (when non-nil), the chosen
// optimizer profile and the command line overrides onto base.
func resolveSettings(cfg Config, app *model.AppConfig, base model.RouterSettings, custom []model.OptimizerProfile) (model.RouterSettings, error) {
	s := base
	if app != nil {
		app.ApplyToSettings(&s)
	}

	if cfg.Profile != "" {
		p, err := project.ResolveProfile(cfg.Profile, custom)
		if err != nil {
			return s, err
		}
		p.ApplyToSettings(&s)
	}
	if cfg.Algorithm != "" {
		s.Algorithm = model.Algorithm(strings.ToLower(cfg.Algorithm))
	}
	if cfg.Size > 0 {
		s.MapSize = cfg.Size
	}
	if cfg.Diameter > 0 {
		s.CableDiameter = cfg.Diameter
	}
	if cfg.NoRefine {
		s.Refine = false
	}
	if cfg.Prune {
		s.PruneDiagonals = true
	}
	if cfg.Seed >= 0 {
		s.Seed = uint64(cfg.Seed)
	}
	return s, s.Validate()
}
