package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/cablerouter/internal/export"
	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/importer"
	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/project"
	"github.com/piwi3910/cablerouter/internal/routing"
	"gonum.org/v1/gonum/spatial/r3"
)

const recentJobLimit = 10

// run executes one routing job end to end. It returns the joined routing
// error when some cables could not be routed, after writing every
// requested output for the ones that were.
func run(cfg Config, logger *slog.Logger, out io.Writer) error {
	files := filesFor(cfg)
	managed, err := manageData(cfg, files, logger)
	if err != nil {
		return err
	}
	if managed && cfg.TerminalsPath == "" && cfg.JobPath == "" {
		return nil
	}

	app, err := project.LoadAppConfig(files.config)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", files.config, err)
	}
	custom, err := project.LoadCustomProfiles(files.profiles)
	if err != nil {
		return fmt.Errorf("failed to load optimizer profiles: %w", err)
	}

	job := model.NewJob()
	appDefaults := &app
	if cfg.JobPath != "" {
		if job, err = project.LoadJob(cfg.JobPath); err != nil {
			return fmt.Errorf("failed to load job %s: %w", cfg.JobPath, err)
		}
		// Job settings win over app defaults.
		appDefaults = nil
	}
	if job.Settings, err = resolveSettings(cfg, appDefaults, job.Settings, custom); err != nil {
		return err
	}

	if cfg.TerminalsPath != "" {
		if job.Cables, err = loadTerminals(cfg.TerminalsPath, job.Settings.CableDiameter, logger); err != nil {
			return err
		}
	}
	if len(job.Cables) == 0 {
		return errors.New("no cables to route: use -terminals or -job")
	}
	if cfg.CableType != "" {
		spec, err := lookupCableType(files.catalog, cfg.CableType)
		if err != nil {
			return err
		}
		for i := range job.Cables {
			spec.ApplyToCable(&job.Cables[i])
		}
		job.Settings.CableDiameter = spec.Diameter
		logger.Info("cable type applied", slog.String("type", spec.Name), slog.Float64("diameter", spec.Diameter))
	}

	g, err := buildGrid(cfg, job, logger)
	if err != nil {
		return err
	}
	job.Bounds = g.Bounds()
	job.Settings.MapSize = g.Size()

	fingerprint := g.Fingerprint()
	if job.GridFingerprint != 0 && job.GridFingerprint != fingerprint {
		logger.Warn("grid differs from the one the job was routed on",
			slog.Uint64("job", job.GridFingerprint),
			slog.Uint64("grid", fingerprint),
		)
	}
	job.GridFingerprint = fingerprint

	// Snapshot before routing; terminal clearing carves the grid.
	if cfg.SaveGrid != "" {
		if err := g.SaveSnapshot(cfg.SaveGrid); err != nil {
			return err
		}
		logger.Info("grid saved", slog.String("path", cfg.SaveGrid), slog.Uint64("fingerprint", fingerprint))
	}
	if cfg.SaveJob != "" {
		if err := project.SaveJob(cfg.SaveJob, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	if cfg.Compare {
		compareCables(out, g, job.Cables, job.Settings, logger)
	}

	router, err := routing.New(g, job.Settings)
	if err != nil {
		return err
	}
	router.WithLogger(logger)

	results, routeErr := router.RouteAll(job.Cables)
	printSummary(out, results)
	printEstimate(out, cfg, results)

	if len(results) > 0 {
		if err := writeOutputs(cfg, g, results, logger); err != nil {
			return err
		}
	}

	if cfg.JobPath != "" {
		app.AddRecentJob(cfg.JobPath, recentJobLimit)
		if err := project.SaveAppConfig(files.config, app); err != nil {
			logger.Warn("failed to update recent jobs", slog.Any("error", err))
		}
	}
	return routeErr
}

// loadTerminals imports cables from a workbook or CSV table, logging every
// skipped row.
func loadTerminals(path string, diameter float64, logger *slog.Logger) ([]model.Cable, error) {
	var res importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		res = importer.ImportTerminalsExcel(path, diameter)
	default:
		res = importer.ImportTerminalsCSV(path, diameter)
	}
	logImport(logger, path, res)
	if len(res.Cables) == 0 {
		return nil, fmt.Errorf("no cables imported from %s: %s", path, strings.Join(res.Errors, "; "))
	}
	logger.Info("terminals imported", slog.String("path", path), slog.Int("cables", len(res.Cables)))
	return res.Cables, nil
}

// loadObstacles reads the point cloud and DXF sources named in cfg.
func loadObstacles(cfg Config, logger *slog.Logger) ([]r3.Vec, error) {
	var points []r3.Vec
	if cfg.PointsPath != "" {
		res := importer.ImportPointCloudCSV(cfg.PointsPath)
		logImport(logger, cfg.PointsPath, res)
		if len(res.Points) == 0 {
			return nil, fmt.Errorf("no obstacle points in %s: %s", cfg.PointsPath, strings.Join(res.Errors, "; "))
		}
		points = append(points, res.Points...)
	}
	if cfg.DXFPath != "" {
		res := importer.ImportObstaclesDXF(cfg.DXFPath, cfg.DXFStep)
		logImport(logger, cfg.DXFPath, res)
		if len(res.Points) == 0 {
			return nil, fmt.Errorf("no obstacle geometry in %s: %s", cfg.DXFPath, strings.Join(res.Errors, "; "))
		}
		points = append(points, res.Points...)
	}
	return points, nil
}

// buildGrid loads or voxelizes the obstacle grid and marks the keep-out
// boxes on it.
func buildGrid(cfg Config, job model.Job, logger *slog.Logger) (*grid.VoxelGrid, error) {
	g, err := obstacleGrid(cfg, job, logger)
	if err != nil {
		return nil, err
	}
	for _, s := range cfg.KeepOut {
		box, err := parseBounds(s)
		if err != nil {
			return nil, fmt.Errorf("invalid keep-out box: %w", err)
		}
		marked := g.MarkBox(box.Min, box.Max)
		logger.Debug("keep-out box marked", slog.String("box", s), slog.Int("cells", marked))
	}
	return g, nil
}

// obstacleGrid loads a snapshot, or voxelizes the obstacle sources over the
// requested, job or derived bounds.
func obstacleGrid(cfg Config, job model.Job, logger *slog.Logger) (*grid.VoxelGrid, error) {
	if cfg.GridPath != "" {
		if cfg.PointsPath != "" || cfg.DXFPath != "" {
			return nil, errors.New("-grid cannot be combined with -points or -dxf")
		}
		g, err := grid.LoadSnapshot(cfg.GridPath)
		if err != nil {
			return nil, err
		}
		if cfg.Size > 0 && cfg.Size != g.Size() {
			logger.Warn("snapshot resolution overrides -size", slog.Int("size", g.Size()))
		}
		logger.Info("grid loaded",
			slog.String("path", cfg.GridPath),
			slog.Int("size", g.Size()),
			slog.Int("obstacles", g.ObstacleCount()),
		)
		return g, nil
	}

	points, err := loadObstacles(cfg, logger)
	if err != nil {
		return nil, err
	}

	bounds, err := regionFor(cfg, job, points)
	if err != nil {
		return nil, err
	}
	if !bounds.IsCubic(1e-9) {
		bounds = bounds.Cubify()
		logger.Info("bounds extended to a cube", slog.Float64("edge", bounds.Gap()))
	}

	g, err := grid.New(bounds, job.Settings.MapSize)
	if err != nil {
		return nil, err
	}
	marked, skipped := g.Voxelize(points)
	logger.Info("grid built",
		slog.Int("size", g.Size()),
		slog.Float64("cell", g.CellSize()),
		slog.Int("obstacles", marked),
		slog.Int("outside", skipped),
	)
	return g, nil
}

// regionFor picks the routing region: -bounds, then the job's bounds, then
// the box around every obstacle and terminal grown by the margin.
func regionFor(cfg Config, job model.Job, points []r3.Vec) (model.Box, error) {
	if cfg.Bounds != "" {
		return parseBounds(cfg.Bounds)
	}
	if s := job.Bounds.Size(); s.X > 0 && s.Y > 0 && s.Z > 0 {
		return job.Bounds, nil
	}
	all := append([]r3.Vec(nil), points...)
	for _, c := range job.Cables {
		for _, t := range c.Terminals {
			all = append(all, t.Position)
		}
	}
	b, ok := model.BoundsOf(all)
	if !ok {
		return model.Box{}, errors.New("cannot derive bounds: no obstacles or terminals")
	}
	return b.Expand(cfg.Margin), nil
}

func logImport(logger *slog.Logger, path string, res importer.ImportResult) {
	for _, w := range res.Warnings {
		logger.Warn("import warning", slog.String("path", path), slog.String("detail", w))
	}
	for _, e := range res.Errors {
		logger.Warn("import error", slog.String("path", path), slog.String("detail", e))
	}
}

// compareCables runs every algorithm between the first two terminals of
// each cable and prints the results. Cables whose terminals fall outside
// the grid or on obstacles are skipped.
func compareCables(out io.Writer, g *grid.VoxelGrid, cables []model.Cable, settings model.RouterSettings, logger *slog.Logger) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CABLE\tALGORITHM\tFOUND\tLENGTH\tSMOOTHED\tWAYPOINTS\tEXPANDED\tTIME")
	for _, c := range cables {
		if len(c.Terminals) < 2 {
			continue
		}
		start, ok1 := g.IndexOf(c.Terminals[0].Position)
		goal, ok2 := g.IndexOf(c.Terminals[1].Position)
		if !ok1 || !ok2 {
			logger.Warn("compare skipped: terminal outside grid", slog.String("cable", c.Label))
			continue
		}
		comps, err := routing.CompareAlgorithms(g, start, goal, settings)
		if err != nil {
			logger.Warn("compare skipped", slog.String("cable", c.Label), slog.Any("error", err))
			continue
		}
		best, _ := routing.Best(comps)
		for _, cmp := range comps {
			mark := ""
			if cmp.Found && cmp.Algorithm == best.Algorithm {
				mark = " *"
			}
			fmt.Fprintf(tw, "%s\t%s%s\t%t\t%.1f\t%.1f\t%d\t%d\t%s\n",
				c.Label, cmp.Algorithm, mark, cmp.Found, cmp.Length, cmp.SmoothedLength,
				cmp.Waypoints, cmp.Expanded, cmp.Elapsed)
		}
	}
	tw.Flush()
}

func printSummary(out io.Writer, results []routing.RouteResult) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CABLE\tALGORITHM\tWAYPOINTS\tLENGTH\tCOST\tREFINED\tCOLLISIONS")
	for _, r := range results {
		alg := string(r.Algorithm)
		if r.FallbackUsed {
			alg += "+astar"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.0f\t%.0f\t%d\n",
			r.Cable.Label, alg, len(r.Refined), r.RefinedLength, r.Cost, r.RefinedCost, len(r.Collisions))
	}
	tw.Flush()
}

// printEstimate reports how much cable to cut and, with -reel, buy.
func printEstimate(out io.Writer, cfg Config, results []routing.RouteResult) {
	if len(results) == 0 {
		return
	}
	lengths := make([]float64, len(results))
	for i, r := range results {
		lengths[i] = r.RefinedLength
	}
	est := model.CalculateCableEstimate(lengths, cfg.ServiceLoop, cfg.Slack, cfg.Reel, cfg.ReelPrice)
	fmt.Fprintf(out, "\nRouted %.1f mm, cut %.1f mm with %.0f%% slack", est.RoutedLength, est.TotalLength, est.SlackPercent)
	if est.ReelLength > 0 {
		fmt.Fprintf(out, ", %d reel(s) of %.0f mm", est.ReelsNeeded, est.ReelLength)
		if est.EstimatedCost > 0 {
			fmt.Fprintf(out, ", cost %.2f", est.EstimatedCost)
		}
		if est.ExceedsReel {
			fmt.Fprint(out, " (longest cut exceeds one reel)")
		}
	}
	fmt.Fprintln(out)
}

func writeOutputs(cfg Config, g *grid.VoxelGrid, results []routing.RouteResult, logger *slog.Logger) error {
	bounds := g.Bounds()
	outputs := []struct {
		path  string
		write func(string) error
	}{
		{cfg.OutDXF, func(p string) error { return export.ExportDXF(p, results, &bounds) }},
		{cfg.OutPDF, func(p string) error { return export.ExportPDF(p, g, results) }},
		{cfg.OutTags, func(p string) error { return export.ExportTags(p, results) }},
		{cfg.OutXLSX, func(p string) error { return export.ExportSummaryExcel(p, results) }},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := o.write(o.path); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.path, err)
		}
		logger.Info("output written", slog.String("path", o.path))
	}
	return nil
}
