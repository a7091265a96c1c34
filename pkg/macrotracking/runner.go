package macrotracking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"github.com/lintang-b-s/macrotracking/pkg/config"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/mapmatcher"
	"github.com/lintang-b-s/macrotracking/pkg/plot"
	"github.com/lintang-b-s/macrotracking/pkg/roadnetwork"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"github.com/lintang-b-s/macrotracking/pkg/tracefile"
	"github.com/lintang-b-s/macrotracking/pkg/tracereader"
	"github.com/lintang-b-s/macrotracking/pkg/vehicle"
	"go.uber.org/zap"
)

const (
	LocationLogFile       = "location.log"
	NodeLogFile           = "node.log"
	ChosenLocationsFile   = "distance_chosen_locations_from_trace.log"
	SummaryFile           = "distance_measured.log"
	HTMLPlotFile          = "trace.html"
	PNGPlotFile           = "trace.png"
	GeoJSONFile           = "location.geojson"
	GPSLogFile            = "gps.log"
	contextCheckFrequency = 4096
)

var (
	ErrNoStates = errors.New("trace produced no vehicle state")
)

// Report. outcome of one trace run.
type Report struct {
	RunID           string             `json:"run_id"`
	Trace           string             `json:"trace"`
	OutputFolder    string             `json:"output_folder"`
	MapCorrection   bool               `json:"map_correction"`
	Frames          int                `json:"frames"`
	SkippedLines    int                `json:"skipped_lines"`
	States          int                `json:"states"`
	CorrectedStates int                `json:"corrected_states"`
	Divergences     int                `json:"divergences"`
	MapFetches      int                `json:"map_fetches"`
	GPSPoints       int                `json:"gps_points"`
	TotalDistance   float64            `json:"total_distance"`
	EndDistance     float64            `json:"end_distance"`
	Comparison      *comparator.Result `json:"comparison,omitempty"`
	Duration        time.Duration      `json:"duration"`
}

// Runner replays recorded traces: dead reckoning, optional map correction, comparison against the
// ground truth and the output files of every run.
type Runner struct {
	cfg      *config.Config
	registry *trace.Registry
	source   roadnetwork.RoadGraphSource
	log      *zap.Logger
}

func NewRunner(cfg *config.Config, registry *trace.Registry, source roadnetwork.RoadGraphSource, log *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		registry: registry,
		source:   source,
		log:      log,
	}
}

func (r *Runner) Registry() *trace.Registry {
	return r.registry
}

// OutputFolder of the trace for the configured correction mode.
func (r *Runner) OutputFolder(d trace.Descriptor) string {
	return trace.OutputFolder(r.cfg.Files.OutputRoot, d, r.cfg.Macrotracking.MapBasedCorrection)
}

// RunByName runs the registered trace name.
func (r *Runner) RunByName(ctx context.Context, name string) (*Report, error) {
	d, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, d)
}

func (r *Runner) Run(ctx context.Context, d trace.Descriptor) (*Report, error) {
	start := time.Now()
	mapCorrection := r.cfg.Macrotracking.MapBasedCorrection
	report := &Report{
		RunID:         uuid.NewString(),
		Trace:         d.Name,
		OutputFolder:  r.OutputFolder(d),
		MapCorrection: mapCorrection,
	}
	log := r.log.With(zap.String("runID", report.RunID), zap.String("trace", d.Name))
	log.Info(fmt.Sprintf("Running macrotracking on %s", d.Name))

	if err := os.MkdirAll(report.OutputFolder, 0o755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}

	if d.GPSFile != "" {
		n, err := r.convertGPS(d, report.OutputFolder, log)
		if err != nil {
			return nil, err
		}
		report.GPSPoints = n
	}

	index := roadnetwork.NewIndex(r.source, r.cfg.IndexOptions(), log)
	corrector := mapmatcher.NewCorrector(index, r.cfg.CorrectorOptions(), log)
	var matcher vehicle.Matcher
	if mapCorrection {
		matcher = corrector
	}
	startPos := d.StartPosition()
	car := vehicle.NewVehicle(startPos, d.StartHeading, r.cfg.VehicleOptions(), matcher, log)

	if mapCorrection {
		if err := index.EnsureWindow(ctx, startPos); err != nil {
			return nil, err
		}
	}

	tracePath := r.registry.TracePath(d)
	log.Debug(fmt.Sprintf("Selected trace: %s", filepath.Base(tracePath)))
	reader := tracereader.NewFileReader(tracePath, log)
	frames, err := reader.Frames()
	if err != nil {
		return nil, err
	}

	counter := 0
	for f := range frames {
		counter++
		if counter%contextCheckFrequency == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if counter < d.StartIndex {
			continue
		}
		if err := car.ProcessFrame(ctx, f); err != nil {
			return nil, fmt.Errorf("frame %d: %w", counter, err)
		}
		if d.Offset != -1 && counter > d.StartIndex+d.Offset {
			break
		}
	}
	report.Frames = counter
	report.SkippedLines = reader.Skipped()
	log.Debug(fmt.Sprintf("Number of messages: %d.", counter))

	trajectory := car.Trajectory()
	report.States = trajectory.Len()
	report.CorrectedStates = trajectory.CorrectedCount()
	report.Divergences = corrector.Divergences()
	report.MapFetches = index.Fetches()

	locationPath := filepath.Join(report.OutputFolder, LocationLogFile)
	if err := tracefile.WriteTrajectory(locationPath, trajectory); err != nil {
		return nil, fmt.Errorf("write location log: %w", err)
	}
	if mapCorrection {
		if err := tracefile.WriteNodeFile(filepath.Join(report.OutputFolder, NodeLogFile), index.UsedNodes()); err != nil {
			return nil, fmt.Errorf("write node log: %w", err)
		}
	}

	last, ok := trajectory.Last()
	if !ok {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrNoStates)
	}
	report.TotalDistance = trajectory.TotalDistance()
	report.EndDistance = geo.Distance(startPos, last.Position())
	log.Info(fmt.Sprintf("Car travelled a total distance of: %v meters.", report.TotalDistance))
	log.Info(fmt.Sprintf("Car trajectory end is %v meters away from the start.", report.EndDistance))

	var groundTruth []geo.Position
	summary := tracefile.Summary{TotalDistance: report.TotalDistance, EndDistance: report.EndDistance}
	if d.GroundTruthFile != "" {
		log.Debug("Starting trace comparison...")
		result, gt, err := r.compare(locationPath, r.registry.GroundTruthPath(d), log)
		if err != nil {
			return nil, err
		}
		groundTruth = gt
		report.Comparison = &result
		summary.Mean, summary.StdDev, summary.Errors = result.Mean, result.StdDev, result.Errors
		if err := tracefile.WritePositionFile(filepath.Join(report.OutputFolder, ChosenLocationsFile), result.Matched); err != nil {
			return nil, fmt.Errorf("write chosen locations: %w", err)
		}
		log.Info(fmt.Sprintf("Measured distance to ground truth is: %v meters.", result.Mean))
		log.Info(fmt.Sprintf("Std deviation of the distance to ground truth is: %v meters.", result.StdDev))
	}
	if err := tracefile.WriteSummaryFile(filepath.Join(report.OutputFolder, SummaryFile), summary); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	log.Info("Generating plot for trace...")
	if err := r.writePlots(report.OutputFolder, d.Name, trajectory.Positions(), groundTruth); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	log.Info("Macrotracking sequence for trace completed.", zap.Int("states", report.States),
		zap.Int("corrected", report.CorrectedStates), zap.Duration("took", report.Duration))
	return report, nil
}

// convertGPS writes the gps recording of the trace as gps.log into the output folder.
func (r *Runner) convertGPS(d trace.Descriptor, folder string, log *zap.Logger) (int, error) {
	path := r.registry.GPSPath(d)
	log.Info(fmt.Sprintf("Processing gps file information from: %s", path))
	ps, err := tracefile.ReadGPSFile(path)
	if err != nil {
		return 0, fmt.Errorf("read gps file: %w", err)
	}
	if err := tracefile.WriteGPSFile(filepath.Join(folder, GPSLogFile), ps); err != nil {
		return 0, fmt.Errorf("write gps log: %w", err)
	}
	return len(ps), nil
}

// compare reads the written trajectory back, so the comparison sees the logged precision.
func (r *Runner) compare(locationPath, groundTruthPath string, log *zap.Logger) (comparator.Result, []geo.Position, error) {
	trajectory, err := tracefile.ReadPositionFile(locationPath)
	if err != nil {
		return comparator.Result{}, nil, fmt.Errorf("read location log: %w", err)
	}
	groundTruth, err := tracefile.ReadPositionFile(groundTruthPath)
	if err != nil {
		return comparator.Result{}, nil, fmt.Errorf("read ground truth: %w", err)
	}
	result, err := comparator.NewComparator(r.cfg.Macrotracking.CompareTarget, log).Compare(trajectory, groundTruth)
	if err != nil {
		return comparator.Result{}, nil, err
	}
	return result, groundTruth, nil
}

func (r *Runner) writePlots(folder, name string, trajectory, groundTruth []geo.Position) error {
	tracks := []plot.Track{{Name: "trajectory", Positions: trajectory}}
	if len(groundTruth) > 0 {
		tracks = append(tracks, plot.Track{Name: "ground_truth", Positions: groundTruth})
	}
	if err := plot.RenderHTMLFile(filepath.Join(folder, HTMLPlotFile), name, tracks...); err != nil {
		return fmt.Errorf("html plot: %w", err)
	}
	if err := plot.SavePNG(filepath.Join(folder, PNGPlotFile), name, tracks...); err != nil {
		return fmt.Errorf("png plot: %w", err)
	}
	if err := tracefile.WriteGeoJSONFile(filepath.Join(folder, GeoJSONFile), []string{"trajectory", "ground_truth"},
		[][]geo.Position{trajectory, groundTruth}); err != nil {
		return fmt.Errorf("geojson: %w", err)
	}
	return nil
}
