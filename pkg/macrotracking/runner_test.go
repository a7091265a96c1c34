package macrotracking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/macrotracking/pkg/config"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/osmparser"
	"github.com/lintang-b-s/macrotracking/pkg/roadnetwork"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"github.com/lintang-b-s/macrotracking/pkg/tracefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const roadLat = 47.47

// east-west primary road along roadLat with a residential cross street at 19.05.
func writeOSM(t *testing.T, path string) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<osm version=\"0.6\">\n")
	for k := 0; k <= 50; k++ {
		fmt.Fprintf(&b, "  <node id=\"%d\" lat=\"%.5f\" lon=\"%.5f\"/>\n", k+1, roadLat, 19.0+float64(k)*0.002)
	}
	fmt.Fprintf(&b, "  <node id=\"100\" lat=\"%.5f\" lon=\"19.05\"/>\n", roadLat-0.005)
	fmt.Fprintf(&b, "  <node id=\"101\" lat=\"%.5f\" lon=\"19.05\"/>\n", roadLat+0.005)
	b.WriteString("  <way id=\"1\">\n")
	for k := 0; k <= 50; k++ {
		fmt.Fprintf(&b, "    <nd ref=\"%d\"/>\n", k+1)
	}
	b.WriteString("    <tag k=\"highway\" v=\"primary\"/>\n  </way>\n")
	b.WriteString("  <way id=\"2\">\n    <nd ref=\"100\"/><nd ref=\"26\"/><nd ref=\"101\"/>\n")
	b.WriteString("    <tag k=\"highway\" v=\"residential\"/>\n  </way>\n</osm>\n")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

// 60 s of straight driving at 36 km/h.
func writeTrace(t *testing.T, path string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%.6f        0180    000    6    64 a0 00 00 44 00\n", 1000.0)
	b.WriteString("garbage\n")
	for i := 0; i <= 120; i++ {
		fmt.Fprintf(&b, "%.6f        0410    000    8    00 0e 10 00 00 00 00 00\n", 1000.0+float64(i)*0.5)
		fmt.Fprintf(&b, "%.6f        0380    000    8    30 bb 82 00 9d 53 00 81\n", 1000.0+float64(i)*0.5+0.01)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func writeGroundTruth(t *testing.T, path string, start geo.Position) {
	records := make([]tracefile.LocationRecord, 0, 70)
	for i := 0; i < 70; i++ {
		p := geo.Translate(start, float64(i)*10, 0)
		records = append(records, tracefile.LocationRecord{Time: float64(i), Lat: p.Lat, Lon: p.Lon, Speed: 10})
	}
	require.NoError(t, tracefile.WriteLocationFile(path, records))
}

type fixture struct {
	cfg      *config.Config
	registry *trace.Registry
	source   roadnetwork.RoadGraphSource
}

func newFixture(t *testing.T, mapCorrection bool) fixture {
	dir := t.TempDir()
	start := geo.NewPosition(roadLat, 19.03)
	writeOSM(t, filepath.Join(dir, "road.osm"))
	writeTrace(t, filepath.Join(dir, "trace.log"))
	writeGroundTruth(t, filepath.Join(dir, "ground_truth.log"), start)

	cfg, err := config.ReadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Macrotracking.MapBasedCorrection = mapCorrection
	cfg.Macrotracking.Workers = 2
	cfg.Map.Source = config.SourceOSM
	cfg.Map.SourcePath = filepath.Join(dir, "road.osm")
	cfg.Files.TraceRoot = dir
	cfg.Files.OutputRoot = filepath.Join(dir, "out")
	cfg.Traces = []config.TraceConfig{
		{Name: "SAMPLE_TRACE", TraceFile: "trace.log", GroundTruthFile: "ground_truth.log",
			StartLat: start.Lat, StartLon: start.Lon, StartHeading: 0, Offset: -1},
		{Name: "BROKEN_TRACE", TraceFile: "missing.log", StartLat: start.Lat, StartLon: start.Lon, Offset: -1},
	}
	require.NoError(t, cfg.Validate())

	registry, err := cfg.Registry()
	require.NoError(t, err)
	source, err := NewRoadGraphSource(cfg.Map, zap.NewNop())
	require.NoError(t, err)
	return fixture{cfg: cfg, registry: registry, source: source}
}

func TestRunWithMapCorrection(t *testing.T) {
	f := newFixture(t, true)
	r := NewRunner(f.cfg, f.registry, f.source, zap.NewNop())

	report, err := r.RunByName(context.Background(), "SAMPLE_TRACE")
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, filepath.Join(f.cfg.Files.OutputRoot, "SAMPLE_TRACE"), report.OutputFolder)
	assert.Equal(t, 243, report.Frames)
	assert.Equal(t, 1, report.SkippedLines)
	assert.Greater(t, report.States, 30)
	assert.Greater(t, report.CorrectedStates, 10)
	assert.GreaterOrEqual(t, report.MapFetches, 2)
	assert.InDelta(t, 640, report.TotalDistance, 30)
	require.NotNil(t, report.Comparison)
	assert.Len(t, report.Comparison.Errors, 70)
	// states are 16.5 m apart, the ground truth 10 m
	assert.Less(t, report.Comparison.Mean, 10.0)
	assert.LessOrEqual(t, report.Comparison.Errors[30], 10.0)

	for _, name := range []string{LocationLogFile, NodeLogFile, ChosenLocationsFile, SummaryFile,
		HTMLPlotFile, PNGPlotFile, GeoJSONFile} {
		assert.FileExists(t, filepath.Join(report.OutputFolder, name))
	}
	locations, err := tracefile.ReadLocationFile(filepath.Join(report.OutputFolder, LocationLogFile))
	require.NoError(t, err)
	assert.Len(t, locations, report.States)
	for _, l := range locations {
		assert.InDelta(t, roadLat, l.Lat, 1e-4)
	}
}

func TestRunWithoutMapCorrection(t *testing.T) {
	f := newFixture(t, false)
	r := NewRunner(f.cfg, f.registry, f.source, zap.NewNop())

	report, err := r.RunByName(context.Background(), "SAMPLE_TRACE")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.cfg.Files.OutputRoot, "SAMPLE_TRACE_uncorrected"), report.OutputFolder)
	assert.Equal(t, 0, report.MapFetches)
	assert.Equal(t, 0, report.CorrectedStates)
	assert.NoFileExists(t, filepath.Join(report.OutputFolder, NodeLogFile))
	// the first state is one propagation step (16.5 m) after the start
	assert.InDelta(t, 16.5, report.EndDistance-report.TotalDistance, 1e-6)
}

func TestRunWindow(t *testing.T) {
	f := newFixture(t, false)
	d, err := f.registry.Get("SAMPLE_TRACE")
	require.NoError(t, err)
	d.StartIndex = 10
	d.Offset = 40

	report, err := NewRunner(f.cfg, f.registry, f.source, zap.NewNop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 51, report.Frames)
	assert.Less(t, report.TotalDistance, 200.0)
}

func TestRunConvertsGPSFile(t *testing.T) {
	f := newFixture(t, false)
	d, err := f.registry.Get("SAMPLE_TRACE")
	require.NoError(t, err)
	d.GPSFile = filepath.Join(f.cfg.Files.TraceRoot, "gps.csv")
	require.NoError(t, os.WriteFile(d.GPSFile, []byte("time,lat,lon\n1000.0,47.47,19.03\n1001.0,47.47,19.0301\n"), 0o644))

	report, err := NewRunner(f.cfg, f.registry, f.source, zap.NewNop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 2, report.GPSPoints)

	content, err := os.ReadFile(filepath.Join(report.OutputFolder, GPSLogFile))
	require.NoError(t, err)
	assert.Equal(t, "47.47\t19.03\n47.47\t19.0301\n", string(content))

	d.GPSFile = "missing.gpx"
	_, err = NewRunner(f.cfg, f.registry, f.source, zap.NewNop()).Run(context.Background(), d)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunMapUnavailable(t *testing.T) {
	f := newFixture(t, true)
	f.cfg.Map.SourcePath = filepath.Join(t.TempDir(), "missing.osm")
	source, err := NewRoadGraphSource(f.cfg.Map, zap.NewNop())
	require.NoError(t, err)

	_, err = NewRunner(f.cfg, f.registry, source, zap.NewNop()).RunByName(context.Background(), "SAMPLE_TRACE")
	assert.ErrorIs(t, err, roadnetwork.ErrMapUnavailable)
}

func TestRunAll(t *testing.T) {
	f := newFixture(t, true)
	r := NewRunner(f.cfg, f.registry, f.source, zap.NewNop())

	results := r.RunAll(context.Background())
	require.Len(t, results, 2)
	byName := make(map[string]BatchResult)
	for _, res := range results {
		byName[res.Trace] = res
	}
	assert.NoError(t, byName["SAMPLE_TRACE"].Err)
	assert.NotNil(t, byName["SAMPLE_TRACE"].Report)
	assert.Error(t, byName["BROKEN_TRACE"].Err)

	results = r.RunAll(context.Background(), "NOPE")
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, trace.ErrUnknownTrace)
}

func TestNewRoadGraphSource(t *testing.T) {
	cfg := config.MapConfig{Source: config.SourceOverpass}
	s, err := NewRoadGraphSource(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &osmparser.OverpassSource{}, s)

	cfg.Source = config.SourcePBF
	s, err = NewRoadGraphSource(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &osmparser.PBFSource{}, s)

	cfg.Source = "shapefile"
	_, err = NewRoadGraphSource(cfg, zap.NewNop())
	assert.Error(t, err)
}
