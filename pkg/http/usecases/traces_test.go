package usecases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/macrotracking/pkg/macrotracking"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"github.com/lintang-b-s/macrotracking/pkg/tracefile"
	"github.com/lintang-b-s/macrotracking/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	registry *trace.Registry
	output   string
	runs     int
	err      error
}

func (f *fakeRunner) Registry() *trace.Registry { return f.registry }

func (f *fakeRunner) OutputFolder(d trace.Descriptor) string {
	return trace.OutputFolder(f.output, d, true)
}

func (f *fakeRunner) RunByName(ctx context.Context, name string) (*macrotracking.Report, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &macrotracking.Report{RunID: "run", Trace: name}, nil
}

var testRecords = []tracefile.LocationRecord{
	{Time: 1, Lat: 48.1, Lon: 11.5, Heading: 90, Speed: 10},
	{Time: 2, Lat: 48.1001, Lon: 11.5, Heading: 90, Speed: 10},
	{Time: 3, Lat: 48.1002, Lon: 11.5, Heading: 90, Speed: 10},
	{Time: 4, Lat: 48.1003, Lon: 11.5, Heading: 90, Speed: 10},
}

func newService(t *testing.T) (*TraceService, *fakeRunner) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, tracefile.WriteLocationFile(filepath.Join(root, "morning_gt.log"), testRecords))

	registry, err := trace.NewRegistry(root, []trace.Descriptor{
		{Name: "morning", TraceFile: "morning.log", GroundTruthFile: "morning_gt.log", Offset: -1},
		{Name: "evening", TraceFile: "evening.log", Offset: -1},
	})
	require.NoError(t, err)

	runner := &fakeRunner{registry: registry, output: filepath.Join(root, "out")}
	return NewTraceService(runner, zap.NewNop()), runner
}

func writeOutput(t *testing.T, runner *fakeRunner, name string) {
	t.Helper()
	d, err := runner.registry.Get(name)
	require.NoError(t, err)
	folder := runner.OutputFolder(d)
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, tracefile.WriteLocationFile(filepath.Join(folder, macrotracking.LocationLogFile), testRecords))
	require.NoError(t, os.WriteFile(filepath.Join(folder, macrotracking.HTMLPlotFile), []byte("<html></html>"), 0o644))
}

func TestTraces(t *testing.T) {
	svc, _ := newService(t)
	traces := svc.Traces()
	require.Len(t, traces, 2)
	assert.Equal(t, "evening", traces[0].Name)
	assert.Equal(t, "morning", traces[1].Name)
}

func TestTrajectoryNotRunYet(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Trajectory("morning")
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.Trajectory("unknown")
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.ErrorIs(t, err, trace.ErrUnknownTrace)
}

func TestTrajectoryAndPlot(t *testing.T) {
	svc, runner := newService(t)
	writeOutput(t, runner, "morning")

	records, err := svc.Trajectory("morning")
	require.NoError(t, err)
	assert.Equal(t, testRecords, records)

	path, err := svc.PlotPath("morning")
	require.NoError(t, err)
	assert.Equal(t, macrotracking.HTMLPlotFile, filepath.Base(path))
}

func TestCompare(t *testing.T) {
	svc, runner := newService(t)
	writeOutput(t, runner, "morning")

	res, err := svc.Compare("morning", 2)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Mean, 1e-6)
	assert.Equal(t, []int{0, 2}, res.SampledIndices)
}

func TestCompareWithoutGroundTruth(t *testing.T) {
	svc, runner := newService(t)
	writeOutput(t, runner, "evening")

	_, err := svc.Compare("evening", 10)
	assert.ErrorIs(t, err, util.ErrBadParamInput)
}

func TestRun(t *testing.T) {
	svc, runner := newService(t)

	report, err := svc.Run(context.Background(), "morning")
	require.NoError(t, err)
	assert.Equal(t, "morning", report.Trace)
	assert.Equal(t, 1, runner.runs)

	_, err = svc.Run(context.Background(), "unknown")
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.Equal(t, 1, runner.runs)

	runner.err = errors.New("boom")
	_, err = svc.Run(context.Background(), "morning")
	assert.ErrorIs(t, err, util.ErrInternalServerError)
}
