package usecases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"github.com/lintang-b-s/macrotracking/pkg/macrotracking"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"github.com/lintang-b-s/macrotracking/pkg/tracefile"
	"github.com/lintang-b-s/macrotracking/pkg/util"
	"go.uber.org/zap"
)

// TraceService serves the output files of trace runs. Runs of the same trace are serialized because
// they write the same output folder.
type TraceService struct {
	runner TraceRunner
	log    *zap.Logger

	mu      sync.Mutex
	running map[string]*sync.Mutex
}

func NewTraceService(runner TraceRunner, log *zap.Logger) *TraceService {
	return &TraceService{
		runner:  runner,
		log:     log,
		running: make(map[string]*sync.Mutex),
	}
}

func (s *TraceService) Traces() []trace.Descriptor {
	return s.runner.Registry().All()
}

func (s *TraceService) descriptor(name string) (trace.Descriptor, error) {
	d, err := s.runner.Registry().Get(name)
	if err != nil {
		return trace.Descriptor{}, util.WrapErrorf(err, util.ErrNotFound, "trace %s", name)
	}
	return d, nil
}

func (s *TraceService) outputFile(d trace.Descriptor, file string) (string, error) {
	path := filepath.Join(s.runner.OutputFolder(d), file)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", util.WrapErrorf(err, util.ErrNotFound, "trace %s has not been run yet", d.Name)
		}
		return "", util.WrapErrorf(err, util.ErrInternalServerError, "stat %s", path)
	}
	return path, nil
}

// Trajectory returns the location log of the last run of the trace.
func (s *TraceService) Trajectory(name string) ([]tracefile.LocationRecord, error) {
	d, err := s.descriptor(name)
	if err != nil {
		return nil, err
	}
	path, err := s.outputFile(d, macrotracking.LocationLogFile)
	if err != nil {
		return nil, err
	}
	records, err := tracefile.ReadLocationFile(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "read %s", path)
	}
	return records, nil
}

// Compare recomputes the comparison of the last run against the ground truth with another sample target.
func (s *TraceService) Compare(name string, target int) (comparator.Result, error) {
	d, err := s.descriptor(name)
	if err != nil {
		return comparator.Result{}, err
	}
	if d.GroundTruthFile == "" {
		return comparator.Result{}, util.NewErrorf(util.ErrBadParamInput, "trace %s has no ground truth", name)
	}
	path, err := s.outputFile(d, macrotracking.LocationLogFile)
	if err != nil {
		return comparator.Result{}, err
	}
	trajectory, err := tracefile.ReadPositionFile(path)
	if err != nil {
		return comparator.Result{}, util.WrapErrorf(err, util.ErrInternalServerError, "read %s", path)
	}
	groundTruth, err := tracefile.ReadPositionFile(s.runner.Registry().GroundTruthPath(d))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return comparator.Result{}, util.WrapErrorf(err, util.ErrNotFound, "ground truth of %s", name)
		}
		return comparator.Result{}, util.WrapErrorf(err, util.ErrInternalServerError, "read ground truth of %s", name)
	}

	res, err := comparator.NewComparator(target, s.log).Compare(trajectory, groundTruth)
	if err != nil {
		if errors.Is(err, comparator.ErrEmptyTrace) || errors.Is(err, comparator.ErrInsufficientSamples) {
			return comparator.Result{}, util.WrapErrorf(err, util.ErrBadParamInput, "compare %s", name)
		}
		return comparator.Result{}, util.WrapErrorf(err, util.ErrInternalServerError, "compare %s", name)
	}
	return res, nil
}

func (s *TraceService) PlotPath(name string) (string, error) {
	d, err := s.descriptor(name)
	if err != nil {
		return "", err
	}
	return s.outputFile(d, macrotracking.HTMLPlotFile)
}

func (s *TraceService) Run(ctx context.Context, name string) (*macrotracking.Report, error) {
	if _, err := s.descriptor(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	lock, ok := s.running[name]
	if !ok {
		lock = &sync.Mutex{}
		s.running[name] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	report, err := s.runner.RunByName(ctx, name)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "run %s", name)
	}
	s.log.Info("trace run finished", zap.String("trace", name), zap.String("runID", report.RunID))
	return report, nil
}
