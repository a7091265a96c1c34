package macrotracking

import (
	"context"

	"github.com/lintang-b-s/macrotracking/pkg/concurrent"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"go.uber.org/zap"
)

type BatchResult struct {
	Trace  string
	Report *Report
	Err    error
}

// RunAll runs the given traces (every registered trace if none is given) on the configured number of
// workers. a failing trace does not stop the others.
func (r *Runner) RunAll(ctx context.Context, names ...string) []BatchResult {
	descriptors := make([]trace.Descriptor, 0, len(names))
	results := make([]BatchResult, 0, len(names))
	if len(names) == 0 {
		descriptors = r.registry.All()
	}
	for _, name := range names {
		d, err := r.registry.Get(name)
		if err != nil {
			results = append(results, BatchResult{Trace: name, Err: err})
			continue
		}
		descriptors = append(descriptors, d)
	}

	runs := concurrent.Run(ctx, r.cfg.Macrotracking.Workers, descriptors,
		func(ctx context.Context, d trace.Descriptor) BatchResult {
			report, err := r.Run(ctx, d)
			if err != nil {
				r.log.Error("trace run failed", zap.String("trace", d.Name), zap.Error(err))
			}
			return BatchResult{Trace: d.Name, Report: report, Err: err}
		})
	return append(results, runs...)
}
