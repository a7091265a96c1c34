package controllers

import (
	"context"

	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"github.com/lintang-b-s/macrotracking/pkg/macrotracking"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"github.com/lintang-b-s/macrotracking/pkg/tracefile"
)

type TraceService interface {
	Traces() []trace.Descriptor
	Trajectory(name string) ([]tracefile.LocationRecord, error)
	Compare(name string, target int) (comparator.Result, error)
	PlotPath(name string) (string, error)
	Run(ctx context.Context, name string) (*macrotracking.Report, error)
}
