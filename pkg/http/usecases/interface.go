package usecases

import (
	"context"

	"github.com/lintang-b-s/macrotracking/pkg/macrotracking"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
)

type TraceRunner interface {
	Registry() *trace.Registry
	OutputFolder(d trace.Descriptor) string
	RunByName(ctx context.Context, name string) (*macrotracking.Report, error)
}
