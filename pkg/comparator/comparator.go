package comparator

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultTarget = 100
)

var (
	ErrEmptyTrace          = errors.New("trace is empty")
	ErrInsufficientSamples = errors.New("at least two samples are needed for the standard deviation")
)

// Result. error statistics (meter) of a trajectory against the ground truth.
type Result struct {
	Mean           float64
	StdDev         float64
	Errors         []float64      // distance of every sampled ground truth point to its nearest trajectory point
	Matched        []geo.Position // nearest trajectory point of every sample
	SampledIndices []int          // ground truth indices of the samples
}

// Comparator samples about target points of the ground truth and measures the distance of each one to
// the closest point of the reconstructed trajectory.
type Comparator struct {
	target int
	log    *zap.Logger
}

func NewComparator(target int, log *zap.Logger) *Comparator {
	if target <= 0 {
		target = DefaultTarget
	}
	return &Comparator{target: target, log: log}
}

// SampleIndices returns 0, stride, 2*stride, ... below n with stride = max(1, n/target).
// the last point is only included when it falls on the stride.
func SampleIndices(n, target int) []int {
	stride := n / target
	if stride < 1 {
		stride = 1
	}
	res := make([]int, 0, target+1)
	for i := 0; i*stride < n; i++ {
		res = append(res, i*stride)
	}
	return res
}

func (c *Comparator) Compare(trajectory, groundTruth []geo.Position) (Result, error) {
	if len(trajectory) == 0 {
		return Result{}, fmt.Errorf("trajectory: %w", ErrEmptyTrace)
	}
	if len(groundTruth) == 0 {
		return Result{}, fmt.Errorf("ground truth: %w", ErrEmptyTrace)
	}

	indices := SampleIndices(len(groundTruth), c.target)
	c.log.Debug(fmt.Sprintf("Ground truth locations chosen. Number of points: %d", len(indices)))
	if len(indices) < 2 {
		return Result{}, fmt.Errorf("%d sample(s): %w", len(indices), ErrInsufficientSamples)
	}

	res := Result{
		Errors:         make([]float64, 0, len(indices)),
		Matched:        make([]geo.Position, 0, len(indices)),
		SampledIndices: indices,
	}
	for _, i := range indices {
		closest, d := nearest(trajectory, groundTruth[i])
		res.Errors = append(res.Errors, d)
		res.Matched = append(res.Matched, closest)
	}
	res.Mean = stat.Mean(res.Errors, nil)
	res.StdDev = stat.StdDev(res.Errors, nil)
	return res, nil
}

// nearest. brute force over the whole trajectory, the first of equally close points wins.
func nearest(trajectory []geo.Position, p geo.Position) (geo.Position, float64) {
	best := math.MaxFloat64
	var closest geo.Position
	for _, q := range trajectory {
		if d := geo.Distance(q, p); d < best {
			best = d
			closest = q
		}
	}
	return closest, best
}
