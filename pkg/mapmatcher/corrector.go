package mapmatcher

import (
	"context"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/roadnetwork"
	"github.com/lintang-b-s/macrotracking/pkg/util"
	"go.uber.org/zap"
)

// RoadIndex. local road network queries used by the corrector.
type RoadIndex interface {
	NearestEdge(ctx context.Context, pos geo.Position, heading float64) (roadnetwork.EdgeMatch, error)
	DistanceToNearestIntersection(ctx context.Context, pos geo.Position) (float64, error)
}

type Options struct {
	PositionWeight          float64 // weights used before the first correction
	HeadingWeight           float64
	MaxPositionWeight       float64
	MaxHeadingWeight        float64
	MaxIntersectionDistance float64 // meter, full map weight from this distance on
	MaxHeadingDifference    float64 // degree, larger vehicle/edge differences keep the raw heading
}

func DefaultOptions() Options {
	return Options{
		PositionWeight:          0.4,
		HeadingWeight:           0.2,
		MaxPositionWeight:       0.7,
		MaxHeadingWeight:        0.7,
		MaxIntersectionDistance: 150,
		MaxHeadingDifference:    45,
	}
}

// Corrector blends a dead reckoning state with the nearest road. the map is trusted less close to
// intersections, where the nearest edge is ambiguous.
type Corrector struct {
	index RoadIndex
	opts  Options
	log   *zap.Logger

	positionWeight float64
	headingWeight  float64
	divergences    int
}

func NewCorrector(index RoadIndex, opts Options, log *zap.Logger) *Corrector {
	return &Corrector{
		index:          index,
		opts:           opts,
		log:            log,
		positionWeight: opts.PositionWeight,
		headingWeight:  opts.HeadingWeight,
	}
}

// Weights returns the position and heading weight of the map at distance d (meter) from the nearest intersection.
func (c *Corrector) Weights(d float64) (float64, float64) {
	if d >= c.opts.MaxIntersectionDistance {
		return c.opts.MaxPositionWeight, c.opts.MaxHeadingWeight
	}
	ratio := d / c.opts.MaxIntersectionDistance
	return ratio * c.opts.MaxPositionWeight, ratio * c.opts.MaxHeadingWeight
}

// CurrentWeights. weights of the last correction.
func (c *Corrector) CurrentWeights() (float64, float64) {
	return c.positionWeight, c.headingWeight
}

// Divergences counts corrections where the vehicle and edge headings disagreed.
func (c *Corrector) Divergences() int {
	return c.divergences
}

func (c *Corrector) Correct(ctx context.Context, pos geo.Position, heading, speed, t float64) (datastructure.VehicleState, error) {
	match, err := c.index.NearestEdge(ctx, pos, heading)
	if err != nil {
		return datastructure.VehicleState{}, err
	}
	d, err := c.index.DistanceToNearestIntersection(ctx, pos)
	if err != nil {
		return datastructure.VehicleState{}, err
	}
	c.positionWeight, c.headingWeight = c.Weights(d)

	corrected := geo.Lerp(pos, match.Snapped, c.positionWeight)

	newHeading := heading
	if geo.HeadingDifference(heading, match.Bearing) < c.opts.MaxHeadingDifference {
		newHeading = util.NormalizeDegree((1.0-c.headingWeight)*heading + c.headingWeight*match.Bearing)
	} else {
		c.divergences++
		c.log.Error("vehicle heading and edge bearing mismatch", zap.Float64("heading", heading),
			zap.Float64("edgeBearing", match.Bearing), zap.Int64("startID", match.StartID),
			zap.Int64("endID", match.EndID), zap.Float64("time", t))
	}

	return datastructure.NewCorrectedVehicleState(t, corrected, newHeading, speed, c.positionWeight,
		match.StartID, match.EndID), nil
}
