package roadnetwork

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/spatialindex"
	"github.com/lintang-b-s/macrotracking/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrMapUnavailable = errors.New("road network unavailable")
)

const (
	initialSearchRadius = 50.0 // meter
)

// RoadGraphSource provides the drivable road graph inside a circle (radius in meter).
type RoadGraphSource interface {
	FetchWindow(ctx context.Context, center geo.Position, radius float64) (*datastructure.RoadGraph, error)
}

type Options struct {
	Radius           float64       // radius of a fetched window (meter)
	RefetchThreshold float64       // distance from the window center that triggers a refetch (meter)
	EdgeFlipAngle    float64       // edge bearing is reversed when it differs from the heading by more than this (degree)
	FetchTimeout     time.Duration // bound of a single source call, 0 means none
}

// Window. road graph around center together with its spatial index. replaced wholesale on recenter.
type Window struct {
	center           geo.Position
	radius           float64
	refetchThreshold float64
	graph            *datastructure.RoadGraph
	rtree            *spatialindex.Rtree
}

func (w *Window) Center() geo.Position {
	return w.center
}

func (w *Window) Radius() float64 {
	return w.radius
}

func (w *Window) Graph() *datastructure.RoadGraph {
	return w.graph
}

// contains reports whether pos is still served by this window.
func (w *Window) contains(pos geo.Position) bool {
	return geo.Distance(w.center, pos) < w.refetchThreshold
}

// EdgeMatch. nearest road edge to a position.
type EdgeMatch struct {
	Snapped  geo.Position // projection of the query position on the edge line
	Bearing  float64      // edge bearing oriented along the vehicle heading (degree)
	StartID  int64
	EndID    int64
	Distance float64 // query position to edge segment (meter)
}

// Index. local road network around the vehicle, refetched from the source when the vehicle
// drives away from the window center.
type Index struct {
	source  RoadGraphSource
	opts    Options
	log     *zap.Logger
	window  *Window
	fetches int

	usedNodes []*datastructure.RoadNode
	usedSeen  map[int64]struct{}
}

func NewIndex(source RoadGraphSource, opts Options, log *zap.Logger) *Index {
	return &Index{
		source:    source,
		opts:      opts,
		log:       log,
		usedNodes: make([]*datastructure.RoadNode, 0),
		usedSeen:  make(map[int64]struct{}),
	}
}

func (idx *Index) Window() *Window {
	return idx.window
}

// Fetches returns how many windows were downloaded so far.
func (idx *Index) Fetches() int {
	return idx.fetches
}

// EnsureWindow fetches a new window centered at pos if there is none yet or pos is at least
// the refetch threshold away from the current center.
func (idx *Index) EnsureWindow(ctx context.Context, pos geo.Position) error {
	if idx.window != nil && idx.window.contains(pos) {
		return nil
	}

	fetchCtx := ctx
	if idx.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, idx.opts.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	graph, err := idx.source.FetchWindow(fetchCtx, pos, idx.opts.Radius)
	if err != nil {
		return util.WrapErrorf(err, ErrMapUnavailable, "fetch road window at %v", pos)
	}
	if graph == nil || graph.NumberOfEdges() == 0 {
		return util.NewErrorf(ErrMapUnavailable, "no drivable road within %.0f m of %v", idx.opts.Radius, pos)
	}

	rt := spatialindex.NewRtree()
	rt.Build(graph, idx.log)
	idx.window = &Window{
		center:           pos,
		radius:           idx.opts.Radius,
		refetchThreshold: idx.opts.RefetchThreshold,
		graph:            graph,
		rtree:            rt,
	}
	idx.fetches++
	idx.log.Info("road window fetched", zap.Float64("lat", pos.Lat), zap.Float64("lon", pos.Lon),
		zap.Int("nodes", graph.NumberOfNodes()), zap.Int("edges", graph.NumberOfEdges()),
		zap.Duration("took", time.Since(start)))
	if bb := graph.GetBoundingBox(); bb != nil {
		idx.log.Debug("road window extent", zap.Float64("minLat", bb.GetMinLat()), zap.Float64("minLon", bb.GetMinLon()),
			zap.Float64("maxLat", bb.GetMaxLat()), zap.Float64("maxLon", bb.GetMaxLon()))
	}
	return nil
}

// NearestEdge returns the edge closest to pos. the search box grows until the best candidate
// is closer than the box half size, so it is the nearest edge of the whole window.
func (idx *Index) NearestEdge(ctx context.Context, pos geo.Position, heading float64) (EdgeMatch, error) {
	if err := idx.EnsureWindow(ctx, pos); err != nil {
		return EdgeMatch{}, err
	}
	w := idx.window

	best := math.MaxFloat64
	var bestEdge datastructure.RoadEdge
	found := false
	for radius := initialSearchRadius; ; radius *= 2 {
		for _, id := range w.rtree.SearchEdgesWithinRadius(pos, radius) {
			e := w.graph.GetEdge(id)
			from, _ := w.graph.GetNode(e.GetFrom())
			to, _ := w.graph.GetNode(e.GetTo())
			d := geo.DistanceToSegment(from.GetPosition(), to.GetPosition(), pos)
			if d < best {
				best = d
				bestEdge = e
				found = true
			}
		}
		if (found && best <= radius) || radius > 4*(w.radius+geo.Distance(w.center, pos)) {
			break
		}
	}
	if !found {
		return EdgeMatch{}, util.NewErrorf(ErrMapUnavailable, "no road edge near %v", pos)
	}

	from, _ := w.graph.GetNode(bestEdge.GetFrom())
	to, _ := w.graph.GetNode(bestEdge.GetTo())
	a, b := from.GetPosition(), to.GetPosition()

	bearing := geo.Bearing(a, b)
	if geo.HeadingDifference(heading, bearing) > idx.opts.EdgeFlipAngle {
		bearing = util.NormalizeDegree(bearing + 180)
	}

	idx.markUsed(from)
	idx.markUsed(to)

	return EdgeMatch{
		Snapped:  geo.ProjectOntoLine(a, b, pos),
		Bearing:  bearing,
		StartID:  from.GetID(),
		EndID:    to.GetID(),
		Distance: best,
	}, nil
}

// DistanceToNearestIntersection. planar distance (meter) from pos to the closest intersection node of the window.
func (idx *Index) DistanceToNearestIntersection(ctx context.Context, pos geo.Position) (float64, error) {
	if err := idx.EnsureWindow(ctx, pos); err != nil {
		return 0, err
	}
	w := idx.window

	best := math.MaxFloat64
	found := false
	for radius := initialSearchRadius; ; radius *= 2 {
		for _, id := range w.rtree.SearchNodesWithinRadius(pos, radius) {
			n, _ := w.graph.GetNode(id)
			if d := geo.Distance(n.GetPosition(), pos); d < best {
				best = d
				found = true
			}
		}
		if (found && best <= radius) || radius > 4*(w.radius+geo.Distance(w.center, pos)) {
			break
		}
	}
	if !found {
		return 0, util.NewErrorf(ErrMapUnavailable, "no intersection near %v", pos)
	}
	return best, nil
}

func (idx *Index) markUsed(n *datastructure.RoadNode) {
	if _, ok := idx.usedSeen[n.GetID()]; ok {
		return
	}
	idx.usedSeen[n.GetID()] = struct{}{}
	idx.usedNodes = append(idx.usedNodes, n)
}

// UsedNodes returns the endpoints of every edge used for a correction, in first use order.
func (idx *Index) UsedNodes() []*datastructure.RoadNode {
	res := make([]*datastructure.RoadNode, len(idx.usedNodes))
	copy(res, idx.usedNodes)
	return res
}
