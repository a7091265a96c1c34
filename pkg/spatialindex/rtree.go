package spatialindex

import (
	"math"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree indexes road edges and intersection nodes of a road window in the web mercator frame.
type Rtree struct {
	edges *rtree.RTreeG[datastructure.Index]
	nodes *rtree.RTreeG[int64]
}

func NewRtree() *Rtree {
	var edges rtree.RTreeG[datastructure.Index]
	var nodes rtree.RTreeG[int64]
	return &Rtree{
		edges: &edges,
		nodes: &nodes,
	}
}

// Build. build r-tree, every edge is inserted with its planar bounding box, every intersection node as a point.
func (rt *Rtree) Build(graph *datastructure.RoadGraph, log *zap.Logger) {
	log.Debug("Building R-tree spatial index...", zap.Int("edges", graph.NumberOfEdges()))
	graph.ForEdges(func(e datastructure.RoadEdge, from, to *datastructure.RoadNode) {
		fp, tp := from.GetPosition(), to.GetPosition()
		rt.edges.Insert([2]float64{math.Min(fp.X, tp.X), math.Min(fp.Y, tp.Y)},
			[2]float64{math.Max(fp.X, tp.X), math.Max(fp.Y, tp.Y)}, e.GetID())
	})

	for _, n := range graph.IntersectionNodes() {
		p := n.GetPosition()
		rt.nodes.Insert([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y}, n.GetID())
	}
	log.Debug("R-tree spatial index built.", zap.Int("indexedEdges", rt.edges.Len()),
		zap.Int("indexedNodes", rt.nodes.Len()))
}

func (rt *Rtree) NumberOfEdges() int {
	return rt.edges.Len()
}

func (rt *Rtree) NumberOfNodes() int {
	return rt.nodes.Len()
}

// SearchEdgesWithinRadius returns edges whose bounding box intersects the square of half size radius (meter) around p.
func (rt *Rtree) SearchEdgesWithinRadius(p geo.Position, radius float64) []datastructure.Index {
	results := make([]datastructure.Index, 0, 16)
	rt.edges.Search([2]float64{p.X - radius, p.Y - radius}, [2]float64{p.X + radius, p.Y + radius},
		func(min, max [2]float64, data datastructure.Index) bool {
			results = append(results, data)
			return true
		})
	return results
}

// SearchNodesWithinRadius returns intersection nodes inside the square of half size radius (meter) around p.
func (rt *Rtree) SearchNodesWithinRadius(p geo.Position, radius float64) []int64 {
	results := make([]int64, 0, 8)
	rt.nodes.Search([2]float64{p.X - radius, p.Y - radius}, [2]float64{p.X + radius, p.Y + radius},
		func(min, max [2]float64, data int64) bool {
			results = append(results, data)
			return true
		})
	return results
}
