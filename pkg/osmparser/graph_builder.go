package osmparser

import (
	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

// buildWindow builds the drivable road graph around center (radius in meter).
// the window is a straight-line (geodesic) circle, not a network distance ball:
// ways are cut where they leave the circle; the largest connected component is kept.
// nodes at way ends and nodes shared by several ways are marked as intersections,
// this is the node set of the simplified graph.
func (d *osmData) buildWindow(center geo.Position, radius float64) *datastructure.RoadGraph {
	minLat, minLon, maxLat, maxLon := geo.BoundingBoxAround(center.Lat, center.Lon, radius*1.01)
	inside := make(map[int64]bool, len(d.nodes))
	isInside := func(id int64) bool {
		in, ok := inside[id]
		if ok {
			return in
		}
		coord, known := d.nodes[id]
		in = known && coord.lat >= minLat && coord.lat <= maxLat && coord.lon >= minLon && coord.lon <= maxLon &&
			geo.GeodesicDistance(center, geo.NewPosition(coord.lat, coord.lon)) <= radius
		inside[id] = in
		return in
	}

	type run struct {
		wayID int64
		nodes []int64
	}
	runs := make([]run, 0, len(d.ways))
	for _, way := range d.ways {
		current := make([]int64, 0, len(way.nodes))
		for _, id := range way.nodes {
			if isInside(id) {
				current = append(current, id)
				continue
			}
			if len(current) >= 2 {
				runs = append(runs, run{way.id, current})
			}
			current = make([]int64, 0, len(way.nodes))
		}
		if len(current) >= 2 {
			runs = append(runs, run{way.id, current})
		}
	}

	wayNodeMap := make(map[int64]NodeType)
	for _, r := range runs {
		for i, id := range r.nodes {
			if _, ok := wayNodeMap[id]; !ok {
				if i == 0 || i == len(r.nodes)-1 {
					wayNodeMap[id] = END_NODE
				} else {
					wayNodeMap[id] = BETWEEN_NODE
				}
			} else {
				wayNodeMap[id] = JUNCTION_NODE
			}
		}
	}

	graph := datastructure.NewRoadGraph()
	for _, r := range runs {
		for _, id := range r.nodes {
			if _, ok := graph.GetNode(id); ok {
				continue
			}
			coord := d.nodes[id]
			graph.AddNode(datastructure.NewRoadNode(id, coord.lat, coord.lon, wayNodeMap[id] != BETWEEN_NODE))
		}
		for i := 0; i+1 < len(r.nodes); i++ {
			graph.AddEdge(r.nodes[i], r.nodes[i+1], r.wayID)
		}
	}

	return graph.LargestComponent()
}
