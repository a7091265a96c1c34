package osmparser

import (
	"github.com/paulmach/osm"
)

type NodeType uint8

const (
	BETWEEN_NODE NodeType = iota
	END_NODE
	JUNCTION_NODE
)

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

func (n NodeCoord) GetLat() float64 {
	return n.lat
}

func (n NodeCoord) GetLon() float64 {
	return n.lon
}

type osmWay struct {
	id    int64
	nodes []int64
	hwTag string
}

// osmData. drivable ways and the coordinates of their nodes, decoded from any osm source.
type osmData struct {
	ways  []osmWay
	nodes map[int64]NodeCoord
}

func newOsmData() *osmData {
	return &osmData{
		ways:  make([]osmWay, 0),
		nodes: make(map[int64]NodeCoord),
	}
}

func (d *osmData) addWay(way *osm.Way) {
	nodes := make([]int64, 0, len(way.Nodes))
	for _, n := range way.Nodes {
		nodes = append(nodes, int64(n.ID))
	}
	d.ways = append(d.ways, osmWay{
		id:    int64(way.ID),
		nodes: nodes,
		hwTag: way.Tags.Find("highway"),
	})
}

func (d *osmData) addNode(node *osm.Node) {
	d.nodes[int64(node.ID)] = NewNodeCoord(node.Lat, node.Lon)
}

// fromOSM collects the drivable ways (and all nodes) of a decoded osm document.
func fromOSM(o *osm.OSM) *osmData {
	d := newOsmData()
	for _, node := range o.Nodes {
		d.addNode(node)
	}
	for _, way := range o.Ways {
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		d.addWay(way)
	}
	return d
}
