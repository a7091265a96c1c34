package datastructure

import (
	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

type Index uint32

// RoadNode. openstreetmap node of the drivable road network.
type RoadNode struct {
	id           int64
	position     geo.Position
	intersection bool // kept by the simplified (intersection only) graph
}

func NewRoadNode(id int64, lat, lon float64, intersection bool) *RoadNode {
	return &RoadNode{
		id:           id,
		position:     geo.NewPosition(lat, lon),
		intersection: intersection,
	}
}

func (n *RoadNode) GetID() int64 {
	return n.id
}

func (n *RoadNode) GetPosition() geo.Position {
	return n.position
}

func (n *RoadNode) GetLat() float64 {
	return n.position.Lat
}

func (n *RoadNode) GetLon() float64 {
	return n.position.Lon
}

func (n *RoadNode) IsIntersection() bool {
	return n.intersection
}

// RoadEdge. straight road segment between two consecutive nodes of an osm way.
// edges are undirected.
type RoadEdge struct {
	id     Index
	from   int64
	to     int64
	wayID  int64
	length float64 // meter, in projected frame
}

func NewRoadEdge(id Index, from, to, wayID int64, length float64) RoadEdge {
	return RoadEdge{
		id:     id,
		from:   from,
		to:     to,
		wayID:  wayID,
		length: length,
	}
}

func (e RoadEdge) GetID() Index {
	return e.id
}

func (e RoadEdge) GetFrom() int64 {
	return e.from
}

func (e RoadEdge) GetTo() int64 {
	return e.to
}

func (e RoadEdge) GetWayID() int64 {
	return e.wayID
}

func (e RoadEdge) GetLength() float64 {
	return e.length
}

// RoadGraph. local window of the drivable road network.
type RoadGraph struct {
	nodes     map[int64]*RoadNode
	nodeOrder []int64
	edges     []RoadEdge
}

func NewRoadGraph() *RoadGraph {
	return &RoadGraph{
		nodes:     make(map[int64]*RoadNode),
		nodeOrder: make([]int64, 0),
		edges:     make([]RoadEdge, 0),
	}
}

// AddNode. adding an already known id overwrites the node but keeps its insertion order.
func (g *RoadGraph) AddNode(n *RoadNode) {
	if _, ok := g.nodes[n.id]; !ok {
		g.nodeOrder = append(g.nodeOrder, n.id)
	}
	g.nodes[n.id] = n
}

// AddEdge adds an edge between two known nodes and returns its id. ok is false if an endpoint is missing
// or the edge is a self loop.
func (g *RoadGraph) AddEdge(from, to, wayID int64) (Index, bool) {
	fromNode, okFrom := g.nodes[from]
	toNode, okTo := g.nodes[to]
	if !okFrom || !okTo || from == to {
		return 0, false
	}
	id := Index(len(g.edges))
	length := geo.Distance(fromNode.position, toNode.position)
	g.edges = append(g.edges, NewRoadEdge(id, from, to, wayID, length))
	return id, true
}

func (g *RoadGraph) GetNode(id int64) (*RoadNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *RoadGraph) GetEdge(id Index) RoadEdge {
	return g.edges[id]
}

func (g *RoadGraph) NumberOfNodes() int {
	return len(g.nodeOrder)
}

func (g *RoadGraph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *RoadGraph) ForNodes(handle func(n *RoadNode)) {
	for _, id := range g.nodeOrder {
		handle(g.nodes[id])
	}
}

func (g *RoadGraph) ForEdges(handle func(e RoadEdge, from, to *RoadNode)) {
	for _, e := range g.edges {
		handle(e, g.nodes[e.from], g.nodes[e.to])
	}
}

// IntersectionNodes. nodes of the simplified graph (junctions and dead ends).
func (g *RoadGraph) IntersectionNodes() []*RoadNode {
	res := make([]*RoadNode, 0)
	g.ForNodes(func(n *RoadNode) {
		if n.intersection {
			res = append(res, n)
		}
	})
	return res
}

func (g *RoadGraph) GetBoundingBox() *BoundingBox {
	ps := make([]geo.Position, 0, len(g.nodeOrder))
	g.ForNodes(func(n *RoadNode) {
		ps = append(ps, n.position)
	})
	return NewBoundingBoxFromPositions(ps)
}
