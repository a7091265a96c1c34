package datastructure

// LargestComponent. returns a new graph holding only the largest weakly connected component.
// nodes without any edge are dropped. edge ids are reassigned.
func (g *RoadGraph) LargestComponent() *RoadGraph {
	adj := make(map[int64][]int64, len(g.nodes))
	for _, e := range g.edges {
		adj[e.from] = append(adj[e.from], e.to)
		adj[e.to] = append(adj[e.to], e.from)
	}

	component := make(map[int64]int, len(adj))
	sizes := make([]int, 0)
	for _, start := range g.nodeOrder {
		if _, ok := adj[start]; !ok {
			continue
		}
		if _, visited := component[start]; visited {
			continue
		}
		c := len(sizes)
		size := 0
		// iterative dfs
		stack := []int64{start}
		component[start] = c
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for _, w := range adj[v] {
				if _, visited := component[w]; !visited {
					component[w] = c
					stack = append(stack, w)
				}
			}
		}
		sizes = append(sizes, size)
	}

	largest := -1
	for c, size := range sizes {
		if largest == -1 || size > sizes[largest] {
			largest = c
		}
	}

	res := NewRoadGraph()
	if largest == -1 {
		return res
	}
	g.ForNodes(func(n *RoadNode) {
		if c, ok := component[n.id]; ok && c == largest {
			res.AddNode(n)
		}
	})
	for _, e := range g.edges {
		if c, ok := component[e.from]; ok && c == largest {
			res.AddEdge(e.from, e.to, e.wayID)
		}
	}
	return res
}
