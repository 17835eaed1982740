package navgraph

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// weighted mirrors the live part of the graph into a gonum graph.
func (g *Graph) weighted() *simple.WeightedDirectedGraph {
	wg := simple.NewWeightedDirectedGraph(0, 0)
	for i, rec := range g.nodes {
		if rec.alive {
			wg.AddNode(simple.Node(i))
		}
	}
	for i, rec := range g.nodes {
		for to, w := range rec.out {
			wg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(i), T: simple.Node(to), W: w})
		}
	}
	return wg
}

// UnreachableExits lists the exit nodes from which the assembly node cannot
// be reached. Agents spawned near one of them will never get a route.
// Without an assembly node every exit is unreachable.
func (g *Graph) UnreachableExits() []NodeID {
	exits := g.NodesByCategory(Exit)
	if len(exits) == 0 {
		return nil
	}
	var out []NodeID
	assembly := g.NodesByCategory(Assembly)
	if len(assembly) == 0 {
		for _, e := range exits {
			out = append(out, e.ID)
		}
		return out
	}

	wg := g.weighted()
	target := simple.Node(assembly[0].ID)
	for _, e := range exits {
		if !topo.PathExistsIn(wg, simple.Node(e.ID), target) {
			out = append(out, e.ID)
		}
	}
	return out
}
