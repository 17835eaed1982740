package navgraph

import (
	"container/heap"
	"math"
)

// ShortestPath runs Dijkstra from start and returns the node ids from start
// to end inclusive. It returns nil when either id is unknown or end cannot be
// reached; start == end yields the single node.
//
// Among nodes with equal tentative distance the lowest id is settled first,
// which is the order a linear scan over the arena would pick.
func (g *Graph) ShortestPath(start, end NodeID) []NodeID {
	if !g.Has(start) || !g.Has(end) {
		return nil
	}
	if start == end {
		return []NodeID{start}
	}

	n := len(g.nodes)
	dist := make([]float64, n)
	prev := make([]NodeID, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[start] = 0

	pq := &frontier{{id: start, dist: 0}}
	for pq.Len() > 0 {
		u := heap.Pop(pq).(candidate).id
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == end {
			break
		}
		for v, w := range g.nodes[u].out {
			if visited[v] {
				continue
			}
			if alt := dist[u] + w; alt < dist[v] {
				dist[v] = alt
				prev[v] = u
				heap.Push(pq, candidate{id: v, dist: alt})
			}
		}
	}

	if prev[end] < 0 {
		return nil
	}
	var path []NodeID
	for at := end; at != start; at = prev[at] {
		path = append(path, at)
	}
	path = append(path, start)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathLength sums the edge weights along path. ok is false if an edge is missing.
func (g *Graph) PathLength(path []NodeID) (total float64, ok bool) {
	for i := 1; i < len(path); i++ {
		w, found := g.Weight(path[i-1], path[i])
		if !found {
			return 0, false
		}
		total += w
	}
	return total, true
}

type candidate struct {
	id   NodeID
	dist float64
}

// frontier is a min-heap ordered by distance, then id.
type frontier []candidate

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(candidate)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}
