// Package graph builds a bounded-degree proximity graph over a point cloud and
// plans least-cost paths across it with A*.
//
// A Graph is safe for concurrent reads (FindPath, HasEdge, NodeAt, ...).
// RemoveEdge is the only mutation and must not run concurrently with any
// other call on the same Graph; callers provide that exclusion.
package graph

import "fmt"

// DefaultDegree is the minimum number of nearest-neighbour edges per node.
const DefaultDegree = 3

// Edge is a weighted connection to another node. Two edges are the same edge
// when they point at the same node, whatever their weights.
type Edge struct {
	To     int     // Index of the neighbouring node
	Weight float64 // Euclidean distance at construction time
}

// node holds a position and its outgoing edges
type node struct {
	pos   Point
	edges []Edge
}

// edgeIndex returns the position of the edge pointing at to, or -1
func (n *node) edgeIndex(to int) int {
	for i, e := range n.edges {
		if e.To == to {
			return i
		}
	}
	return -1
}

// Graph is an undirected proximity graph. Node indices are dense, zero-based and
// fixed at construction; only edges change afterwards.
type Graph struct {
	nodes  []node
	degree int
	index  *SpatialIndex
}

// Empty returns a graph with no nodes and the default degree.
func Empty() *Graph {
	return &Graph{degree: DefaultDegree, index: NewSpatialIndex(nil)}
}

// Size returns the number of nodes.
func (g *Graph) Size() int { return len(g.nodes) }

// Degree returns the configured minimum degree.
func (g *Graph) Degree() int { return g.degree }

func (g *Graph) inRange(n int) bool {
	return n >= 0 && n < len(g.nodes)
}

// Position returns the coordinates of node n.
func (g *Graph) Position(n int) (Point, error) {
	if !g.inRange(n) {
		return Point{}, fmt.Errorf("position of node %d: %w", n, ErrIndexOutOfRange)
	}
	return g.nodes[n].pos, nil
}

// Neighbors returns the indices adjacent to n in storage order.
// An out-of-range node has no neighbours.
func (g *Graph) Neighbors(n int) []int {
	if !g.inRange(n) {
		return []int{}
	}
	ids := make([]int, 0, len(g.nodes[n].edges))
	for _, e := range g.nodes[n].edges {
		ids = append(ids, e.To)
	}
	return ids
}

// HasEdge reports whether a lists b as a neighbour. Only a's adjacency is inspected.
func (g *Graph) HasEdge(a, b int) bool {
	if !g.inRange(a) {
		return false
	}
	return g.nodes[a].edgeIndex(b) >= 0
}

// Weight returns the weight stored on the a→b edge.
func (g *Graph) Weight(a, b int) (float64, error) {
	if !g.inRange(a) || !g.inRange(b) {
		return 0, fmt.Errorf("weight of %d-%d: %w", a, b, ErrIndexOutOfRange)
	}
	i := g.nodes[a].edgeIndex(b)
	if i < 0 {
		return 0, fmt.Errorf("weight of %d-%d: %w", a, b, ErrNoSuchEdge)
	}
	return g.nodes[a].edges[i].Weight, nil
}

// RemoveEdge disconnects a and b in both directions.
func (g *Graph) RemoveEdge(a, b int) error {
	if !g.inRange(a) || !g.inRange(b) {
		return fmt.Errorf("remove edge %d-%d: %w", a, b, ErrIndexOutOfRange)
	}
	if !g.HasEdge(a, b) {
		return fmt.Errorf("remove edge %d-%d: %w", a, b, ErrNoSuchEdge)
	}
	g.nodes[a].removeEdge(b)
	g.nodes[b].removeEdge(a)
	return nil
}

func (n *node) removeEdge(to int) {
	if i := n.edgeIndex(to); i >= 0 {
		n.edges = append(n.edges[:i], n.edges[i+1:]...)
	}
}

// Lines returns every stored edge as a pair of endpoints, flattened, for drawing
// with a line-list primitive. Mirrored edges are not de-duplicated.
func (g *Graph) Lines() []Point {
	count := 0
	for i := range g.nodes {
		count += len(g.nodes[i].edges)
	}
	lines := make([]Point, 0, 2*count)
	for _, n := range g.nodes {
		for _, e := range n.edges {
			lines = append(lines, n.pos, g.nodes[e.To].pos)
		}
	}
	return lines
}
