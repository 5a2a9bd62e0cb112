package graph

import (
	"fmt"
	"sort"
)

// Options configures graph construction.
type Options struct {
	// LegacyWeights keeps squared distances on nearest-neighbour edges and true
	// distances on mirrored edges. Off by default: every edge carries the true distance.
	LegacyWeights bool
}

// Option mutates Options.
type Option func(*Options)

// WithLegacyWeights enables the squared-distance weighting of forward edges.
func WithLegacyWeights() Option {
	return func(o *Options) {
		o.LegacyWeights = true
	}
}

// New builds a proximity graph connecting every point to its degree nearest
// neighbours, then mirrors every edge so the graph is undirected. Node i is points[i].
func New(points []Point, degree int, opts ...Option) (*Graph, error) {
	if degree < 1 {
		return nil, fmt.Errorf("degree %d: %w", degree, ErrDegenerateInput)
	}
	if len(points) <= degree {
		return nil, fmt.Errorf("%d points for degree %d: %w", len(points), degree, ErrDegenerateInput)
	}

	var cfg Options
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		nodes:  make([]node, len(points)),
		degree: degree,
	}
	for i, p := range points {
		g.nodes[i] = node{pos: p, edges: make([]Edge, 0, degree)}
	}

	weights := make([]float64, len(points))
	sorted := make([]float64, len(points))
	for n := range g.nodes {
		for i, p := range points {
			weights[i] = points[n].DistanceSquared(p)
		}
		copy(sorted, weights)
		sort.Float64s(sorted)

		for _, w := range sorted {
			if len(g.nodes[n].edges) == degree {
				break
			}
			// zero is ourselves or a coincident point
			if w <= 0 {
				continue
			}
			m := g.findIndex(n, weights, w)
			if m < 0 {
				continue
			}
			weight := points[n].Distance(points[m])
			if cfg.LegacyWeights {
				weight = weights[m]
			}
			g.nodes[n].edges = append(g.nodes[n].edges, Edge{To: m, Weight: weight})
		}
		if len(g.nodes[n].edges) < degree {
			return nil, fmt.Errorf("node %d has %d distinct neighbours, need %d: %w",
				n, len(g.nodes[n].edges), degree, ErrDegenerateInput)
		}
	}

	g.symmetrize()
	g.index = NewSpatialIndex(points)
	return g, nil
}

// findIndex returns the first node, in index order, whose distance from n matches w
// and which n has not already claimed. Returns -1 when none is left.
func (g *Graph) findIndex(n int, weights []float64, w float64) int {
	for i, candidate := range weights {
		if i == n || !approxEqual(candidate, w) {
			continue
		}
		if g.nodes[n].edgeIndex(i) < 0 {
			return i
		}
	}
	return -1
}

// symmetrize adds the reverse of every nearest-neighbour edge that is missing one.
// Only edges present before the pass are visited.
func (g *Graph) symmetrize() {
	forward := make([]int, len(g.nodes))
	for n := range g.nodes {
		forward[n] = len(g.nodes[n].edges)
	}
	for n := range g.nodes {
		for _, e := range g.nodes[n].edges[:forward[n]] {
			other := &g.nodes[e.To]
			if other.edgeIndex(n) >= 0 {
				continue
			}
			other.edges = append(other.edges, Edge{
				To:     n,
				Weight: g.nodes[n].pos.Distance(other.pos),
			})
		}
	}
}
