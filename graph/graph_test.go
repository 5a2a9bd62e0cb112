package graph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
)

// unitGrid returns a side×side lattice with unit spacing, indexed i*side+j for point (i, j, 0).
func unitGrid(side int) []graph.Point {
	points := make([]graph.Point, 0, side*side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			points = append(points, graph.Point{X: float64(i), Y: float64(j)})
		}
	}
	return points
}

func TestEmpty(t *testing.T) {
	g := graph.Empty()
	require.Equal(t, 0, g.Size())
	require.Equal(t, 3, g.Degree())
	require.Empty(t, g.Neighbors(0))
	require.Empty(t, g.Neighbors(6))
	require.Empty(t, g.Lines())

	_, err := g.NodeAt(graph.Point{})
	require.ErrorIs(t, err, graph.ErrNodeNotFound)
	_, _, err = g.Nearest(graph.Point{})
	require.ErrorIs(t, err, graph.ErrEmptyGraph)
}

func TestNew_DegenerateInput(t *testing.T) {
	cases := []struct {
		name   string
		points []graph.Point
		degree int
	}{
		{"NoPoints", nil, 3},
		{"EqualToDegree", unitGrid(2)[:3], 3},
		{"ZeroDegree", unitGrid(2), 0},
		{"Coincident", []graph.Point{{}, {}, {}, {}, {X: 1}}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := graph.New(tc.points, tc.degree)
			require.ErrorIs(t, err, graph.ErrDegenerateInput)
		})
	}
}

func TestNew_GridEdges(t *testing.T) {
	g, err := graph.New(unitGrid(4), graph.DefaultDegree)
	require.NoError(t, err)
	require.Equal(t, 16, g.Size())
	require.Equal(t, 3, g.Degree())

	// nearest three, ties resolved in index order
	require.Equal(t, []int{1, 4, 5}, g.Neighbors(0))
	// own three, then mirrors of 0→5 and 9→5
	require.Equal(t, []int{1, 4, 6, 0, 9}, g.Neighbors(5))

	for n := 0; n < g.Size(); n++ {
		require.GreaterOrEqual(t, len(g.Neighbors(n)), g.Degree(), "node %d", n)
		for _, m := range g.Neighbors(n) {
			require.NotEqual(t, n, m, "self loop on %d", n)
			require.True(t, g.HasEdge(m, n), "edge %d-%d is not mirrored", n, m)
		}
	}
}

func TestNew_Weights(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)

	w, err := g.Weight(0, 5)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt2, w, 1e-9)
	w, err = g.Weight(5, 0)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt2, w, 1e-9)

	_, err = g.Weight(0, 15)
	require.ErrorIs(t, err, graph.ErrNoSuchEdge)
	_, err = g.Weight(0, 16)
	require.ErrorIs(t, err, graph.ErrIndexOutOfRange)
}

func TestNew_LegacyWeights(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3, graph.WithLegacyWeights())
	require.NoError(t, err)

	// 0 picked 5: squared distance
	w, err := g.Weight(0, 5)
	require.NoError(t, err)
	require.InDelta(t, 2.0, w, 1e-9)
	// 5 got 0 from the mirroring pass: true distance
	w, err = g.Weight(5, 0)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt2, w, 1e-9)

	require.Equal(t, []int{1, 4, 6, 0, 9}, g.Neighbors(5))
}

func TestPosition(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)

	p, err := g.Position(6)
	require.NoError(t, err)
	require.Equal(t, graph.Point{X: 1, Y: 2}, p)

	_, err = g.Position(-1)
	require.ErrorIs(t, err, graph.ErrIndexOutOfRange)
	_, err = g.Position(16)
	require.ErrorIs(t, err, graph.ErrIndexOutOfRange)
}

func TestNeighbors_OutOfRange(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)
	require.Empty(t, g.Neighbors(-1))
	require.Empty(t, g.Neighbors(100))
	require.False(t, g.HasEdge(100, 0))
}

func TestRemoveEdge(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)
	require.True(t, g.HasEdge(10, 15))
	require.True(t, g.HasEdge(15, 10))

	require.NoError(t, g.RemoveEdge(10, 15))
	require.False(t, g.HasEdge(10, 15))
	require.False(t, g.HasEdge(15, 10))
	require.Equal(t, []int{11, 14}, g.Neighbors(15))

	// second removal reports, does not panic
	require.ErrorIs(t, g.RemoveEdge(10, 15), graph.ErrNoSuchEdge)
	require.ErrorIs(t, g.RemoveEdge(15, 10), graph.ErrNoSuchEdge)
	require.ErrorIs(t, g.RemoveEdge(0, 99), graph.ErrIndexOutOfRange)
}

func TestLines(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)

	lines := g.Lines()
	require.Len(t, lines, 112)

	// first segment is the first edge of node 0
	require.Equal(t, graph.Point{}, lines[0])
	require.Equal(t, graph.Point{Y: 1}, lines[1])

	require.NoError(t, g.RemoveEdge(0, 5))
	require.Len(t, g.Lines(), 108)
}

func TestNodeAt(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)

	id, err := g.NodeAt(graph.Point{X: 2, Y: 3})
	require.NoError(t, err)
	require.Equal(t, 11, id)

	id, err = g.NodeAt(graph.Point{X: 2.0004, Y: 2.9996})
	require.NoError(t, err)
	require.Equal(t, 11, id)

	_, err = g.NodeAt(graph.Point{X: 2.5, Y: 3})
	require.ErrorIs(t, err, graph.ErrNodeNotFound)
	_, err = g.NodeAt(graph.Point{X: 2, Y: 3, Z: 1})
	require.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestNodeAt_CoincidentPoints(t *testing.T) {
	points := []graph.Point{{X: 5}, {}, {X: 1}, {}, {X: 2}, {X: 3}}
	g, err := graph.New(points, 2)
	require.NoError(t, err)

	id, err := g.NodeAt(graph.Point{})
	require.NoError(t, err)
	require.Equal(t, 1, id)
}

func TestNearest(t *testing.T) {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(t, err)

	id, dist, err := g.Nearest(graph.Point{X: 2.9, Y: 0.2})
	require.NoError(t, err)
	require.Equal(t, 12, id)
	require.InDelta(t, math.Hypot(0.1, 0.2), dist, 1e-9)

	id, _, err = g.Nearest(graph.Point{X: -10, Y: 10})
	require.NoError(t, err)
	require.Equal(t, 3, id)
}

func TestPathLength(t *testing.T) {
	path := graph.Path{{X: 1}, {X: 1, Y: 1}, {X: 4, Y: 5}}
	require.InDelta(t, 7.0, path.Length(graph.Point{}), 1e-9)
	require.Zero(t, graph.Path{}.Length(graph.Point{X: 3}))
}
