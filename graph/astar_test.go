package graph_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
)

// AStarSuite runs searches over a fresh 4×4 unit grid for every test.
type AStarSuite struct {
	suite.Suite
	g *graph.Graph
}

func (s *AStarSuite) SetupTest() {
	g, err := graph.New(unitGrid(4), 3)
	require.NoError(s.T(), err)
	s.g = g
}

// requireOneOf fails unless path equals one of the allowed equal-cost alternatives.
func (s *AStarSuite) requireOneOf(path graph.Path, alternatives ...graph.Path) {
	for _, alt := range alternatives {
		if len(alt) == len(path) {
			match := true
			for i := range alt {
				if !alt[i].ApproxEqual(path[i]) {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
	}
	s.T().Fatalf("path %v matches none of %v", path, alternatives)
}

// TestGridOptimal checks the corner-to-corner route uses both diagonal shortcuts.
func (s *AStarSuite) TestGridOptimal() {
	path, err := s.g.FindPath(0, 15)
	require.NoError(s.T(), err)
	require.Len(s.T(), path, 4)
	s.requireOneOf(path,
		graph.Path{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}},
		graph.Path{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 3}},
	)
	require.InDelta(s.T(), 2+2*math.Sqrt2, path.Length(graph.Point{}), 1e-9)
}

// TestDetourAfterRemoval cuts node 10 off from the goal and expects a detour around it.
func (s *AStarSuite) TestDetourAfterRemoval() {
	require.NoError(s.T(), s.g.RemoveEdge(10, 15))
	require.NoError(s.T(), s.g.RemoveEdge(10, 14))
	require.NoError(s.T(), s.g.RemoveEdge(10, 11))

	path, err := s.g.FindPath(0, 15)
	require.NoError(s.T(), err)
	require.Len(s.T(), path, 5)
	s.requireOneOf(path,
		graph.Path{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 3}},
		graph.Path{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}},
	)
	require.InDelta(s.T(), 4+math.Sqrt2, path.Length(graph.Point{}), 1e-9)
}

// TestReverseDirection plans goal to start and lands on the origin.
func (s *AStarSuite) TestReverseDirection() {
	path, err := s.g.FindPath(15, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), path, 4)
	require.Equal(s.T(), graph.Point{}, path[len(path)-1])
}

// TestSameNode returns an empty path for every node.
func (s *AStarSuite) TestSameNode() {
	for n := 0; n < s.g.Size(); n++ {
		path, err := s.g.FindPath(n, n)
		require.NoError(s.T(), err)
		require.Empty(s.T(), path)
	}
}

// TestIdempotent repeats a search without mutation in between.
func (s *AStarSuite) TestIdempotent() {
	first, err := s.g.FindPath(3, 12)
	require.NoError(s.T(), err)
	second, err := s.g.FindPath(3, 12)
	require.NoError(s.T(), err)
	require.Equal(s.T(), first, second)
}

// TestUnreachable isolates the goal and expects the dedicated error.
func (s *AStarSuite) TestUnreachable() {
	for _, m := range s.g.Neighbors(15) {
		require.NoError(s.T(), s.g.RemoveEdge(15, m))
	}
	path, err := s.g.FindPath(0, 15)
	require.ErrorIs(s.T(), err, graph.ErrUnreachableGoal)
	require.Nil(s.T(), path)
}

// TestInvalidIndices rejects nodes outside the graph.
func (s *AStarSuite) TestInvalidIndices() {
	_, err := s.g.FindPath(-1, 3)
	require.ErrorIs(s.T(), err, graph.ErrIndexOutOfRange)
	_, err = s.g.FindPath(0, 16)
	require.ErrorIs(s.T(), err, graph.ErrIndexOutOfRange)
	_, err = graph.Empty().FindPath(0, 0)
	require.ErrorIs(s.T(), err, graph.ErrIndexOutOfRange)
}

// TestReanchor re-plans from a waypoint located with NodeAt.
func (s *AStarSuite) TestReanchor() {
	path, err := s.g.FindPath(0, 15)
	require.NoError(s.T(), err)

	from, err := s.g.NodeAt(path[0])
	require.NoError(s.T(), err)
	require.Equal(s.T(), 5, from)

	require.NoError(s.T(), s.g.RemoveEdge(10, 15))
	rest, err := s.g.FindPath(from, 15)
	require.NoError(s.T(), err)
	require.Equal(s.T(), graph.Point{X: 3, Y: 3}, rest[len(rest)-1])
	for i := 1; i < len(rest); i++ {
		a, err := s.g.NodeAt(rest[i-1])
		require.NoError(s.T(), err)
		b, err := s.g.NodeAt(rest[i])
		require.NoError(s.T(), err)
		require.True(s.T(), s.g.HasEdge(a, b), "waypoints %d-%d are not adjacent", a, b)
	}
}

// TestConcurrentSearches runs read-only searches in parallel on one graph.
func (s *AStarSuite) TestConcurrentSearches() {
	want, err := s.g.FindPath(0, 15)
	require.NoError(s.T(), err)

	var wg sync.WaitGroup
	results := make([]graph.Path, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.g.FindPath(0, 15)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		require.Equal(s.T(), want, got)
	}
}

func TestAStarSuite(t *testing.T) {
	suite.Run(t, new(AStarSuite))
}
