package graph

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
)

// nearestCandidates is how many R-tree neighbours are re-ranked by exact distance.
const nearestCandidates = 4

// nodeEntry wraps a node position for R-tree storage
type nodeEntry struct {
	ID   int
	Pos  Point
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SpatialIndex answers position queries over the node set
type SpatialIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewSpatialIndex indexes points by their position in the slice
func NewSpatialIndex(points []Point) *SpatialIndex {
	tree := rtreego.NewTree(3, 25, 50) // 3D, min 25, max 50 entries per node

	for i, p := range points {
		tree.Insert(&nodeEntry{
			ID:   i,
			Pos:  p,
			BBox: toRtree(p).ToRect(epsilon),
		})
	}

	return &SpatialIndex{tree: tree, size: len(points)}
}

func toRtree(p Point) rtreego.Point {
	return rtreego.Point{p.X, p.Y, p.Z}
}

// Lookup returns the lowest node index whose position matches p within epsilon
func (si *SpatialIndex) Lookup(p Point) (int, bool) {
	if si == nil || si.size == 0 {
		return -1, false
	}

	found := -1
	for _, item := range si.tree.SearchIntersect(toRtree(p).ToRect(epsilon)) {
		entry := item.(*nodeEntry)
		if !entry.Pos.ApproxEqual(p) {
			continue
		}
		if found < 0 || entry.ID < found {
			found = entry.ID
		}
	}
	return found, found >= 0
}

// Nearest returns the node closest to p and its distance
func (si *SpatialIndex) Nearest(p Point) (int, float64, bool) {
	if si == nil || si.size == 0 {
		return -1, math.MaxFloat64, false
	}

	nearestID := -1
	minDist := math.MaxFloat64
	for _, item := range si.tree.NearestNeighbors(nearestCandidates, toRtree(p)) {
		if item == nil {
			continue
		}
		entry := item.(*nodeEntry)
		dist := p.Distance(entry.Pos)
		if dist < minDist || (dist == minDist && entry.ID < nearestID) {
			minDist = dist
			nearestID = entry.ID
		}
	}
	return nearestID, minDist, nearestID >= 0
}

// NodeAt returns the node located at p, within epsilon on every axis.
func (g *Graph) NodeAt(p Point) (int, error) {
	id, ok := g.index.Lookup(p)
	if !ok {
		return -1, fmt.Errorf("node at (%g, %g, %g): %w", p.X, p.Y, p.Z, ErrNodeNotFound)
	}
	return id, nil
}

// Nearest returns the node closest to p and the distance to it.
func (g *Graph) Nearest(p Point) (int, float64, error) {
	id, dist, ok := g.index.Nearest(p)
	if !ok {
		return -1, dist, ErrEmptyGraph
	}
	return id, dist, nil
}
