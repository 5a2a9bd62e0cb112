package scene

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
)

// ParseObstacles reads the outer rings of every Polygon and MultiPolygon in a
// GeoJSON FeatureCollection. Other geometry types are skipped.
func ParseObstacles(data []byte) ([]orb.Ring, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse obstacles: %w", err)
	}

	var rings []orb.Ring
	for _, feature := range fc.Features {
		switch geom := feature.Geometry.(type) {
		case orb.Polygon:
			if len(geom) > 0 {
				rings = append(rings, geom[0])
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				if len(poly) > 0 {
					rings = append(rings, poly[0])
				}
			}
		}
	}
	return rings, nil
}

// Crosses reports whether the XY projection of segment a-b touches the ring:
// it cuts a ring edge, has an endpoint inside, or lies wholly inside.
func Crosses(a, b graph.Point, ring orb.Ring) bool {
	p1, p2 := ToOrb(a), ToOrb(b)
	n := len(ring)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if segmentsIntersect(p1, p2, ring[i], ring[(i+1)%n]) {
			return true
		}
	}

	midpoint := orb.Point{(p1.X() + p2.X()) / 2, (p1.Y() + p2.Y()) / 2}
	return planar.RingContains(ring, p1) || planar.RingContains(ring, p2) || planar.RingContains(ring, midpoint)
}

// segmentsIntersect checks if segments p1-p2 and p3-p4 intersect
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Check for collinear cases
	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3.X()-p1.X())*(p2.Y()-p1.Y()) - (p2.X()-p1.X())*(p3.Y()-p1.Y())
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q orb.Point) bool {
	return q.X() <= math.Max(p.X(), r.X()) && q.X() >= math.Min(p.X(), r.X()) &&
		q.Y() <= math.Max(p.Y(), r.Y()) && q.Y() >= math.Min(p.Y(), r.Y())
}

// BlockedEdges lists each undirected edge crossing any ring once, lower index first.
func BlockedEdges(g *graph.Graph, rings []orb.Ring) [][2]int {
	var blocked [][2]int
	for n := 0; n < g.Size(); n++ {
		a, _ := g.Position(n)
		for _, m := range g.Neighbors(n) {
			if m < n && g.HasEdge(m, n) {
				continue
			}
			b, _ := g.Position(m)
			for _, ring := range rings {
				if Crosses(a, b, ring) {
					blocked = append(blocked, [2]int{n, m})
					break
				}
			}
		}
	}
	return blocked
}

// Cut removes every edge crossing the rings and returns the removed pairs.
// The caller must hold exclusive access to g.
func Cut(g *graph.Graph, rings []orb.Ring) ([][2]int, error) {
	blocked := BlockedEdges(g, rings)
	for _, e := range blocked {
		if err := g.RemoveEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("cut edge %d-%d: %w", e[0], e[1], err)
		}
	}
	return blocked, nil
}
