// Package scene produces the point clouds a proximity graph is built from.
package scene

import (
	"math"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
)

// FromOrb lifts a planar point into the z = 0 plane
func FromOrb(p orb.Point) graph.Point {
	return graph.Point{X: p.X(), Y: p.Y()}
}

// ToOrb projects p onto the XY plane
func ToOrb(p graph.Point) orb.Point {
	return orb.Point{p.X, p.Y}
}

// Grid2D lays rows×cols points over bound, starting at its minimum corner.
// The maximum edges of the bound are exclusive.
func Grid2D(bound orb.Bound, rows, cols int) []graph.Point {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	dx := math.Abs(bound.Max.X()-bound.Min.X()) / float64(cols)
	dy := math.Abs(bound.Max.Y()-bound.Min.Y()) / float64(rows)

	points := make([]graph.Point, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			points = append(points, graph.Point{
				X: bound.Min.X() + float64(c)*dx,
				Y: bound.Min.Y() + float64(r)*dy,
			})
		}
	}
	return points
}

// Grid3D lays rows×cols×depth points over the box [min, max), y outermost and z innermost.
func Grid3D(min, max graph.Point, rows, cols, depth int) []graph.Point {
	if rows <= 0 || cols <= 0 || depth <= 0 {
		return nil
	}
	dx := math.Abs(max.X-min.X) / float64(cols)
	dy := math.Abs(max.Y-min.Y) / float64(rows)
	dz := math.Abs(max.Z-min.Z) / float64(depth)

	points := make([]graph.Point, 0, rows*cols*depth)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for d := 0; d < depth; d++ {
				points = append(points, graph.Point{
					X: min.X + float64(c)*dx,
					Y: min.Y + float64(r)*dy,
					Z: min.Z + float64(d)*dz,
				})
			}
		}
	}
	return points
}

// Random2D samples n points uniformly inside bound.
func Random2D(rng *rand.Rand, bound orb.Bound, n int) []graph.Point {
	points := make([]graph.Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, graph.Point{
			X: bound.Min.X() + rng.Float64()*(bound.Max.X()-bound.Min.X()),
			Y: bound.Min.Y() + rng.Float64()*(bound.Max.Y()-bound.Min.Y()),
		})
	}
	return points
}

// Random3D samples n points uniformly inside the box [min, max].
func Random3D(rng *rand.Rand, min, max graph.Point, n int) []graph.Point {
	points := make([]graph.Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, graph.Point{
			X: min.X + rng.Float64()*(max.X-min.X),
			Y: min.Y + rng.Float64()*(max.Y-min.Y),
			Z: min.Z + rng.Float64()*(max.Z-min.Z),
		})
	}
	return points
}
