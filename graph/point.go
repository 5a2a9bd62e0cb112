package graph

import "math"

// epsilon is the tolerance used whenever two distances or coordinates are compared.
const epsilon = 0.001

// Point is a position in 3D space. 2D points keep Z at zero.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns p - other
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// LengthSquared returns the squared length of p treated as a vector
func (p Point) LengthSquared() float64 {
	return p.X*p.X + p.Y*p.Y + p.Z*p.Z
}

// Length returns the length of p treated as a vector
func (p Point) Length() float64 {
	return math.Sqrt(p.LengthSquared())
}

// DistanceSquared calculates the squared Euclidean distance between two points
func (p Point) DistanceSquared(other Point) float64 {
	return p.Sub(other).LengthSquared()
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}

// ApproxEqual reports whether every coordinate of p is within epsilon of other
func (p Point) ApproxEqual(other Point) bool {
	return approxEqual(p.X, other.X) && approxEqual(p.Y, other.Y) && approxEqual(p.Z, other.Z)
}

func approxEqual(a, b float64) bool {
	return a-epsilon < b && a+epsilon > b
}

// Path is the ordered list of waypoints from (but excluding) the start node up to and including the goal.
type Path []Point

// Length returns the travelled distance when walking the path from start
func (p Path) Length(start Point) float64 {
	total := 0.0
	prev := start
	for _, wp := range p {
		total += prev.Distance(wp)
		prev = wp
	}
	return total
}
