package graph

import "errors"

var (
	// ErrIndexOutOfRange indicates a node index beyond the node count.
	ErrIndexOutOfRange = errors.New("graph: node index out of range")
	// ErrNoSuchEdge indicates a query or removal on a pair of nodes that is not connected.
	ErrNoSuchEdge = errors.New("graph: no such edge")
	// ErrUnreachableGoal indicates the search exhausted the open set without reaching the goal.
	ErrUnreachableGoal = errors.New("graph: goal is unreachable from start")
	// ErrDegenerateInput indicates too few distinct points for the requested degree.
	ErrDegenerateInput = errors.New("graph: not enough points for requested degree")
	// ErrNodeNotFound indicates no node sits at the requested position.
	ErrNodeNotFound = errors.New("graph: no node at position")
	// ErrEmptyGraph indicates a lookup on a graph without nodes.
	ErrEmptyGraph = errors.New("graph: graph has no nodes")
)
