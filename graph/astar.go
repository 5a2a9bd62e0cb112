package graph

import (
	"container/heap"
	"fmt"
	"math"
)

// searchNode is an open-set entry. F is the f-score at the time it was pushed.
type searchNode struct {
	NodeID int
	F      float64
	Index  int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by ascending f-score
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].F < pq[j].F
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := len(*pq)
	entry := x.(*searchNode)
	entry.Index = n
	*pq = append(*pq, entry)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.Index = -1
	*pq = old[0 : n-1]
	return entry
}

// FindPath computes a least-cost path from start to goal with A*, using the
// Euclidean distance to the goal as heuristic. The returned path excludes start
// and ends at goal; it is empty when start == goal.
//
// Scratch state is local to the call, so concurrent searches on an unmutated
// graph are safe.
func (g *Graph) FindPath(start, goal int) (Path, error) {
	if !g.inRange(start) || !g.inRange(goal) {
		return nil, fmt.Errorf("find path %d -> %d: %w", start, goal, ErrIndexOutOfRange)
	}
	if start == goal {
		return Path{}, nil
	}

	n := len(g.nodes)
	cameFrom := make([]int, n)
	gScore := make([]float64, n)
	fScore := make([]float64, n)
	for i := range cameFrom {
		cameFrom[i] = i
		gScore[i] = math.MaxFloat64
		fScore[i] = math.MaxFloat64
	}

	goalPos := g.nodes[goal].pos
	heuristic := func(id int) float64 {
		return g.nodes[id].pos.Distance(goalPos)
	}

	gScore[start] = 0
	fScore[start] = heuristic(start)

	openSet := &priorityQueue{}
	heap.Init(openSet)
	heap.Push(openSet, &searchNode{NodeID: start, F: fScore[start]})

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)

		if current.NodeID == goal {
			return g.reconstructPath(cameFrom, start, goal), nil
		}

		// superseded by a cheaper route pushed later
		if !approxEqual(current.F, fScore[current.NodeID]) {
			continue
		}

		for _, edge := range g.nodes[current.NodeID].edges {
			tentativeG := gScore[current.NodeID] + edge.Weight
			if !improves(tentativeG, gScore[edge.To]) {
				continue
			}
			cameFrom[edge.To] = current.NodeID
			gScore[edge.To] = tentativeG
			fScore[edge.To] = tentativeG + heuristic(edge.To)
			heap.Push(openSet, &searchNode{NodeID: edge.To, F: fScore[edge.To]})
		}
	}

	return nil, fmt.Errorf("find path %d -> %d: %w", start, goal, ErrUnreachableGoal)
}

// improves reports whether candidate is strictly cheaper than best beyond epsilon
func improves(candidate, best float64) bool {
	return candidate < best && !approxEqual(candidate, best)
}

// reconstructPath walks predecessor links back from goal
func (g *Graph) reconstructPath(cameFrom []int, start, goal int) Path {
	var reversed []int
	for at := goal; at != start; at = cameFrom[at] {
		reversed = append(reversed, at)
	}

	path := make(Path, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, g.nodes[reversed[i]].pos)
	}
	return path
}
