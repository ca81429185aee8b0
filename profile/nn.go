package profile

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// indexedPoint is a curve point that remembers its position in the
// original slice so a nearest-neighbour hit can be mapped back to a
// correspondence index.
type indexedPoint struct {
	Point
	idx int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.X - q.X
	default:
		return p.Y - q.Y
	}
}

func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as the kdtree
// package expects.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedPoints) Len() int                      { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	return plane{Dim: d, indexedPoints: p}.Pivot()
}

// plane sorts indexedPoints along a single kd-tree dimension.
type plane struct {
	kdtree.Dim
	indexedPoints
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexedPoints[i].X < p.indexedPoints[j].X
	default:
		return p.indexedPoints[i].Y < p.indexedPoints[j].Y
	}
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}

// nnIndex answers nearest-neighbour queries against a fixed point set.
// Small sets are scanned directly; larger sets get a kd-tree.
type nnIndex struct {
	points indexedPoints
	tree   *kdtree.Tree
}

// kd-tree construction only pays off past a handful of points.
const bruteForceLimit = 16

func newNNIndex(pts Curve) *nnIndex {
	idx := &nnIndex{points: make(indexedPoints, len(pts))}
	for i, p := range pts {
		idx.points[i] = indexedPoint{Point: p, idx: i}
	}
	if len(idx.points) > bruteForceLimit {
		idx.tree = kdtree.New(idx.points, false)
	}
	return idx
}

// Nearest returns the index of the closest stored point to q and the
// Euclidean distance to it. An empty index returns (-1, +Inf).
func (n *nnIndex) Nearest(q Point) (int, float64) {
	if len(n.points) == 0 {
		return -1, math.Inf(1)
	}
	probe := indexedPoint{Point: q}
	if n.tree != nil {
		got, sq := n.tree.Nearest(probe)
		return got.(indexedPoint).idx, math.Sqrt(sq)
	}
	best := -1
	bestSq := math.Inf(1)
	for i := range n.points {
		if sq := probe.Distance(n.points[i]); sq < bestSq {
			best, bestSq = i, sq
		}
	}
	return best, math.Sqrt(bestSq)
}
