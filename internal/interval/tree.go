package interval

import "sort"

// Tree is a centered interval tree answering stabbing queries.
// It is built once and never modified, so concurrent queries are safe.
type Tree struct {
	root *node
	size int
}

type node struct {
	center  uint64
	left    *node // intervals with end < center
	right   *node // intervals with start > center
	byStart []Interval
	byEnd   []Interval
}

// Build creates a tree from a slice of intervals. The input is not modified.
func Build(intervals []Interval) *Tree {
	return &Tree{root: buildNode(intervals), size: len(intervals)}
}

func buildNode(intervals []Interval) *node {
	if len(intervals) == 0 {
		return nil
	}

	center := pivot(intervals)

	var left, right, straddle []Interval
	for _, iv := range intervals {
		switch {
		case iv.end < center:
			left = append(left, iv)
		case iv.start > center:
			right = append(right, iv)
		default:
			straddle = append(straddle, iv)
		}
	}

	byStart := make([]Interval, len(straddle))
	copy(byStart, straddle)
	sort.SliceStable(byStart, func(i, j int) bool {
		return byStart[i].start < byStart[j].start
	})

	byEnd := straddle
	sort.SliceStable(byEnd, func(i, j int) bool {
		return byEnd[i].end < byEnd[j].end
	})

	return &node{
		center:  center,
		left:    buildNode(left),
		right:   buildNode(right),
		byStart: byStart,
		byEnd:   byEnd,
	}
}

// pivot returns the upper median of all start and end values.
func pivot(intervals []Interval) uint64 {
	points := make([]uint64, 0, 2*len(intervals))
	for _, iv := range intervals {
		points = append(points, iv.start, iv.end)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	return points[len(points)/2]
}

// ContainsPoint reports whether any interval in the tree contains point.
func (t *Tree) ContainsPoint(point uint64) bool {
	if t == nil {
		return false
	}
	for n := t.root; n != nil; {
		switch {
		case point < n.center:
			// byStart is ascending, so once start > point nothing further can match.
			for _, iv := range n.byStart {
				if iv.start > point {
					break
				}
				if iv.Intersects(point) {
					return true
				}
			}
			n = n.left
		case point > n.center:
			for i := len(n.byEnd) - 1; i >= 0; i-- {
				iv := n.byEnd[i]
				if iv.end < point {
					break
				}
				if iv.Intersects(point) {
					return true
				}
			}
			n = n.right
		default:
			return len(n.byStart) > 0
		}
	}
	return false
}

// Len returns the number of intervals the tree was built from.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t == nil {
		return 0
	}
	return depth(t.root)
}

func depth(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}
