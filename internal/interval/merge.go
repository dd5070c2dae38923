package interval

import "sort"

// Merge returns the canonical disjoint cover of intervals: sorted by start,
// with overlapping intervals combined. The input slice is not modified.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start < sorted[j].start
	})

	var cover []Interval
	low, high := sorted[0].start, sorted[0].end
	for _, iv := range sorted[1:] {
		if iv.start > high {
			cover = append(cover, Interval{start: low, end: high})
			low, high = iv.start, iv.end
		} else if iv.end > high {
			high = iv.end
		}
	}
	return append(cover, Interval{start: low, end: high})
}

// Coverage returns the total size of a merged cover.
func Coverage(cover []Interval) uint64 {
	var total uint64
	for _, iv := range cover {
		total += iv.Size()
	}
	return total
}

// CoveredLength returns the number of distinct integers covered by intervals.
func CoveredLength(intervals []Interval) uint64 {
	return Coverage(Merge(intervals))
}
