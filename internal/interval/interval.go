// Package interval provides closed integer intervals, a centered interval
// tree for stabbing queries, and the canonical disjoint cover of a set.
package interval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInterval is returned when an interval's start exceeds its end.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a closed range [start, end] with start <= end.
type Interval struct {
	start uint64
	end   uint64
}

// New creates an interval, rejecting start > end.
func New(start, end uint64) (Interval, error) {
	if start > end {
		return Interval{}, fmt.Errorf("%w: start %d > end %d", ErrInvalidInterval, start, end)
	}
	return Interval{start: start, end: end}, nil
}

// MustNew is like New but panics on an invalid interval.
func MustNew(start, end uint64) Interval {
	iv, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// Parse reads an interval in "start-end" form.
func Parse(s string) (Interval, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Interval{}, fmt.Errorf("invalid interval format: %q", s)
	}
	start, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("parse interval start: %w", err)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("parse interval end: %w", err)
	}
	return New(start, end)
}

// Start returns the inclusive lower bound.
func (iv Interval) Start() uint64 { return iv.start }

// End returns the inclusive upper bound.
func (iv Interval) End() uint64 { return iv.end }

// Size returns the number of integers covered.
// The full range [0, MaxUint64] wraps to 0.
func (iv Interval) Size() uint64 {
	return iv.end - iv.start + 1
}

// Intersects reports whether point lies within the interval.
func (iv Interval) Intersects(point uint64) bool {
	return iv.start <= point && point <= iv.end
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d-%d", iv.start, iv.end)
}
