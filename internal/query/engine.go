// Package query evaluates stabbing queries against a shared interval tree.
package query

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/inodb/ivcover/internal/interval"
)

// Engine answers stabbing queries. The tree is read-only, so any number of
// workers may query it at once.
type Engine struct {
	tree   *interval.Tree
	logger *zap.Logger
}

// NewEngine creates an engine over a built tree.
func NewEngine(tree *interval.Tree) *Engine {
	return &Engine{
		tree:   tree,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and summary messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Contains reports whether point is covered by any interval.
func (e *Engine) Contains(point uint64) bool {
	return e.tree.ContainsPoint(point)
}

// Summary counts the outcome of a batch of queries.
type Summary struct {
	Points int
	Fresh  int
}

// QueryAll evaluates every point using a pool of workers and calls fn for each
// result in input order. fn may be nil when only the summary is needed.
func (e *Engine) QueryAll(points []uint64, workers int, fn func(WorkResult) error) (Summary, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan WorkItem, 2*workers)
	go func() {
		defer close(items)
		for i, p := range points {
			items <- WorkItem{Seq: i, Point: p}
		}
	}()

	var summary Summary
	err := OrderedCollect(e.ParallelQuery(items, workers), func(r WorkResult) error {
		summary.Points++
		if r.Fresh {
			summary.Fresh++
		}
		if fn != nil {
			return fn(r)
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	e.logger.Debug("queries evaluated",
		zap.Int("points", summary.Points),
		zap.Int("fresh", summary.Fresh),
		zap.Int("workers", workers))

	return summary, nil
}
