package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/ivcover/internal/duckdb"
	"github.com/inodb/ivcover/internal/input"
	"github.com/inodb/ivcover/internal/interval"
	"github.com/inodb/ivcover/internal/output"
	"github.com/inodb/ivcover/internal/query"
)

func newSolveCmd() *cobra.Command {
	var (
		format  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "solve <input-file>",
		Short: "Count covered points and the total covered length",
		Example: `  ivcover solve input.txt
  ivcover solve --format table input.txt.gz
  ivcover solve --store ~/.ivcover/results.duckdb input.txt
  cat input.txt | ivcover solve -`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "table" {
				return &usageError{err: fmt.Errorf("unknown output format %q", format)}
			}
			return runSolve(cmd.OutOrStdout(), args[0], format, refresh)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, table")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard stored results for the input before running")
	return cmd
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <input-file>",
		Short: "Report whether each query point is covered",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.OutOrStdout(), args[0])
		},
	}
}

func newMergeCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "merge <input-file>",
		Short: "Print the canonical disjoint cover of the ranges",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.OutOrStdout(), args[0], refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard the stored cover for the input before merging")
	return cmd
}

// session holds what every command needs after the input has been read.
type session struct {
	path   string
	source string // absolute path, the store key
	in     *input.Input
	logger *zap.Logger
	store  *duckdb.Store
	tree   *interval.Tree
}

func openSession(path string) (*session, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	p, err := input.NewParser(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w (check that the file path is correct)", err)
		}
		return nil, err
	}
	defer p.Close()

	in, err := p.ReadAll()
	if err != nil {
		return nil, err
	}
	logger.Info("read input",
		zap.String("path", path),
		zap.Int("lines", p.LineNumber()),
		zap.Int("intervals", len(in.Intervals)),
		zap.Int("points", len(in.Points)))

	s := &session{path: path, source: path, in: in, logger: logger}
	if path != "-" {
		if s.source, err = filepath.Abs(path); err != nil {
			return nil, fmt.Errorf("resolve input path: %w", err)
		}
	}

	if storePath := viper.GetString("store"); storePath != "" {
		s.store, err = duckdb.Open(storePath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened result store", zap.String("path", storePath))
	}
	return s, nil
}

// refresh drops everything stored for the input.
func (s *session) refresh() error {
	if !s.cacheable() {
		return nil
	}
	s.logger.Info("discarding stored results", zap.String("source", s.source))
	return s.store.ClearSource(s.source)
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing result store", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

// cacheable reports whether results for this input may be stored.
func (s *session) cacheable() bool {
	return s.store != nil && s.path != "-"
}

// cover returns the merged cover, reusing a stored one when the input is unchanged.
func (s *session) cover() ([]interval.Interval, error) {
	if !s.cacheable() {
		return interval.Merge(s.in.Intervals), nil
	}

	fp, err := duckdb.StatFile(s.source)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	cover, ok, err := s.store.LookupCover(fp)
	if err != nil {
		return nil, err
	}
	if ok {
		s.logger.Info("using stored cover", zap.Int("intervals", len(cover)))
		return cover, nil
	}

	cover = interval.Merge(s.in.Intervals)
	if err := s.store.WriteCover(fp, cover); err != nil {
		return nil, err
	}
	return cover, nil
}

// index builds the interval tree on first use.
func (s *session) index() *interval.Tree {
	if s.tree == nil {
		s.tree = interval.Build(s.in.Intervals)
		s.logger.Info("built interval tree",
			zap.Int("intervals", s.tree.Len()),
			zap.Int("depth", s.tree.Depth()))
	}
	return s.tree
}

// queryPoints evaluates every query point and calls fn in input order.
func (s *session) queryPoints(fn func(query.WorkResult) error) (query.Summary, error) {
	engine := query.NewEngine(s.index())
	engine.SetLogger(s.logger)

	var stored []query.WorkResult
	summary, err := engine.QueryAll(s.in.Points, viper.GetInt("workers"), func(r query.WorkResult) error {
		if s.cacheable() {
			stored = append(stored, r)
		}
		if fn != nil {
			return fn(r)
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	if s.cacheable() {
		if err := s.store.WritePointResults(s.source, stored); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func runSolve(w io.Writer, path, format string, refresh bool) error {
	s, err := openSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	if refresh {
		if err := s.refresh(); err != nil {
			return err
		}
	}

	qs, err := s.queryPoints(nil)
	if err != nil {
		return err
	}

	cover, err := s.cover()
	if err != nil {
		return err
	}

	summary := output.Summary{
		Intervals: len(s.in.Intervals),
		Points:    qs.Points,
		Fresh:     qs.Fresh,
		CoverSize: len(cover),
		Coverage:  interval.Coverage(cover),
		TreeDepth: s.index().Depth(),
	}
	if format == "table" {
		return output.WriteSummary(w, summary)
	}
	return output.WriteTotals(w, summary)
}

func runQuery(w io.Writer, path string) error {
	s, err := openSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	tw := output.NewTabWriter(w)
	if err := tw.WritePointHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.queryPoints(tw.WritePoint); err != nil {
		return err
	}
	return tw.Flush()
}

func runMerge(w io.Writer, path string, refresh bool) error {
	s, err := openSession(path)
	if err != nil {
		return err
	}
	defer s.Close()

	if refresh {
		if err := s.refresh(); err != nil {
			return err
		}
	}

	cover, err := s.cover()
	if err != nil {
		return err
	}

	tw := output.NewTabWriter(w)
	if err := tw.WriteCoverHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, iv := range cover {
		if err := tw.WriteInterval(iv); err != nil {
			return fmt.Errorf("write interval: %w", err)
		}
	}
	return tw.Flush()
}
