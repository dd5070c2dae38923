// Package output provides result formatters for stabbing queries and covers.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/ivcover/internal/interval"
	"github.com/inodb/ivcover/internal/query"
)

// TabWriter writes results in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WritePointHeader writes the header line for point results.
func (tw *TabWriter) WritePointHeader() error {
	return tw.writeRow("#Point", "Fresh")
}

// WritePoint writes a single query result.
func (tw *TabWriter) WritePoint(r query.WorkResult) error {
	fresh := "NO"
	if r.Fresh {
		fresh = "YES"
	}
	return tw.writeRow(strconv.FormatUint(r.Point, 10), fresh)
}

// WriteCoverHeader writes the header line for cover rows.
func (tw *TabWriter) WriteCoverHeader() error {
	return tw.writeRow("#Start", "End", "Size")
}

// WriteInterval writes a single cover interval.
func (tw *TabWriter) WriteInterval(iv interval.Interval) error {
	return tw.writeRow(
		strconv.FormatUint(iv.Start(), 10),
		strconv.FormatUint(iv.End(), 10),
		strconv.FormatUint(iv.Size(), 10),
	)
}

func (tw *TabWriter) writeRow(values ...string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
