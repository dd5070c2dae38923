package output

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary holds the totals reported at the end of a run.
type Summary struct {
	Intervals int
	Points    int
	Fresh     int
	CoverSize int
	Coverage  uint64
	TreeDepth int
}

// WriteSummary renders the totals as a plain table.
func WriteSummary(w io.Writer, s Summary) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Intervals", humanize.Comma(int64(s.Intervals))})
	tbl.AppendRow(table.Row{"Tree depth", s.TreeDepth})
	tbl.AppendRow(table.Row{"Query points", humanize.Comma(int64(s.Points))})
	tbl.AppendRow(table.Row{"Fresh points", humanize.Comma(int64(s.Fresh))})
	tbl.AppendRow(table.Row{"Cover intervals", humanize.Comma(int64(s.CoverSize))})
	tbl.AppendRow(table.Row{"Covered length", commaUint(s.Coverage)})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

// WriteTotals prints the two answers in plain text.
func WriteTotals(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "Fresh points: %d\n", s.Fresh); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Covered length: %d\n", s.Coverage)
	return err
}

func commaUint(v uint64) string {
	if v > math.MaxInt64 {
		return strconv.FormatUint(v, 10)
	}
	return humanize.Comma(int64(v))
}
