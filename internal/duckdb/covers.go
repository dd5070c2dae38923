package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/ivcover/internal/interval"
	"github.com/inodb/ivcover/internal/query"
)

// WriteCover replaces the stored cover for the fingerprinted source.
func (s *Store) WriteCover(fp FileFingerprint, cover []interval.Interval) error {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// The sources row marks the cover as valid, so it goes first on delete
	// and last on insert.
	if _, err := conn.ExecContext(ctx, "DELETE FROM sources WHERE source=?", fp.Path); err != nil {
		return fmt.Errorf("clear source: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM covers WHERE source=?", fp.Path); err != nil {
		return fmt.Errorf("clear cover: %w", err)
	}

	if err := appendRows(conn, "covers", len(cover), func(a *goduckdb.Appender, i int) error {
		iv := cover[i]
		return a.AppendRow(fp.Path, int64(i), iv.Start(), iv.End())
	}); err != nil {
		// Partial rows without a sources row are never served; drop them anyway.
		_, _ = conn.ExecContext(ctx, "DELETE FROM covers WHERE source=?", fp.Path)
		return err
	}

	if _, err := conn.ExecContext(ctx, "INSERT INTO sources VALUES (?, ?, ?)",
		fp.Path, fp.Size, fp.modTimeKey()); err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// LookupCover returns the stored cover for a source. ok is false when nothing
// is stored or the source has changed since the cover was written.
func (s *Store) LookupCover(fp FileFingerprint) (cover []interval.Interval, ok bool, err error) {
	var size int64
	var modTime string
	err = s.db.QueryRow("SELECT size, mod_time FROM sources WHERE source=?", fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query source: %w", err)
	}
	if size != fp.Size || modTime != fp.modTimeKey() {
		return nil, false, nil
	}

	rows, err := s.db.Query(`SELECT range_start, range_end FROM covers
		WHERE source=? ORDER BY idx`, fp.Path)
	if err != nil {
		return nil, false, fmt.Errorf("query cover: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var start, end uint64
		if err := rows.Scan(&start, &end); err != nil {
			return nil, false, fmt.Errorf("scan cover: %w", err)
		}
		iv, err := interval.New(start, end)
		if err != nil {
			return nil, false, fmt.Errorf("stored cover: %w", err)
		}
		cover = append(cover, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate cover: %w", err)
	}
	return cover, true, nil
}

// WritePointResults replaces the stored query results for a source.
func (s *Store) WritePointResults(source string, results []query.WorkResult) error {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "DELETE FROM point_results WHERE source=?", source); err != nil {
		return fmt.Errorf("clear point results: %w", err)
	}

	return appendRows(conn, "point_results", len(results), func(a *goduckdb.Appender, i int) error {
		r := results[i]
		return a.AppendRow(source, int64(r.Seq), r.Point, r.Fresh)
	})
}

// CountFresh returns the number of stored fresh points for a source.
func (s *Store) CountFresh(source string) (int, error) {
	var n int64
	if err := s.db.QueryRow(
		"SELECT count(*) FROM point_results WHERE source=? AND fresh", source,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fresh: %w", err)
	}
	return int(n), nil
}

// ClearSource removes everything stored for a source.
func (s *Store) ClearSource(source string) error {
	for _, table := range []string{"covers", "point_results", "sources"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE source=?", source); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// appendRows batch-inserts n rows into table using the Appender API.
func appendRows(conn *sql.Conn, table string, n int, row func(*goduckdb.Appender, int) error) error {
	if n == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := range n {
		if err := row(appender, i); err != nil {
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}

	return appender.Flush()
}
