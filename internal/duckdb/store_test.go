package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/ivcover/internal/interval"
	"github.com/inodb/ivcover/internal/query"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testFingerprint() FileFingerprint {
	return FileFingerprint{
		Path:    "/data/input5.txt",
		Size:    2048,
		ModTime: time.Date(2025, 12, 5, 6, 0, 0, 0, time.UTC),
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ivcover.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

// --- Cover cache tests ---

func TestWriteAndLookupCover(t *testing.T) {
	s := openInMemory(t)
	fp := testFingerprint()

	cover := []interval.Interval{
		interval.MustNew(1, 4),
		interval.MustNew(5, 8),
		interval.MustNew(100, ^uint64(0)),
	}
	require.NoError(t, s.WriteCover(fp, cover))

	got, ok, err := s.LookupCover(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cover, got)
}

func TestLookupCover_Missing(t *testing.T) {
	s := openInMemory(t)

	got, ok, err := s.LookupCover(testFingerprint())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestLookupCover_StaleFingerprint(t *testing.T) {
	s := openInMemory(t)
	fp := testFingerprint()
	require.NoError(t, s.WriteCover(fp, []interval.Interval{interval.MustNew(1, 2)}))

	changed := fp
	changed.Size++
	_, ok, err := s.LookupCover(changed)
	require.NoError(t, err)
	assert.False(t, ok, "size change invalidates cover")

	touched := fp
	touched.ModTime = fp.ModTime.Add(time.Second)
	_, ok, err = s.LookupCover(touched)
	require.NoError(t, err)
	assert.False(t, ok, "mod time change invalidates cover")
}

func TestWriteCover_Replaces(t *testing.T) {
	s := openInMemory(t)
	fp := testFingerprint()
	require.NoError(t, s.WriteCover(fp, []interval.Interval{interval.MustNew(1, 2), interval.MustNew(4, 5)}))
	require.NoError(t, s.WriteCover(fp, []interval.Interval{interval.MustNew(7, 9)}))

	got, ok, err := s.LookupCover(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []interval.Interval{interval.MustNew(7, 9)}, got)
}

func TestWriteCover_FailedAppendIsNotCached(t *testing.T) {
	s := openInMemory(t)
	fp := testFingerprint()

	// A column type the appender cannot fill makes every append fail.
	_, err := s.DB().Exec("ALTER TABLE covers ALTER range_end TYPE DATE")
	require.NoError(t, err)

	err = s.WriteCover(fp, []interval.Interval{interval.MustNew(1, 4), interval.MustNew(6, 9)})
	require.Error(t, err)

	got, ok, err := s.LookupCover(fp)
	require.NoError(t, err)
	assert.False(t, ok, "failed write must not leave a valid cover behind")
	assert.Empty(t, got)

	var rows int64
	require.NoError(t, s.DB().QueryRow("SELECT count(*) FROM covers").Scan(&rows))
	assert.Zero(t, rows)
}

func TestWriteCover_Empty(t *testing.T) {
	s := openInMemory(t)
	fp := testFingerprint()
	require.NoError(t, s.WriteCover(fp, nil))

	got, ok, err := s.LookupCover(fp)
	require.NoError(t, err)
	assert.True(t, ok, "an empty cover is still a valid cached result")
	assert.Empty(t, got)
}

// --- Point result tests ---

func TestWritePointResultsAndCount(t *testing.T) {
	s := openInMemory(t)

	results := []query.WorkResult{
		{Seq: 0, Point: 1},
		{Seq: 1, Point: 5, Fresh: true},
		{Seq: 2, Point: 11, Fresh: true},
		{Seq: 3, Point: 32},
	}
	require.NoError(t, s.WritePointResults("a.txt", results))
	require.NoError(t, s.WritePointResults("b.txt", results[:2]))

	n, err := s.CountFresh("a.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountFresh("b.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.WritePointResults("a.txt", results[:1]))
	n, err = s.CountFresh("a.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "rewrite replaces previous results")
}

func TestClearSource(t *testing.T) {
	s := openInMemory(t)
	fp := testFingerprint()
	require.NoError(t, s.WriteCover(fp, []interval.Interval{interval.MustNew(1, 2)}))
	require.NoError(t, s.WritePointResults(fp.Path, []query.WorkResult{{Point: 1, Fresh: true}}))

	require.NoError(t, s.ClearSource(fp.Path))

	_, ok, err := s.LookupCover(fp)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.CountFresh(fp.Path)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("1-2\n\n1\n"), 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.Equal(t, int64(7), fp.Size)

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
