package archive

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/piecemask"
	"github.com/edgepuzzle/tessera/solve"
	"github.com/edgepuzzle/tessera/tile"
)

func solvedStrip(t *testing.T) *board.Board {
	t.Helper()
	l := tile.NewLayout(tile.Edge8, 1, 1)
	b := board.New(l, 2, 1, board.BorderNormal)

	left := piecemask.New(4)
	left.SetBit(0)
	right := piecemask.New(4)
	right.SetBit(2)
	right.SetBit(3)

	b.CellAt(b.First).Chosen = &tile.Tile{Mask: left}
	next := b.CellAt(b.First).Next
	b.CellAt(next).Chosen = &tile.Tile{Mask: right}
	return b
}

func TestPrinterFormatsOneBracketedLinePerCell(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	keepGoing := p.Solution(solvedStrip(t), 1)

	assert.True(t, keepGoing)
	assert.Equal(t, "[1]\n[3 4]\n\n", buf.String())
}

func TestPrinterSeparatesSolutionsWithBlankLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Solution(solvedStrip(t), 1)
	p.Solution(solvedStrip(t), 2)

	assert.Equal(t, 2, strings.Count(buf.String(), "\n\n"))
}

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveAssignsMonotonicSequenceNumbersWithinARun(t *testing.T) {
	a := openTestArchive(t)
	b := solvedStrip(t)

	a.Solution(b, 1)
	a.Solution(b, 2)
	a.Solution(b, 3)

	rows, err := a.db.Query(`SELECT seq FROM solutions WHERE run_id = ? ORDER BY seq`, a.RunID.String())
	require.NoError(t, err)
	defer rows.Close()

	var seqs []int64
	for rows.Next() {
		var seq int64
		require.NoError(t, rows.Scan(&seq))
		seqs = append(seqs, seq)
	}
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestArchivePersistsFlattenedGridAsJSON(t *testing.T) {
	a := openTestArchive(t)
	a.Solution(solvedStrip(t), 1)

	var gridJSON string
	row := a.db.QueryRow(`SELECT grid FROM solutions WHERE run_id = ? AND seq = 1`, a.RunID.String())
	require.NoError(t, row.Scan(&gridJSON))

	var grid [][]int
	require.NoError(t, json.Unmarshal([]byte(gridJSON), &grid))
	assert.Equal(t, [][]int{{1}, {3, 4}}, grid)
}

func TestArchiveEachRunGetsADistinctID(t *testing.T) {
	a1 := openTestArchive(t)
	a2 := openTestArchive(t)
	assert.NotEqual(t, a1.RunID, a2.RunID)
}

func TestIsBusyOnlyMatchesLockErrors(t *testing.T) {
	assert.False(t, isBusy(nil))
	assert.False(t, isBusy(assertErr("no such table: solutions")))
	assert.True(t, isBusy(assertErr("database is locked")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

type countingSink struct{ n int }

func (s *countingSink) Solution(b *board.Board, count int64) bool { s.n++; return true }

type refusingSink struct{}

func (refusingSink) Solution(b *board.Board, count int64) bool { return false }

func TestFanoutStopsIfAnySinkRefuses(t *testing.T) {
	counter := &countingSink{}
	f := Fanout{Sinks: []solve.Sink{counter, refusingSink{}}}
	assert.False(t, f.Solution(solvedStrip(t), 1))
	assert.Equal(t, 1, counter.n)
}

func TestFanoutStopsWhenEverySinkRefuses(t *testing.T) {
	f := Fanout{Sinks: []solve.Sink{refusingSink{}, refusingSink{}}}
	assert.False(t, f.Solution(solvedStrip(t), 1))
}

func TestFanoutSkipsNilSinks(t *testing.T) {
	f := Fanout{Sinks: []solve.Sink{nil, refusingSink{}}}
	assert.False(t, f.Solution(solvedStrip(t), 1))
}
