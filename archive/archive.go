// Package archive implements the solver's two output sinks: a stdout
// printer matching the CLI's textual solution format, and a durable
// SQLite archive. It plays the role the teacher codebase's bot/lambda
// front doors play for a finished move: take a completed unit of work
// and hand it to whichever of "show it to the user" or "persist it
// somewhere durable" the caller wants, without either one blocking the
// other.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/solve"
)

// Printer renders each solution in the CLI's textual format: one
// bracketed, space-separated line of 1-based piece indices per cell,
// board cells in row-major order, with a blank line between solutions.
// Writes are serialized behind a single mutex, the process-wide print
// lock every solve.Sink sharing a Printer contends for.
type Printer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewPrinter wraps w as a solve.Sink.
func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

// Solution writes one solution's grid to the underlying writer and
// always asks the search to keep going; quitting after the first
// solution is the caller's concern (see the CLI's quit-on-first
// wiring), not the printer's.
func (p *Printer) Solution(b *board.Board, count int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := b.First; !board.IsOff(i); i = b.CellAt(i).Next {
		cell := b.CellAt(i)
		fmt.Fprint(p.w, "[")
		for j, piece := range cell.Chosen.Mask.Bits() {
			if j > 0 {
				fmt.Fprint(p.w, " ")
			}
			fmt.Fprintf(p.w, "%d", piece+1)
		}
		fmt.Fprintln(p.w, "]")
	}
	fmt.Fprintln(p.w)
	return true
}

// Record is one archived solution: the run it belongs to, its
// sequence number within that run, the board dimensions it was solved
// against, and the flattened row-major grid of each cell's 1-based
// piece indices.
type Record struct {
	RunID uuid.UUID
	Seq   int64
	W, H  int
	Grid  [][]int
}

// gridOf flattens a solved board into the row-major [][]int Record.Grid
// carries, one inner slice per cell.
func gridOf(b *board.Board) [][]int {
	grid := make([][]int, 0, b.W*b.H)
	for i := b.First; !board.IsOff(i); i = b.CellAt(i).Next {
		bits := b.CellAt(i).Chosen.Mask.Bits()
		cell := make([]int, len(bits))
		for j, piece := range bits {
			cell[j] = piece + 1
		}
		grid = append(grid, cell)
	}
	return grid
}

// Archive persists each solution it receives to a SQLite database,
// independent of whether the process that found it is still running.
// One Archive corresponds to one CLI invocation's run, identified by
// RunID; every solution it records gets the next monotonic sequence
// number within that run.
type Archive struct {
	db    *sql.DB
	RunID uuid.UUID

	seq    int64
	log    zerolog.Logger
	mu     sync.Mutex
	closed bool
}

// Open creates (or attaches to) the SQLite database at dsn and ensures
// the solutions table exists. dsn is passed straight through to
// modernc.org/sqlite, so the usual file-path and pragma-query-string
// forms both work.
func Open(dsn string, log zerolog.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // a busy single SQLite file serializes writers anyway

	const schema = `
CREATE TABLE IF NOT EXISTS solutions (
	run_id TEXT NOT NULL,
	seq    INTEGER NOT NULL,
	width  INTEGER NOT NULL,
	height INTEGER NOT NULL,
	grid   TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}

	return &Archive{db: db, RunID: uuid.New(), log: log}, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return a.db.Close()
}

// Solution persists one completed board, retrying through the
// transient "database is locked" error a busy single-file SQLite
// database produces under concurrent DFS workers. A write failure is
// logged as a warning and otherwise swallowed: the archive is a
// best-effort sink, never load-bearing for the core solve/print
// contract, so it always returns true regardless of outcome.
func (a *Archive) Solution(b *board.Board, count int64) bool {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	rec := Record{RunID: a.RunID, Seq: seq, W: b.W, H: b.H, Grid: gridOf(b)}
	if err := a.insert(rec); err != nil {
		a.log.Warn().Err(err).Int64("seq", seq).Msg("archive-write-failed")
	}
	return true
}

func (a *Archive) insert(rec Record) error {
	grid, err := json.Marshal(rec.Grid)
	if err != nil {
		return fmt.Errorf("archive: encode grid: %w", err)
	}

	return retry.Do(
		func() error {
			_, err := a.db.ExecContext(context.Background(),
				`INSERT INTO solutions (run_id, seq, width, height, grid) VALUES (?, ?, ?, ?, ?)`,
				rec.RunID.String(), rec.Seq, rec.W, rec.H, string(grid))
			return err
		},
		retry.Attempts(5),
		retry.Delay(10*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isBusy),
	)
}

// isBusy reports whether err looks like SQLite's "database is locked"
// error, the only failure mode worth retrying; any other error fails
// fast.
func isBusy(err error) bool {
	return err != nil && strings.Contains(err.Error(), "locked")
}

// Fanout broadcasts each solution to every sink it wraps, in order,
// combining printing and archiving (or any other solve.Sink) behind
// one solve.Sink so the orchestrator never needs to know how many
// outputs a run has. The combined result keeps searching unless some
// wrapped sink explicitly asked to stop; an empty Fanout (the default
// one-shot invocation with no -p and no --archive) always keeps going,
// since the search's solution count must stay independent of whether
// anything is listening to print or archive it.
type Fanout struct {
	Sinks []solve.Sink
}

// Solution implements solve.Sink.
func (f Fanout) Solution(b *board.Board, count int64) bool {
	keepGoing := true
	for _, s := range f.Sinks {
		if s == nil {
			continue
		}
		if !s.Solution(b, count) {
			keepGoing = false
		}
	}
	return keepGoing
}
