// Package solve implements the exhaustive backtracking search over a
// placement grid. It plays the role the teacher codebase's move generator
// plays for Scrabble: the innermost loop every other package exists to
// feed, so it is written to allocate nothing per candidate and to touch
// only the cell currently being decided plus its two downstream
// neighbors.
package solve

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/piecemask"
	"github.com/edgepuzzle/tessera/rottable"
	"github.com/edgepuzzle/tessera/tile"
	"golang.org/x/sync/errgroup"
)

// Sink receives each complete placement the moment the last cell is
// filled. Solution returns false to ask the engine to stop searching
// (first-solution mode); true keeps the search running. The engine holds
// a single mutex around every Solution call, so a Sink never needs its
// own locking even when the engine is fanning out across goroutines.
type Sink interface {
	Solution(b *board.Board, count int64) bool
}

// stopSignal is returned up the recursion (and across errgroup legs)
// once a Sink has asked the search to stop; it is never surfaced to the
// caller of Solve/SolveParallel as an error in its own right. A done
// context is reported separately, as ctx.Err().
type stopSignal struct{}

func (stopSignal) Error() string { return "solve: search stopped" }

// Engine runs one search over one board against one rotation table.
// Count is safe to read from another goroutine while a search is in
// flight; the board itself is not, except through CellAt/Chosen writes
// the engine performs under its own recursion.
type Engine struct {
	Table  rottable.Table
	Layout tile.Layout

	Count atomic.Int64

	mu   sync.Mutex
	sink Sink
}

// New builds an Engine over the given rotation table and layout. The
// caller supplies a Board per call to Solve/SolveParallel so the same
// Engine (and its shared Count) can drive several independent branches.
func New(l tile.Layout, t rottable.Table) *Engine {
	return &Engine{Table: t, Layout: l}
}

// Solve runs a single-threaded depth-first search starting at b.First
// with an empty piece mask, reporting every complete solution to sink.
func (e *Engine) Solve(ctx context.Context, b *board.Board, numPieces int, sink Sink) error {
	e.sink = sink
	mask := piecemask.New(numPieces)
	err := e.step(ctx, b, b.First, mask)
	if _, ok := err.(stopSignal); ok {
		return nil
	}
	return err
}

// SolveParallel fans out across the candidates that satisfy the first
// cell, one task per candidate, each working an independent clone of b
// — the only point in the search tree the distilled spec allows
// concurrent branches to begin from, since every cell after the first
// depends on state a sibling branch would otherwise be racing to read.
// maxConcurrency bounds how many of those tasks run at once (0 means
// unbounded); the orchestrator sizes it to approximate the distilled
// spec's "between 2H and 4H in-flight tasks" watermark policy with
// errgroup's own admission control instead of a hand-rolled queue.
func (e *Engine) SolveParallel(ctx context.Context, b *board.Board, numPieces int, sink Sink, maxConcurrency int) error {
	e.sink = sink
	firstCell := b.CellAt(b.First)
	candidates := e.Table.Get(firstCell.LookupKey)
	if len(candidates) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	for _, cand := range candidates {
		cand := cand
		g.Go(func() error {
			branch := b.Clone()
			mask := piecemask.New(numPieces)
			return e.placeAndDescend(gctx, branch, branch.First, mask, cand)
		})
	}
	// A stopSignal from any branch is returned as-is here, not swallowed:
	// errgroup cancels gctx on the first non-nil error, which is what
	// stops every sibling branch's next step() call promptly instead of
	// letting them run to their own completion.
	err := g.Wait()
	if _, ok := err.(stopSignal); ok {
		return nil
	}
	return err
}

// step tries every candidate tile that matches cell idx's current
// lookup key, recursing into each in turn.
func (e *Engine) step(ctx context.Context, b *board.Board, idx int, mask piecemask.Mask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cell := b.CellAt(idx)
	candidates := e.Table.Get(cell.LookupKey)
	for _, cand := range candidates {
		if mask.Intersects(cand.Mask) {
			continue
		}
		if err := e.placeAndDescend(ctx, b, idx, mask, cand); err != nil {
			return err
		}
	}
	return nil
}

// placeAndDescend places cand at idx, updates its right/bottom
// neighbors' lookup keys, recurses to the next cell (or reports a
// completed solution if idx was terminal), then restores everything it
// touched before returning — the save/restore discipline that lets the
// same board support backtracking without reallocating per cell.
func (e *Engine) placeAndDescend(ctx context.Context, b *board.Board, idx int, mask piecemask.Mask, cand *tile.Tile) error {
	cell := b.CellAt(idx)
	rightCell := b.CellAt(cell.Right)
	bottomCell := b.CellAt(cell.Bottom)

	savedRightKey := rightCell.LookupKey
	savedBottomKey := bottomCell.LookupKey
	savedChosen := cell.Chosen

	cell.Chosen = cand
	rightCell.LookupKey = (rightCell.LookupKey &^ e.Layout.MaskLeft()) | cand.RightField()
	bottomCell.LookupKey = (bottomCell.LookupKey &^ e.Layout.MaskTop()) | cand.BottomField(e.Layout)

	newMask := mask
	newMask.UnionInto(cand.Mask)

	var err error
	if board.IsOff(cell.Next) {
		err = e.report(b)
	} else {
		err = e.step(ctx, b, cell.Next, newMask)
	}

	cell.Chosen = savedChosen
	rightCell.LookupKey = savedRightKey
	bottomCell.LookupKey = savedBottomKey

	return err
}

// report delivers one completed board to the sink under the engine's
// print lock and bumps the solution counter unconditionally, per the
// distilled spec's resolution of its own open question: every complete
// assignment counts once, even a mirror image of one already reported.
func (e *Engine) report(b *board.Board) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := e.Count.Add(1)
	if e.sink != nil && !e.sink.Solution(b, count) {
		return stopSignal{}
	}
	return nil
}
