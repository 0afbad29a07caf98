// Package bridge builds macro-tiles: larger synthetic tiles assembled by
// exhaustively tiling a small sub-board with a smaller rotation table and
// recording every complete tiling as one new tile. It is the solver's
// answer to the same problem the teacher codebase's GADDAG construction
// solves for Scrabble move generation — precompute an expensive
// combinatorial structure once, up front, so the hot search loop never
// has to recompute it — except here the precomputed structure is itself
// built by running the search engine on a tiny board.
package bridge

import (
	"context"
	"fmt"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/piecemask"
	"github.com/edgepuzzle/tessera/rottable"
	"github.com/edgepuzzle/tessera/solve"
	"github.com/edgepuzzle/tessera/tile"
)

// Direction names which dimension a fuse step doubles.
type Direction int

const (
	Horizontal Direction = iota // two tiles side by side; width doubles
	Vertical                    // two tiles stacked; height doubles
)

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// NineBorderTypes lists every board.BorderSet a macro-tile can be built
// for: the four corners, the four edges, and the borderless middle.
func NineBorderTypes() []board.BorderSet {
	return []board.BorderSet{
		board.BorderMiddle,
		board.BorderTopOnly, board.BorderBottomOnly, board.BorderLeftOnly, board.BorderRightOnly,
		board.BorderTopLeft, board.BorderTopRight, board.BorderBottomLeft, board.BorderBottomRight,
	}
}

// tileSink collects every complete tiling of a bridge sub-board as one
// fused macro-tile candidate for the table being built at this level.
type tileSink struct {
	dir   Direction
	child tile.Layout
	fused []*tile.Tile
}

func (s *tileSink) Solution(b *board.Board, count int64) bool {
	a := b.CellAt(b.First).Chosen
	var z *tile.Tile
	if s.dir == Horizontal {
		z = b.CellAt(b.CellAt(b.First).Right).Chosen
	} else {
		z = b.CellAt(b.CellAt(b.First).Bottom).Chosen
	}
	s.fused = append(s.fused, fuse(s.dir, s.child, a, z))
	return true
}

// fuse concatenates two child tiles' edge colors bitwise into one
// macro-tile spanning both, per the direction of the join. The outer
// edges come from whichever child borders them; the shared inner edge
// is absorbed entirely and never appears in the result.
func fuse(dir Direction, child tile.Layout, a, z *tile.Tile) *tile.Tile {
	if dir == Horizontal {
		return &tile.Tile{
			Left:   a.Left,
			Right:  z.Right,
			Top:    a.Top | (z.Top << child.TopBits),
			Bottom: a.Bottom | (z.Bottom << child.TopBits),
			Mask:   piecemask.UnionOf(a.Mask, z.Mask),
		}
	}
	return &tile.Tile{
		Top:    a.Top,
		Bottom: z.Bottom,
		Left:   a.Left | (z.Left << child.LeftBits),
		Right:  a.Right | (z.Right << child.LeftBits),
		Mask:   piecemask.UnionOf(a.Mask, z.Mask),
	}
}

// parentLayout derives the next level's bit-field geometry from the
// child's, doubling whichever dimension the fuse direction grows.
func parentLayout(child tile.Layout, dir Direction) tile.Layout {
	w, h := child.TileW(), child.TileH()
	if dir == Horizontal {
		w *= 2
	} else {
		h *= 2
	}
	return tile.NewLayout(child.Class(), w, h)
}

// BuildLevel solves the 2-cell sub-board for every one of the nine
// border types using childTable, fuses each resulting pair into a
// macro-tile, and inserts every macro-tile into a freshly built table at
// the doubled layout. numPieces sizes the piece masks the solve engine
// carries; it must match the width childTable's tiles were built with.
func BuildLevel(ctx context.Context, childTable rottable.Table, child tile.Layout, dir Direction, numPieces int, strategy rottable.Strategy) (rottable.Table, tile.Layout, error) {
	parent := parentLayout(child, dir)
	next := rottable.NewTable(parent, strategy)

	w, h := 2, 1
	if dir == Vertical {
		w, h = 1, 2
	}

	eng := solve.New(child, childTable)
	for _, bt := range NineBorderTypes() {
		sub := board.New(child, w, h, bt)
		sink := &tileSink{dir: dir, child: child}
		if err := eng.Solve(ctx, sub, numPieces, sink); err != nil {
			return nil, tile.Layout{}, fmt.Errorf("bridge: border type %v: %w", bt, err)
		}
		for _, ft := range sink.fused {
			next.Insert(ft)
		}
	}
	return next, parent, nil
}

// Level names a macro-tile's dimensions, in base pieces, for cascade
// bookkeeping and logging.
type Level struct {
	W, H int
}

// LevelOf reports the level a layout describes.
func LevelOf(l tile.Layout) Level { return Level{W: l.TileW(), H: l.TileH()} }

// Cascade runs a fixed sequence of fuse directions starting from a base
// table, returning the table and layout reached after the last step plus
// the level reached after every step — the orchestrator checks available
// memory between steps and stops early by simply not calling the next
// BuildLevel, so Cascade itself performs no budget accounting.
func Cascade(ctx context.Context, base rottable.Table, baseLayout tile.Layout, dirs []Direction, numPieces int, strategy rottable.Strategy) (rottable.Table, tile.Layout, []Level, error) {
	tbl, layout := base, baseLayout
	levels := make([]Level, 0, len(dirs))
	for _, dir := range dirs {
		var err error
		tbl, layout, err = BuildLevel(ctx, tbl, layout, dir, numPieces, strategy)
		if err != nil {
			return nil, tile.Layout{}, levels, err
		}
		levels = append(levels, LevelOf(layout))
	}
	return tbl, layout, levels, nil
}
