// Package orchestrator wires piece canonicalization, the bridge
// builder, and the search engine into one run: it is the conductor the
// teacher codebase's runner/worker packages play for a full game replay
// or simulation batch, deciding widths, strategies, and concurrency
// once so every downstream package can stay narrowly focused.
package orchestrator

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pbnjay/memory"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/bridge"
	"github.com/edgepuzzle/tessera/canon"
	"github.com/edgepuzzle/tessera/rottable"
	"github.com/edgepuzzle/tessera/solve"
	"github.com/edgepuzzle/tessera/tile"
)

// LevelReport records one rotation table's size at a cascade step, used
// by the validation harness to compare against the embedded fixture's
// known table sizes (58, 316, 316, 3472, ...).
type LevelReport struct {
	Level bridge.Level
	Size  int
}

// Report summarizes one completed run: the layout actually solved
// against, every cascade level built along the way, and the final
// solution count.
type Report struct {
	Layout        tile.Layout
	BoardW, BoardH int // in macro-tile units
	Levels        []LevelReport
	SolutionCount int64
	Threaded      bool
	Table         rottable.Table // the table the search ran against; for bucket-occupancy reporting
}

// Options configures one orchestrator run. It is deliberately a plain
// struct rather than *config.Settings so this package stays usable from
// the validation harness and tests without dragging in flag parsing.
type Options struct {
	Width, Height int
	Border        board.BorderSet
	Strategy      rottable.Strategy
	Threaded      bool
	Randomize     bool
	MacroCeiling  int // largest macro-tile area (base pieces) to cascade to; 0 disables the bridge builder
	MaxMemMB      int // override the detected memory ceiling; 0 uses the OS-reported free memory
}

// memoryBudgetBytes returns how many bytes the bridge builder's next
// cascade step may consume before the orchestrator calls a halt. With
// no override it defers to the OS's reported free memory and keeps half
// in reserve for the rest of the process, mirroring the distilled
// spec's "best-effort preventive check, not a guarantee" framing: this
// is advisory, not a hard allocator limit.
func memoryBudgetBytes(o Options) uint64 {
	if o.MaxMemMB > 0 {
		return uint64(o.MaxMemMB) * 1024 * 1024
	}
	free := memory.FreeMemory()
	if free == 0 {
		return 1 << 30
	}
	return free / 2
}

// bytesPerTile is a conservative per-tile footprint estimate: four
// uint64 edge fields, an 8-word piece mask, the random sort key, plus
// the up-to-four bucket-slice entries a tile's variant keys cost the
// owning rottable.Table.
const bytesPerTile = 4*8 + 8*8 + 8 + 4*8

func estimateBytes(tileCount int) uint64 { return uint64(tileCount) * bytesPerTile }

// chooseCascade greedily doubles whichever of the macro-tile's two
// dimensions is currently smaller, stopping once the area would exceed
// macroCeiling or the macro no longer evenly divides the board — a
// macro-tile that doesn't tile the board exactly is useless at that
// level no matter how much memory is available.
func chooseCascade(boardW, boardH, macroCeiling int) []bridge.Direction {
	if macroCeiling < 2 {
		return nil
	}
	var dirs []bridge.Direction
	w, h := 1, 1
	for w*h*2 <= macroCeiling {
		dir := bridge.Horizontal
		if h <= w {
			dir = bridge.Vertical
		}
		nw, nh := w, h
		if dir == bridge.Horizontal {
			nw *= 2
		} else {
			nh *= 2
		}
		if boardW%nw != 0 || boardH%nh != 0 {
			break
		}
		dirs = append(dirs, dir)
		w, h = nw, nh
	}
	return dirs
}

// build runs canonicalization, then the bridge builder cascade, gating
// each step on chooseCascade's plan and the memory guard, and returns
// the final table, the layout it was built at, and every level's size.
func build(ctx context.Context, pieces []canon.Piece, o Options) (rottable.Table, tile.Layout, []LevelReport, error) {
	numPieces := len(pieces)
	class := tile.ClassFor(canon.MaxColor(pieces))
	layout := tile.NewLayout(class, 1, 1)

	base := rottable.NewTable(layout, o.Strategy)
	for _, t := range canon.Rotations(pieces, numPieces) {
		base.Insert(t)
	}
	if o.Randomize {
		base.Randomize()
	}

	levels := []LevelReport{{Level: bridge.Level{W: 1, H: 1}, Size: base.Size()}}
	tbl, cur := base, layout

	budget := memoryBudgetBytes(o)
	for _, dir := range chooseCascade(o.Width, o.Height, o.MacroCeiling) {
		if estimateBytes(tbl.Size()*4) > budget {
			break
		}
		next, nextLayout, err := bridge.BuildLevel(ctx, tbl, cur, dir, numPieces, o.Strategy)
		if err != nil {
			return nil, tile.Layout{}, nil, fmt.Errorf("orchestrator: cascade: %w", err)
		}
		if o.Randomize {
			next.Randomize()
		}
		tbl, cur = next, nextLayout
		levels = append(levels, LevelReport{Level: bridge.LevelOf(cur), Size: tbl.Size()})
	}
	return tbl, cur, levels, nil
}

// Run executes one end-to-end solve: canonicalize pieces, build the
// macro-tile cascade the memory guard and ceiling allow, then search.
func Run(ctx context.Context, pieces []canon.Piece, o Options, sink solve.Sink) (*Report, error) {
	numPieces := len(pieces)
	tbl, layout, levels, err := build(ctx, pieces, o)
	if err != nil {
		return nil, err
	}

	tileW, tileH := layout.TileW(), layout.TileH()
	if o.Width%tileW != 0 || o.Height%tileH != 0 {
		return nil, fmt.Errorf("orchestrator: %dx%d macro-tile does not evenly divide board %dx%d", tileW, tileH, o.Width, o.Height)
	}
	boardW, boardH := o.Width/tileW, o.Height/tileH

	brd := board.New(layout, boardW, boardH, o.Border)
	eng := solve.New(layout, tbl)

	if o.Threaded {
		limit := 4 * runtime.GOMAXPROCS(0)
		if err := eng.SolveParallel(ctx, brd, numPieces, sink, limit); err != nil {
			return nil, err
		}
	} else {
		if err := eng.Solve(ctx, brd, numPieces, sink); err != nil {
			return nil, err
		}
	}

	return &Report{
		Layout:        layout,
		BoardW:        boardW,
		BoardH:        boardH,
		Levels:        levels,
		SolutionCount: eng.Count.Load(),
		Threaded:      o.Threaded,
		Table:         tbl,
	}, nil
}
