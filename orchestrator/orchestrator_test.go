package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/bridge"
	"github.com/edgepuzzle/tessera/canon"
	"github.com/edgepuzzle/tessera/rottable"
)

func TestChooseCascadeReproducesCanonicalDoublingSequence(t *testing.T) {
	dirs := chooseCascade(4, 8, 32)
	assert.Equal(t, []bridge.Direction{
		bridge.Vertical,   // 1x1 -> 1x2
		bridge.Horizontal, // 1x2 -> 2x2
		bridge.Vertical,   // 2x2 -> 2x4
		bridge.Horizontal, // 2x4 -> 4x4
		bridge.Vertical,   // 4x4 -> 4x8
	}, dirs)
}

func TestChooseCascadeStopsWhenMacroCeilingTooSmall(t *testing.T) {
	assert.Empty(t, chooseCascade(4, 4, 0))
	assert.Empty(t, chooseCascade(4, 4, 1))
}

func TestChooseCascadeStopsWhenMacroNoLongerDividesBoard(t *testing.T) {
	// 3x3 can never host a 1x2 (or larger) macro-tile.
	assert.Empty(t, chooseCascade(3, 3, 32))
}

func TestChooseCascadeStopsAtCeilingEvenWhenBoardCouldGoFurther(t *testing.T) {
	dirs := chooseCascade(8, 8, 4)
	// area caps at 4 base pieces: 1x1 -> 1x2 -> 2x2, then 2x2*2=8 > 4 stops.
	assert.Equal(t, []bridge.Direction{bridge.Vertical, bridge.Horizontal}, dirs)
}

func trivialBag() []canon.Piece {
	return []canon.Piece{
		{Left: 0, Top: 0, Right: 1, Bottom: 1},
		{Left: 1, Top: 1, Right: 0, Bottom: 0},
	}
}

func TestBuildWithMacroCeilingZeroSkipsBridgeBuilder(t *testing.T) {
	o := Options{Width: 2, Height: 2, Border: board.BorderNormal, Strategy: rottable.StrategyDense, MacroCeiling: 0}
	tbl, layout, levels, err := build(context.Background(), trivialBag(), o)
	assert.NoError(t, err)
	assert.NotNil(t, tbl)
	assert.Equal(t, 1, layout.TileW())
	assert.Equal(t, 1, layout.TileH())
	assert.Len(t, levels, 1)
	assert.Equal(t, 1, levels[0].Level.W)
	assert.Equal(t, 1, levels[0].Level.H)
}

func TestBuildCascadesThroughEveryPlannedLevel(t *testing.T) {
	o := Options{Width: 4, Height: 4, Border: board.BorderNormal, Strategy: rottable.StrategyDense, MacroCeiling: 32, MaxMemMB: 4096}
	_, _, levels, err := build(context.Background(), trivialBag(), o)
	assert.NoError(t, err)
	// base level plus one per planned cascade direction (the sub-board
	// solves may find zero matches for this toy bag; BuildLevel still
	// succeeds with an empty table rather than erroring).
	want := len(chooseCascade(o.Width, o.Height, o.MacroCeiling)) + 1
	assert.Len(t, levels, want)
}

func TestMemoryBudgetBytesHonorsOverride(t *testing.T) {
	assert.Equal(t, uint64(5)*1024*1024, memoryBudgetBytes(Options{MaxMemMB: 5}))
}

func TestMemoryBudgetBytesFallsBackToSystemMemoryWithoutOverride(t *testing.T) {
	assert.Positive(t, memoryBudgetBytes(Options{}))
}

func TestEstimateBytesScalesLinearlyWithTileCount(t *testing.T) {
	assert.Equal(t, uint64(0), estimateBytes(0))
	assert.Equal(t, 10*estimateBytes(1), estimateBytes(10))
}

type recordingSink struct{ counts *[]int64 }

func (s recordingSink) Solution(b *board.Board, count int64) bool {
	if s.counts != nil {
		*s.counts = append(*s.counts, count)
	}
	return true
}

func TestRunReportsSolutionCountConsistentWithSinkCalls(t *testing.T) {
	o := Options{Width: 2, Height: 1, Border: board.BorderMiddle, Strategy: rottable.StrategyDense, MacroCeiling: 0}
	var counts []int64
	sink := recordingSink{counts: &counts}
	report, err := Run(context.Background(), trivialBag(), o, sink)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(counts)), report.SolutionCount)
	assert.Equal(t, 2, report.BoardW)
	assert.Equal(t, 1, report.BoardH)
	assert.False(t, report.Threaded)
}

func TestRunThreadedSetsReportFlag(t *testing.T) {
	o := Options{Width: 2, Height: 1, Border: board.BorderMiddle, Strategy: rottable.StrategyDense, MacroCeiling: 0, Threaded: true}
	report, err := Run(context.Background(), trivialBag(), o, recordingSink{})
	assert.NoError(t, err)
	assert.True(t, report.Threaded)
}
