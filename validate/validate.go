// Package validate implements the embedded self-test behind the CLI's
// --validate flag: it runs the 16-piece / 4x4 fixture from the
// distilled spec's testable-properties section through every container
// strategy and both single-threaded and threaded execution, and checks
// the resulting rotation-table sizes and solution count against the
// fixture's known-correct values. It plays the role the teacher
// codebase's endgame/alphabeta test harness plays against a fixed,
// hand-verified position: a regression guard that exercises the real
// engine end to end rather than one isolated unit.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/bridge"
	"github.com/edgepuzzle/tessera/canon"
	"github.com/edgepuzzle/tessera/orchestrator"
	"github.com/edgepuzzle/tessera/rottable"
	"github.com/edgepuzzle/tessera/solvestats"
)

// FixturePieces is the embedded 16-piece / 4x4 puzzle from the distilled
// spec's §8 testable-properties section, read left-to-right, top-to-bottom.
var FixturePieces = []canon.Piece{
	{Left: 0, Top: 0, Right: 1, Bottom: 2}, {Left: 1, Top: 0, Right: 2, Bottom: 3}, {Left: 2, Top: 0, Right: 1, Bottom: 3}, {Left: 1, Top: 0, Right: 0, Bottom: 1},
	{Left: 0, Top: 2, Right: 3, Bottom: 2}, {Left: 3, Top: 3, Right: 4, Bottom: 4}, {Left: 4, Top: 3, Right: 3, Bottom: 3}, {Left: 3, Top: 1, Right: 0, Bottom: 1},
	{Left: 0, Top: 2, Right: 4, Bottom: 2}, {Left: 4, Top: 4, Right: 3, Bottom: 4}, {Left: 3, Top: 3, Right: 4, Bottom: 4}, {Left: 4, Top: 1, Right: 0, Bottom: 2},
	{Left: 0, Top: 2, Right: 1, Bottom: 0}, {Left: 1, Top: 4, Right: 1, Bottom: 0}, {Left: 1, Top: 4, Right: 2, Bottom: 0}, {Left: 2, Top: 2, Right: 0, Bottom: 0},
}

// Expected fixture outcomes, per the distilled spec's §8 scenario 1.
const (
	Expected1x1         = 58
	ExpectedBridgeLevel = 316 // 1x2, and 2x1 on a non-square board
	Expected2x2         = 3472
	ExpectedSolutions   = 640
)

// LevelCheck compares one cascade level's built size against its
// expected value.
type LevelCheck struct {
	Level bridge.Level
	Got   int
	Want  int
}

func (c LevelCheck) OK() bool { return c.Got == c.Want }

// ComboResult is the outcome of running the fixture under one
// (container strategy, threaded) combination.
type ComboResult struct {
	Strategy      rottable.Strategy
	Threaded      bool
	SolutionCount int64
	Levels        []LevelCheck
	BucketSizes   []int
	Elapsed       time.Duration
	Mismatches    []string
}

// OK reports whether this combination matched every expected value.
func (r ComboResult) OK() bool { return len(r.Mismatches) == 0 }

// Result is the outcome of the full validation sweep.
type Result struct {
	Combos []ComboResult
}

// OK reports whether every combination passed.
func (r Result) OK() bool {
	for _, c := range r.Combos {
		if !c.OK() {
			return false
		}
	}
	return true
}

func strategyName(s rottable.Strategy) string {
	switch s {
	case rottable.StrategyDense:
		return "dense"
	case rottable.StrategyOrderedMap:
		return "ordered-map"
	case rottable.StrategyHashedVector:
		return "hashed-vector"
	default:
		return "auto"
	}
}

// discardSink discards solutions, keeping only the engine's own counter; the
// harness only needs the final count, not the solutions themselves.
type discardSink struct{}

func (discardSink) Solution(*board.Board, int64) bool { return true }

// Run executes the fixture under dense, ordered-map, and hashed-vector
// container strategies, each single-threaded and threaded, with the
// bridge builder cascaded through 2x2 — the deepest level the distilled
// spec's scenario 1 names a known-correct size for.
func Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	strategies := []rottable.Strategy{rottable.StrategyDense, rottable.StrategyOrderedMap, rottable.StrategyHashedVector}
	for _, strat := range strategies {
		for _, threaded := range []bool{false, true} {
			cr, err := runCombo(ctx, strat, threaded)
			if err != nil {
				return nil, fmt.Errorf("validate: %s/threaded=%v: %w", strategyName(strat), threaded, err)
			}
			res.Combos = append(res.Combos, cr)
		}
	}
	return res, nil
}

func runCombo(ctx context.Context, strat rottable.Strategy, threaded bool) (ComboResult, error) {
	opts := orchestrator.Options{
		Width: 4, Height: 4,
		Border:       board.BorderNormal,
		Strategy:     strat,
		Threaded:     threaded,
		MacroCeiling: 4, // cascade through 2x2, per the fixture's known sizes
		MaxMemMB:     4096,
	}

	start := time.Now()
	report, err := orchestrator.Run(ctx, FixturePieces, opts, discardSink{})
	elapsed := time.Since(start)
	if err != nil {
		return ComboResult{}, err
	}

	cr := ComboResult{
		Strategy:      strat,
		Threaded:      threaded,
		SolutionCount: report.SolutionCount,
		Elapsed:       elapsed,
		BucketSizes:   report.Table.BucketSizes(),
	}

	want := []int{Expected1x1, ExpectedBridgeLevel, Expected2x2}
	for i, lvl := range report.Levels {
		w := 0
		if i < len(want) {
			w = want[i]
		}
		check := LevelCheck{Level: lvl.Level, Got: lvl.Size, Want: w}
		cr.Levels = append(cr.Levels, check)
		if !check.OK() {
			cr.Mismatches = append(cr.Mismatches, fmt.Sprintf("level %dx%d: got size %d, want %d", lvl.Level.W, lvl.Level.H, lvl.Size, w))
		}
	}
	if report.SolutionCount != ExpectedSolutions {
		cr.Mismatches = append(cr.Mismatches, fmt.Sprintf("solution count: got %d, want %d", report.SolutionCount, ExpectedSolutions))
	}
	return cr, nil
}

// Report renders a human-readable summary of a validation sweep,
// including a bucket-occupancy histogram for the first combo's final
// table (every combo builds the same tile population, so one histogram
// represents them all) and basic timing percentiles.
func Report(r *Result) string {
	var out string
	var elapsedSeconds []float64
	for i, c := range r.Combos {
		status := "PASS"
		if !c.OK() {
			status = "FAIL"
		}
		out += fmt.Sprintf("[%s] strategy=%s threaded=%v solutions=%d elapsed=%s\n",
			status, strategyName(c.Strategy), c.Threaded, c.SolutionCount, c.Elapsed)
		for _, lvl := range c.Levels {
			mark := "ok"
			if !lvl.OK() {
				mark = "MISMATCH"
			}
			out += fmt.Sprintf("    level %dx%d: size=%d want=%d (%s)\n", lvl.Level.W, lvl.Level.H, lvl.Got, lvl.Want, mark)
		}
		for _, m := range c.Mismatches {
			out += "    ! " + m + "\n"
		}
		elapsedSeconds = append(elapsedSeconds, c.Elapsed.Seconds())
		if i == 0 {
			if hist, err := solvestats.BucketHistogram(c.BucketSizes, 10); err == nil {
				out += hist + "\n"
			}
		}
	}
	if len(elapsedSeconds) > 0 {
		out += fmt.Sprintf("p50=%.4fs p90=%.4fs\n",
			solvestats.Percentile(elapsedSeconds, 50), solvestats.Percentile(elapsedSeconds, 90))
	}
	return out
}
