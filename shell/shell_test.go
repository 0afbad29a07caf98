package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgepuzzle/tessera/board"
)

func TestParseSolveArgsReadsDimensionsAndPackedFlags(t *testing.T) {
	w, h, flags, err := parseSolveArgs([]string{"4", "4", "-pqrt"}, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	assert.True(t, flags.print)
	assert.True(t, flags.quitOnFirst)
	assert.True(t, flags.randomize)
	assert.True(t, flags.threaded)
}

func TestParseSolveArgsFallsBackToDefaultsWhenDimensionsOmitted(t *testing.T) {
	w, h, flags, err := parseSolveArgs([]string{"-q"}, 4, 8)
	assert.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 8, h)
	assert.True(t, flags.quitOnFirst)
	assert.False(t, flags.print)
}

func TestParseSolveArgsRejectsUnknownFlag(t *testing.T) {
	_, _, _, err := parseSolveArgs([]string{"-z"}, 0, 0)
	assert.Error(t, err)
}

func TestParseSolveArgsRejectsNonNumericToken(t *testing.T) {
	_, _, _, err := parseSolveArgs([]string{"four", "four"}, 0, 0)
	assert.Error(t, err)
}

func TestQuitAfterFirstStopsTheSearch(t *testing.T) {
	inner := &countingSink{}
	q := &quitAfterFirst{next: inner}
	cont := q.Solution(nil, 1)
	assert.False(t, cont)
	assert.Equal(t, 1, inner.calls)
}

type countingSink struct {
	calls int
}

func (c *countingSink) Solution(b *board.Board, count int64) bool {
	c.calls++
	return true
}
