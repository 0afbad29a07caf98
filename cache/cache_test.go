package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLoadsOnceAndCachesThereafter(t *testing.T) {
	c := New()
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return "puzzle-pieces", nil
	}

	v1, err := c.Get("puzzle.txt", load)
	assert.NoError(t, err)
	assert.Equal(t, "puzzle-pieces", v1)

	v2, err := c.Get("puzzle.txt", load)
	assert.NoError(t, err)
	assert.Equal(t, "puzzle-pieces", v2)
	assert.Equal(t, 1, calls)
}

func TestGetDoesNotCacheALoadError(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	calls := 0
	load := func() (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	_, err := c.Get("k", load)
	assert.ErrorIs(t, err, boom)

	v, err := c.Get("k", load)
	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestInvalidateForcesReload(t *testing.T) {
	c := New()
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v1, _ := c.Get("k", load)
	assert.Equal(t, 1, v1)

	c.Invalidate("k")
	v2, _ := c.Get("k", load)
	assert.Equal(t, 2, v2)
}

func TestLenReflectsDistinctKeys(t *testing.T) {
	c := New()
	noop := func() (interface{}, error) { return 1, nil }
	c.Get("a", noop)
	c.Get("b", noop)
	assert.Equal(t, 2, c.Len())
}
