package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgepuzzle/tessera/tile"
)

func layout() tile.Layout { return tile.NewLayout(tile.Edge8, 1, 1) }

func TestNewDimensionsAndTraversalOrder(t *testing.T) {
	b := New(layout(), 3, 2, BorderNormal)
	assert.Len(t, b.Cells, 6)

	// Row-major order: (0,0),(1,0),(2,0),(0,1),(1,1),(2,1).
	want := []int{b.idx(0, 0), b.idx(1, 0), b.idx(2, 0), b.idx(0, 1), b.idx(1, 1), b.idx(2, 1)}
	cur := b.First
	for _, w := range want {
		assert.Equal(t, w, cur)
		cur = b.Cells[cur].Next
	}
	assert.True(t, IsOff(cur))
}

func TestNeighborLinksOffBoardAtEdges(t *testing.T) {
	b := New(layout(), 2, 2, BorderNormal)
	topLeft := b.idx(0, 0)
	assert.True(t, IsOff(b.Cells[topLeft].Left))
	assert.True(t, IsOff(b.Cells[topLeft].Top))
	assert.Equal(t, b.idx(1, 0), b.Cells[topLeft].Right)
	assert.Equal(t, b.idx(0, 1), b.Cells[topLeft].Bottom)
}

func TestCellAtOffBoardReturnsSharedJunkCell(t *testing.T) {
	b := New(layout(), 2, 2, BorderNormal)
	j1 := b.CellAt(b.Cells[b.idx(0, 0)].Left)
	j2 := b.CellAt(b.Cells[b.idx(0, 0)].Top)
	assert.Same(t, j1, j2)
	j1.LookupKey = 0xdead
	assert.Equal(t, uint64(0xdead), j2.LookupKey)
}

func TestBorderNormalRequiresLiteralBorderOnAllFourSides(t *testing.T) {
	l := layout()
	b := New(l, 2, 2, BorderNormal)

	topLeft := b.Cells[b.idx(0, 0)]
	assert.Equal(t, l.Pack(0, 0, false, false), topLeft.LookupKey)

	bottomRight := b.Cells[b.idx(1, 1)]
	assert.Equal(t, l.Pack(l.AnyLeft(), l.AnyTop(), true, true), bottomRight.LookupKey)
}

func TestBorderMiddleRequiresNoLiteralBorder(t *testing.T) {
	l := layout()
	b := New(l, 2, 2, BorderMiddle)
	for i := range b.Cells {
		assert.Equal(t, l.Pack(l.AnyLeft(), l.AnyTop(), false, false), b.Cells[i].LookupKey)
	}
}

func TestBorderSetFromNumpad(t *testing.T) {
	cases := map[int]BorderSet{
		7: BorderTopLeft, 8: BorderTopOnly, 9: BorderTopRight,
		4: BorderLeftOnly, 5: BorderMiddle, 6: BorderRightOnly,
		1: BorderBottomLeft, 2: BorderBottomOnly, 3: BorderBottomRight,
	}
	for n, want := range cases {
		got, ok := BorderSetFromNumpad(n)
		assert.True(t, ok, "numpad %d", n)
		assert.Equal(t, want, got, "numpad %d", n)
	}
	_, ok := BorderSetFromNumpad(0)
	assert.False(t, ok)
}

func TestCloneProducesIndependentBoardWithSameShape(t *testing.T) {
	l := layout()
	b := New(l, 3, 3, BorderNormal)
	b.Cells[b.First].Chosen = &tile.Tile{}

	c := b.Clone()
	assert.Equal(t, b.W, c.W)
	assert.Equal(t, b.H, c.H)
	assert.Equal(t, b.Border, c.Border)
	assert.Nil(t, c.Cells[c.First].Chosen)
	for i := range b.Cells {
		assert.Equal(t, b.Cells[i].LookupKey, c.Cells[i].LookupKey)
	}
}
