// Package board implements the placement grid the DFS engine walks. The
// teacher codebase keeps its game board as a dense grid of Square structs
// addressed by row/col with no per-cell neighbor pointers; this package
// keeps that "plain grid, no pointer chasing" shape but adds explicit
// index links between neighboring cells, since the solver needs O(1)
// access to a cell's four neighbors far more often than it needs row/col
// addressing. Links are array indices rather than pointers so a Cell stays
// copyable and the whole board stays one contiguous allocation.
package board

import "github.com/edgepuzzle/tessera/tile"

// Side names one edge of the board, used to build a BorderSet.
type Side uint8

const (
	Left Side = 1 << iota
	Top
	Right
	Bottom
)

// BorderSet is the bit set of board sides that require a literal border
// (color 0) on that side's outer edge. The distilled spec's ten board
// types (normal, the four corners, the four edges, and middle) are each
// one of these masks.
type BorderSet uint8

const (
	BorderMiddle BorderSet = 0
	BorderNormal           = BorderSet(Left | Top | Right | Bottom)

	BorderTopLeft     = BorderSet(Left | Top)
	BorderTopRight    = BorderSet(Top | Right)
	BorderBottomLeft  = BorderSet(Left | Bottom)
	BorderBottomRight = BorderSet(Right | Bottom)

	BorderTopOnly    = BorderSet(Top)
	BorderLeftOnly   = BorderSet(Left)
	BorderRightOnly  = BorderSet(Right)
	BorderBottomOnly = BorderSet(Bottom)
)

// BorderSetFromNumpad maps the CLI's numpad border codes (7/8/9 top
// corners and edge, 4/5/6 left/middle/right, 1/2/3 bottom) onto a
// BorderSet, the same convention the config/CLI layer exposes to users.
func BorderSetFromNumpad(n int) (BorderSet, bool) {
	switch n {
	case 7:
		return BorderTopLeft, true
	case 8:
		return BorderTopOnly, true
	case 9:
		return BorderTopRight, true
	case 4:
		return BorderLeftOnly, true
	case 5:
		return BorderMiddle, true
	case 6:
		return BorderRightOnly, true
	case 1:
		return BorderBottomLeft, true
	case 2:
		return BorderBottomOnly, true
	case 3:
		return BorderBottomRight, true
	default:
		return 0, false
	}
}

// off is the link value used for any neighbor that falls off the board.
// All off-board links share this value rather than a distinct sentinel
// per direction, so the arithmetic that builds them never branches on
// which side fell off.
const off = -1

// Cell is one placement slot. Left/Top/Right/Bottom are indices into the
// owning Board's Cells slice, or off when that side has no neighbor.
// Prev/Next form the row-major solve order; Next is off on the last cell.
type Cell struct {
	LookupKey uint64
	Chosen    *tile.Tile

	Left, Top, Right, Bottom int
	Prev, Next               int
}

// Board owns the W*H cell arena plus one shared off-board sentinel cell.
// It is generic only over the tile.Layout it was built with; the cells
// themselves hold *tile.Tile regardless of whether that tile is a raw
// piece rotation or a bridge-built macro-tile.
type Board struct {
	Layout tile.Layout
	W, H   int
	Border BorderSet
	Cells  []Cell
	First  int

	junk Cell
}

// New builds a board of the given size and border type. Cells are stored
// column-major (index = x*H + y, so a column's cells are contiguous) but
// linked row-major for solve order, matching the distilled spec's layout
// note: storage order and traversal order are independent choices.
func New(l tile.Layout, w, h int, border BorderSet) *Board {
	b := &Board{Layout: l, W: w, H: h, Border: border}
	b.build()
	return b
}

// Clone returns a freshly built board with the same dimensions, layout,
// and border type, every cell reset to its initial lookup key. The
// orchestrator's parallel fan-out clones the root board once per
// candidate first-cell tile so each worker recurses from independent
// state.
func (b *Board) Clone() *Board {
	return New(b.Layout, b.W, b.H, b.Border)
}

func (b *Board) idx(x, y int) int {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return off
	}
	return x*b.H + y
}

func (b *Board) build() {
	b.Cells = make([]Cell, b.W*b.H)
	for x := 0; x < b.W; x++ {
		for y := 0; y < b.H; y++ {
			c := &b.Cells[b.idx(x, y)]
			c.Left = b.idx(x-1, y)
			c.Top = b.idx(x, y-1)
			c.Right = b.idx(x+1, y)
			c.Bottom = b.idx(x, y+1)
		}
	}

	prev := off
	first := off
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			i := b.idx(x, y)
			if first == off {
				first = i
			}
			b.Cells[i].Prev = prev
			if prev != off {
				b.Cells[prev].Next = i
			}
			prev = i
		}
	}
	if prev != off {
		b.Cells[prev].Next = off
	}
	b.First = first

	anyLeft := b.Layout.AnyLeft()
	anyTop := b.Layout.AnyTop()
	for x := 0; x < b.W; x++ {
		for y := 0; y < b.H; y++ {
			c := &b.Cells[b.idx(x, y)]

			left, top := anyLeft, anyTop
			if x == 0 && b.Border&BorderSet(Left) != 0 {
				left = 0
			}
			if y == 0 && b.Border&BorderSet(Top) != 0 {
				top = 0
			}
			rightIsBorder := x == b.W-1 && b.Border&BorderSet(Right) != 0
			bottomIsBorder := y == b.H-1 && b.Border&BorderSet(Bottom) != 0
			c.LookupKey = b.Layout.Pack(left, top, rightIsBorder, bottomIsBorder)
		}
	}
}

// CellAt dereferences a neighbor link, returning the board's shared junk
// cell for an off-board link. Code that writes through CellAt without
// checking IsOff first is relying on this: the write lands somewhere
// harmless and is never read back, instead of needing a guard at every
// neighbor-key update in the DFS hot path.
func (b *Board) CellAt(i int) *Cell {
	if i == off {
		return &b.junk
	}
	return &b.Cells[i]
}

// IsOff reports whether a neighbor index is the off-board marker.
func IsOff(i int) bool { return i == off }
