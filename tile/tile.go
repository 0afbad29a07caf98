// Package tile defines a single oriented tile (one rotation of a base
// piece, or of a macro-tile fused by the bridge builder) and the packed
// lookup key arithmetic used to index it in a rotation table. It plays
// the role a Scrabble Square's packed bonus/cross-set fields play in the
// teacher codebase: a tiny, cache-friendly record read as a unit in the
// search's innermost loop.
package tile

import "github.com/edgepuzzle/tessera/piecemask"

// EdgeClass is the puzzle's color-field width class: the number of bits
// needed to hold one sub-color plus the reserved "any" pattern.
type EdgeClass int

const (
	Edge8  EdgeClass = 3 // colors 0..6 legal, 7 reserved for "any"
	Edge16 EdgeClass = 4 // colors 0..14 legal, 15 reserved
	Edge32 EdgeClass = 5 // colors 0..30 legal, 31 reserved
)

// ClassFor picks the smallest edge class that leaves room for maxColor
// plus the reserved "any" pattern.
func ClassFor(maxColor int) EdgeClass {
	switch {
	case maxColor <= 6:
		return Edge8
	case maxColor <= 14:
		return Edge16
	default:
		return Edge32
	}
}

// Layout describes the bit-field geometry shared by every tile stored in
// one rotation table: how many bits make up one sub-color, and how many
// sub-colors are concatenated along the left/right edge (one per row of
// the tile) versus the top/bottom edge (one per column).
type Layout struct {
	ColorBits int
	LeftBits  int // = tile height (in base pieces) * ColorBits
	TopBits   int // = tile width  (in base pieces) * ColorBits
}

// NewLayout builds the Layout for a tileW x tileH macro-tile under the
// given edge class.
func NewLayout(class EdgeClass, tileW, tileH int) Layout {
	return Layout{
		ColorBits: int(class),
		LeftBits:  tileH * int(class),
		TopBits:   tileW * int(class),
	}
}

// AnyLeft is the reserved all-ones pattern meaning "any non-border left
// color accepted here".
func (l Layout) AnyLeft() uint64 { return (uint64(1) << l.LeftBits) - 1 }

// AnyTop is the all-ones pattern for the top field.
func (l Layout) AnyTop() uint64 { return (uint64(1) << l.TopBits) - 1 }

// borderShift is where the two border flag bits start, above the
// packed (top,left) color fields.
func (l Layout) borderShift() int { return l.LeftBits + l.TopBits }

// KeyBits is the total width of a lookup key under this layout.
func (l Layout) KeyBits() int { return l.borderShift() + 2 }

// KeyDomain is the number of distinct keys a dense table must size for.
func (l Layout) KeyDomain() int { return 1 << l.KeyBits() }

// Pack builds a lookup key from explicit fields. rightIsBorder and
// bottomIsBorder describe whether THIS side, literally, is the board
// border (color 0) — not whether a match requires one; cell requirements
// are packed through the same function using the cell's literal/ANY
// values for left/top and its own border flags.
func (l Layout) Pack(left, top uint64, rightIsBorder, bottomIsBorder bool) uint64 {
	key := left | (top << l.LeftBits)
	shift := l.borderShift()
	if !rightIsBorder {
		key |= 1 << shift
	}
	if !bottomIsBorder {
		key |= 1 << (shift + 1)
	}
	return key
}

// MaskLeft and MaskTop extract, from a packed key, the bit span that a
// neighbor's key update must replace: the DFS engine ORs a placed tile's
// right/bottom fields into these spans on the cell to its right/below.
func (l Layout) MaskLeft() uint64 { return l.AnyLeft() }
func (l Layout) MaskTop() uint64  { return l.AnyTop() << l.LeftBits }

// TileH and TileW recover the macro-tile's height/width, in base pieces,
// from its bit-field widths — the inverse of NewLayout. The bridge
// builder uses these to name the level it just produced.
func (l Layout) TileH() int { return l.LeftBits / l.ColorBits }
func (l Layout) TileW() int { return l.TopBits / l.ColorBits }

// Class recovers the EdgeClass this layout was built with.
func (l Layout) Class() EdgeClass { return EdgeClass(l.ColorBits) }

// Tile is one concrete rotation of a piece or fused macro-tile.
type Tile struct {
	Left, Top, Right, Bottom uint64
	Mask                     piecemask.Mask
	Random                   uint64
}

// LookupKey computes the tile's own key under the given layout: the key
// every one of its rotation-table insertions is derived from.
func (t *Tile) LookupKey(l Layout) uint64 {
	return l.Pack(t.Left, t.Top, t.Right == 0, t.Bottom == 0)
}

// RightField and BottomField are the bit-shifted forms of a tile's right
// and bottom edge values, ready to be ORed into a neighbor cell's key at
// MaskLeft/MaskTop without another shift — the DFS hot path never
// recomputes a shift amount per placement.
func (t *Tile) RightField() uint64 { return t.Right }
func (t *Tile) BottomField(l Layout) uint64 { return t.Bottom << l.LeftBits }
