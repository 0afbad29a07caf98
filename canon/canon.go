// Package canon turns raw pieces into the 1x1 rotation table's initial
// tile population: every distinct rotation of every piece, with the
// classic corner-fixing symmetry reduction applied. It plays the role
// the teacher codebase's alphabet package plays for a Scrabble letter
// distribution — a small, purely combinatorial preprocessing step that
// everything downstream treats as ground truth.
package canon

import (
	"sort"

	"github.com/samber/lo"

	"github.com/edgepuzzle/tessera/piecemask"
	"github.com/edgepuzzle/tessera/tile"
)

// Piece is one physical puzzle piece as read from the piece file: four
// edge colors in Left, Top, Right, Bottom order. Color 0 means border.
type Piece struct {
	Left, Top, Right, Bottom int
}

// rotateCW returns the piece rotated 90 degrees clockwise: what faced
// left now faces top, what faced top now faces right, and so on.
func (p Piece) rotateCW() Piece {
	return Piece{Left: p.Bottom, Top: p.Left, Right: p.Top, Bottom: p.Right}
}

// isCorner reports whether this exact orientation presents a border on
// both its left and top sides — the orientation a piece must be in to
// occupy the board's top-left cell.
func (p Piece) isCorner() bool { return p.Left == 0 && p.Top == 0 }

// distinctRotations returns the piece's rotationally-distinct
// orientations, exploiting the fact that a piece with opposite sides
// equal repeats itself every two rotations, and a piece with all four
// sides equal repeats itself every rotation.
func distinctRotations(p Piece) []Piece {
	class := 4
	switch {
	case p.Left == p.Top && p.Top == p.Right && p.Right == p.Bottom:
		class = 1
	case p.Left == p.Right && p.Top == p.Bottom:
		class = 2
	}
	out := make([]Piece, 0, class)
	cur := p
	for i := 0; i < class; i++ {
		out = append(out, cur)
		cur = cur.rotateCW()
	}
	return out
}

// sortByTopThenLeft orders rotations ascending by (Top, Left). Because
// color 0 is the smallest possible value, a rotation presenting a
// top-left corner (Top==0 && Left==0) always sorts first when one
// exists — the property the corner-fixing rule below relies on.
func sortByTopThenLeft(rots []Piece) {
	sort.Slice(rots, func(i, j int) bool {
		if rots[i].Top != rots[j].Top {
			return rots[i].Top < rots[j].Top
		}
		return rots[i].Left < rots[j].Left
	})
}

// hasCornerRotation reports whether any of a piece's rotations can
// present a top-left corner.
func hasCornerRotation(rots []Piece) bool {
	for _, r := range rots {
		if r.isCorner() {
			return true
		}
	}
	return false
}

// Rotations converts the ordered piece bag into 1x1 tiles, one per
// inserted rotation, with each tile's mask carrying only its own
// piece's bit set. Pieces are processed in bag order because the
// corner-fixing reduction singles out the first corner piece it
// encounters: whichever piece happens to be listed first in the piece
// file that can occupy a corner is the one whose orientation gets fixed.
func Rotations(bag []Piece, numPieces int) []*tile.Tile {
	var out []*tile.Tile
	firstCornerAssigned := false

	for i, p := range bag {
		rots := distinctRotations(p)
		sortByTopThenLeft(rots)

		var keep []Piece
		switch {
		case hasCornerRotation(rots) && !firstCornerAssigned:
			firstCornerAssigned = true
			keep = rots[:1]
		case hasCornerRotation(rots):
			keep = rots[1:]
		default:
			keep = rots
		}

		for _, r := range keep {
			m := piecemask.New(numPieces)
			m.SetBit(i)
			out = append(out, &tile.Tile{
				Left:   uint64(r.Left),
				Top:    uint64(r.Top),
				Right:  uint64(r.Right),
				Bottom: uint64(r.Bottom),
				Mask:   m,
			})
		}
	}
	return out
}

// maxColor returns the largest edge color value in the bag, used by
// callers that need to pick an EdgeClass before building a Layout.
func maxColor(bag []Piece) int {
	colors := lo.FlatMap(bag, func(p Piece, _ int) []int {
		return []int{p.Left, p.Top, p.Right, p.Bottom}
	})
	if len(colors) == 0 {
		return 0
	}
	return lo.Max(colors)
}

// MaxColor is the exported form of maxColor, used by the orchestrator to
// pick an edge class before calling Rotations.
func MaxColor(bag []Piece) int { return maxColor(bag) }
