package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgepuzzle/tessera/piecemask"
)

func TestClassForPicksSmallestClassWithRoomForReservedAny(t *testing.T) {
	assert.Equal(t, Edge8, ClassFor(0))
	assert.Equal(t, Edge8, ClassFor(6))
	assert.Equal(t, Edge16, ClassFor(7))
	assert.Equal(t, Edge16, ClassFor(14))
	assert.Equal(t, Edge32, ClassFor(15))
	assert.Equal(t, Edge32, ClassFor(30))
}

func TestNewLayoutSizesBitFieldsFromTileDimensions(t *testing.T) {
	l := NewLayout(Edge8, 3, 2)
	assert.Equal(t, 3, l.ColorBits)
	assert.Equal(t, 6, l.LeftBits) // height 2 * 3 bits
	assert.Equal(t, 9, l.TopBits)  // width 3 * 3 bits
	assert.Equal(t, 2, l.TileH())
	assert.Equal(t, 3, l.TileW())
	assert.Equal(t, Edge8, l.Class())
}

func TestAnyLeftAndAnyTopAreAllOnesOverTheirFieldWidth(t *testing.T) {
	l := NewLayout(Edge8, 1, 1)
	assert.Equal(t, uint64(0b111), l.AnyLeft())
	assert.Equal(t, uint64(0b111), l.AnyTop())
}

func TestKeyBitsAndKeyDomainAccountForBorderFlags(t *testing.T) {
	l := NewLayout(Edge8, 1, 1)
	// 3 bits left + 3 bits top + 2 border flag bits = 8.
	assert.Equal(t, 8, l.KeyBits())
	assert.Equal(t, 256, l.KeyDomain())
}

func TestPackSetsBorderFlagBitsOnlyWhenSideIsNotLiteralBorder(t *testing.T) {
	l := NewLayout(Edge8, 1, 1)
	shift := l.LeftBits + l.TopBits

	bothBorder := l.Pack(0, 0, true, true)
	assert.Equal(t, uint64(0), bothBorder>>shift)

	neitherBorder := l.Pack(0, 0, false, false)
	assert.Equal(t, uint64(0b11), neitherBorder>>shift)

	rightOnly := l.Pack(0, 0, false, true)
	assert.Equal(t, uint64(0b01), rightOnly>>shift)
}

func TestPackPlacesLeftAndTopAtTheirOwnBitSpans(t *testing.T) {
	l := NewLayout(Edge8, 1, 1)
	key := l.Pack(5, 3, true, true)
	assert.Equal(t, uint64(5), key&l.AnyLeft())
	assert.Equal(t, uint64(3), (key>>l.LeftBits)&l.AnyTop())
}

func TestMaskLeftAndMaskTopCoverDisjointBitSpans(t *testing.T) {
	l := NewLayout(Edge8, 2, 1)
	assert.Equal(t, uint64(0), l.MaskLeft()&l.MaskTop())
	assert.Equal(t, l.AnyLeft(), l.MaskLeft())
	assert.Equal(t, l.AnyTop()<<l.LeftBits, l.MaskTop())
}

func TestTileLookupKeyMatchesPackOfItsOwnFields(t *testing.T) {
	l := NewLayout(Edge8, 1, 1)
	tl := &Tile{Left: 2, Top: 1, Right: 0, Bottom: 3, Mask: piecemask.New(8)}
	assert.Equal(t, l.Pack(2, 1, true, false), tl.LookupKey(l))
}

func TestRightFieldAndBottomFieldShiftBottomIntoTopsBitSpan(t *testing.T) {
	l := NewLayout(Edge8, 1, 1)
	tl := &Tile{Left: 1, Top: 2, Right: 4, Bottom: 5}
	assert.Equal(t, uint64(4), tl.RightField())
	assert.Equal(t, uint64(5)<<l.LeftBits, tl.BottomField(l))
}

func TestTileWAndTileHRoundTripThroughNewLayout(t *testing.T) {
	for _, class := range []EdgeClass{Edge8, Edge16, Edge32} {
		for w := 1; w <= 4; w++ {
			for h := 1; h <= 4; h++ {
				l := NewLayout(class, w, h)
				assert.Equal(t, w, l.TileW())
				assert.Equal(t, h, l.TileH())
			}
		}
	}
}
