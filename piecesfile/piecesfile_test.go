package piecesfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgepuzzle/tessera/canon"
)

func TestParseBasicFile(t *testing.T) {
	input := "0 0 1 2\n1 0 2 3\n2 0 1 3\n1 0 0 1\n"
	pieces, err := Parse(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, []canon.Piece{
		{Left: 0, Top: 0, Right: 1, Bottom: 2},
		{Left: 1, Top: 0, Right: 2, Bottom: 3},
		{Left: 2, Top: 0, Right: 1, Bottom: 3},
		{Left: 1, Top: 0, Right: 0, Bottom: 1},
	}, pieces)
}

func TestParseSkipsCommentsAndShortLines(t *testing.T) {
	input := "/ a comment line here\n0 0 1 2\n\n1 0 2 3\n"
	pieces, err := Parse(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, pieces, 2)
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	_, err := Parse(strings.NewReader("0 0 1 2 3\n"))
	assert.Error(t, err)
}

func TestParseRejectsNonIntegerField(t *testing.T) {
	_, err := Parse(strings.NewReader("0 0 x 2\n"))
	assert.Error(t, err)
}

func TestParseRejectsNegativeColor(t *testing.T) {
	_, err := Parse(strings.NewReader("0 0 -1 2\n"))
	assert.Error(t, err)
}

func TestParseRejectsEmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestValidateRejectsTooManyPieces(t *testing.T) {
	pieces := make([]canon.Piece, MaxPieces+1)
	err := Validate(pieces)
	assert.Error(t, err)
}

func TestValidateRejectsColorAboveUsableCeiling(t *testing.T) {
	pieces := []canon.Piece{{Left: 0, Top: 0, Right: 31, Bottom: 1}}
	err := Validate(pieces)
	assert.Error(t, err)
}

func TestValidateAcceptsColorAtUsableCeiling(t *testing.T) {
	pieces := []canon.Piece{{Left: 0, Top: 0, Right: maxUsableColor, Bottom: 1}}
	err := Validate(pieces)
	assert.NoError(t, err)
}
