// Package piecesfile parses the pieces text file: the one external
// input the rest of the solver treats as ground truth. It is grounded
// on the teacher codebase's GCG parser in shape only (line-oriented
// text, comment lines, per-line tokenizing, accumulate-then-validate),
// not in any shared code, since the teacher's format is move-annotation
// text and this one is four integers a line.
package piecesfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/edgepuzzle/tessera/canon"
)

// MaxPieces is the largest piece count piecemask.New can size a mask
// for (eight 64-bit words).
const MaxPieces = 512

// maxUsableColor is the largest edge color the widest edge class
// (Edge32) leaves room for once one value is reserved for "any". Go's
// piece-mask always uses explicit 64-bit words regardless of target
// platform, so unlike a native-int-width implementation there is no
// separate 32-bit-build ceiling to enforce here.
const maxUsableColor = 30

// decodeToUTF8 returns data unchanged when it is already valid UTF-8
// (the common case, and the only case for a pieces file with ASCII-only
// comments), and otherwise assumes it is Windows-1252 — the encoding a
// pieces file hand-edited with a legacy Windows text editor is most
// likely to carry in its free-form comment lines.
func decodeToUTF8(data []byte) io.Reader {
	if utf8.Valid(data) {
		return bytes.NewReader(data)
	}
	return transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
}

// Parse reads a pieces file: one piece per line as four whitespace-
// separated non-negative integers (left, top, right, bottom). Lines
// starting with "/" are comments; lines shorter than 7 characters are
// ignored outright, matching the distilled spec's tolerance for blank
// trailing lines.
func Parse(r io.Reader) ([]canon.Piece, error) {
	var pieces []canon.Piece
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("piecesfile: read: %w", err)
	}
	scanner := bufio.NewScanner(decodeToUTF8(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 7 {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "/") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 4 {
			return nil, fmt.Errorf("piecesfile: line %d: want 4 fields, got %d", lineNo, len(fields))
		}
		vals := make([]int, 4)
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("piecesfile: line %d: %q is not an integer: %w", lineNo, f, err)
			}
			if n < 0 {
				return nil, fmt.Errorf("piecesfile: line %d: negative edge color %d", lineNo, n)
			}
			vals[i] = n
		}
		pieces = append(pieces, canon.Piece{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("piecesfile: read: %w", err)
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("piecesfile: no pieces found")
	}
	if err := Validate(pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}

// Validate checks the piece count and color range against the limits a
// piece-mask and tile.Layout can actually represent.
func Validate(pieces []canon.Piece) error {
	n := len(pieces)
	if n > MaxPieces {
		return fmt.Errorf("piecesfile: %d pieces exceeds the %d-piece limit", n, MaxPieces)
	}
	if maxColor := canon.MaxColor(pieces); maxColor > maxUsableColor {
		return fmt.Errorf("piecesfile: max edge color %d exceeds the limit of %d", maxColor, maxUsableColor)
	}
	return nil
}
