package junqi

import (
	"fmt"
	"strings"
)

// Board layout: 5 columns by 12 rows. Rows 0-5 are the owner's half, rows
// 6-11 the opponent's. Each column packs into one uint64, 4 bits per row,
// which is the integer form consumed by the on-chain program.
const (
	BoardCols = 5
	BoardRows = 12
	HalfRows  = 6
)

// Board is the packed placement encoding: one word per column.
type Board struct {
	Lines [BoardCols]uint64
}

// Place writes a piece at (x, y) if the square is empty. It reports whether
// the piece was placed.
func (b *Board) Place(x, y uint64, piece Piece) bool {
	if b.At(x, y) != Empty {
		return false
	}
	b.Lines[x] |= uint64(piece) << (y * 4)
	return true
}

// At returns the piece stored at (x, y).
func (b *Board) At(x, y uint64) Piece {
	return Piece((b.Lines[x] >> (y * 4)) & 0xf)
}

// Generate builds a full board from one player's 6x5 placement, indexed
// [row][column] from that player's own edge. For player 2 the rows are
// mirrored into the top half. The opponent's half is filled with the
// Opponent marker so the packed form carries no information about enemy
// pieces.
func Generate(placement [][]Piece, player2 bool) (*Board, error) {
	if len(placement) != HalfRows {
		return nil, fmt.Errorf("placement has %d rows, want %d", len(placement), HalfRows)
	}
	var b Board
	for y := uint64(0); y < HalfRows; y++ {
		row := placement[y]
		if len(row) != BoardCols {
			return nil, fmt.Errorf("placement row %d has %d squares, want %d", y, len(row), BoardCols)
		}
		for x := uint64(0); x < BoardCols; x++ {
			piece := row[x]
			yy := y
			if player2 {
				yy = BoardRows - 1 - y
			}
			if piece == Empty {
				continue
			}
			if !b.Place(x, yy, piece) {
				return nil, fmt.Errorf("square (%d,%d) occupied", x, yy)
			}
		}
	}
	for y := uint64(HalfRows); y < BoardRows; y++ {
		for x := uint64(0); x < BoardCols; x++ {
			yy := y
			if player2 {
				yy = BoardRows - 1 - y
			}
			b.Place(x, yy, Opponent)
		}
	}
	return &b, nil
}

// String renders the board as a grid, one row per line from row 0 upward.
func (b *Board) String() string {
	var sb strings.Builder
	for y := uint64(0); y < BoardRows; y++ {
		for x := uint64(0); x < BoardCols; x++ {
			if x > 0 {
				sb.WriteByte('\t')
			}
			piece := b.At(x, y)
			if piece == Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteString(piece.String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
