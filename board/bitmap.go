package board

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/wwlorey/chess-ai/square"
)

// Bitmap is a set of squares, bit i set when square i is in the set.
type Bitmap uint64

func reverse(bm Bitmap) Bitmap {
	return Bitmap(bits.Reverse64(uint64(bm)))
}

func ShiftNW(bm Bitmap) Bitmap {
	return bm << 7
}

func ShiftN(bm Bitmap) Bitmap {
	return bm << 8
}

func ShiftNE(bm Bitmap) Bitmap {
	return bm << 9
}

func ShiftE(bm Bitmap) Bitmap {
	return bm << 1
}

func ShiftSE(bm Bitmap) Bitmap {
	return bm >> 7
}

func ShiftS(bm Bitmap) Bitmap {
	return bm >> 8
}

func ShiftSW(bm Bitmap) Bitmap {
	return bm >> 9
}

func ShiftW(bm Bitmap) Bitmap {
	return bm >> 1
}

func HitDiagonals(sq square.Square, occupied Bitmap) Bitmap {
	return ScanHit(maskCell[sq], occupied, maskDia[sq]) | ScanHit(maskCell[sq], occupied, maskADia[sq])
}

func HitLaterals(sq square.Square, occupied Bitmap) Bitmap {
	return ScanHit(maskCell[sq], occupied, maskCol[sq.File()]) | ScanHit(maskCell[sq], occupied, maskRow[sq.Rank()])
}

// ScanHit uses the o^(o-2r) trick along a single line. The returned set
// includes the first blocker in each direction and excludes the origin cell.
func ScanHit(cell, occupied, mask Bitmap) Bitmap {
	blocker := (occupied | cell) & mask
	return ((blocker - 2*cell) ^ reverse(reverse(blocker)-2*reverse(cell))) & mask
}

func (bm Bitmap) Has(sq square.Square) bool {
	return bm&maskCell[sq] != 0
}

func (bm *Bitmap) Set(sq square.Square) {
	*bm |= maskCell[sq]
}

// LS1B returns the least significant set square, or 64 when empty.
func (bm Bitmap) LS1B() square.Square {
	return square.Square(bits.TrailingZeros64(uint64(bm)))
}

// PopLS1B removes and returns the least significant set square.
func (bm *Bitmap) PopLS1B() square.Square {
	sq := bm.LS1B()
	*bm &= *bm - 1
	return sq
}

func (bm Bitmap) BitCount() uint8 {
	return uint8(bits.OnesCount64(uint64(bm)))
}

func (bm Bitmap) Dump(sym ...rune) string {
	builder := strings.Builder{}
	for y := square.Square(Height) - 1; y >= 0; y-- {
		_, _ = builder.WriteString(fmt.Sprintf(" %d |", y+1))
		for x := square.Square(0); x < Width; x++ {
			if bm.Has(square.NewSquare(x, y)) {
				s := "#"
				if len(sym) == 1 {
					s = string(sym[0])
				}
				_, _ = builder.WriteString(fmt.Sprintf(" %s ", s))
			} else {
				_, _ = builder.WriteString(" . ")
			}
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("    ------------------------\n    ")
	for x := square.Square(0); x < Width; x++ {
		_, _ = builder.WriteString(fmt.Sprintf(" %s ", x.NotationComponentX()))
	}
	return builder.String()
}
