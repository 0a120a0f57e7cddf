package board

import (
	"github.com/wwlorey/chess-ai/square"
)

const (
	Width      = square.MaxComponentScalar
	Height     = square.MaxComponentScalar
	TotalCells = Width * Height

	DefaultStartingPositionFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	zobristSeed uint64 = 0x9E3779B97F4A7C15
)

var (
	maskCol = [Width]Bitmap{
		square.FileA: 0x_01_01_01_01_01_01_01_01,
		square.FileB: 0x_02_02_02_02_02_02_02_02,
		square.FileC: 0x_04_04_04_04_04_04_04_04,
		square.FileD: 0x_08_08_08_08_08_08_08_08,
		square.FileE: 0x_10_10_10_10_10_10_10_10,
		square.FileF: 0x_20_20_20_20_20_20_20_20,
		square.FileG: 0x_40_40_40_40_40_40_40_40,
		square.FileH: 0x_80_80_80_80_80_80_80_80,
	}
	maskRow = [Height]Bitmap{
		square.Rank1: 0x_00_00_00_00_00_00_00_FF,
		square.Rank2: 0x_00_00_00_00_00_00_FF_00,
		square.Rank3: 0x_00_00_00_00_00_FF_00_00,
		square.Rank4: 0x_00_00_00_00_FF_00_00_00,
		square.Rank5: 0x_00_00_00_FF_00_00_00_00,
		square.Rank6: 0x_00_00_FF_00_00_00_00_00,
		square.Rank7: 0x_00_FF_00_00_00_00_00_00,
		square.Rank8: 0x_FF_00_00_00_00_00_00_00,
	}
	maskLightSquares Bitmap = 0x_55_AA_55_AA_55_AA_55_AA

	maskCell       [TotalCells]Bitmap
	maskDia        [TotalCells]Bitmap
	maskADia       [TotalCells]Bitmap
	maskKnight     [TotalCells]Bitmap
	maskKing       [TotalCells]Bitmap
	maskPawnAttack [2 + 1][TotalCells]Bitmap

	// squares that must be empty between king and rook
	maskCastlingPath = [4 + 1]Bitmap{}
	// king start, transit and destination squares, none of which may be attacked
	squareCastlingKingPath = [4 + 1][3]square.Square{
		CastleDirectionWhiteKingSide:  {square.E1, square.F1, square.G1},
		CastleDirectionWhiteQueenSide: {square.E1, square.D1, square.C1},
		CastleDirectionBlackKingSide:  {square.E8, square.F8, square.G8},
		CastleDirectionBlackQueenSide: {square.E8, square.D8, square.C8},
	}
	squareCastling = [4 + 1][6 + 1][2]square.Square{
		CastleDirectionWhiteKingSide: {
			PieceKing: {square.E1, square.G1},
			PieceRook: {square.H1, square.F1},
		},
		CastleDirectionWhiteQueenSide: {
			PieceKing: {square.E1, square.C1},
			PieceRook: {square.A1, square.D1},
		},
		CastleDirectionBlackKingSide: {
			PieceKing: {square.E8, square.G8},
			PieceRook: {square.H8, square.F8},
		},
		CastleDirectionBlackQueenSide: {
			PieceKing: {square.E8, square.C8},
			PieceRook: {square.A8, square.D8},
		},
	}
	// castling rights lost when a move leaves or lands on the square
	castleRightsLost [TotalCells]CastleRights

	zobristConstantPiece        [2 + 1][6 + 1][TotalCells]uint64
	zobristConstantEnPassant    [TotalCells]uint64
	zobristConstantCastleRights [16]uint64
	zobristConstantSideWhite    uint64
)

func init() {
	initMask()
	initCastling()
	initZobrist()
}

func initMask() {
	for sq := square.Square(0); sq < TotalCells; sq++ {
		maskCell[sq] = 1 << sq
	}

	for sq := square.Square(0); sq < TotalCells; sq++ {
		mask := Bitmap(0)
		x, y := sq.File(), sq.Rank()
		x, y = x-min(x, y), y-min(x, y)
		for x < Width && y < Height {
			mask |= maskCell[square.NewSquare(x, y)]
			x++
			y++
		}
		maskDia[sq] = mask
	}

	for sq := square.Square(0); sq < TotalCells; sq++ {
		mask := Bitmap(0)
		x, y := sq.File(), sq.Rank()
		x, y = x-min(x, Height-y-1), y+min(x, Height-y-1)
		for x < Width && y >= 0 {
			mask |= maskCell[square.NewSquare(x, y)]
			x++
			y--
		}
		maskADia[sq] = mask
	}

	for sq := square.Square(0); sq < TotalCells; sq++ {
		cell := maskCell[sq]
		mask := Bitmap(0)
		mask |= ShiftN(ShiftN(ShiftE(cell &^ maskRow[7] &^ maskRow[6] &^ maskCol[7])))
		mask |= ShiftN(ShiftN(ShiftW(cell &^ maskRow[7] &^ maskRow[6] &^ maskCol[0])))
		mask |= ShiftS(ShiftS(ShiftE(cell &^ maskRow[0] &^ maskRow[1] &^ maskCol[7])))
		mask |= ShiftS(ShiftS(ShiftW(cell &^ maskRow[0] &^ maskRow[1] &^ maskCol[0])))
		mask |= ShiftE(ShiftE(ShiftN(cell &^ maskCol[7] &^ maskCol[6] &^ maskRow[7])))
		mask |= ShiftE(ShiftE(ShiftS(cell &^ maskCol[7] &^ maskCol[6] &^ maskRow[0])))
		mask |= ShiftW(ShiftW(ShiftN(cell &^ maskCol[0] &^ maskCol[1] &^ maskRow[7])))
		mask |= ShiftW(ShiftW(ShiftS(cell &^ maskCol[0] &^ maskCol[1] &^ maskRow[0])))
		maskKnight[sq] = mask
	}

	for sq := square.Square(0); sq < TotalCells; sq++ {
		cell := maskCell[sq]
		mask := Bitmap(0)
		mask |= ShiftN(cell &^ maskRow[7])
		mask |= ShiftNE(cell &^ maskRow[7] &^ maskCol[7])
		mask |= ShiftE(cell &^ maskCol[7])
		mask |= ShiftSE(cell &^ maskRow[0] &^ maskCol[7])
		mask |= ShiftS(cell &^ maskRow[0])
		mask |= ShiftSW(cell &^ maskRow[0] &^ maskCol[0])
		mask |= ShiftW(cell &^ maskCol[0])
		mask |= ShiftNW(cell &^ maskRow[7] &^ maskCol[0])
		maskKing[sq] = mask
	}

	for sq := square.Square(0); sq < TotalCells; sq++ {
		cell := maskCell[sq]
		maskPawnAttack[SideWhite][sq] = ShiftNW(cell&^maskRow[7]&^maskCol[0]) | ShiftNE(cell&^maskRow[7]&^maskCol[7])
		maskPawnAttack[SideBlack][sq] = ShiftSW(cell&^maskRow[0]&^maskCol[0]) | ShiftSE(cell&^maskRow[0]&^maskCol[7])
	}
}

func initCastling() {
	maskCastlingPath = [4 + 1]Bitmap{
		CastleDirectionWhiteKingSide:  maskRow[0] & (maskCol[5] | maskCol[6]),
		CastleDirectionWhiteQueenSide: maskRow[0] & (maskCol[1] | maskCol[2] | maskCol[3]),
		CastleDirectionBlackKingSide:  maskRow[7] & (maskCol[5] | maskCol[6]),
		CastleDirectionBlackQueenSide: maskRow[7] & (maskCol[1] | maskCol[2] | maskCol[3]),
	}

	castleRightsLost[square.E1] = maskCastleRights[CastleDirectionWhiteKingSide] | maskCastleRights[CastleDirectionWhiteQueenSide]
	castleRightsLost[square.H1] = maskCastleRights[CastleDirectionWhiteKingSide]
	castleRightsLost[square.A1] = maskCastleRights[CastleDirectionWhiteQueenSide]
	castleRightsLost[square.E8] = maskCastleRights[CastleDirectionBlackKingSide] | maskCastleRights[CastleDirectionBlackQueenSide]
	castleRightsLost[square.H8] = maskCastleRights[CastleDirectionBlackKingSide]
	castleRightsLost[square.A8] = maskCastleRights[CastleDirectionBlackQueenSide]
}

func initZobrist() {
	r := NewPseudoRand()
	r.Seed(zobristSeed)
	for _, s := range []Side{SideWhite, SideBlack} {
		for _, p := range PieceKinds {
			for sq := square.Square(0); sq < TotalCells; sq++ {
				zobristConstantPiece[s][p][sq] = r.Uint64()
			}
		}
	}
	for sq := square.Square(0); sq < TotalCells; sq++ {
		zobristConstantEnPassant[sq] = r.Uint64()
	}
	for i := range zobristConstantCastleRights {
		zobristConstantCastleRights[i] = r.Uint64()
	}
	zobristConstantSideWhite = r.Uint64()
}
