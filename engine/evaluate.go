package engine

import (
	"github.com/wwlorey/chess-ai/board"
	"github.com/wwlorey/chess-ai/square"
)

// Weights parameterises Evaluate. All terms are in centipawns.
type Weights struct {
	Material [6 + 1]int32
	// PiecePosition tables are laid out from White's point of view, index 0 being a8.
	PiecePosition [6 + 1][64]int32
	Mobility      int32
	Center        int32
	PawnShield    int32
	Tempo         int32
}

// DefaultWeights returns the stock evaluation weights.
func DefaultWeights() *Weights {
	return &Weights{
		Material: [6 + 1]int32{
			board.PiecePawn:   100,
			board.PieceBishop: 330,
			board.PieceKnight: 320,
			board.PieceRook:   500,
			board.PieceQueen:  900,
		},
		// PST table taken from https://www.chessprogramming.org/Simplified_Evaluation_Function
		PiecePosition: [6 + 1][64]int32{
			board.PiecePawn: {
				0, 0, 0, 0, 0, 0, 0, 0,
				50, 50, 50, 50, 50, 50, 50, 50,
				10, 10, 20, 30, 30, 20, 10, 10,
				5, 5, 10, 25, 25, 10, 5, 5,
				0, 0, 0, 20, 20, 0, 0, 0,
				5, -5, -10, 0, 0, -10, -5, 5,
				5, 10, 10, -20, -20, 10, 10, 5,
				0, 0, 0, 0, 0, 0, 0, 0,
			},
			board.PieceKnight: {
				-50, -40, -30, -30, -30, -30, -40, -50,
				-40, -20, 0, 0, 0, 0, -20, -40,
				-30, 0, 10, 15, 15, 10, 0, -30,
				-30, 5, 15, 20, 20, 15, 5, -30,
				-30, 0, 15, 20, 20, 15, 0, -30,
				-30, 5, 10, 15, 15, 10, 5, -30,
				-40, -20, 0, 5, 5, 0, -20, -40,
				-50, -40, -30, -30, -30, -30, -40, -50,
			},
			board.PieceBishop: {
				-20, -10, -10, -10, -10, -10, -10, -20,
				-10, 0, 0, 0, 0, 0, 0, -10,
				-10, 0, 5, 10, 10, 5, 0, -10,
				-10, 5, 5, 10, 10, 5, 5, -10,
				-10, 0, 10, 10, 10, 10, 0, -10,
				-10, 10, 10, 10, 10, 10, 10, -10,
				-10, 5, 0, 0, 0, 0, 5, -10,
				-20, -10, -10, -10, -10, -10, -10, -20,
			},
			board.PieceRook: {
				0, 0, 0, 0, 0, 0, 0, 0,
				5, 10, 10, 10, 10, 10, 10, 5,
				-5, 0, 0, 0, 0, 0, 0, -5,
				-5, 0, 0, 0, 0, 0, 0, -5,
				-5, 0, 0, 0, 0, 0, 0, -5,
				-5, 0, 0, 0, 0, 0, 0, -5,
				-5, 0, 0, 0, 0, 0, 0, -5,
				0, 0, 0, 5, 5, 0, 0, 0,
			},
			board.PieceQueen: {
				-20, -10, -10, -5, -5, -10, -10, -20,
				-10, 0, 0, 0, 0, 0, 0, -10,
				-10, 0, 5, 5, 5, 5, 0, -10,
				-5, 0, 5, 5, 5, 5, 0, -5,
				0, 0, 5, 5, 5, 5, 0, -5,
				-10, 5, 5, 5, 5, 5, 0, -10,
				-10, 0, 5, 0, 0, 0, 0, -10,
				-20, -10, -10, -5, -5, -10, -10, -20,
			},
			board.PieceKing: {
				-30, -40, -40, -50, -50, -40, -40, -30,
				-30, -40, -40, -50, -50, -40, -40, -30,
				-30, -40, -40, -50, -50, -40, -40, -30,
				-30, -40, -40, -50, -50, -40, -40, -30,
				-20, -30, -30, -40, -40, -30, -30, -20,
				-10, -20, -20, -20, -20, -20, -20, -10,
				20, 20, 0, 0, 0, 0, 20, 20,
				20, 30, 10, 0, 0, 10, 30, 20,
			},
		},
		Mobility:   2,
		Center:     8,
		PawnShield: 10,
		Tempo:      10,
	}
}

var centerSquares = []square.Square{square.D4, square.E4, square.D5, square.E5}

// piecePositionIndex maps a square to its PiecePosition index for side s.
// Black reads the tables mirrored vertically.
func piecePositionIndex(s board.Side, sq square.Square) int {
	if s == board.SideWhite {
		return int((7-sq.Rank())*8 + sq.File())
	}
	return int(sq.Rank()*8 + sq.File())
}

// Evaluate scores p with the default weights. The score is positive when White is better.
func Evaluate(p *board.Position) int32 {
	return defaultWeights.Evaluate(p)
}

var defaultWeights = DefaultWeights()

// Evaluate is a pure function of p: material, piece position, mobility,
// center control, king pawn shield and a tempo bonus for the side to move.
func (w *Weights) Evaluate(p *board.Position) int32 {
	var score int32
	for _, s := range []board.Side{board.SideWhite, board.SideBlack} {
		sign := int32(1)
		if s == board.SideBlack {
			sign = -1
		}
		own := p.GetSideBitmap(s)

		var sideScore int32
		for _, pc := range board.PieceKinds {
			bm := p.GetBitmap(s, pc)
			for bm != 0 {
				sq := bm.PopLS1B()
				sideScore += w.Material[pc] + w.PiecePosition[pc][piecePositionIndex(s, sq)]
				if pc != board.PiecePawn && pc != board.PieceKing {
					sideScore += w.Mobility * int32((p.AttacksFrom(sq) &^ own).BitCount())
				}
			}
		}

		attacked := p.AttackedBy(s)
		for _, sq := range centerSquares {
			if attacked.Has(sq) {
				sideScore += w.Center
			}
		}

		sideScore += w.PawnShield * int32(pawnShield(p, s))
		score += sign * sideScore
	}

	if p.Turn() == board.SideWhite {
		score += w.Tempo
	} else {
		score -= w.Tempo
	}
	return score
}

// pawnShield counts own pawns on the three squares in front of the king.
func pawnShield(p *board.Position, s board.Side) uint8 {
	king, err := p.KingSquare(s)
	if err != nil {
		return 0
	}
	rank := king.Rank() + 1
	if s == board.SideBlack {
		rank = king.Rank() - 1
	}
	if rank < square.Rank1 || rank > square.Rank8 {
		return 0
	}
	var shield board.Bitmap
	for file := king.File() - 1; file <= king.File()+1; file++ {
		if file >= square.FileA && file <= square.FileH {
			shield.Set(square.NewSquare(file, rank))
		}
	}
	return (shield & p.GetBitmap(s, board.PiecePawn)).BitCount()
}
