package board

import "github.com/wwlorey/chess-ai/square"

// Move is only meaningful relative to the Position it was generated from.
// Castling moves carry the king's origin and destination.
type Move struct {
	From, To square.Square
	Piece    Piece
	Captured Piece

	IsTurn      Side
	IsCapture   bool
	IsCastle    CastleDirection
	IsEnPassant bool
	IsPromote   Piece
}

// NullMove is the zero Move. It is never legal.
var NullMove = Move{}

func (m Move) String() string {
	return m.UCI()
}

func (m Move) IsNull() bool {
	return m.From == m.To
}

// IsQuiet reports whether the move neither captures nor promotes.
func (m Move) IsQuiet() bool {
	return !m.IsCapture && m.IsPromote == PieceUnknown
}

// Equals compares the coordinates of two moves, ignoring the derived flags.
func (m Move) Equals(n Move) bool {
	return m.From == n.From && m.To == n.To && m.IsPromote == n.IsPromote
}

func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	return m.From.Notation() + m.To.Notation() + m.IsPromote.SymbolFEN(SideBlack)
}
