package board

type Piece uint8

const (
	PieceUnknown Piece = iota
	PiecePawn
	PieceBishop
	PieceKnight
	PieceRook
	PieceQueen
	PieceKing
)

var (
	// PieceKinds lists every piece kind in generation order.
	PieceKinds = []Piece{PiecePawn, PieceBishop, PieceKnight, PieceRook, PieceQueen, PieceKing}

	// PawnPromoteCandidates represents the candidates for pawn promotion.
	PawnPromoteCandidates = []Piece{PieceQueen, PieceRook, PieceBishop, PieceKnight}
)

func (p Piece) String() string {
	return p.Name()
}

func (p Piece) Name() string {
	switch p {
	case PiecePawn:
		return "Pawn"
	case PieceBishop:
		return "Bishop"
	case PieceKnight:
		return "Knight"
	case PieceRook:
		return "Rook"
	case PieceQueen:
		return "Queen"
	case PieceKing:
		return "King"
	default:
		return ""
	}
}

// SymbolAlgebra returns the SAN piece letter, empty for pawns.
func (p Piece) SymbolAlgebra() string {
	if p == PiecePawn {
		return ""
	}
	return p.SymbolFEN(SideWhite)
}

func (p Piece) SymbolFEN(s Side) string {
	var sym rune
	switch p {
	case PiecePawn:
		sym = 'P'
	case PieceBishop:
		sym = 'B'
	case PieceKnight:
		sym = 'N'
	case PieceRook:
		sym = 'R'
	case PieceQueen:
		sym = 'Q'
	case PieceKing:
		sym = 'K'
	default:
		return ""
	}
	if s == SideBlack {
		sym |= 0x20 // lowercase is +32 uppercase
	}
	return string(sym)
}

func (p Piece) SymbolUnicode(s Side) string {
	switch s {
	case SideWhite:
		switch p {
		case PiecePawn:
			return "♙"
		case PieceBishop:
			return "♗"
		case PieceKnight:
			return "♘"
		case PieceRook:
			return "♖"
		case PieceQueen:
			return "♕"
		case PieceKing:
			return "♔"
		}
	case SideBlack:
		switch p {
		case PiecePawn:
			return "♟"
		case PieceBishop:
			return "♝"
		case PieceKnight:
			return "♞"
		case PieceRook:
			return "♜"
		case PieceQueen:
			return "♛"
		case PieceKing:
			return "♚"
		}
	}
	return ""
}

// ParsePieceFEN maps a FEN piece symbol to its side and kind.
func ParsePieceFEN(sym rune) (Side, Piece) {
	s := SideWhite
	if sym >= 'a' && sym <= 'z' {
		s = SideBlack
		sym &^= 0x20
	}
	switch sym {
	case 'P':
		return s, PiecePawn
	case 'B':
		return s, PieceBishop
	case 'N':
		return s, PieceKnight
	case 'R':
		return s, PieceRook
	case 'Q':
		return s, PieceQueen
	case 'K':
		return s, PieceKing
	default:
		return SideUnknown, PieceUnknown
	}
}

// IsPromoteCandidate reports whether a pawn may promote to p.
func (p Piece) IsPromoteCandidate() bool {
	return p == PieceQueen || p == PieceRook || p == PieceBishop || p == PieceKnight
}
