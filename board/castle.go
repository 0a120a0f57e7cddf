package board

import "github.com/wwlorey/chess-ai/square"

type CastleDirection uint8

const (
	CastleDirectionUnknown CastleDirection = iota
	CastleDirectionWhiteKingSide
	CastleDirectionWhiteQueenSide
	CastleDirectionBlackKingSide
	CastleDirectionBlackQueenSide
)

var (
	maskCastleRights = [4 + 1]CastleRights{
		CastleDirectionWhiteKingSide:  0b1000,
		CastleDirectionWhiteQueenSide: 0b0100,
		CastleDirectionBlackKingSide:  0b0010,
		CastleDirectionBlackQueenSide: 0b0001,
	}
	castleDirectionsBySide = [2 + 1][2]CastleDirection{
		SideWhite: {CastleDirectionWhiteKingSide, CastleDirectionWhiteQueenSide},
		SideBlack: {CastleDirectionBlackKingSide, CastleDirectionBlackQueenSide},
	}
)

func (d CastleDirection) String() string {
	switch d {
	case CastleDirectionWhiteKingSide:
		return "White O-O"
	case CastleDirectionWhiteQueenSide:
		return "White O-O-O"
	case CastleDirectionBlackKingSide:
		return "Black O-O"
	case CastleDirectionBlackQueenSide:
		return "Black O-O-O"
	default:
		return ""
	}
}

func (d CastleDirection) IsWhite() bool {
	return d == CastleDirectionWhiteKingSide || d == CastleDirectionWhiteQueenSide
}

func (d CastleDirection) IsKingSide() bool {
	return d == CastleDirectionWhiteKingSide || d == CastleDirectionBlackKingSide
}

// castleDirectionFor returns the castling a king move from -> to performs, if any.
func castleDirectionFor(s Side, from, to square.Square) CastleDirection {
	for _, d := range castleDirectionsBySide[s] {
		if squareCastling[d][PieceKing] == [2]square.Square{from, to} {
			return d
		}
	}
	return CastleDirectionUnknown
}

type CastleRights uint8

func (c *CastleRights) Set(d CastleDirection, allow bool) {
	if allow {
		*c |= maskCastleRights[d]
	} else {
		*c &^= maskCastleRights[d]
	}
}

func (c CastleRights) IsAllowed(d CastleDirection) bool {
	return c&maskCastleRights[d] != 0
}

func (c CastleRights) IsSideAllowed(s Side) bool {
	if s == SideWhite {
		return c&(maskCastleRights[CastleDirectionWhiteQueenSide]|maskCastleRights[CastleDirectionWhiteKingSide]) != 0
	}
	return c&(maskCastleRights[CastleDirectionBlackQueenSide]|maskCastleRights[CastleDirectionBlackKingSide]) != 0
}

// String renders the rights in FEN order.
func (c CastleRights) String() string {
	if c == 0 {
		return "-"
	}
	var s string
	if c.IsAllowed(CastleDirectionWhiteKingSide) {
		s += "K"
	}
	if c.IsAllowed(CastleDirectionWhiteQueenSide) {
		s += "Q"
	}
	if c.IsAllowed(CastleDirectionBlackKingSide) {
		s += "k"
	}
	if c.IsAllowed(CastleDirectionBlackQueenSide) {
		s += "q"
	}
	return s
}
