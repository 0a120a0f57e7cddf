package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wwlorey/chess-ai/square"
)

// UnmarshalFEN decodes a six field FEN record.
func UnmarshalFEN(fen string) (*Position, error) {
	segments := strings.Fields(fen)
	if len(segments) != 6 {
		return nil, fmt.Errorf("%w: incorrect number of segments", ErrInvalidFEN)
	}

	p := &Position{enPassant: square.None}
	rows := strings.Split(segments[0], "/")
	if len(rows) != int(Height) {
		return nil, fmt.Errorf("%w: invalid board configuration", ErrInvalidFEN)
	}
	for i, row := range rows {
		y := Height - square.Square(i) - 1
		x := square.Square(0)
		for _, cell := range row {
			if x >= Width {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, y+1)
			}
			if cell >= '1' && cell <= '8' {
				x += square.Square(cell - '0')
				if x > Width {
					return nil, fmt.Errorf("%w: skip out of bounds", ErrInvalidFEN)
				}
				continue
			}
			s, pc := ParsePieceFEN(cell)
			if pc == PieceUnknown {
				return nil, fmt.Errorf("%w: unknown symbol '%s'", ErrInvalidFEN, string(cell))
			}
			p.put(s, pc, square.NewSquare(x, y))
			x++
		}
		if x != Width {
			return nil, fmt.Errorf("%w: missing cells on rank %d", ErrInvalidFEN, y+1)
		}
	}
	if p.GetBitmap(SideWhite, PieceKing).BitCount() != 1 || p.GetBitmap(SideBlack, PieceKing).BitCount() != 1 {
		return nil, fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}

	switch segments[1] {
	case "w":
		p.turn = SideWhite
		p.hash ^= zobristConstantSideWhite
	case "b":
		p.turn = SideBlack
	default:
		return nil, fmt.Errorf("%w: invalid turn", ErrInvalidFEN)
	}

	if segments[2] != "-" {
		if len(segments[2]) > 4 {
			return nil, fmt.Errorf("%w: invalid castling rights", ErrInvalidFEN)
		}
		for _, e := range segments[2] {
			var d CastleDirection
			switch e {
			case 'K':
				d = CastleDirectionWhiteKingSide
			case 'Q':
				d = CastleDirectionWhiteQueenSide
			case 'k':
				d = CastleDirectionBlackKingSide
			case 'q':
				d = CastleDirectionBlackQueenSide
			default:
				return nil, fmt.Errorf("%w: invalid castling rights", ErrInvalidFEN)
			}
			if p.castleRights.IsAllowed(d) {
				return nil, fmt.Errorf("%w: repeated castling right '%c'", ErrInvalidFEN, e)
			}
			p.castleRights.Set(d, true)
		}
	}
	p.hash ^= zobristConstantCastleRights[p.castleRights]

	if segments[3] != "-" {
		sq, err := square.NewSquareFromNotation(segments[3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid enpassant position: %v", ErrInvalidFEN, err)
		}
		wantRank := square.Rank6
		if p.turn == SideBlack {
			wantRank = square.Rank3
		}
		if sq.Rank() != wantRank {
			return nil, fmt.Errorf("%w: enpassant position %s does not match side to move %s", ErrInvalidFEN, sq, p.turn)
		}
		p.enPassant = sq
		p.hash ^= zobristConstantEnPassant[sq]
	}

	halfMoveClock, err := strconv.ParseUint(segments[4], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid half move clock", ErrInvalidFEN)
	}
	p.halfMoveClock = uint16(halfMoveClock)

	fullMoveClock, err := strconv.ParseUint(segments[5], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid full move clock", ErrInvalidFEN)
	}
	p.fullMoveClock = uint16(fullMoveClock)

	return p, nil
}

func MarshalFEN(p *Position) string {
	builder := strings.Builder{}
	for y := Height - 1; y >= 0; y-- {
		skip := 0
		for x := square.Square(0); x < Width; x++ {
			s, pc := p.GetSideAndPiece(square.NewSquare(x, y))
			if pc == PieceUnknown {
				skip++
				continue
			}
			if skip != 0 {
				_, _ = builder.WriteString(strconv.Itoa(skip))
				skip = 0
			}
			_, _ = builder.WriteString(pc.SymbolFEN(s))
		}
		if skip != 0 {
			_, _ = builder.WriteString(strconv.Itoa(skip))
		}
		if y > 0 {
			_, _ = builder.WriteRune('/')
		}
	}

	_, _ = builder.WriteString(" " + p.turn.SymbolFEN() + " ")
	_, _ = builder.WriteString(p.castleRights.String())
	_, _ = builder.WriteString(" " + p.enPassant.Notation())
	_, _ = builder.WriteString(fmt.Sprintf(" %d %d", p.halfMoveClock, p.fullMoveClock))

	return builder.String()
}

func (p *Position) FEN() string {
	return MarshalFEN(p)
}
