package board

import (
	"fmt"

	"github.com/wwlorey/chess-ai/square"
)

// Position is one board state. It is a plain value: Apply returns a new
// Position and never modifies its receiver, so copies are independent.
type Position struct {
	// grid data, little-endian rank-file mapping
	sides    [2 + 1]Bitmap
	pieces   [6 + 1]Bitmap
	occupied Bitmap

	// meta
	enPassant     square.Square
	castleRights  CastleRights
	halfMoveClock uint16
	fullMoveClock uint16
	turn          Side
	hash          uint64
}

type positionConfig struct {
	fen string
}

type PositionOption func(*positionConfig)

func WithFEN(fen string) PositionOption {
	return func(cfg *positionConfig) {
		cfg.fen = fen
	}
}

func NewPosition(opts ...PositionOption) (*Position, error) {
	cfg := &positionConfig{
		fen: DefaultStartingPositionFEN,
	}
	for _, f := range opts {
		f(cfg)
	}
	return UnmarshalFEN(cfg.fen)
}

func (p *Position) Turn() Side {
	return p.turn
}

func (p *Position) CastleRights() CastleRights {
	return p.castleRights
}

// EnPassant returns the en-passant target square, if any.
func (p *Position) EnPassant() (square.Square, bool) {
	return p.enPassant, p.enPassant != square.None
}

func (p *Position) HalfMoveClock() uint16 {
	return p.halfMoveClock
}

func (p *Position) FullMoveClock() uint16 {
	return p.fullMoveClock
}

// Ply returns the number of half moves played since the start of the game.
func (p *Position) Ply() uint16 {
	ply := 2 * (max(p.fullMoveClock, 1) - 1)
	if p.turn == SideBlack {
		ply++
	}
	return ply
}

// Hash returns the zobrist hash of the position.
func (p *Position) Hash() uint64 {
	return p.hash
}

func (p *Position) GetBitmap(s Side, pc Piece) Bitmap {
	return p.sides[s] & p.pieces[pc]
}

func (p *Position) GetSideBitmap(s Side) Bitmap {
	return p.sides[s]
}

func (p *Position) GetSideAndPiece(sq square.Square) (Side, Piece) {
	cell := maskCell[sq]
	if p.occupied&cell == 0 {
		return SideUnknown, PieceUnknown
	}
	s := SideWhite
	if p.sides[SideBlack]&cell != 0 {
		s = SideBlack
	}
	for _, pc := range PieceKinds {
		if p.pieces[pc]&cell != 0 {
			return s, pc
		}
	}
	return SideUnknown, PieceUnknown
}

// KingSquare locates the king of the given side.
func (p *Position) KingSquare(s Side) (square.Square, error) {
	bm := p.GetBitmap(s, PieceKing)
	if bm.BitCount() != 1 {
		return square.None, fmt.Errorf("%w: %s has %d kings", ErrInvariantViolation, s, bm.BitCount())
	}
	return bm.LS1B(), nil
}

func (p *Position) IsKingChecked(s Side) bool {
	bm := p.GetBitmap(s, PieceKing)
	if bm == 0 {
		return false
	}
	return p.IsSquareAttacked(bm.LS1B(), s.Opposite())
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsKingChecked(p.turn)
}

// IsSquareAttacked reports whether any piece of side by attacks sq. King
// adjacency counts as an attack regardless of the attacking king's safety.
func (p *Position) IsSquareAttacked(sq square.Square, by Side) bool {
	them := p.sides[by]
	if them == 0 {
		return false
	}
	if maskKnight[sq]&them&p.pieces[PieceKnight] != 0 {
		return true
	}
	if maskKing[sq]&them&p.pieces[PieceKing] != 0 {
		return true
	}
	// a pawn of side by attacks sq from the squares a pawn of the other side on sq would attack
	if maskPawnAttack[by.Opposite()][sq]&them&p.pieces[PiecePawn] != 0 {
		return true
	}
	if diag := them & (p.pieces[PieceBishop] | p.pieces[PieceQueen]); diag != 0 && HitDiagonals(sq, p.occupied)&diag != 0 {
		return true
	}
	if lat := them & (p.pieces[PieceRook] | p.pieces[PieceQueen]); lat != 0 && HitLaterals(sq, p.occupied)&lat != 0 {
		return true
	}
	return false
}

// AttacksFrom returns the squares attacked by the piece on sq, own pieces included.
func (p *Position) AttacksFrom(sq square.Square) Bitmap {
	s, pc := p.GetSideAndPiece(sq)
	switch pc {
	case PiecePawn:
		return maskPawnAttack[s][sq]
	case PieceBishop:
		return HitDiagonals(sq, p.occupied)
	case PieceKnight:
		return maskKnight[sq]
	case PieceRook:
		return HitLaterals(sq, p.occupied)
	case PieceQueen:
		return HitDiagonals(sq, p.occupied) | HitLaterals(sq, p.occupied)
	case PieceKing:
		return maskKing[sq]
	default:
		return 0
	}
}

// AttackedBy returns every square attacked by side s.
func (p *Position) AttackedBy(s Side) Bitmap {
	var attacked Bitmap
	bm := p.sides[s]
	for bm != 0 {
		attacked |= p.AttacksFrom(bm.PopLS1B())
	}
	return attacked
}

func (p *Position) put(s Side, pc Piece, sq square.Square) {
	cell := maskCell[sq]
	p.sides[s] |= cell
	p.pieces[pc] |= cell
	p.occupied |= cell
	p.hash ^= zobristConstantPiece[s][pc][sq]
}

func (p *Position) remove(s Side, pc Piece, sq square.Square) {
	cell := maskCell[sq]
	p.sides[s] &^= cell
	p.pieces[pc] &^= cell
	p.occupied &^= cell
	p.hash ^= zobristConstantPiece[s][pc][sq]
}

// Apply returns the position reached by playing mv. Capture, en-passant and
// castling semantics are read from the board, so a move carrying only
// From, To and IsPromote is enough. Apply does not check that the mover's
// king is safe afterwards: legality is the move generator's job.
func (p *Position) Apply(mv Move) (Position, error) {
	if !mv.From.IsValid() || !mv.To.IsValid() || mv.From == mv.To {
		return Position{}, fmt.Errorf("%w: bad squares %s%s", ErrIllegalMove, mv.From, mv.To)
	}
	s, pc := p.GetSideAndPiece(mv.From)
	if s == SideUnknown {
		return Position{}, fmt.Errorf("%w: %s is empty", ErrIllegalMove, mv.From)
	}
	if s != p.turn {
		return Position{}, fmt.Errorf("%w: %s holds a %s piece but %s is to move", ErrIllegalMove, mv.From, s, p.turn)
	}
	ts, tpc := p.GetSideAndPiece(mv.To)
	if ts == s {
		return Position{}, fmt.Errorf("%w: %s holds an own piece", ErrIllegalMove, mv.To)
	}
	if tpc == PieceKing {
		return Position{}, fmt.Errorf("%w: %s captures a king", ErrIllegalMove, mv.UCI())
	}

	next := *p
	if next.enPassant != square.None {
		next.hash ^= zobristConstantEnPassant[next.enPassant]
		next.enPassant = square.None
	}
	next.hash ^= zobristConstantCastleRights[next.castleRights]

	isCapture := false
	d := CastleDirectionUnknown
	if pc == PieceKing {
		d = castleDirectionFor(s, mv.From, mv.To)
	}
	if d != CastleDirectionUnknown {
		hopsRook := squareCastling[d][PieceRook]
		if p.GetBitmap(s, PieceRook)&maskCell[hopsRook[0]] == 0 || ts != SideUnknown {
			return Position{}, fmt.Errorf("%w: cannot castle %s", ErrIllegalMove, d)
		}
		next.remove(s, PieceKing, mv.From)
		next.remove(s, PieceRook, hopsRook[0])
		next.put(s, PieceKing, mv.To)
		next.put(s, PieceRook, hopsRook[1])
	} else {
		if ts != SideUnknown {
			next.remove(ts, tpc, mv.To)
			isCapture = true
		} else if pc == PiecePawn && mv.To == p.enPassant && mv.From.File() != mv.To.File() {
			// the passed pawn sits behind the landing square
			victim := mv.To - Width
			if s == SideBlack {
				victim = mv.To + Width
			}
			if p.GetBitmap(s.Opposite(), PiecePawn)&maskCell[victim] == 0 {
				return Position{}, fmt.Errorf("%w: no pawn to capture en passant on %s", ErrIllegalMove, victim)
			}
			next.remove(s.Opposite(), PiecePawn, victim)
			isCapture = true
		}

		placed := pc
		isLastRank := maskCell[mv.To]&(maskRow[square.Rank1]|maskRow[square.Rank8]) != 0
		switch {
		case pc == PiecePawn && isLastRank:
			if !mv.IsPromote.IsPromoteCandidate() {
				return Position{}, fmt.Errorf("%w: %s needs a promotion piece", ErrIllegalMove, mv.UCI())
			}
			placed = mv.IsPromote
		case mv.IsPromote != PieceUnknown:
			return Position{}, fmt.Errorf("%w: %s cannot promote", ErrIllegalMove, mv.UCI())
		}
		next.remove(s, pc, mv.From)
		next.put(s, placed, mv.To)

		if pc == PiecePawn && (mv.To-mv.From == 2*Width || mv.From-mv.To == 2*Width) {
			next.enPassant = (mv.From + mv.To) / 2
			next.hash ^= zobristConstantEnPassant[next.enPassant]
		}
	}

	next.castleRights &^= castleRightsLost[mv.From] | castleRightsLost[mv.To]
	next.hash ^= zobristConstantCastleRights[next.castleRights]

	if pc == PiecePawn || isCapture {
		next.halfMoveClock = 0
	} else {
		next.halfMoveClock++
	}
	if s == SideBlack {
		next.fullMoveClock++
	}
	next.turn = s.Opposite()
	next.hash ^= zobristConstantSideWhite

	return next, nil
}

// IsFiftyMoveDraw reports whether fifty moves passed without a capture or pawn move.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.halfMoveClock >= 100
}

// IsInsufficientMaterial reports whether neither side can possibly mate:
// bare kings, a single minor piece, or bishops that all share one square colour.
func (p *Position) IsInsufficientMaterial() bool {
	if p.pieces[PiecePawn]|p.pieces[PieceRook]|p.pieces[PieceQueen] != 0 {
		return false
	}
	minors := p.pieces[PieceBishop] | p.pieces[PieceKnight]
	if minors.BitCount() <= 1 {
		return true
	}
	bishops := p.pieces[PieceBishop]
	return p.pieces[PieceKnight] == 0 && (bishops&maskLightSquares == 0 || bishops&^maskLightSquares == 0)
}

func (p *Position) computeHash() uint64 {
	var hash uint64
	for _, s := range []Side{SideWhite, SideBlack} {
		for _, pc := range PieceKinds {
			bm := p.GetBitmap(s, pc)
			for bm != 0 {
				hash ^= zobristConstantPiece[s][pc][bm.PopLS1B()]
			}
		}
	}
	if p.enPassant != square.None {
		hash ^= zobristConstantEnPassant[p.enPassant]
	}
	hash ^= zobristConstantCastleRights[p.castleRights]
	if p.turn == SideWhite {
		hash ^= zobristConstantSideWhite
	}
	return hash
}
