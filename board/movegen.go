package board

import (
	"cmp"
	"iter"
	"slices"

	"github.com/wwlorey/chess-ai/square"
)

// promoteOrder ranks promotion kinds in generation order, plain moves first.
var promoteOrder = [6 + 1]int{
	PieceUnknown: 0,
	PieceQueen:   1,
	PieceRook:    2,
	PieceBishop:  3,
	PieceKnight:  4,
}

// compareMoves orders captures before quiet moves, then by piece kind,
// origin, destination and promotion.
func compareMoves(a, b Move) int {
	if a.IsCapture != b.IsCapture {
		if a.IsCapture {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(a.Piece, b.Piece),
		cmp.Compare(a.From, b.From),
		cmp.Compare(a.To, b.To),
		cmp.Compare(promoteOrder[a.IsPromote], promoteOrder[b.IsPromote]),
	)
}

// PseudoLegalMoves appends every move that obeys piece movement rules for
// the side to move, without checking whether the mover's king is left
// attacked. The result is in deterministic order.
func (p *Position) PseudoLegalMoves(dst []Move) []Move {
	start := len(dst)
	s := p.turn
	own, them := p.sides[s], p.sides[s.Opposite()]

	for _, pc := range PieceKinds {
		fromBM := p.GetBitmap(s, pc)
		for fromBM != 0 {
			from := fromBM.PopLS1B()
			if pc == PiecePawn {
				dst = p.appendPawnMoves(dst, from)
				continue
			}
			var toBM Bitmap
			switch pc {
			case PieceBishop:
				toBM = HitDiagonals(from, p.occupied)
			case PieceKnight:
				toBM = maskKnight[from]
			case PieceRook:
				toBM = HitLaterals(from, p.occupied)
			case PieceQueen:
				toBM = HitDiagonals(from, p.occupied) | HitLaterals(from, p.occupied)
			case PieceKing:
				toBM = maskKing[from]
			}
			toBM &^= own
			for toBM != 0 {
				to := toBM.PopLS1B()
				mv := Move{From: from, To: to, Piece: pc, IsTurn: s}
				if them.Has(to) {
					_, mv.Captured = p.GetSideAndPiece(to)
					mv.IsCapture = true
				}
				dst = append(dst, mv)
			}
		}
	}
	dst = p.appendCastlingMoves(dst)

	slices.SortStableFunc(dst[start:], compareMoves)
	return dst
}

func (p *Position) appendPawnMoves(dst []Move, from square.Square) []Move {
	s := p.turn
	forward, startRank, lastRank := Width, square.Rank2, square.Rank8
	if s == SideBlack {
		forward, startRank, lastRank = -Width, square.Rank7, square.Rank1
	}

	add := func(mv Move) []Move {
		if mv.To.Rank() != lastRank {
			return append(dst, mv)
		}
		for _, prom := range PawnPromoteCandidates {
			mv.IsPromote = prom
			dst = append(dst, mv)
		}
		return dst
	}

	if one := from + forward; one.IsValid() && !p.occupied.Has(one) {
		dst = add(Move{From: from, To: one, Piece: PiecePawn, IsTurn: s})
		if two := one + forward; from.Rank() == startRank && !p.occupied.Has(two) {
			dst = append(dst, Move{From: from, To: two, Piece: PiecePawn, IsTurn: s})
		}
	}

	targets := p.sides[s.Opposite()]
	if p.enPassant != square.None {
		targets |= maskCell[p.enPassant]
	}
	toBM := maskPawnAttack[s][from] & targets
	for toBM != 0 {
		to := toBM.PopLS1B()
		mv := Move{From: from, To: to, Piece: PiecePawn, IsTurn: s, IsCapture: true}
		if to == p.enPassant {
			mv.IsEnPassant = true
			mv.Captured = PiecePawn
		} else {
			_, mv.Captured = p.GetSideAndPiece(to)
		}
		dst = add(mv)
	}
	return dst
}

func (p *Position) appendCastlingMoves(dst []Move) []Move {
	s := p.turn
	if !p.castleRights.IsSideAllowed(s) {
		return dst
	}
	for _, d := range castleDirectionsBySide[s] {
		if !p.castleRights.IsAllowed(d) || maskCastlingPath[d]&p.occupied != 0 {
			continue
		}
		hopsKing, hopsRook := squareCastling[d][PieceKing], squareCastling[d][PieceRook]
		if !p.GetBitmap(s, PieceKing).Has(hopsKing[0]) || !p.GetBitmap(s, PieceRook).Has(hopsRook[0]) {
			continue
		}
		attacked := false
		for _, sq := range squareCastlingKingPath[d] {
			if p.IsSquareAttacked(sq, s.Opposite()) {
				attacked = true
				break
			}
		}
		if attacked {
			continue
		}
		dst = append(dst, Move{
			From:     hopsKing[0],
			To:       hopsKing[1],
			Piece:    PieceKing,
			IsTurn:   s,
			IsCastle: d,
		})
	}
	return dst
}

func (p *Position) isLegal(mv Move) bool {
	next, err := p.Apply(mv)
	if err != nil {
		return false
	}
	return !next.IsKingChecked(mv.IsTurn)
}

// LegalMoves yields the legal moves of the side to move in deterministic
// order. Legality is checked as the sequence is consumed.
func (p *Position) LegalMoves() iter.Seq[Move] {
	return func(yield func(Move) bool) {
		for _, mv := range p.PseudoLegalMoves(make([]Move, 0, 64)) {
			if !p.isLegal(mv) {
				continue
			}
			if !yield(mv) {
				return
			}
		}
	}
}

func (p *Position) GenerateMoves() []Move {
	return slices.Collect(p.LegalMoves())
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	for range p.LegalMoves() {
		return true
	}
	return false
}

// FindMove resolves a coordinate move to the fully flagged legal move.
func (p *Position) FindMove(from, to square.Square, promote Piece) (Move, bool) {
	for mv := range p.LegalMoves() {
		if mv.From == from && mv.To == to && mv.IsPromote == promote {
			return mv, true
		}
	}
	return NullMove, false
}

// IsLegal reports whether mv, compared by coordinates, is legal here.
func (p *Position) IsLegal(mv Move) bool {
	_, ok := p.FindMove(mv.From, mv.To, mv.IsPromote)
	return ok
}
