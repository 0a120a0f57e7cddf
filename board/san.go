package board

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wwlorey/chess-ai/square"
)

var sanPattern = regexp.MustCompile(`^([NBRQKP])?([a-h])?([1-8])?([x:-])?([a-h][1-8])(?:=?([NBRQnbrq]))?$`)

// MarshalSAN encodes a legal move in standard algebraic notation.
func MarshalSAN(p *Position, mv Move) (string, error) {
	lm, ok := p.FindMove(mv.From, mv.To, mv.IsPromote)
	if !ok {
		return "", fmt.Errorf("%w: %s is not legal", ErrInvalidSAN, mv.UCI())
	}

	builder := strings.Builder{}
	switch {
	case lm.IsCastle != CastleDirectionUnknown:
		if lm.IsCastle.IsKingSide() {
			_, _ = builder.WriteString("O-O")
		} else {
			_, _ = builder.WriteString("O-O-O")
		}
	case lm.Piece == PiecePawn:
		if lm.IsCapture {
			_, _ = builder.WriteString(lm.From.File().NotationComponentX() + "x")
		}
		_, _ = builder.WriteString(lm.To.Notation())
		if lm.IsPromote != PieceUnknown {
			_, _ = builder.WriteString("=" + lm.IsPromote.SymbolAlgebra())
		}
	default:
		_, _ = builder.WriteString(lm.Piece.SymbolAlgebra())
		_, _ = builder.WriteString(disambiguate(p, lm))
		if lm.IsCapture {
			_, _ = builder.WriteRune('x')
		}
		_, _ = builder.WriteString(lm.To.Notation())
	}

	next, err := p.Apply(lm)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}
	if next.InCheck() {
		if next.HasLegalMoves() {
			_, _ = builder.WriteRune('+')
		} else {
			_, _ = builder.WriteRune('#')
		}
	}
	return builder.String(), nil
}

// disambiguate returns the shortest origin qualifier that singles out mv
// among same-kind moves landing on the same square.
func disambiguate(p *Position, mv Move) string {
	var rivals, sameFile, sameRank bool
	for other := range p.LegalMoves() {
		if other.Piece != mv.Piece || other.To != mv.To || other.From == mv.From {
			continue
		}
		rivals = true
		sameFile = sameFile || other.From.File() == mv.From.File()
		sameRank = sameRank || other.From.Rank() == mv.From.Rank()
	}
	switch {
	case !rivals:
		return ""
	case !sameFile:
		return mv.From.File().NotationComponentX()
	case !sameRank:
		return mv.From.Rank().NotationComponentY()
	default:
		return mv.From.Notation()
	}
}

// UnmarshalSAN resolves text to the one legal move it names. Besides strict
// SAN it accepts long algebraic forms (Nb1c3, c6xd5, e2-e4), UCI strings
// (e7e8q), castling written with zeros, promotion without '=' and trailing
// check or annotation marks.
func UnmarshalSAN(p *Position, text string) (Move, error) {
	san := strings.TrimSpace(text)
	san = strings.TrimSuffix(san, "e.p.")
	san = strings.TrimSpace(san)
	san = strings.TrimRight(san, "+#!?")
	if san == "" {
		return NullMove, fmt.Errorf("%w: empty move", ErrInvalidSAN)
	}

	switch san {
	case "O-O", "0-0":
		return findCastle(p, true, text)
	case "O-O-O", "0-0-0":
		return findCastle(p, false, text)
	}

	groups := sanPattern.FindStringSubmatch(san)
	if groups == nil {
		return NullMove, fmt.Errorf("%w: cannot parse %q", ErrInvalidSAN, text)
	}
	pieceSym, fileSym, rankSym, sep, toSym, promoteSym := groups[1], groups[2], groups[3], groups[4], groups[5], groups[6]

	to, err := square.NewSquareFromNotation(toSym)
	if err != nil {
		return NullMove, fmt.Errorf("%w: %v", ErrInvalidSAN, err)
	}
	fromFile, fromRank := square.None, square.None
	if fileSym != "" {
		fromFile, _ = square.NotationToFile(fileSym[0])
	}
	if rankSym != "" {
		fromRank, _ = square.NotationToRank(rankSym[0])
	}

	// a bare coordinate pair may name any piece kind
	anyPiece := pieceSym == "" && fileSym != "" && rankSym != ""
	piece := PiecePawn
	if pieceSym != "" {
		_, piece = ParsePieceFEN(rune(pieceSym[0]))
	}
	promote := PieceUnknown
	if promoteSym != "" {
		_, promote = ParsePieceFEN(rune(strings.ToUpper(promoteSym)[0]))
	}
	requireCapture := sep == "x" || sep == ":"

	var found Move
	matches := 0
	for mv := range p.LegalMoves() {
		switch {
		case mv.To != to,
			mv.IsPromote != promote,
			!anyPiece && mv.Piece != piece,
			fromFile != square.None && mv.From.File() != fromFile,
			fromRank != square.None && mv.From.Rank() != fromRank,
			requireCapture && !mv.IsCapture:
			continue
		}
		found = mv
		matches++
	}
	switch matches {
	case 0:
		return NullMove, fmt.Errorf("%w: %q matches no legal move", ErrInvalidSAN, text)
	case 1:
		return found, nil
	default:
		return NullMove, fmt.Errorf("%w: %q is ambiguous", ErrInvalidSAN, text)
	}
}

func findCastle(p *Position, kingSide bool, text string) (Move, error) {
	for mv := range p.LegalMoves() {
		if mv.IsCastle != CastleDirectionUnknown && mv.IsCastle.IsKingSide() == kingSide {
			return mv, nil
		}
	}
	return NullMove, fmt.Errorf("%w: %q is not available", ErrInvalidSAN, text)
}
