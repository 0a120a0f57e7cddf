package board

import (
	"errors"
	"testing"

	"github.com/wwlorey/chess-ai/square"
)

func TestMarshalSAN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		fen  string
		mv   Move
		want string
	}{
		{fen: DefaultStartingPositionFEN, mv: Move{From: square.E2, To: square.E4}, want: "e4"},
		{fen: DefaultStartingPositionFEN, mv: Move{From: square.G1, To: square.F3}, want: "Nf3"},
		{fen: "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", mv: Move{From: square.E5, To: square.F6}, want: "exf6"},
		{fen: "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2", mv: Move{From: square.D8, To: square.H4}, want: "Qh4#"},
		{fen: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", mv: Move{From: square.E1, To: square.G1}, want: "O-O"},
		{fen: "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", mv: Move{From: square.E8, To: square.C8}, want: "O-O-O"},
		{fen: "4k3/8/8/8/8/8/8/1N1K1N2 w - - 0 1", mv: Move{From: square.B1, To: square.D2}, want: "Nbd2"},
		{fen: "4k3/8/8/8/8/1N6/8/1N2K3 w - - 0 1", mv: Move{From: square.B1, To: square.D2}, want: "N1d2"},
		{fen: "4k3/8/8/8/8/1N6/8/1N2K3 w - - 0 1", mv: Move{From: square.B3, To: square.D2}, want: "N3d2"},
		{fen: "4k3/8/8/8/8/Q7/8/Q1Q1K3 w - - 0 1", mv: Move{From: square.A1, To: square.B2}, want: "Qa1b2"},
		{fen: "8/P6k/8/8/8/8/8/K7 w - - 0 1", mv: Move{From: square.A7, To: square.A8, IsPromote: PieceQueen}, want: "a8=Q"},
		{fen: "1n5k/P7/8/8/8/8/8/K7 w - - 0 1", mv: Move{From: square.A7, To: square.B8, IsPromote: PieceKnight}, want: "axb8=N"},
		{fen: "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", mv: Move{From: square.A1, To: square.A8}, want: "Ra8+"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			p := mustPosition(t, tt.fen)
			got, err := MarshalSAN(p, tt.mv)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if got != tt.want {
				t.Errorf("unexpected SAN: got=%s want=%s", got, tt.want)
			}
		})
	}

	p := mustPosition(t, DefaultStartingPositionFEN)
	if _, err := MarshalSAN(p, Move{From: square.E2, To: square.E5}); !errors.Is(err, ErrInvalidSAN) {
		t.Errorf("unexpected error: got=%v want=%v", err, ErrInvalidSAN)
	}
}

func TestUnmarshalSAN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		fen     string
		san     string
		from    square.Square
		to      square.Square
		promote Piece
	}{
		{fen: DefaultStartingPositionFEN, san: "e4", from: square.E2, to: square.E4},
		{fen: DefaultStartingPositionFEN, san: "e2e4", from: square.E2, to: square.E4},
		{fen: DefaultStartingPositionFEN, san: "e2-e4", from: square.E2, to: square.E4},
		{fen: DefaultStartingPositionFEN, san: "Nb1c3", from: square.B1, to: square.C3},
		{fen: DefaultStartingPositionFEN, san: "g1f3", from: square.G1, to: square.F3},
		{fen: DefaultStartingPositionFEN, san: " Nf3!? ", from: square.G1, to: square.F3},
		{fen: "rnbqkbnr/pp1ppppp/2p5/3P4/8/8/PPP1PPPP/RNBQKBNR b KQkq - 0 2", san: "c6xd5", from: square.C6, to: square.D5},
		{fen: "rnbqkbnr/pp1ppppp/2p5/3P4/8/8/PPP1PPPP/RNBQKBNR b KQkq - 0 2", san: "cxd5", from: square.C6, to: square.D5},
		{fen: "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", san: "exf6 e.p.", from: square.E5, to: square.F6},
		{fen: "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2", san: "Qh4#", from: square.D8, to: square.H4},
		{fen: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", san: "O-O", from: square.E1, to: square.G1},
		{fen: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", san: "0-0-0", from: square.E1, to: square.C1},
		{fen: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", san: "e1g1", from: square.E1, to: square.G1},
		{fen: "4k3/8/8/8/8/8/8/1N1K1N2 w - - 0 1", san: "Nfd2", from: square.F1, to: square.D2},
		{fen: "4k3/8/8/8/8/1N6/8/1N2K3 w - - 0 1", san: "N3d2", from: square.B3, to: square.D2},
		{fen: "8/P6k/8/8/8/8/8/K7 w - - 0 1", san: "a8=Q", from: square.A7, to: square.A8, promote: PieceQueen},
		{fen: "8/P6k/8/8/8/8/8/K7 w - - 0 1", san: "a8N", from: square.A7, to: square.A8, promote: PieceKnight},
		{fen: "8/P6k/8/8/8/8/8/K7 w - - 0 1", san: "a7a8r", from: square.A7, to: square.A8, promote: PieceRook},
	}
	for _, tt := range tests {
		t.Run(tt.san, func(t *testing.T) {
			t.Parallel()
			p := mustPosition(t, tt.fen)
			mv, err := UnmarshalSAN(p, tt.san)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if mv.From != tt.from || mv.To != tt.to || mv.IsPromote != tt.promote {
				t.Errorf("unexpected move: got=%s want=%s%s%s", mv, tt.from, tt.to, tt.promote.SymbolFEN(SideBlack))
			}
		})
	}
}

func TestUnmarshalSANInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		fen string
		san string
	}{
		{fen: DefaultStartingPositionFEN, san: ""},
		{fen: DefaultStartingPositionFEN, san: "e5"},
		{fen: DefaultStartingPositionFEN, san: "exd5"},
		{fen: DefaultStartingPositionFEN, san: "O-O"},
		{fen: DefaultStartingPositionFEN, san: "Zz9"},
		{fen: DefaultStartingPositionFEN, san: "Nxf3"},
		{fen: "4k3/8/8/8/8/8/8/1N1K1N2 w - - 0 1", san: "Nd2"},
		{fen: "8/P6k/8/8/8/8/8/K7 w - - 0 1", san: "a8"},
	}
	for _, tt := range tests {
		t.Run(tt.san, func(t *testing.T) {
			t.Parallel()
			p := mustPosition(t, tt.fen)
			if _, err := UnmarshalSAN(p, tt.san); !errors.Is(err, ErrInvalidSAN) {
				t.Errorf("unexpected error: got=%v want=%v", err, ErrInvalidSAN)
			}
		})
	}
}

func TestSANRoundTrip(t *testing.T) {
	t.Parallel()
	for _, fen := range testPositions {
		t.Run(fen, func(t *testing.T) {
			t.Parallel()
			p := mustPosition(t, fen)
			for mv := range p.LegalMoves() {
				san, err := MarshalSAN(p, mv)
				if err != nil {
					t.Fatalf("encode %s: %v", mv, err)
				}
				got, err := UnmarshalSAN(p, san)
				if err != nil {
					t.Fatalf("decode %s (%s): %v", san, mv, err)
				}
				if got != mv {
					t.Errorf("round trip of %s via %s: got=%+v want=%+v", mv, san, got, mv)
				}
			}
		})
	}
}
