package engine

import (
	"testing"

	"github.com/wwlorey/chess-ai/board"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()
	tests := []struct {
		name string
		fen  string
		want func(score int32) bool
	}{
		{
			name: "symmetric white to move",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			want: func(score int32) bool { return score == w.Tempo },
		},
		{
			name: "symmetric black to move",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
			want: func(score int32) bool { return score == -w.Tempo },
		},
		{
			name: "white up a queen",
			fen:  "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
			want: func(score int32) bool { return score > 800 },
		},
		{
			name: "black up a rook",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/1NBQKBNR w Kkq - 0 1",
			want: func(score int32) bool { return score < -400 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := mustPosition(t, tt.fen)
			score := Evaluate(p)
			if !tt.want(score) {
				t.Errorf("unexpected score: got=%d", score)
			}
			if again := Evaluate(p); again != score {
				t.Errorf("evaluation is not pure: got=%d want=%d", again, score)
			}
		})
	}
}

func TestEvaluateMirrored(t *testing.T) {
	t.Parallel()
	// the same position seen from the other side scores the opposite
	white := mustPosition(t, "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	black := mustPosition(t, "rnbqk2r/pppp1ppp/5n2/2b1p3/4P3/2N2N2/PPPP1PPP/R1BQKB1R b KQkq - 4 4")
	if got, want := Evaluate(black), -Evaluate(white); got != want {
		t.Errorf("unexpected score: got=%d want=%d", got, want)
	}
}

func TestEvaluateCustomWeights(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()
	w.Tempo = 0
	w.Center = 0
	p := mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if got := w.Evaluate(p); got != 0 {
		t.Errorf("unexpected score: got=%d want=0", got)
	}
}

func TestPawnShield(t *testing.T) {
	t.Parallel()
	p := mustPosition(t, "6k1/5p1p/8/8/8/8/5PPP/6K1 w - - 0 1")
	if got := pawnShield(p, board.SideWhite); got != 3 {
		t.Errorf("unexpected white shield: got=%d want=3", got)
	}
	if got := pawnShield(p, board.SideBlack); got != 2 {
		t.Errorf("unexpected black shield: got=%d want=2", got)
	}
}
