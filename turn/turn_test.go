package turn

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwlorey/chess-ai/board"
	"github.com/wwlorey/chess-ai/engine"
	"github.com/wwlorey/chess-ai/square"
)

func newTestController() *Controller {
	return NewController(&Config{
		Movetime:      100 * time.Millisecond,
		HashTableSize: 1 << 12,
		Logger:        zerolog.Nop(),
	})
}

type searcherFunc func(ctx context.Context, p *board.Position, cfg *engine.SearchConfig) (engine.SearchResult, error)

func (f searcherFunc) Search(ctx context.Context, p *board.Position, cfg *engine.SearchConfig) (engine.SearchResult, error) {
	return f(ctx, p, cfg)
}

func TestDecide(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "mate in one",
			req:  Request{FEN: "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", Color: "white"},
			want: "Ra8#",
		},
		{
			name: "only move",
			req:  Request{FEN: "k7/8/8/8/8/8/6q1/7K w - - 0 1", Color: "white"},
			want: "Kxg2",
		},
		{
			name: "game clock",
			req:  Request{FEN: "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", TimeRemaining: 30 * time.Second},
			want: "Ra8#",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			san, err := newTestController().Decide(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, san)
		})
	}
}

func TestDecideReturnsLegalSAN(t *testing.T) {
	t.Parallel()
	c := newTestController()
	san, err := c.Decide(context.Background(), Request{
		FEN:     "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		History: []string{"e4", "e5"},
		Color:   "white",
	})
	require.NoError(t, err)

	p, err := board.NewPosition(board.WithFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"))
	require.NoError(t, err)
	mv, err := board.UnmarshalSAN(p, san)
	require.NoError(t, err)
	assert.True(t, p.IsLegal(mv))
}

func TestDecideFailure(t *testing.T) {
	t.Parallel()
	start := board.DefaultStartingPositionFEN
	tests := []struct {
		name      string
		fen       string
		searcher  Searcher
		want      string
		wantCause error
	}{
		{
			name:      "malformed fen",
			fen:       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
			want:      Resign,
			wantCause: board.ErrInvalidFEN,
		},
		{
			name:      "checkmated",
			fen:       "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
			want:      Resign,
			wantCause: engine.ErrNoLegalMove,
		},
		{
			name:      "stalemated",
			fen:       "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
			want:      Resign,
			wantCause: engine.ErrNoLegalMove,
		},
		{
			name: "search error",
			fen:  start,
			searcher: searcherFunc(func(context.Context, *board.Position, *engine.SearchConfig) (engine.SearchResult, error) {
				return engine.SearchResult{}, board.ErrInvariantViolation
			}),
			want:      "a3",
			wantCause: board.ErrInvariantViolation,
		},
		{
			name: "illegal move",
			fen:  start,
			searcher: searcherFunc(func(context.Context, *board.Position, *engine.SearchConfig) (engine.SearchResult, error) {
				return engine.SearchResult{Move: board.Move{From: square.E2, To: square.E5, Piece: board.PiecePawn}}, nil
			}),
			want:      "a3",
			wantCause: board.ErrIllegalMove,
		},
		{
			name: "panic",
			fen:  start,
			searcher: searcherFunc(func(context.Context, *board.Position, *engine.SearchConfig) (engine.SearchResult, error) {
				panic("boom")
			}),
			want: "a3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestController()
			if tt.searcher != nil {
				c.engine = tt.searcher
			}
			san, err := c.Decide(context.Background(), Request{FEN: tt.fen})
			require.Error(t, err)
			assert.Equal(t, tt.want, san)

			var failure *EngineFailureError
			require.True(t, errors.As(err, &failure))
			assert.Equal(t, tt.want, failure.Fallback)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestDecideLogsRequestFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		fen     string
		message string
	}{
		{name: "decided", fen: "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", message: `"message":"decided"`},
		{name: "engine failure", fen: "8/8 w", message: `"message":"engine failure"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			ctx := zerolog.New(&buf).With().Str("request_id", "turn-7").Logger().WithContext(context.Background())

			_, _ = newTestController().Decide(ctx, Request{FEN: tt.fen})
			assert.Contains(t, buf.String(), `"request_id":"turn-7"`)
			assert.Contains(t, buf.String(), tt.message)
		})
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()
	c := newTestController()
	afterE4 := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	p, err := board.NewPosition(board.WithFEN(afterE4))
	require.NoError(t, err)

	t.Run("consistent", func(t *testing.T) {
		history, err := c.inspect(p, Request{History: []string{"e4"}, Color: "black"})
		require.NoError(t, err)
		require.Len(t, history, 1)
		start, err := board.NewPosition()
		require.NoError(t, err)
		assert.Equal(t, start.Hash(), history[0])
	})

	t.Run("colour and history faults are combined", func(t *testing.T) {
		history, err := c.inspect(p, Request{History: []string{"e4", "Qh5"}, Color: "white"})
		require.Error(t, err)
		assert.Nil(t, history)
		assert.Contains(t, err.Error(), "2 errors occurred")
		assert.ErrorIs(t, err, board.ErrInvalidSAN)
	})

	t.Run("history elsewhere", func(t *testing.T) {
		history, err := c.inspect(p, Request{History: []string{"d4"}})
		require.Error(t, err)
		assert.Nil(t, history)
	})
}

func TestRender(t *testing.T) {
	t.Parallel()
	c := newTestController()
	out, err := c.Render(board.DefaultStartingPositionFEN, "white")
	require.NoError(t, err)
	assert.Contains(t, out, "White (us)")
	assert.Contains(t, out, " a   b   c ")

	_, err = c.Render("bad", "white")
	assert.ErrorIs(t, err, board.ErrInvalidFEN)
}
