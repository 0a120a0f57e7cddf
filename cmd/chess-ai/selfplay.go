package main

import (
	"context"
	"fmt"
	"io"

	"github.com/wwlorey/chess-ai/board"
	"github.com/wwlorey/chess-ai/engine"
	"github.com/wwlorey/chess-ai/turn"
)

// selfplay lets the controller answer both sides, feeding it the game so far
// like a game server would.
func selfplay(ctx context.Context, fen string, moves int, cfg *turn.Config, out io.Writer) error {
	cfg.StartFEN = fen
	c := turn.NewController(cfg)
	p, err := board.NewPosition(board.WithFEN(fen))
	if err != nil {
		return err
	}
	start := p
	fmt.Fprintln(out, p.Draw())

	var history []string
	var played []board.Move
	for step := 0; step < moves && p.State().IsRunning() && ctx.Err() == nil; step++ {
		san, err := c.Decide(ctx, turn.Request{
			FEN:     p.FEN(),
			History: history,
			Color:   p.Turn().String(),
		})
		if err != nil {
			return err
		}
		mv, err := board.UnmarshalSAN(p, san)
		if err != nil {
			return err
		}
		next, err := p.Apply(mv)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n>>> %s: %s\n", p.Turn(), san)
		fmt.Fprintln(out, next.Draw())
		history = append(history, san)
		played = append(played, mv)
		p = &next
	}

	fmt.Fprintln(out, "game ended:", p.State())
	fmt.Fprintln(out, p.FEN())
	fmt.Fprintln(out, engine.DumpHistory(start, played))
	return nil
}
