package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wwlorey/chess-ai/board"
)

func movegen(fen string, draw bool, out io.Writer) error {
	p, err := board.NewPosition(board.WithFEN(fen))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "to move:", p.Turn())
	fmt.Fprintln(out, p.Dump())
	fmt.Fprintln(out, p.Draw())
	fmt.Fprintln(out, p.State())
	fmt.Fprintln(out, "attacked by", p.Turn().Opposite())
	fmt.Fprintln(out, p.AttackedBy(p.Turn().Opposite()).Dump('x'))
	if err := dumpMoves(p, out); err != nil {
		return err
	}

	if draw {
		for mv := range p.LegalMoves() {
			next, err := p.Apply(mv)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, mv)
			fmt.Fprintln(out, next.Draw())
			fmt.Fprintln(out, next.FEN())
		}
	}
	return nil
}

func dumpMoves(p *board.Position, out io.Writer) error {
	mvs := p.GenerateMoves()
	for i, mv := range mvs {
		san, err := board.MarshalSAN(p, mv)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "option %*d: [%s] [%s] %s %s %s => %s (cap=%v) (enp=%v) (cas=%v) (pro=%s)\n",
			len(strconv.Itoa(len(mvs))), i+1, mv.UCI(), san, p.Turn(), mv.Piece, mv.From, mv.To,
			mv.IsCapture, mv.IsEnPassant, mv.IsCastle != board.CastleDirectionUnknown, mv.IsPromote)
	}
	return nil
}
