package main

import (
	"fmt"
	"io"

	"github.com/wwlorey/chess-ai/bench"
)

func perft(depth int, fen string, w io.Writer) error {
	out := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range out {
			fmt.Fprintln(w, s)
		}
	}()

	_, err := bench.Perft(depth, fen, true, true, out)
	close(out)
	<-done
	return err
}
