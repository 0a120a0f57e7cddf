package bench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wwlorey/chess-ai/board"
)

// Counters holds the leaf statistics of a perft run. Categories are counted
// on the moves made at the last ply only.
type Counters struct {
	Nodes      atomic.Uint64
	Captures   atomic.Uint64
	EnPassants atomic.Uint64
	Castles    atomic.Uint64
	Promotions atomic.Uint64
	Checks     atomic.Uint64
}

func (c *Counters) String() string {
	return message.NewPrinter(language.English).
		Sprintf("nodes=%d cap=%d enp=%d cas=%d pro=%d chk=%d",
			c.Nodes.Load(), c.Captures.Load(), c.EnPassants.Load(), c.Castles.Load(), c.Promotions.Load(), c.Checks.Load())
}

// Perft counts the leaf nodes reachable from fen in depth plies. With
// verbose, the per root move divide is sent to out before the summary line.
func Perft(depth int, fen string, parallel, verbose bool, out chan<- string) (*Counters, error) {
	p, err := board.NewPosition(board.WithFEN(fen))
	if err != nil {
		return nil, err
	}

	var run perftFunc = runPerft
	if parallel {
		run = runPerftParallel
	}

	var c Counters
	start := time.Now()
	run(p, depth, verbose, out, &c)
	elapsed := time.Since(start)

	if out != nil {
		out <- message.NewPrinter(language.English).
			Sprintf("d=%d %s rate=%dn/s (%.3fs elapsed)",
				depth, c.String(), int(float64(c.Nodes.Load())/max(elapsed.Seconds(), 1e-9)), elapsed.Seconds())
	}
	return &c, nil
}

type perftFunc func(p *board.Position, d int, verbose bool, out chan<- string, c *Counters) uint64

func runPerft(p *board.Position, d int, verbose bool, out chan<- string, c *Counters) uint64 {
	if d == 0 {
		c.Nodes.Add(1)
		return 1
	}

	var sum uint64
	for _, mv := range p.GenerateMoves() {
		child := perftChild(p, mv, d, c)
		if verbose && out != nil {
			out <- fmt.Sprintf("%s: %d", mv.UCI(), child)
		}
		sum += child
	}
	return sum
}

// runPerftParallel fans the root moves out to one goroutine each and walks
// the subtrees serially.
func runPerftParallel(p *board.Position, d int, verbose bool, out chan<- string, c *Counters) uint64 {
	if d == 0 {
		c.Nodes.Add(1)
		return 1
	}

	mvs := p.GenerateMoves()
	children := make([]uint64, len(mvs))
	var wg sync.WaitGroup
	for i, mv := range mvs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			children[i] = perftChild(p, mv, d, c)
		}()
	}
	wg.Wait()

	var sum uint64
	for i, mv := range mvs {
		if verbose && out != nil {
			out <- fmt.Sprintf("%s: %d", mv.UCI(), children[i])
		}
		sum += children[i]
	}
	return sum
}

func perftChild(p *board.Position, mv board.Move, d int, c *Counters) uint64 {
	next, err := p.Apply(mv)
	if err != nil {
		return 0
	}
	if d != 1 {
		return runPerft(&next, d-1, false, nil, c)
	}

	c.Nodes.Add(1)
	if mv.IsCapture {
		c.Captures.Add(1)
	}
	if mv.IsEnPassant {
		c.EnPassants.Add(1)
	}
	if mv.IsCastle != board.CastleDirectionUnknown {
		c.Castles.Add(1)
	}
	if mv.IsPromote != board.PieceUnknown {
		c.Promotions.Add(1)
	}
	if next.InCheck() {
		c.Checks.Add(1)
	}
	return 1
}
