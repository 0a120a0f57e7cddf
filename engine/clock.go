package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/wwlorey/chess-ai/board"
)

const (
	DefaultMovetime = 2 * time.Second

	MaxMovetime       = 24 * time.Hour
	MaxDepth    uint8 = MaxPly - 1
	MaxNodes          = math.MaxUint64

	minMovetime = 50 * time.Millisecond

	expectedGameMoves         uint16 = 40
	minExpectedMoves          uint16 = 10
	movetimeAccumulationRatio        = 0.8
	movetimeMargin                   = 20 * time.Millisecond
)

type ClockMode uint8

const (
	ClockModeInfinite ClockMode = iota
	ClockModeMovetime
	ClockModeGametime
	ClockModeDepth
	ClockModeNodes
)

func (m ClockMode) String() string {
	switch m {
	case ClockModeInfinite:
		return "infinite"
	case ClockModeMovetime:
		return "movetime"
	case ClockModeGametime:
		return "gametime"
	case ClockModeDepth:
		return "depth"
	case ClockModeNodes:
		return "nodes"
	default:
		return ""
	}
}

type ClockConfig struct {
	WhiteTime      time.Duration
	BlackTime      time.Duration
	WhiteIncrement time.Duration
	BlackIncrement time.Duration

	Movetime time.Duration

	Depth uint8

	Nodes uint64
}

// Clock decides when a search has to stop. Done may be polled from any goroutine.
type Clock struct {
	mode              ClockMode
	allocatedMovetime time.Duration
	targetDepth       uint8
	targetNodes       uint64

	// replaced on every Start so a stale timer cannot stop a newer run
	done   *atomic.Bool
	cancel context.CancelFunc
}

func NewClock() *Clock {
	c := &Clock{done: &atomic.Bool{}}
	c.done.Store(true)
	return c
}

// Start arms the clock. Whichever comes first of ctx cancellation, the
// allocated movetime or Stop marks the clock done.
func (c *Clock) Start(ctx context.Context, turn board.Side, fullMoveClock uint16, cfg *ClockConfig) {
	c.Stop()
	c.allocatedMovetime = MaxMovetime
	c.targetDepth = MaxDepth
	c.targetNodes = MaxNodes
	done := &atomic.Bool{}
	c.done = done

	switch {
	case cfg.Movetime != 0:
		c.mode = ClockModeMovetime
		c.allocatedMovetime = max(cfg.Movetime, minMovetime)
	case cfg.WhiteTime != 0 || cfg.BlackTime != 0:
		c.mode = ClockModeGametime
		remaining, increment := cfg.WhiteTime, cfg.WhiteIncrement
		if turn == board.SideBlack {
			remaining, increment = cfg.BlackTime, cfg.BlackIncrement
		}
		moves := max(expectedGameMoves-min(fullMoveClock, expectedGameMoves), minExpectedMoves)
		// most of the increment is banked for later moves
		banked := time.Duration(float64(increment) * movetimeAccumulationRatio)
		c.allocatedMovetime = remaining/time.Duration(moves) + increment - banked
		c.allocatedMovetime = clamp(c.allocatedMovetime, minMovetime, max(remaining-movetimeMargin, minMovetime))
	case cfg.Depth != 0:
		c.mode = ClockModeDepth
		c.targetDepth = min(cfg.Depth, MaxDepth)
	case cfg.Nodes != 0:
		c.mode = ClockModeNodes
		c.targetNodes = cfg.Nodes
	default:
		c.mode = ClockModeInfinite
	}

	var cancel context.CancelFunc
	if c.mode == ClockModeMovetime || c.mode == ClockModeGametime {
		ctx, cancel = context.WithTimeout(ctx, max(c.allocatedMovetime-movetimeMargin, minMovetime))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	go func() {
		<-ctx.Done()
		done.Store(true)
	}()
}

func (c *Clock) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.done.Store(true)
}

func (c *Clock) Mode() ClockMode {
	return c.mode
}

func (c *Clock) AllocatedMovetime() time.Duration {
	return c.allocatedMovetime
}

func (c *Clock) DoneByMovetime() bool {
	return c.done.Load()
}

func (c *Clock) DoneByDepth(depth uint8) bool {
	return depth > c.targetDepth
}

func (c *Clock) DoneByNodes(nodes uint64) bool {
	return nodes > c.targetNodes
}
