package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wwlorey/chess-ai/bench"
	"github.com/wwlorey/chess-ai/board"
	"github.com/wwlorey/chess-ai/engine"
)

var (
	EngineName   = "chess-ai"
	EngineAuthor = "wwlorey"

	defaultOptions = options{
		debug:         false,
		movetime:      engine.DefaultMovetime,
		hashTableSize: engine.DefaultHashTableSize,
		threads:       1,
		parallelPerft: true,
	}
)

type options struct {
	debug         bool
	movetime      time.Duration
	hashTableSize uint32
	threads       int
	parallelPerft bool
}

type Interface struct {
	in     io.Reader
	out    io.Writer
	outMu  sync.Mutex
	logger zerolog.Logger

	position *board.Position
	history  []uint64
	engine   *engine.Engine
	options  options

	searching    sync.WaitGroup
	engineCancel context.CancelFunc
}

func NewInterface(in io.Reader, out io.Writer, logger zerolog.Logger) *Interface {
	return &Interface{
		in:      in,
		out:     out,
		logger:  logger,
		options: defaultOptions,
	}
}

// Run reads commands until quit or the end of input.
func (i *Interface) Run(ctx context.Context) error {
	i.reset()
	defer i.commandStop()

	scanner := bufio.NewScanner(i.in)
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "uci":
			i.commandUCI()
		case "ucinewgame":
			i.reset()
		case "isready":
			i.commandReady()
		case "setoption":
			i.commandSetOption(args[1:])
		case "position":
			i.commandPosition(args[1:])
		case "d":
			i.commandDraw()
		case "go":
			i.commandGo(ctx, args[1:])
		case "stop":
			i.commandStop()
		case "quit":
			return nil
		default:
			i.logger.Debug().Str("command", args[0]).Msg("unknown command")
		}
	}
	return scanner.Err()
}

func (i *Interface) commandUCI() {
	i.println(fmt.Sprintf("id name %s", EngineName))
	i.println(fmt.Sprintf("id author %s", EngineAuthor))
	i.println(fmt.Sprintf("option name Debug type check default %v", defaultOptions.debug))
	i.println(fmt.Sprintf("option name Movetime type spin default %d min 50 max 3600000", defaultOptions.movetime.Milliseconds()))
	i.println(fmt.Sprintf("option name Hash type spin default %d min 1 max 16777216", defaultOptions.hashTableSize))
	i.println(fmt.Sprintf("option name Threads type spin default %d min 1 max 64", defaultOptions.threads))
	i.println("uciok")
}

func (i *Interface) commandReady() {
	i.searching.Wait()
	i.println("readyok")
}

func (i *Interface) commandSetOption(args []string) {
	if len(args) < 4 || args[0] != "name" || args[2] != "value" {
		return
	}
	switch name, valueStr := strings.ToLower(args[1]), args[3]; name {
	case "debug":
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			return
		}
		i.options.debug = value
	case "movetime":
		value, err := strconv.ParseUint(valueStr, 10, 64)
		if err != nil || value < 50 || value > 3600000 {
			return
		}
		i.options.movetime = time.Duration(value) * time.Millisecond
	case "hash":
		value, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil || value == 0 || value > 1<<24 {
			return
		}
		i.options.hashTableSize = uint32(value)
		i.newEngine()
	case "threads":
		value, err := strconv.Atoi(valueStr)
		if err != nil || value < 1 || value > 64 {
			return
		}
		i.options.threads = value
		i.newEngine()
	}
}

// commandPosition handles "position startpos|fen <fen> [moves <m>...]".
// Moves may be given in coordinate or SAN form.
func (i *Interface) commandPosition(args []string) {
	if len(args) == 0 {
		return
	}
	i.searching.Wait()

	var fen string
	rest := args[1:]
	switch args[0] {
	case "startpos":
		fen = board.DefaultStartingPositionFEN
	case "fen":
		n := len(rest)
		for j, arg := range rest {
			if arg == "moves" {
				n = j
				break
			}
		}
		fen = strings.Join(rest[:n], " ")
		rest = rest[n:]
	default:
		return
	}

	p, err := board.NewPosition(board.WithFEN(fen))
	if err != nil {
		i.logger.Error().Err(err).Str("fen", fen).Msg("invalid position")
		return
	}
	var history []uint64
	if len(rest) > 0 && rest[0] == "moves" {
		for _, text := range rest[1:] {
			mv, err := board.UnmarshalSAN(p, text)
			if err != nil {
				i.logger.Error().Err(err).Str("move", text).Msg("invalid move")
				return
			}
			next, err := p.Apply(mv)
			if err != nil {
				i.logger.Error().Err(err).Str("move", text).Msg("invalid move")
				return
			}
			history = append(history, p.Hash())
			p = &next
		}
	}
	i.position = p
	i.history = history
}

func (i *Interface) commandDraw() {
	i.println(i.position.Draw())
}

func (i *Interface) commandGo(ctx context.Context, args []string) {
	i.searching.Wait()

	clockCfg, infinite, perft := parseGo(args)
	if perft > 0 {
		i.runPerft(perft)
		return
	}
	if !infinite && clockCfg == (engine.ClockConfig{}) {
		clockCfg.Movetime = i.options.movetime
	}

	engineCtx, engineCancel := context.WithCancel(ctx)
	i.engineCancel = engineCancel
	p, history, e := i.position, i.history, i.engine
	i.searching.Add(1)
	go func() {
		defer i.searching.Done()
		defer engineCancel()

		res, err := e.Search(engineCtx, p, &engine.SearchConfig{
			ClockConfig: clockCfg,
			History:     history,
			OnIteration: func(info engine.Info) {
				i.println(info.UCI())
			},
			Debug: i.options.debug,
		})
		if err != nil {
			i.logger.Error().Err(err).Msg("search failed")
			i.println("bestmove 0000")
			return
		}
		i.println(fmt.Sprintf("bestmove %s", res.Move.UCI()))
	}()
}

// parseGo reads the limits of a go command. Values out of range are ignored.
func parseGo(args []string) (clockCfg engine.ClockConfig, infinite bool, perft int) {
	for j := 0; j < len(args); j++ {
		key := args[j]
		if key == "infinite" {
			infinite = true
			continue
		}
		if j+1 >= len(args) {
			break
		}
		value, err := strconv.ParseInt(args[j+1], 10, 64)
		if err != nil {
			continue
		}
		j++
		if value < 0 {
			continue
		}
		ms := time.Duration(value) * time.Millisecond
		switch key {
		case "perft":
			if value > 0 {
				return engine.ClockConfig{}, false, int(min(value, int64(engine.MaxDepth)))
			}
		case "movetime":
			clockCfg.Movetime = ms
		case "depth":
			if value > 0 {
				clockCfg.Depth = uint8(min(value, int64(engine.MaxDepth)))
			}
		case "nodes":
			clockCfg.Nodes = uint64(value)
		case "wtime":
			clockCfg.WhiteTime = ms
		case "btime":
			clockCfg.BlackTime = ms
		case "winc":
			clockCfg.WhiteIncrement = ms
		case "binc":
			clockCfg.BlackIncrement = ms
		}
	}
	return clockCfg, infinite, 0
}

func (i *Interface) runPerft(depth int) {
	out := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range out {
			i.println(s)
		}
	}()
	if _, err := bench.Perft(depth, i.position.FEN(), i.options.parallelPerft, true, out); err != nil {
		i.logger.Error().Err(err).Msg("perft failed")
	}
	close(out)
	<-done
}

func (i *Interface) commandStop() {
	if i.engineCancel != nil {
		i.engineCancel()
	}
	i.searching.Wait()
}

func (i *Interface) reset() {
	i.commandStop()
	i.commandPosition([]string{"startpos"})
	if i.engine == nil {
		i.newEngine()
		return
	}
	i.engine.Reset()
}

func (i *Interface) newEngine() {
	i.searching.Wait()
	i.engine = engine.NewEngine(&engine.EngineConfig{
		HashTableSize: i.options.hashTableSize,
		Workers:       i.options.threads,
		Logger:        i.logger,
	})
}

func (i *Interface) println(a ...any) {
	i.outMu.Lock()
	defer i.outMu.Unlock()
	fmt.Fprintln(i.out, a...)
}
