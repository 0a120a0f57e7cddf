package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wwlorey/chess-ai/board"
	"github.com/wwlorey/chess-ai/engine"
	"github.com/wwlorey/chess-ai/server"
	"github.com/wwlorey/chess-ai/turn"
	"github.com/wwlorey/chess-ai/uci"
)

const (
	exitOK = iota
	exitErr
)

var (
	profile = flag.Bool("profile", false, "serve pprof endpoint")
	debug   = flag.Bool("debug", false, "log search iterations")

	movetime = flag.Duration("movetime", engine.DefaultMovetime, "search budget per turn")
	workers  = flag.Int("workers", 1, "root-parallel search workers")
	hash     = flag.Uint("hash", uint(engine.DefaultHashTableSize), "transposition entries per worker")
	color    = flag.String("color", "", "colour played in decide mode (white or black)")
	history  = flag.String("history", "", "comma separated SAN history in decide mode")

	perftDepth = flag.Int("perft", 0, "run perft to the given depth")

	movegenRun  = flag.Bool("movegen", false, "run movegen mode")
	movegenDraw = flag.Bool("movegen.draw", false, "draw applied moves in movegen mode")

	selfplayMoves = flag.Int("selfplay", 0, "play the engine against itself for the given number of moves")

	serveAddr    = flag.String("serve", "", "serve the turn API on the given address")
	allowOrigins = flag.String("serve.origins", "", "CORS origins allowed by the turn API")

	uciRun = flag.Bool("uci", false, "run uci mode")
)

func main() {
	flag.Parse()

	logger := newLogger(os.Stderr, *debug)
	if *profile {
		runProfiler(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := realMain(ctx, flag.Args(), os.Stdin, os.Stdout, logger); err != nil {
		logger.Error().Err(err).Msg("exiting")
		os.Exit(exitErr)
	}
	os.Exit(exitOK)
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

func runProfiler(logger zerolog.Logger) {
	go func() {
		addr := "localhost:6060"
		logger.Info().Msgf("starting pprof endpoint: http://%s/debug/pprof", addr)
		_ = http.ListenAndServe(addr, nil)
	}()
}

func realMain(ctx context.Context, args []string, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	fen := board.DefaultStartingPositionFEN
	if len(args) > 0 {
		fen = strings.Join(args, " ")
	}
	turnCfg := &turn.Config{
		Movetime:      *movetime,
		Workers:       *workers,
		HashTableSize: uint32(*hash),
		Colored:       true,
		Logger:        logger,
	}

	switch {
	case *perftDepth > 0:
		return perft(*perftDepth, fen, out)
	case *movegenRun:
		return movegen(fen, *movegenDraw, out)
	case *selfplayMoves > 0:
		return selfplay(ctx, fen, *selfplayMoves, turnCfg, out)
	case *serveAddr != "":
		return serve(ctx, *serveAddr, turnCfg, logger)
	case *uciRun:
		return uci.NewInterface(in, out, logger).Run(ctx)
	}
	return decide(ctx, fen, turnCfg, out)
}

func decide(ctx context.Context, fen string, cfg *turn.Config, out io.Writer) error {
	req := turn.Request{FEN: fen, Color: *color}
	if *history != "" {
		req.History = strings.Split(*history, ",")
	}
	san, err := turn.NewController(cfg).Decide(ctx, req)
	// the move is printed even on failure, it is the fallback
	fmt.Fprintln(out, san)
	return err
}

func serve(ctx context.Context, addr string, cfg *turn.Config, logger zerolog.Logger) error {
	cfg.Colored = false
	s := server.New(&server.Config{
		Addr:         addr,
		AllowOrigins: *allowOrigins,
		Logger:       logger,
	}, turn.NewController(cfg))

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()
	return s.Listen()
}
