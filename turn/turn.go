package turn

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/wwlorey/chess-ai/board"
	"github.com/wwlorey/chess-ai/engine"
)

// Resign is sent when there is no move to play.
const Resign = "0000"

type Searcher interface {
	Search(ctx context.Context, p *board.Position, cfg *engine.SearchConfig) (engine.SearchResult, error)
}

type Config struct {
	// Movetime is the budget of a turn without a game clock.
	Movetime      time.Duration
	Workers       int
	HashTableSize uint32
	Weights       *engine.Weights
	// StartFEN is the position the move history is replayed from.
	StartFEN string
	// Colored makes Render use the coloured board.
	Colored bool
	Logger  zerolog.Logger
}

// Request carries everything the game server sends for one turn.
type Request struct {
	FEN     string
	History []string
	Color   string
	// TimeRemaining is the player's game clock, zero when unknown.
	TimeRemaining time.Duration
}

// Controller turns requests into moves. A single controller serves one turn
// at a time.
type Controller struct {
	cfg    Config
	engine Searcher
	logger zerolog.Logger
}

func NewController(cfg *Config) *Controller {
	if cfg.Movetime <= 0 {
		cfg.Movetime = engine.DefaultMovetime
	}
	if cfg.StartFEN == "" {
		cfg.StartFEN = board.DefaultStartingPositionFEN
	}
	return &Controller{
		cfg: *cfg,
		engine: engine.NewEngine(&engine.EngineConfig{
			HashTableSize: cfg.HashTableSize,
			Workers:       cfg.Workers,
			Weights:       cfg.Weights,
			Logger:        cfg.Logger,
		}),
		logger: cfg.Logger,
	}
}

// Decide returns the SAN of the move to play. On any failure the error is an
// *EngineFailureError and the returned string is still the best available
// answer: the first legal move, or Resign when there is none.
func (c *Controller) Decide(ctx context.Context, req Request) (san string, err error) {
	logger := c.loggerFrom(ctx).With().Str("fen", req.FEN).Logger()

	var p *board.Position
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("recovered from panic: %v", r)
		}
		if err == nil {
			return
		}
		fallback := fallbackMove(p)
		logger.Error().Err(err).Str("fallback", fallback).Msg("engine failure")
		san, err = fallback, &EngineFailureError{Fallback: fallback, Cause: err}
	}()

	p, err = board.NewPosition(board.WithFEN(req.FEN))
	if err != nil {
		return "", errors.Wrap(err, "decode position")
	}

	history, faults := c.inspect(p, req)
	if faults != nil {
		logger.Warn().Err(faults).Msg("request inconsistent, continuing")
	}

	cfg := &engine.SearchConfig{History: history}
	if req.TimeRemaining > 0 {
		if p.Turn() == board.SideWhite {
			cfg.ClockConfig.WhiteTime = req.TimeRemaining
		} else {
			cfg.ClockConfig.BlackTime = req.TimeRemaining
		}
	} else {
		cfg.ClockConfig.Movetime = c.cfg.Movetime
	}

	res, err := c.engine.Search(ctx, p, cfg)
	if err != nil {
		return "", errors.Wrap(err, "search")
	}
	mv, ok := p.FindMove(res.Move.From, res.Move.To, res.Move.IsPromote)
	if !ok {
		return "", errors.Wrapf(board.ErrIllegalMove, "search returned %s", res.Move)
	}
	san, err = board.MarshalSAN(p, mv)
	if err != nil {
		return "", errors.Wrap(err, "encode move")
	}

	logger.Info().
		Str("san", san).
		Uint16("ply", p.Ply()).
		Int32("score", res.Score).
		Uint8("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Msg("decided")
	return san, nil
}

// loggerFrom prefers the logger carried by ctx, which holds request scoped
// fields.
func (c *Controller) loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return c.logger
}

// inspect checks the request against the decoded position and collects the
// hashes of the positions played so far. Faults never stop the turn.
func (c *Controller) inspect(p *board.Position, req Request) ([]uint64, error) {
	var faults *multierror.Error
	if req.Color != "" {
		us, err := board.ParseSide(req.Color)
		switch {
		case err != nil:
			faults = multierror.Append(faults, errors.Wrap(err, "color"))
		case us != p.Turn():
			faults = multierror.Append(faults, errors.Errorf("playing %s but %s is to move", us, p.Turn()))
		}
	}

	history, err := c.replay(p, req.History)
	if err != nil {
		faults = multierror.Append(faults, err)
	}
	return history, faults.ErrorOrNil()
}

// replay plays the SAN history from the start position. The hashes are only
// kept when the history leads to p.
func (c *Controller) replay(p *board.Position, history []string) ([]uint64, error) {
	if len(history) == 0 {
		return nil, nil
	}
	pp, err := board.NewPosition(board.WithFEN(c.cfg.StartFEN))
	if err != nil {
		return nil, errors.Wrap(err, "decode start position")
	}

	hashes := make([]uint64, 0, len(history))
	for i, text := range history {
		mv, err := board.UnmarshalSAN(pp, text)
		if err != nil {
			return nil, errors.Wrapf(err, "history move %d", i+1)
		}
		next, err := pp.Apply(mv)
		if err != nil {
			return nil, errors.Wrapf(err, "history move %d", i+1)
		}
		hashes = append(hashes, pp.Hash())
		pp = &next
	}

	if !samePlacement(pp, p) {
		return nil, errors.Errorf("history leads to %s", pp.FEN())
	}
	return hashes, nil
}

// samePlacement compares pieces, side to move and castling rights. The en
// passant field is left out since servers disagree on when to set it.
func samePlacement(a, b *board.Position) bool {
	fa, fb := strings.Fields(a.FEN()), strings.Fields(b.FEN())
	return strings.Join(fa[:3], " ") == strings.Join(fb[:3], " ")
}

// fallbackMove is the first legal move in generation order.
func fallbackMove(p *board.Position) (san string) {
	if p == nil {
		return Resign
	}
	defer func() {
		if r := recover(); r != nil {
			san = Resign
		}
	}()
	for mv := range p.LegalMoves() {
		if s, err := board.MarshalSAN(p, mv); err == nil {
			return s
		}
		return mv.UCI()
	}
	return Resign
}

// Render draws the position for diagnostics, tagging the side of color.
func (c *Controller) Render(fen, color string) (string, error) {
	p, err := board.NewPosition(board.WithFEN(fen))
	if err != nil {
		return "", errors.Wrap(err, "decode position")
	}
	us, _ := board.ParseSide(color)
	if c.cfg.Colored {
		return p.Draw(us), nil
	}
	return p.Dump(us), nil
}
