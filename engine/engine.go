package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wwlorey/chess-ai/board"
)

const (
	ScoreInfinite int32 = math.MaxInt16

	// MaxPly bounds the distance from the root, quiescence included.
	MaxPly = 64

	clockTimePVConsistencyDecay       = 0.95 // more reduction with decay towards 0
	clockTimeScoreConsistencyMaxDecay = 0.95
	clockTimeScoreConsistencyWindow   = 0.75

	scoreCheckmate = ScoreInfinite - 1
	scoreMateBound = scoreCheckmate - MaxPly
)

// ErrNoLegalMove is returned when the root position is already terminal.
var ErrNoLegalMove = errors.New("no legal move")

type PVLine struct {
	mvs []board.Move
}

func (pvl *PVLine) GetPV() board.Move {
	if len(pvl.mvs) == 0 {
		return board.NullMove
	}
	return pvl.mvs[0]
}

func (pvl *PVLine) Set(mv board.Move, nextPVL PVLine) {
	if pvl == nil {
		return
	}
	pvl.mvs = append(append(pvl.mvs[:0], mv), nextPVL.mvs...)
}

func (pvl *PVLine) Clear() {
	pvl.mvs = pvl.mvs[:0] // memory not released for GC
}

func (pvl *PVLine) Len() int {
	return len(pvl.mvs)
}

func (pvl *PVLine) Moves() []board.Move {
	return pvl.mvs
}

func (pvl *PVLine) StringUCI() string {
	if pvl == nil {
		return ""
	}
	builder := strings.Builder{}
	for i, mv := range pvl.mvs {
		_, _ = builder.WriteString(mv.UCI())
		if i < len(pvl.mvs)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

func (pvl *PVLine) String(p *board.Position) string {
	return DumpHistory(p, pvl.mvs)
}

// DumpHistory renders mvs played from p as numbered SAN.
func DumpHistory(p *board.Position, mvs []board.Move) string {
	if p == nil || len(mvs) < 1 {
		return ""
	}
	builder := strings.Builder{}
	pp := *p
	fullMoveClock := pp.FullMoveClock()
	if pp.Turn() == board.SideBlack {
		_, _ = builder.WriteString(fmt.Sprintf("%d... ", fullMoveClock))
	}
	for i, mv := range mvs {
		san, err := board.MarshalSAN(&pp, mv)
		if err != nil {
			_, _ = builder.WriteString(mv.UCI() + "?")
			break
		}
		if pp.Turn() == board.SideWhite {
			_, _ = builder.WriteString(fmt.Sprintf("%d. %s", fullMoveClock, san))
		} else {
			_, _ = builder.WriteString(san)
			fullMoveClock++
		}
		if pp, err = pp.Apply(mv); err != nil {
			break
		}
		if i < len(mvs)-1 {
			_, _ = builder.WriteRune(' ')
		}
	}
	return builder.String()
}

type EngineConfig struct {
	// HashTableSize is the number of transposition entries per worker.
	HashTableSize uint32
	// Workers is the number of root-parallel search goroutines.
	Workers int
	Weights *Weights
	Logger  zerolog.Logger
}

type SearchConfig struct {
	ClockConfig ClockConfig
	// History holds the hashes of the positions played before the root,
	// used for repetition detection.
	History []uint64
	// OnIteration is called after each completed depth.
	OnIteration func(Info)
	Debug       bool
}

// Info describes one completed iteration.
type Info struct {
	Depth   uint8
	Score   int32
	Nodes   uint64
	Elapsed time.Duration
	PV      PVLine
}

func (i Info) NPS() float64 {
	return float64(i.Nodes) / (i.Elapsed + 1).Seconds()
}

// UCI formats the iteration as a UCI info line.
func (i Info) UCI() string {
	return fmt.Sprintf("info depth %d score %s time %d nodes %d nps %.0f pv %s",
		i.Depth, formatScoreUCI(i.Score), i.Elapsed.Milliseconds(), i.Nodes, i.NPS(), i.PV.StringUCI())
}

type SearchResult struct {
	Move board.Move
	// Score is relative to the side to move at the root.
	Score int32
	Nodes uint64
	// Depth is the deepest fully completed iteration.
	Depth uint8
	PV    []board.Move
}

// Engine runs one search at a time. Each worker keeps its transposition
// table across searches.
type Engine struct {
	mu      sync.Mutex
	workers []*worker
	clock   *Clock
	weights *Weights
	logger  zerolog.Logger

	nodes atomic.Uint64
	alpha atomic.Int32
}

func NewEngine(cfg *EngineConfig) *Engine {
	if cfg.HashTableSize == 0 {
		cfg.HashTableSize = DefaultHashTableSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}

	e := &Engine{
		clock:   NewClock(),
		weights: cfg.Weights,
		logger:  cfg.Logger,
	}
	for range cfg.Workers {
		e.workers = append(e.workers, newWorker(e, cfg.HashTableSize))
	}
	return e
}

// Reset drops everything learnt from previous searches.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, w := range e.workers {
		w.reset()
	}
}

// Search runs iterative deepening on p until the clock in cfg is exhausted
// or ctx is done. Only fully completed iterations contribute to the result;
// depth 1 always completes.
func (e *Engine) Search(ctx context.Context, p *board.Position, cfg *SearchConfig) (SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rootMoves := p.GenerateMoves()
	if len(rootMoves) == 0 {
		return SearchResult{}, fmt.Errorf("%w: position is %s", ErrNoLegalMove, p.State())
	}

	history := make(map[uint64]struct{}, len(cfg.History))
	for _, h := range cfg.History {
		history[h] = struct{}{}
	}
	for _, w := range e.workers {
		w.prepare(history)
	}

	e.nodes.Store(0)
	e.clock.Start(ctx, p.Turn(), p.FullMoveClock(), &cfg.ClockConfig)
	defer e.clock.Stop()

	result := SearchResult{Move: rootMoves[0]}
	var prevMove board.Move
	var prevScore int32
	var elapsedTime time.Duration
	timeDecay := float64(1)
	printer := message.NewPrinter(language.English)

	for d := uint8(1); !e.clock.DoneByDepth(d); d++ {
		startTime := time.Now()
		best, score, pvl, ok := e.searchRoot(p, rootMoves, d)
		elapsedTime += time.Since(startTime)
		if !ok {
			break
		}

		result.Move = rootMoves[best]
		result.Score = score
		result.Depth = d
		result.PV = append(result.PV[:0], pvl.Moves()...)
		result.Nodes = e.nodes.Load()

		// best move first for the next iteration, the rest keeps its order
		bestMove := rootMoves[best]
		copy(rootMoves[1:best+1], rootMoves[:best])
		rootMoves[0] = bestMove

		info := Info{Depth: d, Score: score, Nodes: result.Nodes, Elapsed: elapsedTime, PV: pvl}
		e.logger.Debug().
			Uint8("depth", d).
			Str("score", formatScoreDebug(score)).
			Str("nodes", printer.Sprintf("%d", info.Nodes)).
			Str("nps", printer.Sprintf("%.0f", info.NPS())).
			Dur("elapsed", elapsedTime).
			Str("pv", pvl.String(p)).
			Msg("iteration")
		if cfg.OnIteration != nil {
			cfg.OnIteration(info)
		}

		if isMateScore(score) || len(rootMoves) == 1 && e.clock.Mode() != ClockModeDepth {
			break
		}
		if e.clock.DoneByMovetime() || e.clock.DoneByNodes(result.Nodes) || d >= MaxDepth {
			break
		}
		if d > 1 && e.clock.Mode() == ClockModeGametime {
			if prevMove == bestMove {
				timeDecay *= clockTimePVConsistencyDecay // carry decay from previous iteration
			} else {
				timeDecay = 1 // reset decay factor
			}
			timeDecay *= clamp(
				float64(abs(prevScore-score))/float64(max(abs(prevScore), 1))/clockTimeScoreConsistencyWindow,
				clockTimeScoreConsistencyMaxDecay, 1,
			)
			// the next iteration costs a multiple of this one, do not start what cannot finish
			if elapsedTime.Seconds() > e.clock.AllocatedMovetime().Seconds()*timeDecay/2 {
				break
			}
		}
		prevMove = bestMove
		prevScore = score
	}
	result.Nodes = e.nodes.Load()

	if cfg.Debug {
		for i, w := range e.workers {
			hits, misses, writes := w.tt.Stats()
			e.logger.Debug().Int("worker", i).Int("hits", hits).Int("misses", misses).Int("writes", writes).Msg("transposition table")
		}
	}
	return result, nil
}

// searchRoot searches every root move to depth d, spreading them over the
// workers. Each move is searched with the window (alpha-1, +inf) where alpha
// is the best exact score known when the move starts, so every move reaching
// the final best score is scored exactly and ties go to the lowest index.
// ok is false when the iteration was interrupted.
func (e *Engine) searchRoot(p *board.Position, rootMoves []board.Move, d uint8) (int, int32, PVLine, bool) {
	interruptible := d > 1
	scores := make([]int32, len(rootMoves))
	exact := make([]bool, len(rootMoves))
	pvls := make([]PVLine, len(rootMoves))

	e.alpha.Store(-ScoreInfinite)
	var next atomic.Int32
	var aborted atomic.Bool
	var wg sync.WaitGroup
	for _, w := range e.workers[:min(len(e.workers), len(rootMoves))] {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			w.interruptible = interruptible
			for {
				i := int(next.Add(1) - 1)
				if i >= len(rootMoves) || aborted.Load() {
					return
				}
				alpha := e.alpha.Load()
				score, pvl := w.searchRootMove(p, rootMoves[i], d, alpha-1)
				if w.stopped() {
					aborted.Store(true)
					return
				}
				scores[i], pvls[i] = score, pvl
				exact[i] = score > alpha-1
				if exact[i] {
					raiseAlpha(&e.alpha, score)
				}
			}
		}(w)
	}
	wg.Wait()
	if aborted.Load() {
		return 0, 0, PVLine{}, false
	}

	best := -1
	for i := range rootMoves {
		if exact[i] && (best < 0 || scores[i] > scores[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, 0, PVLine{}, false
	}
	return best, scores[best], pvls[best], true
}

// raiseAlpha lifts the shared bound to score unless it is already higher.
func raiseAlpha(alpha *atomic.Int32, score int32) {
	for {
		cur := alpha.Load()
		if score <= cur || alpha.CompareAndSwap(cur, score) {
			return
		}
	}
}

func isMateScore(s int32) bool {
	return abs(s) >= scoreMateBound
}

func clamp[T constraints.Ordered](x, lo, hi T) T {
	return min(max(x, lo), hi)
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return x * -1
	}
	return x
}

func formatScoreDebug(s int32) string {
	if s >= scoreMateBound {
		return fmt.Sprintf("#+%d", (scoreCheckmate-s+1)/2)
	}
	if s <= -scoreMateBound {
		return fmt.Sprintf("#-%d", (scoreCheckmate+s)/2)
	}
	if s > 0 {
		return fmt.Sprintf("+%.2f", float64(s)/100)
	}
	if s < 0 {
		return fmt.Sprintf("%.2f", float64(s)/100)
	}
	return "0"
}

func formatScoreUCI(s int32) string {
	if s >= scoreMateBound {
		return fmt.Sprintf("mate %d", (scoreCheckmate-s+1)/2)
	}
	if s <= -scoreMateBound {
		return fmt.Sprintf("mate -%d", (scoreCheckmate+s)/2)
	}
	return fmt.Sprintf("cp %d", s)
}
