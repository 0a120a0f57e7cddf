package engine

import (
	"slices"

	"github.com/wwlorey/chess-ai/board"
)

const nodesFlushInterval = 1 << 10

var (
	offsetPV     uint16 = 1 << 12
	offsetMVVLVA        = offsetPV >> 1
	// victim major, attacker minor
	scoreMVVLVA = [6 + 1][6 + 1]uint16{
		//                     P   B   N   R   Q   K
		board.PiecePawn:   {0, 15, 25, 25, 35, 45, 55},
		board.PieceBishop: {0, 14, 24, 24, 34, 44, 54},
		board.PieceKnight: {0, 14, 24, 24, 34, 44, 54},
		board.PieceRook:   {0, 12, 22, 22, 32, 42, 52},
		board.PieceQueen:  {0, 11, 21, 21, 31, 41, 51},
		board.PieceKing:   {0, 10, 20, 20, 30, 40, 50},
	}
	scorePromotion uint16 = 60
	scoreKiller    uint16 = 10
)

// worker owns everything it touches while searching: position copies,
// transposition table, killers and buffers. Only the shared alpha, node
// counter and clock are read across workers.
type worker struct {
	e  *Engine
	tt *TranspositionTable

	killers [MaxPly + 1][2]board.Move
	path    [MaxPly + 1]uint64
	moves   [MaxPly + 1][]board.Move
	scores  [MaxPly + 1][]uint16
	history map[uint64]struct{}

	nodes         uint64
	interruptible bool
	stop          bool
}

func newWorker(e *Engine, hashTableSize uint32) *worker {
	return &worker{
		e:  e,
		tt: NewTranspositionTable(hashTableSize),
	}
}

func (w *worker) reset() {
	w.tt.Clear()
	w.killers = [MaxPly + 1][2]board.Move{}
}

func (w *worker) prepare(history map[uint64]struct{}) {
	w.history = history
	w.killers = [MaxPly + 1][2]board.Move{}
	w.tt.ResetStats()
	w.stop = false
	w.nodes = 0
}

// stopped reports whether the running iteration has to be abandoned.
func (w *worker) stopped() bool {
	if !w.interruptible {
		return false
	}
	if !w.stop && (w.e.clock.DoneByMovetime() || w.e.clock.DoneByNodes(w.e.nodes.Load())) {
		w.stop = true
	}
	return w.stop
}

func (w *worker) countNode() {
	w.nodes++
	if w.nodes%nodesFlushInterval == 0 {
		w.e.nodes.Add(nodesFlushInterval)
	}
}

func (w *worker) flushNodes() {
	w.e.nodes.Add(w.nodes % nodesFlushInterval)
	w.nodes = 0
}

// searchRootMove scores a single root move from the root side's point of
// view. The result is exact when greater than alpha.
func (w *worker) searchRootMove(p *board.Position, mv board.Move, depth uint8, alpha int32) (int32, PVLine) {
	defer w.flushNodes()
	w.path[0] = p.Hash()
	next, err := p.Apply(mv)
	if err != nil {
		// root moves come from the legal generator
		return -ScoreInfinite, PVLine{}
	}
	var childPVL, pvl PVLine
	score := -w.negamax(&next, &childPVL, depth-1, 1, -ScoreInfinite-1, -alpha)
	pvl.Set(mv, childPVL)
	return score, pvl
}

// negamax is a fail-hard alpha-beta search. The returned score is relative
// to the side to move in p.
func (w *worker) negamax(p *board.Position, pvl *PVLine, depth, ply uint8, alpha, beta int32) int32 {
	w.countNode()
	pvl.Clear()

	if w.stopped() {
		return 0
	}
	if w.isDraw(p, ply) {
		return 0
	}
	w.path[ply] = p.Hash()

	if depth == 0 || ply >= MaxPly {
		return w.quiescence(p, ply, alpha, beta)
	}

	ttType, ttMove, ttScore, ttDepth, ok := w.tt.Get(p.Hash(), ply)
	if ok && ttDepth >= depth {
		switch ttType {
		case EntryTypeExact:
			return clamp(ttScore, alpha, beta)
		case EntryTypeLowerBound:
			if ttScore >= beta {
				return beta
			}
		case EntryTypeUpperBound:
			if ttScore <= alpha {
				return alpha
			}
		}
	}

	mvs := w.orderedMoves(p, ply, ttMove, false)
	isCheck := p.InCheck()

	var moveCount int
	var bestMove board.Move
	var childPVL PVLine
	ttType = EntryTypeUpperBound
	for i := range mvs {
		w.sortMoves(ply, i)
		mv := w.moves[ply][i]

		next, err := p.Apply(mv)
		if err != nil || next.IsKingChecked(p.Turn()) {
			continue
		}
		moveCount++
		score := -w.negamax(&next, &childPVL, depth-1, ply+1, -beta, -alpha)
		if w.stopped() {
			return 0
		}

		if score >= beta {
			if !mv.IsCapture {
				w.addKiller(ply, mv)
			}
			w.tt.Set(p.Hash(), ply, EntryTypeLowerBound, mv, beta, depth)
			return beta // fail-hard cutoff
		}
		if score > alpha {
			alpha = score
			bestMove = mv
			pvl.Set(mv, childPVL)
			ttType = EntryTypeExact
		}
	}

	// no moves were explored, game has terminated
	if moveCount == 0 {
		if isCheck {
			return clamp(-(scoreCheckmate - int32(ply)), alpha, beta)
		}
		return clamp(0, alpha, beta)
	}

	w.tt.Set(p.Hash(), ply, ttType, bestMove, alpha, depth)
	return alpha
}

// quiescence only follows captures and promotions, or every evasion when
// the side to move is in check.
func (w *worker) quiescence(p *board.Position, ply uint8, alpha, beta int32) int32 {
	w.countNode()

	if w.stopped() {
		return 0
	}

	// stalemate scores 0 against the bounds the node was entered with
	floor := alpha
	isCheck := p.InCheck()
	if !isCheck {
		eval := w.evaluate(p)
		if eval >= beta || ply >= MaxPly {
			if !p.HasLegalMoves() {
				return clamp(0, floor, beta)
			}
			return clamp(eval, alpha, beta)
		}
		if eval > alpha {
			alpha = eval
		}
	} else if ply >= MaxPly {
		return clamp(w.evaluate(p), alpha, beta)
	}

	mvs := w.orderedMoves(p, ply, board.NullMove, !isCheck)
	var moveCount int
	for i := range mvs {
		w.sortMoves(ply, i)
		mv := w.moves[ply][i]

		next, err := p.Apply(mv)
		if err != nil || next.IsKingChecked(p.Turn()) {
			continue
		}
		moveCount++
		score := -w.quiescence(&next, ply+1, -beta, -alpha)
		if w.stopped() {
			return 0
		}
		if score >= beta {
			return beta // fail-hard cutoff
		}
		if score > alpha {
			alpha = score
		}
	}

	if moveCount == 0 {
		if isCheck {
			return clamp(-(scoreCheckmate - int32(ply)), alpha, beta)
		}
		if !p.HasLegalMoves() {
			return clamp(0, floor, beta)
		}
	}
	return alpha
}

// isDraw covers the fifty move rule, insufficient material and repetition
// of a position seen earlier on the search path or in the game. A checkmate
// on the hundredth half move is not a draw.
func (w *worker) isDraw(p *board.Position, ply uint8) bool {
	if p.IsInsufficientMaterial() {
		return true
	}
	if p.IsFiftyMoveDraw() && (!p.InCheck() || p.HasLegalMoves()) {
		return true
	}
	hash := p.Hash()
	for i := int(ply) - 2; i >= 0; i -= 2 {
		if w.path[i] == hash {
			return true
		}
	}
	_, seen := w.history[hash]
	return seen
}

func (w *worker) evaluate(p *board.Position) int32 {
	score := w.e.weights.Evaluate(p)
	if p.Turn() == board.SideBlack {
		return -score
	}
	return score
}

// orderedMoves fills the ply buffers with pseudo-legal moves and their
// ordering scores. With noisyOnly, quiet moves are left out.
func (w *worker) orderedMoves(p *board.Position, ply uint8, pv board.Move, noisyOnly bool) []board.Move {
	mvs := p.PseudoLegalMoves(w.moves[ply][:0])
	if noisyOnly {
		mvs = slices.DeleteFunc(mvs, board.Move.IsQuiet)
	}
	w.moves[ply] = mvs

	scores := w.scores[ply][:0]
	for _, mv := range mvs {
		var score uint16
		switch {
		case !pv.IsNull() && mv.Equals(pv):
			score = offsetPV
		case mv.IsCapture:
			score = offsetMVVLVA + scoreMVVLVA[mv.Piece][mv.Captured]
			if mv.IsPromote != board.PieceUnknown {
				score += scorePromotion
			}
		case mv.IsPromote != board.PieceUnknown:
			score = offsetMVVLVA + scorePromotion
		default:
			for i, killer := range w.killers[ply] {
				if mv == killer {
					score = offsetMVVLVA - uint16(i+1)*scoreKiller
					break
				}
			}
		}
		scores = append(scores, score)
	}
	w.scores[ply] = scores
	return mvs
}

// sortMoves brings the best scored move at or after index to index. Ties
// keep generation order.
func (w *worker) sortMoves(ply uint8, index int) {
	mvs, scores := w.moves[ply], w.scores[ply]
	bestIndex, bestScore := index, scores[index]
	for i := index + 1; i < len(mvs); i++ {
		if scores[i] > bestScore {
			bestIndex = i
			bestScore = scores[i]
		}
	}
	if bestIndex == index {
		return
	}
	mv, score := mvs[bestIndex], scores[bestIndex]
	copy(mvs[index+1:bestIndex+1], mvs[index:bestIndex])
	copy(scores[index+1:bestIndex+1], scores[index:bestIndex])
	mvs[index], scores[index] = mv, score
}

func (w *worker) addKiller(ply uint8, mv board.Move) {
	if mv != w.killers[ply][0] {
		w.killers[ply][1] = w.killers[ply][0]
		w.killers[ply][0] = mv
	}
}
