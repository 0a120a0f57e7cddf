package engine

import (
	"math/bits"

	"github.com/wwlorey/chess-ai/board"
)

type EntryType uint8

const DefaultHashTableSize = 1 << 20 // number of entries per worker

const (
	EntryTypeUnknown EntryType = iota
	EntryTypeExact
	EntryTypeLowerBound
	EntryTypeUpperBound
)

// TranspositionTable is owned by a single worker and is not safe for concurrent use.
type TranspositionTable struct {
	table    []entry
	maskHash uint64

	// stats
	hits   int
	misses int
	writes int
}

type entry struct {
	typ   EntryType
	mv    board.Move
	score int32
	depth uint8
	hash  uint64
}

// NewTranspositionTable rounds size down to a power of two.
func NewTranspositionTable(size uint32) *TranspositionTable {
	if size == 0 {
		size = 1
	}
	size = 1 << (bits.Len32(size) - 1)
	return &TranspositionTable{
		table:    make([]entry, size),
		maskHash: uint64(size) - 1,
	}
}

// Set stores a node result. Mate scores are made relative to the node so the
// entry stays valid when the position is reached at another ply.
func (t *TranspositionTable) Set(hash uint64, ply uint8, typ EntryType, mv board.Move, score int32, depth uint8) {
	e := &t.table[hash&t.maskHash]
	if e.typ != EntryTypeUnknown && e.hash == hash && e.depth > depth {
		return
	}
	t.writes++
	*e = entry{
		typ:   typ,
		mv:    mv,
		score: scoreToTT(score, ply),
		depth: depth,
		hash:  hash,
	}
}

func (t *TranspositionTable) Get(hash uint64, ply uint8) (EntryType, board.Move, int32, uint8, bool) {
	e := &t.table[hash&t.maskHash]
	if e.typ == EntryTypeUnknown || e.hash != hash {
		t.misses++
		return EntryTypeUnknown, board.NullMove, 0, 0, false
	}
	t.hits++
	return e.typ, e.mv, scoreFromTT(e.score, ply), e.depth, true
}

func (t *TranspositionTable) Clear() {
	clear(t.table)
	t.ResetStats()
}

func (t *TranspositionTable) ResetStats() {
	t.hits = 0
	t.misses = 0
	t.writes = 0
}

func (t *TranspositionTable) Stats() (int, int, int) {
	return t.hits, t.misses, t.writes
}

func scoreToTT(score int32, ply uint8) int32 {
	switch {
	case score >= scoreMateBound:
		return score + int32(ply)
	case score <= -scoreMateBound:
		return score - int32(ply)
	default:
		return score
	}
}

func scoreFromTT(score int32, ply uint8) int32 {
	switch {
	case score >= scoreMateBound:
		return score - int32(ply)
	case score <= -scoreMateBound:
		return score + int32(ply)
	default:
		return score
	}
}
