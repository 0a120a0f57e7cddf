package board

// PseudoRand is a xorshift64* generator. It seeds the zobrist constants so
// hashes are stable across runs.
type PseudoRand struct {
	s uint64
}

func NewPseudoRand() *PseudoRand {
	return &PseudoRand{s: 1}
}

// Seed resets the generator state. A zero seed would stall the generator and is replaced by 1.
func (r *PseudoRand) Seed(seed uint64) {
	if seed == 0 {
		seed = 1
	}
	r.s = seed
}

func (r *PseudoRand) Uint64() uint64 {
	r.s ^= r.s >> 12
	r.s ^= r.s << 25
	r.s ^= r.s >> 27
	return r.s * 2685821657736338717
}
