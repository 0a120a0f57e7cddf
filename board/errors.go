package board

import "errors"

var (
	// ErrInvalidFEN is returned when a FEN string cannot be decoded.
	ErrInvalidFEN = errors.New("invalid fen")
	// ErrInvalidSAN is returned when a SAN string does not resolve to exactly one legal move.
	ErrInvalidSAN = errors.New("invalid san")
	// ErrIllegalMove is returned by Apply when the move breaks the caller contract.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvariantViolation marks a position that should never have been constructed.
	ErrInvariantViolation = errors.New("invariant violation")
)
