package board

// State describes the game from the point of view of the side to move.
type State uint8

const (
	// StateUnknown is when game state is unknown.
	StateUnknown State = iota

	// StateRunning is when the side to move has legal moves and is not in check.
	StateRunning

	// StateCheck is when the side to move is in check but can escape.
	StateCheck

	// StateCheckmate is when the side to move is in check without any legal move.
	StateCheckmate

	// StateStalemate is when the side to move has no legal move and is not in check.
	StateStalemate

	// StateFiftyMoveViolated is when the game has gone through 50 moves without any captures or pawn moves.
	StateFiftyMoveViolated

	// StateInsufficientMaterial is when neither side has enough material left to mate.
	StateInsufficientMaterial
)

// State evaluates the position. Checkmate and stalemate take precedence
// over the fifty move rule and insufficient material.
func (p *Position) State() State {
	if !p.HasLegalMoves() {
		if p.InCheck() {
			return StateCheckmate
		}
		return StateStalemate
	}
	if p.IsFiftyMoveDraw() {
		return StateFiftyMoveViolated
	}
	if p.IsInsufficientMaterial() {
		return StateInsufficientMaterial
	}
	if p.InCheck() {
		return StateCheck
	}
	return StateRunning
}

func (s State) IsRunning() bool {
	switch s {
	case StateRunning, StateCheck:
		return true
	default:
		return false
	}
}

func (s State) IsCheck() bool {
	return s == StateCheck
}

func (s State) IsCheckmate() bool {
	return s == StateCheckmate
}

func (s State) IsDraw() bool {
	switch s {
	case StateStalemate, StateFiftyMoveViolated, StateInsufficientMaterial:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "StateUnknown"
	case StateRunning:
		return "StateRunning"
	case StateCheck:
		return "StateCheck"
	case StateCheckmate:
		return "StateCheckmate"
	case StateStalemate:
		return "StateStalemate"
	case StateFiftyMoveViolated:
		return "StateFiftyMoveViolated"
	case StateInsufficientMaterial:
		return "StateInsufficientMaterial"
	default:
		return ""
	}
}
