package board

import "fmt"

type Side uint8

const (
	SideUnknown Side = iota
	SideWhite
	SideBlack
)

func (s Side) String() string {
	switch s {
	case SideWhite:
		return "White"
	case SideBlack:
		return "Black"
	default:
		return ""
	}
}

// SymbolFEN returns the side-to-move token used by FEN.
func (s Side) SymbolFEN() string {
	switch s {
	case SideWhite:
		return "w"
	case SideBlack:
		return "b"
	default:
		return "-"
	}
}

func (s Side) Opposite() Side {
	switch s {
	case SideWhite:
		return SideBlack
	case SideBlack:
		return SideWhite
	default:
		return SideUnknown
	}
}

// ParseSide accepts FEN tokens ("w", "b") and player colour names ("white", "black").
func ParseSide(token string) (Side, error) {
	switch token {
	case "w", "white", "White":
		return SideWhite, nil
	case "b", "black", "Black":
		return SideBlack, nil
	default:
		return SideUnknown, fmt.Errorf("unknown side %q", token)
	}
}
