package board

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/wwlorey/chess-ai/square"
)

var (
	drawLight = color.New(color.FgHiBlack, color.BgHiGreen)
	drawDark  = color.New(color.FgHiBlack, color.BgGreen)
	drawLabel = color.New(color.Bold)
)

// Dump renders the position as a plain-text grid followed by the game
// metadata. When us is a known side the side to move is tagged as us or them.
func (p *Position) Dump(us ...Side) string {
	builder := strings.Builder{}
	for y := Height - 1; y >= 0; y-- {
		_, _ = builder.WriteString("   +---+---+---+---+---+---+---+---+\n")
		_, _ = builder.WriteString(fmt.Sprintf(" %d |", y+1))
		for x := square.Square(0); x < Width; x++ {
			s, pc := p.GetSideAndPiece(square.NewSquare(x, y))
			sym := pc.SymbolFEN(s)
			if s == SideUnknown {
				sym = " "
			}
			_, _ = builder.WriteString(fmt.Sprintf(" %s |", sym))
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("   +---+---+---+---+---+---+---+---+\n   ")
	for x := square.Square(0); x < Width; x++ {
		_, _ = builder.WriteString(fmt.Sprintf("  %s ", x.NotationComponentX()))
	}
	_, _ = builder.WriteString("\n")
	_, _ = builder.WriteString(p.DebugString(us...))
	return builder.String()
}

// Draw is the coloured variant of Dump using unicode pieces.
func (p *Position) Draw(us ...Side) string {
	builder := strings.Builder{}
	for y := Height - 1; y >= 0; y-- {
		_, _ = builder.WriteString(drawLabel.Sprintf(" %d ", y+1))
		for x := square.Square(0); x < Width; x++ {
			sq := square.NewSquare(x, y)
			s, pc := p.GetSideAndPiece(sq)
			sym := pc.SymbolUnicode(s)
			if pc == PieceUnknown {
				sym = " "
			}
			cell := drawDark
			if sq.IsLight() {
				cell = drawLight
			}
			_, _ = builder.WriteString(cell.Sprintf(" %s ", sym))
		}
		_, _ = builder.WriteString("\n")
	}
	_, _ = builder.WriteString("   ")
	for x := square.Square(0); x < Width; x++ {
		_, _ = builder.WriteString(drawLabel.Sprintf(" %s ", x.NotationComponentX()))
	}
	_, _ = builder.WriteString("\n")
	_, _ = builder.WriteString(p.DebugString(us...))
	return builder.String()
}

func (p *Position) DebugString(us ...Side) string {
	turn := p.turn.String()
	if len(us) == 1 && us[0] != SideUnknown {
		if us[0] == p.turn {
			turn += " (us)"
		} else {
			turn += " (them)"
		}
	}
	return fmt.Sprintf("turn: %s\nmove: %d\ncast: %s\npass: %s\nhalf: %d\nhash: %016x\nfen:  %s",
		turn, p.fullMoveClock, p.castleRights, p.enPassant.Notation(), p.halfMoveClock, p.hash, p.FEN())
}
