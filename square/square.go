package square

import (
	"errors"
)

const (
	// MaxComponentScalar is the number of files and ranks on the board.
	MaxComponentScalar Square = 8

	// None marks the absence of a square.
	None Square = -1
)

var (
	// ErrInvalidNotation represents an invalid notation error.
	ErrInvalidNotation = errors.New("invalid notation")
)

// Square is a board coordinate in little-endian rank-file order: a1 is 0, h1 is 7, a8 is 56.
type Square int8

func NewSquare(file, rank Square) Square {
	return MaxComponentScalar*rank + file
}

func NewSquareFromNotation(n string) (Square, error) {
	x, y, err := notationToXY(n)
	if err != nil {
		return None, err
	}
	return NewSquare(x, y), nil
}

func (s Square) String() string {
	return s.Notation()
}

func (s Square) IsValid() bool {
	return s >= 0 && s < MaxComponentScalar*MaxComponentScalar
}

func (s Square) Notation() string {
	if !s.IsValid() {
		return "-"
	}
	return s.File().NotationComponentX() + s.Rank().NotationComponentY()
}

// File returns the file index, 0 for the a-file.
func (s Square) File() Square {
	return s % MaxComponentScalar
}

// Rank returns the rank index, 0 for the first rank.
func (s Square) Rank() Square {
	return s / MaxComponentScalar
}

// IsLight reports whether the square is a light square.
func (s Square) IsLight() bool {
	return (s.File()+s.Rank())%2 == 1
}

func notationToXY(n string) (Square, Square, error) {
	if len(n) != 2 {
		return 0, 0, ErrInvalidNotation
	}
	pX, err := NotationToFile(n[0])
	if err != nil {
		return 0, 0, err
	}
	pY, err := NotationToRank(n[1])
	if err != nil {
		return 0, 0, err
	}
	return pX, pY, nil
}

func NotationToFile(x byte) (Square, error) {
	if x < 'a' || x >= 'a'+byte(MaxComponentScalar) {
		return 0, ErrInvalidNotation
	}
	return Square(x - 'a'), nil
}

func NotationToRank(y byte) (Square, error) {
	if y < '1' || y >= '1'+byte(MaxComponentScalar) {
		return 0, ErrInvalidNotation
	}
	return Square(y - '1'), nil
}

func (s Square) NotationComponentX() string {
	if s < 0 || MaxComponentScalar <= s {
		return ""
	}
	return string(rune('a' + s))
}

func (s Square) NotationComponentY() string {
	if s < 0 || MaxComponentScalar <= s {
		return ""
	}
	return string(rune('1' + s))
}
