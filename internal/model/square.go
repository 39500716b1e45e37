package model

import "fmt"

const BoardSize = 8

// Square addresses the board by row (0 = rank 1) and column (0 = file a).
// It doubles as a direction offset in move generation.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoSquare is used by the NoMove sentinel.
var NoSquare = Square{Row: -1, Col: -1}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < BoardSize && s.Col >= 0 && s.Col < BoardSize
}

func (s Square) Add(d Square) Square {
	return Square{Row: s.Row + d.Row, Col: s.Col + d.Col}
}

// IsLight reports whether the square is a light square (a1 is dark).
func (s Square) IsLight() bool {
	return (s.Row+s.Col)%2 == 1
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, s.Row+1)
}

// ParseSquare parses coordinates such as "e4".
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 {
		return NoSquare, false
	}
	sq := Square{Row: int(s[1]) - '1', Col: int(s[0]) - 'a'}
	if !sq.Valid() {
		return NoSquare, false
	}
	return sq, true
}

// HomeRow is the back rank of the given color.
func HomeRow(c Color) int {
	if c == White {
		return 0
	}
	return BoardSize - 1
}

// PawnDirection is the row delta of a forward pawn step.
func PawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// PromotionRow is the last rank from the point of view of c.
func PromotionRow(c Color) int {
	return HomeRow(c.Opposite())
}
