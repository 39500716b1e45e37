package model

import "fmt"

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceTypeNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (p PieceType) String() string {
	if int(p) < len(pieceTypeNames) {
		return pieceTypeNames[p]
	}
	return fmt.Sprintf("PieceType(%d)", uint8(p))
}

// Letter returns the upper-case notation letter, "P" for pawns.
func (p PieceType) Letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

// IsPromotion reports whether a pawn may promote to p.
func (p PieceType) IsPromotion() bool {
	return p == Knight || p == Bishop || p == Rook || p == Queen
}

// PieceTypeFromLetter accepts either case.
func PieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'K', 'k':
		return King
	case 'Q', 'q':
		return Queen
	case 'R', 'r':
		return Rook
	case 'B', 'b':
		return Bishop
	case 'N', 'n':
		return Knight
	case 'P', 'p':
		return Pawn
	}
	return NoPieceType
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	for i, name := range pieceTypeNames {
		if name == string(text) {
			*p = PieceType(i)
			return nil
		}
	}
	return fmt.Errorf("model: unknown piece type %q", text)
}

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return fmt.Errorf("model: unknown color %q", text)
	}
	return nil
}

// Piece is the content of one square. The zero value is an empty square.
type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

// Empty is the content of an unoccupied square.
var Empty = Piece{}

func NewPiece(t PieceType, c Color) Piece {
	return Piece{Type: t, Color: c}
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Is reports whether p is a piece of the given type and color.
func (p Piece) Is(t PieceType, c Color) bool {
	return p.Type == t && p.Color == c
}

// FENChar returns the FEN letter: upper case for White, lower case for Black.
func (p Piece) FENChar() byte {
	if p.IsEmpty() {
		return ' '
	}
	l := p.Type.Letter()[0]
	if p.Color == Black {
		return l + ('a' - 'A')
	}
	return l
}
