package model

import (
	"fmt"
	"strconv"
	"strings"
)

// NoFile marks the absence of an en-passant file.
const NoFile = -1

// Castling sides, the second index of Position.Castling.
const (
	QueenSide = 0
	KingSide  = 1
)

// Position is the complete game state. It is a plain value: assigning it
// copies the whole board, which is how snapshots are taken.
type Position struct {
	Board          [BoardSize][BoardSize]Piece
	Turn           Color
	Castling       [2][2]bool // [color][side]
	EnPassantFile  int
	HalfMoveClock  int
	FullMoveNumber int
}

var backRank = [BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialPosition returns the standard starting layout with White to move.
func InitialPosition() Position {
	pos := Position{
		Turn:           White,
		EnPassantFile:  NoFile,
		FullMoveNumber: 1,
		Castling:       [2][2]bool{{true, true}, {true, true}},
	}
	for col := 0; col < BoardSize; col++ {
		pos.Board[0][col] = NewPiece(backRank[col], White)
		pos.Board[1][col] = NewPiece(Pawn, White)
		pos.Board[6][col] = NewPiece(Pawn, Black)
		pos.Board[7][col] = NewPiece(backRank[col], Black)
	}
	return pos
}

// PieceAt returns the content of sq, or Empty when sq is off the board.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return Empty
	}
	return p.Board[sq.Row][sq.Col]
}

// Set places pc on sq. Off-board squares are ignored.
func (p *Position) Set(sq Square, pc Piece) {
	if sq.Valid() {
		p.Board[sq.Row][sq.Col] = pc
	}
}

// KingSquare locates the king of color c.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p.Board[row][col].Is(King, c) {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return NoSquare, false
}

func (p *Position) Clone() *Position {
	cp := *p
	return &cp
}

// SameLayout reports whether both positions would count as the same
// position for repetition purposes: piece placement, side to move,
// castling rights and en-passant file. Moved flags are ignored.
func (p *Position) SameLayout(o *Position) bool {
	if p.Turn != o.Turn || p.Castling != o.Castling || p.EnPassantFile != o.EnPassantFile {
		return false
	}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			a, b := p.Board[row][col], o.Board[row][col]
			if a.Type != b.Type || (!a.IsEmpty() && a.Color != b.Color) {
				return false
			}
		}
	}
	return true
}

// Draw returns a text diagram of the board, useful for debugging.
func (p *Position) Draw() string {
	var b strings.Builder
	b.WriteString("  a b c d e f g h\n")
	b.WriteString(" +-----------------+\n")
	for row := BoardSize - 1; row >= 0; row-- {
		fmt.Fprintf(&b, "%d|", row+1)
		for col := 0; col < BoardSize; col++ {
			pc := p.Board[row][col]
			if pc.IsEmpty() {
				b.WriteString(" .")
				continue
			}
			b.WriteByte(' ')
			b.WriteByte(pc.FENChar())
		}
		b.WriteString(" |\n")
	}
	b.WriteString(" +-----------------+\n")
	fmt.Fprintf(&b, "Turn: %s\n", p.Turn)
	return b.String()
}

// String returns the board field of FEN: rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR
func (p *Position) String() string {
	var fen strings.Builder
	for row := BoardSize - 1; row >= 0; row-- {
		emptyCount := 0
		for col := 0; col < BoardSize; col++ {
			pc := p.Board[row][col]
			if pc.IsEmpty() {
				emptyCount++
				continue
			}
			if emptyCount > 0 {
				fen.WriteString(strconv.Itoa(emptyCount))
				emptyCount = 0
			}
			fen.WriteByte(pc.FENChar())
		}
		if emptyCount > 0 {
			fen.WriteString(strconv.Itoa(emptyCount))
		}
		if row != 0 {
			fen.WriteByte('/')
		}
	}
	return fen.String()
}

// FEN returns the full Forsyth-Edwards description of the position.
func (p *Position) FEN() string {
	turn := "w"
	if p.Turn == Black {
		turn = "b"
	}
	castling := ""
	if p.Castling[White][KingSide] {
		castling += "K"
	}
	if p.Castling[White][QueenSide] {
		castling += "Q"
	}
	if p.Castling[Black][KingSide] {
		castling += "k"
	}
	if p.Castling[Black][QueenSide] {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	ep := "-"
	if p.EnPassantFile != NoFile {
		// the target square sits behind the pawn that just advanced
		row := 5
		if p.Turn == Black {
			row = 2
		}
		ep = Square{Row: row, Col: p.EnPassantFile}.String()
	}
	return fmt.Sprintf("%s %s %s %s %d %d", p.String(), turn, castling, ep, p.HalfMoveClock, p.FullMoveNumber)
}

// ParseFEN builds a Position from a FEN string. The moved flag is set on
// every piece that stands off its starting square.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return Position{}, fmt.Errorf("model: fen %q: expected at least 4 fields", fen)
	}
	pos := Position{EnPassantFile: NoFile, FullMoveNumber: 1}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != BoardSize {
		return Position{}, fmt.Errorf("model: fen %q: expected 8 ranks", fen)
	}
	for i, rank := range ranks {
		row := BoardSize - 1 - i
		col := 0
		for j := 0; j < len(rank); j++ {
			c := rank[j]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			t := PieceTypeFromLetter(c)
			if t == NoPieceType || col >= BoardSize {
				return Position{}, fmt.Errorf("model: fen %q: bad rank %q", fen, rank)
			}
			color := White
			if c >= 'a' && c <= 'z' {
				color = Black
			}
			pc := NewPiece(t, color)
			pc.HasMoved = !onStartSquare(pc, Square{Row: row, Col: col})
			pos.Board[row][col] = pc
			col++
		}
		if col != BoardSize {
			return Position{}, fmt.Errorf("model: fen %q: bad rank %q", fen, rank)
		}
	}

	switch fields[1] {
	case "w":
		pos.Turn = White
	case "b":
		pos.Turn = Black
	default:
		return Position{}, fmt.Errorf("model: fen %q: bad side to move", fen)
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				pos.Castling[White][KingSide] = true
			case 'Q':
				pos.Castling[White][QueenSide] = true
			case 'k':
				pos.Castling[Black][KingSide] = true
			case 'q':
				pos.Castling[Black][QueenSide] = true
			default:
				return Position{}, fmt.Errorf("model: fen %q: bad castling field", fen)
			}
		}
	}

	if fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return Position{}, fmt.Errorf("model: fen %q: bad en passant square", fen)
		}
		pos.EnPassantFile = sq.Col
	}

	if len(fields) >= 6 {
		half, err := strconv.Atoi(fields[4])
		if err != nil {
			return Position{}, fmt.Errorf("model: fen %q: half-move clock: %w", fen, err)
		}
		full, err := strconv.Atoi(fields[5])
		if err != nil {
			return Position{}, fmt.Errorf("model: fen %q: full-move number: %w", fen, err)
		}
		pos.HalfMoveClock = half
		pos.FullMoveNumber = full
	}
	return pos, nil
}

func onStartSquare(pc Piece, sq Square) bool {
	if pc.Type == Pawn {
		return sq.Row == HomeRow(pc.Color)+PawnDirection(pc.Color)
	}
	return sq.Row == HomeRow(pc.Color) && backRank[sq.Col] == pc.Type
}
