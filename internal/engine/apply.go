package engine

import "github.com/benbeisheim/chessai-backend/internal/model"

// Undo is the per-ply snapshot needed to reverse exactly one Apply.
type Undo struct {
	Move          model.Move
	Moved         model.Piece // the piece as it stood on Move.From
	Captured      model.Piece
	CapturedAt    model.Square // differs from Move.To only for en passant
	Rook          model.Piece  // the castling rook as it stood on its corner
	WasEnPassant  bool
	WasCastling   bool
	WasPromotion  bool
	PrevCastling  [2][2]bool
	PrevEnPassant int
	PrevHalfMove  int
}

// Apply performs m on pos without validating it and returns what is needed
// to revert it. Callers must have checked the move with IsLegal.
func Apply(pos *model.Position, m model.Move) Undo {
	mover := pos.Turn
	piece := pos.PieceAt(m.From)
	u := Undo{
		Move:          m,
		Moved:         piece,
		Captured:      pos.PieceAt(m.To),
		CapturedAt:    m.To,
		PrevCastling:  pos.Castling,
		PrevEnPassant: pos.EnPassantFile,
		PrevHalfMove:  pos.HalfMoveClock,
	}

	placed := piece
	placed.HasMoved = true
	pos.EnPassantFile = model.NoFile

	if piece.Type == model.Pawn {
		if u.Captured.IsEmpty() && m.From.Col != m.To.Col {
			victim := model.Square{Row: m.From.Row, Col: m.To.Col}
			u.Captured = pos.PieceAt(victim)
			u.CapturedAt = victim
			u.WasEnPassant = true
			pos.Set(victim, model.Empty)
		}
		if abs(m.To.Row-m.From.Row) == 2 {
			pos.EnPassantFile = m.From.Col
		}
		if m.To.Row == model.PromotionRow(mover) {
			promo := m.Promotion
			if !promo.IsPromotion() {
				promo = model.Queen
			}
			placed.Type = promo
			u.WasPromotion = true
		}
	}

	if piece.Type == model.Pawn || !u.Captured.IsEmpty() {
		pos.HalfMoveClock = 0
	} else {
		pos.HalfMoveClock++
	}

	if piece.Type == model.King && abs(m.To.Col-m.From.Col) == 2 {
		rookFrom, rookTo := castlingRookSquares(m)
		u.Rook = pos.PieceAt(rookFrom)
		u.WasCastling = true
		rook := u.Rook
		rook.HasMoved = true
		pos.Set(rookFrom, model.Empty)
		pos.Set(rookTo, rook)
	}

	updateCastlingRights(pos, piece, m, u.Captured)

	pos.Set(m.From, model.Empty)
	pos.Set(m.To, placed)
	pos.Turn = mover.Opposite()
	if mover == model.Black {
		pos.FullMoveNumber++
	}
	return u
}

// Revert undoes the move recorded in u. pos must be the position Apply left.
func Revert(pos *model.Position, u Undo) {
	m := u.Move
	mover := u.Moved.Color

	pos.Set(m.To, model.Empty)
	pos.Set(u.CapturedAt, u.Captured)
	pos.Set(m.From, u.Moved)

	if u.WasCastling {
		rookFrom, rookTo := castlingRookSquares(m)
		pos.Set(rookTo, model.Empty)
		pos.Set(rookFrom, u.Rook)
	}

	pos.Castling = u.PrevCastling
	pos.EnPassantFile = u.PrevEnPassant
	pos.HalfMoveClock = u.PrevHalfMove
	pos.Turn = mover
	if mover == model.Black {
		pos.FullMoveNumber--
	}
}

// castlingRookSquares returns the rook's origin and destination for a
// castling king move.
func castlingRookSquares(m model.Move) (model.Square, model.Square) {
	row := m.From.Row
	if m.To.Col > m.From.Col {
		return model.Square{Row: row, Col: 7}, model.Square{Row: row, Col: 5}
	}
	return model.Square{Row: row, Col: 0}, model.Square{Row: row, Col: 3}
}

// updateCastlingRights revokes rights when the king moves, when a rook
// leaves its corner, or when a rook is captured on its corner.
func updateCastlingRights(pos *model.Position, piece model.Piece, m model.Move, captured model.Piece) {
	switch piece.Type {
	case model.King:
		pos.Castling[piece.Color] = [2]bool{}
	case model.Rook:
		revokeCorner(pos, m.From, piece.Color)
	}
	if captured.Type == model.Rook {
		revokeCorner(pos, m.To, captured.Color)
	}
}

func revokeCorner(pos *model.Position, sq model.Square, c model.Color) {
	if sq.Row != model.HomeRow(c) {
		return
	}
	switch sq.Col {
	case 0:
		pos.Castling[c][model.QueenSide] = false
	case 7:
		pos.Castling[c][model.KingSide] = false
	}
}
