// Package engine implements the rules of chess on top of model.Position:
// attack detection, legality checking, move generation, move execution with
// exact undo, and terminal-state detection.
package engine

import "github.com/benbeisheim/chessai-backend/internal/model"

var (
	rookDirs   = []model.Square{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs = []model.Square{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	queenDirs  = append(append([]model.Square{}, rookDirs...), bishopDirs...)
	knightDirs = []model.Square{{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1}, {Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2}}
	kingDirs   = queenDirs
)

// IsSquareAttacked reports whether any piece of color by could capture on
// sq. Whose turn it is and pins against the attacker's own king are ignored.
func IsSquareAttacked(pos *model.Position, sq model.Square, by model.Color) bool {
	// a pawn of color by attacks sq from one row behind it
	pawnRow := sq.Row - model.PawnDirection(by)
	for _, dc := range [2]int{-1, 1} {
		if pos.PieceAt(model.Square{Row: pawnRow, Col: sq.Col + dc}).Is(model.Pawn, by) {
			return true
		}
	}
	for _, dir := range knightDirs {
		if pos.PieceAt(sq.Add(dir)).Is(model.Knight, by) {
			return true
		}
	}
	if rayAttacked(pos, sq, by, rookDirs, model.Rook) || rayAttacked(pos, sq, by, bishopDirs, model.Bishop) {
		return true
	}
	for _, dir := range kingDirs {
		if pos.PieceAt(sq.Add(dir)).Is(model.King, by) {
			return true
		}
	}
	return false
}

// rayAttacked walks each ray until the first occupied square and reports
// whether that square holds a slider of color by (the given type or a queen).
func rayAttacked(pos *model.Position, sq model.Square, by model.Color, dirs []model.Square, slider model.PieceType) bool {
	for _, dir := range dirs {
		target := sq.Add(dir)
		for target.Valid() {
			pc := pos.PieceAt(target)
			if !pc.IsEmpty() {
				if pc.Color == by && (pc.Type == slider || pc.Type == model.Queen) {
					return true
				}
				break
			}
			target = target.Add(dir)
		}
	}
	return false
}

// IsInCheck reports whether the king of color c is attacked.
func IsInCheck(pos *model.Position, c model.Color) bool {
	king, ok := pos.KingSquare(c)
	if !ok {
		return false
	}
	return IsSquareAttacked(pos, king, c.Opposite())
}

// IsLegal validates m for the side to move. It never mutates pos.
func IsLegal(pos *model.Position, m model.Move) bool {
	if !m.From.Valid() || !m.To.Valid() {
		return false
	}
	piece := pos.PieceAt(m.From)
	if piece.IsEmpty() || piece.Color != pos.Turn {
		return false
	}
	target := pos.PieceAt(m.To)
	if !target.IsEmpty() && target.Color == pos.Turn {
		return false
	}
	if !followsPattern(pos, piece, m) {
		return false
	}
	scratch := *pos
	Apply(&scratch, m)
	return !IsInCheck(&scratch, piece.Color)
}

func followsPattern(pos *model.Position, piece model.Piece, m model.Move) bool {
	dr, dc := m.To.Row-m.From.Row, m.To.Col-m.From.Col
	switch piece.Type {
	case model.Pawn:
		return pawnPattern(pos, piece.Color, m, dr, dc)
	case model.Knight:
		return (abs(dr) == 1 && abs(dc) == 2) || (abs(dr) == 2 && abs(dc) == 1)
	case model.Bishop:
		return abs(dr) == abs(dc) && pathClear(pos, m.From, m.To)
	case model.Rook:
		return (dr == 0 || dc == 0) && pathClear(pos, m.From, m.To)
	case model.Queen:
		return (dr == 0 || dc == 0 || abs(dr) == abs(dc)) && pathClear(pos, m.From, m.To)
	case model.King:
		if abs(dr) <= 1 && abs(dc) <= 1 {
			return true
		}
		return dr == 0 && abs(dc) == 2 && canCastle(pos, piece.Color, m)
	}
	return false
}

func pawnPattern(pos *model.Position, c model.Color, m model.Move, dr, dc int) bool {
	dir := model.PawnDirection(c)
	target := pos.PieceAt(m.To)
	valid := false
	switch {
	case dc == 0 && target.IsEmpty():
		if dr == dir {
			valid = true
		} else if dr == 2*dir && m.From.Row == model.HomeRow(c)+dir {
			valid = pos.PieceAt(model.Square{Row: m.From.Row + dir, Col: m.From.Col}).IsEmpty()
		}
	case dr == dir && abs(dc) == 1:
		if !target.IsEmpty() {
			valid = true
		} else {
			valid = isEnPassant(pos, c, m)
		}
	}
	if !valid {
		return false
	}
	if m.To.Row == model.PromotionRow(c) {
		return m.Promotion.IsPromotion()
	}
	return true
}

// isEnPassant reports whether a diagonal pawn step onto an empty square
// captures en passant. The mover must stand on its fifth rank next to the
// pawn that just made a double step.
func isEnPassant(pos *model.Position, c model.Color, m model.Move) bool {
	if pos.EnPassantFile != m.To.Col {
		return false
	}
	if m.From.Row != model.HomeRow(c.Opposite())-3*model.PawnDirection(c) {
		return false
	}
	return pos.PieceAt(model.Square{Row: m.From.Row, Col: m.To.Col}).Is(model.Pawn, c.Opposite())
}

// canCastle checks the castling conditions that do not depend on the
// destination square being safe; that is covered by the final check test.
func canCastle(pos *model.Position, c model.Color, m model.Move) bool {
	home := model.HomeRow(c)
	if m.From != (model.Square{Row: home, Col: 4}) || m.To.Row != home {
		return false
	}
	side, rookCol, crossed := model.KingSide, 7, 5
	empties := []int{5, 6}
	if m.To.Col == 2 {
		side, rookCol, crossed = model.QueenSide, 0, 3
		empties = []int{1, 2, 3}
	} else if m.To.Col != 6 {
		return false
	}
	if !pos.Castling[c][side] {
		return false
	}
	if !pos.PieceAt(model.Square{Row: home, Col: rookCol}).Is(model.Rook, c) {
		return false
	}
	for _, col := range empties {
		if !pos.PieceAt(model.Square{Row: home, Col: col}).IsEmpty() {
			return false
		}
	}
	if IsInCheck(pos, c) {
		return false
	}
	return !IsSquareAttacked(pos, model.Square{Row: home, Col: crossed}, c.Opposite())
}

// pathClear reports whether every square strictly between from and to is
// empty. The squares must share a rank, file or diagonal.
func pathClear(pos *model.Position, from, to model.Square) bool {
	step := model.Square{Row: sign(to.Row - from.Row), Col: sign(to.Col - from.Col)}
	for sq := from.Add(step); sq != to; sq = sq.Add(step) {
		if !pos.PieceAt(sq).IsEmpty() {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
