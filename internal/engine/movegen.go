package engine

import "github.com/benbeisheim/chessai-backend/internal/model"

var promotionPieces = [4]model.PieceType{model.Knight, model.Bishop, model.Rook, model.Queen}

// GenerateMoves returns every legal move for the side to move, scanning the
// board from a1 to h8. Promotions are expanded into one move per piece.
func GenerateMoves(pos *model.Position) model.MoveList {
	moves := model.NewMoveList()
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			piece := pos.Board[row][col]
			if piece.IsEmpty() || piece.Color != pos.Turn {
				continue
			}
			moves = appendPieceMoves(moves, pos, piece, model.Square{Row: row, Col: col})
		}
	}
	return moves
}

// GenerateCaptures returns the legal moves whose destination is occupied.
// En-passant captures land on an empty square and are not included.
func GenerateCaptures(pos *model.Position) model.MoveList {
	all := GenerateMoves(pos)
	captures := all[:0]
	for _, m := range all {
		if !pos.PieceAt(m.To).IsEmpty() {
			captures = append(captures, m)
		}
	}
	return captures
}

// HasLegalMove reports whether the side to move has at least one legal move.
// It stops at the first one found.
func HasLegalMove(pos *model.Position) bool {
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			piece := pos.Board[row][col]
			if piece.IsEmpty() || piece.Color != pos.Turn {
				continue
			}
			if len(appendPieceMoves(nil, pos, piece, model.Square{Row: row, Col: col})) > 0 {
				return true
			}
		}
	}
	return false
}

// LegalMovesFrom returns the legal moves of the piece standing on sq.
func LegalMovesFrom(pos *model.Position, sq model.Square) model.MoveList {
	piece := pos.PieceAt(sq)
	if piece.IsEmpty() || piece.Color != pos.Turn {
		return nil
	}
	return appendPieceMoves(nil, pos, piece, sq)
}

func appendPieceMoves(moves model.MoveList, pos *model.Position, piece model.Piece, from model.Square) model.MoveList {
	var targets []model.Square
	switch piece.Type {
	case model.Pawn:
		return appendPawnMoves(moves, pos, piece.Color, from)
	case model.Knight:
		targets = stepTargets(from, knightDirs)
	case model.Bishop:
		targets = rayTargets(pos, from, bishopDirs)
	case model.Rook:
		targets = rayTargets(pos, from, rookDirs)
	case model.Queen:
		targets = rayTargets(pos, from, queenDirs)
	case model.King:
		targets = stepTargets(from, kingDirs)
		home := model.Square{Row: model.HomeRow(piece.Color), Col: 4}
		if from == home {
			targets = append(targets, model.Square{Row: home.Row, Col: 6}, model.Square{Row: home.Row, Col: 2})
		}
	}
	for _, to := range targets {
		m := model.NewMove(from, to)
		if IsLegal(pos, m) {
			moves = append(moves, m)
		}
	}
	return moves
}

func appendPawnMoves(moves model.MoveList, pos *model.Position, c model.Color, from model.Square) model.MoveList {
	dir := model.PawnDirection(c)
	targets := []model.Square{
		{Row: from.Row + dir, Col: from.Col},
		{Row: from.Row + 2*dir, Col: from.Col},
		{Row: from.Row + dir, Col: from.Col - 1},
		{Row: from.Row + dir, Col: from.Col + 1},
	}
	for _, to := range targets {
		if !to.Valid() {
			continue
		}
		if to.Row == model.PromotionRow(c) {
			for _, promo := range promotionPieces {
				m := model.Move{From: from, To: to, Promotion: promo}
				if IsLegal(pos, m) {
					moves = append(moves, m)
				}
			}
			continue
		}
		m := model.NewMove(from, to)
		if IsLegal(pos, m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// stepTargets lists the on-board squares one offset away from sq.
func stepTargets(sq model.Square, dirs []model.Square) []model.Square {
	targets := make([]model.Square, 0, len(dirs))
	for _, dir := range dirs {
		if to := sq.Add(dir); to.Valid() {
			targets = append(targets, to)
		}
	}
	return targets
}

// rayTargets walks each ray up to and including the first occupied square.
func rayTargets(pos *model.Position, sq model.Square, dirs []model.Square) []model.Square {
	var targets []model.Square
	for _, dir := range dirs {
		for to := sq.Add(dir); to.Valid(); to = to.Add(dir) {
			targets = append(targets, to)
			if !pos.PieceAt(to).IsEmpty() {
				break
			}
		}
	}
	return targets
}
