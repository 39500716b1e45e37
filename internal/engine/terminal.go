package engine

import "github.com/benbeisheim/chessai-backend/internal/model"

// Status is the terminal state of a position, as detected automatically.
type Status string

const (
	StatusOngoing              Status = "ongoing"
	StatusCheckmate            Status = "checkmate"
	StatusStalemate            Status = "stalemate"
	StatusFiftyMove            Status = "fifty-move"
	StatusInsufficientMaterial Status = "insufficient-material"
)

// IsDraw reports whether the status ends the game in a draw.
func (s Status) IsDraw() bool {
	return s == StatusStalemate || s == StatusFiftyMove || s == StatusInsufficientMaterial
}

func (s Status) IsOver() bool {
	return s != StatusOngoing
}

// StatusOf classifies pos. Checkmate takes precedence over the draw rules.
func StatusOf(pos *model.Position) Status {
	if !HasLegalMove(pos) {
		if IsInCheck(pos, pos.Turn) {
			return StatusCheckmate
		}
		return StatusStalemate
	}
	if IsFiftyMoveDraw(pos) {
		return StatusFiftyMove
	}
	if IsInsufficientMaterial(pos) {
		return StatusInsufficientMaterial
	}
	return StatusOngoing
}

func IsCheckmate(pos *model.Position) bool {
	return IsInCheck(pos, pos.Turn) && !HasLegalMove(pos)
}

func IsStalemate(pos *model.Position) bool {
	return !IsInCheck(pos, pos.Turn) && !HasLegalMove(pos)
}

// IsFiftyMoveDraw reports whether fifty full moves passed without a pawn
// move or a capture.
func IsFiftyMoveDraw(pos *model.Position) bool {
	return pos.HalfMoveClock >= 100
}

// IsDraw covers stalemate, the fifty-move rule and insufficient material.
// Threefold repetition is a claimable draw and is checked separately.
func IsDraw(pos *model.Position) bool {
	return IsFiftyMoveDraw(pos) || IsInsufficientMaterial(pos) || IsStalemate(pos)
}

// IsInsufficientMaterial recognises bare kings, a single minor piece against
// a bare king, and bishop against bishop on same-colored squares.
func IsInsufficientMaterial(pos *model.Position) bool {
	var counts [2][model.King + 1]int
	var bishopLight [2]bool
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			pc := pos.Board[row][col]
			if pc.IsEmpty() {
				continue
			}
			counts[pc.Color][pc.Type]++
			if pc.Type == model.Bishop {
				bishopLight[pc.Color] = model.Square{Row: row, Col: col}.IsLight()
			}
		}
	}
	for _, c := range []model.Color{model.White, model.Black} {
		if counts[c][model.Pawn]+counts[c][model.Rook]+counts[c][model.Queen] > 0 {
			return false
		}
	}
	w, b := model.White, model.Black
	minors := func(c model.Color) int { return counts[c][model.Knight] + counts[c][model.Bishop] }

	switch {
	case minors(w) == 0 && minors(b) == 0:
		return true
	case minors(w) == 1 && minors(b) == 0, minors(w) == 0 && minors(b) == 1:
		return true
	case counts[w][model.Bishop] == 1 && counts[b][model.Bishop] == 1 &&
		counts[w][model.Knight] == 0 && counts[b][model.Knight] == 0:
		return bishopLight[w] == bishopLight[b]
	}
	return false
}
