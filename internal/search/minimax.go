package search

import (
	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/eval"
	"github.com/benbeisheim/chessai-backend/internal/model"
)

const (
	// MateScore is returned for a checkmate regardless of its distance.
	MateScore = 10000
	// Infinity bounds every score the search can produce.
	Infinity = 1 << 30
)

// run carries the per-search counters so a Searcher can serve several
// searches at once.
type run struct {
	nodes int
}

// Minimax scores pos searched depth plies deep. The maximizing flag tells
// whether the side to move is the maximizer, and the result is always from
// the maximizer's point of view. pos is restored before returning.
func Minimax(pos *model.Position, depth, alpha, beta int, maximizing bool) int {
	var r run
	return r.minimax(pos, depth, alpha, beta, maximizing)
}

// Quiescence extends the search along captures until the position is quiet.
// The result is from the side to move's point of view and lies within
// [alpha, beta].
func Quiescence(pos *model.Position, alpha, beta int) int {
	var r run
	return r.quiescence(pos, alpha, beta)
}

func (r *run) minimax(pos *model.Position, depth, alpha, beta int, maximizing bool) int {
	r.nodes++
	moves := engine.GenerateMoves(pos)
	if len(moves) == 0 {
		if engine.IsInCheck(pos, pos.Turn) {
			if maximizing {
				return -MateScore
			}
			return MateScore
		}
		return 0
	}
	if engine.IsFiftyMoveDraw(pos) || engine.IsInsufficientMaterial(pos) {
		return 0
	}
	if depth <= 0 {
		if maximizing {
			return r.quiescence(pos, alpha, beta)
		}
		return -r.quiescence(pos, -beta, -alpha)
	}

	if maximizing {
		best := -Infinity
		for _, m := range moves {
			u := engine.Apply(pos, m)
			score := r.minimax(pos, depth-1, alpha, beta, false)
			engine.Revert(pos, u)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, m := range moves {
		u := engine.Apply(pos, m)
		score := r.minimax(pos, depth-1, alpha, beta, true)
		engine.Revert(pos, u)
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

func (r *run) quiescence(pos *model.Position, alpha, beta int) int {
	r.nodes++
	standPat := eval.Evaluate(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	for _, m := range engine.GenerateCaptures(pos) {
		u := engine.Apply(pos, m)
		score := -r.quiescence(pos, -beta, -alpha)
		engine.Revert(pos, u)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
