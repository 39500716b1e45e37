// Package search picks moves with a fixed-depth alpha-beta search and a
// capture-only quiescence extension. Among the root moves that score within
// a small tolerance of the best, one is chosen at random.
package search

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
)

// DefaultTolerance is the score window, in centipawns, below the best root
// score within which moves are considered equally good.
const DefaultTolerance = 10

type Option func(*Searcher)

// WithRand makes move selection draw from r instead of the process-wide
// source. Pass a seeded source for reproducible choices.
func WithRand(r *rand.Rand) Option {
	return func(s *Searcher) {
		s.rng = r
	}
}

// WithTolerance sets the tie window. Zero disables the random choice and
// always returns the first best move in generation order.
func WithTolerance(tolerance int) Option {
	return func(s *Searcher) {
		if tolerance >= 0 {
			s.tolerance = tolerance
		}
	}
}

// Searcher is safe for concurrent use; every search works on its own copy
// of the position.
type Searcher struct {
	tolerance int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result describes a root search.
type Result struct {
	Move       model.Move   `json:"move"`
	Score      int          `json:"score"`
	Depth      int          `json:"depth"`
	Nodes      int          `json:"nodes"`
	Candidates []model.Move `json:"candidates"`
}

// MoveScore is one root move with its exact score for the side to move.
type MoveScore struct {
	Move  model.Move `json:"move"`
	Score int        `json:"score"`
}

var defaultSearcher = NewSearcher()

// SelectMove searches pos at the given difficulty with the default
// Searcher. It returns model.NoMove only when there is no legal move.
func SelectMove(pos model.Position, d Difficulty) model.Move {
	return defaultSearcher.Search(pos, d.Depth()).Move
}

// SelectMove is Search at the depth of difficulty d, returning only the move.
func (s *Searcher) SelectMove(pos model.Position, d Difficulty) model.Move {
	return s.Search(pos, d.Depth()).Move
}

// Search evaluates every root move depth plies deep and picks one of the
// moves within the tolerance of the best score.
func (s *Searcher) Search(pos model.Position, depth int) Result {
	if depth < 1 {
		depth = 1
	}
	res := Result{Move: model.NoMove, Depth: depth}
	moves := engine.GenerateMoves(&pos)
	if len(moves) == 0 {
		return res
	}

	var r run
	scores := make([]int, len(moves))
	best := -Infinity
	for i, m := range moves {
		// exact for every score that can still reach the candidate window
		limit := Infinity
		if best > -Infinity {
			limit = -(best - s.tolerance - 1)
		}
		u := engine.Apply(&pos, m)
		scores[i] = -r.minimax(&pos, depth-1, -Infinity, limit, true)
		engine.Revert(&pos, u)
		if scores[i] > best {
			best = scores[i]
		}
	}

	for i, m := range moves {
		if scores[i] >= best-s.tolerance {
			res.Candidates = append(res.Candidates, m)
		}
	}
	res.Move = res.Candidates[0]
	if len(res.Candidates) > 1 && s.tolerance > 0 {
		res.Move = res.Candidates[s.intn(len(res.Candidates))]
	}
	for i, m := range moves {
		if m == res.Move {
			res.Score = scores[i]
			break
		}
	}
	res.Nodes = r.nodes
	return res
}

// Analyze returns the exact score of every root move, best first. Moves
// with equal scores keep their generation order.
func (s *Searcher) Analyze(pos model.Position, depth int) []MoveScore {
	if depth < 1 {
		depth = 1
	}
	moves := engine.GenerateMoves(&pos)
	out := make([]MoveScore, 0, len(moves))
	var r run
	for _, m := range moves {
		u := engine.Apply(&pos, m)
		score := -r.minimax(&pos, depth-1, -Infinity, Infinity, true)
		engine.Revert(&pos, u)
		out = append(out, MoveScore{Move: m, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (s *Searcher) intn(n int) int {
	if s.rng == nil {
		return rand.Intn(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
