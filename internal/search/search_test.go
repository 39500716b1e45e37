package search

import (
	"math/rand"
	"testing"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
)

func mustFEN(t *testing.T, fen string) model.Position {
	t.Helper()
	pos, err := model.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

// randomPositions walks random games from the initial position and returns
// the positions reached.
func randomPositions(seed int64, games, plies int) []model.Position {
	rng := rand.New(rand.NewSource(seed))
	var out []model.Position
	for g := 0; g < games; g++ {
		pos := model.InitialPosition()
		for p := 0; p < plies; p++ {
			moves := engine.GenerateMoves(&pos)
			if len(moves) == 0 {
				break
			}
			engine.Apply(&pos, moves[rng.Intn(len(moves))])
		}
		out = append(out, pos)
	}
	return out
}

// bruteForce is a full-width negamax with the same leaves and terminal
// scores as the pruned search, from the side to move's point of view.
func bruteForce(pos *model.Position, depth int) int {
	moves := engine.GenerateMoves(pos)
	if len(moves) == 0 {
		if engine.IsInCheck(pos, pos.Turn) {
			return -MateScore
		}
		return 0
	}
	if engine.IsFiftyMoveDraw(pos) || engine.IsInsufficientMaterial(pos) {
		return 0
	}
	if depth <= 0 {
		return Quiescence(pos, -Infinity, Infinity)
	}
	best := -Infinity
	for _, m := range moves {
		u := engine.Apply(pos, m)
		score := -bruteForce(pos, depth-1)
		engine.Revert(pos, u)
		if score > best {
			best = score
		}
	}
	return best
}

func TestSearchReturnsLegalMove(t *testing.T) {
	s := NewSearcher(WithRand(rand.New(rand.NewSource(1))))
	for _, pos := range randomPositions(3, 6, 12) {
		before := pos
		res := s.Search(pos, Easy.Depth())
		if len(engine.GenerateMoves(&pos)) == 0 {
			if !res.Move.IsNone() {
				t.Fatalf("move %s returned without legal moves", res.Move)
			}
			continue
		}
		if res.Move.IsNone() {
			t.Fatalf("no move returned in %s", pos.FEN())
		}
		if !engine.IsLegal(&pos, res.Move) {
			t.Fatalf("illegal move %s in %s", res.Move, pos.FEN())
		}
		if pos != before {
			t.Fatal("search changed the caller's position")
		}
		if res.Nodes == 0 {
			t.Fatal("node counter not updated")
		}
	}
}

func TestSearchWithoutLegalMoves(t *testing.T) {
	for _, fen := range []string{
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", // checkmated
		"k7/8/1Q6/8/8/8/8/7K b - - 0 1",                                   // stalemated
	} {
		pos := mustFEN(t, fen)
		if m := SelectMove(pos, Medium); !m.IsNone() {
			t.Fatalf("%s: expected NoMove, got %s", fen, m)
		}
	}
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		fen  string
		want string
	}{
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1-a8"},
		{"r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8-a1"},
	}
	s := NewSearcher(WithRand(rand.New(rand.NewSource(5))))
	for _, tt := range tests {
		for _, d := range []Difficulty{Easy, Medium} {
			res := s.Search(mustFEN(t, tt.fen), d.Depth())
			if res.Move.String() != tt.want {
				t.Fatalf("%s at %s: got %s (%d), want %s", tt.fen, d, res.Move, res.Score, tt.want)
			}
			if res.Score != MateScore {
				t.Fatalf("%s: score %d, want %d", tt.fen, res.Score, MateScore)
			}
		}
	}
}

func TestQuiescenceStaysInWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, pos := range randomPositions(9, 8, 16) {
		before := pos
		full := Quiescence(&pos, -Infinity, Infinity)
		for i := 0; i < 4; i++ {
			alpha := rng.Intn(1200) - 600
			beta := alpha + 1 + rng.Intn(400)
			got := Quiescence(&pos, alpha, beta)
			if got < alpha || got > beta {
				t.Fatalf("Quiescence(%d, %d) = %d in %s", alpha, beta, got, pos.FEN())
			}
			if full > alpha && full < beta && got != full {
				t.Fatalf("window (%d, %d) changed exact score %d to %d", alpha, beta, full, got)
			}
		}
		if pos != before {
			t.Fatal("quiescence changed the position")
		}
	}
}

func TestPrunedSearchMatchesBruteForce(t *testing.T) {
	s := NewSearcher(WithTolerance(0))
	for _, pos := range randomPositions(17, 5, 8) {
		want := make(map[model.Move]int)
		best := -Infinity
		for _, m := range engine.GenerateMoves(&pos) {
			u := engine.Apply(&pos, m)
			score := -bruteForce(&pos, 1)
			engine.Revert(&pos, u)
			want[m] = score
			if score > best {
				best = score
			}
		}
		if len(want) == 0 {
			continue
		}

		for _, ms := range s.Analyze(pos, 2) {
			if ms.Score != want[ms.Move] {
				t.Fatalf("%s in %s: analyze %d, brute force %d", ms.Move, pos.FEN(), ms.Score, want[ms.Move])
			}
		}
		res := s.Search(pos, 2)
		if res.Score != best || want[res.Move] != best {
			t.Fatalf("search picked %s (%d), best is %d in %s", res.Move, res.Score, best, pos.FEN())
		}
	}
}

func TestMinimaxPerspective(t *testing.T) {
	// white to move and already mated: the maximizer has lost
	pos := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if got := Minimax(&pos, 2, -Infinity, Infinity, true); got != -MateScore {
		t.Fatalf("maximizer mated: %d", got)
	}
	if got := Minimax(&pos, 2, -Infinity, Infinity, false); got != MateScore {
		t.Fatalf("minimizer mated: %d", got)
	}
	draw := mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if got := Minimax(&draw, 3, -Infinity, Infinity, true); got != 0 {
		t.Fatalf("insufficient material scored %d", got)
	}
}

func TestCandidatesWithinTolerance(t *testing.T) {
	s := NewSearcher(WithRand(rand.New(rand.NewSource(2))), WithTolerance(Infinity/2))
	res := s.Search(model.InitialPosition(), 1)
	if len(res.Candidates) != 20 {
		t.Fatalf("a huge tolerance should keep every move, got %d", len(res.Candidates))
	}

	s = NewSearcher(WithTolerance(0))
	first := s.Search(model.InitialPosition(), 2)
	second := s.Search(model.InitialPosition(), 2)
	if first.Move != first.Candidates[0] || first.Move != second.Move {
		t.Fatalf("zero tolerance should be deterministic: %s then %s", first.Move, second.Move)
	}
}

func TestDifficulty(t *testing.T) {
	for _, d := range Difficulties {
		parsed, err := ParseDifficulty(d.String())
		if err != nil || parsed != d {
			t.Fatalf("ParseDifficulty(%q) = %v, %v", d.String(), parsed, err)
		}
	}
	if d, err := ParseDifficulty(" Hard "); err != nil || d.Depth() != 4 {
		t.Fatalf("ParseDifficulty(Hard) = %v, %v", d, err)
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Fatal("unknown difficulty accepted")
	}
	for i := 1; i < len(Difficulties); i++ {
		if Difficulties[i].Depth() <= Difficulties[i-1].Depth() {
			t.Fatal("difficulties must deepen monotonically")
		}
	}
}
