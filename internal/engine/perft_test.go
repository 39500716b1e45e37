package engine

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/notnil/chess"

	"github.com/benbeisheim/chessai-backend/internal/model"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func perft(pos *model.Position, depth int) int {
	moves := GenerateMoves(pos)
	if depth == 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		u := Apply(pos, m)
		nodes += perft(pos, depth-1)
		Revert(pos, u)
	}
	return nodes
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		nodes int
	}{
		{"initial depth 1", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1, 20},
		{"initial depth 2", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 2, 400},
		{"initial depth 3", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 3, 8902},
		{"kiwipete depth 1", kiwipete, 1, 48},
		{"kiwipete depth 2", kiwipete, 2, 2039},
		{"en passant pins depth 3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
		{"promotions depth 2", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 2, 264},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			if got := perft(&pos, tt.depth); got != tt.nodes {
				t.Fatalf("perft(%d) = %d, want %d", tt.depth, got, tt.nodes)
			}
		})
	}
}

func uci(m model.Move) string {
	s := m.From.String() + m.To.String()
	if m.Promotion.IsPromotion() {
		s += strings.ToLower(m.Promotion.Letter())
	}
	return s
}

// TestMovesMatchReferenceLibrary plays random games and compares the legal
// move set with github.com/notnil/chess after every ply.
func TestMovesMatchReferenceLibrary(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 10; game++ {
		pos := model.InitialPosition()
		ref := chess.NewGame()
		for ply := 0; ply < 120 && ref.Outcome() == chess.NoOutcome; ply++ {
			ours := GenerateMoves(&pos)
			got := make([]string, len(ours))
			for i, m := range ours {
				got[i] = uci(m)
			}
			valid := ref.ValidMoves()
			want := make([]string, len(valid))
			for i, m := range valid {
				want[i] = m.String()
			}
			sort.Strings(got)
			sort.Strings(want)
			if strings.Join(got, " ") != strings.Join(want, " ") {
				t.Fatalf("game %d ply %d %s:\n got  %v\n want %v", game, ply, pos.FEN(), got, want)
			}
			if len(ours) == 0 {
				break
			}

			m := ours[rng.Intn(len(ours))]
			Apply(&pos, m)
			for _, candidate := range valid {
				if candidate.String() == uci(m) {
					if err := ref.Move(candidate); err != nil {
						t.Fatal(err)
					}
					break
				}
			}
		}
	}
}
