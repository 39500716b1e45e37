package engine

import (
	"testing"

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

func mustMove(t *testing.T, token string) model.Move {
	t.Helper()
	m, err := model.ParseMove(token)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func sq(t *testing.T, name string) model.Square {
	t.Helper()
	s, ok := model.ParseSquare(name)
	if !ok {
		t.Fatalf("bad square %q", name)
	}
	return s
}

func TestInitialMoveCount(t *testing.T) {
	pos := model.InitialPosition()
	moves := GenerateMoves(&pos)
	if len(moves) != 20 {
		t.Fatalf("expected 20 moves, got %d: %v", len(moves), moves.Strings())
	}
	if IsInCheck(&pos, model.White) || IsInCheck(&pos, model.Black) {
		t.Fatal("nobody is in check in the initial position")
	}
}

func TestIsSquareAttacked(t *testing.T) {
	pos := model.InitialPosition()
	tests := []struct {
		square string
		by     model.Color
		want   bool
	}{
		{"e3", model.White, true},  // pawns
		{"f3", model.White, true},  // knight
		{"e4", model.White, false}, // nothing reaches the fourth rank
		{"e6", model.Black, true},
		{"a6", model.Black, true},
		{"e5", model.Black, false},
		{"d2", model.White, true}, // own pieces still count as attackers
	}
	for _, tt := range tests {
		if got := IsSquareAttacked(&pos, sq(t, tt.square), tt.by); got != tt.want {
			t.Errorf("IsSquareAttacked(%s, %s) = %v, want %v", tt.square, tt.by, got, tt.want)
		}
	}
}

func TestSlidingAttacksStopAtFirstPiece(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/R2p3K/8/8/8 w - - 0 1")
	tests := []struct {
		square string
		want   bool
	}{
		{"b4", true},
		{"d4", true},  // the blocker itself
		{"e4", false}, // behind the blocker
		{"g4", true},  // king
		{"a8", true},
	}
	for _, tt := range tests {
		if got := IsSquareAttacked(&pos, sq(t, tt.square), model.White); got != tt.want {
			t.Errorf("IsSquareAttacked(%s) = %v, want %v", tt.square, got, tt.want)
		}
	}
}

func TestIsLegalRejects(t *testing.T) {
	pos := model.InitialPosition()
	tests := []struct {
		name string
		move model.Move
	}{
		{"off board", model.Move{From: model.Square{Row: -1, Col: 0}, To: model.Square{Row: 2, Col: 0}}},
		{"empty source", model.NewMove(sq(t, "e4"), sq(t, "e5"))},
		{"opponent piece", model.NewMove(sq(t, "e7"), sq(t, "e5"))},
		{"own capture", model.NewMove(sq(t, "a1"), sq(t, "a2"))},
		{"blocked slider", model.NewMove(sq(t, "f1"), sq(t, "c4"))},
		{"pawn triple step", model.NewMove(sq(t, "e2"), sq(t, "e5"))},
		{"pawn diagonal onto empty", model.NewMove(sq(t, "e2"), sq(t, "d3"))},
		{"knight wrong shape", model.NewMove(sq(t, "g1"), sq(t, "g3"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := pos
			if IsLegal(&pos, tt.move) {
				t.Fatalf("%s accepted", tt.move)
			}
			if pos != before {
				t.Fatal("IsLegal mutated the position")
			}
		})
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	pos := mustFEN(t, "4k3/4r3/8/8/8/8/4N3/4K3 w - - 0 1")
	if moves := LegalMovesFrom(&pos, sq(t, "e2")); len(moves) != 0 {
		t.Fatalf("pinned knight has moves: %v", moves.Strings())
	}
}

func TestKingsOnly(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if !IsInsufficientMaterial(&pos) {
		t.Fatal("bare kings should be insufficient material")
	}
	if moves := GenerateMoves(&pos); len(moves) != 5 {
		t.Fatalf("expected 5 king moves, got %v", moves.Strings())
	}
	if !IsDraw(&pos) {
		t.Fatal("bare kings should be a draw")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},
		{"4kb2/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/2B1K1b1 w - - 0 1", true},  // both bishops on dark squares
		{"4k3/8/8/8/8/8/8/2B1Kb2 w - - 0 1", false},  // opposite colors
		{"4k3/8/8/8/8/8/8/3NKN2 w - - 0 1", false},   // two knights
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},   // pawn
		{"4k3/8/8/8/8/8/8/R3K3 w - - 0 1", false},    // rook
		{"4k1n1/8/8/8/8/8/8/2B1K3 w - - 0 1", false}, // bishop against knight
	}
	for _, tt := range tests {
		pos := mustFEN(t, tt.fen)
		if got := IsInsufficientMaterial(&pos); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.fen, got, tt.want)
		}
	}
}

func TestStalemateAndFiftyMove(t *testing.T) {
	pos := mustFEN(t, "k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	if !IsStalemate(&pos) || IsCheckmate(&pos) {
		t.Fatal("expected stalemate")
	}
	if StatusOf(&pos) != StatusStalemate || !StatusOf(&pos).IsDraw() {
		t.Fatalf("unexpected status %s", StatusOf(&pos))
	}

	pos = mustFEN(t, "4k3/8/8/8/8/8/4P3/4K2R w - - 100 80")
	if !IsFiftyMoveDraw(&pos) || !IsDraw(&pos) {
		t.Fatal("half-move clock of 100 should be a draw")
	}
	pos.HalfMoveClock = 99
	if IsFiftyMoveDraw(&pos) {
		t.Fatal("99 half-moves is not yet a draw")
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		move  string
		legal bool
	}{
		{"king side", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1-g1", true},
		{"queen side", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1-c1", true},
		{"black king side", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8-g8", true},
		{"no right", "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", "e1-g1", false},
		{"blocked", "r3k2r/8/8/8/8/8/8/R2QK2R w KQkq - 0 1", "e1-c1", false},
		{"b-file blocked", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", "e1-c1", false},
		{"in check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", "e1-g1", false},
		{"crossing attacked", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", "e1-g1", false},
		{"landing attacked", "r3k2r/8/8/8/8/8/6r1/R3K2R w KQkq - 0 1", "e1-g1", false},
		{"b1 attacked is fine", "r3k2r/8/8/8/8/8/1r6/R3K2R w KQkq - 0 1", "e1-c1", true},
		{"rook missing", "r3k2r/8/8/8/8/8/8/R3K3 w KQkq - 0 1", "e1-g1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			if got := IsLegal(&pos, mustMove(t, tt.move)); got != tt.legal {
				t.Fatalf("IsLegal(%s) = %v, want %v", tt.move, got, tt.legal)
			}
		})
	}
}

func TestCastlingMovesRook(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	before := pos
	u := Apply(&pos, mustMove(t, "e1-c1"))
	if !pos.PieceAt(sq(t, "d1")).Is(model.Rook, model.White) || !pos.PieceAt(sq(t, "a1")).IsEmpty() {
		t.Fatalf("rook not relocated:\n%s", pos.Draw())
	}
	if pos.Castling[model.White] != [2]bool{} {
		t.Fatal("white castling rights should be gone")
	}
	if pos.Castling[model.Black] != [2]bool{true, true} {
		t.Fatal("black castling rights should be untouched")
	}
	Revert(&pos, u)
	if pos != before {
		t.Fatal("revert did not restore the position")
	}
}

func TestRookCaptureRevokesRights(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	Apply(&pos, mustMove(t, "a1-a8"))
	want := [2][2]bool{
		model.White: {model.QueenSide: false, model.KingSide: true},
		model.Black: {model.QueenSide: false, model.KingSide: true},
	}
	if pos.Castling != want {
		t.Fatalf("castling rights %v, want %v", pos.Castling, want)
	}
}

func TestEnPassant(t *testing.T) {
	g := NewGame()
	for _, token := range []string{"e2-e4", "a7-a6", "e4-e5", "d7-d5"} {
		if !g.MakeMove(mustMove(t, token)) {
			t.Fatalf("%s rejected", token)
		}
	}
	pos := g.Position()
	if pos.EnPassantFile != 3 {
		t.Fatalf("en-passant file %d, want 3", pos.EnPassantFile)
	}
	capture := mustMove(t, "e5-d6")
	if !IsLegal(&pos, capture) {
		t.Fatal("en-passant capture should be legal")
	}
	if !g.MakeMove(capture) {
		t.Fatal("en-passant capture rejected")
	}
	pos = g.Position()
	if !pos.PieceAt(sq(t, "d5")).IsEmpty() || !pos.PieceAt(sq(t, "d6")).Is(model.Pawn, model.White) {
		t.Fatalf("en passant not applied:\n%s", pos.Draw())
	}
	if pos.EnPassantFile != model.NoFile {
		t.Fatal("en-passant file should be cleared")
	}
	g.UndoMove()
	pos = g.Position()
	if !pos.PieceAt(sq(t, "d5")).Is(model.Pawn, model.Black) || !pos.PieceAt(sq(t, "d6")).IsEmpty() {
		t.Fatalf("undo did not restore the captured pawn:\n%s", pos.Draw())
	}
}

func TestEnPassantExpires(t *testing.T) {
	g := NewGame()
	for _, token := range []string{"e2-e4", "a7-a6", "e4-e5", "d7-d5", "h2-h3", "h7-h6"} {
		if !g.MakeMove(mustMove(t, token)) {
			t.Fatalf("%s rejected", token)
		}
	}
	if g.IsLegal(mustMove(t, "e5-d6")) {
		t.Fatal("en passant is only available immediately")
	}
}

func TestPromotion(t *testing.T) {
	pos := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	moves := LegalMovesFrom(&pos, sq(t, "a7"))
	if len(moves) != 4 {
		t.Fatalf("expected 4 promotion moves, got %v", moves.Strings())
	}
	if IsLegal(&pos, model.NewMove(sq(t, "a7"), sq(t, "a8"))) {
		t.Fatal("promotion without a piece should be illegal")
	}
	if IsLegal(&pos, model.Move{From: sq(t, "a7"), To: sq(t, "a8"), Promotion: model.King}) {
		t.Fatal("promotion to a king should be illegal")
	}

	g := NewGameFrom(pos)
	if !g.MakeMove(mustMove(t, "a7-a8=N")) {
		t.Fatal("underpromotion rejected")
	}
	after := g.Position()
	if !after.PieceAt(sq(t, "a8")).Is(model.Knight, model.White) {
		t.Fatalf("expected a knight on a8:\n%s", after.Draw())
	}
	g.UndoMove()
	if g.Position() != pos {
		t.Fatal("undo did not demote the piece")
	}
}

func TestFoolsMate(t *testing.T) {
	g := NewGame()
	for _, token := range []string{"f2-f3", "e7-e5", "g2-g4", "d8-h4"} {
		if !g.MakeMove(mustMove(t, token)) {
			t.Fatalf("%s rejected", token)
		}
	}
	pos := g.Position()
	if !IsCheckmate(&pos) {
		t.Fatalf("expected checkmate:\n%s", pos.Draw())
	}
	if n := len(GenerateMoves(&pos)); n != 0 {
		t.Fatalf("expected no legal moves, got %d", n)
	}
	if g.Status() != StatusCheckmate || IsDraw(&pos) {
		t.Fatalf("unexpected status %s", g.Status())
	}
}

func TestThreePlyOpening(t *testing.T) {
	g := NewGame()
	for _, token := range []string{"e2-e4", "e7-e5", "g1-f3"} {
		if !g.MakeMove(mustMove(t, token)) {
			t.Fatalf("%s rejected", token)
		}
	}
	if g.IsInCheck() || g.Status().IsOver() || len(g.LegalMoves()) == 0 {
		t.Fatal("position after 1.e4 e5 2.Nf3 should be an ordinary position")
	}
}
