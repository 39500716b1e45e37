package model

import (
	"encoding/json"
	"testing"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		token string
		want  Move
		ok    bool
	}{
		{"e2-e4", Move{From: Square{Row: 1, Col: 4}, To: Square{Row: 3, Col: 4}}, true},
		{"a7-a8=Q", Move{From: Square{Row: 6, Col: 0}, To: Square{Row: 7, Col: 0}, Promotion: Queen}, true},
		{"h2-h1=N", Move{From: Square{Row: 1, Col: 7}, To: Square{Row: 0, Col: 7}, Promotion: Knight}, true},
		{"e2e4", NoMove, false},
		{"e2-e9", NoMove, false},
		{"i2-i4", NoMove, false},
		{"a7-a8=K", NoMove, false},
		{"a7-a8=q", NoMove, false},
		{"a7-a8Q", NoMove, false},
		{"", NoMove, false},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.token)
		if (err == nil) != tt.ok {
			t.Errorf("ParseMove(%q) error = %v, want ok=%v", tt.token, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMove(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
		if tt.ok && got.String() != tt.token {
			t.Errorf("String() = %q, want %q", got.String(), tt.token)
		}
	}
}

func TestMoveJSON(t *testing.T) {
	m := Move{From: Square{Row: 6, Col: 4}, To: Square{Row: 7, Col: 4}, Promotion: Rook}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"e7-e8=R"` {
		t.Fatalf("marshalled %s", data)
	}
	var back Move
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != m {
		t.Fatalf("unmarshalled %+v", back)
	}
	if NoMove.String() != "--" || !NoMove.IsNone() {
		t.Fatal("NoMove should render as --")
	}
}

func TestSquare(t *testing.T) {
	for _, name := range []string{"a1", "h8", "e4", "d5"} {
		sq, ok := ParseSquare(name)
		if !ok || sq.String() != name {
			t.Errorf("round trip of %s gave %s", name, sq)
		}
	}
	for _, name := range []string{"", "a0", "a9", "z1", "e44"} {
		if _, ok := ParseSquare(name); ok {
			t.Errorf("ParseSquare(%q) accepted", name)
		}
	}
	a1, _ := ParseSquare("a1")
	h1, _ := ParseSquare("h1")
	if a1.IsLight() || !h1.IsLight() {
		t.Fatal("a1 is dark and h1 is light")
	}
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestInitialPositionFEN(t *testing.T) {
	pos := InitialPosition()
	if got := pos.FEN(); got != startFEN {
		t.Fatalf("FEN() = %q", got)
	}
	parsed, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != pos {
		t.Fatal("parsed start position differs from InitialPosition")
	}
	if k, ok := pos.KingSquare(Black); !ok || k.String() != "e8" {
		t.Fatalf("black king at %s", k)
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"8/8/8/8/8/8/8/K6k b - - 42 90",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("%s: %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("round trip of %q gave %q", fen, got)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	for _, fen := range []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
	} {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) accepted", fen)
		}
	}
}

func TestSameLayoutIgnoresMovedFlag(t *testing.T) {
	a := InitialPosition()
	b := InitialPosition()
	b.Board[0][0].HasMoved = true
	if !a.SameLayout(&b) {
		t.Fatal("moved flags should not matter")
	}
	b.EnPassantFile = 4
	if a.SameLayout(&b) {
		t.Fatal("en-passant file should matter")
	}
}

func TestPieceFENChar(t *testing.T) {
	if NewPiece(Knight, White).FENChar() != 'N' || NewPiece(Queen, Black).FENChar() != 'q' {
		t.Fatal("unexpected FEN letters")
	}
	if PieceTypeFromLetter('x') != NoPieceType {
		t.Fatal("x is not a piece")
	}
}
