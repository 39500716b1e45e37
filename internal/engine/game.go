package engine

import "github.com/benbeisheim/chessai-backend/internal/model"

// Game pairs a position with its move history. MakeMove, UndoMove and
// RedoMove are the only operations that change the position. A Game is not
// safe for concurrent use.
type Game struct {
	start   model.Position
	pos     model.Position
	history History
}

// NewGame starts a game from the standard initial position.
func NewGame() *Game {
	return NewGameFrom(model.InitialPosition())
}

// NewGameFrom starts a game from an arbitrary position.
func NewGameFrom(pos model.Position) *Game {
	return &Game{start: pos, pos: pos}
}

// Position returns a copy of the current position.
func (g *Game) Position() model.Position {
	return g.pos
}

// StartPosition returns the position the game started from.
func (g *Game) StartPosition() model.Position {
	return g.start
}

func (g *Game) History() *History {
	return &g.history
}

func (g *Game) Turn() model.Color {
	return g.pos.Turn
}

// Reset returns to the start position and discards all history.
func (g *Game) Reset() {
	g.pos = g.start
	g.history.Clear()
}

// MakeMove plays m if it is legal and reports whether it did. Any undone
// moves are discarded.
func (g *Game) MakeMove(m model.Move) bool {
	if !IsLegal(&g.pos, m) {
		return false
	}
	if piece := g.pos.PieceAt(m.From); piece.Type != model.Pawn || m.To.Row != model.PromotionRow(piece.Color) {
		m.Promotion = model.NoPieceType
	}
	before := g.pos
	u := Apply(&g.pos, m)
	g.history.push(Entry{Undo: u, Before: before, Token: m.String()})
	return true
}

// CanUndo reports whether there is an applied move to take back.
func (g *Game) CanUndo() bool { return g.history.CanUndo() }

// CanRedo reports whether an undone move is available to replay.
func (g *Game) CanRedo() bool { return g.history.CanRedo() }

// UndoMove takes back the last applied move. It is a no-op when nothing has
// been played.
func (g *Game) UndoMove() bool {
	if !g.history.CanUndo() {
		return false
	}
	e := g.history.entries[g.history.cursor-1]
	Revert(&g.pos, e.Undo)
	g.history.cursor--
	return true
}

// RedoMove re-applies the next undone move, keeping later undone moves
// available. It is a no-op when there is nothing to redo.
func (g *Game) RedoMove() bool {
	if !g.history.CanRedo() {
		return false
	}
	e := g.history.entries[g.history.cursor]
	g.pos = e.Before
	Apply(&g.pos, e.Move)
	g.history.cursor++
	return true
}

// LastMove returns the most recent applied move, or model.NoMove.
func (g *Game) LastMove() model.Move {
	if !g.history.CanUndo() {
		return model.NoMove
	}
	return g.history.entries[g.history.cursor-1].Move
}

func (g *Game) LegalMoves() model.MoveList {
	return GenerateMoves(&g.pos)
}

func (g *Game) IsLegal(m model.Move) bool {
	return IsLegal(&g.pos, m)
}

func (g *Game) IsInCheck() bool {
	return IsInCheck(&g.pos, g.pos.Turn)
}

func (g *Game) IsCheckmate() bool {
	return IsCheckmate(&g.pos)
}

func (g *Game) IsStalemate() bool {
	return IsStalemate(&g.pos)
}

func (g *Game) IsDraw() bool {
	return IsDraw(&g.pos)
}

func (g *Game) IsThreefoldRepetition() bool {
	return g.history.IsThreefoldRepetition(&g.pos)
}

func (g *Game) Status() Status {
	return StatusOf(&g.pos)
}

// Movetext is the numbered record of the applied moves.
func (g *Game) Movetext() string {
	return g.history.Movetext()
}

// Captured counts the pieces of each color that have been captured in the
// applied moves, indexed by color and piece type.
func (g *Game) Captured() [2][model.King + 1]int {
	var counts [2][model.King + 1]int
	for _, e := range g.history.Done() {
		if !e.Captured.IsEmpty() {
			counts[e.Captured.Color][e.Captured.Type]++
		}
	}
	return counts
}
