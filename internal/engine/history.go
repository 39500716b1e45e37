package engine

import (
	"strconv"
	"strings"

	"github.com/benbeisheim/chessai-backend/internal/model"
)

// Entry records one executed move: the per-ply Undo plus the full position
// before the move, which redo and repetition detection replay from.
type Entry struct {
	Undo
	Before model.Position
	Token  string
}

func (e Entry) Mover() model.Color {
	return e.Before.Turn
}

// History is a stack of executed moves with a cursor. Entries before the
// cursor are done; entries at or after it were undone and can be redone
// until a new move is made.
type History struct {
	entries []Entry
	cursor  int
}

func (h *History) Len() int {
	return len(h.entries)
}

// Cursor is the number of moves currently applied.
func (h *History) Cursor() int {
	return h.cursor
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)
}

// Done returns the applied entries, oldest first.
func (h *History) Done() []Entry {
	return h.entries[:h.cursor]
}

func (h *History) push(e Entry) {
	h.entries = append(h.entries[:h.cursor], e)
	h.cursor++
}

func (h *History) Clear() {
	h.entries = nil
	h.cursor = 0
}

// Tokens returns the coordinate tokens of the applied moves.
func (h *History) Tokens() []string {
	done := h.Done()
	tokens := make([]string, len(done))
	for i, e := range done {
		tokens[i] = e.Token
	}
	return tokens
}

// Movetext renders the applied moves as numbered movetext:
// "1. e2-e4 e7-e5 2. g1-f3". A record starting with Black uses "1... e7-e5".
func (h *History) Movetext() string {
	var b strings.Builder
	for i, e := range h.Done() {
		if i > 0 {
			b.WriteByte(' ')
		}
		number := strconv.Itoa(e.Before.FullMoveNumber)
		switch {
		case e.Mover() == model.White:
			b.WriteString(number + ". ")
		case i == 0:
			b.WriteString(number + "... ")
		}
		b.WriteString(e.Token)
	}
	return b.String()
}

// IsThreefoldRepetition reports whether current has occurred at least three
// times, counting itself, among the positions of the applied moves with the
// same side to move.
func (h *History) IsThreefoldRepetition(current *model.Position) bool {
	done := h.Done()
	count := 1
	// done[len(done)-k].Before is the position k plies back
	for i := len(done) - 2; i >= 0; i -= 2 {
		if done[i].Before.SameLayout(current) {
			count++
			if count >= 3 {
				return true
			}
		}
	}
	return false
}
