package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/eval"
	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/benbeisheim/chessai-backend/internal/pgn"
	"github.com/benbeisheim/chessai-backend/internal/search"
	"github.com/benbeisheim/chessai-backend/internal/ws"
)

// Outcomes that are decided by the players rather than by the position.
const (
	StatusRepetition engine.Status = "repetition"
	StatusResigned   engine.Status = "resigned"
)

// Side says which colors the human plays. The computer plays the rest.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
	SideBoth  Side = "both"
)

func ParseSide(s string) (Side, error) {
	switch side := Side(s); side {
	case SideWhite, SideBlack, SideBoth:
		return side, nil
	case "":
		return SideWhite, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

func (s Side) Plays(c model.Color) bool {
	return s == SideBoth || s == Side(c.String())
}

// Subscriber receives game state pushes. *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v interface{}) error
}

// Session is one game against the computer.
type Session struct {
	ID         string
	Owner      string
	Human      Side
	Difficulty search.Difficulty
	Created    time.Time

	mu         sync.Mutex
	game       *engine.Game
	generation uint64 // bumped on every visible change; pushes carry it as Version
	thinking   bool
	outcome    engine.Status
	winner     model.Color

	subMu       sync.RWMutex
	subscribers map[Subscriber]string // connection -> player id

	pubMu sync.Mutex // serializes pushes; taken before mu, never after
	sent  uint64     // version of the newest state pushed
}

func newSession(id, owner string, human Side, d search.Difficulty, g *engine.Game) *Session {
	return &Session{
		ID:          id,
		Owner:       owner,
		Human:       human,
		Difficulty:  d,
		Created:     time.Now(),
		game:        g,
		subscribers: make(map[Subscriber]string),
	}
}

// status is the outcome claimed by a player, or else the one detected in
// the position. Callers hold s.mu.
func (s *Session) status() engine.Status {
	if s.outcome != "" {
		return s.outcome
	}
	return s.game.Status()
}

func (s *Session) isOver() bool {
	return s.status().IsOver()
}

// computerToMove reports whether the side to move belongs to the computer.
func (s *Session) computerToMove() bool {
	return !s.Human.Plays(s.game.Turn()) && !s.isOver()
}

func (s *Session) touch() {
	s.generation++
	s.thinking = false
}

// Grid is the board as FEN piece letters, rank 8 first. Empty squares
// are "".
type Grid [model.BoardSize][model.BoardSize]string

// Tally counts captured pieces by type.
type Tally map[model.PieceType]int

// GameState is what clients see of a session.
type GameState struct {
	ID           string                `json:"id"`
	Version      uint64                `json:"version"`
	FEN          string                `json:"fen"`
	Board        Grid                  `json:"board"`
	Turn         model.Color           `json:"turn"`
	Human        Side                  `json:"human"`
	Difficulty   search.Difficulty     `json:"difficulty"`
	LegalMoves   []string              `json:"legalMoves"`
	Check        bool                  `json:"check"`
	Status       engine.Status         `json:"status"`
	Result       string                `json:"result"`
	Winner       *model.Color          `json:"winner,omitempty"`
	CanClaimDraw bool                  `json:"canClaimDraw"`
	Moves        []string              `json:"moves"`
	Movetext     string                `json:"movetext"`
	LastMove     *model.Move           `json:"lastMove,omitempty"`
	CanUndo      bool                  `json:"canUndo"`
	CanRedo      bool                  `json:"canRedo"`
	AIThinking   bool                  `json:"aiThinking"`
	Evaluation   int                   `json:"evaluation"` // centipawns, White's view
	Captured     map[model.Color]Tally `json:"captured"`
}

// stateLocked snapshots the session. Callers hold s.mu.
func (s *Session) stateLocked() GameState {
	pos := s.game.Position()
	status := s.status()
	st := GameState{
		ID:         s.ID,
		Version:    s.generation,
		FEN:        pos.FEN(),
		Turn:       pos.Turn,
		Human:      s.Human,
		Difficulty: s.Difficulty,
		LegalMoves: []string{},
		Check:      s.game.IsInCheck(),
		Status:     status,
		Result:     s.result(),
		Moves:      s.game.History().Tokens(),
		Movetext:   s.game.Movetext(),
		CanUndo:    s.game.History().CanUndo() && s.outcome == "",
		CanRedo:    s.game.History().CanRedo() && s.outcome == "",
		AIThinking: s.thinking,
		Evaluation: eval.Breakdown(&pos).Total(),
		Captured:   make(map[model.Color]Tally),
	}
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			if pc := pos.Board[row][col]; !pc.IsEmpty() {
				st.Board[model.BoardSize-1-row][col] = string(pc.FENChar())
			}
		}
	}
	if !status.IsOver() {
		st.LegalMoves = s.game.LegalMoves().Strings()
		st.CanClaimDraw = s.game.IsThreefoldRepetition()
	}
	switch {
	case status == StatusResigned:
		winner := s.winner
		st.Winner = &winner
	case status == engine.StatusCheckmate:
		winner := pos.Turn.Opposite()
		st.Winner = &winner
	}
	if last := s.game.LastMove(); !last.IsNone() {
		st.LastMove = &last
	}
	captured := s.game.Captured()
	for _, c := range []model.Color{model.White, model.Black} {
		st.Captured[c] = make(Tally)
		for t := model.Pawn; t <= model.King; t++ {
			if n := captured[c][t]; n > 0 {
				st.Captured[c][t] = n
			}
		}
	}
	return st
}

// result is the PGN result token. Callers hold s.mu.
func (s *Session) result() string {
	switch s.status() {
	case engine.StatusCheckmate:
		return winToken(s.game.Turn().Opposite())
	case StatusResigned:
		return winToken(s.winner)
	case StatusRepetition, engine.StatusStalemate, engine.StatusFiftyMove, engine.StatusInsufficientMaterial:
		return pgn.DrawResult
	}
	return pgn.Unfinished
}

func winToken(c model.Color) string {
	if c == model.White {
		return pgn.WhiteWins
	}
	return pgn.BlackWins
}

func (s *Session) subscribe(sub Subscriber, playerID string) {
	s.subMu.Lock()
	s.subscribers[sub] = playerID
	s.subMu.Unlock()
}

func (s *Session) unsubscribe(sub Subscriber) {
	s.subMu.Lock()
	delete(s.subscribers, sub)
	s.subMu.Unlock()
}

func (s *Session) subscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subscribers)
}

// join sends the current state to sub and then subscribes it. No broadcast
// can run in between, so sub never sees an older state after this one.
func (s *Session) join(sub Subscriber, playerID string) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	state := s.stateLocked()
	s.mu.Unlock()

	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return err
	}
	if err := sub.WriteJSON(msg); err != nil {
		return fmt.Errorf("send initial state: %w", err)
	}
	s.subscribe(sub, playerID)
	if state.Version > s.sent {
		s.sent = state.Version
	}
	return nil
}

// broadcast pushes state to every subscriber and drops the ones whose
// write fails. A state older than one already pushed is skipped.
func (s *Session) broadcast(state GameState) []error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if state.Version < s.sent {
		return nil
	}
	s.sent = state.Version

	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return []error{err}
	}

	s.subMu.RLock()
	active := make([]Subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		active = append(active, sub)
	}
	s.subMu.RUnlock()

	var errs []error
	for _, sub := range active {
		if err := sub.WriteJSON(msg); err != nil {
			errs = append(errs, err)
			s.unsubscribe(sub)
		}
	}
	return errs
}
