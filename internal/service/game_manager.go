// service/game_manager.go
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/benbeisheim/chessai-backend/internal/search"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrTooManyGames  = errors.New("too many games in progress")
	ErrNotPlayer     = errors.New("not the owner of this game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game is over")
	ErrAIThinking    = errors.New("computer is thinking")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrDrawRefused   = errors.New("no threefold repetition to claim")
)

// GameManager owns the sessions and runs the computer's searches.
type GameManager struct {
	games    map[string]*Session
	mu       sync.RWMutex
	maxGames int
	searcher *search.Searcher
	think    func(pos model.Position, depth int) search.Result
	log      zerolog.Logger
	wg       sync.WaitGroup
}

func NewGameManager(log zerolog.Logger, searcher *search.Searcher, maxGames int) *GameManager {
	return &GameManager{
		games:    make(map[string]*Session),
		maxGames: maxGames,
		searcher: searcher,
		think:    searcher.Search,
		log:      log,
	}
}

// AddGame registers s and lets the computer open if it plays the side to
// move.
func (gm *GameManager) AddGame(s *Session) error {
	gm.mu.Lock()
	if _, exists := gm.games[s.ID]; exists {
		gm.mu.Unlock()
		return ErrGameExists
	}
	if gm.maxGames > 0 && len(gm.games) >= gm.maxGames {
		gm.mu.Unlock()
		return ErrTooManyGames
	}
	gm.games[s.ID] = s
	gm.mu.Unlock()

	s.mu.Lock()
	gm.scheduleLocked(s)
	s.mu.Unlock()
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return s, nil
}

func (gm *GameManager) RemoveGame(gameID, playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	s, exists := gm.games[gameID]
	if !exists {
		return ErrGameNotFound
	}
	if s.Owner != playerID {
		return ErrNotPlayer
	}
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	delete(gm.games, gameID)
	return nil
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Wait blocks until every running search has finished.
func (gm *GameManager) Wait() {
	gm.wg.Wait()
}

func (gm *GameManager) GetGameState(gameID string) (GameState, error) {
	s, err := gm.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(), nil
}

func (gm *GameManager) MakeMove(gameID, playerID, token string) (GameState, error) {
	return gm.update(gameID, playerID, func(s *Session) error {
		if s.isOver() {
			return ErrGameOver
		}
		if !s.Human.Plays(s.game.Turn()) {
			return ErrNotYourTurn
		}
		if s.thinking {
			return ErrAIThinking
		}
		m, err := model.ParseMove(token)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIllegalMove, err)
		}
		if !s.game.MakeMove(m) {
			return fmt.Errorf("%w: %s", ErrIllegalMove, m)
		}
		s.touch()
		return nil
	})
}

// Undo takes back the last move. Against the computer it keeps going until
// the human is to move again, cancelling a search in progress.
func (gm *GameManager) Undo(gameID, playerID string) (GameState, error) {
	return gm.update(gameID, playerID, func(s *Session) error {
		if s.outcome != "" {
			return ErrGameOver
		}
		if !s.game.UndoMove() {
			return ErrNothingToUndo
		}
		for !s.Human.Plays(s.game.Turn()) && s.game.UndoMove() {
		}
		s.touch()
		return nil
	})
}

func (gm *GameManager) Redo(gameID, playerID string) (GameState, error) {
	return gm.update(gameID, playerID, func(s *Session) error {
		if s.outcome != "" {
			return ErrGameOver
		}
		if s.thinking {
			return ErrAIThinking
		}
		if !s.game.RedoMove() {
			return ErrNothingToRedo
		}
		for !s.Human.Plays(s.game.Turn()) && s.game.RedoMove() {
		}
		s.touch()
		return nil
	})
}

// RequestAIMove has the computer play the side to move, whoever owns it.
func (gm *GameManager) RequestAIMove(gameID, playerID string) (GameState, error) {
	return gm.update(gameID, playerID, func(s *Session) error {
		if s.isOver() {
			return ErrGameOver
		}
		if s.thinking {
			return ErrAIThinking
		}
		gm.startAI(s)
		return nil
	})
}

// Resign ends the game in favour of the computer. In a two-player session
// the side to move resigns.
func (gm *GameManager) Resign(gameID, playerID string) (GameState, error) {
	return gm.update(gameID, playerID, func(s *Session) error {
		if s.isOver() {
			return ErrGameOver
		}
		loser := s.game.Turn()
		switch s.Human {
		case SideWhite:
			loser = model.White
		case SideBlack:
			loser = model.Black
		}
		s.touch()
		s.outcome = StatusResigned
		s.winner = loser.Opposite()
		return nil
	})
}

// ClaimDraw ends the game as drawn when the position has occurred three
// times.
func (gm *GameManager) ClaimDraw(gameID, playerID string) (GameState, error) {
	return gm.update(gameID, playerID, func(s *Session) error {
		if s.isOver() {
			return ErrGameOver
		}
		if !s.game.IsThreefoldRepetition() {
			return ErrDrawRefused
		}
		s.touch()
		s.outcome = StatusRepetition
		return nil
	})
}

func (gm *GameManager) RegisterConnection(gameID, playerID string, sub Subscriber) error {
	s, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return s.join(sub, playerID)
}

func (gm *GameManager) UnregisterConnection(gameID string, sub Subscriber) {
	s, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	s.unsubscribe(sub)
}

// update runs fn on the owner's session under its lock, starts the
// computer if it is now to move and pushes the new state.
func (gm *GameManager) update(gameID, playerID string, fn func(*Session) error) (GameState, error) {
	s, err := gm.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	if s.Owner != playerID {
		return GameState{}, ErrNotPlayer
	}

	s.mu.Lock()
	if err := fn(s); err != nil {
		s.mu.Unlock()
		return GameState{}, err
	}
	gm.scheduleLocked(s)
	state := s.stateLocked()
	s.mu.Unlock()

	gm.publish(s, state)
	return state, nil
}

func (gm *GameManager) scheduleLocked(s *Session) {
	if s.computerToMove() && !s.thinking {
		gm.startAI(s)
	}
}

// startAI searches a snapshot of the position in the background. The move
// is applied only if the session has not changed in the meantime.
// Callers hold s.mu.
func (gm *GameManager) startAI(s *Session) {
	s.thinking = true
	s.generation++
	generation := s.generation
	pos := s.game.Position()
	depth := s.Difficulty.Depth()

	gm.wg.Add(1)
	go func() {
		defer gm.wg.Done()
		start := time.Now()
		res := gm.think(pos, depth)

		s.mu.Lock()
		if s.generation != generation {
			s.mu.Unlock()
			gm.log.Debug().Str("game", s.ID).Msg("discarded stale search result")
			return
		}
		s.thinking = false
		s.generation++
		if !res.Move.IsNone() {
			s.game.MakeMove(res.Move)
		}
		state := s.stateLocked()
		s.mu.Unlock()

		gm.log.Info().
			Str("game", s.ID).
			Stringer("move", res.Move).
			Int("score", res.Score).
			Int("depth", res.Depth).
			Int("nodes", res.Nodes).
			Int("candidates", len(res.Candidates)).
			Dur("elapsed", time.Since(start)).
			Msg("computer moved")
		gm.publish(s, state)
	}()
}

func (gm *GameManager) publish(s *Session, state GameState) {
	for _, err := range s.broadcast(state) {
		gm.log.Warn().Err(err).Str("game", s.ID).Msg("dropped subscriber")
	}
}
