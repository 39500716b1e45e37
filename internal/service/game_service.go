package service

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
	"github.com/benbeisheim/chessai-backend/internal/pgn"
	"github.com/benbeisheim/chessai-backend/internal/render"
	"github.com/benbeisheim/chessai-backend/internal/search"
)

var (
	ErrInvalidOptions = errors.New("invalid game options")
	ErrInvalidRecord  = errors.New("invalid game record")
	ErrInvalidDepth   = errors.New("invalid analysis depth")
)

// CreateOptions configures a new session. Zero values pick the defaults:
// the human plays White from the initial position.
type CreateOptions struct {
	Human      Side              `json:"human"`
	Difficulty search.Difficulty `json:"difficulty"`
	FEN        string            `json:"fen"`
}

type GameService struct {
	gameManager       *GameManager
	searcher          *search.Searcher
	defaultDifficulty search.Difficulty
	log               zerolog.Logger
}

func NewGameService(gameManager *GameManager, defaultDifficulty search.Difficulty, log zerolog.Logger) *GameService {
	return &GameService{
		gameManager:       gameManager,
		searcher:          gameManager.searcher,
		defaultDifficulty: defaultDifficulty,
		log:               log,
	}
}

func (gs *GameService) Manager() *GameManager {
	return gs.gameManager
}

func (gs *GameService) CreateGame(playerID string, opts CreateOptions) (GameState, error) {
	start := model.InitialPosition()
	if opts.FEN != "" {
		pos, err := model.ParseFEN(opts.FEN)
		if err != nil {
			return GameState{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		start = pos
	}
	return gs.open(playerID, opts, engine.NewGameFrom(start))
}

// ImportPGN starts a session from a game record. A record that does not
// replay cleanly is rejected as a whole.
func (gs *GameService) ImportPGN(playerID string, r io.Reader, opts CreateOptions) (GameState, error) {
	rec, err := pgn.Read(r)
	if err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return gs.open(playerID, opts, rec.Game)
}

func (gs *GameService) open(playerID string, opts CreateOptions, g *engine.Game) (GameState, error) {
	human, err := ParseSide(string(opts.Human))
	if err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	difficulty := opts.Difficulty
	if difficulty == 0 {
		difficulty = gs.defaultDifficulty
	}
	if !difficulty.Valid() {
		return GameState{}, fmt.Errorf("%w: difficulty %d", ErrInvalidOptions, int(difficulty))
	}

	s := newSession(uuid.New().String(), playerID, human, difficulty, g)
	if err := gs.gameManager.AddGame(s); err != nil {
		return GameState{}, fmt.Errorf("failed to create game: %w", err)
	}
	gs.log.Info().
		Str("game", s.ID).
		Str("player", playerID).
		Str("human", string(human)).
		Stringer("difficulty", difficulty).
		Int("plies", g.History().Len()).
		Msg("game created")

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(), nil
}

func (gs *GameService) DeleteGame(gameID, playerID string) error {
	if err := gs.gameManager.RemoveGame(gameID, playerID); err != nil {
		return err
	}
	gs.log.Info().Str("game", gameID).Msg("game deleted")
	return nil
}

func (gs *GameService) GetGameState(gameID string) (GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(gameID, playerID, token string) (GameState, error) {
	return gs.gameManager.MakeMove(gameID, playerID, token)
}

func (gs *GameService) Undo(gameID, playerID string) (GameState, error) {
	return gs.gameManager.Undo(gameID, playerID)
}

func (gs *GameService) Redo(gameID, playerID string) (GameState, error) {
	return gs.gameManager.Redo(gameID, playerID)
}

func (gs *GameService) RequestAIMove(gameID, playerID string) (GameState, error) {
	return gs.gameManager.RequestAIMove(gameID, playerID)
}

func (gs *GameService) Resign(gameID, playerID string) (GameState, error) {
	state, err := gs.gameManager.Resign(gameID, playerID)
	if err == nil {
		gs.log.Info().Str("game", gameID).Str("result", state.Result).Msg("player resigned")
	}
	return state, err
}

func (gs *GameService) ClaimDraw(gameID, playerID string) (GameState, error) {
	return gs.gameManager.ClaimDraw(gameID, playerID)
}

// Hint searches the current position at the session's difficulty without
// playing the move.
func (gs *GameService) Hint(gameID string) (search.Result, error) {
	pos, difficulty, err := gs.snapshot(gameID)
	if err != nil {
		return search.Result{}, err
	}
	return gs.searcher.Search(pos, difficulty.Depth()), nil
}

// Analyze scores every legal move depth plies deep. Zero means the
// session's difficulty.
func (gs *GameService) Analyze(gameID string, depth int) ([]search.MoveScore, error) {
	pos, difficulty, err := gs.snapshot(gameID)
	if err != nil {
		return nil, err
	}
	if depth == 0 {
		depth = difficulty.Depth()
	}
	if depth < 1 || depth > search.Expert.Depth() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}
	return gs.searcher.Analyze(pos, depth), nil
}

func (gs *GameService) snapshot(gameID string) (model.Position, search.Difficulty, error) {
	s, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.Position{}, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isOver() {
		return model.Position{}, 0, ErrGameOver
	}
	return s.game.Position(), s.Difficulty, nil
}

// ExportPGN writes the session as a game record.
func (gs *GameService) ExportPGN(gameID string, w io.Writer) error {
	s, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	computer := fmt.Sprintf("Computer (%s)", s.Difficulty)
	white, black := "Human", computer
	switch s.Human {
	case SideBlack:
		white, black = computer, "Human"
	case SideBoth:
		black = "Human"
	}
	tags := pgn.Tags{
		{Name: "Event", Value: "Game against the computer"},
		{Name: "White", Value: white},
		{Name: "Black", Value: black},
		{Name: "Result", Value: s.result()},
	}
	if s.outcome == StatusResigned {
		tags = tags.Set("Termination", "resignation")
	}
	return pgn.Write(w, s.game, tags)
}

// BoardSVG draws the current position from the human's side of the board.
func (gs *GameService) BoardSVG(gameID string, w io.Writer) error {
	s, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	pos := s.game.Position()
	last := s.game.LastMove()
	flipped := s.Human == SideBlack
	s.mu.Unlock()

	return render.Board(w, &pos, render.Options{
		LastMove:    last,
		Flipped:     flipped,
		Coordinates: true,
	})
}

func (gs *GameService) RegisterConnection(gameID, playerID string, sub Subscriber) error {
	if err := gs.gameManager.RegisterConnection(gameID, playerID, sub); err != nil {
		return err
	}
	gs.log.Debug().Str("game", gameID).Str("player", playerID).Msg("connection registered")
	return nil
}

func (gs *GameService) UnregisterConnection(gameID, playerID string, sub Subscriber) {
	gs.gameManager.UnregisterConnection(gameID, sub)
	gs.log.Debug().Str("game", gameID).Str("player", playerID).Msg("connection unregistered")
}
