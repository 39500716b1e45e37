package engine

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chessai-backend/internal/model"
)

var (
	ErrMalformedToken = errors.New("malformed move token")
	ErrIllegalMove    = errors.New("illegal move")
)

// ReplayError reports the first token a replay could not apply.
type ReplayError struct {
	Ply   int // 1-based
	Token string
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay: ply %d %q: %v", e.Ply, e.Token, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Replay rebuilds a game from the initial position by playing tokens in
// order. It stops at the first token that does not parse or is not legal and
// returns the game as far as it got together with a *ReplayError.
func Replay(tokens []string) (*Game, error) {
	return ReplayFrom(model.InitialPosition(), tokens)
}

// ReplayFrom is Replay starting from an arbitrary position.
func ReplayFrom(start model.Position, tokens []string) (*Game, error) {
	g := NewGameFrom(start)
	for i, token := range tokens {
		m, err := model.ParseMove(token)
		if err != nil {
			return g, &ReplayError{Ply: i + 1, Token: token, Err: fmt.Errorf("%w: %v", ErrMalformedToken, err)}
		}
		if !g.MakeMove(m) {
			return g, &ReplayError{Ply: i + 1, Token: token, Err: ErrIllegalMove}
		}
	}
	return g, nil
}
