package model

import (
	"fmt"
	"strings"
)

// MaxMoves bounds the number of legal moves in any chess position.
const MaxMoves = 256

// typicalMoves is the initial capacity of a generated list.
const typicalMoves = 48

type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// NoMove is returned when there is no move to play.
var NoMove = Move{From: NoSquare, To: NoSquare}

func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

func (m Move) IsNone() bool {
	return m == NoMove
}

// String renders the coordinate token used in game records: "e2-e4", "e7-e8=Q".
func (m Move) String() string {
	if m.IsNone() {
		return "--"
	}
	s := m.From.String() + "-" + m.To.String()
	if m.Promotion.IsPromotion() {
		s += "=" + m.Promotion.Letter()
	}
	return s
}

// ParseMove parses a coordinate token. Anything other than
// "<from>-<to>" with an optional "=N|B|R|Q" suffix is rejected.
func ParseMove(token string) (Move, error) {
	if len(token) != 5 && len(token) != 7 {
		return NoMove, fmt.Errorf("model: malformed move %q", token)
	}
	if token[2] != '-' {
		return NoMove, fmt.Errorf("model: malformed move %q", token)
	}
	from, ok := ParseSquare(token[0:2])
	if !ok {
		return NoMove, fmt.Errorf("model: bad origin square in %q", token)
	}
	to, ok := ParseSquare(token[3:5])
	if !ok {
		return NoMove, fmt.Errorf("model: bad destination square in %q", token)
	}
	m := Move{From: from, To: to}
	if len(token) == 7 {
		if token[5] != '=' {
			return NoMove, fmt.Errorf("model: malformed promotion in %q", token)
		}
		p := PieceTypeFromLetter(token[6])
		if !p.IsPromotion() || token[6] != p.Letter()[0] {
			return NoMove, fmt.Errorf("model: bad promotion piece in %q", token)
		}
		m.Promotion = p
	}
	return m, nil
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MoveList is an ordered list of moves in board-scan order.
type MoveList []Move

func NewMoveList() MoveList {
	return make(MoveList, 0, typicalMoves)
}

func (l MoveList) Contains(m Move) bool {
	for _, candidate := range l {
		if candidate == m {
			return true
		}
	}
	return false
}

// Strings returns the coordinate tokens of every move.
func (l MoveList) Strings() []string {
	out := make([]string, len(l))
	for i, m := range l {
		out[i] = m.String()
	}
	return out
}
