package search

import (
	"fmt"
	"strings"
)

// Difficulty is a named search depth in plies.
type Difficulty int

const (
	Easy   Difficulty = 2
	Medium Difficulty = 3
	Hard   Difficulty = 4
	Expert Difficulty = 5
)

var difficultyNames = map[Difficulty]string{
	Easy:   "easy",
	Medium: "medium",
	Hard:   "hard",
	Expert: "expert",
}

// Difficulties lists the levels from weakest to strongest.
var Difficulties = []Difficulty{Easy, Medium, Hard, Expert}

func (d Difficulty) Depth() int {
	return int(d)
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty accepts a level name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range difficultyNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("search: unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
