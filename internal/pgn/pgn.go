// Package pgn reads and writes game records: a PGN-style tag section
// followed by numbered movetext in coordinate notation ("1. e2-e4 e7-e5").
package pgn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
)

// Result tokens.
const (
	WhiteWins  = "1-0"
	BlackWins  = "0-1"
	DrawResult = "1/2-1/2"
	Unfinished = "*"
)

const lineWidth = 80

var ErrEmpty = errors.New("pgn: empty record")

var tagPattern = regexp.MustCompile(`^\[\s*([A-Za-z0-9_]+)\s+"((?:[^"\\]|\\.)*)"\s*\]$`)

// Tag is one header pair.
type Tag struct {
	Name  string
	Value string
}

// Tags keeps headers in file order.
type Tags []Tag

func (t Tags) Get(name string) (string, bool) {
	for _, tag := range t {
		if tag.Name == name {
			return tag.Value, true
		}
	}
	return "", false
}

// Set replaces the value of name or appends it.
func (t Tags) Set(name, value string) Tags {
	for i := range t {
		if t[i].Name == name {
			t[i].Value = value
			return t
		}
	}
	return append(t, Tag{Name: name, Value: value})
}

// Record is a parsed game record.
type Record struct {
	Tags   Tags
	Tokens []string
	Result string
	Game   *engine.Game
}

// ResultOf derives the result token from the game's current position.
func ResultOf(g *engine.Game) string {
	switch status := g.Status(); {
	case status == engine.StatusCheckmate:
		if g.Turn() == model.White {
			return BlackWins
		}
		return WhiteWins
	case status.IsDraw():
		return DrawResult
	}
	return Unfinished
}

// Write serializes g with the seven-tag roster. Values in tags override
// the defaults and any other tags follow the roster. A game that did not
// start from the initial position gets SetUp and FEN tags.
func Write(w io.Writer, g *engine.Game, tags Tags) error {
	roster := Tags{
		{Name: "Event", Value: "Casual game"},
		{Name: "Site", Value: "?"},
		{Name: "Date", Value: time.Now().Format("2006.01.02")},
		{Name: "Round", Value: "-"},
		{Name: "White", Value: "?"},
		{Name: "Black", Value: "?"},
		{Name: "Result", Value: ResultOf(g)},
	}
	if start := g.StartPosition(); start != model.InitialPosition() {
		roster = roster.Set("SetUp", "1")
		roster = roster.Set("FEN", start.FEN())
	}
	for _, tag := range tags {
		roster = roster.Set(tag.Name, tag.Value)
	}
	result, _ := roster.Get("Result")

	bw := bufio.NewWriter(w)
	for _, tag := range roster {
		fmt.Fprintf(bw, "[%s \"%s\"]\n", tag.Name, escape(tag.Value))
	}
	bw.WriteString("\n")

	movetext := g.Movetext()
	if movetext != "" {
		movetext += " "
	}
	bw.WriteString(wrap(movetext+result, lineWidth))
	bw.WriteString("\n")
	return bw.Flush()
}

// Read parses one record and replays its moves. On a replay failure the
// record is returned with the game as far as it could be replayed.
func Read(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rec := &Record{Result: Unfinished}

	var movetext strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			m := tagPattern.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("pgn: malformed tag %q", line)
			}
			rec.Tags = append(rec.Tags, Tag{Name: m[1], Value: unescape(m[2])})
			continue
		}
		if strings.HasPrefix(line, "%") {
			continue
		}
		movetext.WriteString(line)
		movetext.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(rec.Tags) == 0 && strings.TrimSpace(movetext.String()) == "" {
		return nil, ErrEmpty
	}
	for _, token := range strings.Fields(stripAnnotations(movetext.String())) {
		switch {
		case isResult(token):
			rec.Result = token
			continue
		case strings.HasPrefix(token, "$"):
			continue
		}
		if i := strings.LastIndexByte(token, '.'); i >= 0 {
			token = token[i+1:]
		}
		if token != "" {
			rec.Tokens = append(rec.Tokens, token)
		}
	}
	if value, ok := rec.Tags.Get("Result"); ok && rec.Result == Unfinished && isResult(value) {
		rec.Result = value
	}

	start := model.InitialPosition()
	if fen, ok := rec.Tags.Get("FEN"); ok {
		start, err = model.ParseFEN(fen)
		if err != nil {
			return nil, fmt.Errorf("pgn: %w", err)
		}
	}
	rec.Game, err = engine.ReplayFrom(start, rec.Tokens)
	if err != nil {
		return rec, fmt.Errorf("pgn: %w", err)
	}
	return rec, nil
}

// stripAnnotations removes brace comments, rest-of-line comments and
// variations, which may nest.
func stripAnnotations(s string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return b.String()
			}
			i += end
			b.WriteByte(' ')
		case c == ';':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
			b.WriteByte(' ')
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
			b.WriteByte(' ')
		case depth == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isResult(token string) bool {
	switch token {
	case WhiteWins, BlackWins, DrawResult, Unfinished:
		return true
	}
	return false
}

func wrap(text string, width int) string {
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		if lineLen > 0 && lineLen+1+len(word) > width {
			b.WriteByte('\n')
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func unescape(s string) string {
	return strings.NewReplacer(`\\`, `\`, `\"`, `"`).Replace(s)
}
