// Package render draws positions as SVG diagrams.
package render

import (
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
)

const (
	DefaultSquareSize = 45

	lightColor     = "#f0d9b5"
	darkColor      = "#b58863"
	lastMoveColor  = "#cdd26a"
	checkColor     = "#e06666"
	coordinateFont = "font-family:sans-serif;font-size:10px;fill:#555"
)

var glyphs = map[model.Color]map[model.PieceType]string{
	model.White: {
		model.King: "♔", model.Queen: "♕", model.Rook: "♖",
		model.Bishop: "♗", model.Knight: "♘", model.Pawn: "♙",
	},
	model.Black: {
		model.King: "♚", model.Queen: "♛", model.Rook: "♜",
		model.Bishop: "♝", model.Knight: "♞", model.Pawn: "♟",
	},
}

// Options controls the diagram.
type Options struct {
	SquareSize  int
	Flipped     bool // Black at the bottom
	LastMove    model.Move
	Coordinates bool
}

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// Board writes an SVG diagram of pos to w. The last move and a king in
// check are highlighted.
func Board(w io.Writer, pos *model.Position, opts Options) error {
	size := opts.SquareSize
	if size <= 0 {
		size = DefaultSquareSize
	}
	margin := 0
	if opts.Coordinates {
		margin = size / 3
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(8*size+margin, 8*size+margin)
	canvas.Title(fmt.Sprintf("%s to move", pos.Turn))

	checked := model.NoSquare
	if engine.IsInCheck(pos, pos.Turn) {
		checked, _ = pos.KingSquare(pos.Turn)
	}

	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			sq := model.Square{Row: row, Col: col}
			x, y := origin(sq, size, opts.Flipped)
			x += margin

			fill := darkColor
			if sq.IsLight() {
				fill = lightColor
			}
			switch {
			case sq == checked:
				fill = checkColor
			case !opts.LastMove.IsNone() && (sq == opts.LastMove.From || sq == opts.LastMove.To):
				fill = lastMoveColor
			}
			canvas.Rect(x, y, size, size, "fill:"+fill)

			pc := pos.PieceAt(sq)
			if pc.IsEmpty() {
				continue
			}
			canvas.Text(x+size/2, y+size*4/5, glyphs[pc.Color][pc.Type],
				fmt.Sprintf("text-anchor:middle;font-size:%dpx", size*4/5))
		}
	}

	if opts.Coordinates {
		for i := 0; i < model.BoardSize; i++ {
			file := string(rune('a' + i))
			rank := strconv.Itoa(i + 1)
			fx, _ := origin(model.Square{Row: 0, Col: i}, size, opts.Flipped)
			_, ry := origin(model.Square{Row: i, Col: 0}, size, opts.Flipped)
			canvas.Text(margin+fx+size/2, 8*size+margin*3/4, file, "text-anchor:middle;"+coordinateFont)
			canvas.Text(margin/2, ry+size/2+4, rank, "text-anchor:middle;"+coordinateFont)
		}
	}
	canvas.End()
	return ew.err
}

// origin is the top-left pixel of sq.
func origin(sq model.Square, size int, flipped bool) (int, int) {
	if flipped {
		return (model.BoardSize - 1 - sq.Col) * size, sq.Row * size
	}
	return sq.Col * size, (model.BoardSize - 1 - sq.Row) * size
}
