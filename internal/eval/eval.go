// Package eval scores chess positions in centipawns.
//
// Every term is computed from White's point of view. Evaluate flips the sign
// for Black so that a positive score always favors the side to move.
package eval

import (
	"github.com/benbeisheim/chessai-backend/internal/engine"
	"github.com/benbeisheim/chessai-backend/internal/model"
)

const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// EndgameThreshold is the non-pawn material below which, for both sides,
// the endgame king table applies.
const EndgameThreshold = QueenValue + RookValue

const (
	mobilityWeight     = 10
	doubledPawnPenalty = -10
	isolatedPenalty    = -20
	passedPawnBonus    = 30
	passedPawnStep     = 5
	kingShieldBonus    = 10
	kingExposedPenalty = -15
	centerBonus        = 10
)

var centerSquares = [4]model.Square{{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 4}}

func PieceValue(t model.PieceType) int {
	switch t {
	case model.Pawn:
		return PawnValue
	case model.Knight:
		return KnightValue
	case model.Bishop:
		return BishopValue
	case model.Rook:
		return RookValue
	case model.Queen:
		return QueenValue
	case model.King:
		return KingValue
	}
	return 0
}

// Terms is the breakdown of an evaluation, White's point of view.
type Terms struct {
	Material      int `json:"material"`
	Mobility      int `json:"mobility"`
	PawnStructure int `json:"pawnStructure"`
	KingSafety    int `json:"kingSafety"`
	CenterControl int `json:"centerControl"`
}

func (t Terms) Total() int {
	return t.Material + t.Mobility + t.PawnStructure + t.KingSafety + t.CenterControl
}

// Breakdown computes every term for pos.
func Breakdown(pos *model.Position) Terms {
	return Terms{
		Material:      Material(pos),
		Mobility:      Mobility(pos),
		PawnStructure: PawnStructure(pos),
		KingSafety:    KingSafety(pos),
		CenterControl: CenterControl(pos),
	}
}

// Evaluate returns the score of pos for the side to move.
func Evaluate(pos *model.Position) int {
	score := Breakdown(pos).Total()
	if pos.Turn == model.Black {
		return -score
	}
	return score
}

// IsEndgame reports whether both sides have less non-pawn material than a
// queen and a rook.
func IsEndgame(pos *model.Position) bool {
	var material [2]int
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			pc := pos.Board[row][col]
			if pc.IsEmpty() || pc.Type == model.Pawn || pc.Type == model.King {
				continue
			}
			material[pc.Color] += PieceValue(pc.Type)
		}
	}
	return material[model.White] < EndgameThreshold && material[model.Black] < EndgameThreshold
}

// Material sums piece values and piece-square bonuses.
func Material(pos *model.Position) int {
	endgame := IsEndgame(pos)
	score := 0
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			pc := pos.Board[row][col]
			if pc.IsEmpty() {
				continue
			}
			v := PieceValue(pc.Type) + SquareBonus(pc, model.Square{Row: row, Col: col}, endgame)
			score += sign(pc.Color) * v
		}
	}
	return score
}

// Mobility compares the number of legal moves of each side, each counted as
// if it were that side's turn. Only the side to move keeps the en passant
// right.
func Mobility(pos *model.Position) int {
	return (sideMobility(pos, model.White) - sideMobility(pos, model.Black)) * mobilityWeight
}

func sideMobility(pos *model.Position, side model.Color) int {
	scratch := *pos
	scratch.Turn = side
	if side != pos.Turn {
		scratch.EnPassantFile = model.NoFile
	}
	return len(engine.GenerateMoves(&scratch))
}

// PawnStructure scores doubled, isolated and passed pawns file by file.
func PawnStructure(pos *model.Position) int {
	var counts [2][model.BoardSize]int
	// rearmost pawn per file, from the owner's point of view
	var rearmost [2][model.BoardSize]int
	for c := range rearmost {
		for col := range rearmost[c] {
			rearmost[c][col] = -1
		}
	}
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			pc := pos.Board[row][col]
			if pc.Type != model.Pawn {
				continue
			}
			counts[pc.Color][col]++
			r := rearmost[pc.Color][col]
			if r == -1 || (pc.Color == model.White && row < r) || (pc.Color == model.Black && row > r) {
				rearmost[pc.Color][col] = row
			}
		}
	}

	score := 0
	for _, c := range []model.Color{model.White, model.Black} {
		side := 0
		for col := 0; col < model.BoardSize; col++ {
			n := counts[c][col]
			if n == 0 {
				continue
			}
			if n > 1 {
				side += doubledPawnPenalty * (n - 1)
			}
			if !hasPawnOnFile(&counts, c, col-1) && !hasPawnOnFile(&counts, c, col+1) {
				side += isolatedPenalty
			}
			row := rearmost[c][col]
			if isPassed(pos, c, row, col) {
				side += passedPawnBonus + passedPawnStep*advancement(c, row)
			}
		}
		score += sign(c) * side
	}
	return score
}

func hasPawnOnFile(counts *[2][model.BoardSize]int, c model.Color, col int) bool {
	return col >= 0 && col < model.BoardSize && counts[c][col] > 0
}

// isPassed reports whether no opposing pawn stands ahead of (row, col) on
// the same or an adjacent file.
func isPassed(pos *model.Position, c model.Color, row, col int) bool {
	dir := model.PawnDirection(c)
	for fc := col - 1; fc <= col+1; fc++ {
		if fc < 0 || fc >= model.BoardSize {
			continue
		}
		for r := row + dir; r >= 0 && r < model.BoardSize; r += dir {
			if pos.Board[r][fc].Is(model.Pawn, c.Opposite()) {
				return false
			}
		}
	}
	return true
}

func advancement(c model.Color, row int) int {
	if c == model.White {
		return row
	}
	return model.BoardSize - 1 - row
}

// KingSafety rewards a pawn shield in front of a king on either wing and
// penalizes a king left on the d or e file. It is zero in the endgame.
func KingSafety(pos *model.Position) int {
	if IsEndgame(pos) {
		return 0
	}
	score := 0
	for _, c := range []model.Color{model.White, model.Black} {
		king, ok := pos.KingSquare(c)
		if !ok {
			continue
		}
		side := 0
		switch {
		case king.Col >= 6 || king.Col <= 2:
			front := king.Row + model.PawnDirection(c)
			for col := king.Col - 1; col <= king.Col+1; col++ {
				if col < 0 || col >= model.BoardSize {
					continue
				}
				if pos.PieceAt(model.Square{Row: front, Col: col}).Is(model.Pawn, c) {
					side += kingShieldBonus
				} else {
					side += kingExposedPenalty
				}
			}
		case king.Col == 3 || king.Col == 4:
			side += 2 * kingExposedPenalty
		}
		score += sign(c) * side
	}
	return score
}

// CenterControl counts attacks on and occupation of d4, e4, d5 and e5.
func CenterControl(pos *model.Position) int {
	score := 0
	for _, sq := range centerSquares {
		if engine.IsSquareAttacked(pos, sq, model.White) {
			score += centerBonus
		}
		if engine.IsSquareAttacked(pos, sq, model.Black) {
			score -= centerBonus
		}
		if pc := pos.PieceAt(sq); !pc.IsEmpty() {
			score += sign(pc.Color) * centerBonus
		}
	}
	return score
}

func sign(c model.Color) int {
	if c == model.White {
		return 1
	}
	return -1
}
