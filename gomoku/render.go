package gomoku

import (
	"fmt"
	"strings"
)

var glyphs = map[int]string{
	Empty: "·",
	1:     "●",
	2:     "◯",
}

// Render draws the board with x as rows and y as columns
func Render(board Board) string {
	shape := board.Shape()
	b := new(strings.Builder)
	b.WriteString("   ")
	for y := 0; y < shape[1]; y++ {
		fmt.Fprintf(b, "%2d", y)
	}
	b.WriteString("\n")
	for x := 0; x < shape[0]; x++ {
		fmt.Fprintf(b, "%2d ", x)
		for y := 0; y < shape[1]; y++ {
			g, ok := glyphs[board.At(Action{x, y})]
			if !ok {
				g = "?"
			}
			b.WriteString(" " + g)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Render draws the current board followed by the participants' glyphs
func (e *Env) Render() string {
	b := new(strings.Builder)
	b.WriteString(Render(e.board))
	for i, p := range e.participants {
		fmt.Fprintf(b, "%s Player : %s\n", glyphs[i+1], p.ID)
	}
	return b.String()
}
