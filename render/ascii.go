package render

import (
	"fmt"
	"strings"

	"github.com/lguibr/solopong/game"
)

// ASCII renders snap as a bordered text frame with a score line on top.
func ASCII(snap game.Snapshot, cols, rows int) string {
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	var b strings.Builder

	header := fmt.Sprintf("PLAYER %d   AI %d", snap.PlayerScore, snap.AIScore)
	pad := (cols + 2 - len(header)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(header)
	b.WriteByte('\n')

	border := "+" + strings.Repeat("-", cols) + "+\n"
	b.WriteString(border)
	for _, line := range Grid(snap, cols, rows) {
		b.WriteByte('|')
		for _, cell := range line {
			b.WriteRune(cell.Rune())
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}
