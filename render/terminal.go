package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lguibr/solopong/game"
)

// Palette holds the styles a Painter uses.
type Palette struct {
	Background   tcell.Style
	Midline      tcell.Style
	PlayerPaddle tcell.Style
	AIPaddle     tcell.Style
	Ball         tcell.Style
	Text         tcell.Style
}

// DefaultPalette matches the classic page colours: green player, red AI.
func DefaultPalette() Palette {
	bg := tcell.StyleDefault.Background(tcell.ColorBlack)
	return Palette{
		Background:   bg,
		Midline:      bg.Foreground(tcell.ColorGray),
		PlayerPaddle: bg.Foreground(tcell.NewHexColor(0x2ecc40)),
		AIPaddle:     bg.Foreground(tcell.NewHexColor(0xff4136)),
		Ball:         bg.Foreground(tcell.ColorWhite),
		Text:         bg.Foreground(tcell.ColorWhite).Bold(true),
	}
}

// Painter draws snapshots onto a tcell screen. Row 0 holds the scores; the
// board fills the rest.
type Painter struct {
	screen  tcell.Screen
	palette Palette
}

func NewPainter(screen tcell.Screen, palette Palette) *Painter {
	return &Painter{screen: screen, palette: palette}
}

// BoardSize is the grid the board occupies on the current screen.
func (p *Painter) BoardSize() (cols, rows int) {
	w, h := p.screen.Size()
	return w, h - 1
}

// Draw paints snap and shows it.
func (p *Painter) Draw(snap game.Snapshot) {
	p.screen.Fill(' ', p.palette.Background)

	cols, rows := p.BoardSize()
	if cols <= 0 || rows <= 0 {
		p.screen.Show()
		return
	}

	header := fmt.Sprintf("PLAYER %d   AI %d", snap.PlayerScore, snap.AIScore)
	p.text((cols-len(header))/2, 0, header)

	for r, line := range Grid(snap, cols, rows) {
		for c, cell := range line {
			if cell == CellEmpty {
				continue
			}
			glyph := cell.Rune()
			if cell == CellPlayerPaddle || cell == CellAIPaddle || cell == CellBall {
				glyph = '█'
			}
			p.screen.SetContent(c, r+1, glyph, nil, p.style(cell))
		}
	}
	p.screen.Show()
}

// PointerY converts a screen row (as reported by a mouse event) into a board
// y coordinate.
func (p *Painter) PointerY(snap game.Snapshot, screenRow int) float64 {
	_, rows := p.BoardSize()
	return BoardY(snap, screenRow-1, rows)
}

func (p *Painter) style(kind CellKind) tcell.Style {
	switch kind {
	case CellMidline:
		return p.palette.Midline
	case CellPlayerPaddle:
		return p.palette.PlayerPaddle
	case CellAIPaddle:
		return p.palette.AIPaddle
	case CellBall:
		return p.palette.Ball
	}
	return p.palette.Background
}

func (p *Painter) text(x, y int, s string) {
	if x < 0 {
		x = 0
	}
	for i, r := range s {
		p.screen.SetContent(x+i, y, r, nil, p.palette.Text)
	}
}
