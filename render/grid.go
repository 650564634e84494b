// Package render draws game snapshots as character grids: plain text for
// logs and HTTP, coloured cells for a terminal.
package render

import (
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/utils"
)

// Default grid size for text frames.
const (
	DefaultCols = 80
	DefaultRows = 25
)

// CellKind tells what occupies a grid cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellMidline
	CellPlayerPaddle
	CellAIPaddle
	CellBall
)

var cellRunes = map[CellKind]rune{
	CellEmpty:        ' ',
	CellMidline:      ':',
	CellPlayerPaddle: '#',
	CellAIPaddle:     '#',
	CellBall:         'O',
}

// Rune is the plain-text glyph for k.
func (k CellKind) Rune() rune { return cellRunes[k] }

// layout maps board coordinates onto a cols×rows grid.
type layout struct {
	snap       game.Snapshot
	cols, rows int
	cellW      float64
	cellH      float64
}

func newLayout(snap game.Snapshot, cols, rows int) layout {
	if snap.BoardWidth <= 0 {
		snap.BoardWidth = utils.BoardWidth
	}
	if snap.BoardHeight <= 0 {
		snap.BoardHeight = utils.BoardHeight
	}
	if snap.PaddleWidth <= 0 {
		snap.PaddleWidth = utils.PaddleWidth
	}
	if snap.PaddleHeight <= 0 {
		snap.PaddleHeight = utils.PaddleHeight
	}
	if snap.BallSize <= 0 {
		snap.BallSize = utils.BallSize
	}
	return layout{
		snap:  snap,
		cols:  cols,
		rows:  rows,
		cellW: snap.BoardWidth / float64(cols),
		cellH: snap.BoardHeight / float64(rows),
	}
}

func (l layout) col(x float64) int {
	return clampIndex(int(x/l.cellW), l.cols)
}

func (l layout) row(y float64) int {
	return clampIndex(int(y/l.cellH), l.rows)
}

// covers reports whether a vertical span [top, top+height) covers the centre
// of row r.
func (l layout) covers(r int, top, height float64) bool {
	center := (float64(r) + 0.5) * l.cellH
	return center >= top && center < top+height
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Grid lays snap out on a cols×rows grid, indexed [row][col]. A paddle too
// thin to cover any row centre still gets the row holding its centre.
func Grid(snap game.Snapshot, cols, rows int) [][]CellKind {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	l := newLayout(snap, cols, rows)
	grid := make([][]CellKind, rows)
	for r := range grid {
		grid[r] = make([]CellKind, cols)
		if r%2 == 0 {
			grid[r][cols/2] = CellMidline
		}
	}

	s := l.snap
	paddle := func(kind CellKind, x, y float64) {
		c := l.col(x + s.PaddleWidth/2)
		drawn := false
		for r := 0; r < rows; r++ {
			if l.covers(r, y, s.PaddleHeight) {
				grid[r][c] = kind
				drawn = true
			}
		}
		if !drawn {
			grid[l.row(y+s.PaddleHeight/2)][c] = kind
		}
	}
	paddle(CellPlayerPaddle, s.PaddleMargin, s.PlayerPaddleY)
	paddle(CellAIPaddle, s.BoardWidth-s.PaddleMargin-s.PaddleWidth, s.AIPaddleY)

	grid[l.row(s.BallY+s.BallSize/2)][l.col(s.BallX+s.BallSize/2)] = CellBall
	return grid
}

// BoardY converts a grid row back to the board y at that row's centre.
func BoardY(snap game.Snapshot, row, rows int) float64 {
	if rows <= 0 {
		return 0
	}
	l := newLayout(snap, 1, rows)
	return (float64(clampIndex(row, rows)) + 0.5) * l.cellH
}
