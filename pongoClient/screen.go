package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/lguibr/asciiring/helpers"
	"github.com/lguibr/solopong/audio"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/render"
)

// keyStep is how far one arrow key press moves the pointer, in board units.
const keyStep = 20.0

// runScreen drives an interactive tcell screen until quit, interrupt or the
// source closes.
func runScreen(ctx context.Context, src frameSource, sounds *audio.SoundBoard) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	defer recoverTerminal(screen.Fini)

	screen.EnableMouse()
	screen.HideCursor()
	painter := render.NewPainter(screen, render.DefaultPalette())

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go pollEvents(screen, events, quit)

	ui := &screenUI{src: src, painter: painter}
	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-src.Frames():
			if !ok {
				return nil
			}
			ui.last = f.snap
			ui.seen = true
			painter.Draw(f.snap)
			screen.Show()
			playCues(sounds, f.cues)
		case ev := <-events:
			if ui.handle(ev) {
				return nil
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalised.
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, quit <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

type screenUI struct {
	src     frameSource
	painter *render.Painter
	last    game.Snapshot
	seen    bool
	pointer float64
}

// handle applies one input event and reports whether the user quit.
func (u *screenUI) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return true
		case ev.Key() == tcell.KeyUp:
			u.movePointer(-keyStep)
		case ev.Key() == tcell.KeyDown:
			u.movePointer(keyStep)
		}
	case *tcell.EventMouse:
		if !u.seen {
			return false
		}
		_, row := ev.Position()
		u.pointer = u.painter.PointerY(u.last, row)
		u.src.SetPointer(u.pointer)
	}
	return false
}

// movePointer nudges the pointer from the paddle's current centre.
func (u *screenUI) movePointer(delta float64) {
	if !u.seen {
		return
	}
	u.pointer = u.last.PlayerPaddleY + u.last.PaddleHeight/2 + delta
	u.src.SetPointer(u.pointer)
}

// runPlain prints every frame as ASCII text, clearing the terminal between
// frames. It has no input: the player paddle stays where it is.
func runPlain(ctx context.Context, src frameSource, sounds *audio.SoundBoard, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-src.Frames():
			if !ok {
				return nil
			}
			helpers.ClearScreen()
			if _, err := io.WriteString(out, render.ASCII(f.snap, render.DefaultCols, render.DefaultRows)); err != nil {
				return err
			}
			playCues(sounds, f.cues)
		}
	}
}

func playCues(sounds *audio.SoundBoard, cues []audio.Cue) {
	if sounds == nil || len(cues) == 0 {
		return
	}
	sounds.PlayAll(cues)
}
