// Command pongoClient plays solopong in a terminal, either against a local
// in-process session or attached to a session on a pong server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/lguibr/solopong/audio"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/utils"
)

var (
	remoteFlag  = flag.String("remote", "", "Server websocket URL, e.g. ws://localhost:3001/subscribe (empty plays locally)")
	sessionFlag = flag.String("session", "", "Session ID to attach to in remote mode (empty creates one)")
	asciiFlag   = flag.Bool("ascii", false, "Print plain ASCII frames instead of the interactive screen")
	soundFlag   = flag.Bool("sound", false, "Play sound cues (overrides PONGO_SOUND)")
	volumeFlag  = flag.Float64("volume", 0.5, "Sound cue volume, 0 to 1")
	logFlag     = flag.String("log", "", "Write logs to this file (default: discard)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pongoClient: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.SetOutput(logOut)

	cfg, err := utils.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "ignoring log level", logger.Error(err))
	}

	var src frameSource
	if *remoteFlag != "" {
		remote, err := dialRemote(*remoteFlag, *sessionFlag)
		if err != nil {
			return err
		}
		src = remote
	} else {
		local := newLocalSource(cfg)
		local.start()
		src = local
	}
	defer src.Close()

	var sounds *audio.SoundBoard
	if *soundFlag || cfg.Sound {
		sounds = audio.NewSoundBoard(*volumeFlag)
		if err := sounds.Initialize(); err != nil {
			logger.Get().Warn(ctx, "audio unavailable, continuing without sound", logger.Error(err))
		}
		defer sounds.Close()
	}

	if *asciiFlag {
		return runPlain(ctx, src, sounds, os.Stdout)
	}
	return runScreen(ctx, src, sounds)
}

// recoverTerminal restores the terminal before re-raising a panic.
func recoverTerminal(fini func()) {
	if r := recover(); r != nil {
		fini()
		fmt.Fprintf(os.Stderr, "\npongoClient crashed: %v\n%s\n", r, debug.Stack())
		os.Exit(1)
	}
}
