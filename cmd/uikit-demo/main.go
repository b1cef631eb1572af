// Command uikit-demo hosts a two-section message list in the terminal.
// Every key press edits the backing lists; the collection diffs the result
// and animates it as a batch that completes on the next turn of the event
// loop.
//
// Usage:
//
//	uikit-demo [-dir path] [-log file] [-traits file]
//
// uikit.yaml in dir is watched while the program runs, as is the optional
// trait file, whose content is the horizontal cell padding.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-drift/uikit/pkg/config"
	"github.com/go-drift/uikit/pkg/errors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "uikit-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.String("dir", "", "directory holding "+config.FileName+" (default: the module root)")
	logPath := flag.String("log", "", "write logs to this file")
	traits := flag.String("traits", "", "trait file to watch for cell padding")
	flag.Parse()

	if *dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			root = "."
		}
		*dir = root
	}

	cfg, err := config.Resolve(*dir)
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	level := new(slog.LevelVar)
	logger := cfg.Logger(out, level)
	prev := errors.SetHandler(&errors.LogHandler{Logger: logger})
	defer errors.SetHandler(prev)

	watcher, err := config.NewWatcher(*dir, config.WithWatchLogger(logger))
	if err != nil {
		return err
	}
	defer watcher.Close()
	if *traits != "" {
		if err := watcher.Add(*traits); err != nil {
			return err
		}
	}

	p := tea.NewProgram(newModel(cfg, logger, level, *traits), tea.WithAltScreen())
	watcher.OnChange(func(c config.Change) { p.Send(configChangedMsg{change: c}) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("config watcher stopped", "err", err)
		}
	}()

	_, err = p.Run()
	return err
}
