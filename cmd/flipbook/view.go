package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	flipbook "github.com/porticus-lab/go-flipbook"
	"github.com/porticus-lab/go-flipbook/chrome"
)

// runView opens the document in a browser window and drives the viewer until
// the window is closed, q is pressed or the program is interrupted.
func runView(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	log := env.Log

	path, page := cmd.Args().First(), int(cmd.Int("page"))
	if link := cmd.String("url"); link != "" {
		src, p, err := flipbook.ParseLaunchURL(link)
		if err != nil {
			return err
		}
		if path == "" {
			path = src
		}
		if page == 0 {
			page = p
		}
	}
	if path == "" {
		return errNoSource
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("unable to resolve %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bc := env.Cfg.Browser
	bc.Headless = bc.Headless || cmd.Bool("headless")
	s, err := startSession(ctx, env, abs, sessionOptions{browser: bc, page: page})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()
	loop, viewer := s.loop, s.viewer

	// runs on the loop
	apply := func(name string) {
		if name == quit {
			cancel()
			return
		}
		fn, ok := commands[name]
		if !ok {
			return
		}
		if err := fn(ctx, viewer); err != nil {
			log.Warn("Command failed", zap.String("command", name), zap.Error(err))
		}
	}
	s.tab.Subscribe(func(m chrome.Message) {
		switch m.Type {
		case "key":
			apply(keyCommand(m.Key, viewer.Direction()))
		case "command":
			apply(m.Key)
		case "resize":
			viewer.Resize(flipbook.Size{Width: m.Width, Height: m.Height})
		case "pan":
			viewer.Pan(m.DX, m.DY)
		}
	})

	if restore, ok := readTerminal(ctx, loop, func() flipbook.Direction {
		var dir flipbook.Direction
		_ = loop.Call(ctx, func() error { dir = viewer.Direction(); return nil })
		return dir
	}, apply, log); ok {
		defer restore()
		fmt.Fprint(os.Stderr, "arrows/space turn pages, home/end jump, +/- zoom, d direction, m mode, q quit\r\n")
	}

	<-ctx.Done()
	log.Debug("Viewer stopped", zap.Duration("uptime", env.uptime()))
	return nil
}

// readTerminal puts stdin into raw mode and forwards key presses to apply on
// the loop. It reports false when stdin is not a terminal.
func readTerminal(ctx context.Context, loop *flipbook.Loop, direction func() flipbook.Direction, apply func(string), log *zap.Logger) (func(), bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, false
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		log.Debug("Unable to switch terminal to raw mode", zap.Error(err))
		return nil, false
	}
	go func() {
		buf := make([]byte, 64)
		for ctx.Err() == nil {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			dir := direction()
			for _, key := range terminalKeys(buf[:n]) {
				name := keyCommand(key, dir)
				if name == "" {
					continue
				}
				loop.Post(func() { apply(name) })
			}
		}
	}()
	return func() { _ = term.Restore(fd, state) }, true
}
