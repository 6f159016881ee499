package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	flipbook "github.com/porticus-lab/go-flipbook"
)

// runSnapshot renders the book at one page in a headless browser and saves
// a PNG screenshot of the viewer.
func runSnapshot(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	log := env.Log

	path := cmd.Args().First()
	if path == "" {
		return errNoSource
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("unable to resolve %s: %w", path, err)
	}

	bc := env.Cfg.Browser
	bc.Headless = true
	window := flipbook.Size{Width: int(cmd.Int("width")), Height: int(cmd.Int("height"))}
	page := int(cmd.Int("page"))

	s, err := startSession(ctx, env, abs, sessionOptions{browser: bc, page: page, window: window})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	// page images and pdf.js rendering finish after the widget is built
	wait := time.NewTimer(cmd.Duration("wait"))
	defer wait.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wait.C:
	}

	var label string
	if err := s.loop.Call(ctx, func() error {
		page, label = s.viewer.CurrentPage(), s.viewer.Label()
		return nil
	}); err != nil {
		return err
	}

	shot, err := s.tab.Screenshot(ctx)
	if err != nil {
		return err
	}

	dest := cmd.Args().Get(1)
	if dest == "" {
		dest = fmt.Sprintf("%s-p%d.png", slug.Make(s.doc.Title), page)
	}
	if dest == "-" {
		_, err = shot.WriteTo(os.Stdout)
	} else {
		err = shot.WriteToFile(dest, 0o644)
	}
	if err != nil {
		return fmt.Errorf("unable to write snapshot: %w", err)
	}
	log.Info("Snapshot written",
		zap.String("file", dest), zap.String("label", label), zap.Int("bytes", shot.Len()))
	return nil
}
