package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	flipbook "github.com/porticus-lab/go-flipbook"
)

var errNoSource = errors.New("no SOURCE given")

// runInfo prints what the acquired document looks like.
func runInfo(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	path := cmd.Args().First()
	if path == "" {
		return errNoSource
	}
	_, doc, err := acquire(ctx, path, openOptions(env.Cfg, env.Log, nil), env.Log)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Title:   %s\n", doc.Title)
	fmt.Fprintf(out, "Source:  %s\n", doc.Source)
	fmt.Fprintf(out, "Pages:   %d\n", doc.Len())
	if doc.Len() > 0 {
		fmt.Fprintf(out, "Natural: %s (aspect %.3f)\n", doc.NaturalSize(), doc.NaturalSize().Aspect())
		kinds := map[flipbook.AssetKind]int{}
		sizes := map[flipbook.Size]int{}
		for _, p := range doc.Pages {
			kinds[p.Asset.Kind]++
			sizes[p.Size()]++
		}
		for k, n := range kinds {
			fmt.Fprintf(out, "Assets:  %d %s\n", n, k)
		}
		if len(sizes) > 1 {
			fmt.Fprintf(out, "Sizes:   %d distinct page sizes\n", len(sizes))
		}
	}
	return nil
}

// runLayout prints the build plan for a viewport without opening a browser.
func runLayout(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	path := cmd.Args().First()
	if path == "" {
		return errNoSource
	}
	_, doc, err := acquire(ctx, path, openOptions(env.Cfg, env.Log, nil), env.Log)
	if err != nil {
		return err
	}

	dir, err := flipbook.ParseDirection(cmd.String("direction"))
	if err != nil {
		return err
	}
	mode, err := flipbook.ParseDisplayMode(cmd.String("mode"))
	if err != nil {
		return err
	}
	viewport := flipbook.Size{Width: int(cmd.Int("width")), Height: int(cmd.Int("height"))}

	plan := flipbook.Plan(flipbook.PlanInput{
		Pages:        doc.Len(),
		Natural:      doc.NaturalSize(),
		Aspect:       env.Cfg.Viewer.Aspect,
		Viewport:     viewport,
		Padding:      padding(env.Cfg.Viewer.Padding),
		Direction:    dir,
		Mode:         mode,
		Resume:       int(cmd.Int("page")),
		Shadow:       env.Cfg.Viewer.Shadow,
		FlippingTime: env.Cfg.Viewer.FlippingTime,
	})
	order := plan.Order
	edges := flipbook.Edges(plan.Config.StartIndex, order.Len(), dir,
		flipbook.EdgeConfig{Divisor: env.Cfg.Viewer.Edges.Divisor, Cap: env.Cfg.Viewer.Edges.Cap})

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Viewport:  %s (%s, %s)\n", viewport, dir, mode)
	fmt.Fprintf(out, "Page size: %s\n", plan.Page)
	fmt.Fprintf(out, "Cover:     %t\n", order.Cover())
	fmt.Fprintf(out, "Start:     slot %d, %s\n", plan.Config.StartIndex, order.Label(plan.Config.StartIndex, mode))
	fmt.Fprintf(out, "Edges:     %s read %dpx, unread %dpx\n", edges.ReadSide, edges.ReadWidth, edges.UnreadWidth)

	var cells []string
	for _, t := range flipbook.Thumbnails(order, mode, plan.Config.StartIndex) {
		c := t.Label
		if t.Current {
			c = "[" + c + "]"
		}
		cells = append(cells, c)
	}
	fmt.Fprintf(out, "Slots:     %s\n", strings.Join(cells, " "))
	return nil
}

// runThumbs writes a contact sheet of the document's image pages.
func runThumbs(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	path := cmd.Args().First()
	if path == "" {
		return errNoSource
	}
	_, doc, err := acquire(ctx, path, openOptions(env.Cfg, env.Log, nil), env.Log)
	if err != nil {
		return err
	}

	tc := env.Cfg.Render.Thumbnails
	cell := flipbook.Size{Width: tc.Width, Height: tc.Height}
	thumbs := make([]image.Image, 0, doc.Len())
	for _, p := range doc.Pages {
		img, err := flipbook.RenderThumbnail(p.Asset, cell)
		if err != nil {
			env.Log.Warn("Skipping page", zap.Int("page", p.Number), zap.Error(err))
			continue
		}
		thumbs = append(thumbs, img)
	}
	if len(thumbs) == 0 {
		return fmt.Errorf("no page of %s can be rendered as a thumbnail", path)
	}

	dest := cmd.Args().Get(1)
	if dest == "" {
		dest = slug.Make(doc.Title) + "-thumbs.jpg"
	}
	var w io.Writer
	if dest == "-" {
		w = cmd.Root().Writer
	} else {
		f, cerr := os.Create(dest)
		if cerr != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dest, cerr)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		w = f
	}
	if err := flipbook.ContactSheet(w, thumbs, tc.Columns, cell, tc.Gap); err != nil {
		return err
	}
	env.Log.Info("Contact sheet written", zap.String("file", dest), zap.Int("thumbnails", len(thumbs)))
	return nil
}
