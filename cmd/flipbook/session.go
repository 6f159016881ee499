package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	flipbook "github.com/porticus-lab/go-flipbook"
	"github.com/porticus-lab/go-flipbook/chrome"
	"github.com/porticus-lab/go-flipbook/config"
)

// session is a document shown in a browser tab, with its viewer running on
// a dedicated loop.
type session struct {
	loop   *flipbook.Loop
	tab    *chrome.Tab
	doc    *flipbook.Document
	viewer *flipbook.Viewer

	closers []func() error
}

// sessionOptions selects how the browser side of a session is set up.
type sessionOptions struct {
	browser config.BrowserConfig
	page    int
	// window, when set, overrides the tab's layout viewport before the
	// first build.
	window flipbook.Size
}

// startSession opens the browser and the tab, acquires the document and
// builds the first book. On error everything already opened is released.
func startSession(ctx context.Context, env *localEnv, abs string, so sessionOptions) (_ *session, err error) {
	log := env.Log
	s := &session{loop: flipbook.NewLoop()}
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.Close())
		}
	}()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = s.loop.Run(loopCtx)
	}()
	s.closers = append(s.closers, func() error {
		stopLoop()
		<-loopDone
		return nil
	})

	browser, err := chrome.NewBrowser(browserOptions(so.browser, log)...)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, browser.Close)

	if s.tab, err = browser.OpenTab(ctx, filepath.Base(abs), s.loop); err != nil {
		return nil, err
	}
	s.closers = append(s.closers, s.tab.Close)

	if !so.window.Empty() {
		if err := s.tab.SetWindowSize(ctx, so.window.Width, so.window.Height); err != nil {
			return nil, err
		}
	}

	opts := openOptions(env.Cfg, log, chrome.NewMeasurer(s.tab))
	opts.PDFURL = "file://" + filepath.ToSlash(abs)
	src, doc, err := acquire(ctx, abs, opts, log)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	log.Info("Document loaded", zap.String("title", doc.Title), zap.Int("pages", doc.Len()))

	vopts, err := viewerOptions(env.Cfg, log)
	if err != nil {
		return nil, err
	}
	vopts = append(vopts,
		flipbook.WithStartPage(so.page),
		flipbook.WithPresenter(s.tab),
		flipbook.WithFeedback(s.tab),
		flipbook.WithLocation(s.tab),
	)
	if r, ok := src.(flipbook.Reflower); ok {
		vopts = append(vopts, flipbook.WithReflow(r, env.Cfg.Render.FontScale))
	}
	s.viewer = flipbook.NewViewer(doc, chrome.NewFactory(s.tab, env.Cfg.Render.Scale), s.loop, vopts...)

	err = s.loop.Call(ctx, func() error {
		viewport, err := s.tab.Viewport(ctx)
		if err != nil {
			return err
		}
		return s.viewer.Start(ctx, viewport)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to build book: %w", err)
	}
	s.closers = append(s.closers, func() error {
		return s.loop.Call(context.Background(), s.viewer.Close)
	})
	return s, nil
}

// Close releases the session in reverse order of acquisition.
func (s *session) Close() (err error) {
	for _, c := range slices.Backward(s.closers) {
		err = multierr.Append(err, c())
	}
	s.closers = nil
	return err
}
