// Package flipbook is the layout and navigation core of a page-flip book
// viewer. It turns a document (PDF pages, page images or a reflowable HTML
// stream) into a sequence of logical pages and drives a flip widget over
// them.
//
// # Layout
//
// [Fit] sizes one page for the available area: height first, halved for a
// two-page spread when the spread would not fit, and never larger than the
// page's natural size.
//
// [BuildOrder] maps logical pages onto the widget's left-to-right slots. For
// right-to-left books the slots are reversed and the cover flag is chosen so
// that page 1 always stands alone:
//
//	o := flipbook.BuildOrder(7, flipbook.RTL)
//	o.Pages()                   // [7 6 5 4 3 2 1]
//	o.Label(0, flipbook.Spread) // "6-7 / 7"
//
// # Navigation
//
// A [Viewer] owns the session state and the current [Widget]. Any change that
// affects layout (direction, display mode, viewport, crossing the zoom
// threshold, font scale) destroys the widget and builds a new one at the
// same logical page. Events produced for an earlier build are ignored.
//
//	loop := flipbook.NewLoop()
//	go loop.Run(ctx)
//
//	v := flipbook.NewViewer(doc, widgets, loop,
//	    flipbook.WithDirection(flipbook.RTL),
//	    flipbook.WithStartPage(12),
//	)
//	err := loop.Call(ctx, func() error { return v.Start(ctx, viewport) })
//
// A Viewer is not safe for concurrent use. Drive it from the goroutine
// running its [Loop], posting work there with [Loop.Post] or [Loop.Call].
//
// # Sources
//
// [OpenSource] sniffs a path and returns a [Source] for PDF files, image
// files or directories, and HTML documents. [Acquire] loads every page of a
// source into an immutable [Document] and fails as a whole with
// [ErrAcquisition]. An [HTMLSource] is also a [Reflower]: pass it to
// [WithReflow] and the viewer re-paginates it on every rebuild.
package flipbook
