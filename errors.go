package flipbook

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrAcquisition is returned when a document cannot be loaded. It is
	// fatal to initialisation; no partial book is ever shown.
	ErrAcquisition = errors.New("flipbook: document acquisition failed")

	// ErrUnsupportedSource is returned by [OpenSource] for content it cannot
	// classify as PDF, HTML or images.
	ErrUnsupportedSource = errors.New("flipbook: unsupported source")
)
