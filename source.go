package flipbook

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// OpenOptions configures [OpenSource].
type OpenOptions struct {
	// PDFURL is where the widget page loads a PDF from. Defaults to the path.
	PDFURL string
	// Scale converts PDF points to page pixels. Defaults to [RenderScale].
	Scale float64
	HTML  HTMLOptions
}

// OpenSource opens path as a document source. A directory is read as page
// images; a file is sniffed and opened as PDF, a single image or HTML.
func OpenSource(path string, opts OpenOptions) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return NewImageSource(path)
	}

	head, err := readHead(path)
	if err != nil {
		return nil, err
	}
	switch {
	case filetype.Is(head, "pdf"):
		return NewPDFSource(path, opts.PDFURL, opts.Scale)
	case filetype.IsImage(head):
		return NewImageFileSource(filepath.Base(path), path), nil
	case looksLikeHTML(path, head):
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return NewHTMLSource(filepath.Base(path), f, opts.HTML)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
}

func looksLikeHTML(path string, head []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
