package flipbook

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
)

// ImageSource yields one page per image file. Files are ordered naturally by
// name, so "page2.png" comes before "page10.png".
type ImageSource struct {
	title string
	files []string
}

// NewImageSource collects the image files in dir. Files that are not images,
// or are in a format no registered decoder reads, are skipped.
func NewImageSource(dir string) (*ImageSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	s := &ImageSource{title: filepath.Base(dir)}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		head, err := readHead(path)
		if err != nil {
			return nil, err
		}
		if filetype.IsImage(head) && decodable(path) {
			s.files = append(s.files, path)
		}
	}
	slices.SortFunc(s.files, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return s, nil
}

// NewImageFileSource returns a source of the given image files, in order.
func NewImageFileSource(title string, files ...string) *ImageSource {
	return &ImageSource{title: title, files: slices.Clone(files)}
}

// Title returns the directory name.
func (s *ImageSource) Title() string { return s.title }

// Len implements [Source].
func (s *ImageSource) Len(context.Context) (int, error) { return len(s.files), nil }

// Page implements [Source]. The natural size is read from the image header.
func (s *ImageSource) Page(_ context.Context, n int) (Page, error) {
	if n < 1 || n > len(s.files) {
		return Page{}, fmt.Errorf("page %d out of range", n)
	}
	path := s.files[n-1]
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	mediaType := "image/" + format
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mediaType = kind.MIME.Value
	}
	return Page{
		Number: n,
		Width:  cfg.Width,
		Height: cfg.Height,
		Asset:  Asset{Kind: ImageAsset, MediaType: mediaType, Data: data},
	}, nil
}

// decodable reports whether a registered image decoder accepts the file's
// header. filetype recognises formats such as ICO and HEIF that nothing here
// can decode.
func decodable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(bufio.NewReader(f))
	return err == nil
}

// readHead returns the first bytes of a file, enough for type sniffing.
func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	head := make([]byte, 262)
	n, _ := f.Read(head)
	return head[:n], nil
}
