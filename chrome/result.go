package chrome

import (
	"io"
	"os"
)

// Result holds an image captured from the viewer page.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Result struct {
	data      []byte
	mediaType string
}

// Bytes returns the raw image content.
func (r *Result) Bytes() []byte {
	return r.data
}

// MediaType returns the image MIME type, e.g. "image/png".
func (r *Result) MediaType() string {
	return r.mediaType
}

// WriteTo writes the full image to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the image to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the image in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
