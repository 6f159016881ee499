package flipbook

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type memSource struct {
	pages   int
	failAt  int
	lenErr  error
	title   string
	fetched []int
}

func (s *memSource) Len(context.Context) (int, error) { return s.pages, s.lenErr }

func (s *memSource) Page(_ context.Context, n int) (Page, error) {
	s.fetched = append(s.fetched, n)
	if n == s.failAt {
		return Page{}, errors.New("broken page")
	}
	return Page{Width: 100 * n, Height: 200, Asset: Asset{Kind: ImageAsset}}, nil
}

type titledSource struct{ memSource }

func (s *titledSource) Title() string { return s.title }

func TestAcquire(t *testing.T) {
	src := &memSource{pages: 4}
	var progress [][2]int
	doc, err := Acquire(context.Background(), "book", src, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if doc.Len() != 4 || doc.Title != "book" || doc.Source != "book" {
		t.Errorf("doc = %d pages, title %q, source %q", doc.Len(), doc.Title, doc.Source)
	}
	for i, p := range doc.Pages {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i+1, p.Number)
		}
	}
	if doc.NaturalSize() != (Size{100, 200}) {
		t.Errorf("NaturalSize = %v, want size of page 1", doc.NaturalSize())
	}
	want := [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}
	if fmt.Sprint(progress) != fmt.Sprint(want) {
		t.Errorf("progress = %v, want %v", progress, want)
	}
}

func TestAcquireTitle(t *testing.T) {
	src := &titledSource{memSource{pages: 1, title: "A Title"}}
	doc, err := Acquire(context.Background(), "file.pdf", src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "A Title" {
		t.Errorf("Title = %q, want %q", doc.Title, "A Title")
	}
}

func TestAcquireErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	tests := []struct {
		name string
		ctx  context.Context
		src  *memSource
	}{
		{"page failure", context.Background(), &memSource{pages: 5, failAt: 3}},
		{"length failure", context.Background(), &memSource{lenErr: errors.New("unreadable")}},
		{"cancelled", cancelled, &memSource{pages: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Acquire(tt.ctx, "book", tt.src, nil)
			if !errors.Is(err, ErrAcquisition) {
				t.Fatalf("err = %v, want ErrAcquisition", err)
			}
			if doc != nil {
				t.Error("partial document returned")
			}
		})
	}
}

func TestAcquireStopsAtFailure(t *testing.T) {
	src := &memSource{pages: 5, failAt: 2}
	_, _ = Acquire(context.Background(), "book", src, nil)
	if fmt.Sprint(src.fetched) != "[1 2]" {
		t.Errorf("fetched %v, want [1 2]", src.fetched)
	}
}

func TestDocumentNil(t *testing.T) {
	var d *Document
	if d.Len() != 0 {
		t.Error("nil document has pages")
	}
	if _, ok := d.Page(1); ok {
		t.Error("nil document returned a page")
	}
	if !d.NaturalSize().Empty() {
		t.Error("nil document has a natural size")
	}
}
