// Package pdf reads the page tree of a PDF file: how many pages it has and
// the size and rotation of each one. Content streams, fonts and images are
// not interpreted; rendering is left to the browser.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotPDF is returned by [Load] when the data has no %PDF- header.
var ErrNotPDF = errors.New("pdf: not a PDF file")

// xrefEntry locates one indirect object, either at a byte offset or inside
// an object stream.
type xrefEntry struct {
	offset   int64
	inStream int // object stream number, 0 when stored directly
	index    int
}

// Document is a loaded PDF file.
type Document struct {
	data    []byte
	xref    map[int]xrefEntry
	trailer Dict
	cache   map[int]*Object
}

// Open reads and loads a PDF file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdf: reading file: %w", err)
	}
	return Load(data)
}

// Load parses the cross-reference data of a PDF held in memory. A damaged
// cross-reference section is rebuilt by scanning for object headers.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	doc := &Document{
		data:  data,
		xref:  make(map[int]xrefEntry),
		cache: make(map[int]*Object),
	}
	if err := doc.readXRef(); err != nil {
		doc.xref = make(map[int]xrefEntry)
		doc.trailer = nil
		if rerr := doc.reconstruct(); rerr != nil {
			return nil, fmt.Errorf("pdf: %w (reconstruction: %w)", err, rerr)
		}
	}
	return doc, nil
}

// Version returns the header version, e.g. "1.7".
func (doc *Document) Version() string {
	i := bytes.Index(doc.data, []byte("%PDF-"))
	if i < 0 {
		return ""
	}
	l := newLexer(doc.data, i+5)
	return l.token()
}

func (doc *Document) readXRef() error {
	tail := doc.data[max(len(doc.data)-1024, 0):]
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return errors.New("startxref not found")
	}
	l := newLexer(tail, i+len("startxref"))
	l.skip()
	off, err := strconv.ParseInt(l.token(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid startxref: %w", err)
	}

	seen := map[int64]bool{}
	for off > 0 || len(seen) == 0 {
		if seen[off] {
			break
		}
		seen[off] = true
		prev, err := doc.readSection(off)
		if err != nil {
			return err
		}
		off = prev
	}
	if doc.trailer == nil {
		return errors.New("trailer not found")
	}
	return nil
}

// readSection loads one xref table or stream and returns the /Prev offset.
// Entries already known from a newer section win.
func (doc *Document) readSection(off int64) (int64, error) {
	if off < 0 || off >= int64(len(doc.data)) {
		return 0, fmt.Errorf("xref offset %d out of range", off)
	}
	l := newLexer(doc.data, int(off))
	l.skip()
	if l.keyword("xref") {
		return doc.readTable(l)
	}
	return doc.readStream(l)
}

func (doc *Document) readTable(l *lexer) (int64, error) {
	for {
		l.skip()
		if l.keyword("trailer") {
			break
		}
		first, err1 := strconv.Atoi(l.token())
		l.skip()
		count, err2 := strconv.Atoi(l.token())
		if err1 != nil || err2 != nil {
			return 0, errors.New("malformed xref subsection")
		}
		for i := range count {
			l.skip()
			offTok := l.token()
			l.skip()
			l.token()
			l.skip()
			kind := l.token()
			if _, ok := doc.xref[first+i]; ok || kind != "n" {
				continue
			}
			off, err := strconv.ParseInt(offTok, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("malformed xref entry for object %d", first+i)
			}
			doc.xref[first+i] = xrefEntry{offset: off}
		}
	}
	t, err := l.object()
	if err != nil {
		return 0, fmt.Errorf("reading trailer: %w", err)
	}
	if t.Kind != Dictionary {
		return 0, errors.New("trailer is not a dictionary")
	}
	doc.adoptTrailer(t.Dict)
	// hybrid files keep compressed objects in a side stream
	if stm, ok := t.Dict.Int("XRefStm"); ok {
		if _, err := doc.readSection(stm); err != nil {
			return 0, err
		}
	}
	prev, _ := t.Dict.Int("Prev")
	return prev, nil
}

func (doc *Document) readStream(l *lexer) (int64, error) {
	if _, ok := l.header(); !ok {
		return 0, errors.New("xref stream header not found")
	}
	obj, err := l.object()
	if err != nil {
		return 0, err
	}
	if obj.Kind != Stream {
		return 0, errors.New("xref section is neither a table nor a stream")
	}
	doc.adoptTrailer(obj.Dict)

	data, err := decode(obj.Dict, obj.Stream)
	if err != nil {
		return 0, fmt.Errorf("decoding xref stream: %w", err)
	}
	w, _ := obj.Dict.Array("W")
	if len(w) < 3 {
		return 0, errors.New("xref stream without /W")
	}
	w1, w2, w3 := int(w[0].Int), int(w[1].Int), int(w[2].Int)
	width := w1 + w2 + w3
	if width == 0 {
		return 0, errors.New("xref stream with zero width entries")
	}

	size, _ := obj.Dict.Int("Size")
	index := []int{0, int(size)}
	if arr, ok := obj.Dict.Array("Index"); ok && obj.Dict["Index"].Kind == Array {
		index = index[:0]
		for _, o := range arr {
			index = append(index, int(o.Int))
		}
	}

	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		for id := index[s]; id < index[s]+index[s+1] && pos+width <= len(data); id++ {
			field := func(at, n int, def int) int {
				if n == 0 {
					return def
				}
				v := 0
				for _, b := range data[pos+at : pos+at+n] {
					v = v<<8 | int(b)
				}
				return v
			}
			typ := field(0, w1, 1)
			f2, f3 := field(w1, w2, 0), field(w1+w2, w3, 0)
			pos += width
			if _, ok := doc.xref[id]; ok {
				continue
			}
			switch typ {
			case 1:
				doc.xref[id] = xrefEntry{offset: int64(f2)}
			case 2:
				doc.xref[id] = xrefEntry{inStream: f2, index: f3}
			}
		}
	}
	prev, _ := obj.Dict.Int("Prev")
	return prev, nil
}

func (doc *Document) adoptTrailer(d Dict) {
	if doc.trailer == nil {
		doc.trailer = d
		return
	}
	for k, v := range d {
		if _, ok := doc.trailer[k]; !ok {
			doc.trailer[k] = v
		}
	}
}

var objHeader = regexp.MustCompile(`(?m)(\d+)\s+\d+\s+obj\b`)

// reconstruct rebuilds the xref map by scanning the whole file. Later
// definitions of the same object replace earlier ones, as incremental
// updates do.
func (doc *Document) reconstruct() error {
	for _, m := range objHeader.FindAllSubmatchIndex(doc.data, -1) {
		n, err := strconv.Atoi(string(doc.data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		doc.xref[n] = xrefEntry{offset: int64(m[0])}
	}
	for n := range doc.xref {
		obj, err := doc.resolve(n)
		if err != nil || obj.Kind != Dictionary {
			continue
		}
		if t, _ := obj.Dict.Name("Type"); t == "Catalog" {
			doc.trailer = Dict{"Root": {Kind: Ref, Ref: Reference{Number: n}}}
			return nil
		}
	}
	return errors.New("no catalog found")
}

// Resolve follows obj when it is an indirect reference. Missing objects
// resolve to null.
func (doc *Document) Resolve(obj *Object) (*Object, error) {
	if obj == nil {
		return &Object{}, nil
	}
	if obj.Kind != Ref {
		return obj, nil
	}
	return doc.resolve(obj.Ref.Number)
}

func (doc *Document) resolve(n int) (*Object, error) {
	if o, ok := doc.cache[n]; ok {
		return o, nil
	}
	e, ok := doc.xref[n]
	if !ok {
		return &Object{}, nil
	}
	// guards against reference cycles through object streams
	doc.cache[n] = &Object{}

	var obj *Object
	var err error
	if e.inStream != 0 {
		obj, err = doc.fromObjectStream(e)
	} else {
		obj, err = doc.atOffset(e.offset)
	}
	if err != nil {
		delete(doc.cache, n)
		return nil, fmt.Errorf("pdf: object %d: %w", n, err)
	}
	doc.cache[n] = obj
	return obj, nil
}

func (doc *Document) atOffset(off int64) (*Object, error) {
	if off < 0 || off >= int64(len(doc.data)) {
		return nil, fmt.Errorf("offset %d out of range", off)
	}
	l := newLexer(doc.data, int(off))
	if _, ok := l.header(); !ok {
		return nil, fmt.Errorf("no object header at offset %d", off)
	}
	return l.object()
}

func (doc *Document) fromObjectStream(e xrefEntry) (*Object, error) {
	stm, err := doc.resolve(e.inStream)
	if err != nil {
		return nil, err
	}
	if stm.Kind != Stream {
		return nil, fmt.Errorf("object stream %d is not a stream", e.inStream)
	}
	data, err := decode(stm.Dict, stm.Stream)
	if err != nil {
		return nil, err
	}
	n, _ := stm.Dict.Int("N")
	first, _ := stm.Dict.Int("First")
	if int64(e.index) >= n {
		return nil, fmt.Errorf("index %d beyond object stream %d", e.index, e.inStream)
	}

	l := newLexer(data, 0)
	var off int
	for range e.index + 1 {
		l.skip()
		l.token()
		l.skip()
		off, err = strconv.Atoi(l.token())
		if err != nil {
			return nil, fmt.Errorf("malformed object stream %d", e.inStream)
		}
	}
	return newLexer(data, int(first)+off).object()
}

// Catalog returns the document catalog.
func (doc *Document) Catalog() (Dict, error) {
	root, err := doc.Resolve(doc.trailer["Root"])
	if err != nil {
		return nil, err
	}
	if root.Kind != Dictionary {
		return nil, errors.New("pdf: catalog is not a dictionary")
	}
	return root.Dict, nil
}

// Title returns the /Title of the document information dictionary, if any.
func (doc *Document) Title() string {
	info, err := doc.Resolve(doc.trailer["Info"])
	if err != nil || info.Kind != Dictionary {
		return ""
	}
	t, err := doc.Resolve(info.Dict["Title"])
	if err != nil || t.Kind != String {
		return ""
	}
	s := t.Str
	// UTF-16BE with byte order mark
	if len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff {
		var b strings.Builder
		for i := 2; i+1 < len(s); i += 2 {
			b.WriteRune(rune(uint16(s[i])<<8 | uint16(s[i+1])))
		}
		return b.String()
	}
	return strings.TrimSpace(string(s))
}
