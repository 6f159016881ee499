package pdf

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind identifies the type of a PDF object.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Real
	String
	Name
	Array
	Dictionary
	Stream
	Ref
)

// Object is a parsed PDF object. Only the field matching Kind is set.
type Object struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Real   float64
	Str    []byte
	Name   string
	Array  []*Object
	Dict   Dict
	Stream []byte // raw, still encoded
	Ref    Reference
}

// Number returns the numeric value of an Int or Real object.
func (o *Object) Number() (float64, bool) {
	if o == nil {
		return 0, false
	}
	switch o.Kind {
	case Int:
		return float64(o.Int), true
	case Real:
		return o.Real, true
	}
	return 0, false
}

// Reference is an indirect object reference, "N G R".
type Reference struct {
	Number int
	Gen    int
}

// Dict is a PDF dictionary keyed by name without the leading slash.
type Dict map[string]*Object

// Int returns an integer entry. Reals are truncated.
func (d Dict) Int(key string) (int64, bool) {
	o, ok := d[key]
	if !ok {
		return 0, false
	}
	switch o.Kind {
	case Int:
		return o.Int, true
	case Real:
		return int64(o.Real), true
	}
	return 0, false
}

// Name returns a name entry.
func (d Dict) Name(key string) (string, bool) {
	o, ok := d[key]
	if !ok || o.Kind != Name {
		return "", false
	}
	return o.Name, true
}

// Array returns an array entry. A single object is treated as a one element
// array, which is how filters and decode parameters are commonly written.
func (d Dict) Array(key string) ([]*Object, bool) {
	o, ok := d[key]
	if !ok {
		return nil, false
	}
	if o.Kind == Array {
		return o.Array, true
	}
	return []*Object{o}, true
}

const maxDepth = 100

// lexer is a recursive-descent object reader over a byte slice.
type lexer struct {
	buf   []byte
	pos   int
	depth int
}

func newLexer(buf []byte, pos int) *lexer {
	return &lexer{buf: buf, pos: pos}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skip moves past whitespace and comments.
func (l *lexer) skip() {
	for l.pos < len(l.buf) {
		switch c := l.buf[l.pos]; {
		case c == '%':
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
		case isSpace(c):
			l.pos++
		default:
			return
		}
	}
}

// keyword consumes kw if it comes next.
func (l *lexer) keyword(kw string) bool {
	if l.pos >= len(l.buf) || !bytes.HasPrefix(l.buf[l.pos:], []byte(kw)) {
		return false
	}
	l.pos += len(kw)
	return true
}

// token reads a run of regular characters.
func (l *lexer) token() string {
	start := l.pos
	for l.pos < len(l.buf) && !isSpace(l.buf[l.pos]) && !isDelim(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

// header consumes "N G obj" and returns the object number.
func (l *lexer) header() (int, bool) {
	l.skip()
	n, err := strconv.Atoi(l.token())
	if err != nil {
		return 0, false
	}
	l.skip()
	if _, err := strconv.Atoi(l.token()); err != nil {
		return 0, false
	}
	l.skip()
	return n, l.keyword("obj")
}

// object reads the next object. Unknown tokens read as null.
func (l *lexer) object() (*Object, error) {
	if l.depth > maxDepth {
		return nil, fmt.Errorf("objects nested deeper than %d", maxDepth)
	}
	l.depth++
	defer func() { l.depth-- }()

	l.skip()
	if l.pos >= len(l.buf) {
		return &Object{}, nil
	}
	switch c := l.buf[l.pos]; {
	case c == '/':
		return &Object{Kind: Name, Name: l.name()}, nil
	case c == '[':
		return l.array()
	case c == '<' && l.pos+1 < len(l.buf) && l.buf[l.pos+1] == '<':
		return l.dict()
	case c == '<':
		return &Object{Kind: String, Str: l.hex()}, nil
	case c == '(':
		return &Object{Kind: String, Str: l.literal()}, nil
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.number(), nil
	case l.keyword("true"):
		return &Object{Kind: Bool, Bool: true}, nil
	case l.keyword("false"):
		return &Object{Kind: Bool}, nil
	case l.keyword("null"):
		return &Object{}, nil
	}
	l.pos++
	return &Object{}, nil
}

func (l *lexer) name() string {
	l.pos++
	raw := l.token()
	if !bytes.ContainsRune([]byte(raw), '#') {
		return raw
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			out = append(out, unhex(raw[i+1])<<4|unhex(raw[i+2]))
			i += 2
			continue
		}
		out = append(out, raw[i])
	}
	return string(out)
}

func unhex(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func (l *lexer) hex() []byte {
	l.pos++
	var out []byte
	var hi byte
	half := false
	for ; l.pos < len(l.buf) && l.buf[l.pos] != '>'; l.pos++ {
		c := l.buf[l.pos]
		if isSpace(c) {
			continue
		}
		if half {
			out = append(out, hi<<4|unhex(c))
		} else {
			hi = unhex(c)
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	if l.pos < len(l.buf) {
		l.pos++
	}
	return out
}

// literal reads a (string). Only the escapes needed to find the closing
// parenthesis are interpreted; geometry never depends on string contents.
func (l *lexer) literal() []byte {
	l.pos++
	var out []byte
	for depth := 1; l.pos < len(l.buf); l.pos++ {
		c := l.buf[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos < len(l.buf) {
				out = append(out, l.buf[l.pos])
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return out
			}
		}
		out = append(out, c)
	}
	return out
}

func (l *lexer) array() (*Object, error) {
	l.pos++
	arr := &Object{Kind: Array}
	for {
		l.skip()
		if l.pos >= len(l.buf) {
			return arr, nil
		}
		if l.buf[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		o, err := l.object()
		if err != nil {
			return nil, err
		}
		arr.Array = append(arr.Array, o)
	}
}

func (l *lexer) dict() (*Object, error) {
	l.pos += 2
	d := Dict{}
	for {
		l.skip()
		if l.pos >= len(l.buf) {
			break
		}
		if l.keyword(">>") {
			break
		}
		if l.buf[l.pos] != '/' {
			l.pos++
			continue
		}
		key := l.name()
		val, err := l.object()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}

	l.skip()
	if !l.keyword("stream") {
		return &Object{Kind: Dictionary, Dict: d}, nil
	}
	if l.pos < len(l.buf) && l.buf[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.buf) && l.buf[l.pos] == '\n' {
		l.pos++
	}
	start := l.pos
	var end int
	if n, ok := d.Int("Length"); ok && n >= 0 && start+int(n) <= len(l.buf) {
		end = start + int(n)
	} else if i := bytes.Index(l.buf[start:], []byte("endstream")); i >= 0 {
		end = start + i
	} else {
		end = len(l.buf)
	}
	l.pos = end
	l.skip()
	l.keyword("endstream")
	return &Object{Kind: Stream, Dict: d, Stream: l.buf[start:end]}, nil
}

// number reads an integer, a real, or an "N G R" reference.
func (l *lexer) number() *Object {
	tok := l.token()
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return &Object{}
		}
		return &Object{Kind: Real, Real: f}
	}

	after := l.pos
	l.skip()
	if g, err := strconv.Atoi(l.token()); err == nil {
		l.skip()
		if l.pos < len(l.buf) && l.buf[l.pos] == 'R' &&
			(l.pos+1 == len(l.buf) || isSpace(l.buf[l.pos+1]) || isDelim(l.buf[l.pos+1])) {
			l.pos++
			return &Object{Kind: Ref, Ref: Reference{Number: int(n), Gen: g}}
		}
	}
	l.pos = after
	return &Object{Kind: Int, Int: n}
}
