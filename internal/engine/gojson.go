package engine

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// JSON tokenizer backed by goccy/go-json.

type jsonFrame struct {
	kind         containerKind
	expectingKey bool
}

type jsonSource struct {
	dec   *j.Decoder
	cr    *countingReader
	stack []jsonFrame
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// NewJSONReader wraps r into a TokenSource. When limit > 0 at most limit+1
// bytes are read so oversized input is detected without consuming it all.
func NewJSONReader(r io.Reader, limit int64) TokenSource {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	cr := &countingReader{r: r}
	dec := j.NewDecoder(cr)
	dec.UseNumber()
	return &jsonSource{dec: dec, cr: cr}
}

// NewJSONBytes wraps a byte slice into a TokenSource.
func NewJSONBytes(b []byte, limit int64) TokenSource {
	return NewJSONReader(bytes.NewReader(b), limit)
}

func (s *jsonSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, jsonFrame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject}, nil
		case '[':
			s.stack = append(s.stack, jsonFrame{kind: kindArray})
			return Token{Kind: KindBeginArray}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray}, nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return Token{Kind: KindKey, String: v}, nil
		}
		s.scalarDone()
		return Token{Kind: KindString, String: v}, nil
	case bool:
		s.scalarDone()
		return Token{Kind: KindBool, Bool: v}, nil
	case j.Number:
		s.scalarDone()
		// goccy hands out number text backed by its read buffer.
		return Token{Kind: KindNumber, Number: strings.Clone(string(v))}, nil
	case float64:
		s.scalarDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	}
	s.scalarDone()
	return Token{Kind: KindNull}, nil
}

func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.scalarDone()
}

// scalarDone flips the enclosing object back to expecting a key.
func (s *jsonSource) scalarDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject {
		s.stack[n-1].expectingKey = true
	}
}

// Location reports bytes pulled from the underlying reader. The decoder
// buffers ahead, so this is an upper bound of the parsed offset.
func (s *jsonSource) Location() int64 { return s.cr.n }
