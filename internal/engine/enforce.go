package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives non-fatal issues (duplicate keys under DupWarn).
	IssueSink func(SimpleIssue)
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
	haveKey    bool
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		if e.overBudget() {
			return Token{}, e.truncated()
		}
		return Token{}, err
	}
	if e.overBudget() {
		return Token{}, e.truncated()
	}

	path := e.pathFor(tok)
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, keys: map[string]struct{}{}, path: path}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{Code: "parse_error", Path: NormalizePath(path), Message: "max depth " + strconv.Itoa(e.opt.MaxDepth) + " exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if len(e.stack) == 0 {
			break
		}
		top := &e.stack[len(e.stack)-1]
		if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
			si := SimpleIssue{Code: "duplicate_key", Path: NormalizePath(path), Message: "key '" + tok.String + "' duplicated"}
			if e.opt.OnDuplicate == DupError {
				return Token{}, IssueError{si}
			}
			if e.opt.IssueSink != nil {
				e.opt.IssueSink(si)
			}
		}
		top.keys[tok.String] = struct{}{}
		top.pendingKey = tok.String
		top.haveKey = true
	default:
		e.valueDone()
	}
	return tok, nil
}

// pathFor returns the JSON Pointer of the value or key carried by tok.
func (e *enforcingTokenSource) pathFor(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return JoinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := JoinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if top.haveKey {
		return JoinPointer(top.path, top.pendingKey)
	}
	return top.path
}

// valueDone marks the pending object member as consumed.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 && e.stack[n-1].kind == kindObject {
		e.stack[n-1].haveKey = false
		e.stack[n-1].pendingKey = ""
	}
}

func (e *enforcingTokenSource) overBudget() bool {
	if e.opt.MaxBytes <= 0 {
		return false
	}
	off := e.inner.Location()
	return off >= 0 && off > e.opt.MaxBytes
}

func (e *enforcingTokenSource) truncated() error {
	return IssueError{SimpleIssue{Code: "truncated", Path: "/", Message: "input exceeds " + strconv.FormatInt(e.opt.MaxBytes, 10) + " bytes"}}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

// NormalizePath maps the document root to "/".
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends an escaped reference token to a JSON Pointer.
func JoinPointer(base, token string) string {
	if base == "/" {
		base = ""
	}
	return base + "/" + jsonPointerEscaper.Replace(token)
}
