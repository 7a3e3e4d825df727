package lcd

import (
	"bytes"
	"errors"
	"io"

	eng "github.com/reoring/lcd/internal/engine"
)

// Source is raw input that Load decodes into plain data before verification.
// Implementations are provided by JSONBytes, JSONReader, YAMLBytes, YAMLReader
// and Value.
type Source interface {
	// Format names the input format ("json", "yaml" or "value").
	Format() string
	decode(opt LoadOpt) (any, error)
}

type jsonSource struct {
	r io.Reader
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return jsonSource{r: bytes.NewReader(b)} }

// JSONReader wraps an io.Reader as a JSON Source. The reader is consumed by Load.
func JSONReader(r io.Reader) Source { return jsonSource{r: r} }

func (jsonSource) Format() string { return "json" }

func (s jsonSource) decode(opt LoadOpt) (any, error) {
	ts := eng.NewJSONReader(s.r, opt.MaxBytes)
	if needsEnforcement(opt) {
		ts = eng.WrapWithEnforcement(ts, enforceOptions(opt))
	}
	return eng.DecodeAny(ts)
}

type yamlSource struct {
	b []byte
	r io.Reader
}

// YAMLBytes wraps a byte slice as a YAML Source. Only the first document is
// read. Scalars decode to the same types as JSON input (numbers become
// json.Number, timestamps stay strings).
func YAMLBytes(b []byte) Source { return yamlSource{b: b} }

// YAMLReader wraps an io.Reader as a YAML Source.
func YAMLReader(r io.Reader) Source { return yamlSource{r: r} }

func (yamlSource) Format() string { return "yaml" }

func (s yamlSource) decode(opt LoadOpt) (any, error) {
	data := s.b
	if s.r != nil {
		r := s.r
		if opt.MaxBytes > 0 {
			r = io.LimitReader(r, opt.MaxBytes+1)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return eng.DecodeYAML(data, enforceOptions(opt))
}

type valueSource struct{ v any }

// Value wraps already-decoded data (for example the result of json.Unmarshal
// into any) as a Source.
func Value(v any) Source { return valueSource{v: v} }

func (valueSource) Format() string { return "value" }

func (s valueSource) decode(LoadOpt) (any, error) { return s.v, nil }

func needsEnforcement(opt LoadOpt) bool {
	return opt.DuplicateKeys != Ignore || opt.MaxDepth > 0 || opt.MaxBytes > 0
}

func enforceOptions(opt LoadOpt) eng.EnforceOptions {
	eo := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.DuplicateKeys),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	}
	if opt.OnWarning != nil {
		eo.IssueSink = func(si eng.SimpleIssue) {
			opt.OnWarning(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
		}
	}
	return eo
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

// toIssues converts a decode failure into issues.
func toIssues(err error) Issues {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Path: eng.NormalizePath(ie.Path), Code: ie.Code, Message: ie.Message, Cause: err}}
	}
	msg := err.Error()
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		msg = "unexpected end of input"
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: msg, Cause: err}}
}
