package lcd

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeInvalidEnum   = "invalid_enum"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeCheckFailed   = "check_failed"
	CodeUnresolvedRef = "unresolved_ref"
	CodeDuplicateKey  = "duplicate_key"
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
	CodeCustom        = "custom"
)

// Declaration errors. They are returned (wrapped) by builders and registries,
// never by Verify.
var (
	ErrDuplicateField  = errors.New("lcd: duplicate field")
	ErrDuplicateStruct = errors.New("lcd: duplicate struct")
	ErrUnknownStruct   = errors.New("lcd: unknown struct")
	ErrNilStruct       = errors.New("lcd: nil struct")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "got":0})
	// for i18n and diagnostics.
	Params map[string]any
	// Rule optionally records the check or refine name that produced this issue.
	Rule string
}

func (it Issue) String() string {
	if it.Message == "" {
		return fmt.Sprintf("%s at %s", it.Code, it.Path)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Paths returns the path of every issue in order.
func (iss Issues) Paths() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Path
	}
	return out
}

// At returns the issues reported at exactly the given path.
func (iss Issues) At(path string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path == path {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// InvalidDataStructure is returned by Verify and Load when a candidate does not
// satisfy its DataStruct. It unwraps to the underlying Issues.
type InvalidDataStructure struct {
	Struct string
	Issues Issues
}

func (e *InvalidDataStructure) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "lcd: invalid %s", e.Struct)
	for _, it := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(it.String())
	}
	return b.String()
}

func (e *InvalidDataStructure) Unwrap() error { return e.Issues }

// AsInvalid extracts an *InvalidDataStructure from err.
func AsInvalid(err error) (*InvalidDataStructure, bool) {
	var ide *InvalidDataStructure
	if errors.As(err, &ide) {
		return ide, true
	}
	return nil, false
}

// CheckError is the error a Check returns to describe a violation. Code
// defaults to CodeCheckFailed when empty.
type CheckError struct {
	Code    string
	Message string
	Params  map[string]any
}

func (e *CheckError) Error() string { return e.Message }

// rebase prefixes every issue path with base.
func rebase(base string, iss Issues) Issues {
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
