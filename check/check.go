// Package check provides reusable field checks for lcd declarations. Each
// constructor returns an lcd.Check whose violations are *lcd.CheckError values
// carrying a stable issue code and parameters.
package check

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reoring/lcd"
	js "github.com/reoring/lcd/jsonschema"
)

// Func wraps an arbitrary predicate-style function as a named check.
func Func(name string, fn func(v any) error) lcd.Check { return lcd.NewCheck(name, fn) }

// Eq requires the value to equal want. Numbers compare by value regardless of
// representation.
func Eq(want any) lcd.Check {
	return lcd.NewCheck("eq", func(v any) error {
		if equal(v, want) {
			return nil
		}
		return &lcd.CheckError{
			Code:    lcd.CodeCheckFailed,
			Message: fmt.Sprintf("must equal %v", want),
			Params:  map[string]any{"want": want, "got": v},
		}
	}).WithSchema(func(s *js.Schema) { s.Const = want })
}

// Gt requires a number strictly greater than n.
func Gt(n float64) lcd.Check {
	return compare("gt", n, func(f float64) bool { return f > n }, lcd.CodeTooSmall, "must be greater than %v").
		WithSchema(func(s *js.Schema) { s.ExclusiveMinimum = js.Ptr(n) })
}

// Gte requires a number greater than or equal to n.
func Gte(n float64) lcd.Check {
	return compare("gte", n, func(f float64) bool { return f >= n }, lcd.CodeTooSmall, "must be at least %v").
		WithSchema(func(s *js.Schema) { s.Minimum = js.Ptr(n) })
}

// Lt requires a number strictly less than n.
func Lt(n float64) lcd.Check {
	return compare("lt", n, func(f float64) bool { return f < n }, lcd.CodeTooBig, "must be less than %v").
		WithSchema(func(s *js.Schema) { s.ExclusiveMaximum = js.Ptr(n) })
}

// Lte requires a number less than or equal to n.
func Lte(n float64) lcd.Check {
	return compare("lte", n, func(f float64) bool { return f <= n }, lcd.CodeTooBig, "must be at most %v").
		WithSchema(func(s *js.Schema) { s.Maximum = js.Ptr(n) })
}

func compare(name string, bound float64, ok func(float64) bool, code, format string) lcd.Check {
	return lcd.NewCheck(name, func(v any) error {
		f, isNum := lcd.ToFloat(v)
		if !isNum {
			return &lcd.CheckError{
				Code:    lcd.CodeInvalidType,
				Message: "expected number, got " + lcd.TypeNameOf(v),
				Params:  map[string]any{"expected": "number", "got": lcd.TypeNameOf(v)},
			}
		}
		if ok(f) {
			return nil
		}
		key := "min"
		if code == lcd.CodeTooBig {
			key = "max"
		}
		return &lcd.CheckError{
			Code:    code,
			Message: fmt.Sprintf(format, bound),
			Params:  map[string]any{key: bound, "got": f, "op": name},
		}
	})
}

// OneOf requires the value to equal one of the allowed values.
func OneOf(allowed ...any) lcd.Check {
	return lcd.NewCheck("one_of", func(v any) error {
		for _, a := range allowed {
			if equal(v, a) {
				return nil
			}
		}
		strs := make([]string, len(allowed))
		for i, a := range allowed {
			strs[i] = fmt.Sprint(a)
		}
		return &lcd.CheckError{
			Code:    lcd.CodeInvalidEnum,
			Message: "must be one of " + strings.Join(strs, ", "),
			Params:  map[string]any{"allowed": allowed, "got": v},
		}
	}).WithSchema(func(s *js.Schema) { s.Enum = append([]any(nil), allowed...) })
}

// MinLen requires a string (in runes), list or object of at least n elements.
func MinLen(n int) lcd.Check {
	return lcd.NewCheck("min_len", func(v any) error {
		l, ok := length(v)
		if !ok {
			return notSized(v)
		}
		if l >= n {
			return nil
		}
		return &lcd.CheckError{Code: lcd.CodeTooShort, Message: fmt.Sprintf("length must be at least %d", n), Params: map[string]any{"min": n, "got": l}}
	}).WithSchema(func(s *js.Schema) {
		switch s.Type {
		case "array":
			s.MinItems = js.Ptr(n)
		case "string":
			s.MinLength = js.Ptr(n)
		}
	})
}

// MaxLen requires a string (in runes), list or object of at most n elements.
func MaxLen(n int) lcd.Check {
	return lcd.NewCheck("max_len", func(v any) error {
		l, ok := length(v)
		if !ok {
			return notSized(v)
		}
		if l <= n {
			return nil
		}
		return &lcd.CheckError{Code: lcd.CodeTooLong, Message: fmt.Sprintf("length must be at most %d", n), Params: map[string]any{"max": n, "got": l}}
	}).WithSchema(func(s *js.Schema) {
		switch s.Type {
		case "array":
			s.MaxItems = js.Ptr(n)
		case "string":
			s.MaxLength = js.Ptr(n)
		}
	})
}

// Pattern requires a string matching the regular expression expr. It panics
// when expr does not compile, like regexp.MustCompile.
func Pattern(expr string) lcd.Check {
	re := regexp.MustCompile(expr)
	return lcd.NewCheck("pattern", func(v any) error {
		s, ok := v.(string)
		if !ok {
			return &lcd.CheckError{Code: lcd.CodeInvalidType, Message: "expected string, got " + lcd.TypeNameOf(v), Params: map[string]any{"expected": "string", "got": lcd.TypeNameOf(v)}}
		}
		if re.MatchString(s) {
			return nil
		}
		return &lcd.CheckError{Code: lcd.CodePattern, Message: "must match " + expr, Params: map[string]any{"pattern": expr}}
	}).WithSchema(func(s *js.Schema) { s.Pattern = expr })
}

func equal(a, b any) bool {
	if fa, ok := lcd.ToFloat(a); ok {
		if fb, ok := lcd.ToFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

func notSized(v any) error {
	return &lcd.CheckError{Code: lcd.CodeInvalidType, Message: "expected string, list or object, got " + lcd.TypeNameOf(v), Params: map[string]any{"got": lcd.TypeNameOf(v)}}
}
