package check

import (
	"fmt"
	"regexp"

	"github.com/reoring/lcd"
)

// Build constructs a check from its declarative name and argument, as used in
// schema documents: {gte: 0}, {one_of: [a, b]}, {pattern: "^x"}, {tag: email}.
func Build(name string, arg any) (lcd.Check, error) {
	switch name {
	case "eq":
		return Eq(arg), nil
	case "gt", "gte", "lt", "lte":
		f, ok := lcd.ToFloat(arg)
		if !ok {
			return lcd.Check{}, fmt.Errorf("check %s: argument must be a number, got %T", name, arg)
		}
		switch name {
		case "gt":
			return Gt(f), nil
		case "gte":
			return Gte(f), nil
		case "lt":
			return Lt(f), nil
		default:
			return Lte(f), nil
		}
	case "one_of":
		l, ok := arg.([]any)
		if !ok {
			return lcd.Check{}, fmt.Errorf("check one_of: argument must be a list, got %T", arg)
		}
		return OneOf(l...), nil
	case "min_len", "max_len":
		n, ok := lcd.ToInt(arg)
		if !ok || n < 0 {
			return lcd.Check{}, fmt.Errorf("check %s: argument must be a non-negative integer, got %v", name, arg)
		}
		if name == "min_len" {
			return MinLen(int(n)), nil
		}
		return MaxLen(int(n)), nil
	case "pattern":
		s, ok := arg.(string)
		if !ok {
			return lcd.Check{}, fmt.Errorf("check pattern: argument must be a string, got %T", arg)
		}
		if _, err := regexp.Compile(s); err != nil {
			return lcd.Check{}, fmt.Errorf("check pattern: %w", err)
		}
		return Pattern(s), nil
	case "tag":
		s, ok := arg.(string)
		if !ok || s == "" {
			return lcd.Check{}, fmt.Errorf("check tag: argument must be a validator tag, got %v", arg)
		}
		return Tag(s), nil
	}
	return lcd.Check{}, fmt.Errorf("unknown check %q", name)
}
