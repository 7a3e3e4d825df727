package check

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/reoring/lcd"
)

// V is the shared validator instance used by Tag. Register custom validations
// on it before building declarations that use them.
var V = validator.New()

// Tag validates the value with a go-playground/validator tag expression such
// as "email", "uuid4", "url" or "min=3,max=20". json.Number values are
// validated as float64 so numeric tags compare by value.
func Tag(tag string) lcd.Check {
	return lcd.NewCheck("tag:"+tag, func(v any) error {
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			if err != nil {
				return err
			}
			v = f
		}
		err := V.Var(v, tag)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &lcd.CheckError{
				Code:    lcd.CodeCheckFailed,
				Message: message(fe),
				Params:  map[string]any{"tag": fe.Tag(), "param": fe.Param()},
			}
		}
		return err
	})
}

// message returns a human-readable text for a validation error.
func message(e validator.FieldError) string {
	switch e.Tag() {
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}
