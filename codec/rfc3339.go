package codec

import (
	"fmt"
	"time"

	"github.com/reoring/lcd"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and
// time.Time. Load accepts RFC3339 with or without fractional seconds; dump
// writes UTC RFC3339Nano (trailing zeros trimmed).
func TimeRFC3339() lcd.Codec {
	return lcd.Codec{
		Name: "rfc3339",
		PostLoad: func(raw any) (any, error) {
			switch v := raw.(type) {
			case time.Time:
				return v, nil
			case string:
				return parseRFC3339(v)
			}
			return nil, fmt.Errorf("expected RFC3339 string, got %s", lcd.TypeNameOf(raw))
		},
		PreDump: func(app any) (any, error) {
			switch v := app.(type) {
			case time.Time:
				return formatRFC3339Canonical(v), nil
			case string:
				return v, nil
			}
			return nil, fmt.Errorf("expected time.Time, got %T", app)
		},
	}
}

// Date returns a Codec for calendar dates in the given layout (time.DateOnly
// when empty). Loaded values are midnight UTC.
func Date(layout string) lcd.Codec {
	if layout == "" {
		layout = time.DateOnly
	}
	return lcd.Codec{
		Name: "date",
		PostLoad: func(raw any) (any, error) {
			switch v := raw.(type) {
			case time.Time:
				return v, nil
			case string:
				return time.ParseInLocation(layout, v, time.UTC)
			}
			return nil, fmt.Errorf("expected date string, got %s", lcd.TypeNameOf(raw))
		},
		PreDump: func(app any) (any, error) {
			switch v := app.(type) {
			case time.Time:
				return v.Format(layout), nil
			case string:
				return v, nil
			}
			return nil, fmt.Errorf("expected time.Time, got %T", app)
		},
	}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
