package codec

import "github.com/reoring/lcd"

// Identity returns a Codec that passes values through unchanged in both
// directions. It is the explicit form of a field without hooks.
func Identity() lcd.Codec {
	pass := func(v any) (any, error) { return v, nil }
	return lcd.Codec{Name: "identity", PostLoad: pass, PreDump: pass}
}

// Lookup returns a built-in codec by name: "rfc3339", "date", "identity".
// For "date" the optional arg is the layout.
func Lookup(name, arg string) (lcd.Codec, bool) {
	switch name {
	case "rfc3339", "time":
		return TimeRFC3339(), true
	case "date":
		return Date(arg), true
	case "identity", "":
		return Identity(), true
	}
	return lcd.Codec{}, false
}
