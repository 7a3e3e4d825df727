package lcd

import (
	"strconv"
	"strings"
)

type missingValue struct{}

func (missingValue) String() string { return "<missing>" }

// Missing is the value held by a field whose key was absent from the candidate
// and that has no default. It is never equal to nil, so an absent key and an
// explicit null stay distinguishable. Compare with IsMissing.
var Missing any = missingValue{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingValue)
	return ok
}

// Presence is the bit flag recorded for every declared field during Verify.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

func (p Presence) String() string {
	if p == 0 {
		return "missing"
	}
	var parts []string
	if p&PresenceSeen != 0 {
		parts = append(parts, "seen")
	}
	if p&PresenceWasNull != 0 {
		parts = append(parts, "null")
	}
	if p&PresenceDefaultApplied != 0 {
		parts = append(parts, "default")
	}
	return strings.Join(parts, "|")
}

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Seen reports whether the pointer was present in the input.
func (pm PresenceMap) Seen(ptr string) bool { return pm[ptr]&PresenceSeen != 0 }

// WasNull reports whether the pointer was an explicit null in the input.
func (pm PresenceMap) WasNull(ptr string) bool { return pm[ptr]&PresenceWasNull != 0 }

// DefaultApplied reports whether the value at ptr came from a declared default.
func (pm PresenceMap) DefaultApplied(ptr string) bool {
	return pm[ptr]&PresenceDefaultApplied != 0
}

// merge copies child flags into pm under base.
func (pm PresenceMap) merge(base string, child PresenceMap) {
	for k, v := range child {
		if k == "/" {
			pm[base] |= v
			continue
		}
		pm[base+k] |= v
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// joinPointer appends one reference token to a JSON Pointer per RFC 6901.
func joinPointer(base, token string) string {
	if base == "/" {
		base = ""
	}
	return base + "/" + pointerEscaper.Replace(token)
}

func indexPointer(base string, i int) string { return joinPointer(base, strconv.Itoa(i)) }
