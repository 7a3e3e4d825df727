package lcd

// UnknownPolicy controls how keys not declared by a DataStruct are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Ignore unknown keys (default).
	UnknownStrict                           // Reject unknown keys with an error.
	UnknownPassthrough                      // Keep unknown keys on the instance and dump them back.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrict:
		return "strict"
	case UnknownPassthrough:
		return "passthrough"
	default:
		return "strip"
	}
}

// ParseUnknownPolicy maps "strict", "strip"/"ignore" and "passthrough" to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, bool) {
	switch s {
	case "", "strip", "ignore":
		return UnknownStrip, true
	case "strict":
		return UnknownStrict, true
	case "passthrough":
		return UnknownPassthrough, true
	}
	return UnknownStrip, false
}

// Severity expresses how an input-level finding is treated.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// VerifyOpt bundles verification options.
type VerifyOpt struct {
	// Strict rejects unknown keys at every level regardless of the struct's policy.
	Strict bool
	// FailFast stops at the first issue instead of collecting all of them.
	FailFast bool
}

// LoadOpt bundles options for decoding a Source before verification.
type LoadOpt struct {
	Verify VerifyOpt
	// DuplicateKeys controls duplicate JSON object keys. Error rejects the
	// input, Warn reports through OnWarning, Ignore keeps the last value.
	DuplicateKeys Severity
	MaxDepth      int   // 0 disables the nesting limit.
	MaxBytes      int64 // 0 disables the size limit.
	// OnWarning receives non-fatal input issues (for example duplicate keys
	// with DuplicateKeys == Warn).
	OnWarning func(Issue)
}

// DumpMode selects how fields holding Missing are rendered.
type DumpMode int

const (
	// DumpCanonical emits every declared field; Missing becomes null.
	DumpCanonical DumpMode = iota
	// DumpPreserve omits Missing fields so the output mirrors the input keys.
	DumpPreserve
)

// DumpOpt bundles dump options.
type DumpOpt struct {
	Mode DumpMode
}

func lastOpt[T any](opts []T) T {
	var zero T
	if len(opts) == 0 {
		return zero
	}
	return opts[len(opts)-1]
}
