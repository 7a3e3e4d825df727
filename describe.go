package lcd

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Describe renders a human-readable table of the struct's fields in
// declaration order, preceded by the struct doc when set.
//
//	Person: a person
//
//	FIELD    TYPE            REQUIRED  DEFAULT  CHECKS  DOC
//	name     string          yes
//	address  struct Address  no
func (s *DataStruct) Describe() string {
	var b strings.Builder
	b.WriteString(s.name)
	if s.doc != "" {
		b.WriteString(": ")
		b.WriteString(s.doc)
	}
	if s.unknownPolicy != UnknownStrip {
		fmt.Fprintf(&b, " (unknown keys: %s)", s.unknownPolicy)
	}
	b.WriteString("\n\n")
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tREQUIRED\tDEFAULT\tCHECKS\tDOC")
	for _, nf := range s.fields {
		f := nf.field
		req := "no"
		if f.required {
			req = "yes"
		}
		def := ""
		if f.hasDefault {
			def = fmt.Sprint(f.def)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", nf.name, f.label(), req, def, strings.Join(f.Checks(), ","), f.doc)
	}
	_ = tw.Flush()
	return b.String()
}

// label is the TYPE column: the shape, list bounds, nullability and codec.
func (f Field) label() string {
	l := f.shapeOrAny().label()
	if ls, ok := f.shape.(listShape); ok && (ls.minItems >= 0 || ls.maxItems >= 0) {
		lo, hi := "", ""
		if ls.minItems >= 0 {
			lo = fmt.Sprint(ls.minItems)
		}
		if ls.maxItems >= 0 {
			hi = fmt.Sprint(ls.maxItems)
		}
		l += "[" + lo + ".." + hi + "]"
	}
	if f.nullable {
		l += "?"
	}
	if f.codec.Name != "" {
		l += " (" + f.codec.Name + ")"
	}
	return l
}
