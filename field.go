package lcd

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/reoring/lcd/i18n"
	js "github.com/reoring/lcd/jsonschema"
)

// FieldKind tags the three field variants.
type FieldKind int

const (
	KindScalar     FieldKind = iota // Plain value checked against a Type.
	KindStruct                      // Value must validate against another DataStruct.
	KindStructList                  // Ordered sequence of values validating against a DataStruct.
)

func (k FieldKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindStructList:
		return "struct_list"
	default:
		return "scalar"
	}
}

// Check validates a present, non-null field value after type checking.
// Fn returns nil when the value is valid. Returning a *CheckError selects the
// issue code; any other error is reported as CodeCheckFailed.
type Check struct {
	Name string
	Fn   func(v any) error
	// Annotate optionally projects the check onto the field's JSON Schema.
	Annotate func(s *js.Schema)
}

// NewCheck builds a named Check.
func NewCheck(name string, fn func(v any) error) Check { return Check{Name: name, Fn: fn} }

// WithSchema returns a copy of c that annotates exported JSON Schemas.
func (c Check) WithSchema(fn func(s *js.Schema)) Check { c.Annotate = fn; return c }

// Codec converts between the wire value and the application value of a field.
// PostLoad runs on raw input before type checking; PreDump runs on the
// application value before it is dumped. Either may be nil.
type Codec struct {
	Name     string
	PostLoad func(raw any) (any, error)
	PreDump  func(app any) (any, error)
}

// Field declares the expected shape of one DataStruct member together with its
// presence rules, checks and conversion hooks. Field values are immutable: every
// modifier returns a copy.
type Field struct {
	shape      shape
	required   bool
	nullable   bool
	hasDefault bool
	def        any
	checks     []Check
	codec      Codec
	doc        string
}

// shape is the per-kind validation capability of a Field.
type shape interface {
	kind() FieldKind
	validate(ctx context.Context, path string, v any, opt VerifyOpt) (any, Issues)
	dump(ctx context.Context, v any, d dumper) (any, error)
	jsonSchema(c *schemaCollector) *js.Schema
	label() string
}

// Scalar returns a field accepting values of type t.
func Scalar(t Type) Field { return Field{shape: scalarShape{typ: t}} }

// Any returns a field accepting every value, including null.
func Any() Field { return Scalar(TypeAny) }

// String returns a field accepting strings.
func String() Field { return Scalar(TypeString) }

// Int returns a field accepting integral numbers.
func Int() Field { return Scalar(TypeInt) }

// Number returns a field accepting any number.
func Number() Field { return Scalar(TypeNumber) }

// Bool returns a field accepting booleans.
func Bool() Field { return Scalar(TypeBool) }

// Object returns a field accepting an arbitrary (unchecked) object.
func Object() Field { return Scalar(TypeObject) }

// Array returns a field accepting an arbitrary (unchecked) array.
func Array() Field { return Scalar(TypeArray) }

// Time returns a field accepting time.Time application values. It is meant to
// be combined with a Codec that converts wire strings.
func Time() Field { return Scalar(TypeTime) }

// StructField returns a field whose value must validate against s.
func StructField(s *DataStruct) Field {
	return Field{shape: structShape{ref: refTo(s)}}
}

// StructFieldRef is StructField by name; the reference is resolved by
// Registry.Link, which allows recursive declarations.
func StructFieldRef(name string) Field {
	return Field{shape: structShape{ref: &structRef{name: name}}}
}

// StructListField returns a field whose value must be a list of values that
// each validate against s.
func StructListField(s *DataStruct) Field {
	return Field{shape: listShape{ref: refTo(s), minItems: -1, maxItems: -1}}
}

// StructListFieldRef is StructListField by name, resolved by Registry.Link.
func StructListFieldRef(name string) Field {
	return Field{shape: listShape{ref: &structRef{name: name}, minItems: -1, maxItems: -1}}
}

// Required marks the field as required: the key must be present and, unless
// Nullable is also set, non-null.
func (f Field) Required() Field { f.required = true; return f }

// Optional clears the required flag.
func (f Field) Optional() Field { f.required = false; return f }

// Nullable allows an explicit null even when the field is required.
func (f Field) Nullable() Field { f.nullable = true; return f }

// Default sets the value used when the key is absent. The default goes through
// the same validation as input; a nil default follows the null rules.
func (f Field) Default(v any) Field {
	f.hasDefault = true
	f.def = v
	return f
}

// Check appends checks that run on present, non-null values.
func (f Field) Check(checks ...Check) Field {
	f.checks = append(append([]Check(nil), f.checks...), checks...)
	return f
}

// Codec attaches load/dump conversion hooks.
func (f Field) Codec(c Codec) Field { f.codec = c; return f }

// PostLoad sets only the load-side conversion.
func (f Field) PostLoad(fn func(any) (any, error)) Field { f.codec.PostLoad = fn; return f }

// PreDump sets only the dump-side conversion.
func (f Field) PreDump(fn func(any) (any, error)) Field { f.codec.PreDump = fn; return f }

// Doc attaches a description used by Describe and JSON Schema export.
func (f Field) Doc(s string) Field { f.doc = s; return f }

// MinItems sets the minimum list length. It only applies to StructListField.
func (f Field) MinItems(n int) Field {
	if ls, ok := f.shape.(listShape); ok {
		ls.minItems = n
		f.shape = ls
	}
	return f
}

// MaxItems sets the maximum list length. It only applies to StructListField.
func (f Field) MaxItems(n int) Field {
	if ls, ok := f.shape.(listShape); ok {
		ls.maxItems = n
		f.shape = ls
	}
	return f
}

// Kind reports the field variant.
func (f Field) Kind() FieldKind {
	if f.shape == nil {
		return KindScalar
	}
	return f.shape.kind()
}

// Type reports the scalar type; struct and list fields report TypeObject and
// TypeArray respectively.
func (f Field) Type() Type {
	switch s := f.shape.(type) {
	case scalarShape:
		return s.typ
	case structShape:
		return TypeObject
	case listShape:
		return TypeArray
	}
	return TypeAny
}

// Target returns the referenced struct name for struct and list fields.
func (f Field) Target() string {
	switch s := f.shape.(type) {
	case structShape:
		return s.ref.name
	case listShape:
		return s.ref.name
	}
	return ""
}

// IsRequired reports whether the key must be present.
func (f Field) IsRequired() bool { return f.required }

// IsNullable reports whether an explicit null is allowed on a required field.
func (f Field) IsNullable() bool { return f.nullable }

// DefaultValue returns the declared default, if any.
func (f Field) DefaultValue() (any, bool) { return f.def, f.hasDefault }

// Checks returns the names of the attached checks.
func (f Field) Checks() []string {
	out := make([]string, len(f.checks))
	for i, c := range f.checks {
		out[i] = c.Name
	}
	return out
}

func (f Field) shapeOrAny() shape {
	if f.shape == nil {
		return scalarShape{typ: TypeAny}
	}
	return f.shape
}

func (f Field) acceptsNull() bool {
	if f.nullable || !f.required {
		return true
	}
	s, ok := f.shape.(scalarShape)
	return ok && s.typ == TypeAny
}

func (f Field) ref() *structRef {
	switch s := f.shape.(type) {
	case structShape:
		return s.ref
	case listShape:
		return s.ref
	}
	return nil
}

// validate runs presence rules, the load hook, the shape and the checks.
// path is relative to the owning struct.
func (f Field) validate(ctx context.Context, path string, v any, opt VerifyOpt) (any, Issues) {
	if IsMissing(v) {
		switch {
		case f.hasDefault && f.def == nil:
			return f.validateNull(path)
		case f.hasDefault:
			return f.validatePresent(ctx, path, cloneValue(f.def), opt)
		case f.required:
			return Missing, Issues{{Path: path, Code: CodeRequired, Message: i18n.T(CodeRequired, nil)}}
		}
		return Missing, nil
	}
	if v == nil {
		return f.validateNull(path)
	}
	return f.validatePresent(ctx, path, v, opt)
}

// validateNull applies the null rule shared by explicit null and a nil default.
func (f Field) validateNull(path string) (any, Issues) {
	if f.acceptsNull() {
		return nil, nil
	}
	return nil, Issues{{
		Path:    path,
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, map[string]string{"expected": f.shapeOrAny().label(), "got": "null"}),
		Params:  map[string]any{"expected": f.shapeOrAny().label(), "got": "null"},
	}}
}

func (f Field) validatePresent(ctx context.Context, path string, v any, opt VerifyOpt) (any, Issues) {
	if f.codec.PostLoad != nil {
		lv, err := f.codec.PostLoad(v)
		if err != nil {
			return nil, Issues{{Path: path, Code: CodeInvalidFormat, Message: i18n.T(CodeInvalidFormat, nil), Cause: err, Rule: f.codec.Name}}
		}
		v = lv
	}
	out, iss := f.shapeOrAny().validate(ctx, path, v, opt)
	if len(iss) > 0 {
		return nil, iss
	}
	for _, c := range f.checks {
		if c.Fn == nil {
			continue
		}
		if err := c.Fn(out); err != nil {
			iss = append(iss, checkIssue(path, c.Name, err))
			if opt.FailFast {
				return nil, iss
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (f Field) dumpValue(ctx context.Context, v any, d dumper) (any, error) {
	if v == nil {
		return nil, nil
	}
	if f.codec.PreDump != nil {
		dv, err := f.codec.PreDump(v)
		if err != nil {
			return nil, fmt.Errorf("pre-dump %s: %w", f.codec.Name, err)
		}
		v = dv
	}
	return f.shapeOrAny().dump(ctx, v, d)
}

func checkIssue(path, rule string, err error) Issue {
	if ce, ok := err.(*CheckError); ok {
		code := ce.Code
		if code == "" {
			code = CodeCheckFailed
		}
		return Issue{Path: path, Code: code, Message: ce.Message, Params: ce.Params, Rule: rule, Cause: err}
	}
	return Issue{Path: path, Code: CodeCheckFailed, Message: err.Error(), Rule: rule, Cause: err}
}

// ---- struct references ----

type structRef struct {
	name   string
	target atomic.Pointer[DataStruct]
}

func refTo(s *DataStruct) *structRef {
	r := &structRef{}
	if s != nil {
		r.name = s.name
		r.target.Store(s)
	}
	return r
}

func (r *structRef) resolve() *DataStruct { return r.target.Load() }

func unresolved(path string, r *structRef) Issues {
	return Issues{{
		Path:    path,
		Code:    CodeUnresolvedRef,
		Message: i18n.T(CodeUnresolvedRef, map[string]string{"name": r.name}),
		Params:  map[string]any{"struct": r.name},
	}}
}

// ---- shapes ----

type scalarShape struct{ typ Type }

func (scalarShape) kind() FieldKind { return KindScalar }
func (s scalarShape) label() string { return s.typ.String() }

func (s scalarShape) validate(_ context.Context, path string, v any, _ VerifyOpt) (any, Issues) {
	if !s.typ.Accepts(v) {
		got := TypeNameOf(v)
		return nil, Issues{{
			Path:    path,
			Code:    CodeInvalidType,
			Message: i18n.T(CodeInvalidType, map[string]string{"expected": s.typ.String(), "got": got}),
			Params:  map[string]any{"expected": s.typ.String(), "got": got},
		}}
	}
	return v, nil
}

func (scalarShape) dump(_ context.Context, v any, _ dumper) (any, error) { return cloneValue(v), nil }

type structShape struct{ ref *structRef }

func (structShape) kind() FieldKind { return KindStruct }
func (s structShape) label() string { return "struct " + s.ref.name }

func (s structShape) validate(ctx context.Context, path string, v any, opt VerifyOpt) (any, Issues) {
	target := s.ref.resolve()
	if target == nil {
		return nil, unresolved(path, s.ref)
	}
	inst, iss := target.verify(ctx, v, opt)
	if len(iss) > 0 {
		return nil, rebase(path, iss)
	}
	return inst, nil
}

func (s structShape) dump(ctx context.Context, v any, d dumper) (any, error) {
	if inst, ok := v.(*Instance); ok {
		return inst.dumpWith(ctx, d)
	}
	return cloneValue(v), nil
}

type listShape struct {
	ref      *structRef
	minItems int
	maxItems int
}

func (listShape) kind() FieldKind { return KindStructList }
func (s listShape) label() string { return "[]struct " + s.ref.name }

func (s listShape) validate(ctx context.Context, path string, v any, opt VerifyOpt) (any, Issues) {
	elems, ok := asList(v)
	if !ok {
		got := TypeNameOf(v)
		return nil, Issues{{
			Path:    path,
			Code:    CodeInvalidType,
			Message: i18n.T(CodeInvalidType, map[string]string{"expected": "array", "got": got}),
			Params:  map[string]any{"expected": "array", "got": got},
		}}
	}
	target := s.ref.resolve()
	if target == nil {
		return nil, unresolved(path, s.ref)
	}
	var iss Issues
	if s.minItems >= 0 && len(elems) < s.minItems {
		iss = append(iss, Issue{Path: path, Code: CodeTooShort, Message: i18n.T(CodeTooShort, nil), Params: map[string]any{"minItems": s.minItems, "got": len(elems)}})
	}
	if s.maxItems >= 0 && len(elems) > s.maxItems {
		iss = append(iss, Issue{Path: path, Code: CodeTooLong, Message: i18n.T(CodeTooLong, nil), Params: map[string]any{"maxItems": s.maxItems, "got": len(elems)}})
	}
	if len(iss) > 0 && opt.FailFast {
		return nil, iss
	}
	out := make([]*Instance, 0, len(elems))
	for i, e := range elems {
		inst, ei := target.verify(ctx, e, opt)
		if len(ei) > 0 {
			iss = append(iss, rebase(indexPointer(path, i), ei)...)
			if opt.FailFast {
				return nil, iss
			}
			continue
		}
		out = append(out, inst)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (s listShape) dump(ctx context.Context, v any, d dumper) (any, error) {
	insts, ok := v.([]*Instance)
	if !ok {
		return cloneValue(v), nil
	}
	out := make([]any, 0, len(insts))
	for _, inst := range insts {
		dv, err := inst.dumpWith(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, dv)
	}
	return out, nil
}
