package lcd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/reoring/lcd/i18n"
)

// DataStruct is a named, ordered collection of field declarations. It is
// immutable once built and safe for concurrent use.
type DataStruct struct {
	name          string
	doc           string
	fields        []namedField
	index         map[string]int
	unknownPolicy UnknownPolicy
	refines       []structRefine
}

type namedField struct {
	name  string
	field Field
}

type structRefine struct {
	name string
	fn   func(context.Context, *Instance) error
}

// StructBuilder declares a DataStruct field by field.
type StructBuilder struct {
	name          string
	doc           string
	fields        []namedField
	index         map[string]int
	unknownPolicy UnknownPolicy
	refines       []structRefine
	errs          []error
}

// FieldStep is returned by StructBuilder.Field. Its modifiers apply to the
// field just declared; the remaining methods forward to the builder so
// declarations chain.
type FieldStep struct {
	b    *StructBuilder
	name string
}

// Struct starts the declaration of a DataStruct. Unknown keys are ignored
// unless UnknownStrict or UnknownPassthrough is selected.
func Struct(name string) *StructBuilder {
	return &StructBuilder{name: name, index: map[string]int{}, unknownPolicy: UnknownStrip}
}

// Doc attaches a description to the struct.
func (b *StructBuilder) Doc(s string) *StructBuilder { b.doc = s; return b }

// Field appends a field declaration. Declaring the same name twice is reported
// by Build.
func (b *StructBuilder) Field(name string, f Field) *FieldStep {
	if _, dup := b.index[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("%w: %s.%s", ErrDuplicateField, b.name, name))
		return &FieldStep{b: b}
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, namedField{name: name, field: f})
	return &FieldStep{b: b, name: name}
}

func (f *FieldStep) update(fn func(Field) Field) *FieldStep {
	if f.name == "" {
		return f
	}
	if i, ok := f.b.index[f.name]; ok {
		f.b.fields[i].field = fn(f.b.fields[i].field)
	}
	return f
}

// Required marks the current field as required.
func (f *FieldStep) Required() *FieldStep { return f.update(Field.Required) }

// Optional marks the current field as optional (default).
func (f *FieldStep) Optional() *FieldStep { return f.update(Field.Optional) }

// Nullable allows explicit null for the current field.
func (f *FieldStep) Nullable() *FieldStep { return f.update(Field.Nullable) }

// Default sets the value used when the current field is absent.
func (f *FieldStep) Default(v any) *FieldStep {
	return f.update(func(fd Field) Field { return fd.Default(v) })
}

// Doc sets the description of the current field.
func (f *FieldStep) Doc(s string) *FieldStep {
	return f.update(func(fd Field) Field { return fd.Doc(s) })
}

// Field declares the next field.
func (f *FieldStep) Field(name string, fd Field) *FieldStep { return f.b.Field(name, fd) }

// UnknownStrict forwards to StructBuilder.UnknownStrict.
func (f *FieldStep) UnknownStrict() *StructBuilder { return f.b.UnknownStrict() }

// UnknownStrip forwards to StructBuilder.UnknownStrip.
func (f *FieldStep) UnknownStrip() *StructBuilder { return f.b.UnknownStrip() }

// UnknownPassthrough forwards to StructBuilder.UnknownPassthrough.
func (f *FieldStep) UnknownPassthrough() *StructBuilder { return f.b.UnknownPassthrough() }

// Refine forwards to StructBuilder.Refine.
func (f *FieldStep) Refine(name string, fn func(context.Context, *Instance) error) *StructBuilder {
	return f.b.Refine(name, fn)
}

// Build forwards to StructBuilder.Build.
func (f *FieldStep) Build() (*DataStruct, error) { return f.b.Build() }

// MustBuild forwards to StructBuilder.MustBuild.
func (f *FieldStep) MustBuild() *DataStruct { return f.b.MustBuild() }

// UnknownStrict rejects keys that are not declared.
func (b *StructBuilder) UnknownStrict() *StructBuilder {
	b.unknownPolicy = UnknownStrict
	return b
}

// UnknownStrip ignores keys that are not declared.
func (b *StructBuilder) UnknownStrip() *StructBuilder {
	b.unknownPolicy = UnknownStrip
	return b
}

// UnknownPassthrough keeps undeclared keys on the instance; Dump emits them
// after the declared fields.
func (b *StructBuilder) UnknownPassthrough() *StructBuilder {
	b.unknownPolicy = UnknownPassthrough
	return b
}

// Unknown sets the policy explicitly.
func (b *StructBuilder) Unknown(p UnknownPolicy) *StructBuilder {
	b.unknownPolicy = p
	return b
}

// Refine adds a struct-level hook executed after every field validated. Return
// Issues (paths relative to the struct) or any error, which is reported as
// CodeCustom at the struct root.
func (b *StructBuilder) Refine(name string, fn func(context.Context, *Instance) error) *StructBuilder {
	if fn != nil {
		b.refines = append(b.refines, structRefine{name: name, fn: fn})
	}
	return b
}

// Build validates the declaration and returns the DataStruct.
func (b *StructBuilder) Build() (*DataStruct, error) {
	if b.name == "" {
		b.errs = append(b.errs, errors.New("lcd: struct name must not be empty"))
	}
	for _, nf := range b.fields {
		if nf.name == "" {
			b.errs = append(b.errs, fmt.Errorf("lcd: %s: empty field name", b.name))
		}
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	ds := &DataStruct{
		name:          b.name,
		doc:           b.doc,
		fields:        append([]namedField(nil), b.fields...),
		index:         make(map[string]int, len(b.fields)),
		unknownPolicy: b.unknownPolicy,
		refines:       append([]structRefine(nil), b.refines...),
	}
	for i, nf := range ds.fields {
		ds.index[nf.name] = i
	}
	return ds, nil
}

// MustBuild is like Build but panics on error.
func (b *StructBuilder) MustBuild() *DataStruct {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the struct name.
func (s *DataStruct) Name() string { return s.name }

// Doc returns the struct description.
func (s *DataStruct) Doc() string { return s.doc }

// UnknownPolicy returns how undeclared keys are handled.
func (s *DataStruct) UnknownPolicy() UnknownPolicy { return s.unknownPolicy }

// Fields returns the field names in declaration order.
func (s *DataStruct) Fields() []string {
	out := make([]string, len(s.fields))
	for i, nf := range s.fields {
		out[i] = nf.name
	}
	return out
}

// Field returns the declaration of the named field.
func (s *DataStruct) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i].field, true
}

// Verify checks candidate against the struct and returns the validated
// instance. candidate is plain data: a string-keyed map whose values are
// scalars, maps and slices (for example the result of json.Unmarshal into any).
// On failure the error is an *InvalidDataStructure listing every violation.
// A done ctx yields ctx.Err() instead.
func (s *DataStruct) Verify(ctx context.Context, candidate any, opts ...VerifyOpt) (*Instance, error) {
	if s == nil {
		return nil, ErrNilStruct
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inst, iss := s.verify(ctx, candidate, lastOpt(opts))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(iss) > 0 {
		return nil, &InvalidDataStructure{Struct: s.name, Issues: iss}
	}
	return inst, nil
}

// Load decodes src and verifies the result.
func (s *DataStruct) Load(ctx context.Context, src Source, opts ...LoadOpt) (*Instance, error) {
	if s == nil {
		return nil, ErrNilStruct
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opt := lastOpt(opts)
	raw, err := src.decode(opt)
	if err != nil {
		return nil, &InvalidDataStructure{Struct: s.name, Issues: toIssues(err)}
	}
	return s.Verify(ctx, raw, opt.Verify)
}

// verify is the engine shared by top-level and nested validation. Issue paths
// are relative to this struct.
func (s *DataStruct) verify(ctx context.Context, candidate any, opt VerifyOpt) (*Instance, Issues) {
	if err := ctx.Err(); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	if inst, ok := candidate.(*Instance); ok {
		if inst.schema == s {
			return inst, nil
		}
		m, err := inst.Dump(ctx, DumpOpt{Mode: DumpPreserve})
		if err != nil {
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
		}
		candidate = m
	}
	src, ok := asObject(candidate)
	if !ok {
		got := TypeNameOf(candidate)
		return nil, Issues{{
			Path:    "/",
			Code:    CodeInvalidType,
			Message: i18n.T(CodeInvalidType, map[string]string{"expected": "object", "got": got}),
			Params:  map[string]any{"expected": "object", "got": got},
		}}
	}

	inst := &Instance{
		schema:   s,
		values:   make([]any, len(s.fields)),
		presence: PresenceMap{"/": PresenceSeen},
	}
	var iss Issues
	for i, nf := range s.fields {
		path := joinPointer("", nf.name)
		raw, present := src[nf.name]
		if !present {
			raw = Missing
		} else {
			inst.presence[path] |= PresenceSeen
			if raw == nil {
				inst.presence[path] |= PresenceWasNull
			}
		}
		v, fi := nf.field.validate(ctx, path, raw, opt)
		if len(fi) > 0 {
			iss = append(iss, fi...)
			if opt.FailFast {
				return nil, iss
			}
			continue
		}
		if !present && nf.field.hasDefault {
			inst.presence[path] |= PresenceDefaultApplied
		}
		inst.values[i] = v
		inst.mergeChildPresence(path, v)
	}

	if ui := s.collectUnknown(src, inst, opt); len(ui) > 0 {
		iss = append(iss, ui...)
	}
	if len(iss) > 0 {
		return nil, iss
	}

	for _, r := range s.refines {
		if err := r.fn(ctx, inst); err != nil {
			if ri, ok := AsIssues(err); ok {
				for _, it := range ri {
					if it.Path == "" {
						it.Path = "/"
					}
					if it.Rule == "" {
						it.Rule = r.name
					}
					iss = append(iss, it)
				}
			} else {
				iss = append(iss, Issue{Path: "/", Code: CodeCustom, Message: err.Error(), Cause: err, Rule: r.name})
			}
			if opt.FailFast {
				return nil, iss
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return inst, nil
}

// collectUnknown applies the unknown-key policy in key-sorted order.
func (s *DataStruct) collectUnknown(src map[string]any, inst *Instance, opt VerifyOpt) Issues {
	policy := s.unknownPolicy
	if opt.Strict {
		policy = UnknownStrict
	}
	if policy == UnknownStrip {
		return nil
	}
	var uks []string
	for k := range src {
		if _, known := s.index[k]; !known {
			uks = append(uks, k)
		}
	}
	sort.Strings(uks)
	var iss Issues
	for _, k := range uks {
		switch policy {
		case UnknownStrict:
			iss = append(iss, Issue{Path: joinPointer("", k), Code: CodeUnknownKey, Message: i18n.T(CodeUnknownKey, map[string]string{"key": k})})
			if opt.FailFast {
				return iss
			}
		case UnknownPassthrough:
			if inst.extra == nil {
				inst.extra = map[string]any{}
			}
			inst.extra[k] = cloneValue(src[k])
			inst.presence[joinPointer("", k)] |= PresenceSeen
		}
	}
	return iss
}
