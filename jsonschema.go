package lcd

import (
	"sort"

	js "github.com/reoring/lcd/jsonschema"
)

// JSONSchema projects the struct onto a JSON Schema (draft 2020-12). Nested
// structs are emitted once under $defs and referenced with $ref; a reference
// back to s itself points at the document root, so recursive declarations
// export without expansion. Unresolved references are reported as errors.
func (s *DataStruct) JSONSchema() (*js.Schema, error) {
	if s == nil {
		return nil, ErrNilStruct
	}
	c := &schemaCollector{root: s, defs: map[string]*js.Schema{}}
	out := c.object(s)
	out.SchemaURI = js.Draft
	out.Title = s.name
	// Definitions are filled by ref() while walking; drain the queue.
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.defs[next.name] = c.object(next)
	}
	if len(c.unresolved) > 0 {
		sort.Strings(c.unresolved)
		return nil, &InvalidDataStructure{Struct: s.name, Issues: unresolvedIssues(c.unresolved)}
	}
	if len(c.defs) > 0 {
		out.Defs = c.defs
	}
	return out, nil
}

type schemaCollector struct {
	root       *DataStruct
	defs       map[string]*js.Schema
	queued     map[string]bool
	queue      []*DataStruct
	unresolved []string
}

func (c *schemaCollector) object(s *DataStruct) *js.Schema {
	out := &js.Schema{Type: "object", Description: s.doc, Properties: map[string]*js.Schema{}}
	for _, nf := range s.fields {
		out.Properties[nf.name] = c.field(nf.field)
		out.PropertyOrder = append(out.PropertyOrder, nf.name)
		if nf.field.required && !nf.field.hasDefault {
			out.Required = append(out.Required, nf.name)
		}
	}
	if s.unknownPolicy == UnknownStrict {
		out.AdditionalProperties = false
	}
	return out
}

func (c *schemaCollector) field(f Field) *js.Schema {
	fs := f.shapeOrAny().jsonSchema(c)
	if f.doc != "" {
		fs.Description = f.doc
	}
	if f.hasDefault {
		fs.Default = f.def
	}
	for _, ck := range f.checks {
		if ck.Annotate != nil {
			ck.Annotate(fs)
		}
	}
	switch f.codec.Name {
	case "rfc3339":
		fs.Type, fs.Format = "string", "date-time"
	case "date":
		fs.Type, fs.Format = "string", "date"
	}
	if f.acceptsNull() {
		fs = js.Nullable(fs)
	}
	return fs
}

// ref returns a $ref schema for the target, queueing its definition.
func (c *schemaCollector) ref(r *structRef) *js.Schema {
	target := r.resolve()
	if target == nil {
		c.unresolved = append(c.unresolved, r.name)
		return &js.Schema{}
	}
	if target == c.root {
		return &js.Schema{Ref: "#"}
	}
	if c.queued == nil {
		c.queued = map[string]bool{}
	}
	if !c.queued[target.name] {
		c.queued[target.name] = true
		c.queue = append(c.queue, target)
	}
	return &js.Schema{Ref: js.DefRef(target.name)}
}

func (s scalarShape) jsonSchema(*schemaCollector) *js.Schema {
	switch s.typ {
	case TypeString:
		return &js.Schema{Type: "string"}
	case TypeInt:
		return &js.Schema{Type: "integer"}
	case TypeNumber:
		return &js.Schema{Type: "number"}
	case TypeBool:
		return &js.Schema{Type: "boolean"}
	case TypeObject:
		return &js.Schema{Type: "object"}
	case TypeArray:
		return &js.Schema{Type: "array"}
	case TypeTime:
		return &js.Schema{Type: "string", Format: "date-time"}
	}
	return &js.Schema{}
}

func (s structShape) jsonSchema(c *schemaCollector) *js.Schema { return c.ref(s.ref) }

func (s listShape) jsonSchema(c *schemaCollector) *js.Schema {
	out := &js.Schema{Type: "array", Items: c.ref(s.ref)}
	if s.minItems >= 0 {
		out.MinItems = js.Ptr(s.minItems)
	}
	if s.maxItems >= 0 {
		out.MaxItems = js.Ptr(s.maxItems)
	}
	return out
}

func unresolvedIssues(names []string) Issues {
	var iss Issues
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		iss = append(iss, unresolved("/", &structRef{name: n})...)
	}
	return iss
}
