// Package schemafile builds lcd declarations from YAML or JSON documents:
//
//	structs:
//	  Address:
//	    fields:
//	      street: {type: string, required: true}
//	  Person:
//	    doc: a person
//	    unknown: strict
//	    fields:
//	      name: {type: string, required: true, checks: [{min_len: 1}]}
//	      age: int
//	      born: {type: time, codec: date}
//	      address: {struct: Address}
//	      friends: {list: Person, max_items: 10}
//	    rules:
//	      - unique_by: {list: /friends, key: name}
//
// Field order follows the document. References are resolved after every
// struct is built, so structs may refer to each other in any order.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/reoring/lcd"
	"github.com/reoring/lcd/check"
	"github.com/reoring/lcd/codec"
	"github.com/reoring/lcd/rules"
)

// FieldDecl is the declarative form of one field.
type FieldDecl struct {
	Type     string           `mapstructure:"type"`
	Struct   string           `mapstructure:"struct"`
	List     string           `mapstructure:"list"`
	Required bool             `mapstructure:"required"`
	Nullable bool             `mapstructure:"nullable"`
	Default  any              `mapstructure:"default"`
	MinItems *int             `mapstructure:"min_items"`
	MaxItems *int             `mapstructure:"max_items"`
	Checks   []map[string]any `mapstructure:"checks"`
	Codec    string           `mapstructure:"codec"`
	Layout   string           `mapstructure:"layout"`
	Doc      string           `mapstructure:"doc"`
}

// RuleDecl is the declarative form of one struct-level rule.
type RuleDecl struct {
	UniqueBy   *struct{ List, Key string } `mapstructure:"unique_by"`
	AtLeastOne string                      `mapstructure:"at_least_one"`
}

// ParseFile reads and parses a schema document from path.
func ParseFile(path string) (*lcd.Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Load parses a schema document from r.
func Load(r io.Reader) (*lcd.Registry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse builds, registers and links every struct of the document.
func Parse(data []byte) (*lcd.Registry, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schemafile: empty document")
		}
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	root := doc.Content[0]
	structsNode, err := mappingValue(root, "structs")
	if err != nil {
		return nil, err
	}
	if structsNode == nil {
		return nil, errors.New("schemafile: missing 'structs'")
	}
	reg := lcd.NewRegistry()
	var errs []error
	err = eachPair(structsNode, func(name string, n *yaml.Node) error {
		ds, err := buildStruct(name, n)
		if err != nil {
			errs = append(errs, fmt.Errorf("struct %s: %w", name, err))
			return nil
		}
		if err := reg.Register(ds); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := reg.Link(); err != nil {
		return nil, err
	}
	return reg, nil
}

func buildStruct(name string, n *yaml.Node) (*lcd.DataStruct, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("must be a mapping")
	}
	b := lcd.Struct(name)
	var errs []error
	err := eachPair(n, func(key string, v *yaml.Node) error {
		switch key {
		case "doc":
			b.Doc(v.Value)
		case "unknown":
			p, ok := lcd.ParseUnknownPolicy(v.Value)
			if !ok {
				return fmt.Errorf("unknown policy %q", v.Value)
			}
			b.Unknown(p)
		case "fields":
			return eachPair(v, func(fname string, fn *yaml.Node) error {
				f, err := buildField(fn)
				if err != nil {
					errs = append(errs, fmt.Errorf("field %s: %w", fname, err))
					return nil
				}
				b.Field(fname, f)
				return nil
			})
		case "rules":
			var decls []RuleDecl
			var raw []map[string]any
			if err := v.Decode(&raw); err != nil {
				return fmt.Errorf("rules: %w", err)
			}
			if err := decode(raw, &decls); err != nil {
				return fmt.Errorf("rules: %w", err)
			}
			for i, d := range decls {
				switch {
				case d.UniqueBy != nil:
					b.Refine("unique_by", rules.UniqueBy(d.UniqueBy.List, d.UniqueBy.Key))
				case d.AtLeastOne != "":
					b.Refine("at_least_one", rules.AtLeastOne(d.AtLeastOne))
				default:
					return fmt.Errorf("rules[%d]: empty rule", i)
				}
			}
		default:
			return fmt.Errorf("unknown key %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.Build()
}

func buildField(n *yaml.Node) (lcd.Field, error) {
	var d FieldDecl
	if n.Kind == yaml.ScalarNode {
		d.Type = n.Value
	} else {
		var raw map[string]any
		if err := n.Decode(&raw); err != nil {
			return lcd.Field{}, err
		}
		if err := decode(raw, &d); err != nil {
			return lcd.Field{}, err
		}
	}
	return d.Field()
}

// Field converts the declaration into an lcd.Field. Struct references are by
// name and need Registry.Link.
func (d FieldDecl) Field() (lcd.Field, error) {
	var f lcd.Field
	switch {
	case d.Struct != "" && d.List != "", (d.Struct != "" || d.List != "") && d.Type != "":
		return f, errors.New("type, struct and list are mutually exclusive")
	case d.Struct != "":
		f = lcd.StructFieldRef(d.Struct)
	case d.List != "":
		f = lcd.StructListFieldRef(d.List)
		if d.MinItems != nil {
			f = f.MinItems(*d.MinItems)
		}
		if d.MaxItems != nil {
			f = f.MaxItems(*d.MaxItems)
		}
	default:
		t, ok := lcd.ParseType(d.Type)
		if !ok {
			return f, fmt.Errorf("unknown type %q", d.Type)
		}
		f = lcd.Scalar(t)
	}
	if (d.MinItems != nil || d.MaxItems != nil) && d.List == "" {
		return f, errors.New("min_items/max_items need a list field")
	}
	if d.Required {
		f = f.Required()
	}
	if d.Nullable {
		f = f.Nullable()
	}
	if d.Default != nil {
		f = f.Default(d.Default)
	}
	if d.Doc != "" {
		f = f.Doc(d.Doc)
	}
	if d.Codec != "" {
		c, ok := codec.Lookup(d.Codec, d.Layout)
		if !ok {
			return f, fmt.Errorf("unknown codec %q", d.Codec)
		}
		f = f.Codec(c)
	}
	for i, cm := range d.Checks {
		if len(cm) != 1 {
			return f, fmt.Errorf("checks[%d]: want exactly one key, got %d", i, len(cm))
		}
		for name, arg := range cm {
			c, err := check.Build(name, arg)
			if err != nil {
				return f, fmt.Errorf("checks[%d]: %w", i, err)
			}
			f = f.Check(c)
		}
	}
	return f, nil
}

func decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func mappingValue(n *yaml.Node, key string) (*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("schemafile: document must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1], nil
		}
	}
	return nil, nil
}

// eachPair visits mapping entries in document order.
func eachPair(n *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
