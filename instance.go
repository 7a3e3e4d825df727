package lcd

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Instance is a validated DataStruct value. Struct fields hold *Instance,
// list fields hold []*Instance, absent optional fields hold Missing.
// Instances are not modified after Verify returns them.
type Instance struct {
	schema   *DataStruct
	values   []any
	presence PresenceMap
	extra    map[string]any
}

// Struct returns the DataStruct the instance was validated against.
func (i *Instance) Struct() *DataStruct { return i.schema }

// Get returns the value of the named field, or Missing when the key was absent
// (or the name is not declared).
func (i *Instance) Get(name string) any {
	idx, ok := i.schema.index[name]
	if !ok {
		return Missing
	}
	return i.values[idx]
}

// Lookup returns the value of the named field and whether it holds a value
// other than Missing. An explicit null yields (nil, true).
func (i *Instance) Lookup(name string) (any, bool) {
	v := i.Get(name)
	if IsMissing(v) {
		return nil, false
	}
	return v, true
}

// Has reports whether the named field holds a value (including null).
func (i *Instance) Has(name string) bool {
	_, ok := i.Lookup(name)
	return ok
}

// Presence returns a copy of the presence flags for this instance and its
// descendants, keyed by JSON Pointer relative to the instance.
func (i *Instance) Presence() PresenceMap {
	out := make(PresenceMap, len(i.presence))
	for k, v := range i.presence {
		out[k] = v
	}
	return out
}

// Extra returns a copy of the undeclared keys kept by UnknownPassthrough.
func (i *Instance) Extra() map[string]any {
	if len(i.extra) == 0 {
		return nil
	}
	out, _ := cloneValue(i.extra).(map[string]any)
	return out
}

// String returns the named field as a string.
func (i *Instance) String(name string) (string, bool) {
	s, ok := i.Get(name).(string)
	return s, ok
}

// Int returns the named field as an int64.
func (i *Instance) Int(name string) (int64, bool) { return ToInt(i.Get(name)) }

// Float returns the named field as a float64.
func (i *Instance) Float(name string) (float64, bool) { return toFloat(i.Get(name)) }

// Bool returns the named field as a bool.
func (i *Instance) Bool(name string) (bool, bool) {
	b, ok := i.Get(name).(bool)
	return b, ok
}

// Time returns the named field as a time.Time.
func (i *Instance) Time(name string) (time.Time, bool) {
	t, ok := i.Get(name).(time.Time)
	return t, ok
}

// Nested returns the instance held by a struct field.
func (i *Instance) Nested(name string) *Instance {
	n, _ := i.Get(name).(*Instance)
	return n
}

// List returns the instances held by a struct list field.
func (i *Instance) List(name string) []*Instance {
	l, _ := i.Get(name).([]*Instance)
	return l
}

// At resolves a JSON Pointer relative to the instance through nested
// instances, lists, plain maps and slices. Missing fields are not found.
func (i *Instance) At(pointer string) (any, bool) {
	if pointer == "" || pointer == "/" {
		return i, true
	}
	if pointer[0] != '/' {
		pointer = "/" + pointer
	}
	var cur any = i
	for _, tok := range strings.Split(pointer[1:], "/") {
		tok = pointerUnescaper.Replace(tok)
		switch c := cur.(type) {
		case *Instance:
			v, ok := c.Lookup(tok)
			if !ok {
				if ev, eok := c.extra[tok]; eok {
					v, ok = ev, true
				}
			}
			if !ok {
				return nil, false
			}
			cur = v
		case []*Instance:
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n >= len(c) {
				return nil, false
			}
			cur = c[n]
		default:
			if m, ok := asObject(cur); ok {
				v, ok := m[tok]
				if !ok {
					return nil, false
				}
				cur = v
				continue
			}
			l, ok := asList(cur)
			if !ok {
				return nil, false
			}
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n >= len(l) {
				return nil, false
			}
			cur = l[n]
		}
	}
	return cur, true
}

// With returns a new instance with the named field replaced by the raw value v
// and the whole struct verified again. Passing Missing removes the field.
func (i *Instance) With(ctx context.Context, name string, v any, opts ...VerifyOpt) (*Instance, error) {
	if _, ok := i.schema.index[name]; !ok {
		return nil, &InvalidDataStructure{Struct: i.schema.name, Issues: Issues{{Path: joinPointer("", name), Code: CodeUnknownKey, Message: "unknown field " + name}}}
	}
	m, err := i.Dump(ctx, DumpOpt{Mode: DumpPreserve})
	if err != nil {
		return nil, err
	}
	if IsMissing(v) {
		delete(m, name)
	} else {
		m[name] = v
	}
	return i.schema.Verify(ctx, m, opts...)
}

// Dump returns the plain representation of the instance: declared fields with
// pre-dump hooks applied, nested instances as maps, lists as []any.
func (i *Instance) Dump(ctx context.Context, opts ...DumpOpt) (map[string]any, error) {
	v, err := i.dumpWith(ctx, dumper{opt: lastOpt(opts)})
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// DumpJSON encodes the dump as JSON with keys in declaration order.
func (i *Instance) DumpJSON(ctx context.Context, opts ...DumpOpt) ([]byte, error) {
	v, err := i.dumpWith(ctx, dumper{opt: lastOpt(opts), ordered: true})
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// DumpYAML encodes the dump as YAML with keys in declaration order.
func (i *Instance) DumpYAML(ctx context.Context, opts ...DumpOpt) ([]byte, error) {
	v, err := i.dumpWith(ctx, dumper{opt: lastOpt(opts), ordered: true})
	if err != nil {
		return nil, err
	}
	n, err := yamlNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler using the canonical dump.
func (i *Instance) MarshalJSON() ([]byte, error) { return i.DumpJSON(context.Background()) }

// MarshalYAML implements yaml.Marshaler using the canonical dump.
func (i *Instance) MarshalYAML() (any, error) {
	v, err := i.dumpWith(context.Background(), dumper{ordered: true})
	if err != nil {
		return nil, err
	}
	return yamlNode(v)
}

// Decode copies the application values into out (a pointer to a Go struct or
// map) with mapstructure. Struct fields are matched by the `lcd` tag or by a
// case-insensitive name.
func (i *Instance) Decode(out any) error {
	m, err := i.appValues(true)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "lcd",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// appValues flattens the instance into plain maps holding application values
// (no pre-dump hooks). Missing fields are omitted.
func (i *Instance) appValues(withExtra bool) (map[string]any, error) {
	out := make(map[string]any, len(i.values)+len(i.extra))
	if withExtra {
		for k, v := range i.extra {
			out[k] = cloneValue(v)
		}
	}
	for idx, nf := range i.schema.fields {
		v := i.values[idx]
		switch t := v.(type) {
		case missingValue:
			continue
		case *Instance:
			m, err := t.appValues(withExtra)
			if err != nil {
				return nil, err
			}
			out[nf.name] = m
		case []*Instance:
			l := make([]any, 0, len(t))
			for _, e := range t {
				m, err := e.appValues(withExtra)
				if err != nil {
					return nil, err
				}
				l = append(l, m)
			}
			out[nf.name] = l
		default:
			out[nf.name] = cloneValue(v)
		}
	}
	return out, nil
}

func (i *Instance) mergeChildPresence(path string, v any) {
	switch t := v.(type) {
	case *Instance:
		i.presence.merge(path, t.presence)
	case []*Instance:
		for idx, e := range t {
			p := indexPointer(path, idx)
			i.presence[p] |= PresenceSeen
			i.presence.merge(p, e.presence)
		}
	}
}

// ---- dump ----

type dumper struct {
	opt     DumpOpt
	ordered bool
}

func (i *Instance) dumpWith(ctx context.Context, d dumper) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var om orderedObject
	var m map[string]any
	if d.ordered {
		om = make(orderedObject, 0, len(i.values)+len(i.extra))
	} else {
		m = make(map[string]any, len(i.values)+len(i.extra))
	}
	put := func(k string, v any) {
		if d.ordered {
			om = append(om, kv{key: k, value: v})
		} else {
			m[k] = v
		}
	}
	for idx, nf := range i.schema.fields {
		v := i.values[idx]
		if IsMissing(v) {
			if d.opt.Mode == DumpPreserve {
				continue
			}
			put(nf.name, nil)
			continue
		}
		dv, err := nf.field.dumpValue(ctx, v, d)
		if err != nil {
			return nil, fmt.Errorf("lcd: dump %s.%s: %w", i.schema.name, nf.name, err)
		}
		put(nf.name, dv)
	}
	if len(i.extra) > 0 {
		keys := make([]string, 0, len(i.extra))
		for k := range i.extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			put(k, cloneValue(i.extra[k]))
		}
	}
	if d.ordered {
		return om, nil
	}
	return m, nil
}

type kv struct {
	key   string
	value any
}

// orderedObject is a JSON/YAML object that keeps declaration order on output.
type orderedObject []kv

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o orderedObject) MarshalYAML() (any, error) { return yamlNode(o) }

// yamlNode converts a dump value into a YAML node. json.Number keeps its
// literal text and is tagged as an int or a float.
func yamlNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case orderedObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range t {
			vn, err := yamlNode(e.value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, yamlKey(e.key), vn)
		}
		return n, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			vn, err := yamlNode(t[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, yamlKey(k), vn)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			vn, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, vn)
		}
		return n, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(string(t), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(t)}, nil
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}

func yamlKey(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
}
