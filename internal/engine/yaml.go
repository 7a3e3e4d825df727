package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes the first YAML document in data into the same plain shape
// DecodeAny produces for JSON: map[string]any, []any, string, json.Number,
// bool and nil. Timestamps stay strings. Duplicate keys and depth follow opt.
func DecodeYAML(data []byte, opt EnforceOptions) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, IssueError{SimpleIssue{Code: "truncated", Path: "/", Message: "input exceeds " + strconv.FormatInt(opt.MaxBytes, 10) + " bytes"}}
	}
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	y := yamlWalker{opt: opt}
	return y.value(&doc, "", 0)
}

type yamlWalker struct {
	opt EnforceOptions
}

func (y yamlWalker) value(n *yaml.Node, path string, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return y.value(n.Content[0], path, depth)
	case yaml.AliasNode:
		return y.value(n.Alias, path, depth)
	case yaml.MappingNode:
		if err := y.enter(path, depth); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(n.Content)/2)
		if err := y.mapping(n, path, depth, out, map[string]struct{}{}); err != nil {
			return nil, err
		}
		return out, nil
	case yaml.SequenceNode:
		if err := y.enter(path, depth); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := y.value(c, JoinPointer(path, strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return scalar(n)
}

func (y yamlWalker) enter(path string, depth int) error {
	if y.opt.MaxDepth > 0 && depth+1 > y.opt.MaxDepth {
		return IssueError{SimpleIssue{Code: "parse_error", Path: NormalizePath(path), Message: "max depth " + strconv.Itoa(y.opt.MaxDepth) + " exceeded"}}
	}
	return nil
}

func (y yamlWalker) mapping(n *yaml.Node, path string, depth int, out map[string]any, seen map[string]struct{}) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if kn.Tag == "!!merge" {
			if err := y.merge(vn, path, depth, out, seen); err != nil {
				return err
			}
			continue
		}
		key := kn.Value
		p := JoinPointer(path, key)
		if _, dup := seen[key]; dup && y.opt.OnDuplicate != DupIgnore {
			si := SimpleIssue{Code: "duplicate_key", Path: p, Message: "key '" + key + "' duplicated"}
			if y.opt.OnDuplicate == DupError {
				return IssueError{si}
			}
			if y.opt.IssueSink != nil {
				y.opt.IssueSink(si)
			}
		}
		seen[key] = struct{}{}
		v, err := y.value(vn, p, depth+1)
		if err != nil {
			return err
		}
		out[key] = v
	}
	return nil
}

// merge applies a "<<" merge key. Explicit keys win over merged ones.
func (y yamlWalker) merge(vn *yaml.Node, path string, depth int, out map[string]any, seen map[string]struct{}) error {
	if vn.Kind == yaml.AliasNode {
		vn = vn.Alias
	}
	srcs := []*yaml.Node{vn}
	if vn.Kind == yaml.SequenceNode {
		srcs = vn.Content
	}
	for _, s := range srcs {
		if s.Kind == yaml.AliasNode {
			s = s.Alias
		}
		if s.Kind != yaml.MappingNode {
			return errors.New("yaml: merge value must be a mapping")
		}
		tmp := map[string]any{}
		if err := y.mapping(s, path, depth, tmp, map[string]struct{}{}); err != nil {
			return err
		}
		for k, v := range tmp {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return nil
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return json.Number(strconv.FormatInt(i, 10)), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, err
		}
		return json.Number(strconv.FormatUint(u, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if _, err := strconv.ParseFloat(s, 64); err != nil || s == "NaN" || s == "+Inf" || s == "-Inf" {
			return f, nil
		}
		return json.Number(s), nil
	}
	return n.Value, nil
}
