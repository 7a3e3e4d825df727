package engine

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAny_Shapes(t *testing.T) {
	v, err := DecodeAny(NewJSONBytes([]byte(`{"s":"x","n":1.50,"b":true,"z":null,"l":[1,{"k":[]}],"o":{}}`), 0))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"s": "x",
		"n": json.Number("1.50"),
		"b": true,
		"z": nil,
		"l": []any{json.Number("1"), map[string]any{"k": []any{}}},
		"o": map[string]any{},
	}, v)
}

func TestDecodeAny_Errors(t *testing.T) {
	_, err := DecodeAny(NewJSONBytes([]byte(``), 0))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeAny(NewJSONBytes([]byte(`[1,2`), 0))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeAny(NewJSONBytes([]byte(`{"a":}`), 0))
	assert.ErrorIs(t, err, ErrUnexpectedToken)

	_, err = DecodeAny(NewJSONBytes([]byte(`1 2`), 0))
	assert.ErrorIs(t, err, ErrTrailingData)
}

func issueOf(t *testing.T, err error) SimpleIssue {
	t.Helper()
	var ie IssueError
	require.True(t, errors.As(err, &ie), "got %v", err)
	return ie.SimpleIssue
}

func TestEnforce_Duplicates(t *testing.T) {
	doc := `{"a":{"x":1,"y":[{"k":1,"k":2}]},"a":2}`

	_, err := DecodeAny(WrapWithEnforcement(NewJSONBytes([]byte(doc), 0), EnforceOptions{OnDuplicate: DupError}))
	si := issueOf(t, err)
	assert.Equal(t, "duplicate_key", si.Code)
	assert.Equal(t, "/a/y/0/k", si.Path)

	var warned []SimpleIssue
	v, err := DecodeAny(WrapWithEnforcement(NewJSONBytes([]byte(doc), 0), EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { warned = append(warned, si) },
	}))
	require.NoError(t, err)
	require.Len(t, warned, 2)
	assert.Equal(t, "/a/y/0/k", warned[0].Path)
	assert.Equal(t, "/a", warned[1].Path)
	assert.Equal(t, json.Number("2"), v.(map[string]any)["a"])
}

func TestEnforce_SiblingObjectsDoNotShareKeys(t *testing.T) {
	doc := `[{"a":1},{"a":2}]`
	_, err := DecodeAny(WrapWithEnforcement(NewJSONBytes([]byte(doc), 0), EnforceOptions{OnDuplicate: DupError}))
	assert.NoError(t, err)
}

func TestEnforce_MaxDepth(t *testing.T) {
	src := func() TokenSource {
		return WrapWithEnforcement(NewJSONBytes([]byte(`{"a":[[1]]}`), 0), EnforceOptions{MaxDepth: 2})
	}
	_, err := DecodeAny(src())
	si := issueOf(t, err)
	assert.Equal(t, "parse_error", si.Code)
	assert.Equal(t, "/a/0", si.Path)

	_, err = DecodeAny(WrapWithEnforcement(NewJSONBytes([]byte(`{"a":[[1]]}`), 0), EnforceOptions{MaxDepth: 3}))
	assert.NoError(t, err)
}

func TestEnforce_MaxBytes(t *testing.T) {
	doc := `{"k":"` + strings.Repeat("v", 100) + `"}`
	_, err := DecodeAny(WrapWithEnforcement(NewJSONReader(strings.NewReader(doc), 10), EnforceOptions{MaxBytes: 10}))
	si := issueOf(t, err)
	assert.Equal(t, "truncated", si.Code)
	assert.Equal(t, "/", si.Path)
}

func TestJoinPointer(t *testing.T) {
	assert.Equal(t, "/a", JoinPointer("", "a"))
	assert.Equal(t, "/a", JoinPointer("/", "a"))
	assert.Equal(t, "/a/b~1c/d~0e", JoinPointer(JoinPointer("/a", "b/c"), "d~e"))
	assert.Equal(t, "/", NormalizePath(""))
}

func TestDecodeYAML_Scalars(t *testing.T) {
	v, err := DecodeYAML([]byte(`
i: 42
big: 18446744073709551615
f: 1.5
inf: .inf
t: true
n: ~
s: hello
q: "42"
ts: 2024-01-02T03:04:05Z
l: [1, two]
`), EnforceOptions{})
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, json.Number("42"), m["i"])
	assert.Equal(t, json.Number("18446744073709551615"), m["big"])
	assert.Equal(t, json.Number("1.5"), m["f"])
	assert.True(t, math.IsInf(m["inf"].(float64), 1))
	assert.Equal(t, true, m["t"])
	assert.Nil(t, m["n"])
	assert.Equal(t, "hello", m["s"])
	assert.Equal(t, "42", m["q"])
	assert.Equal(t, "2024-01-02T03:04:05Z", m["ts"])
	assert.Equal(t, []any{json.Number("1"), "two"}, m["l"])
}

func TestDecodeYAML_AliasAndMerge(t *testing.T) {
	v, err := DecodeYAML([]byte(`
base: &base
  a: 1
  b: 2
derived:
  <<: *base
  b: 3
copy: *base
`), EnforceOptions{OnDuplicate: DupError})
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, map[string]any{"a": json.Number("1"), "b": json.Number("3")}, m["derived"])
	assert.Equal(t, m["base"], m["copy"])
}

func TestDecodeYAML_Enforcement(t *testing.T) {
	_, err := DecodeYAML([]byte("a:\n  x: 1\n  x: 2\n"), EnforceOptions{OnDuplicate: DupError})
	si := issueOf(t, err)
	assert.Equal(t, "duplicate_key", si.Code)
	assert.Equal(t, "/a/x", si.Path)

	_, err = DecodeYAML([]byte("a:\n  - [1]\n"), EnforceOptions{MaxDepth: 2})
	si = issueOf(t, err)
	assert.Equal(t, "/a/0", si.Path)

	_, err = DecodeYAML([]byte("a: 1\n"), EnforceOptions{MaxBytes: 2})
	assert.Equal(t, "truncated", issueOf(t, err).Code)

	v, err := DecodeYAML([]byte(""), EnforceOptions{})
	assert.Nil(t, v)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
