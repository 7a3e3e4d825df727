package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullable(t *testing.T) {
	s := Nullable(&Schema{Type: "string", Format: "date-time"})
	assert.Equal(t, []string{"string", "null"}, s.Type)
	assert.Equal(t, "date-time", s.Format)

	r := Nullable(&Schema{Ref: DefRef("Address")})
	require.Len(t, r.AnyOf, 2)
	assert.Equal(t, "#/$defs/Address", r.AnyOf[0].Ref)
	assert.Equal(t, "null", r.AnyOf[1].Type)

	empty := &Schema{}
	assert.Same(t, empty, Nullable(empty))
}

func TestMarshalIndent_OmitsEmpty(t *testing.T) {
	b, err := MarshalIndent(&Schema{Type: "object", MinItems: Ptr(0), PropertyOrder: []string{"a"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","minItems":0}`, string(b))
}
