package lcd_test

import (
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/lcd"
	"github.com/reoring/lcd/check"
	js "github.com/reoring/lcd/jsonschema"
)

func TestJSONSchema_NestedStructGoesToDefs(t *testing.T) {
	s, err := personStruct().JSONSchema()
	require.NoError(t, err)

	assert.Equal(t, js.Draft, s.SchemaURI)
	assert.Equal(t, "Person", s.Title)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"name", "age"}, s.Required)
	assert.Equal(t, []string{"name", "age", "address"}, s.PropertyOrder)
	assert.Equal(t, "string", s.Properties["name"].Type)
	assert.Equal(t, "integer", s.Properties["age"].Type)

	addr := s.Properties["address"]
	require.Len(t, addr.AnyOf, 2, "optional struct fields accept null")
	assert.Equal(t, js.DefRef("Address"), addr.AnyOf[0].Ref)
	assert.Equal(t, "null", addr.AnyOf[1].Type)

	def := s.Defs["Address"]
	require.NotNil(t, def)
	assert.Equal(t, []string{"street"}, def.Required)
	assert.Equal(t, []string{"string", "null"}, def.Properties["city"].Type)
}

func TestJSONSchema_RecursionPointsAtRoot(t *testing.T) {
	tree := treeRegistry(t).MustLookup("Tree")
	s, err := tree.JSONSchema()
	require.NoError(t, err)

	children := s.Properties["children"]
	assert.Equal(t, []string{"array", "null"}, children.Type)
	require.NotNil(t, children.Items)
	assert.Equal(t, "#", children.Items.Ref)
	assert.Empty(t, s.Defs)
}

func TestJSONSchema_ChecksDefaultsAndStrict(t *testing.T) {
	s := lcd.Struct("Item").Doc("an item").
		Field("qty", lcd.Int().Check(check.Gte(1), check.Lte(10)).Doc("how many")).Required().
		Field("kind", lcd.String().Check(check.OneOf("a", "b"))).Default("a").
		Field("parts", lcd.StructListField(addressStruct()).MinItems(1).MaxItems(3)).Required().
		UnknownStrict().
		MustBuild()

	out, err := s.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "an item", out.Description)
	assert.Equal(t, false, out.AdditionalProperties)
	assert.Equal(t, []string{"qty", "parts"}, out.Required, "fields with defaults are not required")

	qty := out.Properties["qty"]
	assert.Equal(t, "how many", qty.Description)
	require.NotNil(t, qty.Minimum)
	require.NotNil(t, qty.Maximum)
	assert.Equal(t, 1.0, *qty.Minimum)
	assert.Equal(t, 10.0, *qty.Maximum)

	kind := out.Properties["kind"]
	assert.Equal(t, "a", kind.Default)
	assert.Equal(t, []any{"a", "b"}, kind.Enum)

	parts := out.Properties["parts"]
	assert.Equal(t, "array", parts.Type)
	assert.Equal(t, 1, *parts.MinItems)
	assert.Equal(t, 3, *parts.MaxItems)
	assert.Equal(t, js.DefRef("Address"), parts.Items.Ref)

	b, err := js.MarshalIndent(out)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Contains(t, back, "$defs")
	assert.Equal(t, js.Draft, back["$schema"])
}

func TestJSONSchema_Unresolved(t *testing.T) {
	s := lcd.Struct("Holder").Field("x", lcd.StructFieldRef("Nowhere")).MustBuild()
	_, err := s.JSONSchema()
	iss, ok := lcd.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, lcd.CodeUnresolvedRef, iss[0].Code)
}

func TestDescribe(t *testing.T) {
	s := lcd.Struct("Order").Doc("an order").
		Field("id", lcd.String().Doc("order id")).Required().
		Field("items", lcd.StructListField(addressStruct()).MinItems(1)).
		Field("note", lcd.String()).Nullable().Default("none").
		UnknownStrict().
		MustBuild()

	out := s.Describe()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Order: an order (unknown keys: strict)", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "FIELD"))
	assert.Contains(t, lines[3], "order id")
	assert.Contains(t, lines[3], "yes")
	assert.Contains(t, lines[4], "[]struct Address[1..]")
	assert.Contains(t, lines[5], "string?")
	assert.Contains(t, lines[5], "none")

	// Describe reflects declarations only; verifying does not change it.
	_, _ = s.Verify(context.Background(), map[string]any{"id": "x"})
	assert.Equal(t, out, s.Describe())
}
