package lcd_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/lcd"
)

func treeRegistry(t *testing.T) *lcd.Registry {
	t.Helper()
	tree := lcd.Struct("Tree").
		Field("label", lcd.String()).Required().
		Field("children", lcd.StructListFieldRef("Tree")).
		MustBuild()
	reg := lcd.NewRegistry()
	require.NoError(t, reg.Register(tree))
	require.NoError(t, reg.Link())
	return reg
}

func TestRegistry_RecursiveList(t *testing.T) {
	ctx := context.Background()
	tree := treeRegistry(t).MustLookup("Tree")

	inst, err := tree.Verify(ctx, map[string]any{
		"label": "root",
		"children": []any{
			map[string]any{"label": "a", "children": []any{}},
			map[string]any{"label": "b", "children": []any{
				map[string]any{"label": "b1"},
			}},
		},
	})
	require.NoError(t, err)
	leaf, ok := inst.At("/children/1/children/0/label")
	require.True(t, ok)
	assert.Equal(t, "b1", leaf)

	_, err = tree.Verify(ctx, map[string]any{
		"label": "root",
		"children": []any{
			map[string]any{"label": "a", "children": []any{map[string]any{"label": 1}}},
		},
	})
	iss, ok := lcd.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, []string{"/children/0/children/0/label"}, iss.Paths())
}

func TestRegistry_MutualRecursion(t *testing.T) {
	ctx := context.Background()
	person := lcd.Struct("Person").
		Field("name", lcd.String()).Required().
		Field("employer", lcd.StructFieldRef("Company")).
		MustBuild()
	company := lcd.Struct("Company").
		Field("name", lcd.String()).Required().
		Field("ceo", lcd.StructFieldRef("Person")).
		MustBuild()
	reg := lcd.NewRegistry()
	require.NoError(t, reg.Register(person, company))
	require.NoError(t, reg.Link())
	assert.Equal(t, []string{"Company", "Person"}, reg.Names())

	_, err := person.Verify(ctx, map[string]any{
		"name":     "Ann",
		"employer": map[string]any{"name": "Acme", "ceo": map[string]any{"name": 7}},
	})
	iss, _ := lcd.AsIssues(err)
	assert.Equal(t, []string{"/employer/ceo/name"}, iss.Paths())
}

func TestRegistry_UnresolvedBeforeLink(t *testing.T) {
	ctx := context.Background()
	s := lcd.Struct("Holder").Field("x", lcd.StructFieldRef("Nowhere")).MustBuild()

	_, err := s.Verify(ctx, map[string]any{"x": map[string]any{}})
	iss, _ := lcd.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, lcd.CodeUnresolvedRef, iss[0].Code)
	assert.Equal(t, "/x", iss[0].Path)

	// absent optional ref fields are fine even when unresolved
	_, err = s.Verify(ctx, map[string]any{})
	assert.NoError(t, err)

	reg := lcd.NewRegistry()
	require.NoError(t, reg.Register(s))
	err = reg.Link()
	require.Error(t, err)
	assert.True(t, errors.Is(err, lcd.ErrUnknownStruct))
	assert.Contains(t, err.Error(), "Holder.x")
}

func TestRegistry_RegisterErrors(t *testing.T) {
	a := lcd.Struct("A").MustBuild()
	reg := lcd.NewRegistry()
	require.NoError(t, reg.Register(a))

	err := reg.Register(lcd.Struct("B").MustBuild(), lcd.Struct("A").MustBuild())
	assert.ErrorIs(t, err, lcd.ErrDuplicateStruct)
	_, ok := reg.Lookup("B")
	assert.False(t, ok, "failed Register must not add anything")

	assert.ErrorIs(t, reg.Register(nil), lcd.ErrNilStruct)
	assert.Panics(t, func() { reg.MustLookup("missing") })
}

func TestRegistry_LinkIsIdempotent(t *testing.T) {
	reg := treeRegistry(t)
	require.NoError(t, reg.Link())
	_, err := reg.MustLookup("Tree").Verify(context.Background(), map[string]any{"label": "x"})
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentVerify(t *testing.T) {
	ctx := context.Background()
	tree := treeRegistry(t).MustLookup("Tree")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tree.Verify(ctx, map[string]any{
				"label":    "r",
				"children": []any{map[string]any{"label": "c"}},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
