package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/lcd"
	"github.com/reoring/lcd/rules"
)

func orderStruct(t *testing.T, refine ...rules.Rule) *lcd.DataStruct {
	t.Helper()
	item := lcd.Struct("Item").
		Field("sku", lcd.String()).Required().
		Field("qty", lcd.Int()).Required().
		MustBuild()
	b := lcd.Struct("Order").
		Field("status", lcd.String()).Required().
		Field("shipped_at", lcd.String()).
		Field("items", lcd.StructListField(item)).Required()
	for i, r := range refine {
		b.Refine("r"+string(rune('0'+i)), r)
	}
	return b.MustBuild()
}

func TestIfThenPresent(t *testing.T) {
	ctx := context.Background()
	s := orderStruct(t, rules.If("/status", rules.Eq, "shipped").Then(rules.Present("/shipped_at")))

	_, err := s.Verify(ctx, map[string]any{"status": "open", "items": []any{}})
	require.NoError(t, err)

	_, err = s.Verify(ctx, map[string]any{"status": "shipped", "items": []any{}})
	iss, ok := lcd.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/shipped_at", iss[0].Path)
	assert.Equal(t, lcd.CodeRequired, iss[0].Code)
}

func TestAtLeastOneAndUniqueBy(t *testing.T) {
	ctx := context.Background()
	s := orderStruct(t, rules.And(rules.AtLeastOne("/items"), rules.UniqueBy("/items", "sku")))

	_, err := s.Verify(ctx, map[string]any{"status": "open", "items": []any{}})
	iss, _ := lcd.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, lcd.CodeTooShort, iss[0].Code)

	_, err = s.Verify(ctx, map[string]any{"status": "open", "items": []any{
		map[string]any{"sku": "a", "qty": 1},
		map[string]any{"sku": "b", "qty": 1},
		map[string]any{"sku": "a", "qty": 2},
	}})
	iss, _ = lcd.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, "/items/2/sku", iss[0].Path)
	assert.Equal(t, "unique_by", iss[0].Rule)
}

func TestOrAndNumericCompare(t *testing.T) {
	ctx := context.Background()
	s := orderStruct(t, rules.If("/items/0/qty", rules.Gt, 10).Then(
		rules.Or(rules.Present("/shipped_at"), rules.AtLeastOne("/missing")),
	))
	_, err := s.Verify(ctx, map[string]any{"status": "open", "items": []any{map[string]any{"sku": "a", "qty": 5}}})
	require.NoError(t, err)

	// /missing is absent so AtLeastOne passes and Or succeeds.
	_, err = s.Verify(ctx, map[string]any{"status": "open", "items": []any{map[string]any{"sku": "a", "qty": 11}}})
	require.NoError(t, err)
}

func TestIfAnyIfAll(t *testing.T) {
	ctx := context.Background()
	cond := rules.IfAll(rules.If("status", rules.Ne, "open"), rules.IfAny(rules.If("/items/0/qty", rules.Ge, 1)))
	s := orderStruct(t, cond.Then(rules.Present("/shipped_at")))

	_, err := s.Verify(ctx, map[string]any{"status": "open", "items": []any{map[string]any{"sku": "a", "qty": 1}}})
	require.NoError(t, err)
	_, err = s.Verify(ctx, map[string]any{"status": "closed", "items": []any{map[string]any{"sku": "a", "qty": 1}}})
	require.Error(t, err)
}
