package lcd_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/lcd"
)

func addressStruct() *lcd.DataStruct {
	return lcd.Struct("Address").
		Field("street", lcd.String()).Required().
		Field("city", lcd.String()).
		MustBuild()
}

func personStruct() *lcd.DataStruct {
	return lcd.Struct("Person").
		Field("name", lcd.String()).Required().
		Field("age", lcd.Int()).Required().
		Field("address", lcd.StructField(addressStruct())).
		MustBuild()
}

func issuesOf(t *testing.T, err error) lcd.Issues {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error")
	}
	var ide *lcd.InvalidDataStructure
	if !errors.As(err, &ide) {
		t.Fatalf("expected *InvalidDataStructure, got %T: %v", err, err)
	}
	iss, ok := lcd.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got: %v", err)
	}
	return iss
}

func TestPerson_MissingAge(t *testing.T) {
	_, err := personStruct().Verify(context.Background(), map[string]any{"name": "Ann"})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Path != "/age" || iss[0].Code != lcd.CodeRequired {
		t.Fatalf("expected required at /age, got: %v", iss)
	}
}

func TestPerson_AgeTypeMismatch(t *testing.T) {
	_, err := personStruct().Verify(context.Background(), map[string]any{"name": "Ann", "age": "old"})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Path != "/age" || iss[0].Code != lcd.CodeInvalidType {
		t.Fatalf("expected invalid_type at /age, got: %v", iss)
	}
	if iss[0].Params["expected"] != "int" || iss[0].Params["got"] != "string" {
		t.Fatalf("unexpected params: %v", iss[0].Params)
	}
}

func TestPerson_ValidDumpsAddressAsNull(t *testing.T) {
	ctx := context.Background()
	inst, err := personStruct().Load(ctx, lcd.JSONBytes([]byte(`{"name":"Ann","age":30}`)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := inst.Dump(ctx)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := map[string]any{"name": "Ann", "age": json.Number("30"), "address": nil}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("dump mismatch: got %#v want %#v", out, want)
	}
	b, err := inst.DumpJSON(ctx)
	if err != nil {
		t.Fatalf("dump json: %v", err)
	}
	if string(b) != `{"name":"Ann","age":30,"address":null}` {
		t.Fatalf("unexpected JSON: %s", b)
	}
}

func TestNestedPathComposition(t *testing.T) {
	_, err := personStruct().Verify(context.Background(), map[string]any{
		"name":    "Ann",
		"age":     30,
		"address": map[string]any{"city": 7},
	})
	iss := issuesOf(t, err)
	got := iss.Paths()
	want := []string{"/address/street", "/address/city"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("paths: got %v want %v", got, want)
	}
	if iss[0].Code != lcd.CodeRequired || iss[1].Code != lcd.CodeInvalidType {
		t.Fatalf("codes: %v", iss)
	}
}

func TestNestedNotAnObject(t *testing.T) {
	_, err := personStruct().Verify(context.Background(), map[string]any{"name": "Ann", "age": 1, "address": "Main St"})
	iss := issuesOf(t, err)
	if iss[0].Path != "/address" || iss[0].Code != lcd.CodeInvalidType {
		t.Fatalf("expected invalid_type at /address, got %v", iss)
	}
}

func TestStructList_ElementIndex(t *testing.T) {
	item := lcd.Struct("Item").Field("name", lcd.String()).Required().MustBuild()
	order := lcd.Struct("Order").Field("items", lcd.StructListField(item)).Required().MustBuild()
	ctx := context.Background()

	_, err := order.Verify(ctx, map[string]any{"items": []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
		map[string]any{},
		"not an object",
	}})
	iss := issuesOf(t, err)
	got := iss.Paths()
	want := []string{"/items/2/name", "/items/3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("paths: got %v want %v", got, want)
	}

	inst, err := order.Verify(ctx, map[string]any{"items": []any{}})
	if err != nil {
		t.Fatalf("empty list must be valid: %v", err)
	}
	if l := inst.List("items"); l == nil || len(l) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", l)
	}

	_, err = order.Verify(ctx, map[string]any{"items": map[string]any{}})
	iss = issuesOf(t, err)
	if iss[0].Path != "/items" || iss[0].Code != lcd.CodeInvalidType {
		t.Fatalf("expected invalid_type at /items, got %v", iss)
	}
}

func TestStructList_MinMaxItems(t *testing.T) {
	item := lcd.Struct("Item").Field("n", lcd.Int()).MustBuild()
	s := lcd.Struct("Box").Field("items", lcd.StructListField(item).MinItems(1).MaxItems(2)).MustBuild()
	ctx := context.Background()

	_, err := s.Verify(ctx, map[string]any{"items": []any{}})
	if iss := issuesOf(t, err); iss[0].Code != lcd.CodeTooShort {
		t.Fatalf("expected too_short, got %v", iss)
	}
	_, err = s.Verify(ctx, map[string]any{"items": []any{map[string]any{}, map[string]any{}, map[string]any{}}})
	if iss := issuesOf(t, err); iss[0].Code != lcd.CodeTooLong {
		t.Fatalf("expected too_long, got %v", iss)
	}
}

func TestMissingIsNotNull(t *testing.T) {
	if lcd.IsMissing(nil) {
		t.Fatalf("nil must not be Missing")
	}
	if !lcd.IsMissing(lcd.Missing) {
		t.Fatalf("Missing must be Missing")
	}

	s := lcd.Struct("S").
		Field("nick", lcd.String()).Required().Nullable().
		Field("note", lcd.String()).
		MustBuild()
	ctx := context.Background()

	inst, err := s.Verify(ctx, map[string]any{"nick": nil})
	if err != nil {
		t.Fatalf("explicit null must validate: %v", err)
	}
	if v, ok := inst.Lookup("nick"); !ok || v != nil {
		t.Fatalf("nick: want (nil, true), got (%v, %v)", v, ok)
	}
	if !lcd.IsMissing(inst.Get("note")) {
		t.Fatalf("note must be Missing, got %#v", inst.Get("note"))
	}
	p := inst.Presence()
	if !p.WasNull("/nick") || !p.Seen("/nick") || p.Seen("/note") {
		t.Fatalf("unexpected presence: %v", p)
	}

	_, err = s.Verify(ctx, map[string]any{})
	iss := issuesOf(t, err)
	if iss[0].Path != "/nick" || iss[0].Code != lcd.CodeRequired {
		t.Fatalf("absent key must be required, got %v", iss)
	}
}

func TestRequiredRejectsNull(t *testing.T) {
	_, err := personStruct().Verify(context.Background(), map[string]any{"name": nil, "age": 1})
	iss := issuesOf(t, err)
	if iss[0].Path != "/name" || iss[0].Code != lcd.CodeInvalidType || iss[0].Params["got"] != "null" {
		t.Fatalf("expected null rejection at /name, got %v", iss)
	}
}

func TestCandidateNotAnObject(t *testing.T) {
	for _, c := range []any{nil, "x", 3, []any{}} {
		_, err := personStruct().Verify(context.Background(), c)
		iss := issuesOf(t, err)
		if iss[0].Path != "/" || iss[0].Code != lcd.CodeInvalidType {
			t.Fatalf("candidate %#v: expected invalid_type at /, got %v", c, iss)
		}
	}
}

func TestInvalidDataStructure_Message(t *testing.T) {
	_, err := personStruct().Verify(context.Background(), map[string]any{})
	want := "lcd: invalid Person\n  required at /name: required property missing\n  required at /age: required property missing"
	if err.Error() != want {
		t.Fatalf("message:\n%s\nwant:\n%s", err.Error(), want)
	}
}
