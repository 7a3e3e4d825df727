// Package lcd loads, checks and dumps structured data.
//
// A DataStruct is a named, ordered set of field declarations built with
// Struct. Load decodes a Source (JSON, YAML or an in-memory value), Verify
// checks plain data against the declaration and returns an *Instance, and
// Instance.Dump turns it back into plain maps and slices.
//
// - Three field kinds: scalars (String, Int, Number, Bool, Object, Array, Time, Any),
//   nested structs (StructField) and lists of structs (StructListField).
// - Absent keys are represented by the Missing sentinel, never by nil; explicit
//   null is kept as nil and recorded in Presence.
// - Violations are reported as one *InvalidDataStructure carrying Issues with
//   JSON Pointer paths (/address/street, /items/2/name) and stable codes.
// - Recursive declarations use StructFieldRef / StructListFieldRef and a
//   Registry that links names after every struct is registered.
//
// Typical usage:
//
//	address := lcd.Struct("Address").
//		Field("street", lcd.String()).Required().
//		MustBuild()
//	person := lcd.Struct("Person").
//		Field("name", lcd.String()).Required().
//		Field("age", lcd.Int()).Required().
//		Field("address", lcd.StructField(address)).
//		MustBuild()
//
//	inst, err := person.Load(ctx, lcd.JSONBytes(data))
//	out, err := inst.Dump(ctx) // {"name": "Ann", "age": 30, "address": nil}
//
// Declarations are immutable after Build (and Registry.Link) and safe for
// concurrent use. Instances are read-only values.
package lcd
