// Package rules provides reusable struct-level rules for lcd.StructBuilder.Refine.
// Paths are JSON Pointers relative to the instance being refined.
package rules

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/lcd"
)

// Rule is the signature accepted by StructBuilder.Refine. A failing rule
// returns lcd.Issues.
type Rule = func(context.Context, *lcd.Instance) error

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates a path against a value using an operator.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	all := And(rules...)
	return func(ctx context.Context, inst *lcd.Instance) error {
		if !evalConditional(inst, c) {
			return nil
		}
		return all(ctx, inst)
	}
}

// Present requires a value (null included) at path.
func Present(path string) Rule {
	p := normalizePath(path)
	return func(_ context.Context, inst *lcd.Instance) error {
		if _, ok := inst.At(p); ok {
			return nil
		}
		return lcd.Issues{{Path: p, Code: lcd.CodeRequired, Message: "required property missing", Rule: "present"}}
	}
}

// AtLeastOne ensures the collection at collectionPath has at least 1 element.
// An absent collection is not reported.
func AtLeastOne(collectionPath string) Rule {
	p := normalizePath(collectionPath)
	return func(_ context.Context, inst *lcd.Instance) error {
		val, ok := inst.At(p)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == 0 {
			return lcd.Issues{{Path: p, Code: lcd.CodeTooShort, Message: "at least 1 item is required", Params: map[string]any{"minItems": 1}, Rule: "at_least_one"}}
		}
		return nil
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// collectionPath is JSON Pointer to a list field (e.g., "/items").
// keyPath is a relative path inside each element (e.g., "sku" or "/sku").
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := normalizePath(collectionPath)
	kp := normalizePath(keyPath)
	return func(_ context.Context, inst *lcd.Instance) error {
		val, ok := inst.At(cp)
		if !ok {
			return nil
		}
		elems, ok := val.([]*lcd.Instance)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var out lcd.Issues
		for i, e := range elems {
			kv, ok := e.At(kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if j, dup := seen[key]; dup {
				out = append(out, lcd.Issue{
					Path:    fmt.Sprintf("%s/%d%s", cp, i, kp),
					Code:    lcd.CodeCheckFailed,
					Message: "duplicate value",
					Params:  map[string]any{"first": j, "dup": i, "key": key},
					Rule:    "unique_by",
				})
			} else {
				seen[key] = i
			}
		}
		if len(out) > 0 {
			return out
		}
		return nil
	}
}

// ---------- Rule combinators ----------

// And executes all rules and concatenates Issues. Non-Issues errors are
// returned immediately.
func And(rules ...Rule) Rule {
	return func(ctx context.Context, inst *lcd.Instance) error {
		var out lcd.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			err := r(ctx, inst)
			if err == nil {
				continue
			}
			iss, ok := lcd.AsIssues(err)
			if !ok {
				return err
			}
			out = append(out, iss...)
		}
		if len(out) > 0 {
			return out
		}
		return nil
	}
}

// Or succeeds if any rule succeeds. When all fail the branch with the fewest
// issues is returned.
func Or(rules ...Rule) Rule {
	return func(ctx context.Context, inst *lcd.Instance) error {
		var best error
		bestN := -1
		for _, r := range rules {
			if r == nil {
				continue
			}
			err := r(ctx, inst)
			if err == nil {
				return nil
			}
			n := 1
			if iss, ok := lcd.AsIssues(err); ok {
				n = len(iss)
			}
			if bestN < 0 || n < bestN {
				best, bestN = err, n
			}
		}
		return best
	}
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return strings.TrimSuffix(p, "/")
}

func evalConditional(inst *lcd.Instance, c Conditional) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !evalConditional(inst, it) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if evalConditional(inst, it) {
				return true
			}
		}
		return false
	}
	cur, ok := inst.At(c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

func compare(cur any, op Op, want any) bool {
	a, aNum := lcd.ToFloat(cur)
	b, bNum := lcd.ToFloat(want)
	switch op {
	case Eq, Ne:
		eq := reflect.DeepEqual(cur, want)
		if aNum && bNum {
			eq = a == b
		}
		return eq == (op == Eq)
	}
	if !aNum || !bNum {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}
