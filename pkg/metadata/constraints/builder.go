/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package constraints

import (
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// Attr starts a fluent constraint chain for the named attribute.
//
// The chain is staged: the value kind must be declared first, then
// cardinality and refinements may follow in any order, and Build()
// produces the immutable Value. A half-built chain cannot be attached
// to a type definition, only the Build() result can.
//
//	constraints.Attr("generation").AsString().Single().
//		Enum("increment", "uuid", "assigned").Build()
//
// # Panics:
//   - if name is empty
func Attr(name string) *Builder {
	if name == "" {
		panic(ErrIncompatible("attribute name is empty"))
	}
	return &Builder{attr: name}
}

// Builder is the first chain stage: the declared kind is still missed.
type Builder struct {
	attr string
}

// AsString declares the attribute value kind as string.
func (b *Builder) AsString() *Refiner { return b.of(DataKind_String) }

// AsInt declares the attribute value kind as integer.
func (b *Builder) AsInt() *Refiner { return b.of(DataKind_Int) }

// AsFloat declares the attribute value kind as float.
func (b *Builder) AsFloat() *Refiner { return b.of(DataKind_Float) }

// AsBool declares the attribute value kind as boolean.
func (b *Builder) AsBool() *Refiner { return b.of(DataKind_Bool) }

func (b *Builder) of(k DataKind) *Refiner {
	return &Refiner{c: Value{attr: b.attr, kind: k, card: Cardinality_Single}}
}

// Refiner is the second chain stage: kind is declared, cardinality and
// refinements accumulate.
type Refiner struct {
	c Value
}

// Single declares the attribute as a single value of the declared kind.
// This is the default.
func (r *Refiner) Single() *Refiner {
	r.c.card = Cardinality_Single
	return r
}

// Array declares the attribute as an ordered array of values of the
// declared kind. Refinements apply per element.
func (r *Refiner) Array() *Refiner {
	r.c.card = Cardinality_Array
	return r
}

// Enum restricts a string attribute to the enumerated value set. Values
// are sorted and deduplicated.
//
// # Panics:
//   - if the declared kind is not string
//   - if the value set is empty
func (r *Refiner) Enum(vv ...string) *Refiner {
	if r.c.kind != DataKind_String {
		panic(ErrIncompatible("enum refinement requires string kind, attr «%s» is %s", r.c.attr, r.c.kind))
	}
	if len(vv) == 0 {
		panic(ErrIncompatible("enum value set for attr «%s» is empty", r.c.attr))
	}
	e := slices.Clone(vv)
	slices.Sort(e)
	r.c.enum = slices.Compact(e)
	return r
}

// Pattern restricts a string attribute to values matching the regular
// expression.
//
// # Panics:
//   - if the declared kind is not string
//   - if expr is not a valid regular expression
func (r *Refiner) Pattern(expr string) *Refiner {
	if r.c.kind != DataKind_String {
		panic(ErrIncompatible("pattern refinement requires string kind, attr «%s» is %s", r.c.attr, r.c.kind))
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		panic(err)
	}
	r.c.pattern = re
	return r
}

// Range restricts a numeric attribute to the inclusive [min, max] range.
//
// # Panics:
//   - if the declared kind is not numeric
//   - if min > max
func (r *Refiner) Range(min, max float64) *Refiner {
	if (r.c.kind != DataKind_Int) && (r.c.kind != DataKind_Float) {
		panic(ErrIncompatible("range refinement requires numeric kind, attr «%s» is %s", r.c.attr, r.c.kind))
	}
	if min > max {
		panic(ErrIncompatible("range minimum (%v) is greater than maximum (%v) for attr «%s»", min, max, r.c.attr))
	}
	r.c.min = &min
	r.c.max = &max
	return r
}

// Describe sets the human readable description of the constraint.
func (r *Refiner) Describe(comment ...string) *Refiner {
	r.c.desc = strings.Join(comment, "\n")
	return r
}

// Build finishes the chain and returns the immutable constraint.
func (r *Refiner) Build() *Value {
	c := r.c
	return &c
}
