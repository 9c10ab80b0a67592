/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package constraints

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// Anything matches any token when used as an expected type, subtype or
// name in a requirement declaration.
const Anything = "*"

// MatchToken reports whether actual satisfies expected, where expected
// may be the Anything wildcard.
func MatchToken(expected, actual string) bool {
	return expected == Anything || expected == actual
}

// Value is one immutable attribute-level constraint: the declared value
// kind, cardinality and an optional refinement (enum, pattern or
// numeric range).
//
// Values are produced by the fluent builder only, see Attr().
type Value struct {
	attr    string
	kind    DataKind
	card    Cardinality
	enum    []string
	pattern *regexp.Regexp
	min     *float64
	max     *float64
	desc    string
}

// Attr returns the constrained attribute name.
func (c *Value) Attr() string { return c.attr }

// Kind returns the declared value kind.
func (c *Value) Kind() DataKind { return c.kind }

// Card returns the declared cardinality.
func (c *Value) Card() Cardinality { return c.card }

// Description returns the human readable description of the constraint.
func (c *Value) Description() string { return c.desc }

// Enum returns the enumerated value set, empty if the constraint has no
// enum refinement. The returned slice is a copy.
func (c *Value) Enum() []string { return slices.Clone(c.enum) }

// Pattern returns the source of the pattern refinement, empty if none.
func (c *Value) Pattern() string {
	if c.pattern == nil {
		return ""
	}
	return c.pattern.String()
}

// Range returns the numeric range refinement bounds. ok is false if the
// constraint has no range refinement.
func (c *Value) Range() (min, max float64, ok bool) {
	if c.min == nil {
		return 0, 0, false
	}
	return *c.min, *c.max, true
}

// Validate checks the proposed value against the constraint and returns
// a *Violation (wrapping ErrViolationError) on the first failed rule.
func (c *Value) Validate(v any) error {
	if c.card == Cardinality_Array {
		vv, ok := asSlice(v)
		if !ok {
			return c.violation(RuleKind_Cardinality, v, "expected an array of %s", c.kind)
		}
		for i, e := range vv {
			if err := c.validateScalar(e); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}
	if _, ok := asSlice(v); ok {
		return c.violation(RuleKind_Cardinality, v, "expected a single %s, got an array", c.kind)
	}
	return c.validateScalar(v)
}

func (c *Value) validateScalar(v any) error {
	switch c.kind {
	case DataKind_String:
		s, ok := v.(string)
		if !ok {
			return c.violation(RuleKind_Kind, v, "expected string, got %T", v)
		}
		if len(c.enum) > 0 && !slices.Contains(c.enum, s) {
			return c.violation(RuleKind_Enum, v, "«%s» is not one of {%s}", s, strings.Join(c.enum, ", "))
		}
		if c.pattern != nil && !c.pattern.MatchString(s) {
			return c.violation(RuleKind_Pattern, v, "«%s» does not match pattern «%s»", s, c.pattern)
		}
	case DataKind_Int, DataKind_Float:
		n, ok := asNumber(v, c.kind)
		if !ok {
			return c.violation(RuleKind_Kind, v, "expected %s, got %T", c.kind, v)
		}
		if c.min != nil && (n < *c.min || n > *c.max) {
			return c.violation(RuleKind_Range, v, "%v is out of range [%v, %v]", v, *c.min, *c.max)
		}
	case DataKind_Bool:
		if _, ok := v.(bool); !ok {
			return c.violation(RuleKind_Kind, v, "expected bool, got %T", v)
		}
	}
	return nil
}

func (c *Value) violation(rule RuleKind, v any, msg string, args ...any) error {
	return &Violation{
		Attr:  c.attr,
		Rule:  rule,
		Value: v,
		msg:   fmt.Sprintf(msg, args...),
	}
}

// Equal reports whether two constraints declare the same contract.
func (c *Value) Equal(o *Value) bool {
	if c == o {
		return true
	}
	if (c == nil) || (o == nil) {
		return false
	}
	return c.attr == o.attr &&
		c.kind == o.kind &&
		c.card == o.card &&
		slices.Equal(c.enum, o.enum) &&
		c.Pattern() == o.Pattern() &&
		eqBound(c.min, o.min) && eqBound(c.max, o.max)
}

func (c *Value) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "attr «%s»: %s %s", c.attr, c.card, c.kind)
	if len(c.enum) > 0 {
		fmt.Fprintf(&b, ", one of {%s}", strings.Join(c.enum, ", "))
	}
	if c.pattern != nil {
		fmt.Fprintf(&b, ", pattern «%s»", c.pattern)
	}
	if c.min != nil {
		fmt.Fprintf(&b, ", range [%v, %v]", *c.min, *c.max)
	}
	return b.String()
}

func eqBound(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func asSlice(v any) ([]any, bool) {
	switch vv := v.(type) {
	case []any:
		return vv, true
	case []string:
		r := make([]any, len(vv))
		for i, e := range vv {
			r[i] = e
		}
		return r, true
	case []int:
		r := make([]any, len(vv))
		for i, e := range vv {
			r[i] = e
		}
		return r, true
	case []int64:
		r := make([]any, len(vv))
		for i, e := range vv {
			r[i] = e
		}
		return r, true
	case []float64:
		r := make([]any, len(vv))
		for i, e := range vv {
			r[i] = e
		}
		return r, true
	case []bool:
		r := make([]any, len(vv))
		for i, e := range vv {
			r[i] = e
		}
		return r, true
	}
	return nil, false
}

func asNumber(v any, k DataKind) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		if k == DataKind_Int {
			return 0, false
		}
		return float64(n), true
	case float64:
		if k == DataKind_Int {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Violation is a failed Validate outcome. It names the violated rule and
// carries the offending value; errors.Is(v, ErrViolationError) is true.
type Violation struct {
	Attr  string
	Rule  RuleKind
	Value any
	msg   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%v: attr «%s» (%s rule): %s", ErrViolationError, v.Attr, v.Rule, v.msg)
}

func (v *Violation) Unwrap() error { return ErrViolationError }
