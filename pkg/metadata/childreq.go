/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"fmt"
	"strings"

	"github.com/metadef/metadef/pkg/metadata/constraints"
)

// ChildRequirement is one line of a type's containment contract: "this
// type may (or must) have a child shaped like this". Name, expected
// type and expected subtype each may be the "*" wildcard; empty parts
// are normalized to the wildcard.
type ChildRequirement struct {
	name     string
	typ      string
	sub      string
	required bool
	desc     string
}

// OptionalChild declares a child that may be present.
func OptionalChild(name, expectedType, expectedSubType string, comment ...string) *ChildRequirement {
	return newChildRequirement(name, expectedType, expectedSubType, false, comment...)
}

// RequiredChild declares a child that must be present when loading
// completes (abstract nodes excepted).
func RequiredChild(name, expectedType, expectedSubType string, comment ...string) *ChildRequirement {
	return newChildRequirement(name, expectedType, expectedSubType, true, comment...)
}

func newChildRequirement(name, typ, sub string, required bool, comment ...string) *ChildRequirement {
	norm := func(s string) string {
		if s == NullName {
			return constraints.Anything
		}
		return s
	}
	return &ChildRequirement{
		name:     norm(name),
		typ:      norm(typ),
		sub:      norm(sub),
		required: required,
		desc:     strings.Join(comment, "\n"),
	}
}

// Name returns the expected child name, "*" for any.
func (r *ChildRequirement) Name() string { return r.name }

// ExpectedType returns the expected child category, "*" for any.
func (r *ChildRequirement) ExpectedType() string { return r.typ }

// ExpectedSubType returns the expected child concrete kind, "*" for any.
func (r *ChildRequirement) ExpectedSubType() string { return r.sub }

// Required reports whether the child must be present.
func (r *ChildRequirement) Required() bool { return r.required }

// Description returns the human readable description.
func (r *ChildRequirement) Description() string { return r.desc }

// IsWildcardName reports whether the requirement matches children by
// shape only.
func (r *ChildRequirement) IsWildcardName() bool {
	return r.name == constraints.Anything
}

// MatchesShape reports whether a child of the given category and kind
// satisfies the type part of the requirement.
func (r *ChildRequirement) MatchesShape(childType, childSubType string) bool {
	return constraints.MatchToken(r.typ, childType) &&
		constraints.MatchToken(r.sub, childSubType)
}

// Matches reports whether a child of the given shape and name satisfies
// the requirement.
func (r *ChildRequirement) Matches(childType, childSubType, childName string) bool {
	return constraints.MatchToken(r.name, childName) &&
		r.MatchesShape(childType, childSubType)
}

// Equal reports whether two requirements declare the same contract.
// Descriptions do not participate.
func (r *ChildRequirement) Equal(o *ChildRequirement) bool {
	if r == o {
		return true
	}
	if (r == nil) || (o == nil) {
		return false
	}
	return r.name == o.name && r.typ == o.typ && r.sub == o.sub && r.required == o.required
}

func (r *ChildRequirement) String() string {
	kind := "optional"
	if r.required {
		kind = "required"
	}
	return fmt.Sprintf("%s.%s «%s» (%s)", r.typ, r.sub, r.name, kind)
}

// mergeKey identifies a requirement inside an inheritance-merged view.
// Literal-name requirements override by name; wildcard-name
// requirements override by shape.
func (r *ChildRequirement) mergeKey() string {
	if r.IsWildcardName() {
		return constraints.Anything + "(" + r.typ + TypeIDSeparator + r.sub + ")"
	}
	return r.name
}
