/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/metadef/metadef/pkg/metadata/constraints"
)

// TypeDef is the registered contract of one (type, subType) pair: the
// optional ancestor pair it inherits from, its own ordered child
// requirements, its attribute value constraints, a description and the
// identifier of the concrete implementation bound to the type.
//
// A TypeDef is immutable once built; use DefineType to construct one.
type TypeDef struct {
	id       TypeID
	ancestor TypeID
	desc     string
	impl     string
	reqs     []*ChildRequirement
	reqKeys  map[string]int
	attrs    map[string]*constraints.Value
	attrOrd  []string
}

// ID returns the (type, subType) identifier.
func (d *TypeDef) ID() TypeID { return d.id }

// Type returns the category part of the identifier.
func (d *TypeDef) Type() string { return d.id.Type() }

// SubType returns the concrete kind part of the identifier.
func (d *TypeDef) SubType() string { return d.id.SubType() }

// QualifiedName returns the "type.subType" string form.
func (d *TypeDef) QualifiedName() string { return d.id.String() }

// HasAncestor reports whether the type inherits from another pair.
func (d *TypeDef) HasAncestor() bool { return !d.ancestor.IsNull() }

// Ancestor returns the inherited pair, NullTypeID if none.
func (d *TypeDef) Ancestor() TypeID { return d.ancestor }

// Description returns the human readable description.
func (d *TypeDef) Description() string { return d.desc }

// Impl returns the implementation binding identifier, empty if none.
func (d *TypeDef) Impl() string { return d.impl }

// ChildReqs enumerates the direct child requirements in declaration
// order.
func (d *TypeDef) ChildReqs(cb func(*ChildRequirement)) {
	for _, r := range d.reqs {
		cb(r)
	}
}

// ChildReqCount returns the direct child requirement count.
func (d *TypeDef) ChildReqCount() int { return len(d.reqs) }

// ChildReq returns the direct literal-name requirement for the name.
func (d *TypeDef) ChildReq(name string) (*ChildRequirement, bool) {
	if i, ok := d.reqKeys[name]; ok {
		return d.reqs[i], true
	}
	return nil, false
}

// AttrConstraints enumerates the attribute constraints in declaration
// order.
func (d *TypeDef) AttrConstraints(cb func(*constraints.Value)) {
	for _, n := range d.attrOrd {
		cb(d.attrs[n])
	}
}

// AttrConstraint returns the constraint declared for the attribute.
func (d *TypeDef) AttrConstraint(name string) (*constraints.Value, bool) {
	c, ok := d.attrs[name]
	return c, ok
}

// Equal reports whether two definitions declare the same contract.
// Used to recognize idempotent re-registration.
func (d *TypeDef) Equal(o *TypeDef) bool {
	if d == o {
		return true
	}
	if (d == nil) || (o == nil) {
		return false
	}
	if d.id != o.id || d.ancestor != o.ancestor || d.impl != o.impl {
		return false
	}
	if !slices.EqualFunc(d.reqs, o.reqs, (*ChildRequirement).Equal) {
		return false
	}
	if !slices.Equal(d.attrOrd, o.attrOrd) {
		return false
	}
	for _, n := range d.attrOrd {
		if !d.attrs[n].Equal(o.attrs[n]) {
			return false
		}
	}
	return true
}

func (d *TypeDef) String() string {
	b := strings.Builder{}
	b.WriteString("type ")
	b.WriteString(d.QualifiedName())
	if d.HasAncestor() {
		b.WriteString(" inherits ")
		b.WriteString(d.ancestor.String())
	}
	return b.String()
}

// DefineType starts building a type definition for the (typ, subType)
// pair.
//
// # Panics:
//   - if either part is not a valid identifier
func DefineType(typ, subType string) *TypeDefBuilder {
	id := NewTypeID(typ, subType)
	if ok, err := ValidTypeID(id); !ok {
		panic(err)
	}
	return &TypeDefBuilder{
		d: &TypeDef{
			id:      id,
			reqKeys: make(map[string]int),
			attrs:   make(map[string]*constraints.Value),
		},
	}
}

// TypeDefBuilder accumulates a type definition. Declaration mistakes
// panic: a broken type catalog must not survive bootstrap.
type TypeDefBuilder struct {
	d *TypeDef
}

// InheritsFrom declares the ancestor pair. The ancestor must be
// registered before this definition is.
func (b *TypeDefBuilder) InheritsFrom(typ, subType string) *TypeDefBuilder {
	id := NewTypeID(typ, subType)
	if ok, err := ValidTypeID(id); !ok {
		panic(err)
	}
	b.d.ancestor = id
	return b
}

// SetDescription sets the human readable description.
func (b *TypeDefBuilder) SetDescription(comment ...string) *TypeDefBuilder {
	b.d.desc = strings.Join(comment, "\n")
	return b
}

// SetImpl binds the type to a concrete implementation identifier.
func (b *TypeDefBuilder) SetImpl(impl string) *TypeDefBuilder {
	b.d.impl = impl
	return b
}

// AddChild appends a child requirement.
//
// # Panics:
//   - if req is nil
//   - if a requirement with the same merge key is already declared
func (b *TypeDefBuilder) AddChild(req *ChildRequirement) *TypeDefBuilder {
	if req == nil {
		panic(ErrMissed("%v: child requirement", b.d.id))
	}
	key := req.mergeKey()
	if _, ok := b.d.reqKeys[key]; ok {
		panic(ErrAlreadyExists("%v: child requirement «%s»", b.d.id, key))
	}
	b.d.reqKeys[key] = len(b.d.reqs)
	b.d.reqs = append(b.d.reqs, req)
	return b
}

// AddAttr attaches an attribute value constraint built with the
// constraints fluent chain.
//
// # Panics:
//   - if c is nil
//   - if a constraint for the same attribute is already declared
func (b *TypeDefBuilder) AddAttr(c *constraints.Value) *TypeDefBuilder {
	if c == nil {
		panic(ErrMissed("%v: attribute constraint", b.d.id))
	}
	if _, ok := b.d.attrs[c.Attr()]; ok {
		panic(ErrAlreadyExists("%v: attribute constraint «%s»", b.d.id, c.Attr()))
	}
	b.d.attrs[c.Attr()] = c
	b.d.attrOrd = append(b.d.attrOrd, c.Attr())
	return b
}

// Build finishes the chain and returns the immutable definition. The
// builder must not be reused afterwards.
func (b *TypeDefBuilder) Build() *TypeDef {
	return b.d
}
