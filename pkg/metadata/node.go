/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/metadef/metadef/pkg/dualcache"
)

// NodeState is the lifecycle stage of a node.
type NodeState uint8

const (
	NodeState_Uninitialized NodeState = iota

	// structural mutation allowed, writes synchronized by the loader
	NodeState_UnderConstruction

	// no further structural mutation, all reads lock-free
	NodeState_Sealed

	// registry teardown only
	NodeState_Destroyed
)

func (s NodeState) String() string {
	switch s {
	case NodeState_UnderConstruction:
		return "under construction"
	case NodeState_Sealed:
		return "sealed"
	case NodeState_Destroyed:
		return "destroyed"
	}
	return "uninitialized"
}

type childKey struct {
	typ  string
	name string
}

// Node is the universal hierarchical metadata entity: an object, field,
// attribute or validator instance conforming to a registered TypeDef.
//
// Identity (type, subtype, name) is immutable after construction; all
// mutation is structural — children and attribute values — and is only
// legal while the node is under construction.
type Node struct {
	reg      *Registry
	id       TypeID
	name     string
	pkg      string
	parent   *Node
	super    *Node
	children []*Node
	index    map[childKey]*Node
	attrs    map[string]any
	attrOrd  []string
	cache    *dualcache.Cache[string, any]
	state    NodeState
}

// NewNode creates a node of the given registered pair. Fails with
// ErrNotFoundError if the pair is not registered, so that loaders
// report unknown descriptor types at the offending element.
func NewNode(reg *Registry, id TypeID, name string) (*Node, error) {
	if reg == nil {
		return nil, ErrMissed("registry")
	}
	if _, err := reg.RequireTypeDef(id); err != nil {
		return nil, err
	}
	if ok, err := ValidIdent(name); !ok {
		return nil, err
	}
	return &Node{
		reg:   reg,
		id:    id,
		name:  name,
		index: make(map[childKey]*Node),
		attrs: make(map[string]any),
		cache: dualcache.New[string, any](NodeComputedSize),
		state: NodeState_UnderConstruction,
	}, nil
}

// MustNewNode is NewNode for programmatic trees built in code.
//
// # Panics:
//   - on any NewNode error
func MustNewNode(reg *Registry, id TypeID, name string) *Node {
	n, err := NewNode(reg, id, name)
	if err != nil {
		panic(err)
	}
	return n
}

// Registry returns the owning registry.
func (n *Node) Registry() *Registry { return n.reg }

// TypeID returns the (type, subType) pair.
func (n *Node) TypeID() TypeID { return n.id }

// Type returns the category part of the pair.
func (n *Node) Type() string { return n.id.Type() }

// SubType returns the concrete kind part of the pair.
func (n *Node) SubType() string { return n.id.SubType() }

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Package returns the hierarchical namespace of the node.
func (n *Node) Package() string { return n.pkg }

// SetPackage assigns the hierarchical namespace. Load phase only.
func (n *Node) SetPackage(pkg string) error {
	if err := n.mutable(); err != nil {
		return err
	}
	if ok, err := ValidPackage(pkg); !ok {
		return err
	}
	n.pkg = pkg
	return nil
}

// Parent returns the parent node. Navigational only, the parent owns
// the child and not the other way around.
func (n *Node) Parent() (*Node, bool) { return n.parent, n.parent != nil }

// Super returns the super node of the inheritance chain between peer
// nodes of the same category.
func (n *Node) Super() (*Node, bool) { return n.super, n.super != nil }

// SetSuper links the node to a peer it inherits from. The chain must
// stay acyclic and within one category. Load phase only.
func (n *Node) SetSuper(s *Node) error {
	if err := n.mutable(); err != nil {
		return err
	}
	if s == nil {
		return ErrMissed("%s: super node", n.Path())
	}
	if s.Type() != n.Type() {
		return ErrInvalid("%s: super node %s is of another category", n.Path(), s)
	}
	path := []string{n.String()}
	for cur := s; cur != nil; cur = cur.super {
		path = append(path, cur.String())
		if cur == n {
			return ErrCircular(path...)
		}
	}
	n.super = s
	n.cache.DropComputed()
	return nil
}

// State returns the lifecycle stage.
func (n *Node) State() NodeState { return n.state }

// AddChild validates and links a child node.
//
// Fails with ErrAlreadyExistsError if the parent already has a child
// with the same (type, name), and with *PlacementError if no
// requirement of the parent's type accepts the child shape. A rejected
// child is not linked.
func (n *Node) AddChild(child *Node) error {
	if err := n.mutable(); err != nil {
		return err
	}
	if child == nil {
		return ErrMissed("%s: child", n.Path())
	}
	if child.reg != n.reg {
		return ErrInvalid("%s: child %s belongs to another registry", n.Path(), child)
	}
	if child.parent != nil {
		return ErrInvalid("%s: child %s is already attached to %s", n.Path(), child, child.parent)
	}
	if err := child.mutable(); err != nil {
		return err
	}
	key := childKey{typ: child.Type(), name: child.name}
	if _, ok := n.index[key]; ok {
		return ErrChildAlreadyExists(n.Path(), child.Type(), child.name)
	}
	if err := n.reg.ValidatePlacement(n, child); err != nil {
		return err
	}

	n.children = append(n.children, child)
	n.index[key] = child
	child.parent = n
	if child.pkg == NullName {
		child.pkg = n.pkg
	}
	n.invalidateChildren(child.Type())
	return nil
}

// Children enumerates direct children in attachment order.
func (n *Node) Children(cb func(*Node)) {
	for _, c := range n.children {
		cb(c)
	}
}

// ChildCount returns the direct child count.
func (n *Node) ChildCount() int { return len(n.children) }

// ChildrenOf returns the direct children of the category, in attachment
// order. The result is memoized in the node's computed cache tier;
// callers must treat it as a read-only snapshot.
func (n *Node) ChildrenOf(typ string) []*Node {
	v, err := n.cache.GetOrCompute(childrenCacheKey(typ), func() (any, error) {
		cc := []*Node{}
		for _, c := range n.children {
			if c.Type() == typ {
				cc = append(cc, c)
			}
		}
		return cc, nil
	})
	if err != nil {
		return nil
	}
	return v.([]*Node)
}

// FindChild returns the first direct child with the name, over all
// categories. The non-throwing form.
func (n *Node) FindChild(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// FindChildOf returns the direct child with the (type, name) identity.
func (n *Node) FindChildOf(typ, name string) (*Node, bool) {
	c, ok := n.index[childKey{typ: typ, name: name}]
	return c, ok
}

// RequireChild returns the direct child with the name or
// ErrNotFoundError carrying the full hierarchical path.
func (n *Node) RequireChild(name string) (*Node, error) {
	if c, ok := n.FindChild(name); ok {
		return c, nil
	}
	return nil, ErrChildNotFound(n.Path(), name)
}

// HasAttr reports whether the attribute is set.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// Attr returns the attribute value. The non-throwing form.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// RequireAttr returns the attribute value or ErrNotFoundError carrying
// the full hierarchical path.
func (n *Node) RequireAttr(name string) (any, error) {
	if v, ok := n.attrs[name]; ok {
		return v, nil
	}
	return nil, ErrAttrNotFound(n.Path(), name)
}

// SetAttr validates the proposed value against the type's merged value
// constraints and stores it. On violation it returns a *ValueError
// wrapping the failed rule; the value is not stored. Load phase only.
func (n *Node) SetAttr(name string, v any) error {
	if err := n.mutable(); err != nil {
		return err
	}
	if ok, err := ValidIdent(name); !ok {
		return err
	}
	if err := n.reg.ValidateAttrValue(n.id, name, v); err != nil {
		return &ValueError{Path: n.Path(), Attr: name, Value: v, cause: err}
	}
	if _, ok := n.attrs[name]; !ok {
		n.attrOrd = append(n.attrOrd, name)
	}
	n.attrs[name] = v
	return nil
}

// AttrNames returns the attribute names in first-set order. The
// returned slice is a copy.
func (n *Node) AttrNames() []string {
	return slices.Clone(n.attrOrd)
}

// IsAbstract reports the conventional abstract flag.
func (n *Node) IsAbstract() bool {
	switch v := n.attrs[AttrIsAbstract].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// Clone deep-copies the subtree: every node is copied, parent and
// super references inside the subtree are remapped into the copy, and
// nothing mutable is shared with the original. The copy is under
// construction regardless of the original's state.
func (n *Node) Clone() *Node {
	m := make(map[*Node]*Node)
	cp := n.cloneTree(nil, m)
	for orig, c := range m {
		if orig.super == nil {
			continue
		}
		if s, ok := m[orig.super]; ok {
			c.super = s
		}
	}
	return cp
}

func (n *Node) cloneTree(parent *Node, m map[*Node]*Node) *Node {
	c := &Node{
		reg:     n.reg,
		id:      n.id,
		name:    n.name,
		pkg:     n.pkg,
		parent:  parent,
		super:   n.super, // external supers survive, in-subtree ones are remapped by Clone
		attrs:   maps.Clone(n.attrs),
		attrOrd: slices.Clone(n.attrOrd),
		index:   make(map[childKey]*Node, len(n.index)),
		cache:   dualcache.New[string, any](NodeComputedSize),
		state:   NodeState_UnderConstruction,
	}
	for _, ch := range n.children {
		cc := ch.cloneTree(c, m)
		c.children = append(c.children, cc)
		c.index[childKey{typ: cc.Type(), name: cc.name}] = cc
	}
	m[n] = c
	return c
}

// Seal transitions the subtree to the runtime phase: structural
// mutation is rejected from now on and cached reads take no locks.
func (n *Node) Seal() {
	if n.state != NodeState_UnderConstruction {
		return
	}
	for _, c := range n.children {
		c.Seal()
	}
	n.cache.Seal()
	n.state = NodeState_Sealed
}

// Destroy tears the subtree down. Registry teardown only.
func (n *Node) Destroy() {
	if n.state == NodeState_Destroyed {
		return
	}
	for _, c := range n.children {
		c.Destroy()
	}
	n.children = nil
	n.index = nil
	n.attrs = nil
	n.attrOrd = nil
	n.super = nil
	n.state = NodeState_Destroyed
}

func (n *Node) mutable() error {
	switch n.state {
	case NodeState_UnderConstruction:
		return nil
	case NodeState_Sealed:
		return ErrSealed("%s", n.Path())
	}
	return ErrInvalid("%s is %s", n.String(), n.state)
}

// invalidateChildren drops the derived entries of this node affected by
// attaching a child of the category. Sibling nodes and other categories
// keep their cached results.
func (n *Node) invalidateChildren(typ string) {
	n.cache.Invalidate(childrenCacheKey(typ))
}

func childrenCacheKey(typ string) string {
	return "children:" + typ
}
