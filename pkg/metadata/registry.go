/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/metadef/metadef/pkg/dualcache"
	"github.com/metadef/metadef/pkg/metadata/constraints"
)

// origin records which provider application registered a type.
type origin struct {
	provider   string
	generation uuid.UUID
}

// Registry is the process-wide catalog of type definitions: it resolves
// inheritance chains, decides child placement legality, and owns the
// registry-level tier of the dual cache.
//
// Lifecycle: New (registration, synchronized) → Seal (lock-free reads)
// → Close (teardown). Registration after Seal is the supported but
// discouraged hot extension path; it goes through the same RegisterType
// entry point and invalidates only the cache entries it touches.
type Registry struct {
	mu      sync.Mutex
	closed  bool
	defs    *dualcache.Cache[TypeID, *TypeDef]
	order   []TypeID
	origins map[TypeID]origin
	global  map[string][]*ChildRequirement
	merged  *dualcache.Cache[TypeID, map[string]*ChildRequirement]
	attrs   *dualcache.Cache[TypeID, map[string]*constraints.Value]
	descr   *dualcache.Text

	curProvider string
	curGen      uuid.UUID
}

// New returns an empty open registry.
func New() *Registry {
	return &Registry{
		defs:    dualcache.New[TypeID, *TypeDef](RegistryComputedSize),
		origins: make(map[TypeID]origin),
		global:  make(map[string][]*ChildRequirement),
		merged:  dualcache.New[TypeID, map[string]*ChildRequirement](RegistryComputedSize),
		attrs:   dualcache.New[TypeID, map[string]*constraints.Value](RegistryComputedSize),
		descr:   dualcache.NewText(DescriptionsCacheSize),
	}
}

// RegisterType adds a type definition to the catalog.
//
// Re-registration of an identical definition is idempotent. A
// conflicting definition for an already registered pair fails with
// ErrAlreadyExistsError unless it comes from the same provider
// (hot-reload), in which case it replaces the previous one and the
// affected cache entries are invalidated.
//
// Fails with ErrUnknownAncestorError if the definition inherits from an
// unregistered pair: providers must be applied in dependency order.
// Fails with ErrCircularError if the registration would close an
// inheritance cycle; no partial registration remains visible.
func (r *Registry) RegisterType(def *TypeDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrInvalid("registry is closed")
	}
	if def == nil {
		return ErrMissed("type definition")
	}
	id := def.ID()
	if ok, err := ValidTypeID(id); !ok {
		return err
	}

	existing, exists := r.defs.Get(id)
	if exists {
		if existing.Equal(def) {
			if logger.IsVerbose() {
				logger.Verbose("type", id.String(), "re-registered, identical definition ignored")
			}
			return nil
		}
		if org := r.origins[id]; (org.provider == NullName) || (org.provider != r.curProvider) {
			return ErrTypeAlreadyExists(id)
		}
		// same provider, new definition: hot-reload replace
	}

	if def.HasAncestor() {
		if _, ok := r.lookupOverlay(def, def.Ancestor()); !ok {
			return ErrUnknownAncestor(id, def.Ancestor())
		}
	}
	if err := r.checkAncestry(def); err != nil {
		return err
	}

	r.defs.PutPermanent(id, def)
	if !exists {
		r.order = append(r.order, id)
	}
	r.origins[id] = origin{provider: r.curProvider, generation: r.curGen}
	r.invalidateDerived(id)

	if logger.IsVerbose() {
		logger.Verbose("type", id.String(), "registered by provider", fmt.Sprintf("«%s»", r.curProvider))
	}
	return nil
}

// TypeDef returns the definition for the pair. The non-throwing lookup
// form; see RequireTypeDef for the failing one.
func (r *Registry) TypeDef(id TypeID) (*TypeDef, bool) {
	return r.defs.Get(id)
}

// RequireTypeDef returns the definition for the pair or
// ErrNotFoundError naming the missing pair.
func (r *Registry) RequireTypeDef(id TypeID) (*TypeDef, error) {
	if d, ok := r.defs.Get(id); ok {
		return d, nil
	}
	return nil, ErrTypeNotFound(id)
}

// DirectChildReqs returns the pair's own child requirement
// declarations, no inheritance merge. The returned slice is a copy.
func (r *Registry) DirectChildReqs(id TypeID) ([]*ChildRequirement, error) {
	d, err := r.RequireTypeDef(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(d.reqs), nil
}

// InheritedChildReqs returns the inheritance-merged child requirement
// view for the pair: requirements collected from the root ancestor
// down, a declaration at a more specific level replacing an inherited
// one with the same name (wildcard-name requirements override by
// shape). The returned map is a snapshot copy.
func (r *Registry) InheritedChildReqs(id TypeID) (map[string]*ChildRequirement, error) {
	m, err := r.mergedChildReqs(id)
	if err != nil {
		return nil, err
	}
	return maps.Clone(m), nil
}

// AcceptsChild reports whether a child of the given shape and name is
// legal under a parent of the given pair.
//
// Precedence is explicit: a literal-name requirement matching the child
// name is consulted first; wildcard-name requirements are consulted
// only after. Required vs optional does not affect acceptance.
func (r *Registry) AcceptsChild(parent, child TypeID, childName string) bool {
	m, err := r.mergedChildReqs(parent)
	if err != nil {
		return false
	}
	if req, ok := m[childName]; ok && req.MatchesShape(child.Type(), child.SubType()) {
		return true
	}
	for _, req := range m {
		if req.IsWildcardName() && req.MatchesShape(child.Type(), child.SubType()) {
			return true
		}
	}
	return false
}

// ValidatePlacement decides whether the child node may be attached to
// the parent node. On denial it returns a *PlacementError carrying the
// parent path, the attempted shape and the legal alternatives.
func (r *Registry) ValidatePlacement(parent, child *Node) error {
	if r.AcceptsChild(parent.TypeID(), child.TypeID(), child.Name()) {
		return nil
	}
	return &PlacementError{
		Parent:    parent.Path(),
		ChildType: child.TypeID(),
		ChildName: child.Name(),
		Allowed:   r.legalChildren(parent.TypeID()),
	}
}

// SupportedChildren returns a rendered human readable description of
// the shapes legal under the pair. Empty for an unknown pair.
func (r *Registry) SupportedChildren(id TypeID) string {
	if _, ok := r.defs.Get(id); !ok {
		return ""
	}
	return r.descr.GetOrRender(id.String(), func() string {
		ss := r.legalChildren(id)
		if len(ss) == 0 {
			return "no children are permitted"
		}
		return strings.Join(ss, "; ")
	})
}

// AttrConstraints returns the inheritance-merged attribute constraint
// view for the pair: a subtype gains its ancestors' constraints unless
// it re-declares the same attribute name. The returned map is a
// snapshot copy.
func (r *Registry) AttrConstraints(id TypeID) (map[string]*constraints.Value, error) {
	m, err := r.mergedAttrs(id)
	if err != nil {
		return nil, err
	}
	return maps.Clone(m), nil
}

// ValidateAttrValue checks a proposed attribute value against the
// pair's merged constraints. Attributes with no declared constraint are
// accepted.
func (r *Registry) ValidateAttrValue(id TypeID, attr string, v any) error {
	m, err := r.mergedAttrs(id)
	if err != nil {
		return err
	}
	c, ok := m[attr]
	if !ok {
		return nil
	}
	return c.Validate(v)
}

// AddGlobalChildReq declares a requirement applying to every subtype of
// the category. Load phase only.
func (r *Registry) AddGlobalChildReq(typ string, req *ChildRequirement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrInvalid("registry is closed")
	}
	if ok, err := ValidIdent(typ); !ok {
		return err
	}
	if req == nil {
		return ErrMissed("child requirement")
	}
	if r.Sealed() {
		return ErrSealed("global child requirement «%s» for «%s»", req, typ)
	}
	r.global[typ] = append(r.global[typ], req)
	for _, id := range r.order {
		if id.Type() == typ {
			r.invalidateDerived(id)
		}
	}
	return nil
}

// MissingRequiredChildren returns the required child requirements of
// the node's type that no attached child satisfies. Used by loaders as
// the end-of-load completeness check. Abstract nodes are exempt.
func (r *Registry) MissingRequiredChildren(n *Node) []*ChildRequirement {
	if n.IsAbstract() {
		return nil
	}
	m, err := r.mergedChildReqs(n.TypeID())
	if err != nil {
		return nil
	}
	missing := []*ChildRequirement{}
	for _, req := range m {
		if !req.Required() {
			continue
		}
		satisfied := false
		n.Children(func(c *Node) {
			if req.Matches(c.Type(), c.SubType(), c.Name()) {
				satisfied = true
			}
		})
		if !satisfied {
			missing = append(missing, req)
		}
	}
	slices.SortFunc(missing, func(a, b *ChildRequirement) bool { return a.Name() < b.Name() })
	return missing
}

// Types enumerates the registered definitions in registration order.
func (r *Registry) Types(cb func(*TypeDef)) {
	r.mu.Lock()
	ids := slices.Clone(r.order)
	r.mu.Unlock()
	for _, id := range ids {
		if d, ok := r.defs.Get(id); ok {
			cb(d)
		}
	}
}

// TypeCount returns the registered definition count.
func (r *Registry) TypeCount() int { return r.defs.Len() }

// TypeNames returns the sorted qualified names of all registered pairs.
func (r *Registry) TypeNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	nn := make([]string, len(r.order))
	for i, id := range r.order {
		nn[i] = id.String()
	}
	slices.Sort(nn)
	return nn
}

// Seal transitions the registry to the runtime phase: the permanent
// cache tiers are published for lock-free reads. Idempotent.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.defs.Sealed() {
		return
	}
	// pre-merge every registered pair so runtime lookups hit the
	// permanent tier
	for _, id := range r.order {
		_, _ = r.mergedChildReqs(id)
		_, _ = r.mergedAttrs(id)
	}
	r.defs.Seal()
	r.merged.Seal()
	r.attrs.Seal()
	logger.Info("type registry sealed,", len(r.order), "types")
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.defs.Sealed() }

// Close tears the registry down. For process shutdown and tests only.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.order = nil
	maps.Clear(r.origins)
	maps.Clear(r.global)
	r.descr.Reset()
}

// BeginProvider attributes subsequent registrations to the named
// provider application. For the bootstrap sequence; see the providers
// package.
func (r *Registry) BeginProvider(name string, generation uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.curProvider = name
	r.curGen = generation
}

// EndProvider ends provider attribution.
func (r *Registry) EndProvider() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.curProvider = NullName
	r.curGen = uuid.UUID{}
}

func (r *Registry) mergedChildReqs(id TypeID) (map[string]*ChildRequirement, error) {
	if _, ok := r.defs.Get(id); !ok {
		return nil, ErrTypeNotFound(id)
	}
	return r.merged.GetOrCompute(id, func() (map[string]*ChildRequirement, error) {
		res := make(map[string]*ChildRequirement)
		for _, req := range r.global[id.Type()] {
			res[req.mergeKey()] = req
		}
		chain := r.ancestry(id)
		for i := len(chain) - 1; i >= 0; i-- {
			chain[i].ChildReqs(func(req *ChildRequirement) {
				res[req.mergeKey()] = req
			})
		}
		return res, nil
	})
}

func (r *Registry) mergedAttrs(id TypeID) (map[string]*constraints.Value, error) {
	if _, ok := r.defs.Get(id); !ok {
		return nil, ErrTypeNotFound(id)
	}
	return r.attrs.GetOrCompute(id, func() (map[string]*constraints.Value, error) {
		res := make(map[string]*constraints.Value)
		chain := r.ancestry(id)
		for i := len(chain) - 1; i >= 0; i-- {
			chain[i].AttrConstraints(func(c *constraints.Value) {
				res[c.Attr()] = c
			})
		}
		return res, nil
	})
}

// ancestry returns the definition chain from the pair itself up to the
// root ancestor. Chains are acyclic by registration invariant.
func (r *Registry) ancestry(id TypeID) []*TypeDef {
	chain := []*TypeDef{}
	for cur := id; !cur.IsNull(); {
		d, ok := r.defs.Get(cur)
		if !ok {
			break
		}
		chain = append(chain, d)
		cur = d.Ancestor()
	}
	return chain
}

// checkAncestry walks the ancestor chain as if def were registered and
// fails with ErrCircularError, reporting the full cycle path, if the
// chain comes back to a visited pair.
func (r *Registry) checkAncestry(def *TypeDef) error {
	visited := map[TypeID]bool{}
	path := []string{}
	cur := def
	for {
		if visited[cur.ID()] {
			return ErrCircular(append(path, cur.QualifiedName())...)
		}
		visited[cur.ID()] = true
		path = append(path, cur.QualifiedName())
		if !cur.HasAncestor() {
			return nil
		}
		next, ok := r.lookupOverlay(def, cur.Ancestor())
		if !ok {
			return ErrUnknownAncestor(cur.ID(), cur.Ancestor())
		}
		cur = next
	}
}

// lookupOverlay resolves a pair against the catalog with def overlaid,
// so that ancestry checks see the registration being applied.
func (r *Registry) lookupOverlay(def *TypeDef, id TypeID) (*TypeDef, bool) {
	if id == def.ID() {
		return def, true
	}
	return r.defs.Get(id)
}

// invalidateDerived drops the derived cache entries reachable from the
// pair: its own merged views and those of its descendants. Never a
// global flush.
func (r *Registry) invalidateDerived(id TypeID) {
	drop := func(t TypeID) {
		r.merged.Invalidate(t)
		r.attrs.Invalidate(t)
		r.descr.Del(t.String())
	}
	drop(id)
	for _, did := range r.order {
		if did == id {
			continue
		}
		for cur := did; !cur.IsNull(); {
			d, ok := r.defs.Get(cur)
			if !ok || !d.HasAncestor() {
				break
			}
			if d.Ancestor() == id {
				drop(did)
				break
			}
			cur = d.Ancestor()
		}
	}
}

func (r *Registry) legalChildren(id TypeID) []string {
	m, err := r.mergedChildReqs(id)
	if err != nil {
		return nil
	}
	ss := make([]string, 0, len(m))
	for _, req := range m {
		ss = append(ss, req.String())
	}
	slices.Sort(ss)
	return ss
}
