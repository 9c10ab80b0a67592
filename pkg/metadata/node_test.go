/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metadef/metadef/pkg/metadata/constraints"
)

// newTestRegistry registers a small catalog shared by the node tests:
// a root type accepting objects, a pojo object accepting fields, and a
// field hierarchy with a constrained «generation» attribute.
func newTestRegistry(t *testing.T) *Registry {
	require := require.New(t)

	reg := New()
	for _, d := range []*TypeDef{
		DefineType("metadata", "base").
			AddChild(OptionalChild("*", "object", "*")).
			Build(),
		DefineType("field", "base").
			AddAttr(constraints.Attr("generation").AsString().
				Enum("increment", "uuid", "assigned").Build()).
			Build(),
		DefineType("field", "string").InheritsFrom("field", "base").Build(),
		DefineType("field", "long").InheritsFrom("field", "base").Build(),
		DefineType("object", "pojo").
			AddChild(OptionalChild("*", "field", "*")).
			Build(),
		DefineType("validator", "required").Build(),
	} {
		require.NoError(reg.RegisterType(d))
	}
	return reg
}

func Test_Node_New(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)

	n, err := NewNode(reg, NewTypeID("object", "pojo"), "User")
	require.NoError(err)
	require.Equal("object", n.Type())
	require.Equal("pojo", n.SubType())
	require.Equal("User", n.Name())
	require.Equal(NodeState_UnderConstruction, n.State())
	require.Same(reg, n.Registry())
	require.Equal("object:pojo(User)", n.String())

	_, ok := n.Parent()
	require.False(ok)

	t.Run("unregistered pair must fail", func(t *testing.T) {
		_, err := NewNode(reg, NewTypeID("validator", "creditCard"), "cc")
		require.ErrorIs(err, ErrNotFoundError)
		require.ErrorContains(err, "creditCard")
	})

	t.Run("invalid name must fail", func(t *testing.T) {
		_, err := NewNode(reg, NewTypeID("object", "pojo"), "user name")
		require.ErrorIs(err, ErrInvalidError)
	})

	t.Run("nil registry must fail", func(t *testing.T) {
		_, err := NewNode(nil, NewTypeID("object", "pojo"), "User")
		require.ErrorIs(err, ErrMissedError)
	})

	t.Run("must panics on MustNewNode error", func(t *testing.T) {
		require.Panics(func() { MustNewNode(reg, NewTypeID("no", "such"), "x") })
	})
}

func Test_Node_AddChild(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")

	email := MustNewNode(reg, NewTypeID("field", "string"), "email")
	require.NoError(user.AddChild(email))

	p, ok := email.Parent()
	require.True(ok)
	require.Same(user, p)
	require.Equal(1, user.ChildCount())

	t.Run("duplicate child name must fail", func(t *testing.T) {
		err := user.AddChild(MustNewNode(reg, NewTypeID("field", "string"), "email"))
		require.ErrorIs(err, ErrAlreadyExistsError)
		require.ErrorContains(err, "email")
		require.Equal(1, user.ChildCount())

		t.Run("same name, same category, other kind is still a duplicate", func(t *testing.T) {
			err := user.AddChild(MustNewNode(reg, NewTypeID("field", "long"), "email"))
			require.ErrorIs(err, ErrAlreadyExistsError)
		})
	})

	t.Run("denied placement must carry diagnostics", func(t *testing.T) {
		err := user.AddChild(MustNewNode(reg, NewTypeID("validator", "required"), "check"))
		require.ErrorIs(err, ErrPlacementDeniedError)

		var pe *PlacementError
		require.ErrorAs(err, &pe)
		require.Equal("object:pojo(User)", pe.Parent)
		require.Equal(NewTypeID("validator", "required"), pe.ChildType)
		require.Equal("check", pe.ChildName)
		require.NotEmpty(pe.Allowed)
		require.Contains(err.Error(), "field.*")

		_, ok := user.FindChild("check")
		require.False(ok, "a rejected child must not be linked")
	})

	t.Run("attached child may not be attached again", func(t *testing.T) {
		other := MustNewNode(reg, NewTypeID("object", "pojo"), "Account")
		err := other.AddChild(email)
		require.ErrorIs(err, ErrInvalidError)
		require.ErrorContains(err, "already attached")
	})

	t.Run("child from another registry must fail", func(t *testing.T) {
		foreign := newTestRegistry(t)
		err := user.AddChild(MustNewNode(foreign, NewTypeID("field", "string"), "alien"))
		require.ErrorIs(err, ErrInvalidError)
	})
}

func Test_Node_ChildQueries(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")
	email := MustNewNode(reg, NewTypeID("field", "string"), "email")
	age := MustNewNode(reg, NewTypeID("field", "long"), "age")
	require.NoError(user.AddChild(email))
	require.NoError(user.AddChild(age))

	t.Run("children enumerate in attachment order", func(t *testing.T) {
		nn := []string{}
		user.Children(func(c *Node) { nn = append(nn, c.Name()) })
		require.Equal([]string{"email", "age"}, nn)
	})

	t.Run("find and require", func(t *testing.T) {
		c, ok := user.FindChild("age")
		require.True(ok)
		require.Same(age, c)

		c, ok = user.FindChildOf("field", "email")
		require.True(ok)
		require.Same(email, c)

		_, ok = user.FindChild("missing")
		require.False(ok)

		c, err := user.RequireChild("email")
		require.NoError(err)
		require.Same(email, c)

		_, err = user.RequireChild("missing")
		require.ErrorIs(err, ErrNotFoundError)
		require.ErrorContains(err, "object:pojo(User)")
		require.ErrorContains(err, "missing")
	})

	t.Run("filtered views are memoized per category", func(t *testing.T) {
		ff := user.ChildrenOf("field")
		require.Len(ff, 2)
		require.Same(email, ff[0])
		require.Empty(user.ChildrenOf("validator"))
	})
}

func Test_Node_Attrs(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	email := MustNewNode(reg, NewTypeID("field", "string"), "email")

	t.Run("constrained attribute accepts a legal value", func(t *testing.T) {
		require.NoError(email.SetAttr("generation", "uuid"))
		v, ok := email.Attr("generation")
		require.True(ok)
		require.Equal("uuid", v)
		require.True(email.HasAttr("generation"))
	})

	t.Run("constrained attribute rejects an illegal value", func(t *testing.T) {
		err := email.SetAttr("generation", "sequential")
		require.ErrorIs(err, ErrValueViolationError)
		require.ErrorContains(err, "sequential")
		require.ErrorContains(err, "increment")

		var ve *ValueError
		require.ErrorAs(err, &ve)
		require.Equal("field:string(email)", ve.Path)
		require.Equal("generation", ve.Attr)
		require.Equal("sequential", ve.Value)

		var violation *constraints.Violation
		require.ErrorAs(err, &violation)
		require.Equal(constraints.RuleKind_Enum, violation.Rule)

		v, _ := email.Attr("generation")
		require.Equal("uuid", v, "a rejected value must not be stored")
	})

	t.Run("unconstrained attributes are accepted", func(t *testing.T) {
		require.NoError(email.SetAttr("dbColumn", "email_addr"))
		require.Equal([]string{"generation", "dbColumn"}, email.AttrNames())
	})

	t.Run("require form", func(t *testing.T) {
		_, err := email.RequireAttr("absent")
		require.ErrorIs(err, ErrNotFoundError)
		require.ErrorContains(err, "field:string(email)")

		v, err := email.RequireAttr("dbColumn")
		require.NoError(err)
		require.Equal("email_addr", v)
	})

	t.Run("invalid attribute name must fail", func(t *testing.T) {
		require.ErrorIs(email.SetAttr("", 1), ErrMissedError)
	})
}

func Test_Node_Path(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	root := MustNewNode(reg, NewTypeID("metadata", "base"), "model")
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")
	email := MustNewNode(reg, NewTypeID("field", "string"), "email")
	require.NoError(root.AddChild(user))
	require.NoError(user.AddChild(email))

	require.Equal("metadata:base(model) → object:pojo(User) → field:string(email)", email.Path())
	require.Equal("metadata:base(model)", root.Path())
}

func Test_Node_Package(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")
	require.NoError(user.SetPackage("acme::model"))
	require.Equal("acme::model", user.Package())

	require.ErrorIs(user.SetPackage("acme::"), ErrInvalidError)

	t.Run("children inherit the parent package", func(t *testing.T) {
		email := MustNewNode(reg, NewTypeID("field", "string"), "email")
		require.NoError(user.AddChild(email))
		require.Equal("acme::model", email.Package())
	})
}

func Test_Node_Super(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	base := MustNewNode(reg, NewTypeID("object", "pojo"), "Base")
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")

	require.NoError(user.SetSuper(base))
	s, ok := user.Super()
	require.True(ok)
	require.Same(base, s)

	t.Run("cycle must fail", func(t *testing.T) {
		err := base.SetSuper(user)
		require.ErrorIs(err, ErrCircularError)
		require.ErrorContains(err, "object:pojo(Base) → object:pojo(User) → object:pojo(Base)")

		_, ok := base.Super()
		require.False(ok)
	})

	t.Run("another category must fail", func(t *testing.T) {
		field := MustNewNode(reg, NewTypeID("field", "string"), "email")
		require.ErrorIs(user.SetSuper(field), ErrInvalidError)
	})

	t.Run("nil must fail", func(t *testing.T) {
		require.ErrorIs(user.SetSuper(nil), ErrMissedError)
	})
}

func Test_Node_CacheInvalidationScoping(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	root := MustNewNode(reg, NewTypeID("metadata", "base"), "model")
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")
	account := MustNewNode(reg, NewTypeID("object", "pojo"), "Account")
	require.NoError(root.AddChild(user))
	require.NoError(root.AddChild(account))
	require.NoError(user.AddChild(MustNewNode(reg, NewTypeID("field", "string"), "email")))
	require.NoError(account.AddChild(MustNewNode(reg, NewTypeID("field", "long"), "balance")))

	userBefore := user.ChildrenOf("field")
	accountBefore := account.ChildrenOf("field")
	require.Len(userBefore, 1)
	require.Len(accountBefore, 1)

	require.NoError(user.AddChild(MustNewNode(reg, NewTypeID("field", "long"), "age")))

	t.Run("mutated node sees the new child", func(t *testing.T) {
		after := user.ChildrenOf("field")
		require.Len(after, 2)
		require.Equal("age", after[1].Name())
	})

	t.Run("sibling keeps its cached view", func(t *testing.T) {
		after := account.ChildrenOf("field")
		require.Same(accountBefore[0], after[0])
		require.Same(&accountBefore[0], &after[0],
			"sibling invalidation would have rebuilt the slice")
	})
}

func Test_Node_Clone(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	tmpl := MustNewNode(reg, NewTypeID("object", "pojo"), "AuditedEntity")
	require.NoError(tmpl.SetAttr(AttrIsAbstract, true))
	created := MustNewNode(reg, NewTypeID("field", "long"), "createdAt")
	updated := MustNewNode(reg, NewTypeID("field", "long"), "updatedAt")
	require.NoError(tmpl.AddChild(created))
	require.NoError(tmpl.AddChild(updated))
	require.NoError(updated.SetSuper(created))

	cp := tmpl.Clone()

	t.Run("identity and attributes are copied", func(t *testing.T) {
		require.Equal(tmpl.TypeID(), cp.TypeID())
		require.Equal("AuditedEntity", cp.Name())
		require.True(cp.IsAbstract())
		require.Equal(NodeState_UnderConstruction, cp.State())
		_, ok := cp.Parent()
		require.False(ok)
	})

	t.Run("children are copied, not shared", func(t *testing.T) {
		require.Equal(2, cp.ChildCount())
		c, ok := cp.FindChild("createdAt")
		require.True(ok)
		require.NotSame(created, c)

		p, ok := c.Parent()
		require.True(ok)
		require.Same(cp, p, "parent references must point into the copy")
	})

	t.Run("in-subtree super references are remapped", func(t *testing.T) {
		cu, ok := cp.FindChild("updatedAt")
		require.True(ok)
		s, ok := cu.Super()
		require.True(ok)
		cc, _ := cp.FindChild("createdAt")
		require.Same(cc, s)
	})

	t.Run("mutating the copy leaves the original alone", func(t *testing.T) {
		require.NoError(cp.AddChild(MustNewNode(reg, NewTypeID("field", "string"), "extra")))
		require.Equal(3, cp.ChildCount())
		require.Equal(2, tmpl.ChildCount())

		require.NoError(cp.SetAttr(AttrIsAbstract, false))
		require.True(tmpl.IsAbstract())
	})
}

func Test_Node_Seal(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	user := MustNewNode(reg, NewTypeID("object", "pojo"), "User")
	email := MustNewNode(reg, NewTypeID("field", "string"), "email")
	require.NoError(user.AddChild(email))

	user.Seal()
	require.Equal(NodeState_Sealed, user.State())
	require.Equal(NodeState_Sealed, email.State(), "seal must cascade")

	t.Run("structural mutation is rejected", func(t *testing.T) {
		err := user.AddChild(MustNewNode(reg, NewTypeID("field", "long"), "age"))
		require.ErrorIs(err, ErrSealedError)

		require.ErrorIs(email.SetAttr("generation", "uuid"), ErrSealedError)
		require.ErrorIs(user.SetPackage("acme"), ErrSealedError)
	})

	t.Run("reads keep working", func(t *testing.T) {
		c, ok := user.FindChild("email")
		require.True(ok)
		require.Same(email, c)
		require.Len(user.ChildrenOf("field"), 1)
	})

	t.Run("destroy", func(t *testing.T) {
		user.Destroy()
		require.Equal(NodeState_Destroyed, user.State())
		require.Equal(NodeState_Destroyed, email.State())
		require.ErrorIs(user.SetPackage("acme"), ErrInvalidError)
	})
}

func Test_Registry_MissingRequiredChildren(t *testing.T) {
	require := require.New(t)

	reg := newTestRegistry(t)
	require.NoError(reg.RegisterType(DefineType("object", "entity").
		InheritsFrom("object", "pojo").
		AddChild(RequiredChild("id", "field", "long")).
		Build()))

	user := MustNewNode(reg, NewTypeID("object", "entity"), "User")

	missing := reg.MissingRequiredChildren(user)
	require.Len(missing, 1)
	require.Equal("id", missing[0].Name())

	t.Run("satisfied requirement disappears", func(t *testing.T) {
		require.NoError(user.AddChild(MustNewNode(reg, NewTypeID("field", "long"), "id")))
		require.Empty(reg.MissingRequiredChildren(user))
	})

	t.Run("abstract nodes are exempt", func(t *testing.T) {
		tmpl := MustNewNode(reg, NewTypeID("object", "entity"), "Tmpl")
		require.NoError(tmpl.SetAttr(AttrIsAbstract, true))
		require.Empty(reg.MissingRequiredChildren(tmpl))
	})

	t.Run("wrong shape does not satisfy", func(t *testing.T) {
		other := MustNewNode(reg, NewTypeID("object", "entity"), "Other")
		require.NoError(other.AddChild(MustNewNode(reg, NewTypeID("field", "string"), "id")))
		missing := reg.MissingRequiredChildren(other)
		require.Len(missing, 1, "a field.string named «id» does not satisfy the field.long requirement")
	})
}
