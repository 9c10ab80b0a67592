/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package constraints

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Builder(t *testing.T) {
	require := require.New(t)

	t.Run("must be ok to build a full chain", func(t *testing.T) {
		c := Attr("generation").AsString().Single().
			Enum("increment", "uuid", "assigned").
			Describe("id generation strategy").
			Build()

		require.Equal("generation", c.Attr())
		require.Equal(DataKind_String, c.Kind())
		require.Equal(Cardinality_Single, c.Card())
		require.Equal([]string{"assigned", "increment", "uuid"}, c.Enum(), "enum must be sorted and deduplicated")
		require.Equal("id generation strategy", c.Description())
	})

	t.Run("single is the default cardinality", func(t *testing.T) {
		require.Equal(Cardinality_Single, Attr("a").AsInt().Build().Card())
	})

	t.Run("range bounds must be readable back", func(t *testing.T) {
		c := Attr("size").AsFloat().Range(0.5, 2).Build()
		min, max, ok := c.Range()
		require.True(ok)
		require.Equal(0.5, min)
		require.Equal(float64(2), max)

		_, _, ok = Attr("size").AsFloat().Build().Range()
		require.False(ok)
	})

	t.Run("pattern source must be readable back", func(t *testing.T) {
		require.Equal(`^\w+$`, Attr("a").AsString().Pattern(`^\w+$`).Build().Pattern())
		require.Equal("", Attr("a").AsString().Build().Pattern())
	})

	t.Run("built values must be independent of the chain", func(t *testing.T) {
		r := Attr("a").AsString()
		first := r.Build()
		r.Enum("x")
		require.Empty(first.Enum())
	})

	t.Run("must panic on misuse", func(t *testing.T) {
		require.Panics(func() { Attr("") })
		require.Panics(func() { Attr("a").AsInt().Enum("x") }, "enum on numeric kind")
		require.Panics(func() { Attr("a").AsString().Enum() }, "empty enum")
		require.Panics(func() { Attr("a").AsString().Range(0, 1) }, "range on string kind")
		require.Panics(func() { Attr("a").AsInt().Range(2, 1) }, "inverted range")
		require.Panics(func() { Attr("a").AsString().Pattern(`[`) }, "bad pattern")
		require.Panics(func() { Attr("a").AsBool().Pattern(`x`) }, "pattern on bool kind")
	})
}
