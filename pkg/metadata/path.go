/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"github.com/valyala/bytebufferpool"
)

// String returns the "type:subType(name)" form of the node identity.
func (n *Node) String() string {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	writeSegment(bb, n)
	return bb.String()
}

// Path renders the full hierarchical path of the node, e.g.
// "object:pojo(User) → field:string(email)". Used in every diagnostic
// the core raises.
func (n *Node) Path() string {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	writePath(bb, n)
	return bb.String()
}

func writePath(bb *bytebufferpool.ByteBuffer, n *Node) {
	if n.parent != nil {
		writePath(bb, n.parent)
		_, _ = bb.WriteString(PathArrow)
	}
	writeSegment(bb, n)
}

func writeSegment(bb *bytebufferpool.ByteBuffer, n *Node) {
	_, _ = bb.WriteString(n.id.Type())
	_, _ = bb.WriteString(":")
	_, _ = bb.WriteString(n.id.SubType())
	_, _ = bb.WriteString("(")
	_, _ = bb.WriteString(n.name)
	_, _ = bb.WriteString(")")
}
