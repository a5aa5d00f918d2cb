package ot

import (
	"fmt"
	"math"
)

// --- Writing tables --------------------------------------------------------

// Node is a table within a graph of OpenType structures, linked by offsets.
//
// A node holds the static bytes of one table. Offset fields are
// placeholders, which are filled in by Serialize, when the final positions of
// all tables are known. Offsets are always counted from the start of the node
// containing the offset field.
//
// Nodes are appended to, but never patched by clients. This keeps the
// construction of tables free of position arithmetic.
type Node struct {
	name  string
	data  []byte
	links []link
}

type link struct {
	at     int   // position of the offset field within the node's data
	width  int   // 2 or 4 bytes
	target *Node // nil for NULL offsets
}

// NewNode creates an empty table node. name is used for tracing and error
// messages only.
func NewNode(name string) *Node {
	return &Node{name: name, data: make([]byte, 0, 16)}
}

// Name returns the OpenType structure name of the node.
func (n *Node) Name() string {
	return n.name
}

// Len returns the byte size of the node's static data.
func (n *Node) Len() int {
	return len(n.data)
}

// U16 appends an uint16 field.
func (n *Node) U16(v uint16) *Node {
	n.data = append(n.data, byte(v>>8), byte(v))
	return n
}

// I16 appends an int16 field.
func (n *Node) I16(v int16) *Node {
	return n.U16(uint16(v))
}

// U32 appends an uint32 field.
func (n *Node) U32(v uint32) *Node {
	n.data = append(n.data, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return n
}

// Glyphs appends a sequence of glyph indices, without a count.
func (n *Node) Glyphs(glyphs []GlyphIndex) *Node {
	for _, g := range glyphs {
		n.U16(uint16(g))
	}
	return n
}

// Bytes appends raw bytes.
func (n *Node) Bytes(b []byte) *Node {
	n.data = append(n.data, b...)
	return n
}

// Link16 appends a 16-bit offset field, pointing to target. If target is nil,
// a NULL offset will be written.
func (n *Node) Link16(target *Node) *Node {
	n.links = append(n.links, link{at: len(n.data), width: 2, target: target})
	return n.U16(0)
}

// Link32 appends a 32-bit offset field, pointing to target. If target is nil,
// a NULL offset will be written.
func (n *Node) Link32(target *Node) *Node {
	n.links = append(n.links, link{at: len(n.data), width: 4, target: target})
	return n.U32(0)
}

// Serialize lays out the graph of tables starting at root and returns the
// resulting bytes.
//
// Serialization is done in two passes. The first pass assigns positions:
// tables are placed breadth-first, i.e. root first, then its children in the
// order of their links, then the grandchildren, and so on. A table reachable
// through more than one link is placed only once. The second pass emits the
// bytes and writes every offset as the distance from the linking table to the
// linked one.
//
// If an offset does not fit into its field, or a linked table has been placed
// before the table linking to it, ErrOffsetOverflow is returned.
func Serialize(root *Node) ([]byte, error) {
	if root == nil {
		return nil, nil
	}
	order := []*Node{root}
	pos := map[*Node]int{root: 0}
	size := len(root.data)
	for i := 0; i < len(order); i++ {
		for _, l := range order[i].links {
			if l.target == nil {
				continue
			}
			if _, ok := pos[l.target]; !ok {
				pos[l.target] = size
				size += len(l.target.data)
				order = append(order, l.target)
			}
		}
	}
	tracer().Debugf("serialize: %d tables, %d bytes", len(order), size)
	out := make([]byte, 0, size)
	for _, n := range order {
		start := len(out)
		out = append(out, n.data...)
		for _, l := range n.links {
			if l.target == nil {
				continue // NULL offset already in place
			}
			offset := pos[l.target] - pos[n]
			if offset < 0 || (l.width == 2 && offset > math.MaxUint16) ||
				(l.width == 4 && int64(offset) > math.MaxUint32) {
				return nil, fmt.Errorf("%w: %s -> %s at distance %d", ErrOffsetOverflow,
					n.name, l.target.name, offset)
			}
			at := start + l.at
			if l.width == 2 {
				out[at], out[at+1] = byte(offset>>8), byte(offset)
			} else {
				out[at], out[at+1], out[at+2], out[at+3] =
					byte(offset>>24), byte(offset>>16), byte(offset>>8), byte(offset)
			}
		}
	}
	return out, nil
}
