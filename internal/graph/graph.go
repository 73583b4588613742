// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

// Graph is the configuration graph store: an indexable vertex sequence plus
// the membership index grouping vertices by the module instantiation that
// lexically contains them.
//
// Vertex indices are append-only, with one exception: the first instance
// produced when a block is multiplied overwrites the original block's slot
// in place, so external references to that index stay valid.
type Graph struct {
	Vertices   []*Block
	Membership *MembershipIndex
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Membership: NewMembershipIndex(),
	}
}

// Append adds a vertex to the graph and returns its index. It does not
// touch the membership index; registration is a separate decision because
// duplication sometimes assembles whole entries at once.
func (g *Graph) Append(b *Block) int {
	g.Vertices = append(g.Vertices, b)
	return len(g.Vertices) - 1
}

// AddBlock appends a vertex and registers it in the membership entry of its
// containing module instance. This is the common path for initial graph
// construction.
func (g *Graph) AddBlock(b *Block) int {
	idx := g.Append(b)
	g.Membership.Append(b.SourceModuleObject, b.Type, idx)
	return idx
}

// Replace overwrites the vertex at the given index in place.
func (g *Graph) Replace(idx int, b *Block) {
	g.Vertices[idx] = b
}
