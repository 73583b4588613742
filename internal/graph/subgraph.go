// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

import (
	"sort"
)

// Subgraph is a read-mostly restriction of a Graph to the vertices that can
// influence a set of candidate blocks: the candidates themselves, the value
// suppliers (variables, locals, data sources, resources, outputs) at every
// enclosing module level, and the module call blocks the candidates live
// inside. The attribute renderer is bounded to one of these per round.
type Subgraph struct {
	graph   *Graph
	include map[int]struct{}
}

// Restrict builds the subgraph reachable from the given candidate vertex
// indices. Indices that are out of range are ignored rather than failing,
// since a stale candidate list is not this layer's error to report.
func (g *Graph) Restrict(candidates []int) *Subgraph {
	sub := &Subgraph{
		graph:   g,
		include: make(map[int]struct{}),
	}
	for _, idx := range candidates {
		if idx < 0 || idx >= len(g.Vertices) {
			continue
		}
		sub.include[idx] = struct{}{}
		for _, ref := range g.Vertices[idx].SourceModule {
			sub.include[ref] = struct{}{}
		}

		// Every enclosing level can supply inputs to the candidate's
		// iteration expression, up to and including the root.
		owner := g.Vertices[idx].SourceModuleObject
		for {
			if entry, ok := g.Membership.Get(owner); ok {
				for _, t := range []BlockType{TypeVariable, TypeLocals, TypeData, TypeResource, TypeOutput} {
					for _, member := range entry.ByType[t] {
						sub.include[member] = struct{}{}
					}
				}
			}
			if owner == nil {
				break
			}
			owner = owner.Enclosing
		}
	}
	return sub
}

// Contains returns true if the vertex at the given index is part of the
// subgraph.
func (s *Subgraph) Contains(idx int) bool {
	_, ok := s.include[idx]
	return ok
}

// Indices returns the subgraph's vertex indices in ascending order.
func (s *Subgraph) Indices() []int {
	ret := make([]int, 0, len(s.include))
	for idx := range s.include {
		ret = append(ret, idx)
	}
	sort.Ints(ret)
	return ret
}

// Block returns the vertex at the given index of the underlying graph.
func (s *Subgraph) Block(idx int) *Block {
	return s.graph.Vertices[idx]
}

// Len returns the number of vertices in the subgraph.
func (s *Subgraph) Len() int {
	return len(s.include)
}
