// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package lang provides the expression-evaluation collaborators of the
// expansion engine: the static-resolution oracle that decides whether an
// iteration statement has a fully known value, and the attribute renderer
// that resolves expressions within a bounded subgraph.
package lang

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/hashicorp/tfgraph/internal/graph"
)

// StaticResolver decides whether a block's iteration statement is fully
// resolved given the values currently known within a subgraph, and produces
// the statement's value once it is.
//
// Resolve is valid to call only when IsStatic holds for the same block and
// subgraph.
type StaticResolver interface {
	IsStatic(b *graph.Block, sub *graph.Subgraph) bool
	Resolve(b *graph.Block, sub *graph.Subgraph) (cty.Value, error)
}

// AttributeRenderer resolves expressions in place within a bounded
// subgraph, and substitutes per-instance iteration values into a freshly
// cloned block.
type AttributeRenderer interface {
	// RenderSubgraph mutates the subgraph's blocks so that as many
	// expressions as currently knowable become resolved. Best effort:
	// whatever cannot be resolved yet is left untouched.
	RenderSubgraph(sub *graph.Subgraph)

	// SubstituteIteration rewrites references to the iteration
	// placeholders (each.key, each.value, count.index) inside the given
	// block's config and attributes with the concrete per-instance values.
	SubstituteIteration(b *graph.Block, key, value cty.Value)
}
