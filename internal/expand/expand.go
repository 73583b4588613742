// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package expand materializes module for_each/count iteration in a
// configuration graph: every module call whose iteration statement becomes
// statically resolvable is replaced by N independent instances, each with a
// deep-copied descendant subtree and correctly rewritten identity.
//
// Expansion proceeds level by level to a fixpoint rather than in a single
// pass, because an inner module's iteration count may depend on a value
// that only exists per-instance of an outer module.
package expand

import (
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/hashicorp/tfgraph/internal/addrs"
	"github.com/hashicorp/tfgraph/internal/graph"
	"github.com/hashicorp/tfgraph/internal/lang"
)

// Expander drives module expansion over a single graph. It owns all
// mutation of the graph's vertex store and membership index for the
// duration of a call; the whole transformation is synchronous and
// single-threaded.
type Expander struct {
	graph    *graph.Graph
	resolver lang.StaticResolver
	renderer lang.AttributeRenderer
	logger   hclog.Logger
}

// NewExpander returns an Expander over the given graph using the given
// collaborators.
func NewExpander(g *graph.Graph, resolver lang.StaticResolver, renderer lang.AttributeRenderer, logger hclog.Logger) *Expander {
	return &Expander{
		graph:    g,
		resolver: resolver,
		renderer: renderer,
		logger:   logger.Named("expand"),
	}
}

// ExpandModules expands every module in candidates whose for_each/count
// statement is, or becomes, statically resolvable. Candidates name MODULE
// vertices previously identified by a static scan.
//
// Modules whose statement never resolves are left un-multiplied; that is
// not an error. A malformed statement kind is.
func (e *Expander) ExpandModules(candidates []int) error {
	if len(candidates) == 0 {
		return nil
	}

	// Start from the root level: the modules declared directly in the
	// root module.
	parents := []*addrs.ModuleInstance{nil}
	var deferred []int

	for {
		levelModules := e.modulesAtLevel(parents)
		queue := mergeIndices(levelModules, deferred)
		if len(queue) == 0 {
			break
		}

		result, err := e.expandRound(candidates, queue)
		if err != nil {
			return err
		}

		// Descend into the children of the just-updated level. Re-reading
		// membership here picks up instances appended during this round.
		nextParents := e.instancesAtLevel(parents)
		nextParents = append(nextParents, result.createdInstances...)
		nextParents = dedupeInstances(nextParents)

		if len(e.modulesAtLevel(nextParents)) == 0 && !result.progressed {
			// No deeper levels and nothing newly resolvable: whatever is
			// still deferred will never resolve in this call.
			break
		}
		parents = nextParents
		deferred = result.deferred
	}
	return nil
}

type roundResult struct {
	progressed       bool
	deferred         []int
	createdInstances []*addrs.ModuleInstance
}

// expandRound runs one fixpoint round: render the candidate subgraph, then
// expand every queued module whose statement is now static.
func (e *Expander) expandRound(candidates, queue []int) (roundResult, error) {
	var result roundResult

	sub := e.graph.Restrict(candidates)
	e.renderer.RenderSubgraph(sub)

	for _, idx := range queue {
		b := e.graph.Vertices[idx]
		if b.Type != graph.TypeModule || b.ForEachIndex != addrs.NoKey {
			continue
		}
		_, hasForEach := b.Attributes[graph.ForEachAttr]
		_, hasCount := b.Attributes[graph.CountAttr]
		if !hasForEach && !hasCount {
			continue
		}
		if !e.resolver.IsStatic(b, sub) {
			// Not resolvable yet; retry in a later round.
			result.deferred = append(result.deferred, idx)
			continue
		}
		stmt, err := e.resolver.Resolve(b, sub)
		if err != nil {
			return result, err
		}

		var created []*addrs.ModuleInstance
		if hasForEach {
			created, err = e.expandForEach(idx, stmt)
		} else {
			created, err = e.expandCount(idx, stmt)
		}
		if err != nil {
			return result, err
		}
		e.logger.Debug("expanded module", "name", b.BaseName(), "instances", len(created))
		result.createdInstances = append(result.createdInstances, created...)
		result.progressed = true
	}
	return result, nil
}

// modulesAtLevel returns the union of MODULE members across the membership
// entries of the given level keys, deduplicated and in ascending order.
func (e *Expander) modulesAtLevel(parents []*addrs.ModuleInstance) []int {
	var ret []int
	for _, parent := range parents {
		if entry, ok := e.graph.Membership.Get(parent); ok {
			ret = append(ret, entry.Members(graph.TypeModule)...)
		}
	}
	return mergeIndices(ret, nil)
}

// instancesAtLevel derives the module-instance keys of every module block
// listed at the given level, reflecting any expansion this round performed.
func (e *Expander) instancesAtLevel(parents []*addrs.ModuleInstance) []*addrs.ModuleInstance {
	var ret []*addrs.ModuleInstance
	for _, idx := range e.modulesAtLevel(parents) {
		ret = append(ret, e.graph.Vertices[idx].ModuleKey())
	}
	return ret
}

// countFromValue extracts the count statement's integer, rejecting
// non-number and non-whole values.
func countFromValue(b *graph.Block, stmt cty.Value) (int, error) {
	if stmt.Type() != cty.Number {
		return 0, &InvalidStatementKindError{Block: b, Value: stmt}
	}
	var n int
	if err := gocty.FromCtyValue(stmt, &n); err != nil {
		return 0, &InvalidStatementKindError{Block: b, Value: stmt}
	}
	return n, nil
}

func mergeIndices(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	var ret []int
	for _, idx := range a {
		if _, ok := seen[idx]; !ok {
			seen[idx] = struct{}{}
			ret = append(ret, idx)
		}
	}
	for _, idx := range b {
		if _, ok := seen[idx]; !ok {
			seen[idx] = struct{}{}
			ret = append(ret, idx)
		}
	}
	sort.Ints(ret)
	return ret
}

func dedupeInstances(keys []*addrs.ModuleInstance) []*addrs.ModuleInstance {
	seen := make(map[addrs.UniqueKey]struct{}, len(keys))
	var ret []*addrs.ModuleInstance
	for _, key := range keys {
		uk := key.UniqueKey()
		if _, ok := seen[uk]; !ok {
			seen[uk] = struct{}{}
			ret = append(ret, key)
		}
	}
	return ret
}
