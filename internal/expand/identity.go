// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package expand

import (
	"github.com/hashicorp/tfgraph/internal/addrs"
	"github.com/hashicorp/tfgraph/internal/graph"
)

// updateModuleChildren rewrites the ownership identity of every descendant
// of one freshly produced module instance so that it points at that
// instance. For the override (first) instance the walk starts at the
// pre-expansion key, because that instance adopted the original subtree;
// for every later instance it starts at the instance's own key.
func (e *Expander) updateModuleChildren(main *graph.Block, instKey addrs.InstanceKey, override bool) {
	originalKey := &addrs.ModuleInstance{
		SourcePath: main.SourcePath,
		Name:       main.BaseName(),
		Enclosing:  main.SourceModuleObject.Copy(),
	}
	startKey := originalKey.Copy()
	if !override {
		startKey.Key = instKey
	}
	e.updateDescendantIdentity(instKey, originalKey, startKey, override)
}

// updateDescendantIdentity walks the membership index from startKey,
// recursively across nested-module boundaries, and for every descendant:
// rewrites its SourceModuleObject so the multiplied ancestor carries the
// new instance key, and applies the same rewrite to any resolved module
// reference embedded in its config.
//
// For the override instance the visited membership entries are also
// re-filed under their rewritten identity, so that every vertex remains
// reachable via its own derived owning key and no entry keeps pointing at
// the pre-expansion identity.
//
// The walk is an explicit worklist bounded by nesting depth. All key
// construction uses fresh copies: a key installed in the membership index
// is never mutated through an alias.
func (e *Expander) updateDescendantIdentity(instKey addrs.InstanceKey, originalKey, startKey *addrs.ModuleInstance, override bool) {
	work := []*addrs.ModuleInstance{startKey.Copy()}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]

		entry, ok := e.graph.Membership.Get(cur)
		if !ok {
			continue
		}
		for _, childIdx := range entry.AllMembers() {
			child := e.graph.Vertices[childIdx]

			rewriteAncestorKey(instKey, originalKey, child.SourceModuleObject)
			rewriteResolvedModules(child, instKey, originalKey)

			if child.Type != graph.TypeModule {
				continue
			}

			// The nested module's own entry is still filed under its
			// pre-rewrite owning identity; descend through that form.
			preRewrite := child.SourceModuleObject.Copy()
			if override {
				clearAncestorKey(originalKey, preRewrite)
			}
			work = append(work, &addrs.ModuleInstance{
				SourcePath: child.SourcePath,
				Name:       child.BaseName(),
				Enclosing:  preRewrite,
				Key:        child.ForEachIndex,
			})
		}

		if override {
			newKey := cur.Copy()
			rewriteAncestorKey(instKey, originalKey, newKey)
			if newKey.UniqueKey() != cur.UniqueKey() {
				e.graph.Membership.Put(newKey, entry.ByType)
				e.graph.Membership.Delete(cur)
			}
		}
	}
}

// rewriteAncestorKey walks the identity chain starting at m and assigns the
// new instance key to the first ancestor matching the pre-duplication
// module identity. Chains that never reference the multiplied module are
// left untouched.
func rewriteAncestorKey(instKey addrs.InstanceKey, originalKey, m *addrs.ModuleInstance) {
	for cur := m; cur != nil; cur = cur.Enclosing {
		if cur.EqualDisregardingKey(originalKey) {
			cur.Key = instKey
			return
		}
	}
}

// clearAncestorKey undoes rewriteAncestorKey on a private copy of a chain,
// restoring the pre-rewrite form used as a membership key.
func clearAncestorKey(originalKey, m *addrs.ModuleInstance) {
	for cur := m; cur != nil; cur = cur.Enclosing {
		if cur.EqualDisregardingKey(originalKey) {
			cur.Key = addrs.NoKey
			return
		}
	}
}

// rewriteResolvedModules applies the instance-key rewrite to the resolved
// module references embedded in a block's config, so configuration-based
// lookups keep resolving to the correct instance after duplication.
func rewriteResolvedModules(b *graph.Block, instKey addrs.InstanceKey, originalKey *addrs.ModuleInstance) {
	for _, mod := range b.ResolvedModules() {
		rewriteAncestorKey(instKey, originalKey, mod)
	}
}
