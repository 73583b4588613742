// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package expand

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/hashicorp/tfgraph/internal/addrs"
	"github.com/hashicorp/tfgraph/internal/graph"
)

// instanceElem is one element of a resolved iteration statement: the
// instance key plus the cty key/value pair fed to iteration substitution.
type instanceElem struct {
	key addrs.InstanceKey
	k   cty.Value
	v   cty.Value
}

// expandForEach replaces the module at the given vertex index with one
// instance per element of the resolved for_each statement. For a sequence
// the element value itself acts as the instance key; for a mapping the
// instance key is the mapping key. Iteration order is cty's element order,
// which is deterministic (lexical for maps and objects).
func (e *Expander) expandForEach(idx int, stmt cty.Value) ([]*addrs.ModuleInstance, error) {
	ty := stmt.Type()
	b := e.graph.Vertices[idx]

	var elems []instanceElem
	switch {
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		pos := 0
		for it := stmt.ElementIterator(); it.Next(); {
			_, val := it.Element()
			elems = append(elems, instanceElem{
				key: sequenceInstanceKey(val, pos),
				k:   val,
				v:   val,
			})
			pos++
		}
	case ty.IsObjectType() || ty.IsMapType():
		for it := stmt.ElementIterator(); it.Next(); {
			key, val := it.Element()
			elems = append(elems, instanceElem{
				key: addrs.StringKey(key.AsString()),
				k:   key,
				v:   val,
			})
		}
	default:
		return nil, &InvalidStatementKindError{Block: b, Value: stmt}
	}

	return e.expandStatement(idx, elems), nil
}

// expandCount replaces the module at the given vertex index with n
// instances keyed 0..n-1.
func (e *Expander) expandCount(idx int, stmt cty.Value) ([]*addrs.ModuleInstance, error) {
	b := e.graph.Vertices[idx]
	n, err := countFromValue(b, stmt)
	if err != nil {
		return nil, err
	}

	elems := make([]instanceElem, 0, n)
	for i := 0; i < n; i++ {
		v := cty.NumberIntVal(int64(i))
		elems = append(elems, instanceElem{key: addrs.IntKey(i), k: v, v: v})
	}
	return e.expandStatement(idx, elems), nil
}

// expandStatement produces one module instance per element. All clones are
// created before any descendant identity is rewritten, so that the
// duplication step never observes data structures mid-update; the
// membership snapshot is taken once, before the first mutation.
func (e *Expander) expandStatement(idx int, elems []instanceElem) []*addrs.ModuleInstance {
	// The original block must be captured before the first instance
	// overwrites its vertex slot.
	main := e.graph.Vertices[idx]
	snapshot := e.graph.Membership.Snapshot()

	created := make([]*addrs.ModuleInstance, 0, len(elems))
	for pos, elem := range elems {
		created = append(created, e.cloneModule(main, snapshot, elem, idx, pos))
	}
	for pos, elem := range elems {
		e.updateModuleChildren(main, elem.key, pos == 0)
	}
	return created
}

// cloneModule deep-copies the module block for one instance, applying the
// first-instance rule: position 0 overwrites the original vertex slot in
// place and adopts the original descendant subtree, while every later
// position allocates a new vertex and deep-copies the entire subtree
// reachable through the original's membership entry.
func (e *Expander) cloneModule(main *graph.Block, snapshot *graph.MembershipIndex, elem instanceElem, vertexIdx, position int) *addrs.ModuleInstance {
	clone := main.Copy()
	e.renderer.SubstituteIteration(clone, elem.k, elem.v)
	delete(clone.Attributes, graph.ForEachAttr)
	delete(clone.Attributes, graph.CountAttr)
	clone.ForEachIndex = elem.key
	clone.Name = instanceName(main.BaseName(), elem.key)

	originalKey := &addrs.ModuleInstance{
		SourcePath: main.SourcePath,
		Name:       main.BaseName(),
		Enclosing:  main.SourceModuleObject.Copy(),
	}
	cloneKey := originalKey.Copy()
	cloneKey.Key = elem.key

	rewriteResolvedModules(clone, elem.key, originalKey)

	// A module with no membership entry simply has zero descendants.
	originalEntry, _ := snapshot.Get(originalKey)

	if position == 0 {
		e.graph.Replace(vertexIdx, clone)
		e.graph.Membership.Put(cloneKey, originalEntry.CopyByType())
	} else {
		newIdx := e.graph.Append(clone)
		e.graph.Membership.Append(clone.SourceModuleObject, graph.TypeModule, newIdx)
		e.cloneDescendants(snapshot, originalEntry, cloneKey, newIdx)
	}
	return cloneKey
}

// cloneFrame is one pending subtree level during descendant duplication:
// the original member buckets to copy, plus the identity and vertex index
// of the freshly created owner they are being copied under.
type cloneFrame struct {
	byType   map[graph.BlockType][]int
	owner    *addrs.ModuleInstance
	ownerIdx int
}

// cloneDescendants deep-copies the entire descendant subtree of a module
// instance, re-homing each copied block to its new owner and building a
// fresh membership entry per copied level. The walk is an explicit
// worklist bounded by the module-nesting depth; nested module boundaries
// are discovered through the pre-mutation membership snapshot.
func (e *Expander) cloneDescendants(snapshot *graph.MembershipIndex, entry *graph.MembershipEntry, ownerKey *addrs.ModuleInstance, ownerIdx int) {
	work := []cloneFrame{{
		byType:   entry.CopyByType(),
		owner:    ownerKey,
		ownerIdx: ownerIdx,
	}}
	for len(work) > 0 {
		frame := work[len(work)-1]
		work = work[:len(work)-1]

		newByType := make(map[graph.BlockType][]int)
		for _, t := range graph.TypeOrder {
			for _, vertexIdx := range frame.byType[t] {
				orig := e.graph.Vertices[vertexIdx]
				cp := orig.Copy()
				cp.SourceModuleObject = frame.owner.Copy()
				cp.SourceModule = []int{frame.ownerIdx}
				newIdx := e.graph.Append(cp)
				newByType[t] = append(newByType[t], newIdx)

				if t != graph.TypeModule {
					continue
				}
				childEntry, _ := snapshot.Get(orig.ModuleKey())
				nestedKey := &addrs.ModuleInstance{
					SourcePath: cp.SourcePath,
					Name:       cp.BaseName(),
					Enclosing:  frame.owner.Copy(),
					Key:        cp.ForEachIndex,
				}
				work = append(work, cloneFrame{
					byType:   childEntry.CopyByType(),
					owner:    nestedKey,
					ownerIdx: newIdx,
				})
			}
		}
		e.graph.Membership.Put(frame.owner, newByType)
	}
}

// instanceName derives the unique per-instance block name, e.g.
// `bucket["a"]` or `bucket[0]`.
func instanceName(base string, key addrs.InstanceKey) string {
	return base + key.String()
}

// sequenceInstanceKey derives the instance key for one element of a
// sequence statement: the element value itself when it is a string or
// whole number, otherwise the element's position.
func sequenceInstanceKey(val cty.Value, pos int) addrs.InstanceKey {
	if key, err := addrs.ParseInstanceKey(val); err == nil {
		return key
	}
	return addrs.IntKey(pos)
}
