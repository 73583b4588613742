// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

import (
	"sort"

	"github.com/hashicorp/tfgraph/internal/addrs"
)

// MembershipIndex maps each module instantiation to the vertex indices of
// the blocks declared directly inside it, bucketed by block type. The root
// module is addressed by a nil *addrs.ModuleInstance.
//
// Since *addrs.ModuleInstance is not comparable in the Go sense, the index
// keys internally by addrs.UniqueKey, keeping the original key value
// alongside each entry, in the same spirit as an address-keyed map.
type MembershipIndex struct {
	elems map[addrs.UniqueKey]*MembershipEntry
}

// MembershipEntry is one entry of a MembershipIndex: the module-instance
// key it is filed under plus the member vertex indices by block type.
//
// Key must be treated as immutable once the entry is installed in an index;
// the index stores a private copy precisely so that no caller can mutate it
// through an alias.
type MembershipEntry struct {
	Key    *addrs.ModuleInstance
	ByType map[BlockType][]int
}

// NewMembershipIndex returns an empty index.
func NewMembershipIndex() *MembershipIndex {
	return &MembershipIndex{elems: make(map[addrs.UniqueKey]*MembershipEntry)}
}

// Get returns the entry for the given module instance, if any.
func (idx *MembershipIndex) Get(key *addrs.ModuleInstance) (*MembershipEntry, bool) {
	entry, ok := idx.elems[key.UniqueKey()]
	return entry, ok
}

// Has returns true if the index has an entry for the given module instance.
func (idx *MembershipIndex) Has(key *addrs.ModuleInstance) bool {
	_, ok := idx.elems[key.UniqueKey()]
	return ok
}

// Put installs the given member buckets under the given key, replacing any
// existing entry. The key is defensively copied before being retained, so
// later mutation of the caller's value cannot corrupt the index.
func (idx *MembershipIndex) Put(key *addrs.ModuleInstance, byType map[BlockType][]int) {
	if byType == nil {
		byType = make(map[BlockType][]int)
	}
	idx.elems[key.UniqueKey()] = &MembershipEntry{
		Key:    key.Copy(),
		ByType: byType,
	}
}

// Append records that the vertex at the given index is declared directly
// inside the given module instance, creating the entry if needed.
func (idx *MembershipIndex) Append(key *addrs.ModuleInstance, blockType BlockType, vertexIdx int) {
	uk := key.UniqueKey()
	entry, ok := idx.elems[uk]
	if !ok {
		entry = &MembershipEntry{
			Key:    key.Copy(),
			ByType: make(map[BlockType][]int),
		}
		idx.elems[uk] = entry
	}
	entry.ByType[blockType] = append(entry.ByType[blockType], vertexIdx)
}

// Delete removes the entry for the given module instance, if present.
func (idx *MembershipIndex) Delete(key *addrs.ModuleInstance) {
	delete(idx.elems, key.UniqueKey())
}

// Len returns the number of entries in the index.
func (idx *MembershipIndex) Len() int {
	return len(idx.elems)
}

// Keys returns the module-instance keys of all entries, as fresh copies, in
// a deterministic order.
func (idx *MembershipIndex) Keys() []*addrs.ModuleInstance {
	uks := make([]addrs.UniqueKey, 0, len(idx.elems))
	for uk := range idx.elems {
		uks = append(uks, uk)
	}
	sortUniqueKeys(uks)
	ret := make([]*addrs.ModuleInstance, len(uks))
	for i, uk := range uks {
		ret[i] = idx.elems[uk].Key.Copy()
	}
	return ret
}

// Snapshot returns a deep copy of the whole index: entries, member buckets
// and keys all belong to the snapshot alone. Traversals that must read
// membership while the live index is being mutated take one of these first.
func (idx *MembershipIndex) Snapshot() *MembershipIndex {
	ret := NewMembershipIndex()
	for uk, entry := range idx.elems {
		byType := make(map[BlockType][]int, len(entry.ByType))
		for t, members := range entry.ByType {
			byType[t] = append([]int(nil), members...)
		}
		ret.elems[uk] = &MembershipEntry{
			Key:    entry.Key.Copy(),
			ByType: byType,
		}
	}
	return ret
}

// Members returns the entry's vertex indices for one block type. The
// returned slice is the entry's own; callers must not modify it.
func (e *MembershipEntry) Members(t BlockType) []int {
	if e == nil {
		return nil
	}
	return e.ByType[t]
}

// AllMembers returns every member vertex index of the entry, walking the
// type buckets in the fixed block-type order.
func (e *MembershipEntry) AllMembers() []int {
	if e == nil {
		return nil
	}
	var ret []int
	for _, t := range TypeOrder {
		ret = append(ret, e.ByType[t]...)
	}
	return ret
}

// CopyByType returns a fresh copy of the entry's member buckets. A nil
// entry yields an empty map, supporting the zero-descendants case.
func (e *MembershipEntry) CopyByType() map[BlockType][]int {
	ret := make(map[BlockType][]int)
	if e == nil {
		return ret
	}
	for t, members := range e.ByType {
		ret[t] = append([]int(nil), members...)
	}
	return ret
}

func sortUniqueKeys(uks []addrs.UniqueKey) {
	sort.Slice(uks, func(i, j int) bool {
		return uks[i].String() < uks[j].String()
	})
}
