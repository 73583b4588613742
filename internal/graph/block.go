// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

import (
	"strings"

	"github.com/hashicorp/tfgraph/internal/addrs"
)

// BlockType describes the kind of configuration construct a Block represents.
type BlockType string

const (
	TypeModule   BlockType = "module"
	TypeResource BlockType = "resource"
	TypeData     BlockType = "data"
	TypeVariable BlockType = "variable"
	TypeLocals   BlockType = "locals"
	TypeOutput   BlockType = "output"
	TypeProvider BlockType = "provider"
)

// TypeOrder fixes the iteration order over per-type vertex buckets, so
// that any walk over a membership entry is deterministic.
var TypeOrder = []BlockType{
	TypeVariable,
	TypeLocals,
	TypeProvider,
	TypeData,
	TypeResource,
	TypeOutput,
	TypeModule,
}

// Names of the iteration meta-arguments as they appear in a block's
// flattened attribute view.
const (
	ForEachAttr = "for_each"
	CountAttr   = "count"
)

// ResolvedModuleEntry is the config key under which a block records the
// already-resolved identity of the module instance whose call produced it,
// so that configuration-based lookups resolve to a specific instance. The
// value stored under this key is a []*addrs.ModuleInstance.
const ResolvedModuleEntry = "__resolved_module__"

// Block is a single vertex of the configuration graph: one module call,
// resource, variable, etc.
type Block struct {
	// Type is the configuration construct this block represents.
	Type BlockType

	// SourcePath is the path of the file the block was declared in.
	SourcePath string

	// Name is the block's logical name. Once the block has been multiplied
	// by for_each/count the name carries an instance suffix, e.g.
	// `bucket["a"]` or `bucket[0]`.
	Name string

	// Config is the block's nested attribute tree. Leaves are either
	// cty.Value (already evaluated) or raw expression source as string;
	// interior nodes are map[string]any or []any.
	Config map[string]any

	// Attributes is a flattened view of Config, including the raw
	// for_each/count expressions when present. Mutated in place by the
	// attribute renderer as expressions become resolvable.
	Attributes map[string]any

	// SourceModuleObject identifies the module instantiation that lexically
	// contains this block, or nil for blocks in the root module.
	SourceModuleObject *addrs.ModuleInstance

	// SourceModule holds the vertex indices of the module call block that
	// contains this one. It is a reference only and never implies
	// ownership; for root-module blocks it is empty.
	SourceModule []int

	// ForEachIndex is the instance key this block received when its
	// containing declaration was multiplied, or NoKey if the block is not
	// (yet) an instance of a multiplied declaration.
	ForEachIndex addrs.InstanceKey
}

// BaseName returns the block's logical name with any instance suffix
// removed.
func (b *Block) BaseName() string {
	if i := strings.IndexByte(b.Name, '['); i >= 0 {
		return b.Name[:i]
	}
	return b.Name
}

// ModuleKey returns the identity of the module instantiation this block
// declares. Valid only for TypeModule blocks. The result is freshly
// allocated and safe to use as a membership-index key.
func (b *Block) ModuleKey() *addrs.ModuleInstance {
	return &addrs.ModuleInstance{
		SourcePath: b.SourcePath,
		Name:       b.BaseName(),
		Enclosing:  b.SourceModuleObject.Copy(),
		Key:        b.ForEachIndex,
	}
}

// Copy produces a deep copy of the block: the clone shares no mutable
// substructure with the receiver, so mutating either one's Config,
// Attributes or identity fields cannot affect the other.
func (b *Block) Copy() *Block {
	ret := *b
	ret.Config = copyValue(b.Config).(map[string]any)
	ret.Attributes = copyValue(b.Attributes).(map[string]any)
	ret.SourceModuleObject = b.SourceModuleObject.Copy()
	ret.SourceModule = append([]int(nil), b.SourceModule...)
	return &ret
}

// ResolvedModules returns the resolved-module entries recorded in the
// block's config, or nil if there are none.
func (b *Block) ResolvedModules() []*addrs.ModuleInstance {
	mods, _ := b.Config[ResolvedModuleEntry].([]*addrs.ModuleInstance)
	return mods
}
