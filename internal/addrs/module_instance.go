// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package addrs

import (
	"strings"
)

// ModuleInstance is the identity of one concrete instantiation of a module
// call: the call's declaration site, its logical name, the identity of the
// module instance that lexically encloses the call, and the instance key
// assigned once for_each/count has been expanded.
//
// A nil *ModuleInstance represents the root module. A ModuleInstance whose
// Key is NoKey represents the single pre-expansion form of a module call
// that uses (or may use) for_each or count.
//
// ModuleInstance values are used as membership-index keys via UniqueKey, so
// any value that has been installed as a key must be treated as immutable:
// take a Copy before mutating anything reachable from it.
type ModuleInstance struct {
	// SourcePath is the path of the file containing the module call.
	SourcePath string

	// Name is the logical name of the module call, without any instance
	// suffix.
	Name string

	// Enclosing is the identity of the module instance that contains this
	// call, or nil if the call appears in the root module.
	Enclosing *ModuleInstance

	// Key is the for_each/count instance key, or NoKey before expansion.
	Key InstanceKey
}

// UniqueKey is a comparable value that uniquely identifies a ModuleInstance,
// for use as a key in ordinary Go maps. Obtain one via
// ModuleInstance.UniqueKey; the zero UniqueKey is the root module's key.
type UniqueKey struct {
	str string
}

// RootUniqueKey is the unique key of the root module, i.e. the key of a nil
// *ModuleInstance.
var RootUniqueKey = UniqueKey{}

// String returns the key's canonical string form. It is usable as a stable
// sort key; its exact syntax is not part of the API.
func (k UniqueKey) String() string {
	return k.str
}

// UniqueKey returns a comparable representation of the receiver suitable for
// use as a map key. It is structural: two ModuleInstance values that are
// Equal produce the same UniqueKey even if they were built independently.
//
// The receiver may be nil, in which case the result is RootUniqueKey.
func (m *ModuleInstance) UniqueKey() UniqueKey {
	if m == nil {
		return UniqueKey{}
	}
	var buf strings.Builder
	m.writeUniqueKey(&buf)
	return UniqueKey{buf.String()}
}

func (m *ModuleInstance) writeUniqueKey(buf *strings.Builder) {
	if m.Enclosing != nil {
		m.Enclosing.writeUniqueKey(buf)
	}
	buf.WriteByte('|')
	buf.WriteString(m.SourcePath)
	buf.WriteByte(':')
	buf.WriteString(m.Name)
	if m.Key != NoKey {
		buf.WriteString(m.Key.String())
	}
}

// Copy returns a fresh ModuleInstance that shares no mutable state with the
// receiver, copying the whole Enclosing chain. Copy of nil is nil.
func (m *ModuleInstance) Copy() *ModuleInstance {
	if m == nil {
		return nil
	}
	ret := *m
	ret.Enclosing = m.Enclosing.Copy()
	return &ret
}

// Equal returns true if the receiver and the other given instance identify
// the same module instantiation, comparing all four identity fields
// structurally through the whole Enclosing chain.
func (m *ModuleInstance) Equal(other *ModuleInstance) bool {
	return m.UniqueKey() == other.UniqueKey()
}

// EqualDisregardingKey is like Equal except that it ignores the receiver's
// and the other instance's own Key, comparing only declaration-site identity
// and the enclosing chain. This is the equality used when matching a
// descendant's ancestor reference against a module call that is currently
// being multiplied.
func (m *ModuleInstance) EqualDisregardingKey(other *ModuleInstance) bool {
	if m == nil || other == nil {
		return m == nil && other == nil
	}
	return m.SourcePath == other.SourcePath &&
		m.Name == other.Name &&
		m.Enclosing.Equal(other.Enclosing)
}

// String returns a human-oriented rendering of the module instance address,
// resembling Terraform's module address syntax.
func (m *ModuleInstance) String() string {
	if m == nil {
		return ""
	}
	var parts []string
	for cur := m; cur != nil; cur = cur.Enclosing {
		step := "module." + cur.Name
		if cur.Key != NoKey {
			step += cur.Key.String()
		}
		parts = append(parts, step)
	}
	// parts were collected leaf-first
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
