// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

import (
	"github.com/hashicorp/tfgraph/internal/addrs"
)

// copyValue deep-copies the mutable parts of a config/attribute tree.
//
// Interior nodes (map[string]any, []any) are always reallocated.
// *addrs.ModuleInstance leaves are copied through their own Copy so that no
// identity chain is shared between a clone and its original. cty.Value
// leaves and plain scalars are immutable and returned as-is.
func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		ret := make(map[string]any, len(v))
		for k, e := range v {
			ret[k] = copyValue(e)
		}
		return ret
	case []any:
		ret := make([]any, len(v))
		for i, e := range v {
			ret[i] = copyValue(e)
		}
		return ret
	case []string:
		return append([]string(nil), v...)
	case *addrs.ModuleInstance:
		return v.Copy()
	case []*addrs.ModuleInstance:
		ret := make([]*addrs.ModuleInstance, len(v))
		for i, m := range v {
			ret[i] = m.Copy()
		}
		return ret
	default:
		return v
	}
}
