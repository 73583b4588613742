// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package expand

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/hashicorp/tfgraph/internal/graph"
)

// InvalidStatementKindError is returned when a resolved iteration statement
// has a kind that for_each/count cannot iterate: neither a sequence nor a
// mapping for for_each, or not a whole number for count.
type InvalidStatementKindError struct {
	Block *graph.Block
	Value cty.Value
}

func (e *InvalidStatementKindError) Error() string {
	return fmt.Sprintf(
		"invalid iteration statement for %s %q in %s: cannot iterate over %s value",
		e.Block.Type, e.Block.Name, e.Block.SourcePath, e.Value.Type().FriendlyName(),
	)
}
