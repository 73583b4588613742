// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hashicorp/tfgraph/internal/addrs"
)

func TestRestrict(t *testing.T) {
	g := New()
	modKey := &addrs.ModuleInstance{SourcePath: "main.tf", Name: "mod"}

	rootVar := g.AddBlock(&Block{Type: TypeVariable, SourcePath: "main.tf", Name: "region"})
	modIdx := g.AddBlock(&Block{Type: TypeModule, SourcePath: "main.tf", Name: "mod"})
	otherMod := g.AddBlock(&Block{Type: TypeModule, SourcePath: "main.tf", Name: "other"})

	innerVar := g.AddBlock(&Block{
		Type: TypeVariable, SourcePath: "mod/main.tf", Name: "buckets",
		SourceModuleObject: modKey, SourceModule: []int{modIdx},
	})
	innerModule := g.AddBlock(&Block{
		Type: TypeModule, SourcePath: "mod/main.tf", Name: "inner",
		SourceModuleObject: modKey, SourceModule: []int{modIdx},
	})

	sub := g.Restrict([]int{innerModule})

	// The candidate, the variables at its level and at the root level,
	// and its owning module call are all in; an unrelated sibling module
	// call is not.
	want := []int{rootVar, modIdx, innerVar, innerModule}
	if diff := cmp.Diff(want, sub.Indices()); diff != "" {
		t.Errorf("wrong subgraph contents: %s", diff)
	}
	if sub.Contains(otherMod) {
		t.Errorf("unrelated module call included in subgraph")
	}
	if got := sub.Block(innerVar).Name; got != "buckets" {
		t.Errorf("wrong block at index %d: %q", innerVar, got)
	}
}

func TestRestrictOutOfRange(t *testing.T) {
	g := New()
	g.AddBlock(&Block{Type: TypeModule, SourcePath: "main.tf", Name: "mod"})
	sub := g.Restrict([]int{-1, 42})
	if sub.Len() != 0 {
		t.Errorf("out-of-range candidates produced %d vertices", sub.Len())
	}
}
