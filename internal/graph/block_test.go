// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"

	"github.com/hashicorp/tfgraph/internal/addrs"
)

func TestBlockCopy(t *testing.T) {
	owner := &addrs.ModuleInstance{SourcePath: "main.tf", Name: "mod", Key: addrs.StringKey("a")}
	orig := &Block{
		Type:       TypeResource,
		SourcePath: "mod/main.tf",
		Name:       "aws_s3_bucket.bucket",
		Config: map[string]any{
			"tags": map[string]any{"env": "dev"},
			"list": []any{"x", "y"},
			ResolvedModuleEntry: []*addrs.ModuleInstance{owner.Copy()},
		},
		Attributes: map[string]any{
			"acl": cty.StringVal("private"),
		},
		SourceModuleObject: owner,
		SourceModule:       []int{0},
	}

	cp := orig.Copy()

	t.Run("value equality", func(t *testing.T) {
		if cp.Name != orig.Name || cp.Type != orig.Type || cp.SourcePath != orig.SourcePath {
			t.Errorf("identity fields differ after copy")
		}
		if !cp.SourceModuleObject.Equal(orig.SourceModuleObject) {
			t.Errorf("source module object differs after copy")
		}
		if diff := cmp.Diff(orig.Attributes["acl"], cp.Attributes["acl"], cmp.Comparer(cty.Value.RawEquals)); diff != "" {
			t.Errorf("wrong attributes after copy: %s", diff)
		}
	})

	t.Run("no shared mutable substructure", func(t *testing.T) {
		cp.Config["tags"].(map[string]any)["env"] = "prod"
		cp.Config["list"].([]any)[0] = "z"
		cp.SourceModuleObject.Key = addrs.StringKey("b")
		cp.SourceModule[0] = 99
		cp.ResolvedModules()[0].Key = addrs.StringKey("b")

		if got := orig.Config["tags"].(map[string]any)["env"]; got != "dev" {
			t.Errorf("mutating copy's config mutated original: env = %v", got)
		}
		if got := orig.Config["list"].([]any)[0]; got != "x" {
			t.Errorf("mutating copy's list mutated original: %v", got)
		}
		if orig.SourceModuleObject.Key != addrs.StringKey("a") {
			t.Errorf("mutating copy's owner key mutated original")
		}
		if orig.SourceModule[0] != 0 {
			t.Errorf("mutating copy's source module refs mutated original")
		}
		if orig.ResolvedModules()[0].Key != addrs.StringKey("a") {
			t.Errorf("mutating copy's resolved module entry mutated original")
		}
	})
}

func TestBlockBaseName(t *testing.T) {
	testCases := map[string]string{
		"bucket":        "bucket",
		`bucket["a"]`:   "bucket",
		"bucket[0]":     "bucket",
		"aws_s3.b[\"x\"]": "aws_s3.b",
	}
	for name, want := range testCases {
		b := &Block{Name: name}
		if got := b.BaseName(); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestBlockModuleKey(t *testing.T) {
	owner := &addrs.ModuleInstance{SourcePath: "main.tf", Name: "outer", Key: addrs.StringKey("a")}
	b := &Block{
		Type:               TypeModule,
		SourcePath:         "outer/main.tf",
		Name:               "inner[2]",
		SourceModuleObject: owner,
		ForEachIndex:       addrs.IntKey(2),
	}
	got := b.ModuleKey()
	want := &addrs.ModuleInstance{
		SourcePath: "outer/main.tf",
		Name:       "inner",
		Enclosing:  owner,
		Key:        addrs.IntKey(2),
	}
	if !got.Equal(want) {
		t.Errorf("wrong module key\ngot:  %s\nwant: %s", got, want)
	}

	// The key must be independent of the block's own identity chain.
	got.Enclosing.Key = addrs.StringKey("b")
	if b.SourceModuleObject.Key != addrs.StringKey("a") {
		t.Errorf("module key aliases the block's source module object")
	}
}
