// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package expand_test

import (
	"sort"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp/tfgraph/internal/addrs"
	"github.com/hashicorp/tfgraph/internal/configs"
	"github.com/hashicorp/tfgraph/internal/expand"
	"github.com/hashicorp/tfgraph/internal/graph"
	"github.com/hashicorp/tfgraph/internal/lang"
)

// TestExpandFromSource runs the whole pipeline: load a module tree from
// source, render with the built-in evaluator, expand, and check the
// materialized graph.
func TestExpandFromSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"root/main.tf": `
variable "buckets" {
  default = {
    logs = {}
    data = {}
  }
}

module "s3_module" {
  source      = "./s3"
  bucket_name = "${each.key}"
  for_each    = var.buckets
}
`,
		"root/s3/main.tf": `
resource "aws_s3_bucket" "bucket" {
  acl = "private"
}
`,
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %s", path, err)
		}
	}

	logger := hclog.NewNullLogger()
	parser := configs.NewParser(fs, logger)
	g, candidates, diags := parser.LoadGraph("root")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags)
	}

	evaluator := lang.NewEvaluator(logger)
	expander := expand.NewExpander(g, evaluator, evaluator, logger)
	if err := expander.ExpandModules(candidates); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// variable, two module instances, and one bucket per instance.
	if got := len(g.Vertices); got != 5 {
		t.Fatalf("wrong vertex count %d; graph:\n%s", got, spew.Sdump(g.Vertices))
	}

	var moduleNames, bucketOwners []string
	for _, b := range g.Vertices {
		switch b.Type {
		case graph.TypeModule:
			moduleNames = append(moduleNames, b.Name)
			// Per-instance substitution applied during cloning.
			want := b.ForEachIndex.(addrs.StringKey)
			if got := b.Config["bucket_name"]; got != string(want) {
				t.Errorf("bucket_name of %s not substituted: %#v", b.Name, got)
			}
		case graph.TypeResource:
			bucketOwners = append(bucketOwners, b.SourceModuleObject.String())
		}
	}
	sort.Strings(moduleNames)
	sort.Strings(bucketOwners)

	if diff := cmp.Diff([]string{`s3_module["data"]`, `s3_module["logs"]`}, moduleNames); diff != "" {
		t.Errorf("wrong module instances: %s", diff)
	}
	if diff := cmp.Diff([]string{`module.s3_module["data"]`, `module.s3_module["logs"]`}, bucketOwners); diff != "" {
		t.Errorf("wrong bucket owners: %s", diff)
	}

	preKey := &addrs.ModuleInstance{SourcePath: "root/main.tf", Name: "s3_module"}
	if g.Membership.Has(preKey) {
		t.Errorf("membership still has an entry for the pre-expansion key")
	}
}
