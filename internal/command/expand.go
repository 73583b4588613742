// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package command implements the CLI commands of tfgraph.
package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-hclog"
	"github.com/xlab/treeprint"

	"github.com/hashicorp/tfgraph/internal/addrs"
	"github.com/hashicorp/tfgraph/internal/configs"
	"github.com/hashicorp/tfgraph/internal/expand"
	"github.com/hashicorp/tfgraph/internal/graph"
	"github.com/hashicorp/tfgraph/internal/lang"
)

// ExpandCommand is the "tfgraph expand" command: build the configuration
// graph for a directory, expand module for_each/count, and print the
// result.
type ExpandCommand struct {
	UI     cli.Ui
	Logger hclog.Logger
}

func (c *ExpandCommand) Help() string {
	helpText := `
Usage: tfgraph expand [options] DIR

  Builds the configuration graph for the Terraform module rooted at DIR,
  expands every module call whose for_each/count statement is statically
  resolvable, and prints the resulting graph.

  Modules whose iteration statement cannot be resolved are left
  un-multiplied; that is not an error.

Options:

  -json    Print the expanded graph as JSON. This is the default.

  -tree    Print the expanded graph as a module-instance tree.
`
	return strings.TrimSpace(helpText)
}

func (c *ExpandCommand) Synopsis() string {
	return "Expand module for_each/count in a configuration graph"
}

func (c *ExpandCommand) Run(args []string) int {
	flags := flag.NewFlagSet("expand", flag.ContinueOnError)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	jsonOut := flags.Bool("json", false, "print JSON")
	treeOut := flags.Bool("tree", false, "print module tree")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() != 1 {
		c.UI.Error("The expand command expects exactly one argument: the module directory.")
		return 1
	}
	dir := flags.Arg(0)

	parser := configs.NewParser(nil, c.Logger)
	g, candidates, diags := parser.LoadGraph(dir)
	if diags.HasErrors() {
		for _, diag := range diags {
			c.UI.Error(diag.Error())
		}
		return 1
	}

	evaluator := lang.NewEvaluator(c.Logger)
	expander := expand.NewExpander(g, evaluator, evaluator, c.Logger)
	if err := expander.ExpandModules(candidates); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to expand modules: %s", err))
		return 1
	}

	if *treeOut && !*jsonOut {
		c.UI.Output(renderTree(g))
		return 0
	}
	out, err := json.MarshalIndent(graphView(g), "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to encode graph: %s", err))
		return 1
	}
	c.UI.Output(string(out))
	return 0
}

// vertexView is the JSON shape of one graph vertex.
type vertexView struct {
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Module   string `json:"module,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func graphView(g *graph.Graph) []vertexView {
	views := make([]vertexView, len(g.Vertices))
	for idx, b := range g.Vertices {
		views[idx] = vertexView{
			Index:  idx,
			Type:   string(b.Type),
			Name:   b.Name,
			Path:   b.SourcePath,
			Module: b.SourceModuleObject.String(),
		}
		if b.ForEachIndex != addrs.NoKey {
			views[idx].Instance = b.ForEachIndex.String()
		}
	}
	return views
}

func renderTree(g *graph.Graph) string {
	tree := treeprint.New()
	branches := map[addrs.UniqueKey]treeprint.Tree{
		addrs.RootUniqueKey: tree,
	}

	// Module branches first, walking membership keys in deterministic
	// order; an instance's branch is attached under its enclosing chain.
	for _, key := range g.Membership.Keys() {
		ensureBranch(branches, key)
	}
	for _, b := range g.Vertices {
		if b.Type == graph.TypeModule {
			continue
		}
		parent := ensureBranch(branches, b.SourceModuleObject)
		parent.AddNode(fmt.Sprintf("%s %s", b.Type, b.Name))
	}
	return tree.String()
}

func ensureBranch(branches map[addrs.UniqueKey]treeprint.Tree, key *addrs.ModuleInstance) treeprint.Tree {
	uk := key.UniqueKey()
	if branch, ok := branches[uk]; ok {
		return branch
	}
	parent := ensureBranch(branches, key.Enclosing)
	name := "module." + key.Name
	if key.Key != addrs.NoKey {
		name += key.Key.String()
	}
	branch := parent.AddBranch(name)
	branches[uk] = branch
	return branch
}
