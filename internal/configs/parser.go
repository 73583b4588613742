// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package configs builds the initial configuration graph from Terraform
// source files. Only the subset of the language the expansion engine cares
// about is modeled: blocks become graph vertices with their attributes
// captured either as already-evaluated values or as raw expression source,
// and local module calls are followed to build nested membership.
package configs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/hashicorp/tfgraph/internal/addrs"
	"github.com/hashicorp/tfgraph/internal/graph"
)

// Parser loads configuration directories from a filesystem into a graph.
type Parser struct {
	fs     afero.Afero
	hcl    *hclparse.Parser
	logger hclog.Logger
}

// NewParser returns a parser reading from the given filesystem, or from the
// real OS filesystem if fs is nil.
func NewParser(fs afero.Fs, logger hclog.Logger) *Parser {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Parser{
		fs:     afero.Afero{Fs: fs},
		hcl:    hclparse.NewParser(),
		logger: logger.Named("configs"),
	}
}

// LoadGraph builds the configuration graph rooted at dir, following local
// module calls (whose source is a relative path) into their directories.
// It returns the graph together with the vertex indices of module blocks
// that carry a for_each or count argument, which are the candidates for
// expansion.
func (p *Parser) LoadGraph(dir string) (*graph.Graph, []int, hcl.Diagnostics) {
	g := graph.New()
	loader := &graphLoader{Parser: p, graph: g}
	diags := loader.loadModule(dir, nil, -1)
	return g, loader.candidates, diags
}

type graphLoader struct {
	*Parser
	graph      *graph.Graph
	candidates []int
}

func (l *graphLoader) loadModule(dir string, owner *addrs.ModuleInstance, ownerIdx int) hcl.Diagnostics {
	var diags hcl.Diagnostics

	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to read module directory",
			Detail:   fmt.Sprintf("Module directory %s does not exist or cannot be read.", dir),
		})
	}

	var filenames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".tf") || strings.HasPrefix(name, ".") {
			continue
		}
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	for _, name := range filenames {
		path := filepath.Join(dir, name)
		fileDiags := l.loadFile(dir, path, owner, ownerIdx)
		diags = append(diags, fileDiags...)
	}
	return diags
}

func (l *graphLoader) loadFile(dir, path string, owner *addrs.ModuleInstance, ownerIdx int) hcl.Diagnostics {
	src, err := l.fs.ReadFile(path)
	if err != nil {
		return hcl.Diagnostics{&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to read configuration file",
			Detail:   fmt.Sprintf("The file %s could not be read.", path),
		}}
	}

	file, diags := l.hcl.ParseHCL(src, path)
	if file == nil || file.Body == nil {
		return diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return diags
	}

	for _, block := range body.Blocks {
		blockDiags := l.loadBlock(dir, path, src, block, owner, ownerIdx)
		diags = append(diags, blockDiags...)
	}
	return diags
}

func (l *graphLoader) loadBlock(dir, path string, src []byte, block *hclsyntax.Block, owner *addrs.ModuleInstance, ownerIdx int) hcl.Diagnostics {
	var diags hcl.Diagnostics

	blockType, name, ok := blockIdentity(block)
	if !ok {
		// Unknown or mislabeled constructs are not this subsystem's
		// problem; skip them without failing the whole load.
		l.logger.Debug("skipping unsupported block", "type", block.Type, "file", path)
		return diags
	}

	attrs := attributeValues(src, block.Body)
	b := &graph.Block{
		Type:               blockType,
		SourcePath:         path,
		Name:               name,
		Config:             attrs,
		Attributes:         copyAttrs(attrs),
		SourceModuleObject: owner.Copy(),
	}
	if ownerIdx >= 0 {
		b.SourceModule = []int{ownerIdx}
	}
	idx := l.graph.AddBlock(b)

	if blockType != graph.TypeModule {
		return diags
	}

	_, hasForEach := attrs[graph.ForEachAttr]
	_, hasCount := attrs[graph.CountAttr]
	if hasForEach || hasCount {
		l.candidates = append(l.candidates, idx)
	}

	// Follow local module sources to build the nested membership.
	if source, ok := stringAttr(attrs, "source"); ok && isLocalSource(source) {
		childKey := &addrs.ModuleInstance{
			SourcePath: path,
			Name:       name,
			Enclosing:  owner.Copy(),
		}
		childDiags := l.loadModule(filepath.Join(dir, source), childKey, idx)
		diags = append(diags, childDiags...)
	}
	return diags
}

func blockIdentity(block *hclsyntax.Block) (graph.BlockType, string, bool) {
	switch block.Type {
	case "module", "variable", "output", "provider":
		if len(block.Labels) != 1 {
			return "", "", false
		}
		return graph.BlockType(block.Type), block.Labels[0], true
	case "resource", "data":
		if len(block.Labels) != 2 {
			return "", "", false
		}
		return graph.BlockType(block.Type), block.Labels[0] + "." + block.Labels[1], true
	case "locals":
		return graph.TypeLocals, "locals", true
	default:
		return "", "", false
	}
}

// attributeValues captures a block body's attributes: expressions that
// evaluate without any context (literals) become cty.Value, everything
// else is kept as raw expression source for the renderer to resolve later.
func attributeValues(src []byte, body *hclsyntax.Body) map[string]any {
	attrs := make(map[string]any, len(body.Attributes))
	for name, attr := range body.Attributes {
		val, valDiags := attr.Expr.Value(nil)
		if !valDiags.HasErrors() && val.IsWhollyKnown() {
			attrs[name] = val
			continue
		}
		raw := string(attr.Expr.Range().SliceBytes(src))
		if _, ok := attr.Expr.(*hclsyntax.TemplateExpr); ok {
			// A quoted template's range includes the surrounding quotes;
			// the raw form keeps just the template itself.
			raw = strings.Trim(raw, `"`)
		}
		attrs[name] = raw
	}
	return attrs
}

func copyAttrs(attrs map[string]any) map[string]any {
	ret := make(map[string]any, len(attrs))
	for k, v := range attrs {
		ret[k] = v
	}
	return ret
}

func stringAttr(attrs map[string]any, name string) (string, bool) {
	val, ok := attrs[name].(cty.Value)
	if !ok || val.Type() != cty.String || val.IsNull() {
		return "", false
	}
	return val.AsString(), true
}

func isLocalSource(source string) bool {
	return strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}
