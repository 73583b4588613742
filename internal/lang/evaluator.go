// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package lang

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hashicorp/tfgraph/internal/graph"
)

// Evaluator is the built-in implementation of both StaticResolver and
// AttributeRenderer, backed by HCL native-syntax expression evaluation.
//
// It is deliberately best-effort: expressions whose inputs are not yet
// known within the subgraph are simply left unresolved, to be retried on a
// later scheduler round.
type Evaluator struct {
	logger hclog.Logger
}

var _ StaticResolver = (*Evaluator)(nil)
var _ AttributeRenderer = (*Evaluator)(nil)

// NewEvaluator returns an Evaluator logging through the given logger.
func NewEvaluator(logger hclog.Logger) *Evaluator {
	return &Evaluator{logger: logger.Named("eval")}
}

// RenderSubgraph evaluates the raw for_each/count expressions of every
// block in the subgraph against the variable and local values visible in
// that subgraph, replacing each raw expression string with its cty.Value
// wherever evaluation fully succeeds.
func (ev *Evaluator) RenderSubgraph(sub *graph.Subgraph) {
	ctx := ev.buildEvalContext(sub)
	for _, idx := range sub.Indices() {
		b := sub.Block(idx)
		for _, attr := range []string{graph.ForEachAttr, graph.CountAttr} {
			raw, ok := b.Attributes[attr].(string)
			if !ok {
				continue
			}
			val, ok := ev.evalString(raw, b.SourcePath, ctx)
			if !ok || !val.IsWhollyKnown() {
				continue
			}
			b.Attributes[attr] = val
			ev.logger.Trace("resolved iteration expression", "block", b.Name, "attr", attr)
		}
	}
}

// IsStatic reports whether the block's iteration statement has been fully
// resolved to a known value.
func (ev *Evaluator) IsStatic(b *graph.Block, sub *graph.Subgraph) bool {
	_, ok := staticStatement(b)
	return ok
}

// Resolve returns the block's resolved iteration statement. It is an error
// to call Resolve on a block for which IsStatic does not hold.
func (ev *Evaluator) Resolve(b *graph.Block, sub *graph.Subgraph) (cty.Value, error) {
	val, ok := staticStatement(b)
	if !ok {
		return cty.NilVal, fmt.Errorf("iteration statement of %s %q is not statically resolved", b.Type, b.Name)
	}
	return val, nil
}

func staticStatement(b *graph.Block) (cty.Value, bool) {
	for _, attr := range []string{graph.ForEachAttr, graph.CountAttr} {
		if val, ok := b.Attributes[attr].(cty.Value); ok && val.IsWhollyKnown() && !val.IsNull() {
			return val, true
		}
	}
	return cty.NilVal, false
}

// SubstituteIteration rewrites each.key/each.value/count.index references
// in the clone's config and attributes with the instance's own key and
// value. Whole-expression references become the cty value itself; embedded
// interpolations are replaced textually when the value converts to string.
func (ev *Evaluator) SubstituteIteration(b *graph.Block, key, value cty.Value) {
	repl := iterationReplacements(key, value)
	b.Config = substituteTree(b.Config, repl).(map[string]any)
	b.Attributes = substituteTree(b.Attributes, repl).(map[string]any)
}

type iterationValue struct {
	val cty.Value
	str string // empty if the value has no string form
}

func iterationReplacements(key, value cty.Value) map[string]iterationValue {
	repl := make(map[string]iterationValue, 3)
	add := func(name string, v cty.Value) {
		if v == cty.NilVal {
			return
		}
		iv := iterationValue{val: v}
		if s, err := convert.Convert(v, cty.String); err == nil && !s.IsNull() {
			iv.str = s.AsString()
		}
		repl[name] = iv
	}
	add("each.key", key)
	add("each.value", value)
	add("count.index", key)
	return repl
}

func substituteTree(v any, repl map[string]iterationValue) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = substituteTree(e, repl)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = substituteTree(e, repl)
		}
		return v
	case string:
		return substituteString(v, repl)
	default:
		return v
	}
}

func substituteString(s string, repl map[string]iterationValue) any {
	if iv, ok := repl[strings.TrimSpace(s)]; ok {
		return iv.val
	}
	for name, iv := range repl {
		if iv.str == "" {
			continue
		}
		s = strings.ReplaceAll(s, "${"+name+"}", iv.str)
	}
	return s
}

// buildEvalContext assembles the variable scope visible to iteration
// expressions: "var" from variable blocks' resolved defaults and "local"
// from locals blocks, taking only leaves that are already concrete values.
func (ev *Evaluator) buildEvalContext(sub *graph.Subgraph) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	locals := make(map[string]cty.Value)
	for _, idx := range sub.Indices() {
		b := sub.Block(idx)
		switch b.Type {
		case graph.TypeVariable:
			if val, ok := b.Attributes["default"].(cty.Value); ok {
				vars[b.BaseName()] = val
			}
		case graph.TypeLocals:
			for name, raw := range b.Attributes {
				if val, ok := raw.(cty.Value); ok {
					locals[name] = val
				}
			}
		}
	}
	scope := make(map[string]cty.Value)
	if len(vars) > 0 {
		scope["var"] = cty.ObjectVal(vars)
	}
	if len(locals) > 0 {
		scope["local"] = cty.ObjectVal(locals)
	}
	return &hcl.EvalContext{Variables: scope}
}

func (ev *Evaluator) evalString(src, filename string, ctx *hcl.EvalContext) (cty.Value, bool) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, false
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, false
	}
	return val, true
}
