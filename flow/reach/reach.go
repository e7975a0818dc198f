//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reach implements the optional control-flow reachability refinement of spec.md §4.5:
// "only treat throw/call sites reached from the entry as live" and "recognize unreachable throw
// statements". It is built on golang.org/x/tools/go/cfg, the same control-flow-graph package the
// teacher's own assertion/function/preprocess/cfg.go builds its block-restructuring passes on.
package reach

import (
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/cfg"
)

// Graph records which source ranges of one function/lambda body are reachable from its entry
// block, per a golang.org/x/tools/go/cfg control-flow graph.
type Graph struct {
	dead []posRange
}

type posRange struct {
	start, end token.Pos
}

// Build constructs a Graph for body. The mayReturn predicate it passes to cfg.New assumes every
// call returns control to its caller except a literal call to the builtin panic, after which
// golang.org/x/tools/go/cfg starts an unreachable block.
func Build(body *ast.BlockStmt) *Graph {
	graph := cfg.New(body, func(call *ast.CallExpr) bool {
		id, ok := call.Fun.(*ast.Ident)
		return !ok || id.Name != "panic"
	})
	var dead []posRange
	for _, block := range graph.Blocks {
		if block.Live || len(block.Nodes) == 0 {
			continue
		}
		dead = append(dead, posRange{start: block.Nodes[0].Pos(), end: block.Nodes[len(block.Nodes)-1].End()})
	}
	return &Graph{dead: dead}
}

// Live reports whether n is reachable from the function's entry point, i.e. does not fall inside
// a block the CFG found unreachable. A nil Graph (control-flow analysis disabled, or no CFG could be built) always
// reports live, so the absence of reachability data never manufactures a false "unreachable"
// finding.
func (g *Graph) Live(n ast.Node) bool {
	if g == nil || n == nil {
		return true
	}
	pos := n.Pos()
	for _, r := range g.dead {
		if pos >= r.start && pos < r.end {
			return false
		}
	}
	return true
}
