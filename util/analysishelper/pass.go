//  Copyright (c) 2025 Uber Technologies, Inc.
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

package analysishelper

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/util/asthelper"
	"github.com/cxcheck/cxcheck/util/tokenhelper"
	"golang.org/x/tools/go/analysis"
)

// EnhancedPass is a drop-in replacement for `*analysis.Pass` that provides additional helper methods
// to make it easier to work with the analysis pass.
type EnhancedPass struct {
	*analysis.Pass
}

// NewEnhancedPass creates a new EnhancedPass from the given *analysis.Pass.
func NewEnhancedPass(pass *analysis.Pass) *EnhancedPass {
	return &EnhancedPass{Pass: pass}
}

// Panic panics with the given message and additional position information.
func (p *EnhancedPass) Panic(msg string, pos token.Pos) {
	position := p.Fset.Position(pos)
	panic(fmt.Sprintf("%s (%s:%d)", msg, position.Filename, position.Line))
}

// IsNil checks if the given expression evaluates to untyped nil at compile time. It also treats
// the identifier `nil` as nil too to support cases where we have inserted a fake identifier.
func (p *EnhancedPass) IsNil(expr ast.Expr) bool {
	if asthelper.IsLiteral(expr, "nil") {
		return true
	}
	tv, ok := p.TypesInfo.Types[expr]
	if !ok {
		return false
	}
	return tv.IsNil()
}

// HumanReadablePosition modifies the Position's filename to be more human-friendly (truncated or relative to cwd).
func (p *EnhancedPass) HumanReadablePosition(position token.Position) token.Position {
	conf := p.ResultOf[config.Analyzer].(*config.Config)
	if conf.PrintFullFilePath {
		position.Filename = tokenhelper.RelToCwd(position.Filename)
	} else {
		position.Filename = tokenhelper.PortionAfterSep(position.Filename, "/", config.DirLevelsToPrintForTriggers)
	}
	return position
}

// PosToLocation converts a token.Pos as a real code location, of token.Position.
func (p *EnhancedPass) PosToLocation(pos token.Pos) token.Position {
	return p.HumanReadablePosition(p.Fset.Position(pos))
}

// IsSliceAppendCall checks if `node` represents the builtin append(slice []Type, elems ...Type) []Type
// call on a slice.
// The function checks 2 things,
// 1) Name of the called function is "builtin append"
// 2) The first argument to the function is a slice
func (p *EnhancedPass) IsSliceAppendCall(node *ast.CallExpr) (*types.Slice, bool) {
	if funcName, ok := node.Fun.(*ast.Ident); ok {
		if declObj := p.TypesInfo.Uses[funcName]; declObj != nil {
			if declObj.String() == "builtin append" {
				if sliceType, ok := p.TypesInfo.TypeOf(node.Args[0]).(*types.Slice); ok {
					return sliceType, true
				}
			}
		}
	}
	return nil, false
}

// ExprIsAuthentic aims to return true iff the passed expression is an AST node
// found in the source program of this pass - not one that we created as an intermediate value.
// There is no fully sound way to do this - but returning whether it is present in the `Types` map
// map is a good approximation.
// Right now, this is used only to decide whether to print the location of the producer expression
// in a full trigger.
func (p *EnhancedPass) ExprIsAuthentic(expr ast.Expr) bool {
	t := p.TypesInfo.TypeOf(expr)
	return t != nil
}
