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

package contract

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
	"golang.org/x/tools/go/analysis"
)

const (
	_throwsPragmaPrefix    = "throws:"
	_exceptionsBlockHeader = "exceptions:"
)

// resolver holds the mutable state used while resolving one package's contracts.
type resolver struct {
	pass *analysis.Pass
	conf *config.Config
	prog *Program
	errs []error
}

// Run resolves every member's Contract in the package and populates the inheritance relations,
// returning accumulated non-fatal errors (a `//throws:` pragma naming a type that does not resolve
// or does not implement error, for example).
func (r *resolver) Run() []error {
	for _, file := range r.pass.Files {
		if !r.conf.IsFileInScope(file) {
			continue
		}
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				r.resolveFuncDecl(file, d)
			case *ast.GenDecl:
				r.resolvePropertyLikeFields(file, d)
				r.resolveInterfaceMethodDocs(file, d)
			}
		}
	}
	r.resolveInheritance()
	return r.errs
}

func (r *resolver) resolveFuncDecl(file *ast.File, fd *ast.FuncDecl) {
	obj, ok := r.pass.TypesInfo.Defs[fd.Name].(*types.Func)
	if !ok || obj == nil {
		return
	}

	c := &Contract{AttrPos: fd.Pos()}
	if fd.Doc != nil {
		c.DeclaredTokens = r.parseThrowsPragmas(file, fd.Doc)

		if !r.conf.DisableXMLDocInterop {
			if desc, ok := parseExceptionsBlock(fd.Doc); ok {
				c.Documented = r.resolveExceptionsBlock(file, desc)
			}
		}
	}
	r.prog.contracts.Store(obj, c)
}

// resolvePropertyLikeFields routes a struct field's `Exceptions:` doc block to the Get<Field>/
// Set<Field> accessor method pair declared on the same named type, implementing the
// property-accessor heuristic of spec.md §4.2 for this host's struct+accessor-method binding of
// "property" (SPEC_FULL.md §0).
func (r *resolver) resolvePropertyLikeFields(file *ast.File, gd *ast.GenDecl) {
	if gd.Tok != token.TYPE {
		return
	}
	for _, spec := range gd.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok || st.Fields == nil {
			continue
		}
		named, ok := r.pass.TypesInfo.Defs[ts.Name].(*types.TypeName)
		if !ok {
			continue
		}
		for _, field := range st.Fields.List {
			if field.Doc == nil || len(field.Names) == 0 {
				continue
			}
			if pos, ok := firstThrowsPragmaPos(field.Doc); ok {
				r.prog.invalidPlacements = append(r.prog.invalidPlacements, pos)
			}
			desc, ok := parseExceptionsBlock(field.Doc)
			if !ok || r.conf.DisableXMLDocInterop {
				continue
			}
			fieldName := field.Names[0].Name
			getter := findMethod(named, "Get"+fieldName)
			setter := findMethod(named, "Set"+fieldName)
			if getter == nil && setter == nil {
				continue
			}
			accessorCount := 0
			if getter != nil {
				accessorCount++
			}
			if setter != nil {
				accessorCount++
			}

			set := r.resolveExceptionsBlock(file, desc)
			route := RouteDoc(desc, getter != nil, setter != nil, accessorCount)
			if (route == AccessorGetter || route == AccessorBoth) && getter != nil {
				r.mergeDocumented(getter, set)
			}
			if (route == AccessorSetter || route == AccessorBoth) && setter != nil {
				r.mergeDocumented(setter, set)
			}
		}
	}
}

// resolveInterfaceMethodDocs parses `//throws:` pragmas attached to an interface method's own
// doc comment, so that a concrete type's override can inherit from the interface declaration
// itself and not only from another concrete base.
func (r *resolver) resolveInterfaceMethodDocs(file *ast.File, gd *ast.GenDecl) {
	if gd.Tok != token.TYPE {
		return
	}
	for _, spec := range gd.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		it, ok := ts.Type.(*ast.InterfaceType)
		if !ok || it.Methods == nil {
			continue
		}
		for _, m := range it.Methods.List {
			if m.Doc == nil || len(m.Names) == 0 {
				continue
			}
			obj, ok := r.pass.TypesInfo.Defs[m.Names[0]].(*types.Func)
			if !ok || obj == nil {
				continue
			}
			tokens := r.parseThrowsPragmas(file, m.Doc)
			if len(tokens) == 0 {
				continue
			}
			r.prog.contracts.Store(obj, &Contract{DeclaredTokens: tokens, AttrPos: m.Pos()})
		}
	}
}

func (r *resolver) mergeDocumented(obj types.Object, set excset.Set) {
	c, ok := r.prog.contracts.Load(obj)
	if !ok {
		c = &Contract{AttrPos: obj.Pos()}
	}
	c.Documented = c.Documented.Union(set)
	r.prog.contracts.Store(obj, c)
}

func findMethod(named *types.TypeName, name string) types.Object {
	nt, ok := named.Type().(*types.Named)
	if !ok {
		return nil
	}
	for i := 0; i < nt.NumMethods(); i++ {
		if nt.Method(i).Name() == name {
			return nt.Method(i)
		}
	}
	return nil
}

// parseThrowsPragmas scans a doc comment for one or more `//throws:T1,T2` pragma lines,
// accumulating tokens across multiple lines in order, duplicates preserved (spec.md §4.2
// "accumulates across multiple pragma lines; preserves duplicate tokens").
func (r *resolver) parseThrowsPragmas(file *ast.File, doc *ast.CommentGroup) []DeclaredToken {
	var tokens []DeclaredToken
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		lower := strings.ToLower(text)
		if !strings.HasPrefix(lower, _throwsPragmaPrefix) {
			continue
		}
		rest := strings.TrimSpace(text[len(_throwsPragmaPrefix):])
		for _, name := range strings.Split(rest, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			t, ok := resolveTypeByName(r.pass, file, name)
			if !ok {
				r.errs = append(r.errs, fmt.Errorf("%s: //throws: pragma names unresolvable exception type %q", r.pass.Fset.Position(c.Pos()), name))
				continue
			}
			tokens = append(tokens, DeclaredToken{Type: t, Pos: c.Pos()})
		}
	}
	return tokens
}

// firstThrowsPragmaPos reports the position of the first `//throws:` pragma line found on doc, if
// any - a `//throws:` pragma belongs on a function or accessor method's own doc comment, never on
// a struct field's (spec.md §4.6 "invalid throws placement"), since a field has no single call
// site to anchor member-level declaration diagnostics at.
func firstThrowsPragmaPos(doc *ast.CommentGroup) (token.Pos, bool) {
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if strings.HasPrefix(strings.ToLower(text), _throwsPragmaPrefix) {
			return c.Pos(), true
		}
	}
	return token.NoPos, false
}

// parseExceptionsBlock looks for a line matching "Exceptions:" (case-insensitive) in doc and
// returns the remaining comment text following it (one logical description blob used both for
// type-name extraction and for the accessor-routing heuristic's token scan).
func parseExceptionsBlock(doc *ast.CommentGroup) (string, bool) {
	var b strings.Builder
	found := false
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if !found {
			if strings.EqualFold(strings.TrimSuffix(text, ":"), "exceptions") || strings.HasPrefix(strings.ToLower(text), _exceptionsBlockHeader) {
				found = true
				rest := ""
				if len(text) > len(_exceptionsBlockHeader) {
					rest = text[len(_exceptionsBlockHeader):]
				}
				if rest != "" {
					b.WriteString(rest)
					b.WriteString(" ")
				}
			}
			continue
		}
		b.WriteString(text)
		b.WriteString(" ")
	}
	if !found {
		return "", false
	}
	return b.String(), true
}

// resolveExceptionsBlock extracts every type-name-shaped token out of the documented description
// and resolves the ones that name a known exception type, building the documented excset.Set.
func (r *resolver) resolveExceptionsBlock(file *ast.File, desc string) excset.Set {
	set := excset.Set{}
	for _, word := range strings.FieldsFunc(desc, func(ch rune) bool {
		return !(ch == '.' || ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9'))
	}) {
		if t, ok := resolveTypeByName(r.pass, file, word); ok {
			set.Add(t)
		}
	}
	return set
}

// resolveTypeByName looks up name (optionally package-qualified, "pkg.Type") against the file's
// imports and the current package scope, returning the model.Type if it resolves to a type
// implementing error.
func resolveTypeByName(pass *analysis.Pass, file *ast.File, name string) (model.Type, bool) {
	if name == "" {
		return model.Type{}, false
	}

	var scope *types.Scope
	typeName := name
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		pkgAlias, rest := name[:dot], name[dot+1:]
		for _, imp := range file.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			alias := pkgAlias
			pkgObj := pass.Pkg.Imports()
			for _, p := range pkgObj {
				if p.Path() == path && (p.Name() == alias || (imp.Name != nil && imp.Name.Name == alias)) {
					scope = p.Scope()
				}
			}
		}
		typeName = rest
		if scope == nil {
			return model.Type{}, false
		}
	} else {
		scope = pass.Pkg.Scope()
	}

	obj := scope.Lookup(typeName)
	if obj == nil && scope == pass.Pkg.Scope() {
		// Not a package-local declaration; fall back to the universe scope so the root sentinel
		// "error" itself can be named in a //throws: pragma (spec.md §4.6 check 6).
		obj = types.Universe.Lookup(typeName)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return model.Type{}, false
	}
	if !util.IsErrorType(tn.Type()) {
		return model.Type{}, false
	}
	return model.NewType(tn.Type()), true
}
