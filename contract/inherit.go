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
	"go/types"
)

// resolveInheritance discovers, for every named type declared in the package, which of its
// methods override a base type's method (via struct embedding) or implement an interface method,
// pairing each such method with its ancestor the same way affiliation's cast-site analysis pairs
// a concrete implementation's methods with the interface methods it satisfies: by walking the
// interface's method set and looking up the corresponding method on the concrete type with
// types.LookupFieldOrMethod (SPEC_FULL.md §4.2, "inheritance walk"). This resolver is
// single-package scoped: an override against a base type declared in another package is only
// discovered if that package's Contract has already been merged into r.prog by an ancestor
// analyzer pass - see DESIGN.md for the cross-package limitation this implies relative to the
// teacher's fact-based affiliation cache.
func (r *resolver) resolveInheritance() {
	scope := r.pass.Pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}

		if _, isIface := named.Underlying().(*types.Interface); isIface {
			continue
		}

		r.resolveEmbeddedOverrides(named)
		r.resolveInterfaceImplementations(named)
	}
}

// resolveEmbeddedOverrides walks named's directly embedded fields and, for every method the outer
// type redeclares with the same name as a method promoted from an embedded field, records the
// embedded field's method as a base member.
func (r *resolver) resolveEmbeddedOverrides(named *types.Named) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return
	}

	for i := 0; i < named.NumMethods(); i++ {
		method := named.Method(i)
		for j := 0; j < st.NumFields(); j++ {
			field := st.Field(j)
			if !field.Embedded() {
				continue
			}
			baseMethod := lookupMethod(field.Type(), method.Name())
			if baseMethod == nil || baseMethod == method {
				continue
			}
			r.linkOverride(method, baseMethod)
		}
	}
}

// resolveInterfaceImplementations finds every interface type declared in the package that named
// implements and, for each interface method, records the implementing concrete method as
// overriding the interface's method declaration (the interface method's own Contract, if any
// `//throws:` pragma was attached to its *ast.Field, acts as the ancestor declaration).
func (r *resolver) resolveInterfaceImplementations(named *types.Named) {
	scope := r.pass.Pkg.Scope()
	for _, name := range scope.Names() {
		ifaceTn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		iface, ok := ifaceTn.Type().Underlying().(*types.Interface)
		if !ok {
			continue
		}
		if !types.Implements(named, iface) && !types.Implements(types.NewPointer(named), iface) {
			continue
		}

		for i := 0; i < iface.NumMethods(); i++ {
			ifaceMethod := iface.Method(i)
			obj, _, _ := types.LookupFieldOrMethod(named, true, named.Obj().Pkg(), ifaceMethod.Name())
			implMethod, ok := obj.(*types.Func)
			if !ok || implMethod == ifaceMethod {
				continue
			}
			r.linkOverride(implMethod, ifaceMethod)
		}
	}
}

func lookupMethod(t types.Type, name string) *types.Func {
	named, ok := t.(*types.Named)
	if !ok {
		if ptr, ok := t.(*types.Pointer); ok {
			named, ok = ptr.Elem().(*types.Named)
			if !ok {
				return nil
			}
		} else {
			return nil
		}
	}
	for i := 0; i < named.NumMethods(); i++ {
		if named.Method(i).Name() == name {
			return named.Method(i)
		}
	}
	return nil
}

// linkOverride records that derived overrides/implements base: base is appended to derived's
// ancestor list and base's declared set (if resolved) is folded into derived's inherited set.
func (r *resolver) linkOverride(derived, base types.Object) {
	r.prog.bases[derived] = append(r.prog.bases[derived], base)

	baseSet := r.prog.Contract(base).DeclaredSet()
	merged := r.prog.inherited[derived].Union(baseSet)
	r.prog.inherited[derived] = merged
}
