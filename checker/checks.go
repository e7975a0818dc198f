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

package checker

import (
	"go/types"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/contract"
	"github.com/cxcheck/cxcheck/diagnostic"
	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/flow"
	"github.com/cxcheck/cxcheck/lattice"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
)

// undeclaredPropagation is check 1: an exception type escapes a member without being declared or
// documented, and is not classified Ignored (spec.md §4.6 check 1).
func (c *checks) undeclaredPropagation(fn *types.Func, ct *contract.Contract, result *flow.MemberResult) []diagnostic.Diagnostic {
	declared := ct.DeclaredSet()
	if !c.conf.DisableXMLDocInterop {
		declared = declared.Union(ct.Documented)
	}

	var diags []diagnostic.Diagnostic
	for _, occ := range result.Escaping {
		if declared.Contains(occ.Type.ID()) {
			continue
		}
		fqn := string(occ.Type.ID())
		classification := c.conf.Classify(fqn)
		sev, suppressed := diagnostic.SeverityFor(diagnostic.Unhandled, classification)
		if suppressed {
			continue
		}
		kind := diagnostic.Unhandled
		if sev == diagnostic.SeverityInfo {
			kind = diagnostic.InfoPropagated
			if !infoModeAllows(c.conf.InfoModeFor(fqn), occ.ThrownHere) {
				continue
			}
		}
		diags = append(diags, diagnostic.Diagnostic{
			Kind: kind,
			Pos:  occ.Pos.Pos(),
			End:  occ.Pos.End(),
			Args: []any{occ.Type.String(), util.PartiallyQualifiedFuncName(fn)},
		})
	}
	return diags
}

// infoModeAllows applies the legacy informationalExceptions Throw/Propagation gating: InfoThrow
// reports only at the actual throw site, InfoPropagation only at sites where it merely passes
// through, InfoAlways reports at both.
func infoModeAllows(mode config.InfoMode, thrownHere bool) bool {
	switch mode {
	case config.InfoThrow:
		return thrownHere
	case config.InfoPropagation:
		return !thrownHere
	default:
		return true
	}
}

// duplicateDeclared is check 5: the same type named more than once in a `//throws:` pragma
// (spec.md §4.6 check 5).
func (c *checks) duplicateDeclared(fn *types.Func, ct *contract.Contract) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, dup := range ct.Duplicates() {
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.DuplicateDeclared,
			Pos:  dup.Pos,
			End:  dup.Pos,
			Args: []any{dup.Type.String()},
		})
	}
	return diags
}

// baseExceptionDeclared is check 6: a member declares the root Exception sentinel itself instead
// of a specific type (spec.md §4.6 check 6).
func (c *checks) baseExceptionDeclared(fn *types.Func, ct *contract.Contract) []diagnostic.Diagnostic {
	if c.conf.DisableBaseExceptionDeclaredDiagnostic {
		return nil
	}
	var diags []diagnostic.Diagnostic
	for _, tok := range ct.DeclaredTokens {
		if tok.Type.ID() != rootException.ID() {
			continue
		}
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.DeclareException,
			Pos:  tok.Pos,
			End:  tok.Pos,
			Args: []any{tok.Type.String()},
		})
	}
	return diags
}

// baseExceptionThrown is check 7: a member throws (panics, casts, or null-coalesces into) the
// root Exception sentinel directly rather than a specific type (spec.md §4.6 check 7).
func (c *checks) baseExceptionThrown(fn *types.Func, result *flow.MemberResult) []diagnostic.Diagnostic {
	if c.conf.DisableBaseExceptionThrownDiagnostic {
		return nil
	}
	var diags []diagnostic.Diagnostic
	for _, occ := range result.Escaping {
		if !occ.ThrownHere || occ.Type.ID() != rootException.ID() {
			continue
		}
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.ThrowException,
			Pos:  occ.Pos.Pos(),
			End:  occ.Pos.End(),
			Args: []any{occ.Type.String()},
		})
	}
	return diags
}

// redundantSupertype is check 3: a declared type is subsumed by another, broader declared type in
// the same contract (spec.md §4.6 check 3).
func (c *checks) redundantSupertype(fn *types.Func, ct *contract.Contract) []diagnostic.Diagnostic {
	_, removed := lattice.CanonicalizeWithReasons(ct.DeclaredSet())
	if len(removed) == 0 {
		return nil
	}
	var diags []diagnostic.Diagnostic
	for _, entry := range removed {
		pos := ct.AttrPos
		for _, tok := range ct.DeclaredTokens {
			if tok.Type.ID() == entry.Removed.ID() {
				pos = tok.Pos
				break
			}
		}
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.RedundantSupertype,
			Pos:  pos,
			End:  pos,
			Args: []any{entry.Removed.String(), entry.SubsumedBy.String()},
		})
	}
	return diags
}

// redundantDeclaration is check 2: a declared type is never actually thrown anywhere in the
// member's body (spec.md §4.6 check 2).
func (c *checks) redundantDeclaration(fn *types.Func, ct *contract.Contract, result *flow.MemberResult) []diagnostic.Diagnostic {
	thrown := result.ThrownSet()
	var diags []diagnostic.Diagnostic
	for _, tok := range ct.DeclaredTokens {
		if thrown.Contains(tok.Type.ID()) {
			continue
		}
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.RedundantDeclaration,
			Pos:  tok.Pos,
			End:  tok.Pos,
			Args: []any{tok.Type.String(), util.PartiallyQualifiedFuncName(fn)},
		})
	}
	return diags
}

// xmlDocNoThrows is check 9: an `Exceptions:` doc block names a type absent from the declared
// contract (spec.md §4.6 check 9).
func (c *checks) xmlDocNoThrows(fn *types.Func, ct *contract.Contract) []diagnostic.Diagnostic {
	if c.conf.DisableXMLDocInterop {
		return nil
	}
	declared := ct.DeclaredSet()
	var diags []diagnostic.Diagnostic
	for _, t := range ct.Documented.Elements() {
		if declared.Contains(t.ID()) {
			continue
		}
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.XMLDocNoThrows,
			Pos:  ct.AttrPos,
			End:  ct.AttrPos,
			Args: []any{t.String()},
		})
	}
	return diags
}

// inheritanceCompatibility is check 8: a member's declared set is incompatible with the contract
// it overrides or implements, in both directions (spec.md §4.6 check 8).
func (c *checks) inheritanceCompatibility(fn *types.Func, ct *contract.Contract) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	derivedSet := ct.DeclaredSet()
	for _, base := range c.contract.Bases(fn) {
		baseCt := c.contract.Contract(base)
		baseSet := baseCt.DeclaredSet()

		for _, t := range derivedSet.Elements() {
			if isSubtypeOfAny(t, baseSet) {
				continue
			}
			diags = append(diags, diagnostic.Diagnostic{
				Kind: diagnostic.IncompatibleOverride,
				Pos:  ct.AttrPos,
				End:  ct.AttrPos,
				Args: []any{util.PartiallyQualifiedFuncName(fn), t.String()},
			})
		}
		for _, t := range baseSet.Elements() {
			if isSubtypeOfAny(t, derivedSet) {
				continue
			}
			diags = append(diags, diagnostic.Diagnostic{
				Kind: diagnostic.MissingFromBase,
				Pos:  ct.AttrPos,
				End:  ct.AttrPos,
				Args: []any{util.PartiallyQualifiedFuncName(fn), t.String()},
			})
		}
	}
	return diags
}

func isSubtypeOfAny(t model.Type, set excset.Set) bool {
	for _, super := range set.Elements() {
		if lattice.IsSubtype(t, super) {
			return true
		}
	}
	return false
}

// linqImplicitDeclared is spec.md §4.4's implicitly-declared-exception diagnostic: an undeclared
// LINQ predicate/selector lambda that throws gets a low-severity suggestion at its parameter list.
func (c *checks) linqImplicitDeclared(fn *types.Func, result *flow.MemberResult) []diagnostic.Diagnostic {
	if c.conf.DisableLinqImplicitlyDeclaredExceptions {
		return nil
	}
	var diags []diagnostic.Diagnostic
	for _, occ := range result.ImplicitDeclared {
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.ImplicitDeclared,
			Pos:  occ.Pos.Pos(),
			End:  occ.Pos.End(),
			Args: []any{occ.Type.String()},
		})
	}
	return diags
}

// linqDeferredBoundary is spec.md §4.4's enumerable-as-argument boundary diagnostic: a deferred
// query value crossed a method or return boundary the analyzer cannot track further.
func (c *checks) linqDeferredBoundary(fn *types.Func, result *flow.MemberResult) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, b := range result.DeferredBoundaries {
		diags = append(diags, diagnostic.Diagnostic{
			Kind: diagnostic.DeferredMustBeHandled,
			Pos:  b.Pos.Pos(),
			End:  b.Pos.End(),
			Args: []any{b.Type.String()},
		})
	}
	return diags
}

// redundantCatches converts flow's redundancy findings - structural and, when control-flow
// analysis is enabled, reachability-refined - into diagnostics (the REDUNDANT_TYPED_CATCH /
// REDUNDANT_CATCHALL / REDUNDANT_CATCH trio of spec.md §4.6 check 10).
func (c *checks) redundantCatches(fn *types.Func, result *flow.MemberResult) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, r := range result.Redundant {
		switch r.Kind {
		case flow.RedundantTypedCatch:
			diags = append(diags, diagnostic.Diagnostic{
				Kind: diagnostic.RedundantTypedCatch,
				Pos:  r.Pos.Pos(),
				End:  r.Pos.End(),
				Args: []any{r.Type.String()},
			})
		case flow.RedundantCatchAll:
			diags = append(diags, diagnostic.Diagnostic{
				Kind: diagnostic.RedundantCatchAll,
				Pos:  r.Pos.Pos(),
				End:  r.Pos.End(),
			})
		case flow.RedundantCatch:
			diags = append(diags, diagnostic.Diagnostic{
				Kind: diagnostic.RedundantCatch,
				Pos:  r.Pos.Pos(),
				End:  r.Pos.End(),
			})
		}
	}
	return diags
}
