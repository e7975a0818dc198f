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

// Package lattice implements subtype queries over exception types (spec.md §4.3). The root
// Exception sentinel is Go's builtin error interface: every exception type in an analyzed
// program implements it, so it sits at the top of the lattice exactly as the root `Exception`
// class does in the source language this spec models.
package lattice

import (
	"go/types"

	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
)

// IsSubtype reports whether sub is the same type as, or a subtype of, super. Subtyping here is
// structural Go subtyping: sub is a subtype of super if sub's underlying named type embeds super
// (directly or transitively) or implements super as an interface - the same "affiliation" query
// nilaway's assertion/affiliation package runs to pair a struct with the interfaces it
// implements, here reused to decide checked-exception subtyping instead of nilability.
func IsSubtype(sub, super model.Type) bool {
	if !sub.IsValid() || !super.IsValid() {
		return false
	}
	if sub.ID() == super.ID() {
		return true
	}
	subT, superT := sub.Underlying(), super.Underlying()

	// The root sentinel (error) is supertype of everything that implements it.
	if types.Identical(superT, util.ErrorType) {
		return true
	}

	if iface, ok := superT.Underlying().(*types.Interface); ok {
		if types.Implements(subT, iface) || types.Implements(types.NewPointer(subT), iface) {
			return true
		}
	}

	return embeds(subT, superT)
}

// embeds reports whether t embeds (directly or transitively) a field of type super - the Go
// rendition of single-inheritance subtyping for exception struct types.
func embeds(t, super types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		ft := util.UnwrapPtr(f.Type())
		if types.Identical(ft, super) {
			return true
		}
		if embeds(ft, super) {
			return true
		}
	}
	return false
}

// LUB returns the least upper bound (nearest common supertype) of a and b. If one is already a
// supertype of the other, that one is returned. Otherwise the root Exception sentinel is
// returned, as this engine does not attempt a full join lattice beyond single inheritance.
func LUB(a, b model.Type) model.Type {
	if IsSubtype(a, b) {
		return b
	}
	if IsSubtype(b, a) {
		return a
	}
	return model.NewType(util.ErrorType)
}

// Match returns true iff thrown is a subtype of caught, or isCatchAll is true (spec.md §4.3
// "match(throwType, catchType)").
func Match(thrown, caught model.Type, isCatchAll bool) bool {
	if isCatchAll {
		return true
	}
	return IsSubtype(thrown, caught)
}

// Canonicalize removes any element of s that is a proper subtype of another element of s
// (subsumption reduction, spec.md §4.3). It returns the canonicalized set and the list of
// removed elements (each paired conceptually with the supertype that subsumed it, though callers
// needing that pairing should use CanonicalizeWithReasons).
func Canonicalize(s excset.Set) (excset.Set, []model.Type) {
	out, removed := CanonicalizeWithReasons(s)
	types := make([]model.Type, 0, len(removed))
	for _, r := range removed {
		types = append(types, r.Removed)
	}
	return out, types
}

// RemovedEntry pairs a removed (subsumed) type with the supertype that subsumed it, for
// diagnostics that want to name both (REDUNDANT_SUPERTYPE's message template).
type RemovedEntry struct {
	Removed    model.Type
	SubsumedBy model.Type
}

// CanonicalizeWithReasons is like Canonicalize but also reports, for each removed element, the
// supertype responsible for its removal.
func CanonicalizeWithReasons(s excset.Set) (excset.Set, []RemovedEntry) {
	elems := s.Elements()
	keep := make([]bool, len(elems))
	for i := range elems {
		keep[i] = true
	}

	var removed []RemovedEntry
	for i, a := range elems {
		if !keep[i] {
			continue
		}
		for j, b := range elems {
			if i == j || !keep[j] {
				continue
			}
			// a is subsumed by b if a is a strict subtype of b.
			if a.ID() != b.ID() && IsSubtype(a, b) {
				keep[i] = false
				removed = append(removed, RemovedEntry{Removed: a, SubsumedBy: b})
				break
			}
		}
	}

	out := excset.Set{}
	for i, t := range elems {
		if keep[i] {
			out.Add(t)
		}
	}
	return out, removed
}
