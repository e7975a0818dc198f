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

// Package diagnostic implements the diagnostic catalogue, ordering, and deduplication rules of
// spec.md §6.3 and §8 "Determinism".
package diagnostic

import (
	"fmt"

	"github.com/cxcheck/cxcheck/config"
)

// Kind identifies one of the catalogue's stable diagnostic identifiers (spec.md §6.3).
type Kind string

// The seventeen catalogue entries: the sixteen of spec.md §6.3 plus CONFIG_ERROR (SPEC_FULL.md
// §6.2, additive).
const (
	Unhandled               Kind = "UNHANDLED"
	InfoPropagated          Kind = "INFO_PROPAGATED"
	DeclareException        Kind = "DECLARE_EXCEPTION"
	ThrowException          Kind = "THROW_EXCEPTION"
	DuplicateDeclared       Kind = "DUPLICATE_DECLARED"
	IncompatibleOverride    Kind = "INCOMPATIBLE_OVERRIDE"
	MissingFromBase         Kind = "MISSING_FROM_BASE"
	RedundantSupertype      Kind = "REDUNDANT_SUPERTYPE"
	RedundantTypedCatch     Kind = "REDUNDANT_TYPED_CATCH"
	InvalidThrowsPlacement  Kind = "INVALID_THROWS_PLACEMENT"
	XMLDocNoThrows          Kind = "XMLDOC_NO_THROWS"
	RedundantDeclaration    Kind = "REDUNDANT_DECLARATION"
	RedundantCatchAll       Kind = "REDUNDANT_CATCHALL"
	DeferredMustBeHandled   Kind = "DEFERRED_MUST_BE_HANDLED"
	RedundantCatch          Kind = "REDUNDANT_CATCH"
	ImplicitDeclared        Kind = "IMPLICIT_DECLARED"
	ConfigError             Kind = "CONFIG_ERROR"
)

// Severity distinguishes the default reporting level of a diagnostic (spec.md §6.3: "Info for
// NonStrict, Warning otherwise").
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

var templates = map[Kind]string{
	Unhandled:              "exception %s may escape %s and is not declared or caught",
	InfoPropagated:         "exception %s propagates out of %s",
	DeclareException:       "do not declare the base exception type %s; declare the specific type(s) thrown",
	ThrowException:         "do not throw the base exception type %s directly; throw a specific type",
	DuplicateDeclared:      "exception %s is declared more than once",
	IncompatibleOverride:   "%s declares exception %s not present in the contract it overrides",
	MissingFromBase:        "%s omits exception %s inherited from its base contract",
	RedundantSupertype:     "declared exception %s is subsumed by the broader declared type %s",
	RedundantTypedCatch:    "catch of %s never matches any exception that can reach this clause",
	InvalidThrowsPlacement: "a //throws: pragma on a struct field must be placed on its accessor method instead",
	XMLDocNoThrows:         "exception %s is documented but not declared in the contract",
	RedundantDeclaration:   "declared exception %s is never thrown by %s",
	RedundantCatchAll:      "catch-all clause catches nothing reaching this point",
	DeferredMustBeHandled:  "deferred query carries exception %s across a method boundary and cannot be tracked further",
	RedundantCatch:         "catch clause is redundant",
	ImplicitDeclared:       "lambda implicitly throws exception %s; consider declaring it",
	ConfigError:            "failed to load settings: %s",
}

// DefaultSeverity returns the catalogue's default severity for kind; callers should prefer
// SeverityFor, which downgrades to Info for a NonStrict-classified exception type regardless of
// kind (spec.md §4.5 "classification gating").
func DefaultSeverity(kind Kind) Severity {
	if kind == InfoPropagated || kind == ImplicitDeclared {
		return SeverityInfo
	}
	return SeverityWarning
}

// SeverityFor applies classification gating on top of DefaultSeverity (spec.md §4.5): an Ignored
// type suppresses the diagnostic outright, a NonStrict type always downgrades to Info regardless
// of kind, and a Strict type uses the catalogue default.
func SeverityFor(kind Kind, classification config.Classification) (sev Severity, suppressed bool) {
	switch classification {
	case config.Ignored:
		return "", true
	case config.NonStrict:
		return SeverityInfo, false
	default:
		return DefaultSeverity(kind), false
	}
}

// Message formats kind's message template with args.
func Message(kind Kind, args ...any) string {
	tmpl, ok := templates[kind]
	if !ok {
		return fmt.Sprintf("%s: %v", kind, args)
	}
	return fmt.Sprintf(tmpl, args...)
}
