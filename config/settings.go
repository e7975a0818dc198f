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

// Package config implements the Settings & Classification component (spec.md §4.1): loading the
// JSON settings file, merging the legacy shorthand fields, and answering classify() queries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LinqOperatorConfig lets callers register their own deferred/materializing helpers by import
// path and function name, so linqmodel.Classify is not limited to the built-in cxlinq and
// cxlinq/queryable operator catalogue (SPEC_FULL.md §4 "LINQ Module").
type LinqOperatorConfig struct {
	// PkgPath is the import path of the package declaring the operator function.
	PkgPath string `json:"pkgPath"`
	// FuncName is the operator function's name.
	FuncName string `json:"funcName"`
	// Deferred marks the operator as one that defers execution (like cxlinq.Where).
	Deferred bool `json:"deferred"`
	// Materializer marks the operator as one that forces evaluation (like cxlinq.ToSlice).
	Materializer bool `json:"materializer"`
}

// rawSettings mirrors the JSON settings file schema (spec.md §6.2) exactly, before legacy-field
// merging is applied.
type rawSettings struct {
	DefaultExceptionClassification Classification            `json:"defaultExceptionClassification"`
	Exceptions                     map[string]Classification `json:"exceptions"`
	IgnoredExceptions              []string                  `json:"ignoredExceptions"`
	InformationalExceptions        map[string]InfoMode        `json:"informationalExceptions"`

	DisableXMLDocInterop                 bool `json:"disableXmlDocInterop"`
	DisableControlFlowAnalysis            bool `json:"disableControlFlowAnalysis"`
	EnableLegacyRedundancyChecks          bool `json:"enableLegacyRedundancyChecks"`
	DisableBaseExceptionDeclaredDiagnostic bool `json:"disableBaseExceptionDeclaredDiagnostic"`
	DisableBaseExceptionThrownDiagnostic   bool `json:"disableBaseExceptionThrownDiagnostic"`
	TreatThrowsExceptionAsCatchRest        bool `json:"treatThrowsExceptionAsCatchRest"`
	DisableLinqSupport                     bool `json:"disableLinqSupport"`
	DisableLinqQueryableSupport            bool `json:"disableLinqQueryableSupport"`
	DisableLinqImplicitlyDeclaredExceptions bool `json:"disableLinqImplicitlyDeclaredExceptions"`

	LinqOperators []LinqOperatorConfig `json:"linqOperators"`

	// PrintFullFilePath controls whether diagnostic positions print the full relative file path
	// or a depth-truncated one (util/analysishelper.EnhancedPass.HumanReadablePosition).
	PrintFullFilePath bool `json:"printFullFilePath"`
}

// Config is the fully merged, immutable-for-the-pass settings record consulted by every other
// component (spec.md §5 "process-wide settings snapshot").
type Config struct {
	// DefaultClassification is used for any exception type with no explicit entry.
	DefaultClassification Classification
	// classifications is the fully merged explicit map (legacy ignoredExceptions/
	// informationalExceptions already folded in at load time).
	classifications map[string]Classification
	// infoModes holds the legacy informationalExceptions mode, consulted only for types
	// classified NonStrict via the legacy map.
	infoModes map[string]InfoMode

	DisableXMLDocInterop                    bool
	DisableControlFlowAnalysis              bool
	EnableLegacyRedundancyChecks            bool
	DisableBaseExceptionDeclaredDiagnostic   bool
	DisableBaseExceptionThrownDiagnostic     bool
	TreatThrowsExceptionAsCatchRest          bool
	DisableLinqSupport                       bool
	DisableLinqQueryableSupport              bool
	DisableLinqImplicitlyDeclaredExceptions  bool

	LinqOperators []LinqOperatorConfig

	PrintFullFilePath bool

	// PrettyPrint is set from the command-line flag only (there is no settings-file equivalent):
	// it controls whether the top-level analyzer decorates reported messages for terminal
	// display, matching nilaway's --pretty-print flag plumbed in cmd/nilaway/main.go.
	PrettyPrint bool

	// LoadError records a non-fatal problem encountered while loading the settings file (e.g.,
	// malformed JSON); when non-nil, a CONFIG_ERROR diagnostic is emitted and Config otherwise
	// holds defaults (spec.md §6.2 "malformed files produce a single configuration diagnostic").
	LoadError error
}

// Default returns the zero-configuration Config: DefaultClassification Strict, every feature
// toggle off, no explicit classifications.
func Default() *Config {
	return &Config{DefaultClassification: Strict}
}

// Load reads and parses the settings file at path, merging legacy fields into the canonical
// classification map. A missing file is not an error (defaults are used silently); a malformed
// file is recorded in Config.LoadError and otherwise falls back to defaults, per spec.md §6.2.
func Load(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default()
		}
		c := Default()
		c.LoadError = fmt.Errorf("read settings file %q: %w", path, err)
		return c
	}

	var raw rawSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		c := Default()
		c.LoadError = fmt.Errorf("parse settings file %q: %w", path, err)
		return c
	}

	return fromRaw(raw)
}

func fromRaw(raw rawSettings) *Config {
	classifications := make(map[string]Classification, len(raw.Exceptions))
	for k, v := range raw.Exceptions {
		classifications[k] = v
	}
	// Legacy ignoredExceptions overrides the explicit map, matching "conflicts resolve to the more
	// specific legacy entry" (spec.md §4.1) by applying it after the explicit map. A type also
	// listed in informationalExceptions ends up NonStrict, since that map is applied last.
	for _, fqn := range raw.IgnoredExceptions {
		classifications[fqn] = Ignored
	}
	infoModes := make(map[string]InfoMode, len(raw.InformationalExceptions))
	for fqn, mode := range raw.InformationalExceptions {
		classifications[fqn] = NonStrict
		infoModes[fqn] = mode
	}

	defaultClass := raw.DefaultExceptionClassification

	return &Config{
		DefaultClassification:                   defaultClass,
		classifications:                         classifications,
		infoModes:                               infoModes,
		DisableXMLDocInterop:                     raw.DisableXMLDocInterop,
		DisableControlFlowAnalysis:               raw.DisableControlFlowAnalysis,
		EnableLegacyRedundancyChecks:             raw.EnableLegacyRedundancyChecks,
		DisableBaseExceptionDeclaredDiagnostic:   raw.DisableBaseExceptionDeclaredDiagnostic,
		DisableBaseExceptionThrownDiagnostic:     raw.DisableBaseExceptionThrownDiagnostic,
		TreatThrowsExceptionAsCatchRest:          raw.TreatThrowsExceptionAsCatchRest,
		DisableLinqSupport:                       raw.DisableLinqSupport,
		DisableLinqQueryableSupport:              raw.DisableLinqQueryableSupport,
		DisableLinqImplicitlyDeclaredExceptions:  raw.DisableLinqImplicitlyDeclaredExceptions,
		LinqOperators:                            raw.LinqOperators,
		PrintFullFilePath:                        raw.PrintFullFilePath,
	}
}

// Classify returns the effective classification for the exception type identified by fqn:
// explicit entry if present, else DefaultClassification, else Strict (spec.md §4.1).
func (c *Config) Classify(fqn string) Classification {
	if c == nil {
		return Strict
	}
	if v, ok := c.classifications[fqn]; ok {
		return v
	}
	return c.DefaultClassification
}

// InfoModeFor returns the legacy informational mode registered for fqn, defaulting to InfoAlways
// when none was set via the legacy informationalExceptions map.
func (c *Config) InfoModeFor(fqn string) InfoMode {
	if c == nil {
		return InfoAlways
	}
	if m, ok := c.infoModes[fqn]; ok {
		return m
	}
	return InfoAlways
}
