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

package config

// This file hosts non-user-configurable parameters - these are for development and testing
// purposes only.

// CxCheckPkgPathPrefix is the import-path prefix under which cxcheck's own runtime DSL packages
// (cxexc, cxasync, cxlinq) live, used to recognize their well-known symbols without a types.Object
// round-trip through the module cache.
const CxCheckPkgPathPrefix = "github.com/cxcheck/cxcheck"

// DirLevelsToPrintForTriggers controls the number of enclosing directories to print when
// referring to the locations that triggered diagnostics - 1 is sufficient disambiguation in
// practice, but feel free to increase.
const DirLevelsToPrintForTriggers = 1

// DefaultSettingsFileName is the conventional name of the JSON settings file looked up alongside
// the project root when `-config` is not given explicitly.
const DefaultSettingsFileName = "CheckedExceptions.settings.json"
