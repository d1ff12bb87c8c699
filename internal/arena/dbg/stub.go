// Copyright 2025 The Arena Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !arenadebug

package dbg

import "fmt"

// Enabled is false in non-debug builds.
const Enabled = false

// Log is a no-op outside of arenadebug builds. The compiler inlines this
// away entirely, including its variadic argument evaluation at most call
// sites.
func Log(subsystem, format string, args ...any) {}

// Assert still panics outside of debug builds: assertions here guard
// invariants of the bitmap/bookkeeping protocol, not expensive diagnostics,
// so they stay live in production.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("arena: internal assertion failed: "+format, args...))
	}
}
