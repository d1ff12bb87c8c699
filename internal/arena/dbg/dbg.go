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

//go:build arenadebug

// Package dbg includes debugging helpers for the arena allocator. It is
// only compiled in when the arenadebug build tag is set; see stub.go for
// the no-op build used otherwise.
package dbg

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the compiler is built with the arenadebug tag.
const Enabled = true

// Log prints a trace line to stderr, tagged with the caller's goroutine id
// and call site.
func Log(subsystem, format string, args ...any) {
	pc, file, line, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	name = name[strings.LastIndex(name, ".")+1:]
	file = file[strings.LastIndex(file, "/")+1:]

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "arena/%s %s:%d [g%04d] %s: ", subsystem, file, line, routine.Goid(), name)
	fmt.Fprintf(buf, format, args...)
	buf.WriteByte('\n')
	_, _ = os.Stderr.WriteString(buf.String())
}

// Assert panics with a descriptive message if cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("arena: internal assertion failed: "+format, args...))
	}
}
