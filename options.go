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

package arena

import internalarena "arena.build/go/arena/internal/arena"

// EagerCommit selects when a freshly reserved arena should be committed
// up front rather than lazily.
type EagerCommit = internalarena.EagerCommit

const (
	// EagerCommitAuto commits eagerly iff the OS supports overcommit.
	EagerCommitAuto = internalarena.EagerCommitAuto
	// EagerCommitAlways always commits a new arena eagerly.
	EagerCommitAlways = internalarena.EagerCommitAlways
	// EagerCommitNever never commits a new arena eagerly.
	EagerCommitNever = internalarena.EagerCommitNever
)

// Options configures an Allocator. Build one with NewOptions.
type Options = internalarena.Options

// Option mutates an Options value being built by NewOptions.
type Option = internalarena.Option

// NewOptions builds an Options value from defaults plus the given
// overrides, applied in order.
func NewOptions(opts ...Option) *Options { return internalarena.NewOptions(opts...) }

// WithArenaReserve sets the base fresh-arena reservation size, in bytes.
func WithArenaReserve(bytes int64) Option { return internalarena.WithArenaReserve(bytes) }

// WithEagerCommit sets the eager-commit policy for fresh arenas.
func WithEagerCommit(mode EagerCommit) Option { return internalarena.WithEagerCommit(mode) }

// WithPurgeDelay sets the base purge delay, in milliseconds. Negative
// disables purging; zero purges synchronously at free time.
func WithPurgeDelay(ms int64) Option { return internalarena.WithPurgeDelay(ms) }

// WithArenaPurgeMult sets the purge-delay multiplier applied to
// WithPurgeDelay's value to compute the effective delay.
func WithArenaPurgeMult(mult float64) Option { return internalarena.WithArenaPurgeMult(mult) }

// WithDisallowArenaAlloc disables arena-backed allocation, forcing every
// request straight to the OS.
func WithDisallowArenaAlloc(disallow bool) Option {
	return internalarena.WithDisallowArenaAlloc(disallow)
}

// WithDisallowOSAlloc disables the OS-allocation fallback.
func WithDisallowOSAlloc(disallow bool) Option { return internalarena.WithDisallowOSAlloc(disallow) }

// WithPurgeDecommits sets the PurgeDecommits option, kept for parity with
// spec §6's options interface; purge_now's own OS calls do not branch on
// it (see internalarena.Options.PurgeDecommits).
func WithPurgeDecommits(decommits bool) Option { return internalarena.WithPurgeDecommits(decommits) }

// LoadOptionsFile reads a YAML configuration file and returns the Options
// it describes, layered on top of the defaults.
func LoadOptionsFile(path string) (*Options, error) { return internalarena.LoadOptionsFile(path) }
