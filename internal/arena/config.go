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

import (
	"os"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

// EagerCommit selects when a freshly reserved arena should be committed up
// front rather than lazily, per spec §4.4.1.
type EagerCommit int

const (
	// EagerCommitAuto commits eagerly iff the OS supports overcommit.
	EagerCommitAuto EagerCommit = iota
	// EagerCommitAlways always commits a new arena eagerly.
	EagerCommitAlways
	// EagerCommitNever never commits a new arena eagerly.
	EagerCommitNever
)

// Options configures the allocation/free/purge orchestrator. A zero
// Options is not ready to use; construct one with NewOptions, which fills
// in defaults.
//
// The With* constructors follow the same functional-option shape this
// codebase's lineage uses for its compiler/unmarshal options: a small
// struct wrapping an apply closure, so new knobs can be added without
// breaking callers.
type Options struct {
	// ArenaReserve is the base size, in bytes, used when reserving a
	// fresh arena (spec §4.4.1). Zero disables fresh reservations
	// entirely.
	ArenaReserve int64
	// ArenaEagerCommit selects the eager-commit policy for fresh arenas.
	ArenaEagerCommit EagerCommit
	// PurgeDelayMs is the base purge delay; negative disables purging,
	// zero purges synchronously at free time.
	PurgeDelayMs int64
	// ArenaPurgeMult scales PurgeDelayMs to yield the effective delay D
	// used by the purge scheduler (spec §4.6.1).
	ArenaPurgeMult float64
	// DisallowArenaAlloc disables arena-backed allocation entirely,
	// forcing every request straight to the OS.
	DisallowArenaAlloc bool
	// DisallowOSAlloc disables the OS-allocation fallback; requests that
	// no arena can satisfy fail outright instead.
	DisallowOSAlloc bool
	// PurgeDecommits is surfaced for parity with spec §6's options
	// interface and round-trips through LoadOptionsFile. purge_now's own
	// OS calls do not branch on it: the fully-committed case always
	// leaves the reset-vs-decommit choice to the OS backend's own
	// discretion, and the partially-committed case always forces
	// allow_reset=false (a reset over never-committed memory is invalid
	// regardless of this flag).
	PurgeDecommits bool
}

// Option mutates an Options value being built by NewOptions.
type Option struct{ apply func(*Options) }

// WithArenaReserve sets the base fresh-arena reservation size, in bytes.
func WithArenaReserve(bytes int64) Option {
	return Option{func(o *Options) { o.ArenaReserve = bytes }}
}

// WithEagerCommit sets the eager-commit policy for fresh arenas.
func WithEagerCommit(mode EagerCommit) Option {
	return Option{func(o *Options) { o.ArenaEagerCommit = mode }}
}

// WithPurgeDelay sets the base purge delay, in milliseconds.
func WithPurgeDelay(ms int64) Option {
	return Option{func(o *Options) { o.PurgeDelayMs = ms }}
}

// WithArenaPurgeMult sets the purge-delay multiplier.
func WithArenaPurgeMult(mult float64) Option {
	return Option{func(o *Options) { o.ArenaPurgeMult = mult }}
}

// WithDisallowArenaAlloc disables arena-backed allocation.
func WithDisallowArenaAlloc(disallow bool) Option {
	return Option{func(o *Options) { o.DisallowArenaAlloc = disallow }}
}

// WithDisallowOSAlloc disables the OS-allocation fallback.
func WithDisallowOSAlloc(disallow bool) Option {
	return Option{func(o *Options) { o.DisallowOSAlloc = disallow }}
}

// WithPurgeDecommits sets the PurgeDecommits option for spec §6 parity;
// see the field doc on Options for what it does and does not affect.
func WithPurgeDecommits(decommits bool) Option {
	return Option{func(o *Options) { o.PurgeDecommits = decommits }}
}

// defaultOptions returns the baseline configuration: eager commit decided
// automatically, a 10 second purge delay, and both arena and OS allocation
// enabled.
func defaultOptions() Options {
	return Options{
		ArenaReserve:     64 << 20,
		ArenaEagerCommit: EagerCommitAuto,
		PurgeDelayMs:     10_000,
		ArenaPurgeMult:   1.0,
		PurgeDecommits:   true,
	}
}

// NewOptions builds an Options value from defaults plus the given
// overrides, applied in order.
func NewOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// EffectiveDelayMs returns D, the effective purge delay obtained by scaling
// PurgeDelayMs by ArenaPurgeMult (spec §4.6.1).
func (o *Options) EffectiveDelayMs() int64 {
	if o.PurgeDelayMs < 0 {
		return o.PurgeDelayMs
	}
	return int64(float64(o.PurgeDelayMs) * o.ArenaPurgeMult)
}

// Snapshot returns a defensive deep copy of o, so that the orchestrator can
// act on a stable view of the configuration even if the caller goes on to
// mutate the Options value it passed in.
func (o *Options) Snapshot() *Options {
	var out Options
	if err := deepcopy.Copy(&out, o); err != nil {
		// Options has no reference fields that could fail to copy; this
		// would only fire on a programming error in this package.
		panic("arena: options snapshot failed: " + err.Error())
	}
	return &out
}

// fileOptions mirrors Options for YAML (de)serialization: EagerCommit is
// spelled out as a string rather than an int so config files stay
// readable.
type fileOptions struct {
	ArenaReserveBytes  int64   `yaml:"arena_reserve_bytes"`
	ArenaEagerCommit   string  `yaml:"arena_eager_commit"`
	PurgeDelayMs       int64   `yaml:"purge_delay_ms"`
	ArenaPurgeMult     float64 `yaml:"arena_purge_mult"`
	DisallowArenaAlloc bool    `yaml:"disallow_arena_alloc"`
	DisallowOSAlloc    bool    `yaml:"disallow_os_alloc"`
	PurgeDecommits     bool    `yaml:"purge_decommits"`
}

// LoadOptionsFile reads a YAML configuration file and returns the Options
// it describes, layered on top of the defaults.
func LoadOptionsFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fo := fileOptions{}
	def := defaultOptions()
	fo.ArenaReserveBytes = def.ArenaReserve
	fo.PurgeDelayMs = def.PurgeDelayMs
	fo.ArenaPurgeMult = def.ArenaPurgeMult
	fo.PurgeDecommits = def.PurgeDecommits

	if err := yaml.Unmarshal(data, &fo); err != nil {
		return nil, err
	}

	mode := EagerCommitAuto
	switch fo.ArenaEagerCommit {
	case "always":
		mode = EagerCommitAlways
	case "never":
		mode = EagerCommitNever
	}

	return &Options{
		ArenaReserve:       fo.ArenaReserveBytes,
		ArenaEagerCommit:   mode,
		PurgeDelayMs:       fo.PurgeDelayMs,
		ArenaPurgeMult:     fo.ArenaPurgeMult,
		DisallowArenaAlloc: fo.DisallowArenaAlloc,
		DisallowOSAlloc:    fo.DisallowOSAlloc,
		PurgeDecommits:     fo.PurgeDecommits,
	}, nil
}
