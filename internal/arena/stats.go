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

import "sync/atomic"

// Stats is the counter-reporting interface the orchestrator drives. It is
// deliberately narrow: this module only ever increases or decreases named
// byte counters, never reads them back for a decision, so a caller's own
// metrics system (expvar, Prometheus, whatever) can be wired in behind it.
type Stats interface {
	// IncreaseCommitted adds delta bytes to the "currently committed"
	// counter.
	IncreaseCommitted(delta int64)
	// DecreaseCommitted subtracts delta bytes from the "currently
	// committed" counter.
	DecreaseCommitted(delta int64)
	// IncreasePurged adds delta bytes to the "lifetime purged" counter.
	IncreasePurged(delta int64)
	// IncreaseArenasReserved bumps the count of OS reservations made.
	IncreaseArenasReserved()
}

// AtomicStats is the default Stats implementation: plain atomic counters,
// grounded on the accumulator idiom of the teacher's internal/stats.Mean
// (there, two atomic floats accumulated under concurrent Record calls; here,
// three atomic integers accumulated under concurrent alloc/free/purge
// calls).
type AtomicStats struct {
	committed      atomic.Int64
	purged         atomic.Int64
	arenasReserved atomic.Int64
}

var _ Stats = (*AtomicStats)(nil)

func (s *AtomicStats) IncreaseCommitted(delta int64) { s.committed.Add(delta) }
func (s *AtomicStats) DecreaseCommitted(delta int64) { s.committed.Add(-delta) }
func (s *AtomicStats) IncreasePurged(delta int64)    { s.purged.Add(delta) }
func (s *AtomicStats) IncreaseArenasReserved()       { s.arenasReserved.Add(1) }

// Committed returns the current value of the "currently committed" counter.
func (s *AtomicStats) Committed() int64 { return s.committed.Load() }

// Purged returns the lifetime total of purged bytes.
func (s *AtomicStats) Purged() int64 { return s.purged.Load() }

// ArenasReserved returns the lifetime count of arena OS reservations.
func (s *AtomicStats) ArenasReserved() int64 { return s.arenasReserved.Load() }

// noopStats discards everything; used when a caller does not care about
// instrumentation.
type noopStats struct{}

func (noopStats) IncreaseCommitted(int64)   {}
func (noopStats) DecreaseCommitted(int64)   {}
func (noopStats) IncreasePurged(int64)      {}
func (noopStats) IncreaseArenasReserved()   {}

var _ Stats = noopStats{}

// Tracking is the pluggable memory-sanitizer hook the spec names: a tool
// like valgrind or the race detector's shadow memory could implement this
// to be told when ranges become undefined/inaccessible. The default
// implementation is a no-op.
type Tracking interface {
	// MemUndefined marks [p, p+size) as containing indeterminate bytes.
	MemUndefined(p uintptr, size int)
	// MemNoAccess marks [p, p+size) as not safe to read or write.
	MemNoAccess(p uintptr, size int)
}

type noopTracking struct{}

func (noopTracking) MemUndefined(uintptr, int) {}
func (noopTracking) MemNoAccess(uintptr, int)  {}

var _ Tracking = noopTracking{}
