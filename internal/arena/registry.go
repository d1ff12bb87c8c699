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

// Registry is a fixed-capacity, append-mostly array of Arena slots with
// atomic slot publication. Threads look up arenas by id = index+1.
type Registry struct {
	slots [MaxArenas]atomic.Pointer[Arena]
	count atomic.Uint32
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Count returns an upper bound on the number of valid slot indices. A slot
// below this bound may still be nil if its arena was destroyed.
//
// Relaxed ordering is sufficient for scans that tolerate missing a
// freshly-added arena (the allocation fast path); callers that need an
// exact snapshot (the fresh-arena reservation pre-scan) should use
// CountAcquire instead.
func (r *Registry) Count() uint32 { return r.count.Load() }

// CountAcquire is Count with acquire ordering, for callers that must see
// every publication that happened-before their own observation.
func (r *Registry) CountAcquire() uint32 { return r.count.Load() }

// At returns the arena at the given zero-based slot index, or nil if the
// index is out of range or the slot is empty. Uses acquire ordering, so
// any caller observing a non-nil result sees a fully-initialized
// descriptor (the Add call below stores with release ordering).
func (r *Registry) At(index uint32) *Arena {
	if index >= MaxArenas {
		return nil
	}
	return r.slots[index].Load()
}

// ByID returns the arena with the given one-based id, or nil.
func (r *Registry) ByID(id uint32) *Arena {
	if id == 0 || id > MaxArenas {
		return nil
	}
	return r.At(id - 1)
}

// Add reserves the next slot, assigns arena.ID, and publishes the pointer.
// It returns false if the registry is full, rolling the count back so a
// concurrent Add is not starved out of a slot it never used.
func (r *Registry) Add(a *Arena) bool {
	i := r.count.Add(1) - 1
	if i >= MaxArenas {
		r.count.Add(^uint32(0)) // -1, roll back
		return false
	}

	a.ID = i + 1
	r.slots[i].Store(a) // release: publishes the fully-initialized arena
	return true
}

// VisitAll calls fn for every currently-published arena, stopping early if
// fn returns false.
func (r *Registry) VisitAll(fn func(*Arena) bool) {
	n := r.CountAcquire()
	for i := uint32(0); i < n; i++ {
		a := r.At(i)
		if a == nil {
			continue
		}
		if !fn(a) {
			return
		}
	}
}
