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
	"sync/atomic"

	"github.com/timandy/routine"
)

// Allocator is the allocation/free/purge orchestrator: it implements
// placement policy (requested id, NUMA affinity, large-page eligibility),
// fallback to OS allocation, eager new-arena reservation, and lazy purge
// scheduling, on top of a Registry of Arenas.
type Allocator struct {
	registry *Registry
	os       OS
	options  *Options
	stats    Stats
	tracking Tracking

	// preloading mirrors mi_preloading(): while true, arena creation and
	// scheduled purging are disabled, though frees still release bits.
	preloading atomic.Bool
}

// NewAllocator builds an orchestrator over a fresh, empty Registry.
// stats and tracking may be nil, in which case no-op implementations are
// used.
func NewAllocator(os OS, options *Options, stats Stats, tracking Tracking) *Allocator {
	if options == nil {
		options = NewOptions()
	}
	if stats == nil {
		stats = noopStats{}
	}
	if tracking == nil {
		tracking = noopTracking{}
	}
	return &Allocator{
		registry: NewRegistry(),
		os:       os,
		options:  options.Snapshot(),
		stats:    stats,
		tracking: tracking,
	}
}

// Registry exposes the allocator's underlying arena registry, e.g. for
// ArenaArea and DebugShowArenas.
func (al *Allocator) Registry() *Registry { return al.registry }

// SetPreloading toggles pre-load mode (spec §5, "Pre-load mode").
func (al *Allocator) SetPreloading(v bool) { al.preloading.Store(v) }

// Preloading reports whether the allocator believes the process is still
// in early pre-load initialization.
func (al *Allocator) Preloading() bool { return al.preloading.Load() }

// threadSeq returns a per-goroutine bias value used to spread independent
// callers across different bitmap chunks (spec §4.1's start_hint). The
// calling goroutine's id, read via github.com/timandy/routine, is a cheap,
// stable-for-the-call stand-in for a dedicated thread-sequence counter.
func threadSeq() uint32 {
	return uint32(routine.Goid())
}

func ceilBlocks(size int64) int {
	n := (size + BlockSize - 1) / BlockSize
	return int(n)
}

// AllocAligned is the orchestrator's public entry point, implementing spec
// §4.4 verbatim: preconditions/fast-rejects, placement policy (requested
// id, else two NUMA passes, else reserve-a-fresh-arena-then-retry, else OS
// fallback), and per-arena claim bookkeeping.
func (al *Allocator) AllocAligned(size int64, alignment, alignOffset int, commit, allowLarge bool, requestedArenaID uint32) (uintptr, MemID, error) {
	if alignment > BlockAlign || alignOffset != 0 {
		return al.allocFromOS(size, alignment, alignOffset, commit)
	}
	if size < MinObjSize || size > MaxObjSize || al.options.DisallowArenaAlloc {
		return al.allocFromOS(size, alignment, alignOffset, commit)
	}

	n := ceilBlocks(size)
	seq := threadSeq()

	if requestedArenaID != 0 {
		a := al.registry.ByID(requestedArenaID)
		if a == nil {
			return 0, noneMemID, ErrOutOfMemory
		}
		if ptr, id, ok := al.tryClaim(a, n, seq, commit, allowLarge, true); ok {
			return ptr, id, nil
		}
		// A request pinned to one arena never falls back to the OS.
		return 0, noneMemID, ErrOutOfMemory
	}

	callerNode := al.os.NumaNode()

	// Pass A: NUMA-local.
	if ptr, id, ok := al.scanArenas(n, seq, commit, allowLarge, callerNode, false); ok {
		return ptr, id, nil
	}
	// Pass B: NUMA-foreign, only if the caller has a known node.
	if callerNode >= 0 {
		if ptr, id, ok := al.scanArenas(n, seq, commit, allowLarge, callerNode, true); ok {
			return ptr, id, nil
		}
	}

	// Try reserving a fresh arena, then retry Pass A on it alone.
	if a := al.reserveMore(size); a != nil {
		if ptr, id, ok := al.tryClaim(a, n, seq, commit, allowLarge, false); ok {
			return ptr, id, nil
		}
	}

	if al.options.DisallowOSAlloc {
		return 0, noneMemID, ErrOutOfMemory
	}
	return al.allocFromOS(size, alignment, alignOffset, commit)
}

// scanArenas runs one NUMA pass (local or foreign) over the registry.
func (al *Allocator) scanArenas(n int, seq uint32, commit, allowLarge bool, callerNode int32, foreignPass bool) (uintptr, MemID, bool) {
	var (
		ptr uintptr
		id  MemID
		ok  bool
	)
	al.registry.VisitAll(func(a *Arena) bool {
		if a.Exclusive {
			return true
		}
		if !allowLarge && a.IsLarge {
			return true
		}

		numaMatches := callerNode < 0 || a.NumaNode < 0 || a.NumaNode == callerNode
		if foreignPass {
			// Only arenas Pass A skipped for a NUMA mismatch are fair
			// game here.
			if numaMatches {
				return true
			}
		} else if !numaMatches {
			return true
		}

		p, m, claimed := al.tryClaim(a, n, seq, commit, allowLarge, false)
		if claimed {
			ptr, id, ok = p, m, true
			return false
		}
		return true
	})
	return ptr, id, ok
}

// tryClaim runs the per-arena claim algorithm of spec §4.4 steps 1-6.
// requested bypasses the exclusivity/large-page gating that scanArenas
// already enforces for the open placement passes, since an explicitly
// requested arena id is allowed to be exclusive or large.
func (al *Allocator) tryClaim(a *Arena, n int, seq uint32, commit, allowLarge, requested bool) (uintptr, MemID, bool) {
	if !requested && a.IsLarge && !allowLarge {
		return 0, noneMemID, false
	}

	i, ok := a.BlocksFree.TryFindAndClearN(seq, n)
	if !ok {
		return 0, noneMemID, false
	}

	ptr := a.BlockStart(uint32(i))
	id := MemID{
		Kind:       KindArena,
		ArenaID:    a.ID,
		BlockIndex: uint32(i),
		IsExclusive: a.Exclusive,
		IsPinned:   a.IsPinned,
	}

	// Dirty tracking (step 4). blocks_dirty records whether a block has
	// ever been handed out before; XSetN(ModeSet) marks the range dirty
	// for next time. A range none of whose blocks was already dirty is
	// still in the zero-filled state the arena started in.
	if a.InitiallyZero {
		allClean := a.BlocksDirty.IsXSetN(ModeClear, i, n)
		a.BlocksDirty.XSetN(ModeSet, i, n)
		id.InitiallyZero = allClean
	}

	// Commit tracking (step 5).
	if commit {
		allCommitted := a.BlocksCommitted.XSetN(ModeSet, i, n)
		if allCommitted {
			id.InitiallyCommitted = true
		} else if err := al.os.Commit(ptr, n*BlockSize); err == nil {
			id.InitiallyCommitted = true
			al.stats.IncreaseCommitted(int64(n) * BlockSize)
		} else {
			id.InitiallyCommitted = false
			// Leave blocks_committed unset over the failed range so a
			// later retry re-attempts commit (spec §7).
			a.BlocksCommitted.XSetN(ModeClear, i, n)
		}
	} else {
		id.InitiallyCommitted = a.BlocksCommitted.IsXSetN(ModeSet, i, n)
	}

	return ptr, id, true
}

// allocFromOS delegates directly to the OS facade, bypassing arenas
// entirely, per spec §4.4's fast-reject and fallback paths.
func (al *Allocator) allocFromOS(size int64, alignment, alignOffset int, commit bool) (uintptr, MemID, error) {
	if alignment == 0 {
		alignment = BlockAlign
	}

	var (
		ptr       uintptr
		committed bool
		isZero    bool
		err       error
	)
	if alignOffset == 0 {
		ptr, committed, isZero, err = al.os.AllocAligned(int(size), alignment, commit)
	} else {
		ptr, committed, isZero, err = al.os.AllocAlignedAtOffset(int(size), alignment, alignOffset, commit)
	}
	if err != nil {
		return 0, noneMemID, ErrOutOfMemory
	}
	if committed {
		al.stats.IncreaseCommitted(size)
	}

	return ptr, MemID{
		Kind:               KindOS,
		InitiallyCommitted: committed,
		InitiallyZero:      isZero,
	}, nil
}
