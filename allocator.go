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
	"io"

	internalarena "arena.build/go/arena/internal/arena"
)

// Allocator is a thread-safe arena allocator: a registry of OS-backed
// arenas, placement policy across them, and a lazy purge scheduler. The
// zero value is not usable; construct one with New.
type Allocator struct {
	al *internalarena.Allocator
}

// New builds an Allocator with no arenas yet reserved. os supplies the
// virtual-memory primitives (see SimOS, UnixOS); stats and tracking may
// be nil.
func New(os OS, options *Options, stats Stats, tracking Tracking) *Allocator {
	return &Allocator{al: internalarena.NewAllocator(os, options, stats, tracking)}
}

// SetPreloading toggles pre-load mode: while true, arena creation and
// scheduled purging are disabled, though frees still release bits. This
// mirrors the allocator's own startup phase, where creating arenas before
// the process's memory layout has settled can be counterproductive.
func (a *Allocator) SetPreloading(v bool) { a.al.SetPreloading(v) }

// Preloading reports whether the allocator is in pre-load mode.
func (a *Allocator) Preloading() bool { return a.al.Preloading() }

// AllocAligned hands out a size-byte range aligned to alignment (capped
// at BlockAlign; larger alignments and any non-zero alignOffset bypass
// arenas and go straight to the OS). allowLarge permits landing on a
// large/huge-page-backed arena; requestedArenaID pins the request to one
// arena (0 means "any").
func (a *Allocator) AllocAligned(size int64, alignment, alignOffset int, commit, allowLarge bool, requestedArenaID uint32) (uintptr, MemID, error) {
	return a.al.AllocAligned(size, alignment, alignOffset, commit, allowLarge, requestedArenaID)
}

// Free releases a range previously returned by AllocAligned, identified
// by the MemID returned with it.
func (a *Allocator) Free(ptr uintptr, size, committedSize int64, id MemID) error {
	return a.al.Free(ptr, size, committedSize, id)
}

// TryPurgeAll runs one purge pass immediately instead of waiting for
// scheduled deadlines to elapse. force ignores each arena's purge
// deadline; visitAll processes every eligible arena in this call instead
// of just the first.
func (a *Allocator) TryPurgeAll(force, visitAll bool) { a.al.TryPurgeAll(force, visitAll) }

// ManageOSMemory adopts an externally-supplied region as a new arena.
// It returns false, mutating nothing, if the region is misaligned or too
// small.
func (a *Allocator) ManageOSMemory(start uintptr, size int64, isCommitted, isLarge, isZero bool, numaNode int32) bool {
	return a.al.ManageOSMemory(start, size, isCommitted, isLarge, isZero, numaNode)
}

// ManageOSMemoryEx is ManageOSMemory with exclusivity and arena id
// capture.
func (a *Allocator) ManageOSMemoryEx(start uintptr, size int64, isCommitted, isLarge, isZero bool, numaNode int32, exclusive bool) (arenaID uint32, ok bool) {
	return a.al.ManageOSMemoryEx(start, size, isCommitted, isLarge, isZero, numaNode, exclusive)
}

// ReserveOSMemory reserves size bytes (rounded up to BlockSize) from the
// OS and adopts the result as a new arena.
func (a *Allocator) ReserveOSMemory(size int64, commit, allowLarge bool) error {
	return a.al.ReserveOSMemory(size, commit, allowLarge)
}

// ReserveOSMemoryEx is ReserveOSMemory with exclusivity and arena id
// capture.
func (a *Allocator) ReserveOSMemoryEx(size int64, commit, allowLarge, exclusive bool) (arenaID uint32, err error) {
	return a.al.ReserveOSMemoryEx(size, commit, allowLarge, exclusive)
}

// ReserveHugeOSPagesAt reserves pagesInGiB GiB of huge/large OS pages on
// numaNode (or with no preference if negative), bounded by timeoutMsecs,
// and adopts the result as a new pinned, committed arena.
func (a *Allocator) ReserveHugeOSPagesAt(pagesInGiB, numaNode, timeoutMsecs int) error {
	return a.al.ReserveHugeOSPagesAt(pagesInGiB, numaNode, timeoutMsecs)
}

// ReserveHugeOSPagesAtEx is ReserveHugeOSPagesAt with exclusivity and
// arena id capture.
func (a *Allocator) ReserveHugeOSPagesAtEx(pagesInGiB, numaNode, timeoutMsecs int, exclusive bool) (arenaID uint32, err error) {
	return a.al.ReserveHugeOSPagesAtEx(pagesInGiB, numaNode, timeoutMsecs, exclusive)
}

// ReserveHugeOSPagesInterleave divides pages evenly across numaNodes (or
// every node the OS reports, if numaNodes <= 0), giving one extra page to
// each of the first (pages mod numaNodes) nodes; each node's reservation
// gets timeoutMsecs/numaNodes + 50ms.
func (a *Allocator) ReserveHugeOSPagesInterleave(pages, numaNodes, timeoutMsecs int) error {
	return a.al.ReserveHugeOSPagesInterleave(pages, numaNodes, timeoutMsecs)
}

// ArenaArea returns the base address and size of the named arena.
func (a *Allocator) ArenaArea(arenaID uint32) (base uintptr, size int64, ok bool) {
	return a.al.ArenaArea(arenaID)
}

// DebugShowArenas writes a human-readable dump of every arena's bitmaps
// to w.
func (a *Allocator) DebugShowArenas(w io.Writer, showInuse, showAbandoned, showPurge bool) {
	a.al.DebugShowArenas(w, showInuse, showAbandoned, showPurge)
}
