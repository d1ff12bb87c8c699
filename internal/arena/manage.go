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

import "io"

// ManageOSMemoryEx adopts an externally-supplied region [start, start+size)
// as a new arena, per spec §6's manage_os_memory_ex. It returns false
// (mutating nothing) if the region is misaligned or smaller than an arena
// can be.
func (al *Allocator) ManageOSMemoryEx(start uintptr, size int64, isCommitted, isLarge, isZero bool, numaNode int32, exclusive bool) (arenaID uint32, ok bool) {
	a, err := newArena(start, size, isCommitted, isZero, numaNode, exclusive, isLarge, false)
	if err != nil {
		return 0, false
	}
	if !al.registry.Add(a) {
		return 0, false
	}
	if isCommitted {
		al.stats.IncreaseCommitted(size)
	}
	return a.ID, true
}

// ManageOSMemory is ManageOSMemoryEx without exclusivity or id capture.
func (al *Allocator) ManageOSMemory(start uintptr, size int64, isCommitted, isLarge, isZero bool, numaNode int32) bool {
	_, ok := al.ManageOSMemoryEx(start, size, isCommitted, isLarge, isZero, numaNode, false)
	return ok
}

// ReserveOSMemoryEx reserves size bytes (rounded up to BlockSize) from the
// OS and adopts the result as a new arena, per spec §6's
// reserve_os_memory_ex. allowLarge is accepted for signature parity with
// the spec; this path always reserves ordinary pages (ReserveHugeOSPagesAt
// is the huge-page entry point).
func (al *Allocator) ReserveOSMemoryEx(size int64, commit, allowLarge, exclusive bool) (arenaID uint32, err error) {
	size = roundUp(size, BlockSize)

	ptr, committed, isZero, osErr := al.os.AllocAligned(int(size), BlockAlign, commit || al.shouldEagerCommit())
	if osErr != nil {
		return 0, ErrOutOfMemory
	}

	id, ok := al.ManageOSMemoryEx(ptr, size, committed, false, isZero, al.os.NumaNode(), exclusive)
	if !ok {
		_ = al.os.Free(ptr, int(size))
		return 0, ErrOutOfMemory
	}
	al.stats.IncreaseArenasReserved()
	return id, nil
}

// ReserveOSMemory is ReserveOSMemoryEx without exclusivity or id capture.
func (al *Allocator) ReserveOSMemory(size int64, commit, allowLarge bool) error {
	_, err := al.ReserveOSMemoryEx(size, commit, allowLarge, false)
	return err
}

// ReserveHugeOSPagesAtEx reserves pagesInGiB GiB of huge/large OS pages on
// numaNode (or with no preference if negative) and adopts the result as a
// new, pinned, always-committed arena, per spec §6's
// reserve_huge_os_pages_at_ex.
func (al *Allocator) ReserveHugeOSPagesAtEx(pagesInGiB, numaNode, timeoutMsecs int, exclusive bool) (arenaID uint32, err error) {
	ptr, size, osErr := al.os.AllocHugeOSPages(pagesInGiB, numaNode, timeoutMsecs)
	if osErr != nil {
		return 0, ErrOutOfMemory
	}

	id, ok := al.ManageOSMemoryEx(ptr, int64(size), true, true, true, int32(numaNode), exclusive)
	if !ok {
		_ = al.os.Free(ptr, size)
		return 0, ErrOutOfMemory
	}
	al.stats.IncreaseArenasReserved()
	return id, nil
}

// ReserveHugeOSPagesAt is ReserveHugeOSPagesAtEx without exclusivity or id
// capture.
func (al *Allocator) ReserveHugeOSPagesAt(pagesInGiB, numaNode, timeoutMsecs int) error {
	_, err := al.ReserveHugeOSPagesAtEx(pagesInGiB, numaNode, timeoutMsecs, false)
	return err
}

// ReserveHugeOSPagesInterleave divides pages evenly across numaNodes (or
// every node the OS reports, if numaNodes <= 0), with one extra page
// given to each of the first (pages mod numaNodes) nodes, per spec §6's
// reserve_huge_os_pages_interleave. Each node's reservation gets
// timeoutMsecs/numaNodes + 50ms to complete.
func (al *Allocator) ReserveHugeOSPagesInterleave(pages, numaNodes, timeoutMsecs int) error {
	if numaNodes <= 0 {
		numaNodes = al.os.NumaNodeCount()
	}
	if numaNodes <= 0 {
		numaNodes = 1
	}

	perNodeTimeout := timeoutMsecs/numaNodes + 50
	base := pages / numaNodes
	extra := pages % numaNodes

	for node := 0; node < numaNodes; node++ {
		n := base
		if node < extra {
			n++
		}
		if n == 0 {
			continue
		}
		if _, err := al.ReserveHugeOSPagesAtEx(n, node, perNodeTimeout, false); err != nil {
			return err
		}
	}
	return nil
}

// ArenaArea returns the base address and size of the named arena, per
// spec §6's arena_area.
func (al *Allocator) ArenaArea(arenaID uint32) (base uintptr, size int64, ok bool) {
	a := al.registry.ByID(arenaID)
	if a == nil {
		return 0, 0, false
	}
	base, size = a.Area()
	return base, size, true
}

// DebugShowArenas prints every arena's bitmaps per spec §6's
// debug_show_arenas.
func (al *Allocator) DebugShowArenas(w io.Writer, showInuse, showAbandoned, showPurge bool) {
	DumpArenas(w, al.registry, showInuse, showAbandoned, showPurge)
}
