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

// OS is the narrow facade this package consumes for every virtual-memory
// primitive. It is the one external collaborator named throughout spec §6:
// reserve, commit, decommit/purge, and NUMA queries. This package never
// talks to the kernel directly outside of an OS implementation.
type OS interface {
	// AllocAligned reserves a region of at least size bytes, aligned to
	// alignment, optionally committing it up front. It reports whether
	// the returned region is committed and whether it is known to be
	// zero-filled.
	AllocAligned(size, alignment int, commit bool) (ptr uintptr, committed, isZero bool, err error)

	// AllocAlignedAtOffset is like AllocAligned, but the alignment
	// constraint applies to ptr+alignOffset rather than to ptr itself.
	AllocAlignedAtOffset(size, alignment, alignOffset int, commit bool) (ptr uintptr, committed, isZero bool, err error)

	// AllocHugeOSPages reserves pagesInGiB GiB of huge/large pages,
	// pinned and committed, preferably on numaNode (-1 for "no
	// preference"). timeoutMsecs bounds how long the call may block.
	AllocHugeOSPages(pagesInGiB int, numaNode int, timeoutMsecs int) (ptr uintptr, size int, err error)

	// Commit backs [ptr, ptr+size) with physical memory.
	Commit(ptr uintptr, size int) error

	// Purge releases the physical backing of [ptr, ptr+size) without
	// giving up the virtual reservation, choosing between decommit and a
	// zero-hint reset at the implementation's discretion. needsRecommit
	// reports whether the range must be re-committed before use (true
	// for an actual decommit, false for a reset that keeps pages
	// resident).
	Purge(ptr uintptr, size int) (needsRecommit bool, err error)

	// PurgeEx is like Purge but forces a real decommit when
	// allowReset is false (resetting never-committed memory is
	// invalid).
	PurgeEx(ptr uintptr, size int, allowReset bool) (needsRecommit bool, err error)

	// Free releases [ptr, ptr+size) back to the OS entirely, giving up
	// the virtual reservation.
	Free(ptr uintptr, size int) error

	// FreeEx is like Free, but informs the implementation that only
	// committedSize of size bytes are actually committed, so it can
	// adjust bookkeeping without extra queries.
	FreeEx(ptr uintptr, size int, committedSize int) error

	// PageSize returns the native OS page size in bytes.
	PageSize() int

	// HasOvercommit reports whether the OS commits pages lazily (e.g.
	// Linux's default overcommit policy), which affects whether a fresh
	// arena should be eager-committed by default.
	HasOvercommit() bool

	// HasVirtualReserve reports whether large virtual reservations are
	// cheap on this OS; if not, the reservation policy scales down its
	// request size (spec §4.4.1).
	HasVirtualReserve() bool

	// NumaNode returns the calling thread's current NUMA node, or -1 if
	// unknown or not applicable.
	NumaNode() int32

	// NumaNodeCount returns the number of NUMA nodes visible to the
	// process, or 1 if NUMA is not applicable.
	NumaNodeCount() int

	// ClockNowMs returns a monotonic clock reading in milliseconds, used
	// for purge scheduling.
	ClockNowMs() int64
}
