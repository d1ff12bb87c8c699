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

//go:build linux || darwin

package arena

import (
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// UnixOS is the real OS implementation for linux/darwin, backed directly by
// mmap/mprotect/madvise via golang.org/x/sys/unix. It reserves address
// space with PROT_NONE and flips protection/advice as the allocator
// commits, purges, and frees ranges.
type UnixOS struct {
	overcommit bool
	pageSize   int

	mu      sync.Mutex
	regions map[uintptr]int // base -> length, for Free/FreeEx bookkeeping
}

// NewUnixOS returns a UnixOS. overcommit should reflect whether the host
// kernel is known to overcommit (on Linux, whether
// /proc/sys/vm/overcommit_memory allows it); callers that do not want to
// inspect that file can conservatively pass false.
func NewUnixOS(overcommit bool) *UnixOS {
	return &UnixOS{
		overcommit: overcommit,
		pageSize:   unix.Getpagesize(),
		regions:    make(map[uintptr]int),
	}
}

func (o *UnixOS) mmapAnon(size int, prot int) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, size, prot, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	return uintptr(unsafe.Pointer(&b[0])), nil
}

// reserveAligned reserves size+alignment bytes PROT_NONE, then returns the
// sub-slice aligned to (alignment, alignOffset), unmapping the unused
// head/tail so the process doesn't leak address space on every call.
func (o *UnixOS) reserveAligned(size, alignment, alignOffset int) (uintptr, error) {
	total := size + alignment
	base, err := o.mmapAnon(total, unix.PROT_NONE)
	if err != nil {
		return 0, err
	}

	ptr := alignUp(base+uintptr(alignOffset), alignment) - uintptr(alignOffset)
	if head := ptr - base; head > 0 {
		unmapAt(base, int(head))
	}
	tailStart := ptr + uintptr(size)
	baseEnd := base + uintptr(total)
	if tail := baseEnd - tailStart; tail > 0 {
		unmapAt(tailStart, int(tail))
	}

	o.mu.Lock()
	o.regions[ptr] = size
	o.mu.Unlock()

	return ptr, nil
}

func unmapAt(ptr uintptr, size int) {
	if size <= 0 {
		return
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	_ = unix.Munmap(b)
}

// AllocAligned implements OS.
func (o *UnixOS) AllocAligned(size, alignment int, commit bool) (uintptr, bool, bool, error) {
	return o.AllocAlignedAtOffset(size, alignment, 0, commit)
}

// AllocAlignedAtOffset implements OS.
func (o *UnixOS) AllocAlignedAtOffset(size, alignment, alignOffset int, commit bool) (uintptr, bool, bool, error) {
	ptr, err := o.reserveAligned(size, alignment, alignOffset)
	if err != nil {
		return 0, false, false, err
	}
	if commit {
		if err := o.Commit(ptr, size); err != nil {
			_ = o.Free(ptr, size)
			return 0, false, false, err
		}
		return ptr, true, true, nil
	}
	// PROT_NONE, untouched: logically zero once committed.
	return ptr, false, true, nil
}

// AllocHugeOSPages implements OS, using MAP_HUGETLB where the runtime
// supports it (linux only; on darwin this degrades to an ordinary mapping,
// since there is no portable huge-page mmap flag).
func (o *UnixOS) AllocHugeOSPages(pagesInGiB int, numaNode int, timeoutMsecs int) (uintptr, int, error) {
	size := pagesInGiB << 30
	flags := unix.MAP_ANON | unix.MAP_PRIVATE
	if runtime.GOOS == "linux" {
		flags |= unix.MAP_HUGETLB
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil && runtime.GOOS == "linux" {
		// Huge pages unavailable (no hugetlbfs pool reserved); fall back
		// to a regular committed mapping rather than failing outright.
		b, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("arena: huge page reservation of %d GiB: %w", pagesInGiB, err)
	}
	ptr := uintptr(unsafe.Pointer(&b[0]))

	o.mu.Lock()
	o.regions[ptr] = size
	o.mu.Unlock()

	return ptr, size, nil
}

// Commit implements OS: flips the range to read/write.
func (o *UnixOS) Commit(ptr uintptr, size int) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	if err := unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("arena: mprotect commit: %w", err)
	}
	return nil
}

// Purge implements OS: advise the kernel the range's contents are
// unneeded (MADV_DONTNEED on Linux reclaims pages and re-zeros on next
// touch without requiring a recommit; MADV_FREE on darwin is lazier but
// has the same observable contract here).
func (o *UnixOS) Purge(ptr uintptr, size int) (bool, error) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	if err := unix.Madvise(b, madviseDontNeed()); err != nil {
		return false, fmt.Errorf("arena: madvise purge: %w", err)
	}
	return false, nil
}

// PurgeEx implements OS. When allowReset is false this performs a true
// decommit (mprotect back to PROT_NONE), which does require a recommit
// before the range is touched again.
func (o *UnixOS) PurgeEx(ptr uintptr, size int, allowReset bool) (bool, error) {
	if allowReset {
		return o.Purge(ptr, size)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	if err := unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return false, fmt.Errorf("arena: mprotect decommit: %w", err)
	}
	return true, nil
}

// madviseDontNeed picks the hint that reclaims pages without requiring a
// recommit: MADV_FREE on darwin (lazier, reclaimed only under memory
// pressure) and MADV_DONTNEED on Linux (reclaimed immediately).
func madviseDontNeed() int {
	if runtime.GOOS == "darwin" {
		return unix.MADV_FREE
	}
	return unix.MADV_DONTNEED
}

// Free implements OS.
func (o *UnixOS) Free(ptr uintptr, size int) error {
	o.mu.Lock()
	delete(o.regions, ptr)
	o.mu.Unlock()
	unmapAt(ptr, size)
	return nil
}

// FreeEx implements OS.
func (o *UnixOS) FreeEx(ptr uintptr, size int, committedSize int) error {
	return o.Free(ptr, size)
}

// PageSize implements OS.
func (o *UnixOS) PageSize() int { return o.pageSize }

// HasOvercommit implements OS.
func (o *UnixOS) HasOvercommit() bool { return o.overcommit }

// HasVirtualReserve implements OS. Reserving large PROT_NONE mappings is
// cheap on every unix this backend targets.
func (o *UnixOS) HasVirtualReserve() bool { return true }

// NumaNode implements OS. Per-thread NUMA node queries require
// platform-specific syscalls (getcpu(2) on Linux) this backend does not
// wire up; it reports "unknown" uniformly, which degrades the allocator's
// NUMA placement pass to a single pass over every arena rather than
// misplacing callers onto the wrong node.
func (o *UnixOS) NumaNode() int32 { return -1 }

// NumaNodeCount implements OS, for the same reason NumaNode reports -1:
// without a topology query, this backend assumes a single node.
func (o *UnixOS) NumaNodeCount() int { return 1 }

// ClockNowMs implements OS.
func (o *UnixOS) ClockNowMs() int64 { return time.Now().UnixMilli() }

var _ OS = (*UnixOS)(nil)
