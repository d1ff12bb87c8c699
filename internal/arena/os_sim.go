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
	"sync"
	"time"
	"unsafe"
)

// SimOS is a deterministic, heap-backed OS implementation. It never talks
// to the kernel: every "reservation" is a plain byte slice, over-allocated
// so a BlockAlign-aligned pointer can always be carved out of it. It
// exists so the claim/commit/purge state machine can be exercised without
// depending on a particular platform's mmap semantics, and is what the
// package's own tests run against.
type SimOS struct {
	overcommit      bool
	virtualReserve  bool
	numaNodeCount   int
	pageSize        int

	// PurgeAlwaysDecommits makes Purge behave like a real decommit
	// (needs_recommit=true) instead of a reset that keeps pages resident.
	// Real OSes pick between the two at their own discretion; tests that
	// care which one happened set this directly.
	PurgeAlwaysDecommits bool

	mu     sync.Mutex
	blocks map[uintptr][]byte // live allocation -> backing slice, keyed by aligned ptr
}

// NewSimOS returns a SimOS with the given overcommit/virtual-reserve
// policy and NUMA node count (at least 1).
func NewSimOS(overcommit, virtualReserve bool, numaNodeCount int) *SimOS {
	if numaNodeCount < 1 {
		numaNodeCount = 1
	}
	return &SimOS{
		overcommit:     overcommit,
		virtualReserve: virtualReserve,
		numaNodeCount:  numaNodeCount,
		pageSize:       4096,
		blocks:         make(map[uintptr][]byte),
	}
}

func alignUp(p uintptr, align int) uintptr {
	a := uintptr(align)
	return (p + a - 1) &^ (a - 1)
}

func (s *SimOS) allocAligned(size, alignment, alignOffset int) (uintptr, []byte) {
	raw := make([]byte, size+alignment)
	base := uintptr(unsafe.Pointer(&raw[0]))
	ptr := alignUp(base+uintptr(alignOffset), alignment) - uintptr(alignOffset)

	s.mu.Lock()
	s.blocks[ptr] = raw
	s.mu.Unlock()

	return ptr, raw
}

// AllocAligned implements OS.
func (s *SimOS) AllocAligned(size, alignment int, commit bool) (uintptr, bool, bool, error) {
	ptr, _ := s.allocAligned(size, alignment, 0)
	return ptr, true, true, nil // Go slices are always backed and zeroed.
}

// AllocAlignedAtOffset implements OS.
func (s *SimOS) AllocAlignedAtOffset(size, alignment, alignOffset int, commit bool) (uintptr, bool, bool, error) {
	ptr, _ := s.allocAligned(size, alignment, alignOffset)
	return ptr, true, true, nil
}

// AllocHugeOSPages implements OS. The simulator has no concept of huge
// pages, so it just allocates pagesInGiB GiB of ordinary committed memory.
func (s *SimOS) AllocHugeOSPages(pagesInGiB int, numaNode int, timeoutMsecs int) (uintptr, int, error) {
	size := pagesInGiB << 30
	ptr, _ := s.allocAligned(size, BlockAlign, 0)
	return ptr, size, nil
}

// Commit implements OS. A no-op: simulated memory is always backed.
func (s *SimOS) Commit(ptr uintptr, size int) error { return nil }

// Purge implements OS. It reports needs_recommit=PurgeAlwaysDecommits:
// by default it behaves like a reset that keeps the bytes addressable
// (and, since Go never un-zeroes them behind our back, "reset" and
// "no-op" look identical here); with PurgeAlwaysDecommits set it reports
// a decommit instead. The backing bytes are never touched either way.
func (s *SimOS) Purge(ptr uintptr, size int) (bool, error) {
	return s.PurgeAlwaysDecommits, nil
}

// PurgeEx implements OS.
func (s *SimOS) PurgeEx(ptr uintptr, size int, allowReset bool) (bool, error) {
	if allowReset {
		return false, nil
	}
	// A forced decommit: the caller must re-Commit before reuse.
	return true, nil
}

// Free implements OS.
func (s *SimOS) Free(ptr uintptr, size int) error {
	s.mu.Lock()
	delete(s.blocks, ptr)
	s.mu.Unlock()
	return nil
}

// FreeEx implements OS.
func (s *SimOS) FreeEx(ptr uintptr, size int, committedSize int) error {
	return s.Free(ptr, size)
}

// PageSize implements OS.
func (s *SimOS) PageSize() int { return s.pageSize }

// HasOvercommit implements OS.
func (s *SimOS) HasOvercommit() bool { return s.overcommit }

// HasVirtualReserve implements OS.
func (s *SimOS) HasVirtualReserve() bool { return s.virtualReserve }

// NumaNode implements OS. The simulator has no real topology, so it
// always reports node 0.
func (s *SimOS) NumaNode() int32 { return 0 }

// NumaNodeCount implements OS.
func (s *SimOS) NumaNodeCount() int { return s.numaNodeCount }

// ClockNowMs implements OS.
func (s *SimOS) ClockNowMs() int64 { return time.Now().UnixMilli() }

var _ OS = (*SimOS)(nil)
