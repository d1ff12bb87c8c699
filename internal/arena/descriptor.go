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
	"sync/atomic"

	"github.com/google/uuid"

	"arena.build/go/arena/internal/arena/dbg"
)

// metadataBlocks is the number of blocks reserved at the head of every
// arena for its descriptor. A C allocator self-hosts its descriptor inside
// the arena's own first blocks; in Go, storing a struct containing
// pointers (to []chunk slices, a uuid.UUID, a sync.Mutex) inside raw,
// GC-opaque OS memory is neither safe nor idiomatic, so the descriptor
// itself lives on the regular Go heap. What is preserved from the original
// design is the bitmap accounting: the head metadataBlocks blocks of every
// arena are still marked not-free and committed, exactly as if something
// lived there, so placement/claim behavior is identical to the C version
// this generalizes from.
const metadataBlocks = 1

// Arena is a contiguous, block-aligned virtual address range obtained from
// the OS (or adopted from a caller-supplied region), with four bitmaps
// tracking free/committed/dirty/purge state over its blocks.
type Arena struct {
	// Base is the start address of the arena's block range, i.e. of
	// block 0 (which is always a metadata block and never claimable).
	Base uintptr
	// BlockCount is the number of BlockSize blocks in [Base, Base+...).
	BlockCount uint32
	// ID is the one-based registry index; 0 until published.
	ID uint32

	// NumaNode is the NUMA node this arena is pinned to, or -1 if it has
	// no node affinity.
	NumaNode int32
	// Exclusive arenas only satisfy requests that name their id
	// explicitly.
	Exclusive bool
	// IsLarge means the range is backed by large/huge OS pages, which
	// implies IsPinned and InitiallyCommitted.
	IsLarge bool
	// IsPinned means the commit state can never change over the
	// lifetime of the arena (e.g. huge pages).
	IsPinned bool
	// InitiallyCommitted records whether the OS handed back this region
	// already committed.
	InitiallyCommitted bool
	// InitiallyZero records whether the OS handed back this region
	// already zero-filled.
	InitiallyZero bool

	// DebugID is a random label generated when the arena is constructed,
	// printed by DebugShowArenas; it plays no role in placement or
	// bookkeeping.
	DebugID uuid.UUID

	BlocksFree      *AtomicBitmap
	BlocksCommitted *AtomicBitmap
	BlocksDirty     *AtomicBitmap
	BlocksPurge     *AtomicBitmap

	// Abandoned holds BinCount reserved, per-bin abandoned-page bitmaps.
	// Abandoned-page tracking is explicitly out of scope for this
	// package (spec §9); these are allocated so the descriptor's field
	// layout matches what a downstream allocator would expect to find,
	// but no operation in this package ever sets or clears a bit in
	// them.
	Abandoned [BinCount]*AtomicBitmap
	// AbandonedVisitLock guards the (unimplemented) abandoned-page visit
	// walk. It is never taken by anything in this package.
	AbandonedVisitLock sync.Mutex

	// purgeExpire is the absolute ms deadline after which scheduled
	// purges over this arena should run; 0 means none pending.
	purgeExpire atomic.Int64
	// purgeGuard ensures at most one goroutine runs a purge pass over
	// this arena at a time.
	purgeGuard atomic.Bool
}

// newArena validates and constructs an Arena over [base, base+size), per
// spec §4.2 steps 1-6. committed/zero describe what the caller (or the OS
// call that produced the region) already guarantees about the region.
func newArena(base uintptr, size int64, committed, zero bool, numaNode int32, exclusive, isLarge, isPinned bool) (*Arena, error) {
	if base%BlockAlign != 0 {
		return nil, ErrPrecondition
	}
	minSize := int64(metadataBlocks+1) * BlockSize
	if size < minSize {
		return nil, ErrPrecondition
	}

	blockCount := uint32(size / BlockSize)
	if int(blockCount) > BitmapMaxBits {
		blockCount = BitmapMaxBits
	}

	a := &Arena{
		Base:               base,
		BlockCount:         blockCount,
		NumaNode:           numaNode,
		Exclusive:          exclusive,
		IsLarge:            isLarge,
		IsPinned:           isPinned || isLarge,
		InitiallyCommitted: committed || isLarge,
		InitiallyZero:      zero,
		DebugID:            uuid.New(),
		BlocksFree:         NewAtomicBitmap(int(blockCount)),
		BlocksCommitted:    NewAtomicBitmap(int(blockCount)),
		BlocksDirty:        NewAtomicBitmap(int(blockCount)),
		BlocksPurge:        NewAtomicBitmap(int(blockCount)),
	}
	for bin := range a.Abandoned {
		a.Abandoned[bin] = NewAtomicBitmap(int(blockCount))
	}

	// Step 4: free everything past the metadata blocks.
	a.BlocksFree.UnsafeXSetN(ModeSet, metadataBlocks, int(blockCount)-metadataBlocks)

	// Step 5: commit bookkeeping.
	if a.InitiallyCommitted {
		a.BlocksCommitted.UnsafeXSetN(ModeSet, 0, int(blockCount))
	} else {
		a.BlocksCommitted.UnsafeXSetN(ModeSet, 0, metadataBlocks)
	}

	// Step 6: the metadata blocks are dirty (they "hold the descriptor").
	a.BlocksDirty.UnsafeXSetN(ModeSet, 0, metadataBlocks)

	dbg.Log("descriptor", "new arena base=%#x blocks=%d numa=%d exclusive=%v large=%v",
		base, blockCount, numaNode, exclusive, isLarge)

	return a, nil
}

// BlockStart returns the address of block i.
func (a *Arena) BlockStart(i uint32) uintptr {
	return a.Base + uintptr(i)*BlockSize
}

// Area returns the arena's base address and total size in bytes.
func (a *Arena) Area() (base uintptr, size int64) {
	return a.Base, int64(a.BlockCount) * BlockSize
}

// Contains reports whether ptr falls within this arena's address range.
func (a *Arena) Contains(ptr uintptr) bool {
	base, size := a.Area()
	return ptr >= base && ptr < base+uintptr(size)
}

// FreeBlockCount returns a snapshot count of currently-free blocks, scanning
// the free bitmap. It is meant for debug/introspection use, not the hot
// path.
func (a *Arena) FreeBlockCount() int {
	n := 0
	for i := 0; i < int(a.BlockCount); i++ {
		if a.BlocksFree.IsXSetN(ModeSet, i, 1) {
			n++
		}
	}
	return n
}
