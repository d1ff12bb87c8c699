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

import "arena.build/go/arena/internal/arena/dbg"

// Free releases a previously-allocated range, implementing spec §4.5.
// committedSize tells the allocator how much of size is still committed,
// which may be less than size if the caller itself decommitted part of
// the range out of band.
func (al *Allocator) Free(ptr uintptr, size, committedSize int64, id MemID) error {
	switch id.Kind {
	case KindOS:
		if committedSize > 0 && committedSize < size {
			// The OS free path will re-add the full size as a decommit;
			// pre-emptively remove the portion we know is committed so
			// the counter doesn't go negative once that happens.
			al.stats.DecreaseCommitted(committedSize)
		}
		if err := al.os.Free(ptr, int(size)); err != nil {
			return ErrOutOfMemory
		}
		return nil

	case KindArena:
		return al.freeArena(size, committedSize, id)

	default: // KindNone, KindExternal, KindStatic
		return nil
	}
}

func (al *Allocator) freeArena(size, committedSize int64, id MemID) error {
	a := al.registry.ByID(id.ArenaID)
	n := ceilBlocks(size)
	blockIdx := id.BlockIndex

	if a == nil || id.ArenaID == 0 || id.ArenaID > MaxArenas ||
		blockIdx < metadataBlocks || blockIdx > a.BlockCount || uint32(n) > a.BlockCount-blockIdx {
		dbg.Log("free", "invalid free: arena=%d block=%d n=%d", id.ArenaID, blockIdx, n)
		return ErrInvalid
	}

	if a.IsPinned || a.InitiallyCommitted {
		dbg.Assert(committedSize == size, "free of pinned/initially-committed arena with committedSize=%d != size=%d", committedSize, size)
	} else if committedSize < size {
		a.BlocksCommitted.XSetN(ModeClear, int(blockIdx), n)
		al.tracking.MemNoAccess(a.BlockStart(blockIdx), n*BlockSize)
		if committedSize > 0 {
			al.stats.DecreaseCommitted(committedSize)
		}
	}

	// Schedule purge before releasing the free bits: the range is still
	// owned by us, so the purge path cannot race with a concurrent claim
	// until the blocks_free set below makes it visible as free.
	al.schedulePurge(a, int(blockIdx), n)

	allWereAlreadyFree := a.BlocksFree.XSetN(ModeSet, int(blockIdx), n)
	if allWereAlreadyFree {
		dbg.Log("free", "double free: arena=%d block=%d n=%d", id.ArenaID, blockIdx, n)
		return ErrDoubleFree
	}

	// Opportunistically run one non-forced purge pass.
	al.TryPurgeAll(false, false)

	return nil
}
