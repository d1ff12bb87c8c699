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

// reserveMore implements spec §4.4.1: reserve one new arena from the OS
// when no existing arena fit the current request and no specific arena id
// was asked for. Returns nil if reservation is disabled, would be futile,
// or fails outright.
func (al *Allocator) reserveMore(requestSize int64) *Arena {
	if al.Preloading() {
		return nil
	}

	base := al.options.ArenaReserve
	if base == 0 {
		return nil
	}
	if !al.os.HasVirtualReserve() {
		base /= 4
	}
	base = roundUp(base, BlockSize)

	// Exponential scaling: once there are at least 8 arenas (and at most
	// 128), the reserve size grows geometrically with the arena
	// count so long-running processes don't accumulate thousands of
	// small arenas.
	k := al.registry.CountAcquire()
	if k >= 8 && k <= 128 {
		shift := clampInt(int(k/8), 0, 16)
		base *= int64(1) << uint(shift)
	}

	minReserve := int64(metadataBlocks+1) * BlockSize
	maxReserve := int64(BitmapMaxBits) * BlockSize
	base = clampInt64(base, minReserve, maxReserve)

	if base < requestSize {
		return nil
	}

	eager := al.shouldEagerCommit()

	ptr, committed, isZero, err := al.os.AllocAligned(int(base), BlockAlign, eager)
	if err != nil {
		dbg.Log("reserve", "OS reservation of %d bytes failed: %v", base, err)
		return nil
	}

	a, err := newArena(ptr, base, committed, isZero, al.os.NumaNode(), false, false, false)
	if err != nil {
		_ = al.os.Free(ptr, int(base))
		return nil
	}

	if !al.registry.Add(a) {
		_ = al.os.Free(ptr, int(base))
		return nil
	}

	al.stats.IncreaseArenasReserved()
	if committed {
		al.stats.IncreaseCommitted(base)
	}
	dbg.Log("reserve", "reserved arena id=%d base=%#x size=%d blocks=%d", a.ID, ptr, base, a.BlockCount)

	return a
}

func (al *Allocator) shouldEagerCommit() bool {
	switch al.options.ArenaEagerCommit {
	case EagerCommitAlways:
		return true
	case EagerCommitNever:
		return false
	default:
		return al.os.HasOvercommit()
	}
}

func roundUp(v, align int64) int64 {
	return (v + align - 1) / align * align
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
