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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 2: free-then-allocate round trip.
func TestFreeThenAllocateRoundTrip(t *testing.T) {
	al, _ := newTestAllocator(t, WithPurgeDelay(-1))
	require.NoError(t, al.ReserveOSMemory(16<<20, true, false))

	ptr, id, err := al.AllocAligned(2*BlockSize, BlockAlign, 0, true, false, 0)
	require.NoError(t, err)

	a := al.registry.ByID(id.ArenaID)
	freeBefore := a.FreeBlockCount()

	require.NoError(t, al.Free(ptr, 2*BlockSize, 2*BlockSize, id))
	assert.Equal(t, freeBefore+2, a.FreeBlockCount())

	ptr2, id2, err := al.AllocAligned(2*BlockSize, BlockAlign, 0, true, false, 0)
	require.NoError(t, err)
	assert.Equal(t, ptr, ptr2)
	assert.Equal(t, id.BlockIndex, id2.BlockIndex)
}

// Scenario 6 / Property P8: double free is rejected without mutating bits.
func TestFreeDoubleFreeDetected(t *testing.T) {
	al, _ := newTestAllocator(t, WithPurgeDelay(-1))
	require.NoError(t, al.ReserveOSMemory(16<<20, true, false))

	ptr, id, err := al.AllocAligned(2*BlockSize, BlockAlign, 0, true, false, 0)
	require.NoError(t, err)

	require.NoError(t, al.Free(ptr, 2*BlockSize, 2*BlockSize, id))

	a := al.registry.ByID(id.ArenaID)
	snapshot := a.FreeBlockCount()

	err = al.Free(ptr, 2*BlockSize, 2*BlockSize, id)
	assert.ErrorIs(t, err, ErrDoubleFree)
	assert.Equal(t, snapshot, a.FreeBlockCount(), "a rejected double free must not change free bit accounting")

	// The range must still be allocatable exactly once more.
	_, id2, err := al.AllocAligned(2*BlockSize, BlockAlign, 0, true, false, 0)
	require.NoError(t, err)
	assert.Equal(t, id.BlockIndex, id2.BlockIndex)
}

func TestFreeInvalidArenaID(t *testing.T) {
	al, _ := newTestAllocator(t)
	err := al.Free(BlockAlign, BlockSize, BlockSize, MemID{Kind: KindArena, ArenaID: 99, BlockIndex: metadataBlocks})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFreeInvalidBlockIndexInMetadata(t *testing.T) {
	al, _ := newTestAllocator(t)
	id, ok := al.ManageOSMemoryEx(BlockAlign, 4*BlockSize, false, false, false, -1, false)
	require.True(t, ok)

	err := al.Free(BlockAlign, BlockSize, BlockSize, MemID{Kind: KindArena, ArenaID: id, BlockIndex: 0})
	assert.ErrorIs(t, err, ErrInvalid, "block 0 is a metadata block and can never be a live allocation")
}

// A BlockIndex past the end of the arena must be rejected without
// touching any bitmap, not underflow the BlockCount-blockIdx bounds
// check and fall through to an out-of-range bitmap access.
func TestFreeInvalidBlockIndexBeyondArena(t *testing.T) {
	al, _ := newTestAllocator(t)
	id, ok := al.ManageOSMemoryEx(BlockAlign, 4*BlockSize, false, false, false, -1, false)
	require.True(t, ok)

	a := al.registry.ByID(id)

	err := al.Free(BlockAlign, BlockSize, BlockSize, MemID{Kind: KindArena, ArenaID: id, BlockIndex: a.BlockCount + 1})
	assert.ErrorIs(t, err, ErrInvalid, "a block index past the end of the arena must not underflow the bounds check")

	err = al.Free(BlockAlign, BlockSize, BlockSize, MemID{Kind: KindArena, ArenaID: id, BlockIndex: a.BlockCount})
	assert.ErrorIs(t, err, ErrInvalid, "a block index exactly at BlockCount has no room for even a 1-block free")
}

// Scenario 4: zeroing contract.
func TestFreeZeroingContract(t *testing.T) {
	al, _ := newTestAllocator(t, WithPurgeDelay(-1))
	id, ok := al.ManageOSMemoryEx(BlockAlign, 4*BlockSize, true, false, true, -1, false)
	require.True(t, ok)

	ptr, memID, err := al.AllocAligned(BlockSize, BlockAlign, 0, true, false, id)
	require.NoError(t, err)
	assert.True(t, memID.InitiallyZero, "first allocation from a zero-initialized arena must report zero")

	require.NoError(t, al.Free(ptr, BlockSize, BlockSize, memID))

	_, memID2, err := al.AllocAligned(BlockSize, BlockAlign, 0, true, false, id)
	require.NoError(t, err)
	assert.False(t, memID2.InitiallyZero, "the range was dirtied by the first allocation, so a second allocation must not claim zero")
}
