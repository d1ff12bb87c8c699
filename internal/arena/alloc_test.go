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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T, opts ...Option) (*Allocator, *SimOS) {
	t.Helper()
	sim := NewSimOS(true, true, 1)
	o := NewOptions(opts...)
	al := NewAllocator(sim, o, nil, nil)
	return al, sim
}

// Scenario 1: reserve-and-allocate.
func TestAllocAlignedReserveAndAllocate(t *testing.T) {
	al, _ := newTestAllocator(t, WithArenaReserve(64<<20))

	require.NoError(t, al.ReserveOSMemory(64<<20, true, false))

	seen := map[uint32]bool{}
	for i := 0; i < 15; i++ {
		ptr, id, err := al.AllocAligned(BlockSize, BlockAlign, 0, true, false, 0)
		require.NoError(t, err)
		assert.Equal(t, KindArena, id.Kind)
		assert.Zero(t, ptr%BlockAlign, "returned pointer must be block-aligned")
		assert.False(t, seen[id.BlockIndex], "block index %d handed out twice", id.BlockIndex)
		seen[id.BlockIndex] = true
	}
	assert.Len(t, seen, 15)
}

// Property P2: alignment, in-arena bounds, and busy bits held until free.
func TestAllocAlignedBitsHeldUntilFree(t *testing.T) {
	al, _ := newTestAllocator(t)
	require.NoError(t, al.ReserveOSMemory(16<<20, true, false))

	ptr, id, err := al.AllocAligned(BlockSize, BlockAlign, 0, true, false, 0)
	require.NoError(t, err)

	a := al.registry.ByID(id.ArenaID)
	require.NotNil(t, a)
	assert.True(t, a.Contains(ptr))
	assert.False(t, a.BlocksFree.IsXSetN(ModeSet, int(id.BlockIndex), 1))

	require.NoError(t, al.Free(ptr, BlockSize, BlockSize, id))
	assert.True(t, a.BlocksFree.IsXSetN(ModeSet, int(id.BlockIndex), 1))
}

// Property P5: commit=true and success implies InitiallyCommitted.
func TestAllocAlignedCommitContract(t *testing.T) {
	al, _ := newTestAllocator(t)
	require.NoError(t, al.ReserveOSMemory(16<<20, false, false))

	_, id, err := al.AllocAligned(BlockSize, BlockAlign, 0, true, false, 0)
	require.NoError(t, err)
	assert.True(t, id.InitiallyCommitted)
}

// Property P3: concurrent allocations never overlap.
func TestAllocAlignedConcurrentNoOverlap(t *testing.T) {
	al, _ := newTestAllocator(t, WithArenaReserve(64<<20))
	require.NoError(t, al.ReserveOSMemory(64<<20, true, false))

	const n = 14
	var wg sync.WaitGroup
	idxCh := make(chan uint32, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, id, err := al.AllocAligned(BlockSize, BlockAlign, 0, true, false, 0)
			if err == nil {
				idxCh <- id.BlockIndex
			}
		}()
	}
	wg.Wait()
	close(idxCh)

	seen := map[uint32]bool{}
	for idx := range idxCh {
		assert.False(t, seen[idx], "block %d claimed twice", idx)
		seen[idx] = true
	}
}

// Property P9/Scenario 5: NUMA placement prefers the local node before
// falling back to a foreign one.
func TestAllocAlignedNumaFallback(t *testing.T) {
	al, sim := newTestAllocator(t)
	_ = sim

	idA, okA := al.ManageOSMemoryEx(BlockAlign, 2*BlockSize, false, false, false, 0, false)
	require.True(t, okA)
	idB, okB := al.ManageOSMemoryEx(BlockAlign*10, 2*BlockSize, false, false, false, 1, false)
	require.True(t, okB)

	// Drain arena A's single usable block.
	_, id1, err := al.AllocAligned(BlockSize, BlockAlign, 0, false, false, 0)
	require.NoError(t, err)
	assert.Equal(t, idA, id1.ArenaID)

	// Next request must fall over to arena B, since A is out of room and
	// the caller's NUMA node (from SimOS.NumaNode(), always 0) matches A.
	_, id2, err := al.AllocAligned(BlockSize, BlockAlign, 0, false, false, 0)
	require.NoError(t, err)
	assert.Equal(t, idB, id2.ArenaID)
}

// Property P10: exclusive arenas never satisfy an unrequested allocation.
func TestAllocAlignedExclusiveArenaNotPickedImplicitly(t *testing.T) {
	al, _ := newTestAllocator(t, WithArenaReserve(0), WithDisallowOSAlloc(true))
	exclID, ok := al.ManageOSMemoryEx(BlockAlign, 4*BlockSize, false, false, false, -1, true)
	require.True(t, ok)

	_, _, err := al.AllocAligned(BlockSize, BlockAlign, 0, false, false, 0)
	assert.ErrorIs(t, err, ErrOutOfMemory, "no other arena exists and reservation/OS fallback are disabled, so an implicit request must fail rather than use the exclusive one")

	ptr, id, err := al.AllocAligned(BlockSize, BlockAlign, 0, false, false, exclID)
	require.NoError(t, err)
	assert.NotZero(t, ptr)
	assert.Equal(t, exclID, id.ArenaID)
}

// Oversized alignment/offset requests bypass arenas entirely.
func TestAllocAlignedBypassesArenaForLargeAlignment(t *testing.T) {
	al, _ := newTestAllocator(t)
	require.NoError(t, al.ReserveOSMemory(16<<20, true, false))

	_, id, err := al.AllocAligned(BlockSize, BlockAlign*2, 0, true, false, 0)
	require.NoError(t, err)
	assert.Equal(t, KindOS, id.Kind)
}
