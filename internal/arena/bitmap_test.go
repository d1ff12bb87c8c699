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
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicBitmapXSetNRoundTrip(t *testing.T) {
	b := NewAtomicBitmap(200)

	allClear := b.XSetN(ModeSet, 10, 20)
	assert.False(t, allClear, "bits start clear, so setting them should report a change")
	assert.True(t, b.IsXSetN(ModeSet, 10, 20))

	allSet := b.XSetN(ModeSet, 15, 5)
	assert.True(t, allSet, "re-setting an already-set sub-range should report no change")

	b.XSetN(ModeClear, 10, 20)
	assert.True(t, b.IsXSetN(ModeClear, 10, 20))
}

func TestAtomicBitmapXSetNCrossesWordBoundary(t *testing.T) {
	b := NewAtomicBitmap(200)
	b.XSetN(ModeSet, 60, 10) // spans bits 60-69, crossing the 64-bit word boundary
	assert.True(t, b.IsXSetN(ModeSet, 60, 10))
	assert.False(t, b.IsXSetN(ModeSet, 59, 1))
	assert.False(t, b.IsXSetN(ModeSet, 70, 1))
}

func TestTryFindAndClearNFindsRun(t *testing.T) {
	b := NewAtomicBitmap(128)
	b.XSetN(ModeSet, 0, 128)

	idx, ok := b.TryFindAndClearN(0, 10)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.False(t, b.IsXSetN(ModeSet, 0, 10))
	assert.True(t, b.IsXSetN(ModeSet, 10, 118))
}

func TestTryFindAndClearNSkipsBusyRuns(t *testing.T) {
	b := NewAtomicBitmap(128)
	b.XSetN(ModeSet, 0, 128)
	b.XSetN(ModeClear, 0, 20) // first 20 bits already claimed

	idx, ok := b.TryFindAndClearN(0, 5)
	require.True(t, ok)
	assert.GreaterOrEqual(t, idx, 20)
}

func TestTryFindAndClearNNoRunAvailable(t *testing.T) {
	b := NewAtomicBitmap(64)
	b.XSetN(ModeSet, 0, 64)

	_, ok := b.TryFindAndClearN(0, 65)
	assert.False(t, ok, "a run longer than the whole bitmap can never be found")
}

func TestTryFindAndClearNCrossChunkRun(t *testing.T) {
	// chunkBits = 512; ask for a run straddling that boundary.
	b := NewAtomicBitmap(1024)
	b.XSetN(ModeSet, 500, 24)

	idx, ok := b.TryFindAndClearN(0, 20)
	require.True(t, ok)
	assert.GreaterOrEqual(t, idx, 500)
}

// TestTryFindAndClearNConcurrentDisjoint is property P3: concurrent
// successful claims never overlap.
func TestTryFindAndClearNConcurrentDisjoint(t *testing.T) {
	const n = 500
	const claimSize = 3
	b := NewAtomicBitmap(n)
	b.XSetN(ModeSet, 0, n)

	var wg sync.WaitGroup
	results := make(chan int, n)
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(seq uint32) {
			defer wg.Done()
			for {
				idx, ok := b.TryFindAndClearN(seq, claimSize)
				if !ok {
					return
				}
				results <- idx
			}
		}(uint32(g))
	}
	wg.Wait()
	close(results)

	var claimed []int
	for idx := range results {
		claimed = append(claimed, idx)
	}
	sort.Ints(claimed)
	for i := 1; i < len(claimed); i++ {
		assert.GreaterOrEqual(t, claimed[i]-claimed[i-1], claimSize,
			"overlapping claims at %d and %d", claimed[i-1], claimed[i])
	}
}

func TestUnsafeXSetNReportsPriorState(t *testing.T) {
	b := NewAtomicBitmap(64)
	changed := b.UnsafeXSetN(ModeSet, 0, 10)
	assert.False(t, changed)
	unchanged := b.UnsafeXSetN(ModeSet, 0, 10)
	assert.True(t, unchanged)
}
