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

func newTestArena(t *testing.T, blocks int) *Arena {
	t.Helper()
	a, err := newArena(BlockAlign, int64(blocks)*BlockSize, false, false, -1, false, false, false)
	require.NoError(t, err)
	return a
}

func TestRegistryAddAssignsOneBasedID(t *testing.T) {
	r := NewRegistry()
	a := newTestArena(t, 4)
	ok := r.Add(a)
	require.True(t, ok)
	assert.Equal(t, uint32(1), a.ID)
	assert.Same(t, a, r.ByID(1))
	assert.Same(t, a, r.At(0))
}

func TestRegistryByIDRejectsOutOfRange(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.ByID(0))
	assert.Nil(t, r.ByID(MaxArenas+1))
	assert.Nil(t, r.ByID(1))
}

func TestRegistryVisitAllStopsEarly(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		require.True(t, r.Add(newTestArena(t, 4)))
	}

	seen := 0
	r.VisitAll(func(a *Arena) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestRegistryAddConcurrentUniqueIDs(t *testing.T) {
	r := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	ids := make(chan uint32, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := newTestArena(t, 4)
			require.True(t, r.Add(a))
			ids <- a.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint32]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate arena id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
