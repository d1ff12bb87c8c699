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

import internalarena "arena.build/go/arena/internal/arena"

// OS is the facade this package needs for every virtual-memory primitive:
// reserve, commit, purge/decommit, free, and NUMA queries. SimOS (every
// platform) and UnixOS (linux/darwin) are the two implementations this
// module ships; callers may supply their own.
type OS = internalarena.OS

// SimOS is a deterministic, heap-backed OS implementation with no real
// mmap semantics; it is what this package's own tests run against, and a
// reasonable default on platforms without a native backend.
type SimOS = internalarena.SimOS

// NewSimOS returns a SimOS with the given overcommit/virtual-reserve
// policy and NUMA node count (at least 1).
func NewSimOS(overcommit, virtualReserve bool, numaNodeCount int) *SimOS {
	return internalarena.NewSimOS(overcommit, virtualReserve, numaNodeCount)
}
