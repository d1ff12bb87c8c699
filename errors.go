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

// Sentinel errors returned by this package's operations. Callers should
// compare against these with errors.Is, not string-match the error text.
var (
	// ErrOutOfMemory is returned when no arena can satisfy a request and
	// OS allocation is disallowed or itself fails, or when a request
	// names a specific arena that cannot satisfy it.
	ErrOutOfMemory = internalarena.ErrOutOfMemory
	// ErrInvalid is returned by Free when the supplied MemID does not
	// decode to a live, in-range arena block.
	ErrInvalid = internalarena.ErrInvalid
	// ErrDoubleFree is returned by Free when the block range was already
	// free.
	ErrDoubleFree = internalarena.ErrDoubleFree
	// ErrPrecondition names a region that is misaligned or too small to
	// hold the arena's own metadata. ManageOSMemory and ManageOSMemoryEx
	// report that case by returning false rather than this error.
	ErrPrecondition = internalarena.ErrPrecondition
)
