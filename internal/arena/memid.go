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

// Kind tags how a MemID's region was obtained.
type Kind uint8

const (
	// KindNone is the zero value: no memory, no-op on Free.
	KindNone Kind = iota
	// KindArena means the region came from an Arena's block range and
	// participates in that arena's free bookkeeping.
	KindArena
	// KindOS means the region was allocated directly from the OS,
	// bypassing any arena.
	KindOS
	// KindExternal means the region was supplied by the caller via
	// ManageOSMemory rather than reserved by this package.
	KindExternal
	// KindStatic means the region backs this package's own bootstrap
	// metadata.
	KindStatic
)

// MemID is the opaque handle returned alongside every allocation. Its
// fields are exported because it must cross the package boundary to be
// handed back to Free, but callers are expected to treat it as opaque and
// round-trip it unmodified.
type MemID struct {
	Kind Kind

	// ArenaID is the one-based registry id of the owning arena. Only
	// meaningful when Kind == KindArena.
	ArenaID uint32
	// BlockIndex is the index of the first block of the range within the
	// owning arena. Only meaningful when Kind == KindArena.
	BlockIndex uint32

	IsExclusive        bool
	IsPinned           bool
	InitiallyCommitted bool
	InitiallyZero      bool
}

// noneMemID is the MemID value returned on outright failure paths where no
// memory was obtained.
var noneMemID = MemID{Kind: KindNone}
