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

const (
	// BlockSize is the fixed, power-of-two unit of allocation. All arena
	// sizes and requests are rounded up to a whole number of blocks.
	BlockSize = 4 << 20 // 4 MiB

	// BlockAlign is the alignment every block-granularity pointer satisfies.
	BlockAlign = BlockSize

	// MaxArenas bounds the registry's fixed slot array.
	MaxArenas = 1024

	// BitmapMaxBits is the per-arena bit capacity; an arena's usable block
	// count must fit within it.
	BitmapMaxBits = 1 << 20

	// BinCount is the number of reserved abandoned-page bitmaps per arena.
	// Abandoned-page tracking itself is out of scope for this module (see
	// Arena.Abandoned); the bitmaps are kept only so the field layout
	// matches what a downstream allocator would expect to find.
	BinCount = 32

	// MinObjSize and MaxObjSize bound the sizes the orchestrator will try
	// to satisfy from an arena before delegating to the OS.
	MinObjSize = 1
	MaxObjSize = BitmapMaxBits * BlockSize
)

// metadataBlocks is the number of blocks reserved at the head of every
// arena for its self-hosted descriptor. It is a fixed count, independent
// of the arena's size, declared in descriptor.go.
