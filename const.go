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

const (
	// BlockSize is the fixed, power-of-two unit of allocation.
	BlockSize = internalarena.BlockSize
	// BlockAlign is the alignment every block-granularity pointer satisfies.
	BlockAlign = internalarena.BlockAlign
	// MaxArenas bounds the number of arenas an Allocator can track.
	MaxArenas = internalarena.MaxArenas
	// BitmapMaxBits is the per-arena bit capacity.
	BitmapMaxBits = internalarena.BitmapMaxBits
	// BinCount is the number of reserved (unused) abandoned-page bitmaps
	// per arena.
	BinCount = internalarena.BinCount
	// MinObjSize and MaxObjSize bound the sizes AllocAligned will try to
	// satisfy from an arena before delegating to the OS.
	MinObjSize = internalarena.MinObjSize
	MaxObjSize = internalarena.MaxObjSize
)
