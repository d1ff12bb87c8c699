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
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// defaultDumpWidth is used when the destination isn't a terminal we can
// query a width from (a plain file, a bytes.Buffer in a test, a pipe).
const defaultDumpWidth = 80

// DumpArenas writes a one-line-per-arena summary of every registered
// arena's bitmap state to w: debug id, base address, block count, and (depending on
// the show* flags) the blocks_free/blocks_purge bitmaps rendered as runs
// of 'x'/'.' characters, wrapped to the destination's terminal width when
// w is a terminal. showAbandoned is accepted for signature compatibility
// with the C-style debug_show_arenas but has no effect: this package never
// drives the reserved abandoned-page bitmaps (see Arena.Abandoned).
func DumpArenas(w io.Writer, r *Registry, showInuse, showAbandoned, showPurge bool) {
	width := defaultDumpWidth
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && term.IsTerminal(int(f.Fd())) {
			width = tw
		}
	}

	r.VisitAll(func(a *Arena) bool {
		fmt.Fprintf(w, "arena %d uuid=%s base=%#x blocks=%d numa=%d free=%d/%d\n",
			a.ID, a.DebugID, a.Base, a.BlockCount, a.NumaNode, a.FreeBlockCount(), a.BlockCount)
		if showInuse {
			writeBitmapRows(w, a.BlocksFree, width)
		}
		if showPurge {
			fmt.Fprintf(w, "  pending purge:\n")
			writeBitmapRows(w, a.BlocksPurge, width)
		}
		return true
	})
}

// writeBitmapRows renders b as rows of 'x'/'.' characters no wider than
// width columns each.
func writeBitmapRows(w io.Writer, b *AtomicBitmap, width int) {
	if width < 1 {
		width = defaultDumpWidth
	}
	row := make([]byte, 0, width)
	for i := 0; i < b.Len(); i++ {
		if b.IsXSetN(ModeSet, i, 1) {
			row = append(row, '.') // free
		} else {
			row = append(row, 'x') // claimed
		}
		if len(row) == width {
			w.Write(row)
			w.Write([]byte{'\n'})
			row = row[:0]
		}
	}
	if len(row) > 0 {
		w.Write(row)
		w.Write([]byte{'\n'})
	}
}
