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
	"arena.build/go/arena/internal/arena/dbg"
	"arena.build/go/arena/internal/sync2"
)

// Run describes a contiguous span of bits, [Start, Start+Len).
type Run struct {
	Start, Len int
}

var runSlicePool = sync2.Pool[[]Run]{
	New: func() []Run { return make([]Run, 0, 8) },
	Reset: func(r []Run) {
		_ = r[:0]
	},
}

// snapshotRunsWithin scans [lo, lo+width) and returns every maximal run of
// set bits in that window. It is a plain snapshot: callers that need the
// result to stay accurate must hold some other guarantee (here, that the
// caller just transiently claimed the window in blocks_free, so no one
// else is allocating into it).
func snapshotRunsWithin(b *AtomicBitmap, lo, width int, out []Run) []Run {
	out = out[:0]
	runStart := -1
	for i := lo; i < lo+width; i++ {
		if b.IsXSetN(ModeSet, i, 1) {
			if runStart < 0 {
				runStart = i
			}
		} else if runStart >= 0 {
			out = append(out, Run{runStart, i - runStart})
			runStart = -1
		}
	}
	if runStart >= 0 {
		out = append(out, Run{runStart, lo + width - runStart})
	}
	return out
}

// schedulePurge implements spec §4.6.2.
func (al *Allocator) schedulePurge(a *Arena, i, n int) {
	d := al.options.EffectiveDelayMs()
	if d < 0 || a.IsPinned {
		return
	}
	if d == 0 || al.Preloading() {
		al.purgeNow(a, i, n)
		return
	}

	a.BlocksPurge.XSetN(ModeSet, i, n)

	now := al.os.ClockNowMs()
	for {
		cur := a.purgeExpire.Load()
		var next int64
		if cur == 0 {
			next = now + d
		} else {
			// Extend by a tenth of D to batch nearby frees instead of
			// re-arming the deadline on every single call.
			next = cur + d/10
		}
		if a.purgeExpire.CompareAndSwap(cur, next) {
			break
		}
	}
}

// TryPurgeAll implements spec §4.6.3. When visitAll is false, only the
// first eligible arena is processed per call; when true, every eligible
// arena is processed in this one call.
func (al *Allocator) TryPurgeAll(force, visitAll bool) {
	d := al.options.EffectiveDelayMs()
	if d < 0 {
		return
	}
	now := al.os.ClockNowMs()

	al.registry.VisitAll(func(a *Arena) bool {
		expire := a.purgeExpire.Load()
		if expire == 0 || (!force && expire > now) {
			return true
		}
		if !a.purgeExpire.CompareAndSwap(expire, 0) {
			// Someone else is already draining this arena's deadline.
			return true
		}

		al.purgeArena(a, now, d)
		return visitAll
	})
}

func (al *Allocator) purgeArena(a *Arena, now, d int64) {
	if !a.purgeGuard.CompareAndSwap(false, true) {
		// Another goroutine is mid-pass over this arena; re-arm and let
		// it finish rather than contending on the same bits.
		a.purgeExpire.CompareAndSwap(0, now+d)
		return
	}
	defer a.purgeGuard.Store(false)

	runs, drop := runSlicePool.Get()
	defer drop()
	runs = snapshotRunsWithin(a.BlocksPurge, 0, int(a.BlockCount), runs)

	fullyDrained := true
	sub, dropSub := runSlicePool.Get()
	defer dropSub()

	for _, run := range runs {
		claimed := 0
		for length := run.Len; length > 0; length-- {
			if a.BlocksFree.tryClearRun(run.Start, length) {
				claimed = length
				break
			}
		}
		if claimed == 0 {
			fullyDrained = false
			continue
		}
		if claimed < run.Len {
			fullyDrained = false
		}

		sub = snapshotRunsWithin(a.BlocksPurge, run.Start, claimed, sub)
		for _, s := range sub {
			al.purgeNow(a, s.Start, s.Len)
		}

		// Restore the bits, making the range allocatable again.
		a.BlocksFree.XSetN(ModeSet, run.Start, claimed)
	}

	if !fullyDrained {
		a.purgeExpire.CompareAndSwap(0, now+d)
	}
}

// purgeNow implements spec §4.6.4.
func (al *Allocator) purgeNow(a *Arena, i, n int) {
	size := n * BlockSize
	p := a.BlockStart(uint32(i))

	var (
		needsRecommit bool
		err           error
	)
	fullyCommitted := a.BlocksCommitted.IsXSetN(ModeSet, i, n)
	if fullyCommitted {
		needsRecommit, err = al.os.Purge(p, size)
	} else {
		// Already partially decommitted; force a real decommit over the
		// whole range (a reset is invalid over never-committed memory,
		// regardless of the PurgeDecommits option), and add the whole
		// range size to the committed stat now to offset the OS layer's
		// imminent decrement for a decommit of the full range.
		needsRecommit, err = al.os.PurgeEx(p, size, false)
		if err == nil && needsRecommit {
			al.stats.IncreaseCommitted(int64(size))
		}
	}
	if err != nil {
		dbg.Log("purge", "OS purge failed for arena=%d block=%d n=%d: %v", a.ID, i, n, err)
	} else {
		al.stats.IncreasePurged(int64(size))
	}

	a.BlocksPurge.XSetN(ModeClear, i, n)
	if needsRecommit {
		a.BlocksCommitted.XSetN(ModeClear, i, n)
		if fullyCommitted {
			al.stats.DecreaseCommitted(int64(size))
		}
	}
}
