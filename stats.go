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

// Stats is the counter-reporting interface the allocator drives as it
// commits, decommits, and purges memory, and reserves new arenas.
type Stats = internalarena.Stats

// AtomicStats is the default Stats implementation: plain atomic counters.
type AtomicStats = internalarena.AtomicStats

// Tracking is the pluggable memory-sanitizer hook: an implementation is
// told when ranges become undefined or inaccessible.
type Tracking = internalarena.Tracking
