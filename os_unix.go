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

//go:build linux || darwin

package arena

import internalarena "arena.build/go/arena/internal/arena"

// UnixOS is the real OS implementation for linux/darwin, backed directly
// by mmap/mprotect/madvise.
type UnixOS = internalarena.UnixOS

// NewUnixOS returns a UnixOS. overcommit should reflect whether the host
// kernel is known to overcommit pages.
func NewUnixOS(overcommit bool) *UnixOS {
	return internalarena.NewUnixOS(overcommit)
}
