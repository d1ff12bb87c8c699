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

// Package arena implements a thread-safe, OS-backed arena allocator.
//
// It hands out large, block-aligned virtual memory ranges carved out of
// arenas pre-reserved from the OS (or adopted from caller-supplied
// regions), tracked with atomic bitmaps and a commit/dirty/purge state
// machine. Placement across arenas is NUMA- and identity-aware; purging
// freed ranges' physical memory back to the OS is lazy and batched rather
// than synchronous with every free.
//
// This package is the public, stable surface; internal/arena holds the
// engine it wraps.
package arena
