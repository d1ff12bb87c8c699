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

import "errors"

// errCode enumerates the closed set of error kinds this package reports,
// mirroring the small errCode/errs table idiom used elsewhere in this
// codebase's lineage for parser errors: a single int tag plus a lookup
// table of sentinels, so callers can errors.Is against a stable value
// without type-asserting a struct.
type errCode int

const (
	errCodeOK errCode = iota
	errCodeOutOfMemory
	errCodeInvalid
	errCodeDoubleFree
	errCodePrecondition
)

var errs = [...]error{
	errCodeOK:           nil,
	errCodeOutOfMemory:  errors.New("arena: out of memory"),
	errCodeInvalid:      errors.New("arena: invalid free (bad arena id or block index)"),
	errCodeDoubleFree:   errors.New("arena: double free detected"),
	errCodePrecondition: errors.New("arena: precondition failed (misaligned or undersized region)"),
}

// ErrOutOfMemory is returned when no arena can satisfy a request and OS
// allocation is disallowed or itself fails, or when a request names a
// specific arena that cannot satisfy it.
var ErrOutOfMemory = errs[errCodeOutOfMemory]

// ErrInvalid is returned by Free when the supplied MemID does not decode to
// a live, in-range arena block. The free is aborted without touching any
// bitmap: a leaked block is preferable to a corrupted one.
var ErrInvalid = errs[errCodeInvalid]

// ErrDoubleFree is returned by Free when the block range was already free.
var ErrDoubleFree = errs[errCodeDoubleFree]

// ErrPrecondition is returned by arena construction for a region that is
// misaligned or too small to hold even the arena's own metadata.
// ManageOSMemory and ManageOSMemoryEx report that case by returning false
// rather than this error.
var ErrPrecondition = errs[errCodePrecondition]
