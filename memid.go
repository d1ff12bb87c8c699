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

// MemID is the opaque handle returned alongside every allocation; it must
// be round-tripped unmodified to Free. Callers may inspect it for
// diagnostics but should not construct one by hand.
type MemID = internalarena.MemID
