// Copyright 2025 FINOS
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides semantic retrieval over article chunks.
//
// The Searcher type embeds a query, scans the stored chunk vectors for
// cosine-similar matches above a fixed threshold, and applies a verbatim
// keyword boost with stop-word filtering. Searches can be restricted to a
// single document, which the chat layer uses to query the old and new
// versions of a regulation separately.
package search
