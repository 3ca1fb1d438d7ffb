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


// Package compare produces cross-version comparison reports for two ingested
// regulation documents.
//
// The Comparer walks the themes of the new document and, for each sub-theme,
// asks the completion service to identify the closest sub-theme of the old
// document (or the "None" sentinel when nothing matches). Matched pairs get a
// difference and impact analysis; unmatched sub-themes are collected
// separately. Sub-theme analyses are then rolled up into per-theme summaries
// and a single document-level summary.
//
// Sub-theme matching fans out on a bounded worker pool. Each item retries
// with exponential backoff and sleeps a small random jitter between calls;
// results are collected append-only under a mutex. Per-item failures do not
// abort the run; they are joined and returned alongside the report.
package compare
