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


// Package controls maps an organization's L1/L2 control catalogue onto an
// ingested regulation.
//
// Controls are loaded from CSV and filtered by L2 control ID. For each
// selected control the article chunks are similarity-searched with the
// control activity as the query, and a completion model judges whether each
// matched passage supports the control. The model must wrap its verdict in
// <json>...</json> tags; malformed replies are repaired where possible and
// otherwise degrade to an error column on the output row, so a single bad
// reply never aborts a run.
package controls
