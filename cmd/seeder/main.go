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


// Seeder loads a pair of small built-in regulation excerpts (an old and a
// new version) so the compare, ask and controls commands can be exercised
// without real OCR output. With -src only that one file is ingested.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	regdoc "github.com/finos-labs/dtcch-2025-accenture-team"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/ingest"
	"github.com/finos-labs/dtcch-2025-accenture-team/ocr"
)

var oldVersionLines = []string{
	"CHAPTER I",
	"Subject matter and scope",
	"Article 1",
	"Subject matter",
	"This Regulation lays down uniform requirements for the performance of contractual obligations.",
	"Article 2",
	"Definitions",
	"For the purposes of this Regulation, 'counterparty' means any undertaking established in the Union.",
	"CHAPTER II",
	"Reporting",
	"Article 3",
	"Reporting obligation",
	"Counterparties shall report the details of any contract they have concluded no later than the working day following the conclusion of the contract.",
	"Article 4",
	"Record keeping",
	"Counterparties shall keep a record of any contract they have concluded for at least five years.",
}

var newVersionLines = []string{
	"CHAPTER I",
	"Subject matter and scope",
	"Article 1",
	"Subject matter",
	"This Regulation lays down uniform requirements for the performance and clearing of contractual obligations.",
	"Article 2",
	"Definitions",
	"For the purposes of this Regulation, 'counterparty' means any undertaking established in the Union or providing services within it.",
	"CHAPTER II",
	"Reporting",
	"Article 3",
	"Reporting obligation",
	"Counterparties shall report the details of any contract they have concluded, modified or terminated no later than the working day following the event.",
	"Article 4",
	"Incident notification",
	"Counterparties shall notify the competent authority of any major operational incident without undue delay.",
}

var (
	dbPath       = flag.String("db", "./regdoc_db", "path to the database directory")
	seedFileName = flag.String("src", "", "OCR output file to ingest instead of the built-in samples")
	seedDocName  = flag.String("name", "seeded-doc", "document name used with -src")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromSlice wraps raw strings as recognized lines.
func linesFromSlice(lines []string) []core.TextLine {
	textLines := make([]core.TextLine, 0, len(lines))
	for _, line := range lines {
		textLines = append(textLines, core.TextLine{Text: line})
	}
	return textLines
}

func seed(ctx context.Context, pipeline *ingest.Pipeline, name string, lines []core.TextLine) {
	doc := &core.Document{Name: name, Source: "seeder"}
	doc, articles, err := pipeline.Ingest(ctx, doc, lines)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded document", "name", doc.Name, "articles", len(articles))
}

func main() {
	db, err := regdoc.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	if *seedFileName != "" {
		lines, err := ocr.ReadFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		seed(ctx, pipeline, *seedDocName, lines)
	} else {
		seed(ctx, pipeline, "sample-regulation-2012", linesFromSlice(oldVersionLines))
		seed(ctx, pipeline, "sample-regulation-2019", linesFromSlice(newVersionLines))
	}

	// Let the chunk embedding finish before closing the database
	pipeline.Wait()
}
