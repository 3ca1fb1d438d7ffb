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


// Debug tool: run a similarity query against a local database and print
// the matched passages with their scores.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	regdoc "github.com/finos-labs/dtcch-2025-accenture-team"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

var (
	dbPath  = flag.String("db", "./regdoc_db", "path to the database directory")
	docName = flag.String("doc", "", "restrict the search to one document")
	maxHits = flag.Int("hits", 5, "maximum number of hits")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := regdoc.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	var documentID core.ID
	if *docName != "" {
		doc, err := db.DocumentRepository().GetDocumentByName(ctx, *docName)
		if err != nil {
			panic(err)
		}
		documentID = doc.Id
	}

	query := "reporting obligation"
	if args := flag.Args(); len(args) > 0 {
		query = strings.Join(args, " ")
	}

	results, err := searcher.FindSimilar(ctx, query, *maxHits, documentID)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%d)[%0.3f]\n", i, hit.Chunk.Text, hit.Chunk.ArticleId, hit.Score)
	}
}
