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


package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	regdoc "github.com/finos-labs/dtcch-2025-accenture-team"
	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/ai/openai"
	"github.com/finos-labs/dtcch-2025-accenture-team/compare"
	"github.com/finos-labs/dtcch-2025-accenture-team/controls"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/ingest"
	"github.com/finos-labs/dtcch-2025-accenture-team/notify"
	"github.com/finos-labs/dtcch-2025-accenture-team/ocr"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "regdoc",
		Usage:  "Regulatory document analysis pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest an OCR output file as a new document version",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the OCR output (.json block dump or .txt)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Document name, e.g. emir-refit-2019",
						Required: true,
					},
				}, aiFlags()...),
			},
			{
				Name:   "export",
				Usage:  "Export a document's canonical articles as CSV",
				Action: exportCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Document name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				},
			},
			{
				Name:   "compare",
				Usage:  "Compare two document versions and write the report files",
				Action: compareCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "old",
						Usage:    "Name of the old document version",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "new",
						Usage:    "Name of the new document version",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory for the report files",
						Value: "comparison",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent sub-theme comparisons",
						Value: 4,
					},
					&cli.StringSliceFlag{
						Name:  "email-to",
						Usage: "Send the report to these addresses after the run",
					},
					&cli.StringFlag{
						Name:  "graph-token",
						Usage: "Microsoft Graph access token for sending the report",
					},
				}, aiFlags()...),
			},
			{
				Name:   "ask",
				Usage:  "Ask a question against two document versions",
				Action: askCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "old",
						Usage:    "Name of the old document version",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "new",
						Usage:    "Name of the new document version",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "question",
						Aliases: []string{"q"},
						Usage:   "One-shot question (omit for an interactive session)",
					},
				}, aiFlags()...),
			},
			{
				Name:   "controls",
				Usage:  "Map an L1/L2 control catalogue against an ingested document",
				Action: controlsCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "controls",
						Aliases:  []string{"c"},
						Usage:    "Path to the control catalogue CSV",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "L2 control IDs to map (default all)",
					},
					&cli.StringFlag{
						Name:  "document",
						Usage: "Document name to search (default all documents)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output CSV file",
						Value:   "controls_mapping.csv",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Passages retrieved per control",
						Value: 3,
					},
				}, aiFlags()...),
			},
			{
				Name:   "reindex",
				Usage:  "Recompute all chunk embeddings with a new model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "API key for the embedding service",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

// aiFlags are shared by every command that talks to the AI services.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "completion-host",
			Usage: "Completion service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "completion-model",
			Usage: "Completion model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key for the AI services",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionHost(c.String("completion-host")),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func openDatabase(c *cli.Context) (*regdoc.Database, error) {
	config, err := aiConfigFromFlags(c)
	if err != nil {
		return nil, err
	}
	return regdoc.NewDatabase(c.String("db"), regdoc.WithAIConfig(config))
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	lines, err := ocr.ReadFile(c.String("file"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	doc := &core.Document{
		Name:   c.String("name"),
		Source: c.String("file"),
	}

	doc, articles, err := pipeline.Ingest(ctx, doc, lines)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	// Flush the async chunk embedding before closing the database
	fmt.Fprintf(os.Stderr, "Ingested %q: %d articles, embedding chunks...\n", doc.Name, len(articles))
	pipeline.Wait()
	fmt.Fprintln(os.Stderr, "Done.")

	return nil
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return err
	}
	defer docRepo.Close()

	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		return err
	}
	defer articleRepo.Close()

	doc, err := docRepo.GetDocumentByName(ctx, c.String("name"))
	if err != nil {
		return fmt.Errorf("document %q: %w", c.String("name"), err)
	}

	articles, err := articleRepo.GetArticlesByDocument(ctx, doc.Id)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return writeArticleCSV(out, articles)
}

// writeArticleCSV keeps the historical column order of the merged table:
// the "Title" column carries the chapter theme and the "Theme" column
// carries the article label.
func writeArticleCSV(w io.Writer, articles []*core.Article) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Title", "Theme", "Sub-Theme", "Content"}); err != nil {
		return err
	}
	for _, article := range articles {
		if err := writer.Write([]string{article.Theme, article.Label, article.SubTheme, article.Content}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func compareCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	oldDoc, err := db.DocumentRepository().GetDocumentByName(ctx, c.String("old"))
	if err != nil {
		return fmt.Errorf("document %q: %w", c.String("old"), err)
	}
	newDoc, err := db.DocumentRepository().GetDocumentByName(ctx, c.String("new"))
	if err != nil {
		return fmt.Errorf("document %q: %w", c.String("new"), err)
	}

	comparer, err := db.NewComparer(compare.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}

	report, runErr := comparer.Compare(ctx, oldDoc.Id, newDoc.Id)
	if report == nil {
		return runErr
	}
	if runErr != nil {
		// Partial results are still worth keeping
		fmt.Fprintf(os.Stderr, "comparison finished with errors: %v\n", runErr)
	}

	outputDir := c.String("output-dir")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	if err := report.Save(outputDir); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s (run %s)\n", outputDir, report.RunID)

	recipients := c.StringSlice("email-to")
	if len(recipients) == 0 {
		return nil
	}

	mailer, err := notify.NewMailer(c.String("graph-token"))
	if err != nil {
		return err
	}
	msg, err := notify.ReportMessage(outputDir, recipients)
	if err != nil {
		return err
	}
	if err := mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report emailed to %s\n", strings.Join(recipients, ", "))

	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	bot, err := db.NewChatBot(ctx, c.String("old"), c.String("new"))
	if err != nil {
		return err
	}

	if question := c.String("question"); question != "" {
		answer, err := bot.Ask(ctx, question)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	// Interactive session, one question per line
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "exit" || question == "quit" {
			break
		}

		answer, err := bot.Ask(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
	return scanner.Err()
}

func controlsCommand(c *cli.Context) error {
	ctx := context.Background()

	f, err := os.Open(c.String("controls"))
	if err != nil {
		return fmt.Errorf("opening control catalogue: %w", err)
	}
	catalogue, err := controls.LoadControls(f)
	f.Close()
	if err != nil {
		return err
	}

	selected := controls.FilterByL2(catalogue, c.StringSlice("filter"))
	fmt.Fprintf(os.Stderr, "Selected %d of %d controls\n", len(selected), len(catalogue))

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var documentID core.ID
	if name := c.String("document"); name != "" {
		doc, err := db.DocumentRepository().GetDocumentByName(ctx, name)
		if err != nil {
			return fmt.Errorf("document %q: %w", name, err)
		}
		documentID = doc.Id
	}

	mapper, err := db.NewMapper(controls.WithTopK(c.Int("top-k")))
	if err != nil {
		return err
	}

	rows, err := mapper.MapControls(ctx, selected, documentID)
	if err != nil {
		return err
	}

	out, err := os.Create(c.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := controls.WriteCSV(out, rows); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d mapping rows to %s\n", len(rows), c.String("output"))

	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer docRepo.Close()

	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer articleRepo.Close()

	// Create AI config
	// Completion values are not used for reindexing
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionHost(c.String("embedding-host")),
		ai.WithCompletionModel("dummy"),
		ai.WithAPIKey(c.String("api-key")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create reembedding config
	reembedConfig := &ingest.ReembedConfig{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reembedder
	reembedder := ingest.NewReembedder(docRepo, articleRepo, embedder, reembedConfig, os.Stderr)

	// Run reembedding
	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
