// Copyright 2026 Podgraph Authors
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/podgraph/podgraph"
	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/engine"
	"github.com/podgraph/podgraph/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "podgraph",
		Usage: "Hybrid query engine over podcast transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "completion-model",
				Usage: "Completion model name",
				Value: "mistral",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API token for the AI service",
				EnvVars: []string{"PODGRAPH_TOKEN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a transcript JSON file",
				ArgsUsage: "<transcript.json>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "chunk-words",
						Usage: "Word budget per passage",
						Value: 200,
					},
					&cli.IntFlag{
						Name:  "overlap-words",
						Usage: "Overlap between adjacent passages",
						Value: 30,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Extraction worker pool size",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Answer a natural language question",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "podcast",
						Usage: "Restrict semantic results to one podcast",
					},
					&cli.StringFlag{
						Name:  "video",
						Usage: "Restrict semantic results to one video id",
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Semantic search result count",
						Value: 10,
					},
				},
			},
			{
				Name:      "verify",
				Usage:     "Verify a claim against the knowledge graph",
				ArgsUsage: "<claim>",
				Action:    verifyCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print knowledge graph statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*podgraph.Database, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithToken(c.String("token")),
	)
	return podgraph.NewDatabase(c.String("db"), podgraph.WithAIConfig(config))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one transcript file, got %d arguments", c.NArg())
	}

	transcript, err := ingestion.LoadTranscript(c.Args().First())
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithChunking(c.Int("chunk-words"), c.Int("overlap-words")),
	}
	if c.Int("pool-size") > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Int("pool-size")))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.IngestTranscript(context.Background(), transcript); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %s (%d segments)\n", transcript.VideoID, len(transcript.Segments))
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one question, got %d arguments", c.NArg())
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	eng, err := db.NewQueryEngine(engine.WithMaxResults(c.Int("max-results")))
	if err != nil {
		return err
	}

	var filters *core.Filters
	if c.String("podcast") != "" || c.String("video") != "" {
		filters = &core.Filters{
			Podcast: c.String("podcast"),
			VideoID: c.String("video"),
		}
	}

	result := eng.Answer(context.Background(), c.Args().First(), filters)
	printResult(result)
	return nil
}

func verifyCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one claim, got %d arguments", c.NArg())
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	eng, err := db.NewQueryEngine()
	if err != nil {
		return err
	}

	result := eng.Verify(context.Background(), c.Args().First())
	printResult(result)
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	stats, err := db.GraphRepository().Statistics(context.Background())
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%-24s %d\n", key, stats[key])
	}
	return nil
}

func printResult(result *core.QueryResult) {
	fmt.Printf("[%s] confidence=%.2f elapsed=%s\n", result.Type, result.Confidence, result.Elapsed.Round(time.Millisecond))
	if result.Statement != "" {
		fmt.Printf("statement: %s\n", result.Statement)
	}
	fmt.Println()
	fmt.Println(result.Answer)

	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, source := range result.Sources {
			var parts []string
			if source.Podcast != "" {
				parts = append(parts, source.Podcast)
			}
			if source.Episode != "" {
				parts = append(parts, source.Episode)
			}
			if source.VideoID != "" {
				parts = append(parts, source.VideoID)
			}
			line := strings.Join(parts, " / ")
			if source.StartTime > 0 {
				line = fmt.Sprintf("%s @ %.1fs", line, source.StartTime)
			}
			fmt.Printf("  - %s\n", line)
		}
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
