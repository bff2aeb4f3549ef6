// Copyright 2025 Poiesic Systems
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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/expertmatch"
	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/ingestion"
	"github.com/poiesic/expertmatch/reembed"
	"github.com/poiesic/expertmatch/search"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; flags and real env vars win
	godotenv.Load()

	app := &cli.App{
		Name:  "expertmatch",
		Usage: "Semantic expert search over attribute taxonomies",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				EnvVars: []string{"EXPERTMATCH_DB"},
				Value:   "./expertmatch_db",
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "OpenAI-compatible service host URL",
				EnvVars: []string{"EXPERTMATCH_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"EXPERTMATCH_EMBEDDING_MODEL"},
				Value:   "embeddinggemma",
			},
			&cli.StringFlag{
				Name:    "extractor-model",
				Usage:   "Term extraction model name",
				EnvVars: []string{"EXPERTMATCH_EXTRACTOR_MODEL"},
				Value:   "qwen2.5:3b",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search for experts matching a free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page (1-based)",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Experts per page",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Override the similarity threshold [0,1]",
						Value: -1,
					},
					&cli.Float64Flag{
						Name:  "recency-decay",
						Usage: "Override the recency decay factor [0,1]",
						Value: -1,
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print the term extraction trace",
					},
				},
			},
			{
				Name:   "add-attribute",
				Usage:  "Register a taxonomy attribute and ensure its embedding",
				Action: addAttributeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Attribute type (agency, role, seniority, skill, program)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Attribute name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "summary",
						Usage: "Short attribute description",
					},
				},
			},
			{
				Name:      "add-expert",
				Usage:     "Ingest an expert profile from a JSON file (or stdin with -)",
				ArgsUsage: "<profile.json>",
				Action:    addExpertCommand,
			},
			{
				Name:   "backfill",
				Usage:  "Compute embeddings for attributes that lack one",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for embedding batches",
						Value: 4,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed the full attribute taxonomy with the configured model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of attributes to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N attributes",
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

func openDatabase(c *cli.Context) (*expertmatch.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorModel(c.String("extractor-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := expertmatch.NewDatabase(c.String("db"), expertmatch.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	settings := map[string]any{}
	if v := c.Float64("threshold"); v >= 0 {
		settings["similarity_threshold"] = v
	}
	if v := c.Float64("recency-decay"); v >= 0 {
		settings["recency_decay_factor"] = v
	}

	result, err := searcher.Search(context.Background(), &search.Request{
		Query:    query,
		Page:     c.Int("page"),
		PageSize: c.Int("page-size"),
		Settings: settings,
	})
	if err != nil {
		return err
	}

	printResult(result, c.Bool("trace"))
	return nil
}

func printResult(result *search.Result, withTrace bool) {
	fmt.Printf("Found %d experts in %v (page %d/%d)\n",
		result.TotalExperts, result.Elapsed.Round(time.Millisecond),
		result.Page, result.TotalPages)

	if withTrace {
		for _, typ := range core.SearchableTypes() {
			for _, entry := range result.Trace[typ] {
				if entry.Source == search.TraceSourceMatched {
					fmt.Printf("  %s: %q -> %q [%.3f]\n", typ, entry.Term, entry.MatchedName, entry.Similarity)
				} else {
					fmt.Printf("  %s: %q -> no match\n", typ, entry.Term)
				}
			}
		}
	}

	rank := (result.Page-1)*result.PageSize + 1
	for _, expert := range result.Experts {
		fmt.Printf("%d. %s [%.3f]\n", rank, expert.Name, expert.TotalScore)
		for _, exp := range expert.Experiences {
			if exp.Score == 0 {
				continue
			}
			position := exp.Position
			if position == "" {
				position = "(unspecified)"
			}
			fmt.Printf("     %s at %s (%s to %s) [%.3f]\n",
				position, exp.Employer,
				exp.StartDate.Format("2006-01"), exp.EndDate.Format("2006-01"),
				exp.Score)
		}
		rank++
	}
}

func addAttributeCommand(c *cli.Context) error {
	typ, err := core.ParseAttributeType(strings.ToLower(c.String("type")))
	if err != nil {
		return fmt.Errorf("invalid attribute type %q: %w", c.String("type"), err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	attr, err := pipeline.RegisterAttribute(context.Background(), typ, c.String("name"), c.String("summary"))
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s attribute %q (id %d, embedding dims %d)\n",
		attr.Type, attr.Name, attr.Id, len(attr.Embedding))
	return nil
}

// profileDoc is the JSON shape accepted by add-expert. Dates use the
// 2006-01-02 layout; an empty end date marks an ongoing role.
type profileDoc struct {
	Name        string            `json:"name"`
	Summary     string            `json:"summary"`
	Active      bool              `json:"active"`
	Metadata    map[string]string `json:"metadata"`
	Experiences []struct {
		Employer   string `json:"employer"`
		Position   string `json:"position"`
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		Summary    string `json:"summary"`
		Attributes []struct {
			Type    string `json:"type"`
			Name    string `json:"name"`
			Summary string `json:"summary"`
		} `json:"attributes"`
	} `json:"experiences"`
}

func parseProfile(r io.Reader) (*ingestion.ExpertProfile, error) {
	var doc profileDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	profile := &ingestion.ExpertProfile{
		Name:     doc.Name,
		Summary:  doc.Summary,
		Active:   doc.Active,
		Metadata: doc.Metadata,
	}
	for _, exp := range doc.Experiences {
		start, err := time.Parse("2006-01-02", exp.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", exp.StartDate, err)
		}
		var end time.Time
		if exp.EndDate != "" {
			end, err = time.Parse("2006-01-02", exp.EndDate)
			if err != nil {
				return nil, fmt.Errorf("invalid end date %q: %w", exp.EndDate, err)
			}
		}

		ep := ingestion.ExperienceProfile{
			Employer:  exp.Employer,
			Position:  exp.Position,
			StartDate: start,
			EndDate:   end,
			Summary:   exp.Summary,
		}
		for _, attr := range exp.Attributes {
			ep.Attributes = append(ep.Attributes, ingestion.AttributeTerm{
				Type:    core.AttributeType(attr.Type),
				Name:    attr.Name,
				Summary: attr.Summary,
			})
		}
		profile.Experiences = append(profile.Experiences, ep)
	}
	return profile, nil
}

func addExpertCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected one profile file argument (or - for stdin)")
	}

	var reader io.Reader = os.Stdin
	if name := c.Args().First(); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		reader = f
	}

	profile, err := parseProfile(reader)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	expert, err := pipeline.IngestExpert(context.Background(), profile)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested expert %q (id %d, %d experiences)\n",
		expert.Name, expert.Id, len(profile.Experiences))
	return nil
}

func backfillCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	processed, err := pipeline.Backfill(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Backfilled embeddings for %d attributes\n", processed)
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reembedder := db.NewReembedder(reembedConfig, os.Stderr)
	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
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
