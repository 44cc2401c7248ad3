package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nikita2206/probe/internal/display"
	"github.com/nikita2206/probe/internal/engine"
	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/logging"
	"github.com/nikita2206/probe/internal/version"
)

func main() {
	logging.Init()

	app := &cli.App{
		Name:    "probe",
		Usage:   "local, offline code search",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: ".", Usage: "project root to search/index"},
			&cli.StringFlag{Name: "config", Usage: "probe.yml path override (defaults to <dir>/probe.yml)"},
			&cli.BoolFlag{Name: "no-rerank", Usage: "disable reranking for this query"},
			&cli.StringFlag{Name: "rerank-model", Usage: "reranker model id (defaults to configured default)"},
			&cli.IntFlag{Name: "rerank-candidates", Usage: "number of BM25 candidates to rerank (0 = default)"},
			&cli.IntFlag{Name: "top", Value: 10, Usage: "number of results to return"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
			&cli.StringFlag{Name: "path", Usage: "restrict results to paths matching this glob"},
		},
		Action: searchAction,
		Commands: []*cli.Command{
			{Name: "rebuild", Usage: "drop and recreate the index", Action: rebuildAction},
			{Name: "stats", Usage: "print index stats as JSON", Action: statsAction},
			{Name: "list-models", Usage: "list built-in and custom reranker models", Action: listModelsAction},
			{
				Name:      "show-chunks",
				Usage:     "print the chunks parsed from one file",
				ArgsUsage: "<path>",
				Action:    showChunksAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "probe: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a fatal error to spec.md §6's exit code contract: 0
// success, 1 user error, 2 internal error.
func exitCode(err error) int {
	switch {
	case probeerrors.IsKind(err, probeerrors.KindQueryInvalid),
		probeerrors.IsKind(err, probeerrors.KindModelMissing),
		probeerrors.IsKind(err, probeerrors.KindModelLoad):
		return 1
	default:
		return 2
	}
}

func openEngine(c *cli.Context) (*engine.Engine, error) {
	root := c.String("dir")
	return engine.OpenOrCreate(root, c.String("config"))
}

func searchAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: probe [flags] <query>", 1)
	}
	query := c.Args().First()

	e, err := openEngine(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := e.Update(ctx); err != nil {
		return err
	}

	opts := engine.SearchOptions{
		Top:            c.Int("top"),
		CandidateCount: c.Int("rerank-candidates"),
		DisableRerank:  c.Bool("no-rerank"),
		RerankModel:    c.String("rerank-model"),
		PathFilter:     c.String("path"),
	}
	hits, err := e.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	formatter := display.NewHitFormatter(display.Options{JSON: c.Bool("json")})
	fmt.Println(formatter.Format(hits))
	return nil
}

func rebuildAction(c *cli.Context) error {
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	result, err := e.Rebuild(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("rebuilt: %d added, %d modified, %d deleted\n", result.Added, result.Modified, result.Deleted)
	return nil
}

func statsAction(c *cli.Context) error {
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	if _, err := e.Update(context.Background()); err != nil {
		return err
	}
	stats, err := e.Stats()
	if err != nil {
		return err
	}
	fmt.Println(display.FormatStats(display.StatsRecord{
		ChunkCount:     stats.ChunkCount,
		FileCount:      stats.FileCount,
		IndexSizeBytes: stats.IndexSizeBytes,
		SchemaVersion:  stats.SchemaVersion,
	}))
	return nil
}

func listModelsAction(c *cli.Context) error {
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	fmt.Println(display.FormatModels(e.ModelRegistry().BuiltinNames(), e.ModelRegistry().CustomNames()))
	return nil
}

func showChunksAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: probe show-chunks <path>", 1)
	}
	e, err := openEngine(c)
	if err != nil {
		return err
	}
	chunks, err := e.ShowChunks(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(display.FormatChunks(chunks, c.Bool("json")))
	return nil
}
